package log

import (
	"fmt"
	"io"
	"strings"
)

// EventLogger is the interface for logging game events.
type EventLogger interface {
	Log(event GameEvent)
	Events() []GameEvent
}

// --- MemoryLogger: stores events in memory for test assertions ---

type MemoryLogger struct {
	events []GameEvent
	seq    int
}

func NewMemoryLogger() *MemoryLogger {
	return &MemoryLogger{}
}

func (l *MemoryLogger) Log(event GameEvent) {
	l.seq++
	event.Seq = l.seq
	l.events = append(l.events, event)
}

func (l *MemoryLogger) Events() []GameEvent {
	return l.events
}

// EventsOfType returns all events matching the given type.
func (l *MemoryLogger) EventsOfType(t EventType) []GameEvent {
	var result []GameEvent
	for _, e := range l.events {
		if e.Type == t {
			result = append(result, e)
		}
	}
	return result
}

// LastEvent returns the most recent event, or a zero event if none.
func (l *MemoryLogger) LastEvent() GameEvent {
	if len(l.events) == 0 {
		return GameEvent{}
	}
	return l.events[len(l.events)-1]
}

// --- TextLogger: writes human-readable lines to an io.Writer ---

type TextLogger struct {
	MemoryLogger
	w io.Writer
}

func NewTextLogger(w io.Writer) *TextLogger {
	return &TextLogger{w: w}
}

func (l *TextLogger) Log(event GameEvent) {
	l.MemoryLogger.Log(event)
	fmt.Fprintln(l.w, FormatEvent(event))
}

// --- Formatting ---

// PlayerName returns "P1".."P4" for display.
func PlayerName(p int) string {
	return fmt.Sprintf("P%d", p+1)
}

// FormatEvent formats a single event as a human-readable line.
func FormatEvent(e GameEvent) string {
	phase := e.Phase
	for len(phase) < 18 {
		phase += " "
	}
	reg := "  "
	if e.Register >= 0 {
		reg = fmt.Sprintf("R%d", e.Register+1)
	}
	return fmt.Sprintf("Rd%-3d %s %s| %s", e.Round, phase, reg, e.Details)
}

// --- Helper constructors for common events ---

func NewPhaseChangeEvent(round int, phase string) GameEvent {
	return GameEvent{
		Round:    round,
		Phase:    phase,
		Register: -1,
		Player:   -1,
		Type:     EventPhaseChange,
		Details:  fmt.Sprintf("Phase → %s", phase),
	}
}

func NewRoundEvent(round int) GameEvent {
	return GameEvent{
		Round:    round,
		Phase:    "Dealing",
		Register: -1,
		Player:   -1,
		Type:     EventNewRound,
		Details:  fmt.Sprintf("=== Round %d ===", round),
	}
}

func NewDealEvent(round int, player int, count int) GameEvent {
	return GameEvent{
		Round:    round,
		Phase:    "Dealing",
		Register: -1,
		Player:   player,
		Type:     EventDeal,
		Details:  fmt.Sprintf("%s is dealt %d card(s)", PlayerName(player), count),
	}
}

func NewSelectEvent(round int, player int, card string, slot int) GameEvent {
	return GameEvent{
		Round:    round,
		Phase:    "Selecting",
		Register: -1,
		Player:   player,
		Type:     EventSelect,
		Card:     card,
		Details:  fmt.Sprintf("%s programs %s from slot %d", PlayerName(player), card, slot+1),
	}
}

func NewDeselectEvent(round int, player int, card string, slot int) GameEvent {
	return GameEvent{
		Round:    round,
		Phase:    "Selecting",
		Register: -1,
		Player:   player,
		Type:     EventDeselect,
		Card:     card,
		Details:  fmt.Sprintf("%s returns %s to slot %d", PlayerName(player), card, slot+1),
	}
}

func NewLockInEvent(round int, player int, program []string) GameEvent {
	return GameEvent{
		Round:    round,
		Phase:    "Selecting",
		Register: -1,
		Player:   player,
		Type:     EventLockIn,
		Details:  fmt.Sprintf("%s locks in [%s]", PlayerName(player), strings.Join(program, ", ")),
	}
}

func NewPowerDownEvent(round int, player int, down bool) GameEvent {
	verb := "stays powered up"
	if down {
		verb = "powers down"
	}
	return GameEvent{
		Round:    round,
		Phase:    "Power Down",
		Register: -1,
		Player:   player,
		Type:     EventPowerDown,
		Details:  fmt.Sprintf("%s %s", PlayerName(player), verb),
	}
}

func NewRegisterEvent(round int, register int, order []int) GameEvent {
	names := make([]string, len(order))
	for i, p := range order {
		names[i] = PlayerName(p)
	}
	return GameEvent{
		Round:    round,
		Phase:    "Executing",
		Register: register,
		Player:   -1,
		Type:     EventRegister,
		Details:  fmt.Sprintf("Register %d order: %s", register+1, strings.Join(names, " → ")),
	}
}

func NewExecuteCardEvent(round int, register int, player int, cardType string, priority int, from, to string) GameEvent {
	return GameEvent{
		Round:    round,
		Phase:    "Executing",
		Register: register,
		Player:   player,
		Type:     EventExecuteCard,
		Card:     cardType,
		Details:  fmt.Sprintf("%s executes %s with priority %d: %s → %s", PlayerName(player), cardType, priority, from, to),
	}
}

func NewConveyorEvent(round int, register int, player int, belt string, from, to string) GameEvent {
	return GameEvent{
		Round:    round,
		Phase:    "Executing",
		Register: register,
		Player:   player,
		Type:     EventConveyor,
		Details:  fmt.Sprintf("%s rides %s: %s → %s", PlayerName(player), belt, from, to),
	}
}

func NewRotateEvent(round int, register int, player int, sense string, facing string, reason string) GameEvent {
	return GameEvent{
		Round:    round,
		Phase:    "Executing",
		Register: register,
		Player:   player,
		Type:     EventRotate,
		Details:  fmt.Sprintf("%s turns %s to face %s (%s)", PlayerName(player), sense, facing, reason),
	}
}

func NewPitEvent(round int, register int, player int, at string) GameEvent {
	return GameEvent{
		Round:    round,
		Phase:    "Executing",
		Register: register,
		Player:   player,
		Type:     EventPit,
		Details:  fmt.Sprintf("%s falls into a pit at %s", PlayerName(player), at),
	}
}

func NewFlagEvent(round int, register int, player int, flag int) GameEvent {
	return GameEvent{
		Round:    round,
		Phase:    "Executing",
		Register: register,
		Player:   player,
		Type:     EventFlag,
		Details:  fmt.Sprintf("%s touches flag %d", PlayerName(player), flag),
	}
}

func NewFlagDeniedEvent(round int, register int, player int, flag int) GameEvent {
	return GameEvent{
		Round:    round,
		Phase:    "Executing",
		Register: register,
		Player:   player,
		Type:     EventFlagDenied,
		Details:  fmt.Sprintf("%s reaches flag %d out of order", PlayerName(player), flag),
	}
}

func NewDamageEvent(round int, phase string, player int, damage int) GameEvent {
	return GameEvent{
		Round:    round,
		Phase:    phase,
		Register: -1,
		Player:   player,
		Type:     EventDamage,
		Details:  fmt.Sprintf("%s takes damage (now %d)", PlayerName(player), damage),
	}
}

func NewLifeLostEvent(round int, phase string, player int, lives int, respawn string) GameEvent {
	return GameEvent{
		Round:    round,
		Phase:    phase,
		Register: -1,
		Player:   player,
		Type:     EventLifeLost,
		Details:  fmt.Sprintf("%s loses a life (%d left) and respawns at %s", PlayerName(player), lives, respawn),
	}
}

func NewEliminatedEvent(round int, phase string, player int) GameEvent {
	return GameEvent{
		Round:    round,
		Phase:    phase,
		Register: -1,
		Player:   player,
		Type:     EventEliminated,
		Details:  fmt.Sprintf("%s is eliminated", PlayerName(player)),
	}
}

func NewRecycleEvent(round int, count int, deckSize int) GameEvent {
	return GameEvent{
		Round:    round,
		Phase:    "Cleanup",
		Register: -1,
		Player:   -1,
		Type:     EventRecycle,
		Details:  fmt.Sprintf("%d card(s) recycled, deck reshuffled (%d cards)", count, deckSize),
	}
}

func NewWinEvent(round int, phase string, winner int, reason string) GameEvent {
	return GameEvent{
		Round:    round,
		Phase:    phase,
		Register: -1,
		Player:   winner,
		Type:     EventWin,
		Details:  fmt.Sprintf("%s wins! (%s)", PlayerName(winner), reason),
	}
}

func NewGameOverEvent(round int, phase string, result string) GameEvent {
	return GameEvent{
		Round:    round,
		Phase:    phase,
		Register: -1,
		Player:   -1,
		Type:     EventGameOver,
		Details:  result,
	}
}
