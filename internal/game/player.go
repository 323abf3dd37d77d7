package game

import (
	"fmt"
	"strings"
)

const (
	HandSize     = 9
	ProgramSize  = 5
	StartingLife = 3
	MaxDamage    = 10
	FlagCount    = 4
	MaxPlayers   = 4
)

// Color identifies a robot on screen.
type Color string

const (
	ColorRed   Color = "red"
	ColorGreen Color = "green"
	ColorBlue  Color = "blue"
	ColorPink  Color = "pink"
)

// PlayerColors are assigned to seats in order.
var PlayerColors = []Color{ColorRed, ColorGreen, ColorBlue, ColorPink}

// Selection is one programmed register: the card and the hand slot it came from.
type Selection struct {
	Card      *Card `json:"card"`
	HandIndex int   `json:"hand_index"`
}

// Player represents one robot's entire state.
type Player struct {
	ID    int
	Name  string
	Color Color
	Human bool

	Position Position
	Backup   Position // respawn point
	rotation int      // 0 = South, 1 = East, 2 = North, 3 = West

	Life   int
	Damage int
	Flags  [FlagCount]bool

	Hand    [HandSize]*Card // nil slots are empty
	Program []Selection     // registers in order, at most ProgramSize

	LockedIn    bool
	PoweredDown bool

	// OnConveyor is set when the last tile resolution carried the robot on a
	// belt; corner belts only turn a robot that arrived this way.
	OnConveyor bool
	Eliminated bool
}

// NewPlayer creates a robot at spawn, facing North.
func NewPlayer(id int, name string, color Color, spawn Position, human bool) *Player {
	return &Player{
		ID:       id,
		Name:     name,
		Color:    color,
		Human:    human,
		Position: spawn,
		Backup:   spawn,
		rotation: rotationIndexOf(North),
		Life:     StartingLife,
	}
}

// Facing returns the direction the robot points.
func (p *Player) Facing() Direction {
	return rotationFacing[p.rotation]
}

// SetFacing points the robot in d.
func (p *Player) SetFacing(d Direction) {
	p.rotation = rotationIndexOf(d)
}

// Rotate turns the robot a quarter turn.
func (p *Player) Rotate(r Rotation) {
	if r == RotateClockwise {
		p.rotation = floorMod(p.rotation-1, 4)
	} else {
		p.rotation = floorMod(p.rotation+1, 4)
	}
}

// Move steps the robot up to steps tiles in dir, checking walls before every
// step. A blocked step ends the move without error. Returns the steps taken.
func (p *Player) Move(board *Board, dir Direction, steps int) int {
	taken := 0
	for i := 0; i < steps; i++ {
		if !CanMove(board, p.Position, dir, 1) {
			break
		}
		p.Position = p.Position.Step(dir, 1)
		taken++
	}
	return taken
}

// Respawn returns the robot to its backup position.
func (p *Player) Respawn() {
	p.Position = p.Backup
}

// SubtractLife removes one life and respawns the robot. It reports whether
// the robot has run out of lives.
func (p *Player) SubtractLife() bool {
	p.Life--
	p.Respawn()
	return p.Life <= 0
}

// TakeDamage adds one damage. At MaxDamage the robot loses a life and damage
// stays clamped at MaxDamage.
func (p *Player) TakeDamage() (lostLife, outOfLives bool) {
	p.Damage++
	if p.Damage >= MaxDamage {
		outOfLives = p.SubtractLife()
		p.Damage = MaxDamage
		return true, outOfLives
	}
	return false, false
}

// AddFlag marks flag n (1..4) as held. Flags are collected in order: while
// an earlier flag is missing the call has no effect.
func (p *Player) AddFlag(n int) error {
	if n < 1 || n > FlagCount {
		return fmt.Errorf("add flag %d: %w", n, ErrInvalidFlagNumber)
	}
	if p.CanTakeFlag(n) {
		p.Flags[n-1] = true
	}
	return nil
}

// CanTakeFlag reports whether every flag before n is already held.
func (p *Player) CanTakeFlag(n int) bool {
	if n < 1 || n > FlagCount {
		return false
	}
	for i := 0; i < n-1; i++ {
		if !p.Flags[i] {
			return false
		}
	}
	return true
}

// FlagsHeld counts the flags held.
func (p *Player) FlagsHeld() int {
	count := 0
	for _, f := range p.Flags {
		if f {
			count++
		}
	}
	return count
}

// HasAllFlags reports whether all four flags are held.
func (p *Player) HasAllFlags() bool {
	return p.FlagsHeld() == FlagCount
}

// HasWon reports whether the last flag is held. Flag gating means this
// implies the others.
func (p *Player) HasWon() bool {
	return p.Flags[FlagCount-1]
}

// Status is a short human-readable summary of life, damage and flags.
func (p *Player) Status() string {
	if p.Life <= 0 {
		return "You are dead"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Life: %d, Damage: %d", p.Life, p.Damage)
	switch held := p.FlagsHeld(); {
	case held == FlagCount:
		sb.WriteString("\n You have all flags")
	case held > 1:
		fmt.Fprintf(&sb, "\n You have %d flags", held)
	case held == 1:
		sb.WriteString("\n You have flag 1")
	}
	return sb.String()
}

// --- Hand and program ---

// EmptySlots returns the hand indices with no card.
func (p *Player) EmptySlots() []int {
	var slots []int
	for i, c := range p.Hand {
		if c == nil {
			slots = append(slots, i)
		}
	}
	return slots
}

// HandCount returns the number of cards in hand.
func (p *Player) HandCount() int {
	return HandSize - len(p.EmptySlots())
}

// SelectCard moves the card in hand slot i to the end of the program.
func (p *Player) SelectCard(i int) error {
	if i < 0 || i >= HandSize {
		return fmt.Errorf("select slot %d: %w", i, ErrInvalidHandIndex)
	}
	if len(p.Program) >= ProgramSize {
		return fmt.Errorf("select slot %d: %w", i, ErrSelectionFull)
	}
	if p.Hand[i] == nil {
		return fmt.Errorf("select slot %d: %w", i, ErrEmptySlot)
	}
	p.Program = append(p.Program, Selection{Card: p.Hand[i], HandIndex: i})
	p.Hand[i] = nil
	return nil
}

// DeselectCard returns the programmed card that came from hand slot i.
func (p *Player) DeselectCard(i int) error {
	if i < 0 || i >= HandSize {
		return fmt.Errorf("deselect slot %d: %w", i, ErrInvalidHandIndex)
	}
	for k, sel := range p.Program {
		if sel.HandIndex == i {
			p.Hand[i] = sel.Card
			p.Program = append(p.Program[:k], p.Program[k+1:]...)
			return nil
		}
	}
	return fmt.Errorf("deselect slot %d: %w", i, ErrNotSelected)
}

// ProgramCard returns the card in register r.
func (p *Player) ProgramCard(r int) *Card {
	if r < 0 || r >= len(p.Program) {
		return nil
	}
	return p.Program[r].Card
}

// ClearProgram empties the program and returns its cards.
func (p *Player) ClearProgram() []*Card {
	cards := make([]*Card, 0, len(p.Program))
	for _, sel := range p.Program {
		cards = append(cards, sel.Card)
	}
	p.Program = nil
	p.LockedIn = false
	return cards
}

// ReturnHand empties every hand slot and returns the cards.
func (p *Player) ReturnHand() []*Card {
	var cards []*Card
	for i, c := range p.Hand {
		if c != nil {
			cards = append(cards, c)
			p.Hand[i] = nil
		}
	}
	return cards
}
