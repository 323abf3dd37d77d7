package game

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/peterkuimelis/roborally/internal/log"
)

// ScriptedController is a PlayerController that follows a predefined script.
// Used in tests to deterministically drive the game.
type ScriptedController struct {
	programs   [][]int
	programPos int

	powerDowns []bool
	powerPos   int

	events  []log.GameEvent
	onEvent func(log.GameEvent)
}

func NewScriptedController() *ScriptedController {
	return &ScriptedController{}
}

// AddProgram queues the hand slots to play in one round.
func (sc *ScriptedController) AddProgram(slots ...int) *ScriptedController {
	sc.programs = append(sc.programs, slots)
	return sc
}

func (sc *ScriptedController) AddPowerDown(down bool) *ScriptedController {
	sc.powerDowns = append(sc.powerDowns, down)
	return sc
}

func (sc *ScriptedController) ChooseProgram(ctx context.Context, state *GameState, player int) ([]int, error) {
	if sc.programPos >= len(sc.programs) {
		p, err := state.Player(player)
		if err != nil {
			return nil, err
		}
		return FirstAvailablePolicy{}.ChooseProgram(p.Hand), nil
	}
	slots := sc.programs[sc.programPos]
	sc.programPos++
	return slots, nil
}

func (sc *ScriptedController) ChoosePowerDown(ctx context.Context, state *GameState, player int) (bool, error) {
	if sc.powerPos >= len(sc.powerDowns) {
		return false, nil
	}
	down := sc.powerDowns[sc.powerPos]
	sc.powerPos++
	return down, nil
}

func (sc *ScriptedController) Notify(ctx context.Context, event log.GameEvent) error {
	sc.events = append(sc.events, event)
	if sc.onEvent != nil {
		sc.onEvent(event)
	}
	return nil
}

// openBoard returns a hazard-free board with the given spawns.
func openBoard(spawns ...Position) *Board {
	b := NewBoard("open", 20, 20)
	b.Spawns = spawns
	return b
}

// stackDeck reorders the game deck so the next deal hands each seat the
// listed card types first, in slot order. Hands shorter than HandSize are
// padded with whatever is left.
func stackDeck(t *testing.T, d *Deck, hands ...[]CardType) {
	t.Helper()
	pool := d.Cards()
	var top []*Card // draw order

	take := func(match func(*Card) bool) *Card {
		for i, c := range pool {
			if match(c) {
				pool = append(pool[:i], pool[i+1:]...)
				return c
			}
		}
		return nil
	}

	for _, hand := range hands {
		require.LessOrEqual(t, len(hand), HandSize)
		for _, ct := range hand {
			want := ct
			c := take(func(c *Card) bool { return c.Type == want })
			require.NotNil(t, c, "no %s left to stack", ct)
			top = append(top, c)
		}
		for i := len(hand); i < HandSize; i++ {
			top = append(top, take(func(*Card) bool { return true }))
		}
	}
	for i := len(top) - 1; i >= 0; i-- {
		pool = append(pool, top[i])
	}
	*d = *NewDeckFromCards(pool, rand.New(rand.NewSource(1)))
}

func repeatCard(ct CardType, n int) []CardType {
	out := make([]CardType, n)
	for i := range out {
		out[i] = ct
	}
	return out
}

func newTestGame(t *testing.T, cfg GameConfig) (*Game, *log.MemoryLogger) {
	t.Helper()
	logger := log.NewMemoryLogger()
	cfg.Logger = logger
	if cfg.Seed == 0 {
		cfg.Seed = 42
	}
	g, err := NewGame(cfg)
	require.NoError(t, err)
	return g, logger
}
