package game

import (
	"context"
	"math/rand"

	"github.com/peterkuimelis/roborally/internal/log"
)

// PlayerController is the interface that every seat's decision maker
// implements: a terminal over TCP, an MCP agent, or a bot.
type PlayerController interface {
	// ChooseProgram picks ProgramSize hand slots, in register order.
	ChooseProgram(ctx context.Context, state *GameState, player int) ([]int, error)

	// ChoosePowerDown asks whether the robot powers down.
	ChoosePowerDown(ctx context.Context, state *GameState, player int) (bool, error)

	// Notify sends a game event notification (no response needed).
	Notify(ctx context.Context, event log.GameEvent) error
}

// ProgramPolicy chooses ProgramSize cards from a dealt hand.
type ProgramPolicy interface {
	ChooseProgram(hand [HandSize]*Card) []int
}

// FirstAvailablePolicy takes the first filled hand slots.
type FirstAvailablePolicy struct{}

func (FirstAvailablePolicy) ChooseProgram(hand [HandSize]*Card) []int {
	var slots []int
	for i, c := range hand {
		if len(slots) == ProgramSize {
			break
		}
		if c != nil {
			slots = append(slots, i)
		}
	}
	return slots
}

// DefaultPowerDownChance is the probability a bot powers down each round.
const DefaultPowerDownChance = 0.05

// BotController plays a seat with a ProgramPolicy and a fixed power-down chance.
type BotController struct {
	Policy          ProgramPolicy
	PowerDownChance float64
	rng             *rand.Rand
}

// NewBotController creates a bot. A nil policy means FirstAvailablePolicy.
func NewBotController(policy ProgramPolicy, powerDownChance float64, rng *rand.Rand) *BotController {
	if policy == nil {
		policy = FirstAvailablePolicy{}
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	return &BotController{Policy: policy, PowerDownChance: powerDownChance, rng: rng}
}

// ChooseProgram implements PlayerController.
func (b *BotController) ChooseProgram(ctx context.Context, state *GameState, player int) ([]int, error) {
	p, err := state.Player(player)
	if err != nil {
		return nil, err
	}
	return b.Policy.ChooseProgram(p.Hand), nil
}

// ChoosePowerDown implements PlayerController.
func (b *BotController) ChoosePowerDown(ctx context.Context, state *GameState, player int) (bool, error) {
	return b.rng.Float64() < b.PowerDownChance, nil
}

// Notify implements PlayerController.
func (b *BotController) Notify(ctx context.Context, event log.GameEvent) error {
	return nil
}
