package game

import (
	"fmt"

	"github.com/google/uuid"
)

// Phase is a step of the round state machine.
type Phase int

const (
	PhaseDealing Phase = iota
	PhaseSelecting
	PhasePowerDown
	PhaseExecuting
	PhaseCleanup
	PhaseOver
)

func (p Phase) String() string {
	switch p {
	case PhaseDealing:
		return "Dealing"
	case PhaseSelecting:
		return "Selecting"
	case PhasePowerDown:
		return "Power Down"
	case PhaseExecuting:
		return "Executing"
	case PhaseCleanup:
		return "Cleanup"
	case PhaseOver:
		return "Game Over"
	default:
		return "None"
	}
}

// EliminationPolicy decides what happens when a robot runs out of lives.
type EliminationPolicy int

const (
	// EliminationEndsGame ends the game on the first elimination.
	EliminationEndsGame EliminationPolicy = iota
	// EliminationRemovesPlayer benches the robot; play continues while two or more remain.
	EliminationRemovesPlayer
)

func (e EliminationPolicy) String() string {
	if e == EliminationRemovesPlayer {
		return "remove-player"
	}
	return "end-game"
}

// ParseEliminationPolicy parses the String form of a policy.
func ParseEliminationPolicy(s string) (EliminationPolicy, error) {
	switch s {
	case "end-game", "":
		return EliminationEndsGame, nil
	case "remove-player":
		return EliminationRemovesPlayer, nil
	}
	return EliminationEndsGame, fmt.Errorf("unknown elimination policy %q", s)
}

// GameState holds the complete state of a game.
type GameState struct {
	ID       uuid.UUID
	Board    *Board
	Deck     *Deck
	Players  []*Player
	Round    int // 1-based round counter
	Phase    Phase
	Register int // register being executed, -1 outside execution

	// Game result
	Winner int // seat index, or -1 (no winner yet)
	Over   bool
	Result string
}

// Player returns the player in seat id.
func (gs *GameState) Player(id int) (*Player, error) {
	if id < 0 || id >= len(gs.Players) {
		return nil, fmt.Errorf("player %d: %w", id, ErrUnknownPlayer)
	}
	return gs.Players[id], nil
}

// ActivePlayers returns the players still in the game, in seat order.
func (gs *GameState) ActivePlayers() []*Player {
	var result []*Player
	for _, p := range gs.Players {
		if !p.Eliminated {
			result = append(result, p)
		}
	}
	return result
}

// AllCards gathers the deck, every hand and every program.
func (gs *GameState) AllCards() []*Card {
	cards := gs.Deck.Cards()
	for _, p := range gs.Players {
		for _, c := range p.Hand {
			if c != nil {
				cards = append(cards, c)
			}
		}
		for _, sel := range p.Program {
			cards = append(cards, sel.Card)
		}
	}
	return cards
}

// CardsInCirculation counts deck, hand and program cards. Outside of a deal
// this is always DeckSize.
func (gs *GameState) CardsInCirculation() int {
	total := gs.Deck.Len()
	for _, p := range gs.Players {
		total += p.HandCount() + len(p.Program)
	}
	return total
}
