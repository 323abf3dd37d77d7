package game

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Snapshot is the serializable state of a game between rounds.
type Snapshot struct {
	ID      uuid.UUID        `json:"id"`
	Board   string           `json:"board"`
	Round   int              `json:"round"`
	Deck    []Card           `json:"deck"` // top of deck last
	Players []PlayerSnapshot `json:"players"`
	Winner  int              `json:"winner"`
	Over    bool             `json:"over"`
	Result  string           `json:"result,omitempty"`
}

// PlayerSnapshot is one robot's persisted state. Empty hand slots are null.
type PlayerSnapshot struct {
	Name        string          `json:"name"`
	Human       bool            `json:"human"`
	Position    Position        `json:"position"`
	Backup      Position        `json:"backup"`
	Facing      string          `json:"facing"`
	Life        int             `json:"life"`
	Damage      int             `json:"damage"`
	Flags       [FlagCount]bool `json:"flags"`
	Hand        []*Card         `json:"hand"`
	PoweredDown bool            `json:"powered_down"`
	OnConveyor  bool            `json:"on_conveyor"`
	Eliminated  bool            `json:"eliminated"`
}

// Snapshot captures the game between rounds. Programs are always empty at
// that point so they are not stored.
func (g *Game) Snapshot() ([]byte, error) {
	gs := g.State
	if gs.Phase != PhaseDealing && gs.Phase != PhaseOver {
		return nil, fmt.Errorf("snapshot during %s: %w", gs.Phase, ErrWrongPhase)
	}

	snap := Snapshot{
		ID:     gs.ID,
		Board:  gs.Board.Name,
		Round:  gs.Round,
		Winner: gs.Winner,
		Over:   gs.Over,
		Result: gs.Result,
	}
	for _, c := range gs.Deck.Cards() {
		snap.Deck = append(snap.Deck, *c)
	}
	for _, p := range gs.Players {
		ps := PlayerSnapshot{
			Name:        p.Name,
			Human:       p.Human,
			Position:    p.Position,
			Backup:      p.Backup,
			Facing:      p.Facing().String(),
			Life:        p.Life,
			Damage:      p.Damage,
			Flags:       p.Flags,
			Hand:        make([]*Card, HandSize),
			PoweredDown: p.PoweredDown,
			OnConveyor:  p.OnConveyor,
			Eliminated:  p.Eliminated,
		}
		copy(ps.Hand, p.Hand[:])
		snap.Players = append(snap.Players, ps)
	}
	return json.MarshalIndent(snap, "", "  ")
}

// RestoreGame rebuilds a game from a snapshot. cfg supplies the board,
// controllers and logger; its player list is replaced by the snapshot's
// seats, keeping any controllers set on matching seats.
func RestoreGame(data []byte, cfg GameConfig) (*Game, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if cfg.Board == nil || cfg.Board.Name != snap.Board {
		return nil, fmt.Errorf("restore snapshot: needs board %q", snap.Board)
	}

	setups := make([]PlayerSetup, len(snap.Players))
	for i, ps := range snap.Players {
		setups[i] = PlayerSetup{Name: ps.Name, Human: ps.Human}
		if i < len(cfg.Players) {
			setups[i].Controller = cfg.Players[i].Controller
		}
	}
	cfg.Players = setups

	g, err := NewGame(cfg)
	if err != nil {
		return nil, fmt.Errorf("restore snapshot: %w", err)
	}
	gs := g.State
	gs.ID = snap.ID
	gs.Round = snap.Round
	gs.Winner = snap.Winner
	gs.Over = snap.Over
	gs.Result = snap.Result
	if snap.Over {
		gs.Phase = PhaseOver
	}

	deck := make([]*Card, len(snap.Deck))
	for i := range snap.Deck {
		c := snap.Deck[i]
		deck[i] = &c
	}
	gs.Deck = NewDeckFromCards(deck, g.rng)

	for i, ps := range snap.Players {
		p := gs.Players[i]
		facing, err := ParseDirection(ps.Facing)
		if err != nil {
			return nil, fmt.Errorf("restore P%d: %w", i+1, err)
		}
		if len(ps.Hand) > HandSize {
			return nil, fmt.Errorf("restore P%d: hand of %d slots", i+1, len(ps.Hand))
		}
		p.Position = ps.Position
		p.Backup = ps.Backup
		p.SetFacing(facing)
		p.Life = ps.Life
		p.Damage = ps.Damage
		p.Flags = ps.Flags
		copy(p.Hand[:], ps.Hand)
		p.PoweredDown = ps.PoweredDown
		p.OnConveyor = ps.OnConveyor
		p.Eliminated = ps.Eliminated
	}

	if total := gs.CardsInCirculation(); total != DeckSize {
		return nil, fmt.Errorf("restore snapshot: %d cards in circulation, want %d", total, DeckSize)
	}
	if err := ValidatePopulation(gs.AllCards()); err != nil {
		return nil, fmt.Errorf("restore snapshot: %w", err)
	}
	return g, nil
}
