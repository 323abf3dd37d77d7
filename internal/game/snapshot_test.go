package game

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotRoundTrip(t *testing.T) {
	board := openBoard(Position{X: 3, Y: 3}, Position{X: 12, Y: 3})
	g, _ := newTestGame(t, GameConfig{Board: board, Players: []PlayerSetup{{Name: "Hammer Bot"}, {}}})
	require.NoError(t, g.StartRound())
	require.NoError(t, g.StartRound())
	require.Equal(t, PhaseDealing, g.State.Phase)

	data, err := g.Snapshot()
	require.NoError(t, err)

	r, err := RestoreGame(data, GameConfig{Board: board})
	require.NoError(t, err)

	assert.Equal(t, g.State.ID, r.State.ID)
	assert.Equal(t, 2, r.State.Round)
	assert.Equal(t, PhaseDealing, r.State.Phase)
	assert.Equal(t, g.State.Deck.Cards(), r.State.Deck.Cards())
	for i, p := range g.State.Players {
		q := r.State.Players[i]
		assert.Equal(t, p.Name, q.Name)
		assert.Equal(t, p.Position, q.Position)
		assert.Equal(t, p.Facing(), q.Facing())
		assert.Equal(t, p.Hand, q.Hand)
		assert.Equal(t, p.Flags, q.Flags)
		assert.Empty(t, q.Program)
	}
	assert.Equal(t, DeckSize, r.State.CardsInCirculation())

	// the restored game keeps playing
	require.NoError(t, r.StartRound())
	assert.Equal(t, 3, r.State.Round)
}

func TestSnapshotOnlyBetweenRounds(t *testing.T) {
	g, _ := newTestGame(t, GameConfig{
		Board:   openBoard(Position{X: 3, Y: 3}),
		Players: []PlayerSetup{{Human: true}},
	})
	require.NoError(t, g.StartRound())

	_, err := g.Snapshot()
	assert.ErrorIs(t, err, ErrWrongPhase)
}

func TestRestoreRejectsBadSnapshots(t *testing.T) {
	board := openBoard(Position{X: 3, Y: 3})
	g, _ := newTestGame(t, GameConfig{Board: board, Players: []PlayerSetup{{}}})
	require.NoError(t, g.StartRound())
	data, err := g.Snapshot()
	require.NoError(t, err)

	_, err = RestoreGame(data, GameConfig{Board: NewBoard("elsewhere", 20, 20)})
	assert.Error(t, err)

	_, err = RestoreGame([]byte("{"), GameConfig{Board: board})
	assert.Error(t, err)

	var snap Snapshot
	require.NoError(t, json.Unmarshal(data, &snap))
	snap.Deck = snap.Deck[1:]
	lost, err := json.Marshal(snap)
	require.NoError(t, err)
	_, err = RestoreGame(lost, GameConfig{Board: board})
	assert.ErrorContains(t, err, "circulation")

	require.NoError(t, json.Unmarshal(data, &snap))
	for i := range snap.Deck {
		snap.Deck[i] = Card{Type: CardMove3, Priority: 500}
	}
	forged, err := json.Marshal(snap)
	require.NoError(t, err)
	_, err = RestoreGame(forged, GameConfig{Board: board})
	assert.ErrorIs(t, err, ErrInvalidPopulation)

	// right count and priorities, one card's type swapped
	require.NoError(t, json.Unmarshal(data, &snap))
	snap.Deck[0].Type = (snap.Deck[0].Type + 1) % CardType(len(AllCardTypes()))
	swapped, err := json.Marshal(snap)
	require.NoError(t, err)
	_, err = RestoreGame(swapped, GameConfig{Board: board})
	assert.ErrorIs(t, err, ErrInvalidPopulation)

	require.NoError(t, json.Unmarshal(data, &snap))
	snap.Players[0].Facing = "Up"
	bad, err := json.Marshal(snap)
	require.NoError(t, err)
	_, err = RestoreGame(bad, GameConfig{Board: board})
	assert.Error(t, err)
}
