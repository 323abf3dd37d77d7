package game

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peterkuimelis/roborally/internal/log"
)

func TestNewGameValidation(t *testing.T) {
	_, err := NewGame(GameConfig{Players: []PlayerSetup{{Human: true}}})
	assert.Error(t, err, "no board")

	_, err = NewGame(GameConfig{Board: openBoard(Position{})})
	assert.Error(t, err, "no players")

	_, err = NewGame(GameConfig{
		Board:   openBoard(Position{}),
		Players: []PlayerSetup{{Human: true}, {Human: true}},
	})
	assert.Error(t, err, "not enough spawns")
}

func TestNewGameSeats(t *testing.T) {
	g, _ := newTestGame(t, GameConfig{
		Board:   openBoard(DefaultSpawns...),
		Players: []PlayerSetup{{Name: "Ada", Human: true}, {}, {}},
	})
	gs := g.State

	require.Len(t, gs.Players, 3)
	assert.Equal(t, "Ada", gs.Players[0].Name)
	assert.Equal(t, "P2", gs.Players[1].Name)
	assert.Equal(t, ColorBlue, gs.Players[2].Color)
	assert.Equal(t, DefaultSpawns[1], gs.Players[1].Position)
	assert.Nil(t, g.Controllers[0], "humans without a controller are driven by input events")
	assert.IsType(t, &BotController{}, g.Controllers[1])
	assert.Equal(t, PhaseDealing, gs.Phase)
	assert.Equal(t, DeckSize, gs.CardsInCirculation())
}

func TestPriorityOrder(t *testing.T) {
	g, _ := newTestGame(t, GameConfig{
		Board:   openBoard(DefaultSpawns...),
		Players: []PlayerSetup{{Human: true}, {Human: true}, {Human: true}},
	})
	for i, prio := range []int{30, 450, 120} {
		g.State.Players[i].Program = []Selection{{Card: &Card{Type: CardMove1, Priority: prio}}}
	}

	order := g.PriorityOrder(0)
	require.Len(t, order, 3)
	assert.Equal(t, 450, order[0].ProgramCard(0).Priority)
	assert.Equal(t, 120, order[1].ProgramCard(0).Priority)
	assert.Equal(t, 30, order[2].ProgramCard(0).Priority)
}

func TestPriorityOrderPanicsOnMissingCard(t *testing.T) {
	g, _ := newTestGame(t, GameConfig{
		Board:   openBoard(DefaultSpawns...),
		Players: []PlayerSetup{{Human: true}},
	})
	assert.Panics(t, func() { g.PriorityOrder(0) })
}

func TestTwoPlayerRound(t *testing.T) {
	startA := Position{X: 2, Y: 2}
	startB := Position{X: 8, Y: 2}
	a := NewScriptedController().AddProgram(0, 1, 2, 3, 4)
	b := NewScriptedController().AddProgram(0, 1, 2, 3, 4)

	g, logger := newTestGame(t, GameConfig{
		Board:     openBoard(startA, startB),
		Players:   []PlayerSetup{{Human: true, Controller: a}, {Human: true, Controller: b}},
		MaxRounds: 1,
	})
	stackDeck(t, g.State.Deck,
		repeatCard(CardMove1, 5),
		[]CardType{CardMove3, CardBackUp, CardMove1, CardMove1, CardMove1},
	)

	// advance of each robot after every register, in tiles along +Y
	advance := [ProgramSize][2]int{}
	a.onEvent = func(e log.GameEvent) {
		if e.Type != log.EventExecuteCard {
			return
		}
		p := g.State.Players[e.Player]
		advance[e.Register][e.Player] = p.Position.Y - p.Backup.Y
	}

	winner, err := g.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, -1, winner)

	assert.Equal(t, [2]int{1, 3}, advance[0])
	assert.Equal(t, [2]int{2, 2}, advance[1])
	assert.Equal(t, [2]int{3, 3}, advance[2])
	assert.Equal(t, [2]int{5, 5}, advance[4])

	assert.Equal(t, startA.Step(North, 5), g.State.Players[0].Position)
	assert.Equal(t, startB.Step(North, 5), g.State.Players[1].Position)

	assert.Len(t, logger.EventsOfType(log.EventExecuteCard), 2*ProgramSize)
	assert.Len(t, logger.EventsOfType(log.EventRegister), ProgramSize)
	assert.Equal(t, "Round limit reached (1 rounds)", g.State.Result)
}

func TestEventDrivenRound(t *testing.T) {
	g, logger := newTestGame(t, GameConfig{
		Board:   openBoard(DefaultSpawns...),
		Players: []PlayerSetup{{Human: true}, {Human: true}},
	})
	gs := g.State

	assert.True(t, errors.Is(g.SelectCard(0, 0), ErrWrongPhase))

	require.NoError(t, g.StartRound())
	assert.Equal(t, PhaseSelecting, gs.Phase)
	assert.Equal(t, []int{0, 1}, g.Pending())
	assert.Equal(t, DeckSize-2*HandSize, gs.Deck.Len())
	assert.True(t, errors.Is(g.StartRound(), ErrWrongPhase))

	for i := 0; i < 4; i++ {
		require.NoError(t, g.SelectCard(0, i))
	}
	assert.True(t, errors.Is(g.LockIn(0), ErrIncompleteProgram))
	require.NoError(t, g.SelectCard(0, 8))
	assert.True(t, errors.Is(g.SelectCard(0, 5), ErrSelectionFull))
	assert.True(t, errors.Is(g.DeselectCard(0, 6), ErrNotSelected))
	require.NoError(t, g.DeselectCard(0, 8))
	require.NoError(t, g.SelectCard(0, 4))
	require.NoError(t, g.LockIn(0))
	assert.True(t, errors.Is(g.SelectCard(0, 5), ErrAlreadyLockedIn))
	assert.Equal(t, []int{1}, g.Pending())
	assert.True(t, errors.Is(g.SetPowerDown(0, true), ErrWrongPhase))

	for i := 0; i < ProgramSize; i++ {
		require.NoError(t, g.SelectCard(1, i))
	}
	require.NoError(t, g.LockIn(1))
	assert.Equal(t, PhasePowerDown, gs.Phase)
	assert.Equal(t, []int{0, 1}, g.Pending())

	require.NoError(t, g.SetPowerDown(1, true))
	assert.True(t, errors.Is(g.SetPowerDown(1, false), ErrWrongPhase))
	require.NoError(t, g.SetPowerDown(0, false))

	assert.Equal(t, PhaseDealing, gs.Phase)
	assert.Equal(t, 1, gs.Round)
	assert.True(t, gs.Players[1].PoweredDown)
	for _, p := range gs.Players {
		assert.Empty(t, p.Program)
		assert.Equal(t, HandSize-ProgramSize, p.HandCount())
	}
	assert.Equal(t, DeckSize, gs.CardsInCirculation())
	assert.Len(t, logger.EventsOfType(log.EventRecycle), 1)

	// the next deal only refills the empty slots
	require.NoError(t, g.StartRound())
	assert.Equal(t, DeckSize-2*HandSize, gs.Deck.Len())
	assert.Equal(t, 2, gs.Round)
}

func TestBotOnlyRoundResolvesImmediately(t *testing.T) {
	g, logger := newTestGame(t, GameConfig{
		Board:           openBoard(DefaultSpawns...),
		Players:         []PlayerSetup{{}, {}, {}, {}},
		PowerDownChance: -1,
	})

	require.NoError(t, g.StartRound())
	assert.Equal(t, PhaseDealing, g.State.Phase)
	assert.Len(t, logger.EventsOfType(log.EventLockIn), 4)
	assert.Len(t, logger.EventsOfType(log.EventExecuteCard), 4*ProgramSize)
	for _, e := range logger.EventsOfType(log.EventPowerDown) {
		assert.Contains(t, e.Details, "stays powered up")
	}
	assert.Equal(t, DeckSize, g.State.CardsInCirculation())
}

func TestCardsStayInCirculation(t *testing.T) {
	g, _ := newTestGame(t, GameConfig{
		Board:     openBoard(DefaultSpawns...),
		Players:   []PlayerSetup{{}, {}, {}, {}},
		MaxRounds: 25,
	})

	circulation := func(e log.GameEvent) {
		if e.Type == log.EventRecycle || e.Type == log.EventNewRound {
			assert.Equal(t, DeckSize, g.State.CardsInCirculation(), "round %d", e.Round)
		}
	}
	g.Controllers[0] = &notifyingBot{BotController: NewBotController(nil, 0.5, nil), notify: circulation}

	winner, err := g.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, -1, winner)
	assert.Equal(t, 25, g.State.Round)
	assert.True(t, g.State.Over)
	assert.Equal(t, PhaseOver, g.State.Phase)
}

type notifyingBot struct {
	*BotController
	notify func(log.GameEvent)
}

func (n *notifyingBot) Notify(ctx context.Context, e log.GameEvent) error {
	n.notify(e)
	return nil
}

func TestFlagWin(t *testing.T) {
	spawn := Position{X: 0, Y: 0}
	b := openBoard(spawn)
	for n := 1; n <= FlagCount; n++ {
		require.NoError(t, b.SetEvent(spawn.Step(North, n), Event{Kind: EventFlag, Flag: n}))
	}
	ctrl := NewScriptedController().AddProgram(0, 1, 2, 3, 4)

	g, logger := newTestGame(t, GameConfig{
		Board:   b,
		Players: []PlayerSetup{{Human: true, Controller: ctrl}},
	})
	stackDeck(t, g.State.Deck, repeatCard(CardMove1, 5))

	winner, err := g.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, winner)
	assert.True(t, g.State.Over)
	assert.Equal(t, PhaseOver, g.State.Phase)
	assert.Equal(t, 1, g.State.Round)

	assert.Len(t, logger.EventsOfType(log.EventFlag), FlagCount)
	assert.Len(t, logger.EventsOfType(log.EventWin), 1)
	assert.Len(t, logger.EventsOfType(log.EventExecuteCard), FlagCount, "play stops on the winning register")
	assert.Equal(t, log.EventGameOver, logger.LastEvent().Type)

	assert.True(t, errors.Is(g.StartRound(), ErrGameOver))
}

func pitGame(t *testing.T, policy EliminationPolicy, players int) (*Game, *log.MemoryLogger) {
	t.Helper()
	spawns := []Position{{X: 0, Y: 0}, {X: 19, Y: 0}, {X: 19, Y: 19}}
	b := openBoard(spawns[:players]...)
	require.NoError(t, b.SetEvent(Position{X: 0, Y: 1}, Event{Kind: EventPit}))

	setups := []PlayerSetup{{Human: true}}
	for i := 1; i < players; i++ {
		setups = append(setups, PlayerSetup{})
	}
	g, logger := newTestGame(t, GameConfig{
		Board:           b,
		Players:         setups,
		Elimination:     policy,
		PowerDownChance: -1,
	})
	stackDeck(t, g.State.Deck, repeatCard(CardMove1, 5))
	g.State.Players[0].Life = 1

	require.NoError(t, g.StartRound())
	for i := 0; i < ProgramSize; i++ {
		require.NoError(t, g.SelectCard(0, i))
	}
	require.NoError(t, g.LockIn(0))
	return g, logger
}

func TestEliminationEndsGame(t *testing.T) {
	g, logger := pitGame(t, EliminationEndsGame, 2)
	require.NoError(t, g.SetPowerDown(0, false))

	assert.True(t, g.State.Over)
	assert.Equal(t, -1, g.State.Winner)
	assert.Equal(t, "P1 ran out of lives", g.State.Result)
	assert.Len(t, logger.EventsOfType(log.EventPit), 1)
	assert.Len(t, logger.EventsOfType(log.EventEliminated), 1)
}

func TestEliminationRemovesPlayer(t *testing.T) {
	g, logger := pitGame(t, EliminationRemovesPlayer, 3)
	require.NoError(t, g.SetPowerDown(0, false))
	gs := g.State

	assert.False(t, gs.Over)
	assert.True(t, gs.Players[0].Eliminated)
	assert.Equal(t, 0, gs.Players[0].HandCount())
	assert.Len(t, gs.ActivePlayers(), 2)
	assert.Len(t, logger.EventsOfType(log.EventEliminated), 1)
	assert.Equal(t, DeckSize, gs.CardsInCirculation())

	// the eliminated seat no longer acts
	assert.True(t, errors.Is(g.SelectCard(0, 0), ErrPlayerEliminated))
	before := len(logger.EventsOfType(log.EventDeal))
	require.NoError(t, g.StartRound())
	assert.Len(t, logger.EventsOfType(log.EventDeal), before+2)
}

func TestLastRobotStandingWins(t *testing.T) {
	g, logger := pitGame(t, EliminationRemovesPlayer, 2)
	require.NoError(t, g.SetPowerDown(0, false))

	assert.True(t, g.State.Over)
	assert.Equal(t, 1, g.State.Winner)
	assert.Len(t, logger.EventsOfType(log.EventWin), 1)
}

func TestApplyDamage(t *testing.T) {
	g, logger := newTestGame(t, GameConfig{
		Board:   openBoard(DefaultSpawns...),
		Players: []PlayerSetup{{Human: true}, {Human: true}},
	})
	for i := 0; i < MaxDamage; i++ {
		require.NoError(t, g.ApplyDamage(1))
	}
	p := g.State.Players[1]
	assert.Equal(t, StartingLife-1, p.Life)
	assert.Equal(t, MaxDamage, p.Damage)
	assert.Len(t, logger.EventsOfType(log.EventDamage), MaxDamage)
	assert.Len(t, logger.EventsOfType(log.EventLifeLost), 1)

	assert.True(t, errors.Is(g.ApplyDamage(7), ErrUnknownPlayer))
}

func TestPowerDownEffect(t *testing.T) {
	var downed []int
	g, _ := newTestGame(t, GameConfig{
		Board:   openBoard(DefaultSpawns...),
		Players: []PlayerSetup{{Human: true}},
		PowerDownEffect: func(state *GameState, p *Player) {
			downed = append(downed, p.ID)
		},
	})
	require.NoError(t, g.StartRound())
	for i := 0; i < ProgramSize; i++ {
		require.NoError(t, g.SelectCard(0, i))
	}
	require.NoError(t, g.LockIn(0))
	require.NoError(t, g.SetPowerDown(0, true))
	assert.Equal(t, []int{0}, downed)
}

func TestRunHonorsContext(t *testing.T) {
	g, _ := newTestGame(t, GameConfig{
		Board:   openBoard(DefaultSpawns...),
		Players: []PlayerSetup{{}, {}},
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := g.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, g.State.Round)
}

func TestRunRequiresHumanController(t *testing.T) {
	g, _ := newTestGame(t, GameConfig{
		Board:   openBoard(DefaultSpawns...),
		Players: []PlayerSetup{{Human: true}},
	})
	_, err := g.Run(context.Background())
	assert.Error(t, err)
}

func TestScriptedFallbackOnBadProgram(t *testing.T) {
	ctrl := NewScriptedController().AddProgram(0, 0, 1, 2, 3)
	g, _ := newTestGame(t, GameConfig{
		Board:     openBoard(DefaultSpawns...),
		Players:   []PlayerSetup{{Human: true, Controller: ctrl}},
		MaxRounds: 1,
	})
	_, err := g.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, g.State.Round)
	assert.Equal(t, DeckSize, g.State.CardsInCirculation())
}

func TestRunUsesScriptedPowerDowns(t *testing.T) {
	ctrl := NewScriptedController().AddPowerDown(true).AddPowerDown(false)
	var downRounds []int
	g, logger := newTestGame(t, GameConfig{
		Board:     openBoard(DefaultSpawns...),
		Players:   []PlayerSetup{{Human: true, Controller: ctrl}},
		MaxRounds: 2,
		PowerDownEffect: func(state *GameState, p *Player) {
			downRounds = append(downRounds, state.Round)
		},
	})

	_, err := g.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{1}, downRounds)

	events := logger.EventsOfType(log.EventPowerDown)
	require.Len(t, events, 2)
	assert.Equal(t, "P1 powers down", events[0].Details)
	assert.Equal(t, "P1 stays powered up", events[1].Details)
	assert.False(t, g.State.Players[0].PoweredDown)
}
