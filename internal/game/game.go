package game

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"

	"github.com/google/uuid"
	"github.com/zyedidia/generic/mapset"

	"github.com/peterkuimelis/roborally/internal/log"
)

// PlayerSetup describes one seat at game creation.
type PlayerSetup struct {
	Name  string
	Human bool
	// Controller drives the seat in Run. Bots without one get a BotController;
	// humans without one must be driven through the input methods.
	Controller PlayerController
}

// PowerDownEffect is invoked for every robot that elects to power down.
// The rules engine itself gives power-down no gameplay effect.
type PowerDownEffect func(state *GameState, p *Player)

// GameConfig holds configuration for creating a new game.
type GameConfig struct {
	Board           *Board
	Players         []PlayerSetup
	Logger          log.EventLogger
	Seed            int64 // RNG seed (0 for random)
	MaxRounds       int   // Run stops after this many rounds (0 = safety limit)
	Elimination     EliminationPolicy
	PowerDownChance float64 // per-round bot chance; 0 = DefaultPowerDownChance, negative = never
	BotPolicy       ProgramPolicy
	PowerDownEffect PowerDownEffect
}

const defaultMaxRounds = 500

// Game orchestrates the round state machine: deal, select, power down,
// execute registers in priority order, clean up.
type Game struct {
	State       *GameState
	Controllers []PlayerController
	Logger      log.EventLogger

	ctx             context.Context
	rng             *rand.Rand
	maxRounds       int
	elimination     EliminationPolicy
	powerDownEffect PowerDownEffect

	pending mapset.Set[int] // seats whose input the current phase waits for
}

// NewGame creates a game from the given config. Robots start on the board's
// spawn positions in seat order.
func NewGame(cfg GameConfig) (*Game, error) {
	if cfg.Board == nil {
		return nil, errors.New("new game: no board")
	}
	if len(cfg.Players) == 0 || len(cfg.Players) > MaxPlayers {
		return nil, fmt.Errorf("new game: %d players, want 1-%d", len(cfg.Players), MaxPlayers)
	}
	if len(cfg.Board.Spawns) < len(cfg.Players) {
		return nil, fmt.Errorf("new game: board %q has %d spawn points for %d players", cfg.Board.Name, len(cfg.Board.Spawns), len(cfg.Players))
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Int63()
	}
	rng := rand.New(rand.NewSource(seed))

	logger := cfg.Logger
	if logger == nil {
		logger = log.NewMemoryLogger()
	}

	chance := cfg.PowerDownChance
	if chance == 0 {
		chance = DefaultPowerDownChance
	}

	maxRounds := cfg.MaxRounds
	if maxRounds == 0 {
		maxRounds = defaultMaxRounds // safety limit
	}

	gs := &GameState{
		ID:       uuid.New(),
		Board:    cfg.Board,
		Deck:     NewDeck(rng),
		Phase:    PhaseDealing,
		Register: -1,
		Winner:   -1,
	}

	controllers := make([]PlayerController, len(cfg.Players))
	for i, setup := range cfg.Players {
		name := setup.Name
		if name == "" {
			name = log.PlayerName(i)
		}
		gs.Players = append(gs.Players, NewPlayer(i, name, PlayerColors[i], cfg.Board.Spawns[i], setup.Human))

		controllers[i] = setup.Controller
		if controllers[i] == nil && !setup.Human {
			controllers[i] = NewBotController(cfg.BotPolicy, chance, rng)
		}
	}

	return &Game{
		State:           gs,
		Controllers:     controllers,
		Logger:          logger,
		ctx:             context.Background(),
		rng:             rng,
		maxRounds:       maxRounds,
		elimination:     cfg.Elimination,
		powerDownEffect: cfg.PowerDownEffect,
		pending:         mapset.New[int](),
	}, nil
}

// Run drives rounds through the seat controllers until the game is over or
// the round limit is reached. Returns the winner seat, or -1.
func (g *Game) Run(ctx context.Context) (int, error) {
	g.ctx = ctx
	gs := g.State

	for !gs.Over {
		if gs.Round >= g.maxRounds {
			g.endGame(-1, fmt.Sprintf("Round limit reached (%d rounds)", g.maxRounds))
			break
		}
		if err := g.StartRound(); err != nil {
			return gs.Winner, err
		}

		for gs.Phase == PhaseSelecting {
			id := g.nextPending()
			if err := g.programFromController(id); err != nil {
				return gs.Winner, err
			}
		}

		for gs.Phase == PhasePowerDown {
			id := g.nextPending()
			ctrl, err := g.controller(id)
			if err != nil {
				return gs.Winner, err
			}
			down, err := ctrl.ChoosePowerDown(g.ctx, gs, id)
			if err != nil {
				return gs.Winner, fmt.Errorf("P%d power down: %w", id+1, err)
			}
			if err := g.SetPowerDown(id, down); err != nil {
				return gs.Winner, err
			}
		}

		if err := g.ctx.Err(); err != nil {
			return -1, err
		}
	}

	return gs.Winner, nil
}

// --- Input events ---

// StartRound deals cards and opens the selection phase. When no human is
// seated the whole round resolves before StartRound returns.
func (g *Game) StartRound() error {
	gs := g.State
	if gs.Over {
		return ErrGameOver
	}
	if gs.Phase != PhaseDealing {
		return fmt.Errorf("start round during %s: %w", gs.Phase, ErrWrongPhase)
	}

	gs.Round++
	g.log(log.NewRoundEvent(gs.Round))
	g.log(log.NewPhaseChangeEvent(gs.Round, gs.Phase.String()))

	for _, p := range gs.ActivePlayers() {
		slots := p.EmptySlots()
		cards, err := gs.Deck.Draw(len(slots))
		if err != nil {
			return fmt.Errorf("deal to P%d: %w", p.ID+1, err)
		}
		for i, slot := range slots {
			p.Hand[slot] = cards[i]
		}
		p.LockedIn = false
		g.log(log.NewDealEvent(gs.Round, p.ID, len(cards)))
	}

	g.setPhase(PhaseSelecting)
	g.pending = mapset.New[int]()
	for _, p := range gs.ActivePlayers() {
		if p.Human {
			g.pending.Put(p.ID)
		}
	}
	if g.pending.Size() == 0 {
		return g.finishSelecting()
	}
	return nil
}

// SelectCard appends the card in hand slot handIndex to the player's program.
func (g *Game) SelectCard(id, handIndex int) error {
	p, err := g.inputPlayer(id, PhaseSelecting)
	if err != nil {
		return err
	}
	if p.LockedIn {
		return fmt.Errorf("P%d select: %w", id+1, ErrAlreadyLockedIn)
	}
	if err := p.SelectCard(handIndex); err != nil {
		return err
	}
	card := p.Program[len(p.Program)-1].Card
	g.log(log.NewSelectEvent(g.State.Round, id, card.Type.String(), handIndex))
	return nil
}

// DeselectCard removes the card that came from hand slot handIndex from the program.
func (g *Game) DeselectCard(id, handIndex int) error {
	p, err := g.inputPlayer(id, PhaseSelecting)
	if err != nil {
		return err
	}
	if p.LockedIn {
		return fmt.Errorf("P%d deselect: %w", id+1, ErrAlreadyLockedIn)
	}
	if err := p.DeselectCard(handIndex); err != nil {
		return err
	}
	g.log(log.NewDeselectEvent(g.State.Round, id, p.Hand[handIndex].Type.String(), handIndex))
	return nil
}

// LockIn commits a full program. Once every human has locked in, bots
// program and the power-down prompt opens.
func (g *Game) LockIn(id int) error {
	p, err := g.inputPlayer(id, PhaseSelecting)
	if err != nil {
		return err
	}
	if p.LockedIn {
		return fmt.Errorf("P%d lock in: %w", id+1, ErrAlreadyLockedIn)
	}
	if len(p.Program) != ProgramSize {
		return fmt.Errorf("P%d lock in with %d cards: %w", id+1, len(p.Program), ErrIncompleteProgram)
	}
	g.lockIn(p)
	return g.advance()
}

// SetPowerDown records a human's power-down decision. Once every human has
// decided, the registers execute and the round cleans up.
func (g *Game) SetPowerDown(id int, down bool) error {
	p, err := g.inputPlayer(id, PhasePowerDown)
	if err != nil {
		return err
	}
	if !g.pending.Has(id) {
		return fmt.Errorf("P%d power down already decided: %w", id+1, ErrWrongPhase)
	}
	g.recordPowerDown(p, down)
	return g.advance()
}

// ApplyDamage deals one point of damage to a robot.
func (g *Game) ApplyDamage(id int) error {
	gs := g.State
	if gs.Over {
		return ErrGameOver
	}
	p, err := gs.Player(id)
	if err != nil {
		return err
	}
	if p.Eliminated {
		return fmt.Errorf("P%d: %w", id+1, ErrPlayerEliminated)
	}
	lost, out := p.TakeDamage()
	g.log(log.NewDamageEvent(gs.Round, gs.Phase.String(), id, p.Damage))
	if lost {
		g.log(log.NewLifeLostEvent(gs.Round, gs.Phase.String(), id, p.Life, p.Position.String()))
	}
	if out {
		g.eliminate(p)
		return g.advance()
	}
	return nil
}

// Pending returns the seats the current phase is waiting on, in seat order.
func (g *Game) Pending() []int {
	var ids []int
	g.pending.Each(func(id int) {
		ids = append(ids, id)
	})
	sort.Ints(ids)
	return ids
}

// --- Phase transitions ---

// advance moves past an input phase once nobody is pending.
func (g *Game) advance() error {
	if g.State.Over || g.pending.Size() > 0 {
		return nil
	}
	switch g.State.Phase {
	case PhaseSelecting:
		return g.finishSelecting()
	case PhasePowerDown:
		return g.executeRound()
	}
	return nil
}

func (g *Game) finishSelecting() error {
	gs := g.State
	for _, p := range gs.ActivePlayers() {
		if p.Human || p.LockedIn {
			continue
		}
		ctrl, err := g.controller(p.ID)
		if err != nil {
			return err
		}
		slots, err := ctrl.ChooseProgram(g.ctx, gs, p.ID)
		if err != nil {
			return fmt.Errorf("P%d program: %w", p.ID+1, err)
		}
		if err := g.applyProgram(p, slots); err != nil {
			return fmt.Errorf("P%d program: %w", p.ID+1, err)
		}
		g.lockIn(p)
	}

	g.setPhase(PhasePowerDown)
	g.pending = mapset.New[int]()
	for _, p := range gs.ActivePlayers() {
		if p.Human {
			g.pending.Put(p.ID)
			continue
		}
		ctrl, err := g.controller(p.ID)
		if err != nil {
			return err
		}
		down, err := ctrl.ChoosePowerDown(g.ctx, gs, p.ID)
		if err != nil {
			return fmt.Errorf("P%d power down: %w", p.ID+1, err)
		}
		g.recordPowerDown(p, down)
	}
	if g.pending.Size() == 0 {
		return g.executeRound()
	}
	return nil
}

func (g *Game) executeRound() error {
	gs := g.State
	g.setPhase(PhaseExecuting)

	for r := 0; r < ProgramSize; r++ {
		gs.Register = r
		order := g.PriorityOrder(r)
		ids := make([]int, len(order))
		for i, p := range order {
			ids[i] = p.ID
		}
		g.log(log.NewRegisterEvent(gs.Round, r, ids))

		for _, p := range order {
			if p.Eliminated {
				continue
			}
			g.executeRegister(p, r)
			if gs.Over {
				return nil
			}
		}
	}
	gs.Register = -1

	g.cleanup()
	return nil
}

func (g *Game) cleanup() {
	gs := g.State
	g.setPhase(PhaseCleanup)

	var spent []*Card
	for _, p := range gs.Players {
		spent = append(spent, p.ClearProgram()...)
	}
	gs.Deck.RecycleAll(spent)
	g.log(log.NewRecycleEvent(gs.Round, len(spent), gs.Deck.Len()))

	g.setPhase(PhaseDealing)
}

// PriorityOrder returns the active robots for register r, highest card priority first.
func (g *Game) PriorityOrder(r int) []*Player {
	order := g.State.ActivePlayers()
	for _, p := range order {
		if p.ProgramCard(r) == nil {
			panic(fmt.Sprintf("PriorityOrder: P%d has no card in register %d", p.ID+1, r))
		}
	}
	sort.SliceStable(order, func(i, j int) bool {
		return order[i].ProgramCard(r).Priority > order[j].ProgramCard(r).Priority
	})
	return order
}

// executeRegister runs one robot's card, then the tile under it.
func (g *Game) executeRegister(p *Player, r int) {
	gs := g.State
	card := p.ProgramCard(r)

	from := describePose(p)
	ExecuteCard(gs.Board, p, card)
	g.log(log.NewExecuteCardEvent(gs.Round, r, p.ID, card.Type.String(), card.Priority, from, describePose(p)))

	out := ResolveTile(gs.Board, p)
	if out.OnMover {
		if out.CornerTurn {
			g.log(log.NewRotateEvent(gs.Round, r, p.ID, out.Turn.String(), p.Facing().String(), "conveyor corner"))
		}
		g.log(log.NewConveyorEvent(gs.Round, r, p.ID, out.Mover.Tag(), out.Start.String(), out.Start.Step(out.Mover.Out, out.Carried).String()))
	}
	switch {
	case out.FellInPit:
		g.log(log.NewPitEvent(gs.Round, r, p.ID, out.Event.Tag()))
		g.log(log.NewLifeLostEvent(gs.Round, gs.Phase.String(), p.ID, p.Life, p.Position.String()))
		if out.OutOfLives {
			g.eliminate(p)
		}
	case out.OnEvent && out.Event.Kind == EventRotateLeft:
		g.log(log.NewRotateEvent(gs.Round, r, p.ID, RotateCounterClockwise.String(), p.Facing().String(), "rotator"))
	case out.OnEvent && out.Event.Kind == EventRotateRight:
		g.log(log.NewRotateEvent(gs.Round, r, p.ID, RotateClockwise.String(), p.Facing().String(), "rotator"))
	case out.FlagTaken > 0:
		g.log(log.NewFlagEvent(gs.Round, r, p.ID, out.FlagTaken))
		if p.HasWon() {
			g.log(log.NewWinEvent(gs.Round, gs.Phase.String(), p.ID, "all flags collected"))
			g.endGame(p.ID, fmt.Sprintf("P%d wins: collected all %d flags", p.ID+1, FlagCount))
		}
	case out.FlagDenied > 0:
		g.log(log.NewFlagDeniedEvent(gs.Round, r, p.ID, out.FlagDenied))
	}
}

// eliminate applies the elimination policy to a robot with no lives left.
func (g *Game) eliminate(p *Player) {
	gs := g.State
	g.log(log.NewEliminatedEvent(gs.Round, gs.Phase.String(), p.ID))

	if g.elimination == EliminationEndsGame {
		g.endGame(-1, fmt.Sprintf("P%d ran out of lives", p.ID+1))
		return
	}

	p.Eliminated = true
	g.pending.Remove(p.ID)
	gs.Deck.RecycleAll(p.ReturnHand())

	active := gs.ActivePlayers()
	switch len(active) {
	case 0:
		g.endGame(-1, "No robots left")
	case 1:
		if len(gs.Players) > 1 {
			winner := active[0].ID
			g.log(log.NewWinEvent(gs.Round, gs.Phase.String(), winner, "last robot standing"))
			g.endGame(winner, fmt.Sprintf("P%d wins: last robot standing", winner+1))
		}
	}
}

func (g *Game) endGame(winner int, result string) {
	gs := g.State
	gs.Over = true
	gs.Winner = winner
	gs.Result = result
	gs.Phase = PhaseOver
	g.pending = mapset.New[int]()
	g.log(log.NewGameOverEvent(gs.Round, gs.Phase.String(), result))
}

// --- helpers ---

func (g *Game) setPhase(p Phase) {
	g.State.Phase = p
	g.log(log.NewPhaseChangeEvent(g.State.Round, p.String()))
}

func (g *Game) lockIn(p *Player) {
	p.LockedIn = true
	g.pending.Remove(p.ID)
	program := make([]string, len(p.Program))
	for i, sel := range p.Program {
		program[i] = sel.Card.String()
	}
	g.log(log.NewLockInEvent(g.State.Round, p.ID, program))
}

func (g *Game) recordPowerDown(p *Player, down bool) {
	p.PoweredDown = down
	g.pending.Remove(p.ID)
	g.log(log.NewPowerDownEvent(g.State.Round, p.ID, down))
	if down && g.powerDownEffect != nil {
		g.powerDownEffect(g.State, p)
	}
}

// applyProgram selects the given hand slots in order. On a bad choice the
// program is rolled back and the error returned.
func (g *Game) applyProgram(p *Player, slots []int) error {
	if len(slots)+len(p.Program) != ProgramSize {
		return fmt.Errorf("program of %d cards: %w", len(slots)+len(p.Program), ErrIncompleteProgram)
	}
	start := len(p.Program)
	for _, slot := range slots {
		if err := p.SelectCard(slot); err != nil {
			for len(p.Program) > start {
				_ = p.DeselectCard(p.Program[len(p.Program)-1].HandIndex)
			}
			return err
		}
	}
	return nil
}

// programFromController asks a human seat's controller for a program. An
// unusable answer falls back to the first available cards.
func (g *Game) programFromController(id int) error {
	gs := g.State
	ctrl, err := g.controller(id)
	if err != nil {
		return err
	}
	p := gs.Players[id]
	slots, err := ctrl.ChooseProgram(g.ctx, gs, id)
	if err != nil {
		return fmt.Errorf("P%d program: %w", id+1, err)
	}
	if err := g.applyProgram(p, slots); err != nil {
		if err := g.applyProgram(p, FirstAvailablePolicy{}.ChooseProgram(p.Hand)); err != nil {
			return fmt.Errorf("P%d program: %w", id+1, err)
		}
	}
	for _, sel := range p.Program {
		g.log(log.NewSelectEvent(gs.Round, id, sel.Card.Type.String(), sel.HandIndex))
	}
	return g.LockIn(id)
}

func (g *Game) controller(id int) (PlayerController, error) {
	if id < 0 || id >= len(g.Controllers) || g.Controllers[id] == nil {
		return nil, fmt.Errorf("P%d has no controller", id+1)
	}
	return g.Controllers[id], nil
}

func (g *Game) nextPending() int {
	ids := g.Pending()
	if len(ids) == 0 {
		panic(fmt.Sprintf("nextPending: %s phase waits on nobody", g.State.Phase))
	}
	return ids[0]
}

func (g *Game) inputPlayer(id int, phase Phase) (*Player, error) {
	gs := g.State
	if gs.Over {
		return nil, ErrGameOver
	}
	p, err := gs.Player(id)
	if err != nil {
		return nil, err
	}
	if p.Eliminated {
		return nil, fmt.Errorf("P%d: %w", id+1, ErrPlayerEliminated)
	}
	if gs.Phase != phase {
		return nil, fmt.Errorf("P%d during %s: %w", id+1, gs.Phase, ErrWrongPhase)
	}
	return p, nil
}

func (g *Game) log(event log.GameEvent) {
	g.Logger.Log(event)
	// Notify controllers (ignore errors for notifications)
	for _, c := range g.Controllers {
		if c != nil {
			_ = c.Notify(g.ctx, event)
		}
	}
}

func describePose(p *Player) string {
	return fmt.Sprintf("%s facing %s", p.Position, p.Facing())
}
