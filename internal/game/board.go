package game

import "fmt"

// Board is the static terrain of one game. It is read-only once play starts
// and may be shared by every resolution within a register.
type Board struct {
	Name   string
	Width  int
	Height int
	Spawns []Position

	walls  map[Position]Wall
	movers map[Position]Mover
	events map[Position]Event
}

// NewBoard creates an empty board. Positions with no terrain are plain floor.
func NewBoard(name string, width, height int) *Board {
	return &Board{
		Name:   name,
		Width:  width,
		Height: height,
		walls:  make(map[Position]Wall),
		movers: make(map[Position]Mover),
		events: make(map[Position]Event),
	}
}

// Contains reports whether p lies on the board.
func (b *Board) Contains(p Position) bool {
	return p.X >= 0 && p.X < b.Width && p.Y >= 0 && p.Y < b.Height
}

// WallAt returns the wall on tile p, if any.
func (b *Board) WallAt(p Position) (Wall, bool) {
	w, ok := b.walls[p]
	return w, ok
}

// MoverAt returns the conveyor on tile p, if any.
func (b *Board) MoverAt(p Position) (Mover, bool) {
	m, ok := b.movers[p]
	return m, ok
}

// EventAt returns the event on tile p, if any.
func (b *Board) EventAt(p Position) (Event, bool) {
	e, ok := b.events[p]
	return e, ok
}

// TerrainAt returns the type tag of layer at p. A miss is normal floor, not an error.
func (b *Board) TerrainAt(layer Layer, p Position) (string, bool) {
	switch layer {
	case LayerWalls:
		if w, ok := b.walls[p]; ok {
			return w.Tag(), true
		}
	case LayerMovers:
		if m, ok := b.movers[p]; ok {
			return m.Tag(), true
		}
	case LayerEvents:
		if e, ok := b.events[p]; ok {
			return e.Tag(), true
		}
	}
	return "", false
}

// Place parses tag for layer and puts it on tile p. Each tile holds at most
// one entry per layer.
func (b *Board) Place(layer Layer, p Position, tag string) error {
	switch layer {
	case LayerWalls:
		w, err := parseWall(tag)
		if err != nil {
			return err
		}
		return b.SetWall(p, w)
	case LayerMovers:
		m, err := parseMover(tag)
		if err != nil {
			return err
		}
		return b.SetMover(p, m)
	case LayerEvents:
		e, err := parseEvent(tag)
		if err != nil {
			return err
		}
		return b.SetEvent(p, e)
	default:
		return fmt.Errorf("unknown layer %q", layer)
	}
}

func (b *Board) SetWall(p Position, w Wall) error {
	if existing, ok := b.walls[p]; ok {
		return fmt.Errorf("%s %s: tile already holds %s", LayerWalls, p, existing.Tag())
	}
	b.walls[p] = w
	return nil
}

func (b *Board) SetMover(p Position, m Mover) error {
	if existing, ok := b.movers[p]; ok {
		return fmt.Errorf("%s %s: tile already holds %s", LayerMovers, p, existing.Tag())
	}
	if m.IsCorner() {
		if _, legal := cornerTurns[[2]Direction{m.In, m.Out}]; !legal {
			return fmt.Errorf("%s %s: belt cannot bend from %s to %s", LayerMovers, p, m.In, m.Out)
		}
	}
	b.movers[p] = m
	return nil
}

func (b *Board) SetEvent(p Position, e Event) error {
	if existing, ok := b.events[p]; ok {
		return fmt.Errorf("%s %s: tile already holds %s", LayerEvents, p, existing.Tag())
	}
	if e.Kind == EventFlag && (e.Flag < 1 || e.Flag > FlagCount) {
		return fmt.Errorf("%s %s: flag %d: %w", LayerEvents, p, e.Flag, ErrInvalidFlagNumber)
	}
	b.events[p] = e
	return nil
}

// FlagPositions returns where each flag lies, keyed by flag number.
func (b *Board) FlagPositions() map[int]Position {
	out := make(map[int]Position)
	for p, e := range b.events {
		if e.Kind == EventFlag {
			out[e.Flag] = p
		}
	}
	return out
}

// TileCount returns how many entries a layer holds.
func (b *Board) TileCount(layer Layer) int {
	switch layer {
	case LayerWalls:
		return len(b.walls)
	case LayerMovers:
		return len(b.movers)
	case LayerEvents:
		return len(b.events)
	}
	return 0
}
