package game

import (
	"fmt"
	"strings"
)

// Layer names the three independent terrain layers of a board.
type Layer string

const (
	LayerWalls  Layer = "OWalls"
	LayerMovers Layer = "OMovers"
	LayerEvents Layer = "OEvents"
)

// AllLayers returns the layers in resolution order.
func AllLayers() []Layer {
	return []Layer{LayerWalls, LayerMovers, LayerEvents}
}

// --- Walls ---

// Wall sits on one side of a tile and blocks crossing that side in either direction.
type Wall struct {
	Side Direction
}

func (w Wall) Tag() string {
	return "Wall_" + w.Side.String()
}

// BlocksExit reports whether the wall on the origin tile stops leaving in dir.
func (w Wall) BlocksExit(dir Direction) bool {
	return w.Side == dir
}

// BlocksEntry reports whether the wall on the destination tile stops arriving
// while travelling in dir.
func (w Wall) BlocksEntry(dir Direction) bool {
	return w.Side == dir.Opposite()
}

func parseWall(tag string) (Wall, error) {
	dirName, ok := strings.CutPrefix(tag, "Wall_")
	if !ok {
		return Wall{}, fmt.Errorf("unknown wall type %q", tag)
	}
	d, err := ParseDirection(dirName)
	if err != nil {
		return Wall{}, fmt.Errorf("wall type %q: %w", tag, err)
	}
	return Wall{Side: d}, nil
}

// --- Conveyors ---

type ConveyorKind int

const (
	ConveyorNormal ConveyorKind = iota
	ConveyorExpress
)

func (k ConveyorKind) String() string {
	if k == ConveyorExpress {
		return "Express"
	}
	return "Normal"
}

// Steps is how many tiles a conveyor of this kind carries a robot.
func (k ConveyorKind) Steps() int {
	if k == ConveyorExpress {
		return 2
	}
	return 1
}

// Mover is a conveyor tile. In is the heading of the belt feeding the tile and
// Out the heading it leaves by; a straight belt has In == Out.
type Mover struct {
	Kind ConveyorKind
	In   Direction
	Out  Direction
}

// IsCorner reports whether the belt changes heading on this tile.
func (m Mover) IsCorner() bool {
	return m.In != m.Out
}

// cornerTurns enumerates every legal corner. A belt heading In that bends to
// heading Out turns a riding robot by the listed rotation.
var cornerTurns = map[[2]Direction]Rotation{
	{North, East}: RotateClockwise,
	{North, West}: RotateCounterClockwise,
	{East, South}: RotateClockwise,
	{East, North}: RotateCounterClockwise,
	{South, West}: RotateClockwise,
	{South, East}: RotateCounterClockwise,
	{West, North}: RotateClockwise,
	{West, South}: RotateCounterClockwise,
}

// Turn returns the rotation a corner applies. ok is false for straight belts.
func (m Mover) Turn() (rot Rotation, ok bool) {
	if !m.IsCorner() {
		return 0, false
	}
	rot, ok = cornerTurns[[2]Direction{m.In, m.Out}]
	if !ok {
		panic(fmt.Sprintf("conveyor %s has no corner turn", m.Tag()))
	}
	return rot, true
}

func (m Mover) Tag() string {
	if m.IsCorner() {
		return fmt.Sprintf("%s_Conveyor_%s%s", m.Kind, m.In, m.Out)
	}
	return fmt.Sprintf("%s_Conveyor_%s", m.Kind, m.Out)
}

func parseMover(tag string) (Mover, error) {
	var m Mover
	var rest string
	switch {
	case strings.HasPrefix(tag, "Normal_Conveyor_"):
		m.Kind = ConveyorNormal
		rest = strings.TrimPrefix(tag, "Normal_Conveyor_")
	case strings.HasPrefix(tag, "Express_Conveyor_"):
		m.Kind = ConveyorExpress
		rest = strings.TrimPrefix(tag, "Express_Conveyor_")
	default:
		return Mover{}, fmt.Errorf("unknown mover type %q", tag)
	}

	if d, err := ParseDirection(rest); err == nil {
		m.In, m.Out = d, d
		return m, nil
	}
	for _, in := range AllDirections() {
		first, ok := strings.CutPrefix(rest, in.String())
		if !ok {
			continue
		}
		out, err := ParseDirection(first)
		if err != nil {
			break
		}
		if _, legal := cornerTurns[[2]Direction{in, out}]; !legal {
			return Mover{}, fmt.Errorf("mover type %q: belt cannot bend from %s to %s", tag, in, out)
		}
		m.In, m.Out = in, out
		return m, nil
	}
	return Mover{}, fmt.Errorf("unknown mover type %q", tag)
}

// --- Events ---

type EventKind int

const (
	EventFloor EventKind = iota
	EventPit
	EventRotateLeft
	EventRotateRight
	EventFlag
)

// Event is the per-tile event classification. Flag is 1..4 for EventFlag.
type Event struct {
	Kind EventKind
	Flag int
}

func (e Event) Tag() string {
	switch e.Kind {
	case EventPit:
		return "Hole"
	case EventRotateLeft:
		return "RotateLeft"
	case EventRotateRight:
		return "RotateRight"
	case EventFlag:
		return fmt.Sprintf("Flag%d", e.Flag)
	default:
		return "Floor"
	}
}

func parseEvent(tag string) (Event, error) {
	switch tag {
	case "Floor":
		return Event{Kind: EventFloor}, nil
	case "Hole":
		return Event{Kind: EventPit}, nil
	case "RotateLeft":
		return Event{Kind: EventRotateLeft}, nil
	case "RotateRight":
		return Event{Kind: EventRotateRight}, nil
	case "Flag1", "Flag2", "Flag3", "Flag4":
		return Event{Kind: EventFlag, Flag: int(tag[4] - '0')}, nil
	}
	return Event{}, fmt.Errorf("unknown event type %q", tag)
}
