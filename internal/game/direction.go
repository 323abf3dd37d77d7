package game

import "fmt"

// Direction is a compass direction on the board. North is +Y.
type Direction int

const (
	North Direction = iota
	East
	South
	West
)

// AllDirections returns the four directions in clockwise order starting at North.
func AllDirections() []Direction {
	return []Direction{North, East, South, West}
}

func (d Direction) String() string {
	switch d {
	case North:
		return "North"
	case East:
		return "East"
	case South:
		return "South"
	case West:
		return "West"
	default:
		return "Unknown"
	}
}

// ParseDirection parses "North", "East", "South" or "West".
func ParseDirection(s string) (Direction, error) {
	for _, d := range AllDirections() {
		if d.String() == s {
			return d, nil
		}
	}
	return North, fmt.Errorf("unknown direction %q", s)
}

// Opposite returns the direction facing the other way.
func (d Direction) Opposite() Direction {
	switch d {
	case North:
		return South
	case South:
		return North
	case East:
		return West
	default:
		return East
	}
}

// Right returns the direction a quarter turn clockwise.
func (d Direction) Right() Direction {
	return Direction((int(d) + 1) % 4)
}

// Left returns the direction a quarter turn counter-clockwise.
func (d Direction) Left() Direction {
	return Direction((int(d) + 3) % 4)
}

// Delta returns the x and y offsets of one step in this direction.
func (d Direction) Delta() (dx, dy int) {
	switch d {
	case North:
		return 0, 1
	case East:
		return 1, 0
	case South:
		return 0, -1
	default:
		return -1, 0
	}
}

// Rotation is the sense of a quarter turn.
type Rotation int

const (
	RotateClockwise Rotation = iota
	RotateCounterClockwise
)

func (r Rotation) String() string {
	if r == RotateClockwise {
		return "right"
	}
	return "left"
}

// rotationFacing maps the robot's 4-state rotation index to a facing.
// 0 = South, 1 = East, 2 = North, 3 = West. Clockwise decrements the index.
var rotationFacing = [4]Direction{South, East, North, West}

func rotationIndexOf(d Direction) int {
	for i, f := range rotationFacing {
		if f == d {
			return i
		}
	}
	panic(fmt.Sprintf("rotationIndexOf: invalid direction %d", d))
}

// floorMod is the modulus with the sign of the divisor.
func floorMod(a, n int) int {
	return ((a % n) + n) % n
}

// Position is an integer grid coordinate.
type Position struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

// Step returns the position n tiles away in direction d.
func (p Position) Step(d Direction, n int) Position {
	dx, dy := d.Delta()
	return Position{X: p.X + dx*n, Y: p.Y + dy*n}
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}
