package game

// TileOutcome records what the board did to a robot during one resolution.
type TileOutcome struct {
	Start Position

	OnMover    bool
	Mover      Mover
	CornerTurn bool
	Turn       Rotation
	Carried    int // tiles moved by the belt

	OnEvent    bool
	Event      Event
	FellInPit  bool
	OutOfLives bool
	FlagTaken  int // 0 if no flag was awarded
	FlagDenied int // flag tile reached out of order
}

// ResolveTile applies the terrain under p, conveyor layer first and event
// layer second. The event lookup uses the position after the belt moved the
// robot. p.OnConveyor is the only state carried between resolutions.
func ResolveTile(board *Board, p *Player) TileOutcome {
	out := TileOutcome{Start: p.Position}

	if m, ok := board.MoverAt(p.Position); ok {
		out.OnMover = true
		out.Mover = m
		if rot, corner := m.Turn(); corner && p.OnConveyor {
			p.Rotate(rot)
			out.CornerTurn = true
			out.Turn = rot
		}
		out.Carried = p.Move(board, m.Out, m.Kind.Steps())
		p.OnConveyor = true
	}

	e, ok := board.EventAt(p.Position)
	if !ok {
		return out
	}
	out.OnEvent = true
	out.Event = e

	switch e.Kind {
	case EventPit:
		out.FellInPit = true
		out.OutOfLives = p.SubtractLife()
	case EventRotateLeft:
		p.Rotate(RotateCounterClockwise)
	case EventRotateRight:
		p.Rotate(RotateClockwise)
	case EventFlag:
		held := p.Flags[e.Flag-1]
		// e.Flag is validated when the board is built
		_ = p.AddFlag(e.Flag)
		switch {
		case !p.Flags[e.Flag-1]:
			out.FlagDenied = e.Flag
		case !held:
			out.FlagTaken = e.Flag
		}
	case EventFloor:
	}
	p.OnConveyor = false
	return out
}
