package game

// CanMove reports whether a robot at from may travel steps tiles in dir.
// A wall on the origin tile facing dir blocks the move, as does a wall on
// the destination tile facing back toward the origin. Intermediate tiles are
// not checked; Player.Move calls this one step at a time.
func CanMove(board *Board, from Position, dir Direction, steps int) bool {
	if w, ok := board.WallAt(from); ok && w.BlocksExit(dir) {
		return false
	}
	to := from.Step(dir, steps)
	if w, ok := board.WallAt(to); ok && w.BlocksEntry(dir) {
		return false
	}
	return true
}

// ExecuteCard applies a program card's movement to a robot.
// Returns the number of tiles moved.
func ExecuteCard(board *Board, p *Player, card *Card) int {
	switch card.Type {
	case CardMove1:
		return p.Move(board, p.Facing(), 1)
	case CardMove2:
		return p.Move(board, p.Facing(), 2)
	case CardMove3:
		return p.Move(board, p.Facing(), 3)
	case CardBackUp:
		return p.Move(board, p.Facing().Opposite(), 1)
	case CardRotateLeft:
		p.Rotate(RotateCounterClockwise)
	case CardRotateRight:
		p.Rotate(RotateClockwise)
	case CardUTurn:
		p.Rotate(RotateClockwise)
		p.Rotate(RotateClockwise)
	default:
		panic("ExecuteCard: unknown card type " + card.Type.String())
	}
	return 0
}
