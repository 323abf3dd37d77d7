package log

// EventType enumerates all observable game events.
type EventType int

const (
	EventPhaseChange EventType = iota
	EventNewRound
	EventDeal
	EventSelect
	EventDeselect
	EventLockIn
	EventPowerDown
	EventRegister
	EventExecuteCard
	EventConveyor
	EventRotate
	EventPit
	EventFlag
	EventFlagDenied
	EventDamage
	EventLifeLost
	EventEliminated
	EventRecycle
	EventWin
	EventGameOver
)

func (e EventType) String() string {
	switch e {
	case EventPhaseChange:
		return "PhaseChange"
	case EventNewRound:
		return "NewRound"
	case EventDeal:
		return "Deal"
	case EventSelect:
		return "Select"
	case EventDeselect:
		return "Deselect"
	case EventLockIn:
		return "LockIn"
	case EventPowerDown:
		return "PowerDown"
	case EventRegister:
		return "Register"
	case EventExecuteCard:
		return "ExecuteCard"
	case EventConveyor:
		return "Conveyor"
	case EventRotate:
		return "Rotate"
	case EventPit:
		return "Pit"
	case EventFlag:
		return "Flag"
	case EventFlagDenied:
		return "FlagDenied"
	case EventDamage:
		return "Damage"
	case EventLifeLost:
		return "LifeLost"
	case EventEliminated:
		return "Eliminated"
	case EventRecycle:
		return "Recycle"
	case EventWin:
		return "Win"
	case EventGameOver:
		return "GameOver"
	default:
		return "Unknown"
	}
}

// GameEvent represents a single observable event in a game.
type GameEvent struct {
	Seq      int       // monotonic sequence number
	Round    int       // which round (1-based)
	Phase    string    // current phase name (e.g. "Executing")
	Register int       // register index during execution, -1 otherwise
	Player   int       // acting player seat, -1 for table-wide events
	Type     EventType // event type
	Card     string    // card (if applicable)
	Details  string    // human-readable detail string
}
