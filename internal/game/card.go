package game

import "fmt"

// CardType is the movement a program card performs.
type CardType int

const (
	CardMove1 CardType = iota
	CardMove2
	CardMove3
	CardBackUp
	CardRotateLeft
	CardRotateRight
	CardUTurn
)

// AllCardTypes lists every card type in display order.
func AllCardTypes() []CardType {
	return []CardType{CardMove1, CardMove2, CardMove3, CardBackUp, CardRotateLeft, CardRotateRight, CardUTurn}
}

func (ct CardType) String() string {
	switch ct {
	case CardMove1:
		return "MOVE1"
	case CardMove2:
		return "MOVE2"
	case CardMove3:
		return "MOVE3"
	case CardBackUp:
		return "BACKUP"
	case CardRotateLeft:
		return "ROTATE_LEFT"
	case CardRotateRight:
		return "ROTATE_RIGHT"
	case CardUTurn:
		return "U_TURN"
	default:
		return "UNKNOWN"
	}
}

// AssetName is the key the rendering layer uses to look up card art.
func (ct CardType) AssetName() string {
	switch ct {
	case CardMove1:
		return "move1"
	case CardMove2:
		return "move2"
	case CardMove3:
		return "move3"
	case CardBackUp:
		return "backup"
	case CardRotateLeft:
		return "leftRotate"
	case CardRotateRight:
		return "rightRotate"
	case CardUTurn:
		return "uTurn"
	default:
		return ""
	}
}

// ParseCardType parses the String form of a card type.
func ParseCardType(s string) (CardType, error) {
	for _, ct := range AllCardTypes() {
		if ct.String() == s {
			return ct, nil
		}
	}
	return 0, fmt.Errorf("unknown card type %q", s)
}

// Card is a single program card. Its priority is bound at deck construction
// and never changes; cards are passed by pointer so identity survives shuffles.
type Card struct {
	Type     CardType `json:"type"`
	Priority int      `json:"priority"`
}

func (c *Card) String() string {
	return fmt.Sprintf("%s(%d)", c.Type, c.Priority)
}
