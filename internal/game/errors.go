package game

import "errors"

// Contract violations. The offending action is rejected and state is left unchanged.
var (
	ErrDeckExhausted     = errors.New("deck exhausted")
	ErrInvalidPopulation = errors.New("cards do not form the program deck")
	ErrInvalidFlagNumber = errors.New("flag number must be between 1-4 (inclusive)")
	ErrSelectionFull     = errors.New("program already holds the maximum number of cards")
	ErrNotSelected       = errors.New("hand slot is not part of the program")
	ErrInvalidHandIndex  = errors.New("hand index out of range")
	ErrEmptySlot         = errors.New("hand slot is empty")
	ErrIncompleteProgram = errors.New("program must hold exactly 5 cards to lock in")
	ErrAlreadyLockedIn   = errors.New("program already locked in")
	ErrWrongPhase        = errors.New("action not allowed in the current phase")
	ErrUnknownPlayer     = errors.New("unknown player")
	ErrPlayerEliminated  = errors.New("player has been eliminated")
	ErrGameOver          = errors.New("game is over")
)
