package log

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLoggerSequence(t *testing.T) {
	l := NewMemoryLogger()
	assert.Equal(t, GameEvent{}, l.LastEvent())

	l.Log(NewRoundEvent(1))
	l.Log(NewDealEvent(1, 0, 9))
	l.Log(NewDealEvent(1, 1, 9))

	require.Len(t, l.Events(), 3)
	for i, e := range l.Events() {
		assert.Equal(t, i+1, e.Seq)
	}
	assert.Len(t, l.EventsOfType(EventDeal), 2)
	assert.Equal(t, 1, l.LastEvent().Player)
}

func TestTextLogger(t *testing.T) {
	var buf bytes.Buffer
	l := NewTextLogger(&buf)

	l.Log(NewRoundEvent(2))
	l.Log(NewExecuteCardEvent(2, 0, 1, "MOVE2", 670, "(3,3) facing North", "(3,5) facing North"))

	assert.Len(t, l.Events(), 2)
	assert.Equal(t,
		"Rd2   Dealing              | === Round 2 ===\n"+
			"Rd2   Executing          R1| P2 executes MOVE2 with priority 670: (3,3) facing North → (3,5) facing North\n",
		buf.String())
}

func TestEventDetails(t *testing.T) {
	tests := []struct {
		event GameEvent
		want  string
	}{
		{NewPowerDownEvent(1, 0, true), "P1 powers down"},
		{NewPowerDownEvent(1, 3, false), "P4 stays powered up"},
		{NewRegisterEvent(1, 2, []int{2, 0, 1}), "Register 3 order: P3 → P1 → P2"},
		{NewLockInEvent(1, 0, []string{"MOVE1", "U_TURN"}), "P1 locks in [MOVE1, U_TURN]"},
		{NewFlagDeniedEvent(1, 4, 1, 3), "P2 reaches flag 3 out of order"},
		{NewWinEvent(3, "Executing", 0, "collected all 4 flags"), "P1 wins! (collected all 4 flags)"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.event.Details)
	}
	assert.Equal(t, "GameOver", EventGameOver.String())
	assert.Equal(t, "Unknown", EventType(99).String())
}
