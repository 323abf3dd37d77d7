package mcp

import (
	"context"
	"fmt"

	"github.com/peterkuimelis/roborally/internal/game"
	"github.com/peterkuimelis/roborally/internal/log"
	"github.com/peterkuimelis/roborally/internal/net"
)

// MCPController implements game.PlayerController by sending decisions
// to the MCP session's pending channel and blocking on a response channel.
type MCPController struct {
	player     int
	session    *GameSession
	responseCh chan any
}

// NewMCPController creates a controller for the given player.
func NewMCPController(player int, session *GameSession) *MCPController {
	return &MCPController{
		player:     player,
		session:    session,
		responseCh: make(chan any),
	}
}

// ChooseProgram implements game.PlayerController.
func (c *MCPController) ChooseProgram(ctx context.Context, state *game.GameState, player int) ([]int, error) {
	c.session.pendingCh <- &PendingDecision{
		Type:   DecisionChooseProgram,
		Player: c.player,
		State:  net.BuildStateView(state, c.player),
		Prompt: fmt.Sprintf("Choose %d hand slots for registers 1-%d", game.ProgramSize, game.ProgramSize),
	}

	select {
	case resp := <-c.responseCh:
		return resp.(ProgramResponse).Slots, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// ChoosePowerDown implements game.PlayerController.
func (c *MCPController) ChoosePowerDown(ctx context.Context, state *game.GameState, player int) (bool, error) {
	c.session.pendingCh <- &PendingDecision{
		Type:   DecisionPowerDown,
		Player: c.player,
		State:  net.BuildStateView(state, c.player),
		Prompt: "Power down your robot next round?",
	}

	select {
	case resp := <-c.responseCh:
		return resp.(PowerDownResponse).Down, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// Notify implements game.PlayerController.
func (c *MCPController) Notify(ctx context.Context, event log.GameEvent) error {
	c.session.appendEvent(*net.NewEventView(event))
	return nil
}
