package mcp

import (
	"context"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/peterkuimelis/roborally/internal/game"
	rrnet "github.com/peterkuimelis/roborally/internal/net"
)

// activeSession is the singleton game session (one per stdio process).
var activeSession *GameSession

// boardFile is the path to the boards YAML file, set by main.
var boardFile string

// port is the TCP port for human player connections, set by main.
var port string

var logger = zap.NewNop()

// SetBoardFile sets the path to the boards YAML file.
func SetBoardFile(path string) {
	boardFile = path
}

// SetPort sets the TCP port for human player connections.
func SetPort(p string) {
	port = p
}

// SetLogger sets the operational logger used by new sessions.
func SetLogger(l *zap.Logger) {
	logger = l
}

// RegisterTools adds all game tools to the MCP server.
func RegisterTools(s *server.MCPServer) {
	s.AddTool(startGameTool(), handleStartGame)
	s.AddTool(selectProgramTool(), handleSelectProgram)
	s.AddTool(powerDownTool(), handlePowerDown)
	s.AddTool(getGameStateTool(), handleGetGameState)
}

// --- Tool definitions ---

func startGameTool() mcp.Tool {
	return mcp.NewTool("start_game",
		mcp.WithDescription("Start a new RoboRally game. You play seat 1 and race the other robots to touch flags 1-4 in order. "+
			"Human players connect via `roborally join --addr localhost:<port>` in a separate terminal; "+
			"this call blocks until every expected human has connected. Returns the first pending decision."),
		mcp.WithNumber("board", mcp.Description("Board number (1-indexed from boards.yaml), default 1")),
		mcp.WithNumber("humans", mcp.Description("Number of human players joining over TCP, default 0")),
		mcp.WithNumber("bots", mcp.Description("Number of bot robots, default 1")),
		mcp.WithNumber("max_rounds", mcp.Description("Stop after this many rounds (0 = no limit)")),
		mcp.WithString("elimination", mcp.Description("'end-game' (default) or 'remove-player'")),
	)
}

func selectProgramTool() mcp.Tool {
	return mcp.NewTool("select_program",
		mcp.WithDescription("Program your robot's five registers. Use this when the pending decision type is 'choose_program'. "+
			"Registers run in the order given; in each register robots act from highest to lowest card priority."),
		mcp.WithString("slots", mcp.Required(), mcp.Description("Five space-separated hand slot indices (the 'index' field of each hand card), e.g. '0 3 4 7 8'")),
	)
}

func powerDownTool() mcp.Tool {
	return mcp.NewTool("power_down",
		mcp.WithDescription("Answer the power-down prompt. Use this when the pending decision type is 'choose_power_down'."),
		mcp.WithBoolean("answer", mcp.Required(), mcp.Description("true to power down, false to stay powered up")),
	)
}

func getGameStateTool() mcp.Tool {
	return mcp.NewTool("get_game_state",
		mcp.WithDescription("Get the current game state, accumulated events, and pending decision without submitting a response. Read-only."),
	)
}

// --- Tool handlers ---

func handleStartGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if activeSession != nil {
		return mcp.NewToolResultError("A game is already running. Only one game at a time is supported."), nil
	}

	board := request.GetInt("board", 1)
	humans := request.GetInt("humans", 0)
	bots := request.GetInt("bots", 1)
	maxRounds := request.GetInt("max_rounds", 0)

	if board < 1 {
		return mcp.NewToolResultError("board must be >= 1"), nil
	}
	if humans < 0 || bots < 0 || 1+humans+bots > game.MaxPlayers {
		return mcp.NewToolResultErrorf("humans + bots must be between 0 and %d", game.MaxPlayers-1), nil
	}
	elimination, err := game.ParseEliminationPolicy(request.GetString("elimination", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	sess, err := NewGameSession(SessionConfig{
		BoardFile:   boardFile,
		BoardNumber: board,
		Humans:      humans,
		Bots:        bots,
		Port:        port,
		MaxRounds:   maxRounds,
		Elimination: elimination,
		Logger:      logger,
	})
	if err != nil {
		return mcp.NewToolResultErrorf("Failed to start game: %v", err), nil
	}

	activeSession = sess

	resp, err := sess.waitForPending(ctx)
	if err != nil {
		return mcp.NewToolResultErrorf("Error waiting for first decision: %v", err), nil
	}
	if humans > 0 {
		resp.Port = port
	}
	if resp.GameOver {
		activeSession = nil
	}

	return mcp.NewToolResultText(respondJSON(resp)), nil
}

// pendingFor returns the active session if the agent owes a decision of type want.
func pendingFor(want DecisionType) (*GameSession, *mcp.CallToolResult) {
	if activeSession == nil {
		return nil, mcp.NewToolResultError("No game is running. Use start_game first.")
	}
	sess := activeSession
	pending := sess.currentPending
	if pending == nil {
		return nil, mcp.NewToolResultError("No pending decision.")
	}
	if pending.Player != sess.agentPlayer {
		return nil, mcp.NewToolResultError("Waiting for another player to respond.")
	}
	if pending.Type != want {
		return nil, mcp.NewToolResultErrorf("Wrong tool: pending decision is '%s', not '%s'. Use the correct tool.", pending.Type, want)
	}
	return sess, nil
}

func handleSelectProgram(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, errResult := pendingFor(DecisionChooseProgram)
	if errResult != nil {
		return errResult, nil
	}

	inHand := make(map[int]bool)
	for _, cv := range sess.currentPending.State.Hand {
		inHand[cv.Index] = true
	}

	var slots []int
	seen := make(map[int]bool)
	for _, p := range strings.Fields(request.GetString("slots", "")) {
		slot, err := strconv.Atoi(p)
		if err != nil {
			return mcp.NewToolResultErrorf("Invalid slot '%s': must be an integer.", p), nil
		}
		if !inHand[slot] {
			return mcp.NewToolResultErrorf("Slot %d holds no card in your hand.", slot), nil
		}
		if seen[slot] {
			return mcp.NewToolResultErrorf("Slot %d chosen twice.", slot), nil
		}
		seen[slot] = true
		slots = append(slots, slot)
	}
	if len(slots) != game.ProgramSize {
		return mcp.NewToolResultErrorf("Must select exactly %d cards, got %d.", game.ProgramSize, len(slots)), nil
	}

	sess.agentCtrl.responseCh <- ProgramResponse{Slots: slots}
	return nextDecision(ctx, sess)
}

func handlePowerDown(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, errResult := pendingFor(DecisionPowerDown)
	if errResult != nil {
		return errResult, nil
	}

	sess.agentCtrl.responseCh <- PowerDownResponse{Down: request.GetBool("answer", false)}
	return nextDecision(ctx, sess)
}

func nextDecision(ctx context.Context, sess *GameSession) (*mcp.CallToolResult, error) {
	resp, err := sess.waitForPending(ctx)
	if err != nil {
		return mcp.NewToolResultErrorf("Error waiting for next decision: %v", err), nil
	}
	if resp.GameOver {
		activeSession = nil
	}
	return mcp.NewToolResultText(respondJSON(resp)), nil
}

func handleGetGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if activeSession == nil {
		return mcp.NewToolResultError("No game is running. Use start_game first."), nil
	}

	sess := activeSession
	sess.mu.Lock()
	gameOver := sess.gameOver
	winner := sess.winner
	result := sess.result
	sess.mu.Unlock()

	resp := &ToolResponse{
		Session:  sess.ID.String(),
		Events:   sess.drainEvents(),
		GameOver: gameOver,
		Winner:   winner,
		Result:   result,
	}

	if pending := sess.currentPending; pending != nil {
		// the state captured with the pending decision is the current one
		resp.State = pending.State
		if !gameOver {
			resp.Pending = &PendingView{
				Type:      pending.Type,
				ForPlayer: sess.playerLabel(pending.Player),
				Prompt:    pending.Prompt,
			}
		}
	} else if sess.game != nil {
		resp.State = rrnet.BuildStateView(sess.game.State, sess.agentPlayer)
	}

	return mcp.NewToolResultText(respondJSON(resp)), nil
}
