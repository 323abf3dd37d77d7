package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	stdnet "net"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/peterkuimelis/roborally/internal/game"
	"github.com/peterkuimelis/roborally/internal/log"
	rrnet "github.com/peterkuimelis/roborally/internal/net"
)

// DecisionType identifies what kind of decision the game engine is waiting for.
type DecisionType string

const (
	DecisionChooseProgram DecisionType = "choose_program"
	DecisionPowerDown     DecisionType = "choose_power_down"
	DecisionGameOver      DecisionType = "game_over"
)

// PendingDecision represents a decision the game engine is waiting for.
type PendingDecision struct {
	Type   DecisionType     `json:"type"`
	Player int              `json:"player"`
	State  *rrnet.StateView `json:"state"`
	Prompt string           `json:"prompt,omitempty"`
}

// Response types sent back from MCP tools to controllers.

type ProgramResponse struct {
	Slots []int
}

type PowerDownResponse struct {
	Down bool
}

// ToolResponse is the JSON envelope returned by all MCP tools.
type ToolResponse struct {
	Session  string            `json:"session"`
	Events   []rrnet.EventView `json:"events"`
	State    *rrnet.StateView  `json:"state,omitempty"`
	Pending  *PendingView      `json:"pending,omitempty"`
	GameOver bool              `json:"game_over"`
	Winner   int               `json:"winner"`
	Result   string            `json:"result,omitempty"`
	Port     string            `json:"port,omitempty"`
}

// PendingView is the pending decision as presented in the tool response JSON.
type PendingView struct {
	Type      DecisionType `json:"type"`
	ForPlayer string       `json:"for_player"`
	Prompt    string       `json:"prompt,omitempty"`
}

// SessionConfig describes the table an agent sits down at.
type SessionConfig struct {
	BoardFile   string
	BoardNumber int
	Humans      int // terminal players joining over TCP
	Bots        int
	Port        string
	Seed        int64
	MaxRounds   int
	Elimination game.EliminationPolicy
	Logger      *zap.Logger
}

// GameSession holds the state of a single MCP game session. The agent
// always plays seat 0.
type GameSession struct {
	ID          uuid.UUID
	game        *game.Game
	agentCtrl   *MCPController
	humanCtrls  []*rrnet.NetworkController
	agentPlayer int
	logger      *zap.Logger

	listener   stdnet.Listener
	humanConns []stdnet.Conn

	pendingCh      chan *PendingDecision
	currentPending *PendingDecision

	mu       sync.Mutex
	events   []rrnet.EventView
	gameOver bool
	winner   int
	result   string
}

// NewGameSession creates a new game session. When humans are expected it
// starts a TCP listener and waits for each of them to `roborally join`, then
// starts the game.
func NewGameSession(cfg SessionConfig) (*GameSession, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if seats := 1 + cfg.Humans + cfg.Bots; seats > game.MaxPlayers {
		return nil, fmt.Errorf("%d seats requested, at most %d", seats, game.MaxPlayers)
	}

	board, err := game.BoardByNumber(cfg.BoardFile, cfg.BoardNumber)
	if err != nil {
		return nil, fmt.Errorf("load board: %w", err)
	}

	sess := &GameSession{
		ID:          uuid.New(),
		agentPlayer: 0,
		logger:      logger,
		pendingCh:   make(chan *PendingDecision, 1),
		winner:      -1,
	}
	sess.agentCtrl = NewMCPController(sess.agentPlayer, sess)
	logger = logger.With(zap.Stringer("session", sess.ID))

	setups := []game.PlayerSetup{{Name: "Agent", Controller: sess.agentCtrl, Human: true}}

	if cfg.Humans > 0 {
		ln, err := stdnet.Listen("tcp", ":"+cfg.Port)
		if err != nil {
			return nil, fmt.Errorf("listen on port %s: %w", cfg.Port, err)
		}
		sess.listener = ln
		logger.Info("waiting for players", zap.String("port", cfg.Port), zap.Int("humans", cfg.Humans))

		for seat := 1; seat <= cfg.Humans; seat++ {
			// Blocks until the human runs `roborally join`
			conn, err := ln.Accept()
			if err != nil {
				sess.close()
				return nil, fmt.Errorf("accept: %w", err)
			}
			sess.humanConns = append(sess.humanConns, conn)

			var joinMsg rrnet.ClientMessage
			if err := json.NewDecoder(conn).Decode(&joinMsg); err != nil {
				sess.close()
				return nil, fmt.Errorf("read join message: %w", err)
			}
			name := joinMsg.Name
			if name == "" {
				name = log.PlayerName(seat)
			}
			logger.Info("player joined", zap.Int("seat", seat), zap.String("name", name))

			ctrl := rrnet.NewNetworkController(conn, seat)
			sess.humanCtrls = append(sess.humanCtrls, ctrl)
			setups = append(setups, game.PlayerSetup{Name: name, Human: true, Controller: ctrl})
		}
	}
	for i := 0; i < cfg.Bots; i++ {
		setups = append(setups, game.PlayerSetup{})
	}

	g, err := game.NewGame(game.GameConfig{
		Board:       board,
		Players:     setups,
		Logger:      rrnet.NewZapEventLogger(logger),
		Seed:        cfg.Seed,
		MaxRounds:   cfg.MaxRounds,
		Elimination: cfg.Elimination,
	})
	if err != nil {
		sess.close()
		return nil, err
	}
	sess.game = g

	for _, ctrl := range sess.humanCtrls {
		if err := ctrl.SendWelcome(); err != nil {
			sess.close()
			return nil, fmt.Errorf("welcome: %w", err)
		}
	}

	// Start the game in a goroutine
	go func() {
		winner, err := g.Run(context.Background())
		result := g.State.Result
		if err != nil {
			result = fmt.Sprintf("error: %v", err)
			logger.Error("game stopped", zap.Error(err))
		}
		if result == "" {
			result = fmt.Sprintf("Game over. Winner: %s", log.PlayerName(winner))
		}

		// Notify humans over TCP
		for _, ctrl := range sess.humanCtrls {
			_ = ctrl.SendGameOver(winner, result)
		}
		sess.close()

		sess.mu.Lock()
		sess.gameOver = true
		sess.winner = winner
		sess.result = result
		sess.mu.Unlock()

		// Notify the agent via pending channel
		sess.pendingCh <- &PendingDecision{
			Type:   DecisionGameOver,
			Player: winner,
			State:  rrnet.BuildStateView(g.State, sess.agentPlayer),
		}
	}()

	return sess, nil
}

// close releases the TCP resources of the session.
func (s *GameSession) close() {
	for _, c := range s.humanConns {
		c.Close()
	}
	if s.listener != nil {
		s.listener.Close()
	}
}

// appendEvent adds an event to the session's event log. Thread-safe.
func (s *GameSession) appendEvent(ev rrnet.EventView) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

// drainEvents returns all accumulated events and clears the buffer.
func (s *GameSession) drainEvents() []rrnet.EventView {
	s.mu.Lock()
	defer s.mu.Unlock()
	events := s.events
	s.events = nil
	if events == nil {
		events = []rrnet.EventView{}
	}
	return events
}

// waitForPending blocks until the next decision arrives from the game engine,
// then builds a ToolResponse with accumulated events + the pending decision.
func (s *GameSession) waitForPending(ctx context.Context) (*ToolResponse, error) {
	var pending *PendingDecision
	select {
	case pending = <-s.pendingCh:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	s.currentPending = pending

	resp := &ToolResponse{
		Session: s.ID.String(),
		Events:  s.drainEvents(),
		State:   pending.State,
		Winner:  -1,
	}

	if pending.Type == DecisionGameOver {
		s.mu.Lock()
		resp.GameOver = true
		resp.Winner = s.winner
		resp.Result = s.result
		s.mu.Unlock()
		return resp, nil
	}

	resp.Pending = &PendingView{
		Type:      pending.Type,
		ForPlayer: s.playerLabel(pending.Player),
		Prompt:    pending.Prompt,
	}
	return resp, nil
}

// playerLabel returns "agent" or the seat name for the given player index.
func (s *GameSession) playerLabel(player int) string {
	if player == s.agentPlayer {
		return "agent"
	}
	return log.PlayerName(player)
}

// respondJSON marshals a ToolResponse to a JSON string.
func respondJSON(resp *ToolResponse) string {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Sprintf(`{"error": "marshal error: %v"}`, err)
	}
	return string(data)
}
