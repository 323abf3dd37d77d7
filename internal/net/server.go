package net

import (
	"context"
	"encoding/json"
	"fmt"
	"net"

	"go.uber.org/zap"

	"github.com/peterkuimelis/roborally/internal/game"
	"github.com/peterkuimelis/roborally/internal/log"
)

// Server hosts a game: the host plays seat 0 from this terminal, remote
// clients take the next seats and bots fill the rest.
type Server struct {
	BoardFile   string
	BoardNumber int // 1-indexed board in BoardFile
	Port        string
	HostName    string
	Joiners     int // remote seats to wait for
	Bots        int
	Seed        int64
	MaxRounds   int
	Elimination game.EliminationPolicy
	Logger      *zap.Logger
}

// Run starts the server, waits for every joiner, then runs the game.
func (s *Server) Run(ctx context.Context) error {
	logger := s.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	seats := 1 + s.Joiners + s.Bots
	if seats > game.MaxPlayers {
		return fmt.Errorf("%d seats requested, at most %d", seats, game.MaxPlayers)
	}

	board, err := game.BoardByNumber(s.BoardFile, s.BoardNumber)
	if err != nil {
		return fmt.Errorf("load board: %w", err)
	}
	logger.Info("board loaded",
		zap.String("board", board.Name),
		zap.Int("width", board.Width),
		zap.Int("height", board.Height))

	// Create a pipe for the host's local connection
	hostConn, hostServerConn := net.Pipe()
	defer hostConn.Close()
	hostCtrl := NewNetworkController(hostServerConn, 0)

	hostName := s.HostName
	if hostName == "" {
		hostName = log.PlayerName(0)
	}
	setups := []game.PlayerSetup{{Name: hostName, Human: true, Controller: hostCtrl}}
	remote := []*NetworkController{hostCtrl}

	if s.Joiners > 0 {
		ln, err := net.Listen("tcp", ":"+s.Port)
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		defer ln.Close()
		logger.Info("waiting for players", zap.String("port", s.Port), zap.Int("joiners", s.Joiners))

		for seat := 1; seat <= s.Joiners; seat++ {
			conn, err := ln.Accept()
			if err != nil {
				return fmt.Errorf("accept: %w", err)
			}
			defer conn.Close()

			// Read the joiner's name
			var joinMsg ClientMessage
			if err := json.NewDecoder(conn).Decode(&joinMsg); err != nil {
				return fmt.Errorf("read join message: %w", err)
			}
			name := joinMsg.Name
			if name == "" {
				name = log.PlayerName(seat)
			}
			logger.Info("player joined",
				zap.Int("seat", seat),
				zap.String("name", name),
				zap.Stringer("addr", conn.RemoteAddr()))

			ctrl := NewNetworkController(conn, seat)
			setups = append(setups, game.PlayerSetup{Name: name, Human: true, Controller: ctrl})
			remote = append(remote, ctrl)
		}
	}
	for i := 0; i < s.Bots; i++ {
		setups = append(setups, game.PlayerSetup{})
	}

	g, err := game.NewGame(game.GameConfig{
		Board:       board,
		Players:     setups,
		Logger:      NewZapEventLogger(logger),
		Seed:        s.Seed,
		MaxRounds:   s.MaxRounds,
		Elimination: s.Elimination,
	})
	if err != nil {
		return err
	}
	logger.Info("game created", zap.Stringer("game", g.State.ID), zap.Int("seats", seats))

	// Run the host's local REPL in a goroutine
	errCh := make(chan error, 2)
	go func() {
		client := &Client{conn: hostConn, playerName: hostName}
		errCh <- client.RunREPL(ctx)
	}()

	go func() {
		for _, ctrl := range remote {
			if err := ctrl.SendWelcome(); err != nil {
				errCh <- fmt.Errorf("welcome seat %d: %w", ctrl.player, err)
				return
			}
		}

		winner, err := g.Run(ctx)
		if err != nil {
			errCh <- fmt.Errorf("game error: %w", err)
			return
		}
		logger.Info("game over",
			zap.Int("winner", winner),
			zap.Int("rounds", g.State.Round),
			zap.String("result", g.State.Result))

		for _, ctrl := range remote {
			_ = ctrl.SendGameOver(winner, g.State.Result)
		}
		errCh <- nil
	}()

	// Wait for either the game or the REPL to finish
	return <-errCh
}

// ZapEventLogger records game events in memory and mirrors them to a zap logger.
type ZapEventLogger struct {
	log.MemoryLogger
	logger *zap.Logger
}

func NewZapEventLogger(logger *zap.Logger) *ZapEventLogger {
	return &ZapEventLogger{logger: logger}
}

func (l *ZapEventLogger) Log(event log.GameEvent) {
	l.MemoryLogger.Log(event)
	l.logger.Debug(event.Details,
		zap.Int("round", event.Round),
		zap.String("phase", event.Phase),
		zap.Int("register", event.Register),
		zap.Int("player", event.Player),
		zap.Stringer("type", event.Type))
}
