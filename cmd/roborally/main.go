package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"go.uber.org/zap"

	"github.com/peterkuimelis/roborally/internal/game"
	"github.com/peterkuimelis/roborally/internal/log"
	rrnet "github.com/peterkuimelis/roborally/internal/net"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	switch cmd {
	case "host":
		runHost(os.Args[2:])
	case "join":
		runJoin(os.Args[2:])
	case "sim":
		runSim(os.Args[2:])
	default:
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  roborally host [--board N] [--boards FILE] [--port P] [--joiners J] [--bots B] [--name NAME]")
	fmt.Println("  roborally join [--addr ADDR] [--name NAME]")
	fmt.Println("  roborally sim  [--board N] [--boards FILE] [--bots B] [--seed S]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  host    Start a game server and play as Player 1")
	fmt.Println("  join    Connect to a game server and take the next free seat")
	fmt.Println("  sim     Run a bots-only game and print every event")
}

func runHost(args []string) {
	fs := flag.NewFlagSet("host", flag.ExitOnError)
	board := fs.Int("board", 1, "board number to play (from boards.yaml)")
	boardsFile := fs.String("boards", "boards.yaml", "path to boards file")
	port := fs.String("port", "9000", "TCP port to listen on")
	joiners := fs.Int("joiners", 0, "remote players to wait for")
	bots := fs.Int("bots", 1, "bot robots")
	seed := fs.Int64("seed", 0, "deck shuffle seed (0 = random)")
	maxRounds := fs.Int("max-rounds", 0, "stop after this many rounds (0 = default limit)")
	elimination := fs.String("elimination", "end-game", "what happens when a robot runs out of lives: end-game or remove-player")
	name := fs.String("name", "", "your robot's name")
	verbose := fs.Bool("v", false, "log every game event")
	fs.Parse(args)

	policy, err := game.ParseEliminationPolicy(*elimination)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	logger := newLogger(*verbose)
	defer logger.Sync()

	srv := &rrnet.Server{
		BoardFile:   *boardsFile,
		BoardNumber: *board,
		Port:        *port,
		HostName:    *name,
		Joiners:     *joiners,
		Bots:        *bots,
		Seed:        *seed,
		MaxRounds:   *maxRounds,
		Elimination: policy,
		Logger:      logger,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := srv.Run(ctx); err != nil {
		logger.Error("game failed", zap.Error(err))
		os.Exit(1)
	}
}

func runJoin(args []string) {
	fs := flag.NewFlagSet("join", flag.ExitOnError)
	addr := fs.String("addr", "localhost:9000", "server address to connect to")
	name := fs.String("name", "", "your robot's name")
	fs.Parse(args)

	if err := rrnet.Connect(context.Background(), *addr, *name); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runSim(args []string) {
	fs := flag.NewFlagSet("sim", flag.ExitOnError)
	board := fs.Int("board", 1, "board number to play (from boards.yaml)")
	boardsFile := fs.String("boards", "boards.yaml", "path to boards file")
	bots := fs.Int("bots", 4, "bot robots")
	seed := fs.Int64("seed", 0, "deck shuffle seed (0 = random)")
	maxRounds := fs.Int("max-rounds", 0, "stop after this many rounds (0 = default limit)")
	elimination := fs.String("elimination", "end-game", "end-game or remove-player")
	fs.Parse(args)

	policy, err := game.ParseEliminationPolicy(*elimination)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	b, err := game.BoardByNumber(*boardsFile, *board)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	g, err := game.NewGame(game.GameConfig{
		Board:       b,
		Players:     make([]game.PlayerSetup, *bots),
		Logger:      log.NewTextLogger(os.Stdout),
		Seed:        *seed,
		MaxRounds:   *maxRounds,
		Elimination: policy,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if _, err := g.Run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newLogger keeps the terminal quiet unless asked: the REPL shares stdout.
func newLogger(verbose bool) *zap.Logger {
	cfg := zap.NewDevelopmentConfig()
	if !verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
