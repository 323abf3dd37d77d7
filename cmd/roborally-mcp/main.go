package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	rrmcp "github.com/peterkuimelis/roborally/internal/mcp"
)

func main() {
	boards := flag.String("boards", "boards.yaml", "path to boards YAML file")
	port := flag.String("port", "9999", "TCP port for human player connections")
	flag.Parse()

	// stdout carries the MCP protocol; zap's development config logs to stderr
	logger, err := zap.NewDevelopment()
	if err != nil {
		logger = zap.NewNop()
	}
	defer logger.Sync()

	rrmcp.SetBoardFile(*boards)
	rrmcp.SetPort(*port)
	rrmcp.SetLogger(logger)

	s := server.NewMCPServer("roborally", "1.0.0")
	rrmcp.RegisterTools(s)

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
