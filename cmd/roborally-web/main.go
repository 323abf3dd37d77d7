package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/peterkuimelis/roborally/internal/web"
)

func main() {
	port := flag.Int("port", 8080, "HTTP port to listen on")
	boardsFile := flag.String("boards", "boards.yaml", "path to boards YAML file")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	srv := web.NewServer(*boardsFile, logger)

	addr := fmt.Sprintf(":%d", *port)
	logger.Info("roborally web API listening", zap.String("url", fmt.Sprintf("http://localhost:%d", *port)))
	if err := srv.ListenAndServe(addr); err != nil {
		logger.Error("serve", zap.Error(err))
		os.Exit(1)
	}
}
