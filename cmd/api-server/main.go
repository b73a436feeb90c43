package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/cardlink-labs/cardlink-middleware/pkg/app"
	"github.com/cardlink-labs/cardlink-middleware/pkg/app/api"
	"github.com/cardlink-labs/cardlink-middleware/pkg/config"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.LoadAPIServer(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	var server app.Runner = api.NewServer(cfg)
	if err := server.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}
