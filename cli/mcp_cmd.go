package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/nox-hq/parley/config"
	"github.com/nox-hq/parley/server"
)

func runMCP(args []string) int {
	fs := flag.NewFlagSet("mcp", flag.ContinueOnError)
	var configPath string
	fs.StringVar(&configPath, "config", config.DefaultPath, "path to config file")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, ok := loadConfig(configPath)
	if !ok {
		return 2
	}

	srv := server.NewMCPServer(version, newPipeline(cfg), cfg.Models, cfg.Server.RequestsPerMinute)
	if err := srv.Serve(); err != nil {
		fmt.Fprintf(os.Stderr, "error: MCP server failed: %v\n", err)
		return 2
	}
	return 0
}
