package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/nox-hq/parley/config"
)

func runModels(args []string) int {
	fs := flag.NewFlagSet("models", flag.ContinueOnError)
	var (
		configPath string
		jsonFlag   bool
	)
	fs.StringVar(&configPath, "config", config.DefaultPath, "path to config file")
	fs.BoolVar(&jsonFlag, "json", false, "output as JSON")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, ok := loadConfig(configPath)
	if !ok {
		return 2
	}

	if jsonFlag {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(map[string]any{"models": cfg.Models}); err != nil {
			fmt.Fprintf(os.Stderr, "error: encoding models: %v\n", err)
			return 2
		}
		return 0
	}

	for _, m := range cfg.Models {
		fmt.Printf("%-24s %s\n", m.ID, m.Name)
	}
	return 0
}
