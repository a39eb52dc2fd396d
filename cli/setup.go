package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/nox-hq/parley/assist"
	"github.com/nox-hq/parley/config"
)

// loadConfig reads the config file plus environment and installs the
// process logger on stderr. Errors are reported and mapped to exit code 2.
func loadConfig(path string) (*config.Config, bool) {
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: loading config: %v\n", err)
		return nil, false
	}
	slog.SetDefault(newLogger(cfg, os.Stderr))
	return cfg, true
}

func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel()}
	if strings.EqualFold(cfg.Log.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// newPipeline builds the completion pipeline for cfg. A tokenizer is only
// loaded when a token budget is configured.
func newPipeline(cfg *config.Config) *assist.Pipeline {
	backend := cfg.Backend()
	opts := []assist.Option{assist.WithBudget(cfg.Budget())}
	if cfg.History.MaxTokens > 0 {
		counter, err := assist.NewTokenCounter(backend.Model)
		if err != nil {
			slog.Warn("token budget disabled: no tokenizer available", "model", backend.Model, "error", err)
		} else {
			opts = append(opts, assist.WithTokenCounter(counter))
		}
	}
	return assist.NewPipeline(backend, opts...)
}
