package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/nox-hq/parley/cli/tui"
	"golang.org/x/term"
)

const defaultServerURL = "http://localhost:8000"

// runChat opens the chat widget against a running server. When stdin is not
// a terminal it reads one message per line instead.
func runChat(args []string) int {
	fs := flag.NewFlagSet("chat", flag.ContinueOnError)
	var (
		url     string
		timeout time.Duration
	)
	fs.StringVar(&url, "url", defaultServerURL, "base URL of the parley server")
	fs.DurationVar(&timeout, "timeout", tui.DefaultTimeout, "per-message request timeout")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if timeout <= 0 {
		fmt.Fprintln(os.Stderr, "error: --timeout must be positive")
		return 2
	}

	client := tui.NewClient(url, timeout)

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		if err := tui.RunLines(ctx, client, os.Stdin, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return 2
		}
		return 0
	}

	if err := tui.Run(client, "parley chat "+url); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}
	return 0
}
