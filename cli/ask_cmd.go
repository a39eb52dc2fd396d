package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/nox-hq/parley/assist"
	"github.com/nox-hq/parley/config"
)

// runAsk sends one message through the pipeline and prints the reply.
func runAsk(args []string) int {
	fs := flag.NewFlagSet("ask", flag.ContinueOnError)
	var (
		configPath   string
		systemPrompt string
	)
	fs.StringVar(&configPath, "config", config.DefaultPath, "path to config file")
	fs.StringVar(&systemPrompt, "system-prompt", "", "framing sentence replacing the default system prompt")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	message := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if message == "" {
		fmt.Fprintln(os.Stderr, "Usage: parley ask [flags] <message>")
		return 2
	}

	cfg, ok := loadConfig(configPath)
	if !ok {
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res, _ := newPipeline(cfg).Complete(ctx, assist.Request{
		Message:      message,
		SystemPrompt: systemPrompt,
	})
	if !res.OK() {
		fmt.Fprintf(os.Stderr, "error: %v\n", res.Err)
		return 1
	}

	fmt.Println(res.Text)
	return 0
}
