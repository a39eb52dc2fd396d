// Package main is the entry point for the parley CLI.
package main

import (
	"flag"
	"fmt"
	"os"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run executes the CLI and returns the exit code.
// 0 = ok, 1 = completion failed, 2 = usage or configuration error.
func run(args []string) int {
	fs := flag.NewFlagSet("parley", flag.ContinueOnError)

	var versionFlag bool
	fs.BoolVar(&versionFlag, "version", false, "print version and exit")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: parley <command> [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Commands:\n")
		fmt.Fprintf(os.Stderr, "  serve          Start the HTTP chat API (and optional gRPC health)\n")
		fmt.Fprintf(os.Stderr, "  mcp            Start MCP server on stdio\n")
		fmt.Fprintf(os.Stderr, "  ask <message>  Send one message and print the reply\n")
		fmt.Fprintf(os.Stderr, "  chat           Chat with a running server in the terminal\n")
		fmt.Fprintf(os.Stderr, "  models         List advertised models\n")
		fmt.Fprintf(os.Stderr, "  completion     Generate shell completions\n")
		fmt.Fprintf(os.Stderr, "  version        Print version and exit\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return 2
	}

	if versionFlag {
		printVersion()
		return 0
	}

	remaining := fs.Args()
	if len(remaining) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: parley <command> [flags]")
		return 2
	}

	command := remaining[0]
	switch command {
	case "serve":
		return runServe(remaining[1:])
	case "mcp":
		return runMCP(remaining[1:])
	case "ask":
		return runAsk(remaining[1:])
	case "chat":
		return runChat(remaining[1:])
	case "models":
		return runModels(remaining[1:])
	case "completion":
		return runCompletion(remaining[1:])
	case "version":
		printVersion()
		return 0
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", command)
		fmt.Fprintln(os.Stderr, "Usage: parley <command> [flags]")
		return 2
	}
}

func printVersion() {
	fmt.Printf("parley %s (commit: %s, built: %s)\n", version, commit, date)
}
