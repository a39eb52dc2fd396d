package main

import (
	"fmt"
	"os"
)

func runCompletion(args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: parley completion <bash|zsh|fish>")
		return 2
	}

	switch args[0] {
	case "bash":
		fmt.Print(bashCompletion)
	case "zsh":
		fmt.Print(zshCompletion)
	case "fish":
		fmt.Print(fishCompletion)
	default:
		fmt.Fprintf(os.Stderr, "unsupported shell: %s\n", args[0])
		fmt.Fprintln(os.Stderr, "Supported shells: bash, zsh, fish")
		return 2
	}
	return 0
}

const bashCompletion = `# parley bash completion
_parley_completions() {
    local cur prev commands
    COMPREPLY=()
    cur="${COMP_WORDS[COMP_CWORD]}"
    prev="${COMP_WORDS[COMP_CWORD-1]}"
    commands="serve mcp ask chat models completion version"

    case "${prev}" in
        parley)
            COMPREPLY=( $(compgen -W "${commands}" -- "${cur}") )
            return 0
            ;;
        --config)
            COMPREPLY=( $(compgen -f -- "${cur}") )
            return 0
            ;;
        completion)
            COMPREPLY=( $(compgen -W "bash zsh fish" -- "${cur}") )
            return 0
            ;;
    esac

    if [[ "${cur}" == -* ]]; then
        COMPREPLY=( $(compgen -W "--config --host --port --health-addr --system-prompt --url --timeout --json --version" -- "${cur}") )
        return 0
    fi
}
complete -F _parley_completions parley
`

const zshCompletion = `#compdef parley
# parley zsh completion

_parley() {
    local -a commands
    commands=(
        'serve:Start the HTTP chat API'
        'mcp:Start MCP server on stdio'
        'ask:Send one message and print the reply'
        'chat:Chat with a running server in the terminal'
        'models:List advertised models'
        'completion:Generate shell completions'
        'version:Print version and exit'
    )

    _arguments -C \
        '--version[Print version]' \
        '1:command:->cmds' \
        '*::arg:->args'

    case "$state" in
        cmds)
            _describe 'command' commands
            ;;
        args)
            case "${words[1]}" in
                serve)
                    _arguments '--config[Config file]:file:_files' '--host[Listen host]' '--port[Listen port]' '--health-addr[gRPC health address]'
                    ;;
                mcp|models)
                    _arguments '--config[Config file]:file:_files'
                    ;;
                ask)
                    _arguments '--config[Config file]:file:_files' '--system-prompt[Framing sentence]'
                    ;;
                chat)
                    _arguments '--url[Server URL]' '--timeout[Request timeout]'
                    ;;
                completion)
                    _values 'shell' bash zsh fish
                    ;;
            esac
            ;;
    esac
}

_parley "$@"
`

const fishCompletion = `# parley fish completion
complete -c parley -n '__fish_use_subcommand' -a 'serve' -d 'Start the HTTP chat API'
complete -c parley -n '__fish_use_subcommand' -a 'mcp' -d 'Start MCP server on stdio'
complete -c parley -n '__fish_use_subcommand' -a 'ask' -d 'Send one message and print the reply'
complete -c parley -n '__fish_use_subcommand' -a 'chat' -d 'Chat with a running server in the terminal'
complete -c parley -n '__fish_use_subcommand' -a 'models' -d 'List advertised models'
complete -c parley -n '__fish_use_subcommand' -a 'completion' -d 'Generate shell completions'
complete -c parley -n '__fish_use_subcommand' -a 'version' -d 'Print version and exit'
complete -c parley -l version -d 'Print version'
complete -c parley -n '__fish_seen_subcommand_from serve mcp ask models' -l config -d 'Config file' -rF
complete -c parley -n '__fish_seen_subcommand_from serve' -l host -d 'Listen host'
complete -c parley -n '__fish_seen_subcommand_from serve' -l port -d 'Listen port'
complete -c parley -n '__fish_seen_subcommand_from serve' -l health-addr -d 'gRPC health address'
complete -c parley -n '__fish_seen_subcommand_from ask' -l system-prompt -d 'Framing sentence'
complete -c parley -n '__fish_seen_subcommand_from chat' -l url -d 'Server URL'
complete -c parley -n '__fish_seen_subcommand_from chat' -l timeout -d 'Request timeout'
complete -c parley -n '__fish_seen_subcommand_from completion' -a 'bash zsh fish'
`
