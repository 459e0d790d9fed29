// Package main is the entry point for the gptcore CLI.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/nox-hq/gptcore/server"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// globalOptions are the flags accepted before the command name.
type globalOptions struct {
	configPath string
	verbose    bool
}

func main() {
	os.Exit(run(os.Args[1:]))
}

// run executes the CLI and returns the exit code.
// 0 = session ended normally, 1 = completion failed mid-session, 2 = usage or startup error.
func run(args []string) int {
	fs := flag.NewFlagSet("gptcore", flag.ContinueOnError)

	var (
		opts        globalOptions
		versionFlag bool
	)

	fs.StringVar(&opts.configPath, "config", "", "path to config file (default ./.gptcore.yaml)")
	fs.BoolVar(&opts.verbose, "verbose", false, "enable debug logging")
	fs.BoolVar(&opts.verbose, "v", false, "enable debug logging (shorthand)")
	fs.BoolVar(&versionFlag, "version", false, "print version and exit")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: gptcore [flags] <command> [command flags]\n\n")
		fmt.Fprintf(os.Stderr, "Commands:\n")
		fmt.Fprintf(os.Stderr, "  chat             Interactive chat on the terminal\n")
		fmt.Fprintf(os.Stderr, "  tui              Full-screen chat\n")
		fmt.Fprintf(os.Stderr, "  ask <prompt>     Send a single prompt and print the reply\n")
		fmt.Fprintf(os.Stderr, "  watch <file>     Send the file's contents each time it is saved\n")
		fmt.Fprintf(os.Stderr, "  serve            Start MCP server on stdio\n")
		fmt.Fprintf(os.Stderr, "  config           Print the effective configuration\n")
		fmt.Fprintf(os.Stderr, "  version          Print version and exit\n\n")
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
		fmt.Fprintln(os.Stderr, "Usage: gptcore <command> [flags]")
		return 2
	}

	command := remaining[0]
	switch command {
	case "chat":
		return runChat(remaining[1:], opts)
	case "tui":
		return runTUI(remaining[1:], opts)
	case "ask":
		return runAsk(remaining[1:], opts)
	case "watch":
		return runWatch(remaining[1:], opts)
	case "serve":
		return runServe(remaining[1:], opts)
	case "config":
		return runConfig(remaining[1:], opts)
	case "version":
		printVersion()
		return 0
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", command)
		fmt.Fprintln(os.Stderr, "Usage: gptcore <command> [flags]")
		return 2
	}
}

func printVersion() {
	fmt.Printf("gptcore %s (commit: %s, built: %s)\n", version, commit, date)
}

func runServe(args []string, opts globalOptions) int {
	serveFS := flag.NewFlagSet("serve", flag.ContinueOnError)
	if err := serveFS.Parse(args); err != nil {
		return 2
	}

	_, conv, code := startSession(opts)
	if conv == nil {
		return code
	}

	srv := server.New(version, conv)
	if err := srv.Serve(); err != nil {
		fmt.Fprintf(os.Stderr, "error: MCP server failed: %v\n", err)
		return 2
	}
	return 0
}

func runConfig(args []string, opts globalOptions) int {
	configFS := flag.NewFlagSet("config", flag.ContinueOnError)
	if err := configFS.Parse(args); err != nil {
		return 2
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}

	data, err := cfg.YAML()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: encoding config: %v\n", err)
		return 2
	}
	fmt.Print(string(data))
	return 0
}
