package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/nox-hq/gptcore/assist"
	"github.com/nox-hq/gptcore/core"
)

// loadConfig reads the config file named by --config (or ./.gptcore.yaml)
// and installs the process-wide logger at the configured level.
func loadConfig(opts globalOptions) (*core.Config, error) {
	cfg, err := core.LoadConfig(opts.configPath)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(newLogger(cfg.LogLevel, opts.verbose))
	return cfg, nil
}

// newLogger returns a text logger on stderr. verbose forces debug level.
func newLogger(level string, verbose bool) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelWarn
	}
	if verbose {
		lvl = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

// newConversation acquires the API key and builds the provider stack and
// conversation described by cfg.
func newConversation(cfg *core.Config, logger *slog.Logger) (*core.Conversation, error) {
	if err := core.LoadKey(cfg.APIKeyEnv, core.ResolveKeyFile(cfg.KeyFile)); err != nil {
		return nil, err
	}

	timeout, err := cfg.RequestTimeout()
	if err != nil {
		return nil, err
	}

	providerOpts := []assist.OpenAIOption{
		assist.WithModel(cfg.Model),
		assist.WithAPIKey(os.Getenv(cfg.APIKeyEnv)),
	}
	if cfg.BaseURL != "" {
		providerOpts = append(providerOpts, assist.WithBaseURL(cfg.BaseURL))
	}
	if timeout > 0 {
		providerOpts = append(providerOpts, assist.WithTimeout(timeout))
	}

	var provider assist.Provider = assist.NewOpenAIProvider(providerOpts...)
	if cfg.RequestsPerMinute > 0 {
		provider = assist.NewRateLimitedProvider(provider, cfg.RequestsPerMinute)
	}

	return core.New(provider,
		core.WithModel(cfg.Model),
		core.WithTemperature(cfg.Temperature),
		core.WithPricing(cfg.Pricing),
		core.WithLogger(logger),
	), nil
}

// startSession loads configuration and builds a conversation. On failure it
// prints the error and returns a nil conversation with exit code 2.
func startSession(opts globalOptions) (*core.Config, *core.Conversation, int) {
	cfg, err := loadConfig(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return nil, nil, 2
	}

	conv, err := newConversation(cfg, slog.Default())
	if err != nil {
		if errors.Is(err, core.ErrCredentialMissing) {
			fmt.Fprintf(os.Stderr, "error: %v (set %s or create the key file)\n", err, cfg.APIKeyEnv)
		} else {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		return nil, nil, 2
	}
	return cfg, conv, 0
}

// endSession maps the result of Conversation.Run to an exit code.
func endSession(err error) int {
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}
