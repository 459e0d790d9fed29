package main

import (
	"testing"
)

func TestRunServe_InvalidFlag(t *testing.T) {
	// Serve blocks on stdio, so only the startup paths are exercised here.
	code := run([]string{"serve", "--invalid-flag"})
	if code != 2 {
		t.Fatalf("expected exit code 2 for serve with invalid flag, got %d", code)
	}
}

func TestRunServe_MissingCredential(t *testing.T) {
	clearConfigEnv(t)
	cfgPath := writeTestConfig(t, "http://localhost:9999/v1")

	code := runServe(nil, globalOptions{configPath: cfgPath})
	if code != 2 {
		t.Fatalf("expected exit code 2 without a credential, got %d", code)
	}
}

func TestRunTUI_InvalidFlag(t *testing.T) {
	code := run([]string{"tui", "--invalid-flag"})
	if code != 2 {
		t.Fatalf("expected exit code 2 for tui with invalid flag, got %d", code)
	}
}

func TestRunChat_MissingCredential(t *testing.T) {
	clearConfigEnv(t)
	cfgPath := writeTestConfig(t, "http://localhost:9999/v1")

	code := run([]string{"--config", cfgPath, "chat", "--no-history"})
	if code != 2 {
		t.Fatalf("expected exit code 2 without a credential, got %d", code)
	}
}
