package core

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultAPIKeyEnv is the environment variable the OpenAI SDK reads.
const DefaultAPIKeyEnv = "OPENAI_API_KEY"

// DefaultKeyFile is the key file name looked up next to the executable.
const DefaultKeyFile = ".api_key"

// ErrCredentialMissing is returned when the API key is neither in the
// environment nor in the key file.
var ErrCredentialMissing = errors.New("API key not found")

// LoadKey makes sure envName is set. If it is already present in the
// environment nothing happens; otherwise the key is read from keyFile,
// trimmed, and installed into the environment.
func LoadKey(envName, keyFile string) error {
	if _, ok := os.LookupEnv(envName); ok {
		return nil
	}

	data, err := os.ReadFile(keyFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: $%s is unset and %s does not exist", ErrCredentialMissing, envName, keyFile)
		}
		return fmt.Errorf("reading %s: %w", keyFile, err)
	}

	key := strings.TrimSpace(string(data))
	if key == "" {
		return fmt.Errorf("%w: %s is empty", ErrCredentialMissing, keyFile)
	}

	if err := os.Setenv(envName, key); err != nil {
		return fmt.Errorf("setting %s: %w", envName, err)
	}
	return nil
}

// ResolveKeyFile returns path unchanged when absolute; a relative path is
// resolved against the directory of the running executable.
func ResolveKeyFile(path string) string {
	if path == "" {
		path = DefaultKeyFile
	}
	if filepath.IsAbs(path) {
		return path
	}
	exe, err := os.Executable()
	if err != nil {
		return path
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Join(filepath.Dir(exe), path)
}
