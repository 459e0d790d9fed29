package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
)

// runWatch sends the contents of a file as the next prompt every time the
// file is saved. Deleting the file or pressing Ctrl+C ends the session.
func runWatch(args []string, opts globalOptions) int {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	var debounce time.Duration
	fs.DurationVar(&debounce, "debounce", 500*time.Millisecond, "debounce interval for file changes")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: gptcore watch <file> [flags]")
		return 2
	}
	target, err := filepath.Abs(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: resolving %s: %v\n", fs.Arg(0), err)
		return 2
	}

	cfg, conv, code := startSession(opts)
	if conv == nil {
		return code
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: creating watcher: %v\n", err)
		return 2
	}
	defer watcher.Close()

	// Watch the directory: editors often replace the file instead of
	// writing it in place.
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		fmt.Fprintf(os.Stderr, "error: watching %s: %v\n", filepath.Dir(target), err)
		return 2
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	done := make(chan struct{})
	go func() {
		<-sigCh
		close(done)
	}()

	fmt.Printf("watch: sending %s on every save (Ctrl+C to stop)\n", target)

	in := newFileInput(watcher, target, debounce, done)
	r := newRenderer(os.Stdout, cfg.Render, isTerminal(os.Stdout))
	return endSession(conv.Run(context.Background(), in.Next, r.Output))
}

// fileInput turns debounced writes of one file into prompts.
type fileInput struct {
	watcher  *fsnotify.Watcher
	target   string
	debounce time.Duration
	done     <-chan struct{}
}

func newFileInput(watcher *fsnotify.Watcher, target string, debounce time.Duration, done <-chan struct{}) *fileInput {
	return &fileInput{
		watcher:  watcher,
		target:   filepath.Clean(target),
		debounce: debounce,
		done:     done,
	}
}

// Next implements core.Input. It blocks until the target settles after a
// change. A settled file that no longer exists ends the session; a settled
// empty file is skipped.
func (f *fileInput) Next() (string, error) {
	var settle <-chan time.Time
	for {
		select {
		case event, ok := <-f.watcher.Events:
			if !ok {
				return "", nil
			}
			if filepath.Clean(event.Name) != f.target {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
				event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				settle = time.After(f.debounce)
			}

		case err, ok := <-f.watcher.Errors:
			if !ok {
				return "", nil
			}
			return "", fmt.Errorf("watching %s: %w", f.target, err)

		case <-settle:
			settle = nil
			data, err := os.ReadFile(f.target)
			if errors.Is(err, os.ErrNotExist) {
				return "", nil
			}
			if err != nil {
				return "", fmt.Errorf("reading %s: %w", f.target, err)
			}
			if prompt := strings.TrimSpace(string(data)); prompt != "" {
				return prompt, nil
			}

		case <-f.done:
			return "", nil
		}
	}
}
