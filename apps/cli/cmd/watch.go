package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/netrequester/packages/core/config"
	"github.com/abdul-hamid-achik/netrequester/packages/core/env"
)

// WatchDebounceDelay is the debounce delay for file watch events
var WatchDebounceDelay = 300 * time.Millisecond

// watchedFiles lists the files a call reads: the config file, the .env files
// and an @file body. Files that do not exist yet are included so creating
// them triggers a run.
func watchedFiles(opts *callOptions) []string {
	var files []string
	if opts.configPath != "" {
		files = append(files, opts.configPath)
	} else {
		files = append(files, config.ConfigFilenames...)
	}
	if opts.envFile != "" {
		files = append(files, opts.envFile)
	} else {
		files = append(files, env.DotEnvFiles...)
	}
	if path, ok := strings.CutPrefix(opts.data, "@"); ok {
		files = append(files, path)
	}

	abs := make([]string, 0, len(files))
	for _, f := range files {
		if p, err := filepath.Abs(f); err == nil {
			abs = append(abs, p)
		}
	}
	return abs
}

// watchCall re-runs the call whenever one of its files changes, until ctx is
// done. Failed runs are reported and watching continues.
func watchCall(ctx context.Context, cmd *cobra.Command, opts *callOptions, path string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	// Editors replace files on save, so directories are watched rather than
	// the files themselves.
	files := make(map[string]bool)
	dirs := make(map[string]bool)
	for _, f := range watchedFiles(opts) {
		files[f] = true
		dir := filepath.Dir(f)
		if dirs[dir] {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			printError(cmd, fmt.Errorf("failed to watch %s: %w", dir, err))
		}
		dirs[dir] = true
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\nWatching for changes... (press Ctrl+C to stop)\n")

	var (
		debounce <-chan time.Time
		changed  string
	)
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if name, err := filepath.Abs(event.Name); err != nil || !files[name] {
				continue
			}
			changed = event.Name
			debounce = time.After(WatchDebounceDelay)

		case <-debounce:
			debounce = nil
			fmt.Fprintf(out, "\nFile changed: %s\nRe-sending...\n\n", changed)
			if err := callOnce(ctx, cmd, opts, path); err != nil {
				printError(cmd, err)
			}
			fmt.Fprintf(out, "\nWatching for changes... (press Ctrl+C to stop)\n")

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			printError(cmd, fmt.Errorf("watcher error: %w", err))
		}
	}
}
