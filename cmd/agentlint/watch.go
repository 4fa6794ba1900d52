package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/agentlint/agentlint/pkg/logger"
	"github.com/agentlint/agentlint/pkg/presenter"
)

// Directories whose churn should never trigger a re-validation: workspace/
// is written by the agent at runtime, .git by version control.
var watchIgnoreDirs = []string{"workspace", ".git"}

// runWatchMode validates the target, then re-validates whenever a file
// under it changes, until interrupted.
func runWatchMode(ctx context.Context, target string, config *ValidateConfig) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		presenter.Warning("Cancellation requested, shutting down...")
		cancel()
	}()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		presenter.Error(err, "Failed to create file watcher")
		os.Exit(exitInvalid)
	}
	defer watcher.Close()

	if err := addWatchDirs(watcher, target); err != nil {
		presenter.Error(err, "Failed to watch target")
		os.Exit(exitInvalid)
	}

	// Initial pass before waiting for changes.
	validateOnce(ctx, target, config)

	changed := make(chan string, 1)
	go debounceEvents(ctx, watcher, target, changed, time.Duration(config.Debounce)*time.Millisecond)

	for {
		select {
		case path, ok := <-changed:
			if !ok {
				return
			}
			presenter.Info("")
			presenter.Info("Change detected: " + path)
			// New directories need watching too; re-walk is cheap on
			// convention-sized trees.
			if err := addWatchDirs(watcher, target); err != nil {
				logger.G(ctx).WithError(err).Debug("failed to refresh watch dirs")
			}
			validateOnce(ctx, target, config)
		case <-ctx.Done():
			return
		}
	}
}

func validateOnce(ctx context.Context, target string, config *ValidateConfig) {
	rep, err := runValidation(ctx, target, config)
	if err != nil {
		presenter.Error(err, "Validation failed")
		return
	}
	if err := emitReport(rep, config); err != nil {
		presenter.Error(err, "Failed to emit report")
	}
}

// debounceEvents collapses bursts of filesystem events into a single
// re-validation trigger carrying the last changed path.
func debounceEvents(ctx context.Context, watcher *fsnotify.Watcher, target string, changed chan<- string, debounce time.Duration) {
	defer close(changed)

	var timer *time.Timer
	var pending string
	var timerCh <-chan time.Time

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if ignoredEvent(target, event.Name) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			pending = event.Name
			if timer == nil {
				timer = time.NewTimer(debounce)
				timerCh = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(debounce)
			}
		case <-timerCh:
			timer = nil
			timerCh = nil
			select {
			case changed <- pending:
			case <-ctx.Done():
				return
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			presenter.Error(err, "File watcher error")
			logger.G(ctx).WithError(err).Error("error watching files")
		case <-ctx.Done():
			return
		}
	}
}

func addWatchDirs(watcher *fsnotify.Watcher, target string) error {
	return filepath.Walk(target, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		if ignoredEvent(target, path) && path != target {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}

func ignoredEvent(target, path string) bool {
	rel, err := filepath.Rel(target, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	for _, dir := range watchIgnoreDirs {
		if rel == dir || strings.HasPrefix(rel, dir+"/") {
			return true
		}
	}
	return false
}
