package cli

import (
	"context"
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/toyz/mockable/internal/utils"
)

// PassFunc runs one generation pass
type PassFunc func(ctx context.Context) error

// Watcher reruns passes when Go sources below its roots change
type Watcher struct {
	fs          *fsnotify.Watcher
	debounce    time.Duration
	diagnostics *utils.DiagnosticSystem
	dirFilter   utils.DirectoryFilter
}

// NewWatcher watches every directory below roots, skipping the directories
// the scanner skips
func NewWatcher(roots []string, debounce time.Duration, diagnostics *utils.DiagnosticSystem) (*Watcher, error) {
	if diagnostics == nil {
		diagnostics = utils.NewDiagnosticSystem(utils.DiagnosticSilent)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fs:          fsw,
		debounce:    debounce,
		diagnostics: diagnostics,
		dirFilter:   utils.DefaultDirectoryFilter(),
	}
	for _, root := range roots {
		if err := w.addRecursive(root); err != nil {
			fsw.Close()
			return nil, err
		}
	}
	return w, nil
}

// Run starts a pass right away and another one after every burst of changes.
// A pending pass is cancelled and awaited before the next one starts, so
// passes never overlap. Run returns when ctx is done.
func (w *Watcher) Run(ctx context.Context, pass PassFunc) error {
	defer w.fs.Close()

	cancel := context.CancelFunc(func() {})
	done := make(chan struct{})
	close(done)

	start := func() {
		cancel()
		<-done

		var passCtx context.Context
		passCtx, cancel = context.WithCancel(ctx)
		finished := make(chan struct{})
		done = finished

		go func() {
			defer close(finished)
			if err := pass(passCtx); err != nil && !stderrors.Is(err, context.Canceled) {
				w.diagnostics.Error("pass failed: %v", err)
			}
		}()
	}
	stop := func() {
		cancel()
		<-done
	}

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	start()
	for {
		select {
		case <-ctx.Done():
			stop()
			return nil

		case event, ok := <-w.fs.Events:
			if !ok {
				stop()
				return nil
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addRecursive(event.Name); err != nil {
						w.diagnostics.Warn("cannot watch %s: %v", event.Name, err)
					}
				}
			}
			if !Relevant(event) {
				continue
			}
			w.diagnostics.Debug("change: %s", event)
			timer.Reset(w.debounce)

		case <-timer.C:
			w.diagnostics.Info("changes detected, regenerating")
			start()

		case err, ok := <-w.fs.Errors:
			if !ok {
				stop()
				return nil
			}
			w.diagnostics.Warn("file watcher error: %v", err)
		}
	}
}

// Relevant reports whether an event can change the generated output:
// hand-written Go sources and go.mod. Generated and test files are ignored.
func Relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	name := filepath.Base(event.Name)
	if name == "go.mod" {
		return true
	}
	return strings.HasSuffix(name, ".go") &&
		!strings.HasSuffix(name, "_test.go") &&
		!strings.HasPrefix(name, utils.GeneratedFilePrefix)
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && !w.dirFilter(path, d) {
			return fs.SkipDir
		}
		return w.fs.Add(path)
	})
}
