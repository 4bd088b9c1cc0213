// Package watcher is an opt-in fsnotify-driven directory watch
// (SPEC_FULL.md domain stack): "qmldiff watch <root>" re-runs a rebuild
// callback whenever a *.qmd file under root changes, supplementing (never
// replacing) the hashtab's own 60-second persistence ticker in
// pkg/qmldiff.Engine.StartSavingThread.
package watcher

import (
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// Watcher watches a directory tree for changes to files with a given
// suffix.
type Watcher struct {
	fsw    *fsnotify.Watcher
	suffix string
}

// New creates a Watcher rooted at root, recursively watching every
// subdirectory present at construction time. Directories created later are
// not picked up automatically; re-create the Watcher after a structural
// change.
func New(root, suffix string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{fsw: fsw, suffix: suffix}
	if err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return fsw.Add(path)
		}
		return nil
	}); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

// Run blocks, invoking onChange once for every create/write/rename event
// touching a file with the watched suffix, until stop is closed or the
// underlying watcher errors out.
func (w *Watcher) Run(stop <-chan struct{}, onChange func(path string)) error {
	for {
		select {
		case <-stop:
			return w.fsw.Close()
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if !strings.HasSuffix(ev.Name, w.suffix) {
				continue
			}
			onChange(ev.Name)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			return err
		}
	}
}

// Close stops the watcher without waiting for Run to return.
func (w *Watcher) Close() error { return w.fsw.Close() }
