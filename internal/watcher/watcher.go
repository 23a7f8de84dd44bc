// pattern: Imperative Shell

package watcher

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"agentdesk/internal/logging"
	"agentdesk/internal/workspace"
)

// Event is a single observed change to an editable file, root-relative.
type Event struct {
	Path string `json:"path"`
	Op   string `json:"op"`
}

// Watcher observes the editable subtrees of a workspace and reports file
// changes. Directories created under a watched subtree are picked up as they
// appear.
type Watcher struct {
	resolver *workspace.Resolver
	logger   *logging.ScopedLogger
	notify   func(Event)
	fsw      *fsnotify.Watcher
	done     chan struct{}
}

// New creates a Watcher over the resolver's editable patterns. notify is
// called from the watch goroutine for every observed change.
func New(resolver *workspace.Resolver, logger *logging.ScopedLogger, notify func(Event)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		resolver: resolver,
		logger:   logger,
		notify:   notify,
		fsw:      fsw,
		done:     make(chan struct{}),
	}

	for _, pattern := range resolver.Patterns() {
		w.addTree(pattern)
	}

	return w, nil
}

// addTree registers pattern and every directory below it. A pattern absent
// from disk is skipped; it may come into existence later, at which point a
// restart picks it up.
func (w *Watcher) addTree(root string) {
	info, err := os.Stat(root)
	if err != nil {
		return
	}
	if !info.IsDir() {
		// Watch the parent so changes to the file itself are seen.
		if err := w.fsw.Add(filepath.Dir(root)); err != nil {
			w.logger.Debug("watch add failed", "path", root, "error", err)
		}
		return
	}

	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if workspace.SkipDir(d.Name()) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			w.logger.Debug("watch add failed", "path", path, "error", err)
		}
		return nil
	})
}

// Start launches the watch loop. Non-blocking.
func (w *Watcher) Start() {
	go w.run()
}

func (w *Watcher) run() {
	defer close(w.done)
	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", "error", err)
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	base := filepath.Base(ev.Name)
	if workspace.SkipDir(base) {
		return
	}

	// New directories join the watch set so their contents are observed.
	if ev.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			w.addTree(ev.Name)
		}
	}

	rel, err := filepath.Rel(w.resolver.Root(), ev.Name)
	if err != nil || strings.HasPrefix(rel, "..") {
		return
	}

	if w.notify != nil {
		w.notify(Event{Path: filepath.ToSlash(rel), Op: opString(ev.Op)})
	}
}

func opString(op fsnotify.Op) string {
	switch {
	case op.Has(fsnotify.Create):
		return "create"
	case op.Has(fsnotify.Write):
		return "write"
	case op.Has(fsnotify.Remove):
		return "remove"
	case op.Has(fsnotify.Rename):
		return "rename"
	default:
		return "chmod"
	}
}

// Close stops the watcher and waits for the watch loop to exit.
func (w *Watcher) Close() error {
	err := w.fsw.Close()
	<-w.done
	return err
}
