package workspace

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("markpath.workspace")

// Event describes one filesystem change below a watched root.
type Event struct {
	Path    string
	Removed bool
}

// Watcher follows a directory tree and reports file changes. The handler
// runs on a single goroutine, so consecutive events never overlap.
type Watcher struct {
	fsw     *fsnotify.Watcher
	handler func(Event)
	cancel  context.CancelFunc
	done    chan struct{}
}

// Watch starts watching every directory under root. Dot-directories are
// not descended into and events for dotfiles are dropped.
func Watch(root string, handler func(Event)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{fsw: fsw, handler: handler, done: make(chan struct{})}
	if err := w.addTree(root); err != nil {
		fsw.Close()
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	go w.run(ctx)
	return w, nil
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if name := d.Name(); strings.HasPrefix(name, ".") && path != root {
			return fs.SkipDir
		}
		return w.fsw.Add(path)
	})
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.done)
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.dispatch(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			log.Errorf("watch: %s", err.Error())
		}
	}
}

func (w *Watcher) dispatch(event fsnotify.Event) {
	if strings.HasPrefix(filepath.Base(event.Name), ".") {
		return
	}

	if event.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addTree(event.Name); err != nil {
				log.Errorf("watch %s: %s", event.Name, err.Error())
			}
			return
		}
	}

	switch {
	case event.Op.Has(fsnotify.Remove) || event.Op.Has(fsnotify.Rename):
		w.handler(Event{Path: event.Name, Removed: true})
	case event.Op.Has(fsnotify.Create) || event.Op.Has(fsnotify.Write):
		w.handler(Event{Path: event.Name})
	}
}

// Close stops the watcher and waits for the event loop to drain.
func (w *Watcher) Close() error {
	w.cancel()
	err := w.fsw.Close()
	<-w.done
	return err
}
