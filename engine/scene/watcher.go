package scene

import (
	"errors"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/spaghettifunk/prism/engine/core"
)

var ErrWatcherClosed = errors.New("scene watcher already closed")

/**
 * Watcher posts EVENT_CODE_SCENE_CHANGED whenever a watched scene file is
 * written or replaced. Directories are watched rather than files, because
 * most editors save by renaming a new file over the old one.
 */
type Watcher struct {
	bus      *core.EventBus
	fsnotify *fsnotify.Watcher

	mutex    sync.Mutex
	files    map[string]bool
	dirs     map[string]int
	isClosed bool

	done chan struct{}
	wg   sync.WaitGroup
}

func NewWatcher(bus *core.EventBus) (*Watcher, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		bus:      bus,
		fsnotify: fsWatch,
		files:    make(map[string]bool),
		dirs:     make(map[string]int),
		done:     make(chan struct{}),
	}
	w.wg.Add(1)
	go w.start()
	return w, nil
}

// Watch starts reporting changes to the file at path.
func (w *Watcher) Watch(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	w.mutex.Lock()
	defer w.mutex.Unlock()
	if w.isClosed {
		return ErrWatcherClosed
	}
	if w.files[abs] {
		return nil
	}
	dir := filepath.Dir(abs)
	if w.dirs[dir] == 0 {
		if err := w.fsnotify.Add(dir); err != nil {
			return err
		}
	}
	w.dirs[dir]++
	w.files[abs] = true
	core.LogDebug("watching scene file %s", abs)
	return nil
}

// Unwatch stops reporting changes to path.
func (w *Watcher) Unwatch(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	w.mutex.Lock()
	defer w.mutex.Unlock()
	if !w.files[abs] {
		return nil
	}
	delete(w.files, abs)
	dir := filepath.Dir(abs)
	w.dirs[dir]--
	if w.dirs[dir] == 0 {
		delete(w.dirs, dir)
		if !w.isClosed {
			return w.fsnotify.Remove(dir)
		}
	}
	return nil
}

func (w *Watcher) isWatched(name string) (string, bool) {
	abs, err := filepath.Abs(name)
	if err != nil {
		return "", false
	}
	w.mutex.Lock()
	defer w.mutex.Unlock()
	return abs, w.files[abs]
}

func (w *Watcher) start() {
	defer w.wg.Done()
	for {
		select {
		case e, ok := <-w.fsnotify.Events:
			if !ok {
				return
			}
			if !e.Op.Has(fsnotify.Write) && !e.Op.Has(fsnotify.Create) && !e.Op.Has(fsnotify.Rename) {
				continue
			}
			path, watched := w.isWatched(e.Name)
			if !watched {
				continue
			}
			core.LogDebug("scene file changed: %s (%s)", path, e.Op)
			w.bus.Post(core.EventContext{
				Type: core.EVENT_CODE_SCENE_CHANGED,
				Data: &core.SceneEvent{Path: path},
			})

		case err, ok := <-w.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError("scene watcher: %s", err)

		case <-w.done:
			return
		}
	}
}

// Close stops the watcher and waits for its goroutine to exit.
func (w *Watcher) Close() error {
	w.mutex.Lock()
	if w.isClosed {
		w.mutex.Unlock()
		return nil
	}
	w.isClosed = true
	w.mutex.Unlock()

	close(w.done)
	err := w.fsnotify.Close()
	w.wg.Wait()
	return err
}
