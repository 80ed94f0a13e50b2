package dictionary

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const reloadDelay = 100 * time.Millisecond

// WatchedFile is a word list file dictionary that reloads itself when the
// file changes on disk. A reload that fails keeps the previous words.
type WatchedFile struct {
	path    string
	current atomic.Pointer[Trie]
	watcher *fsnotify.Watcher
	logger  *zap.Logger

	mu    sync.Mutex
	timer *time.Timer

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// WatchFile loads path and starts watching it for changes.
func WatchFile(path string, logger *zap.Logger) (*WatchedFile, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	trie, err := LoadFile(path)
	if err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	// Editors often replace the file on save, so the directory is watched.
	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch directory %s: %w", dir, err)
	}

	wf := &WatchedFile{
		path:    filepath.Clean(path),
		watcher: watcher,
		logger:  logger.With(zap.String("wordlist", path)),
		stopCh:  make(chan struct{}),
	}
	wf.current.Store(trie)

	wf.wg.Add(1)
	go wf.watch()

	return wf, nil
}

// Lookup implements Dictionary.
func (w *WatchedFile) Lookup(ctx context.Context, word string) (Entry, error) {
	return w.current.Load().Lookup(ctx, word)
}

// Len returns the number of words currently loaded.
func (w *WatchedFile) Len() int {
	return w.current.Load().Len()
}

// Words implements Lister.
func (w *WatchedFile) Words() []string {
	return w.current.Load().Words()
}

// Close stops watching. It is safe to call more than once.
func (w *WatchedFile) Close() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.stopCh)
		err = w.watcher.Close()
		w.wg.Wait()

		w.mu.Lock()
		if w.timer != nil {
			w.timer.Stop()
		}
		w.mu.Unlock()
	})
	return err
}

func (w *WatchedFile) watch() {
	defer w.wg.Done()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				w.scheduleReload()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("word list watch error", zap.Error(err))

		case <-w.stopCh:
			return
		}
	}
}

func (w *WatchedFile) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(reloadDelay, w.reload)
}

func (w *WatchedFile) reload() {
	select {
	case <-w.stopCh:
		return
	default:
	}

	trie, err := LoadFile(w.path)
	if err != nil {
		w.logger.Warn("word list reload failed, keeping previous words", zap.Error(err))
	} else {
		w.current.Store(trie)
		w.logger.Info("word list reloaded", zap.Int("words", trie.Len()))
	}
}
