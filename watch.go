package dbmldoc

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"
)

// DefaultCacheSize is the number of rendered documents a Watcher keeps.
const DefaultCacheSize = 128

// Watcher keeps the preview documents of DBML files up to date. Every write
// to a watched file regenerates its PreviewFileName; a file that does not
// parse gets the ErrorDocument instead, so the preview always reflects the
// latest save.
type Watcher struct {
	cfg     *Config
	log     logrus.FieldLogger
	watcher *fsnotify.Watcher
	// rendered maps a content hash to its document.
	rendered *lru.Cache[string, string]

	mu sync.Mutex
	// files maps each watched file to the hash of its last written document.
	files map[string]string
}

// NewWatcher creates a Watcher. A cacheSize below one selects DefaultCacheSize
// and a nil log selects the standard logrus logger.
func NewWatcher(cfg *Config, cacheSize int, log logrus.FieldLogger) (*Watcher, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cacheSize < 1 {
		cacheSize = DefaultCacheSize
	}
	if log == nil {
		log = logrus.StandardLogger()
	}

	rendered, err := lru.New[string, string](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	return &Watcher{
		cfg:      cfg,
		log:      log,
		watcher:  watcher,
		rendered: rendered,
		files:    make(map[string]string),
	}, nil
}

// Add starts watching path and writes its preview right away. The parent
// directory is watched so that editors replacing the file are noticed.
func (w *Watcher) Add(path string) error {
	path = filepath.Clean(path)

	w.mu.Lock()
	_, known := w.files[path]
	if !known {
		w.files[path] = ""
	}
	w.mu.Unlock()

	if !known {
		if err := w.watcher.Add(filepath.Dir(path)); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
	}

	_, err := w.Refresh(path)
	return err
}

// Refresh regenerates the preview of path if its content changed since the
// last write. It reports whether the preview was written. Invalid DBML is
// not an error: the error document is written instead.
func (w *Watcher) Refresh(path string) (bool, error) {
	path = filepath.Clean(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", path, err)
	}
	sum := sha256.Sum256(data)
	hash := hex.EncodeToString(sum[:])

	w.mu.Lock()
	defer w.mu.Unlock()

	if last, ok := w.files[path]; ok && last == hash {
		return false, nil
	}

	entry := w.log.WithFields(logrus.Fields{"source": path, "output": PreviewFileName(path)})

	// Error documents name their file, so only successful renders are shared.
	content, cached := w.rendered.Get(hash)
	if !cached {
		content, err = Generate(string(data), w.cfg)
		if err != nil {
			entry.WithError(err).Warn("documentation failed")
			content = ErrorDocument(path, err)
		} else {
			w.rendered.Add(hash, content)
		}
	}

	if err := WriteToFile(PreviewFileName(path), content); err != nil {
		return false, err
	}
	w.files[path] = hash

	entry.WithField("cached", cached).Info("documentation written")
	return true, nil
}

// Run processes file events until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 || !w.watching(event.Name) {
				continue
			}
			if _, err := w.Refresh(event.Name); err != nil {
				w.log.WithError(err).WithField("source", event.Name).Error("refresh failed")
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.log.WithError(err).Error("watcher error")
		}
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

func (w *Watcher) watching(path string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.files[filepath.Clean(path)]
	return ok
}
