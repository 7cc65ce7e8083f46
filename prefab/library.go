package prefab

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/DangerosoDavo/bbecs"
	"github.com/DangerosoDavo/bbecs/config"
)

var (
	ErrTemplateNotFound  = errors.New("prefab: template not found")
	ErrDuplicateTemplate = errors.New("prefab: duplicate template name")
)

// Library indexes the templates of one directory by name. It is safe for
// concurrent use, so a watcher goroutine may reload while the host spawns.
type Library struct {
	dir string

	mu        sync.RWMutex
	templates map[string]*Template
	files     map[string]string // path -> template name
}

func newLibrary(dir string) *Library {
	return &Library{
		dir:       dir,
		templates: make(map[string]*Template),
		files:     make(map[string]string),
	}
}

// LoadDir loads every .yaml and .yml file in dir. Subdirectories are ignored.
func LoadDir(dir string) (*Library, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "prefab: read dir %s", dir)
	}

	lib := newLibrary(dir)
	for _, entry := range entries {
		if entry.IsDir() || !isTemplateFile(entry.Name()) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		t, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		if err := lib.put(path, t); err != nil {
			return nil, err
		}
	}
	return lib, nil
}

// Open loads the configured directory and, when watching is enabled, keeps the
// library current until ctx ends.
func Open(ctx context.Context, cfg config.PrefabConfig, logger bbecs.Logger) (*Library, error) {
	if cfg.Dir == "" {
		return newLibrary(""), nil
	}
	lib, err := LoadDir(cfg.Dir)
	if err != nil {
		return nil, err
	}
	if !cfg.Watch {
		return lib, nil
	}

	watcher, err := NewWatcher(cfg.Dir)
	if err != nil {
		return nil, err
	}
	go func() {
		defer watcher.Close()
		_ = lib.Watch(ctx, watcher, logger)
	}()
	return lib, nil
}

func (l *Library) put(path string, t *Template) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if owner, ok := l.ownerOf(t.Name); ok && owner != path {
		return errors.Wrapf(ErrDuplicateTemplate, "%q in %s and %s", t.Name, owner, path)
	}
	if old, ok := l.files[path]; ok && old != t.Name {
		delete(l.templates, old)
	}
	l.templates[t.Name] = t
	l.files[path] = t.Name
	return nil
}

func (l *Library) ownerOf(name string) (string, bool) {
	for path, n := range l.files {
		if n == name {
			return path, true
		}
	}
	return "", false
}

// Get returns the template called name.
func (l *Library) Get(name string) (*Template, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	t, ok := l.templates[name]
	if !ok {
		return nil, errors.Wrapf(ErrTemplateNotFound, "%q", name)
	}
	return t, nil
}

// Names lists the loaded templates in sorted order.
func (l *Library) Names() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	names := make([]string, 0, len(l.templates))
	for name := range l.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Reload re-reads path. A file that no longer exists drops its template; a
// file that fails to parse leaves the previous version in place.
func (l *Library) Reload(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		l.forget(path)
		return nil
	}
	t, err := LoadFile(path)
	if err != nil {
		return err
	}
	return l.put(path, t)
}

func (l *Library) forget(path string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if name, ok := l.files[path]; ok {
		delete(l.templates, name)
		delete(l.files, path)
	}
}

// Watch reloads templates reported by watcher until ctx ends or the watcher closes.
func (l *Library) Watch(ctx context.Context, watcher *Watcher, logger bbecs.Logger) error {
	if logger == nil {
		logger = bbecs.NewZapLogger(nil)
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case path, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if err := l.Reload(path); err != nil {
				logger.Error("prefab reload failed", "path", path, "err", err)
				continue
			}
			logger.Info("prefab reloaded", "path", path)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("prefab watcher error", "err", err)
		}
	}
}
