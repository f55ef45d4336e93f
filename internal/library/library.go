// Package library manages a directory of named macro recordings.
package library

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ivan-guerra/macro-recorder/internal/record"
)

const macroExt = ".json"

// Entry describes one stored recording.
type Entry struct {
	// Name is the macro name (file name without extension).
	Name string `json:"name"`

	// Records is the number of samples in the recording.
	Records int `json:"records"`

	// DurationSec is the recording's elapsed time in seconds.
	DurationSec float64 `json:"duration_sec"`

	// ModTime is the file's last modification time.
	ModTime time.Time `json:"mod_time"`
}

// Library lists, loads and saves recordings in a single directory. An
// fsnotify watcher keeps the cached listing current when files change
// behind the process's back.
type Library struct {
	dir string

	mu      sync.Mutex
	entries map[string]Entry

	watcher *fsnotify.Watcher
	done    chan struct{}
}

// Open creates the macro directory if needed, scans it, and starts the
// directory watcher.
func Open(dir string) (*Library, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create macro directory: %w", err)
	}

	l := &Library{
		dir:     dir,
		entries: make(map[string]Entry),
		done:    make(chan struct{}),
	}
	l.rescan()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch macro directory: %w", err)
	}
	l.watcher = watcher
	go l.watch()

	return l, nil
}

// Close stops the directory watcher.
func (l *Library) Close() error {
	close(l.done)
	return l.watcher.Close()
}

// Dir returns the macro directory path.
func (l *Library) Dir() string {
	return l.dir
}

// List returns all stored recordings sorted by name.
func (l *Library) List() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Entry, 0, len(l.entries))
	for _, e := range l.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Load reads the named recording.
func (l *Library) Load(name string) ([]record.Record, error) {
	path, err := l.path(name)
	if err != nil {
		return nil, err
	}
	return record.Load(path)
}

// Save writes a recording under the given name, overwriting any previous
// recording with that name.
func (l *Library) Save(name string, records []record.Record) error {
	path, err := l.path(name)
	if err != nil {
		return err
	}
	if err := record.Save(path, records); err != nil {
		return err
	}

	// Update the cache immediately rather than waiting for the watcher.
	l.mu.Lock()
	l.entries[name] = Entry{
		Name:        name,
		Records:     len(records),
		DurationSec: record.Duration(records),
		ModTime:     time.Now(),
	}
	l.mu.Unlock()
	return nil
}

// path validates the macro name and returns its file path. Names must be
// plain file names, not paths.
func (l *Library) path(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("macro name must not be empty")
	}
	if strings.ContainsAny(name, `/\`) || name != filepath.Base(name) {
		return "", fmt.Errorf("invalid macro name %q", name)
	}
	return filepath.Join(l.dir, name+macroExt), nil
}

// rescan rebuilds the entry cache from the directory contents. Files that
// fail to decode are skipped.
func (l *Library) rescan() {
	dirents, err := os.ReadDir(l.dir)
	if err != nil {
		log.Printf("Library: failed to read %s: %v", l.dir, err)
		return
	}

	entries := make(map[string]Entry)
	for _, de := range dirents {
		if de.IsDir() || !strings.HasSuffix(de.Name(), macroExt) {
			continue
		}
		name := strings.TrimSuffix(de.Name(), macroExt)

		records, err := record.Load(filepath.Join(l.dir, de.Name()))
		if err != nil {
			log.Printf("Library: skipping %s: %v", de.Name(), err)
			continue
		}

		info, err := de.Info()
		if err != nil {
			continue
		}
		entries[name] = Entry{
			Name:        name,
			Records:     len(records),
			DurationSec: record.Duration(records),
			ModTime:     info.ModTime(),
		}
	}

	l.mu.Lock()
	l.entries = entries
	l.mu.Unlock()
}

// watch reacts to file system changes in the macro directory.
func (l *Library) watch() {
	for {
		select {
		case <-l.done:
			return
		case ev, ok := <-l.watcher.Events:
			if !ok {
				return
			}
			if !strings.HasSuffix(ev.Name, macroExt) {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
				l.rescan()
			}
		case err, ok := <-l.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("Library: watcher error: %v", err)
		}
	}
}
