// Package watch provides a drop-folder watcher that converts text files to
// workbooks as they arrive. It monitors directories for new or modified
// .txt files and hands each one to a conversion handler after a debounce.
package watch

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Config holds the complete watcher configuration.
type Config struct {
	Directories []string `json:"directories"`
	Extensions  []string `json:"extensions"` // file extensions to convert; default .txt
	Pattern     string   `json:"pattern,omitempty"`
	Recursive   bool     `json:"recursive"`
	Debounce    int      `json:"debounceMs"` // quiet period before converting, in milliseconds
	OutDir      string   `json:"outDir,omitempty"`
	Template    string   `json:"template,omitempty"`
	StartRow    int      `json:"startRow,omitempty"`
	Column      int      `json:"column,omitempty"`
}

// Event records one file event the watcher acted on.
type Event struct {
	Time      time.Time `json:"time"`
	Path      string    `json:"path"`
	Operation string    `json:"operation"` // "create", "write"
	Output    string    `json:"output,omitempty"`
	Units     int       `json:"units,omitempty"`
	Status    string    `json:"status"` // "converted", "error", "skipped"
	Error     string    `json:"error,omitempty"`
}

// Outcome is what a handler reports back for a converted file.
type Outcome struct {
	Output string
	Units  int
}

// Handler converts one dropped file.
type Handler func(path string) (*Outcome, error)

// Watcher monitors directories and converts matching text files.
type Watcher struct {
	Config  Config
	Logger  *log.Logger
	Events  []Event
	Handler Handler

	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	debounce map[string]*time.Timer
}

// Status represents the current watcher status.
type Status struct {
	Running     bool     `json:"running"`
	Directories []string `json:"directories"`
	EventCount  int      `json:"eventCount"`
}

// New creates a Watcher with the given configuration.
func New(config Config) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("could not create file watcher: %w", err)
	}

	if config.Debounce <= 0 {
		config.Debounce = 500
	}
	if len(config.Extensions) == 0 {
		config.Extensions = []string{".txt"}
	}

	w := &Watcher{
		Config:   config,
		Logger:   log.New(os.Stderr, "[watch] ", log.LstdFlags),
		watcher:  fsw,
		debounce: make(map[string]*time.Timer),
	}

	return w, nil
}

// Start begins watching the configured directories. It blocks until the
// context is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	for _, dir := range w.Config.Directories {
		absDir, err := filepath.Abs(dir)
		if err != nil {
			return fmt.Errorf("could not resolve %s: %w", dir, err)
		}

		if w.Config.Recursive {
			if err := w.addRecursive(absDir); err != nil {
				return err
			}
		} else {
			if err := w.watcher.Add(absDir); err != nil {
				return fmt.Errorf("could not watch %s: %w", absDir, err)
			}
		}
	}

	w.Logger.Printf("Watching %d directory(ies) for %s files",
		len(w.Config.Directories), strings.Join(w.Config.Extensions, ", "))

	for {
		select {
		case <-ctx.Done():
			w.Logger.Println("Stopping watcher")
			return w.watcher.Close()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.Logger.Printf("Error: %v", err)
		}
	}
}

func (w *Watcher) addRecursive(dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // skip inaccessible paths
		}
		if info.IsDir() {
			// Skip hidden directories
			if strings.HasPrefix(filepath.Base(path), ".") && path != dir {
				return filepath.SkipDir
			}
			return w.watcher.Add(path)
		}
		return nil
	})
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	// Only create and write events trigger a conversion
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}

	path := event.Name
	if !w.Matches(path) {
		return
	}

	op := "write"
	if event.Has(fsnotify.Create) {
		op = "create"
	}

	// Debounce: editors fire several write events while saving, so wait
	// for a quiet period before converting.
	w.mu.Lock()
	if timer, ok := w.debounce[path]; ok {
		timer.Stop()
	}
	var timer *time.Timer
	timer = time.AfterFunc(time.Duration(w.Config.Debounce)*time.Millisecond, func() {
		// Drop our own entry so the map does not grow with every path
		// ever seen. A newer timer for the same path stays put.
		w.mu.Lock()
		if w.debounce[path] == timer {
			delete(w.debounce, path)
		}
		w.mu.Unlock()
		w.processFile(path, op)
	})
	w.debounce[path] = timer
	w.mu.Unlock()
}

// Matches reports whether a dropped file is a conversion candidate.
func (w *Watcher) Matches(path string) bool {
	base := filepath.Base(path)

	// Skip editor temp/backup files
	if strings.HasPrefix(base, "~$") || strings.HasPrefix(base, ".~") || strings.HasSuffix(base, "~") {
		return false
	}

	ext := strings.ToLower(filepath.Ext(path))
	matched := false
	for _, e := range w.Config.Extensions {
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		if strings.ToLower(e) == ext {
			matched = true
			break
		}
	}
	if !matched {
		return false
	}

	if w.Config.Pattern != "" {
		ok, _ := filepath.Match(w.Config.Pattern, base)
		if !ok {
			return false
		}
	}

	return true
}

func (w *Watcher) processFile(path string, operation string) {
	evt := Event{
		Time:      time.Now(),
		Path:      path,
		Operation: operation,
	}

	if w.Handler == nil {
		evt.Status = "skipped"
		w.Logger.Printf("Matched %s [no handler]", path)
	} else if outcome, err := w.Handler(path); err != nil {
		evt.Status = "error"
		evt.Error = err.Error()
		w.Logger.Printf("Error converting %s: %v", path, err)
	} else {
		evt.Status = "converted"
		if outcome != nil {
			evt.Output = outcome.Output
			evt.Units = outcome.Units
		}
		w.Logger.Printf("Converted %s (%d units) -> %s", path, evt.Units, evt.Output)
	}

	w.mu.Lock()
	w.Events = append(w.Events, evt)
	w.mu.Unlock()
}

// GetStatus returns the current watcher status.
func (w *Watcher) GetStatus() Status {
	w.mu.Lock()
	defer w.mu.Unlock()
	return Status{
		Running:     true,
		Directories: w.Config.Directories,
		EventCount:  len(w.Events),
	}
}

// GetEvents returns all recorded events.
func (w *Watcher) GetEvents() []Event {
	w.mu.Lock()
	defer w.mu.Unlock()
	events := make([]Event, len(w.Events))
	copy(events, w.Events)
	return events
}

// Daemon bookkeeping: a PID file so "copykit watch stop" can find the
// running watcher, and a saved config so "copykit watch status" can
// describe it.

const pidFile = ".copykit-watch.pid"

// WritePIDFile writes the current process ID to the PID file in dir.
func WritePIDFile(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	path := filepath.Join(dir, pidFile)
	return os.WriteFile(path, []byte(fmt.Sprintf("%d", os.Getpid())), 0644)
}

// ReadPIDFile reads the PID from the PID file.
func ReadPIDFile(dir string) (int, error) {
	path := filepath.Join(dir, pidFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	var pid int
	if _, err := fmt.Sscanf(string(data), "%d", &pid); err != nil {
		return 0, fmt.Errorf("invalid PID file: %w", err)
	}
	return pid, nil
}

// RemovePIDFile removes the PID file.
func RemovePIDFile(dir string) error {
	return os.Remove(filepath.Join(dir, pidFile))
}

// SaveConfig writes the watcher config to a JSON file in dir.
func SaveConfig(dir string, config Config) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "watch-config.json"), data, 0644)
}

// LoadConfig reads the watcher config from a JSON file in dir.
func LoadConfig(dir string) (*Config, error) {
	data, err := os.ReadFile(filepath.Join(dir, "watch-config.json"))
	if err != nil {
		return nil, err
	}
	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("invalid watch config: %w", err)
	}
	return &config, nil
}

// DefaultConfigDir returns the directory holding watcher state.
func DefaultConfigDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".copykit")
}
