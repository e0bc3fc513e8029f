// Package history keeps a local record of past conversions so users can
// see what was converted, when, and where the output went.
package history

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Entry represents a single recorded conversion.
type Entry struct {
	Timestamp  time.Time `json:"timestamp"`
	Input      string    `json:"input"`
	Output     string    `json:"output,omitempty"`
	Template   string    `json:"template,omitempty"`
	Units      int       `json:"units"`
	StartRow   int       `json:"start_row,omitempty"`
	Column     int       `json:"column,omitempty"`
	DurationMs int64     `json:"duration_ms"`
	Status     string    `json:"status"` // "ok" or "error"
	Error      string    `json:"error,omitempty"`
}

// Stats holds aggregated history statistics.
type Stats struct {
	Total       int     `json:"total"`
	Units       int     `json:"units"`
	Failures    int     `json:"failures"`
	AvgDuration float64 `json:"avg_duration_ms"`
}

// Store manages the local history log (~/.copykit/history.jsonl).
type Store struct {
	Path    string
	Enabled bool
	MaxSize int64 // default 10MB
}

// DefaultStore returns a Store at the default location.
func DefaultStore() *Store {
	home, _ := os.UserHomeDir()
	return &Store{
		Path:    filepath.Join(home, ".copykit", "history.jsonl"),
		Enabled: true,
		MaxSize: 10 * 1024 * 1024,
	}
}

// Record appends an entry to the history log. Best-effort: a conversion
// must never fail because its history could not be written.
func (s *Store) Record(e Entry) {
	if !s.Enabled || s.Path == "" {
		return
	}

	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return
	}

	f, err := os.OpenFile(s.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return
	}
	defer f.Close()

	data, err := json.Marshal(e)
	if err != nil {
		return
	}
	data = append(data, '\n')
	_, _ = f.Write(data)
}

// Entries reads all recorded conversions from the log file.
func (s *Store) Entries() ([]Entry, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var entries []Entry
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		if line == "" {
			continue
		}
		var e Entry
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			continue // skip malformed lines
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Filter returns entries matching the given criteria. Zero times and empty
// strings match everything.
func Filter(entries []Entry, since, until time.Time, input, status string) []Entry {
	var result []Entry
	for _, e := range entries {
		if !since.IsZero() && e.Timestamp.Before(since) {
			continue
		}
		if !until.IsZero() && e.Timestamp.After(until) {
			continue
		}
		if input != "" && !strings.Contains(e.Input, input) {
			continue
		}
		if status != "" && e.Status != status {
			continue
		}
		result = append(result, e)
	}
	return result
}

// Summary returns aggregated stats over the whole log.
func (s *Store) Summary() (*Stats, error) {
	entries, err := s.Entries()
	if err != nil {
		return nil, err
	}

	stats := &Stats{}
	var totalDuration int64
	for _, e := range entries {
		stats.Total++
		stats.Units += e.Units
		totalDuration += e.DurationMs
		if e.Status != "ok" {
			stats.Failures++
		}
	}
	if stats.Total > 0 {
		stats.AvgDuration = float64(totalDuration) / float64(stats.Total)
	}
	return stats, nil
}

// Size returns the size of the history log in bytes, or 0 if not found.
func (s *Store) Size() int64 {
	info, err := os.Stat(s.Path)
	if err != nil {
		return 0
	}
	return info.Size()
}

// Rotate truncates the log when it exceeds MaxSize.
func (s *Store) Rotate() error {
	info, err := os.Stat(s.Path)
	if err != nil {
		return nil
	}
	if s.MaxSize > 0 && info.Size() <= s.MaxSize {
		return nil
	}
	return os.Truncate(s.Path, 0)
}

// Clear removes all recorded history.
func (s *Store) Clear() error {
	if _, err := os.Stat(s.Path); os.IsNotExist(err) {
		return nil
	}
	return os.Truncate(s.Path, 0)
}
