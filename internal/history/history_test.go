package history

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	return &Store{
		Path:    filepath.Join(t.TempDir(), "history.jsonl"),
		Enabled: true,
		MaxSize: 10 * 1024 * 1024,
	}
}

func TestRecordWritesEntry(t *testing.T) {
	s := testStore(t)

	s.Record(Entry{
		Timestamp:  time.Now(),
		Input:      "文案.txt",
		Output:     "文案.xlsx",
		Units:      12,
		DurationMs: 42,
		Status:     "ok",
	})

	entries, err := s.Entries()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Units != 12 {
		t.Errorf("units = %d", entries[0].Units)
	}
	if entries[0].Input != "文案.txt" {
		t.Errorf("input = %q", entries[0].Input)
	}
}

func TestRecordDisabledIsNoop(t *testing.T) {
	s := testStore(t)
	s.Enabled = false

	s.Record(Entry{Input: "a.txt", Status: "ok"})

	if _, err := os.Stat(s.Path); err == nil {
		t.Error("disabled store should not create file")
	}
}

func TestRecordCreatesDirectory(t *testing.T) {
	dir := t.TempDir()
	s := &Store{Path: filepath.Join(dir, "deep", "nested", "history.jsonl"), Enabled: true}

	s.Record(Entry{Input: "a.txt", Status: "ok"})

	if _, err := os.Stat(s.Path); os.IsNotExist(err) {
		t.Error("expected log file in nested directory")
	}
}

func TestEntriesSkipsMalformedLines(t *testing.T) {
	s := testStore(t)
	s.Record(Entry{Input: "good.txt", Status: "ok"})

	f, err := os.OpenFile(s.Path, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		t.Fatal(err)
	}
	f.WriteString("{this is not json\n")
	f.Close()

	s.Record(Entry{Input: "also-good.txt", Status: "ok"})

	entries, err := s.Entries()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Errorf("expected 2 parseable entries, got %d", len(entries))
	}
}

func TestEntriesMissingFile(t *testing.T) {
	s := testStore(t)

	entries, err := s.Entries()
	if err != nil {
		t.Fatal(err)
	}
	if entries != nil {
		t.Errorf("expected nil entries for missing file, got %v", entries)
	}
}

func TestFilter(t *testing.T) {
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	entries := []Entry{
		{Timestamp: base, Input: "spring.txt", Status: "ok"},
		{Timestamp: base.Add(time.Hour), Input: "summer.txt", Status: "error"},
		{Timestamp: base.Add(2 * time.Hour), Input: "spring_v2.txt", Status: "ok"},
	}

	got := Filter(entries, time.Time{}, time.Time{}, "spring", "")
	if len(got) != 2 {
		t.Errorf("input filter: expected 2, got %d", len(got))
	}

	got = Filter(entries, time.Time{}, time.Time{}, "", "error")
	if len(got) != 1 || got[0].Input != "summer.txt" {
		t.Errorf("status filter: got %v", got)
	}

	got = Filter(entries, base.Add(30*time.Minute), time.Time{}, "", "")
	if len(got) != 2 {
		t.Errorf("since filter: expected 2, got %d", len(got))
	}

	got = Filter(entries, time.Time{}, base.Add(30*time.Minute), "", "")
	if len(got) != 1 {
		t.Errorf("until filter: expected 1, got %d", len(got))
	}
}

func TestSummary(t *testing.T) {
	s := testStore(t)
	s.Record(Entry{Input: "a.txt", Units: 10, DurationMs: 100, Status: "ok"})
	s.Record(Entry{Input: "b.txt", Units: 5, DurationMs: 300, Status: "ok"})
	s.Record(Entry{Input: "c.txt", Status: "error", Error: "template not found"})

	stats, err := s.Summary()
	if err != nil {
		t.Fatal(err)
	}
	if stats.Total != 3 {
		t.Errorf("total = %d", stats.Total)
	}
	if stats.Units != 15 {
		t.Errorf("units = %d", stats.Units)
	}
	if stats.Failures != 1 {
		t.Errorf("failures = %d", stats.Failures)
	}
}

func TestRotate(t *testing.T) {
	s := testStore(t)
	s.MaxSize = 1 // force rotation

	s.Record(Entry{Input: "a.txt", Status: "ok"})
	if err := s.Rotate(); err != nil {
		t.Fatal(err)
	}
	if s.Size() != 0 {
		t.Errorf("expected truncated log, size = %d", s.Size())
	}
}

func TestClear(t *testing.T) {
	s := testStore(t)
	s.Record(Entry{Input: "a.txt", Status: "ok"})

	if err := s.Clear(); err != nil {
		t.Fatal(err)
	}
	entries, _ := s.Entries()
	if len(entries) != 0 {
		t.Errorf("expected empty history after clear, got %d entries", len(entries))
	}

	// Clearing a missing file is fine too.
	s2 := testStore(t)
	if err := s2.Clear(); err != nil {
		t.Errorf("clear on missing file: %v", err)
	}
}
