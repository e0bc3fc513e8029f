package wizard

import (
	"testing"
	"time"

	"github.com/klytics/copykit/internal/convert"
)

func TestNewSessionFillsDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	s := NewSession(Defaults{})
	if s.Defaults.StartRow != 1 {
		t.Errorf("StartRow = %d, want 1", s.Defaults.StartRow)
	}
	if s.Defaults.Column != 1 {
		t.Errorf("Column = %d, want 1", s.Defaults.Column)
	}
	if s.Converter == nil {
		t.Error("expected a default converter")
	}
	if s.HistoryFile == "" {
		t.Error("expected a history file path")
	}
}

func TestNewSessionKeepsExplicitDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	s := NewSession(Defaults{Template: "campaign", StartRow: 5, Column: 2})
	if s.Defaults.Template != "campaign" {
		t.Errorf("Template = %q", s.Defaults.Template)
	}
	if s.Defaults.StartRow != 5 || s.Defaults.Column != 2 {
		t.Errorf("positions = (%d, %d), want (5, 2)", s.Defaults.StartRow, s.Defaults.Column)
	}
}

func TestConverterIsSwappable(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	called := false
	s := NewSession(Defaults{})
	s.Converter = func(txtPath string, opts convert.Options) (*convert.Result, error) {
		called = true
		return &convert.Result{Input: txtPath, Units: 2}, nil
	}

	res, err := s.Converter("copy.txt", convert.Options{StartRow: 1, Column: 1})
	if err != nil {
		t.Fatal(err)
	}
	if !called || res.Units != 2 {
		t.Errorf("stub converter not used: called=%v units=%d", called, res.Units)
	}
}

func TestFormatDuration(t *testing.T) {
	if got := formatDuration(42 * time.Second); got != "42s" {
		t.Errorf("formatDuration = %q, want 42s", got)
	}
	if got := formatDuration(2*time.Minute + 5*time.Second); got != "2m 5s" {
		t.Errorf("formatDuration = %q, want 2m 5s", got)
	}
}
