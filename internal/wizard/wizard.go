// Package wizard provides the interactive, prompt-driven front end for
// conversions. It walks an operator through one conversion at a time —
// text file, template, output, fill position — with sensible defaults
// pre-filled, and prints a summary after each run.
package wizard

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/chzyer/readline"

	"github.com/klytics/copykit/internal/convert"
	"github.com/klytics/copykit/internal/segment"
)

// Defaults pre-fills the wizard prompts. Usually sourced from config.
type Defaults struct {
	Template string
	OutDir   string
	StartRow int
	Column   int
}

// Converter runs one conversion. Swappable in tests.
type Converter func(txtPath string, opts convert.Options) (*convert.Result, error)

// Session manages one interactive wizard session.
type Session struct {
	Defaults    Defaults
	HistoryFile string
	Converter   Converter

	StartTime time.Time
	Converted int
}

// NewSession creates a wizard session with prompt history under ~/.copykit.
func NewSession(defaults Defaults) *Session {
	home, _ := os.UserHomeDir()
	histFile := filepath.Join(home, ".copykit", "wizard_history")
	os.MkdirAll(filepath.Dir(histFile), 0755)

	if defaults.StartRow < 1 {
		defaults.StartRow = 1
	}
	if defaults.Column < 1 {
		defaults.Column = 1
	}

	return &Session{
		Defaults:    defaults,
		HistoryFile: histFile,
		Converter:   convert.File,
		StartTime:   time.Now(),
	}
}

// Run starts the prompt loop. Blocks until the operator leaves the text
// file prompt empty or hits Ctrl+D.
func (s *Session) Run(ctx context.Context) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "copykit> ",
		HistoryFile:     s.HistoryFile,
		AutoComplete:    readline.NewPrefixCompleter(readline.PcItemDynamic(listTextFiles)),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	fmt.Println("CopyKit — Interactive Conversion")
	fmt.Println("Answer the prompts; press Enter to accept the [default].")
	fmt.Println("Leave the text file empty (or Ctrl+D) to quit.")
	fmt.Println()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		txtPath, err := prompt(rl, "Text file", "")
		if err != nil || txtPath == "" {
			break
		}
		if _, err := os.Stat(txtPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s does not exist\n\n", txtPath)
			continue
		}

		if err := s.convertOne(rl, txtPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n\n", err)
			continue
		}
	}

	elapsed := time.Since(s.StartTime)
	fmt.Printf("\nSession ended. %d file(s) converted in %s.\n", s.Converted, formatDuration(elapsed))
	return nil
}

func (s *Session) convertOne(rl *readline.Instance, txtPath string) error {
	if preview, err := previewUnits(txtPath); err == nil {
		fmt.Printf("  %d copy block(s) found\n", preview)
	}

	tplDefault := s.Defaults.Template
	tplLabel := tplDefault
	if tplLabel == "" {
		tplLabel = "built-in"
	}
	tpl, err := prompt(rl, fmt.Sprintf("Template [%s]", tplLabel), tplDefault)
	if err != nil {
		return err
	}

	outDefault := convert.DerivedOutput(txtPath, s.Defaults.OutDir)
	out, err := prompt(rl, fmt.Sprintf("Output [%s]", outDefault), outDefault)
	if err != nil {
		return err
	}

	startRow, err := promptInt(rl, "Start row", s.Defaults.StartRow)
	if err != nil {
		return err
	}
	column, err := promptInt(rl, "Column", s.Defaults.Column)
	if err != nil {
		return err
	}

	res, err := s.Converter(txtPath, convert.Options{
		Template: tpl,
		Output:   out,
		StartRow: startRow,
		Column:   column,
	})
	if err != nil {
		return err
	}

	s.Converted++
	fmt.Printf("\nDone: %d row(s) written to %s\n", res.Units, res.Output)
	if res.Units == 0 {
		fmt.Println("(the text file had no copy blocks — the output is a plain template copy)")
	}
	fmt.Println()
	return nil
}

// prompt reads one line; an empty answer returns the default.
func prompt(rl *readline.Instance, label, def string) (string, error) {
	rl.SetPrompt(label + ": ")
	line, err := rl.Readline()
	if err != nil {
		return "", err
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return def, nil
	}
	return line, nil
}

// promptInt keeps asking until it gets a positive integer or an empty
// answer (which takes the default).
func promptInt(rl *readline.Instance, label string, def int) (int, error) {
	for {
		answer, err := prompt(rl, fmt.Sprintf("%s [%d]", label, def), "")
		if err != nil {
			return 0, err
		}
		if answer == "" {
			return def, nil
		}
		n, err := strconv.Atoi(answer)
		if err != nil || n < 1 {
			fmt.Println("  Enter a whole number of 1 or more")
			continue
		}
		return n, nil
	}
}

func previewUnits(txtPath string) (int, error) {
	data, err := os.ReadFile(txtPath)
	if err != nil {
		return 0, err
	}
	text, err := segment.Decode(data)
	if err != nil {
		return 0, err
	}
	return len(segment.Split(text)), nil
}

// listTextFiles completes .txt paths in the current directory.
func listTextFiles(string) []string {
	matches, _ := filepath.Glob("*.txt")
	return matches
}

func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.0fs", d.Seconds())
	}
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%dm %ds", m, s)
}
