// Package convert wires the segmenter and the sheet filler into the
// single-call conversion used by the CLI, watch mode, and batch plans.
package convert

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/klytics/copykit/internal/formats/xlsx"
	"github.com/klytics/copykit/internal/history"
	"github.com/klytics/copykit/internal/segment"
	"github.com/klytics/copykit/internal/template"
)

// Options controls a single conversion.
type Options struct {
	// Template is a file path, a registered template name, or empty for
	// the built-in default.
	Template string

	// Output is the destination workbook. Empty derives it from the
	// input file name, in OutDir if set, otherwise next to the input.
	Output string
	OutDir string

	StartRow int
	Column   int

	// History receives a record of the run. Nil disables recording.
	History *history.Store
}

// Result describes a finished conversion.
type Result struct {
	Input      string `json:"input"`
	Output     string `json:"output"`
	Template   string `json:"template"`
	Units      int    `json:"units"`
	DurationMs int64  `json:"duration_ms"`
}

// File converts one text file into a filled workbook. It decodes and
// segments the input, resolves the template reference, fills the copy
// column, and appends the outcome to history.
func File(txtPath string, opts Options) (*Result, error) {
	start := time.Now()
	res, err := run(txtPath, opts)
	elapsed := time.Since(start).Milliseconds()
	if res != nil {
		res.DurationMs = elapsed
	}

	if opts.History != nil {
		entry := history.Entry{
			Timestamp:  start,
			Input:      txtPath,
			StartRow:   opts.StartRow,
			Column:     opts.Column,
			DurationMs: elapsed,
			Status:     "ok",
		}
		if res != nil {
			entry.Output = res.Output
			entry.Template = res.Template
			entry.Units = res.Units
		}
		if err != nil {
			entry.Status = "error"
			entry.Error = err.Error()
		}
		opts.History.Record(entry)
	}

	return res, err
}

func run(txtPath string, opts Options) (*Result, error) {
	data, err := os.ReadFile(txtPath)
	if err != nil {
		return nil, fmt.Errorf("could not read %s — check that the file exists: %w", txtPath, err)
	}

	text, err := segment.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", txtPath, err)
	}
	units := segment.Split(text)

	tplPath, err := template.Resolve(template.DefaultDir(), opts.Template)
	if err != nil {
		return nil, err
	}

	outPath := opts.Output
	if outPath == "" {
		outPath = DerivedOutput(txtPath, opts.OutDir)
	}

	// Zero positions take the documented defaults; negatives are still
	// rejected by the filler as caller mistakes.
	startRow, column := opts.StartRow, opts.Column
	if startRow == 0 {
		startRow = 1
	}
	if column == 0 {
		column = 1
	}

	count, err := xlsx.FillColumn(tplPath, outPath, segment.CellValues(units), startRow, column)
	if err != nil {
		return nil, err
	}

	return &Result{
		Input:    txtPath,
		Output:   outPath,
		Template: tplPath,
		Units:    count,
	}, nil
}

// DerivedOutput returns the output path for an input text file: the same
// base name with an .xlsx extension, placed in dir when given, otherwise
// next to the input.
func DerivedOutput(txtPath, dir string) string {
	base := strings.TrimSuffix(filepath.Base(txtPath), filepath.Ext(txtPath)) + ".xlsx"
	if dir == "" {
		dir = filepath.Dir(txtPath)
	}
	return filepath.Join(dir, base)
}

// GlobOutcome reports one file's conversion inside a multi-file run.
type GlobOutcome struct {
	Input  string  `json:"input"`
	Result *Result `json:"result,omitempty"`
	Error  string  `json:"error,omitempty"`

	Err error `json:"-"`
}

// Glob converts every file matching pattern. Conversions are independent:
// a failing file is reported in its outcome and does not stop the rest.
// onFile, when non-nil, is called with each outcome as soon as that file
// finishes, so callers can report progress while the run is still going.
func Glob(pattern string, opts Options, onFile func(GlobOutcome)) ([]GlobOutcome, error) {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("bad glob pattern %q: %w", pattern, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no files match %q", pattern)
	}
	if len(matches) > 1 && opts.Output != "" {
		return nil, fmt.Errorf("cannot use a single output path for %d inputs — use an output directory instead", len(matches))
	}
	sort.Strings(matches)

	outcomes := make([]GlobOutcome, 0, len(matches))
	for _, m := range matches {
		outcome := GlobOutcome{Input: m}
		res, err := File(m, opts)
		if err != nil {
			outcome.Err = err
			outcome.Error = err.Error()
		} else {
			outcome.Result = res
		}
		if onFile != nil {
			onFile(outcome)
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes, nil
}
