package batch

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/klytics/copykit/internal/convert"
	"github.com/klytics/copykit/internal/history"
)

// JobResult holds the outcome of one plan job.
type JobResult struct {
	Input      string `json:"input"`
	Output     string `json:"output,omitempty"`
	Template   string `json:"template,omitempty"`
	Units      int    `json:"units"`
	DurationMs int64  `json:"duration_ms,omitempty"`
	Status     string `json:"status"` // "ok", "error", "planned"
	Error      string `json:"error,omitempty"`

	Err error `json:"-"`
}

// Runner executes plan jobs sequentially.
type Runner struct {
	verbose bool
	dryRun  bool
	history *history.Store
}

// NewRunner creates a plan runner.
func NewRunner(verbose bool) *Runner {
	return &Runner{verbose: verbose}
}

// SetDryRun enables dry-run mode: jobs are resolved and reported but no
// file is read or written.
func (r *Runner) SetDryRun(dryRun bool) {
	r.dryRun = dryRun
}

// SetHistory records each executed job in the given store.
func (r *Runner) SetHistory(s *history.Store) {
	r.history = s
}

// Run executes all jobs in the plan sequentially. A failing job aborts the
// plan unless its failure policy (or the plan default) is "skip".
func (r *Runner) Run(ctx context.Context, p *Plan) ([]JobResult, error) {
	var results []JobResult

	if r.verbose {
		fmt.Printf("Running plan: %s\n", p.Name)
		if r.dryRun {
			fmt.Println("  (dry-run mode — nothing will be written)")
		}
	}

	for i, job := range p.Jobs {
		select {
		case <-ctx.Done():
			return results, ctx.Err()
		default:
		}

		resolved := p.resolve(job)

		if r.verbose {
			fmt.Printf("[%d/%d] %s\n", i+1, len(p.Jobs), resolved.Input)
		}

		if r.dryRun {
			out := resolved.Out
			if out == "" {
				out = convert.DerivedOutput(resolved.Input, p.Defaults.OutDir)
			}
			results = append(results, JobResult{
				Input:    resolved.Input,
				Output:   out,
				Template: resolved.Template,
				Status:   "planned",
			})
			continue
		}

		start := time.Now()
		res, err := convert.File(resolved.Input, convert.Options{
			Template: resolved.Template,
			Output:   resolved.Out,
			OutDir:   p.Defaults.OutDir,
			StartRow: resolved.StartRow,
			Column:   resolved.Column,
			History:  r.history,
		})

		result := JobResult{
			Input:      resolved.Input,
			DurationMs: time.Since(start).Milliseconds(),
		}
		if err != nil {
			result.Status = "error"
			result.Error = err.Error()
			result.Err = err
		} else {
			result.Status = "ok"
			result.Output = res.Output
			result.Template = res.Template
			result.Units = res.Units
		}
		results = append(results, result)

		if r.verbose && err == nil {
			fmt.Printf("  %d units -> %s\n", res.Units, res.Output)
		}

		if err != nil {
			if resolved.OnFailure == "skip" {
				if r.verbose {
					fmt.Printf("  Job failed (skipping): %s\n", err)
				}
				continue
			}
			return results, fmt.Errorf("job %q failed: %w", resolved.Input, err)
		}
	}

	return results, nil
}

// resolve merges plan defaults into a job and expands interpolations.
// Start positions left at zero fall back to row/column 1.
func (p *Plan) resolve(job Job) Job {
	if job.Template == "" {
		job.Template = p.Defaults.Template
	}
	if job.StartRow == 0 {
		job.StartRow = p.Defaults.StartRow
	}
	if job.Column == 0 {
		job.Column = p.Defaults.Column
	}
	if job.OnFailure == "" {
		job.OnFailure = p.Defaults.OnFailure
	}
	if job.StartRow == 0 {
		job.StartRow = 1
	}
	if job.Column == 0 {
		job.Column = 1
	}

	job.Input = interpolate(job.Input)
	job.Out = interpolate(job.Out)
	job.Template = interpolate(job.Template)

	return job
}

var interpolationPattern = regexp.MustCompile(`\$\{\{\s*([^}]+)\s*\}\}`)

// interpolate expands ${{ date.today }}, ${{ date.now }} and ${{ env.VAR }}
// so plans can stamp dated outputs without shell wrappers.
func interpolate(s string) string {
	return interpolationPattern.ReplaceAllStringFunc(s, func(match string) string {
		inner := interpolationPattern.FindStringSubmatch(match)
		if len(inner) < 2 {
			return match
		}
		expr := strings.TrimSpace(inner[1])

		if expr == "date.today" {
			return time.Now().Format("2006-01-02")
		}
		if expr == "date.now" || expr == "date.timestamp" {
			return time.Now().Format(time.RFC3339)
		}
		if strings.HasPrefix(expr, "env.") {
			return os.Getenv(strings.TrimPrefix(expr, "env."))
		}

		return match
	})
}
