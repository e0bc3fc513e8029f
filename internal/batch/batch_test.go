package batch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func writeTemplate(t *testing.T, dir string) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	path := filepath.Join(dir, "template.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParsePlanValid(t *testing.T) {
	data := []byte(`
name: spring-campaign
defaults:
  template: templates/promo.xlsx
  start_row: 2
  on_failure: skip
jobs:
  - input: copy/main.txt
    out: exports/main.xlsx
  - input: copy/social.txt
    column: 3
`)
	p, err := ParsePlan(data)
	if err != nil {
		t.Fatal(err)
	}
	if p.Name != "spring-campaign" {
		t.Errorf("name = %q", p.Name)
	}
	if p.Defaults.StartRow != 2 {
		t.Errorf("defaults.start_row = %d", p.Defaults.StartRow)
	}
	if len(p.Jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(p.Jobs))
	}
	if p.Jobs[1].Column != 3 {
		t.Errorf("job column = %d", p.Jobs[1].Column)
	}
}

func TestParsePlanMissingName(t *testing.T) {
	_, err := ParsePlan([]byte("jobs:\n  - input: a.txt\n"))
	if err == nil || !strings.Contains(err.Error(), "name") {
		t.Errorf("expected missing name error, got %v", err)
	}
}

func TestParsePlanNoJobs(t *testing.T) {
	_, err := ParsePlan([]byte("name: empty\n"))
	if err == nil || !strings.Contains(err.Error(), "no jobs") {
		t.Errorf("expected no jobs error, got %v", err)
	}
}

func TestParsePlanMissingInput(t *testing.T) {
	_, err := ParsePlan([]byte("name: p\njobs:\n  - out: x.xlsx\n"))
	if err == nil || !strings.Contains(err.Error(), "input") {
		t.Errorf("expected missing input error, got %v", err)
	}
}

func TestParsePlanBadFailurePolicy(t *testing.T) {
	_, err := ParsePlan([]byte("name: p\njobs:\n  - input: a.txt\n    on_failure: retry\n"))
	if err == nil || !strings.Contains(err.Error(), "on_failure") {
		t.Errorf("expected failure policy error, got %v", err)
	}
}

func TestParsePlanDuplicateOut(t *testing.T) {
	data := []byte(`
name: p
jobs:
  - input: a.txt
    out: same.xlsx
  - input: b.txt
    out: same.xlsx
`)
	_, err := ParsePlan(data)
	if err == nil || !strings.Contains(err.Error(), "duplicate output") {
		t.Errorf("expected duplicate output error, got %v", err)
	}
}

func TestParsePlanInvalidYAML(t *testing.T) {
	_, err := ParsePlan([]byte("name: [unclosed"))
	if err == nil || !strings.Contains(err.Error(), "invalid plan YAML") {
		t.Errorf("expected YAML error, got %v", err)
	}
}

func TestLoadPlanMissingFile(t *testing.T) {
	_, err := LoadPlan(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("expected not found error, got %v", err)
	}
}

func TestResolveMergesDefaults(t *testing.T) {
	p := &Plan{
		Defaults: Defaults{Template: "promo.xlsx", StartRow: 3, OnFailure: "skip"},
	}

	got := p.resolve(Job{Input: "a.txt"})
	if got.Template != "promo.xlsx" || got.StartRow != 3 || got.OnFailure != "skip" {
		t.Errorf("defaults not merged: %+v", got)
	}
	if got.Column != 1 {
		t.Errorf("column should fall back to 1, got %d", got.Column)
	}

	got = p.resolve(Job{Input: "b.txt", Template: "other.xlsx", StartRow: 7})
	if got.Template != "other.xlsx" || got.StartRow != 7 {
		t.Errorf("job overrides lost: %+v", got)
	}
}

func TestInterpolateDateToday(t *testing.T) {
	result := interpolate("exports/promo-${{ date.today }}.xlsx")
	today := time.Now().Format("2006-01-02")

	if !strings.Contains(result, today) {
		t.Errorf("expected today's date %q in result %q", today, result)
	}
}

func TestInterpolateEnvVar(t *testing.T) {
	t.Setenv("COPYKIT_TEST_VAR", "q3")

	result := interpolate("exports/${{ env.COPYKIT_TEST_VAR }}/main.xlsx")
	if !strings.Contains(result, "/q3/") {
		t.Errorf("expected env value in result %q", result)
	}
}

func TestInterpolateUnknownLeftAlone(t *testing.T) {
	in := "exports/${{ jobs.first.output }}.xlsx"
	if got := interpolate(in); got != in {
		t.Errorf("unknown expression should be left alone, got %q", got)
	}
}

func TestRunConvertsJobs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "段落一\n\n段落二\n")
	writeFile(t, dir, "b.txt", "one\n")
	tpl := writeTemplate(t, dir)

	p := &Plan{
		Name:     "test",
		Defaults: Defaults{Template: tpl, OutDir: filepath.Join(dir, "out")},
		Jobs: []Job{
			{Input: filepath.Join(dir, "a.txt")},
			{Input: filepath.Join(dir, "b.txt")},
		},
	}

	results, err := NewRunner(false).Run(context.Background(), p)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Status != "ok" || results[0].Units != 2 {
		t.Errorf("first result = %+v", results[0])
	}
	for _, r := range results {
		if _, err := os.Stat(r.Output); err != nil {
			t.Errorf("output %s missing: %v", r.Output, err)
		}
	}
}

func TestRunAbortsOnFailure(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "good.txt", "x\n")
	tpl := writeTemplate(t, dir)

	p := &Plan{
		Name:     "test",
		Defaults: Defaults{Template: tpl},
		Jobs: []Job{
			{Input: filepath.Join(dir, "missing.txt")},
			{Input: filepath.Join(dir, "good.txt")},
		},
	}

	results, err := NewRunner(false).Run(context.Background(), p)
	if err == nil {
		t.Fatal("expected plan to abort")
	}
	if len(results) != 1 {
		t.Errorf("expected 1 result before abort, got %d", len(results))
	}
}

func TestRunSkipPolicy(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "good.txt", "x\n")
	tpl := writeTemplate(t, dir)

	p := &Plan{
		Name:     "test",
		Defaults: Defaults{Template: tpl, OnFailure: "skip"},
		Jobs: []Job{
			{Input: filepath.Join(dir, "missing.txt")},
			{Input: filepath.Join(dir, "good.txt")},
		},
	}

	results, err := NewRunner(false).Run(context.Background(), p)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Status != "error" {
		t.Errorf("first status = %q", results[0].Status)
	}
	if results[1].Status != "ok" {
		t.Errorf("second status = %q", results[1].Status)
	}
}

func TestRunDryRun(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "x\n")

	p := &Plan{
		Name: "test",
		Jobs: []Job{{Input: filepath.Join(dir, "a.txt")}},
	}

	r := NewRunner(false)
	r.SetDryRun(true)
	results, err := r.Run(context.Background(), p)
	if err != nil {
		t.Fatal(err)
	}
	if results[0].Status != "planned" {
		t.Errorf("status = %q", results[0].Status)
	}
	if _, err := os.Stat(results[0].Output); err == nil {
		t.Error("dry-run must not write output")
	}
}

func TestRunContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := &Plan{Name: "test", Jobs: []Job{{Input: "a.txt"}}}
	_, err := NewRunner(false).Run(ctx, p)
	if err == nil {
		t.Error("expected context error")
	}
}
