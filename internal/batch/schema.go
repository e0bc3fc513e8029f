// Package batch provides YAML conversion plans for repeatable multi-file runs.
package batch

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Plan represents a complete batch conversion plan.
type Plan struct {
	Name     string   `yaml:"name" json:"name"`
	Defaults Defaults `yaml:"defaults,omitempty" json:"defaults,omitempty"`
	Jobs     []Job    `yaml:"jobs" json:"jobs"`
}

// Defaults applies to every job unless the job overrides it.
type Defaults struct {
	Template  string `yaml:"template,omitempty" json:"template,omitempty"`
	StartRow  int    `yaml:"start_row,omitempty" json:"startRow,omitempty"`
	Column    int    `yaml:"column,omitempty" json:"column,omitempty"`
	OutDir    string `yaml:"out_dir,omitempty" json:"outDir,omitempty"`
	OnFailure string `yaml:"on_failure,omitempty" json:"onFailure,omitempty"`
}

// Job converts one input file. Zero values inherit from the plan defaults;
// an empty out derives the output name from the input.
type Job struct {
	Input     string `yaml:"input" json:"input"`
	Out       string `yaml:"out,omitempty" json:"out,omitempty"`
	Template  string `yaml:"template,omitempty" json:"template,omitempty"`
	StartRow  int    `yaml:"start_row,omitempty" json:"startRow,omitempty"`
	Column    int    `yaml:"column,omitempty" json:"column,omitempty"`
	OnFailure string `yaml:"on_failure,omitempty" json:"onFailure,omitempty"`
}

// LoadPlan reads and parses a plan YAML file.
func LoadPlan(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("plan file not found: %s — check that the path is correct", path)
		}
		return nil, fmt.Errorf("could not read plan file %s: %w", path, err)
	}

	return ParsePlan(data)
}

// ParsePlan parses a plan from YAML bytes.
func ParsePlan(data []byte) (*Plan, error) {
	var p Plan
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("invalid plan YAML: %w", err)
	}

	if err := validatePlan(&p); err != nil {
		return nil, err
	}

	return &p, nil
}

func validatePlan(p *Plan) error {
	if p.Name == "" {
		return fmt.Errorf("plan is missing a 'name' field")
	}

	if len(p.Jobs) == 0 {
		return fmt.Errorf("plan %q has no jobs defined", p.Name)
	}

	if err := validateFailurePolicy(p.Defaults.OnFailure); err != nil {
		return fmt.Errorf("defaults: %w", err)
	}
	if p.Defaults.StartRow < 0 || p.Defaults.Column < 0 {
		return fmt.Errorf("defaults: start_row and column cannot be negative")
	}

	outs := make(map[string]bool)
	for i, job := range p.Jobs {
		if job.Input == "" {
			return fmt.Errorf("job %d is missing an 'input' field", i+1)
		}
		if job.StartRow < 0 || job.Column < 0 {
			return fmt.Errorf("job %q: start_row and column cannot be negative", job.Input)
		}
		if err := validateFailurePolicy(job.OnFailure); err != nil {
			return fmt.Errorf("job %q: %w", job.Input, err)
		}
		if job.Out != "" {
			if outs[job.Out] {
				return fmt.Errorf("duplicate output %q — two jobs would overwrite each other", job.Out)
			}
			outs[job.Out] = true
		}
	}

	return nil
}

func validateFailurePolicy(policy string) error {
	switch policy {
	case "", "abort", "skip":
		return nil
	}
	return fmt.Errorf("invalid on_failure %q — use \"abort\" or \"skip\"", policy)
}
