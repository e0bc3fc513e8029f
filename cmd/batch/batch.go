// Package batch provides CLI commands for running YAML conversion plans.
package batch

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	batchlib "github.com/klytics/copykit/internal/batch"
	"github.com/klytics/copykit/internal/config"
	"github.com/klytics/copykit/internal/history"
)

// NewCommand returns the batch subcommand group.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Run repeatable conversion plans defined in YAML",
		Long: `Execute a list of text-to-workbook conversion jobs from a plan file.

A plan names its jobs, shares defaults (template, start row, output
directory), and decides per job whether a failure aborts the run or is
skipped.`,
	}

	cmd.AddCommand(newRunCommand())
	cmd.AddCommand(newValidateCommand())

	return cmd
}

func newRunCommand() *cobra.Command {
	var (
		dryRun    bool
		noHistory bool
	)

	cmd := &cobra.Command{
		Use:   "run <plan.yaml>",
		Short: "Execute a conversion plan",
		Long: `Runs every job in the plan sequentially. Use --dry-run to see which
files would be converted, and where the outputs would land, without
reading or writing anything.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonFlag, _ := cmd.Flags().GetBool("json")
			verbose, _ := cmd.Flags().GetBool("verbose")

			plan, err := batchlib.LoadPlan(args[0])
			if err != nil {
				return err
			}

			runner := batchlib.NewRunner(verbose && !jsonFlag)
			runner.SetDryRun(dryRun)
			if !dryRun && !noHistory {
				cfg, err := config.Load()
				if err == nil && cfg.History.Enabled {
					runner.SetHistory(history.DefaultStore())
				}
			}

			results, execErr := runner.Run(cmd.Context(), plan)

			if jsonFlag {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				_ = enc.Encode(results)
				return execErr
			}

			ok, failed := 0, 0
			for _, r := range results {
				switch r.Status {
				case "ok":
					ok++
					fmt.Printf("  %s -> %s (%d rows)\n", r.Input, r.Output, r.Units)
				case "planned":
					fmt.Printf("  %s -> %s (planned)\n", r.Input, r.Output)
				case "error":
					failed++
					color.New(color.FgRed).Printf("  %s: %s\n", r.Input, r.Error)
				}
			}

			if dryRun {
				fmt.Printf("\nPlan %q: %d job(s) planned, nothing written.\n", plan.Name, len(results))
			} else {
				fmt.Printf("\nPlan %q: %d succeeded, %d failed.\n", plan.Name, ok, failed)
			}
			return execErr
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Resolve jobs and show targets without converting")
	cmd.Flags().BoolVar(&noHistory, "no-history", false, "Do not record plan jobs in the history log")

	return cmd
}

func newValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <plan.yaml>",
		Short: "Check a plan file without running it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := batchlib.LoadPlan(args[0])
			if err != nil {
				return err
			}

			jsonFlag, _ := cmd.Flags().GetBool("json")
			if jsonFlag {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(plan)
			}

			color.New(color.FgGreen).Printf("Plan %q is valid: %d job(s)\n", plan.Name, len(plan.Jobs))
			return nil
		},
	}
}
