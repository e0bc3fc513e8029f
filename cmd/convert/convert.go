// Package convert provides the "copykit convert" CLI command, the main
// text-to-workbook conversion.
package convert

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/klytics/copykit/internal/config"
	conv "github.com/klytics/copykit/internal/convert"
	"github.com/klytics/copykit/internal/formats/xlsx"
	"github.com/klytics/copykit/internal/history"
	"github.com/klytics/copykit/internal/output"
	"github.com/klytics/copykit/internal/progress"
	"github.com/klytics/copykit/internal/segment"
)

// NewCommand creates the "convert" command.
func NewCommand() *cobra.Command {
	var (
		templateRef string
		outPath     string
		outDir      string
		startRow    int
		column      int
		noHistory   bool
	)

	cmd := &cobra.Command{
		Use:   "convert <file.txt>",
		Short: "Convert a text file of copy blocks into a filled .xlsx template",
		Long: `Convert splits a UTF-8 text file into copy blocks (separated by blank
lines), joins each block's lines with a full-width comma, and writes one
block per row into a column of an .xlsx template. Everything else in the
template — styles, widths, merges, other columns — is preserved.

Examples:
  copykit convert 文案.txt
  copykit convert 文案.txt -o campaign.xlsx --start-row 2
  copykit convert 文案.txt --template ~/templates/campaign.xlsx
  copykit convert 'drafts/*.txt' --out-dir ./ready/`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonFlag, _ := cmd.Flags().GetBool("json")

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			opts := conv.Options{
				Template: templateRef,
				Output:   outPath,
				OutDir:   outDir,
				StartRow: startRow,
				Column:   column,
			}
			applyConfig(&opts, cfg, cmd)
			if outDir == "" && outPath == "" && cfg.Output.Dir != "" {
				opts.OutDir = cfg.Output.Dir
			}
			if !noHistory && cfg.History.Enabled {
				opts.History = history.DefaultStore()
			}

			pattern := args[0]
			if strings.ContainsAny(pattern, "*?[") {
				return runGlob(pattern, opts, jsonFlag)
			}

			res, err := conv.File(pattern, opts)
			if err != nil {
				if jsonFlag {
					output.PrintJSONError("convert", err, exitCode(err))
				}
				return err
			}

			if jsonFlag {
				return output.PrintJSON("convert", res)
			}

			green := color.New(color.FgGreen)
			green.Printf("Converted: %s\n", res.Input)
			fmt.Printf("  %d row(s) written to %s\n", res.Units, res.Output)
			if res.Units == 0 {
				fmt.Println("  (no copy blocks found — the output is a plain template copy)")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&templateRef, "template", "t", "", "Template: a path, a registered name, or empty for the built-in default")
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "Output .xlsx path (default: input name with .xlsx)")
	cmd.Flags().StringVar(&outDir, "out-dir", "", "Output directory for glob conversions")
	cmd.Flags().IntVar(&startRow, "start-row", 1, "First row to write (1-based)")
	cmd.Flags().IntVar(&column, "column", 1, "Column to write, 1 = column A")
	cmd.Flags().BoolVar(&noHistory, "no-history", false, "Do not record this run in the history log")

	return cmd
}

// applyConfig lets config fill in positions the user did not set on the
// command line. Explicit flags always win.
func applyConfig(opts *conv.Options, cfg *config.Config, cmd *cobra.Command) {
	if !cmd.Flags().Changed("start-row") && cfg.StartRow > 0 {
		opts.StartRow = cfg.StartRow
	}
	if !cmd.Flags().Changed("column") && cfg.Column > 0 {
		opts.Column = cfg.Column
	}
	if opts.Template == "" && cfg.Template != "" {
		opts.Template = cfg.Template
	}
}

func runGlob(pattern string, opts conv.Options, jsonFlag bool) error {
	// Size the bar up front; conv.Glob reports pattern problems itself.
	matches, _ := filepath.Glob(pattern)

	succeeded, failed, units := 0, 0, 0
	bar := progress.New("Converting", len(matches))
	outcomes, err := conv.Glob(pattern, opts, func(oc conv.GlobOutcome) {
		if oc.Err != nil {
			failed++
			bar.Increment(oc.Input + " (failed)")
		} else {
			succeeded++
			units += oc.Result.Units
			bar.Increment(oc.Input)
		}
	})
	if err != nil {
		if jsonFlag {
			output.PrintJSONError("convert", err, output.ExitUserError)
		}
		return err
	}
	bar.Finish(fmt.Sprintf("%d file(s) converted, %d row(s) written", succeeded, units))

	if jsonFlag {
		return output.PrintJSON("convert", outcomes)
	}

	for _, oc := range outcomes {
		if oc.Err != nil {
			color.New(color.FgRed).Printf("  %s: %s\n", oc.Input, oc.Error)
		} else {
			fmt.Printf("  %s -> %s (%d rows)\n", oc.Input, oc.Result.Output, oc.Result.Units)
		}
	}
	fmt.Printf("\n%d succeeded, %d failed.\n", succeeded, failed)

	if failed > 0 {
		return fmt.Errorf("%d file(s) failed to convert", failed)
	}
	return nil
}

// exitCode maps the failure taxonomy onto the CLI exit-code contract.
func exitCode(err error) int {
	switch {
	case errors.Is(err, segment.ErrDecode), errors.Is(err, xlsx.ErrTemplateNotFound):
		return output.ExitUserError
	case errors.Is(err, xlsx.ErrTemplateFormat), errors.Is(err, xlsx.ErrOutputWrite):
		return output.ExitSystemError
	default:
		return output.ExitUserError
	}
}
