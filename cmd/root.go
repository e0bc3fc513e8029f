// Package cmd contains all CLI commands for the copykit binary.
package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	cmdbatch "github.com/klytics/copykit/cmd/batch"
	"github.com/klytics/copykit/cmd/completion"
	cmdconfig "github.com/klytics/copykit/cmd/config"
	cmdconvert "github.com/klytics/copykit/cmd/convert"
	"github.com/klytics/copykit/cmd/doctor"
	cmdhistory "github.com/klytics/copykit/cmd/history"
	"github.com/klytics/copykit/cmd/interactive"
	cmdscan "github.com/klytics/copykit/cmd/scan"
	cmdsegment "github.com/klytics/copykit/cmd/segment"
	cmdtemplate "github.com/klytics/copykit/cmd/template"
	"github.com/klytics/copykit/cmd/update"
	"github.com/klytics/copykit/cmd/version"
	cmdwatch "github.com/klytics/copykit/cmd/watch"
)

var (
	jsonOutput bool
	verbose    bool
	noColor    bool
)

// NewRootCommand creates and returns the root cobra command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "copykit",
		Short: "Turn plain-text copy decks into filled spreadsheet templates",
		Long: `CopyKit — paste-free copy imports.

Splits a plain-text file into copy blocks (blank lines are the separators)
and writes each block into one row of an .xlsx template, leaving the
template's styling and other columns untouched.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if noColor || os.Getenv("NO_COLOR") != "" {
				color.NoColor = true
			}
		},
	}

	// Global persistent flags
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output as machine-readable JSON")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable ANSI color output")

	// Register subcommands
	rootCmd.AddCommand(cmdconvert.NewCommand())
	rootCmd.AddCommand(cmdsegment.NewCommand())
	rootCmd.AddCommand(cmdtemplate.NewCommand())
	rootCmd.AddCommand(cmdbatch.NewCommand())
	rootCmd.AddCommand(cmdwatch.NewCommand())
	rootCmd.AddCommand(cmdscan.NewCommand())
	rootCmd.AddCommand(cmdhistory.NewCommand())
	rootCmd.AddCommand(cmdconfig.NewCommand())
	rootCmd.AddCommand(interactive.NewCommand())
	rootCmd.AddCommand(doctor.NewCommand())
	rootCmd.AddCommand(update.NewCommand())
	rootCmd.AddCommand(completion.NewCommand(rootCmd))
	rootCmd.AddCommand(version.NewCommand())

	return rootCmd
}

// Execute runs the root command and handles any returned errors.
func Execute() {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
