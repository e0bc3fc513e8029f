// Package watch provides the "copykit watch" CLI commands for drop-folder
// monitoring.
package watch

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/klytics/copykit/internal/config"
	conv "github.com/klytics/copykit/internal/convert"
	"github.com/klytics/copykit/internal/history"
	w "github.com/klytics/copykit/internal/watch"
)

// NewCommand creates the "watch" command with subcommands.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Monitor drop folders and convert new text files automatically",
		Long: `Watch directories for new or changed .txt files and convert each one
into a filled workbook as it arrives.

Example:
  copykit watch start ~/drops --out-dir ~/ready
  copykit watch status
  copykit watch stop`,
	}

	cmd.AddCommand(newStartCmd())
	cmd.AddCommand(newStopCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newConfigCmd())

	return cmd
}

func newStartCmd() *cobra.Command {
	var (
		extensions  []string
		pattern     string
		recursive   bool
		debounce    int
		outDir      string
		templateRef string
		startRow    int
		column      int
	)

	cmd := &cobra.Command{
		Use:   "start <directory> [directory...]",
		Short: "Start watching directories for text files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("debounce") && cfg.Watch.DebounceMs > 0 {
				debounce = cfg.Watch.DebounceMs
			}
			if !cmd.Flags().Changed("recursive") {
				recursive = cfg.Watch.Recursive
			}
			if !cmd.Flags().Changed("start-row") && cfg.StartRow > 0 {
				startRow = cfg.StartRow
			}
			if !cmd.Flags().Changed("column") && cfg.Column > 0 {
				column = cfg.Column
			}
			if templateRef == "" {
				templateRef = cfg.Template
			}

			wcfg := w.Config{
				Directories: args,
				Extensions:  extensions,
				Pattern:     pattern,
				Recursive:   recursive,
				Debounce:    debounce,
				OutDir:      outDir,
				Template:    templateRef,
				StartRow:    startRow,
				Column:      column,
			}

			watcher, err := w.New(wcfg)
			if err != nil {
				return err
			}

			var store *history.Store
			if cfg.History.Enabled {
				store = history.DefaultStore()
			}
			watcher.Handler = func(path string) (*w.Outcome, error) {
				res, err := conv.File(path, conv.Options{
					Template: templateRef,
					OutDir:   outDir,
					StartRow: startRow,
					Column:   column,
					History:  store,
				})
				if err != nil {
					return nil, err
				}
				return &w.Outcome{Output: res.Output, Units: res.Units}, nil
			}

			// Write PID so "copykit watch stop" can find us
			configDir := w.DefaultConfigDir()
			if err := w.WritePIDFile(configDir); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: could not write PID file: %v\n", err)
			}
			defer w.RemovePIDFile(configDir)

			// Save config for the status command
			w.SaveConfig(configDir, wcfg)

			fmt.Printf("Watching %d directory(ies) for text files\n", len(args))
			fmt.Println("Press Ctrl+C to stop")

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			go func() {
				<-sigCh
				fmt.Println("\nStopping watcher...")
				cancel()
			}()

			return watcher.Start(ctx)
		},
	}

	cmd.Flags().StringSliceVar(&extensions, "ext", nil, "File extensions to convert (default: .txt)")
	cmd.Flags().StringVar(&pattern, "pattern", "", "Only convert file names matching this glob (e.g. 'campaign_*.txt')")
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "Watch directories recursively")
	cmd.Flags().IntVar(&debounce, "debounce", 500, "Debounce interval in milliseconds")
	cmd.Flags().StringVar(&outDir, "out-dir", "", "Directory for converted workbooks (default: next to the input)")
	cmd.Flags().StringVarP(&templateRef, "template", "t", "", "Template path or registered name")
	cmd.Flags().IntVar(&startRow, "start-row", 1, "First row to write (1-based)")
	cmd.Flags().IntVar(&column, "column", 1, "Column to write, 1 = column A")

	return cmd
}

func newStopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the running watcher",
		RunE: func(cmd *cobra.Command, args []string) error {
			configDir := w.DefaultConfigDir()
			pid, err := w.ReadPIDFile(configDir)
			if err != nil {
				return fmt.Errorf("no watcher running (PID file not found)")
			}

			process, err := os.FindProcess(pid)
			if err != nil {
				return fmt.Errorf("could not find process %d: %w", pid, err)
			}

			if err := process.Signal(syscall.SIGTERM); err != nil {
				w.RemovePIDFile(configDir)
				return fmt.Errorf("could not stop watcher (PID %d): %w", pid, err)
			}

			w.RemovePIDFile(configDir)

			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				return json.NewEncoder(os.Stdout).Encode(map[string]any{
					"stopped": true,
					"pid":     pid,
				})
			}

			fmt.Printf("Stopped watcher (PID %d)\n", pid)
			return nil
		},
	}
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current watcher status",
		RunE: func(cmd *cobra.Command, args []string) error {
			configDir := w.DefaultConfigDir()

			pid, err := w.ReadPIDFile(configDir)
			running := err == nil

			// Check if the process is actually alive
			if running {
				process, err := os.FindProcess(pid)
				if err != nil {
					running = false
				} else {
					err = process.Signal(syscall.Signal(0))
					if err != nil {
						running = false
						w.RemovePIDFile(configDir)
					}
				}
			}

			jsonOut, _ := cmd.Flags().GetBool("json")

			if !running {
				if jsonOut {
					return json.NewEncoder(os.Stdout).Encode(map[string]any{"running": false})
				}
				fmt.Println("Watcher is not running")
				return nil
			}

			wcfg, _ := w.LoadConfig(configDir)

			status := map[string]any{
				"running": true,
				"pid":     pid,
			}
			if wcfg != nil {
				status["directories"] = wcfg.Directories
				status["recursive"] = wcfg.Recursive
				status["outDir"] = wcfg.OutDir
			}

			if jsonOut {
				return json.NewEncoder(os.Stdout).Encode(status)
			}

			fmt.Printf("Watcher is running (PID %d)\n", pid)
			if wcfg != nil {
				fmt.Printf("  Directories: %s\n", strings.Join(wcfg.Directories, ", "))
				fmt.Printf("  Recursive:   %v\n", wcfg.Recursive)
				if wcfg.OutDir != "" {
					fmt.Printf("  Output dir:  %s\n", wcfg.OutDir)
				}
			}
			return nil
		},
	}
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the current watcher configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			configDir := w.DefaultConfigDir()
			wcfg, err := w.LoadConfig(configDir)
			if err != nil {
				return fmt.Errorf("no watcher configuration found (run 'copykit watch start' first)")
			}

			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				return json.NewEncoder(os.Stdout).Encode(wcfg)
			}

			fmt.Printf("Directories: %s\n", strings.Join(wcfg.Directories, ", "))
			fmt.Printf("Extensions:  %s\n", strings.Join(wcfg.Extensions, ", "))
			if wcfg.Pattern != "" {
				fmt.Printf("Pattern:     %s\n", wcfg.Pattern)
			}
			fmt.Printf("Recursive:   %v\n", wcfg.Recursive)
			fmt.Printf("Debounce:    %dms\n", wcfg.Debounce)
			if wcfg.Template != "" {
				fmt.Printf("Template:    %s\n", wcfg.Template)
			}
			if wcfg.OutDir != "" {
				fmt.Printf("Output dir:  %s\n", wcfg.OutDir)
			}
			fmt.Printf("Start row:   %d, column %d\n", wcfg.StartRow, wcfg.Column)
			return nil
		},
	}
}
