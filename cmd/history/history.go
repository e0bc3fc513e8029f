// Package history provides the "copykit history" CLI commands for the
// local conversion log.
package history

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	historylib "github.com/klytics/copykit/internal/history"
	"github.com/klytics/copykit/internal/output"
)

// NewCommand returns the history command group.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show past conversions",
		Long:  "List, summarize, and clear the local log of text-to-workbook conversions.",
	}

	cmd.AddCommand(newListCommand())
	cmd.AddCommand(newStatsCommand())
	cmd.AddCommand(newClearCommand())

	return cmd
}

func newListCommand() *cobra.Command {
	var (
		limit     int
		input     string
		status    string
		sinceDays int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded conversions, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			store := historylib.DefaultStore()
			entries, err := store.Entries()
			if err != nil {
				return fmt.Errorf("could not read history: %w", err)
			}

			var since time.Time
			if sinceDays > 0 {
				since = time.Now().AddDate(0, 0, -sinceDays)
			}
			entries = historylib.Filter(entries, since, time.Time{}, input, status)

			// Newest first
			for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
				entries[i], entries[j] = entries[j], entries[i]
			}
			if limit > 0 && len(entries) > limit {
				entries = entries[:limit]
			}

			jsonFlag, _ := cmd.Flags().GetBool("json")
			if jsonFlag {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(entries)
			}

			if len(entries) == 0 {
				fmt.Println("No conversions recorded yet.")
				return nil
			}

			var sb strings.Builder
			tw := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)
			fmt.Fprintf(tw, "WHEN\tINPUT\tROWS\tOUTPUT\tSTATUS\n")
			for _, e := range entries {
				status := e.Status
				if e.Status == "error" && e.Error != "" {
					status = "error: " + e.Error
				}
				fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n",
					e.Timestamp.Format("2006-01-02 15:04"),
					e.Input, e.Units, e.Output, status)
			}
			tw.Flush()

			content := sb.String()
			if output.ShouldPage(content, output.DefaultPageHeight) {
				return output.Page(content)
			}
			fmt.Print(content)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum entries to show (0 = all)")
	cmd.Flags().StringVar(&input, "input", "", "Only entries whose input path contains this text")
	cmd.Flags().StringVar(&status, "status", "", "Only entries with this status (ok, error)")
	cmd.Flags().IntVar(&sinceDays, "days", 0, "Only entries from the last N days")

	return cmd
}

func newStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show aggregate conversion statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			store := historylib.DefaultStore()
			stats, err := store.Summary()
			if err != nil {
				return fmt.Errorf("could not read history: %w", err)
			}

			jsonFlag, _ := cmd.Flags().GetBool("json")
			if jsonFlag {
				return output.PrintJSON("history stats", stats)
			}

			fmt.Printf("Conversions: %d\n", stats.Total)
			fmt.Printf("Rows written: %d\n", stats.Units)
			fmt.Printf("Failures: %d\n", stats.Failures)
			if stats.Total > 0 {
				fmt.Printf("Average duration: %.0fms\n", stats.AvgDuration)
			}
			fmt.Printf("Log size: %d bytes (%s)\n", store.Size(), store.Path)
			return nil
		},
	}
}

func newClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all recorded history",
		RunE: func(cmd *cobra.Command, args []string) error {
			store := historylib.DefaultStore()
			if err := store.Clear(); err != nil {
				return fmt.Errorf("could not clear history: %w", err)
			}
			fmt.Println("History cleared.")
			return nil
		},
	}
}
