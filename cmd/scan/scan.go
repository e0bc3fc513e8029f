// Package scan provides the "copykit scan" CLI commands for finding
// conversion candidates on the local filesystem.
package scan

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	scanlib "github.com/klytics/copykit/internal/scan"
)

// NewCommand returns the scan command group.
func NewCommand() *cobra.Command {
	var (
		recursive bool
		exts      []string
		noUnits   bool
	)

	cmd := &cobra.Command{
		Use:   "scan [directory]",
		Short: "Find text files that are candidates for conversion",
		Long: `Scan a directory for .txt files and preview how many copy blocks each
would produce. Files that already have a converted workbook next to them
are marked as done.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonFlag, _ := cmd.Flags().GetBool("json")

			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			result, err := scanlib.Scan(dir, scanlib.Options{
				Recursive:  recursive,
				Extensions: exts,
				CountUnits: !noUnits,
			})
			if err != nil {
				return err
			}

			if jsonFlag {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}

			fmt.Printf("Scanned: %s\n", result.RootDir)
			fmt.Printf("Found: %d text file(s), %d copy block(s), %d already converted\n\n",
				len(result.Files), result.TotalUnits, result.Converted)

			if len(result.Files) > 0 {
				w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
				fmt.Fprintf(w, "NAME\tBLOCKS\tSIZE\tMODIFIED\tSTATUS\n")
				for _, f := range result.Files {
					status := ""
					if f.Converted {
						status = "converted"
					}
					if f.Error != "" {
						status = "unreadable"
					}
					fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\n",
						f.Name,
						f.Units,
						formatSize(f.Size),
						f.ModifiedAt.Format("2006-01-02"),
						status)
				}
				w.Flush()
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "Scan subdirectories")
	cmd.Flags().StringSliceVar(&exts, "ext", nil, "Filter by extension (default: .txt)")
	cmd.Flags().BoolVar(&noUnits, "no-units", false, "Skip counting copy blocks (faster for big trees)")

	cmd.AddCommand(newDupesCommand())

	return cmd
}

func newDupesCommand() *cobra.Command {
	var recursive bool

	cmd := &cobra.Command{
		Use:   "dupes [directory]",
		Short: "Find duplicate copy decks (identical file content)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonFlag, _ := cmd.Flags().GetBool("json")

			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			result, err := scanlib.Scan(dir, scanlib.Options{
				Recursive: recursive,
				WithHash:  true,
			})
			if err != nil {
				return err
			}

			dupes := scanlib.FindDuplicates(result.Files)

			if jsonFlag {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(dupes)
			}

			if len(dupes.Groups) == 0 {
				color.New(color.FgGreen).Println("No duplicate copy decks found.")
				return nil
			}

			fmt.Printf("Found %d duplicate file(s) in %d group(s):\n\n", dupes.TotalDupes, len(dupes.Groups))
			for _, g := range dupes.Groups {
				fmt.Printf("%s (%s):\n", g.SHA256[:12], formatSize(g.Size))
				for _, f := range g.Files {
					fmt.Printf("  %s\n", f.Path)
				}
				fmt.Println()
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "Scan subdirectories")
	return cmd
}

func formatSize(size int64) string {
	switch {
	case size >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(size)/(1<<20))
	case size >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(size)/(1<<10))
	default:
		return fmt.Sprintf("%d B", size)
	}
}
