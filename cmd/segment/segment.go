// Package segment provides the "copykit segment" preview command.
package segment

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/klytics/copykit/internal/output"
	seg "github.com/klytics/copykit/internal/segment"
)

type previewUnit struct {
	Index     int      `json:"index"`
	Lines     []string `json:"lines"`
	CellValue string   `json:"cellValue"`
}

// NewCommand creates the "segment" command.
func NewCommand() *cobra.Command {
	var valuesOnly bool

	cmd := &cobra.Command{
		Use:   "segment <file.txt>",
		Short: "Preview how a text file splits into copy blocks",
		Long: `Segment shows the copy blocks a convert run would produce, without
writing anything. Use it to check the blank-line boundaries before
committing copy into a template.

Examples:
  copykit segment 文案.txt
  copykit segment 文案.txt --values`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("could not read %s — check that the file exists: %w", args[0], err)
			}
			text, err := seg.Decode(data)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			units := seg.Split(text)

			jsonFlag, _ := cmd.Flags().GetBool("json")
			if jsonFlag {
				preview := make([]previewUnit, len(units))
				for i, u := range units {
					preview[i] = previewUnit{Index: i + 1, Lines: u.Lines, CellValue: u.CellValue()}
				}
				return output.PrintJSON("segment", map[string]interface{}{
					"input": args[0],
					"units": preview,
				})
			}

			if len(units) == 0 {
				fmt.Println("No copy blocks found (the file is empty or all blank lines).")
				return nil
			}

			if valuesOnly {
				for _, u := range units {
					fmt.Println(u.CellValue())
				}
				return nil
			}

			bold := color.New(color.Bold)
			for i, u := range units {
				bold.Printf("Block %d (row %d):\n", i+1, i+1)
				for _, line := range u.Lines {
					fmt.Printf("  %s\n", line)
				}
				fmt.Printf("  -> %s\n\n", u.CellValue())
			}
			fmt.Printf("%d block(s); each becomes one spreadsheet row.\n", len(units))
			return nil
		},
	}

	cmd.Flags().BoolVar(&valuesOnly, "values", false, "Print only the final cell values, one per line")

	return cmd
}
