// Package doctor provides the "copykit doctor" command for checking
// that conversions can run on this machine.
package doctor

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/klytics/copykit/internal/formats/xlsx"
	"github.com/klytics/copykit/internal/history"
	tmpl "github.com/klytics/copykit/internal/template"
)

// Check represents a single health check result.
type Check struct {
	Name    string `json:"name"`
	Status  string `json:"status"` // "ok", "warning", "error"
	Message string `json:"message"`
}

// NewCommand creates the "doctor" command.
func NewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check system health and configuration",
		Long:  "Run diagnostic checks to verify CopyKit can read templates and write workbooks.",
		RunE: func(cmd *cobra.Command, args []string) error {
			checks := runChecks()

			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				return json.NewEncoder(os.Stdout).Encode(checks)
			}

			green := color.New(color.FgGreen).SprintFunc()
			yellow := color.New(color.FgYellow).SprintFunc()
			red := color.New(color.FgRed).SprintFunc()

			fmt.Println("CopyKit Doctor")
			fmt.Println("==============")
			fmt.Println()

			okCount, warnCount, errCount := 0, 0, 0
			for _, c := range checks {
				var icon string
				switch c.Status {
				case "ok":
					icon = green("✓")
					okCount++
				case "warning":
					icon = yellow("!")
					warnCount++
				case "error":
					icon = red("✗")
					errCount++
				}
				fmt.Printf("  %s %s: %s\n", icon, c.Name, c.Message)
			}

			fmt.Println()
			fmt.Printf("  %d passed, %d warnings, %d errors\n", okCount, warnCount, errCount)

			if errCount > 0 {
				return fmt.Errorf("%d check(s) failed", errCount)
			}
			return nil
		},
	}
}

func runChecks() []Check {
	var checks []Check

	// Go runtime
	checks = append(checks, Check{
		Name:    "Go Runtime",
		Status:  "ok",
		Message: fmt.Sprintf("%s %s/%s", runtime.Version(), runtime.GOOS, runtime.GOARCH),
	})

	// Config directory
	home, _ := os.UserHomeDir()
	configDir := filepath.Join(home, ".copykit")
	if info, err := os.Stat(configDir); err == nil && info.IsDir() {
		checks = append(checks, Check{
			Name:    "Config Directory",
			Status:  "ok",
			Message: configDir,
		})
	} else {
		checks = append(checks, Check{
			Name:    "Config Directory",
			Status:  "warning",
			Message: fmt.Sprintf("%s not found — run 'copykit config init'", configDir),
		})
	}

	// Config file
	configFile := filepath.Join(configDir, "config.yaml")
	if _, err := os.Stat(configFile); err == nil {
		checks = append(checks, Check{
			Name:    "Config File",
			Status:  "ok",
			Message: configFile,
		})
	} else {
		checks = append(checks, Check{
			Name:    "Config File",
			Status:  "warning",
			Message: "Not found — run 'copykit config init' (defaults apply)",
		})
	}

	// Default template: present and openable
	tplPath := tmpl.DefaultPath()
	if _, err := os.Stat(tplPath); err != nil {
		checks = append(checks, Check{
			Name:    "Default Template",
			Status:  "warning",
			Message: "Not generated yet — created automatically on first convert",
		})
	} else if _, err := xlsx.ReadFile(tplPath); err != nil {
		checks = append(checks, Check{
			Name:    "Default Template",
			Status:  "error",
			Message: fmt.Sprintf("%s is not a valid workbook — delete it and it will be regenerated", tplPath),
		})
	} else {
		checks = append(checks, Check{
			Name:    "Default Template",
			Status:  "ok",
			Message: tplPath,
		})
	}

	// Template directory writable (provisioning and fills need it)
	tplDir := tmpl.DefaultDir()
	if err := os.MkdirAll(tplDir, 0755); err != nil {
		checks = append(checks, Check{
			Name:    "Template Directory",
			Status:  "error",
			Message: fmt.Sprintf("cannot create %s: %v", tplDir, err),
		})
	} else if probe, err := os.CreateTemp(tplDir, ".doctor-*"); err != nil {
		checks = append(checks, Check{
			Name:    "Template Directory",
			Status:  "error",
			Message: fmt.Sprintf("%s is not writable: %v", tplDir, err),
		})
	} else {
		probe.Close()
		os.Remove(probe.Name())
		checks = append(checks, Check{
			Name:    "Template Directory",
			Status:  "ok",
			Message: tplDir + " (writable)",
		})
	}

	// History log
	store := history.DefaultStore()
	if size := store.Size(); size > 0 {
		checks = append(checks, Check{
			Name:    "History Log",
			Status:  "ok",
			Message: fmt.Sprintf("%s (%d bytes)", store.Path, size),
		})
	} else {
		checks = append(checks, Check{
			Name:    "History Log",
			Status:  "ok",
			Message: "Empty — conversions are recorded as they run",
		})
	}

	return checks
}
