package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// ConfigIssue represents a validation finding.
type ConfigIssue struct {
	Key      string `json:"key"`
	Severity string `json:"severity"` // "error", "warning", "info"
	Message  string `json:"message"`
	Fix      string `json:"fix,omitempty"`
}

// Wizard runs the interactive setup wizard.
// If reader is nil, reads from os.Stdin.
func Wizard(reader io.Reader) error {
	if reader == nil {
		reader = os.Stdin
	}
	scanner := bufio.NewScanner(reader)

	fmt.Println("CopyKit Setup Wizard")
	fmt.Println()
	fmt.Println("Let's get you set up in about 30 seconds.")
	fmt.Println()
	fmt.Println(strings.Repeat("-", 48))
	fmt.Println()

	// Step 1: Fill position
	fmt.Println("Step 1/3: Fill position")
	fmt.Println("  Where should converted copy land in the spreadsheet?")
	fmt.Print("  First row to write (default: 1): ")
	scanner.Scan()
	if row, ok := parsePositive(scanner.Text()); ok {
		viper.Set("start_row", row)
	} else {
		viper.Set("start_row", 1)
		fmt.Println("  Using row 1")
	}

	fmt.Print("  Column to write, 1 = column A (default: 1): ")
	scanner.Scan()
	if col, ok := parsePositive(scanner.Text()); ok {
		viper.Set("column", col)
	} else {
		viper.Set("column", 1)
		fmt.Println("  Using column A")
	}
	fmt.Println()

	// Step 2: Template
	fmt.Println("Step 2/3: Template (optional)")
	fmt.Print("  Path to your team's .xlsx template (empty = built-in default): ")
	scanner.Scan()
	tpl := strings.TrimSpace(scanner.Text())
	if tpl != "" {
		viper.Set("template", tpl)
		if _, err := os.Stat(tpl); err != nil {
			fmt.Printf("  Note: %s does not exist yet\n", tpl)
		} else {
			fmt.Println("  Template saved")
		}
	} else {
		fmt.Println("  The built-in template will be generated on first convert")
	}
	fmt.Println()

	// Save config
	if err := SaveConfig(); err != nil {
		return fmt.Errorf("could not save config: %w", err)
	}

	// Step 3: Done
	fmt.Println("Step 3/3: Done!")
	fmt.Println(strings.Repeat("-", 48))
	fmt.Println()
	fmt.Println("CopyKit is ready!")
	fmt.Println()
	fmt.Println("Quick start:")
	fmt.Println("  copykit convert 文案.txt              (text in, workbook out)")
	fmt.Println("  copykit segment 文案.txt              (see the blocks first)")
	fmt.Println("  copykit watch ~/drops                 (auto-convert a folder)")
	fmt.Println("  copykit scan ~/Documents -r           (find candidate files)")
	fmt.Println()
	fmt.Printf("Config file: %s\n", ConfigPath())
	fmt.Println("Type 'copykit config show' to see all settings.")

	return nil
}

// WizardNonInteractive sets up config with defaults only (no user input).
func WizardNonInteractive() error {
	viper.Set("start_row", 1)
	viper.Set("column", 1)
	viper.Set("output.color", true)
	return SaveConfig()
}

func parsePositive(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// Validate checks config values and returns a list of issues.
func Validate() []ConfigIssue {
	var issues []ConfigIssue

	if row := viper.GetInt("start_row"); row < 1 {
		issues = append(issues, ConfigIssue{
			Key:      "start_row",
			Severity: "error",
			Message:  fmt.Sprintf("start_row is %d but rows are numbered from 1", row),
			Fix:      "copykit config set start_row 1",
		})
	}
	if col := viper.GetInt("column"); col < 1 {
		issues = append(issues, ConfigIssue{
			Key:      "column",
			Severity: "error",
			Message:  fmt.Sprintf("column is %d but columns are numbered from 1", col),
			Fix:      "copykit config set column 1",
		})
	}

	if tpl := viper.GetString("template"); tpl != "" {
		if _, err := os.Stat(tpl); err != nil {
			issues = append(issues, ConfigIssue{
				Key:      "template",
				Severity: "warning",
				Message:  fmt.Sprintf("configured template %s does not exist — conversions will fail until it is restored", tpl),
				Fix:      "copykit config set template \"\"",
			})
		} else {
			issues = append(issues, ConfigIssue{
				Key:      "template",
				Severity: "info",
				Message:  fmt.Sprintf("custom template configured: %s", tpl),
			})
		}
	}

	if dir := viper.GetString("output.dir"); dir != "" {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			issues = append(issues, ConfigIssue{
				Key:      "output.dir",
				Severity: "warning",
				Message:  fmt.Sprintf("output.dir %s is not a directory — it will be created on first convert", dir),
			})
		}
	}

	if ms := viper.GetInt("watch.debounce_ms"); ms < 1 {
		issues = append(issues, ConfigIssue{
			Key:      "watch.debounce_ms",
			Severity: "warning",
			Message:  fmt.Sprintf("watch.debounce_ms is %d — watch mode will convert on every write event", ms),
			Fix:      "copykit config set watch.debounce_ms 500",
		})
	}

	return issues
}

// ToEnv returns all config values as a map of env var name -> value.
func ToEnv() map[string]string {
	env := make(map[string]string)

	if row := viper.GetInt("start_row"); row > 0 {
		env["COPYKIT_START_ROW"] = strconv.Itoa(row)
	}
	if col := viper.GetInt("column"); col > 0 {
		env["COPYKIT_COLUMN"] = strconv.Itoa(col)
	}
	if t := viper.GetString("template"); t != "" {
		env["COPYKIT_TEMPLATE"] = t
	}
	if d := viper.GetString("output.dir"); d != "" {
		env["COPYKIT_OUTPUT_DIR"] = d
	}
	if ms := viper.GetInt("watch.debounce_ms"); ms > 0 {
		env["COPYKIT_WATCH_DEBOUNCE_MS"] = strconv.Itoa(ms)
	}

	return env
}

// Set sets a config value and saves to disk.
func Set(key, value string) error {
	viper.Set(key, value)
	return SaveConfig()
}

// Get retrieves a config value.
func Get(key string) string {
	return viper.GetString(key)
}

// ResetConfig resets all config to defaults.
func ResetConfig() error {
	path := ConfigPath()
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("could not delete config: %w", err)
	}
	// Reset viper defaults
	viper.Set("start_row", 1)
	viper.Set("column", 1)
	viper.Set("template", "")
	viper.Set("output.color", true)
	viper.Set("watch.debounce_ms", 500)
	return nil
}

// SaveConfig writes the current config to ~/.copykit/config.yaml.
func SaveConfig() error {
	dir := configDir()
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("could not create config directory: %w", err)
	}

	path := filepath.Join(dir, "config.yaml")
	if err := viper.WriteConfigAs(path); err != nil {
		return fmt.Errorf("could not write config: %w", err)
	}

	os.Chmod(path, 0600)
	return nil
}

// ConfigPath returns the path to the config file.
func ConfigPath() string {
	return filepath.Join(configDir(), "config.yaml")
}

// ShowConfig returns a formatted string of the current configuration.
func ShowConfig() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Config: %s\n\n", ConfigPath()))

	sb.WriteString("Conversion\n")
	sb.WriteString(fmt.Sprintf("  start_row: %d\n", viper.GetInt("start_row")))
	sb.WriteString(fmt.Sprintf("  column:    %d\n", viper.GetInt("column")))
	if t := viper.GetString("template"); t != "" {
		sb.WriteString(fmt.Sprintf("  template:  %s\n", t))
	} else {
		sb.WriteString("  template:  (built-in default)\n")
	}
	sb.WriteString("\n")

	sb.WriteString("Output\n")
	if d := viper.GetString("output.dir"); d != "" {
		sb.WriteString(fmt.Sprintf("  dir:       %s\n", d))
	} else {
		sb.WriteString("  dir:       (next to the input)\n")
	}
	sb.WriteString(fmt.Sprintf("  color:     %t\n", viper.GetBool("output.color")))
	sb.WriteString("\n")

	sb.WriteString("Watch\n")
	sb.WriteString(fmt.Sprintf("  debounce:  %dms\n", viper.GetInt("watch.debounce_ms")))
	sb.WriteString(fmt.Sprintf("  recursive: %t\n", viper.GetBool("watch.recursive")))
	sb.WriteString("\n")

	return sb.String()
}
