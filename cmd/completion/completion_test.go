package completion

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func testRootCmd() *cobra.Command {
	root := &cobra.Command{Use: "copykit"}
	root.AddCommand(&cobra.Command{Use: "convert", Short: "Convert a text file"})
	root.AddCommand(&cobra.Command{Use: "segment", Short: "Preview copy blocks"})
	return root
}

func TestBashCompletion(t *testing.T) {
	root := testRootCmd()
	var buf bytes.Buffer
	root.SetOut(&buf)

	if err := root.GenBashCompletion(&buf); err != nil {
		t.Fatal(err)
	}

	output := buf.String()
	if !strings.Contains(output, "_copykit") {
		t.Error("bash completion should contain _copykit function")
	}
}

func TestZshCompletion(t *testing.T) {
	root := testRootCmd()
	var buf bytes.Buffer

	if err := root.GenZshCompletion(&buf); err != nil {
		t.Fatal(err)
	}

	output := buf.String()
	if !strings.Contains(output, "compdef") {
		t.Error("zsh completion should contain compdef")
	}
}

func TestFishCompletion(t *testing.T) {
	root := testRootCmd()
	var buf bytes.Buffer

	if err := root.GenFishCompletion(&buf, true); err != nil {
		t.Fatal(err)
	}

	output := buf.String()
	if !strings.Contains(output, "complete -c copykit") {
		t.Error("fish completion should contain 'complete -c copykit'")
	}
}

func TestPowerShellCompletion(t *testing.T) {
	root := testRootCmd()
	var buf bytes.Buffer

	if err := root.GenPowerShellCompletionWithDesc(&buf); err != nil {
		t.Fatal(err)
	}

	output := buf.String()
	if !strings.Contains(output, "copykit") {
		t.Error("PowerShell completion should contain copykit")
	}
}
