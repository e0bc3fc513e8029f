package output

import (
	"os"
	"os/exec"
	"strings"
)

// DefaultPageHeight is the line count above which long listings (such as
// the history log) go through a pager instead of scrolling past.
const DefaultPageHeight = 40

// ShouldPage reports whether content is long enough to page: stdout must
// be a terminal and the content must exceed termHeight lines. Piped
// output is never paged.
func ShouldPage(content string, termHeight int) bool {
	if !stdoutIsTerminal() {
		return false
	}
	return strings.Count(content, "\n") > termHeight
}

// Page feeds content through the user's pager ($PAGER, falling back to
// less). The pager inherits the terminal so navigation works normally.
func Page(content string) error {
	pager := os.Getenv("PAGER")
	if pager == "" {
		pager = "less"
	}

	cmd := exec.Command(pager)
	cmd.Stdin = strings.NewReader(content)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	return cmd.Run()
}

func stdoutIsTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}
