// Package segment splits raw copy text into discrete blocks ready for
// spreadsheet import. Blocks are runs of non-blank lines separated by one
// or more blank lines; line breaks inside a block become full-width commas
// when the block is rendered as a single cell value.
package segment

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Separator joins a unit's lines into one cell value. The copy this tool
// handles is predominantly Chinese, so internal line breaks are replaced
// with the full-width comma.
const Separator = "，"

// ErrDecode is returned when input bytes are not valid UTF-8.
var ErrDecode = errors.New("not valid UTF-8 text")

// Unit is one logical copy block: the ordered lines of text between
// blank-line boundaries. A Unit never holds an empty line.
type Unit struct {
	Lines []string
}

// CellValue renders the unit as a single spreadsheet cell value: its lines
// joined with the full-width comma. The result contains no line breaks.
func (u Unit) CellValue() string {
	return strings.Join(u.Lines, Separator)
}

// Decode validates raw file bytes as UTF-8 and returns the decoded text.
// A leading byte-order mark is dropped.
func Decode(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w — save the file as UTF-8 and try again", ErrDecode)
	}
	return string(data), nil
}

// Split segments text into units. "\r\n", "\n", and bare "\r" all count as
// line breaks. A line is blank when it is empty after trimming whitespace;
// a blank line closes the current unit, and runs of blank lines (including
// leading ones) collapse into a single boundary, so no unit is ever empty.
// Content lines are trimmed and stray U+FEFF marks removed. A trailing
// newline at end of input produces no boundary. Pure: no side effects.
func Split(text string) []Unit {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var units []Unit
	var current []string

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(strings.ReplaceAll(raw, "\uFEFF", ""))
		if line == "" {
			if len(current) > 0 {
				units = append(units, Unit{Lines: current})
				current = nil
			}
			continue
		}
		current = append(current, line)
	}

	if len(current) > 0 {
		units = append(units, Unit{Lines: current})
	}

	return units
}

// CellValues maps a unit sequence to the strings committed to cells,
// preserving order.
func CellValues(units []Unit) []string {
	values := make([]string, len(units))
	for i, u := range units {
		values[i] = u.CellValue()
	}
	return values
}
