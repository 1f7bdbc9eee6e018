// Package text formats the help text of CLI commands.
package text

import (
	"strings"
)

// Indentation is prepended to every line of an example.
const Indentation = `  `

// LongDesc trims the surrounding whitespace of a long description and removes the indentation
// that a raw string literal inside a function picks up.
func LongDesc(s string) string {
	if s == "" {
		return s
	}

	lines := strings.Split(strings.TrimSpace(s), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}

	return strings.Join(lines, "\n")
}

// Examples trims an examples block and indents each of its lines with [Indentation].
func Examples(s string) string {
	if s == "" {
		return s
	}

	trimmed := strings.TrimSpace(s)
	indented := make([]string, 0, strings.Count(trimmed, "\n")+1)
	for line := range strings.SplitSeq(trimmed, "\n") {
		indented = append(indented, Indentation+strings.TrimSpace(line))
	}

	return strings.Join(indented, "\n")
}
