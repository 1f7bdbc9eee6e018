package logger

import (
	"fmt"
	"strings"
)

// Banner formats text as an upper-cased warning banner. A padded banner frames the text between
// two rows of asterisks:
//
//	*************
//	*** TEXT ***
//	*************
//
// otherwise the banner is a single line: **** TEXT ****
func Banner(text string, padded bool) string {
	upper := strings.ToUpper(text)
	if !padded {
		return fmt.Sprintf("**** %s ****", upper)
	}

	padding := strings.Repeat("*", len(text)+8)

	return fmt.Sprintf("%s\n*** %s ***\n%s", padding, upper, padding)
}

// WarnBanner logs text as a [Banner] at warn level.
func WarnBanner(lggr Logger, text string, padded bool) {
	lggr.Warn(Banner(text, padded))
}
