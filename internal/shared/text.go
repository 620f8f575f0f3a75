package shared

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// UpperName trims s and upper-cases it the way stored names are kept.
func UpperName(s string) string {
	return cases.Upper(language.Und).String(strings.TrimSpace(s))
}
