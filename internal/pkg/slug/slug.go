// Package slug derives URL-safe slugs from titles.
package slug

import (
	"strings"

	"github.com/google/uuid"
)

// Make lowercases the input, collapses anything non-alphanumeric into single
// dashes and trims the ends. An input with no usable characters gets a random
// UUID so unique indexes stay satisfiable.
func Make(s string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		case !lastDash:
			b.WriteByte('-')
			lastDash = true
		}
	}
	out := strings.Trim(b.String(), "-")
	if out == "" {
		out = uuid.New().String()
	}
	return out
}
