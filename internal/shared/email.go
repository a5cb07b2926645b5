package shared

import (
	"strings"

	"golang.org/x/text/cases"
)

var emailFolder = cases.Fold()

// NormalizeEmail canonicalizes an email address for storage and lookups.
// Addresses are compared case-insensitively, so the whole address is
// case-folded rather than just the domain part.
func NormalizeEmail(email string) string {
	return emailFolder.String(strings.TrimSpace(email))
}
