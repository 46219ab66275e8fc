package lib

import (
	"regexp"
	"strings"
)

var reValidAppID = regexp.MustCompile("^[1-9][0-9]*$")

// IsValidAppID returns true for decimal app id like "730"
func IsValidAppID(s string) bool {
	return reValidAppID.MatchString(s)
}

// Redact hides everything except last four chars
func Redact(s string) string {
	if len(s) <= 4 {
		return strings.Repeat("*", len(s))
	}
	return strings.Repeat("*", len(s)-4) + s[len(s)-4:]
}
