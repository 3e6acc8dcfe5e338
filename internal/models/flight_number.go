package models

import (
	"regexp"
	"strings"
)

// Flight numbers are an airline designator (two or three letters, or a
// letter/digit pair) followed by up to four digits and an optional suffix.
var flightNumberRe = regexp.MustCompile(`^([A-Z]{2,3}|[A-Z][0-9]|[0-9][A-Z])[0-9]{1,4}[A-Z]?$`)

var numericOnlyRe = regexp.MustCompile(`^[0-9]+$`)

// SanitizeFlightNumber uppercases the input and strips whitespace, dashes
// and dots so "ba 284" and "BA-284" both resolve to "BA284".
func SanitizeFlightNumber(raw string) string {
	s := strings.ToUpper(strings.TrimSpace(raw))
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '.':
			return -1
		}
		return r
	}, s)
}

// ValidFlightNumber reports whether a sanitized flight number is plausibly
// real. Numeric-only strings are not valid flight numbers.
func ValidFlightNumber(s string) bool {
	return flightNumberRe.MatchString(s)
}

// NumericOnly reports whether a sanitized input is all digits, which gets a
// not-found rather than an invalid-input response since the user may have
// typed a bare flight number without its airline code.
func NumericOnly(s string) bool {
	return s != "" && numericOnlyRe.MatchString(s)
}
