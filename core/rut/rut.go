// Package rut normalizes and validates Chilean identity numbers (RUT).
// A RUT serves both as an account's login key and as a student's key; the
// two namespaces are kept disjoint by the registries, not here.
package rut

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	cleanRegex = regexp.MustCompile(`[^0-9kK]`)
	tokenRegex = regexp.MustCompile(`^[0-9]{7,8}[0-9K]$`)
)

// Clean strips every character except digits and the check letter K, and
// upper-cases the result. Idempotent.
func Clean(raw string) string {
	return strings.ToUpper(cleanRegex.ReplaceAllString(raw, ""))
}

// IsValid reports whether raw is a well-formed RUT: no whitespace anywhere,
// 7 or 8 digits plus a digit-or-K check character once separators are
// stripped, and a digit body that is not one single repeated digit
// (11.111.111-1 and friends are obvious fakes).
func IsValid(raw string) bool {
	for _, r := range raw {
		if unicode.IsSpace(r) {
			return false
		}
	}

	token := Clean(raw)
	if !tokenRegex.MatchString(token) {
		return false
	}

	body := token[:len(token)-1]
	for i := 1; i < len(body); i++ {
		if body[i] != body[0] {
			return true
		}
	}
	return false
}
