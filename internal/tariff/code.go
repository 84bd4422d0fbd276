// Package tariff holds the in-memory tariff schedule and resolves duty rates over it.
package tariff

import "strings"

// Breakpoints are the digit lengths at which the schedule hierarchy branches:
// chapter, heading, subheading, tariff line, statistical suffix.
var Breakpoints = []int{2, 4, 6, 8, 10}

// Minimum digit counts for code classes.
const (
	ChapterDigits  = 2
	HeadingDigits  = 4
	CompleteDigits = 8
)

// Digits strips every non-digit character from a code.
func Digits(code string) string {
	var b strings.Builder
	b.Grow(len(code))
	for _, r := range code {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FormatCode renders a digit string in canonical dotted form,
// e.g. 9017900136 becomes 9017.90.01.36.
func FormatCode(digits string) string {
	digits = Digits(digits)
	if len(digits) <= HeadingDigits {
		return digits
	}

	var b strings.Builder
	b.WriteString(digits[:HeadingDigits])
	for i := HeadingDigits; i < len(digits); i += 2 {
		end := i + 2
		if end > len(digits) {
			end = len(digits)
		}
		b.WriteByte('.')
		b.WriteString(digits[i:end])
	}
	return b.String()
}

// AncestorDigits returns the digit keys of every possible ancestor of a code,
// nearest first. Each step is strictly shorter than the previous one, so the
// walk always terminates at the chapter level.
func AncestorDigits(digits string) []string {
	var out []string
	for i := len(Breakpoints) - 1; i >= 0; i-- {
		bp := Breakpoints[i]
		if bp < len(digits) {
			out = append(out, digits[:bp])
		}
	}
	return out
}

// Chapter returns the two-digit chapter of a code, or "" if it is too short.
func Chapter(code string) string {
	d := Digits(code)
	if len(d) < ChapterDigits {
		return ""
	}
	return d[:ChapterDigits]
}

// Heading returns the four-digit heading of a code, or "" if it is too short.
func Heading(code string) string {
	d := Digits(code)
	if len(d) < HeadingDigits {
		return ""
	}
	return d[:HeadingDigits]
}

// IsComplete reports whether a code is specific enough to classify goods.
func IsComplete(code string) bool {
	return len(Digits(code)) >= CompleteDigits
}
