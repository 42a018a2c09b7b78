package quality

import (
	"regexp"
	"strings"
)

var (
	codeLetterDigits = regexp.MustCompile(`^[A-Za-z]{1,4}-?\d{2,8}$`)
	codeCompound     = regexp.MustCompile(`^[A-Za-z]{1,4}\d{2,8}\d{3,8}$`)
	codeShortAlnum   = regexp.MustCompile(`^[A-Za-z0-9_-]{2,16}$`)
	cjkPattern       = regexp.MustCompile(`[\x{4e00}-\x{9fff}]`)
)

// LooksLikeCode reports whether a taxonomy value is an internal code
// (A001, P0231, Q-101, A001001) rather than a display name.
func LooksLikeCode(s string) bool {
	t := strings.TrimSpace(s)
	if t == "" {
		return false
	}
	if codeLetterDigits.MatchString(t) {
		return true
	}
	if codeCompound.MatchString(t) {
		return true
	}
	if codeShortAlnum.MatchString(t) && !cjkPattern.MatchString(t) {
		return true
	}
	return false
}

// ShortText trims, flattens newlines, and truncates to maxLen runes with a
// trailing ellipsis.
func ShortText(s string, maxLen int) string {
	t := strings.ReplaceAll(strings.TrimSpace(s), "\n", " ")
	runes := []rune(t)
	if len(runes) <= maxLen {
		return t
	}
	cut := maxLen - 1
	if cut < 0 {
		cut = 0
	}
	return string(runes[:cut]) + "…"
}
