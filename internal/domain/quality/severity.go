package quality

import "strings"

const (
	SeveritySevere  = "severe"
	SeverityNormal  = "normal"
	SeverityUnknown = "unknown"
)

var severeAliases = map[string]struct{}{
	"严重": {}, "重大": {}, "high": {}, "severe": {}, "critical": {}, "a": {}, "一级": {},
}

var normalAliases = map[string]struct{}{
	"一般": {}, "普通": {}, "medium": {}, "normal": {}, "b": {}, "二级": {},
}

// NormalizeSeverity maps free-text severity into a read-time bucket.
// Unrecognized non-empty values pass through lowercased.
func NormalizeSeverity(sev *string) string {
	s := ""
	if sev != nil {
		s = strings.ToLower(strings.TrimSpace(*sev))
	}
	if s == "" {
		return SeverityUnknown
	}
	if _, ok := severeAliases[s]; ok {
		return SeveritySevere
	}
	if _, ok := normalAliases[s]; ok {
		return SeverityNormal
	}
	return s
}
