package assistant

import (
	"regexp"
	"strconv"
	"strings"

	"zhujian/internal/usecase/analytics"
)

var (
	scopeBuilding = regexp.MustCompile(`(\d+)(?:栋|楼|#)`)
	scopeFloor    = regexp.MustCompile(`(\d+)(?:层|楼)`)
)

// ExtractBasicScope pulls a building and floor out of the question text.
// "3楼" is ambiguous and lands in both fields, matching how region text is
// parsed at write time.
func ExtractBasicScope(query string) analytics.Scope {
	s := strings.ReplaceAll(query, " ", "")
	var scope analytics.Scope
	if m := scopeBuilding.FindStringSubmatch(s); m != nil {
		b := m[1] + "栋"
		scope.Building = &b
	}
	if m := scopeFloor.FindStringSubmatch(s); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			scope.Floor = &n
		}
	}
	return scope
}
