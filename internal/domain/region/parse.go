package region

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// Location is the structured form of a free-text region description.
// Any subset of fields may be present.
type Location struct {
	BuildingNo *string
	FloorNo    *int
	Zone       *string
}

var (
	buildingPattern     = regexp.MustCompile(`([\d一二三四五六七八九十两]+)(?:栋|楼|#)`)
	floorPattern        = regexp.MustCompile(`([\d一二三四五六七八九十两]+)(?:层|楼)`)
	trailingZonePattern = regexp.MustCompile(`(?:层|楼)([A-Za-z0-9]{2,})$`)
)

var chineseDigits = map[rune]int{
	'零': 0,
	'一': 1,
	'二': 2,
	'两': 2,
	'三': 3,
	'四': 4,
	'五': 5,
	'六': 6,
	'七': 7,
	'八': 8,
	'九': 9,
	'十': 10,
}

// Parse extracts building, floor, and zone from user-entered region text.
// Best-effort: unparseable input yields empty fields, never an error.
//
// Supported shapes include "1栋10层", "2# / 3层 / 304", "3栋 / 6层 / 核心筒",
// and compact forms like "2#3层304". The "楼" marker is ambiguous between
// building and floor; both extractions run independently on the same text,
// so a bare "3楼" may set floor without building or both at once. This
// permissiveness is kept on purpose.
func Parse(text string) Location {
	raw := strings.TrimSpace(text)
	if raw == "" {
		return Location{}
	}

	stripped := stripSpaces(raw)

	var out Location

	if m := buildingPattern.FindStringSubmatch(stripped); m != nil {
		if n, ok := numeralToInt(m[1]); ok {
			building := fmt.Sprintf("%d栋", n)
			out.BuildingNo = &building
		}
	}

	if m := floorPattern.FindStringSubmatch(stripped); m != nil {
		if n, ok := numeralToInt(m[1]); ok {
			floor := n
			out.FloorNo = &floor
		}
	}

	// Zone: last "/"-separated segment of the raw text, otherwise a trailing
	// room token after the floor marker (e.g. "2#3层304").
	if strings.Contains(raw, "/") {
		var parts []string
		for _, p := range strings.Split(raw, "/") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		if len(parts) >= 2 {
			zone := parts[len(parts)-1]
			out.Zone = &zone
		}
	} else if m := trailingZonePattern.FindStringSubmatch(stripped); m != nil {
		zone := m[1]
		out.Zone = &zone
	}

	return out
}

func stripSpaces(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// numeralToInt reads Arabic digits or small Chinese numerals (up to 99,
// e.g. 十, 十一, 二十, 二十三).
func numeralToInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	if isASCIIDigits(s) {
		n, err := strconv.Atoi(s)
		if err != nil {
			return 0, false
		}
		return n, true
	}

	runes := []rune(s)
	for _, r := range runes {
		if _, ok := chineseDigits[r]; !ok {
			return 0, false
		}
	}

	if s == "十" {
		return 10, true
	}
	if runes[0] == '十' {
		return 10 + singleDigit(runes[1:]), true
	}
	if idx := indexRune(runes, '十'); idx >= 0 {
		tens := singleDigit(runes[:idx]) * 10
		return tens + singleDigit(runes[idx+1:]), true
	}
	if len(runes) == 1 {
		return chineseDigits[runes[0]], true
	}
	return 0, false
}

func isASCIIDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func indexRune(runes []rune, target rune) int {
	for i, r := range runes {
		if r == target {
			return i
		}
	}
	return -1
}

// singleDigit reads exactly one mapped digit rune; anything else counts as 0,
// matching the lenient composition of 十-forms ("二十三" = 2*10+3).
func singleDigit(runes []rune) int {
	if len(runes) != 1 {
		return 0
	}
	return chineseDigits[runes[0]]
}
