package region

import "testing"

func TestParse_BuildingAndFloor(t *testing.T) {
	got := Parse("1栋10层")
	if got.BuildingNo == nil || *got.BuildingNo != "1栋" {
		t.Fatalf("Parse() building = %v, want 1栋", got.BuildingNo)
	}
	if got.FloorNo == nil || *got.FloorNo != 10 {
		t.Fatalf("Parse() floor = %v, want 10", got.FloorNo)
	}
	if got.Zone != nil {
		t.Fatalf("Parse() zone = %q, want nil", *got.Zone)
	}
}

func TestParse_SlashSegments(t *testing.T) {
	got := Parse("2# / 3层 / 304")
	if got.BuildingNo == nil || *got.BuildingNo != "2栋" {
		t.Fatalf("Parse() building = %v, want 2栋", got.BuildingNo)
	}
	if got.FloorNo == nil || *got.FloorNo != 3 {
		t.Fatalf("Parse() floor = %v, want 3", got.FloorNo)
	}
	if got.Zone == nil || *got.Zone != "304" {
		t.Fatalf("Parse() zone = %v, want 304", got.Zone)
	}
}

func TestParse_ChineseNumerals(t *testing.T) {
	got := Parse("十一栋六层")
	if got.BuildingNo == nil || *got.BuildingNo != "11栋" {
		t.Fatalf("Parse() building = %v, want 11栋", got.BuildingNo)
	}
	if got.FloorNo == nil || *got.FloorNo != 6 {
		t.Fatalf("Parse() floor = %v, want 6", got.FloorNo)
	}
}

func TestParse_CompactTrailingZone(t *testing.T) {
	got := Parse("2#3层304")
	if got.BuildingNo == nil || *got.BuildingNo != "2栋" {
		t.Fatalf("Parse() building = %v, want 2栋", got.BuildingNo)
	}
	if got.FloorNo == nil || *got.FloorNo != 3 {
		t.Fatalf("Parse() floor = %v, want 3", got.FloorNo)
	}
	if got.Zone == nil || *got.Zone != "304" {
		t.Fatalf("Parse() zone = %v, want 304", got.Zone)
	}
}

func TestParse_NonNumericZone(t *testing.T) {
	got := Parse("3栋 / 6层 / 核心筒")
	if got.Zone == nil || *got.Zone != "核心筒" {
		t.Fatalf("Parse() zone = %v, want 核心筒", got.Zone)
	}
}

func TestParse_Empty(t *testing.T) {
	got := Parse("")
	if got.BuildingNo != nil || got.FloorNo != nil || got.Zone != nil {
		t.Fatalf("Parse(\"\") = %+v, want all nil", got)
	}

	got = Parse("   ")
	if got.BuildingNo != nil || got.FloorNo != nil || got.Zone != nil {
		t.Fatalf("Parse(blank) = %+v, want all nil", got)
	}
}

func TestParse_AmbiguousLouMarker(t *testing.T) {
	// "楼" matches both extractions; both may fire on the same token.
	got := Parse("3楼")
	if got.FloorNo == nil || *got.FloorNo != 3 {
		t.Fatalf("Parse() floor = %v, want 3", got.FloorNo)
	}
	if got.BuildingNo == nil || *got.BuildingNo != "3栋" {
		t.Fatalf("Parse() building = %v, want 3栋", got.BuildingNo)
	}
}

func TestNumeralToInt(t *testing.T) {
	cases := []struct {
		in   string
		want int
		ok   bool
	}{
		{"7", 7, true},
		{"23", 23, true},
		{"十", 10, true},
		{"十一", 11, true},
		{"二十", 20, true},
		{"二十三", 23, true},
		{"两", 2, true},
		{"", 0, false},
		{"abc", 0, false},
	}
	for _, tc := range cases {
		got, ok := numeralToInt(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("numeralToInt(%q) = (%d, %v), want (%d, %v)", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}
