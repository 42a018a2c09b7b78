package quality

import (
	"testing"

	"zhujian/internal/ports"
)

func strPtr(s string) *string { return &s }

func TestClassifyItems_WorstResultWins(t *testing.T) {
	type row struct {
		key    string
		result string
	}
	rows := []row{
		{"A1", ports.ResultQualified},
		{"A1", ports.ResultUnqualified},
		{"A2", ports.ResultQualified},
		{"A3", ports.ResultPending},
		{"A3", ports.ResultQualified},
	}

	items := ClassifyItems(rows,
		func(r row) string { return r.key },
		func(r row) string { return r.result },
	)

	if got := items["A1"]; got != ports.ResultUnqualified {
		t.Fatalf("items[A1] = %q, want unqualified", got)
	}
	if got := items["A2"]; got != ports.ResultQualified {
		t.Fatalf("items[A2] = %q, want qualified", got)
	}
	if got := items["A3"]; got != ports.ResultPending {
		t.Fatalf("items[A3] = %q, want pending", got)
	}

	counts := CountResults(items)
	if counts.Unqualified != 1 || counts.Pending != 1 || counts.Qualified != 1 {
		t.Fatalf("CountResults() = %+v", counts)
	}
	if counts.Total() != 3 {
		t.Fatalf("Total() = %d, want 3", counts.Total())
	}
}

func TestItemKey_FallbackChain(t *testing.T) {
	tax := ports.Taxonomy{
		Item:      strPtr("模板安装"),
		Indicator: strPtr("垂直度"),
	}
	if got := ItemKey(tax); got != "模板安装" {
		t.Fatalf("ItemKey() = %q, want 模板安装", got)
	}

	tax.ItemCode = strPtr("A001")
	if got := ItemKey(tax); got != "A001" {
		t.Fatalf("ItemKey() = %q, want A001", got)
	}

	if got := ItemKey(ports.Taxonomy{}); got != "" {
		t.Fatalf("ItemKey(empty) = %q, want empty", got)
	}
}

func TestDisplayKey_PrefersNames(t *testing.T) {
	tax := ports.Taxonomy{
		ItemCode: strPtr("A001"),
		Item:     strPtr("模板安装"),
	}
	if got := DisplayKey(tax); got != "模板安装" {
		t.Fatalf("DisplayKey() = %q, want 模板安装", got)
	}

	if got := DisplayKey(ports.Taxonomy{ItemCode: strPtr("A001")}); got != "A001" {
		t.Fatalf("DisplayKey() = %q, want A001", got)
	}
}

func TestCategoryKey_SkipsCodes(t *testing.T) {
	tax := ports.Taxonomy{
		Indicator:   strPtr("Q-101"),
		Item:        strPtr("砌体工程"),
		Subdivision: strPtr("主体结构"),
	}
	if got := CategoryKey(tax); got != "砌体工程" {
		t.Fatalf("CategoryKey() = %q, want 砌体工程", got)
	}

	allCodes := ports.Taxonomy{Indicator: strPtr("A001"), Item: strPtr("P0231")}
	if got := CategoryKey(allCodes); got != "" {
		t.Fatalf("CategoryKey(codes) = %q, want empty", got)
	}
}

func TestNormalizeSeverity(t *testing.T) {
	cases := []struct {
		in   *string
		want string
	}{
		{nil, SeverityUnknown},
		{strPtr(""), SeverityUnknown},
		{strPtr("严重"), SeveritySevere},
		{strPtr("HIGH"), SeveritySevere},
		{strPtr("一级"), SeveritySevere},
		{strPtr("一般"), SeverityNormal},
		{strPtr("B"), SeverityNormal},
		{strPtr("轻微"), "轻微"},
	}
	for _, tc := range cases {
		if got := NormalizeSeverity(tc.in); got != tc.want {
			t.Fatalf("NormalizeSeverity(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestMedian(t *testing.T) {
	if got := Median([]float64{1, 3}); got == nil || *got != 2.0 {
		t.Fatalf("Median([1,3]) = %v, want 2.0", got)
	}
	if got := Median([]float64{1, 2, 9}); got == nil || *got != 2 {
		t.Fatalf("Median([1,2,9]) = %v, want 2", got)
	}
	if got := Median(nil); got != nil {
		t.Fatalf("Median(nil) = %v, want nil", got)
	}
	if got := Median([]float64{9, 1, 2}); got == nil || *got != 2 {
		t.Fatalf("Median(unsorted) = %v, want 2", got)
	}
}

func TestLooksLikeCode(t *testing.T) {
	codeLike := []string{"A001", "P0231", "Q-101", "A001001", "ab-12", "x2"}
	for _, s := range codeLike {
		if !LooksLikeCode(s) {
			t.Fatalf("LooksLikeCode(%q) = false, want true", s)
		}
	}

	nameLike := []string{"", "模板安装", "主体结构", "钢筋绑扎A区"}
	for _, s := range nameLike {
		if LooksLikeCode(s) {
			t.Fatalf("LooksLikeCode(%q) = true, want false", s)
		}
	}
}

func TestShortText(t *testing.T) {
	if got := ShortText("  短文本\n换行  ", 28); got != "短文本 换行" {
		t.Fatalf("ShortText() = %q", got)
	}

	long := "这是一段很长很长很长很长很长很长很长很长很长很长的描述文字"
	got := ShortText(long, 10)
	if runes := []rune(got); len(runes) != 10 || runes[9] != '…' {
		t.Fatalf("ShortText(long, 10) = %q", got)
	}
}
