package versekey

import (
	"sort"
	"testing"
)

func TestCompareNumericAware(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"2", "10", -1},
		{"10", "2", 1},
		{"12", "12", 0},
		{"12", "12a", -1},
		{"12a", "12b", -1},
		{"12b", "13", -1},
		{"12A", "12a", 0},
		{"1", "1", 0},
		{"03", "3", 0},
	}
	for _, tc := range cases {
		if got := Compare(tc.a, tc.b); got != tc.want {
			t.Errorf("Compare(%q, %q) = %d, want %d", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestParseWithoutLeadingDigits(t *testing.T) {
	k := Parse("intro")
	if k.Number != 0 || k.Suffix != "intro" {
		t.Fatalf("Parse(intro) = %+v", k)
	}
}

func TestSortOrder(t *testing.T) {
	values := []string{"10", "2", "12b", "12", "1", "12a"}
	sort.Slice(values, func(i, j int) bool { return Compare(values[i], values[j]) < 0 })
	want := []string{"1", "2", "10", "12", "12a", "12b"}
	for i := range want {
		if values[i] != want[i] {
			t.Fatalf("sorted = %v, want %v", values, want)
		}
	}
}

func TestCompareRef(t *testing.T) {
	if CompareRef("1", "10", "2", "1") != -1 {
		t.Fatal("chapter should dominate verse")
	}
	if CompareRef("2", "3", "2", "10") != -1 {
		t.Fatal("verse comparison should be numeric-aware")
	}
}
