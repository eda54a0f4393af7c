package search

import (
	"strings"
	"testing"
)

func TestLikePatternEscapesMetacharacters(t *testing.T) {
	got := likePattern("50%_done")
	want := `%50\%\_done%`
	if got != want {
		t.Errorf("likePattern = %q, want %q", got, want)
	}
}

func TestSnippetShortTextReturnedWhole(t *testing.T) {
	text := "धर्मक्षेत्रे कुरुक्षेत्रे"
	if got := snippet(text, "कुरु"); got != text {
		t.Errorf("snippet = %q, want %q", got, text)
	}
}

func TestSnippetLongTextWindowsAroundMatch(t *testing.T) {
	text := strings.Repeat("a", 300) + "needle" + strings.Repeat("b", 300)
	got := snippet(text, "NEEDLE")
	if !strings.Contains(got, "needle") {
		t.Errorf("snippet %q does not contain the match", got)
	}
	if len([]rune(got)) > 170 {
		t.Errorf("snippet too long: %d runes", len([]rune(got)))
	}
}

func TestSnippetNoMatchTruncatesHead(t *testing.T) {
	text := strings.Repeat("x", 500)
	got := snippet(text, "absent")
	if !strings.HasPrefix(got, "xxx") || !strings.HasSuffix(got, "…") {
		t.Errorf("snippet = %q, want truncated head with ellipsis", got)
	}
}
