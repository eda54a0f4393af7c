package search

import "testing"

func contains(list []string, want string) bool {
	for _, v := range list {
		if v == want {
			return true
		}
	}
	return false
}

func TestGranthaIndexSearchesEnglishFields(t *testing.T) {
	for _, idx := range searchIndexes {
		if idx.uid != idxGranthas {
			continue
		}
		for _, attr := range []string{"title", "titleEnglish", "author", "authorEnglish", "description"} {
			if !contains(idx.searchable, attr) {
				t.Errorf("grantha index missing searchable attribute %q", attr)
			}
		}
		return
	}
	t.Fatal("grantha index not configured")
}

func TestEveryIndexFiltersUnpublishedContent(t *testing.T) {
	if len(searchIndexes) != 3 {
		t.Fatalf("expected 3 indexes, got %d", len(searchIndexes))
	}
	for _, idx := range searchIndexes {
		if idx.publishedFilter == "" {
			t.Errorf("index %s has no published filter", idx.uid)
		}
		statusAttr := "status"
		if idx.uid != idxGranthas {
			statusAttr = "granthaStatus"
		}
		if !contains(idx.filterable, statusAttr) {
			t.Errorf("index %s cannot filter on %s", idx.uid, statusAttr)
		}
	}
}
