package export

import (
	"encoding/json"
	"strings"
	"testing"

	"granthalaya/api/internal/store"
)

func sampleGrantha() store.Grantha {
	return store.Grantha{
		ID:       "gr_1",
		Title:    "Bhagavad Gita",
		Author:   "Vyasa",
		Language: "sanskrit",
		Category: "smriti",
		Status:   "published",
		AvailableCommentaries: []store.CommentaryDefinition{
			{ID: "def_1", Name: "Bhashya", Author: "Shankara", Order: 1},
		},
	}
}

func TestBuildSnapshotStatistics(t *testing.T) {
	parent := "cm_1"
	verses := []store.Verse{
		{ID: "vs_1", GranthaID: "gr_1", ChapterNumber: "1", VerseNumber: "1", VerseText: "a"},
		{ID: "vs_2", GranthaID: "gr_1", ChapterNumber: "1", VerseNumber: "2", VerseText: "b"},
		{ID: "vs_3", GranthaID: "gr_1", ChapterNumber: "2", VerseNumber: "1", VerseText: "c"},
	}
	commentaries := []store.Commentary{
		{ID: "cm_1", GranthaID: "gr_1", VerseID: "vs_1", CommentaryName: "Bhashya", CommentaryText: "x", Level: 0},
		{ID: "cm_2", GranthaID: "gr_1", VerseID: "vs_1", CommentaryName: "Tika", CommentaryText: "y", Level: 1, ParentCommentaryID: &parent},
	}

	snap := BuildSnapshot(sampleGrantha(), verses, commentaries)

	if snap.ExportVersion != SnapshotVersion {
		t.Errorf("exportVersion = %q, want %q", snap.ExportVersion, SnapshotVersion)
	}
	if snap.Statistics.TotalVerses != 3 {
		t.Errorf("totalVerses = %d, want 3", snap.Statistics.TotalVerses)
	}
	if snap.Statistics.TotalCommentaries != 2 {
		t.Errorf("totalCommentaries = %d, want 2", snap.Statistics.TotalCommentaries)
	}
	if snap.Statistics.Chapters != 2 {
		t.Errorf("chapters = %d, want 2", snap.Statistics.Chapters)
	}
}

func TestSnapshotWireFormatUsesUnderscoreID(t *testing.T) {
	verses := []store.Verse{
		{ID: "vs_1", GranthaID: "gr_1", ChapterNumber: "1", VerseNumber: "1", VerseText: "a"},
	}
	snap := BuildSnapshot(sampleGrantha(), verses, nil)

	res, err := JSON(snap)
	if err != nil {
		t.Fatalf("JSON failed: %v", err)
	}
	if res.MimeType != "application/json" {
		t.Errorf("mime = %q", res.MimeType)
	}
	if res.Filename != "Bhagavad-Gita.json" {
		t.Errorf("filename = %q", res.Filename)
	}

	var decoded map[string]any
	if err := json.Unmarshal(res.Data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	grantha, ok := decoded["grantha"].(map[string]any)
	if !ok {
		t.Fatal("missing grantha object")
	}
	if grantha["_id"] != "gr_1" {
		t.Errorf("grantha._id = %v, want gr_1", grantha["_id"])
	}
	versesOut, ok := decoded["verses"].([]any)
	if !ok || len(versesOut) != 1 {
		t.Fatalf("verses = %v", decoded["verses"])
	}
	if versesOut[0].(map[string]any)["_id"] != "vs_1" {
		t.Error("verse key should be _id")
	}
}

func TestSnapshotRootCommentaryParentSerializesNull(t *testing.T) {
	commentaries := []store.Commentary{
		{ID: "cm_1", GranthaID: "gr_1", VerseID: "vs_1", CommentaryName: "Bhashya", CommentaryText: "x"},
	}
	snap := BuildSnapshot(sampleGrantha(), nil, commentaries)

	data, err := json.Marshal(snap.Commentaries[0])
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"parentCommentaryId":null`) {
		t.Errorf("root commentary should serialize explicit null parent, got %s", data)
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Bhagavad Gita", "Bhagavad-Gita"},
		{"Yoga Sutras v1.2", "Yoga-Sutras-v12"},
		{"Special!@#$%Chars", "SpecialChars"},
		{"", "grantha"},
		{"भगवद्गीता", "grantha"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := sanitizeFilename(tt.input)
			if result != tt.expected {
				t.Errorf("sanitizeFilename(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestPercentEncodeForDataURL(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"hello world", "hello%20world"},
		{"test+sign", "test%2Bsign"},
		{"normal-text.txt", "normal-text.txt"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := percentEncodeForDataURL(tt.input)
			if result != tt.expected {
				t.Errorf("percentEncodeForDataURL(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestRenderGranthaHTMLNestsCommentaries(t *testing.T) {
	data := templateData{
		Title:        "Bhagavad Gita",
		Author:       "Vyasa",
		ChapterLabel: "अध्यायः",
		VerseLabel:   "श्लोकः",
		Chapters: []templateChapter{{
			Number: "1",
			Verses: []templateVerse{{
				Number: "1",
				Text:   "धर्मक्षेत्रे कुरुक्षेत्रे",
				Commentaries: []templateCommentary{{
					Name:        "Bhashya",
					Commentator: "Shankara",
					Text:        "outer",
					Children:    []templateCommentary{{Name: "Tika", Text: "inner"}},
				}},
			}},
		}},
	}

	html, err := renderGranthaHTML(data)
	if err != nil {
		t.Fatalf("renderGranthaHTML: %v", err)
	}
	if !strings.Contains(html, "धर्मक्षेत्रे") {
		t.Error("missing verse text")
	}
	if !strings.Contains(html, "अध्यायः 1") {
		t.Error("missing chapter heading with label")
	}
	outerIdx := strings.Index(html, "outer")
	innerIdx := strings.Index(html, "inner")
	if outerIdx < 0 || innerIdx < 0 || innerIdx < outerIdx {
		t.Error("sub-commentary should render inside its parent")
	}
}
