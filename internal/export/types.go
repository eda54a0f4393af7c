// Package export produces downloadable grantha exports in JSON and PDF formats.
package export

import "errors"

// Format represents the export output format
type Format string

const (
	FormatJSON Format = "json"
	FormatPDF  Format = "pdf"
)

// Result contains the export output
type Result struct {
	Data     []byte
	Filename string
	MimeType string
}

// ErrPDFDependencyMissing indicates PDF export runtime dependencies are unavailable.
var ErrPDFDependencyMissing = errors.New("export pdf dependency missing")

// SnapshotVersion is the exportVersion stamped on every JSON export.
const SnapshotVersion = "1.0"

// Snapshot is the portable JSON representation of a grantha. The same shape
// is accepted back by the import endpoint, which remaps all identifiers.
type Snapshot struct {
	ExportVersion string          `json:"exportVersion"`
	ExportDate    string          `json:"exportDate"`
	Grantha       GranthaDoc      `json:"grantha"`
	Verses        []VerseDoc      `json:"verses"`
	Commentaries  []CommentaryDoc `json:"commentaries"`
	Statistics    Statistics      `json:"statistics"`
}

// GranthaDoc carries grantha metadata in the export wire format.
type GranthaDoc struct {
	ID                    string                    `json:"_id"`
	Title                 string                    `json:"title"`
	TitleEnglish          string                    `json:"titleEnglish,omitempty"`
	Author                string                    `json:"author"`
	AuthorEnglish         string                    `json:"authorEnglish,omitempty"`
	Description           string                    `json:"description,omitempty"`
	Language              string                    `json:"language"`
	Category              string                    `json:"category"`
	Status                string                    `json:"status"`
	ChapterLabel          string                    `json:"chapterLabel"`
	VerseLabel            string                    `json:"verseLabel"`
	ChapterLabelEnglish   string                    `json:"chapterLabelEnglish"`
	VerseLabelEnglish     string                    `json:"verseLabelEnglish"`
	AvailableCommentaries []CommentaryDefinitionDoc `json:"availableCommentaries"`
}

// CommentaryDefinitionDoc is a declared commentary name in the export wire format.
type CommentaryDefinitionDoc struct {
	ID     string `json:"_id,omitempty"`
	Name   string `json:"name"`
	Author string `json:"author,omitempty"`
	Order  int    `json:"order"`
}

// VerseDoc is a verse in the export wire format. Imports also accept an
// embedded commentaries array on each verse.
type VerseDoc struct {
	ID            string          `json:"_id"`
	ChapterNumber string          `json:"chapterNumber"`
	VerseNumber   string          `json:"verseNumber"`
	VerseText     string          `json:"verseText"`
	Commentaries  []CommentaryDoc `json:"commentaries,omitempty"`
}

// CommentaryDoc is a commentary in the export wire format.
type CommentaryDoc struct {
	ID                 string  `json:"_id"`
	VerseID            string  `json:"verseId"`
	CommentaryName     string  `json:"commentaryName"`
	Commentator        string  `json:"commentator,omitempty"`
	CommentaryText     string  `json:"commentaryText"`
	Level              int     `json:"level"`
	ParentCommentaryID *string `json:"parentCommentaryId"`
}

// Statistics summarizes a snapshot for quick inspection.
type Statistics struct {
	TotalVerses       int `json:"totalVerses"`
	TotalCommentaries int `json:"totalCommentaries"`
	Chapters          int `json:"chapters"`
}
