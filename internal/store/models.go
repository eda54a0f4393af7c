package store

import "time"

// CommentaryDefinition declares one commentary track that is legal for a
// grantha, and the position it takes among siblings when rendered.
type CommentaryDefinition struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Author string `json:"author,omitempty"`
	Order  int    `json:"order"`
}

type Grantha struct {
	ID                    string                 `json:"id"`
	Title                 string                 `json:"title"`
	TitleEnglish          string                 `json:"titleEnglish,omitempty"`
	Author                string                 `json:"author,omitempty"`
	AuthorEnglish         string                 `json:"authorEnglish,omitempty"`
	Description           string                 `json:"description,omitempty"`
	Language              string                 `json:"language"`
	Category              string                 `json:"category"`
	Status                string                 `json:"status"`
	ChapterLabel          string                 `json:"chapterLabel"`
	VerseLabel            string                 `json:"verseLabel"`
	ChapterLabelEnglish   string                 `json:"chapterLabelEnglish"`
	VerseLabelEnglish     string                 `json:"verseLabelEnglish"`
	AvailableCommentaries []CommentaryDefinition `json:"availableCommentaries"`
	CreatedAt             time.Time              `json:"createdAt"`
	UpdatedAt             time.Time              `json:"updatedAt"`
}

// Verse numbers are stored as strings: the corpus mixes plain integers with
// letter-suffixed values like "12a".
type Verse struct {
	ID            string    `json:"id"`
	GranthaID     string    `json:"granthaId"`
	ChapterNumber string    `json:"chapterNumber"`
	VerseNumber   string    `json:"verseNumber"`
	VerseText     string    `json:"verseText,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Commentary is one node of the per-verse commentary forest. ParentCommentaryID
// is deliberately unconstrained: a dangling parent reference must never block a
// write, it just renders the node at root level.
type Commentary struct {
	ID                 string    `json:"id"`
	GranthaID          string    `json:"granthaId"`
	VerseID            string    `json:"verseId"`
	CommentaryName     string    `json:"commentaryName"`
	Commentator        string    `json:"commentator,omitempty"`
	CommentaryText     string    `json:"commentaryText,omitempty"`
	ParentCommentaryID *string   `json:"parentCommentaryId"`
	Level              int       `json:"level"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// CommentaryWithVerse is the flat grantha-wide listing row with the owning
// verse populated.
type CommentaryWithVerse struct {
	Commentary
	Verse *Verse `json:"verse,omitempty"`
}

type Suggestion struct {
	ID             string    `json:"id"`
	GranthaID      string    `json:"granthaId"`
	VerseID        string    `json:"verseId,omitempty"`
	CommentaryID   string    `json:"commentaryId,omitempty"`
	SuggestionType string    `json:"suggestionType"`
	OriginalText   string    `json:"originalText"`
	SuggestedText  string    `json:"suggestedText"`
	Reason         string    `json:"reason,omitempty"`
	SubmittedBy    string    `json:"submittedBy"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"createdAt"`
}

// SuggestionWithRefs is the moderation-queue row with referenced entities
// populated for display.
type SuggestionWithRefs struct {
	Suggestion
	Grantha    *Grantha    `json:"grantha,omitempty"`
	Verse      *Verse      `json:"verse,omitempty"`
	Commentary *Commentary `json:"commentary,omitempty"`
}

type Admin struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}
