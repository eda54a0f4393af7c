package search

// ResultType identifies the kind of entity in a search result.
type ResultType string

const (
	ResultGrantha    ResultType = "grantha"
	ResultVerse      ResultType = "verse"
	ResultCommentary ResultType = "commentary"
)

// perTypeLimit caps how many hits each category contributes to a response.
const perTypeLimit = 5

// Result is a single search hit returned to the caller.
type Result struct {
	Type      ResultType `json:"type"`
	ID        string     `json:"id"`
	GranthaID string     `json:"granthaId"`
	Title     string     `json:"title"`
	Subtitle  string     `json:"subtitle,omitempty"`
	Content   string     `json:"content,omitempty"`
}

// Query describes a search request.
type Query struct {
	Text       string
	FilterType ResultType // empty = all types
}

// Response is the envelope returned by the search endpoint.
type Response struct {
	Results []Result `json:"results"`
	Query   string   `json:"query"`
}

// Searcher can execute a text search across the library.
type Searcher interface {
	Search(q Query) ([]Result, error)
	Healthy() bool
}

// Indexer can push entities into a search index.
type Indexer interface {
	IndexGrantha(g GranthaRecord) error
	IndexVerse(v VerseRecord) error
	IndexCommentary(c CommentaryRecord) error
	DeleteGrantha(id string) error
	DeleteVerse(id string) error
	DeleteCommentary(id string) error
}

// GranthaRecord is the data we index for a grantha.
type GranthaRecord struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	TitleEnglish  string `json:"titleEnglish"`
	Author        string `json:"author"`
	AuthorEnglish string `json:"authorEnglish"`
	Description   string `json:"description"`
	Status        string `json:"status"`
}

// VerseRecord is the data we index for a verse. GranthaStatus mirrors the
// owning grantha so queries can hide draft content.
type VerseRecord struct {
	ID            string `json:"id"`
	GranthaID     string `json:"granthaId"`
	GranthaTitle  string `json:"granthaTitle"`
	GranthaStatus string `json:"granthaStatus"`
	ChapterNumber string `json:"chapterNumber"`
	VerseNumber   string `json:"verseNumber"`
	VerseText     string `json:"verseText"`
}

// CommentaryRecord is the data we index for a commentary. GranthaStatus
// mirrors the owning grantha so queries can hide draft content.
type CommentaryRecord struct {
	ID             string `json:"id"`
	GranthaID      string `json:"granthaId"`
	GranthaStatus  string `json:"granthaStatus"`
	VerseID        string `json:"verseId"`
	CommentaryName string `json:"commentaryName"`
	Commentator    string `json:"commentator"`
	CommentaryText string `json:"commentaryText"`
}
