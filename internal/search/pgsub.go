package search

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// PgSub implements Searcher using case-insensitive substring matching in
// PostgreSQL as a fallback when Meilisearch is unavailable.
type PgSub struct {
	db *sql.DB
}

// NewPgSub creates a PostgreSQL substring searcher.
func NewPgSub(db *sql.DB) *PgSub {
	return &PgSub{db: db}
}

// Healthy always returns true. If Postgres is down, the whole app is down.
func (p *PgSub) Healthy() bool {
	return true
}

// likePattern escapes ILIKE metacharacters so the query matches literally.
func likePattern(text string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(text) + "%"
}

// Search runs up to three ILIKE queries, one per category, each capped
// at perTypeLimit hits. Only published granthas are searched.
func (p *PgSub) Search(q Query) ([]Result, error) {
	if strings.TrimSpace(q.Text) == "" {
		return nil, nil
	}

	ctx := context.Background()
	pattern := likePattern(q.Text)
	results := make([]Result, 0)

	if q.FilterType == "" || q.FilterType == ResultGrantha {
		rows, err := p.db.QueryContext(ctx, `
			SELECT id, title, author, coalesce(description, '')
			FROM granthas
			WHERE status = 'published'
			  AND (title ILIKE $1 OR title_english ILIKE $1
			       OR author ILIKE $1 OR author_english ILIKE $1
			       OR coalesce(description, '') ILIKE $1)
			ORDER BY title
			LIMIT $2`, pattern, perTypeLimit)
		if err != nil {
			return nil, fmt.Errorf("search granthas: %w", err)
		}
		for rows.Next() {
			var r Result
			var description string
			if err := rows.Scan(&r.ID, &r.Title, &r.Subtitle, &description); err != nil {
				rows.Close()
				return nil, fmt.Errorf("scan grantha hit: %w", err)
			}
			r.Type = ResultGrantha
			r.GranthaID = r.ID
			r.Content = snippet(description, q.Text)
			results = append(results, r)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, fmt.Errorf("iterate grantha hits: %w", err)
		}
		rows.Close()
	}

	if q.FilterType == "" || q.FilterType == ResultVerse {
		rows, err := p.db.QueryContext(ctx, `
			SELECT v.id, v.grantha_id, g.title, v.chapter_number, v.verse_number, v.verse_text
			FROM verses v
			JOIN granthas g ON g.id = v.grantha_id
			WHERE g.status = 'published' AND v.verse_text ILIKE $1
			ORDER BY v.created_at
			LIMIT $2`, pattern, perTypeLimit)
		if err != nil {
			return nil, fmt.Errorf("search verses: %w", err)
		}
		for rows.Next() {
			var r Result
			var granthaTitle, chapter, verse, text string
			if err := rows.Scan(&r.ID, &r.GranthaID, &granthaTitle, &chapter, &verse, &text); err != nil {
				rows.Close()
				return nil, fmt.Errorf("scan verse hit: %w", err)
			}
			r.Type = ResultVerse
			r.Title = granthaTitle
			r.Subtitle = fmt.Sprintf("%s.%s", chapter, verse)
			r.Content = snippet(text, q.Text)
			results = append(results, r)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, fmt.Errorf("iterate verse hits: %w", err)
		}
		rows.Close()
	}

	if q.FilterType == "" || q.FilterType == ResultCommentary {
		rows, err := p.db.QueryContext(ctx, `
			SELECT c.id, c.grantha_id, c.commentary_name, c.commentator, c.commentary_text
			FROM commentaries c
			JOIN granthas g ON g.id = c.grantha_id
			WHERE g.status = 'published'
			  AND (c.commentary_text ILIKE $1 OR c.commentary_name ILIKE $1 OR c.commentator ILIKE $1)
			ORDER BY c.created_at
			LIMIT $2`, pattern, perTypeLimit)
		if err != nil {
			return nil, fmt.Errorf("search commentaries: %w", err)
		}
		for rows.Next() {
			var r Result
			var text string
			if err := rows.Scan(&r.ID, &r.GranthaID, &r.Title, &r.Subtitle, &text); err != nil {
				rows.Close()
				return nil, fmt.Errorf("scan commentary hit: %w", err)
			}
			r.Type = ResultCommentary
			r.Content = snippet(text, q.Text)
			results = append(results, r)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, fmt.Errorf("iterate commentary hits: %w", err)
		}
		rows.Close()
	}

	return results, nil
}

// snippet returns a window of text around the first case-insensitive
// occurrence of the query, or the leading runes when there is no match.
func snippet(text, query string) string {
	const window = 160

	runes := []rune(text)
	if len(runes) <= window {
		return text
	}

	idx := strings.Index(strings.ToLower(text), strings.ToLower(query))
	if idx < 0 {
		return string(runes[:window]) + "…"
	}

	// Rune offset of the match
	start := len([]rune(text[:idx])) - window/4
	if start < 0 {
		start = 0
	}
	end := start + window
	if end > len(runes) {
		end = len(runes)
		start = end - window
	}

	out := string(runes[start:end])
	if start > 0 {
		out = "…" + out
	}
	if end < len(runes) {
		out = out + "…"
	}
	return out
}

// LoadAllRecords returns all searchable records for full reindexing.
func (p *PgSub) LoadAllRecords(ctx context.Context) ([]GranthaRecord, []VerseRecord, []CommentaryRecord, error) {
	granthaRows, err := p.db.QueryContext(ctx, `
		SELECT id, title, title_english, author, author_english, coalesce(description, ''), status
		FROM granthas
	`)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load granthas: %w", err)
	}
	defer granthaRows.Close()

	granthas := make([]GranthaRecord, 0)
	for granthaRows.Next() {
		var g GranthaRecord
		if err := granthaRows.Scan(&g.ID, &g.Title, &g.TitleEnglish, &g.Author, &g.AuthorEnglish, &g.Description, &g.Status); err != nil {
			return nil, nil, nil, fmt.Errorf("scan grantha: %w", err)
		}
		granthas = append(granthas, g)
	}
	if err := granthaRows.Err(); err != nil {
		return nil, nil, nil, fmt.Errorf("iterate granthas: %w", err)
	}

	verseRows, err := p.db.QueryContext(ctx, `
		SELECT v.id, v.grantha_id, g.title, g.status, v.chapter_number, v.verse_number, v.verse_text
		FROM verses v
		JOIN granthas g ON g.id = v.grantha_id
	`)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load verses: %w", err)
	}
	defer verseRows.Close()

	verses := make([]VerseRecord, 0)
	for verseRows.Next() {
		var v VerseRecord
		if err := verseRows.Scan(&v.ID, &v.GranthaID, &v.GranthaTitle, &v.GranthaStatus, &v.ChapterNumber, &v.VerseNumber, &v.VerseText); err != nil {
			return nil, nil, nil, fmt.Errorf("scan verse: %w", err)
		}
		verses = append(verses, v)
	}
	if err := verseRows.Err(); err != nil {
		return nil, nil, nil, fmt.Errorf("iterate verses: %w", err)
	}

	commentaryRows, err := p.db.QueryContext(ctx, `
		SELECT c.id, c.grantha_id, g.status, c.verse_id, c.commentary_name, c.commentator, c.commentary_text
		FROM commentaries c
		JOIN granthas g ON g.id = c.grantha_id
	`)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load commentaries: %w", err)
	}
	defer commentaryRows.Close()

	commentaries := make([]CommentaryRecord, 0)
	for commentaryRows.Next() {
		var c CommentaryRecord
		if err := commentaryRows.Scan(&c.ID, &c.GranthaID, &c.GranthaStatus, &c.VerseID, &c.CommentaryName, &c.Commentator, &c.CommentaryText); err != nil {
			return nil, nil, nil, fmt.Errorf("scan commentary: %w", err)
		}
		commentaries = append(commentaries, c)
	}
	if err := commentaryRows.Err(); err != nil {
		return nil, nil, nil, fmt.Errorf("iterate commentaries: %w", err)
	}

	return granthas, verses, commentaries, nil
}
