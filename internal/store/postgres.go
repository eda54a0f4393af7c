package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"granthalaya/api/internal/versekey"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) DB() *sql.DB {
	return s.db
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

const granthaColumns = `id, title, title_english, author, author_english, description,
	language, category, status, chapter_label, verse_label, chapter_label_english,
	verse_label_english, available_commentaries, created_at, updated_at`

func scanGrantha(row interface{ Scan(...any) error }) (Grantha, error) {
	var item Grantha
	var defs []byte
	err := row.Scan(
		&item.ID, &item.Title, &item.TitleEnglish, &item.Author, &item.AuthorEnglish,
		&item.Description, &item.Language, &item.Category, &item.Status,
		&item.ChapterLabel, &item.VerseLabel, &item.ChapterLabelEnglish,
		&item.VerseLabelEnglish, &defs, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return Grantha{}, err
	}
	if len(defs) > 0 {
		if err := json.Unmarshal(defs, &item.AvailableCommentaries); err != nil {
			return Grantha{}, fmt.Errorf("decode available commentaries: %w", err)
		}
	}
	if item.AvailableCommentaries == nil {
		item.AvailableCommentaries = []CommentaryDefinition{}
	}
	return item, nil
}

func (s *PostgresStore) ListPublishedGranthas(ctx context.Context, limit, offset int) ([]Grantha, int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+granthaColumns+`
		FROM granthas
		WHERE status = 'published'
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list published granthas: %w", err)
	}
	defer rows.Close()

	items := make([]Grantha, 0)
	for rows.Next() {
		item, err := scanGrantha(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan grantha: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate granthas: %w", err)
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM granthas WHERE status='published'`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count published granthas: %w", err)
	}
	return items, total, nil
}

func (s *PostgresStore) ListAllGranthas(ctx context.Context) ([]Grantha, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+granthaColumns+`
		FROM granthas
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list granthas: %w", err)
	}
	defer rows.Close()

	items := make([]Grantha, 0)
	for rows.Next() {
		item, err := scanGrantha(rows)
		if err != nil {
			return nil, fmt.Errorf("scan grantha: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate granthas: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) GetGrantha(ctx context.Context, granthaID string) (Grantha, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+granthaColumns+` FROM granthas WHERE id=$1`, granthaID)
	return scanGrantha(row)
}

// FindGranthaByTitleAuthor returns nil when no grantha matches.
func (s *PostgresStore) FindGranthaByTitleAuthor(ctx context.Context, title, author string) (*Grantha, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+granthaColumns+` FROM granthas WHERE title=$1 AND author=$2
	`, title, author)
	item, err := scanGrantha(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find grantha by title/author: %w", err)
	}
	return &item, nil
}

func (s *PostgresStore) InsertGrantha(ctx context.Context, item Grantha) error {
	defs, err := json.Marshal(item.AvailableCommentaries)
	if err != nil {
		return fmt.Errorf("encode available commentaries: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO granthas (
			id, title, title_english, author, author_english, description,
			language, category, status, chapter_label, verse_label,
			chapter_label_english, verse_label_english, available_commentaries
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`, item.ID, item.Title, item.TitleEnglish, item.Author, item.AuthorEnglish,
		item.Description, item.Language, item.Category, item.Status,
		item.ChapterLabel, item.VerseLabel, item.ChapterLabelEnglish,
		item.VerseLabelEnglish, defs)
	if err != nil {
		return fmt.Errorf("insert grantha: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpdateGrantha(ctx context.Context, item Grantha) error {
	defs, err := json.Marshal(item.AvailableCommentaries)
	if err != nil {
		return fmt.Errorf("encode available commentaries: %w", err)
	}
	result, err := s.db.ExecContext(ctx, `
		UPDATE granthas
		SET title=$2, title_english=$3, author=$4, author_english=$5, description=$6,
			language=$7, category=$8, status=$9, chapter_label=$10, verse_label=$11,
			chapter_label_english=$12, verse_label_english=$13,
			available_commentaries=$14, updated_at=NOW()
		WHERE id=$1
	`, item.ID, item.Title, item.TitleEnglish, item.Author, item.AuthorEnglish,
		item.Description, item.Language, item.Category, item.Status,
		item.ChapterLabel, item.VerseLabel, item.ChapterLabelEnglish,
		item.VerseLabelEnglish, defs)
	if err != nil {
		return fmt.Errorf("update grantha: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update grantha rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (s *PostgresStore) DeleteGrantha(ctx context.Context, granthaID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM granthas WHERE id=$1`, granthaID)
	if err != nil {
		return fmt.Errorf("delete grantha: %w", err)
	}
	return nil
}

// RenameCommentaryName cascades a commentary-definition rename to every
// commentary row of the grantha that still carries the old name.
func (s *PostgresStore) RenameCommentaryName(ctx context.Context, granthaID, oldName, newName string) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE commentaries
		SET commentary_name=$3, updated_at=NOW()
		WHERE grantha_id=$1 AND commentary_name=$2
	`, granthaID, oldName, newName)
	if err != nil {
		return 0, fmt.Errorf("rename commentary name: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rename commentary rows: %w", err)
	}
	return affected, nil
}

const verseColumns = `id, grantha_id, chapter_number, verse_number, verse_text, created_at, updated_at`

func scanVerse(row interface{ Scan(...any) error }) (Verse, error) {
	var item Verse
	err := row.Scan(&item.ID, &item.GranthaID, &item.ChapterNumber, &item.VerseNumber,
		&item.VerseText, &item.CreatedAt, &item.UpdatedAt)
	return item, err
}

// ListVersesByGrantha returns the grantha's verses ordered by the
// numeric-aware (chapter, verse) comparator. The sort happens here rather
// than in SQL because verse numbers mix integers with values like "12a".
func (s *PostgresStore) ListVersesByGrantha(ctx context.Context, granthaID string) ([]Verse, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+verseColumns+` FROM verses WHERE grantha_id=$1
	`, granthaID)
	if err != nil {
		return nil, fmt.Errorf("list verses: %w", err)
	}
	defer rows.Close()

	items := make([]Verse, 0)
	for rows.Next() {
		item, err := scanVerse(rows)
		if err != nil {
			return nil, fmt.Errorf("scan verse: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate verses: %w", err)
	}

	sort.SliceStable(items, func(i, j int) bool {
		return versekey.CompareRef(
			items[i].ChapterNumber, items[i].VerseNumber,
			items[j].ChapterNumber, items[j].VerseNumber,
		) < 0
	})
	return items, nil
}

func (s *PostgresStore) GetVerse(ctx context.Context, verseID string) (Verse, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+verseColumns+` FROM verses WHERE id=$1`, verseID)
	return scanVerse(row)
}

func (s *PostgresStore) InsertVerse(ctx context.Context, item Verse) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO verses (id, grantha_id, chapter_number, verse_number, verse_text)
		VALUES ($1, $2, $3, $4, $5)
	`, item.ID, item.GranthaID, item.ChapterNumber, item.VerseNumber, item.VerseText)
	if err != nil {
		return fmt.Errorf("insert verse: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpdateVerse(ctx context.Context, item Verse) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE verses
		SET chapter_number=$2, verse_number=$3, verse_text=$4, updated_at=NOW()
		WHERE id=$1
	`, item.ID, item.ChapterNumber, item.VerseNumber, item.VerseText)
	if err != nil {
		return fmt.Errorf("update verse: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update verse rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (s *PostgresStore) DeleteVerse(ctx context.Context, verseID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM verses WHERE id=$1`, verseID)
	if err != nil {
		return fmt.Errorf("delete verse: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeleteVersesByGrantha(ctx context.Context, granthaID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM verses WHERE grantha_id=$1`, granthaID)
	if err != nil {
		return fmt.Errorf("delete verses by grantha: %w", err)
	}
	return nil
}

const commentaryColumns = `id, grantha_id, verse_id, commentary_name, commentator,
	commentary_text, parent_commentary_id, level, created_at, updated_at`

func scanCommentary(row interface{ Scan(...any) error }) (Commentary, error) {
	var item Commentary
	err := row.Scan(&item.ID, &item.GranthaID, &item.VerseID, &item.CommentaryName,
		&item.Commentator, &item.CommentaryText, &item.ParentCommentaryID,
		&item.Level, &item.CreatedAt, &item.UpdatedAt)
	return item, err
}

func (s *PostgresStore) listCommentaries(ctx context.Context, query string, args ...any) ([]Commentary, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list commentaries: %w", err)
	}
	defer rows.Close()

	items := make([]Commentary, 0)
	for rows.Next() {
		item, err := scanCommentary(rows)
		if err != nil {
			return nil, fmt.Errorf("scan commentary: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate commentaries: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) ListCommentariesByVerse(ctx context.Context, verseID string) ([]Commentary, error) {
	return s.listCommentaries(ctx, `
		SELECT `+commentaryColumns+` FROM commentaries
		WHERE verse_id=$1
		ORDER BY created_at ASC
	`, verseID)
}

// ListCommentariesByGrantha returns the flat export ordering: level ascending,
// then creation time.
func (s *PostgresStore) ListCommentariesByGrantha(ctx context.Context, granthaID string) ([]Commentary, error) {
	return s.listCommentaries(ctx, `
		SELECT `+commentaryColumns+` FROM commentaries
		WHERE grantha_id=$1
		ORDER BY level ASC, created_at ASC
	`, granthaID)
}

func (s *PostgresStore) ListChildCommentaries(ctx context.Context, parentID string) ([]Commentary, error) {
	return s.listCommentaries(ctx, `
		SELECT `+commentaryColumns+` FROM commentaries
		WHERE parent_commentary_id=$1
		ORDER BY created_at ASC
	`, parentID)
}

// ListCommentariesByGranthaWithVerse populates each row's owning verse for the
// grantha-wide flat listing.
func (s *PostgresStore) ListCommentariesByGranthaWithVerse(ctx context.Context, granthaID string) ([]CommentaryWithVerse, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.grantha_id, c.verse_id, c.commentary_name, c.commentator,
			c.commentary_text, c.parent_commentary_id, c.level, c.created_at, c.updated_at,
			v.id, v.grantha_id, v.chapter_number, v.verse_number, v.verse_text, v.created_at, v.updated_at
		FROM commentaries c
		JOIN verses v ON v.id = c.verse_id
		WHERE c.grantha_id=$1
		ORDER BY c.level ASC, c.created_at ASC
	`, granthaID)
	if err != nil {
		return nil, fmt.Errorf("list commentaries with verse: %w", err)
	}
	defer rows.Close()

	items := make([]CommentaryWithVerse, 0)
	for rows.Next() {
		var item CommentaryWithVerse
		var verse Verse
		err := rows.Scan(
			&item.ID, &item.GranthaID, &item.VerseID, &item.CommentaryName,
			&item.Commentator, &item.CommentaryText, &item.ParentCommentaryID,
			&item.Level, &item.CreatedAt, &item.UpdatedAt,
			&verse.ID, &verse.GranthaID, &verse.ChapterNumber, &verse.VerseNumber,
			&verse.VerseText, &verse.CreatedAt, &verse.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan commentary with verse: %w", err)
		}
		item.Verse = &verse
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate commentaries with verse: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) GetCommentary(ctx context.Context, commentaryID string) (Commentary, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+commentaryColumns+` FROM commentaries WHERE id=$1`, commentaryID)
	return scanCommentary(row)
}

func (s *PostgresStore) InsertCommentary(ctx context.Context, item Commentary) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO commentaries (
			id, grantha_id, verse_id, commentary_name, commentator,
			commentary_text, parent_commentary_id, level
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, item.ID, item.GranthaID, item.VerseID, item.CommentaryName, item.Commentator,
		item.CommentaryText, item.ParentCommentaryID, item.Level)
	if err != nil {
		return fmt.Errorf("insert commentary: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpdateCommentary(ctx context.Context, item Commentary) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE commentaries
		SET commentary_name=$2, commentator=$3, commentary_text=$4,
			parent_commentary_id=$5, level=$6, updated_at=NOW()
		WHERE id=$1
	`, item.ID, item.CommentaryName, item.Commentator, item.CommentaryText,
		item.ParentCommentaryID, item.Level)
	if err != nil {
		return fmt.Errorf("update commentary: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update commentary rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UpdateCommentaryParent patches only the parent link; used by the second pass
// of an import remap.
func (s *PostgresStore) UpdateCommentaryParent(ctx context.Context, commentaryID string, parentID *string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE commentaries SET parent_commentary_id=$2, updated_at=NOW() WHERE id=$1
	`, commentaryID, parentID)
	if err != nil {
		return fmt.Errorf("update commentary parent: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpdateCommentaryLevel(ctx context.Context, commentaryID string, level int) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE commentaries SET level=$2, updated_at=NOW() WHERE id=$1
	`, commentaryID, level)
	if err != nil {
		return fmt.Errorf("update commentary level: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeleteCommentary(ctx context.Context, commentaryID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM commentaries WHERE id=$1`, commentaryID)
	if err != nil {
		return fmt.Errorf("delete commentary: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeleteCommentariesByVerse(ctx context.Context, verseID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM commentaries WHERE verse_id=$1`, verseID)
	if err != nil {
		return fmt.Errorf("delete commentaries by verse: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeleteCommentariesByGrantha(ctx context.Context, granthaID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM commentaries WHERE grantha_id=$1`, granthaID)
	if err != nil {
		return fmt.Errorf("delete commentaries by grantha: %w", err)
	}
	return nil
}

const suggestionColumns = `id, grantha_id, verse_id, commentary_id, suggestion_type,
	original_text, suggested_text, reason, submitted_by, status, created_at`

func scanSuggestion(row interface{ Scan(...any) error }) (Suggestion, error) {
	var item Suggestion
	err := row.Scan(&item.ID, &item.GranthaID, &item.VerseID, &item.CommentaryID,
		&item.SuggestionType, &item.OriginalText, &item.SuggestedText,
		&item.Reason, &item.SubmittedBy, &item.Status, &item.CreatedAt)
	return item, err
}

func (s *PostgresStore) InsertSuggestion(ctx context.Context, item Suggestion) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO suggestions (
			id, grantha_id, verse_id, commentary_id, suggestion_type,
			original_text, suggested_text, reason, submitted_by, status
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, item.ID, item.GranthaID, item.VerseID, item.CommentaryID, item.SuggestionType,
		item.OriginalText, item.SuggestedText, item.Reason, item.SubmittedBy, item.Status)
	if err != nil {
		return fmt.Errorf("insert suggestion: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetSuggestion(ctx context.Context, suggestionID string) (Suggestion, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+suggestionColumns+` FROM suggestions WHERE id=$1`, suggestionID)
	return scanSuggestion(row)
}

// ListPendingSuggestions returns the moderation queue, newest first, with the
// referenced grantha and verse populated when they still exist.
func (s *PostgresStore) ListPendingSuggestions(ctx context.Context) ([]SuggestionWithRefs, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+suggestionColumns+` FROM suggestions
		WHERE status='pending'
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list pending suggestions: %w", err)
	}
	defer rows.Close()

	items := make([]SuggestionWithRefs, 0)
	for rows.Next() {
		item, err := scanSuggestion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan suggestion: %w", err)
		}
		items = append(items, SuggestionWithRefs{Suggestion: item})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate suggestions: %w", err)
	}

	for i := range items {
		if grantha, err := s.GetGrantha(ctx, items[i].GranthaID); err == nil {
			items[i].Grantha = &grantha
		}
		if items[i].VerseID != "" {
			if verse, err := s.GetVerse(ctx, items[i].VerseID); err == nil {
				items[i].Verse = &verse
			}
		}
		if items[i].CommentaryID != "" {
			if commentary, err := s.GetCommentary(ctx, items[i].CommentaryID); err == nil {
				items[i].Commentary = &commentary
			}
		}
	}
	return items, nil
}

// UpdateSuggestionStatus transitions a pending suggestion and reports whether
// a row changed. pending is the only non-terminal state.
func (s *PostgresStore) UpdateSuggestionStatus(ctx context.Context, suggestionID, status string) (bool, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE suggestions SET status=$2 WHERE id=$1 AND status='pending'
	`, suggestionID, status)
	if err != nil {
		return false, fmt.Errorf("update suggestion status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update suggestion rows: %w", err)
	}
	return affected > 0, nil
}

func (s *PostgresStore) GetAdminByUsername(ctx context.Context, username string) (Admin, error) {
	var item Admin
	err := s.db.QueryRowContext(ctx, `
		SELECT id, username, password_hash, created_at FROM admins WHERE username=$1
	`, username).Scan(&item.ID, &item.Username, &item.PasswordHash, &item.CreatedAt)
	return item, err
}

func (s *PostgresStore) GetAdminByID(ctx context.Context, adminID string) (Admin, error) {
	var item Admin
	err := s.db.QueryRowContext(ctx, `
		SELECT id, username, password_hash, created_at FROM admins WHERE id=$1
	`, adminID).Scan(&item.ID, &item.Username, &item.PasswordHash, &item.CreatedAt)
	return item, err
}

func (s *PostgresStore) InsertAdmin(ctx context.Context, item Admin) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO admins (id, username, password_hash)
		VALUES ($1, $2, $3)
		ON CONFLICT (username) DO NOTHING
	`, item.ID, item.Username, item.PasswordHash)
	if err != nil {
		return fmt.Errorf("insert admin: %w", err)
	}
	return nil
}

func (s *PostgresStore) SaveRefreshSession(ctx context.Context, tokenHash, adminID string, expiresAt time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO refresh_sessions (token_hash, admin_id, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (token_hash) DO UPDATE SET admin_id=EXCLUDED.admin_id, expires_at=EXCLUDED.expires_at, revoked_at=NULL
	`, tokenHash, adminID, expiresAt)
	if err != nil {
		return fmt.Errorf("save refresh session: %w", err)
	}
	return nil
}

func (s *PostgresStore) LookupRefreshSession(ctx context.Context, tokenHash string) (Admin, error) {
	var item Admin
	err := s.db.QueryRowContext(ctx, `
		SELECT a.id, a.username, a.password_hash, a.created_at
		FROM refresh_sessions rs
		JOIN admins a ON a.id = rs.admin_id
		WHERE rs.token_hash = $1
			AND rs.revoked_at IS NULL
			AND rs.expires_at > NOW()
	`, tokenHash).Scan(&item.ID, &item.Username, &item.PasswordHash, &item.CreatedAt)
	if err != nil {
		return Admin{}, err
	}
	return item, nil
}

func (s *PostgresStore) RevokeRefreshSession(ctx context.Context, tokenHash string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE refresh_sessions SET revoked_at=NOW() WHERE token_hash=$1`, tokenHash)
	if err != nil {
		return fmt.Errorf("revoke refresh session: %w", err)
	}
	return nil
}
