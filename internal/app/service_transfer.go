package app

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"strings"

	"granthalaya/api/internal/export"
	"granthalaya/api/internal/snapshot"
	"granthalaya/api/internal/store"
	"granthalaya/api/internal/util"
)

// Export assembles the portable representation of a grantha. format defaults
// to JSON; "pdf" renders the printable view through headless Chrome. Every
// export records a snapshot commit.
func (s *Service) Export(ctx context.Context, granthaID string, format export.Format) (*export.Result, error) {
	g, err := s.store.GetGrantha(ctx, granthaID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("grantha")
	}
	if err != nil {
		return nil, err
	}

	verses, err := s.store.ListVersesByGrantha(ctx, granthaID)
	if err != nil {
		return nil, err
	}
	commentaries, err := s.store.ListCommentariesByGrantha(ctx, granthaID)
	if err != nil {
		return nil, err
	}

	snap := export.BuildSnapshot(g, verses, commentaries)
	jsonResult, err := export.JSON(snap)
	if err != nil {
		return nil, err
	}
	s.recordSnapshot(granthaID, jsonResult.Data, "Export snapshot")

	switch format {
	case "", export.FormatJSON:
		return jsonResult, nil
	case export.FormatPDF:
		return export.PDF(g, verses, commentaries)
	default:
		return nil, validationError("unsupported export format", map[string]any{"format": string(format)})
	}
}

func (s *Service) recordSnapshot(granthaID string, payload []byte, message string) {
	if s.snapshots == nil {
		return
	}
	if _, err := s.snapshots.Record(granthaID, payload, message); err != nil {
		log.Printf("snapshot: record %s: %v", granthaID, err)
	}
}

// SnapshotHistory lists snapshot commits for a grantha, newest first.
func (s *Service) SnapshotHistory(ctx context.Context, granthaID string) ([]snapshot.CommitInfo, error) {
	if _, err := s.store.GetGrantha(ctx, granthaID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("grantha")
		}
		return nil, err
	}
	if s.snapshots == nil {
		return []snapshot.CommitInfo{}, nil
	}
	history, err := s.snapshots.History(granthaID, 50)
	if err != nil {
		return nil, err
	}
	return history, nil
}

// SnapshotAt returns the snapshot payload recorded at a specific commit.
func (s *Service) SnapshotAt(ctx context.Context, granthaID, hash string) ([]byte, error) {
	if _, err := s.store.GetGrantha(ctx, granthaID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("grantha")
		}
		return nil, err
	}
	if s.snapshots == nil {
		return nil, notFound("snapshot")
	}
	payload, err := s.snapshots.GetByHash(granthaID, hash)
	if err != nil {
		return nil, notFound("snapshot")
	}
	return payload, nil
}

type ImportSummary struct {
	GranthaID            string `json:"granthaId"`
	Title                string `json:"title"`
	VersesImported       int    `json:"versesImported"`
	CommentariesImported int    `json:"commentariesImported"`
}

// importPayload tolerates both export shapes: flat top-level commentaries
// keyed by old verse id, and commentaries embedded on each verse.
type importPayload struct {
	Grantha      *export.GranthaDoc     `json:"grantha"`
	Verses       *[]export.VerseDoc     `json:"verses"`
	Commentaries []export.CommentaryDoc `json:"commentaries"`
}

// Import creates a new grantha from an uploaded export file. All identifiers
// in the file are foreign and get remapped; parent commentary links survive
// through a two-pass rebuild.
func (s *Service) Import(ctx context.Context, payload []byte, filename string) (ImportSummary, error) {
	var doc importPayload
	if err := json.Unmarshal(payload, &doc); err != nil {
		return ImportSummary{}, validationError("invalid JSON payload", nil)
	}
	if doc.Grantha == nil || doc.Verses == nil {
		return ImportSummary{}, validationError("payload must contain grantha and verses", nil)
	}

	title := strings.TrimSpace(doc.Grantha.Title)
	if title == "" {
		return ImportSummary{}, validationError("grantha title is required", nil)
	}

	existing, err := s.store.FindGranthaByTitleAuthor(ctx, title, doc.Grantha.Author)
	if err != nil {
		return ImportSummary{}, err
	}
	if existing != nil {
		return ImportSummary{}, validationError("grantha with this title and author already exists", map[string]any{"granthaId": existing.ID})
	}

	defs := make([]store.CommentaryDefinition, 0, len(doc.Grantha.AvailableCommentaries))
	for i, d := range doc.Grantha.AvailableCommentaries {
		order := d.Order
		if order == 0 {
			order = i + 1
		}
		defs = append(defs, store.CommentaryDefinition{
			ID:     util.NewID("cd"),
			Name:   d.Name,
			Author: d.Author,
			Order:  order,
		})
	}

	g := store.Grantha{
		ID:                    util.NewID("gr"),
		Title:                 title,
		TitleEnglish:          doc.Grantha.TitleEnglish,
		Author:                doc.Grantha.Author,
		AuthorEnglish:         doc.Grantha.AuthorEnglish,
		Description:           doc.Grantha.Description,
		Language:              doc.Grantha.Language,
		Category:              doc.Grantha.Category,
		Status:                doc.Grantha.Status,
		ChapterLabel:          doc.Grantha.ChapterLabel,
		VerseLabel:            doc.Grantha.VerseLabel,
		ChapterLabelEnglish:   doc.Grantha.ChapterLabelEnglish,
		VerseLabelEnglish:     doc.Grantha.VerseLabelEnglish,
		AvailableCommentaries: defs,
	}
	if derr := s.applyGranthaDefaults(&g); derr != nil {
		return ImportSummary{}, derr
	}
	if err := s.store.InsertGrantha(ctx, g); err != nil {
		return ImportSummary{}, err
	}

	// Pass over verses first, keeping the old-id map for commentary rebinding.
	verseIDs := make(map[string]string, len(*doc.Verses))
	newVerseIDs := make([]string, 0, len(*doc.Verses))
	for _, v := range *doc.Verses {
		item := store.Verse{
			ID:            util.NewID("vs"),
			GranthaID:     g.ID,
			ChapterNumber: strings.TrimSpace(v.ChapterNumber),
			VerseNumber:   strings.TrimSpace(v.VerseNumber),
			VerseText:     v.VerseText,
		}
		if item.ChapterNumber == "" || item.VerseNumber == "" {
			return ImportSummary{}, validationError("every verse needs chapterNumber and verseNumber", map[string]any{"verseId": v.ID})
		}
		if err := s.store.InsertVerse(ctx, item); err != nil {
			return ImportSummary{}, err
		}
		if v.ID != "" {
			verseIDs[v.ID] = item.ID
		}
		newVerseIDs = append(newVerseIDs, item.ID)
		s.indexVerse(g, item)
	}

	flat := make([]remapCommentary, 0, len(doc.Commentaries))
	appendDoc := func(c export.CommentaryDoc, verseID string) {
		flat = append(flat, remapCommentary{
			OldID:       c.ID,
			VerseID:     verseID,
			Name:        c.CommentaryName,
			Commentator: c.Commentator,
			Text:        c.CommentaryText,
			OldParentID: c.ParentCommentaryID,
		})
	}
	for _, c := range doc.Commentaries {
		newVerseID, ok := verseIDs[c.VerseID]
		if !ok {
			// A commentary pointing at a verse the file never declared
			// has nowhere to live.
			log.Printf("import: dropping commentary %s with unknown verse %s", c.ID, c.VerseID)
			continue
		}
		appendDoc(c, newVerseID)
	}
	for i, v := range *doc.Verses {
		for _, c := range v.Commentaries {
			appendDoc(c, newVerseIDs[i])
		}
	}

	imported, err := s.remapCommentaries(ctx, g, flat)
	if err != nil {
		return ImportSummary{}, err
	}

	if s.uploads != nil {
		s.uploads.ArchiveAsync(util.NewID("imp"), filename, payload)
	}
	s.indexGrantha(g)

	if refreshed, err := s.store.GetGrantha(ctx, g.ID); err == nil {
		g = refreshed
	}
	verses, _ := s.store.ListVersesByGrantha(ctx, g.ID)
	commentaries, _ := s.store.ListCommentariesByGrantha(ctx, g.ID)
	if data, err := export.JSON(export.BuildSnapshot(g, verses, commentaries)); err == nil {
		s.recordSnapshot(g.ID, data.Data, "Import snapshot")
	}

	return ImportSummary{
		GranthaID:            g.ID,
		Title:                g.Title,
		VersesImported:       len(*doc.Verses),
		CommentariesImported: imported,
	}, nil
}

// remapCommentary is one incoming commentary whose identifiers are foreign.
type remapCommentary struct {
	OldID       string
	VerseID     string // already remapped to the stored verse
	Name        string
	Commentator string
	Text        string
	OldParentID *string
}

// remapCommentaries inserts incoming commentaries in two passes. Pass one
// stores every record with a nil parent, building the old→new id map, so a
// parent declared after its child still resolves. Pass two patches parent
// links through the map; an old parent id that never resolves degrades to a
// root node.
func (s *Service) remapCommentaries(ctx context.Context, g store.Grantha, items []remapCommentary) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}

	levels := remapLevels(items)

	newIDs := make(map[string]string, len(items))
	inserted := make([]store.Commentary, 0, len(items))
	for i, item := range items {
		record := store.Commentary{
			ID:             util.NewID("cm"),
			GranthaID:      g.ID,
			VerseID:        item.VerseID,
			CommentaryName: item.Name,
			Commentator:    item.Commentator,
			CommentaryText: item.Text,
			Level:          levels[i],
		}
		if err := s.store.InsertCommentary(ctx, record); err != nil {
			return 0, err
		}
		if item.OldID != "" {
			newIDs[item.OldID] = record.ID
		}
		inserted = append(inserted, record)
	}

	for i, item := range items {
		if item.OldParentID == nil || *item.OldParentID == "" {
			continue
		}
		newParent, ok := newIDs[*item.OldParentID]
		if !ok {
			continue
		}
		if err := s.store.UpdateCommentaryParent(ctx, inserted[i].ID, &newParent); err != nil {
			return 0, err
		}
		inserted[i].ParentCommentaryID = &newParent
	}

	for _, record := range inserted {
		s.indexCommentary(g, record)
	}
	return len(inserted), nil
}

// remapLevels derives each incoming commentary's depth from parent links that
// resolve within the set. Unresolvable parents and cycles pin a node to
// level 0.
func remapLevels(items []remapCommentary) []int {
	byOldID := make(map[string]int, len(items))
	for i, item := range items {
		if item.OldID != "" {
			byOldID[item.OldID] = i
		}
	}

	levels := make([]int, len(items))
	state := make([]int, len(items)) // 0 unvisited, 1 visiting, 2 done

	var depth func(i int) int
	depth = func(i int) int {
		if state[i] == 2 {
			return levels[i]
		}
		if state[i] == 1 {
			// Cycle in the incoming data, break it at this node.
			return -1
		}
		state[i] = 1
		level := 0
		item := items[i]
		if item.OldParentID != nil && *item.OldParentID != "" {
			if pi, ok := byOldID[*item.OldParentID]; ok {
				level = depth(pi) + 1
			}
		}
		state[i] = 2
		levels[i] = level
		return level
	}
	for i := range items {
		depth(i)
	}
	return levels
}
