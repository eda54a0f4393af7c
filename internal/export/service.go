package export

import (
	"encoding/json"
	"fmt"
	"time"

	"granthalaya/api/internal/commentary"
	"granthalaya/api/internal/store"
)

// BuildSnapshot assembles the export wire format from stored records.
// Verses must already be in canonical chapter/verse order.
func BuildSnapshot(g store.Grantha, verses []store.Verse, commentaries []store.Commentary) Snapshot {
	defs := make([]CommentaryDefinitionDoc, 0, len(g.AvailableCommentaries))
	for _, d := range g.AvailableCommentaries {
		defs = append(defs, CommentaryDefinitionDoc{
			ID:     d.ID,
			Name:   d.Name,
			Author: d.Author,
			Order:  d.Order,
		})
	}

	verseDocs := make([]VerseDoc, 0, len(verses))
	chapters := make(map[string]struct{})
	for _, v := range verses {
		chapters[v.ChapterNumber] = struct{}{}
		verseDocs = append(verseDocs, VerseDoc{
			ID:            v.ID,
			ChapterNumber: v.ChapterNumber,
			VerseNumber:   v.VerseNumber,
			VerseText:     v.VerseText,
		})
	}

	commentaryDocs := make([]CommentaryDoc, 0, len(commentaries))
	for _, c := range commentaries {
		commentaryDocs = append(commentaryDocs, CommentaryDoc{
			ID:                 c.ID,
			VerseID:            c.VerseID,
			CommentaryName:     c.CommentaryName,
			Commentator:        c.Commentator,
			CommentaryText:     c.CommentaryText,
			Level:              c.Level,
			ParentCommentaryID: c.ParentCommentaryID,
		})
	}

	return Snapshot{
		ExportVersion: SnapshotVersion,
		ExportDate:    time.Now().UTC().Format(time.RFC3339),
		Grantha: GranthaDoc{
			ID:                    g.ID,
			Title:                 g.Title,
			TitleEnglish:          g.TitleEnglish,
			Author:                g.Author,
			AuthorEnglish:         g.AuthorEnglish,
			Description:           g.Description,
			Language:              g.Language,
			Category:              g.Category,
			Status:                g.Status,
			ChapterLabel:          g.ChapterLabel,
			VerseLabel:            g.VerseLabel,
			ChapterLabelEnglish:   g.ChapterLabelEnglish,
			VerseLabelEnglish:     g.VerseLabelEnglish,
			AvailableCommentaries: defs,
		},
		Verses:       verseDocs,
		Commentaries: commentaryDocs,
		Statistics: Statistics{
			TotalVerses:       len(verses),
			TotalCommentaries: len(commentaries),
			Chapters:          len(chapters),
		},
	}
}

// JSON serializes a snapshot as a downloadable attachment.
func JSON(snap Snapshot) (*Result, error) {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	return &Result{
		Data:     data,
		Filename: filenameStem(snap.Grantha.TitleEnglish, snap.Grantha.Title) + ".json",
		MimeType: "application/json",
	}, nil
}

// filenameStem prefers the English title, since sanitizeFilename drops
// Devanagari characters entirely.
func filenameStem(english, title string) string {
	if english != "" {
		return sanitizeFilename(english)
	}
	return sanitizeFilename(title)
}

// PDF renders a snapshot as a printable PDF via headless Chrome.
func PDF(g store.Grantha, verses []store.Verse, commentaries []store.Commentary) (*Result, error) {
	byVerse := make(map[string][]store.Commentary)
	for _, c := range commentaries {
		byVerse[c.VerseID] = append(byVerse[c.VerseID], c)
	}

	orderOf := commentary.OrderFor(g.AvailableCommentaries)

	data := templateData{
		Title:        g.Title,
		Author:       g.Author,
		Description:  g.Description,
		ChapterLabel: g.ChapterLabel,
		VerseLabel:   g.VerseLabel,
		GeneratedAt:  time.Now(),
	}

	var currentChapter string
	for _, v := range verses {
		if v.ChapterNumber != currentChapter {
			currentChapter = v.ChapterNumber
			data.Chapters = append(data.Chapters, templateChapter{Number: currentChapter})
		}
		ch := &data.Chapters[len(data.Chapters)-1]

		nodes := make([]store.Commentary, len(byVerse[v.ID]))
		copy(nodes, byVerse[v.ID])
		forest := commentary.BuildForest(nodes, orderOf)

		ch.Verses = append(ch.Verses, templateVerse{
			Number:       v.VerseNumber,
			Text:         v.VerseText,
			Commentaries: forestToTemplate(forest),
		})
	}

	html, err := renderGranthaHTML(data)
	if err != nil {
		return nil, fmt.Errorf("render template: %w", err)
	}

	return exportPDF(html, filenameStem(g.TitleEnglish, g.Title))
}

func forestToTemplate(forest []*commentary.Node) []templateCommentary {
	out := make([]templateCommentary, 0, len(forest))
	for _, n := range forest {
		out = append(out, templateCommentary{
			Name:        n.CommentaryName,
			Commentator: n.Commentator,
			Text:        n.CommentaryText,
			Children:    forestToTemplate(n.SubCommentaries),
		})
	}
	return out
}
