package search

import (
	"context"
	"log"
)

// Service is the facade that tries Meilisearch first and falls back to
// PostgreSQL substring matching.
type Service struct {
	meili *Meili
	pgsub *PgSub
}

// NewService creates a search service. meili may be nil if Meilisearch is not configured.
func NewService(meili *Meili, pgsub *PgSub) *Service {
	return &Service{meili: meili, pgsub: pgsub}
}

// Search tries Meilisearch if healthy, otherwise falls back to Postgres.
func (s *Service) Search(q Query) Response {
	if s.meili != nil && s.meili.Healthy() {
		results, err := s.meili.Search(q)
		if err == nil {
			return Response{Results: nonNil(results), Query: q.Text}
		}
		log.Printf("search: meilisearch error, falling back to postgres: %v", err)
	}

	results, err := s.pgsub.Search(q)
	if err != nil {
		log.Printf("search: postgres error: %v", err)
		return Response{Results: []Result{}, Query: q.Text}
	}
	return Response{Results: nonNil(results), Query: q.Text}
}

// IndexGrantha indexes a grantha (fire-and-forget to Meilisearch).
func (s *Service) IndexGrantha(g GranthaRecord) {
	if s.meili == nil || !s.meili.Healthy() {
		return
	}
	go func() {
		if err := s.meili.IndexGrantha(g); err != nil {
			log.Printf("search: index grantha %s: %v", g.ID, err)
		}
	}()
}

// IndexVerse indexes a verse (fire-and-forget to Meilisearch).
func (s *Service) IndexVerse(v VerseRecord) {
	if s.meili == nil || !s.meili.Healthy() {
		return
	}
	go func() {
		if err := s.meili.IndexVerse(v); err != nil {
			log.Printf("search: index verse %s: %v", v.ID, err)
		}
	}()
}

// IndexCommentary indexes a commentary (fire-and-forget to Meilisearch).
func (s *Service) IndexCommentary(c CommentaryRecord) {
	if s.meili == nil || !s.meili.Healthy() {
		return
	}
	go func() {
		if err := s.meili.IndexCommentary(c); err != nil {
			log.Printf("search: index commentary %s: %v", c.ID, err)
		}
	}()
}

// DeleteGrantha removes a grantha from the search index (fire-and-forget).
func (s *Service) DeleteGrantha(id string) {
	if s.meili == nil || !s.meili.Healthy() {
		return
	}
	go func() {
		if err := s.meili.DeleteGrantha(id); err != nil {
			log.Printf("search: delete grantha %s: %v", id, err)
		}
	}()
}

// DeleteVerse removes a verse from the search index (fire-and-forget).
func (s *Service) DeleteVerse(id string) {
	if s.meili == nil || !s.meili.Healthy() {
		return
	}
	go func() {
		if err := s.meili.DeleteVerse(id); err != nil {
			log.Printf("search: delete verse %s: %v", id, err)
		}
	}()
}

// DeleteCommentary removes a commentary from the search index (fire-and-forget).
func (s *Service) DeleteCommentary(id string) {
	if s.meili == nil || !s.meili.Healthy() {
		return
	}
	go func() {
		if err := s.meili.DeleteCommentary(id); err != nil {
			log.Printf("search: delete commentary %s: %v", id, err)
		}
	}()
}

// ReindexAll pushes the given records to Meilisearch in bulk.
func (s *Service) ReindexAll(granthas []GranthaRecord, verses []VerseRecord, commentaries []CommentaryRecord) {
	if s.meili == nil || !s.meili.Healthy() {
		return
	}

	if len(granthas) > 0 {
		if err := s.meili.IndexGranthas(granthas); err != nil {
			log.Printf("search: reindex granthas: %v", err)
		}
	}
	if len(verses) > 0 {
		if err := s.meili.IndexVerses(verses); err != nil {
			log.Printf("search: reindex verses: %v", err)
		}
	}
	if len(commentaries) > 0 {
		if err := s.meili.IndexCommentaries(commentaries); err != nil {
			log.Printf("search: reindex commentaries: %v", err)
		}
	}
}

// ReindexAllFromPG reindexes all searchable entities from PostgreSQL into Meilisearch.
func (s *Service) ReindexAllFromPG(ctx context.Context) {
	if s.meili == nil || !s.meili.Healthy() || s.pgsub == nil {
		return
	}
	granthas, verses, commentaries, err := s.pgsub.LoadAllRecords(ctx)
	if err != nil {
		log.Printf("search: reindex load failed: %v", err)
		return
	}
	s.ReindexAll(granthas, verses, commentaries)
}

func nonNil(r []Result) []Result {
	if r == nil {
		return []Result{}
	}
	return r
}
