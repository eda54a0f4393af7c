package search

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync/atomic"
	"time"

	meili "github.com/meilisearch/meilisearch-go"
)

const (
	idxGranthas     = "granthalaya_granthas"
	idxVerses       = "granthalaya_verses"
	idxCommentaries = "granthalaya_commentaries"
)

// Meili implements Searcher and Indexer via Meilisearch.
type Meili struct {
	client  meili.ServiceManager
	healthy atomic.Bool
	done    chan struct{}
}

// NewMeili creates a Meilisearch client and configures indexes.
// Returns a client that reports unhealthy if the initial connection fails;
// the health loop keeps retrying in the background.
func NewMeili(url, apiKey string) *Meili {
	client := meili.New(url, meili.WithAPIKey(apiKey))

	m := &Meili{
		client: client,
		done:   make(chan struct{}),
	}

	// Initial health check
	if _, err := client.Health(); err != nil {
		log.Printf("search: meilisearch unavailable at %s: %v", url, err)
		m.healthy.Store(false)
	} else {
		m.healthy.Store(true)
		m.configureIndexes()
	}

	go m.healthLoop()
	return m
}

type indexConfig struct {
	uid        string
	primaryKey string
	filterable []string
	searchable []string
	// Meili filter applied to every public query against this index.
	publishedFilter string
}

var searchIndexes = []indexConfig{
	{
		uid:             idxGranthas,
		primaryKey:      "id",
		filterable:      []string{"status", "author"},
		searchable:      []string{"title", "titleEnglish", "author", "authorEnglish", "description"},
		publishedFilter: `status = "published"`,
	},
	{
		uid:             idxVerses,
		primaryKey:      "id",
		filterable:      []string{"granthaId", "granthaStatus", "chapterNumber"},
		searchable:      []string{"verseText", "granthaTitle"},
		publishedFilter: `granthaStatus = "published"`,
	},
	{
		uid:             idxCommentaries,
		primaryKey:      "id",
		filterable:      []string{"granthaId", "granthaStatus", "verseId", "commentaryName"},
		searchable:      []string{"commentaryText", "commentaryName", "commentator"},
		publishedFilter: `granthaStatus = "published"`,
	},
}

func (m *Meili) configureIndexes() {
	for _, idx := range searchIndexes {
		if _, err := m.client.CreateIndex(&meili.IndexConfig{
			Uid:        idx.uid,
			PrimaryKey: idx.primaryKey,
		}); err != nil {
			log.Printf("search: create index %s (may already exist): %v", idx.uid, err)
		}

		index := m.client.Index(idx.uid)
		filterableInterface := make([]interface{}, len(idx.filterable))
		for i, v := range idx.filterable {
			filterableInterface[i] = v
		}
		if _, err := index.UpdateFilterableAttributes(&filterableInterface); err != nil {
			log.Printf("search: update filterable attrs for %s: %v", idx.uid, err)
		}
		if _, err := index.UpdateSearchableAttributes(&idx.searchable); err != nil {
			log.Printf("search: update searchable attrs for %s: %v", idx.uid, err)
		}
	}
}

func (m *Meili) healthLoop() {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			_, err := m.client.Health()
			wasHealthy := m.healthy.Load()
			m.healthy.Store(err == nil)
			if err == nil && !wasHealthy {
				log.Println("search: meilisearch recovered, reconfiguring indexes")
				m.configureIndexes()
			}
		}
	}
}

// Close stops the background health monitor.
func (m *Meili) Close() {
	close(m.done)
}

// Healthy reports whether Meilisearch is reachable.
func (m *Meili) Healthy() bool {
	return m.healthy.Load()
}

// Search queries all three indexes (or a filtered subset) and merges results.
// Each index contributes at most perTypeLimit hits.
func (m *Meili) Search(q Query) ([]Result, error) {
	if !m.healthy.Load() {
		return nil, fmt.Errorf("meilisearch unhealthy")
	}

	var queries []*meili.SearchRequest
	for _, idx := range searchIndexes {
		if q.FilterType != "" && q.FilterType != indexToResultType(idx.uid) {
			continue
		}
		queries = append(queries, &meili.SearchRequest{
			IndexUID: idx.uid,
			Query:    q.Text,
			Limit:    perTypeLimit,
			Filter:   []string{idx.publishedFilter},
		})
	}

	if len(queries) == 0 {
		return nil, nil
	}

	resp, err := m.client.MultiSearch(&meili.MultiSearchRequest{
		Queries: queries,
	})
	if err != nil {
		m.healthy.Store(false)
		return nil, fmt.Errorf("meilisearch multi-search: %w", err)
	}

	results := make([]Result, 0)
	for _, sr := range resp.Results {
		rtyp := indexToResultType(sr.IndexUID)
		for _, hit := range sr.Hits {
			results = append(results, hitToResult(hit, rtyp, q.Text))
		}
	}

	return results, nil
}

func indexToResultType(uid string) ResultType {
	switch uid {
	case idxGranthas:
		return ResultGrantha
	case idxVerses:
		return ResultVerse
	case idxCommentaries:
		return ResultCommentary
	default:
		return ""
	}
}

func hitToResult(hit meili.Hit, rtyp ResultType, queryText string) Result {
	r := Result{Type: rtyp}
	r.ID = decodeString(hit, "id")
	r.GranthaID = decodeString(hit, "granthaId")

	switch rtyp {
	case ResultGrantha:
		r.GranthaID = r.ID // grantha's own ID
		r.Title = decodeString(hit, "title")
		r.Subtitle = decodeString(hit, "author")
		r.Content = snippet(decodeString(hit, "description"), queryText)
	case ResultVerse:
		r.Title = decodeString(hit, "granthaTitle")
		r.Subtitle = decodeString(hit, "chapterNumber") + "." + decodeString(hit, "verseNumber")
		r.Content = snippet(decodeString(hit, "verseText"), queryText)
	case ResultCommentary:
		r.Title = decodeString(hit, "commentaryName")
		r.Subtitle = decodeString(hit, "commentator")
		r.Content = snippet(decodeString(hit, "commentaryText"), queryText)
	}
	return r
}

func decodeString(hit meili.Hit, key string) string {
	raw, ok := hit[key]
	if !ok {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	return ""
}

// IndexGrantha adds or updates a grantha in the search index.
func (m *Meili) IndexGrantha(g GranthaRecord) error {
	_, err := m.client.Index(idxGranthas).AddDocuments([]GranthaRecord{g}, nil)
	return err
}

// IndexVerse adds or updates a verse in the search index.
func (m *Meili) IndexVerse(v VerseRecord) error {
	_, err := m.client.Index(idxVerses).AddDocuments([]VerseRecord{v}, nil)
	return err
}

// IndexCommentary adds or updates a commentary in the search index.
func (m *Meili) IndexCommentary(c CommentaryRecord) error {
	_, err := m.client.Index(idxCommentaries).AddDocuments([]CommentaryRecord{c}, nil)
	return err
}

// DeleteGrantha removes a grantha from the search index.
func (m *Meili) DeleteGrantha(id string) error {
	_, err := m.client.Index(idxGranthas).DeleteDocument(id, nil)
	return err
}

// DeleteVerse removes a verse from the search index.
func (m *Meili) DeleteVerse(id string) error {
	_, err := m.client.Index(idxVerses).DeleteDocument(id, nil)
	return err
}

// DeleteCommentary removes a commentary from the search index.
func (m *Meili) DeleteCommentary(id string) error {
	_, err := m.client.Index(idxCommentaries).DeleteDocument(id, nil)
	return err
}

// IndexGranthas bulk-indexes granthas.
func (m *Meili) IndexGranthas(granthas []GranthaRecord) error {
	if len(granthas) == 0 {
		return nil
	}
	_, err := m.client.Index(idxGranthas).AddDocuments(granthas, nil)
	return err
}

// IndexVerses bulk-indexes verses.
func (m *Meili) IndexVerses(verses []VerseRecord) error {
	if len(verses) == 0 {
		return nil
	}
	_, err := m.client.Index(idxVerses).AddDocuments(verses, nil)
	return err
}

// IndexCommentaries bulk-indexes commentaries.
func (m *Meili) IndexCommentaries(commentaries []CommentaryRecord) error {
	if len(commentaries) == 0 {
		return nil
	}
	_, err := m.client.Index(idxCommentaries).AddDocuments(commentaries, nil)
	return err
}
