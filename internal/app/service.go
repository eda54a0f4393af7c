package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"granthalaya/api/internal/adminauth"
	"granthalaya/api/internal/auth"
	"granthalaya/api/internal/commentary"
	"granthalaya/api/internal/config"
	"granthalaya/api/internal/email"
	"granthalaya/api/internal/search"
	"granthalaya/api/internal/session"
	"granthalaya/api/internal/snapshot"
	"granthalaya/api/internal/store"
	"granthalaya/api/internal/upload"
	"granthalaya/api/internal/util"
)

type Session struct {
	Token        string
	RefreshToken string
	AdminID      string
	Username     string
	JTI          string
	ExpiresAt    time.Time
}

var allowedCategories = map[string]struct{}{
	"Veda":          {},
	"Upanishad":     {},
	"Purana":        {},
	"Philosophical": {},
	"Stotra":        {},
	"Other":         {},
}

var allowedStatuses = map[string]struct{}{
	"draft":     {},
	"published": {},
}

var allowedSuggestionTypes = map[string]struct{}{
	"moolam":     {},
	"commentary": {},
}

type dataStore interface {
	ListPublishedGranthas(ctx context.Context, limit, offset int) ([]store.Grantha, int, error)
	ListAllGranthas(ctx context.Context) ([]store.Grantha, error)
	GetGrantha(ctx context.Context, granthaID string) (store.Grantha, error)
	FindGranthaByTitleAuthor(ctx context.Context, title, author string) (*store.Grantha, error)
	InsertGrantha(ctx context.Context, item store.Grantha) error
	UpdateGrantha(ctx context.Context, item store.Grantha) error
	DeleteGrantha(ctx context.Context, granthaID string) error
	RenameCommentaryName(ctx context.Context, granthaID, oldName, newName string) (int64, error)

	ListVersesByGrantha(ctx context.Context, granthaID string) ([]store.Verse, error)
	GetVerse(ctx context.Context, verseID string) (store.Verse, error)
	InsertVerse(ctx context.Context, item store.Verse) error
	UpdateVerse(ctx context.Context, item store.Verse) error
	DeleteVerse(ctx context.Context, verseID string) error
	DeleteVersesByGrantha(ctx context.Context, granthaID string) error

	ListCommentariesByVerse(ctx context.Context, verseID string) ([]store.Commentary, error)
	ListCommentariesByGrantha(ctx context.Context, granthaID string) ([]store.Commentary, error)
	ListChildCommentaries(ctx context.Context, parentID string) ([]store.Commentary, error)
	ListCommentariesByGranthaWithVerse(ctx context.Context, granthaID string) ([]store.CommentaryWithVerse, error)
	GetCommentary(ctx context.Context, commentaryID string) (store.Commentary, error)
	InsertCommentary(ctx context.Context, item store.Commentary) error
	UpdateCommentary(ctx context.Context, item store.Commentary) error
	UpdateCommentaryParent(ctx context.Context, commentaryID string, parentID *string) error
	UpdateCommentaryLevel(ctx context.Context, commentaryID string, level int) error
	DeleteCommentary(ctx context.Context, commentaryID string) error
	DeleteCommentariesByVerse(ctx context.Context, verseID string) error
	DeleteCommentariesByGrantha(ctx context.Context, granthaID string) error

	InsertSuggestion(ctx context.Context, item store.Suggestion) error
	GetSuggestion(ctx context.Context, suggestionID string) (store.Suggestion, error)
	ListPendingSuggestions(ctx context.Context) ([]store.SuggestionWithRefs, error)
	UpdateSuggestionStatus(ctx context.Context, suggestionID, status string) (bool, error)

	GetAdminByUsername(ctx context.Context, username string) (store.Admin, error)
	GetAdminByID(ctx context.Context, adminID string) (store.Admin, error)
	InsertAdmin(ctx context.Context, item store.Admin) error

	SaveRefreshSession(ctx context.Context, tokenHash, adminID string, expiresAt time.Time) error
	LookupRefreshSession(ctx context.Context, tokenHash string) (store.Admin, error)
	RevokeRefreshSession(ctx context.Context, tokenHash string) error

	Ping(ctx context.Context) error
}

type sessionStore interface {
	SaveRefreshSession(ctx context.Context, tokenHash, adminID, username string, expiresAt time.Time) error
	LookupRefreshSession(ctx context.Context, tokenHash string) (session.TokenData, error)
	RevokeRefreshSession(ctx context.Context, tokenHash string) error
}

type searchService interface {
	Search(q search.Query) search.Response
	IndexGrantha(g search.GranthaRecord)
	IndexVerse(v search.VerseRecord)
	IndexCommentary(c search.CommentaryRecord)
	DeleteGrantha(id string)
	DeleteVerse(id string)
	DeleteCommentary(id string)
	ReindexAllFromPG(ctx context.Context)
}

type snapshotService interface {
	Record(granthaID string, payload []byte, message string) (snapshot.CommitInfo, error)
	History(granthaID string, limit int) ([]snapshot.CommitInfo, error)
	GetByHash(granthaID, hash string) ([]byte, error)
	Remove(granthaID string) error
}

type uploadService interface {
	ArchiveAsync(importID, filename string, data []byte)
}

type mailService interface {
	IsConfigured() bool
	SendSuggestionNotification(to string, data email.SuggestionData) error
}

// pgSessions adapts the Postgres refresh-session tables to the sessionStore
// interface used when Redis is not configured.
type pgSessions struct {
	store dataStore
}

func (p pgSessions) SaveRefreshSession(ctx context.Context, tokenHash, adminID, username string, expiresAt time.Time) error {
	return p.store.SaveRefreshSession(ctx, tokenHash, adminID, expiresAt)
}

func (p pgSessions) LookupRefreshSession(ctx context.Context, tokenHash string) (session.TokenData, error) {
	admin, err := p.store.LookupRefreshSession(ctx, tokenHash)
	if err != nil {
		return session.TokenData{}, err
	}
	return session.TokenData{AdminID: admin.ID, Username: admin.Username}, nil
}

func (p pgSessions) RevokeRefreshSession(ctx context.Context, tokenHash string) error {
	return p.store.RevokeRefreshSession(ctx, tokenHash)
}

type Service struct {
	cfg       config.Config
	store     dataStore
	admins    *adminauth.Service
	sessions  sessionStore
	search    searchService
	snapshots snapshotService
	uploads   uploadService
	mail      mailService
}

// Options carries the optional collaborators. Any of them may be nil; the
// corresponding feature degrades gracefully.
type Options struct {
	Sessions  *session.RedisStore
	Search    *search.Service
	Snapshots *snapshot.Service
	Uploads   *upload.Service
	Mail      *email.Service
}

func New(cfg config.Config, dataStore *store.PostgresStore, opts Options) *Service {
	s := &Service{
		cfg:    cfg,
		store:  dataStore,
		admins: adminauth.NewService(dataStore),
	}
	if opts.Sessions != nil {
		s.sessions = opts.Sessions
	} else {
		s.sessions = pgSessions{store: dataStore}
	}
	if opts.Search != nil {
		s.search = opts.Search
	}
	if opts.Snapshots != nil {
		s.snapshots = opts.Snapshots
	}
	if opts.Uploads != nil {
		s.uploads = opts.Uploads
	}
	if opts.Mail != nil && opts.Mail.IsConfigured() {
		s.mail = opts.Mail
	}
	return s
}

// Bootstrap seeds the admin account and warms the search index.
func (s *Service) Bootstrap(ctx context.Context) error {
	if err := s.admins.Seed(ctx, s.cfg.AdminUsername, s.cfg.AdminPassword); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	if s.search != nil {
		s.search.ReindexAllFromPG(ctx)
	}
	return nil
}

func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// --- sessions ---

func (s *Service) Login(ctx context.Context, username, password string) (Session, error) {
	admin, err := s.admins.Login(ctx, username, password)
	if err != nil {
		return Session{}, err
	}
	return s.issueSession(ctx, admin)
}

func (s *Service) Refresh(ctx context.Context, refreshToken string) (Session, error) {
	tokenHash := auth.HashToken(refreshToken)
	data, err := s.sessions.LookupRefreshSession(ctx, tokenHash)
	if err != nil {
		return Session{}, auth.ErrInvalidToken
	}
	admin, err := s.store.GetAdminByID(ctx, data.AdminID)
	if err != nil {
		return Session{}, auth.ErrInvalidToken
	}
	if err := s.sessions.RevokeRefreshSession(ctx, tokenHash); err != nil {
		return Session{}, err
	}
	return s.issueSession(ctx, admin)
}

func (s *Service) issueSession(ctx context.Context, admin store.Admin) (Session, error) {
	now := time.Now()
	expiresAt := now.Add(s.cfg.AccessTTL)
	jti := util.NewID("jti")

	token, err := auth.IssueToken([]byte(s.cfg.JWTSecret), auth.Claims{
		Sub:      admin.ID,
		Username: admin.Username,
		JTI:      jti,
		Exp:      expiresAt.Unix(),
	})
	if err != nil {
		return Session{}, err
	}

	refresh := util.NewID("rft") + util.NewID("")
	refreshExpires := now.Add(s.cfg.RefreshTTL)
	if err := s.sessions.SaveRefreshSession(ctx, auth.HashToken(refresh), admin.ID, admin.Username, refreshExpires); err != nil {
		return Session{}, err
	}

	return Session{
		Token:        token,
		RefreshToken: refresh,
		AdminID:      admin.ID,
		Username:     admin.Username,
		JTI:          jti,
		ExpiresAt:    expiresAt,
	}, nil
}

func (s *Service) SessionFromToken(token string) (Session, error) {
	claims, err := auth.ParseToken([]byte(s.cfg.JWTSecret), token)
	if err != nil {
		return Session{}, err
	}
	return Session{
		Token:     token,
		AdminID:   claims.Sub,
		Username:  claims.Username,
		JTI:       claims.JTI,
		ExpiresAt: time.Unix(claims.Exp, 0),
	}, nil
}

func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken != "" {
		_ = s.sessions.RevokeRefreshSession(ctx, auth.HashToken(refreshToken))
	}
	return nil
}

// --- granthas ---

// CommentaryInput is an embedded commentary on a nested verse payload. The
// wire id is only used to resolve parent links among the incoming set; the
// stored record always gets a fresh id.
type CommentaryInput struct {
	ID                 string  `json:"_id"`
	CommentaryName     string  `json:"commentaryName"`
	Commentator        string  `json:"commentator"`
	CommentaryText     string  `json:"commentaryText"`
	ParentCommentaryID *string `json:"parentCommentaryId"`
}

type VerseInput struct {
	ID            string            `json:"_id"`
	ChapterNumber string            `json:"chapterNumber"`
	VerseNumber   string            `json:"verseNumber"`
	VerseText     string            `json:"verseText"`
	Commentaries  []CommentaryInput `json:"commentaries"`
}

type CommentaryDefinitionInput struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Author string `json:"author"`
	Order  int    `json:"order"`
}

type GranthaInput struct {
	Title                 string                      `json:"title"`
	TitleEnglish          string                      `json:"titleEnglish"`
	Author                string                      `json:"author"`
	AuthorEnglish         string                      `json:"authorEnglish"`
	Description           string                      `json:"description"`
	Language              string                      `json:"language"`
	Category              string                      `json:"category"`
	Status                string                      `json:"status"`
	ChapterLabel          string                      `json:"chapterLabel"`
	VerseLabel            string                      `json:"verseLabel"`
	ChapterLabelEnglish   string                      `json:"chapterLabelEnglish"`
	VerseLabelEnglish     string                      `json:"verseLabelEnglish"`
	AvailableCommentaries []CommentaryDefinitionInput `json:"availableCommentaries"`
	Verses                []VerseInput                `json:"verses"`
}

type GranthaPage struct {
	Granthas    []store.Grantha `json:"granthas"`
	CurrentPage int             `json:"currentPage"`
	TotalPages  int             `json:"totalPages"`
	TotalCount  int             `json:"totalCount"`
}

func (s *Service) ListGranthas(ctx context.Context, page, limit int) (GranthaPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}

	items, total, err := s.store.ListPublishedGranthas(ctx, limit, (page-1)*limit)
	if err != nil {
		return GranthaPage{}, err
	}

	totalPages := (total + limit - 1) / limit
	if totalPages < 1 {
		totalPages = 1
	}
	if items == nil {
		items = []store.Grantha{}
	}
	return GranthaPage{
		Granthas:    items,
		CurrentPage: page,
		TotalPages:  totalPages,
		TotalCount:  total,
	}, nil
}

// AdminListGranthas includes drafts, newest first.
func (s *Service) AdminListGranthas(ctx context.Context) ([]store.Grantha, error) {
	items, err := s.store.ListAllGranthas(ctx)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []store.Grantha{}
	}
	return items, nil
}

func (s *Service) GetGrantha(ctx context.Context, granthaID string) (store.Grantha, error) {
	item, err := s.store.GetGrantha(ctx, granthaID)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Grantha{}, notFound("grantha")
	}
	return item, err
}

func (s *Service) applyGranthaDefaults(g *store.Grantha) *DomainError {
	if strings.TrimSpace(g.Title) == "" {
		return validationError("title is required", nil)
	}
	if g.Language == "" {
		g.Language = "Sanskrit"
	}
	if g.Category == "" {
		g.Category = "Other"
	}
	if _, ok := allowedCategories[g.Category]; !ok {
		return validationError("invalid category", map[string]any{"category": g.Category})
	}
	if g.Status == "" {
		g.Status = "draft"
	}
	if _, ok := allowedStatuses[g.Status]; !ok {
		return validationError("invalid status", map[string]any{"status": g.Status})
	}
	if g.ChapterLabel == "" {
		g.ChapterLabel = "अध्यायः"
	}
	if g.VerseLabel == "" {
		g.VerseLabel = "श्लोकः"
	}
	if g.ChapterLabelEnglish == "" {
		g.ChapterLabelEnglish = "Chapter"
	}
	if g.VerseLabelEnglish == "" {
		g.VerseLabelEnglish = "Verse"
	}
	return nil
}

func definitionsFromInput(defs []CommentaryDefinitionInput) []store.CommentaryDefinition {
	out := make([]store.CommentaryDefinition, 0, len(defs))
	for i, d := range defs {
		id := d.ID
		if id == "" {
			id = util.NewID("cd")
		}
		order := d.Order
		if order == 0 {
			order = i + 1
		}
		out = append(out, store.CommentaryDefinition{
			ID:     id,
			Name:   d.Name,
			Author: d.Author,
			Order:  order,
		})
	}
	return out
}

func (s *Service) CreateGrantha(ctx context.Context, input GranthaInput) (store.Grantha, error) {
	item := store.Grantha{
		ID:                    util.NewID("gr"),
		Title:                 strings.TrimSpace(input.Title),
		TitleEnglish:          input.TitleEnglish,
		Author:                input.Author,
		AuthorEnglish:         input.AuthorEnglish,
		Description:           input.Description,
		Language:              input.Language,
		Category:              input.Category,
		Status:                input.Status,
		ChapterLabel:          input.ChapterLabel,
		VerseLabel:            input.VerseLabel,
		ChapterLabelEnglish:   input.ChapterLabelEnglish,
		VerseLabelEnglish:     input.VerseLabelEnglish,
		AvailableCommentaries: definitionsFromInput(input.AvailableCommentaries),
	}
	if derr := s.applyGranthaDefaults(&item); derr != nil {
		return store.Grantha{}, derr
	}

	if err := s.store.InsertGrantha(ctx, item); err != nil {
		return store.Grantha{}, err
	}

	if _, _, err := s.createVerses(ctx, item, input.Verses); err != nil {
		return store.Grantha{}, err
	}

	s.indexGrantha(item)
	created, err := s.store.GetGrantha(ctx, item.ID)
	if err != nil {
		return item, nil
	}
	return created, nil
}

func (s *Service) UpdateGrantha(ctx context.Context, granthaID string, input GranthaInput) (store.Grantha, error) {
	existing, err := s.store.GetGrantha(ctx, granthaID)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Grantha{}, notFound("grantha")
	}
	if err != nil {
		return store.Grantha{}, err
	}

	updated := existing
	updated.Title = strings.TrimSpace(input.Title)
	updated.TitleEnglish = input.TitleEnglish
	updated.Author = input.Author
	updated.AuthorEnglish = input.AuthorEnglish
	updated.Description = input.Description
	updated.Language = input.Language
	updated.Category = input.Category
	updated.Status = input.Status
	updated.ChapterLabel = input.ChapterLabel
	updated.VerseLabel = input.VerseLabel
	updated.ChapterLabelEnglish = input.ChapterLabelEnglish
	updated.VerseLabelEnglish = input.VerseLabelEnglish
	updated.AvailableCommentaries = definitionsFromInput(input.AvailableCommentaries)
	if derr := s.applyGranthaDefaults(&updated); derr != nil {
		return store.Grantha{}, derr
	}

	// A renamed definition, matched by id, cascades to every commentary row
	// still carrying the old name.
	oldNames := make(map[string]string, len(existing.AvailableCommentaries))
	for _, d := range existing.AvailableCommentaries {
		oldNames[d.ID] = d.Name
	}
	for _, d := range updated.AvailableCommentaries {
		oldName, ok := oldNames[d.ID]
		if !ok || oldName == d.Name {
			continue
		}
		if _, err := s.store.RenameCommentaryName(ctx, granthaID, oldName, d.Name); err != nil {
			return store.Grantha{}, err
		}
	}

	if err := s.store.UpdateGrantha(ctx, updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.Grantha{}, notFound("grantha")
		}
		return store.Grantha{}, err
	}

	// A verses payload replaces the entire verse and commentary set.
	if input.Verses != nil {
		if err := s.store.DeleteCommentariesByGrantha(ctx, granthaID); err != nil {
			return store.Grantha{}, err
		}
		if err := s.store.DeleteVersesByGrantha(ctx, granthaID); err != nil {
			return store.Grantha{}, err
		}
		if _, _, err := s.createVerses(ctx, updated, input.Verses); err != nil {
			return store.Grantha{}, err
		}
	}

	s.indexGrantha(updated)
	if existing.Status != updated.Status || existing.Title != updated.Title {
		s.reindexGranthaContent(ctx, updated)
	}
	final, err := s.store.GetGrantha(ctx, granthaID)
	if err != nil {
		return updated, nil
	}
	return final, nil
}

// DeleteGrantha cascades commentaries, then verses, then the grantha itself.
func (s *Service) DeleteGrantha(ctx context.Context, granthaID string) error {
	if _, err := s.store.GetGrantha(ctx, granthaID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return notFound("grantha")
		}
		return err
	}

	verses, err := s.store.ListVersesByGrantha(ctx, granthaID)
	if err != nil {
		return err
	}
	commentaries, err := s.store.ListCommentariesByGrantha(ctx, granthaID)
	if err != nil {
		return err
	}

	if err := s.store.DeleteCommentariesByGrantha(ctx, granthaID); err != nil {
		return err
	}
	if err := s.store.DeleteVersesByGrantha(ctx, granthaID); err != nil {
		return err
	}
	if err := s.store.DeleteGrantha(ctx, granthaID); err != nil {
		return err
	}

	if s.search != nil {
		s.search.DeleteGrantha(granthaID)
		for _, v := range verses {
			s.search.DeleteVerse(v.ID)
		}
		for _, c := range commentaries {
			s.search.DeleteCommentary(c.ID)
		}
	}
	if s.snapshots != nil {
		if err := s.snapshots.Remove(granthaID); err != nil {
			log.Printf("snapshot: %v", err)
		}
	}
	return nil
}

// createVerses inserts nested verse payloads and their embedded commentaries.
// Commentary parent links are resolved through the same two-pass remapping the
// import path uses.
func (s *Service) createVerses(ctx context.Context, g store.Grantha, verses []VerseInput) (int, int, error) {
	if len(verses) == 0 {
		return 0, 0, nil
	}

	type pendingCommentary struct {
		input   CommentaryInput
		verseID string
	}
	var pending []pendingCommentary

	for _, v := range verses {
		item := store.Verse{
			ID:            util.NewID("vs"),
			GranthaID:     g.ID,
			ChapterNumber: strings.TrimSpace(v.ChapterNumber),
			VerseNumber:   strings.TrimSpace(v.VerseNumber),
			VerseText:     v.VerseText,
		}
		if item.ChapterNumber == "" || item.VerseNumber == "" {
			return 0, 0, validationError("chapterNumber and verseNumber are required", nil)
		}
		if err := s.store.InsertVerse(ctx, item); err != nil {
			return 0, 0, err
		}
		s.indexVerse(g, item)
		for _, c := range v.Commentaries {
			pending = append(pending, pendingCommentary{input: c, verseID: item.ID})
		}
	}

	flat := make([]remapCommentary, 0, len(pending))
	for _, p := range pending {
		flat = append(flat, remapCommentary{
			OldID:       p.input.ID,
			VerseID:     p.verseID,
			Name:        p.input.CommentaryName,
			Commentator: p.input.Commentator,
			Text:        p.input.CommentaryText,
			OldParentID: p.input.ParentCommentaryID,
		})
	}
	inserted, err := s.remapCommentaries(ctx, g, flat)
	if err != nil {
		return 0, 0, err
	}
	return len(verses), inserted, nil
}

func (s *Service) indexGrantha(g store.Grantha) {
	if s.search == nil {
		return
	}
	s.search.IndexGrantha(search.GranthaRecord{
		ID:            g.ID,
		Title:         g.Title,
		TitleEnglish:  g.TitleEnglish,
		Author:        g.Author,
		AuthorEnglish: g.AuthorEnglish,
		Description:   g.Description,
		Status:        g.Status,
	})
}

func (s *Service) indexVerse(g store.Grantha, v store.Verse) {
	if s.search == nil {
		return
	}
	s.search.IndexVerse(search.VerseRecord{
		ID:            v.ID,
		GranthaID:     v.GranthaID,
		GranthaTitle:  g.Title,
		GranthaStatus: g.Status,
		ChapterNumber: v.ChapterNumber,
		VerseNumber:   v.VerseNumber,
		VerseText:     v.VerseText,
	})
}

func (s *Service) indexCommentary(g store.Grantha, c store.Commentary) {
	if s.search == nil {
		return
	}
	s.search.IndexCommentary(search.CommentaryRecord{
		ID:             c.ID,
		GranthaID:      c.GranthaID,
		GranthaStatus:  g.Status,
		VerseID:        c.VerseID,
		CommentaryName: c.CommentaryName,
		Commentator:    c.Commentator,
		CommentaryText: c.CommentaryText,
	})
}

// reindexGranthaContent refreshes the indexed verse and commentary records so
// they carry the grantha's current status and title.
func (s *Service) reindexGranthaContent(ctx context.Context, g store.Grantha) {
	if s.search == nil {
		return
	}
	verses, err := s.store.ListVersesByGrantha(ctx, g.ID)
	if err != nil {
		log.Printf("search: reindex verses for %s: %v", g.ID, err)
		return
	}
	for _, v := range verses {
		s.indexVerse(g, v)
	}
	commentaries, err := s.store.ListCommentariesByGrantha(ctx, g.ID)
	if err != nil {
		log.Printf("search: reindex commentaries for %s: %v", g.ID, err)
		return
	}
	for _, c := range commentaries {
		s.indexCommentary(g, c)
	}
}

// --- verses ---

func (s *Service) ListVerses(ctx context.Context, granthaID string) ([]store.Verse, error) {
	if _, err := s.store.GetGrantha(ctx, granthaID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("grantha")
		}
		return nil, err
	}
	verses, err := s.store.ListVersesByGrantha(ctx, granthaID)
	if err != nil {
		return nil, err
	}
	if verses == nil {
		verses = []store.Verse{}
	}
	return verses, nil
}

func (s *Service) GetVerse(ctx context.Context, verseID string) (store.Verse, error) {
	item, err := s.store.GetVerse(ctx, verseID)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Verse{}, notFound("verse")
	}
	return item, err
}

func (s *Service) CreateVerse(ctx context.Context, input VerseInput, granthaID string) (store.Verse, error) {
	g, err := s.store.GetGrantha(ctx, granthaID)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Verse{}, notFound("grantha")
	}
	if err != nil {
		return store.Verse{}, err
	}

	item := store.Verse{
		ID:            util.NewID("vs"),
		GranthaID:     granthaID,
		ChapterNumber: strings.TrimSpace(input.ChapterNumber),
		VerseNumber:   strings.TrimSpace(input.VerseNumber),
		VerseText:     input.VerseText,
	}
	if item.ChapterNumber == "" || item.VerseNumber == "" {
		return store.Verse{}, validationError("chapterNumber and verseNumber are required", nil)
	}
	if err := s.store.InsertVerse(ctx, item); err != nil {
		return store.Verse{}, err
	}
	s.indexVerse(g, item)
	return s.store.GetVerse(ctx, item.ID)
}

func (s *Service) UpdateVerse(ctx context.Context, verseID string, input VerseInput) (store.Verse, error) {
	existing, err := s.store.GetVerse(ctx, verseID)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Verse{}, notFound("verse")
	}
	if err != nil {
		return store.Verse{}, err
	}

	updated := existing
	updated.ChapterNumber = strings.TrimSpace(input.ChapterNumber)
	updated.VerseNumber = strings.TrimSpace(input.VerseNumber)
	updated.VerseText = input.VerseText
	if updated.ChapterNumber == "" || updated.VerseNumber == "" {
		return store.Verse{}, validationError("chapterNumber and verseNumber are required", nil)
	}

	if err := s.store.UpdateVerse(ctx, updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.Verse{}, notFound("verse")
		}
		return store.Verse{}, err
	}

	if g, err := s.store.GetGrantha(ctx, updated.GranthaID); err == nil {
		s.indexVerse(g, updated)
	}
	return s.store.GetVerse(ctx, verseID)
}

// DeleteVerse removes a verse and every commentary attached to it.
func (s *Service) DeleteVerse(ctx context.Context, verseID string) error {
	if _, err := s.store.GetVerse(ctx, verseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return notFound("verse")
		}
		return err
	}

	commentaries, err := s.store.ListCommentariesByVerse(ctx, verseID)
	if err != nil {
		return err
	}
	if err := s.store.DeleteCommentariesByVerse(ctx, verseID); err != nil {
		return err
	}
	if err := s.store.DeleteVerse(ctx, verseID); err != nil {
		return err
	}

	if s.search != nil {
		s.search.DeleteVerse(verseID)
		for _, c := range commentaries {
			s.search.DeleteCommentary(c.ID)
		}
	}
	return nil
}

// --- commentaries ---

func (s *Service) VerseCommentaries(ctx context.Context, verseID string) ([]*commentary.Node, error) {
	verse, err := s.store.GetVerse(ctx, verseID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("verse")
	}
	if err != nil {
		return nil, err
	}

	nodes, err := s.store.ListCommentariesByVerse(ctx, verseID)
	if err != nil {
		return nil, err
	}

	orderOf := func(string) int { return commentary.UndeclaredOrder }
	if g, err := s.store.GetGrantha(ctx, verse.GranthaID); err == nil {
		orderOf = commentary.OrderFor(g.AvailableCommentaries)
	}

	forest := commentary.BuildForest(nodes, orderOf)
	if forest == nil {
		forest = []*commentary.Node{}
	}
	return forest, nil
}

func (s *Service) GranthaCommentaries(ctx context.Context, granthaID string) ([]store.CommentaryWithVerse, error) {
	if _, err := s.store.GetGrantha(ctx, granthaID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("grantha")
		}
		return nil, err
	}
	items, err := s.store.ListCommentariesByGranthaWithVerse(ctx, granthaID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []store.CommentaryWithVerse{}
	}
	return items, nil
}

func (s *Service) GetCommentary(ctx context.Context, commentaryID string) (store.Commentary, error) {
	item, err := s.store.GetCommentary(ctx, commentaryID)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Commentary{}, notFound("commentary")
	}
	return item, err
}

// computeLevel derives the stored level from the parent reference. A missing
// or unresolvable parent yields level 0, never an error.
func (s *Service) computeLevel(ctx context.Context, parentID *string) int {
	if parentID == nil || *parentID == "" {
		return 0
	}
	parent, err := s.store.GetCommentary(ctx, *parentID)
	if err != nil {
		return 0
	}
	return parent.Level + 1
}

type CreateCommentaryInput struct {
	VerseID            string  `json:"verseId"`
	CommentaryName     string  `json:"commentaryName"`
	Commentator        string  `json:"commentator"`
	CommentaryText     string  `json:"commentaryText"`
	ParentCommentaryID *string `json:"parentCommentaryId"`
}

func (s *Service) CreateCommentary(ctx context.Context, input CreateCommentaryInput) (store.Commentary, error) {
	if strings.TrimSpace(input.CommentaryName) == "" {
		return store.Commentary{}, validationError("commentaryName is required", nil)
	}
	verse, err := s.store.GetVerse(ctx, input.VerseID)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Commentary{}, notFound("verse")
	}
	if err != nil {
		return store.Commentary{}, err
	}

	parentID := input.ParentCommentaryID
	if parentID != nil && *parentID == "" {
		parentID = nil
	}

	item := store.Commentary{
		ID:                 util.NewID("cm"),
		GranthaID:          verse.GranthaID,
		VerseID:            verse.ID,
		CommentaryName:     strings.TrimSpace(input.CommentaryName),
		Commentator:        input.Commentator,
		CommentaryText:     input.CommentaryText,
		ParentCommentaryID: parentID,
		Level:              s.computeLevel(ctx, parentID),
	}
	if err := s.store.InsertCommentary(ctx, item); err != nil {
		return store.Commentary{}, err
	}
	if g, err := s.store.GetGrantha(ctx, item.GranthaID); err == nil {
		s.indexCommentary(g, item)
	}
	return s.store.GetCommentary(ctx, item.ID)
}

type UpdateCommentaryInput struct {
	CommentaryName     string  `json:"commentaryName"`
	Commentator        string  `json:"commentator"`
	CommentaryText     string  `json:"commentaryText"`
	ParentCommentaryID *string `json:"parentCommentaryId"`
}

func (s *Service) UpdateCommentary(ctx context.Context, commentaryID string, input UpdateCommentaryInput) (store.Commentary, error) {
	existing, err := s.store.GetCommentary(ctx, commentaryID)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Commentary{}, notFound("commentary")
	}
	if err != nil {
		return store.Commentary{}, err
	}
	if strings.TrimSpace(input.CommentaryName) == "" {
		return store.Commentary{}, validationError("commentaryName is required", nil)
	}

	parentID := input.ParentCommentaryID
	if parentID != nil && *parentID == "" {
		parentID = nil
	}

	reparented := !parentPtrEqual(existing.ParentCommentaryID, parentID)
	if reparented && parentID != nil {
		if *parentID == commentaryID {
			return store.Commentary{}, validationError("commentary cannot be its own parent", nil)
		}
		inSubtree, err := s.isDescendant(ctx, commentaryID, *parentID)
		if err != nil {
			return store.Commentary{}, err
		}
		if inSubtree {
			return store.Commentary{}, validationError("commentary cannot be re-parented under its own descendant", nil)
		}
	}

	updated := existing
	updated.CommentaryName = strings.TrimSpace(input.CommentaryName)
	updated.Commentator = input.Commentator
	updated.CommentaryText = input.CommentaryText
	updated.ParentCommentaryID = parentID
	updated.Level = s.computeLevel(ctx, parentID)

	if err := s.store.UpdateCommentary(ctx, updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.Commentary{}, notFound("commentary")
		}
		return store.Commentary{}, err
	}

	if reparented {
		if err := s.fixDescendantLevels(ctx, updated.ID, updated.Level); err != nil {
			return store.Commentary{}, err
		}
	}

	if g, err := s.store.GetGrantha(ctx, updated.GranthaID); err == nil {
		s.indexCommentary(g, updated)
	}
	return s.store.GetCommentary(ctx, commentaryID)
}

func parentPtrEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// isDescendant reports whether candidate sits in the subtree rooted at rootID.
func (s *Service) isDescendant(ctx context.Context, rootID, candidate string) (bool, error) {
	children, err := s.store.ListChildCommentaries(ctx, rootID)
	if err != nil {
		return false, err
	}
	for _, child := range children {
		if child.ID == candidate {
			return true, nil
		}
		found, err := s.isDescendant(ctx, child.ID, candidate)
		if err != nil {
			return false, err
		}
		if found {
			return true, nil
		}
	}
	return false, nil
}

// fixDescendantLevels rewrites stored levels below a re-parented node.
func (s *Service) fixDescendantLevels(ctx context.Context, parentID string, parentLevel int) error {
	children, err := s.store.ListChildCommentaries(ctx, parentID)
	if err != nil {
		return err
	}
	for _, child := range children {
		if err := s.store.UpdateCommentaryLevel(ctx, child.ID, parentLevel+1); err != nil {
			return err
		}
		if err := s.fixDescendantLevels(ctx, child.ID, parentLevel+1); err != nil {
			return err
		}
	}
	return nil
}

// DeleteCommentary removes a commentary and its entire subtree, children
// first. Deleting an id that does not exist is a no-op.
func (s *Service) DeleteCommentary(ctx context.Context, commentaryID string) error {
	if _, err := s.store.GetCommentary(ctx, commentaryID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return err
	}
	return s.deleteCommentarySubtree(ctx, commentaryID)
}

func (s *Service) deleteCommentarySubtree(ctx context.Context, commentaryID string) error {
	children, err := s.store.ListChildCommentaries(ctx, commentaryID)
	if err != nil {
		return err
	}
	for _, child := range children {
		if err := s.deleteCommentarySubtree(ctx, child.ID); err != nil {
			return err
		}
	}
	if err := s.store.DeleteCommentary(ctx, commentaryID); err != nil {
		return err
	}
	if s.search != nil {
		s.search.DeleteCommentary(commentaryID)
	}
	return nil
}

// --- suggestions ---

type SuggestionInput struct {
	GranthaID      string `json:"granthaId"`
	VerseID        string `json:"verseId"`
	CommentaryID   string `json:"commentaryId"`
	SuggestionType string `json:"suggestionType"`
	OriginalText   string `json:"originalText"`
	SuggestedText  string `json:"suggestedText"`
	Reason         string `json:"reason"`
	SubmittedBy    string `json:"submittedBy"`
}

func (s *Service) CreateSuggestion(ctx context.Context, input SuggestionInput) (store.Suggestion, error) {
	if input.GranthaID == "" || input.VerseID == "" {
		return store.Suggestion{}, validationError("granthaId and verseId are required", nil)
	}
	if _, ok := allowedSuggestionTypes[input.SuggestionType]; !ok {
		return store.Suggestion{}, validationError("invalid suggestionType", map[string]any{"suggestionType": input.SuggestionType})
	}
	if strings.TrimSpace(input.OriginalText) == "" || strings.TrimSpace(input.SuggestedText) == "" {
		return store.Suggestion{}, validationError("originalText and suggestedText are required", nil)
	}

	g, err := s.store.GetGrantha(ctx, input.GranthaID)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Suggestion{}, notFound("grantha")
	}
	if err != nil {
		return store.Suggestion{}, err
	}
	verse, err := s.store.GetVerse(ctx, input.VerseID)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Suggestion{}, notFound("verse")
	}
	if err != nil {
		return store.Suggestion{}, err
	}

	submittedBy := strings.TrimSpace(input.SubmittedBy)
	if submittedBy == "" {
		submittedBy = "Anonymous"
	}

	item := store.Suggestion{
		ID:             util.NewID("sg"),
		GranthaID:      input.GranthaID,
		VerseID:        input.VerseID,
		CommentaryID:   input.CommentaryID,
		SuggestionType: input.SuggestionType,
		OriginalText:   input.OriginalText,
		SuggestedText:  input.SuggestedText,
		Reason:         input.Reason,
		SubmittedBy:    submittedBy,
		Status:         "pending",
	}
	if err := s.store.InsertSuggestion(ctx, item); err != nil {
		return store.Suggestion{}, err
	}

	s.notifySuggestion(g, verse, item)
	return s.store.GetSuggestion(ctx, item.ID)
}

func (s *Service) notifySuggestion(g store.Grantha, verse store.Verse, item store.Suggestion) {
	if s.mail == nil || s.cfg.ModerationEmail == "" {
		return
	}
	go func() {
		err := s.mail.SendSuggestionNotification(s.cfg.ModerationEmail, email.SuggestionData{
			SuggestionType: item.SuggestionType,
			GranthaTitle:   g.Title,
			VerseRef:       verse.ChapterNumber + "." + verse.VerseNumber,
			SubmittedBy:    item.SubmittedBy,
			SuggestedText:  item.SuggestedText,
			Reason:         item.Reason,
		})
		if err != nil {
			log.Printf("email: suggestion notification: %v", err)
		}
	}()
}

func (s *Service) PendingSuggestions(ctx context.Context) ([]store.SuggestionWithRefs, error) {
	items, err := s.store.ListPendingSuggestions(ctx)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []store.SuggestionWithRefs{}
	}
	return items, nil
}

// ResolveSuggestion moves a pending suggestion to approved or rejected.
// Approval records the decision only; the suggested text is never applied
// automatically.
func (s *Service) ResolveSuggestion(ctx context.Context, suggestionID, status string) (store.Suggestion, error) {
	if status != "approved" && status != "rejected" {
		return store.Suggestion{}, validationError("invalid status", map[string]any{"status": status})
	}

	updated, err := s.store.UpdateSuggestionStatus(ctx, suggestionID, status)
	if err != nil {
		return store.Suggestion{}, err
	}
	if !updated {
		existing, err := s.store.GetSuggestion(ctx, suggestionID)
		if errors.Is(err, sql.ErrNoRows) {
			return store.Suggestion{}, notFound("suggestion")
		}
		if err != nil {
			return store.Suggestion{}, err
		}
		return store.Suggestion{}, validationError("suggestion already resolved", map[string]any{"status": existing.Status})
	}
	return s.store.GetSuggestion(ctx, suggestionID)
}

// --- search ---

// Search runs the advanced search. Queries shorter than two characters
// short-circuit to an empty result set without touching any backend.
func (s *Service) Search(q string) search.Response {
	text := strings.TrimSpace(q)
	if len([]rune(text)) < 2 {
		return search.Response{Results: []search.Result{}, Query: text}
	}
	if s.search == nil {
		return search.Response{Results: []search.Result{}, Query: text}
	}
	return s.search.Search(search.Query{Text: text})
}
