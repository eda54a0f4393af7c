package app

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"granthalaya/api/internal/auth"
	"granthalaya/api/internal/export"
	"granthalaya/api/internal/snapshot"
)

func newTestServer(t *testing.T) (*HTTPServer, *Service, *fakeStore) {
	t.Helper()
	fs := newFakeStore()
	svc := newTestService(fs)
	return NewHTTPServer(svc, "*"), svc, fs
}

func adminToken(t *testing.T, svc *Service) string {
	t.Helper()
	svc.cfg.AdminUsername = "admin"
	svc.cfg.AdminPassword = "sesame"
	if err := svc.Bootstrap(context.Background()); err != nil {
		t.Fatalf("Bootstrap() error = %v", err)
	}
	session, err := svc.Login(context.Background(), "admin", "sesame")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	return session.Token
}

func doJSON(t *testing.T, server *HTTPServer, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewBuffer(data)
	} else {
		reader = bytes.NewBuffer(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, req)
	return rr
}

func parseBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var payload map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("parse response: %v body=%s", err, rr.Body.String())
	}
	return payload
}

func TestHealthEndpoint(t *testing.T) {
	server, _, _ := newTestServer(t)

	rr := doJSON(t, server, http.MethodGet, "/api/health", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	payload := parseBody(t, rr)
	if payload["ok"] != true {
		t.Fatalf("expected ok=true, got %v", payload["ok"])
	}
	if rr.Header().Get("X-Request-ID") == "" {
		t.Fatal("expected X-Request-ID header")
	}
}

func TestReadyEndpoint(t *testing.T) {
	server, _, _ := newTestServer(t)

	rr := doJSON(t, server, http.MethodGet, "/api/ready", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	payload := parseBody(t, rr)
	if payload["status"] != "ready" {
		t.Fatalf("expected status ready, got %v", payload["status"])
	}
}

func TestGranthaListResponseShape(t *testing.T) {
	server, svc, _ := newTestServer(t)
	seedGrantha(t, svc, GranthaInput{Title: "गीता", Status: "published"})
	seedGrantha(t, svc, GranthaInput{Title: "Draft"})

	rr := doJSON(t, server, http.MethodGet, "/api/granthas?page=1&limit=10", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	payload := parseBody(t, rr)
	granthas, ok := payload["granthas"].([]any)
	if !ok {
		t.Fatalf("expected granthas array, got %T", payload["granthas"])
	}
	if len(granthas) != 1 {
		t.Fatalf("expected only the published grantha, got %d", len(granthas))
	}
	if payload["totalCount"] != float64(1) || payload["currentPage"] != float64(1) {
		t.Fatalf("unexpected pagination fields: %v", payload)
	}
}

func TestGranthaNotFoundEnvelope(t *testing.T) {
	server, _, _ := newTestServer(t)

	rr := doJSON(t, server, http.MethodGet, "/api/granthas/gr_missing", "", nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rr.Code)
	}
	payload := parseBody(t, rr)
	if payload["code"] != "NOT_FOUND" {
		t.Fatalf("expected code NOT_FOUND, got %v", payload["code"])
	}
	if payload["error"] == "" {
		t.Fatal("expected error message")
	}
}

func TestAdminLoginReturnsContract(t *testing.T) {
	server, svc, _ := newTestServer(t)
	adminToken(t, svc)

	rr := doJSON(t, server, http.MethodPost, "/api/admin/login", "", map[string]string{
		"username": "admin",
		"password": "sesame",
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	payload := parseBody(t, rr)
	for _, key := range []string{"adminId", "username", "token", "refreshToken"} {
		value, _ := payload[key].(string)
		if value == "" {
			t.Fatalf("expected %s in login response", key)
		}
	}

	rr = doJSON(t, server, http.MethodPost, "/api/admin/login", "", map[string]string{
		"username": "admin",
		"password": "wrong",
	})
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rr.Code)
	}
	if parseBody(t, rr)["code"] != "INVALID_CREDENTIALS" {
		t.Fatalf("expected INVALID_CREDENTIALS, got %s", rr.Body.String())
	}
}

func TestRefreshRotatesTokens(t *testing.T) {
	server, svc, _ := newTestServer(t)
	adminToken(t, svc)

	login := doJSON(t, server, http.MethodPost, "/api/admin/login", "", map[string]string{
		"username": "admin",
		"password": "sesame",
	})
	refreshToken, _ := parseBody(t, login)["refreshToken"].(string)

	rr := doJSON(t, server, http.MethodPost, "/api/admin/refresh", "", map[string]string{
		"refreshToken": refreshToken,
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	rotated, _ := parseBody(t, rr)["refreshToken"].(string)
	if rotated == "" || rotated == refreshToken {
		t.Fatal("expected a rotated refresh token")
	}

	rr = doJSON(t, server, http.MethodPost, "/api/admin/refresh", "", map[string]string{
		"refreshToken": refreshToken,
	})
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected spent token to be rejected, got %d", rr.Code)
	}
}

func TestMutationWithoutBearerReturnsUnauthorized(t *testing.T) {
	server, _, _ := newTestServer(t)

	for _, route := range []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/granthas"},
		{http.MethodPut, "/api/granthas/gr_1"},
		{http.MethodDelete, "/api/granthas/gr_1"},
		{http.MethodPost, "/api/verses"},
		{http.MethodPost, "/api/commentaries"},
		{http.MethodGet, "/api/suggestions/pending"},
		{http.MethodGet, "/api/admin/granthas"},
		{http.MethodPost, "/api/granthas/import"},
	} {
		rr := doJSON(t, server, route.method, route.path, "", nil)
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s: expected status 401, got %d", route.method, route.path, rr.Code)
		}
		if parseBody(t, rr)["code"] != "UNAUTHORIZED" {
			t.Fatalf("%s %s: expected UNAUTHORIZED envelope", route.method, route.path)
		}
	}
}

func TestExpiredBearerReturnsUnauthorized(t *testing.T) {
	server, svc, _ := newTestServer(t)

	token, err := auth.IssueToken([]byte(svc.cfg.JWTSecret), auth.Claims{
		Sub:      "ad_1",
		Username: "admin",
		JTI:      "jti_expired",
		Exp:      time.Now().Add(-time.Minute).Unix(),
	})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	rr := doJSON(t, server, http.MethodPost, "/api/granthas", token, GranthaInput{Title: "X"})
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rr.Code)
	}
}

func TestGranthaCreateAndFetch(t *testing.T) {
	server, svc, _ := newTestServer(t)
	token := adminToken(t, svc)

	rr := doJSON(t, server, http.MethodPost, "/api/granthas", token, GranthaInput{
		Title:  "ईशोपनिषद्",
		Status: "published",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d body=%s", rr.Code, rr.Body.String())
	}
	created := parseBody(t, rr)
	id, _ := created["id"].(string)
	if id == "" {
		t.Fatal("expected created grantha id")
	}

	rr = doJSON(t, server, http.MethodGet, "/api/granthas/"+id, "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if parseBody(t, rr)["title"] != "ईशोपनिषद्" {
		t.Fatalf("unexpected fetch payload: %s", rr.Body.String())
	}

	rr = doJSON(t, server, http.MethodPost, "/api/granthas", token, GranthaInput{Title: "X", Category: "Novel"})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
	if parseBody(t, rr)["code"] != "VALIDATION_ERROR" {
		t.Fatalf("expected VALIDATION_ERROR envelope, got %s", rr.Body.String())
	}
}

func TestVerseAndCommentaryRoutes(t *testing.T) {
	server, svc, _ := newTestServer(t)
	token := adminToken(t, svc)

	g := seedGrantha(t, svc, GranthaInput{Title: "गीता"})

	rr := doJSON(t, server, http.MethodPost, "/api/verses", token, map[string]any{
		"granthaId":     g.ID,
		"chapterNumber": "1",
		"verseNumber":   "1",
		"verseText":     "धर्मक्षेत्रे",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d body=%s", rr.Code, rr.Body.String())
	}
	verseID, _ := parseBody(t, rr)["id"].(string)

	rr = doJSON(t, server, http.MethodPost, "/api/commentaries", token, map[string]any{
		"verseId":        verseID,
		"commentaryName": "भाष्यम्",
		"commentaryText": "व्याख्या",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d body=%s", rr.Code, rr.Body.String())
	}

	rr = doJSON(t, server, http.MethodGet, "/api/commentaries/verse/"+verseID, "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	forest, _ := parseBody(t, rr)["commentaries"].([]any)
	if len(forest) != 1 {
		t.Fatalf("expected 1 root commentary, got %d", len(forest))
	}

	rr = doJSON(t, server, http.MethodGet, "/api/verses/grantha/"+g.ID, "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	verses, _ := parseBody(t, rr)["verses"].([]any)
	if len(verses) != 1 {
		t.Fatalf("expected 1 verse, got %d", len(verses))
	}
}

func TestSuggestionRoutes(t *testing.T) {
	server, svc, _ := newTestServer(t)
	token := adminToken(t, svc)

	g := seedGrantha(t, svc, GranthaInput{Title: "गीता"})
	v := seedVerse(t, svc, g.ID, "1", "1")

	rr := doJSON(t, server, http.MethodPost, "/api/suggestions", "", SuggestionInput{
		GranthaID:      g.ID,
		VerseID:        v.ID,
		SuggestionType: "moolam",
		OriginalText:   "old",
		SuggestedText:  "new",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d body=%s", rr.Code, rr.Body.String())
	}
	suggestionID, _ := parseBody(t, rr)["id"].(string)

	rr = doJSON(t, server, http.MethodPost, "/api/suggestions", "", SuggestionInput{GranthaID: g.ID})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for incomplete suggestion, got %d", rr.Code)
	}

	rr = doJSON(t, server, http.MethodGet, "/api/suggestions/pending", token, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	pending, _ := parseBody(t, rr)["suggestions"].([]any)
	if len(pending) != 1 {
		t.Fatalf("expected 1 pending suggestion, got %d", len(pending))
	}

	rr = doJSON(t, server, http.MethodPut, "/api/suggestions/"+suggestionID+"/approve", token, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	if parseBody(t, rr)["status"] != "approved" {
		t.Fatalf("expected approved status, got %s", rr.Body.String())
	}

	rr = doJSON(t, server, http.MethodPut, "/api/suggestions/"+suggestionID+"/reject", token, nil)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected resolved suggestion to be terminal, got %d", rr.Code)
	}
}

func TestSearchEndpointShortQuery(t *testing.T) {
	server, svc, _ := newTestServer(t)
	backend := &fakeSearch{}
	svc.search = backend

	rr := doJSON(t, server, http.MethodGet, "/api/search/advanced?q=x", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	payload := parseBody(t, rr)
	results, ok := payload["results"].([]any)
	if !ok || len(results) != 0 {
		t.Fatalf("expected empty results array, got %v", payload["results"])
	}
	if backend.queryCount() != 0 {
		t.Fatal("expected short query to skip the backend")
	}
}

func TestExportDownloadHeaders(t *testing.T) {
	server, svc, _ := newTestServer(t)
	g := seedGrantha(t, svc, GranthaInput{
		Title: "ईशोपनिषद्",
		Verses: []VerseInput{
			{ChapterNumber: "1", VerseNumber: "1", VerseText: "ईशा वास्यम्"},
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/granthas/"+g.ID+"/export", nil)
	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	if rr.Header().Get("Content-Type") != "application/json" {
		t.Fatalf("expected application/json, got %q", rr.Header().Get("Content-Type"))
	}
	disposition := rr.Header().Get("Content-Disposition")
	if !strings.HasPrefix(disposition, "attachment;") {
		t.Fatalf("expected attachment disposition, got %q", disposition)
	}

	var snap export.Snapshot
	if err := json.Unmarshal(rr.Body.Bytes(), &snap); err != nil {
		t.Fatalf("export body is not valid JSON: %v", err)
	}
	if snap.ExportVersion != export.SnapshotVersion {
		t.Fatalf("expected exportVersion %s, got %s", export.SnapshotVersion, snap.ExportVersion)
	}
}

func TestSnapshotRoutes(t *testing.T) {
	server, svc, _ := newTestServer(t)
	svc.snapshots = snapshot.New(t.TempDir())
	token := adminToken(t, svc)

	g := seedGrantha(t, svc, GranthaInput{
		Title:  "ईशोपनिषद्",
		Verses: []VerseInput{{ChapterNumber: "1", VerseNumber: "1", VerseText: "ईशा वास्यम्"}},
	})
	if _, err := svc.Export(context.Background(), g.ID, export.FormatJSON); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	rr := doJSON(t, server, http.MethodGet, "/api/granthas/"+g.ID+"/snapshots", token, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	payload := parseBody(t, rr)
	snapshots, ok := payload["snapshots"].([]any)
	if !ok || len(snapshots) != 1 {
		t.Fatalf("expected one snapshot entry, got %v", payload["snapshots"])
	}
	entry := snapshots[0].(map[string]any)
	hash, _ := entry["hash"].(string)
	if hash == "" {
		t.Fatal("expected snapshot hash in history entry")
	}

	rr = doJSON(t, server, http.MethodGet, "/api/granthas/"+g.ID+"/snapshots/"+hash, token, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	var snap export.Snapshot
	if err := json.Unmarshal(rr.Body.Bytes(), &snap); err != nil {
		t.Fatalf("snapshot body is not valid JSON: %v", err)
	}
	if snap.ExportVersion != export.SnapshotVersion {
		t.Fatalf("expected exportVersion %s, got %s", export.SnapshotVersion, snap.ExportVersion)
	}

	rr = doJSON(t, server, http.MethodGet, "/api/granthas/"+g.ID+"/snapshots/"+hash, "", nil)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401 without bearer, got %d", rr.Code)
	}

	rr = doJSON(t, server, http.MethodGet, "/api/granthas/"+g.ID+"/snapshots/0000000", token, nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status 404 for unknown hash, got %d", rr.Code)
	}
}

func TestImportEndpointMultipart(t *testing.T) {
	server, svc, _ := newTestServer(t)
	token := adminToken(t, svc)

	payload, _ := json.Marshal(export.Snapshot{
		Grantha: export.GranthaDoc{Title: "कठोपनिषद्"},
		Verses: []export.VerseDoc{
			{ID: "old-v", ChapterNumber: "1", VerseNumber: "1", VerseText: "x"},
		},
	})

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("granthaFile", "katha.json")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	part.Write(payload)
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/granthas/import", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d body=%s", rr.Code, rr.Body.String())
	}
	summary := parseBody(t, rr)
	if summary["versesImported"] != float64(1) {
		t.Fatalf("unexpected summary: %s", rr.Body.String())
	}

	// A raw JSON body works without multipart framing.
	rr = doJSON(t, server, http.MethodPost, "/api/granthas/import", token, export.Snapshot{
		Grantha: export.GranthaDoc{Title: "केनोपनिषद्"},
		Verses:  []export.VerseDoc{},
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201 for raw body, got %d body=%s", rr.Code, rr.Body.String())
	}
}
