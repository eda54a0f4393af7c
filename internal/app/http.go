package app

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"granthalaya/api/internal/adminauth"
	"granthalaya/api/internal/auth"
	"granthalaya/api/internal/export"
)

// maxImportSize caps uploaded export files at 20 MB.
const maxImportSize = 20 << 20

type HTTPServer struct {
	service    *Service
	corsOrigin string
}

func NewHTTPServer(service *Service, corsOrigin string) *HTTPServer {
	return &HTTPServer{service: service, corsOrigin: corsOrigin}
}

func (s *HTTPServer) Handler() http.Handler {
	return s.withMiddleware(http.HandlerFunc(s.handle))
}

func (s *HTTPServer) handle(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		writeJSON(w, http.StatusNoContent, map[string]any{})
		return
	}

	if (r.Method == http.MethodGet || r.Method == http.MethodHead) && r.URL.Path == "/api/health" {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		return
	}

	if (r.Method == http.MethodGet || r.Method == http.MethodHead) && r.URL.Path == "/api/ready" {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		status := "ready"
		statusCode := http.StatusOK
		checks := map[string]any{
			"database": map[string]any{"status": "ok"},
		}

		if err := s.service.Ping(ctx); err != nil {
			status = "not_ready"
			statusCode = http.StatusServiceUnavailable
			checks["database"] = map[string]any{
				"status": "error",
				"error":  err.Error(),
			}
		}

		writeJSON(w, statusCode, map[string]any{
			"ok":     status == "ready",
			"status": status,
			"checks": checks,
		})
		return
	}

	parts := splitPath(strings.TrimPrefix(r.URL.Path, "/api"))
	if len(parts) == 0 {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
		return
	}

	switch parts[0] {
	case "admin":
		s.handleAdmin(w, r, parts[1:])
	case "granthas":
		s.handleGranthas(w, r, parts[1:])
	case "verses":
		s.handleVerses(w, r, parts[1:])
	case "commentaries":
		s.handleCommentaries(w, r, parts[1:])
	case "suggestions":
		s.handleSuggestions(w, r, parts[1:])
	case "search":
		s.handleSearch(w, r, parts[1:])
	default:
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
	}
}

// --- admin session routes ---

func (s *HTTPServer) handleAdmin(w http.ResponseWriter, r *http.Request, parts []string) {
	if len(parts) == 1 && r.Method == http.MethodPost {
		switch parts[0] {
		case "login":
			s.handleAdminLogin(w, r)
			return
		case "refresh":
			s.handleAdminRefresh(w, r)
			return
		case "logout":
			var body struct {
				RefreshToken string `json:"refreshToken"`
			}
			_ = decodeBody(r, &body)
			_ = s.service.Logout(r.Context(), body.RefreshToken)
			writeJSON(w, http.StatusOK, map[string]any{"ok": true})
			return
		}
	}

	if len(parts) == 1 && parts[0] == "granthas" && r.Method == http.MethodGet {
		if _, ok := s.requireSession(w, r); !ok {
			return
		}
		items, err := s.service.AdminListGranthas(r.Context())
		if err != nil {
			writeMappedError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"granthas": items})
		return
	}

	writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
}

func (s *HTTPServer) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
		return
	}
	session, err := s.service.Login(r.Context(), body.Username, body.Password)
	if err != nil {
		writeMappedError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"adminId":      session.AdminID,
		"username":     session.Username,
		"token":        session.Token,
		"refreshToken": session.RefreshToken,
	})
}

func (s *HTTPServer) handleAdminRefresh(w http.ResponseWriter, r *http.Request) {
	var body struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
		return
	}
	session, err := s.service.Refresh(r.Context(), body.RefreshToken)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Refresh token invalid", nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"adminId":      session.AdminID,
		"username":     session.Username,
		"token":        session.Token,
		"refreshToken": session.RefreshToken,
	})
}

// requireSession authenticates admin mutations via the bearer token.
func (s *HTTPServer) requireSession(w http.ResponseWriter, r *http.Request) (Session, bool) {
	token := bearerToken(r)
	if token == "" {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil)
		return Session{}, false
	}
	session, err := s.service.SessionFromToken(token)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil)
		return Session{}, false
	}
	return session, true
}

// --- granthas ---

func (s *HTTPServer) handleGranthas(w http.ResponseWriter, r *http.Request, parts []string) {
	switch {
	case len(parts) == 0 && r.Method == http.MethodGet:
		page := queryInt(r, "page", 1)
		limit := queryInt(r, "limit", 10)
		result, err := s.service.ListGranthas(r.Context(), page, limit)
		if err != nil {
			writeMappedError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)

	case len(parts) == 0 && r.Method == http.MethodPost:
		if _, ok := s.requireSession(w, r); !ok {
			return
		}
		var input GranthaInput
		if err := decodeBody(r, &input); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		item, err := s.service.CreateGrantha(r.Context(), input)
		if err != nil {
			writeMappedError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, item)

	case len(parts) == 1 && parts[0] == "import" && r.Method == http.MethodPost:
		if _, ok := s.requireSession(w, r); !ok {
			return
		}
		s.handleImport(w, r)

	case len(parts) == 1 && r.Method == http.MethodGet:
		item, err := s.service.GetGrantha(r.Context(), parts[0])
		if err != nil {
			writeMappedError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, item)

	case len(parts) == 1 && r.Method == http.MethodPut:
		if _, ok := s.requireSession(w, r); !ok {
			return
		}
		var input GranthaInput
		if err := decodeBody(r, &input); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		item, err := s.service.UpdateGrantha(r.Context(), parts[0], input)
		if err != nil {
			writeMappedError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, item)

	case len(parts) == 1 && r.Method == http.MethodDelete:
		if _, ok := s.requireSession(w, r); !ok {
			return
		}
		if err := s.service.DeleteGrantha(r.Context(), parts[0]); err != nil {
			writeMappedError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})

	case len(parts) == 2 && parts[1] == "export" && r.Method == http.MethodGet:
		format := export.Format(r.URL.Query().Get("format"))
		result, err := s.service.Export(r.Context(), parts[0], format)
		if err != nil {
			writeMappedError(w, err)
			return
		}
		w.Header().Set("Content-Type", result.MimeType)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(result.Data)

	case len(parts) == 2 && parts[1] == "snapshots" && r.Method == http.MethodGet:
		if _, ok := s.requireSession(w, r); !ok {
			return
		}
		history, err := s.service.SnapshotHistory(r.Context(), parts[0])
		if err != nil {
			writeMappedError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"snapshots": history})

	case len(parts) == 3 && parts[1] == "snapshots" && r.Method == http.MethodGet:
		if _, ok := s.requireSession(w, r); !ok {
			return
		}
		payload, err := s.service.SnapshotAt(r.Context(), parts[0], parts[2])
		if err != nil {
			writeMappedError(w, err)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(payload)

	default:
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
	}
}

// handleImport accepts either a multipart upload (field granthaFile) or a
// raw JSON body.
func (s *HTTPServer) handleImport(w http.ResponseWriter, r *http.Request) {
	var payload []byte
	filename := "import.json"

	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		if err := r.ParseMultipartForm(maxImportSize); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", "invalid multipart body", nil)
			return
		}
		file, header, err := r.FormFile("granthaFile")
		if err != nil {
			writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "granthaFile is required", nil)
			return
		}
		defer file.Close()
		payload, err = io.ReadAll(io.LimitReader(file, maxImportSize))
		if err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", "could not read granthaFile", nil)
			return
		}
		if header.Filename != "" {
			filename = header.Filename
		}
	} else {
		defer r.Body.Close()
		var err error
		payload, err = io.ReadAll(io.LimitReader(r.Body, maxImportSize))
		if err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", "could not read body", nil)
			return
		}
	}

	summary, err := s.service.Import(r.Context(), payload, filename)
	if err != nil {
		writeMappedError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, summary)
}

// --- verses ---

func (s *HTTPServer) handleVerses(w http.ResponseWriter, r *http.Request, parts []string) {
	switch {
	case len(parts) == 2 && parts[0] == "grantha" && r.Method == http.MethodGet:
		verses, err := s.service.ListVerses(r.Context(), parts[1])
		if err != nil {
			writeMappedError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"verses": verses})

	case len(parts) == 1 && r.Method == http.MethodGet:
		item, err := s.service.GetVerse(r.Context(), parts[0])
		if err != nil {
			writeMappedError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, item)

	case len(parts) == 0 && r.Method == http.MethodPost:
		if _, ok := s.requireSession(w, r); !ok {
			return
		}
		var body struct {
			GranthaID string `json:"granthaId"`
			VerseInput
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		item, err := s.service.CreateVerse(r.Context(), body.VerseInput, body.GranthaID)
		if err != nil {
			writeMappedError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, item)

	case len(parts) == 1 && r.Method == http.MethodPut:
		if _, ok := s.requireSession(w, r); !ok {
			return
		}
		var input VerseInput
		if err := decodeBody(r, &input); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		item, err := s.service.UpdateVerse(r.Context(), parts[0], input)
		if err != nil {
			writeMappedError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, item)

	case len(parts) == 1 && r.Method == http.MethodDelete:
		if _, ok := s.requireSession(w, r); !ok {
			return
		}
		if err := s.service.DeleteVerse(r.Context(), parts[0]); err != nil {
			writeMappedError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})

	default:
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
	}
}

// --- commentaries ---

func (s *HTTPServer) handleCommentaries(w http.ResponseWriter, r *http.Request, parts []string) {
	switch {
	case len(parts) == 2 && parts[0] == "verse" && r.Method == http.MethodGet:
		forest, err := s.service.VerseCommentaries(r.Context(), parts[1])
		if err != nil {
			writeMappedError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"commentaries": forest})

	case len(parts) == 2 && parts[0] == "grantha" && r.Method == http.MethodGet:
		items, err := s.service.GranthaCommentaries(r.Context(), parts[1])
		if err != nil {
			writeMappedError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"commentaries": items})

	case len(parts) == 1 && r.Method == http.MethodGet:
		item, err := s.service.GetCommentary(r.Context(), parts[0])
		if err != nil {
			writeMappedError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, item)

	case len(parts) == 0 && r.Method == http.MethodPost:
		if _, ok := s.requireSession(w, r); !ok {
			return
		}
		var input CreateCommentaryInput
		if err := decodeBody(r, &input); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		item, err := s.service.CreateCommentary(r.Context(), input)
		if err != nil {
			writeMappedError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, item)

	case len(parts) == 1 && r.Method == http.MethodPut:
		if _, ok := s.requireSession(w, r); !ok {
			return
		}
		var input UpdateCommentaryInput
		if err := decodeBody(r, &input); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		item, err := s.service.UpdateCommentary(r.Context(), parts[0], input)
		if err != nil {
			writeMappedError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, item)

	case len(parts) == 1 && r.Method == http.MethodDelete:
		if _, ok := s.requireSession(w, r); !ok {
			return
		}
		if err := s.service.DeleteCommentary(r.Context(), parts[0]); err != nil {
			writeMappedError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})

	default:
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
	}
}

// --- suggestions ---

func (s *HTTPServer) handleSuggestions(w http.ResponseWriter, r *http.Request, parts []string) {
	switch {
	case len(parts) == 0 && r.Method == http.MethodPost:
		var input SuggestionInput
		if err := decodeBody(r, &input); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		item, err := s.service.CreateSuggestion(r.Context(), input)
		if err != nil {
			writeMappedError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, item)

	case len(parts) == 1 && parts[0] == "pending" && r.Method == http.MethodGet:
		if _, ok := s.requireSession(w, r); !ok {
			return
		}
		items, err := s.service.PendingSuggestions(r.Context())
		if err != nil {
			writeMappedError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"suggestions": items})

	case len(parts) == 2 && r.Method == http.MethodPut && (parts[1] == "approve" || parts[1] == "reject"):
		if _, ok := s.requireSession(w, r); !ok {
			return
		}
		status := "approved"
		if parts[1] == "reject" {
			status = "rejected"
		}
		item, err := s.service.ResolveSuggestion(r.Context(), parts[0], status)
		if err != nil {
			writeMappedError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, item)

	default:
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
	}
}

// --- search ---

func (s *HTTPServer) handleSearch(w http.ResponseWriter, r *http.Request, parts []string) {
	if len(parts) != 1 || parts[0] != "advanced" || r.Method != http.MethodGet {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, s.service.Search(r.URL.Query().Get("q")))
}

// --- middleware and helpers ---

func (s *HTTPServer) withMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = randomRequestID()
		}
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		started := time.Now()
		writer := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		setCORSHeaders(writer.Header(), s.corsOrigin)
		writer.Header().Set("X-Request-ID", requestID)

		next.ServeHTTP(writer, r)

		log.Printf(`{"request_id":"%s","method":"%s","path":"%s","status":%d,"duration_ms":%d}`,
			requestID,
			r.Method,
			r.URL.Path,
			writer.status,
			time.Since(started).Milliseconds(),
		)
	})
}

type requestIDKey struct{}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func randomRequestID() string {
	buf := make([]byte, 8)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

func setCORSHeaders(header http.Header, corsOrigin string) {
	header.Set("Access-Control-Allow-Origin", corsOrigin)
	header.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
	header.Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
	header.Set("Cache-Control", "no-store")
	header.Set("Content-Type", "application/json")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, message string, details any) {
	response := map[string]any{
		"code":  code,
		"error": message,
	}
	if details != nil {
		response["details"] = details
	}
	writeJSON(w, status, response)
}

func writeMappedError(w http.ResponseWriter, err error) {
	status, code, message, details := mapError(err)
	writeError(w, status, code, message, details)
}

func decodeBody(r *http.Request, target any) error {
	if r.Body == nil {
		return nil
	}
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(target); err != nil {
		if errors.Is(err, http.ErrBodyReadAfterClose) {
			return nil
		}
		return fmt.Errorf("invalid JSON body")
	}
	return nil
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

func splitPath(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

func queryInt(r *http.Request, key string, fallback int) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func mapError(err error) (status int, code, message string, details any) {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Status, domainErr.Code, domainErr.Message, domainErr.Details
	}
	if errors.Is(err, sql.ErrNoRows) {
		return http.StatusNotFound, "NOT_FOUND", "Not found", nil
	}
	if errors.Is(err, adminauth.ErrInvalidCredentials) {
		return http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid username or password", nil
	}
	if errors.Is(err, auth.ErrInvalidToken) || errors.Is(err, auth.ErrExpiredToken) {
		return http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil
	}
	return http.StatusInternalServerError, "SERVER_ERROR", "Server error", nil
}
