package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"paperchat/internal/auth"
	"paperchat/internal/citations"
	"paperchat/internal/config"
	"paperchat/internal/ingest"
	"paperchat/internal/models"
	"paperchat/internal/service"
	"paperchat/internal/storage"
	"paperchat/internal/util"
)

const (
	sessionCookie = "session_id"
	stateCookie   = "oauth_state"

	// Reply returned by POST /chat when the user has no documents; the
	// model is not called in that case.
	noDocumentsReply = "Please upload at least one PDF document before asking questions."
)

type Server struct {
	cfg      config.Config
	store    storage.Store
	sessions auth.SessionStore
	oauth    *auth.OAuth
	svc      *service.Service
}

func NewServer(cfg config.Config, store storage.Store, sessions auth.SessionStore, oauth *auth.OAuth, svc *service.Service) *Server {
	return &Server{
		cfg:      cfg,
		store:    store,
		sessions: sessions,
		oauth:    oauth,
		svc:      svc,
	}
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.HandleFunc("/auth/login", s.handleLogin)
	mux.HandleFunc("/auth/callback", s.handleCallback)
	mux.HandleFunc("/auth/register", s.handleRegister)
	mux.HandleFunc("/auth/logout", s.handleLogout)
	mux.HandleFunc("/me", s.handleMe)
	mux.HandleFunc("/documents", s.handleDocuments)
	mux.HandleFunc("/documents/", s.handleDocumentScoped)
	mux.HandleFunc("/chat", s.handleChat)
	mux.HandleFunc("/chat/clear", s.handleChatClear)
	return withCORS(mux)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// requireUser resolves the session cookie to a registered user. On failure
// it writes the 401 envelope and reports false.
func (s *Server) requireUser(w http.ResponseWriter, r *http.Request) (models.User, bool) {
	c, err := r.Cookie(sessionCookie)
	if err != nil || c.Value == "" {
		writeErr(w, http.StatusUnauthorized, fmt.Errorf("not authenticated"))
		return models.User{}, false
	}
	sess, ok := s.sessions.Get(c.Value)
	if !ok || sess.Pending {
		writeErr(w, http.StatusUnauthorized, fmt.Errorf("not authenticated"))
		return models.User{}, false
	}
	u, err := s.store.GetUserByID(r.Context(), sess.UserID)
	if err != nil {
		writeErr(w, http.StatusUnauthorized, fmt.Errorf("not authenticated"))
		return models.User{}, false
	}
	return u, true
}

func (s *Server) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   s.cfg.SessionTTLMinutes * 60,
	})
}

func clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	if !s.oauth.Configured() {
		writeErr(w, http.StatusInternalServerError, fmt.Errorf("google login is not configured"))
		return
	}
	state := auth.NewToken()
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   600,
	})
	http.Redirect(w, r, s.oauth.LoginURL(state), http.StatusFound)
}

func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	code := r.URL.Query().Get("code")
	if code == "" {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("no code provided"))
		return
	}
	stateC, err := r.Cookie(stateCookie)
	if err != nil || stateC.Value == "" || stateC.Value != r.URL.Query().Get("state") {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("state mismatch"))
		return
	}
	clearCookie(w, stateCookie)

	gu, err := s.oauth.Exchange(r.Context(), code)
	if err != nil {
		writeErr(w, http.StatusBadGateway, fmt.Errorf("google login failed: %w", err))
		return
	}

	token := auth.NewToken()
	u, err := s.store.GetUserByGoogleID(r.Context(), gu.Sub)
	switch {
	case err == nil:
		s.sessions.Put(token, auth.Session{UserID: u.ID})
		s.setSessionCookie(w, token)
		http.Redirect(w, r, "/", http.StatusFound)
	case errors.Is(err, util.ErrNotFound):
		// First login: hold the Google identity until registration.
		s.sessions.Put(token, auth.Session{Pending: true, Google: gu})
		s.setSessionCookie(w, token)
		writeJSON(w, http.StatusOK, map[string]any{
			"registration_required": true,
			"email":                 gu.Email,
			"name":                  gu.Name,
		})
	default:
		writeErr(w, http.StatusInternalServerError, err)
	}
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	c, err := r.Cookie(sessionCookie)
	if err != nil || c.Value == "" {
		writeErr(w, http.StatusUnauthorized, fmt.Errorf("not authenticated"))
		return
	}
	sess, ok := s.sessions.Get(c.Value)
	if !ok {
		writeErr(w, http.StatusUnauthorized, fmt.Errorf("not authenticated"))
		return
	}
	if !sess.Pending {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("not in registration flow"))
		return
	}

	var req struct {
		Name              string `json:"name"`
		Username          string `json:"username"`
		Organization      string `json:"organization"`
		ResearchInterests string `json:"research_interests"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("invalid json: %w", err))
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Username = strings.TrimSpace(req.Username)
	req.Organization = strings.TrimSpace(req.Organization)
	if req.Name == "" {
		req.Name = sess.Google.Name
	}
	if req.Name == "" || req.Username == "" || req.Organization == "" {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("name, username, and organization are required"))
		return
	}

	u, err := s.store.CreateUser(r.Context(), models.User{
		GoogleID:          sess.Google.Sub,
		Email:             sess.Google.Email,
		Name:              req.Name,
		Username:          req.Username,
		Organization:      req.Organization,
		ResearchInterests: strings.TrimSpace(req.ResearchInterests),
	})
	if errors.Is(err, util.ErrUsernameTaken) {
		writeErr(w, http.StatusConflict, err)
		return
	}
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}

	s.sessions.Put(c.Value, auth.Session{UserID: u.ID})
	writeJSON(w, http.StatusCreated, map[string]any{"user": u})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	if c, err := r.Cookie(sessionCookie); err == nil && c.Value != "" {
		s.sessions.Delete(c.Value)
	}
	clearCookie(w, sessionCookie)
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	u, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	stats, err := s.store.UserStats(r.Context(), u.ID)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": u, "stats": stats})
}

func (s *Server) handleDocuments(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		u, ok := s.requireUser(w, r)
		if !ok {
			return
		}
		docs, err := s.store.ListDocuments(r.Context(), u.ID)
		if err != nil {
			writeErr(w, http.StatusInternalServerError, err)
			return
		}
		type docSummary struct {
			ID         int64     `json:"id"`
			Filename   string    `json:"filename"`
			Pages      int       `json:"pages"`
			Summary    string    `json:"summary"`
			UploadedAt time.Time `json:"uploaded_at"`
		}
		out := make([]docSummary, 0, len(docs))
		for _, d := range docs {
			out = append(out, docSummary{
				ID:         d.ID,
				Filename:   d.Filename,
				Pages:      d.Pages,
				Summary:    util.Snippet(d.Summary, 200),
				UploadedAt: d.UploadedAt,
			})
		}
		writeJSON(w, http.StatusOK, map[string]any{"documents": out})
	case http.MethodPost:
		s.handleUpload(w, r)
	default:
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
	}
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	u, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	if err := r.ParseMultipartForm(128 << 20); err != nil {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("parse multipart: %w", err))
		return
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		if single, ok := firstSingleFile(r.MultipartForm.File); ok {
			files = append(files, single)
		}
	}
	if len(files) == 0 {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("no files provided"))
		return
	}

	current, err := s.store.ListDocuments(r.Context(), u.ID)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	if len(current)+len(files) > s.cfg.MaxDocuments {
		writeErr(w, http.StatusBadRequest, fmt.Errorf(
			"Maximum %d PDFs allowed. You have %d PDFs. Please delete some before uploading more.",
			s.cfg.MaxDocuments, len(current)))
		return
	}

	type uploadResult struct {
		Filename string `json:"filename"`
		ID       int64  `json:"id,omitempty"`
		Pages    int    `json:"pages,omitempty"`
		Chunks   int    `json:"chunks,omitempty"`
		Error    string `json:"error,omitempty"`
	}
	out := make([]uploadResult, 0, len(files))

	// One bad file never blocks the rest of the batch.
	for _, fh := range files {
		res := uploadResult{Filename: fh.Filename}
		if !strings.HasSuffix(strings.ToLower(fh.Filename), ".pdf") {
			res.Error = "only PDF files are supported"
			out = append(out, res)
			continue
		}
		f, err := fh.Open()
		if err != nil {
			res.Error = "could not read upload"
			out = append(out, res)
			continue
		}
		text, pages, err := ingest.ExtractText(f, fh.Size)
		f.Close()
		if err != nil {
			log.Printf("extract %s: %v", fh.Filename, err)
			if errors.Is(err, util.ErrNoExtractableText) {
				res.Error = util.ErrNoExtractableText.Error()
			} else {
				res.Error = "failed to process PDF"
			}
			out = append(out, res)
			continue
		}

		name := ingest.DocName(fh.Filename)
		chunks, summary := s.svc.IngestDocument(r.Context(), text, name)
		doc, err := s.store.AddDocument(r.Context(), models.Document{
			UserID:   u.ID,
			Filename: name,
			Text:     text,
			Pages:    pages,
			Chunks:   chunks,
			Summary:  summary,
		})
		if err != nil {
			writeErr(w, http.StatusInternalServerError, err)
			return
		}
		res.ID = doc.ID
		res.Pages = doc.Pages
		res.Chunks = doc.Chunks
		out = append(out, res)
	}

	writeJSON(w, http.StatusOK, map[string]any{"uploaded": out})
}

func (s *Server) handleDocumentScoped(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(strings.TrimPrefix(r.URL.Path, "/documents/"), "/"), "/")
	if len(parts) != 1 || parts[0] == "" {
		writeErr(w, http.StatusNotFound, fmt.Errorf("not found"))
		return
	}
	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		writeErr(w, http.StatusNotFound, fmt.Errorf("not found"))
		return
	}
	if r.Method != http.MethodDelete {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	u, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	doc, err := s.store.GetDocument(r.Context(), id)
	if errors.Is(err, util.ErrNotFound) || (err == nil && doc.UserID != u.ID) {
		writeErr(w, http.StatusNotFound, fmt.Errorf("not found"))
		return
	}
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	if err := s.store.DeleteDocument(r.Context(), id); err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		u, ok := s.requireUser(w, r)
		if !ok {
			return
		}
		msgs, err := s.store.ListMessages(r.Context(), u.ID, s.cfg.ChatHistoryLimit)
		if err != nil {
			writeErr(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"messages": msgs})
	case http.MethodPost:
		s.handleChatMessage(w, r)
	default:
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
	}
}

func (s *Server) handleChatMessage(w http.ResponseWriter, r *http.Request) {
	u, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	var req struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("invalid json: %w", err))
		return
	}
	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("message is required"))
		return
	}

	docs, err := s.store.ListDocuments(r.Context(), u.ID)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}

	var answerText, citationsBlock string
	if len(docs) == 0 {
		answerText = noDocumentsReply
	} else {
		answerText, citationsBlock = s.svc.AnswerQuery(r.Context(), req.Message, docs)
	}

	// Both sides of the exchange are persisted, fallback replies included.
	if err := s.store.AddMessage(r.Context(), models.ChatMessage{UserID: u.ID, Role: "user", Content: req.Message}); err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	if err := s.store.AddMessage(r.Context(), models.ChatMessage{UserID: u.ID, Role: "assistant", Content: answerText, Citations: citationsBlock}); err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"answer":             answerText,
		"citations":          citationsBlock,
		"sources_referenced": citations.SourceMarkers(answerText),
	})
}

func (s *Server) handleChatClear(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	u, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	if err := s.store.ClearMessages(r.Context(), u.ID); err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	docs, err := s.store.ListDocuments(r.Context(), u.ID)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	for _, d := range docs {
		if err := s.store.DeleteDocument(r.Context(), d.ID); err != nil {
			writeErr(w, http.StatusInternalServerError, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func firstSingleFile(m map[string][]*multipart.FileHeader) (*multipart.FileHeader, bool) {
	for _, v := range m {
		if len(v) > 0 {
			return v[0], true
		}
	}
	return nil, false
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, err error) {
	apiErr := toAPIError(code, err)
	writeJSON(w, code, map[string]any{
		"error": map[string]any{
			"code":    apiErr.Code,
			"message": apiErr.Message,
		},
	})
}

type apiError struct {
	Code    string
	Message string
}

func toAPIError(status int, err error) apiError {
	msg := "Request failed."
	code := "PC-API-4000"
	raw := ""
	if err != nil {
		raw = strings.ToLower(err.Error())
	}

	switch {
	// 502 is reserved for upstream (Google, LLM) failures; keep it out of
	// the generic 5xx classification below.
	case status == http.StatusBadGateway:
		code = "PC-API-5020"
		msg = "Upstream provider unavailable. Retry shortly."
	case status >= 500:
		switch {
		case strings.Contains(raw, "relation") && strings.Contains(raw, "does not exist"):
			return apiError{
				Code:    "PC-DB-5001",
				Message: "Database schema is not initialized. Restart the service and retry.",
			}
		case strings.Contains(raw, "connect"), strings.Contains(raw, "dial tcp"), strings.Contains(raw, "connection refused"):
			return apiError{
				Code:    "PC-DB-5002",
				Message: "Database connection is unavailable. Check local services and retry.",
			}
		case strings.Contains(raw, "google login is not configured"):
			return apiError{
				Code:    "PC-API-5003",
				Message: "Google login is not configured on this server.",
			}
		default:
			return apiError{
				Code:    "PC-API-5000",
				Message: "Internal server error. Please retry or check service logs.",
			}
		}
	case status == http.StatusBadRequest:
		code = "PC-API-4001"
		msg = "Invalid request. Check inputs and retry."
	case status == http.StatusUnauthorized:
		code = "PC-API-4010"
		msg = "Authentication required. Sign in and retry."
	case status == http.StatusNotFound:
		code = "PC-API-4004"
		msg = "Requested resource was not found."
	case status == http.StatusConflict:
		code = "PC-API-4009"
		msg = "Operation conflicts with current state. Retry after checking status."
	case status == http.StatusMethodNotAllowed:
		code = "PC-API-4005"
		msg = "This endpoint does not support the requested method."
	}

	// For 4xx, keep user-safe validation context only.
	if status >= 400 && status < 500 && err != nil {
		low := strings.ToLower(err.Error())
		switch {
		case strings.Contains(low, "maximum ") && strings.Contains(low, "pdfs allowed"):
			msg = err.Error()
		case strings.Contains(low, "username already exists"):
			msg = "Username already exists. Choose another."
		case strings.Contains(low, "message is required"):
			msg = "A question is required."
		case strings.Contains(low, "no files provided"):
			msg = "No PDF files were provided."
		case strings.Contains(low, "invalid json"):
			msg = "Malformed JSON request body."
		case strings.Contains(low, "no code provided"):
			msg = "Google login did not return a code."
		case strings.Contains(low, "state mismatch"):
			msg = "Login state did not match. Restart sign-in."
		case strings.Contains(low, "not in registration flow"):
			msg = "No registration is in progress for this session."
		case strings.Contains(low, "name, username, and organization are required"):
			msg = "Name, username, and organization are required."
		}
	}

	return apiError{Code: code, Message: msg}
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,DELETE,OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
