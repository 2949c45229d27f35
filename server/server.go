// Package server exposes an archive over the conversation REST API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/felixge/httpsnoop"
	"github.com/gorilla/mux"

	"github.com/dhamidi/convbrowse/conversation"
)

// Paging defaults and bounds.
const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// Error codes carried in the response envelope.
const (
	CodeNotFound   = "NOT_FOUND"
	CodeBadRequest = "VALIDATION_ERROR"
	CodeInternal   = "INTERNAL_ERROR"
	CodeConflict   = "CONFLICT"
)

// Backend is the data the API serves. *archive.DB implements it.
type Backend interface {
	List(ctx context.Context, userID string, page, limit int) (conversation.Page, error)
	Search(ctx context.Context, userID, query string, page, limit int) (conversation.Page, error)
	Get(ctx context.Context, id string) (conversation.Summary, error)
	Delete(ctx context.Context, id string) error
	Messages(ctx context.Context, conversationID string, page, limit int) (conversation.MessagePage, error)
	Tags(ctx context.Context) ([]conversation.Tag, error)
	Tag(ctx context.Context, id string) (conversation.Tag, error)
	CreateTag(ctx context.Context, name, color string) (conversation.Tag, error)
	UpdateTag(ctx context.Context, tag conversation.Tag) (conversation.Tag, error)
	DeleteTag(ctx context.Context, id string) error
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

type paginationInfo struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

type envelope struct {
	Success    bool            `json:"success"`
	Data       any             `json:"data,omitempty"`
	Error      *apiError       `json:"error,omitempty"`
	Pagination *paginationInfo `json:"pagination,omitempty"`
}

func pageInfo(p conversation.Pagination) *paginationInfo {
	return &paginationInfo{Page: p.PageNumber, Limit: p.PageSize, Total: p.TotalCount, TotalPages: p.TotalPages}
}

type server struct {
	backend Backend
}

// New returns the API handler. Routes live under /api/v1.
func New(backend Backend) http.Handler {
	s := &server{backend: backend}

	r := mux.NewRouter()
	r.Use(logRequests)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Methods(http.MethodGet).Path("/conversations").HandlerFunc(s.listConversations)
	api.Methods(http.MethodGet).Path("/conversations/{id}").HandlerFunc(s.getConversation)
	api.Methods(http.MethodDelete).Path("/conversations/{id}").HandlerFunc(s.deleteConversation)
	api.Methods(http.MethodGet).Path("/conversations/{id}/messages").HandlerFunc(s.listMessages)
	api.Methods(http.MethodGet).Path("/search").HandlerFunc(s.search)
	api.Methods(http.MethodGet).Path("/tags").HandlerFunc(s.listTags)
	api.Methods(http.MethodPost).Path("/tags").HandlerFunc(s.createTag)
	api.Methods(http.MethodGet).Path("/tags/{id}").HandlerFunc(s.getTag)
	api.Methods(http.MethodPut).Path("/tags/{id}").HandlerFunc(s.updateTag)
	api.Methods(http.MethodDelete).Path("/tags/{id}").HandlerFunc(s.deleteTag)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, CodeNotFound, "route not found")
	})
	return r
}

func logRequests(handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m := httpsnoop.CaptureMetrics(handler, w, r)
		log.Info("handled", "method", r.Method, "url", r.URL, "duration", m.Duration, "status", m.Code)
	})
}

func (s *server) listConversations(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "user_id is required")
		return
	}
	page, limit := paging(r)

	result, err := s.backend.List(r.Context(), userID, page, limit)
	if err != nil {
		writeBackendError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{
		Success:    true,
		Data:       map[string]any{"conversations": nonNil(result.Items)},
		Pagination: pageInfo(result.Pagination),
	})
}

func (s *server) getConversation(w http.ResponseWriter, r *http.Request) {
	summary, err := s.backend.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeBackendError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: summary})
}

func (s *server) deleteConversation(w http.ResponseWriter, r *http.Request) {
	if err := s.backend.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeBackendError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true})
}

func (s *server) listMessages(w http.ResponseWriter, r *http.Request) {
	page, limit := paging(r)
	result, err := s.backend.Messages(r.Context(), mux.Vars(r)["id"], page, limit)
	if err != nil {
		writeBackendError(w, err)
		return
	}
	messages := result.Items
	if messages == nil {
		messages = []conversation.Message{}
	}
	writeJSON(w, http.StatusOK, envelope{
		Success:    true,
		Data:       map[string]any{"messages": messages},
		Pagination: pageInfo(result.Pagination),
	})
}

func (s *server) search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("q") == "" || q.Get("user_id") == "" {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "q and user_id are required")
		return
	}
	page, limit := paging(r)

	result, err := s.backend.Search(r.Context(), q.Get("user_id"), q.Get("q"), page, limit)
	if err != nil {
		writeBackendError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{
		Success:    true,
		Data:       map[string]any{"conversations": nonNil(result.Items)},
		Pagination: pageInfo(result.Pagination),
	})
}

func (s *server) listTags(w http.ResponseWriter, r *http.Request) {
	tags, err := s.backend.Tags(r.Context())
	if err != nil {
		writeBackendError(w, err)
		return
	}
	if tags == nil {
		tags = []conversation.Tag{}
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: map[string]any{"tags": tags}})
}

type tagRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

func decodeTag(w http.ResponseWriter, r *http.Request) (tagRequest, bool) {
	var req tagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "invalid JSON body")
		return req, false
	}
	return req, true
}

func (s *server) getTag(w http.ResponseWriter, r *http.Request) {
	tag, err := s.backend.Tag(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeBackendError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: map[string]any{"tag": tag}})
}

func (s *server) createTag(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeTag(w, r)
	if !ok {
		return
	}
	tag, err := s.backend.CreateTag(r.Context(), req.Name, req.Color)
	if err != nil {
		writeBackendError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, envelope{Success: true, Data: map[string]any{"tag": tag}})
}

func (s *server) updateTag(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeTag(w, r)
	if !ok {
		return
	}
	tag, err := s.backend.UpdateTag(r.Context(), conversation.Tag{ID: mux.Vars(r)["id"], Name: req.Name, Color: req.Color})
	if err != nil {
		writeBackendError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: map[string]any{"tag": tag}})
}

func (s *server) deleteTag(w http.ResponseWriter, r *http.Request) {
	if err := s.backend.DeleteTag(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeBackendError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true})
}

// paging reads page and limit, applying defaults and the limit cap.
func paging(r *http.Request) (page, limit int) {
	q := r.URL.Query()
	page, err := strconv.Atoi(q.Get("page"))
	if err != nil || page < 1 {
		page = DefaultPage
	}
	limit, err = strconv.Atoi(q.Get("limit"))
	if err != nil || limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return page, limit
}

func nonNil(items []conversation.Summary) []conversation.Summary {
	if items == nil {
		return []conversation.Summary{}
	}
	return items
}

func writeBackendError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, conversation.ErrConversationNotFound):
		writeError(w, http.StatusNotFound, CodeNotFound, "conversation not found")
		return
	case errors.Is(err, conversation.ErrTagNotFound):
		writeError(w, http.StatusNotFound, CodeNotFound, "tag not found")
		return
	case errors.Is(err, conversation.ErrTagExists):
		writeError(w, http.StatusConflict, CodeConflict, "tag name already in use")
		return
	case errors.Is(err, conversation.ErrTagName):
		writeError(w, http.StatusBadRequest, CodeBadRequest, "name is required")
		return
	}
	log.Error("server: backend failed", "err", err)
	writeError(w, http.StatusInternalServerError, CodeInternal, "internal server error")
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, envelope{Error: &apiError{Code: code, Message: message}})
}

func writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error("server: failed to write response", "err", err)
	}
}
