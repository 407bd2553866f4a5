package api

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/eristoddle/mdquery-sub000/internal/apperr"
	"github.com/eristoddle/mdquery-sub000/internal/queryservice"
)

// Handler holds API route handlers.
type Handler struct {
	svc    *queryservice.Service
	maxAge time.Duration
}

// NewHandler creates a new Handler. maxAge is the advisory cache staleness
// window used by the status endpoint.
func NewHandler(svc *queryservice.Service, maxAge time.Duration) *Handler {
	return &Handler{svc: svc, maxAge: maxAge}
}

// filePath extracts the file path from the URL (everything after /files/).
// Supports encoded slashes from generated clients (e.g. notes%2Ftodo.md).
func filePath(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// ListFiles handles GET /api/files.
func (h *Handler) ListFiles(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	items, total, err := h.svc.ListFiles(r.Context(), limit, offset)
	if err != nil {
		slog.Error("list files failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"files": items,
		"total": total,
	})
}

// GetFile handles GET /api/files/*.
func (h *Handler) GetFile(w http.ResponseWriter, r *http.Request) {
	path := filePath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path required"))
		return
	}
	detail, err := h.svc.GetFile(r.Context(), "/"+strings.TrimPrefix(path, "/"))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("file not indexed"))
			return
		}
		slog.Error("get file failed", slog.String("path", path), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// Search handles GET /api/search.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := q.Get("q")
	if query == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter q required"))
		return
	}
	limit, _ := strconv.Atoi(q.Get("limit"))

	results, err := h.svc.Search(r.Context(), query, limit)
	if err != nil {
		slog.Error("search failed", slog.String("query", query), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"results": results,
		"count":   len(results),
	})
}

// Tags handles GET /api/tags.
func (h *Handler) Tags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.svc.Tags(r.Context())
	if err != nil {
		slog.Error("tags failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"tags": tags,
	})
}

// Status handles GET /api/status.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.Status(r.Context(), h.maxAge)
	if err != nil {
		slog.Error("status failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, report)
}
