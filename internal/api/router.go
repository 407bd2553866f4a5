package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/eristoddle/mdquery-sub000/internal/queryservice"
)

// NewRouter creates a chi router with all read-only query routes mounted.
// authEnabled controls whether Bearer token auth is enforced. sseHandler,
// if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *queryservice.Service, maxAge time.Duration, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc, maxAge)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Get("/files", h.ListFiles)
	r.Get("/files/*", h.GetFile)
	r.Get("/search", h.Search)
	r.Get("/tags", h.Tags)
	r.Get("/status", h.Status)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
