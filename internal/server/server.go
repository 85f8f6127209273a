// Package server exposes the card client over a JSON HTTP API.
package server

import (
	"context"
	"net/http"

	"github.com/Sternrassler/tcg-client/pkg/auth"
	"github.com/Sternrassler/tcg-client/pkg/card"
	"github.com/Sternrassler/tcg-client/pkg/logging"
	"github.com/Sternrassler/tcg-client/pkg/metrics"
	"github.com/Sternrassler/tcg-client/pkg/query"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// CardSource is the read side of the card client.
type CardSource interface {
	Sets(ctx context.Context, forceRefresh bool) ([]card.Set, error)
	Set(ctx context.Context, id string, forceRefresh bool) (*card.Set, error)
	Card(ctx context.Context, id string, forceRefresh bool) (*card.Card, error)
	QuerySetCards(ctx context.Context, setID string, params query.Params, forceRefresh bool) (query.Result, error)
	QuerySearch(ctx context.Context, params query.Params, forceRefresh bool) (query.Result, error)
	ClearCache(ctx context.Context, keys ...string)
}

// Options configure the HTTP front.
type Options struct {
	// JWTSecret verifies bearer tokens on gated routes. Gated routes are not
	// mounted without it.
	JWTSecret string

	// DefaultPageSize applies when a request has no pageSize parameter.
	DefaultPageSize int
}

// Server routes HTTP requests to a CardSource.
type Server struct {
	source CardSource
	opts   Options
	logger zerolog.Logger
}

// New creates a server.
func New(source CardSource, opts Options, logger zerolog.Logger) *Server {
	if opts.DefaultPageSize < 1 {
		opts.DefaultPageSize = query.DefaultPageSize
	}
	return &Server{
		source: source,
		opts:   opts,
		logger: logger,
	}
}

// Router builds the route table.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.recoverer, logging.RequestLogger(s.logger))

	r.HandleFunc("/health", s.health).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/sets", s.listSets).Methods(http.MethodGet)
	api.HandleFunc("/sets/{id}", s.getSet).Methods(http.MethodGet)
	api.HandleFunc("/sets/{id}/cards", s.setCards).Methods(http.MethodGet)
	api.HandleFunc("/cards", s.searchCards).Methods(http.MethodGet)
	api.HandleFunc("/cards/{id}", s.getCard).Methods(http.MethodGet)

	// Clearing flushes the shared cache, so it needs verified tokens.
	if s.opts.JWTSecret != "" {
		gated := api.PathPrefix("/cache").Subrouter()
		gated.Use(auth.Middleware(s.opts.JWTSecret, s.logger))
		gated.HandleFunc("/clear", s.clearCache).Methods(http.MethodPost)
	} else {
		s.logger.Warn().Msg("JWT_SECRET not set, POST /api/cache/clear is disabled")
	}

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "route not found"})
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: "method not allowed"})
	})

	return r
}

// recoverer turns handler panics into 500 responses.
func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error().
					Interface("panic", rec).
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Msg("Panic recovered")
				writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal server error"})
			}
		}()
		next.ServeHTTP(w, r)
	})
}
