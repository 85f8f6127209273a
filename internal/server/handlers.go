package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/Sternrassler/tcg-client/pkg/auth"
	"github.com/Sternrassler/tcg-client/pkg/client"
	"github.com/Sternrassler/tcg-client/pkg/query"
	"github.com/gorilla/mux"
)

type errorBody struct {
	Error string `json:"error"`
}

type clearRequest struct {
	Keys []string `json:"keys"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GET /api/sets
func (s *Server) listSets(w http.ResponseWriter, r *http.Request) {
	sets, err := s.source.Sets(r.Context(), refresh(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": sets})
}

// GET /api/sets/{id}
func (s *Server) getSet(w http.ResponseWriter, r *http.Request) {
	set, err := s.source.Set(r.Context(), mux.Vars(r)["id"], refresh(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": set})
}

// GET /api/sets/{id}/cards?q=&type=&sort=&page=&pageSize=&refresh=
func (s *Server) setCards(w http.ResponseWriter, r *http.Request) {
	result, err := s.source.QuerySetCards(r.Context(), mux.Vars(r)["id"], s.queryParams(r), refresh(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// GET /api/cards?q=&type=&sort=&page=&pageSize=&refresh=
func (s *Server) searchCards(w http.ResponseWriter, r *http.Request) {
	params := s.queryParams(r)
	if params.SearchTerm == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "query parameter q is required"})
		return
	}

	result, err := s.source.QuerySearch(r.Context(), params, refresh(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// GET /api/cards/{id}
func (s *Server) getCard(w http.ResponseWriter, r *http.Request) {
	c, err := s.source.Card(r.Context(), mux.Vars(r)["id"], refresh(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": c})
}

// POST /api/cache/clear with optional body {"keys": [...]}
func (s *Server) clearCache(w http.ResponseWriter, r *http.Request) {
	var req clearRequest
	if r.Body != nil {
		err := json.NewDecoder(io.LimitReader(r.Body, 1<<16)).Decode(&req)
		if err != nil && !errors.Is(err, io.EOF) {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
			return
		}
	}

	s.source.ClearCache(r.Context(), req.Keys...)

	subject, _ := auth.SubjectFromContext(r.Context())
	s.logger.Info().
		Str("subject", subject).
		Int("keys", len(req.Keys)).
		Msg("Cache clear requested")
	w.WriteHeader(http.StatusNoContent)
}

// queryParams reads the card query parameters of a request.
func (s *Server) queryParams(r *http.Request) query.Params {
	values := r.URL.Query()

	params := query.Params{
		SearchTerm: strings.TrimSpace(values.Get("q")),
		CardType:   values.Get("type"),
		SortKey:    query.ParseSortKey(values.Get("sort")),
		Page:       1,
		PageSize:   s.opts.DefaultPageSize,
	}
	if page, err := strconv.Atoi(values.Get("page")); err == nil {
		params.Page = page
	}
	if size, err := strconv.Atoi(values.Get("pageSize")); err == nil {
		params.PageSize = size
	}
	return params
}

func refresh(r *http.Request) bool {
	v, _ := strconv.ParseBool(r.URL.Query().Get("refresh"))
	return v
}

// writeError maps client errors to HTTP status codes.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusBadGateway
	message := "card data unavailable"

	switch {
	case client.IsNotFound(err):
		status, message = http.StatusNotFound, "not found"
	case errors.Is(err, client.ErrEmptySearchTerm):
		status, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, client.ErrRateLimitCritical):
		status, message = http.StatusServiceUnavailable, "card API quota exhausted, retry later"
	case errors.Is(err, context.Canceled):
		// Client went away; nothing useful can be written.
		return
	}

	event := s.logger.Warn()
	if status >= 500 {
		event = s.logger.Error()
	}
	event.Err(err).
		Str("path", r.URL.Path).
		Int("status", status).
		Msg("Request failed")

	writeJSON(w, status, errorBody{Error: message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
