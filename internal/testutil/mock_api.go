// Package testutil provides testing utilities for the card API client.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Sternrassler/tcg-client/pkg/card"
)

// MockResponse defines the behavior for a mock endpoint response.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockAPI is a configurable mock card API server for testing.
// Without custom handlers it serves the configured sets and cards with the
// real API's paging envelope and a subset of its query syntax.
type MockAPI struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]func(w http.ResponseWriter, r *http.Request)

	sets  []card.Set
	cards []card.Card

	// failures are served, in order, before normal handling resumes.
	failures []MockResponse

	// Quota headers sent with every default response.
	Remaining int
	ResetSecs int

	// Tracking
	RequestCount      int
	LastRequestHeader http.Header
	Paths             []string
}

// NewMockAPI creates a new mock card API server.
func NewMockAPI() *MockAPI {
	mock := &MockAPI{
		handlers:  make(map[string]func(w http.ResponseWriter, r *http.Request)),
		Remaining: 1000,
		ResetSecs: 60,
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.RequestCount++
		mock.LastRequestHeader = r.Header.Clone()
		mock.Paths = append(mock.Paths, r.URL.RequestURI())

		var failure *MockResponse
		if len(mock.failures) > 0 {
			f := mock.failures[0]
			mock.failures = mock.failures[1:]
			failure = &f
		}
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.Unlock()

		if failure != nil {
			writeResponse(w, *failure)
			return
		}

		if exists {
			handler(w, r)
			return
		}

		mock.defaultHandler(w, r)
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockAPI) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockAPI) Close() {
	m.server.Close()
}

// Reset clears all tracking counters.
func (m *MockAPI) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCount = 0
	m.LastRequestHeader = nil
	m.Paths = nil
}

// SetHandler sets a custom handler for a specific path.
func (m *MockAPI) SetHandler(path string, handler func(w http.ResponseWriter, r *http.Request)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a simple response for a path.
func (m *MockAPI) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		writeResponse(w, resp)
	})
}

// SetData replaces the sets and cards the default handler serves.
func (m *MockAPI) SetData(sets []card.Set, cards []card.Card) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets = sets
	m.cards = cards
}

// FailNext makes the next len(responses) requests return the given responses.
func (m *MockAPI) FailNext(responses ...MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures = append(m.failures, responses...)
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockAPI) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestCount
}

// GetLastRequestHeader returns the headers of the most recent request.
func (m *MockAPI) GetLastRequestHeader() http.Header {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.LastRequestHeader
}

// GetPaths returns the request URIs received so far.
func (m *MockAPI) GetPaths() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.Paths...)
}

func writeResponse(w http.ResponseWriter, resp MockResponse) {
	if resp.Delay > 0 {
		time.Sleep(resp.Delay)
	}

	for key, value := range resp.Headers {
		w.Header().Set(key, value)
	}

	w.WriteHeader(resp.StatusCode)
	if resp.Body != "" {
		w.Write([]byte(resp.Body))
	}
}

// defaultHandler serves /sets, /sets/{id}, /cards and /cards/{id}.
func (m *MockAPI) defaultHandler(w http.ResponseWriter, r *http.Request) {
	m.mu.RLock()
	sets := m.sets
	cards := m.cards
	remaining, reset := m.Remaining, m.ResetSecs
	m.mu.RUnlock()

	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.Itoa(reset))
	w.Header().Set("Content-Type", "application/json; charset=utf-8")

	segments := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	switch {
	case len(segments) == 1 && segments[0] == "sets":
		writeList(w, r, sets)
	case len(segments) == 2 && segments[0] == "sets":
		for _, s := range sets {
			if s.ID == segments[1] {
				writeJSON(w, http.StatusOK, card.ItemResponse[card.Set]{Data: s})
				return
			}
		}
		writeNotFound(w)
	case len(segments) == 1 && segments[0] == "cards":
		writeList(w, r, filterCards(cards, r.URL.Query().Get("q")))
	case len(segments) == 2 && segments[0] == "cards":
		for _, c := range cards {
			if c.ID == segments[1] {
				writeJSON(w, http.StatusOK, card.ItemResponse[card.Card]{Data: c})
				return
			}
		}
		writeNotFound(w)
	default:
		writeNotFound(w)
	}
}

// filterCards applies the set.id:, number: and name:"*...*" query forms.
func filterCards(cards []card.Card, q string) []card.Card {
	if q == "" {
		return cards
	}

	var match func(card.Card) bool
	switch {
	case strings.HasPrefix(q, "set.id:"):
		id := unescape(strings.TrimPrefix(q, "set.id:"))
		match = func(c card.Card) bool { return c.Set != nil && c.Set.ID == id }
	case strings.HasPrefix(q, "number:"):
		number := strings.TrimPrefix(q, "number:")
		match = func(c card.Card) bool { return strings.Contains(c.Number, number) }
	case strings.HasPrefix(q, "name:"):
		name := strings.TrimPrefix(q, "name:")
		name = strings.TrimSuffix(strings.TrimPrefix(name, `"*`), `*"`)
		name = strings.ToLower(unescape(name))
		match = func(c card.Card) bool { return strings.Contains(strings.ToLower(c.Name), name) }
	default:
		return nil
	}

	out := []card.Card{}
	for _, c := range cards {
		if match(c) {
			out = append(out, c)
		}
	}
	return out
}

func unescape(s string) string {
	var b strings.Builder
	escaped := false
	for _, r := range s {
		if r == '\\' && !escaped {
			escaped = true
			continue
		}
		escaped = false
		b.WriteRune(r)
	}
	return b.String()
}

func writeList[T any](w http.ResponseWriter, r *http.Request, items []T) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))
	if pageSize < 1 {
		pageSize = 250
	}

	start := (page - 1) * pageSize
	if start > len(items) {
		start = len(items)
	}
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}
	data := items[start:end]
	if data == nil {
		data = []T{}
	}

	writeJSON(w, http.StatusOK, card.ListResponse[T]{
		Data:       data,
		Page:       page,
		PageSize:   pageSize,
		Count:      len(data),
		TotalCount: len(items),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeNotFound(w http.ResponseWriter) {
	writeJSON(w, http.StatusNotFound, map[string]any{
		"error": map[string]any{"message": "Not Found", "code": http.StatusNotFound},
	})
}

// NewHealthyResponse creates a standard 200 OK response with quota headers.
func NewHealthyResponse(data string) MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       data,
		Headers: map[string]string{
			"X-RateLimit-Remaining": "1000",
			"X-RateLimit-Reset":     "60",
			"Content-Type":          "application/json; charset=utf-8",
		},
	}
}

// NewRateLimitResponse creates a 429 Too Many Requests response.
func NewRateLimitResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusTooManyRequests,
		Body:       `{"error": {"message": "Rate limit exceeded", "code": 429}}`,
		Headers: map[string]string{
			"X-RateLimit-Remaining": "0",
			"X-RateLimit-Reset":     "30",
			"Content-Type":          "application/json; charset=utf-8",
		},
	}
}

// NewServerErrorResponse creates a 500 Internal Server Error response.
func NewServerErrorResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       `{"error": {"message": "Internal server error", "code": 500}}`,
		Headers: map[string]string{
			"Content-Type": "application/json; charset=utf-8",
		},
	}
}

// NewNotFoundResponse creates a 404 Not Found response.
func NewNotFoundResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusNotFound,
		Body:       `{"error": {"message": "Not Found", "code": 404}}`,
		Headers: map[string]string{
			"Content-Type": "application/json; charset=utf-8",
		},
	}
}
