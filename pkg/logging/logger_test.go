package logging

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    zerolog.Level
		wantErr bool
	}{
		{"debug", zerolog.DebugLevel, false},
		{"info", zerolog.InfoLevel, false},
		{"warn", zerolog.WarnLevel, false},
		{"WARNING", zerolog.WarnLevel, false},
		{" Error ", zerolog.ErrorLevel, false},
		{"", zerolog.InfoLevel, false},
		{"verbose", zerolog.InfoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestSetup_LevelFiltering(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := Setup(Config{Level: "warn", Output: buf})

	logger.Debug().Msg("cache hit")
	logger.Info().Msg("cache cleared")
	logger.Warn().Msg("serving stale value")
	logger.Error().Msg("retries exhausted")

	out := buf.String()
	for _, hidden := range []string{"cache hit", "cache cleared"} {
		if strings.Contains(out, hidden) {
			t.Errorf("%q should be filtered at warn level", hidden)
		}
	}
	for _, shown := range []string{"serving stale value", "retries exhausted"} {
		if !strings.Contains(out, shown) {
			t.Errorf("%q missing at warn level, got %q", shown, out)
		}
	}
}

func TestSetup_ServiceAndComponent(t *testing.T) {
	buf := &bytes.Buffer{}
	Setup(Config{Level: "info", Output: buf, Service: "tcg-proxy"})

	logger := NewLogger("cache")
	logger.Info().Str("key", "tcg:sets").Msg("Cache cleared")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("log line is not JSON: %v (%q)", err, buf.String())
	}
	want := map[string]string{
		"service":   "tcg-proxy",
		"component": "cache",
		"key":       "tcg:sets",
		"message":   "Cache cleared",
		"level":     "info",
	}
	for k, v := range want {
		if line[k] != v {
			t.Errorf("%s = %v, want %q", k, line[k], v)
		}
	}
	if _, ok := line["time"]; !ok {
		t.Error("expected a timestamp")
	}
}

func TestSetup_UnknownLevelWarns(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := Setup(Config{Level: "verbose", Output: buf})

	if !strings.Contains(buf.String(), `unknown log level \"verbose\"`) {
		t.Errorf("expected a fallback warning, got %q", buf.String())
	}

	buf.Reset()
	logger.Debug().Msg("hidden")
	logger.Info().Msg("shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Errorf("expected info level after fallback, got %q", buf.String())
	}
}

func TestSetup_Pretty(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := Setup(Config{Level: "info", Pretty: true, Output: buf})

	logger.Info().Msg("Starting card proxy")

	out := buf.String()
	if strings.HasPrefix(out, "{") {
		t.Errorf("pretty output should not be JSON, got %q", out)
	}
	if !strings.Contains(out, "Starting card proxy") {
		t.Errorf("missing message, got %q", out)
	}
}

func TestSetup_NilOutputDefaultsToStderr(t *testing.T) {
	logger := Setup(Config{Level: "error"})
	logger.Debug().Msg("discarded")
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Level != "info" || cfg.Pretty || cfg.Service != "tcg-proxy" {
		t.Errorf("DefaultConfig() = %+v", cfg)
	}
}

func TestRequestLogger(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		level      string
		wantLogged bool
		wantLevel  string
	}{
		{name: "success hidden at info", status: http.StatusOK, level: "info", wantLogged: false},
		{name: "success shown at debug", status: http.StatusOK, level: "debug", wantLogged: true, wantLevel: `"level":"debug"`},
		{name: "client error", status: http.StatusNotFound, level: "info", wantLogged: true, wantLevel: `"level":"warn"`},
		{name: "server error", status: http.StatusBadGateway, level: "info", wantLogged: true, wantLevel: `"level":"error"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			logger := Setup(Config{Level: tt.level, Output: buf})

			handler := RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte("body"))
			}))

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sets", nil))

			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}

			output := buf.String()
			if !tt.wantLogged {
				if output != "" {
					t.Errorf("expected no log line, got %q", output)
				}
				return
			}
			if !strings.Contains(output, `"path":"/api/sets"`) {
				t.Errorf("expected path in log line, got %q", output)
			}
			if !strings.Contains(output, tt.wantLevel) {
				t.Errorf("expected %s in log line, got %q", tt.wantLevel, output)
			}
			if !strings.Contains(output, `"bytes":4`) {
				t.Errorf("expected response size in log line, got %q", output)
			}
		})
	}
}

func TestRequestLogger_ImplicitOK(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := Setup(Config{Level: "debug", Output: buf})

	handler := RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	if !strings.Contains(buf.String(), `"status":200`) {
		t.Errorf("expected status 200 in log line, got %q", buf.String())
	}
}
