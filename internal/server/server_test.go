package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingModule struct{}

func (pingModule) RegisterRoutes(r chi.Router) {
	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("pong"))
	})
}

type panicModule struct{}

func (panicModule) RegisterRoutes(r chi.Router) {
	r.Get("/panic", func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})
}

func newTestServer(cfg Config) *Server {
	cfg.Log = zerolog.New(nil).Level(zerolog.Disabled)
	cfg.DevMode = true
	return New(cfg)
}

func TestServer_Health(t *testing.T) {
	s := newTestServer(Config{Port: 8080})

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var response map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "healthy", response["status"])
	assert.Equal(t, "folio", response["service"])
}

func TestServer_MountsModules(t *testing.T) {
	s := newTestServer(Config{
		Modules:   []RouteRegistrar{pingModule{}},
		Streaming: []RouteRegistrar{panicModule{}},
	})

	req := httptest.NewRequest("GET", "/api/ping", nil)
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())

	req = httptest.NewRequest("GET", "/api/panic", nil)
	w = httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestServer_CORS(t *testing.T) {
	s := newTestServer(Config{
		AllowOrigins: []string{"https://folio.example"},
		Modules:      []RouteRegistrar{pingModule{}},
	})

	req := httptest.NewRequest("OPTIONS", "/api/ping", nil)
	req.Header.Set("Origin", "https://folio.example")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)

	assert.Equal(t, "https://folio.example", w.Header().Get("Access-Control-Allow-Origin"))
}
