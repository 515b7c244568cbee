package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/aristath/folio/internal/database"
	"github.com/aristath/folio/internal/scheduler"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockJobRunner is a mock implementation of JobRunner
type MockJobRunner struct {
	mock.Mock
	wg sync.WaitGroup
}

func (m *MockJobRunner) Trigger(name string) error {
	defer m.wg.Done()
	args := m.Called(name)
	return args.Error(0)
}

func (m *MockJobRunner) Has(name string) bool {
	args := m.Called(name)
	return args.Bool(0)
}

func (m *MockJobRunner) Status() []scheduler.JobStatus {
	args := m.Called()
	return args.Get(0).([]scheduler.JobStatus)
}

type fixedSessions int

func (f fixedSessions) Len() int { return int(f) }

func newTestDB(t *testing.T, dir, name string, profile database.DatabaseProfile) *database.DB {
	t.Helper()
	db, err := database.New(database.Config{
		Path:    filepath.Join(dir, name+".db"),
		Profile: profile,
		Name:    name,
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate())
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newSystemRouter(h *SystemHandlers) http.Handler {
	r := chi.NewRouter()
	r.Route("/api", h.RegisterRoutes)
	return r
}

func TestSystemHandlers_HandleSystemStatus(t *testing.T) {
	log := zerolog.New(nil).Level(zerolog.Disabled)
	dir := t.TempDir()
	pricesDB := newTestDB(t, dir, "prices", database.ProfileStandard)
	cacheDB := newTestDB(t, dir, "cache", database.ProfileCache)

	h := NewSystemHandlers(log, dir, "local", []*database.DB{pricesDB, nil, cacheDB}, nil, fixedSessions(3))
	router := newSystemRouter(h)

	req := httptest.NewRequest("GET", "/api/system/status", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var response SystemStatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))

	assert.Equal(t, "healthy", response.Status)
	assert.Equal(t, "local", response.PriceSource)
	assert.Equal(t, 3, response.Sessions)
	assert.GreaterOrEqual(t, response.RAMPercent, 0.0)
	assert.Greater(t, response.Goroutines, 0)
	require.Len(t, response.Databases, 2)
	assert.Equal(t, "prices", response.Databases[0].Name)
	assert.Equal(t, "standard", response.Databases[0].Profile)
	require.NotNil(t, response.Databases[0].Stats)
	assert.Greater(t, response.Databases[0].Stats.PageCount, int64(0))
	assert.Equal(t, "cache", response.Databases[1].Profile)
}

func TestSystemHandlers_DegradedOnClosedDatabase(t *testing.T) {
	log := zerolog.New(nil).Level(zerolog.Disabled)
	dir := t.TempDir()
	db := newTestDB(t, dir, "prices", database.ProfileStandard)
	require.NoError(t, db.Close())

	h := NewSystemHandlers(log, dir, "remote", []*database.DB{db}, nil, nil)
	status := h.GetSystemStatusSnapshot()

	assert.Equal(t, "degraded", status.Status)
	require.Len(t, status.Databases, 1)
	assert.NotEmpty(t, status.Databases[0].Error)
}

func TestSystemHandlers_HandleJobsStatus(t *testing.T) {
	log := zerolog.New(nil).Level(zerolog.Disabled)
	runner := &MockJobRunner{}
	runner.On("Status").Return([]scheduler.JobStatus{
		{Name: "client_data_cleanup", Schedule: "@hourly", Runs: 2},
		{Name: "price_sync", Schedule: "0 30 6 * * *"},
	})

	router := newSystemRouter(NewSystemHandlers(log, "", "local", nil, runner, nil))

	req := httptest.NewRequest("GET", "/api/jobs", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var response struct {
		Jobs  []scheduler.JobStatus `json:"jobs"`
		Count int                   `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, 2, response.Count)
	assert.Equal(t, "client_data_cleanup", response.Jobs[0].Name)
	assert.Equal(t, 2, response.Jobs[0].Runs)
	runner.AssertExpectations(t)
}

func TestSystemHandlers_HandleTriggerJob(t *testing.T) {
	log := zerolog.New(nil).Level(zerolog.Disabled)
	runner := &MockJobRunner{}
	runner.On("Has", "price_sync").Return(true)
	runner.On("Has", "nope").Return(false)
	runner.On("Trigger", "price_sync").Return(errors.New("remote down"))

	router := newSystemRouter(NewSystemHandlers(log, "", "remote", nil, runner, nil))

	runner.wg.Add(1)
	req := httptest.NewRequest("POST", "/api/jobs/price_sync", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusAccepted, w.Code)

	done := make(chan struct{})
	go func() {
		runner.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("job was not triggered")
	}

	req = httptest.NewRequest("POST", "/api/jobs/nope", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)

	runner.AssertExpectations(t)
}

func TestSystemHandlers_TriggerWithoutRunner(t *testing.T) {
	log := zerolog.New(nil).Level(zerolog.Disabled)
	router := newSystemRouter(NewSystemHandlers(log, "", "local", nil, nil, nil))

	req := httptest.NewRequest("POST", "/api/jobs/price_sync", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
