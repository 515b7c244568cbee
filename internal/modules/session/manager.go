package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Manager tracks live sessions by id
type Manager struct {
	loader PriceLoader
	log    zerolog.Logger
	now    func() time.Time

	mu       sync.Mutex
	sessions map[string]*entry
}

type entry struct {
	ctrl     *Controller
	lastSeen time.Time
	// leases counts open connections; a leased session is never swept
	leases int
}

// NewManager creates an empty session manager
func NewManager(loader PriceLoader, log zerolog.Logger) *Manager {
	return &Manager{
		loader:   loader,
		log:      log.With().Str("service", "session_manager").Logger(),
		now:      time.Now,
		sessions: make(map[string]*entry),
	}
}

// Create starts a session from the default state and returns its id
func (m *Manager) Create() (string, *Controller) {
	return m.CreateWith(DefaultState())
}

// CreateWith starts a session from the given state
func (m *Manager) CreateWith(state State) (string, *Controller) {
	id := uuid.New().String()
	ctrl := NewController(m.loader, state, m.log)

	m.mu.Lock()
	m.sessions[id] = &entry{ctrl: ctrl, lastSeen: m.now()}
	count := len(m.sessions)
	m.mu.Unlock()

	m.log.Debug().Str("session_id", id).Int("sessions", count).Msg("Session created")
	return id, ctrl
}

// Get returns a session and marks it as seen
func (m *Manager) Get(id string) (*Controller, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	e.lastSeen = m.now()
	return e.ctrl, nil
}

// Touch marks a session as seen
func (m *Manager) Touch(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.sessions[id]; ok {
		e.lastSeen = m.now()
	}
}

// Acquire returns a session and holds it open until Release. Used for
// the lifetime of a WebSocket connection.
func (m *Manager) Acquire(id string) (*Controller, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	e.leases++
	e.lastSeen = m.now()
	return e.ctrl, nil
}

// Release drops a lease taken by Acquire. The idle timeout starts again
// from now.
func (m *Manager) Release(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.sessions[id]; ok && e.leases > 0 {
		e.leases--
		e.lastSeen = m.now()
	}
}

// Delete ends a session
func (m *Manager) Delete(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// Len returns the number of live sessions
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep ends sessions not seen for longer than maxIdle and returns how
// many were removed. Leased sessions are kept.
func (m *Manager) Sweep(maxIdle time.Duration) int {
	cutoff := m.now().Add(-maxIdle)

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, e := range m.sessions {
		if e.leases == 0 && e.lastSeen.Before(cutoff) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}

// SweepJob removes idle sessions on a schedule
type SweepJob struct {
	manager *Manager
	maxIdle time.Duration
	log     zerolog.Logger
}

// NewSweepJob creates an idle session sweep job
func NewSweepJob(manager *Manager, maxIdle time.Duration, log zerolog.Logger) *SweepJob {
	return &SweepJob{
		manager: manager,
		maxIdle: maxIdle,
		log:     log.With().Str("job", "session_sweep").Logger(),
	}
}

// Name returns the job name
func (j *SweepJob) Name() string {
	return "session_sweep"
}

// Run executes the sweep
func (j *SweepJob) Run() error {
	if removed := j.manager.Sweep(j.maxIdle); removed > 0 {
		j.log.Info().Int("removed", removed).Msg("Idle sessions removed")
	}
	return nil
}
