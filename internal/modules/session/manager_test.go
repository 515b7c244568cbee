package session

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_Lifecycle(t *testing.T) {
	m := NewManager(newFakeLoader(), testLog)

	id, ctrl := m.Create()
	_, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, 1, m.Len())

	got, err := m.Get(id)
	require.NoError(t, err)
	assert.Same(t, ctrl, got)

	m.Delete(id)
	_, err = m.Get(id)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 0, m.Len())
}

func TestManager_Sweep(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	m := NewManager(newFakeLoader(), testLog)
	m.now = func() time.Time { return now }

	stale, _ := m.Create()
	now = now.Add(20 * time.Minute)
	fresh, _ := m.Create()
	now = now.Add(20 * time.Minute)

	assert.Equal(t, 1, m.Sweep(30*time.Minute))

	_, err := m.Get(stale)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = m.Get(fresh)
	assert.NoError(t, err)
}

func TestManager_LeasedSessionIsNotSwept(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	m := NewManager(newFakeLoader(), testLog)
	m.now = func() time.Time { return now }

	id, ctrl := m.Create()
	got, err := m.Acquire(id)
	require.NoError(t, err)
	assert.Same(t, ctrl, got)

	now = now.Add(2 * time.Hour)
	assert.Zero(t, m.Sweep(30*time.Minute))

	m.Release(id)
	now = now.Add(20 * time.Minute)
	assert.Zero(t, m.Sweep(30*time.Minute), "idle time restarts at release")

	now = now.Add(20 * time.Minute)
	assert.Equal(t, 1, m.Sweep(30*time.Minute))

	_, err = m.Acquire(id)
	assert.ErrorIs(t, err, ErrNotFound)
	m.Release(id)
}

func TestSweepJob(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	m := NewManager(newFakeLoader(), testLog)
	m.now = func() time.Time { return now }
	m.Create()
	now = now.Add(time.Hour)

	job := NewSweepJob(m, 30*time.Minute, testLog)
	assert.Equal(t, "session_sweep", job.Name())
	require.NoError(t, job.Run())
	assert.Equal(t, 0, m.Len())
}
