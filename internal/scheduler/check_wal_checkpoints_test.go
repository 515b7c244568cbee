package scheduler

import (
	"path/filepath"
	"testing"

	"github.com/aristath/folio/internal/database"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T, name string) *database.DB {
	t.Helper()

	db, err := database.New(database.Config{
		Path:    filepath.Join(t.TempDir(), name+".db"),
		Profile: database.ProfileStandard,
		Name:    name,
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate())
	t.Cleanup(func() { _ = db.Close() })

	return db
}

func TestCheckWALCheckpointsJob_Name(t *testing.T) {
	job := NewCheckWALCheckpointsJob(zerolog.Nop())
	assert.Equal(t, "check_wal_checkpoints", job.Name())
}

func TestCheckWALCheckpointsJob_Run_NoDatabases(t *testing.T) {
	log := zerolog.New(nil).Level(zerolog.Disabled)
	job := NewCheckWALCheckpointsJob(log, nil, nil)

	err := job.Run()
	assert.NoError(t, err)
}

func TestCheckWALCheckpointsJob_Run(t *testing.T) {
	log := zerolog.New(nil).Level(zerolog.Disabled)
	db := newTestDB(t, "prices")

	_, err := db.Conn().Exec(`INSERT INTO prices (ticker, date, close, updated_at) VALUES ('SPY', '2024-01-02', 100, 0)`)
	require.NoError(t, err)

	job := NewCheckWALCheckpointsJob(log, db, nil)
	assert.NoError(t, job.Run())
}

func TestCheckDatabasesJob_Run(t *testing.T) {
	log := zerolog.New(nil).Level(zerolog.Disabled)

	job := NewCheckDatabasesJob(log, newTestDB(t, "prices"), nil, newTestDB(t, "cache"))
	assert.Equal(t, "check_databases", job.Name())
	assert.NoError(t, job.Run())
}

func TestCheckDatabasesJob_ClosedDatabase(t *testing.T) {
	log := zerolog.New(nil).Level(zerolog.Disabled)
	db := newTestDB(t, "prices")
	require.NoError(t, db.Close())

	err := NewCheckDatabasesJob(log, db).Run()
	assert.Error(t, err)
}
