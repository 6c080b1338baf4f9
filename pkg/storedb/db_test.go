package storedb

import (
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var seedTable = Migration{
	Version: 1,
	Name:    "create_seed",
	SQL:     `CREATE TABLE IF NOT EXISTS seed (id TEXT PRIMARY KEY)`,
}

func migrationCount(t *testing.T, path, module string) int {
	t.Helper()
	db, err := Open(OpenOptions{Path: path, Module: module})
	require.NoError(t, err)
	defer db.Close()

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM schema_migrations WHERE module = ?`, module).Scan(&n))
	return n
}

func TestOpen_RequiresPathAndModule(t *testing.T) {
	_, err := Open(OpenOptions{Module: "m"})
	assert.ErrorIs(t, err, ErrDBPathRequired)

	_, err = Open(OpenOptions{Path: filepath.Join(t.TempDir(), "x.db")})
	assert.ErrorIs(t, err, ErrModuleRequired)
}

func TestOpen_AppliesMigrationsOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "journal.db")
	for range 2 {
		db, err := Open(OpenOptions{Path: path, Module: "journal", Migrations: []Migration{seedTable}})
		require.NoError(t, err)
		require.NoError(t, db.Close())
	}
	assert.Equal(t, 1, migrationCount(t, path, "journal"))
	assert.Equal(t, 0, migrationCount(t, path, "other"))
}

func TestOpen_FailedMigrationIsNotRecorded(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	db, err := Open(OpenOptions{Path: path, Module: "journal", Migrations: []Migration{seedTable}})
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, err = Open(OpenOptions{
		Path:   path,
		Module: "journal",
		Migrations: []Migration{
			seedTable,
			{Version: 2, Name: "broken", SQL: `THIS IS INVALID SQL`},
		},
	})
	assert.ErrorIs(t, err, ErrApplyMigration)
	assert.Equal(t, 1, migrationCount(t, path, "journal"))
}

func TestOpen_DuplicateVersion(t *testing.T) {
	_, err := Open(OpenOptions{
		Path:       filepath.Join(t.TempDir(), "journal.db"),
		Module:     "journal",
		Migrations: []Migration{seedTable, seedTable},
	})
	assert.ErrorIs(t, err, ErrDuplicateMigration)
}

func TestOpen_ConcurrentInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")

	var wg sync.WaitGroup
	errCh := make(chan error, 8)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			db, err := Open(OpenOptions{Path: path, Module: "journal", Migrations: []Migration{seedTable}})
			if err != nil {
				errCh <- err
				return
			}
			_ = db.Close()
		}()
	}
	wg.Wait()
	close(errCh)

	for err := range errCh {
		require.NoError(t, err)
	}
	assert.Equal(t, 1, migrationCount(t, path, "journal"))
}
