// Package storedb opens SQLite databases and applies per-module schema
// migrations to them.
package storedb

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"time"

	"golang.org/x/sys/unix"
	_ "modernc.org/sqlite"

	"github.com/jingkaihe/interpose/internal/errx"
)

type Migration struct {
	Version int
	Name    string
	SQL     string
}

type OpenOptions struct {
	Path       string
	Module     string
	Migrations []Migration
}

// Open opens (creating if needed) the database at opts.Path and applies any
// of opts.Migrations not yet recorded for opts.Module. Concurrent openers of
// the same path serialize on a sidecar lock file.
func Open(opts OpenOptions) (*sql.DB, error) {
	if opts.Path == "" {
		return nil, ErrDBPathRequired
	}
	if opts.Module == "" {
		return nil, ErrModuleRequired
	}
	if err := os.MkdirAll(filepath.Dir(opts.Path), 0o700); err != nil {
		return nil, errx.Wrap(ErrOpenDB, err)
	}

	db, err := sql.Open("sqlite", opts.Path)
	if err != nil {
		return nil, errx.Wrap(ErrOpenDB, err)
	}
	db.SetMaxOpenConns(1)

	err = withLock(opts.Path+".lock", func() error {
		if err := configure(db); err != nil {
			return err
		}
		return migrate(db, opts.Module, opts.Migrations)
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func configure(db *sql.DB) error {
	for _, pragma := range []string{
		"PRAGMA busy_timeout = 15000",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			return errx.With(ErrConfigureDB, ": %s: %w", pragma, err)
		}
	}
	return nil
}

func migrate(db *sql.DB, module string, migrations []Migration) error {
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS schema_migrations (
  module TEXT NOT NULL,
  version INTEGER NOT NULL,
  name TEXT NOT NULL,
  applied_at TEXT NOT NULL,
  PRIMARY KEY (module, version)
)`); err != nil {
		return errx.Wrap(ErrCreateMigrationTbl, err)
	}

	ordered := append([]Migration(nil), migrations...)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Version < ordered[j].Version })
	for i := 1; i < len(ordered); i++ {
		if ordered[i].Version == ordered[i-1].Version {
			return errx.With(ErrDuplicateMigration, ": module=%s version=%d", module, ordered[i].Version)
		}
	}

	applied, err := appliedVersions(db, module)
	if err != nil {
		return err
	}
	for _, m := range ordered {
		if applied[m.Version] {
			continue
		}
		if err := apply(db, module, m); err != nil {
			return err
		}
	}
	return nil
}

func appliedVersions(db *sql.DB, module string) (map[int]bool, error) {
	rows, err := db.Query(`SELECT version FROM schema_migrations WHERE module = ?`, module)
	if err != nil {
		return nil, errx.Wrap(ErrReadMigrations, err)
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, errx.Wrap(ErrReadMigrations, err)
		}
		applied[v] = true
	}
	if err := rows.Err(); err != nil {
		return nil, errx.Wrap(ErrReadMigrations, err)
	}
	return applied, nil
}

// apply runs one migration and its bookkeeping row in a single transaction.
func apply(db *sql.DB, module string, m Migration) error {
	tx, err := db.Begin()
	if err != nil {
		return errx.With(ErrApplyMigration, ": begin %s/%d %s: %w", module, m.Version, m.Name, err)
	}
	if _, err := tx.Exec(m.SQL); err != nil {
		_ = tx.Rollback()
		return errx.With(ErrApplyMigration, ": %s/%d %s: %w", module, m.Version, m.Name, err)
	}
	if _, err := tx.Exec(
		`INSERT INTO schema_migrations(module, version, name, applied_at) VALUES (?, ?, ?, ?)`,
		module, m.Version, m.Name, time.Now().UTC().Format(time.RFC3339Nano),
	); err != nil {
		_ = tx.Rollback()
		return errx.With(ErrRecordMigration, ": %s/%d %s: %w", module, m.Version, m.Name, err)
	}
	if err := tx.Commit(); err != nil {
		return errx.With(ErrCommitMigration, ": %s/%d %s: %w", module, m.Version, m.Name, err)
	}
	return nil
}

func withLock(path string, fn func() error) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return errx.Wrap(ErrOpenInitLock, err)
	}
	defer f.Close()

	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX); err != nil {
		return errx.Wrap(ErrAcquireInitLock, err)
	}
	fnErr := fn()
	if err := unix.Flock(int(f.Fd()), unix.LOCK_UN); err != nil {
		return errors.Join(fnErr, errx.Wrap(ErrReleaseInitLock, err))
	}
	return fnErr
}
