package lifecycle

import (
	"database/sql"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jingkaihe/interpose/internal/errx"
	"github.com/jingkaihe/interpose/pkg/storedb"
)

const journalModule = "lifecycle"

// Journal records the lifecycle history of Targets.
type Journal interface {
	Append(rec Record) error
}

// Entry is one journaled Record. Seq increases across the whole journal.
type Entry struct {
	Seq int64 `json:"seq"`
	Record
}

// SQLJournal is an append-only Journal kept in a SQLite database.
type SQLJournal struct {
	mu sync.Mutex
	db *sql.DB
}

var _ Journal = (*SQLJournal)(nil)

func journalMigrations() []storedb.Migration {
	return []storedb.Migration{
		{
			Version: 1,
			Name:    "create_definition_journal",
			SQL: `
CREATE TABLE IF NOT EXISTS definition_journal (
  seq INTEGER PRIMARY KEY AUTOINCREMENT,
  target_id TEXT NOT NULL,
  name TEXT NOT NULL,
  phase TEXT NOT NULL,
  completions INTEGER NOT NULL,
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_definition_journal_name ON definition_journal(name, seq);
`,
		},
	}
}

func OpenJournal(path string) (*SQLJournal, error) {
	db, err := storedb.Open(storedb.OpenOptions{
		Path:       path,
		Module:     journalModule,
		Migrations: journalMigrations(),
	})
	if err != nil {
		return nil, errx.Wrap(ErrOpenJournal, err)
	}
	return &SQLJournal{db: db}, nil
}

func (j *SQLJournal) Close() error {
	return j.db.Close()
}

func (j *SQLJournal) Append(rec Record) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	_, err := j.db.Exec(
		`INSERT INTO definition_journal(target_id, name, phase, completions, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.TargetID.String(),
		rec.Name,
		string(rec.Phase),
		rec.Completions,
		rec.CreatedAt.UTC().Format(time.RFC3339Nano),
		rec.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return errx.Wrap(ErrAppendJournal, err)
	}
	return nil
}

// History returns the entries for name in append order, or every entry when
// name is empty.
func (j *SQLJournal) History(name string) ([]Entry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	query := `SELECT seq, target_id, name, phase, completions, created_at, updated_at FROM definition_journal`
	var args []any
	if name != "" {
		query += ` WHERE name = ?`
		args = append(args, name)
	}
	query += ` ORDER BY seq ASC`

	rows, err := j.db.Query(query, args...)
	if err != nil {
		return nil, errx.Wrap(ErrReadJournal, err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e                    Entry
			id, phase            string
			createdAt, updatedAt string
		)
		if err := rows.Scan(&e.Seq, &id, &e.Name, &phase, &e.Completions, &createdAt, &updatedAt); err != nil {
			return nil, errx.Wrap(ErrReadJournal, err)
		}
		if e.TargetID, err = uuid.Parse(id); err != nil {
			return nil, errx.Wrap(ErrReadJournal, err)
		}
		if e.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, errx.Wrap(ErrReadJournal, err)
		}
		if e.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
			return nil, errx.Wrap(ErrReadJournal, err)
		}
		e.Phase = Phase(phase)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errx.Wrap(ErrReadJournal, err)
	}
	return out, nil
}
