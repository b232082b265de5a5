package history

import (
	"context"
	"database/sql"
	"time"

	"github.com/petrijr/conduct/pkg/api"
)

// SQLiteStore is a RunArchive backed by SQLite.
//
// It expects an *sql.DB opened with a SQLite driver; the caller imports
// the driver, e.g.:
//
//	import _ "modernc.org/sqlite"
type SQLiteStore struct {
	db *sql.DB
}

var _ api.RunArchive = (*SQLiteStore)(nil)

// NewSQLiteStore initializes the required schema in db and returns a new
// SQLiteStore.
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			run_id TEXT PRIMARY KEY,
			workflow TEXT NOT NULL,
			state TEXT NOT NULL,
			started_at INTEGER NOT NULL,
			finished_at INTEGER NOT NULL,
			error TEXT,
			report BLOB,
			outputs BLOB
		);`,
	)
	return err
}

func (s *SQLiteStore) SaveRun(ctx context.Context, rec api.RunRecord) error {
	report, outputs, err := encodeRecord(rec)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO runs
			(run_id, workflow, state, started_at, finished_at, error, report, outputs)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID,
		rec.Workflow,
		string(rec.State),
		rec.StartedAt.UnixNano(),
		rec.FinishedAt.UnixNano(),
		rec.Error,
		report,
		outputs,
	)
	return err
}

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (api.RunRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT run_id, workflow, state, started_at, finished_at, error, report, outputs
		FROM runs
		WHERE run_id = ?`,
		runID,
	)
	rec, err := scanRun(row)
	if err == sql.ErrNoRows {
		return api.RunRecord{}, ErrRunNotFound
	}
	return rec, err
}

func (s *SQLiteStore) ListRuns(ctx context.Context, filter api.RunFilter) ([]api.RunRecord, error) {
	query := `
		SELECT run_id, workflow, state, started_at, finished_at, error, report, outputs
		FROM runs`
	var (
		where []string
		args  []any
	)
	if filter.Workflow != "" {
		where = append(where, "workflow = ?")
		args = append(args, filter.Workflow)
	}
	if filter.State != "" {
		where = append(where, "state = ?")
		args = append(args, string(filter.State))
	}
	for i, cond := range where {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}
	query += " ORDER BY finished_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []api.RunRecord
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (api.RunRecord, error) {
	var (
		rec                 api.RunRecord
		state               string
		startedNs, finishNs int64
		report, outputs     []byte
	)
	err := row.Scan(&rec.RunID, &rec.Workflow, &state, &startedNs, &finishNs, &rec.Error, &report, &outputs)
	if err != nil {
		return api.RunRecord{}, err
	}

	rec.State = api.State(state)
	rec.StartedAt = time.Unix(0, startedNs)
	rec.FinishedAt = time.Unix(0, finishNs)
	if err := decodeRecord(&rec, report, outputs); err != nil {
		return api.RunRecord{}, err
	}
	return rec, nil
}
