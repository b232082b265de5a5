package history

import (
	"context"
	"database/sql"
	"time"

	"github.com/petrijr/conduct/pkg/api"
)

// PostgresStore is a RunArchive backed by PostgreSQL through database/sql.
//
// The caller opens the *sql.DB with a Postgres driver, e.g.:
//
//	import _ "github.com/lib/pq"
type PostgresStore struct {
	db *sql.DB
}

var _ api.RunArchive = (*PostgresStore)(nil)

// NewPostgresStore initializes the required schema in db and returns a
// new PostgresStore.
func NewPostgresStore(db *sql.DB) (*PostgresStore, error) {
	s := &PostgresStore{db: db}
	if err := s.initSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			run_id TEXT PRIMARY KEY,
			workflow TEXT NOT NULL,
			state TEXT NOT NULL,
			started_at BIGINT NOT NULL,
			finished_at BIGINT NOT NULL,
			error TEXT NOT NULL DEFAULT '',
			report BYTEA,
			outputs BYTEA
		);`,
	)
	return err
}

func (s *PostgresStore) SaveRun(ctx context.Context, rec api.RunRecord) error {
	report, outputs, err := encodeRecord(rec)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs
			(run_id, workflow, state, started_at, finished_at, error, report, outputs)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (run_id) DO UPDATE SET
			workflow = EXCLUDED.workflow,
			state = EXCLUDED.state,
			started_at = EXCLUDED.started_at,
			finished_at = EXCLUDED.finished_at,
			error = EXCLUDED.error,
			report = EXCLUDED.report,
			outputs = EXCLUDED.outputs`,
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

func (s *PostgresStore) GetRun(ctx context.Context, runID string) (api.RunRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT run_id, workflow, state, started_at, finished_at, error, report, outputs
		FROM runs
		WHERE run_id = $1`,
		runID,
	)
	rec, err := scanPostgresRun(row)
	if err == sql.ErrNoRows {
		return api.RunRecord{}, ErrRunNotFound
	}
	return rec, err
}

func (s *PostgresStore) ListRuns(ctx context.Context, filter api.RunFilter) ([]api.RunRecord, error) {
	query := `
		SELECT run_id, workflow, state, started_at, finished_at, error, report, outputs
		FROM runs
		WHERE ($1 = '' OR workflow = $1)
		  AND ($2 = '' OR state = $2)
		ORDER BY finished_at DESC`

	rows, err := s.db.QueryContext(ctx, query, filter.Workflow, string(filter.State))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []api.RunRecord
	for rows.Next() {
		rec, err := scanPostgresRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func scanPostgresRun(row rowScanner) (api.RunRecord, error) {
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
