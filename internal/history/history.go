// Package history provides the run-archive stores behind the
// api.RunArchive interface: in-memory, SQLite, Postgres, and Redis.
// External callers construct them through the root conduct package.
//
// An archive is a diagnostics sink, not a checkpoint store: records are
// written after a run reaches a terminal state and nothing is ever
// replayed from one.
package history

import (
	"encoding/json"
	"errors"

	"github.com/petrijr/conduct/pkg/api"
)

// ErrRunNotFound is returned when a run record is not found.
var ErrRunNotFound = errors.New("run not found")

// matches reports whether rec passes the filter.
func matches(rec api.RunRecord, filter api.RunFilter) bool {
	if filter.Workflow != "" && rec.Workflow != filter.Workflow {
		return false
	}
	if filter.State != "" && rec.State != filter.State {
		return false
	}
	return true
}

// encodeRecord serializes the report and outputs portions of a record for
// storage. Output values must be JSON-encodable; task bodies that produce
// exotic types should stringify them before returning.
func encodeRecord(rec api.RunRecord) (report, outputs []byte, err error) {
	report, err = json.Marshal(rec.Report)
	if err != nil {
		return nil, nil, err
	}
	outputs, err = json.Marshal(rec.Outputs)
	if err != nil {
		return nil, nil, err
	}
	return report, outputs, nil
}

func decodeRecord(rec *api.RunRecord, report, outputs []byte) error {
	if len(report) > 0 {
		if err := json.Unmarshal(report, &rec.Report); err != nil {
			return err
		}
	}
	if len(outputs) > 0 {
		if err := json.Unmarshal(outputs, &rec.Outputs); err != nil {
			return err
		}
	}
	return nil
}
