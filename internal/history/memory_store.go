package history

import (
	"context"
	"sort"
	"sync"

	"github.com/petrijr/conduct/pkg/api"
)

// MemoryStore is a goroutine-safe RunArchive backed by a map. Best for
// tests and short-lived processes.
type MemoryStore struct {
	mu   sync.RWMutex
	runs map[string]api.RunRecord
}

var _ api.RunArchive = (*MemoryStore)(nil)

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{runs: make(map[string]api.RunRecord)}
}

func (s *MemoryStore) SaveRun(ctx context.Context, rec api.RunRecord) error {
	s.mu.Lock()
	s.runs[rec.RunID] = rec
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) GetRun(ctx context.Context, runID string) (api.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.runs[runID]
	if !ok {
		return api.RunRecord{}, ErrRunNotFound
	}
	return rec, nil
}

func (s *MemoryStore) ListRuns(ctx context.Context, filter api.RunFilter) ([]api.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]api.RunRecord, 0, len(s.runs))
	for _, rec := range s.runs {
		if matches(rec, filter) {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].FinishedAt.After(out[j].FinishedAt)
	})
	return out, nil
}
