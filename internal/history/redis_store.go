package history

import (
	"context"
	"encoding/json"
	"errors"
	"sort"

	"github.com/redis/go-redis/v9"

	"github.com/petrijr/conduct/pkg/api"
)

// RedisStore is a RunArchive backed by Redis. It uses a simple key
// structure:
//
//	<prefix>run:<id>          => JSON-encoded record
//	<prefix>idx:all           => SET of all run IDs
//	<prefix>idx:wf:<name>     => SET of run IDs for a workflow
//	<prefix>idx:state:<state> => SET of run IDs for a final state
//
// Indexes are updated on every save; ListRuns filters via set
// intersection and sorts by finish time client-side.
type RedisStore struct {
	client *redis.Client
	prefix string
}

var _ api.RunArchive = (*RedisStore)(nil)

// NewRedisStore creates a RedisStore. prefix is optional but recommended
// (e.g. "conduct:").
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "conduct:"
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) keyRun(id string) string { return s.prefix + "run:" + id }

func (s *RedisStore) keyAll() string { return s.prefix + "idx:all" }

func (s *RedisStore) keyWorkflow(name string) string { return s.prefix + "idx:wf:" + name }

func (s *RedisStore) keyState(state api.State) string {
	return s.prefix + "idx:state:" + string(state)
}

func (s *RedisStore) SaveRun(ctx context.Context, rec api.RunRecord) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.keyRun(rec.RunID), payload, 0)
	pipe.SAdd(ctx, s.keyAll(), rec.RunID)
	pipe.SAdd(ctx, s.keyWorkflow(rec.Workflow), rec.RunID)
	pipe.SAdd(ctx, s.keyState(rec.State), rec.RunID)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *RedisStore) GetRun(ctx context.Context, runID string) (api.RunRecord, error) {
	payload, err := s.client.Get(ctx, s.keyRun(runID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return api.RunRecord{}, ErrRunNotFound
	}
	if err != nil {
		return api.RunRecord{}, err
	}

	var rec api.RunRecord
	if err := json.Unmarshal(payload, &rec); err != nil {
		return api.RunRecord{}, err
	}
	return rec, nil
}

func (s *RedisStore) ListRuns(ctx context.Context, filter api.RunFilter) ([]api.RunRecord, error) {
	keys := []string{s.keyAll()}
	if filter.Workflow != "" {
		keys = append(keys, s.keyWorkflow(filter.Workflow))
	}
	if filter.State != "" {
		keys = append(keys, s.keyState(filter.State))
	}

	ids, err := s.client.SInter(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	out := make([]api.RunRecord, 0, len(ids))
	for _, id := range ids {
		rec, err := s.GetRun(ctx, id)
		if errors.Is(err, ErrRunNotFound) {
			// Index entry outlived its record; skip it.
			continue
		}
		if err != nil {
			return nil, err
		}
		// Re-check the filter: a re-saved run stays in the index sets of
		// its earlier state.
		if !matches(rec, filter) {
			continue
		}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].FinishedAt.After(out[j].FinishedAt)
	})
	return out, nil
}
