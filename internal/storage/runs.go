package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/scrapekit-ai/scrapekit/internal/logging"
	"github.com/scrapekit-ai/scrapekit/pkg/types"
)

// RunStore persists run records and per-job result snapshots.
//
// Run records live under runs/<suite>/<job>/<runID>.json. Run IDs are
// ULIDs, so the sorted key order of a job directory is chronological.
// The latest results of a job live under results/<suite>/<job>.json and
// are overwritten on every successful run.
type RunStore struct {
	storage *Storage
}

// NewRunStore creates a run store rooted at basePath.
func NewRunStore(basePath string) *RunStore {
	return &RunStore{storage: New(basePath)}
}

// SaveRun persists a run record.
func (s *RunStore) SaveRun(ctx context.Context, rec *types.RunRecord) error {
	if rec.ID == "" || rec.Suite == "" || rec.Job == "" {
		return fmt.Errorf("run record needs id, suite and job")
	}
	return s.storage.Put(ctx, []string{"runs", rec.Suite, rec.Job, rec.ID}, rec)
}

// GetRun loads one run record.
func (s *RunStore) GetRun(ctx context.Context, suite, job, id string) (*types.RunRecord, error) {
	var rec types.RunRecord
	if err := s.storage.Get(ctx, []string{"runs", suite, job, id}, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListRuns returns the run IDs recorded for a job, oldest first.
func (s *RunStore) ListRuns(ctx context.Context, suite, job string) ([]string, error) {
	return s.storage.List(ctx, []string{"runs", suite, job})
}

// RecentRuns returns up to limit run records across all jobs, newest
// first. limit <= 0 means no limit.
func (s *RunStore) RecentRuns(ctx context.Context, limit int) ([]*types.RunRecord, error) {
	var records []*types.RunRecord

	suites, err := s.storage.List(ctx, []string{"runs"})
	if err != nil {
		return nil, err
	}
	for _, suite := range suites {
		jobs, err := s.storage.List(ctx, []string{"runs", suite})
		if err != nil {
			return nil, err
		}
		for _, job := range jobs {
			err := s.storage.Scan(ctx, []string{"runs", suite, job}, func(key string, data json.RawMessage) error {
				var rec types.RunRecord
				if err := json.Unmarshal(data, &rec); err != nil {
					logging.Warn().Str("suite", suite).Str("job", job).Str("run", key).
						Err(err).Msg("skipping unreadable run record")
					return nil
				}
				records = append(records, &rec)
				return nil
			})
			if err != nil {
				return nil, err
			}
		}
	}

	sort.Slice(records, func(i, j int) bool { return records[i].ID > records[j].ID })
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// SaveResults stores the latest result snapshot of a job.
func (s *RunStore) SaveResults(ctx context.Context, suite, job string, snap *types.ResultsSnapshot) error {
	return s.storage.Put(ctx, []string{"results", suite, job}, snap)
}

// LatestResults loads the last stored result snapshot of a job.
// Returns ErrNotFound when the job has never produced results.
func (s *RunStore) LatestResults(ctx context.Context, suite, job string) (*types.ResultsSnapshot, error) {
	var snap types.ResultsSnapshot
	if err := s.storage.Get(ctx, []string{"results", suite, job}, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}
