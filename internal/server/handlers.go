package server

import (
	"net/http"
	"strconv"

	"github.com/scrapekit-ai/scrapekit/internal/logging"
	"github.com/scrapekit-ai/scrapekit/pkg/types"
)

// jobView is the wire shape of a configured job.
type jobView struct {
	Suite    string           `json:"suite"`
	Name     string           `json:"name"`
	Seq      int              `json:"seq"`
	Script   string           `json:"script"`
	Schedule string           `json:"schedule"`
	Dedup    bool             `json:"dedupEffects"`
	LastRun  *types.RunRecord `json:"lastRun,omitempty"`
}

// handleHealth handles GET /healthz.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// handleListJobs handles GET /api/jobs.
func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	jobs := s.jobList()
	views := make([]jobView, 0, len(jobs))
	for _, job := range jobs {
		view := jobView{
			Suite:    job.Suite,
			Name:     job.Name,
			Seq:      job.Seq,
			Script:   job.Script,
			Schedule: job.Schedule.String(),
			Dedup:    job.Dedup,
		}
		view.LastRun = s.lastRun(r, job.Suite, job.Name)
		views = append(views, view)
	}
	writeJSON(w, http.StatusOK, views)
}

// lastRun fetches the most recent run record for a job, or nil when
// there is none or the store is absent.
func (s *Server) lastRun(r *http.Request, suite, job string) *types.RunRecord {
	if s.store == nil {
		return nil
	}
	ids, err := s.store.ListRuns(r.Context(), suite, job)
	if err != nil || len(ids) == 0 {
		return nil
	}
	rec, err := s.store.GetRun(r.Context(), suite, job, ids[len(ids)-1])
	if err != nil {
		logging.Warn().Err(err).Str("suite", suite).Str("job", job).Msg("failed to load last run")
		return nil
	}
	return rec
}

// handleListRuns handles GET /api/runs.
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	if s.store == nil {
		writeJSON(w, http.StatusOK, []*types.RunRecord{})
		return
	}

	runs, err := s.store.RecentRuns(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, ErrCodeInternalError, "failed to list runs")
		return
	}
	if runs == nil {
		runs = []*types.RunRecord{}
	}
	writeJSON(w, http.StatusOK, runs)
}
