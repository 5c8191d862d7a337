package types

import "time"

// RunRecord is the persisted outcome of one scheduled job run.
type RunRecord struct {
	ID          string    `json:"id"`
	Suite       string    `json:"suite"`
	Job         string    `json:"job"`
	Script      string    `json:"script"`
	StartedAt   time.Time `json:"startedAt"`
	FinishedAt  time.Time `json:"finishedAt"`
	Error       string    `json:"error,omitempty"`
	ResultCount int       `json:"resultCount"`
}

// ResultsSnapshot holds the results a job last produced, kept so the
// daemon can diff consecutive runs.
type ResultsSnapshot struct {
	RunID     string    `json:"runID"`
	Results   []string  `json:"results"`
	UpdatedAt time.Time `json:"updatedAt"`
}
