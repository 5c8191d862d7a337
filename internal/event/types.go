package event

import "github.com/scrapekit-ai/scrapekit/pkg/types"

// EffectInvokedData is the data for effect.invoked events.
// Args and Kwargs arrive fully substituted; the receiving pump resolves
// the effect by name.
type EffectInvokedData struct {
	Name   string            `json:"name"`
	Args   []string          `json:"args,omitempty"`
	Kwargs map[string]string `json:"kwargs,omitempty"`

	// Originating job, empty for ad-hoc CLI runs. Seq is the job's
	// position within its suite and disambiguates same-named jobs.
	Suite string `json:"suite,omitempty"`
	Job   string `json:"job,omitempty"`
	Seq   int    `json:"seq,omitempty"`
	RunID string `json:"runID,omitempty"`
}

// JobStartedData is the data for job.started events.
type JobStartedData struct {
	Record *types.RunRecord `json:"record"`
}

// JobFinishedData is the data for job.finished events.
type JobFinishedData struct {
	Record *types.RunRecord `json:"record"`
}

// ResultsChangedData is the data for results.changed events. Diff is a
// unified diff of the newline-joined results against the previous run.
type ResultsChangedData struct {
	Suite string `json:"suite"`
	Job   string `json:"job"`
	RunID string `json:"runID"`
	Diff  string `json:"diff"`
}

// ConfigReloadedData is the data for config.reloaded events.
type ConfigReloadedData struct {
	Path string `json:"path"`
}
