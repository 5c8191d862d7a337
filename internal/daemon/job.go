package daemon

import (
	"fmt"
	"sort"
	"time"

	"github.com/scrapekit-ai/scrapekit/internal/cron"
	"github.com/scrapekit-ai/scrapekit/pkg/types"
)

// Job is one scheduled script run, compiled from a config suite entry.
type Job struct {
	Suite    string
	Seq      int
	Name     string
	Script   string
	Args     []string
	Kwargs   map[string]string
	Schedule *cron.Spec
	Dedup    bool
}

// ID identifies the job in logs: suite.name-seq. The sequence number is
// the job's position within its suite, so two jobs sharing a name stay
// distinguishable.
func (j Job) ID() string {
	return fmt.Sprintf("%s.%s-%d", j.Suite, j.Name, j.Seq)
}

// Due reports whether the job's schedule matches t.
func (j Job) Due(t time.Time) bool {
	return j.Schedule.Matches(t)
}

// JobsFromConfig compiles every suite's jobs into the flat list the
// daemon loop iterates. Suites are visited in name order so the list is
// stable across loads.
func JobsFromConfig(cfg *types.Config) ([]Job, error) {
	suiteNames := make([]string, 0, len(cfg.Suites))
	for name := range cfg.Suites {
		suiteNames = append(suiteNames, name)
	}
	sort.Strings(suiteNames)

	var jobs []Job
	for _, suiteName := range suiteNames {
		for i, jc := range cfg.Suites[suiteName].Jobs {
			name := jc.Name
			if name == "" {
				name = "unnamed"
			}
			spec, err := cron.Parse(jc.Schedule)
			if err != nil {
				return nil, fmt.Errorf("suite %q job %q: %w", suiteName, name, err)
			}
			jobs = append(jobs, Job{
				Suite:    suiteName,
				Seq:      i,
				Name:     name,
				Script:   jc.Script,
				Args:     jc.Args,
				Kwargs:   jc.Kwargs,
				Schedule: spec,
				Dedup:    jc.Dedup,
			})
		}
	}
	return jobs, nil
}
