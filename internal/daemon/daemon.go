// Package daemon schedules the configured scrape jobs and executes them
// when their cron expressions match the clock.
package daemon

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/scrapekit-ai/scrapekit/internal/cron"
	"github.com/scrapekit-ai/scrapekit/internal/effect"
	"github.com/scrapekit-ai/scrapekit/internal/event"
	"github.com/scrapekit-ai/scrapekit/internal/lang"
	"github.com/scrapekit-ai/scrapekit/internal/logging"
	"github.com/scrapekit-ai/scrapekit/internal/scrape"
	"github.com/scrapekit-ai/scrapekit/internal/storage"
	"github.com/scrapekit-ai/scrapekit/pkg/types"
)

// Config configures a Daemon.
type Config struct {
	// Jobs to schedule, usually compiled with JobsFromConfig.
	Jobs []Job

	// Loader resolves script names for job runs.
	Loader lang.ScriptLoader

	// Driver fetches pages. Defaults to an HTTP driver.
	Driver scrape.Driver

	// Registry resolves effect names. Defaults to the builtin registry.
	Registry *effect.Registry

	// EffectOptions are passed through to executing effects.
	EffectOptions effect.Options

	// Store persists run records and result snapshots. Optional; without
	// it runs leave no trace beyond logs and events.
	Store *storage.RunStore

	// Clock drives the loop. Defaults to the one-minute wall clock.
	Clock Clock
}

// Daemon runs jobs when their schedules match the clock.
type Daemon struct {
	jobs     []Job
	loader   lang.ScriptLoader
	driver   scrape.Driver
	registry *effect.Registry
	effopts  effect.Options
	store    *storage.RunStore
	clock    Clock

	runs sync.WaitGroup
}

// New creates a daemon from the config, filling in default
// collaborators. A config with no jobs is valid: the daemon idles,
// ticking until stopped.
func New(cfg Config) *Daemon {
	if cfg.Driver == nil {
		cfg.Driver = scrape.NewHTTPDriver(scrape.DefaultHTTPConfig())
	}
	if cfg.Registry == nil {
		cfg.Registry = effect.DefaultRegistry()
	}
	if cfg.Clock == nil {
		cfg.Clock = RealClock{}
	}
	return &Daemon{
		jobs:     cfg.Jobs,
		loader:   cfg.Loader,
		driver:   cfg.Driver,
		registry: cfg.Registry,
		effopts:  cfg.EffectOptions,
		store:    cfg.Store,
		clock:    cfg.Clock,
	}
}

// Run executes the scheduling loop until ctx is cancelled or the clock
// stops, then waits for in-flight runs to drain.
//
// Each tick reads Now once and starts every due job in its own
// goroutine. The loop then sleeps half the interval and peeks: when the
// peeked time still formats to the same minute the second half is slept
// too, but after an oversleep into the next minute it is skipped so no
// minute goes unchecked.
func (d *Daemon) Run(ctx context.Context) error {
	if len(d.jobs) == 0 {
		logging.Warn().Msg("no jobs configured, daemon idling")
	}

	pumps := make([]*effect.Pump, 0, len(d.jobs))
	for _, job := range d.jobs {
		pump := effect.NewPump(job.Suite, job.Name, job.Seq, d.registry, d.effopts, job.Dedup)
		pump.Start(ctx)
		pumps = append(pumps, pump)
	}
	defer func() {
		for _, pump := range pumps {
			pump.Stop()
		}
	}()

	interval := d.clock.Interval()

	for ctx.Err() == nil {
		top, ok := d.clock.Now()
		if !ok {
			break
		}

		for _, job := range d.jobs {
			if !job.Due(top) {
				continue
			}
			logging.Debug().Str("job", job.ID()).Time("tick", top).Msg("job due")
			d.start(ctx, job)
		}

		d.clock.Sleep(ctx, interval/2)

		middle, ok := d.clock.Peek()
		if !ok {
			break
		}
		if cron.FormatTime(top) == cron.FormatTime(middle) {
			d.clock.Sleep(ctx, interval/2)
		}
	}

	d.runs.Wait()
	return nil
}

func (d *Daemon) start(ctx context.Context, job Job) {
	d.runs.Add(1)
	go func() {
		defer d.runs.Done()
		d.runJob(ctx, job)
	}()
}

// runJob executes one scheduled run: resolve and run the script,
// persist the run record, and publish the lifecycle events.
func (d *Daemon) runJob(ctx context.Context, job Job) {
	record := &types.RunRecord{
		ID:        ulid.Make().String(),
		Suite:     job.Suite,
		Job:       job.Name,
		Script:    job.Script,
		StartedAt: time.Now().UTC(),
	}

	logging.Info().Str("job", job.ID()).Str("run", record.ID).Str("script", job.Script).Msg("job started")
	event.PublishSync(event.Event{Type: event.JobStarted, Data: event.JobStartedData{Record: record}})

	runner := lang.NewRunner(d.loader, d.driver, d.effectSink(job, record.ID))
	results, err := runner.Run(ctx, job.Script, job.Args, job.Kwargs)

	record.FinishedAt = time.Now().UTC()
	if err != nil {
		record.Error = err.Error()
		logging.Error().Err(err).Str("job", job.ID()).Str("run", record.ID).Msg("job failed")
	} else {
		record.ResultCount = len(results)
		logging.Info().Str("job", job.ID()).Str("run", record.ID).Int("results", len(results)).Msg("job finished")
		d.publishChange(ctx, job, record.ID, results)
	}

	if d.store != nil {
		if err := d.store.SaveRun(ctx, record); err != nil {
			logging.Warn().Err(err).Str("run", record.ID).Msg("run record not saved")
		}
	}

	event.PublishSync(event.Event{Type: event.JobFinished, Data: event.JobFinishedData{Record: record}})
}

// effectSink publishes a run's effect invocations to the job's pump.
func (d *Daemon) effectSink(job Job, runID string) lang.EffectFunc {
	return func(ctx context.Context, inv effect.Invocation) error {
		event.PublishSync(event.Event{
			Type: event.EffectInvoked,
			Data: event.EffectInvokedData{
				Name:   inv.Name,
				Args:   inv.Args,
				Kwargs: inv.Kwargs,
				Suite:  job.Suite,
				Job:    job.Name,
				Seq:    job.Seq,
				RunID:  runID,
			},
		})
		return nil
	}
}

// publishChange stores the run's results as the job's new snapshot and
// publishes results.changed with a diff when they differ from the
// previous snapshot. Failed runs never reach here, so a flaky script
// does not clobber the last good results.
func (d *Daemon) publishChange(ctx context.Context, job Job, runID string, results []string) {
	if d.store == nil {
		return
	}

	var before []string
	prev, err := d.store.LatestResults(ctx, job.Suite, job.Name)
	switch {
	case err == nil:
		before = prev.Results
	case errors.Is(err, storage.ErrNotFound):
	default:
		logging.Warn().Err(err).Str("job", job.ID()).Msg("previous results unreadable")
	}

	snap := &types.ResultsSnapshot{RunID: runID, Results: results, UpdatedAt: time.Now().UTC()}
	if err := d.store.SaveResults(ctx, job.Suite, job.Name, snap); err != nil {
		logging.Warn().Err(err).Str("job", job.ID()).Msg("results snapshot not saved")
	}

	diff := resultsDiff(before, results)
	if diff == "" {
		return
	}

	logging.Info().Str("job", job.ID()).Str("run", runID).Msg("results changed")
	event.PublishSync(event.Event{
		Type: event.ResultsChanged,
		Data: event.ResultsChangedData{Suite: job.Suite, Job: job.Name, RunID: runID, Diff: diff},
	})
}

// resultsDiff returns a line-based patch between the newline-joined
// result lists, empty when nothing changed.
func resultsDiff(before, after []string) string {
	b := strings.Join(before, "\n")
	a := strings.Join(after, "\n")
	if b == a {
		return ""
	}

	dmp := diffmatchpatch.New()
	chars1, chars2, lines := dmp.DiffLinesToChars(b, a)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(chars1, chars2, false), lines)
	return dmp.PatchToText(dmp.PatchMake(b, diffs))
}
