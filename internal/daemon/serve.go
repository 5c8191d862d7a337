package daemon

import (
	"context"

	"github.com/scrapekit-ai/scrapekit/internal/config"
	"github.com/scrapekit-ai/scrapekit/internal/effect"
	"github.com/scrapekit-ai/scrapekit/internal/event"
	"github.com/scrapekit-ai/scrapekit/internal/logging"
	"github.com/scrapekit-ai/scrapekit/internal/scrape"
	"github.com/scrapekit-ai/scrapekit/internal/script"
	"github.com/scrapekit-ai/scrapekit/internal/storage"
	"github.com/scrapekit-ai/scrapekit/pkg/types"
)

// Options carries the collaborators a managed daemon shares across
// config reloads.
type Options struct {
	Driver        scrape.Driver
	Registry      *effect.Registry
	EffectOptions effect.Options
	Store         *storage.RunStore
	Clock         Clock

	// OnJobs, when set, receives the active job set at startup and after
	// every successful reload. The status server uses it to keep its job
	// listing current.
	OnJobs func([]Job)
}

// Serve runs a daemon from the config file at path until ctx is
// cancelled or the clock stops. When the file changes on disk the
// current loop is stopped, the config re-read, and the loop restarted.
// A change that fails to load keeps the previous config running.
func Serve(ctx context.Context, path string, opts Options) error {
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	jobs, err := JobsFromConfig(cfg)
	if err != nil {
		return err
	}
	if opts.OnJobs != nil {
		opts.OnJobs(jobs)
	}

	watcher, err := WatchConfig(path)
	if err != nil {
		logging.Warn().Err(err).Str("config", path).Msg("config watcher unavailable, reload disabled")
		watcher = nil
	} else {
		defer watcher.Stop()
	}
	var changed <-chan struct{}
	if watcher != nil {
		changed = watcher.Changed()
	}

	for {
		d := New(Config{
			Jobs:          jobs,
			Loader:        &script.DirLoader{Dirs: cfg.ScriptDirs, Names: cfg.ScriptNames},
			Driver:        opts.Driver,
			Registry:      opts.Registry,
			EffectOptions: opts.EffectOptions,
			Store:         opts.Store,
			Clock:         opts.Clock,
		})

		runCtx, cancel := context.WithCancel(ctx)
		done := make(chan error, 1)
		go func() { done <- d.Run(runCtx) }()

		var next *types.Config
		var nextJobs []Job
	wait:
		for {
			select {
			case <-ctx.Done():
				break wait
			case <-changed:
				c, loadErr := config.Load(path)
				if loadErr != nil {
					logging.Error().Err(loadErr).Str("config", path).Msg("config reload failed, keeping previous config")
					continue
				}
				j, jobsErr := JobsFromConfig(c)
				if jobsErr != nil {
					logging.Error().Err(jobsErr).Str("config", path).Msg("config reload failed, keeping previous config")
					continue
				}
				next, nextJobs = c, j
				break wait
			case runErr := <-done:
				cancel()
				return runErr
			}
		}

		cancel()
		<-done

		if next == nil {
			return nil
		}
		cfg, jobs = next, nextJobs
		if opts.OnJobs != nil {
			opts.OnJobs(jobs)
		}
		logging.Info().Str("config", path).Msg("config reloaded")
		event.PublishSync(event.Event{Type: event.ConfigReloaded, Data: event.ConfigReloadedData{Path: path}})
	}
}
