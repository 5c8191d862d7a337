// Package server provides the optional HTTP status server for the
// scrapekit daemon.
//
// The server is read-only: it reports the daemon's configured jobs and
// their run history, and streams the event bus to clients. It never
// triggers runs or mutates configuration; the config file and the
// filesystem watcher remain the only write paths.
//
// # API Endpoints
//
//   - GET /healthz: liveness probe, responds "ok"
//   - GET /api/jobs: configured jobs with schedule and last run record
//   - GET /api/runs?limit=N: most recent run records across all jobs
//   - GET /api/events: Server-Sent Events stream of bus events
//
// # Event Stream
//
// The SSE stream forwards job.started, job.finished, effect.invoked and
// results.changed events. Each SSE frame names the bus event type in the
// "event" field and carries the event payload as JSON in "data". A
// comment heartbeat goes out every 30 seconds to keep idle connections
// from being reaped by proxies.
//
// # Lifetime
//
// Serve runs until its context is cancelled. The context is also the
// base context of every request, so open SSE streams end with the
// daemon and the shutdown drain never waits on them.
//
// # Usage Example
//
//	cfg := server.DefaultConfig()
//	cfg.Addr = "127.0.0.1:8917"
//
//	srv := server.New(cfg, runStore)
//	srv.SetJobs(jobs)
//
//	if err := srv.Serve(ctx); err != nil {
//		return err
//	}
package server
