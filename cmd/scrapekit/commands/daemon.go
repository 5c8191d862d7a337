package commands

import (
	"context"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/scrapekit-ai/scrapekit/internal/config"
	"github.com/scrapekit-ai/scrapekit/internal/daemon"
	"github.com/scrapekit-ai/scrapekit/internal/logging"
	"github.com/scrapekit-ai/scrapekit/internal/server"
	"github.com/scrapekit-ai/scrapekit/internal/storage"
)

var daemonCmd = &cobra.Command{
	Use:   "daemon [config]",
	Short: "Run scheduled scrape jobs",
	Long: `Run the suites of jobs described by a config file until interrupted.

Without an argument the config is taken from SCRAPEKIT_CONFIG or the
first scrapekit.{jsonc,json,yaml,yml} under the user config directory.
Editing the file while the daemon runs triggers a clean reload; a file
that no longer loads keeps the previous config running.

Examples:
  scrapekit daemon scrapekit.jsonc
  scrapekit daemon`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDaemon,
}

func runDaemon(cmd *cobra.Command, args []string) error {
	path, err := daemonConfigPath(args)
	if err != nil {
		return err
	}

	// Fail on a broken config before anything starts. The daemon loads
	// the file again itself; this pass also tells us whether to start
	// the status server.
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	paths := config.GetPaths()
	if err := paths.EnsurePaths(); err != nil {
		return err
	}

	// One daemon per storage directory. A second instance would race
	// the first on run records.
	instance := storage.NewFileLock(filepath.Join(paths.StoragePath(), "daemon"))
	if !instance.TryLock() {
		return fmt.Errorf("storage %s is in use by another daemon", paths.StoragePath())
	}
	defer instance.Unlock()

	store := storage.NewRunStore(paths.StoragePath())

	logging.Info().
		Str("version", Version).
		Str("config", path).
		Str("storage", paths.StoragePath()).
		Msg("daemon starting")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := daemon.Options{Store: store}

	if cfg.Server != nil && cfg.Server.Enabled {
		srvCfg := server.DefaultConfig()
		srvCfg.Addr = cfg.Server.Addr
		srv := server.New(srvCfg, store)
		opts.OnJobs = srv.SetJobs

		// A status server that cannot bind should not take the
		// scheduler down with it.
		go func() {
			if err := srv.Serve(ctx); err != nil {
				logging.Error().Err(err).Str("addr", srvCfg.Addr).Msg("status server failed")
			}
		}()
	}

	return daemon.Serve(ctx, path, opts)
}

// daemonConfigPath resolves the config file from the argument or the
// default locations.
func daemonConfigPath(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	path, ok := config.DefaultConfigPath()
	if !ok {
		return "", fmt.Errorf("no config file given and none found; see 'scrapekit daemon --help'")
	}
	return path, nil
}
