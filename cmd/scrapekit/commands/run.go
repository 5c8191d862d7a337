package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/scrapekit-ai/scrapekit/internal/effect"
	"github.com/scrapekit-ai/scrapekit/internal/lang"
	"github.com/scrapekit-ai/scrapekit/internal/scrape"
	"github.com/scrapekit-ai/scrapekit/internal/script"
)

var runDir string

var runCmd = &cobra.Command{
	Use:   "run <script> [arg | key=value]...",
	Short: "Execute a scrape script once",
	Long: `Execute a scrape script and print its final results, one per line.

The script is resolved as given, with the .scrape extension added, and
under a scripts/ subdirectory. Remaining arguments are passed to the
script: plain values positionally as {1}, {2} and so on, key=value
pairs by name. Effects run live.

Examples:
  scrapekit run news.scrape
  scrapekit run greet World
  scrapekit run headlines section=tech`,
	Args: cobra.MinimumNArgs(1),
	RunE: runScript,
}

func init() {
	runCmd.Flags().StringVarP(&runDir, "directory", "C", "", "Directory to resolve scripts against")
}

func runScript(cmd *cobra.Command, args []string) error {
	posargs, kwargs := script.SplitArgs(args[1:])

	registry := effect.DefaultRegistry()
	sink := func(ctx context.Context, inv effect.Invocation) error {
		return registry.Run(ctx, inv, effect.Options{})
	}

	runner := lang.NewRunner(
		script.FileLoader{Base: runDir},
		scrape.NewHTTPDriver(scrape.DefaultHTTPConfig()),
		sink,
	)

	results, err := runner.Run(context.Background(), args[0], posargs, kwargs)
	if err != nil {
		return err
	}

	for _, result := range results {
		fmt.Println(result)
	}
	return nil
}
