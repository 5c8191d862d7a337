package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/scrapekit-ai/scrapekit/internal/config"
	"github.com/scrapekit-ai/scrapekit/internal/script"
)

var scriptsDirs []string

var scriptsCmd = &cobra.Command{
	Use:   "scripts",
	Short: "List discoverable scrape scripts",
	Long: `List every .scrape file under the script directories, one path per
line.

Without --dir the current directory is searched, plus the scripts
directory under the user data directory when it exists.

Examples:
  scrapekit scripts
  scrapekit scripts --dir ./scripts --dir ~/scrapes`,
	Args: cobra.NoArgs,
	RunE: runScripts,
}

func init() {
	scriptsCmd.Flags().StringArrayVar(&scriptsDirs, "dir", nil, "Directory to search (repeatable)")
}

func runScripts(cmd *cobra.Command, args []string) error {
	dirs := scriptsDirs
	if len(dirs) == 0 {
		dirs = []string{"."}
		if data := config.GetPaths().ScriptsPath(); dirExists(data) {
			dirs = append(dirs, data)
		}
	}

	for _, dir := range dirs {
		names, err := script.Discover(dir)
		if err != nil {
			return err
		}
		for _, name := range names {
			fmt.Println(filepath.Join(dir, name))
		}
	}
	return nil
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
