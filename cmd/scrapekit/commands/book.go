package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/scrapekit-ai/scrapekit/internal/book"
)

var bookCmd = &cobra.Command{
	Use:   "book",
	Short: "Documentation book helpers",
	Long: `Generate the index pages of the documentation book.

Both subcommands scan the src directory under the working directory and
print a markdown index to stdout:

  scrapekit book commands-index > src/commands.md
  scrapekit book effects-index > src/effects.md`,
}

var bookCommandsIndexCmd = &cobra.Command{
	Use:   "commands-index",
	Short: "Print the command chapters index",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return book.WriteCommandIndex(os.Stdout, book.DefaultSourceDir)
	},
}

var bookEffectsIndexCmd = &cobra.Command{
	Use:   "effects-index",
	Short: "Print the effect chapters index",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return book.WriteEffectIndex(os.Stdout, book.DefaultSourceDir)
	},
}

func init() {
	bookCmd.AddCommand(bookCommandsIndexCmd)
	bookCmd.AddCommand(bookEffectsIndexCmd)
}
