// Package main provides the entry point for the scrapekit CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/scrapekit-ai/scrapekit/cmd/scrapekit/commands"
)

func main() {
	// A .env next to the invocation is picked up for {env:} config
	// interpolation; a missing file is fine.
	_ = godotenv.Load()

	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
