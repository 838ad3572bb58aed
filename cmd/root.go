// Package cmd contains the sage CLI commands.
package cmd

import (
	"log/slog"

	"github.com/sagekit/sage/internal/log"
	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "sage",
	Short: "Sage - a question answering assistant over your documents",
	Long: `Sage answers questions from a locally indexed document collection and
falls back to a live web search when the documents come up empty.

Typical workflow:
  sage scrape <url>...   download documentation pages into the corpus
  sage index             chunk and embed the corpus into the vector store
  sage ask <question>    answer a question from the index (web fallback)
  sage agent <question>  let the agent choose tools, including email`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// newLogger builds the CLI logger honoring the --verbose flag.
func newLogger() log.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return log.New(log.Config{Level: level})
}
