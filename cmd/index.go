package cmd

import (
	"fmt"
	"time"

	"github.com/sagekit/sage/internal/app"
	"github.com/sagekit/sage/internal/config"
	"github.com/spf13/cobra"
)

var indexCmd = &cobra.Command{
	Use:   "index [directory]",
	Short: "Chunk and embed corpus files into the vector store",
	Long: `Index reads the saved corpus pages (HTML, Markdown or plain text), splits
them into overlapping chunks, embeds each chunk and stores the vectors
persistently. Without an argument the configured data directory is indexed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	dir := cfg.DataDir
	if len(args) == 1 {
		dir = args[0]
	}

	application, err := app.Setup(ctx, cfg, newLogger())
	if err != nil {
		return fmt.Errorf("initializing application: %w", err)
	}

	result, err := application.Indexer.IndexDirectory(ctx, dir)
	if err != nil {
		return fmt.Errorf("indexing %s: %w", dir, err)
	}

	fmt.Printf("Indexed %s in %s\n", dir, result.Duration.Round(time.Millisecond))
	fmt.Printf("  files added:   %d\n", result.FilesAdded)
	fmt.Printf("  files skipped: %d\n", result.FilesSkipped)
	fmt.Printf("  files failed:  %d\n", result.FilesFailed)
	fmt.Printf("  chunks added:  %d\n", result.ChunksAdded)
	fmt.Printf("  total chunks:  %d\n", application.Store.Count())
	return nil
}
