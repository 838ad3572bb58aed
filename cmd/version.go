package cmd

import (
	"fmt"

	"github.com/sagekit/sage/internal/config"
	"github.com/spf13/cobra"
)

// Version information (injected at build time via ldflags).
var (
	AppVersion = "development"
	BuildTime  = "unknown"
	GitCommit  = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version and configuration",
	RunE:  runVersion,
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func runVersion(_ *cobra.Command, _ []string) error {
	fmt.Printf("Sage %s\n", AppVersion)
	fmt.Printf("Build Time: %s\n", BuildTime)
	fmt.Printf("Git Commit: %s\n", GitCommit)

	cfg, err := config.Load()
	if err != nil {
		// Version must work even with a broken config file.
		fmt.Printf("\nConfiguration: unavailable (%v)\n", err)
		return nil
	}

	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Printf("  Model:      %s\n", cfg.ModelName)
	fmt.Printf("  Embedder:   %s\n", cfg.EmbedderModel)
	fmt.Printf("  Store:      %s (collection %s)\n", cfg.StorePath, cfg.Collection)
	fmt.Printf("  Corpus:     %s\n", cfg.DataDir)
	fmt.Printf("  Top-K:      %d (cutoff %.2f)\n", cfg.TopK, cfg.SimilarityCutoff)
	fmt.Printf("  Max turns:  %d\n", cfg.MaxTurns)

	printKeyStatus("SAGE_GEMINI_API_KEY", cfg.GeminiAPIKey)
	printKeyStatus("SAGE_EMAIL_API_KEY", cfg.Email.APIKey)
	return nil
}

// printKeyStatus reports whether a key is set without revealing it.
func printKeyStatus(name, value string) {
	if value != "" {
		fmt.Printf("  %s: configured\n", name)
	} else {
		fmt.Printf("  %s: not set\n", name)
	}
}
