package cmd

import (
	"fmt"
	"strings"

	"github.com/sagekit/sage/internal/app"
	"github.com/sagekit/sage/internal/config"
	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a question from the indexed documents, with web fallback",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	application, err := app.Setup(ctx, cfg, newLogger())
	if err != nil {
		return fmt.Errorf("initializing application: %w", err)
	}

	question := strings.TrimSpace(strings.Join(args, " "))
	if question == "" {
		return fmt.Errorf("question is empty")
	}

	answer, err := application.Engine.Query(ctx, question)
	if err != nil {
		return fmt.Errorf("answering question: %w", err)
	}

	fmt.Println(answer.Text)
	if answer.FallbackTriggered {
		fmt.Printf("\n(source: %s, documents had no answer)\n", answer.Source)
	}
	return nil
}
