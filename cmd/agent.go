package cmd

import (
	"fmt"
	"strings"

	"github.com/sagekit/sage/internal/app"
	"github.com/sagekit/sage/internal/config"
	"github.com/spf13/cobra"
)

var agentTrace bool

var agentCmd = &cobra.Command{
	Use:   "agent [question]",
	Short: "Answer a question with the tool-using agent",
	Long: `Agent runs a bounded think-act-observe loop. The model decides which tools
to call: querying the document index, searching the live web, or sending an
email when explicitly asked (at most one per request).`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAgent,
}

func init() {
	agentCmd.Flags().BoolVar(&agentTrace, "trace", false, "print each reasoning turn")
	rootCmd.AddCommand(agentCmd)
}

func runAgent(cmd *cobra.Command, args []string) error {
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

	transcript, err := application.Agent.Run(ctx, question)
	if err != nil {
		return fmt.Errorf("running agent: %w", err)
	}

	if agentTrace {
		for i, turn := range transcript.Turns {
			fmt.Printf("--- turn %d ---\n", i+1)
			if turn.Thought != "" {
				fmt.Printf("thought: %s\n", turn.Thought)
			}
			for j, action := range turn.Actions {
				fmt.Printf("action:  %s(%v)\n", action.Tool, action.Input)
				fmt.Printf("observe: %s\n", turn.Observations[j])
			}
		}
		fmt.Println("---")
	}

	fmt.Println(transcript.Answer)
	if transcript.Truncated {
		fmt.Printf("\n(stopped after %d reasoning turns)\n", len(transcript.Turns))
	}
	return nil
}
