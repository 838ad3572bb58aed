// Package agent runs a bounded think-act-observe loop over the tool registry.
// Each iteration asks the model to either answer or request tool calls; tool
// results are fed back as observations until the model produces a final
// answer or the iteration cap is reached.
package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/firebase/genkit/go/ai"
	"github.com/google/uuid"
	"github.com/sagekit/sage/internal/log"
	"github.com/sagekit/sage/internal/tools"

	"golang.org/x/time/rate"
)

// ErrInvalidConfig indicates the agent was constructed with bad parameters.
var ErrInvalidConfig = errors.New("invalid agent configuration")

// truncatedAnswer is returned when the loop hits the iteration cap without a
// final model answer. The answer is always non-empty.
const truncatedAnswer = "I ran out of reasoning steps before reaching a final answer. " +
	"Here is what I gathered so far:\n\n%s"

// maxSideEffects caps side-effecting tool calls (email) per Run.
const maxSideEffects = 1

// Reasoner produces the model's next step given the conversation so far.
type Reasoner interface {
	Reason(ctx context.Context, messages []*ai.Message) (*ai.ModelResponse, error)
}

// Action is one tool call the model requested.
type Action struct {
	Tool  string
	Input any
}

// Turn is one think-act-observe iteration.
type Turn struct {
	Thought      string
	Actions      []Action
	Observations []string
}

// Transcript is the full record of one Run.
type Transcript struct {
	// ID identifies the run in logs.
	ID       string
	Question string
	Turns    []Turn
	Answer   string
	// Truncated is set when the iteration cap cut the loop short.
	Truncated bool
}

// Config holds the dependencies and tuning for an Agent.
type Config struct {
	Reasoner Reasoner
	Registry *tools.Registry
	MaxTurns int
	// Limiter paces model calls. Nil means unlimited.
	Limiter *rate.Limiter
	Logger  log.Logger
}

// Agent is the bounded tool-use loop.
type Agent struct {
	reasoner Reasoner
	registry *tools.Registry
	maxTurns int
	limiter  *rate.Limiter
	logger   log.Logger
}

// New creates an agent.
func New(cfg Config) (*Agent, error) {
	if cfg.Reasoner == nil {
		return nil, fmt.Errorf("%w: reasoner is required", ErrInvalidConfig)
	}
	if cfg.Registry == nil {
		return nil, fmt.Errorf("%w: registry is required", ErrInvalidConfig)
	}
	if cfg.MaxTurns <= 0 {
		return nil, fmt.Errorf("%w: max turns must be positive, got %d", ErrInvalidConfig, cfg.MaxTurns)
	}
	if cfg.Logger == nil {
		cfg.Logger = log.NewNop()
	}
	return &Agent{
		reasoner: cfg.Reasoner,
		registry: cfg.Registry,
		maxTurns: cfg.MaxTurns,
		limiter:  cfg.Limiter,
		logger:   cfg.Logger,
	}, nil
}

// Run answers one question. It always returns a transcript with a non-empty
// answer unless the model itself fails.
func (a *Agent) Run(ctx context.Context, question string) (*Transcript, error) {
	transcript := &Transcript{ID: uuid.NewString(), Question: question}
	logger := a.logger.With("run_id", transcript.ID)
	messages := []*ai.Message{ai.NewUserMessage(ai.NewTextPart(question))}
	sideEffects := 0

	for turn := 0; turn < a.maxTurns; turn++ {
		if a.limiter != nil {
			if err := a.limiter.Wait(ctx); err != nil {
				return nil, fmt.Errorf("rate limit wait: %w", err)
			}
		}

		resp, err := a.reasoner.Reason(ctx, messages)
		if err != nil {
			return nil, fmt.Errorf("reasoning turn %d: %w", turn+1, err)
		}

		requests := resp.ToolRequests()
		current := Turn{Thought: strings.TrimSpace(resp.Text())}

		if len(requests) == 0 {
			// Final answer.
			transcript.Turns = append(transcript.Turns, current)
			transcript.Answer = current.Thought
			if transcript.Answer == "" {
				transcript.Answer = "I was unable to produce an answer."
			}
			logger.Info("agent finished", "turns", len(transcript.Turns))
			return transcript, nil
		}

		// Feed the model's own message back so the tool responses have
		// their requests in context.
		if resp.Message != nil {
			messages = append(messages, resp.Message)
		}

		parts := make([]*ai.Part, 0, len(requests))
		for _, req := range requests {
			current.Actions = append(current.Actions, Action{Tool: req.Name, Input: req.Input})

			observation := a.act(ctx, req, &sideEffects)
			current.Observations = append(current.Observations, observation)

			parts = append(parts, ai.NewToolResponsePart(&ai.ToolResponse{
				Name:   req.Name,
				Ref:    req.Ref,
				Output: observation,
			}))
		}
		messages = append(messages, ai.NewMessage(ai.RoleTool, nil, parts...))
		transcript.Turns = append(transcript.Turns, current)
	}

	// Cap reached. Answer from whatever the loop observed.
	transcript.Truncated = true
	transcript.Answer = fmt.Sprintf(truncatedAnswer, summarize(transcript.Turns))
	logger.Warn("agent hit iteration cap", "max_turns", a.maxTurns)
	return transcript, nil
}

// act executes one tool request and renders the result as an observation
// string. Failures never abort the loop; the model sees them and reacts.
func (a *Agent) act(ctx context.Context, req *ai.ToolRequest, sideEffects *int) string {
	tool, err := a.registry.Get(req.Name)
	if err != nil {
		a.logger.Warn("model requested unknown tool", "tool", req.Name)
		return fmt.Sprintf("error: %v", err)
	}

	if tool.SideEffecting() {
		if *sideEffects >= maxSideEffects {
			a.logger.Warn("side-effect budget exhausted", "tool", req.Name)
			return fmt.Sprintf("declined: %s already used the maximum of %d side-effecting calls for this request", req.Name, maxSideEffects)
		}
		*sideEffects++
	}

	a.logger.Debug("executing tool", "tool", req.Name)
	output, err := tool.Execute(ctx, req.Input)
	if err != nil {
		a.logger.Warn("tool execution failed", "tool", req.Name, "error", err)
		return fmt.Sprintf("error: %s failed: %v", req.Name, err)
	}
	return renderOutput(output)
}

// renderOutput flattens a tool result into observation text.
func renderOutput(output any) string {
	switch v := output.(type) {
	case string:
		return v
	case nil:
		return "(no output)"
	default:
		return fmt.Sprintf("%+v", v)
	}
}

// summarize renders observed tool results for the truncation answer.
func summarize(turns []Turn) string {
	var sb strings.Builder
	for _, turn := range turns {
		for i, action := range turn.Actions {
			fmt.Fprintf(&sb, "- %s: %s\n", action.Tool, turn.Observations[i])
		}
	}
	if sb.Len() == 0 {
		return "- no tool results were collected"
	}
	return strings.TrimRight(sb.String(), "\n")
}
