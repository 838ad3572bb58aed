package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/firebase/genkit/go/ai"
	"github.com/sagekit/sage/internal/log"
	"github.com/sagekit/sage/internal/tools"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedReasoner replays canned responses in order. When the script runs
// out it keeps replaying the last response.
type scriptedReasoner struct {
	script []*ai.ModelResponse
	err    error
	calls  int
	seen   [][]*ai.Message
}

func (s *scriptedReasoner) Reason(_ context.Context, messages []*ai.Message) (*ai.ModelResponse, error) {
	s.calls++
	s.seen = append(s.seen, messages)
	if s.err != nil {
		return nil, s.err
	}
	i := s.calls - 1
	if i >= len(s.script) {
		i = len(s.script) - 1
	}
	return s.script[i], nil
}

func textResponse(text string) *ai.ModelResponse {
	return &ai.ModelResponse{
		Message: ai.NewMessage(ai.RoleModel, nil, ai.NewTextPart(text)),
	}
}

func toolResponse(thought string, requests ...*ai.ToolRequest) *ai.ModelResponse {
	parts := []*ai.Part{}
	if thought != "" {
		parts = append(parts, ai.NewTextPart(thought))
	}
	for _, req := range requests {
		parts = append(parts, ai.NewToolRequestPart(req))
	}
	return &ai.ModelResponse{Message: ai.NewMessage(ai.RoleModel, nil, parts...)}
}

// countingTool records executions and returns a fixed result.
func countingTool(name string, sideEffecting bool, result string, execErr error) (*tools.ExecutableTool, *int) {
	count := new(int)
	tool := tools.NewTool(name, "test tool", sideEffecting,
		func(_ context.Context, _ struct{}) (string, error) {
			*count++
			if execErr != nil {
				return "", execErr
			}
			return result, nil
		})
	return tool, count
}

func newTestAgent(t *testing.T, reasoner Reasoner, maxTurns int, registered ...tools.Tool) *Agent {
	t.Helper()
	reg := tools.NewRegistry()
	for _, tool := range registered {
		require.NoError(t, reg.Register(tool))
	}
	a, err := New(Config{
		Reasoner: reasoner,
		Registry: reg,
		MaxTurns: maxTurns,
		Logger:   log.NewNop(),
	})
	require.NoError(t, err)
	return a
}

func TestRun_DirectAnswer(t *testing.T) {
	reasoner := &scriptedReasoner{script: []*ai.ModelResponse{
		textResponse("The answer is 42."),
	}}
	a := newTestAgent(t, reasoner, 5)

	transcript, err := a.Run(context.Background(), "what is the answer?")
	require.NoError(t, err)

	assert.NotEmpty(t, transcript.ID)
	assert.Equal(t, "The answer is 42.", transcript.Answer)
	assert.False(t, transcript.Truncated)
	assert.Len(t, transcript.Turns, 1)
	assert.Equal(t, 1, reasoner.calls)
}

func TestRun_ToolResultFlowsBackToModel(t *testing.T) {
	search, count := countingTool("web_search", false, "the web says hello", nil)
	reasoner := &scriptedReasoner{script: []*ai.ModelResponse{
		toolResponse("let me search", &ai.ToolRequest{Name: "web_search", Input: map[string]any{}}),
		textResponse("Based on the search: hello."),
	}}
	a := newTestAgent(t, reasoner, 5, search)

	transcript, err := a.Run(context.Background(), "q")
	require.NoError(t, err)

	assert.Equal(t, 1, *count)
	assert.Equal(t, "Based on the search: hello.", transcript.Answer)
	require.Len(t, transcript.Turns, 2)
	assert.Equal(t, []string{"the web says hello"}, transcript.Turns[0].Observations)

	// Second model call must see the tool response message.
	require.Equal(t, 2, reasoner.calls)
	second := reasoner.seen[1]
	require.NotEmpty(t, second)
	assert.Equal(t, ai.RoleTool, second[len(second)-1].Role)
}

func TestRun_IterationCapProducesNonEmptyAnswer(t *testing.T) {
	search, count := countingTool("web_search", false, "partial result", nil)
	// Always requests a tool, never answers.
	reasoner := &scriptedReasoner{script: []*ai.ModelResponse{
		toolResponse("", &ai.ToolRequest{Name: "web_search", Input: map[string]any{}}),
	}}
	a := newTestAgent(t, reasoner, 3, search)

	transcript, err := a.Run(context.Background(), "q")
	require.NoError(t, err)

	assert.Equal(t, 3, reasoner.calls)
	assert.Equal(t, 3, *count)
	assert.True(t, transcript.Truncated)
	assert.NotEmpty(t, transcript.Answer)
	assert.Contains(t, transcript.Answer, "partial result")
}

func TestRun_ToolFailureBecomesObservation(t *testing.T) {
	failing, _ := countingTool("web_search", false, "", errors.New("network down"))
	reasoner := &scriptedReasoner{script: []*ai.ModelResponse{
		toolResponse("", &ai.ToolRequest{Name: "web_search", Input: map[string]any{}}),
		textResponse("I could not search the web."),
	}}
	a := newTestAgent(t, reasoner, 5, failing)

	transcript, err := a.Run(context.Background(), "q")
	require.NoError(t, err)

	require.Len(t, transcript.Turns, 2)
	require.Len(t, transcript.Turns[0].Observations, 1)
	assert.Contains(t, transcript.Turns[0].Observations[0], "network down")
	assert.Equal(t, "I could not search the web.", transcript.Answer)
}

func TestRun_UnknownToolBecomesObservation(t *testing.T) {
	reasoner := &scriptedReasoner{script: []*ai.ModelResponse{
		toolResponse("", &ai.ToolRequest{Name: "time_travel", Input: map[string]any{}}),
		textResponse("done"),
	}}
	a := newTestAgent(t, reasoner, 5)

	transcript, err := a.Run(context.Background(), "q")
	require.NoError(t, err)
	assert.Contains(t, transcript.Turns[0].Observations[0], "unknown tool")
}

func TestRun_SideEffectBudgetIsOnePerRun(t *testing.T) {
	email, count := countingTool("send_email", true, "email sent", nil)
	reasoner := &scriptedReasoner{script: []*ai.ModelResponse{
		toolResponse("",
			&ai.ToolRequest{Name: "send_email", Input: map[string]any{}},
			&ai.ToolRequest{Name: "send_email", Input: map[string]any{}},
		),
		toolResponse("", &ai.ToolRequest{Name: "send_email", Input: map[string]any{}}),
		textResponse("all done"),
	}}
	a := newTestAgent(t, reasoner, 5, email)

	transcript, err := a.Run(context.Background(), "q")
	require.NoError(t, err)

	assert.Equal(t, 1, *count)
	require.Len(t, transcript.Turns, 3)
	assert.Equal(t, "email sent", transcript.Turns[0].Observations[0])
	assert.Contains(t, transcript.Turns[0].Observations[1], "declined")
	assert.Contains(t, transcript.Turns[1].Observations[0], "declined")
}

func TestRun_EmptyFinalAnswerReplaced(t *testing.T) {
	reasoner := &scriptedReasoner{script: []*ai.ModelResponse{
		textResponse("   "),
	}}
	a := newTestAgent(t, reasoner, 5)

	transcript, err := a.Run(context.Background(), "q")
	require.NoError(t, err)
	assert.NotEmpty(t, transcript.Answer)
}

func TestRun_ReasonerErrorAborts(t *testing.T) {
	reasoner := &scriptedReasoner{err: errors.New("model overloaded")}
	a := newTestAgent(t, reasoner, 5)

	_, err := a.Run(context.Background(), "q")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model overloaded")
}

func TestNew_Validation(t *testing.T) {
	reg := tools.NewRegistry()
	reasoner := &scriptedReasoner{}

	tests := []struct {
		name string
		cfg  Config
	}{
		{"missing reasoner", Config{Registry: reg, MaxTurns: 5}},
		{"missing registry", Config{Reasoner: reasoner, MaxTurns: 5}},
		{"zero max turns", Config{Reasoner: reasoner, Registry: reg}},
		{"negative max turns", Config{Reasoner: reasoner, Registry: reg, MaxTurns: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}
