package rag

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sagekit/sage/internal/knowledge"
	"github.com/sagekit/sage/internal/log"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGenerator records the prompt it received and returns a canned answer.
type fakeGenerator struct {
	answer string
	err    error
	prompt string
	calls  int
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	f.calls++
	f.prompt = prompt
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

func result(content string, score float32) knowledge.Result {
	return knowledge.Result{
		Chunk:      knowledge.Chunk{ID: content, DocumentID: "d", Content: content},
		Similarity: score,
	}
}

func TestSynthesize_FiltersBelowCutoff(t *testing.T) {
	gen := &fakeGenerator{answer: "grounded answer"}
	synth, err := NewSynthesizer(gen, 0.5, log.NewNop())
	require.NoError(t, err)

	_, err = synth.Synthesize(context.Background(), "q", []knowledge.Result{
		result("keep me", 0.9),
		result("borderline", 0.5),
		result("drop me", 0.49),
	})
	require.NoError(t, err)

	assert.Contains(t, gen.prompt, "keep me")
	assert.Contains(t, gen.prompt, "borderline") // cutoff is inclusive
	assert.NotContains(t, gen.prompt, "drop me")
	assert.Contains(t, gen.prompt, "Query: q")
}

func TestSynthesize_EmptyContextStillCallsModel(t *testing.T) {
	gen := &fakeGenerator{answer: "Empty Response"}
	synth, err := NewSynthesizer(gen, 0.5, log.NewNop())
	require.NoError(t, err)

	answer, err := synth.Synthesize(context.Background(), "q", []knowledge.Result{
		result("too weak", 0.1),
	})
	require.NoError(t, err)

	assert.Equal(t, 1, gen.calls, "synthesis proceeds with an empty context set")
	assert.Contains(t, gen.prompt, "(no context available)")
	assert.Equal(t, "Empty Response", answer)
}

func TestSynthesize_SingleModelCall(t *testing.T) {
	gen := &fakeGenerator{answer: "answer"}
	synth, err := NewSynthesizer(gen, 0, log.NewNop())
	require.NoError(t, err)

	_, err = synth.Synthesize(context.Background(), "q", []knowledge.Result{result("a", 1)})
	require.NoError(t, err)
	assert.Equal(t, 1, gen.calls)
}

func TestSynthesize_GenerationErrorPropagates(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("quota exceeded")}
	synth, err := NewSynthesizer(gen, 0.5, log.NewNop())
	require.NoError(t, err)

	_, err = synth.Synthesize(context.Background(), "q", nil)
	require.Error(t, err)
	assert.Equal(t, 1, gen.calls, "no internal retry")
}

func TestSynthesize_TrimsAnswer(t *testing.T) {
	gen := &fakeGenerator{answer: "  padded \n"}
	synth, err := NewSynthesizer(gen, 0, log.NewNop())
	require.NoError(t, err)

	answer, err := synth.Synthesize(context.Background(), "q", nil)
	require.NoError(t, err)
	assert.Equal(t, "padded", answer)
}

func TestNewSynthesizer_Validation(t *testing.T) {
	_, err := NewSynthesizer(nil, 0.5, log.NewNop())
	assert.Error(t, err)

	_, err = NewSynthesizer(&fakeGenerator{}, 1.5, log.NewNop())
	assert.Error(t, err)

	_, err = NewSynthesizer(&fakeGenerator{}, -0.1, log.NewNop())
	assert.Error(t, err)
}

func TestContextSection_OrderPreserved(t *testing.T) {
	section := contextSection([]knowledge.Result{
		result("first", 0.9),
		result("second", 0.8),
	})
	assert.Less(t, strings.Index(section, "first"), strings.Index(section, "second"))
}
