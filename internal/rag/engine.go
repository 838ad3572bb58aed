package rag

import (
	"context"
	"errors"
	"fmt"

	"github.com/sagekit/sage/internal/log"
)

// Source identifies which retrieval path produced an answer.
type Source string

const (
	// SourceIndex means the answer was grounded in the local document index.
	SourceIndex Source = "index"

	// SourceWeb means the answer came from the ephemeral web-retrieval path.
	SourceWeb Source = "web"
)

// Answer is the result of a fallback-capable query.
type Answer struct {
	Text              string
	Source            Source
	FallbackTriggered bool // true when the trigger fired, even if fallback was exhausted
}

// WebFallback is the escalation path consulted when the local index answer
// looks insufficiently grounded. Implemented by websearch.Path.
type WebFallback interface {
	Answer(ctx context.Context, query string) (string, error)
}

// Engine is the retrieval-with-fallback decision path: retrieve → synthesize →
// trigger → (maybe) web fallback. One query is processed sequentially end to
// end; every external call is a blocking suspension point.
type Engine struct {
	retriever *Retriever
	synth     *Synthesizer
	trigger   *Trigger
	web       WebFallback
	logger    log.Logger
}

// NewEngine wires the query path. web may be nil, which disables escalation
// (the trigger still runs so the answer reports FallbackTriggered).
func NewEngine(retriever *Retriever, synth *Synthesizer, trigger *Trigger, web WebFallback, logger log.Logger) (*Engine, error) {
	if retriever == nil {
		return nil, fmt.Errorf("retriever is required")
	}
	if synth == nil {
		return nil, fmt.Errorf("synthesizer is required")
	}
	if trigger == nil {
		return nil, fmt.Errorf("trigger is required")
	}
	if logger == nil {
		logger = log.NewNop()
	}
	return &Engine{
		retriever: retriever,
		synth:     synth,
		trigger:   trigger,
		web:       web,
		logger:    logger,
	}, nil
}

// Query answers a question from the local index, escalating to web fallback
// when the trigger fires. An exhausted fallback (provider failure or zero
// fetched pages) returns the original low-confidence answer rather than an
// error; all other failures propagate unchanged.
func (e *Engine) Query(ctx context.Context, query string) (*Answer, error) {
	results, err := e.retriever.Retrieve(ctx, query)
	if err != nil {
		return nil, err
	}

	text, err := e.synth.Synthesize(ctx, query, results)
	if err != nil {
		return nil, err
	}

	if !e.trigger.NeedsFallback(text) {
		return &Answer{Text: text, Source: SourceIndex}, nil
	}

	e.logger.Info("fallback triggered", "query_length", len(query))
	if e.web == nil {
		return &Answer{Text: text, Source: SourceIndex, FallbackTriggered: true}, nil
	}

	webText, err := e.web.Answer(ctx, query)
	if err != nil {
		if errors.Is(err, ErrFallbackExhausted) {
			e.logger.Warn("web fallback exhausted, returning original answer", "error", err)
			return &Answer{Text: text, Source: SourceIndex, FallbackTriggered: true}, nil
		}
		return nil, err
	}

	return &Answer{Text: webText, Source: SourceWeb, FallbackTriggered: true}, nil
}
