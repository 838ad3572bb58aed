package tools

import (
	"context"
	"fmt"

	"github.com/sagekit/sage/internal/mail"
	"github.com/sagekit/sage/internal/rag"
)

// Tool names are the contract between the registry and the model prompts.
const (
	QueryDocumentsName = "query_documents"
	WebSearchName      = "web_search"
	SendEmailName      = "send_email"
)

// DocumentAnswerer answers a question from the indexed corpus, escalating to
// the web when the corpus comes up empty.
type DocumentAnswerer interface {
	Query(ctx context.Context, question string) (*rag.Answer, error)
}

// WebAnswerer answers a question directly from live web results.
type WebAnswerer interface {
	Answer(ctx context.Context, query string) (string, error)
}

// QueryDocumentsInput is the model-facing input schema for query_documents.
type QueryDocumentsInput struct {
	Question string `json:"question" jsonschema_description:"The question to answer from the indexed documents"`
}

// QueryDocumentsOutput carries the answer plus provenance so the agent can
// tell the user where an answer came from.
type QueryDocumentsOutput struct {
	Answer       string `json:"answer"`
	Source       string `json:"source"`
	UsedFallback bool   `json:"used_fallback"`
}

// NewQueryDocumentsTool wraps the RAG engine as an agent tool.
func NewQueryDocumentsTool(engine DocumentAnswerer) *ExecutableTool {
	return NewTool(
		QueryDocumentsName,
		"Answer a question using the locally indexed document collection. "+
			"Prefer this for anything the saved documentation might cover; it "+
			"automatically falls back to a web search when the documents have no answer.",
		false,
		func(ctx context.Context, input QueryDocumentsInput) (QueryDocumentsOutput, error) {
			answer, err := engine.Query(ctx, input.Question)
			if err != nil {
				return QueryDocumentsOutput{}, err
			}
			return QueryDocumentsOutput{
				Answer:       answer.Text,
				Source:       string(answer.Source),
				UsedFallback: answer.FallbackTriggered,
			}, nil
		},
	)
}

// WebSearchInput is the model-facing input schema for web_search.
type WebSearchInput struct {
	Query string `json:"query" jsonschema_description:"The search query to run on the web"`
}

// NewWebSearchTool wraps the web-retrieval path as an agent tool.
func NewWebSearchTool(web WebAnswerer) *ExecutableTool {
	return NewTool(
		WebSearchName,
		"Search the live web and answer from the fetched pages. Use this for "+
			"current events or anything clearly outside the indexed documents.",
		false,
		func(ctx context.Context, input WebSearchInput) (string, error) {
			return web.Answer(ctx, input.Query)
		},
	)
}

// SendEmailInput is the model-facing input schema for send_email.
type SendEmailInput struct {
	To      string `json:"to" jsonschema_description:"Recipient email address"`
	Subject string `json:"subject" jsonschema_description:"Email subject line"`
	Body    string `json:"body" jsonschema_description:"Plain-text email body"`
}

// NewSendEmailTool wraps the mail sender as an agent tool. Dispatch failures
// come back as a textual result rather than an error so the model can read
// the outcome and react, instead of aborting the turn.
func NewSendEmailTool(sender mail.Sender) *ExecutableTool {
	return NewTool(
		SendEmailName,
		"Send an email. Use only when the user explicitly asks for an email "+
			"to be sent, and never send more than one per request.",
		true,
		func(ctx context.Context, input SendEmailInput) (string, error) {
			msg := mail.Message{To: input.To, Subject: input.Subject, Body: input.Body}
			if err := sender.Send(ctx, msg); err != nil {
				return fmt.Sprintf("Email sending failed: %v", err), nil
			}
			return fmt.Sprintf("Successfully sent email to %s", input.To), nil
		},
	)
}
