// Package mail sends transactional email through SendGrid. It exists for the
// agent's email tool; the Sender interface keeps the provider swappable and
// the tool testable.
package mail

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sagekit/sage/internal/log"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

var (
	// ErrInvalidMessage indicates a message is missing required fields.
	ErrInvalidMessage = errors.New("invalid email message")

	// ErrSend indicates the provider rejected or failed the send.
	ErrSend = errors.New("email send failed")
)

// Message is one outbound email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Validate checks the message has everything the provider requires.
func (m Message) Validate() error {
	if strings.TrimSpace(m.To) == "" {
		return fmt.Errorf("%w: recipient is required", ErrInvalidMessage)
	}
	if !strings.Contains(m.To, "@") {
		return fmt.Errorf("%w: recipient %q is not an address", ErrInvalidMessage, m.To)
	}
	if strings.TrimSpace(m.Subject) == "" {
		return fmt.Errorf("%w: subject is required", ErrInvalidMessage)
	}
	if strings.TrimSpace(m.Body) == "" {
		return fmt.Errorf("%w: body is required", ErrInvalidMessage)
	}
	return nil
}

// Sender dispatches an email message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// sendClient matches the slice of the SendGrid client we use.
type sendClient interface {
	SendWithContext(ctx context.Context, email *sgmail.SGMailV3) (*rest.Response, error)
}

// SendGridSender implements Sender on the SendGrid v3 API.
type SendGridSender struct {
	client sendClient
	sender string
	logger log.Logger
}

// NewSendGridSender creates a sender. The sender address must be verified
// with SendGrid or sends will be rejected.
func NewSendGridSender(apiKey, sender string, logger log.Logger) (*SendGridSender, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("api key is required")
	}
	if sender == "" {
		return nil, fmt.Errorf("sender address is required")
	}
	if logger == nil {
		logger = log.NewNop()
	}
	return &SendGridSender{
		client: sendgrid.NewSendClient(apiKey),
		sender: sender,
		logger: logger,
	}, nil
}

// Send dispatches the message. SendGrid acknowledges accepted mail with 202;
// any non-2xx status is an error.
func (s *SendGridSender) Send(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}

	email := sgmail.NewSingleEmail(
		sgmail.NewEmail("", s.sender),
		msg.Subject,
		sgmail.NewEmail("", msg.To),
		msg.Body,
		"",
	)

	resp, err := s.client.SendWithContext(ctx, email)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSend, err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("%w: provider returned status %d", ErrSend, resp.StatusCode)
	}

	s.logger.Info("email dispatched", "to", msg.To, "subject", msg.Subject, "status", resp.StatusCode)
	return nil
}
