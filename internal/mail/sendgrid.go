package mail

import (
	"context"
	"errors"
	"fmt"
	"html"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"

	"github.com/inkwell/backend/internal/logging"
)

// SendGridSender delivers messages through the SendGrid v3 API.
type SendGridSender struct {
	client   *sendgrid.Client
	fromName string
	fromAddr string
	logger   *zap.Logger
}

// NewSendGridSender creates a SendGrid sender.
func NewSendGridSender(apiKey, fromName, fromAddr string, logger *zap.Logger) (*SendGridSender, error) {
	if apiKey == "" {
		return nil, errors.New("sendgrid api key is empty")
	}
	if fromAddr == "" {
		return nil, errors.New("from address is empty")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SendGridSender{
		client:   sendgrid.NewSendClient(apiKey),
		fromName: fromName,
		fromAddr: fromAddr,
		logger:   logger,
	}, nil
}

// Send delivers m. Any status >= 400 is an error.
func (s *SendGridSender) Send(ctx context.Context, m Message) error {
	if m.To == "" {
		return errors.New("to address is empty")
	}
	message := sgmail.NewSingleEmail(
		sgmail.NewEmail(s.fromName, s.fromAddr),
		m.Subject,
		sgmail.NewEmail("", m.To),
		m.Text,
		"<pre>"+html.EscapeString(m.Text)+"</pre>",
	)
	resp, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid send failed: status=%d body=%s", resp.StatusCode, resp.Body)
	}
	s.logger.Info("mail sent", zap.Int("status", resp.StatusCode), logging.Email("to", m.To), zap.String("subject", m.Subject))
	return nil
}
