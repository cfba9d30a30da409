// Package notify delivers user notifications over email (SendGrid) and SMS
// (Twilio). Both senders implement service.Notifier.
package notify

import (
	"context"
	"fmt"
	"html"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"

	"github.com/iliyamo/parking-reservation/internal/model"
)

// mailClient is the part of *sendgrid.Client used here.
type mailClient interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

// EmailSender sends notifications through SendGrid.
type EmailSender struct {
	client mailClient
	from   *mail.Email
	log    *zap.Logger
}

// NewEmailSender returns nil when apiKey is empty so callers can skip the
// channel.
func NewEmailSender(apiKey, fromEmail, fromName string, log *zap.Logger) *EmailSender {
	if apiKey == "" || fromEmail == "" {
		return nil
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &EmailSender{
		client: sendgrid.NewSendClient(apiKey),
		from:   mail.NewEmail(fromName, fromEmail),
		log:    log,
	}
}

func (s *EmailSender) Notify(ctx context.Context, u model.User, subject, body string) error {
	if u.Email == "" {
		return nil
	}
	to := mail.NewEmail(u.Name, u.Email)
	htmlBody := "<p>" + html.EscapeString(body) + "</p>"
	msg := mail.NewSingleEmail(s.from, subject, to, body, htmlBody)

	resp, err := s.client.SendWithContext(ctx, msg)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("sendgrid returned %d: %s", resp.StatusCode, resp.Body)
	}
	s.log.Debug("email sent", zap.Uint64("user_id", u.ID), zap.String("subject", subject), zap.Int("status", resp.StatusCode))
	return nil
}
