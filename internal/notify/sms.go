package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
	"go.uber.org/zap"

	"github.com/iliyamo/parking-reservation/internal/model"
)

// maxSMSLen keeps a message within two concatenated SMS segments.
const maxSMSLen = 300

type messageClient interface {
	CreateMessage(params *openapi.CreateMessageParams) (*openapi.ApiV2010Message, error)
}

// SMSSender texts notifications through Twilio to users with a phone
// number in E.164 form.
type SMSSender struct {
	client messageClient
	from   string
	log    *zap.Logger
}

// NewSMSSender returns nil unless all three credentials are set.
func NewSMSSender(accountSID, authToken, from string, log *zap.Logger) *SMSSender {
	if accountSID == "" || authToken == "" || from == "" {
		return nil
	}
	if log == nil {
		log = zap.NewNop()
	}
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username:   accountSID,
		Password:   authToken,
		AccountSid: accountSID,
	})
	return &SMSSender{client: client.Api, from: from, log: log}
}

// Notify ignores users without a phone number. The Twilio client has no
// context support, so ctx is only checked before sending.
func (s *SMSSender) Notify(ctx context.Context, u model.User, subject, body string) error {
	if u.Phone == nil || *u.Phone == "" {
		return nil
	}
	to := strings.TrimSpace(*u.Phone)
	if !strings.HasPrefix(to, "+") {
		return fmt.Errorf("phone number %q is not in E.164 format", to)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	text := subject + ": " + body
	if len(text) > maxSMSLen {
		text = text[:maxSMSLen-3] + "..."
	}
	params := &openapi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(s.from)
	params.SetBody(text)

	resp, err := s.client.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("twilio send: %w", err)
	}
	if resp != nil && resp.Sid != nil {
		s.log.Debug("sms sent", zap.Uint64("user_id", u.ID), zap.String("sid", *resp.Sid))
	}
	return nil
}
