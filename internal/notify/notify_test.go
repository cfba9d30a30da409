package notify

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
	"go.uber.org/zap"

	"github.com/iliyamo/parking-reservation/internal/model"
)

type fakeMail struct {
	sent   []*mail.SGMailV3
	status int
	err    error
}

func (f *fakeMail) SendWithContext(_ context.Context, m *mail.SGMailV3) (*rest.Response, error) {
	f.sent = append(f.sent, m)
	if f.err != nil {
		return nil, f.err
	}
	return &rest.Response{StatusCode: f.status}, nil
}

type fakeSMS struct {
	params []*openapi.CreateMessageParams
}

func (f *fakeSMS) CreateMessage(p *openapi.CreateMessageParams) (*openapi.ApiV2010Message, error) {
	f.params = append(f.params, p)
	sid := "SM123"
	return &openapi.ApiV2010Message{Sid: &sid}, nil
}

func TestConstructorsSkipUnconfiguredChannels(t *testing.T) {
	if NewEmailSender("", "a@b.c", "x", nil) != nil {
		t.Error("email sender without key should be nil")
	}
	if NewSMSSender("sid", "", "+1", nil) != nil {
		t.Error("sms sender without token should be nil")
	}
}

func TestEmailSender(t *testing.T) {
	fm := &fakeMail{status: 202}
	s := &EmailSender{client: fm, from: mail.NewEmail("Parking", "no-reply@parking.local"), log: zap.NewNop()}

	u := model.User{ID: 3, Email: "driver@example.com", Name: "Driver"}
	if err := s.Notify(context.Background(), u, "Reservation received", "Reservation #1 <ok>"); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if len(fm.sent) != 1 || fm.sent[0].Subject != "Reservation received" {
		t.Fatalf("sent = %+v", fm.sent)
	}
	if html := fm.sent[0].Content[1].Value; !strings.Contains(html, "&lt;ok&gt;") {
		t.Fatalf("html body not escaped: %q", html)
	}

	fm.status = 400
	if err := s.Notify(context.Background(), u, "s", "b"); err == nil {
		t.Fatal("expected error on non-2xx")
	}
	fm.err = errors.New("down")
	if err := s.Notify(context.Background(), u, "s", "b"); err == nil {
		t.Fatal("expected transport error")
	}
}

func TestSMSSender(t *testing.T) {
	fs := &fakeSMS{}
	s := &SMSSender{client: fs, from: "+15550000000", log: zap.NewNop()}

	if err := s.Notify(context.Background(), model.User{ID: 1}, "s", "b"); err != nil || len(fs.params) != 0 {
		t.Fatalf("user without phone must be skipped: %v", err)
	}
	local := "0612345678"
	if err := s.Notify(context.Background(), model.User{ID: 1, Phone: &local}, "s", "b"); err == nil {
		t.Fatal("expected E.164 error")
	}
	phone := "+31612345678"
	long := strings.Repeat("x", 400)
	if err := s.Notify(context.Background(), model.User{ID: 1, Phone: &phone}, "Subject", long); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if len(fs.params) != 1 || len(*fs.params[0].Body) != maxSMSLen || *fs.params[0].To != phone {
		t.Fatalf("unexpected params %+v", fs.params)
	}
}
