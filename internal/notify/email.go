package notify

import (
	"bountywatch/internal/assert"
	"bountywatch/internal/posting"
	"bountywatch/internal/telemetry"
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/jordan-wright/email"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("bountywatch/internal/notify")

const report_email_send = "email.send"

type EmailConfig struct {
	Server   string
	Port     int
	From     string
	Password string
	To       []string
}

// Email sends one plain text message per posting over SMTP.
type Email struct {
	config EmailConfig
	tel    telemetry.API
}

func NewEmail(config EmailConfig, tel telemetry.API) Email {
	assert.NotEmptyStr(config.Server)
	assert.NotEmptyStr(config.From)
	assert.Positive("smtp port", config.Port)
	if len(config.To) == 0 {
		panic("email notifier needs at least one recipient")
	}
	return Email{
		config: config,
		tel:    telemetry.NewScopedAPI("notify", tel),
	}
}

func (e Email) send(mail *email.Email) error {
	addr := fmt.Sprintf("%s:%d", e.config.Server, e.config.Port)
	err := mail.Send(
		addr,
		smtp.PlainAuth("", e.config.From, e.config.Password, e.config.Server),
	)
	// local relays and test servers do not advertise AUTH at all
	if err != nil && strings.Contains(err.Error(), "server doesn't support AUTH") {
		err = mail.Send(addr, nil)
	}
	return err
}

func (e Email) Notify(ctx context.Context, p posting.Posting) error {
	_, span := tracer.Start(ctx, "Email.Notify")
	defer span.End()
	span.SetAttributes(attribute.Int("recipients", len(e.config.To)))

	mail := email.NewEmail()
	mail.From = e.config.From
	mail.To = e.config.To
	mail.Subject = Subject(p)
	mail.Text = []byte(PlainText(p))

	err := e.send(mail)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to send email")
		e.tel.ReportBroken(report_email_send, err, p.ID)
		return fmt.Errorf("send email for %q: %w", p.Title, err)
	}
	return nil
}
