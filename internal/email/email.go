// Package email delivers seizure campaign emails over SMTP.
package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net"
	"time"

	"leadintel_backend/platform/config"

	gomail "github.com/wneessen/go-mail"
)

// Sender delivers one campaign email.
type Sender interface {
	SendCampaignEmail(ctx context.Context, toEmail, subject, body string) error
}

// SMTPSender implements Sender over a direct SMTP connection via go-mail.
type SMTPSender struct {
	host      string
	port      int
	username  string
	password  string
	fromName  string
	fromEmail string
}

// NewSMTPSender creates an SMTPSender from email configuration. Returns nil
// when email sending is disabled; callers treat a nil Sender as a no-op
// channel and actions are still marked dispatched.
func NewSMTPSender(cfg config.EmailConfig) *SMTPSender {
	if cfg == nil || !cfg.GetEmailEnabled() {
		return nil
	}
	return &SMTPSender{
		host:      cfg.GetSMTPHost(),
		port:      cfg.GetSMTPPort(),
		username:  cfg.GetSMTPUsername(),
		password:  cfg.GetSMTPPassword(),
		fromName:  cfg.GetEmailFromName(),
		fromEmail: cfg.GetEmailFromAddress(),
	}
}

var campaignTemplate = template.Must(template.New("campaign").Parse(`<!DOCTYPE html>
<html>
  <body style="font-family: Arial, sans-serif; color: #1a1a1a; line-height: 1.5;">
    <div style="max-width: 600px; margin: 0 auto; padding: 24px;">
      <p style="white-space: pre-line;">{{.Body}}</p>
    </div>
  </body>
</html>`))

// SendCampaignEmail renders the campaign body and delivers it.
func (s *SMTPSender) SendCampaignEmail(ctx context.Context, toEmail, subject, body string) error {
	var rendered bytes.Buffer
	if err := campaignTemplate.Execute(&rendered, struct{ Body string }{Body: body}); err != nil {
		return fmt.Errorf("render campaign email: %w", err)
	}

	msg := gomail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.fromEmail); err != nil {
		return fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(toEmail); err != nil {
		return fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, rendered.String())

	client, err := gomail.NewClient(s.host,
		gomail.WithPort(s.port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.username),
		gomail.WithPassword(s.password),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15*time.Second),
		gomail.WithDialContextFunc(func(dctx context.Context, _ string, addr string) (net.Conn, error) {
			return (&net.Dialer{}).DialContext(dctx, "tcp4", addr)
		}),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}
