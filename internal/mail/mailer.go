// Package mail abstracts the external transactional-email sender.
package mail

import (
	"context"
	"fmt"

	"circle/internal/observability"

	"gopkg.in/gomail.v2"
)

// Mailer is the mail delegate contract.
type Mailer interface {
	SendPasswordReset(ctx context.Context, to, resetURL string) error
}

// SMTPMailer sends mail through an SMTP relay using gomail.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPMailer returns a mailer bound to the given SMTP relay.
func NewSMTPMailer(host string, port int, username, password, from string) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

// SendPasswordReset emails the reset link to the user's registered address.
// There is no timeout policy for the relay; the call blocks until the SMTP
// conversation completes or fails.
func (m *SMTPMailer) SendPasswordReset(_ context.Context, to, resetURL string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "Reset Password")
	msg.SetBody("text/html", fmt.Sprintf(`
		<h1>Reset Password</h1>
		<p>Click the link below to reset your password:</p>
		<a href="%s">Reset Password</a>
		<p>The link is valid for 1 hour.</p>
	`, resetURL))

	if err := m.dialer.DialAndSend(msg); err != nil {
		observability.MailDeliveries.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to send reset email: %w", err)
	}

	observability.MailDeliveries.WithLabelValues("ok").Inc()
	return nil
}
