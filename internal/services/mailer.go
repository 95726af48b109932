package services

import (
	"context"
	"fmt"
	"html/template"
	"log"
	"strings"

	"gopkg.in/gomail.v2"
)

// CodeSender delivers verification codes to an email address.
type CodeSender interface {
	SendVerificationCode(ctx context.Context, email, name, code string) error
}

// Mailer sends transactional emails over SMTP.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
}

// NewMailer creates a Mailer. With an empty host the mailer only logs.
func NewMailer(host string, port int, username, password, from string) *Mailer {
	m := &Mailer{from: from}
	if host != "" {
		m.dialer = gomail.NewDialer(host, port, username, password)
	}
	return m
}

var verificationTemplate = template.Must(template.New("verification").Parse(`<div style="font-family:Arial,sans-serif">
<h2>Hola {{.Name}},</h2>
<p>Tu código de verificación es:</p>
<p style="font-size:32px;font-weight:bold;letter-spacing:6px">{{.Code}}</p>
<p>El código vence en 10 minutos.</p>
</div>`))

// SendVerificationCode emails the 6-digit code to a pending registration.
func (m *Mailer) SendVerificationCode(ctx context.Context, email, name, code string) error {
	if m.dialer == nil {
		log.Printf("[Mail] SMTP not configured, code for %s not sent", email)
		return nil
	}

	var body strings.Builder
	if err := verificationTemplate.Execute(&body, struct{ Name, Code string }{name, code}); err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", email)
	msg.SetHeader("Subject", "Código de verificación")
	msg.SetBody("text/plain", fmt.Sprintf("Tu código de verificación es %s", code))
	msg.AddAlternative("text/html", body.String())

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := m.dialer.DialAndSend(msg); err != nil {
		log.Printf("[Mail] Failed to send code to %s: %v", email, err)
		return err
	}
	return nil
}
