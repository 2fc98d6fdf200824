package notify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"time"

	"github.com/resend/resend-go/v2"
)

const confirmationSubject = "You're on the early access list"

var confirmationTemplate = template.Must(template.New("confirmation").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: sans-serif; color: #111;">
<p>Hi {{.FullName}},</p>
<p>Thanks for registering your interest. Your place on the early access list is confirmed.</p>
<p>We will contact you at {{.Email}} as soon as the first offering opens.</p>
</body>
</html>`))

type emailSender interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

// ResendMailer delivers transactional email through Resend.
type ResendMailer struct {
	emails  emailSender
	from    string
	timeout time.Duration
}

func NewResendMailer(apiKey, from string, timeout time.Duration) *ResendMailer {
	client := resend.NewClient(apiKey)
	return &ResendMailer{emails: client.Emails, from: from, timeout: timeout}
}

// SendConfirmation renders and sends the confirmation email and returns the
// provider's message id.
func (m *ResendMailer) SendConfirmation(ctx context.Context, fullName, email string) (string, error) {
	var html bytes.Buffer
	data := struct{ FullName, Email string }{fullName, email}
	if err := confirmationTemplate.Execute(&html, data); err != nil {
		return "", fmt.Errorf("render confirmation email: %w", err)
	}
	return m.send(ctx, email, confirmationSubject, html.String())
}

func (m *ResendMailer) send(ctx context.Context, to, subject, html string) (string, error) {
	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	resp, err := m.emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    m.from,
		To:      []string{to},
		Subject: subject,
		Html:    html,
	})
	if err != nil {
		return "", err
	}
	if resp == nil || resp.Id == "" {
		return "", errors.New("email provider returned no message id")
	}
	return resp.Id, nil
}
