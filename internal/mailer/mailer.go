package mailer

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"
)

// Mailer delivers the two transactional messages the auth flows need.
// Implementations do not retry; a failed send surfaces to the caller.
type Mailer interface {
	SendOTP(ctx context.Context, to, name, code string) error
	SendMagicLink(ctx context.Context, to, name, link string) error
}

type ResendMailer struct {
	client *resend.Client
	from   string
}

func NewResendMailer(apiKey, from string) *ResendMailer {
	return &ResendMailer{
		client: resend.NewClient(apiKey),
		from:   from,
	}
}

func (m *ResendMailer) SendOTP(ctx context.Context, to, name, code string) error {
	html := fmt.Sprintf(`<p>Hi %s,</p>
<p>Your verification code is:</p>
<h2>%s</h2>
<p>This code expires in 15 minutes.</p>`, displayName(name), code)

	return m.send(ctx, to, "Your verification code", html)
}

func (m *ResendMailer) SendMagicLink(ctx context.Context, to, name, link string) error {
	html := fmt.Sprintf(`<p>Hi %s,</p>
<p>Click the link below to sign in:</p>
<p><a href="%s">Sign in</a></p>
<p>This link expires in 15 minutes.</p>`, displayName(name), link)

	return m.send(ctx, to, "Your sign-in link", html)
}

func (m *ResendMailer) send(ctx context.Context, to, subject, html string) error {
	_, err := m.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    m.from,
		To:      []string{to},
		Subject: subject,
		Html:    html,
	})

	return err
}

func displayName(name string) string {
	if name == "" {
		return "there"
	}
	return name
}
