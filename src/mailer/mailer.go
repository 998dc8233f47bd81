// Package mailer delivers finished artifacts by email through Mailgun.
package mailer

import (
	"context"
	"fmt"
	"strings"

	"github.com/mailgun/mailgun-go/v4"
)

type Mailer struct {
	mg   *mailgun.MailgunImpl
	from string
}

// New builds a Mailer. An empty domain or API key yields an unconfigured
// mailer; callers should check Configured before sending.
func New(domain, apiKey, from, region string) *Mailer {
	if domain == "" || apiKey == "" {
		return &Mailer{}
	}

	mg := mailgun.NewMailgun(domain, apiKey)
	if strings.EqualFold(region, "eu") {
		mg.SetAPIBase(mailgun.APIBaseEU)
	}
	if from == "" {
		from = fmt.Sprintf("govector <noreply@%s>", domain)
	}
	return &Mailer{mg: mg, from: from}
}

func (m *Mailer) Configured() bool {
	return m.mg != nil
}

// SendArtifact emails one converted file as an attachment.
func (m *Mailer) SendArtifact(ctx context.Context, recipient, format string, data []byte) error {
	if !m.Configured() {
		return fmt.Errorf("email service is not configured")
	}

	format = strings.ToLower(format)
	filename := fmt.Sprintf("govector-output.%s", format)

	msg := m.mg.NewMessage(m.from, "Your govector file is ready",
		"Your vector file is attached and ready to use.", recipient)
	msg.SetHtml(fmt.Sprintf(
		"<p>Your vector file is attached and ready to use.</p><p><strong>Format:</strong> %s<br><strong>File:</strong> %s</p>",
		strings.ToUpper(format), filename))
	msg.AddBufferAttachment(filename, data)

	if _, _, err := m.mg.Send(ctx, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
