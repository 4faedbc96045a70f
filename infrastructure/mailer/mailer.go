package mailer

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"idle-fm-api/domain/model"
	"idle-fm-api/domain/repository"
	"idle-fm-api/infrastructure/configuration"
	"idle-fm-api/infrastructure/logger"

	"github.com/wneessen/go-mail"
)

var layout = template.Must(template.New("layout").Parse(`<div style="background:#0f0f14;padding:32px;">
  <div style="max-width:560px;margin:0 auto;background:#17171f;padding:32px;border-radius:12px;font-family:Inter,Arial,sans-serif;color:#e6e6f0;line-height:1.6;border:1px solid #2a2a36;">
    <h2 style="margin-top:0;font-family:'Space Mono',monospace;color:#9d7cff;letter-spacing:1px;">{{.Title}}</h2>
    {{- if .Greeting}}
    <p style="margin:16px 0;">{{.Greeting}}</p>
    {{- end}}
    <p style="margin:24px 0;">{{.Body}}</p>
    {{- if and .ButtonText .ButtonURL}}
    <div style="margin:32px 0;">
      <a href="{{.ButtonURL}}" style="display:inline-block;padding:12px 24px;background:#9d7cff;color:#0f0f14;border-radius:8px;text-decoration:none;font-weight:bold;">{{.ButtonText}}</a>
    </div>
    <p style="font-size:12px;color:#8a8a99;">If the button does not work, open this link: {{.ButtonURL}}</p>
    {{- end}}
    <p style="font-size:12px;color:#8a8a99;margin-top:32px;">Idle.fm</p>
  </div>
</div>`))

// Mailer delivers transactional mail over SMTP. Without a configured host it
// only logs the messages it would have sent.
type Mailer struct {
	cfg configuration.Mail
}

func NewMailer(cfg configuration.Mail) repository.IMailer {
	return &Mailer{cfg: cfg}
}

// Render returns the HTML body of msg.
func Render(msg model.MailMessage) (string, error) {
	var buf bytes.Buffer
	if err := layout.Execute(&buf, msg); err != nil {
		return "", fmt.Errorf("failed to render email: %w", err)
	}
	return buf.String(), nil
}

func plainText(msg model.MailMessage) string {
	text := msg.Greeting + "\n\n" + msg.Body
	if msg.ButtonURL != "" {
		text += "\n\n" + msg.ButtonText + ": " + msg.ButtonURL
	}
	return text
}

func (m *Mailer) Send(ctx context.Context, msg model.MailMessage) error {
	html, err := Render(msg)
	if err != nil {
		return err
	}
	if m.cfg.Host == "" {
		logger.WithContext(ctx).WithFields(map[string]interface{}{
			"to":      msg.To,
			"subject": msg.Subject,
			"link":    msg.ButtonURL,
		}).Info("SMTP not configured, email logged instead of sent")
		return nil
	}

	message := mail.NewMsg()
	if err := message.From(m.cfg.From); err != nil {
		return fmt.Errorf("invalid from address: %w", err)
	}
	if err := message.To(msg.To); err != nil {
		return fmt.Errorf("invalid recipient address: %w", err)
	}
	message.Subject(msg.Subject)
	message.SetBodyString(mail.TypeTextPlain, plainText(msg))
	message.AddAlternativeString(mail.TypeTextHTML, html)

	opts := []mail.Option{
		mail.WithPort(m.cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if m.cfg.Username != "" {
		opts = append(opts,
			mail.WithUsername(m.cfg.Username),
			mail.WithPassword(m.cfg.Password),
			mail.WithSMTPAuth(mail.SMTPAuthLogin),
		)
	}
	client, err := mail.NewClient(m.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, message); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	logger.WithContext(ctx).WithFields(map[string]interface{}{"to": msg.To, "subject": msg.Subject}).Info("Email sent")
	return nil
}
