package services

import (
	"bytes"
	"fmt"
	"html/template"
	"log"
	"strings"

	"crime_records_go/config"

	"github.com/resend/resend-go/v2"
)

// Email represents an email message
type Email struct {
	To       []string
	Subject  string
	HTMLBody string
	TextBody string
}

var invitationHTML = template.Must(template.New("invitation").Parse(`
<p>Hola,</p>
<p>{{.InviterName}} te ha invitado a la plataforma de registro delictivo con el rol <strong>{{.Role}}</strong>.</p>
<p><a href="{{.AcceptURL}}">Acepta la invitacion y crea tu contrasena aqui</a>.</p>
<p>El enlace expira en 72 horas.</p>
`))

// BuildInvitationEmail renders the invitation message for an invited user
func BuildInvitationEmail(cfg *config.Config, toEmail, inviterName, role, token string) (*Email, error) {
	acceptURL := fmt.Sprintf("%s/invitations/accept?token=%s", strings.TrimSuffix(cfg.AppURL, "/"), token)

	data := map[string]string{
		"InviterName": inviterName,
		"Role":        role,
		"AcceptURL":   acceptURL,
	}

	var buf bytes.Buffer
	if err := invitationHTML.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render invitation template: %w", err)
	}

	text := fmt.Sprintf(
		"Hola,\n\n%s te ha invitado a la plataforma de registro delictivo con el rol %s.\n\nAcepta la invitacion aqui: %s\n\nEl enlace expira en 72 horas.\n",
		inviterName, role, acceptURL,
	)

	return &Email{
		To:       []string{toEmail},
		Subject:  "Invitacion a la plataforma de registro delictivo",
		HTMLBody: buf.String(),
		TextBody: text,
	}, nil
}

// SendEmail sends an email using the Resend API. In test mode the message is
// logged to the console instead of sent.
func SendEmail(cfg *config.Config, email *Email) error {
	if cfg.EmailTestMode {
		logEmailToConsole(email)
		return nil
	}

	if cfg.ResendAPIKey == "" {
		return fmt.Errorf("RESEND_API_KEY not configured")
	}

	client := resend.NewClient(cfg.ResendAPIKey)
	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", cfg.EmailFromName, cfg.EmailFrom),
		To:      email.To,
		Subject: email.Subject,
		Html:    email.HTMLBody,
		Text:    email.TextBody,
	}

	sent, err := client.Emails.Send(params)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	log.Printf("Email sent to %s (id: %s)", strings.Join(email.To, ", "), sent.Id)
	return nil
}

func logEmailToConsole(email *Email) {
	log.Printf("---- EMAIL (test mode, not sent) ----")
	log.Printf("To: %s", strings.Join(email.To, ", "))
	log.Printf("Subject: %s", email.Subject)
	log.Printf("Body:\n%s", email.TextBody)
	log.Printf("-------------------------------------")
}
