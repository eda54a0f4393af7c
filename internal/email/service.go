// Package email sends moderation notifications via SMTP.
package email

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"
	"strings"
)

// Config holds SMTP configuration
type Config struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	FromName string
}

// Service provides email sending
type Service struct {
	config Config
	server string
	auth   smtp.Auth
}

// NewService creates a new email service
func NewService(config Config) *Service {
	auth := smtp.PlainAuth("", config.Username, config.Password, config.Host)

	return &Service{
		config: config,
		server: config.Host + ":" + config.Port,
		auth:   auth,
	}
}

// IsConfigured returns true if email is configured
func (s *Service) IsConfigured() bool {
	return s.config.Host != "" && s.config.Port != "" && s.config.From != ""
}

// SendHTMLEmail sends an HTML email with a plain-text fallback part
func (s *Service) SendHTMLEmail(to []string, subject, htmlBody string) error {
	if !s.IsConfigured() {
		return fmt.Errorf("email not configured")
	}

	from := s.config.From
	if s.config.FromName != "" {
		from = fmt.Sprintf("%s <%s>", s.config.FromName, s.config.From)
	}

	boundary := "boundary-granthalaya"

	var msg bytes.Buffer
	fmt.Fprintf(&msg, "To: %s\r\n", strings.Join(to, ", "))
	fmt.Fprintf(&msg, "From: %s\r\n", from)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	fmt.Fprintf(&msg, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&msg, "Content-Type: multipart/alternative; boundary=\"%s\"\r\n", boundary)
	fmt.Fprintf(&msg, "\r\n")

	fmt.Fprintf(&msg, "--%s\r\n", boundary)
	fmt.Fprintf(&msg, "Content-Type: text/plain; charset=UTF-8\r\n")
	fmt.Fprintf(&msg, "\r\n")
	fmt.Fprintf(&msg, "Please view this email in an HTML-capable email client.\r\n")
	fmt.Fprintf(&msg, "\r\n")

	fmt.Fprintf(&msg, "--%s\r\n", boundary)
	fmt.Fprintf(&msg, "Content-Type: text/html; charset=UTF-8\r\n")
	fmt.Fprintf(&msg, "\r\n")
	fmt.Fprintf(&msg, "%s\r\n", htmlBody)
	fmt.Fprintf(&msg, "\r\n")
	fmt.Fprintf(&msg, "--%s--\r\n", boundary)

	return smtp.SendMail(s.server, s.auth, s.config.From, to, msg.Bytes())
}

// SuggestionData holds data for the suggestion notification template
type SuggestionData struct {
	AppName        string
	SuggestionType string
	GranthaTitle   string
	VerseRef       string
	SubmittedBy    string
	SuggestedText  string
	Reason         string
}

// SendSuggestionNotification notifies moderators about a new suggestion
func (s *Service) SendSuggestionNotification(to string, data SuggestionData) error {
	if data.AppName == "" {
		data.AppName = "Granthalaya"
	}

	subject := fmt.Sprintf("New %s suggestion for %s", data.SuggestionType, data.GranthaTitle)
	html, err := renderTemplate(suggestionEmailTemplate, data)
	if err != nil {
		return fmt.Errorf("render suggestion template: %w", err)
	}

	return s.SendHTMLEmail([]string{to}, subject, html)
}

func renderTemplate(tmpl string, data interface{}) (string, error) {
	t := template.Must(template.New("email").Parse(tmpl))
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

const suggestionEmailTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>New suggestion on {{.AppName}}</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { border-bottom: 2px solid #7a3b2e; padding-bottom: 10px; margin-bottom: 20px; }
        .field { margin: 8px 0; }
        .label { font-weight: bold; color: #7a3b2e; }
        .text { background: #faf6f0; padding: 12px; border-radius: 4px; white-space: pre-wrap; }
        .footer { margin-top: 30px; padding-top: 20px; border-top: 1px solid #eee; font-size: 12px; color: #666; }
    </style>
</head>
<body>
    <div class="header">
        <h1>{{.AppName}}</h1>
    </div>

    <h2>New {{.SuggestionType}} suggestion</h2>

    <div class="field"><span class="label">Grantha:</span> {{.GranthaTitle}}</div>
    {{if .VerseRef}}<div class="field"><span class="label">Verse:</span> {{.VerseRef}}</div>{{end}}
    <div class="field"><span class="label">Submitted by:</span> {{.SubmittedBy}}</div>

    <div class="field"><span class="label">Suggested text:</span></div>
    <div class="text">{{.SuggestedText}}</div>

    {{if .Reason}}
    <div class="field"><span class="label">Reason:</span></div>
    <div class="text">{{.Reason}}</div>
    {{end}}

    <div class="footer">
        <p>Review this suggestion in the {{.AppName}} admin panel.</p>
    </div>
</body>
</html>`
