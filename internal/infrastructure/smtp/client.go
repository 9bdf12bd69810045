package smtp

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"html/template"

	"gopkg.in/gomail.v2"

	"streaks-service/internal/config"
	"streaks-service/internal/domain/service"
)

const digestTemplate = `
<html>
<body style="font-family: sans-serif;">
  <h2>Your week in habits{{if .Name}}, {{.Name}}{{end}}</h2>
  {{if .Entries}}
  <p>Here is how your habits went over the last seven days:</p>
  <ol>
    {{range .Entries}}<li><strong>{{.HabitName}}</strong>: {{.Count}} times</li>
    {{end}}
  </ol>
  {{else}}
  <p>No completions logged this week. A small step today restarts the momentum.</p>
  {{end}}
</body>
</html>
`

// Client sends digest emails over SMTP
type Client struct {
	cfg      *config.SMTPConfig
	template *template.Template
}

// NewClient creates a new SMTP client
func NewClient(cfg *config.SMTPConfig) (*Client, error) {
	tmpl, err := template.New("weekly_digest").Parse(digestTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse digest template: %w", err)
	}

	return &Client{cfg: cfg, template: tmpl}, nil
}

// SendWeeklyDigest renders and sends the weekly digest email
func (c *Client) SendWeeklyDigest(_ context.Context, to, name string, entries []service.DigestEntry) error {
	var body bytes.Buffer
	if err := c.template.Execute(&body, map[string]interface{}{
		"Name":    name,
		"Entries": entries,
	}); err != nil {
		return fmt.Errorf("failed to render digest email: %w", err)
	}

	message := gomail.NewMessage()
	message.SetAddressHeader("From", c.cfg.FromEmail, c.cfg.FromName)
	message.SetHeader("To", to)
	message.SetHeader("Subject", "Your weekly habit digest")
	message.SetBody("text/html", body.String())

	dialer := gomail.NewDialer(c.cfg.Host, c.cfg.Port, c.cfg.Username, c.cfg.Password)
	if c.cfg.UseTLS {
		dialer.TLSConfig = &tls.Config{ServerName: c.cfg.Host}
	}

	if err := dialer.DialAndSend(message); err != nil {
		return fmt.Errorf("failed to send digest email: %w", err)
	}

	return nil
}
