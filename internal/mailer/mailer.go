// Package mailer renders and sends transactional emails. Sending happens
// on the worker side; web handlers only enqueue the payloads defined here.
package mailer

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"time"

	"github.com/ashokafoundation/website/pkg/email"
	"github.com/ashokafoundation/website/pkg/queue"
)

//go:embed templates/*.html
var templatesFS embed.FS

// WelcomeEmail is the queue payload for the registration email.
type WelcomeEmail struct {
	UserID   int64  `json:"user_id"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

type Config struct {
	BaseURL string `env:"WEB_APP_BASE_URL" envDefault:"http://localhost:8080"`
}

type Mailer struct {
	sender  email.Sender
	baseURL string
	tmpl    *template.Template
	log     *slog.Logger
}

func New(sender email.Sender, cfg Config, log *slog.Logger) (*Mailer, error) {
	if sender == nil {
		return nil, fmt.Errorf("mailer: nil sender")
	}
	tmpl, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("mailer: parse templates: %w", err)
	}
	if log == nil {
		log = slog.Default()
	}
	return &Mailer{
		sender:  sender,
		baseURL: cfg.BaseURL,
		tmpl:    tmpl,
		log:     log,
	}, nil
}

// SendWelcome renders and delivers the registration email.
func (m *Mailer) SendWelcome(ctx context.Context, payload WelcomeEmail) error {
	var body bytes.Buffer
	err := m.tmpl.ExecuteTemplate(&body, "welcome.html", map[string]any{
		"Username": payload.Username,
		"BaseURL":  m.baseURL,
		"Year":     time.Now().Year(),
	})
	if err != nil {
		return fmt.Errorf("render welcome email: %w", err)
	}

	err = m.sender.SendEmail(ctx, email.SendParams{
		To:       payload.Email,
		Subject:  "Welcome to The Ashoka Buddhist Foundation!",
		BodyHTML: body.String(),
		Tag:      "welcome",
	})
	if err != nil {
		return fmt.Errorf("send welcome email to user %d: %w", payload.UserID, err)
	}

	m.log.InfoContext(ctx, "welcome email sent",
		slog.Int64("user_id", payload.UserID),
		slog.String("username", payload.Username),
	)
	return nil
}

// WelcomeHandler adapts SendWelcome to the queue worker.
func (m *Mailer) WelcomeHandler() queue.Handler {
	return queue.NewTaskHandler(func(ctx context.Context, payload WelcomeEmail) error {
		return m.SendWelcome(ctx, payload)
	})
}
