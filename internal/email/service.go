// Package email sends operator alerts over SMTP.
package email

import (
	"context"
	"fmt"
	"time"

	gomail "github.com/wneessen/go-mail"
)

// Service handles email sending via SMTP
type Service struct {
	host string
	port int
	from string
}

// NewService creates a new email service
func NewService(host string, port int, from string) *Service {
	return &Service{
		host: host,
		port: port,
		from: from,
	}
}

// SendCatalogAlert tells an operator that the catalog is being served from a fallback.
func (s *Service) SendCatalogAlert(ctx context.Context, to string, alert CatalogAlert) error {
	body, err := BuildCatalogAlertBody(alert)
	if err != nil {
		return err
	}
	subject := fmt.Sprintf("[Catálogo] Carga fallida, usando origen %q", alert.Origin)
	return s.send(ctx, to, subject, body)
}

func (s *Service) send(ctx context.Context, to, subject, body string) error {
	msg := gomail.NewMsg()
	if err := msg.From(s.from); err != nil {
		return fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, body)

	client, err := gomail.NewClient(s.host,
		gomail.WithPort(s.port),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15*time.Second),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}
