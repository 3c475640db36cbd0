// Package notifier отправляет пользователям письма о событиях жизненного
// цикла премиум-подписки, потребляя их из очереди сообщений.
package notifier

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/resource-library/internal/lib/sl"
	"github.com/magabrotheeeer/resource-library/internal/lib/smtp"
	"github.com/magabrotheeeer/resource-library/internal/services/premium"
)

// Service отправляет письма через SMTP транспорт.
type Service struct {
	transport smtp.TransportInterface
	log       *slog.Logger
}

// New создает новый экземпляр Service.
func New(transport smtp.TransportInterface, log *slog.Logger) *Service {
	return &Service{
		transport: transport,
		log:       log,
	}
}

// SendPremiumActivated обрабатывает сообщение об активации подписки.
func (s *Service) SendPremiumActivated(body []byte) error {
	var event premium.LifecycleEvent
	if err := json.Unmarshal(body, &event); err != nil {
		s.log.Error("failed to unmarshal message body", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	subject := "Premium subscription activated"
	text := fmt.Sprintf("Hello, %s!\r\n\r\nYour %s premium subscription is active", event.Username, event.Kind)
	if event.ExpiresAt != nil {
		text += fmt.Sprintf(" until %s", event.ExpiresAt.Format("02.01.2006"))
	}
	text += ".\r\n"
	return s.send(event.Email, subject, text)
}

// SendPremiumCancelled обрабатывает сообщение об отмене подписки.
func (s *Service) SendPremiumCancelled(body []byte) error {
	var event premium.LifecycleEvent
	if err := json.Unmarshal(body, &event); err != nil {
		s.log.Error("failed to unmarshal message body", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	subject := "Premium subscription cancelled"
	text := fmt.Sprintf("Hello, %s!\r\n\r\nYour premium subscription has been cancelled.\r\n", event.Username)
	return s.send(event.Email, subject, text)
}

func (s *Service) send(to, subject, text string) error {
	if to == "" {
		s.log.Warn("event without email, skipping notification")
		return nil
	}

	client, err := s.transport.Connect()
	if err != nil {
		return fmt.Errorf("failed to connect to smtp: %w", err)
	}
	defer func() {
		if err := client.Quit(); err != nil {
			s.log.Error("failed to quit smtp client", sl.Err(err))
		}
	}()

	from := s.transport.GetSMTPUser()
	if err := client.Mail(from); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	wc, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to open data writer: %w", err)
	}

	var msg strings.Builder
	msg.WriteString(fmt.Sprintf("From: %s\r\n", from))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", to))
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	msg.WriteString("\r\n")
	msg.WriteString(text)

	if _, err := wc.Write([]byte(msg.String())); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	s.log.Info("notification sent", slog.String("to", to), slog.String("subject", subject))
	return nil
}
