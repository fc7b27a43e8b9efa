// Package services отправляет письма из очереди уведомлений через SMTP.
package services

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/lovebug/backend/internal/lib/sl"
	"github.com/lovebug/backend/internal/lib/smtp"
	"github.com/lovebug/backend/internal/models"
)

// SenderService превращает сообщения очереди в письма.
type SenderService struct {
	transport smtp.TransportInterface
	log       *slog.Logger
}

// NewSenderService создает новый экземпляр SenderService.
func NewSenderService(log *slog.Logger, transport smtp.TransportInterface) *SenderService {
	return &SenderService{
		transport: transport,
		log:       log,
	}
}

// SendMail отправляет письмо из сообщения очереди. Тело с флагом base64
// декодируется и отправляется как HTML: так приходят счета-инвойсы.
func (s *SenderService) SendMail(body []byte) error {
	var message models.MailMessage
	if err := json.Unmarshal(body, &message); err != nil {
		s.log.Error("failed to unmarshal mail message", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	bodyText := message.Body
	contentType := "text/plain; charset=\"UTF-8\""
	if message.Base64 {
		decoded, err := base64.StdEncoding.DecodeString(message.Body)
		if err != nil {
			s.log.Error("failed to decode mail body", sl.Err(err))
			return fmt.Errorf("error decoding message body: %w", err)
		}
		bodyText = string(decoded)
		contentType = "text/html; charset=\"UTF-8\""
	}

	return s.sendEmail([]string{message.Email}, message.Subject, bodyText, contentType)
}

func (s *SenderService) sendEmail(to []string, subject, bodyText, contentType string) error {
	msg := strings.Join([]string{
		"From: " + s.transport.From(),
		"To: " + strings.Join(to, ";"),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: " + contentType,
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		s.log.Error("failed to connect to SMTP server", sl.Err(err))
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	if err := client.Mail(s.transport.From()); err != nil {
		s.log.Error("failed to set MAIL FROM", "from", s.transport.From(), "error", sl.Err(err))
		return err
	}

	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			s.log.Error("failed to set RCPT TO", "recipient", addr, "error", sl.Err(err))
			return err
		}
	}

	wc, err := client.Data()
	if err != nil {
		s.log.Error("failed to get data writer", sl.Err(err))
		return err
	}

	if _, err = wc.Write([]byte(msg)); err != nil {
		s.log.Error("failed to write email body", sl.Err(err))
		return err
	}

	if err = wc.Close(); err != nil {
		s.log.Error("failed to close data writer", sl.Err(err))
		return err
	}

	if err = client.Quit(); err != nil {
		s.log.Error("failed to quit SMTP client", sl.Err(err))
		return err
	}

	s.log.Info("email sent successfully", "to", to)
	return nil
}
