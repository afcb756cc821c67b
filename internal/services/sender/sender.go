// Package sender отвечает за составление и отправку писем покупателям.
package sender

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ogenyiken/zikistore/internal/lib/sl"
	"github.com/ogenyiken/zikistore/internal/lib/smtp"
	"github.com/ogenyiken/zikistore/internal/models"
)

// SenderService отправляет письма через SMTP транспорт.
type SenderService struct {
	transport smtp.TransportInterface
	log       *slog.Logger
}

// NewSenderService создает новый экземпляр SenderService.
func NewSenderService(transport smtp.TransportInterface, log *slog.Logger) *SenderService {
	return &SenderService{
		transport: transport,
		log:       log,
	}
}

// SendReceipt отправляет покупателю чек по оплаченному заказу:
// номер заказа, дату, адрес покупателя и список купленных товаров.
func (s *SenderService) SendReceipt(order *models.Order, user *models.User) error {
	to := []string{user.Email}
	subject := "Thanks for your order! This is your receipt."

	var lines []string
	lines = append(lines,
		fmt.Sprintf("Order: %s", order.ID),
		fmt.Sprintf("Date: %s", time.Now().UTC().Format("02 Jan 2006")),
		fmt.Sprintf("Email: %s", user.Email),
		"",
		"Items:")
	for _, ref := range order.Products {
		if ref.Resolved() {
			lines = append(lines, fmt.Sprintf("  - %s", ref.Product.Name))
			continue
		}
		lines = append(lines, fmt.Sprintf("  - %s", ref.ID))
	}
	lines = append(lines, "", fmt.Sprintf("Total: %d", order.Amount))

	return s.sendEmail(to, subject, strings.Join(lines, "\n"))
}

func (s *SenderService) sendEmail(to []string, subject, bodyText string) error {
	msg := strings.Join([]string{
		"From: " + s.transport.GetSMTPUser(),
		"To: " + strings.Join(to, ";"),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		s.log.Error("failed to connect to SMTP server", sl.Err(err))
		return err
	}
	defer client.Close()

	if err := client.Mail(s.transport.GetSMTPUser()); err != nil {
		s.log.Error("failed to set MAIL FROM", "from", s.transport.GetSMTPUser(), "error", sl.Err(err))
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
		s.log.Error("failed to get Data writer", "error", sl.Err(err))
		return err
	}

	_, err = wc.Write([]byte(msg))
	if err != nil {
		s.log.Error("failed to write email body", "error", sl.Err(err))
		return err
	}

	if err = wc.Close(); err != nil {
		s.log.Error("failed to close Data writer", "error", sl.Err(err))
		return err
	}

	if err = client.Quit(); err != nil {
		s.log.Error("failed to quit SMTP client", "error", sl.Err(err))
		return err
	}

	s.log.Info("email sent successfully", "to", to)
	return nil
}
