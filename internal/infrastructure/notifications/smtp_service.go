package notifications

import (
	"fmt"
	"net/smtp"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/you/hostelauth/domain"
)

// SMTPConfig carries the mail-transport settings.
type SMTPConfig struct {
	Host     string
	Port     string
	From     string
	Password string
}

// SMTPServiceImpl implements domain.Mailer over a plain SMTP relay. Sends
// run through a circuit breaker so a dead relay fails fast instead of
// stalling every registration.
type SMTPServiceImpl struct {
	cfg     SMTPConfig
	breaker *gobreaker.CircuitBreaker
	logger  *logrus.Logger
	send    func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPService creates a new SMTP mailer.
func NewSMTPService(cfg SMTPConfig, logger *logrus.Logger) domain.Mailer {
	return &SMTPServiceImpl{
		cfg:    cfg,
		logger: logger,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "smtp-mailer",
			Timeout: 30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 3
			},
		}),
		send: smtp.SendMail,
	}
}

// Send implements domain.Mailer
func (s *SMTPServiceImpl) Send(to, subject, body string) error {
	// Without credentials the mailer degrades to a log-only mode so local
	// development never needs a live relay.
	if s.cfg.Password == "" {
		s.logger.WithFields(logrus.Fields{
			"to":      to,
			"subject": subject,
		}).Info("smtp credentials not configured; logging email instead of sending")
		return nil
	}

	message := []byte("Subject: " + subject + "\r\n" +
		"From: " + s.cfg.From + "\r\n" +
		"To: " + to + "\r\n" +
		"Content-Type: text/html; charset=\"UTF-8\"\r\n\r\n" +
		body + "\r\n")

	auth := smtp.PlainAuth("", s.cfg.From, s.cfg.Password, s.cfg.Host)
	addr := s.cfg.Host + ":" + s.cfg.Port

	_, err := s.breaker.Execute(func() (interface{}, error) {
		return nil, s.send(addr, auth, s.cfg.From, []string{to}, message)
	})
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrEmailSend, err)
	}
	return nil
}
