package mailer

import (
	"context"
	"errors"
	"fmt"

	"ger-comercial/config"
	"ger-comercial/pkg/logger"

	"golang.org/x/time/rate"
	"gopkg.in/gomail.v2"
)

// ErrNoMailCredentials is returned when neither Gmail app-password credentials
// nor a SendGrid API key are configured. Callers treat it as fatal.
var ErrNoMailCredentials = errors.New("no mail transport credentials configured")

// Mailer sends one HTML message per recipient.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

type smtpMailer struct {
	dialer  *gomail.Dialer
	from    string
	limiter *rate.Limiter
	log     *logger.Logger
}

// New selects the SMTP transport from configuration: Gmail with an app
// password when present, otherwise the SendGrid relay with its API key.
func New(cfg config.Mail, log *logger.Logger) (Mailer, error) {
	var dialer *gomail.Dialer
	from := cfg.From

	switch {
	case cfg.GmailUser != "" && cfg.GmailAppPassword != "":
		log.Info("Using Gmail SMTP transport", logger.StringField("user", cfg.GmailUser))
		dialer = gomail.NewDialer("smtp.gmail.com", 587, cfg.GmailUser, cfg.GmailAppPassword)
		from = cfg.GmailUser
	case cfg.SendgridAPIKey != "":
		log.Info("Using SendGrid SMTP transport")
		dialer = gomail.NewDialer("smtp.sendgrid.net", 587, "apikey", cfg.SendgridAPIKey)
	default:
		return nil, ErrNoMailCredentials
	}

	sendsPerSecond := cfg.MaxSendPerSecond
	if sendsPerSecond <= 0 {
		sendsPerSecond = 1
	}

	return &smtpMailer{
		dialer:  dialer,
		from:    from,
		limiter: rate.NewLimiter(rate.Limit(sendsPerSecond), sendsPerSecond),
		log:     log,
	}, nil
}

// Send delivers one message. Sends are rate limited so a batch of schedules
// cannot burst past the provider's relay quota.
func (m *smtpMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	if err := m.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("mail rate limiter: %w", err)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", to, err)
	}
	return nil
}
