package email

import (
	"context"
	"errors"
	"log/slog"
	netmail "net/mail"
	"strings"
	"time"

	mail "gopkg.in/mail.v2"

	"github.com/Naresh-BDO/DT-I-Onboarding-Portal-shared/internal/logging"
)

// SMTPSettings configures SMTPSender.
type SMTPSettings struct {
	Host        string
	Port        int
	Username    string
	Password    string
	FromAddress string
	FromName    string
	SSL         bool
	Timeout     time.Duration
}

// Validate reports incomplete settings.
func (s SMTPSettings) Validate() error {
	var missing []string
	if strings.TrimSpace(s.Host) == "" {
		missing = append(missing, "host")
	}
	if s.Port <= 0 {
		missing = append(missing, "port")
	}
	if strings.TrimSpace(s.FromAddress) == "" {
		missing = append(missing, "from address")
	}
	if len(missing) > 0 {
		return errors.New("smtp settings incomplete: missing " + strings.Join(missing, ", "))
	}
	return nil
}

type dialer interface {
	DialAndSend(m ...*mail.Message) error
}

// SMTPSender sends through a single SMTP relay with one attempt per message.
type SMTPSender struct {
	settings SMTPSettings
	dialer   dialer
	logger   *slog.Logger
}

// NewSMTPSender validates settings so that bad configuration stops startup.
func NewSMTPSender(settings SMTPSettings, logger *slog.Logger) (*SMTPSender, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	d := mail.NewDialer(settings.Host, settings.Port, settings.Username, settings.Password)
	d.SSL = settings.SSL
	if settings.Timeout > 0 {
		d.Timeout = settings.Timeout
	}
	d.RetryFailure = false
	return &SMTPSender{settings: settings, dialer: d, logger: logger}, nil
}

func (s *SMTPSender) Send(ctx context.Context, to, subject, htmlBody string) SendResult {
	log := logging.FromContext(ctx, s.logger).With("component", "smtp", "to", to)

	if err := s.settings.Validate(); err != nil {
		log.Error("smtp not configured", "error", err)
		return Failed(ConfigurationError, err.Error(), "")
	}
	if _, err := netmail.ParseAddress(to); err != nil {
		return Failed(InvalidRecipientAddress, err.Error(), "")
	}
	if err := ctx.Err(); err != nil {
		return Classify(err)
	}

	m := mail.NewMessage()
	m.SetAddressHeader("From", s.settings.FromAddress, s.settings.FromName)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	start := time.Now()
	if err := s.dialer.DialAndSend(m); err != nil {
		res := Classify(err)
		log.Warn("smtp send failed",
			"error_type", res.ErrorType.String(),
			"error", err,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return res
	}
	log.Info("smtp send succeeded", "duration_ms", time.Since(start).Milliseconds())
	return Succeeded()
}
