package mailer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	ProviderLog      = "log"
	ProviderMailgun  = "mailgun"
	ProviderSMTP     = "smtp"
	ProviderGmail    = "gmail"
	ProviderSendGrid = "sendgrid"
	ProviderSES      = "ses"
	ProviderQueue    = "queue"
)

// Settings carries every provider's credentials; only the selected provider's are read.
type Settings struct {
	Provider string
	Enabled  bool
	From     string

	EmailUser     string
	EmailPassword string

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SMTPSecure   bool

	SendGridAPIKey string

	MailgunDomain string
	MailgunAPIKey string
	MailgunSender string

	SESRegion          string
	SESAccessKeyID     string
	SESSecretAccessKey string
}

// NewSender builds the Sender named by s.Provider. A disabled mailer always logs.
func NewSender(s Settings, pub Publisher, logger *logrus.Logger) (Sender, error) {
	provider := strings.ToLower(strings.TrimSpace(s.Provider))
	if !s.Enabled {
		provider = ProviderLog
	}
	var (
		sender Sender
		err    error
	)
	switch provider {
	case ProviderLog, "":
		return NewLogSender(logger), nil
	case ProviderMailgun:
		from := s.MailgunSender
		if from == "" {
			from = s.From
		}
		sender, err = asSender(NewMailgun(s.MailgunDomain, s.MailgunAPIKey, from))
	case ProviderSMTP:
		var smtp *SMTP
		if smtp, err = NewSMTP(s.SMTPHost, s.SMTPPort, s.SMTPUser, s.SMTPPassword, s.From); err == nil {
			smtp.Secure = s.SMTPSecure
			sender = smtp
		}
	case ProviderGmail:
		sender, err = asSender(NewGmail(s.EmailUser, s.EmailPassword, s.From))
	case ProviderSendGrid:
		sender, err = asSender(NewSendGrid(s.SendGridAPIKey, s.From))
	case ProviderSES:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		sender, err = asSender(NewSES(ctx, s.SESRegion, s.SESAccessKeyID, s.SESSecretAccessKey, s.From))
		cancel()
	case ProviderQueue:
		sender, err = asSender(NewQueueSender(pub))
	default:
		return nil, fmt.Errorf("unknown email provider %q", s.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", provider, err)
	}
	return sender, nil
}

// asSender drops typed-nil values so a failed constructor never yields a non-nil interface.
func asSender(s Sender, err error) (Sender, error) {
	if err != nil {
		return nil, err
	}
	return s, nil
}
