package mailer

import (
	"context"
	"fmt"
	"time"

	mail "github.com/wneessen/go-mail"
)

const (
	gmailHost    = "smtp.gmail.com"
	sendGridHost = "smtp.sendgrid.net"
	submission   = 587
	smtps        = 465
)

// SMTP sends through any SMTP submission server with PLAIN auth.
// Secure selects implicit TLS from the first byte instead of STARTTLS.
type SMTP struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Secure   bool
}

func NewSMTP(host string, port int, username, password, from string) (*SMTP, error) {
	if host == "" || from == "" {
		return nil, ErrProviderNotConfigured
	}
	if port == 0 {
		port = submission
	}
	return &SMTP{Host: host, Port: port, Username: username, Password: password, From: from}, nil
}

// NewGmail uses the account address and an app password.
func NewGmail(user, appPassword, from string) (*SMTP, error) {
	if user == "" || appPassword == "" {
		return nil, ErrProviderNotConfigured
	}
	if from == "" {
		from = user
	}
	return NewSMTP(gmailHost, submission, user, appPassword, from)
}

// NewSendGrid uses SendGrid's SMTP relay, which takes the literal user "apikey".
func NewSendGrid(apiKey, from string) (*SMTP, error) {
	if apiKey == "" {
		return nil, ErrProviderNotConfigured
	}
	return NewSMTP(sendGridHost, submission, "apikey", apiKey, from)
}

func (s *SMTP) Send(ctx context.Context, msg Message) error {
	m := mail.NewMsg()
	if err := m.From(s.From); err != nil {
		return fmt.Errorf("smtp from: %w", err)
	}
	if err := m.To(msg.To); err != nil {
		return fmt.Errorf("smtp to: %w", err)
	}
	m.Subject(msg.Subject)
	switch {
	case msg.Text != "" && msg.HTML != "":
		m.SetBodyString(mail.TypeTextPlain, msg.Text)
		m.AddAlternativeString(mail.TypeTextHTML, msg.HTML)
	case msg.HTML != "":
		m.SetBodyString(mail.TypeTextHTML, msg.HTML)
	default:
		m.SetBodyString(mail.TypeTextPlain, msg.Text)
	}

	client, err := mail.NewClient(s.Host, s.options()...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	return client.DialAndSendWithContext(ctx, m)
}

func (s *SMTP) options() []mail.Option {
	port := s.Port
	if port == 0 {
		port = submission
		if s.Secure {
			port = smtps
		}
	}
	opts := []mail.Option{mail.WithTimeout(15 * time.Second)}
	if s.Secure {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}
	opts = append(opts, mail.WithPort(port))
	if s.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.Username),
			mail.WithPassword(s.Password),
		)
	}
	return opts
}
