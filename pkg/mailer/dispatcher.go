package mailer

import (
	"context"
	"time"

	"github.com/rohn-shah/diode-be/pkg/mailer/templates"
)

// Recipient identifies who an account email is addressed to.
type Recipient struct {
	Email     string
	FirstName string
	LastName  string
}

// Dispatcher renders account emails and hands them to a Sender.
type Dispatcher struct {
	Sender          Sender
	AppURL          string
	Brand           templates.Branding
	VerificationTTL time.Duration
	ResetTTL        time.Duration
}

func (d *Dispatcher) SendSetPasswordEmail(ctx context.Context, to Recipient, token string) error {
	return d.send(ctx, templates.SetPassword, to, d.AppURL+"/set-password/"+token, d.VerificationTTL)
}

func (d *Dispatcher) SendPasswordResetEmail(ctx context.Context, to Recipient, token string) error {
	return d.send(ctx, templates.PasswordReset, to, d.AppURL+"/reset-password/"+token, d.ResetTTL)
}

func (d *Dispatcher) send(ctx context.Context, name string, to Recipient, link string, ttl time.Duration) error {
	opts := []templates.Option{templates.WithActionURL(link), templates.WithTime(time.Now())}
	if ttl > 0 {
		opts = append(opts, templates.WithExpiresIn(ttl))
	}
	data := templates.NewEmailData(d.Brand, to.FirstName, to.LastName, to.Email, opts...)
	subject, text, html, err := templates.Render(name, data)
	if err != nil {
		return err
	}
	return d.Sender.Send(ctx, Message{To: to.Email, Subject: subject, Text: text, HTML: html})
}
