package mailer

import (
	"context"
	"errors"
)

// Message is a fully rendered email.
type Message struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text,omitempty"`
	HTML    string `json:"html,omitempty"`
}

// Sender delivers one message through a concrete provider.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

var ErrProviderNotConfigured = errors.New("email provider not configured")
