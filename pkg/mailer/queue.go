package mailer

import (
	"context"
	"errors"
)

// Publisher is satisfied by helpers.RabbitPublisher.
type Publisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// QueueSender hands rendered messages to the email worker instead of sending inline.
type QueueSender struct {
	pub Publisher
}

func NewQueueSender(pub Publisher) (*QueueSender, error) {
	if pub == nil {
		return nil, ErrProviderNotConfigured
	}
	return &QueueSender{pub: pub}, nil
}

func (q *QueueSender) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return errors.New("queue: empty recipient")
	}
	return q.pub.PublishJSON(ctx, EmailJob{To: msg.To, Subject: msg.Subject, Text: msg.Text, HTML: msg.HTML})
}
