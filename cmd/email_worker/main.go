package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/rohn-shah/diode-be/config"
	"github.com/rohn-shah/diode-be/internal/container"
	"github.com/rohn-shah/diode-be/pkg/helpers"
	"github.com/rohn-shah/diode-be/pkg/mailer"
)

const (
	prefetch    = 16
	sendTimeout = 15 * time.Second
)

type outcome int

const (
	ack outcome = iota
	requeue
	drop
)

// process delivers one queued job. Malformed jobs are dropped; send failures are retried.
func process(ctx context.Context, sender mailer.Sender, body []byte, logger *logrus.Logger) outcome {
	var job mailer.EmailJob
	if err := json.Unmarshal(body, &job); err != nil {
		logger.WithError(err).Warn("dropping undecodable email job")
		return drop
	}
	msg, err := job.Message()
	if err != nil {
		logger.WithError(err).WithField("template", job.Template).Warn("dropping invalid email job")
		return drop
	}

	c, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()
	if err := sender.Send(c, msg); err != nil {
		logger.WithError(err).WithField("to", msg.To).Error("send failed")
		return requeue
	}
	logger.WithFields(logrus.Fields{"to": msg.To, "subject": msg.Subject}).Info("email sent")
	return ack
}

func settle(d amqp.Delivery, o outcome) {
	switch o {
	case ack:
		_ = d.Ack(false)
	case requeue:
		_ = d.Nack(false, true)
	default:
		_ = d.Nack(false, false)
	}
}

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-email-worker", cfg.Env)
	if !cfg.MailSendEnabled {
		logger.Info("MAIL_SEND_ENABLED=false; email worker disabled (no real emails will be sent)")
		return
	}
	if cfg.RabbitMQURL == "" || cfg.RabbitMQEmailQueue == "" {
		logger.Fatal("RabbitMQ not configured")
	}
	if cfg.WorkerEmailProvider == mailer.ProviderQueue {
		logger.Fatal("WORKER_EMAIL_PROVIDER cannot be queue")
	}

	sender, err := mailer.NewSender(container.MailSettings(cfg, cfg.WorkerEmailProvider), nil, logger)
	if err != nil {
		logger.Fatalf("email provider: %v", err)
	}

	consumer, err := helpers.NewRabbitConsumer(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue, prefetch)
	if err != nil {
		logger.Fatalf("rabbitmq: %v", err)
	}

	msgs, err := consumer.Deliveries()
	if err != nil {
		consumer.Close()
		logger.Fatalf("consume: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	done := make(chan struct{})

	go func() {
		defer close(done)
		for d := range msgs {
			settle(d, process(ctx, sender, d.Body, logger))
		}
	}()

	logger.WithFields(logrus.Fields{
		"queue":    cfg.RabbitMQEmailQueue,
		"provider": cfg.WorkerEmailProvider,
	}).Info("email worker listening")

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case <-done:
		logger.Warn("delivery channel closed")
		consumer.Close()
		return
	}
	consumer.Close()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		logger.Warn("in-flight job did not finish")
	}
}
