package main

import (
	"context"
	"os/signal"
	"syscall"

	"hotel-shift-bot/internal/config"
	"hotel-shift-bot/internal/logging"
	"hotel-shift-bot/internal/notify"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/wneessen/go-mail"
)

func main() {
	cfg := config.GetConfig()
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	if err := cfg.RequireNotifier(); err != nil {
		logger.WithError(err).Fatal("Invalid notifier configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := mail.NewClient(
		cfg.SMTP.Host,
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithSSL(),
		mail.WithPort(cfg.SMTP.Port),
		mail.WithUsername(cfg.SMTP.Username),
		mail.WithPassword(cfg.SMTP.Password),
		mail.WithTimeout(cfg.SMTP.DialTimeout),
	)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create mail client")
	}

	conn, err := amqp.Dial(cfg.RabbitMQ.DSN)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to RabbitMQ")
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		logger.WithError(err).Fatal("Failed to open a channel")
	}
	defer ch.Close()

	if err := notify.DeclareQueue(ch, cfg.RabbitMQ.Queue); err != nil {
		logger.WithError(err).Fatal("Failed to declare queue")
	}
	if err := ch.Qos(1, 0, false); err != nil {
		logger.WithError(err).Fatal("Failed to set QoS")
	}

	deliveries, err := ch.Consume(cfg.RabbitMQ.Queue, "", false, false, false, false, nil)
	if err != nil {
		logger.WithError(err).Fatal("Failed to register a consumer")
	}

	sender := notify.NewMail(client, cfg.SMTP.From, cfg.ManagerEmail)

	logger.WithField("queue", cfg.RabbitMQ.Queue).Info("Waiting for events. Press Ctrl+C to stop.")
	notify.Consume(ctx, deliveries, sender, logger)
	logger.Info("Notifier stopped")
}
