package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"

	"github.com/transdom/transdom/config"
	"github.com/transdom/transdom/internal/broker/kafka"
	"github.com/transdom/transdom/internal/notify"
)

type notifierApp struct {
	ctx    context.Context
	cancel context.CancelFunc

	topic    string
	group    string
	consumer *kafka.Consumer
	notifier *notify.Notifier
}

func mustBootstrapNotifier() *notifierApp {
	cfgPath := os.Getenv("configPath")
	if cfgPath == "" {
		panic("configPath env var is required")
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		panic(fmt.Sprintf("load config: %v", err))
	}

	topic := cfg.Kafka.OrderEventsTopicName
	if topic == "" {
		topic = "order.events"
	}
	group := cfg.Transdom.KafkaConsumerGroup
	if group == "" {
		group = "transdom-notifier"
	}

	mailer := notify.NewSMTPMailer(
		cfg.SMTP.Host, cfg.SMTP.Port,
		cfg.SMTP.Username, cfg.SMTP.Password,
		cfg.SMTP.SenderName,
	)

	brokers := []string{fmt.Sprintf("%s:%d", cfg.Kafka.Host, cfg.Kafka.Port)}
	consumer := kafka.NewConsumer(brokers, topic, group)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	return &notifierApp{
		ctx:      ctx,
		cancel:   cancel,
		topic:    topic,
		group:    group,
		consumer: consumer,
		notifier: notify.New(mailer, slog.Default()),
	}
}

func (a *notifierApp) Close() {
	if a.cancel != nil {
		a.cancel()
	}
	if a.consumer != nil {
		_ = a.consumer.Close()
	}
}

func (a *notifierApp) Run() error {
	slog.Info("notifier started", "topic", a.topic, "group", a.group)
	err := a.consumer.Consume(a.ctx, a.notifier.Handle)
	if errors.Is(err, context.Canceled) || a.ctx.Err() != nil {
		return context.Canceled
	}
	return err
}
