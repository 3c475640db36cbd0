// Package notifier собирает сервис почтовых уведомлений о событиях
// жизненного цикла премиум-подписки.
package notifier

import (
	"context"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/resource-library/internal/config"
	"github.com/magabrotheeeer/resource-library/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/resource-library/internal/lib/smtp"
	notifierservice "github.com/magabrotheeeer/resource-library/internal/services/notifier"
)

// App держит соединение с брокером и сервис отправки уведомлений.
type App struct {
	conn            *amqp.Connection
	ch              *amqp.Channel
	notifierService *notifierservice.Service
	logger          *slog.Logger
}

// New создает приложение: подключение к RabbitMQ, очереди и SMTP-транспорт.
func New(_ context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, err
	}

	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetPremiumQueues())
	if err != nil {
		conn.Close()
		return nil, err
	}

	newTransport := smtp.NewTransport(cfg.SMTP, logger)
	notifierService := notifierservice.New(newTransport, logger)

	return &App{
		conn:            conn,
		ch:              ch,
		notifierService: notifierService,
		logger:          logger,
	}, nil
}

// Run запускает потребителей очередей и блокируется до отмены контекста.
func (a *App) Run(ctx context.Context) error {
	err := rabbitmq.ConsumeMessages(ctx, a.ch, "premium.activated", a.notifierService.SendPremiumActivated)
	if err != nil {
		a.logger.Error("failed to start premium.activated consumer", slog.Any("err", err))
		return err
	}

	err = rabbitmq.ConsumeMessages(ctx, a.ch, "premium.cancelled", a.notifierService.SendPremiumCancelled)
	if err != nil {
		a.logger.Error("failed to start premium.cancelled consumer", slog.Any("err", err))
		return err
	}

	<-ctx.Done()
	a.logger.Info("notifier service shutting down gracefully")

	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", slog.Any("err", err))
	}

	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", slog.Any("err", err))
	}

	return nil
}
