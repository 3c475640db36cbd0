package resourcelibrary

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/resource-library/internal/cache"
	"github.com/magabrotheeeer/resource-library/internal/config"
	"github.com/magabrotheeeer/resource-library/internal/lib/jwt"
	"github.com/magabrotheeeer/resource-library/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/resource-library/internal/lib/sl"
	"github.com/magabrotheeeer/resource-library/internal/migrations"
	authservice "github.com/magabrotheeeer/resource-library/internal/services/auth"
	premiumservice "github.com/magabrotheeeer/resource-library/internal/services/premium"
	catalogservice "github.com/magabrotheeeer/resource-library/internal/services/resourcecatalog"
	tagservice "github.com/magabrotheeeer/resource-library/internal/services/tagregistry"
	adminservice "github.com/magabrotheeeer/resource-library/internal/services/useradmin"
	"github.com/magabrotheeeer/resource-library/internal/storage/repository"
)

// App собирает HTTP-сервер библиотеки ресурсов и его зависимости.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	conn   *amqp.Connection
	ch     *amqp.Channel
}

// premiumPublisher публикует события жизненного цикла подписки в exchange.
type premiumPublisher struct {
	ch *amqp.Channel
}

func (p *premiumPublisher) Publish(routingKey string, message any) error {
	return rabbitmq.PublishMessage(p.ch, rabbitmq.Exchange, routingKey, message)
}

// New создает приложение: хранилище, миграции, кеш, брокер, сервисы и роутер.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	// Брокер необязателен: без него активация и отмена работают,
	// но уведомления не рассылаются.
	var (
		conn      *amqp.Connection
		ch        *amqp.Channel
		publisher premiumservice.EventPublisher
	)
	if cfg.RabbitMQURL != "" {
		conn, err = rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
		if err != nil {
			return nil, err
		}
		ch, err = rabbitmq.SetupChannel(conn, rabbitmq.GetPremiumQueues())
		if err != nil {
			conn.Close()
			return nil, err
		}
		publisher = &premiumPublisher{ch: ch}
	} else {
		logger.Warn("rabbitmq url is empty, lifecycle events will not be published")
	}

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)

	authService := authservice.New(db, jwtMaker)
	premiumService := premiumservice.New(db, publisher, logger)
	catalogService := catalogservice.New(db, cacheRedis, logger)
	tagService := tagservice.New(db, logger)
	adminService := adminservice.New(db, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, authService, premiumService, catalogService, tagService, adminService)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		conn:   conn,
		ch:     ch,
	}, nil
}

// Run запускает HTTP-сервер и корректно останавливает его по отмене контекста.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		if a.ch != nil {
			if cerr := a.ch.Close(); cerr != nil {
				a.logger.Error("failed to close channel", sl.Err(cerr))
			}
		}
		if a.conn != nil {
			if cerr := a.conn.Close(); cerr != nil {
				a.logger.Error("failed to close connection", sl.Err(cerr))
			}
		}
		a.db.DB.Close()
		return err
	}
}
