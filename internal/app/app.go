package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/kirinyoku/tour-go/internal/auth"
	"github.com/kirinyoku/tour-go/internal/config"
	"github.com/kirinyoku/tour-go/internal/mail"
	"github.com/kirinyoku/tour-go/internal/notify"
	"github.com/kirinyoku/tour-go/internal/payment"
	"github.com/kirinyoku/tour-go/internal/postgres"
	"github.com/kirinyoku/tour-go/internal/redis"
	postgresrepo "github.com/kirinyoku/tour-go/internal/repository/postgres"
	redisrepo "github.com/kirinyoku/tour-go/internal/repository/redis"
	"github.com/kirinyoku/tour-go/internal/service"
	"github.com/kirinyoku/tour-go/internal/service/bookings"
	"github.com/kirinyoku/tour-go/internal/service/checkout"
	httpgin "github.com/kirinyoku/tour-go/internal/transport/http/gin"
	"github.com/kirinyoku/tour-go/internal/uow"
)

const (
	tourCacheTTL      = 60 * time.Second
	idempotencyTTL    = 24 * time.Hour
	idempotencyLock   = 30 * time.Second
	shutdownTimeout   = 5 * time.Second
	readHeaderTimeout = 10 * time.Second
)

type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	httpServer *http.Server

	pool       *pgxpool.Pool
	rdb        *goredis.Client
	dispatcher *notify.Dispatcher
	consumer   *notify.Consumer
	publisher  *notify.AMQPPublisher
}

func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx := context.Background()

	pgxPool, err := postgres.New(ctx, postgres.Config{DSN: cfg.Postgres.DSN(), MaxConns: cfg.Postgres.MaxConns})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize postgres: %w", err)
	}

	if err := postgres.Migrate(ctx, pgxPool); err != nil {
		pgxPool.Close()
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	rdb, err := redis.New(ctx, redis.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err != nil {
		pgxPool.Close()
		return nil, fmt.Errorf("failed to initialize redis: %w", err)
	}

	a := &App{cfg: cfg, logger: logger, pool: pgxPool, rdb: rdb}

	// Repositories
	store := postgresrepo.NewStore(pgxPool)
	tourCache := redisrepo.NewTourCache(redisrepo.New(rdb), tourCacheTTL)
	limiter := redisrepo.NewSlidingWindowLimiter(rdb, "api", cfg.RateLimit.PerMinute, time.Minute).
		SetLimit("signup", cfg.RateLimit.AuthPerMinute).
		SetLimit("login", cfg.RateLimit.AuthPerMinute)
	idempotencyStore := redisrepo.NewIdempotencyStore(rdb, idempotencyTTL, idempotencyLock)

	// Notifications: the dispatcher either mails directly or hands messages
	// to the broker, whose consumer does the mailing.
	mailer := mail.New(mail.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		User:     cfg.SMTP.User,
		Password: cfg.SMTP.Password,
		FromName: cfg.SMTP.FromName,
		AppURL:   cfg.Stripe.AppURL,
	}, logger)

	var sender notify.Sender = mailer
	if cfg.AMQP.Enabled() {
		a.publisher = notify.NewAMQPPublisher(cfg.AMQP.URL, cfg.AMQP.Queue)
		a.consumer = notify.NewConsumer(cfg.AMQP.URL, cfg.AMQP.Queue, mailer, logger)
		sender = a.publisher
	}

	a.dispatcher = notify.NewDispatcher(sender, logger, notify.DispatcherConfig{
		Workers:   cfg.Notify.Workers,
		QueueSize: cfg.Notify.QueueSize,
	})

	// Payments stay a nil interface when not configured.
	var payments checkout.Processor
	if cfg.Stripe.Enabled() {
		payments = payment.NewStripe(payment.Config{
			SecretKey:     cfg.Stripe.SecretKey,
			WebhookSecret: cfg.Stripe.WebhookSecret,
			Currency:      cfg.Stripe.Currency,
			AppURL:        cfg.Stripe.AppURL,
		})
	} else {
		logger.Warn("stripe is not configured; checkout endpoints will answer 503")
	}

	issuer := auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	// Services
	services := service.NewServices(service.Deps{
		Store:       store,
		UoW:         uow.NewUoW(store),
		TourCache:   tourCache,
		Limiter:     limiter,
		Idempotency: idempotencyStore,
		Notifier:    a.dispatcher,
		Hasher:      auth.NewHasher(cfg.Auth.BcryptCost),
		Issuer:      issuer,
		Payments:    payments,
	}, service.Config{
		Bookings: bookings.Config{StrictCapacity: cfg.Booking.StrictCapacity},
	})

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := httpgin.NewRouter(services, issuer, a.dispatcher.Stats, logger)

	a.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	return a, nil
}

func (a *App) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	defer a.close()

	g, gCtx := errgroup.WithContext(ctx)

	// The dispatcher outlives the HTTP server so that requests finishing
	// during shutdown can still enqueue notifications.
	dispatchCtx, stopDispatch := context.WithCancel(context.Background())
	defer stopDispatch()

	// Start HTTP server
	g.Go(func() error {
		a.logger.Info("HTTP server listening", "host", a.cfg.Server.Host, "port", a.cfg.Server.Port)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start HTTP server: %w", err)
		}
		return nil
	})

	// Notification workers drain their queue once the HTTP server is down.
	g.Go(func() error {
		return a.dispatcher.Run(dispatchCtx)
	})

	if a.consumer != nil {
		g.Go(func() error {
			a.logger.Info("notification consumer started", "queue", a.cfg.AMQP.Queue)
			return a.consumer.Run(gCtx)
		})
	}

	// Graceful shutdown
	g.Go(func() error {
		defer stopDispatch()

		<-gCtx.Done()
		a.logger.Info("shutting down HTTP server")
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return a.httpServer.Shutdown(ctx)
	})

	return g.Wait()
}

func (a *App) close() {
	if a.publisher != nil {
		_ = a.publisher.Close()
	}
	if err := a.rdb.Close(); err != nil {
		a.logger.Warn("redis close", slog.Any("error", err))
	}
	a.pool.Close()
}
