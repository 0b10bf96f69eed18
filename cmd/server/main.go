// The server binary runs the public website: pages, auth flows, and the
// member dashboard. Background email delivery lives in cmd/worker.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ashokafoundation/website/internal/auth"
	"github.com/ashokafoundation/website/internal/db"
	"github.com/ashokafoundation/website/internal/user"
	"github.com/ashokafoundation/website/internal/webapp"
	"github.com/ashokafoundation/website/pkg/config"
	"github.com/ashokafoundation/website/pkg/cookie"
	"github.com/ashokafoundation/website/pkg/httpserver"
	"github.com/ashokafoundation/website/pkg/logger"
	"github.com/ashokafoundation/website/pkg/pg"
	"github.com/ashokafoundation/website/pkg/queue"
	redisconn "github.com/ashokafoundation/website/pkg/redis"
	"github.com/ashokafoundation/website/pkg/validator"
)

type appConfig struct {
	Env      string `env:"ENVIRONMENT" envDefault:"development"`
	Log      logger.Config
	HTTP     httpserver.Config
	PG       pg.Config
	Redis    redisconn.Config
	Auth     auth.Config
	Queue    queue.Config
	Password validator.PasswordPolicy
}

func main() {
	var cfg appConfig
	config.MustLoad(&cfg)

	log := logger.New(cfg.Log, "server", nil)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, log); err != nil {
		log.ErrorContext(ctx, "server exited", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg appConfig, log *slog.Logger) error {
	pool, err := pg.Connect(ctx, cfg.PG)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()

	if err := pg.Migrate(ctx, pool, db.Migrations, db.MigrationsDir, cfg.PG, log); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	redisClient, err := redisconn.Connect(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer redisClient.Close()

	tokens, err := auth.NewTokenCodec(cfg.Auth)
	if err != nil {
		return fmt.Errorf("token codec: %w", err)
	}

	repo := user.NewRepository(pool)
	svc := auth.NewService(repo, tokens, cfg.Password, cfg.Auth, log)

	cookies := cookie.New(cookie.WithSecure(cfg.Env != "development"))
	sessions := auth.NewSessions(cookies, tokens, repo)

	enqueuer, err := queue.NewEnqueuer(redisClient,
		queue.WithQueue(cfg.Queue.QueueName),
		queue.WithMaxRetries(cfg.Queue.MaxRetries),
	)
	if err != nil {
		return fmt.Errorf("queue enqueuer: %w", err)
	}

	handlers, err := webapp.NewHandlers(svc, sessions, cookies, enqueuer, log)
	if err != nil {
		return fmt.Errorf("web handlers: %w", err)
	}

	health := webapp.Health(log, map[string]webapp.Pinger{
		"postgres": pg.Healthcheck(pool),
		"redis":    redisconn.Healthcheck(redisClient),
	})

	srv := httpserver.New(cfg.HTTP, log)
	return srv.Run(ctx, webapp.Router(handlers, health, log))
}
