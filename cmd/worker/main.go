// The worker binary drains the background queue and delivers emails. It
// shares the redis broker with cmd/server but opens no HTTP port.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ashokafoundation/website/internal/mailer"
	"github.com/ashokafoundation/website/pkg/config"
	"github.com/ashokafoundation/website/pkg/email"
	"github.com/ashokafoundation/website/pkg/logger"
	"github.com/ashokafoundation/website/pkg/queue"
	redisconn "github.com/ashokafoundation/website/pkg/redis"
)

type workerConfig struct {
	Env    string `env:"ENVIRONMENT" envDefault:"development"`
	Log    logger.Config
	Redis  redisconn.Config
	Queue  queue.Config
	Email  email.Config
	Mailer mailer.Config
}

func main() {
	var cfg workerConfig
	config.MustLoad(&cfg)

	log := logger.New(cfg.Log, "worker", nil)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, log); err != nil {
		log.ErrorContext(ctx, "worker exited", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg workerConfig, log *slog.Logger) error {
	redisClient, err := redisconn.Connect(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer redisClient.Close()

	sender, err := newSender(cfg, log)
	if err != nil {
		return fmt.Errorf("email sender: %w", err)
	}

	m, err := mailer.New(sender, cfg.Mailer, log)
	if err != nil {
		return fmt.Errorf("mailer: %w", err)
	}

	worker, err := queue.NewWorker(redisClient, cfg.Queue, log)
	if err != nil {
		return fmt.Errorf("queue worker: %w", err)
	}
	if err := worker.RegisterHandler(m.WelcomeHandler()); err != nil {
		return fmt.Errorf("register handler: %w", err)
	}

	log.InfoContext(ctx, "worker started", slog.String("queue", cfg.Queue.QueueName))
	return worker.Run(ctx)
}

// newSender picks real delivery in production and file output in
// development, where Postmark credentials are usually absent.
func newSender(cfg workerConfig, log *slog.Logger) (email.Sender, error) {
	if cfg.Env == "development" && cfg.Email.PostmarkServerToken == "" {
		log.Info("no postmark token, writing emails to disk",
			slog.String("dir", cfg.Email.DevOutputDir))
		return email.NewDevSender(cfg.Email.DevOutputDir), nil
	}
	return email.NewPostmarkSender(cfg.Email)
}
