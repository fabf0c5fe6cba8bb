package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sonicpods/internal/config"
	"sonicpods/internal/notifications"

	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	os.Exit(run(logger))
}

func run(logger *slog.Logger) int {
	cfg, err := config.LoadNotifications()
	if err != nil {
		logger.Error("load config", "error", err)
		return 1
	}

	queues := cfg.Queues
	if len(queues) == 0 {
		queues = notifications.Queues
	}

	conn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		logger.Error("connect rabbitmq", "error", err)
		return 1
	}
	defer conn.Close()

	consumer, err := notifications.NewConsumer(conn, logger, queues...)
	if err != nil {
		logger.Error("init consumer", "error", err)
		return 1
	}
	defer consumer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	done := make(chan error, 1)
	go func() {
		logger.Info("notifications service started", "queues", queues)
		done <- consumer.Listen(ctx)
	}()

	select {
	case err := <-done:
		if err != nil {
			logger.Error("consumer failed", "error", err)
			return 1
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		if err := awaitDrain(done, cfg.ShutdownTimeout, logger); err != nil {
			logger.Error("consumer stop failed", "error", err)
			return 1
		}
	}

	logger.Info("notifications service stopped")
	return 0
}

// awaitDrain waits for Listen to return after cancellation. Hitting the
// deadline is logged but not treated as a failure.
func awaitDrain(done <-chan error, timeout time.Duration, logger *slog.Logger) error {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	select {
	case err := <-done:
		return err
	case <-deadline.C:
		logger.Warn("consumer shutdown timeout reached", "timeout", timeout)
		return nil
	}
}
