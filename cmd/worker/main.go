package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/unclebandit/framestorm-backend/internal/config"
	"github.com/unclebandit/framestorm-backend/internal/db"
	"github.com/unclebandit/framestorm-backend/internal/logger"
	"github.com/unclebandit/framestorm-backend/internal/queue"
	"github.com/unclebandit/framestorm-backend/internal/repository"
	"github.com/unclebandit/framestorm-backend/internal/service"
)

// The worker drains the activity topic from RabbitMQ into activity_log.
func main() {
	log := logger.Get("worker")
	if err := godotenv.Load(); err != nil {
		log.Info("no .env file found, relying on OS environment variables")
	}

	ctx := context.Background()
	cfg, err := config.Load(ctx)
	if err != nil {
		log.WithError(err).Fatal("failed to load config")
	}
	if err := logger.Init(cfg.Log); err != nil {
		log.WithError(err).Fatal("failed to init logger")
	}
	log = logger.Get("worker")
	if cfg.Queue.URL == "" {
		log.Fatal("QUEUE_URL is required for the worker")
	}

	conn, err := db.Open(ctx, cfg.Database)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	defer conn.Close()

	recorder := service.NewActivityRecorder(&repository.ActivityRepository{DB: conn})

	q, err := queue.DialAMQP(cfg.Queue.URL)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to queue")
	}
	defer q.Close()

	if err := q.Subscribe(cfg.Queue.Topic, recorder.Handle); err != nil {
		log.WithError(err).Fatal("failed to register consumer")
	}
	log.WithField("topic", cfg.Queue.Topic).Info("worker running, waiting for messages")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
		log.Info("shutting down worker")
	case amqpErr := <-q.NotifyClose():
		log.WithField("reason", amqpErr).Error("queue connection closed")
	}
}
