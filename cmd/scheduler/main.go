package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"finwell/internal/amqp"
	"finwell/internal/config"
	"finwell/internal/database"
	"finwell/internal/logger"
	"finwell/internal/services"
)

// The scheduler periodically scans every user's recurring obligations and
// materializes the ones that have come due. The API exposes the same scan
// on demand; this binary keeps schedules current without traffic.
func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	var publisher *amqp.Client
	if appConfig.AMQPURL != "" {
		publisher, err = amqp.NewClient(appConfig.AMQPURL, appConfig.AMQPExchange, appConfig.AMQPQueue)
		if err != nil {
			return fmt.Errorf("failed to connect to message broker: %w", err)
		}
		defer publisher.Close()
	}

	db := dbManager.DB()
	notificationService := services.NewNotificationService(db, publisher)
	obligationService := services.NewObligationService(db, notificationService)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Infof("Obligation scheduler started, scanning every %s", appConfig.SchedulerInterval)

	scan := func() {
		start := time.Now()
		generated, err := obligationService.ScanAllUsers(ctx, time.Now())
		if err != nil {
			log.Errorw("Obligation scan failed", "error", err)
			return
		}
		log.Infow("Obligation scan complete",
			"generated", generated,
			"duration", time.Since(start).String(),
		)
	}

	// Run once at startup, then on every tick.
	scan()

	ticker := time.NewTicker(appConfig.SchedulerInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("Shutdown signal received, stopping scheduler")
			return nil
		case <-ticker.C:
			scan()
		}
	}
}
