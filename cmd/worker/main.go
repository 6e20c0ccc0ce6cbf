package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/luyao-shop/storefront/internal/messaging"
	"github.com/luyao-shop/storefront/internal/worker"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	kafkaBrokers := os.Getenv("KAFKA_BROKERS")
	if kafkaBrokers == "" {
		logger.Error("KAFKA_BROKERS environment variable is required")
		os.Exit(1)
	}

	threshold := 10
	if v := os.Getenv("LOW_STOCK_THRESHOLD"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			logger.Error("invalid LOW_STOCK_THRESHOLD", "value", v)
			os.Exit(1)
		}
		threshold = parsed
	}

	brokers := strings.Split(kafkaBrokers, ",")
	consumer := messaging.NewConsumer(brokers, "storefront.events", "low-stock-worker")
	defer func() { _ = consumer.Close() }()

	alertHandler := worker.NewAlertHandler(threshold, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
		<-stop
		logger.Info("shutting down")
		cancel()
	}()

	logger.Info("starting low stock worker", "brokers", brokers, "threshold", threshold)

	if err := consumer.Consume(ctx, alertHandler.Handle); err != nil {
		if ctx.Err() == context.Canceled {
			logger.Info("consumer stopped")
			return
		}
		logger.Error("consumer error", "error", err)
		os.Exit(1)
	}
}
