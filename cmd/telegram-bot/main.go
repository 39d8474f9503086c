package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/futig/medwatch-backend/internal/builder"
	"go.uber.org/zap"
)

func main() {
	bot, logger, cleanup, err := builder.BuildTelegramBot()
	if err != nil {
		log.Fatal("Failed to build telegram bot:", err)
	}

	if err := run(bot, logger); err != nil {
		logger.Error("telegram bot stopped with error", zap.Error(err))
		cleanup()
		os.Exit(1)
	}
	cleanup()
}

type runnable interface {
	Start(ctx context.Context) error
	Stop() error
}

func run(bot runnable, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := bot.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	logger.Info("shutdown signal received, draining updates")

	if err := bot.Stop(); err != nil {
		return err
	}
	logger.Info("telegram bot stopped")
	return nil
}
