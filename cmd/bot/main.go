package main

import (
	"context"
	"os/signal"
	"syscall"

	"hotel-shift-bot/internal/app"
	"hotel-shift-bot/internal/config"
	"hotel-shift-bot/internal/handler"
	"hotel-shift-bot/internal/logging"
	"hotel-shift-bot/internal/notify"
	"hotel-shift-bot/pkg/telegram"
)

func main() {
	cfg := config.GetConfig()
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	logger.Info("Config initialized")

	if err := cfg.RequireBot(); err != nil {
		logger.WithError(err).Fatal("Invalid bot configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := telegram.NewClient(cfg.TelegramToken, cfg.TelegramDebug)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create Telegram client")
	}
	logger.Infof("Authorized on account %s", client.Bot.Self.UserName)

	var extra []notify.Notifier
	if cfg.ManagerChatID != 0 {
		extra = append(extra, notify.NewTelegram(client.Bot, cfg.ManagerChatID))
	}

	a, err := app.New(ctx, cfg, logger, extra...)
	if err != nil {
		logger.WithError(err).Fatal("Failed to start")
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.WithError(err).Warn("Error during shutdown")
		}
	}()

	if err := a.Staff.InitializeAdmin(ctx, cfg.BaseAdminChatID); err != nil {
		logger.WithError(err).Warn("Failed to initialize admin")
	} else {
		logger.WithField("chat_id", cfg.BaseAdminChatID).Info("Admin initialized")
	}

	botHandler := handler.NewHandler(client.Bot, a.Engine, a.Staff, cfg.OperationTimeout, logger)

	go botHandler.HandleUpdates(ctx, client.Updates())
	logger.Info("Bot started. Press Ctrl+C to stop.")

	<-ctx.Done()
	client.Stop()
	logger.Info("Bot stopped gracefully")
}
