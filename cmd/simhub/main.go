package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/FerryCalvin/antam-autoq/internal/config"
	"github.com/FerryCalvin/antam-autoq/internal/scheduler"
	"github.com/FerryCalvin/antam-autoq/internal/simhub"
	"github.com/FerryCalvin/antam-autoq/pkg/logger"
	"github.com/FerryCalvin/antam-autoq/pkg/telegram"
)

var Version = "dev"

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "simhub exited with error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg := config.LoadSimHub()

	log, err := logger.New(cfg.LogLevel, "stdout")
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("simhub starting",
		zap.String("version", Version),
		zap.String("addr", cfg.Addr),
		zap.String("ticket_dir", cfg.TicketDir),
	)

	tickets, err := simhub.NewTicketStore(cfg.TicketDir)
	if err != nil {
		return fmt.Errorf("init ticket store: %w", err)
	}

	hub := simhub.NewHub(log)

	var notifier simhub.Notifier
	if cfg.TelegramBotToken != "" && cfg.TelegramChatID != 0 {
		bot := telegram.NewBotClient(cfg.TelegramBotToken, nil)
		notifier = telegram.NewNotifier(bot, cfg.TelegramChatID, log)
		log.Info("telegram alerts enabled", zap.Int64("chat_id", cfg.TelegramChatID))
	}

	fleet := simhub.NewFleet(hub, tickets, notifier, log)

	cronRunner := scheduler.NewScheduler(scheduler.Deps{
		QuotaJob:  fleet,
		TicketJob: tickets,
	}, log)
	cronRunner.Start()

	server := simhub.NewServer(fleet, hub, tickets, log)
	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if serveErr := httpServer.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			errCh <- serveErr
		}
	}()

	select {
	case <-ctx.Done():
	case serveErr := <-errCh:
		return fmt.Errorf("serve: %w", serveErr)
	}

	log.Info("simhub shutting down")

	cronCtx := cronRunner.Stop()
	<-cronCtx.Done()
	hub.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	log.Info("simhub stopped")
	return nil
}
