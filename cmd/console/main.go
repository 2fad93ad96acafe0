package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/FerryCalvin/antam-autoq/internal/config"
	"github.com/FerryCalvin/antam-autoq/internal/panelapi"
	"github.com/FerryCalvin/antam-autoq/internal/poller"
	"github.com/FerryCalvin/antam-autoq/internal/store"
	"github.com/FerryCalvin/antam-autoq/internal/stream"
	"github.com/FerryCalvin/antam-autoq/internal/tui"
	"github.com/FerryCalvin/antam-autoq/pkg/logger"
)

var Version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "console exited with error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("autoq-console", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	apiURL := fs.String("api", "", "panel API base URL (overrides PANEL_API_URL)")
	wsURL := fs.String("ws", "", "panel event stream URL (overrides PANEL_WS_URL)")
	logFile := fs.String("log-file", "", "log file path (overrides PANEL_LOG_FILE)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := config.LoadConsole()
	if *apiURL != "" {
		cfg.APIURL = *apiURL
	}
	if *wsURL != "" {
		cfg.WSURL = *wsURL
	}
	if *logFile != "" {
		cfg.LogFile = *logFile
	}

	// Logs go to a file. The terminal belongs to the TUI renderer.
	log, err := logger.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("console starting",
		zap.String("version", Version),
		zap.String("api_url", cfg.APIURL),
		zap.String("ws_url", cfg.WSURL),
	)

	st := store.New(cfg.EventCapacity)
	client := panelapi.New(cfg.APIURL)
	poll := poller.New(client, st, cfg.TicketInterval, log)
	sub := stream.New(cfg.WSURL, st, cfg.RetryDelay, log)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go poll.Run(runCtx)
	go sub.Run(runCtx)

	program := tea.NewProgram(
		tui.New(tui.Deps{
			Store:      st,
			Client:     client,
			Poller:     poll,
			Subscriber: sub,
			Logger:     log,
		}),
		tea.WithAltScreen(),
		tea.WithContext(runCtx),
	)

	_, runErr := program.Run()

	// Teardown order matters: the subscriber must stop retrying before
	// its socket is closed, then the poller loop is cancelled.
	sub.Close()
	cancel()

	if runErr != nil && !errors.Is(runErr, tea.ErrProgramKilled) {
		return fmt.Errorf("run tui: %w", runErr)
	}

	log.Info("console stopped")
	return nil
}
