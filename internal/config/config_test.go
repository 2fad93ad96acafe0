package config

import (
	"testing"
	"time"
)

func TestLoadConsoleDefaults(t *testing.T) {
	for _, key := range []string{
		"PANEL_API_URL", "PANEL_WS_URL", "PANEL_LOG_FILE",
		"LOG_LEVEL", "TICKET_POLL_INTERVAL", "WS_RETRY_DELAY", "EVENT_LOG_CAPACITY",
	} {
		t.Setenv(key, "")
	}

	cfg := LoadConsole()
	if cfg.APIURL != "http://localhost:8000" {
		t.Fatalf("APIURL default: %q", cfg.APIURL)
	}
	if cfg.WSURL != "ws://localhost:8000/ws" {
		t.Fatalf("WSURL default: %q", cfg.WSURL)
	}
	if cfg.TicketInterval != 10*time.Second || cfg.RetryDelay != 3*time.Second {
		t.Fatalf("interval defaults: %+v", cfg)
	}
	if cfg.EventCapacity != 2000 {
		t.Fatalf("capacity default: %d", cfg.EventCapacity)
	}
}

func TestLoadConsoleOverrides(t *testing.T) {
	t.Setenv("PANEL_API_URL", "http://panel.internal:9000")
	t.Setenv("TICKET_POLL_INTERVAL", "30s")
	t.Setenv("EVENT_LOG_CAPACITY", "500")

	cfg := LoadConsole()
	if cfg.APIURL != "http://panel.internal:9000" {
		t.Fatalf("APIURL override: %q", cfg.APIURL)
	}
	if cfg.TicketInterval != 30*time.Second {
		t.Fatalf("interval override: %v", cfg.TicketInterval)
	}
	if cfg.EventCapacity != 500 {
		t.Fatalf("capacity override: %d", cfg.EventCapacity)
	}
}

func TestMalformedValuesFallBack(t *testing.T) {
	t.Setenv("TICKET_POLL_INTERVAL", "not-a-duration")
	t.Setenv("WS_RETRY_DELAY", "-5s")
	t.Setenv("EVENT_LOG_CAPACITY", "zero")

	cfg := LoadConsole()
	if cfg.TicketInterval != 10*time.Second {
		t.Fatalf("malformed interval not defaulted: %v", cfg.TicketInterval)
	}
	if cfg.RetryDelay != 3*time.Second {
		t.Fatalf("negative delay not defaulted: %v", cfg.RetryDelay)
	}
	if cfg.EventCapacity != 2000 {
		t.Fatalf("malformed capacity not defaulted: %d", cfg.EventCapacity)
	}
}

func TestLoadSimHub(t *testing.T) {
	t.Setenv("SIMHUB_ADDR", "")
	t.Setenv("TICKET_DIR", "")
	t.Setenv("TELEGRAM_BOT_TOKEN", " 123:abc ")
	t.Setenv("TELEGRAM_CHAT_ID", "-100200300")

	cfg := LoadSimHub()
	if cfg.Addr != ":8000" || cfg.TicketDir != "tickets" {
		t.Fatalf("simhub defaults: %+v", cfg)
	}
	if cfg.TelegramBotToken != "123:abc" {
		t.Fatalf("token not trimmed: %q", cfg.TelegramBotToken)
	}
	if cfg.TelegramChatID != -100200300 {
		t.Fatalf("chat id: %d", cfg.TelegramChatID)
	}
}
