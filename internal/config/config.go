package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Console holds the operator console's settings. Everything comes from
// the environment with sensible local-development defaults; there is
// no config file and no persisted state.
type Console struct {
	APIURL         string
	WSURL          string
	LogFile        string
	LogLevel       string
	TicketInterval time.Duration
	RetryDelay     time.Duration
	EventCapacity  int
}

// SimHub holds the simulator server's settings.
type SimHub struct {
	Addr             string
	TicketDir        string
	LogLevel         string
	TelegramBotToken string
	TelegramChatID   int64
}

func LoadConsole() Console {
	return Console{
		APIURL:         defaultString(os.Getenv("PANEL_API_URL"), "http://localhost:8000"),
		WSURL:          defaultString(os.Getenv("PANEL_WS_URL"), "ws://localhost:8000/ws"),
		LogFile:        defaultString(os.Getenv("PANEL_LOG_FILE"), "console.log"),
		LogLevel:       defaultString(os.Getenv("LOG_LEVEL"), "info"),
		TicketInterval: defaultDuration(os.Getenv("TICKET_POLL_INTERVAL"), 10*time.Second),
		RetryDelay:     defaultDuration(os.Getenv("WS_RETRY_DELAY"), 3*time.Second),
		EventCapacity:  defaultInt(os.Getenv("EVENT_LOG_CAPACITY"), 2000),
	}
}

func LoadSimHub() SimHub {
	return SimHub{
		Addr:             defaultString(os.Getenv("SIMHUB_ADDR"), ":8000"),
		TicketDir:        defaultString(os.Getenv("TICKET_DIR"), "tickets"),
		LogLevel:         defaultString(os.Getenv("LOG_LEVEL"), "info"),
		TelegramBotToken: strings.TrimSpace(os.Getenv("TELEGRAM_BOT_TOKEN")),
		TelegramChatID:   defaultInt64(os.Getenv("TELEGRAM_CHAT_ID"), 0),
	}
}

func defaultString(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return strings.TrimSpace(value)
}

func defaultInt(value string, fallback int) int {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(trimmed)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func defaultInt64(value string, fallback int64) int64 {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback
	}
	parsed, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func defaultDuration(value string, fallback time.Duration) time.Duration {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(trimmed)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}
