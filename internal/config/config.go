package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"macro-canary/internal/domain"
)

type Config struct {
	TelegramBotToken string
	TelegramChatID   int64
	DatabaseURL      string
	RedisURL         string
	APIKey           string

	CalendarURL    string
	PollInterval   time.Duration
	FailureBackoff time.Duration
	MessageDelay   time.Duration
	FetchTimeout   time.Duration
	Currencies     []string
	RequireActual  bool
	StopOnError    bool
	HTTPPort       int
}

var fatalf = log.Fatalf

// Load reads configuration from the environment. Missing credentials and
// store URLs degrade features with a warning; malformed values are a
// startup error, never something to discover mid-loop.
func Load() *Config {
	cfg := &Config{
		TelegramBotToken: strings.TrimSpace(os.Getenv("TELEGRAM_BOT_TOKEN")),
		DatabaseURL:      strings.TrimSpace(os.Getenv("DATABASE_URL")),
		RedisURL:         strings.TrimSpace(os.Getenv("REDIS_URL")),
		APIKey:           strings.TrimSpace(os.Getenv("API_KEY")),
		CalendarURL:      strings.TrimSpace(os.Getenv("CALENDAR_URL")),
	}

	if cfg.TelegramBotToken == "" {
		log.Println("Warning: TELEGRAM_BOT_TOKEN not set, notifications disabled")
	}
	if v := strings.TrimSpace(os.Getenv("TELEGRAM_CHAT_ID")); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			fatalf("invalid TELEGRAM_CHAT_ID %q: %v", v, err)
		}
		cfg.TelegramChatID = n
	} else if cfg.TelegramBotToken != "" {
		log.Println("Warning: TELEGRAM_CHAT_ID not set, notifications disabled")
	}

	if cfg.DatabaseURL == "" {
		log.Println("Warning: DATABASE_URL not set")
	}

	cfg.PollInterval = envSeconds("CALENDAR_POLL_SECS", 60)
	cfg.FailureBackoff = envSeconds("CALENDAR_BACKOFF_SECS", 30)
	cfg.MessageDelay = envSeconds("MESSAGE_DELAY_SECS", 2)
	cfg.FetchTimeout = envSeconds("FETCH_TIMEOUT_SECS", 20)
	cfg.HTTPPort = envInt("HTTP_PORT", 8080)

	cfg.Currencies = domain.DefaultCurrencies
	if v := strings.TrimSpace(os.Getenv("CURRENCIES")); v != "" {
		var list []string
		for _, cur := range strings.Split(v, ",") {
			cur = strings.ToUpper(strings.TrimSpace(cur))
			if cur != "" {
				list = append(list, cur)
			}
		}
		if len(list) > 0 {
			cfg.Currencies = list
		}
	}

	cfg.RequireActual = envBool("REQUIRE_ACTUAL", true)
	cfg.StopOnError = envBool("STOP_ON_ERROR", false)

	return cfg
}

func envInt(name string, def int) int {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		fatalf("invalid %s=%q, want a positive integer", name, v)
	}
	return n
}

func envSeconds(name string, defSecs int) time.Duration {
	return time.Duration(envInt(name, defSecs)) * time.Second
}

func envBool(name string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	switch strings.ToLower(v) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	}
	fatalf("invalid %s=%q, want true or false", name, v)
	return def
}
