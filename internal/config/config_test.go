package config

import (
	"strings"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID", "DATABASE_URL", "REDIS_URL",
		"API_KEY", "CALENDAR_URL", "CALENDAR_POLL_SECS", "CALENDAR_BACKOFF_SECS",
		"MESSAGE_DELAY_SECS", "FETCH_TIMEOUT_SECS", "HTTP_PORT", "CURRENCIES",
		"REQUIRE_ACTUAL", "STOP_ON_ERROR",
	} {
		t.Setenv(name, "")
	}
}

// captureFatal replaces the fatal seam with a panic so malformed-value paths
// can be asserted without killing the test binary.
func captureFatal(t *testing.T) *string {
	t.Helper()
	orig := fatalf
	t.Cleanup(func() { fatalf = orig })

	var msg string
	fatalf = func(format string, v ...any) {
		msg = format
		panic("fatal config")
	}
	return &msg
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()
	if cfg.PollInterval != 60*time.Second {
		t.Fatalf("expected 60s poll interval, got %v", cfg.PollInterval)
	}
	if cfg.FailureBackoff != 30*time.Second {
		t.Fatalf("expected 30s backoff, got %v", cfg.FailureBackoff)
	}
	if cfg.MessageDelay != 2*time.Second {
		t.Fatalf("expected 2s message delay, got %v", cfg.MessageDelay)
	}
	if cfg.HTTPPort != 8080 {
		t.Fatalf("expected port 8080, got %d", cfg.HTTPPort)
	}
	if !cfg.RequireActual || cfg.StopOnError {
		t.Fatalf("unexpected policy defaults: %+v", cfg)
	}
	if len(cfg.Currencies) == 0 || cfg.Currencies[0] != "USD" {
		t.Fatalf("expected default currency list, got %v", cfg.Currencies)
	}
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("TELEGRAM_CHAT_ID", "-100987")
	t.Setenv("CALENDAR_POLL_SECS", "120")
	t.Setenv("CURRENCIES", "usd, nzd ,")
	t.Setenv("REQUIRE_ACTUAL", "false")
	t.Setenv("STOP_ON_ERROR", "true")

	cfg := Load()
	if cfg.TelegramChatID != -100987 {
		t.Fatalf("expected chat id -100987, got %d", cfg.TelegramChatID)
	}
	if cfg.PollInterval != 120*time.Second {
		t.Fatalf("expected 120s poll interval, got %v", cfg.PollInterval)
	}
	if len(cfg.Currencies) != 2 || cfg.Currencies[0] != "USD" || cfg.Currencies[1] != "NZD" {
		t.Fatalf("expected normalized currency list, got %v", cfg.Currencies)
	}
	if cfg.RequireActual || !cfg.StopOnError {
		t.Fatalf("unexpected policies: %+v", cfg)
	}
}

func TestLoadMalformedChatID(t *testing.T) {
	clearEnv(t)
	t.Setenv("TELEGRAM_CHAT_ID", "not-a-number")
	msg := captureFatal(t)

	defer func() {
		if recover() == nil {
			t.Fatal("expected fatal on malformed TELEGRAM_CHAT_ID")
		}
		if !strings.Contains(*msg, "TELEGRAM_CHAT_ID") {
			t.Fatalf("unexpected fatal message: %s", *msg)
		}
	}()
	Load()
}

func TestLoadMalformedInterval(t *testing.T) {
	clearEnv(t)
	t.Setenv("CALENDAR_POLL_SECS", "-5")
	captureFatal(t)

	defer func() {
		if recover() == nil {
			t.Fatal("expected fatal on non-positive poll interval")
		}
	}()
	Load()
}

func TestLoadMalformedBool(t *testing.T) {
	clearEnv(t)
	t.Setenv("STOP_ON_ERROR", "maybe")
	captureFatal(t)

	defer func() {
		if recover() == nil {
			t.Fatal("expected fatal on malformed boolean")
		}
	}()
	Load()
}
