package bot

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"macro-canary/internal/domain"
	"macro-canary/internal/service"

	tele "gopkg.in/telebot.v3"
)

const maxListedEvents = 20

// StartTelegramBot registers the interactive commands and starts long
// polling. A nil bot (no token configured) is skipped so the poller can run
// notification-less.
func StartTelegramBot(b *tele.Bot, calendarService *service.CalendarService) {
	if b == nil {
		log.Println("Telegram bot not configured, skipping command handlers")
		return
	}

	b.Handle("/ping", func(c tele.Context) error {
		return c.Send("pong")
	})

	b.Handle("/today", func(c tele.Context) error {
		events := calendarService.LatestEvents(context.Background())
		if len(events) == 0 {
			return c.Send("No calendar snapshot yet.")
		}
		return c.Send(formatEventList(events))
	})

	b.Handle("/upcoming", func(c tele.Context) error {
		events := calendarService.UpcomingEvents(context.Background())
		if len(events) == 0 {
			return c.Send("No pending releases in the latest snapshot.")
		}
		return c.Send(formatEventList(events))
	})

	b.Handle("/status", func(c tele.Context) error {
		stats, known := calendarService.Stats()
		if stats.RanAt.IsZero() {
			return c.Send("No poll cycle has completed yet.")
		}
		return c.Send(fmt.Sprintf(
			"Last cycle: %s\nRows fetched: %d\nEligible: %d\nSent: %d\nKnown fingerprints: %d",
			stats.RanAt.Format(time.RFC3339), stats.Fetched, stats.Eligible, stats.Sent, known))
	})

	log.Println("Telegram bot started")
	go b.Start()
}

func formatEventList(events []domain.Event) string {
	var b strings.Builder
	for i, e := range events {
		if i >= maxListedEvents {
			fmt.Fprintf(&b, "… and %d more", len(events)-maxListedEvents)
			break
		}
		stars := strings.Repeat("*", e.Importance)
		if stars == "" {
			stars = "-"
		}
		fmt.Fprintf(&b, "%s | %s %s (%s)\n", e.Time, e.Currency, e.Name, stars)
	}
	return strings.TrimRight(b.String(), "\n")
}
