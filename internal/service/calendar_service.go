package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"macro-canary/internal/domain"
	"macro-canary/internal/ledger"
	"macro-canary/internal/message"
	"macro-canary/internal/notify"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/trace"
)

const (
	snapshotCacheKey = "calendar:latest"
	snapshotCacheTTL = 15 * time.Minute
)

type CalendarProvider interface {
	FetchCalendar(ctx context.Context) ([]domain.Event, error)
}

type Notifier interface {
	Notify(ctx context.Context, text string) error
}

type RedisClient interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
}

// CycleStats summarizes the most recent completed poll cycle.
type CycleStats struct {
	RanAt    time.Time `json:"ran_at"`
	Fetched  int       `json:"fetched"`
	Eligible int       `json:"eligible"`
	Sent     int       `json:"sent"`
}

// CalendarService runs the per-cycle pipeline: fetch a snapshot, classify
// each record, notify the new eligible ones, and record their fingerprints.
// It owns the ledger; the notifier never touches it.
type CalendarService struct {
	tracer        trace.Tracer
	provider      CalendarProvider
	notifier      Notifier
	ledger        *ledger.Ledger
	redis         RedisClient
	allowed       map[string]struct{}
	requireActual bool
	messageDelay  time.Duration

	mu         sync.RWMutex
	lastEvents []domain.Event
	lastStats  CycleStats
}

func NewCalendarService(
	tracer trace.Tracer,
	provider CalendarProvider,
	notifier Notifier,
	led *ledger.Ledger,
	redisClient RedisClient,
	currencies []string,
	requireActual bool,
	messageDelay time.Duration,
) *CalendarService {
	if len(currencies) == 0 {
		currencies = domain.DefaultCurrencies
	}
	if messageDelay <= 0 {
		messageDelay = 2 * time.Second
	}
	return &CalendarService{
		tracer:        tracer,
		provider:      provider,
		notifier:      notifier,
		ledger:        led,
		redis:         redisClient,
		allowed:       domain.CurrencySet(currencies),
		requireActual: requireActual,
		messageDelay:  messageDelay,
	}
}

// RunCycle executes one poll cycle to completion. Records are processed in
// source order and sequentially: no two notifications are ever in flight at
// once, which keeps ledger mutation race-free. A delivery failure aborts the
// cycle with an error; the failed record's fingerprint was not recorded, so
// the next cycle picks it up again.
func (s *CalendarService) RunCycle(ctx context.Context) error {
	ctx, span := s.tracer.Start(ctx, "calendar-service.run-cycle")
	defer span.End()

	events, err := s.provider.FetchCalendar(ctx)
	if err != nil {
		return fmt.Errorf("fetch calendar: %w", err)
	}

	s.storeSnapshot(ctx, events)

	stats := CycleStats{RanAt: time.Now().UTC(), Fetched: len(events)}
	notConfigured := false

	for _, ev := range events {
		if !domain.Eligible(ev, s.allowed, s.requireActual) {
			continue
		}
		stats.Eligible++

		text := message.Render(ev)
		fp := message.Fingerprint(text)
		if s.ledger.Contains(fp) {
			continue
		}
		if notConfigured {
			continue
		}

		if err := s.notifier.Notify(ctx, text); err != nil {
			if errors.Is(err, notify.ErrNotConfigured) {
				log.Println("Telegram credentials not configured, skipping notifications this cycle")
				notConfigured = true
				continue
			}
			s.setStats(stats)
			return fmt.Errorf("notify %q: %w", ev.Name, err)
		}

		// The fingerprint is recorded only after the send was acknowledged;
		// a failed send above leaves it unknown so the next cycle retries.
		if err := s.ledger.Record(ctx, fp, ev); err != nil {
			log.Printf("ledger persist error for %s: %v", fp, err)
		}
		stats.Sent++

		// Brief pause between messages so a busy snapshot does not burst
		// the channel.
		if !sleepCtx(ctx, s.messageDelay) {
			s.setStats(stats)
			return ctx.Err()
		}
	}

	s.setStats(stats)
	log.Printf("Calendar cycle complete fetched=%d eligible=%d sent=%d known=%d",
		stats.Fetched, stats.Eligible, stats.Sent, s.ledger.Size())
	return nil
}

// LatestEvents returns the most recent snapshot. A cold process (no cycle
// completed yet) falls back to the Redis snapshot cache when available.
func (s *CalendarService) LatestEvents(ctx context.Context) []domain.Event {
	s.mu.RLock()
	events := make([]domain.Event, len(s.lastEvents))
	copy(events, s.lastEvents)
	s.mu.RUnlock()

	if len(events) == 0 && s.redis != nil {
		cached, err := s.getSnapshotCache(ctx)
		if err != nil {
			log.Printf("redis snapshot read error: %v", err)
		}
		return cached
	}
	return events
}

// UpcomingEvents returns snapshot rows whose release has not happened yet.
func (s *CalendarService) UpcomingEvents(ctx context.Context) []domain.Event {
	var upcoming []domain.Event
	for _, e := range s.LatestEvents(ctx) {
		if !e.Released() {
			upcoming = append(upcoming, e)
		}
	}
	return upcoming
}

// Stats returns the latest cycle stats and the ledger size.
func (s *CalendarService) Stats() (CycleStats, int) {
	s.mu.RLock()
	stats := s.lastStats
	s.mu.RUnlock()
	return stats, s.ledger.Size()
}

func (s *CalendarService) storeSnapshot(ctx context.Context, events []domain.Event) {
	s.mu.Lock()
	s.lastEvents = events
	s.mu.Unlock()

	if s.redis == nil {
		return
	}
	data, err := json.Marshal(events)
	if err != nil {
		log.Printf("snapshot marshal error: %v", err)
		return
	}
	if err := s.redis.Set(ctx, snapshotCacheKey, data, snapshotCacheTTL).Err(); err != nil {
		log.Printf("redis snapshot write error: %v", err)
	}
}

func (s *CalendarService) getSnapshotCache(ctx context.Context) ([]domain.Event, error) {
	data, err := s.redis.Get(ctx, snapshotCacheKey).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var events []domain.Event
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, err
	}
	return events, nil
}

func (s *CalendarService) setStats(stats CycleStats) {
	s.mu.Lock()
	s.lastStats = stats
	s.mu.Unlock()
}

// sleepCtx sleeps for d unless ctx is cancelled first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}
