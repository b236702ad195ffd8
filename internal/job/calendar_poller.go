package job

import (
	"context"
	"log"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// CycleRunner runs one poll cycle to completion.
type CycleRunner interface {
	RunCycle(ctx context.Context) error
}

type state int

const (
	statePolling state = iota
	stateBackoff
	stateTerminated
)

// CalendarPoller drives the poll loop: one cycle at a time, a steady-state
// sleep after a clean cycle, a backoff sleep after a failed one. Failures
// are retried forever unless the stop-on-error policy is configured. All
// sleeps are cancellable, so shutdown never waits out a full interval.
type CalendarPoller struct {
	tracer       trace.Tracer
	runner       CycleRunner
	pollInterval time.Duration
	backoff      time.Duration
	stopOnError  bool
}

func NewCalendarPoller(tracer trace.Tracer, runner CycleRunner, pollInterval, backoff time.Duration, stopOnError bool) *CalendarPoller {
	if pollInterval <= 0 {
		pollInterval = 60 * time.Second
	}
	if backoff <= 0 {
		backoff = 30 * time.Second
	}
	return &CalendarPoller{
		tracer:       tracer,
		runner:       runner,
		pollInterval: pollInterval,
		backoff:      backoff,
		stopOnError:  stopOnError,
	}
}

// Start blocks until ctx is cancelled or, under stop-on-error, until a
// cycle fails.
func (p *CalendarPoller) Start(ctx context.Context) {
	log.Println("Calendar poller starting...")

	current := statePolling
	for current != stateTerminated {
		switch current {
		case statePolling:
			if err := p.runOnce(ctx); err != nil {
				if ctx.Err() != nil {
					log.Println("Calendar poller stopped")
					return
				}
				log.Printf("Calendar cycle error: %v", err)
				if p.stopOnError {
					current = stateTerminated
					continue
				}
				current = stateBackoff
				continue
			}
			if !sleepCtx(ctx, p.pollInterval) {
				log.Println("Calendar poller stopped")
				return
			}
		case stateBackoff:
			log.Printf("Backing off for %v before next poll", p.backoff)
			if !sleepCtx(ctx, p.backoff) {
				log.Println("Calendar poller stopped")
				return
			}
			current = statePolling
		}
	}
	log.Println("Calendar poller terminated: stop-on-error policy active")
}

func (p *CalendarPoller) runOnce(ctx context.Context) error {
	_, span := p.tracer.Start(ctx, "calendar-poller.run-once")
	defer span.End()
	return p.runner.RunCycle(ctx)
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
