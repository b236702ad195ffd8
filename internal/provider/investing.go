package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"macro-canary/internal/domain"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

const defaultCalendarURL = "https://www.investing.com/economic-calendar/"

// The calendar endpoint rejects requests without a browser user agent.
const userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/14.0.3 Safari/605.1.15"

var importancePattern = regexp.MustCompile(`bull([0-3])`)

// CalendarProvider fetches the investing.com economic-calendar page and
// extracts one Event per table row.
type CalendarProvider struct {
	client  *http.Client
	url     string
	tracer  trace.Tracer
	limiter *rate.Limiter
}

// NewCalendarProvider creates a provider with a bounded request timeout and
// built-in rate limiting (one fetch per 5s, burst 2) so back-to-back backoff
// retries cannot hammer the page.
func NewCalendarProvider(tracer trace.Tracer, url string, timeout time.Duration) *CalendarProvider {
	if url == "" {
		url = defaultCalendarURL
	}
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &CalendarProvider{
		client:  &http.Client{Timeout: timeout},
		url:     url,
		tracer:  tracer,
		limiter: rate.NewLimiter(rate.Every(5*time.Second), 2),
	}
}

// FetchCalendar downloads the calendar page and returns a fresh snapshot of
// events. Every row carries the same Date: the day the snapshot was fetched,
// since the page lists only the current day and rows carry no date of their
// own.
func (p *CalendarProvider) FetchCalendar(ctx context.Context) ([]domain.Event, error) {
	_, span := p.tracer.Start(ctx, "calendar.fetch")
	defer span.End()

	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("calendar fetch error %d: %s", resp.StatusCode, string(body))
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse calendar page: %w", err)
	}

	return extractEvents(doc, snapshotDay(time.Now()))
}

func snapshotDay(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

func extractEvents(doc *goquery.Document, day time.Time) ([]domain.Event, error) {
	table := doc.Find("table#economicCalendarData")
	if table.Length() == 0 {
		return nil, errors.New("economic calendar table not found")
	}

	var events []domain.Event
	table.Find("tr.js-event-item").Each(func(_ int, row *goquery.Selection) {
		rowID, ok := row.Attr("id")
		if !ok {
			return
		}
		// Row ids look like "eventRowId_476292"; the numeric part keys the
		// actual/forecast/previous cells.
		parts := strings.SplitN(rowID, "_", 2)
		if len(parts) != 2 {
			return
		}
		id := parts[1]

		events = append(events, domain.Event{
			Name:       cellText(row.Find("a[href]").First()),
			Importance: extractImportance(row),
			Time:       cellText(row.Find("td.first.left.time.js-time")),
			Currency:   cellText(row.Find("td.left.flagCur.noWrap")),
			Previous:   cellText(row.Find("td#eventPrevious_" + id)),
			Forecast:   cellText(row.Find("td#eventForecast_" + id)),
			Actual:     cellText(row.Find("td#eventActual_" + id)),
			Date:       day,
		})
	})
	return events, nil
}

// extractImportance reads the star rating off the sentiment cell's image
// key ("bull1".."bull3"). Rows without one rate 0.
func extractImportance(row *goquery.Selection) int {
	key, ok := row.Find("td.left.textNum.sentiment.noWrap").Attr("data-img_key")
	if !ok {
		return 0
	}
	m := importancePattern.FindStringSubmatch(key)
	if m == nil {
		return 0
	}
	n, _ := strconv.Atoi(m[1])
	return n
}

func cellText(s *goquery.Selection) string {
	return strings.TrimSpace(strings.ReplaceAll(s.Text(), "\u00a0", ""))
}
