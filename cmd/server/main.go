package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"macro-canary/internal/bot"
	"macro-canary/internal/cache"
	"macro-canary/internal/config"
	"macro-canary/internal/db"
	"macro-canary/internal/handler"
	"macro-canary/internal/job"
	"macro-canary/internal/ledger"
	"macro-canary/internal/notify"
	"macro-canary/internal/provider"
	"macro-canary/internal/repository"
	"macro-canary/internal/service"
	"macro-canary/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/trace"
	tele "gopkg.in/telebot.v3"
)

var (
	loadEnvFunc      = godotenv.Load
	loadConfigFunc   = config.Load
	initPostgresFunc = db.InitPostgres
	initRedisFunc    = cache.InitRedis
	initTracerFunc   = tracing.InitTracer
	newEventRepoFunc = repository.NewEventRepository
	newBotFunc       = func(token string) (*tele.Bot, error) {
		return tele.NewBot(tele.Settings{
			Token:  token,
			Poller: &tele.LongPoller{Timeout: 10 * time.Second},
		})
	}
	newProviderFunc = func(tracer trace.Tracer, url string, timeout time.Duration) service.CalendarProvider {
		return provider.NewCalendarProvider(tracer, url, timeout)
	}
	startPollerFunc        = func(p *job.CalendarPoller, ctx context.Context) { go p.Start(ctx) }
	startTelegramBotFunc   = bot.StartTelegramBot
	newHandlerFunc         = handler.New
	newRouterFunc          = gin.Default
	setupSignalNotify      = signal.Notify
	waitForSignalFunc      = func(quit <-chan os.Signal) { <-quit }
	startHTTPServerFunc    = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFunc = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
)

func main() {
	loadEnvFunc()

	cfg := loadConfigFunc()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init Postgres and Redis (both optional)
	os.Setenv("DATABASE_URL", cfg.DatabaseURL)
	os.Setenv("REDIS_URL", cfg.RedisURL)
	initPostgresFunc(ctx)
	initRedisFunc(ctx)

	// Init tracing
	tp, tracer, err := initTracerFunc(ctx)
	if err != nil {
		log.Fatalf("failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("error shutting down tracer provider: %v", err)
		}
	}()

	// Seed the fingerprint ledger (durable when Postgres is available)
	var store ledger.Store
	if db.Pool != nil {
		repo := newEventRepoFunc(db.Pool, tracer)
		if err := repo.RunMigrations(ctx); err != nil {
			log.Fatalf("failed to run migrations: %v", err)
		}
		store = repo
	}
	led := ledger.New(store)
	if err := led.Load(ctx); err != nil {
		log.Fatalf("failed to seed fingerprint ledger: %v", err)
	}

	// Create the Telegram bot and notifier
	var b *tele.Bot
	if cfg.TelegramBotToken != "" {
		b, err = newBotFunc(cfg.TelegramBotToken)
		if err != nil {
			log.Fatalf("failed to create Telegram bot: %v", err)
		}
	}
	var sender notify.Sender
	if b != nil {
		sender = b
	}
	notifier := notify.NewTelegramNotifier(sender, cfg.TelegramChatID)

	// Wire the calendar pipeline
	var redisClient service.RedisClient
	if cache.Client != nil {
		redisClient = cache.Client
	}
	calendarProvider := newProviderFunc(tracer, cfg.CalendarURL, cfg.FetchTimeout)
	calendarService := service.NewCalendarService(
		tracer, calendarProvider, notifier, led, redisClient,
		cfg.Currencies, cfg.RequireActual, cfg.MessageDelay,
	)

	// Start the poll loop (background goroutine, stopped by ctx cancel)
	poller := job.NewCalendarPoller(tracer, calendarService, cfg.PollInterval, cfg.FailureBackoff, cfg.StopOnError)
	startPollerFunc(poller, ctx)

	// Interactive bot commands
	startTelegramBotFunc(b, calendarService)

	// HTTP surface
	h := newHandlerFunc(tracer, calendarService, cfg.APIKey)
	r := newRouterFunc()
	r.Use(otelgin.Middleware("macro-canary"))
	h.RegisterRoutes(r)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler: r,
	}

	go func() {
		if err := startHTTPServerFunc(srv); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Println("Shutting down...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := shutdownHTTPServerFunc(srv, shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
