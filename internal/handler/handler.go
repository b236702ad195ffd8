package handler

import (
	"macro-canary/internal/service"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

type Handler struct {
	tracer          trace.Tracer
	calendarService *service.CalendarService
	apiKey          string
}

func New(tracer trace.Tracer, calendarService *service.CalendarService, apiKey string) *Handler {
	return &Handler{
		tracer:          tracer,
		calendarService: calendarService,
		apiKey:          apiKey,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)

	api := r.Group("/api", APIKeyAuth(h.apiKey))
	api.GET("/calendar", h.GetCalendar)
	api.GET("/calendar/upcoming", h.GetUpcoming)
	api.GET("/stats", h.GetStats)
}
