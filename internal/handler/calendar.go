package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetCalendar returns the latest calendar snapshot.
func (h *Handler) GetCalendar(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-calendar")
	defer span.End()

	events := h.calendarService.LatestEvents(ctx)
	c.JSON(http.StatusOK, gin.H{
		"count":  len(events),
		"events": events,
	})
}

// GetUpcoming returns snapshot rows whose actual value is still pending.
func (h *Handler) GetUpcoming(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-upcoming")
	defer span.End()

	events := h.calendarService.UpcomingEvents(ctx)
	c.JSON(http.StatusOK, gin.H{
		"count":  len(events),
		"events": events,
	})
}

// GetStats returns the latest cycle stats and the fingerprint ledger size.
func (h *Handler) GetStats(c *gin.Context) {
	_, span := h.tracer.Start(c.Request.Context(), "handler.get-stats")
	defer span.End()

	stats, known := h.calendarService.Stats()
	c.JSON(http.StatusOK, gin.H{
		"last_cycle":         stats,
		"known_fingerprints": known,
	})
}
