package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/openwaterlog/backend/internal/models"
	"github.com/openwaterlog/backend/internal/services"
)

// EventHandler exposes the internal event-intake surface. Events normally
// arrive from other services; both routes are admin-only.
type EventHandler struct {
	events *services.EventService
}

// NewEventHandler creates a new EventHandler
func NewEventHandler(events *services.EventService) *EventHandler {
	return &EventHandler{events: events}
}

// RegisterEventRoutes registers event intake routes on the internal group
func (h *EventHandler) RegisterEventRoutes(g *echo.Group) {
	g.POST("/events", h.IngestEvent)
	g.GET("/events/log", h.GetDecisionLog)
}

// IngestEvent runs one event through whitelist authorization and reports
// whether it materialized as a notification
func (h *EventHandler) IngestEvent(c echo.Context) error {
	claims := currentUserClaims(c)
	if claims == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	if !claims.IsAdmin {
		return echo.NewHTTPError(http.StatusForbidden, "Only admins may ingest events")
	}

	var event models.Event
	if err := c.Bind(&event); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&event); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	notification, err := h.events.HandleEvent(c.Request().Context(), event)
	if err != nil {
		return serviceError(err)
	}
	if notification == nil {
		return c.JSON(http.StatusOK, echo.Map{"authorized": false})
	}
	return c.JSON(http.StatusCreated, echo.Map{"authorized": true, "notification": notification})
}

// GetDecisionLog returns recent delivery-authorization decisions
func (h *EventHandler) GetDecisionLog(c echo.Context) error {
	claims := currentUserClaims(c)
	if claims == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	if !claims.IsAdmin {
		return echo.NewHTTPError(http.StatusForbidden, "Only admins may read the event log")
	}

	limit := int64(100)
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed < 1 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be a positive integer")
		}
		limit = parsed
	}

	entries, err := h.events.RecentDecisions(c.Request().Context(), limit)
	if err != nil {
		return serviceError(err)
	}
	if entries == nil {
		entries = []models.EventLogEntry{}
	}
	return c.JSON(http.StatusOK, echo.Map{"data": entries})
}
