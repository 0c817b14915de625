package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/openwaterlog/backend/internal/models"
	"github.com/openwaterlog/backend/internal/repositories"
	"github.com/openwaterlog/backend/internal/services"
)

// WhitelistHandler handles per-channel notification whitelist requests
type WhitelistHandler struct {
	service        *services.NotificationService
	userRepository repositories.UserRepository
}

// NewWhitelistHandler creates a new WhitelistHandler
func NewWhitelistHandler(service *services.NotificationService, userRepo repositories.UserRepository) *WhitelistHandler {
	return &WhitelistHandler{
		service:        service,
		userRepository: userRepo,
	}
}

// RegisterWhitelistRoutes registers whitelist routes
func (h *WhitelistHandler) RegisterWhitelistRoutes(g *echo.Group) {
	g.GET("/users/:username/notifications/whitelists/:channel", h.GetWhitelist)
	g.PUT("/users/:username/notifications/whitelists/:channel", h.ReplaceWhitelist)
}

// GetWhitelist returns the channel's pattern list in stored order. A user
// who never wrote one gets the effective allow-all list.
func (h *WhitelistHandler) GetWhitelist(c echo.Context) error {
	user, err := resolveTargetUser(c, h.userRepository)
	if err != nil {
		return err
	}
	channel := c.Param("channel")
	if !models.KnownChannel(channel) {
		return echo.NewHTTPError(http.StatusBadRequest, "Unknown notification channel")
	}

	patterns, err := h.service.GetWhitelist(user.ID, channel)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, patterns)
}

// ReplaceWhitelist overwrites the channel's pattern list wholesale. A single
// malformed pattern rejects the whole request.
func (h *WhitelistHandler) ReplaceWhitelist(c echo.Context) error {
	user, err := resolveTargetUser(c, h.userRepository)
	if err != nil {
		return err
	}
	channel := c.Param("channel")
	if !models.KnownChannel(channel) {
		return echo.NewHTTPError(http.StatusBadRequest, "Unknown notification channel")
	}

	var patterns []string
	if err := c.Bind(&patterns); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Request body must be an array of pattern strings")
	}

	stored, err := h.service.ReplaceWhitelist(user.ID, channel, patterns)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, stored)
}
