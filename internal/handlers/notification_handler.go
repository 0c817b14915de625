package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/openwaterlog/backend/internal/models"
	"github.com/openwaterlog/backend/internal/repositories"
	"github.com/openwaterlog/backend/internal/services"
)

// NotificationHandler handles notification-related HTTP requests
type NotificationHandler struct {
	service        *services.NotificationService
	userRepository repositories.UserRepository
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(service *services.NotificationService, userRepo repositories.UserRepository) *NotificationHandler {
	return &NotificationHandler{
		service:        service,
		userRepository: userRepo,
	}
}

// RegisterNotificationRoutes registers notification routes
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	g.GET("/users/:username/notifications", h.ListNotifications)
	g.POST("/users/:username/notifications", h.CreateNotification)
	g.DELETE("/users/:username/notifications", h.BulkDelete)
	g.POST("/users/:username/notifications/dismiss", h.BulkDismiss)
	g.POST("/users/:username/notifications/undismiss", h.BulkUndismiss)
	g.GET("/users/:username/notifications/:id", h.GetNotification)
	g.PUT("/users/:username/notifications/:id", h.UpdateNotification)
	g.DELETE("/users/:username/notifications/:id", h.DeleteNotification)
	g.POST("/users/:username/notifications/:id/dismiss", h.Dismiss)
	g.POST("/users/:username/notifications/:id/undismiss", h.Undismiss)
}

// ListNotifications returns the target user's notifications, newest
// activation first, with the filtered total count
func (h *NotificationHandler) ListNotifications(c echo.Context) error {
	user, err := resolveTargetUser(c, h.userRepository)
	if err != nil {
		return err
	}

	opts := services.ListOptions{}
	if raw := c.QueryParam("skip"); raw != "" {
		skip, err := strconv.Atoi(raw)
		if err != nil || skip < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "skip must be a non-negative integer")
		}
		opts.Skip = skip
	}
	if raw := c.QueryParam("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be a non-negative integer")
		}
		opts.Limit = limit
	}
	if raw := c.QueryParam("showDismissed"); raw != "" {
		showDismissed, err := strconv.ParseBool(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "showDismissed must be a boolean")
		}
		opts.ShowDismissed = showDismissed
	}
	if raw := c.QueryParam("showAfter"); raw != "" {
		showAfter, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "showAfter must be an RFC3339 timestamp")
		}
		opts.ShowAfter = &showAfter
	}

	list, err := h.service.ListNotifications(user.ID, opts)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, list)
}

// GetNotification returns a single notification. Missing and foreign-owned
// ids are both 404; the caller cannot tell them apart.
func (h *NotificationHandler) GetNotification(c echo.Context) error {
	user, err := resolveTargetUser(c, h.userRepository)
	if err != nil {
		return err
	}

	notification, err := h.service.GetNotification(user.ID, c.Param("id"))
	if err != nil {
		return serviceError(err)
	}
	if notification == nil {
		return echo.NewHTTPError(http.StatusNotFound, "Notification not found")
	}
	return c.JSON(http.StatusOK, notification)
}

// CreateNotification creates a notification for the target user (admin only)
func (h *NotificationHandler) CreateNotification(c echo.Context) error {
	claims := currentUserClaims(c)
	if claims == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	if !claims.IsAdmin {
		return echo.NewHTTPError(http.StatusForbidden, "Only admins may create notifications")
	}

	user, err := resolveTargetUser(c, h.userRepository)
	if err != nil {
		return err
	}

	var req models.SaveNotificationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	notification, err := h.service.CreateNotification(user.ID, req)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusCreated, notification)
}

// UpdateNotification overwrites a notification's content and re-activates it
func (h *NotificationHandler) UpdateNotification(c echo.Context) error {
	user, err := resolveTargetUser(c, h.userRepository)
	if err != nil {
		return err
	}

	var req models.SaveNotificationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	notification, err := h.service.UpdateNotification(user.ID, c.Param("id"), req)
	if err != nil {
		return serviceError(err)
	}
	if notification == nil {
		return echo.NewHTTPError(http.StatusNotFound, "Notification not found")
	}
	return c.JSON(http.StatusOK, notification)
}

// DeleteNotification deletes a single notification
func (h *NotificationHandler) DeleteNotification(c echo.Context) error {
	user, err := resolveTargetUser(c, h.userRepository)
	if err != nil {
		return err
	}

	count, err := h.service.DeleteNotifications(user.ID, []string{c.Param("id")})
	if err != nil {
		return serviceError(err)
	}
	if count == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "Notification not found")
	}
	return c.NoContent(http.StatusNoContent)
}

// BulkDelete deletes the listed notifications the target user owns and
// reports how many were removed
func (h *NotificationHandler) BulkDelete(c echo.Context) error {
	user, err := resolveTargetUser(c, h.userRepository)
	if err != nil {
		return err
	}

	var ids []string
	if err := c.Bind(&ids); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Request body must be an array of notification ids")
	}

	count, err := h.service.DeleteNotifications(user.ID, ids)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"totalCount": count})
}

// Dismiss marks a notification dismissed; repeating it is a no-op
func (h *NotificationHandler) Dismiss(c echo.Context) error {
	return h.setDismissed(c, true)
}

// Undismiss returns a dismissed notification to the active state
func (h *NotificationHandler) Undismiss(c echo.Context) error {
	return h.setDismissed(c, false)
}

func (h *NotificationHandler) setDismissed(c echo.Context, dismissed bool) error {
	user, err := resolveTargetUser(c, h.userRepository)
	if err != nil {
		return err
	}

	found, err := h.service.MarkDismissed(user.ID, c.Param("id"), dismissed)
	if err != nil {
		return serviceError(err)
	}
	if !found {
		return echo.NewHTTPError(http.StatusNotFound, "Notification not found")
	}
	return c.NoContent(http.StatusNoContent)
}

// BulkDismiss marks the listed owned notifications dismissed
func (h *NotificationHandler) BulkDismiss(c echo.Context) error {
	return h.bulkSetDismissed(c, true)
}

// BulkUndismiss re-activates the listed owned notifications
func (h *NotificationHandler) BulkUndismiss(c echo.Context) error {
	return h.bulkSetDismissed(c, false)
}

func (h *NotificationHandler) bulkSetDismissed(c echo.Context, dismissed bool) error {
	user, err := resolveTargetUser(c, h.userRepository)
	if err != nil {
		return err
	}

	var ids []string
	if err := c.Bind(&ids); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Request body must be an array of notification ids")
	}

	count, err := h.service.BulkSetDismissed(user.ID, ids, dismissed)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"totalCount": count})
}
