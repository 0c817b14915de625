package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/openwaterlog/backend/internal/models"
	"github.com/openwaterlog/backend/internal/notifications"
	"github.com/openwaterlog/backend/internal/repositories"
	"gorm.io/gorm"
)

// currentUserClaims returns the JWT claims stored by the auth middleware, or
// nil when the request is unauthenticated.
func currentUserClaims(c echo.Context) *models.JwtCustomClaims {
	claims, ok := c.Get("user").(*models.JwtCustomClaims)
	if !ok {
		return nil
	}
	return claims
}

// resolveTargetUser loads the user named in the :username path parameter and
// enforces that the caller is that user or an admin.
func resolveTargetUser(c echo.Context, userRepo repositories.UserRepository) (*models.User, error) {
	claims := currentUserClaims(c)
	if claims == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	user, err := userRepo.GetUserByUsername(c.Param("username"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return nil, echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if claims.UserID != user.ID && !claims.IsAdmin {
		return nil, echo.NewHTTPError(http.StatusForbidden, "Not allowed to access this user's notifications")
	}
	return user, nil
}

// serviceError maps service-layer failures onto HTTP status codes: malformed
// input is the caller's fault, everything else is a 500.
func serviceError(err error) error {
	var verr *notifications.ValidationError
	if errors.As(err, &verr) {
		return echo.NewHTTPError(http.StatusBadRequest, verr.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}
