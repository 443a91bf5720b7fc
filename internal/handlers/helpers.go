package handlers

import (
	"errors"
	"net/http"
	"strconv"

	apperrors "github.com/anonto42/moments/backend/internal/errors"
	"github.com/anonto42/moments/backend/internal/logger"
	"github.com/anonto42/moments/backend/internal/middleware"
	"github.com/anonto42/moments/backend/internal/models"
	"github.com/anonto42/moments/backend/internal/repositories"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// getUserIDFromContext returns the subject id stored by the auth middleware.
func getUserIDFromContext(c echo.Context) string {
	uid, _ := c.Get(middleware.UIDKey).(string)
	return uid
}

func requireUser(c echo.Context) (string, error) {
	uid := getUserIDFromContext(c)
	if uid == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	return uid, nil
}

// bindAndValidate binds the request body into req and runs the Echo validator.
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	return c.Validate(req)
}

// httpError renders application errors with their status. Remote failures
// are logged and hidden behind a generic message.
func httpError(err error) error {
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	var appErr *apperrors.Error
	if !errors.As(err, &appErr) {
		logger.Log.Error("Unhandled error", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
	}
	if appErr.Code == apperrors.ErrRemoteFailure {
		logger.Log.Error("Remote call failed", zap.String("op", appErr.Op), zap.Error(err))
		return echo.NewHTTPError(appErr.HTTPStatus(), "The request could not be completed, please try again")
	}
	return echo.NewHTTPError(appErr.HTTPStatus(), appErr.Message)
}

// queryInt reads a positive integer query parameter, falling back to def and
// clamping to max.
func queryInt(c echo.Context, name string, def, max int) int {
	v, err := strconv.Atoi(c.QueryParam(name))
	if err != nil || v < 1 {
		return def
	}
	if max > 0 && v > max {
		return max
	}
	return v
}

func success(c echo.Context, status int, data interface{}) error {
	return c.JSON(status, echo.Map{"success": true, "data": data})
}

// notifier writes notifications best-effort: failures are logged, never returned.
type notifier struct {
	repo repositories.NotificationRepository
}

func (n notifier) notify(notification *models.Notification) {
	if n.repo == nil || notification.ActorID == notification.RecipientID {
		return
	}
	if err := n.repo.CreateNotification(notification); err != nil {
		logger.Log.Warn("Failed to create notification",
			zap.String("type", notification.Type),
			logger.WithUserID(notification.RecipientID),
			zap.Error(err),
		)
	}
}

// compactProfiles resolves uids to public profile cards, skipping missing users.
func compactProfiles(c echo.Context, users repositories.UserRepository, uids []string) (map[string]models.UserCompact, error) {
	profiles, err := users.GetProfiles(c.Request().Context(), uids)
	if err != nil {
		return nil, err
	}
	out := make(map[string]models.UserCompact, len(profiles))
	for uid, p := range profiles {
		out[uid] = p.ToCompact()
	}
	return out, nil
}
