package handlers

import (
	"net/http"

	"github.com/anonto42/nano-midea/interactions/internal/apperr"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// statusFor maps an error kind to its HTTP status.
func statusFor(k apperr.Kind) int {
	switch k {
	case apperr.KindValidation, apperr.KindSelfReference:
		return http.StatusBadRequest
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindAuth:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// toHTTPError converts a service error into an echo.HTTPError. Internal detail
// is logged and replaced by an opaque message.
func toHTTPError(c echo.Context, logger logrus.FieldLogger, err error) error {
	kind := apperr.KindOf(err)
	if kind == apperr.KindInternal {
		logger.WithError(err).WithFields(logrus.Fields{
			"method": c.Request().Method,
			"path":   c.Path(),
		}).Error("request failed")
	}
	return echo.NewHTTPError(statusFor(kind), apperr.Message(err))
}

func unauthenticated() error {
	return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
}

func ok(c echo.Context, status int, data interface{}) error {
	return c.JSON(status, echo.Map{"success": true, "data": data})
}
