package middleware

import (
	"net/http"

	"github.com/anonto42/nano-midea/interactions/internal/apperr"
	"github.com/anonto42/nano-midea/interactions/internal/auth"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// UserIDKey is the echo context key holding the authenticated user id (uint).
const UserIDKey = "userID"

// Authenticate checks the bearer token with verifier and stores the user id in the context.
func Authenticate(verifier auth.Verifier, logger logrus.FieldLogger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, err := auth.BearerToken(c.Request().Header.Get("Authorization"))
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, apperr.Message(err))
			}

			userID, err := verifier.Verify(c.Request().Context(), token)
			if err != nil {
				if apperr.KindOf(err) == apperr.KindInternal {
					logger.WithError(err).Error("credential verification failed")
					return echo.NewHTTPError(http.StatusInternalServerError, apperr.Message(err))
				}
				return echo.NewHTTPError(http.StatusUnauthorized, apperr.Message(err))
			}

			c.Set(UserIDKey, userID)
			return next(c)
		}
	}
}
