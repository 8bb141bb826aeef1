package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anonto42/nano-midea/interactions/internal/apperr"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type verifierFunc func(ctx context.Context, token string) (uint, error)

func (f verifierFunc) Verify(ctx context.Context, token string) (uint, error) { return f(ctx, token) }

func TestAuthenticate(t *testing.T) {
	logger, _ := test.NewNullLogger()
	verifier := verifierFunc(func(_ context.Context, token string) (uint, error) {
		switch token {
		case "good":
			return 9, nil
		case "broken":
			return 0, apperr.Internal(errors.New("db down"))
		}
		return 0, apperr.Auth("token expired", nil)
	})
	mw := Authenticate(verifier, logger)
	handler := mw(func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"user": c.Get(UserIDKey)})
	})

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"valid", "Bearer good", http.StatusOK},
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Token good", http.StatusUnauthorized},
		{"expired", "Bearer old", http.StatusUnauthorized},
		{"verifier failure", "Bearer broken", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			err := handler(c)
			if tt.status == http.StatusOK {
				require.NoError(t, err)
				assert.Equal(t, uint(9), c.Get(UserIDKey))
				return
			}
			var he *echo.HTTPError
			require.ErrorAs(t, err, &he)
			assert.Equal(t, tt.status, he.Code)
		})
	}
}
