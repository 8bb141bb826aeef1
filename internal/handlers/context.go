package handlers

import (
	"strconv"

	"github.com/anonto42/nano-midea/interactions/internal/middleware"
	"github.com/labstack/echo/v4"
)

// getUserIDFromContext returns the id set by the auth middleware, or 0.
func getUserIDFromContext(c echo.Context) uint {
	id, _ := c.Get(middleware.UserIDKey).(uint)
	return id
}

func parseUintParam(c echo.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || v == 0 {
		return 0, false
	}
	return uint(v), true
}
