package handlers

import (
	"github.com/anonto42/nano-midea/interactions/internal/realtime"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// WSHandler upgrades authenticated requests to the live channel
type WSHandler struct {
	gateway *realtime.Gateway
	logger  logrus.FieldLogger
}

func NewWSHandler(gateway *realtime.Gateway, logger logrus.FieldLogger) *WSHandler {
	return &WSHandler{gateway: gateway, logger: logger}
}

// RegisterWSRoutes registers the live channel. It sits outside the REST auth
// middleware because browsers cannot set headers on websocket handshakes.
func (h *WSHandler) RegisterWSRoutes(e *echo.Echo) {
	e.GET("/ws", h.Connect)
}

// Connect blocks for the lifetime of the connection
func (h *WSHandler) Connect(c echo.Context) error {
	if err := h.gateway.Serve(c.Response(), c.Request()); err != nil {
		return toHTTPError(c, h.logger, err)
	}
	return nil
}
