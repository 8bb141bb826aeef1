package realtime

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/anonto42/nano-midea/interactions/internal/apperr"
	"github.com/anonto42/nano-midea/interactions/internal/auth"
	"github.com/anonto42/nano-midea/interactions/internal/metrics"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	writeWait     = 10 * time.Second
	maxFrameSize  = 64 * 1024
	defaultBuffer = 64
	defaultRate   = 20
	defaultBurst  = 40
)

type GatewayConfig struct {
	SendBuffer      int
	EventsPerSecond float64
	EventBurst      int
	// AllowedOrigins is matched against the Origin header; "*" or empty allows any.
	AllowedOrigins []string
}

// Gateway authenticates live-channel handshakes and runs the per-connection pumps.
type Gateway struct {
	hub        *Hub
	dispatcher *Dispatcher
	verifier   auth.Verifier
	upgrader   websocket.Upgrader
	cfg        GatewayConfig
	metrics    *metrics.Metrics
	logger     logrus.FieldLogger
}

func NewGateway(hub *Hub, dispatcher *Dispatcher, verifier auth.Verifier, cfg GatewayConfig, m *metrics.Metrics, logger logrus.FieldLogger) *Gateway {
	if cfg.SendBuffer < 1 {
		cfg.SendBuffer = defaultBuffer
	}
	if cfg.EventsPerSecond <= 0 {
		cfg.EventsPerSecond = defaultRate
	}
	if cfg.EventBurst < 1 {
		cfg.EventBurst = defaultBurst
	}
	g := &Gateway{
		hub:        hub,
		dispatcher: dispatcher,
		verifier:   verifier,
		cfg:        cfg,
		metrics:    m,
		logger:     logger.WithField("component", "gateway"),
	}
	g.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     g.checkOrigin,
	}
	return g
}

// Serve verifies the credential, upgrades the connection and blocks until it
// closes. A credential failure is returned before the upgrade as an
// apperr.KindAuth error; the client never joins a room.
func (g *Gateway) Serve(w http.ResponseWriter, r *http.Request) error {
	client := NewClient(g.cfg.SendBuffer)
	client.BeginAuthentication()

	userID, err := g.authenticate(r)
	if err != nil {
		client.Reject()
		g.metrics.HandshakeFailures.Inc()
		g.logger.WithError(err).WithField("conn_id", client.ID()).Info("handshake refused")
		return err
	}

	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// the upgrader has already written the HTTP error
		client.Reject()
		g.logger.WithError(err).WithField("user_id", userID).Warn("websocket upgrade failed")
		return nil
	}

	if err := g.hub.Attach(client, userID); err != nil {
		conn.Close()
		return nil
	}
	log := g.logger.WithFields(logrus.Fields{"conn_id": client.ID(), "user_id": userID})
	log.Info("live connection opened")

	writerDone := make(chan struct{})
	go g.writePump(conn, client, writerDone)

	g.readPump(r.Context(), conn, client)

	g.hub.Unregister(client)
	<-writerDone
	log.Info("live connection closed")
	return nil
}

func (g *Gateway) authenticate(r *http.Request) (uint, error) {
	token, err := auth.TokenFromRequest(r)
	if err != nil {
		return 0, err
	}
	return g.verifier.Verify(r.Context(), token)
}

// readPump processes frames strictly in arrival order until the peer goes away.
func (g *Gateway) readPump(ctx context.Context, conn *websocket.Conn, c *Client) {
	conn.SetReadLimit(maxFrameSize)
	limiter := rate.NewLimiter(rate.Limit(g.cfg.EventsPerSecond), g.cfg.EventBurst)

	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				g.logger.WithError(err).WithField("conn_id", c.ID()).Warn("live connection read failed")
			}
			return
		}

		if !limiter.Allow() {
			g.metrics.EventsDropped.WithLabelValues("rate_limited").Inc()
			g.dispatcher.SendError(c, "", apperr.Validation("rate limit exceeded"))
			continue
		}

		in, err := Decode(frame)
		if err != nil {
			g.metrics.EventsDropped.WithLabelValues("malformed").Inc()
			g.dispatcher.SendError(c, "", err)
			continue
		}
		g.metrics.EventsReceived.WithLabelValues(in.Name()).Inc()
		g.dispatcher.Handle(ctx, c, in)
	}
}

// writePump drains the client's queue until the hub closes it.
func (g *Gateway) writePump(conn *websocket.Conn, c *Client, done chan<- struct{}) {
	defer close(done)
	defer conn.Close()

	for frame := range c.Outbound() {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
			g.logger.WithError(err).WithField("conn_id", c.ID()).Debug("live connection write failed")
			// unblock the reader; the hub closes the queue once it returns
			conn.Close()
			for range c.Outbound() {
			}
			return
		}
	}
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func (g *Gateway) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || len(g.cfg.AllowedOrigins) == 0 {
		return true
	}
	for _, allowed := range g.cfg.AllowedOrigins {
		allowed = strings.TrimSpace(allowed)
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	return false
}
