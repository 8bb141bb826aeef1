package realtime

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/anonto42/nano-midea/interactions/internal/apperr"
	"github.com/anonto42/nano-midea/interactions/internal/events"
	"github.com/anonto42/nano-midea/interactions/internal/metrics"
	"github.com/anonto42/nano-midea/interactions/internal/models"
	"github.com/anonto42/nano-midea/interactions/internal/repositories/memory"
	"github.com/anonto42/nano-midea/interactions/internal/services"
	"github.com/anonto42/nano-midea/interactions/internal/validators"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	metrics       *metrics.Metrics
	hub           *Hub
	bus           *events.Bus
	ledger        *services.NotificationLedger
	notifier      *services.InteractionNotifier
	dispatcher    *Dispatcher
	messages      *memory.MessageRepository
	notifications *memory.NotificationRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger, _ := test.NewNullLogger()
	m := metrics.New(prometheus.NewRegistry())

	env := &testEnv{
		metrics:       m,
		hub:           NewHub(m, logger),
		bus:           events.NewBus(logger),
		messages:      memory.NewMessageRepository(),
		notifications: memory.NewNotificationRepository(),
	}
	users := memory.NewUserRepository(
		models.User{ID: 1, Name: "Ursula"},
		models.User{ID: 2, Name: "Amir"},
	)
	env.ledger = services.NewNotificationLedger(env.notifications, env.bus, m, logger)
	env.notifier = services.NewInteractionNotifier(env.ledger, services.NewDirectory(users), logger)
	env.dispatcher = NewDispatcher(DispatcherDeps{
		Hub:       env.hub,
		Ledger:    env.ledger,
		Notifier:  env.notifier,
		Messages:  env.messages,
		Publisher: env.bus,
		Validator: validators.NewValidator(),
		Logger:    logger,
	})

	ctx, cancel := context.WithCancel(context.Background())
	_, err := NewBroadcaster(env.bus, env.hub, logger).Start(ctx)
	require.NoError(t, err)
	t.Cleanup(func() {
		cancel()
		env.bus.Close()
	})
	return env
}

func attach(t *testing.T, hub *Hub, userID uint) *Client {
	t.Helper()
	c := NewClient(32)
	require.True(t, c.BeginAuthentication())
	require.NoError(t, hub.Attach(c, userID))
	return c
}

type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// drain returns every frame currently queued on c without blocking.
func drain(t *testing.T, c *Client) []frame {
	t.Helper()
	var out []frame
	for {
		select {
		case raw, ok := <-c.Outbound():
			if !ok {
				return out
			}
			var f frame
			require.NoError(t, json.Unmarshal(raw, &f))
			out = append(out, f)
		default:
			return out
		}
	}
}

func eventNames(frames []frame) []string {
	out := make([]string, len(frames))
	for i, f := range frames {
		out[i] = f.Event
	}
	return out
}

func countEvent(frames []frame, name string) int {
	n := 0
	for _, f := range frames {
		if f.Event == name {
			n++
		}
	}
	return n
}

func findEvent(t *testing.T, frames []frame, name string, into interface{}) {
	t.Helper()
	for _, f := range frames {
		if f.Event == name {
			require.NoError(t, json.Unmarshal(f.Data, into))
			return
		}
	}
	t.Fatalf("no %s frame in %v", name, eventNames(frames))
}

type stubVerifier map[string]uint

func (s stubVerifier) Verify(_ context.Context, token string) (uint, error) {
	if id, ok := s[token]; ok {
		return id, nil
	}
	return 0, apperr.Auth("invalid token", nil)
}

func jsonUnmarshal(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}
