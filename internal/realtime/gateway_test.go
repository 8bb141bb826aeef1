package realtime

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/anonto42/nano-midea/interactions/internal/apperr"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGatewayServer(t *testing.T, env *testEnv) *httptest.Server {
	t.Helper()
	logger, _ := test.NewNullLogger()
	gw := NewGateway(env.hub, env.dispatcher, stubVerifier{"tok-1": 1, "tok-2": 2}, GatewayConfig{}, env.metrics, logger)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := gw.Serve(w, r); err != nil {
			http.Error(w, apperr.Message(err), http.StatusUnauthorized)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server, token string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	if token != "" {
		url += "?token=" + token
	}
	return websocket.DefaultDialer.Dial(url, nil)
}

func readFrame(t *testing.T, conn *websocket.Conn) frame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var f frame
	require.NoError(t, conn.ReadJSON(&f))
	return f
}

func TestHandshakeRefusedWithoutValidCredential(t *testing.T) {
	env := newTestEnv(t)
	srv := newGatewayServer(t, env)

	for _, token := range []string{"", "forged"} {
		conn, resp, err := dial(t, srv, token)
		require.Error(t, err)
		if conn != nil {
			conn.Close()
		}
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}
	assert.Zero(t, env.hub.ConnectionCount())
	assert.Zero(t, env.hub.RoomCount())
	assert.Equal(t, float64(2), testutil.ToFloat64(env.metrics.HandshakeFailures))
}

func TestLiveChannelEndToEnd(t *testing.T) {
	env := newTestEnv(t)
	srv := newGatewayServer(t, env)

	alice, _, err := dial(t, srv, "tok-1")
	require.NoError(t, err)
	defer alice.Close()
	bob, _, err := dial(t, srv, "tok-2")
	require.NoError(t, err)
	defer bob.Close()

	require.Eventually(t, func() bool { return env.hub.ConnectionCount() == 2 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, alice.WriteJSON(map[string]interface{}{
		"event": EventSendMessage,
		"data":  map[string]interface{}{"senderId": 1, "receiverId": 2, "content": "hey bob"},
	}))

	got := []string{readFrame(t, bob).Event, readFrame(t, bob).Event, readFrame(t, bob).Event}
	assert.Equal(t, []string{EventReceiveMessage, EventNewNotification, EventUnreadCountUpdated}, got)
	assert.Len(t, env.messages.Messages(), 1)

	// malformed frames are answered, not fatal
	require.NoError(t, alice.WriteMessage(websocket.TextMessage, []byte(`{"event":"shout"}`)))
	assert.Equal(t, EventError, readFrame(t, alice).Event)

	require.NoError(t, bob.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	require.Eventually(t, func() bool { return env.hub.ConnectionCount() == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Zero(t, env.hub.RoomSize("2"))
	assert.Zero(t, env.hub.RoomSize("user_2"))
	assert.Equal(t, 1, env.hub.RoomSize("1"))
}
