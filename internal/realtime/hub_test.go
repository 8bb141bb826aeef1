package realtime

import (
	"fmt"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttachJoinsPersonalAndMessagingRooms(t *testing.T) {
	env := newTestEnv(t)
	c := attach(t, env.hub, 7)

	assert.Equal(t, StateAuthenticated, c.State())
	assert.Equal(t, uint(7), c.UserID())
	assert.ElementsMatch(t, []string{"7", "user_7"}, env.hub.Rooms(c))
	assert.Equal(t, 1, env.hub.RoomSize("7"))
	assert.Equal(t, 1, env.hub.RoomSize("user_7"))
	assert.Equal(t, float64(1), testutil.ToFloat64(env.metrics.ActiveConnections))
	assert.Equal(t, float64(2), testutil.ToFloat64(env.metrics.ActiveRooms))
}

func TestUnauthenticatedClientCannotJoin(t *testing.T) {
	env := newTestEnv(t)
	c := NewClient(4)

	assert.ErrorIs(t, env.hub.Join(c, "lobby"), ErrNotAuthenticated)
	assert.ErrorIs(t, env.hub.Attach(c, 1), ErrNotAuthenticated, "attach requires a handshake in progress")

	c.BeginAuthentication()
	c.Reject()
	assert.ErrorIs(t, env.hub.Attach(c, 1), ErrNotAuthenticated)
	assert.Zero(t, env.hub.ConnectionCount())
	assert.Zero(t, env.hub.RoomCount())
}

func TestLeaveDropsOnlyThatRoom(t *testing.T) {
	env := newTestEnv(t)
	c := attach(t, env.hub, 7)
	require.NoError(t, env.hub.Join(c, "lobby"))
	require.Equal(t, 3, env.hub.RoomCount())

	env.hub.Leave(c, "lobby")
	env.hub.Leave(c, "lobby")

	assert.ElementsMatch(t, []string{"7", "user_7"}, env.hub.Rooms(c))
	assert.Zero(t, env.hub.RoomSize("lobby"))
	assert.Equal(t, 2, env.hub.RoomCount())
	assert.Zero(t, env.hub.Broadcast("lobby", "ping", []byte(`{}`)))
}

func TestDisconnectLeavesNoMembership(t *testing.T) {
	env := newTestEnv(t)
	gone := attach(t, env.hub, 1)
	stays := attach(t, env.hub, 2)
	require.NoError(t, env.hub.Join(gone, "lobby"))
	require.NoError(t, env.hub.Join(stays, "lobby"))

	env.hub.Unregister(gone)

	assert.Equal(t, StateClosed, gone.State())
	assert.Equal(t, 1, env.hub.Broadcast("lobby", "ping", []byte(`{}`)))
	assert.Zero(t, env.hub.Broadcast("1", "ping", []byte(`{}`)))
	assert.Zero(t, env.hub.Broadcast("user_1", "ping", []byte(`{}`)))
	assert.Equal(t, 3, env.hub.RoomCount(), "rooms of the remaining connection only")
	assert.Empty(t, env.hub.Rooms(gone))
	assert.False(t, env.hub.SendTo(gone, "ping", []byte(`{}`)))

	_, open := <-gone.Outbound()
	assert.False(t, open)

	// second unregister is a no-op
	env.hub.Unregister(gone)
	assert.Equal(t, 1, env.hub.ConnectionCount())
}

func TestBroadcastDropsWhenQueueIsFull(t *testing.T) {
	env := newTestEnv(t)
	c := NewClient(1)
	c.BeginAuthentication()
	require.NoError(t, env.hub.Attach(c, 3))

	assert.Equal(t, 1, env.hub.Broadcast("3", "a", []byte(`1`)))
	assert.Equal(t, 0, env.hub.Broadcast("3", "b", []byte(`2`)))
	assert.Equal(t, float64(1), testutil.ToFloat64(env.metrics.EventsDropped.WithLabelValues("buffer_full")))
}

func TestConcurrentJoinLeaveDisconnect(t *testing.T) {
	env := newTestEnv(t)
	const workers = 32

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c := NewClient(8)
			c.BeginAuthentication()
			if err := env.hub.Attach(c, uint(i%4+1)); err != nil {
				t.Error(err)
				return
			}
			for r := 0; r < 10; r++ {
				room := fmt.Sprintf("room-%d", (i+r)%5)
				_ = env.hub.Join(c, room)
				env.hub.Broadcast(room, "ping", []byte(`{}`))
				if r%3 == 0 {
					env.hub.Leave(c, room)
				}
			}
			env.hub.Unregister(c)
		}(i)
	}
	wg.Wait()

	assert.Zero(t, env.hub.ConnectionCount())
	assert.Zero(t, env.hub.RoomCount())
	assert.Equal(t, float64(0), testutil.ToFloat64(env.metrics.ActiveConnections))
	assert.Equal(t, float64(0), testutil.ToFloat64(env.metrics.ActiveRooms))
}
