package realtime

import (
	"sync/atomic"

	"github.com/google/uuid"
)

// State is a connection's lifecycle position.
type State int32

const (
	StateConnecting State = iota
	StateAuthenticating
	StateAuthenticated
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateAuthenticating:
		return "authenticating"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "closed"
	}
}

// Client is one live connection. Its user id is fixed once authenticated.
// rooms and send are owned by the Hub and only touched under its lock.
type Client struct {
	id     string
	userID uint
	state  atomic.Int32
	send   chan []byte
	rooms  map[string]struct{}
}

// NewClient returns a Connecting client with an outbound queue of bufferSize frames.
func NewClient(bufferSize int) *Client {
	if bufferSize < 1 {
		bufferSize = 1
	}
	return &Client{
		id:    uuid.NewString(),
		send:  make(chan []byte, bufferSize),
		rooms: make(map[string]struct{}),
	}
}

func (c *Client) ID() string              { return c.id }
func (c *Client) UserID() uint            { return c.userID }
func (c *Client) State() State            { return State(c.state.Load()) }
func (c *Client) Outbound() <-chan []byte { return c.send }

// BeginAuthentication moves Connecting to Authenticating.
func (c *Client) BeginAuthentication() bool {
	return c.state.CompareAndSwap(int32(StateConnecting), int32(StateAuthenticating))
}

// Reject closes a client whose credential failed. It never reaches a room.
func (c *Client) Reject() {
	c.state.Store(int32(StateClosed))
}

func (c *Client) authenticate(userID uint) bool {
	if !c.state.CompareAndSwap(int32(StateAuthenticating), int32(StateAuthenticated)) {
		return false
	}
	c.userID = userID
	return true
}
