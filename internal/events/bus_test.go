package events

import (
	"context"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/anonto42/nano-midea/interactions/internal/models"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusDeliversConcreteEvents(t *testing.T) {
	logger, _ := test.NewNullLogger()
	bus := NewBus(logger)
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	msgs, err := bus.Subscribe(ctx)
	require.NoError(t, err)

	got := make(chan Event, 4)
	go func() {
		for msg := range msgs {
			e, err := Decode(msg)
			if err == nil {
				got <- e
			}
			msg.Ack()
		}
	}()

	sent := []Event{
		NotificationRead{Owner: 7, NotificationID: 3, UnreadCount: 2},
		TypingChanged{SenderID: 1, ReceiverID: 2, IsTyping: true},
		NotificationCreated{
			Notification: models.Notification{ID: 9, Type: models.NotificationFollow, ActorID: 1, RecipientID: 2},
			UnreadCount:  1,
		},
	}
	for _, e := range sent {
		require.NoError(t, bus.Publish(ctx, e))
	}

	for _, want := range sent {
		select {
		case e := <-got:
			assert.Equal(t, want.Kind(), e.Kind())
			if created, ok := e.(NotificationCreated); ok {
				assert.Equal(t, uint(9), created.Notification.ID)
				assert.Equal(t, int64(1), created.UnreadCount)
			} else {
				assert.Equal(t, want, e)
			}
		case <-time.After(time.Second):
			t.Fatalf("event %s was not delivered", want.Kind())
		}
	}
}

func TestDecodeRejectsUnknownKind(t *testing.T) {
	msg := message.NewMessage(watermill.NewUUID(), []byte(`{}`))
	msg.Metadata.Set(kindMetadataKey, "bogus")

	_, err := Decode(msg)
	assert.Error(t, err)
}

func TestPublishWithoutSubscribersDoesNotBlock(t *testing.T) {
	logger, _ := test.NewNullLogger()
	bus := NewBus(logger)
	defer bus.Close()

	done := make(chan error, 1)
	go func() { done <- bus.Publish(context.Background(), AllNotificationsRead{Owner: 1}) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("publish blocked with no subscribers")
	}
}
