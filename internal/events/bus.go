package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/sirupsen/logrus"
)

// Topic is the single topic every domain event is published on.
const Topic = "interactions"

const kindMetadataKey = "kind"

// Publisher emits domain events.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Bus is an in-process pub/sub for domain events.
// Publish blocks until every subscriber has acked, so by the time it returns
// the broadcaster has already pushed the event to its rooms.
type Bus struct {
	pubsub *gochannel.GoChannel
}

func NewBus(logger logrus.FieldLogger) *Bus {
	return &Bus{
		pubsub: gochannel.NewGoChannel(gochannel.Config{
			BlockPublishUntilSubscriberAck: true,
		}, NewWatermillLogger(logger)),
	}
}

func (b *Bus) Publish(ctx context.Context, e Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode %s: %w", e.Kind(), err)
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set(kindMetadataKey, e.Kind())
	msg.SetContext(ctx)
	return b.pubsub.Publish(Topic, msg)
}

func (b *Bus) Subscribe(ctx context.Context) (<-chan *message.Message, error) {
	return b.pubsub.Subscribe(ctx, Topic)
}

func (b *Bus) Close() error {
	return b.pubsub.Close()
}

// Decode turns a bus message back into its concrete event.
func Decode(msg *message.Message) (Event, error) {
	kind := msg.Metadata.Get(kindMetadataKey)
	var e Event
	switch kind {
	case KindNotificationCreated:
		e = &NotificationCreated{}
	case KindNotificationRead:
		e = &NotificationRead{}
	case KindNotificationDeleted:
		e = &NotificationDeleted{}
	case KindAllNotificationsRead:
		e = &AllNotificationsRead{}
	case KindUnreadCountReported:
		e = &UnreadCountReported{}
	case KindMessageRelayed:
		e = &MessageRelayed{}
	case KindTypingChanged:
		e = &TypingChanged{}
	default:
		return nil, fmt.Errorf("unknown event kind %q", kind)
	}
	if err := json.Unmarshal(msg.Payload, e); err != nil {
		return nil, fmt.Errorf("decode %s: %w", kind, err)
	}
	return deref(e), nil
}

func deref(e Event) Event {
	switch v := e.(type) {
	case *NotificationCreated:
		return *v
	case *NotificationRead:
		return *v
	case *NotificationDeleted:
		return *v
	case *AllNotificationsRead:
		return *v
	case *UnreadCountReported:
		return *v
	case *MessageRelayed:
		return *v
	case *TypingChanged:
		return *v
	}
	return e
}
