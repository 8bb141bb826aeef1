package realtime

import (
	"context"

	"github.com/anonto42/nano-midea/interactions/internal/events"
	"github.com/sirupsen/logrus"
)

// Broadcaster is the only component that pushes domain events into rooms.
type Broadcaster struct {
	bus    *events.Bus
	hub    *Hub
	logger logrus.FieldLogger
}

func NewBroadcaster(bus *events.Bus, hub *Hub, logger logrus.FieldLogger) *Broadcaster {
	return &Broadcaster{bus: bus, hub: hub, logger: logger.WithField("component", "broadcaster")}
}

// Start subscribes to the bus before returning, so nothing published after
// Start is missed. The returned channel closes when ctx ends or the bus closes.
func (b *Broadcaster) Start(ctx context.Context) (<-chan struct{}, error) {
	messages, err := b.bus.Subscribe(ctx)
	if err != nil {
		return nil, err
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		for msg := range messages {
			e, err := events.Decode(msg)
			if err != nil {
				b.logger.WithError(err).Error("dropping undecodable domain event")
				msg.Ack()
				continue
			}
			b.Route(e)
			msg.Ack()
		}
		b.logger.Info("broadcaster stopped")
	}()
	return done, nil
}

// Route pushes e to the rooms that care about it.
func (b *Broadcaster) Route(e events.Event) {
	switch ev := e.(type) {
	case events.NotificationCreated:
		room := PersonalRoom(ev.Notification.RecipientID)
		b.push(room, EventNewNotification, ev.Notification)
		b.push(room, EventUnreadCountUpdated, UnreadCount{UserID: ev.Notification.RecipientID, Count: ev.UnreadCount})
	case events.NotificationRead:
		room := PersonalRoom(ev.Owner)
		b.push(room, EventNotificationRead, NotificationChange{UserID: ev.Owner, NotificationID: ev.NotificationID})
		b.push(room, EventUnreadCountUpdated, UnreadCount{UserID: ev.Owner, Count: ev.UnreadCount})
	case events.NotificationDeleted:
		room := PersonalRoom(ev.Owner)
		b.push(room, EventNotificationDeleted, NotificationChange{UserID: ev.Owner, NotificationID: ev.NotificationID})
		b.push(room, EventUnreadCountUpdated, UnreadCount{UserID: ev.Owner, Count: ev.UnreadCount})
	case events.AllNotificationsRead:
		room := PersonalRoom(ev.Owner)
		b.push(room, EventAllNotificationsRead, AllRead{UserID: ev.Owner})
		b.push(room, EventUnreadCountUpdated, UnreadCount{UserID: ev.Owner, Count: 0})
	case events.UnreadCountReported:
		b.push(PersonalRoom(ev.Owner), EventUnreadCountResponse, UnreadCount{UserID: ev.Owner, Count: ev.Count})
	case events.MessageRelayed:
		// Messages use the messaging room rather than the personal room. Every
		// connection of a user is in both, so delivery is identical unless a
		// third party joined one of them with join_room.
		b.push(MessagingRoom(ev.Message.ReceiverID), EventReceiveMessage, ev.Message)
	case events.TypingChanged:
		b.push(MessagingRoom(ev.ReceiverID), EventTypingIndicator, TypingIndicator{SenderID: ev.SenderID, IsTyping: ev.IsTyping})
	default:
		b.logger.WithField("event", e.Kind()).Warn("no route for domain event")
	}
}

func (b *Broadcaster) push(room, event string, data interface{}) {
	frame, err := Encode(event, data)
	if err != nil {
		b.logger.WithError(err).WithField("event", event).Error("failed to encode frame")
		return
	}
	n := b.hub.Broadcast(room, event, frame)
	b.logger.WithFields(logrus.Fields{"room": room, "event": event, "delivered": n}).Debug("broadcast")
}
