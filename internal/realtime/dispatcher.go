package realtime

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anonto42/nano-midea/interactions/internal/apperr"
	"github.com/anonto42/nano-midea/interactions/internal/events"
	"github.com/anonto42/nano-midea/interactions/internal/models"
	"github.com/anonto42/nano-midea/interactions/internal/repositories"
	"github.com/anonto42/nano-midea/interactions/internal/services"
	"github.com/anonto42/nano-midea/interactions/internal/validators"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Dispatcher executes inbound events for one connection at a time.
// The caller must not run two Handle calls for the same client concurrently.
type Dispatcher struct {
	hub       *Hub
	ledger    *services.NotificationLedger
	notifier  *services.InteractionNotifier
	messages  repositories.MessageRepository
	publisher events.Publisher
	validate  *validators.CustomValidator
	logger    logrus.FieldLogger
	now       func() time.Time
}

type DispatcherDeps struct {
	Hub       *Hub
	Ledger    *services.NotificationLedger
	Notifier  *services.InteractionNotifier
	Messages  repositories.MessageRepository
	Publisher events.Publisher
	// Validator is shared with the REST layer; nil builds a fresh one.
	Validator *validators.CustomValidator
	Logger    logrus.FieldLogger
}

func NewDispatcher(d DispatcherDeps) *Dispatcher {
	if d.Validator == nil {
		d.Validator = validators.NewValidator()
	}
	return &Dispatcher{
		hub:       d.Hub,
		ledger:    d.Ledger,
		notifier:  d.Notifier,
		messages:  d.Messages,
		publisher: d.Publisher,
		validate:  d.Validator,
		logger:    d.Logger.WithField("component", "dispatcher"),
		now:       time.Now,
	}
}

// Handle runs one inbound event. Rejected events are answered with an error
// frame on c; a panic is logged and the event has no effect.
func (d *Dispatcher) Handle(ctx context.Context, c *Client, in Inbound) {
	log := d.logger.WithFields(logrus.Fields{
		"conn_id": c.ID(),
		"user_id": c.UserID(),
		"event":   in.Name(),
	})
	defer func() {
		if r := recover(); r != nil {
			log.WithField("panic", r).Error("live event handler panicked")
		}
	}()

	if err := d.handle(ctx, c, in); err != nil {
		if apperr.KindOf(err) == apperr.KindInternal {
			log.WithError(err).Error("live event failed")
		} else {
			log.WithError(err).Debug("live event rejected")
		}
		d.SendError(c, in.Name(), err)
	}
}

func (d *Dispatcher) handle(ctx context.Context, c *Client, in Inbound) error {
	if c.State() != StateAuthenticated {
		return apperr.Auth("connection is not authenticated", nil)
	}
	if err := d.validate.Struct(in); err != nil {
		return &apperr.Error{Kind: apperr.KindValidation, Msg: "invalid " + in.Name() + " payload", Err: err}
	}

	switch ev := in.(type) {
	case JoinRoom:
		return d.joinRoom(c, ev)
	case SendMessage:
		return d.sendMessage(ctx, c, ev)
	case Typing:
		if ev.SenderID != c.UserID() {
			return apperr.Forbidden("sender does not match the authenticated user")
		}
		return d.publisher.Publish(ctx, events.TypingChanged{
			SenderID:   ev.SenderID,
			ReceiverID: ev.ReceiverID,
			IsTyping:   ev.IsTyping,
		})
	case MarkNotificationRead:
		_, err := d.ledger.MarkRead(ctx, ev.NotificationID, c.UserID())
		return err
	case DeleteNotification:
		_, err := d.ledger.Delete(ctx, ev.NotificationID, c.UserID())
		return err
	case MarkAllNotificationsRead:
		_, err := d.ledger.MarkAllRead(ctx, c.UserID())
		return err
	case GetUnreadCount:
		_, err := d.ledger.ReportUnreadCount(ctx, c.UserID())
		return err
	default:
		return apperr.Validation(fmt.Sprintf("unsupported event %q", in.Name()))
	}
}

func (d *Dispatcher) joinRoom(c *Client, ev JoinRoom) error {
	room := strings.TrimSpace(ev.RoomID)
	if room == "" {
		return apperr.Validation("roomId is required")
	}
	if err := d.hub.Join(c, room); err != nil {
		return apperr.Auth(err.Error(), err)
	}
	return nil
}

// sendMessage stores the message unless it arrives with an id, then relays it.
// Only newly stored messages produce a notification.
func (d *Dispatcher) sendMessage(ctx context.Context, c *Client, ev SendMessage) error {
	if ev.SenderID != c.UserID() {
		return apperr.Forbidden("sender does not match the authenticated user")
	}

	msg := models.Message{
		SenderID:   ev.SenderID,
		ReceiverID: ev.ReceiverID,
		Content:    ev.Content,
		CreatedAt:  d.now(),
	}

	if ev.ExistingID != "" {
		id, err := primitive.ObjectIDFromHex(ev.ExistingID)
		if err != nil {
			return apperr.Validation("invalid message id")
		}
		msg.ID = id
		return d.publisher.Publish(ctx, events.MessageRelayed{Message: msg})
	}

	if err := d.messages.CreateMessage(ctx, &msg); err != nil {
		return apperr.Internal(err)
	}
	if err := d.publisher.Publish(ctx, events.MessageRelayed{Message: msg}); err != nil {
		d.logger.WithError(err).WithField("conn_id", c.ID()).Error("failed to relay stored message")
	}
	// The message is stored; a lost notification is logged by the notifier.
	_ = d.notifier.MessageSent(ctx, &msg)
	return nil
}

// SendError answers c with an error frame describing err.
func (d *Dispatcher) SendError(c *Client, event string, err error) {
	frame, encErr := Encode(EventError, ErrorPayload{
		Event:   event,
		Kind:    apperr.KindOf(err).String(),
		Message: apperr.Message(err),
	})
	if encErr != nil {
		d.logger.WithError(encErr).Error("failed to encode error frame")
		return
	}
	d.hub.SendTo(c, EventError, frame)
}
