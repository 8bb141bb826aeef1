package realtime

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/anonto42/nano-midea/interactions/internal/apperr"
)

// Inbound event names.
const (
	EventJoinRoom                 = "join_room"
	EventSendMessage              = "send_message"
	EventTyping                   = "typing"
	EventMarkNotificationRead     = "mark-notification-read"
	EventDeleteNotification       = "delete-notification"
	EventMarkAllNotificationsRead = "mark-all-notifications-read"
	EventGetUnreadCount           = "get-unread-count"
)

// Outbound event names.
const (
	EventReceiveMessage       = "receive_message"
	EventTypingIndicator      = "typing_indicator"
	EventNewNotification      = "new-notification"
	EventUnreadCountUpdated   = "unread-count-updated"
	EventUnreadCountResponse  = "unread-count-response"
	EventNotificationRead     = "notification-read"
	EventNotificationDeleted  = "notification-deleted"
	EventAllNotificationsRead = "all-notifications-read"
	EventError                = "error"
)

// Envelope is the wire frame in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Inbound is the closed set of client events. Only types in this file implement it.
type Inbound interface {
	Name() string
	inbound()
}

type JoinRoom struct {
	RoomID string `json:"roomId" validate:"required,max=128"`
}

// SendMessage carries ExistingID when the message was already stored by another write path.
type SendMessage struct {
	SenderID   uint   `json:"senderId" validate:"required"`
	ReceiverID uint   `json:"receiverId" validate:"required"`
	Content    string `json:"content" validate:"required,max=5000"`
	ExistingID string `json:"_id,omitempty" validate:"omitempty,len=24,hexadecimal"`
}

type Typing struct {
	SenderID   uint `json:"senderId" validate:"required"`
	ReceiverID uint `json:"receiverId" validate:"required"`
	IsTyping   bool `json:"isTyping"`
}

type MarkNotificationRead struct {
	NotificationID uint `json:"notificationId" validate:"required"`
}

type DeleteNotification struct {
	NotificationID uint `json:"notificationId" validate:"required"`
}

type MarkAllNotificationsRead struct{}

type GetUnreadCount struct{}

func (JoinRoom) Name() string                 { return EventJoinRoom }
func (SendMessage) Name() string              { return EventSendMessage }
func (Typing) Name() string                   { return EventTyping }
func (MarkNotificationRead) Name() string     { return EventMarkNotificationRead }
func (DeleteNotification) Name() string       { return EventDeleteNotification }
func (MarkAllNotificationsRead) Name() string { return EventMarkAllNotificationsRead }
func (GetUnreadCount) Name() string           { return EventGetUnreadCount }

func (JoinRoom) inbound()                 {}
func (SendMessage) inbound()              {}
func (Typing) inbound()                   {}
func (MarkNotificationRead) inbound()     {}
func (DeleteNotification) inbound()       {}
func (MarkAllNotificationsRead) inbound() {}
func (GetUnreadCount) inbound()           {}

// Decode parses one client frame. Unknown events and malformed payloads are
// validation errors.
func Decode(frame []byte) (Inbound, error) {
	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return nil, apperr.Validation("frame is not a valid event envelope")
	}

	switch env.Event {
	case EventJoinRoom:
		return decodeAs[JoinRoom](env)
	case EventSendMessage:
		return decodeAs[SendMessage](env)
	case EventTyping:
		return decodeAs[Typing](env)
	case EventMarkNotificationRead:
		return decodeAs[MarkNotificationRead](env)
	case EventDeleteNotification:
		return decodeAs[DeleteNotification](env)
	case EventMarkAllNotificationsRead:
		return MarkAllNotificationsRead{}, nil
	case EventGetUnreadCount:
		return GetUnreadCount{}, nil
	case "":
		return nil, apperr.Validation("event name is required")
	default:
		return nil, apperr.Validation(fmt.Sprintf("unknown event %q", env.Event))
	}
}

func decodeAs[T Inbound](env Envelope) (Inbound, error) {
	var v T
	if err := json.Unmarshal(orEmpty(env.Data), &v); err != nil {
		return nil, &apperr.Error{Kind: apperr.KindValidation, Msg: "invalid " + env.Event + " payload", Err: err}
	}
	return v, nil
}

func orEmpty(data json.RawMessage) json.RawMessage {
	if len(data) == 0 || string(data) == "null" {
		return json.RawMessage("{}")
	}
	return data
}

// Encode builds an outbound frame.
func Encode(event string, data interface{}) ([]byte, error) {
	return json.Marshal(struct {
		Event string      `json:"event"`
		Data  interface{} `json:"data"`
	}{Event: event, Data: data})
}

// Outbound payloads that are not plain models.

type TypingIndicator struct {
	SenderID uint `json:"senderId"`
	IsTyping bool `json:"isTyping"`
}

type UnreadCount struct {
	UserID uint  `json:"userId"`
	Count  int64 `json:"count"`
}

type NotificationChange struct {
	UserID         uint `json:"userId"`
	NotificationID uint `json:"notificationId"`
}

type AllRead struct {
	UserID uint `json:"userId"`
}

type ErrorPayload struct {
	Event   string `json:"event,omitempty"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// PersonalRoom is the room notification state is pushed to.
func PersonalRoom(userID uint) string {
	return strconv.FormatUint(uint64(userID), 10)
}

// MessagingRoom is the room direct messages and typing indicators are pushed to.
func MessagingRoom(userID uint) string {
	return "user_" + PersonalRoom(userID)
}
