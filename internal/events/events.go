// Package events carries domain events from the services to the realtime
// broadcaster over an in-process watermill bus.
package events

import (
	"github.com/anonto42/nano-midea/interactions/internal/models"
)

// Event is the closed set of domain events. Only types in this package implement it.
type Event interface {
	Kind() string
	domainEvent()
}

const (
	KindNotificationCreated  = "notification.created"
	KindNotificationRead     = "notification.read"
	KindNotificationDeleted  = "notification.deleted"
	KindAllNotificationsRead = "notification.all_read"
	KindUnreadCountReported  = "notification.unread_count"
	KindMessageRelayed       = "message.relayed"
	KindTypingChanged        = "message.typing"
)

// NotificationCreated is emitted after the ledger records a notification.
type NotificationCreated struct {
	Notification models.Notification `json:"notification"`
	UnreadCount  int64               `json:"unread_count"`
}

// NotificationRead is emitted after a mark-read request, whether or not the state changed.
type NotificationRead struct {
	Owner          uint  `json:"owner"`
	NotificationID uint  `json:"notification_id"`
	UnreadCount    int64 `json:"unread_count"`
}

type NotificationDeleted struct {
	Owner          uint  `json:"owner"`
	NotificationID uint  `json:"notification_id"`
	UnreadCount    int64 `json:"unread_count"`
}

type AllNotificationsRead struct {
	Owner uint `json:"owner"`
}

// UnreadCountReported answers an explicit unread-count query from a live client.
type UnreadCountReported struct {
	Owner uint  `json:"owner"`
	Count int64 `json:"count"`
}

// MessageRelayed asks for a direct message to be pushed to its receiver.
type MessageRelayed struct {
	Message models.Message `json:"message"`
}

type TypingChanged struct {
	SenderID   uint `json:"sender_id"`
	ReceiverID uint `json:"receiver_id"`
	IsTyping   bool `json:"is_typing"`
}

func (NotificationCreated) Kind() string  { return KindNotificationCreated }
func (NotificationRead) Kind() string     { return KindNotificationRead }
func (NotificationDeleted) Kind() string  { return KindNotificationDeleted }
func (AllNotificationsRead) Kind() string { return KindAllNotificationsRead }
func (UnreadCountReported) Kind() string  { return KindUnreadCountReported }
func (MessageRelayed) Kind() string       { return KindMessageRelayed }
func (TypingChanged) Kind() string        { return KindTypingChanged }

func (NotificationCreated) domainEvent()  {}
func (NotificationRead) domainEvent()     {}
func (NotificationDeleted) domainEvent()  {}
func (AllNotificationsRead) domainEvent() {}
func (UnreadCountReported) domainEvent()  {}
func (MessageRelayed) domainEvent()       {}
func (TypingChanged) domainEvent()        {}
