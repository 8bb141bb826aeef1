package services

import (
	"context"
	"fmt"
	"strconv"

	"github.com/anonto42/nano-midea/interactions/internal/models"
	"github.com/sirupsen/logrus"
)

// InteractionNotifier turns social actions into ledger records.
// Actions a user takes on their own content never notify them.
type InteractionNotifier struct {
	ledger    *NotificationLedger
	directory *Directory
	logger    logrus.FieldLogger
}

func NewInteractionNotifier(ledger *NotificationLedger, directory *Directory, logger logrus.FieldLogger) *InteractionNotifier {
	return &InteractionNotifier{
		ledger:    ledger,
		directory: directory,
		logger:    logger.WithField("component", "notifier"),
	}
}

// Followed records that follower started following target.
func (n *InteractionNotifier) Followed(ctx context.Context, follower, target uint) error {
	return n.record(ctx, NewNotification{
		Kind:     models.NotificationFollow,
		Owner:    target,
		FromUser: follower,
	}, "%s started following you")
}

// Liked records a like on owner's post, or on owner's comment when commentID is set.
func (n *InteractionNotifier) Liked(ctx context.Context, liker, owner uint, postID string, commentID *uint) error {
	nn := NewNotification{
		Kind:     models.NotificationLike,
		Owner:    owner,
		FromUser: liker,
		PostID:   optional(postID),
	}
	format := "%s liked your post"
	if commentID != nil {
		nn.CommentID = optional(strconv.FormatUint(uint64(*commentID), 10))
		format = "%s liked your comment"
	}
	return n.record(ctx, nn, format)
}

// Commented records a comment on postOwner's post.
func (n *InteractionNotifier) Commented(ctx context.Context, commenter, postOwner uint, postID string, commentID uint) error {
	return n.record(ctx, NewNotification{
		Kind:      models.NotificationComment,
		Owner:     postOwner,
		FromUser:  commenter,
		PostID:    optional(postID),
		CommentID: optional(strconv.FormatUint(uint64(commentID), 10)),
	}, "%s commented on your post")
}

// MessageSent records a direct message for its receiver.
func (n *InteractionNotifier) MessageSent(ctx context.Context, msg *models.Message) error {
	return n.record(ctx, NewNotification{
		Kind:     models.NotificationMessage,
		Owner:    msg.ReceiverID,
		FromUser: msg.SenderID,
	}, "%s sent you a message")
}

func (n *InteractionNotifier) record(ctx context.Context, nn NewNotification, format string) error {
	if nn.Owner == nn.FromUser {
		return nil
	}
	name := n.directory.Summary(ctx, nn.FromUser).Name
	if name == "" {
		name = "Someone"
	}
	nn.Message = fmt.Sprintf(format, name)

	if _, err := n.ledger.Record(ctx, nn); err != nil {
		n.logger.WithError(err).WithFields(logrus.Fields{
			"user_id": nn.Owner,
			"type":    nn.Kind,
		}).Error("failed to record notification")
		return err
	}
	return nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
