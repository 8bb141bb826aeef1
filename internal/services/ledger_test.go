package services

import (
	"context"
	"testing"

	"github.com/anonto42/nano-midea/interactions/internal/apperr"
	"github.com/anonto42/nano-midea/interactions/internal/events"
	"github.com/anonto42/nano-midea/interactions/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recordN(t *testing.T, f *fixture, owner uint, n int) []uint {
	t.Helper()
	ids := make([]uint, n)
	for i := range ids {
		id, err := f.ledger.Record(context.Background(), NewNotification{
			Kind:     models.NotificationFollow,
			Owner:    owner,
			FromUser: 2,
		})
		require.NoError(t, err)
		ids[i] = id
	}
	return ids
}

func TestUnreadCountTracksRecordsAndReads(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ids := recordN(t, f, 1, 5)

	for _, id := range ids[:3] {
		_, err := f.ledger.MarkRead(ctx, id, 1)
		require.NoError(t, err)
	}
	assert.Equal(t, int64(2), f.unread(t, 1))

	// marking an already-read notification again changes nothing
	unread, err := f.ledger.MarkRead(ctx, ids[0], 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), unread)

	changed, err := f.ledger.MarkAllRead(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), changed)
	assert.Zero(t, f.unread(t, 1))

	changed, err = f.ledger.MarkAllRead(ctx, 1)
	require.NoError(t, err)
	assert.Zero(t, changed)
	assert.Zero(t, f.unread(t, 1))
}

func TestRecordPublishesCreatedWithUnreadCount(t *testing.T) {
	f := newFixture(t)
	recordN(t, f, 1, 2)

	created, ok := f.publisher.last().(events.NotificationCreated)
	require.True(t, ok)
	assert.Equal(t, uint(1), created.Notification.RecipientID)
	assert.False(t, created.Notification.IsRead)
	assert.Equal(t, int64(2), created.UnreadCount)
}

func TestRecordRejectsInvalidInput(t *testing.T) {
	f := newFixture(t)
	_, err := f.ledger.Record(context.Background(), NewNotification{Kind: "poke", Owner: 1, FromUser: 2})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	_, err = f.ledger.Record(context.Background(), NewNotification{Kind: models.NotificationLike, FromUser: 2})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	assert.Empty(t, f.publisher.kinds())
}

func TestMarkReadChecksExistenceAndOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ids := recordN(t, f, 1, 1)

	_, err := f.ledger.MarkRead(ctx, 999, 1)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	_, err = f.ledger.MarkRead(ctx, ids[0], 3)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))
	assert.Equal(t, int64(1), f.unread(t, 1))

	_, err = f.ledger.Delete(ctx, ids[0], 3)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))
	assert.Equal(t, int64(1), f.unread(t, 1))
}

func TestDeleteUnreadDecrementsCount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ids := recordN(t, f, 1, 3)

	unread, err := f.ledger.Delete(ctx, ids[1], 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), unread)

	deleted, ok := f.publisher.last().(events.NotificationDeleted)
	require.True(t, ok)
	assert.Equal(t, events.NotificationDeleted{Owner: 1, NotificationID: ids[1], UnreadCount: 2}, deleted)

	_, err = f.ledger.Delete(ctx, ids[1], 1)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestListPaginatesNewestFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ids := recordN(t, f, 1, 5)

	page, err := f.ledger.List(ctx, 1, 1, 2, models.NotificationFilter{})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, ids[4], page.Items[0].ID)
	assert.Equal(t, ids[3], page.Items[1].ID)
	assert.Equal(t, int64(5), page.Total)
	assert.Equal(t, int64(5), page.UnreadCount)
	assert.True(t, page.HasMore)

	page, err = f.ledger.List(ctx, 1, 3, 2, models.NotificationFilter{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, ids[0], page.Items[0].ID)
	assert.False(t, page.HasMore)
}

func TestListFiltersAndDefaults(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ids := recordN(t, f, 1, 3)
	_, err := f.ledger.Record(ctx, NewNotification{Kind: models.NotificationMessage, Owner: 1, FromUser: 3})
	require.NoError(t, err)
	_, err = f.ledger.MarkRead(ctx, ids[0], 1)
	require.NoError(t, err)

	page, err := f.ledger.List(ctx, 1, 0, 0, models.NotificationFilter{UnreadOnly: true})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, DefaultPageSize, page.PageSize)
	assert.Equal(t, int64(3), page.Total)
	for _, n := range page.Items {
		assert.False(t, n.IsRead)
	}

	page, err = f.ledger.List(ctx, 1, 1, 500, models.NotificationFilter{Type: models.NotificationMessage})
	require.NoError(t, err)
	assert.Equal(t, MaxPageSize, page.PageSize)
	require.Len(t, page.Items, 1)
	assert.Equal(t, models.NotificationMessage, page.Items[0].Type)
	assert.Equal(t, int64(3), page.UnreadCount)

	_, err = f.ledger.List(ctx, 1, 1, 10, models.NotificationFilter{Type: "poke"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestListCapsPageSize(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	recordN(t, f, 1, MaxPageSize+5)

	page, err := f.ledger.List(ctx, 1, 1, 100, models.NotificationFilter{})
	require.NoError(t, err)
	assert.Equal(t, MaxPageSize, page.PageSize)
	assert.Len(t, page.Items, MaxPageSize)
	assert.True(t, page.HasMore)

	page, err = f.ledger.List(ctx, 1, 2, 100, models.NotificationFilter{})
	require.NoError(t, err)
	assert.Len(t, page.Items, 5)
	assert.False(t, page.HasMore)
}

func TestLiveMutationsPublishStateChanges(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ids := recordN(t, f, 1, 2)

	_, err := f.ledger.MarkRead(ctx, ids[0], 1)
	require.NoError(t, err)
	_, err = f.ledger.ReportUnreadCount(ctx, 1)
	require.NoError(t, err)
	_, err = f.ledger.MarkAllRead(ctx, 1)
	require.NoError(t, err)

	assert.Equal(t, []string{
		events.KindNotificationCreated,
		events.KindNotificationCreated,
		events.KindNotificationRead,
		events.KindUnreadCountReported,
		events.KindAllNotificationsRead,
	}, f.publisher.kinds())
}
