package services

import (
	"context"
	"sync"
	"testing"

	"github.com/anonto42/nano-midea/interactions/internal/events"
	"github.com/anonto42/nano-midea/interactions/internal/metrics"
	"github.com/anonto42/nano-midea/interactions/internal/models"
	"github.com/anonto42/nano-midea/interactions/internal/repositories/memory"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus/hooks/test"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) last() events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.events) == 0 {
		return nil
	}
	return p.events[len(p.events)-1]
}

func (p *recordingPublisher) kinds() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Kind()
	}
	return out
}

type fixture struct {
	users         *memory.UserRepository
	follows       *memory.FollowRepository
	likes         *memory.LikeRepository
	notifications *memory.NotificationRepository
	stories       *memory.StoryRepository
	posts         *memory.PostRepository
	comments      *memory.CommentRepository
	publisher     *recordingPublisher

	ledger     *NotificationLedger
	notifier   *InteractionNotifier
	toggles    *ToggleStore
	aggregator *StoryAggregator
	commenting *Comments
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger, _ := test.NewNullLogger()
	m := metrics.New(prometheus.NewRegistry())

	f := &fixture{
		users: memory.NewUserRepository(
			models.User{ID: 1, Name: "Ursula"},
			models.User{ID: 2, Name: "Amir"},
			models.User{ID: 3, Name: "Bea"},
		),
		follows:       memory.NewFollowRepository(),
		likes:         memory.NewLikeRepository(),
		notifications: memory.NewNotificationRepository(),
		stories:       memory.NewStoryRepository(),
		posts:         memory.NewPostRepository(),
		comments:      memory.NewCommentRepository(),
		publisher:     &recordingPublisher{},
	}
	directory := NewDirectory(f.users)
	f.ledger = NewNotificationLedger(f.notifications, f.publisher, m, logger)
	f.notifier = NewInteractionNotifier(f.ledger, directory, logger)
	f.toggles = NewToggleStore(ToggleStoreDeps{
		Follows:   f.follows,
		Likes:     f.likes,
		Posts:     f.posts,
		Comments:  f.comments,
		Directory: directory,
		Notifier:  f.notifier,
		Metrics:   m,
		Logger:    logger,
	})
	f.aggregator = NewStoryAggregator(f.stories, f.follows, directory, logger)
	f.commenting = NewComments(f.posts, f.comments, f.notifier)
	return f
}

func (f *fixture) unread(t *testing.T, user uint) int64 {
	t.Helper()
	n, err := f.ledger.UnreadCount(context.Background(), user)
	if err != nil {
		t.Fatalf("unread count: %v", err)
	}
	return n
}
