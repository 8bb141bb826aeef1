package router

import (
	"github.com/anonto42/nano-midea/interactions/internal/auth"
	"github.com/anonto42/nano-midea/interactions/internal/events"
	"github.com/anonto42/nano-midea/interactions/internal/metrics"
	"github.com/anonto42/nano-midea/interactions/internal/realtime"
	"github.com/anonto42/nano-midea/interactions/internal/services"
	"github.com/anonto42/nano-midea/interactions/internal/validators"
	"github.com/sirupsen/logrus"
)

// Services is the wired application core shared by REST handlers and the live channel.
type Services struct {
	Directory   *services.Directory
	Ledger      *services.NotificationLedger
	Notifier    *services.InteractionNotifier
	Toggles     *services.ToggleStore
	Stories     *services.StoryAggregator
	Comments    *services.Comments
	Hub         *realtime.Hub
	Gateway     *realtime.Gateway
	Broadcaster *realtime.Broadcaster
	Validator   *validators.CustomValidator
}

func NewServices(repos Repositories, bus *events.Bus, verifier auth.Verifier, wsCfg realtime.GatewayConfig, m *metrics.Metrics, logger logrus.FieldLogger) *Services {
	directory := services.NewDirectory(repos.Users)
	ledger := services.NewNotificationLedger(repos.Notifications, bus, m, logger)
	notifier := services.NewInteractionNotifier(ledger, directory, logger)
	hub := realtime.NewHub(m, logger)
	validator := validators.NewValidator()
	dispatcher := realtime.NewDispatcher(realtime.DispatcherDeps{
		Hub:       hub,
		Ledger:    ledger,
		Notifier:  notifier,
		Messages:  repos.Messages,
		Publisher: bus,
		Validator: validator,
		Logger:    logger,
	})

	return &Services{
		Directory: directory,
		Ledger:    ledger,
		Notifier:  notifier,
		Toggles: services.NewToggleStore(services.ToggleStoreDeps{
			Follows:   repos.Follows,
			Likes:     repos.Likes,
			Posts:     repos.Posts,
			Comments:  repos.Comments,
			Directory: directory,
			Notifier:  notifier,
			Metrics:   m,
			Logger:    logger,
		}),
		Stories:     services.NewStoryAggregator(repos.Stories, repos.Follows, directory, logger),
		Comments:    services.NewComments(repos.Posts, repos.Comments, notifier),
		Hub:         hub,
		Gateway:     realtime.NewGateway(hub, dispatcher, verifier, wsCfg, m, logger),
		Broadcaster: realtime.NewBroadcaster(bus, hub, logger),
		Validator:   validator,
	}
}
