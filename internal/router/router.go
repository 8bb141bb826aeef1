package router

import (
	"github.com/anonto42/nano-midea/interactions/internal/auth"
	"github.com/anonto42/nano-midea/interactions/internal/handlers"
	"github.com/anonto42/nano-midea/interactions/internal/middleware"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
)

// SetupMiddleware configures global Echo middleware. Access logs carry the
// path only; the live channel sends its credential in the query string.
func SetupMiddleware(e *echo.Echo, logger logrus.FieldLogger) {
	e.Use(eMiddleware.RequestLoggerWithConfig(eMiddleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURIPath:  true,
		LogStatus:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v eMiddleware.RequestLoggerValues) error {
			entry := logger.WithFields(logrus.Fields{
				"method":  v.Method,
				"path":    v.URIPath,
				"status":  v.Status,
				"latency": v.Latency.String(),
			})
			if v.Error != nil {
				entry.WithError(v.Error).Warn("request")
				return nil
			}
			entry.Info("request")
			return nil
		},
	}))
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	logger.Debug("Global middleware configured")
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, svc *Services, verifier auth.Verifier, logger logrus.FieldLogger) {
	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	// Live channel authenticates its own handshake
	handlers.NewWSHandler(svc.Gateway, logger).RegisterWSRoutes(e)

	// --- Protected routes ---
	api := e.Group("/api/v1")
	api.Use(middleware.Authenticate(verifier, logger))

	handlers.NewUserHandler(svc.Directory, svc.Toggles, logger).RegisterProfileRoutes(api)
	handlers.NewFollowHandler(svc.Toggles, logger).RegisterFollowRoutes(api)
	handlers.NewLikeHandler(svc.Toggles, logger).RegisterLikeRoutes(api)
	handlers.NewCommentHandler(svc.Comments, logger).RegisterCommentRoutes(api)
	handlers.NewNotificationHandler(svc.Ledger, svc.Directory, logger).RegisterNotificationRoutes(api)
	handlers.NewStoryHandler(svc.Stories, logger).RegisterStoryRoutes(api)

	logger.Info("All routes configured")
}
