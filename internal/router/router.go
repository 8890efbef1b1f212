package router

import (
	"github.com/anonto42/vidshelf/backend/internal/handlers"
	"github.com/anonto42/vidshelf/backend/internal/middleware"
	"github.com/anonto42/vidshelf/backend/internal/repositories"
	"github.com/anonto42/vidshelf/backend/internal/services"
	"github.com/anonto42/vidshelf/backend/internal/validators"
	"github.com/anonto42/vidshelf/backend/pkg/config"
	"github.com/anonto42/vidshelf/backend/pkg/logging"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// Deps carries the connections and optional integrations the application is built from.
// Every field except Config and DB may be nil.
type Deps struct {
	Config       *config.Config
	DB           *gorm.DB
	Mongo        *mongo.Database
	UnreadCache  services.UnreadCounter
	Pusher       services.Pusher
	Publisher    services.EventPublisher
	FirebaseAuth middleware.TokenVerifier
	VideoSource  services.VideoSource
}

// Services is the wired service layer, shared by the HTTP routes, the event consumer and the CLI
type Services struct {
	Users         repositories.UserRepository
	Follows       repositories.FollowRepository
	Collections   repositories.CollectionRepository
	Videos        repositories.VideoRepository
	Comments      repositories.CommentRepository
	Likes         repositories.LikeRepository
	VideoMetadata repositories.VideoMetadataRepository

	Resolver      *services.SubjectResolver
	Activity      *services.ActivityService
	Notifications *services.NotificationService
	Engagement    *services.EngagementService
	Shares        *services.ShareService
	Enhancement   *services.VideoEnhancementService
}

// NewServices builds repositories and services on top of d
func NewServices(d Deps) *Services {
	cfg := d.Config
	s := &Services{
		Users:       repositories.NewPostgresUserRepository(d.DB),
		Follows:     repositories.NewPostgresFollowRepository(d.DB),
		Collections: repositories.NewPostgresCollectionRepository(d.DB),
		Videos:      repositories.NewPostgresVideoRepository(d.DB),
		Comments:    repositories.NewPostgresCommentRepository(d.DB),
		Likes:       repositories.NewPostgresLikeRepository(d.DB),
	}
	if d.Mongo != nil {
		s.VideoMetadata = repositories.NewMongoVideoMetadataRepository(d.Mongo)
	}

	s.Resolver = services.NewSubjectResolver(s.Collections, s.Videos, s.Comments, s.Users)
	s.Activity = services.NewActivityService(
		repositories.NewPostgresActivityLogRepository(d.DB),
		s.Users,
		s.Follows,
		cfg.Activity.AggregationWindow,
		cfg.Activity.MaxMergeAttempts,
	)

	s.Notifications = services.NewNotificationService(repositories.NewPostgresNotificationRepository(d.DB), s.Users)
	if d.UnreadCache != nil {
		s.Notifications.WithUnreadCounter(d.UnreadCache)
	}
	if d.Pusher != nil {
		s.Notifications.WithPusher(d.Pusher)
	}
	if d.Publisher != nil {
		s.Notifications.WithPublisher(d.Publisher)
	}

	s.Engagement = services.NewEngagementService(services.EngagementDeps{
		Collections:   s.Collections,
		Videos:        s.Videos,
		Comments:      s.Comments,
		Likes:         s.Likes,
		Follows:       s.Follows,
		Users:         s.Users,
		Resolver:      s.Resolver,
		Activity:      s.Activity,
		Notifications: s.Notifications,
	})
	s.Shares = services.NewShareService(
		repositories.NewPostgresCollectionShareRepository(d.DB),
		s.Collections,
		s.Activity,
		s.Notifications,
		cfg.Server.PublicURL,
	)
	if d.VideoSource != nil {
		s.Enhancement = services.NewVideoEnhancementService(s.Videos, s.VideoMetadata, d.VideoSource)
	}
	return s
}

// authMiddleware picks the private-route authenticator for the configured provider
func authMiddleware(d Deps, users repositories.UserRepository) echo.MiddlewareFunc {
	if d.Config.Auth.Provider == "firebase" && d.FirebaseAuth != nil {
		return middleware.FirebaseAuthMiddleware(d.FirebaseAuth, users)
	}
	return middleware.JWTAuthMiddleware(d.Config.Auth.JWTSecret)
}

// SetupRoutes registers every route on e. Public routes accept an optional bearer token
// so visibility filtering knows the viewer.
func SetupRoutes(e *echo.Echo, d Deps, s *Services) {
	cfg := d.Config
	e.Validator = validators.NewValidator()

	health := handlers.NewHealthHandler(d.DB)
	e.GET("/health", health.HealthCheck)
	e.GET(cfg.Server.MetricsPath, echo.WrapHandler(promhttp.Handler()))

	authGroup := e.Group("/api/v1/auth")
	handlers.NewAuthHandler(s.Users, d.FirebaseAuth, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL).RegisterAuthRoutes(authGroup)

	auth := authMiddleware(d, s.Users)
	pub := e.Group("/api/v1", middleware.Optional(auth))
	priv := e.Group("/api/v1", auth)

	users := handlers.NewUserHandler(s.Users, s.Follows)
	users.RegisterProfileRoutes(priv)
	users.RegisterUserRoutes(pub)
	handlers.NewFollowHandler(s.Engagement).RegisterFollowRoutes(priv)
	handlers.NewCollectionHandler(s.Collections, s.Engagement).RegisterCollectionRoutes(pub, priv)
	handlers.NewLikeHandler(s.Likes, s.Engagement).RegisterLikeRoutes(pub, priv)
	handlers.NewCommentHandler(s.Comments, s.Engagement).RegisterCommentRoutes(pub, priv)
	handlers.NewShareHandler(s.Shares).RegisterShareRoutes(pub, priv)
	handlers.NewVideoHandler(s.Videos, s.VideoMetadata, s.Enhancement).RegisterVideoRoutes(pub, priv)
	handlers.NewActivityHandler(s.Activity, s.Resolver).RegisterActivityRoutes(pub)
	handlers.NewNotificationHandler(s.Notifications, s.Resolver).RegisterNotificationRoutes(priv)

	logging.Info().Str("auth_provider", cfg.Auth.Provider).Int("routes", len(e.Routes())).Msg("routes configured")
}
