package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anonto42/vidshelf/backend/internal/cache"
	"github.com/anonto42/vidshelf/backend/internal/models"
	"github.com/anonto42/vidshelf/backend/internal/queue"
	"github.com/anonto42/vidshelf/backend/internal/repositories"
	"github.com/anonto42/vidshelf/backend/internal/router"
	"github.com/anonto42/vidshelf/backend/pkg/config"
	"github.com/anonto42/vidshelf/backend/pkg/firebase"
	"github.com/anonto42/vidshelf/backend/pkg/logging"
	"github.com/anonto42/vidshelf/backend/pkg/youtube"
	"github.com/labstack/echo/v4"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}
	logging.Init(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := config.InitDB(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to initialize databases")
	}
	defer db.CloseDB()

	if err := models.AutoMigrate(db.Postgres); err != nil {
		logging.Fatal().Err(err).Msg("failed to auto migrate models")
	}

	deps := router.Deps{Config: cfg, DB: db.Postgres}

	if db.Mongo != nil {
		deps.Mongo = db.Mongo.Database(cfg.Database.MongoDatabase)
		if err := repositories.NewMongoVideoMetadataRepository(deps.Mongo).EnsureIndexes(ctx); err != nil {
			logging.Warn().Err(err).Msg("could not create video metadata indexes")
		}
	}
	if db.Redis != nil {
		deps.UnreadCache = cache.NewUnreadCounter(db.Redis, cfg.Redis.CacheTTL)
	}

	kafkaEnabled := len(cfg.Kafka.Brokers) > 0
	if kafkaEnabled {
		producer := queue.NewProducer(cfg.Kafka, cfg.Kafka.NotificationsTopic)
		defer producer.Close()
		deps.Publisher = producer
	}

	if cfg.Firebase.CredentialsPath != "" {
		app, err := firebase.InitFirebase(ctx, cfg.Firebase.CredentialsPath, cfg.Firebase.PushEnabled)
		if err != nil {
			logging.Fatal().Err(err).Msg("failed to initialize Firebase")
		}
		deps.FirebaseAuth = app.AuthClient
		if app.Messaging != nil {
			deps.Pusher = firebase.NewPusher(app.Messaging)
		}
	} else if cfg.Auth.Provider == "firebase" {
		logging.Fatal().Msg("auth.provider is firebase but firebase.credentials_path is empty")
	}

	if cfg.YouTube.APIKey != "" {
		client, err := youtube.NewClient(ctx, cfg.YouTube.APIKey)
		if err != nil {
			logging.Fatal().Err(err).Msg("failed to create YouTube client")
		}
		deps.VideoSource = client
	}

	svc := router.NewServices(deps)

	if kafkaEnabled {
		consumer := queue.NewConsumer(cfg.Kafka, queue.NewEventHandler(svc.Activity, svc.Notifications))
		defer consumer.Close()
		go func() {
			if err := consumer.Run(ctx); err != nil {
				logging.Error().Err(err).Msg("event consumer stopped")
			}
		}()
	}

	e := echo.New()
	e.HideBanner = true
	config.SetupMiddleware(e)
	router.SetupRoutes(e, deps, svc)

	go func() {
		logging.Info().Str("port", cfg.Server.Port).Str("env", cfg.Server.Env).Msg("server starting")
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	logging.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("graceful shutdown failed")
	}
}
