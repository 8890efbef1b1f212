// Command enhance refreshes stored videos with metadata from the YouTube Data API.
//
//	enhance -video 42
//	enhance -all -limit 200
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/anonto42/vidshelf/backend/internal/repositories"
	"github.com/anonto42/vidshelf/backend/internal/services"
	"github.com/anonto42/vidshelf/backend/pkg/config"
	"github.com/anonto42/vidshelf/backend/pkg/logging"
	"github.com/anonto42/vidshelf/backend/pkg/youtube"
)

func main() {
	os.Exit(run())
}

func run() int {
	videoID := flag.Uint("video", 0, "enhance the video with this id")
	all := flag.Bool("all", false, "enhance every video that was never enhanced")
	limit := flag.Int("limit", 100, "maximum videos processed with -all")
	flag.Parse()

	if (*videoID == 0) == !*all {
		fmt.Fprintln(os.Stderr, "exactly one of -video or -all is required")
		flag.Usage()
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}
	logging.Init(logging.Config{Level: cfg.Logging.Level, Format: "console"})
	if cfg.YouTube.APIKey == "" {
		logging.Fatal().Msg("youtube.api_key is not set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	client, err := youtube.NewClient(ctx, cfg.YouTube.APIKey)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to create YouTube client")
	}

	db, err := config.InitDB(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to initialize databases")
	}
	defer db.CloseDB()

	var metadata repositories.VideoMetadataRepository
	if db.Mongo != nil {
		metadata = repositories.NewMongoVideoMetadataRepository(db.Mongo.Database(cfg.Database.MongoDatabase))
	}
	svc := services.NewVideoEnhancementService(repositories.NewPostgresVideoRepository(db.Postgres), metadata, client)

	if *videoID != 0 {
		v, err := svc.Enhance(ctx, uint(*videoID))
		if err != nil {
			fmt.Printf("video %d: failed: %v\n", *videoID, err)
			return 1
		}
		printVideo(v.ID, v.YouTubeID, v.DisplayTitle(), v.DurationFormatted)
		return 0
	}

	outcomes, err := svc.EnhancePending(ctx, *limit)
	failed := 0
	for _, o := range outcomes {
		if o.Err != nil {
			failed++
			fmt.Printf("video %d (%s): failed: %v\n", o.Video.ID, o.Video.YouTubeID, o.Err)
			continue
		}
		printVideo(o.Video.ID, o.Video.YouTubeID, o.Video.DisplayTitle(), o.Video.DurationFormatted)
	}
	fmt.Printf("%d processed, %d failed\n", len(outcomes), failed)
	if err != nil {
		logging.Error().Err(err).Msg("batch interrupted")
	}
	if err != nil || failed > 0 {
		return 1
	}
	return 0
}

func printVideo(id uint, youtubeID, title, duration string) {
	fmt.Printf("video %d (%s): %q [%s]\n", id, youtubeID, title, duration)
}
