// Package main seeds the catalog database from a JSON fixture file.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/aura-video/catalog-backend/config"
	"github.com/aura-video/catalog-backend/internal/criteria"
	"github.com/aura-video/catalog-backend/internal/videos"
	"github.com/aura-video/catalog-backend/pkg/database"
)

// seedVideo is one fixture entry. Any id in the fixture is ignored; rows get
// fresh UUIDs. CreatedAt is optional; when zero the database default applies,
// and when set it reproduces a spread-out catalog history.
type seedVideo struct {
	Title        string    `json:"title"`
	ThumbnailURL string    `json:"thumbnail_url"`
	Duration     int       `json:"duration"`
	Views        int       `json:"views"`
	Tags         []string  `json:"tags"`
	CreatedAt    time.Time `json:"created_at"`
}

type seedFile struct {
	Videos []seedVideo `json:"videos"`
}

func main() {
	file := flag.String("file", "seed/source.json", "path to the JSON fixture file")
	flag.Parse()

	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	data, err := os.ReadFile(*file)
	if err != nil {
		logger.Fatal("read fixture", zap.String("file", *file), zap.Error(err))
	}
	var fixture seedFile
	if err := json.Unmarshal(data, &fixture); err != nil {
		logger.Fatal("parse fixture", zap.String("file", *file), zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool, logger); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	repo := videos.NewRepository(pool)
	inserted := 0
	for _, f := range fixture.Videos {
		in := criteria.CreateInput{
			Title:        f.Title,
			ThumbnailURL: f.ThumbnailURL,
			Duration:     criteria.NumberOf(float64(f.Duration)),
			Views:        criteria.NumberOf(float64(f.Views)),
			Tags:         f.Tags,
		}
		v, err := repo.CreateAt(ctx, in, f.CreatedAt)
		if err != nil {
			logger.Error("seed video", zap.String("title", f.Title), zap.Error(err))
			continue
		}
		inserted++
		logger.Info("seeded video", zap.String("id", v.ID.String()), zap.String("title", v.Title))
	}
	logger.Info("seed complete", zap.Int("inserted", inserted), zap.Int("total", len(fixture.Videos)))
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
