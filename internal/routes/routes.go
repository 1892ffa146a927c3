package routes

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/xyz-asif/ebooks/internal/config"
	"github.com/xyz-asif/ebooks/internal/features/auth"
	"github.com/xyz-asif/ebooks/internal/features/books"
	"github.com/xyz-asif/ebooks/internal/features/genres"
	"github.com/xyz-asif/ebooks/internal/pkg/cache"
	"github.com/xyz-asif/ebooks/internal/pkg/cloudinary"
	"github.com/xyz-asif/ebooks/internal/pkg/events"
	"github.com/xyz-asif/ebooks/internal/pkg/logger"
	"github.com/xyz-asif/ebooks/internal/pkg/metrics"
	"github.com/xyz-asif/ebooks/internal/pkg/ratelimit"
	"github.com/xyz-asif/ebooks/internal/pkg/storage"
	"github.com/xyz-asif/ebooks/internal/pkg/thumbnail"
	"go.mongodb.org/mongo-driver/mongo"
)

// Infra holds the shared services features are wired with.
type Infra struct {
	Cache   cache.Cache
	Events  events.Publisher
	Metrics *metrics.Metrics

	redis *redis.Client
	stop  chan struct{}
}

// NewInfra connects optional backends. Redis and Kafka fall back to
// in-process implementations when unset or unreachable.
func NewInfra(ctx context.Context, cfg *config.Config) *Infra {
	infra := &Infra{stop: make(chan struct{})}

	infra.Cache = cache.NewMemoryCache()
	if cfg.RedisAddr != "" {
		rdb, err := cache.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			logger.Warn("redis unavailable, using in-memory cache: %v", err)
		} else {
			infra.redis = rdb
			infra.Cache = cache.NewRedisCache(rdb, "ebooks:")
			logger.Info("cache: redis at %s", cfg.RedisAddr)
		}
	}

	if len(cfg.KafkaBrokers) > 0 {
		infra.Events = events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaBookTopic)
		logger.Info("events: kafka topic %s", cfg.KafkaBookTopic)
	} else {
		infra.Events = events.LogPublisher{}
	}

	if cfg.MetricsEnabled {
		infra.Metrics = metrics.New()
	}
	return infra
}

// Close flushes the event writer and closes Redis.
func (i *Infra) Close() {
	close(i.stop)
	if err := i.Events.Close(); err != nil {
		logger.Warn("events close: %v", err)
	}
	if i.redis != nil {
		if err := i.redis.Close(); err != nil {
			logger.Warn("redis close: %v", err)
		}
	}
}

func authLimiter(cfg *config.Config, stop <-chan struct{}) gin.HandlerFunc {
	if cfg.AuthRateLimit <= 0 {
		return nil
	}
	limiter := ratelimit.New(cfg.AuthRateLimit, time.Minute)
	limiter.StartCleanup(5*time.Minute, stop)
	return ratelimit.Middleware(limiter)
}

func newMirror(cfg *config.Config) books.Mirror {
	if !cfg.CloudinaryEnabled() {
		return nil
	}
	cld, err := cloudinary.NewService(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, cfg.CloudinaryUploadFolder)
	if err != nil {
		logger.Warn("cloudinary disabled: %v", err)
		return nil
	}
	logger.Info("thumbnails mirrored to cloudinary %s", cld.CloudName())
	return cld
}

func SetupRoutes(router *gin.Engine, db *mongo.Database, cfg *config.Config, infra *Infra) error {
	api := router.Group("/api")

	authMiddleware := auth.RegisterRoutes(api, db, cfg, authLimiter(cfg, infra.stop))
	genreService := genres.RegisterRoutes(api, db, cfg, infra.Cache)

	files, err := storage.NewLocal(cfg.UploadedBooksPath, cfg.UploadedThumbnailsPath, cfg.MaxUploadSize)
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}

	bookService := books.NewService(books.Deps{
		Store:      books.NewRepository(db),
		Genres:     genreService,
		Files:      files,
		Thumbnails: thumbnail.NewPDFToPPM(cfg.PDFConverter, files.ThumbnailsDir()),
		Mirror:     newMirror(cfg),
		Cache:      infra.Cache,
		CacheTTL:   cfg.CacheTTL,
		Events:     infra.Events,
		Metrics:    infra.Metrics,
	})
	books.RegisterRoutes(api, books.NewHandler(bookService, cfg.MaxUploadSize, !cfg.IsProduction()), authMiddleware)

	return nil
}
