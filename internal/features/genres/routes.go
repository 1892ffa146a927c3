package genres

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xyz-asif/ebooks/internal/config"
	"github.com/xyz-asif/ebooks/internal/pkg/cache"
	"github.com/xyz-asif/ebooks/internal/pkg/logger"
	"go.mongodb.org/mongo-driver/mongo"
)

// RegisterRoutes seeds the taxonomy, mounts GET /books/genres and returns the service for the books feature
func RegisterRoutes(router *gin.RouterGroup, db *mongo.Database, cfg *config.Config, c cache.Cache) *Service {
	service := NewService(NewRepository(db), c, cfg.CacheTTL)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := service.Seed(ctx); err != nil {
		logger.Error("failed to seed genres: %v", err)
	}

	router.GET("/books/genres", NewHandler(service, !cfg.IsProduction()).List)
	return service
}
