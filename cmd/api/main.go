// ================== cmd/api/main.go ==================
//
// @title Ebooks API
// @version 1.0
// @description REST API for an ebooks library: accounts, PDF uploads with thumbnails and a searchable catalog
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer <token>"
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/xyz-asif/ebooks/internal/config"
	"github.com/xyz-asif/ebooks/internal/database"
	"github.com/xyz-asif/ebooks/internal/middleware"
	"github.com/xyz-asif/ebooks/internal/pkg/logger"
	"github.com/xyz-asif/ebooks/internal/pkg/response"
	"github.com/xyz-asif/ebooks/internal/routes"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	docs "github.com/xyz-asif/ebooks/docs"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.AppEnv)

	docs.SwaggerInfo.Host = "localhost:" + cfg.Port
	docs.SwaggerInfo.BasePath = "/api"
	docs.SwaggerInfo.Schemes = []string{"http"}

	db, err := database.Connect(cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		logger.Fatal("Failed to connect to MongoDB: %v", err)
	}
	logger.Info("connected to MongoDB database %s", cfg.MongoDB)

	infra := routes.NewInfra(context.Background(), cfg)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.CORS(cfg.FrontendURL))
	if infra.Metrics != nil {
		router.Use(infra.Metrics.Middleware())
		router.GET("/metrics", infra.Metrics.Handler())
	}

	router.GET("/health", func(c *gin.Context) {
		if err := db.HealthCheck(c.Request.Context()); err != nil {
			logger.Error("health check: %v", err)
			response.ServiceUnavailable(c, "Database unavailable", "DB_UNAVAILABLE")
			return
		}
		response.Success(c, map[string]interface{}{
			"status": "ok",
			"time":   time.Now().Unix(),
		}, "ok")
	})

	router.GET(
		"/swagger/*any",
		ginSwagger.WrapHandler(
			swaggerFiles.Handler,
			ginSwagger.URL("/swagger/doc.json"),
			ginSwagger.DeepLinking(true),
			ginSwagger.DefaultModelsExpandDepth(-1),
			ginSwagger.DocExpansion("none"),
			ginSwagger.PersistAuthorization(true),
		),
	)

	if err := routes.SetupRoutes(router, db.Database, cfg, infra); err != nil {
		logger.Fatal("Failed to set up routes: %v", err)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown: %v", err)
	}
	infra.Close()
	if err := db.Disconnect(ctx); err != nil {
		logger.Error("MongoDB disconnect: %v", err)
	}

	logger.Info("Server exited")
}
