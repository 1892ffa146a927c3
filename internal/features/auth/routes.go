package auth

import (
	"github.com/gin-gonic/gin"
	"github.com/xyz-asif/ebooks/internal/config"
	jwtpkg "github.com/xyz-asif/ebooks/internal/pkg/jwt"
	"go.mongodb.org/mongo-driver/mongo"
)

// RegisterRoutes wires the users feature and returns the auth middleware for other features.
// authLimiter guards the credential endpoints; pass nil to disable.
func RegisterRoutes(router *gin.RouterGroup, db *mongo.Database, cfg *config.Config, authLimiter gin.HandlerFunc) gin.HandlerFunc {
	repo := NewRepository(db)

	jwtCfg := jwtpkg.DefaultConfig(cfg.JWTSecret)
	jwtCfg.Expiry = cfg.JWTExpire
	jwtCfg.Issuer = cfg.JWTIssuer

	handler := NewHandler(NewService(repo, jwtCfg), NewOAuthProviders(cfg), cfg)
	authMiddleware := NewAuthMiddleware(repo, cfg.JWTSecret)

	Routes(router, handler, authMiddleware, authLimiter)
	return authMiddleware
}

// Routes mounts the /users endpoints
func Routes(router *gin.RouterGroup, handler *Handler, authMiddleware, authLimiter gin.HandlerFunc) {
	limited := []gin.HandlerFunc{}
	if authLimiter != nil {
		limited = append(limited, authLimiter)
	}
	with := func(h gin.HandlerFunc) []gin.HandlerFunc {
		return append(append([]gin.HandlerFunc{}, limited...), h)
	}

	users := router.Group("/users")
	{
		users.POST("/register", with(handler.Register)...)
		users.POST("/login", with(handler.Login)...)
		users.GET("/info", authMiddleware, handler.Info)
		users.PUT("/reset-password", authMiddleware, handler.ResetPassword)

		users.POST("/auth/google/token", with(handler.GoogleToken)...)
		users.GET("/auth/:provider", handler.BeginOAuth)
		users.GET("/auth/:provider/callback", handler.OAuthCallback)
	}
}
