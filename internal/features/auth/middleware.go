package auth

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	jwtpkg "github.com/xyz-asif/ebooks/internal/pkg/jwt"
	"github.com/xyz-asif/ebooks/internal/pkg/logger"
	"github.com/xyz-asif/ebooks/internal/pkg/response"
	apperr "github.com/xyz-asif/ebooks/pkg/errors"
)

// NewAuthMiddleware creates a Gin middleware for JWT authentication
func NewAuthMiddleware(store UserStore, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		fields := strings.Fields(c.GetHeader("Authorization"))
		if len(fields) != 2 || !strings.EqualFold(fields[0], "Bearer") {
			response.Unauthorized(c, "Not authorized, token missing.", "AUTH_REQUIRED")
			c.Abort()
			return
		}

		claims, err := jwtpkg.ValidateToken(fields[1], secret)
		if err != nil {
			response.Unauthorized(c, "Not authorized, invalid token.", "INVALID_TOKEN")
			c.Abort()
			return
		}

		user, err := store.FindByID(c.Request.Context(), claims.UserID)
		if err != nil {
			if !errors.Is(err, apperr.ErrNotFound) && !errors.Is(err, apperr.ErrInvalidID) {
				logger.Error("auth lookup %s: %v", claims.UserID, err)
			}
			response.Unauthorized(c, "Not authorized, user not found.", "USER_NOT_FOUND")
			c.Abort()
			return
		}

		c.Set("user", user)
		c.Set("userID", user.ID.Hex())
		c.Set("email", user.Email)
		c.Next()
	}
}

// CurrentUser returns the user stored by the auth middleware
func CurrentUser(c *gin.Context) (*User, bool) {
	v, ok := c.Get("user")
	if !ok {
		return nil, false
	}
	user, ok := v.(*User)
	return user, ok && user != nil
}
