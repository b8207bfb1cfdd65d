package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"dental-clinic-server/internal/config"
	"dental-clinic-server/internal/utils"
)

const (
	ctxUserID      = "userID"
	ctxUsername    = "username"
	ctxIsSuperuser = "isSuperuser"
)

// AuthMiddleware creates a middleware for JWT authentication.
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.Unauthorized(c, "Authorization header required")
			c.Abort()
			return
		}

		tokenString, ok := bearerToken(authHeader)
		if !ok {
			utils.Unauthorized(c, "Invalid authorization header format")
			c.Abort()
			return
		}

		claims, err := utils.ValidateToken(tokenString, cfg.JWTSecret)
		if err != nil {
			utils.Unauthorized(c, "Invalid token: "+err.Error())
			c.Abort()
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}

// OptionalAuthMiddleware records the caller when a valid bearer token is
// present and lets anonymous requests through otherwise.
func OptionalAuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenString, ok := bearerToken(c.GetHeader("Authorization")); ok {
			if claims, err := utils.ValidateToken(tokenString, cfg.JWTSecret); err == nil {
				setClaims(c, claims)
			}
		}
		c.Next()
	}
}

// SuperuserMiddleware admits only superusers.
// It should be used *after* AuthMiddleware.
func SuperuserMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := c.Get(ctxUserID); !exists {
			utils.InternalServerError(c, "User not found in context. AuthMiddleware might be missing.")
			c.Abort()
			return
		}

		if !c.GetBool(ctxIsSuperuser) {
			utils.Forbidden(c, "You do not have permission to access this resource.")
			c.Abort()
			return
		}

		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	parts := strings.Split(header, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func setClaims(c *gin.Context, claims *utils.Claims) {
	c.Set(ctxUserID, claims.UserID)
	c.Set(ctxUsername, claims.Username)
	c.Set(ctxIsSuperuser, claims.IsSuperuser)
}

// Helper function to get user ID from context
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	userID, exists := c.Get(ctxUserID)
	if !exists {
		return "", false
	}
	idStr, ok := userID.(string)
	return idStr, ok
}

// GetUsernameFromContext returns the authenticated username, if any.
func GetUsernameFromContext(c *gin.Context) (string, bool) {
	username := c.GetString(ctxUsername)
	return username, username != ""
}
