package middleware

import (
	"net/http"
	"strings"

	"rag-docqa-platform/internal/auth"
	"rag-docqa-platform/internal/config"

	"github.com/gin-gonic/gin"
)

type AuthMiddleware struct {
	config *config.Config
}

func NewAuthMiddleware(cfg *config.Config) *AuthMiddleware {
	return &AuthMiddleware{config: cfg}
}

// RequireAuth validates the Bearer token and places the owner id in the
// request context. Every store access downstream is scoped by this id.
func (a *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		tokenString := extractBearerToken(authHeader)

		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error_code": "unauthorized",
				"message":    "Authentication token is required",
			})
			return
		}

		claims, err := auth.ValidateToken(tokenString, a.config.JWTSecret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error_code": "invalid_token",
				"message":    "Invalid or expired token",
			})
			return
		}

		c.Set("owner_id", claims.UserID)
		c.Next()
	}
}

// GetOwnerID retrieves the authenticated owner id from context.
func GetOwnerID(c *gin.Context) string {
	if id, exists := c.Get("owner_id"); exists {
		if str, ok := id.(string); ok {
			return str
		}
	}
	return ""
}

func extractBearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
