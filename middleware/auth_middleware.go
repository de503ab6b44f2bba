package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"palette/internal/auth"
)

// Context keys populated for downstream handlers after verification.
const (
	ContextUserID = "user_id"
	ContextEmail  = "email"
)

// AuthMiddleware 验证 Bearer token 是否有效
// A missing or malformed Authorization header is rejected distinctly from a
// token that fails verification.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := auth.ParseToken(tokenStr)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		// 将用户信息写入上下文
		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextEmail, claims.Email)
		c.Next()
	}
}
