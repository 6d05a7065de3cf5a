package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rockman-logistics/staffdesk/internal/application/service"
	"github.com/rockman-logistics/staffdesk/internal/presentation/http/dto/response"
)

// AuthMiddleware resolves the Bearer token to a live staff session
func AuthMiddleware(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "Authorization header is required")
			c.Abort()
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			response.Unauthorized(c, "Invalid authorization header format")
			c.Abort()
			return
		}

		sess, err := authService.Authenticate(c.Request.Context(), parts[1])
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set("staff_session", sess)
		c.Set("username", sess.Username)

		c.Next()
	}
}

func sessionOf(c *gin.Context) *service.StaffSession {
	val, exists := c.Get("staff_session")
	if !exists {
		return nil
	}
	sess, _ := val.(*service.StaffSession)
	return sess
}
