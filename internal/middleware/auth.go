package middleware

import (
	"strings"

	"github.com/leaf-oneplus/todolist/internal/services"
	"github.com/m1z23r/drift/pkg/drift"
)

const (
	UserIDKey   = "user_id"
	UsernameKey = "username"
	UserRoleKey = "user_role"
)

func Auth(jwtService *services.JWTService) drift.HandlerFunc {
	return func(c *drift.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Unauthorized("missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			c.Unauthorized("invalid authorization header format")
			return
		}

		claims, err := jwtService.ValidateAccessToken(parts[1])
		if err != nil {
			c.Unauthorized("invalid or expired token")
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(UsernameKey, claims.Username)
		c.Set(UserRoleKey, claims.Role)

		c.Next()
	}
}

func GetUserID(c *drift.Context) int64 {
	if id, ok := c.Get(UserIDKey); ok {
		if uid, ok := id.(int64); ok {
			return uid
		}
	}
	return 0
}

func GetUsername(c *drift.Context) string {
	if name, ok := c.Get(UsernameKey); ok {
		if s, ok := name.(string); ok {
			return s
		}
	}
	return ""
}

func GetUserRole(c *drift.Context) string {
	if role, ok := c.Get(UserRoleKey); ok {
		if s, ok := role.(string); ok {
			return s
		}
	}
	return ""
}
