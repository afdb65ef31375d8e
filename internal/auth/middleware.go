package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/saoodchoudhary/RBMEsports-Backend/internal/api"

	"github.com/gin-gonic/gin"
)

func AuthMiddleware(accessTokenSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, api.Error(api.KindUnauthorized, "Authorization header required"))
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.TrimSpace(parts[0]) != "Bearer" {
			c.JSON(http.StatusUnauthorized, api.Error(api.KindUnauthorized, "Invalid authorization header format"))
			c.Abort()
			return
		}

		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, api.Error(api.KindUnauthorized, "Token is empty"))
			c.Abort()
			return
		}

		claims, err := ValidateToken(tokenString, accessTokenSecret)
		if err != nil {
			switch {
			case errors.Is(err, ErrTokenExpired):
				c.JSON(http.StatusUnauthorized, api.Error(api.KindUnauthorized, "Token expired"))
			case errors.Is(err, ErrInvalidTokenType):
				c.JSON(http.StatusUnauthorized, api.Error(api.KindUnauthorized, "Invalid token type"))
			default:
				c.JSON(http.StatusUnauthorized, api.Error(api.KindUnauthorized, "Invalid or malformed token"))
			}
			c.Abort()
			return
		}

		if claims.TokenType != "access" {
			c.JSON(http.StatusUnauthorized, api.Error(api.KindUnauthorized, "Access token required"))
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("user_email", claims.Email)
		c.Set("user_role", claims.Role)

		c.Next()
	}
}

// RequireRole allows the request through when the caller holds any of the
// listed roles.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("user_role")
		if !exists {
			c.JSON(http.StatusUnauthorized, api.Error(api.KindUnauthorized, "User role not found"))
			c.Abort()
			return
		}

		roleStr, ok := role.(string)
		if !ok {
			c.JSON(http.StatusUnauthorized, api.Error(api.KindUnauthorized, "Invalid role type"))
			c.Abort()
			return
		}

		for _, allowed := range roles {
			if roleStr == allowed {
				c.Next()
				return
			}
		}

		c.JSON(http.StatusForbidden, api.Error(api.KindForbidden, "Insufficient permissions"))
		c.Abort()
	}
}

func GetUserID(c *gin.Context) (int, bool) {
	userID, exists := c.Get("user_id")
	if !exists {
		return 0, false
	}

	id, ok := userID.(int)
	if !ok {
		return 0, false
	}

	return id, true
}

// UserID returns the authenticated user's id, or 0 outside an
// authenticated route.
func UserID(c *gin.Context) int {
	id, _ := GetUserID(c)
	return id
}

func GetUserRole(c *gin.Context) (string, bool) {
	role, exists := c.Get("user_role")
	if !exists {
		return "", false
	}

	r, ok := role.(string)
	return r, ok
}

// IsAdmin reports whether the caller is an admin or super admin.
func IsAdmin(c *gin.Context) bool {
	role, ok := GetUserRole(c)
	return ok && (role == RoleAdmin || role == RoleSuperAdmin)
}
