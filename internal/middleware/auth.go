package middleware

import (
	"net/http"
	"strings"

	"github.com/SamiraSamrose/Thirteen-Oracles-Of-Astraeum/internal/service"
	"github.com/gin-gonic/gin"
)

// AuthMiddleware authenticates requests against live token sessions.
type AuthMiddleware struct {
	authService service.AuthService
}

// NewAuthMiddleware creates the auth middleware.
func NewAuthMiddleware(authService service.AuthService) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
	}
}

// RequireAuth rejects requests without a valid token.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := m.extractToken(c)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":    "NO_TOKEN",
				"message": "missing authentication token",
			})
			c.Abort()
			return
		}

		claims, err := m.authService.ValidateToken(c.Request.Context(), token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":    "INVALID_TOKEN",
				"message": "invalid or expired token",
			})
			c.Abort()
			return
		}

		c.Set("playerID", claims.PlayerID)
		c.Set("username", claims.Username)
		c.Set("email", claims.Email)
		c.Set("jti", claims.JTI)
		c.Set("token", token)

		c.Next()
	}
}

// OptionalAuth attaches player identity when a valid token is present
// but lets anonymous requests through.
func (m *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := m.extractToken(c)
		if token != "" {
			claims, err := m.authService.ValidateToken(c.Request.Context(), token)
			if err == nil {
				c.Set("playerID", claims.PlayerID)
				c.Set("username", claims.Username)
				c.Set("email", claims.Email)
				c.Set("jti", claims.JTI)
				c.Set("token", token)
			}
		}

		c.Next()
	}
}

// extractToken pulls the token from the request.
func (m *AuthMiddleware) extractToken(c *gin.Context) string {
	// Authorization: Bearer <token>
	bearerToken := c.GetHeader("Authorization")
	if bearerToken != "" {
		parts := strings.Split(bearerToken, " ")
		if len(parts) == 2 && strings.ToLower(parts[0]) == "bearer" {
			return parts[1]
		}
	}

	if token := c.GetHeader("X-Access-Token"); token != "" {
		return token
	}

	// query fallback for websocket upgrades, where headers are awkward
	if token := c.Query("token"); token != "" {
		return token
	}

	return ""
}

// GetPlayerID reads the authenticated player id from the context.
func GetPlayerID(c *gin.Context) (uint, bool) {
	if playerID, exists := c.Get("playerID"); exists {
		if id, ok := playerID.(uint); ok {
			return id, true
		}
	}
	return 0, false
}

// GetUsername reads the authenticated username from the context.
func GetUsername(c *gin.Context) (string, bool) {
	if username, exists := c.Get("username"); exists {
		if name, ok := username.(string); ok {
			return name, true
		}
	}
	return "", false
}

// GetJTI reads the session token id from the context.
func GetJTI(c *gin.Context) (string, bool) {
	if jti, exists := c.Get("jti"); exists {
		if id, ok := jti.(string); ok {
			return id, true
		}
	}
	return "", false
}
