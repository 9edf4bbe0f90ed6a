package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/you/hostelauth/domain"
	"github.com/you/hostelauth/internal/http/handlers"
)

// AuthMW wraps the session token verifier.
type AuthMW struct {
	tokenSvc domain.TokenService
}

// NewAuthMW creates new auth middleware
func NewAuthMW(tokenSvc domain.TokenService) *AuthMW {
	return &AuthMW{tokenSvc: tokenSvc}
}

// WithSession authenticates a request from its httpOnly cookie or a Bearer
// header. Verification is stateless and side-effect free: there is no
// revocation list to consult.
func (m *AuthMW) WithSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Authentication required."})
			c.Abort()
			return
		}

		claims, err := m.tokenSvc.ValidateSessionToken(token)
		if err != nil {
			switch err {
			case domain.ErrTokenExpired:
				c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Session expired."})
			default:
				c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid session token."})
			}
			c.Abort()
			return
		}

		c.Set("account_id", claims.AccountID)
		c.Set("account_role", claims.Role)
		c.Next()
	}
}

func extractToken(c *gin.Context) string {
	if cookie, err := c.Cookie(handlers.SessionCookieName); err == nil && cookie != "" {
		return cookie
	}

	authHeader := c.GetHeader("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1]
	}
	return ""
}
