package middleware

import (
	"net/http"
	"time"

	"cashloan/internal/domain"
	"cashloan/internal/session"

	"github.com/gin-gonic/gin"
)

const (
	tokenKey  = "token"
	claimsKey = "claims"
)

var unauthorizedBody = gin.H{"message": "Unauthorized"}

// RequireToken resolves the caller's token from the bearer header or the
// cookie. Requests without one, or with a JWT that has already expired, stop
// here and never reach the backend.
func RequireToken(cookieName string) gin.HandlerFunc {
	return requireToken(cookieName, time.Now)
}

func requireToken(cookieName string, now func() time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := session.FromRequest(c.Request, cookieName)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, unauthorizedBody)
			return
		}
		claims, err := session.Inspect(token)
		if err != nil || claims.Expired(now()) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, unauthorizedBody)
			return
		}
		c.Set(tokenKey, token)
		c.Set(claimsKey, claims)
		c.Next()
	}
}

// RequireRoles refuses callers whose token names another role. Opaque tokens
// carry no role and are left for the backend to decide.
func RequireRoles(roles ...domain.Role) gin.HandlerFunc {
	allowed := make(map[domain.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims.Role != "" && !allowed[claims.Role] {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"message":    "Forbidden",
				"request_id": GetRequestID(c),
			})
			return
		}
		c.Next()
	}
}

func GetToken(c *gin.Context) string {
	if v, ok := c.Get(tokenKey); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func GetClaims(c *gin.Context) session.Claims {
	if v, ok := c.Get(claimsKey); ok {
		if cl, ok := v.(session.Claims); ok {
			return cl
		}
	}
	return session.Claims{}
}
