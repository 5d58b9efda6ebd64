package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/eventstime/core/internal/models"
	jwtpkg "github.com/eventstime/core/internal/pkg/jwt"
	"github.com/eventstime/core/internal/pkg/response"
)

const contextKeyPrincipal = "auth_principal"

// Principal is the request-scoped authenticated identity, decoded from the
// bearer access token. It travels through the gin context; there is no
// ambient global.
type Principal struct {
	UserID      uint
	Email       string
	UserGroupID uint
	AppClient   models.AppClient
}

// Auth returns a middleware that enforces bearer access-token
// authentication and installs the Principal into the request context.
func Auth(codec *jwtpkg.Codec) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := NormalizeToken(c.GetHeader("Authorization"))
		if token == "" {
			response.Unauthorized(c)
			return
		}

		claims, err := codec.VerifyAccess(token)
		if err != nil {
			response.Unauthorized(c)
			return
		}

		c.Set(contextKeyPrincipal, &Principal{
			UserID:      claims.UserID,
			Email:       claims.Subject,
			UserGroupID: claims.UserGroupID,
			AppClient:   claims.AppClient,
		})
		c.Next()
	}
}

// CurrentPrincipal extracts the authenticated identity from the request
// context, or nil when the request was not authenticated.
func CurrentPrincipal(c *gin.Context) *Principal {
	v, _ := c.Get(contextKeyPrincipal)
	p, _ := v.(*Principal)
	return p
}

// NormalizeToken trims spaces and strips an optional Bearer prefix.
func NormalizeToken(raw string) string {
	token := strings.TrimSpace(raw)
	if token == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(token), "bearer ") {
		return strings.TrimSpace(token[7:])
	}
	return token
}
