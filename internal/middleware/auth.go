package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/taskroom/taskroom/internal/authz"
	"github.com/taskroom/taskroom/internal/modules/serializer"
)

const principalKey = "principal"

// Authenticator resolves an access token into a principal.
type Authenticator interface {
	Authenticate(accessToken string) (*authz.Principal, error)
}

// JWTAuth returns a middleware that authenticates requests using bearer access tokens.
// Identity and role come from the token claims; the user table is not consulted.
func JWTAuth(a Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, serializer.AuthErr(""))
			return
		}
		raw := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))

		p, err := a.Authenticate(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, serializer.AuthErr(""))
			return
		}

		c.Set(principalKey, p)
		c.Next()
	}
}

// Principal returns the authenticated caller, or nil on public routes.
func Principal(c *gin.Context) *authz.Principal {
	v, ok := c.Get(principalKey)
	if !ok {
		return nil
	}
	p, _ := v.(*authz.Principal)
	return p
}

// SetPrincipal stores p on the request context.
func SetPrincipal(c *gin.Context, p *authz.Principal) {
	c.Set(principalKey, p)
}
