package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/dockshield/web-dashboard/internal/tokens"
	"github.com/dockshield/web-dashboard/pkg/logger"
	"github.com/dockshield/web-dashboard/pkg/metrics"
	"github.com/gin-gonic/gin"
)

const (
	// CookieName is the cookie the login service sets after a successful login.
	CookieName = "auth_token"
	// ClaimsKey is the gin context key holding *tokens.Claims for admitted requests.
	ClaimsKey = "claims"
)

// Verifier is the minimal interface the middleware depends on
type Verifier interface {
	Verify(raw string) (*tokens.Claims, error)
}

// RevocationChecker reports tokens that were logged out before they expired.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// AuthMiddleware admits requests carrying a valid auth_token cookie and
// redirects everything else to loginURL. rev may be nil.
func AuthMiddleware(ver Verifier, loginURL string, rev RevocationChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := c.Cookie(CookieName)
		if err != nil || raw == "" {
			reject(c, loginURL, "missing", tokens.ErrMissing)
			return
		}

		claims, err := ver.Verify(raw)
		if err != nil {
			outcome := "invalid"
			if errors.Is(err, tokens.ErrExpired) {
				outcome = "expired"
			}
			reject(c, loginURL, outcome, err)
			return
		}

		if rev != nil {
			revoked, err := rev.IsRevoked(c.Request.Context(), raw)
			if err != nil {
				logger.Warnf("auth: revocation check failed, admitting user=%s: %v", claims.Username, err)
			} else if revoked {
				reject(c, loginURL, "revoked", tokens.ErrInvalid)
				return
			}
		}

		metrics.AuthGate.WithLabelValues("admitted").Inc()
		c.Set(ClaimsKey, claims)
		c.Request = c.Request.WithContext(tokens.NewContext(c.Request.Context(), claims))
		c.Next()
	}
}

// ClaimsFrom returns the claims attached by AuthMiddleware.
func ClaimsFrom(c *gin.Context) (*tokens.Claims, bool) {
	v, ok := c.Get(ClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*tokens.Claims)
	return claims, ok
}

func reject(c *gin.Context, loginURL, outcome string, err error) {
	metrics.AuthGate.WithLabelValues(outcome).Inc()
	logger.Debugf("auth: %s %s rejected (%s): %v", c.Request.Method, c.Request.URL.Path, outcome, err)
	c.Redirect(http.StatusFound, loginURL)
	c.Abort()
}
