package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/brasil-beauty-backend/internal/domain"
	"github.com/tbourn/brasil-beauty-backend/internal/i18n"
)

const (
	// sessionKey holds the domain.SessionContext of the request.
	sessionKey = "session"
	// userIDKey is read by KeyByUserOrIP and the access log.
	userIDKey = "userID"
)

// Authenticator resolves a bearer token into a session.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (domain.SessionContext, error)
}

// Session hydrates the request's SessionContext from an
// "Authorization: Bearer <token>" header. Requests without a header, or with
// a token that no longer authenticates, continue anonymously; routes that
// need an account add RequireSession.
func Session(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			c.Next()
			return
		}
		sc, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			LoggerFrom(c).Debug().Err(err).Msg("session token rejected")
			c.Next()
			return
		}
		c.Set(sessionKey, sc)
		c.Set(userIDKey, sc.AccountID)
		c.Next()
	}
}

// RequireSession aborts with 401 unless Session authenticated the request.
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if SessionFrom(c).Authenticated() {
			c.Next()
			return
		}
		c.Header("WWW-Authenticate", `Bearer realm="brasil-beauty"`)
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"request_id": RequestIDFrom(c),
			"code":       "unauthorized",
			"message":    i18n.T(c, i18n.KeyUnauthorized),
		})
	}
}

// SessionFrom returns the request's session, the zero value when anonymous.
func SessionFrom(c *gin.Context) domain.SessionContext {
	if v, ok := c.Get(sessionKey); ok {
		if sc, ok := v.(domain.SessionContext); ok {
			return sc
		}
	}
	return domain.SessionContext{}
}

func bearerToken(h string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(h), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
