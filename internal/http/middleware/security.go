package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// defaultHSTSMaxAge applies when HSTS is enabled without a max age.
const defaultHSTSMaxAge = 180 * 24 * time.Hour

// SecurityOptions tunes SecurityHeaders.
type SecurityOptions struct {
	// EnableHSTS emits Strict-Transport-Security on HTTPS requests only.
	EnableHSTS bool
	HSTSMaxAge time.Duration
	// NoStorePrefixes lists path prefixes (e.g. the auth routes) whose
	// responses must never be cached by browsers or proxies.
	NoStorePrefixes []string
	// EnablePolicy adds Permissions-Policy and X-Permitted-Cross-Domain-Policies.
	EnablePolicy bool
}

// SecurityHeaders sets baseline hardening headers for a JSON API and exposes
// X-Request-ID to browser clients so they can quote it in bug reports.
func SecurityHeaders(opt SecurityOptions) gin.HandlerFunc {
	maxAge := opt.HSTSMaxAge
	if maxAge <= 0 {
		maxAge = defaultHSTSMaxAge
	}
	hsts := "max-age=" + strconv.Itoa(int(maxAge.Seconds())) + "; includeSubDomains; preload"

	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")

		if opt.EnablePolicy {
			h.Set("Permissions-Policy", "geolocation=(), microphone=(), camera=(), payment=()")
			h.Set("X-Permitted-Cross-Domain-Policies", "none")
		}
		if hasAnyPrefix(c.Request.URL.Path, opt.NoStorePrefixes) {
			h.Set("Cache-Control", "no-store")
			h.Set("Pragma", "no-cache")
			h.Set("Expires", "0")
		}
		if opt.EnableHSTS && isHTTPS(c.Request) {
			h.Set("Strict-Transport-Security", hsts)
		}
		if h.Get(requestIDHeader) != "" {
			const expose = "Access-Control-Expose-Headers"
			switch cur := h.Get(expose); {
			case cur == "":
				h.Set(expose, requestIDHeader)
			case !strings.Contains(cur, requestIDHeader):
				h.Set(expose, cur+", "+requestIDHeader)
			}
		}
		c.Next()
	}
}

// isHTTPS trusts X-Forwarded-Proto because the service runs behind a proxy.
func isHTTPS(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	return strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}

func hasAnyPrefix(p string, prefixes []string) bool {
	for _, pre := range prefixes {
		if pre != "" && strings.HasPrefix(p, pre) {
			return true
		}
	}
	return false
}
