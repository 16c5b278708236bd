package middleware

import (
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// maxQueryLogLength caps the logged query string.
const maxQueryLogLength = 2048

// RedactOptions lists extra headers whose values are never logged. Names are
// matched case-insensitively on top of Authorization, Cookie and Set-Cookie.
type RedactOptions struct {
	MaskHeaders []string
}

var (
	uuidRE  = regexp.MustCompile(`(?i)\b[0-9a-f]{8}-[0-9a-f]{4}-[1-5][0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}\b`)
	jwtRE   = regexp.MustCompile(`\beyJ[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+\.[A-Za-z0-9_-]*`)
	emailRE = regexp.MustCompile(`(?i)\b[a-z0-9._%+\-]+(?:@|%40)[a-z0-9.\-]+\.[a-z]{2,}\b`)
	// Brazilian mobile and landline numbers, with or without +55 and the
	// area code in parentheses: "+55 (11) 91234-5678", "11912345678".
	phoneRE = regexp.MustCompile(`(?:\+|%2B)?(?:55[ .\-]?)?(?:\(?\d{2}\)?[ .\-]?)?9?\d{4}[ .\-]?\d{4}\b`)
)

// Redact scrubs identifiers from s. UUIDs and tokens go first so the phone
// pattern cannot chew through their digit runs.
func Redact(s string) string {
	if s == "" {
		return s
	}
	s = uuidRE.ReplaceAllString(s, "[REDACTED:id]")
	s = jwtRE.ReplaceAllString(s, "[REDACTED:token]")
	s = emailRE.ReplaceAllString(s, "[REDACTED:email]")
	return phoneRE.ReplaceAllString(s, "[REDACTED:phone]")
}

// RedactingLogger writes one structured access line per request with PII
// scrubbed from the query string and headers, and installs a request-scoped
// logger (request_id, method, path) that handlers fetch with LoggerFrom.
//
// Bodies are never logged. Status decides the level: 5xx error, 4xx warn,
// everything else info.
func RedactingLogger(opts RedactOptions) gin.HandlerFunc {
	masked := map[string]struct{}{
		"authorization": {},
		"cookie":        {},
		"set-cookie":    {},
	}
	for _, h := range opts.MaskHeaders {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			masked[h] = struct{}{}
		}
	}

	return func(c *gin.Context) {
		start := time.Now()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		rid := RequestIDFrom(c)

		scoped := log.With().
			Str("request_id", rid).
			Str("method", c.Request.Method).
			Str("path", path).
			Logger()
		c.Set(loggerKey, &scoped)

		query := Redact(truncate(c.Request.URL.RawQuery, maxQueryLogLength))
		headers := make(map[string]string, len(c.Request.Header))
		for k, vv := range c.Request.Header {
			if _, ok := masked[strings.ToLower(k)]; ok {
				headers[k] = "[REDACTED]"
				continue
			}
			headers[k] = Redact(strings.Join(vv, ", "))
		}

		c.Next()

		status := c.Writer.Status()
		ev := scoped.Info()
		switch {
		case status >= 500:
			ev = scoped.Error()
		case status >= 400:
			ev = scoped.Warn()
		}
		if len(c.Errors) > 0 {
			ev = ev.Str("errors", c.Errors.String())
		}
		if uid := c.GetString(userIDKey); uid != "" {
			ev = ev.Str("user_id", uid)
		}
		ev.
			Str("query", query).
			Str("remote_ip", c.ClientIP()).
			Int("status", status).
			Int("bytes", c.Writer.Size()).
			Dur("latency", time.Since(start)).
			Interface("headers", headers).
			Msg("http_request")
	}
}
