// Package i18n resolves the visitor's language and prints user-facing
// messages in Brazilian Portuguese (the default) or English.
//
// Catalogs are registered with golang.org/x/text/message in init functions
// (messages_pt.go, messages_en.go); handlers print through the request's
// *message.Printer.
package i18n

import (
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	// LangParam is the query parameter used to select a language.
	LangParam = "lang"
	// LangCookieName stores the visitor's language preference.
	LangCookieName = "bb_lang"

	ctxTagKey = "i18n.tag"
)

var supported = []language.Tag{language.BrazilianPortuguese, language.AmericanEnglish}

var matcher = language.NewMatcher(supported)

var defaultTag atomic.Value // language.Tag

func init() { defaultTag.Store(language.BrazilianPortuguese) }

// Supported returns the supported language tags, default first.
func Supported() []language.Tag {
	out := make([]language.Tag, len(supported))
	copy(out, supported)
	return out
}

// Default returns the fallback language.
func Default() language.Tag { return defaultTag.Load().(language.Tag) }

// SetDefault changes the fallback language. Unsupported values are ignored
// and reported with false.
func SetDefault(value string) bool {
	tag, ok := ParseTag(value)
	if ok {
		defaultTag.Store(tag)
	}
	return ok
}

// ParseTag parses value and maps it to a supported tag ("pt", "pt-PT" and
// "pt-BR" all resolve to pt-BR).
func ParseTag(value string) (language.Tag, bool) {
	t, err := language.Parse(strings.TrimSpace(value))
	if err != nil {
		return language.Und, false
	}
	_, idx, conf := matcher.Match(t)
	if conf == language.No {
		return language.Und, false
	}
	return supported[idx], true
}

// MatchTags picks the best supported tag for an Accept-Language list.
func MatchTags(tags []language.Tag) language.Tag {
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return Default()
	}
	return supported[idx]
}

// ResolveTag determines the language for r: ?lang=, then the cookie, then
// Accept-Language, then the default. The bool reports whether the choice
// came from ?lang= and should be persisted.
func ResolveTag(r *http.Request) (language.Tag, bool) {
	if r == nil {
		return Default(), false
	}
	if v := strings.TrimSpace(r.URL.Query().Get(LangParam)); v != "" {
		if tag, ok := ParseTag(v); ok {
			return tag, true
		}
	}
	if ck, err := r.Cookie(LangCookieName); err == nil {
		if tag, ok := ParseTag(ck.Value); ok {
			return tag, false
		}
	}
	if accept := strings.TrimSpace(r.Header.Get("Accept-Language")); accept != "" {
		if tags, _, err := language.ParseAcceptLanguage(accept); err == nil && len(tags) > 0 {
			return MatchTags(tags), false
		}
	}
	return Default(), false
}

// SetLanguageCookie persists the selected language for a year.
func SetLanguageCookie(w http.ResponseWriter, tag language.Tag) {
	http.SetCookie(w, &http.Cookie{
		Name:     LangCookieName,
		Value:    tag.String(),
		Path:     "/",
		MaxAge:   int((365 * 24 * time.Hour).Seconds()),
		SameSite: http.SameSiteLaxMode,
	})
}

// Middleware resolves the request language once and stores it on the gin
// context. It also sets Content-Language on the response.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tag, persist := ResolveTag(c.Request)
		if persist {
			SetLanguageCookie(c.Writer, tag)
		}
		c.Set(ctxTagKey, tag)
		c.Header("Content-Language", tag.String())
		c.Next()
	}
}

// Tag returns the language resolved by Middleware, or resolves it now.
func Tag(c *gin.Context) language.Tag {
	if v, ok := c.Get(ctxTagKey); ok {
		if tag, ok := v.(language.Tag); ok {
			return tag
		}
	}
	tag, _ := ResolveTag(c.Request)
	return tag
}

// Printer returns a message printer for tag.
func Printer(tag language.Tag) *message.Printer {
	return message.NewPrinter(tag)
}

// T prints key in the request's language.
func T(c *gin.Context, key string, args ...any) string {
	return Printer(Tag(c)).Sprintf(key, args...)
}
