// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging/redaction, panic recovery, metrics,
// compression, sessions, rate limiting, CORS and security headers.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic router setup; all dependencies injected
//   - Sessions resolved before the rate limiter so accounts get their own bucket
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	_ "github.com/tbourn/brasil-beauty-backend/docs"
	"github.com/tbourn/brasil-beauty-backend/internal/chat"
	"github.com/tbourn/brasil-beauty-backend/internal/config"
	"github.com/tbourn/brasil-beauty-backend/internal/http/handlers"
	"github.com/tbourn/brasil-beauty-backend/internal/http/middleware"
	"github.com/tbourn/brasil-beauty-backend/internal/i18n"
	"github.com/tbourn/brasil-beauty-backend/internal/query"
	"github.com/tbourn/brasil-beauty-backend/internal/remote"
	"github.com/tbourn/brasil-beauty-backend/internal/repo"
	"github.com/tbourn/brasil-beauty-backend/internal/services"
)

// maxBodyBytes caps every request body (1 MiB).
const maxBodyBytes = 1 << 20

// Services bundles what the routes depend on.
type Services struct {
	Models   handlers.ModelQueries
	Chat     handlers.ChatService
	Accounts *services.AccountService
}

// NewServices builds the profile, chat and account stacks from cfg:
// remote client → repository → service → query cache for profiles, the same
// remote client plus an in-memory conversation store for chat, and db for
// accounts.
func NewServices(db *gorm.DB, cfg config.Config, lg zerolog.Logger) Services {
	client := remote.New(remote.Options{
		BaseURL: cfg.Upstream.BaseURL,
		Timeout: cfg.Upstream.Timeout,
		Debug:   cfg.Upstream.Debug,
	}, lg.With().Str("component", "remote").Logger())

	models := query.New(
		services.NewModelService(repo.NewModelRepo(client, lg.With().Str("component", "repo").Logger())),
		query.Options{TTL: cfg.Cache.TTL, MaxEntries: cfg.Cache.MaxEntries},
	)

	chatSvc := services.NewChatService(client, chat.NewStore(cfg.Chat.ConversationTTL))
	chatSvc.Delays = chat.Delays{Mentor: cfg.Chat.MentorDelay, Mentee: cfg.Chat.MenteeDelay}
	chatSvc.MaxPromptRunes = cfg.Chat.MaxPromptRunes

	accounts := services.NewAccountService(db, []byte(cfg.Session.Secret))
	accounts.TTL = cfg.Session.TTL

	return Services{Models: models, Chat: chatSvc, Accounts: accounts}
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine and mounts the public API under cfg.APIBasePath.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. RedactingLogger: structured logs with PII scrubbing
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Language negotiation (error envelopes are localized from here on)
//  7. Metrics
//  8. Gzip (never on the event stream)
//  9. Session (lenient; anonymous on a bad token)
//  10. Rate limiter (per account or IP)
//  11. CORS and security headers
func RegisterRoutes(r *gin.Engine, svc Services, cfg config.Config) {
	r.HandleMethodNotAllowed = true
	apiBase := cfg.APIBasePath
	journeyPath := joinPath(apiBase, "/chat/journey")

	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))
	r.Use(middleware.RequestID())
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{}))
	r.Use(middleware.Recovery())
	r.Use(middleware.BodyLimit(maxBodyBytes))
	r.Use(i18n.Middleware())

	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{journeyPath, "/metrics"})))

	r.Use(middleware.Session(svc.Accounts))
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByUserOrIP())
	r.Use(rl.Handler())

	allowHeaders := []string{"Origin", "Content-Type", "Accept", "Accept-Language", "Authorization", "If-None-Match"}
	exposeHeaders := []string{"X-Request-ID", "Content-Length", "ETag", "Retry-After"}
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Force ACAO: * even for requests without an Origin header.
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
			AllowHeaders:     allowHeaders,
			ExposeHeaders:    exposeHeaders,
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
			AllowHeaders:     allowHeaders,
			ExposeHeaders:    exposeHeaders,
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:      cfg.Security.EnableHSTS,
		HSTSMaxAge:      cfg.Security.HSTSMaxAge,
		NoStorePrefixes: []string{joinPath(apiBase, "/auth")},
		EnablePolicy:    true,
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.FailKey(c, http.StatusNotFound, handlers.ErrCodeNotFound, i18n.KeyNotFound)
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.FailKey(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, i18n.KeyMethodNotAllowed)
	})

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	h := handlers.New(svc.Models, svc.Chat, svc.Accounts)
	if cfg.Chat.MaxPromptRunes > 0 {
		h.MaxPromptRunes = cfg.Chat.MaxPromptRunes
	}

	api := groupWithPrefix(r, apiBase)
	{
		// Directory
		api.GET("/models", h.ListModels)
		api.GET("/models/search", h.SearchModels)
		api.GET("/models/categories", h.ListCategories)
		api.GET("/models/:id", h.GetModel)

		// Chat widget
		api.POST("/chat/conversations", h.StartConversation)
		api.GET("/chat/conversations/:id/messages", h.ListMessages)
		api.POST("/chat/conversations/:id/messages", h.SendMessage)
		api.GET("/chat/journey", h.StreamJourney)

		// Accounts
		api.POST("/auth/signup", h.Signup)
		api.POST("/auth/login", h.Login)
		me := api.Group("/auth", middleware.RequireSession())
		me.POST("/logout", h.Logout)
		me.GET("/me", h.Me)
		me.PUT("/me", h.UpdateMe)
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}

func joinPath(base, p string) string {
	if base == "" || base == "/" {
		return p
	}
	return base + p
}
