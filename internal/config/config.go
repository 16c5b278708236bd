// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes application settings
// such as server timeouts, logging, the upstream profile API, caching, chat,
// sessions, rate limiting, and observability.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// DefaultProfileAPIURL is used when neither PROFILE_API_URL nor VITE_API_URL
// is set.
const DefaultProfileAPIURL = "http://localhost:3007/api"

// CORSConfig defines Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS"`
}

// SecurityConfig defines security-related settings such as HSTS.
type SecurityConfig struct {
	EnableHSTS bool          `env:"ENABLE_HSTS" envDefault:"false"`
	HSTSMaxAge time.Duration `env:"HSTS_MAX_AGE" envDefault:"4320h"`
}

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    `env:"OTEL_ENABLED" envDefault:"false"`
	Endpoint    string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4317"`
	Insecure    bool    `env:"OTEL_EXPORTER_OTLP_INSECURE" envDefault:"true"`
	ServiceName string  `env:"OTEL_SERVICE_NAME" envDefault:"brasil-beauty-backend"`
	SampleRatio float64 `env:"OTEL_TRACES_SAMPLER_ARG" envDefault:"1.0"` // [0..1]
	Environment string  `env:"DEPLOYMENT_ENVIRONMENT" envDefault:"development"`
}

// UpstreamConfig points at the profile and chat REST API.
type UpstreamConfig struct {
	// BaseURL is resolved from PROFILE_API_URL, then VITE_API_URL.
	BaseURL string        `env:"PROFILE_API_URL"`
	ViteURL string        `env:"VITE_API_URL"`
	Timeout time.Duration `env:"UPSTREAM_TIMEOUT" envDefault:"10s"`
	Debug   bool          `env:"UPSTREAM_DEBUG" envDefault:"false"`
}

// CacheConfig bounds the profile query cache.
type CacheConfig struct {
	TTL        time.Duration `env:"CACHE_TTL" envDefault:"5m"`
	MaxEntries int           `env:"CACHE_MAX_ENTRIES" envDefault:"512"`
}

// ChatConfig tunes the chat widget backend.
type ChatConfig struct {
	MaxPromptRunes  int           `env:"CHAT_MAX_PROMPT_RUNES" envDefault:"2000"`
	ConversationTTL time.Duration `env:"CHAT_CONVERSATION_TTL" envDefault:"30m"`
	MentorDelay     time.Duration `env:"REVEAL_MENTOR_DELAY" envDefault:"1500ms"`
	MenteeDelay     time.Duration `env:"REVEAL_MENTEE_DELAY" envDefault:"800ms"`
}

// SessionConfig controls account session tokens.
type SessionConfig struct {
	Secret string        `env:"SESSION_SECRET"`
	TTL    time.Duration `env:"SESSION_TTL" envDefault:"168h"`
	// SecretGenerated is set when SESSION_SECRET was empty and a random
	// per-process secret was used instead (sessions die with the process).
	SecretGenerated bool `env:"-"`
}

// Config holds all configuration values for the application.
type Config struct {
	// Server
	Port              string        `env:"PORT" envDefault:"8080"`
	ReadTimeout       time.Duration `env:"READ_TIMEOUT" envDefault:"15s"`
	ReadHeaderTimeout time.Duration `env:"READ_HEADER_TIMEOUT" envDefault:"10s"`
	WriteTimeout      time.Duration `env:"WRITE_TIMEOUT" envDefault:"20s"`
	IdleTimeout       time.Duration `env:"IDLE_TIMEOUT" envDefault:"60s"`
	MaxHeaderBytes    int           `env:"MAX_HEADER_BYTES" envDefault:"1048576"`
	GinMode           string        `env:"GIN_MODE" envDefault:"release"` // debug|release|test

	// Logging / Docs
	LogLevel       string `env:"LOG_LEVEL" envDefault:"info"`
	LogPretty      bool   `env:"LOG_PRETTY" envDefault:"false"`
	SwaggerEnabled bool   `env:"SWAGGER_ENABLED" envDefault:"false"`
	APIBasePath    string `env:"API_BASE_PATH" envDefault:"/api/v1"`
	DefaultLocale  string `env:"DEFAULT_LOCALE" envDefault:"pt-BR"`

	// App
	DBPath string `env:"DB_PATH" envDefault:"app.db"`

	Upstream UpstreamConfig
	Cache    CacheConfig
	Chat     ChatConfig
	Session  SessionConfig

	// Rate limiting
	RateRPS   float64 `env:"RATE_RPS" envDefault:"5.0"`
	RateBurst int     `env:"RATE_BURST" envDefault:"10"`

	// Web protection
	CORS     CORSConfig
	Security SecurityConfig

	// Observability
	OTEL OTELConfig
}

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// LoadDotEnv loads KEY=value pairs from path into the process environment
// without overriding variables that are already set. A missing file is not
// an error.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return godotenv.Load(path)
}

// Load reads configuration from environment variables,
// applies defaults, normalizes values, and validates the result.
func Load() (Config, error) {
	var cfg Config
	err := env.ParseWithOptions(&cfg, env.Options{
		FuncMap: map[reflect.Type]env.ParserFunc{
			reflect.TypeOf(false): parseBool,
		},
	})
	if err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}

	// --- normalization ---
	cfg.GinMode = strings.ToLower(strings.TrimSpace(cfg.GinMode))
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		cfg.GinMode = "release"
	}
	cfg.APIBasePath = normalizeBasePath(cfg.APIBasePath)
	cfg.CORS.AllowedOrigins = compact(cfg.CORS.AllowedOrigins)
	cfg.Upstream.BaseURL = resolveUpstream(cfg.Upstream.BaseURL, cfg.Upstream.ViteURL)
	if strings.TrimSpace(cfg.Session.Secret) == "" {
		secret, err := randomSecret()
		if err != nil {
			return cfg, err
		}
		cfg.Session.Secret = secret
		cfg.Session.SecretGenerated = true
	}

	// --- validation ---
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return cfg, errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	if strings.TrimSpace(cfg.Port) == "" {
		return cfg, errors.New("PORT must not be empty")
	}
	if cfg.ReadTimeout <= 0 || cfg.ReadHeaderTimeout <= 0 || cfg.WriteTimeout <= 0 || cfg.IdleTimeout <= 0 {
		return cfg, errors.New("timeouts must be positive durations")
	}
	if cfg.MaxHeaderBytes <= 0 {
		return cfg, errors.New("MAX_HEADER_BYTES must be > 0")
	}
	if strings.TrimSpace(cfg.DBPath) == "" {
		return cfg, errors.New("DB_PATH must not be empty")
	}
	if u, err := url.Parse(cfg.Upstream.BaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return cfg, errors.New("PROFILE_API_URL must be an absolute http(s) URL")
	}
	if cfg.Upstream.Timeout <= 0 {
		return cfg, errors.New("UPSTREAM_TIMEOUT must be > 0")
	}
	if cfg.Cache.TTL <= 0 {
		return cfg, errors.New("CACHE_TTL must be > 0")
	}
	if cfg.Cache.MaxEntries < 1 {
		return cfg, errors.New("CACHE_MAX_ENTRIES must be >= 1")
	}
	if cfg.Chat.MaxPromptRunes < 1 {
		return cfg, errors.New("CHAT_MAX_PROMPT_RUNES must be >= 1")
	}
	if cfg.Chat.ConversationTTL <= 0 {
		return cfg, errors.New("CHAT_CONVERSATION_TTL must be > 0")
	}
	if cfg.Chat.MentorDelay < 0 || cfg.Chat.MenteeDelay < 0 {
		return cfg, errors.New("REVEAL_MENTOR_DELAY and REVEAL_MENTEE_DELAY must be >= 0")
	}
	if len(cfg.Session.Secret) < 16 {
		return cfg, errors.New("SESSION_SECRET must be at least 16 bytes")
	}
	if cfg.Session.TTL <= 0 {
		return cfg, errors.New("SESSION_TTL must be > 0")
	}
	if cfg.RateRPS < 0 {
		return cfg, errors.New("RATE_RPS must be >= 0")
	}
	if cfg.RateBurst < 1 {
		return cfg, errors.New("RATE_BURST must be >= 1")
	}
	if cfg.Security.HSTSMaxAge < 0 {
		return cfg, errors.New("HSTS_MAX_AGE must be >= 0")
	}
	if cfg.OTEL.SampleRatio < 0 || cfg.OTEL.SampleRatio > 1 {
		return cfg, errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}

	return cfg, nil
}

// ---- helpers ----

// parseBool accepts the usual spellings (1/0, true/false, yes/no, y/n,
// on/off) case-insensitively.
func parseBool(v string) (any, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "y", "on":
		return true, nil
	case "0", "false", "no", "n", "off", "":
		return false, nil
	}
	return nil, fmt.Errorf("invalid boolean %q", v)
}

func compact(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, 0, len(in))
	for _, p := range in {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// resolveUpstream picks the first non-blank candidate, else the default,
// and strips trailing slashes.
func resolveUpstream(candidates ...string) string {
	for _, c := range candidates {
		if c = strings.TrimSpace(c); c != "" {
			return strings.TrimRight(c, "/")
		}
	}
	return DefaultProfileAPIURL
}

func randomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate session secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// normalizeBasePath ensures leading '/' and strips trailing '/' (except root).
func normalizeBasePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 && strings.HasSuffix(p, "/") {
		p = strings.TrimRight(p, "/")
	}
	return p
}
