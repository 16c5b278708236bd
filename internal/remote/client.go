// Package remote is the HTTP transport to the profile REST API.
//
// It owns connection settings, timeouts, tracing and request metrics, and
// turns every failed exchange into a *TransportError carrying the operation,
// method, URL, status and (truncated) body. Decoding the envelopes is left to
// the repository; this package only guarantees that a returned body came
// with a 2xx status.
//
// Endpoints consumed:
//   - GET  {base}/models?category&location&hasLocation&search&page&limit
//   - GET  {base}/models/{id}
//   - POST {base}/chat   {"message": "..."}
package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// Operation names used in errors, logs, spans and metric labels.
const (
	OpListModels = "models.list"
	OpGetModel   = "models.get"
	OpChat       = "chat.send"
)

// DefaultBaseURL is used when no API URL is configured (local development).
const DefaultBaseURL = "http://localhost:3007/api"

// Options configures a Client. Zero values fall back to sane defaults.
type Options struct {
	BaseURL   string
	Timeout   time.Duration // per request; default 10s
	Debug     bool          // dump requests/responses at debug level
	UserAgent string
	// HTTPClient overrides the underlying transport (tests).
	HTTPClient *http.Client
}

// Client calls the profile API. It is safe for concurrent use.
type Client struct {
	http    *resty.Client
	baseURL string
	log     zerolog.Logger
}

// New builds a Client from opts, logging through lg.
func New(opts Options, lg zerolog.Logger) *Client {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ua := opts.UserAgent
	if ua == "" {
		ua = "brasil-beauty-backend"
	}

	var rc *resty.Client
	if opts.HTTPClient != nil {
		rc = resty.NewWithClient(opts.HTTPClient)
	} else {
		rc = resty.New()
	}
	rc.SetBaseURL(base).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", ua).
		SetLogger(restyLogger{lg: lg}).
		SetDebug(opts.Debug)

	return &Client{http: rc, baseURL: base, log: lg}
}

// BaseURL returns the normalized API root.
func (c *Client) BaseURL() string { return c.baseURL }

// FetchModels performs GET /models with the given query.
func (c *Client) FetchModels(ctx context.Context, query url.Values) ([]byte, error) {
	req := c.http.R()
	if len(query) > 0 {
		req.SetQueryParamsFromValues(query)
	}
	return c.do(ctx, req, OpListModels, http.MethodGet, "/models")
}

// FetchModel performs GET /models/{id}. A 404 surfaces as a TransportError
// for which NotFound() is true.
func (c *Client) FetchModel(ctx context.Context, id string) ([]byte, error) {
	req := c.http.R().SetPathParam("id", id)
	return c.do(ctx, req, OpGetModel, http.MethodGet, "/models/{id}")
}

// PostChat sends one chat message and returns the raw reply body. The body
// is guaranteed to be well-formed JSON.
func (c *Client) PostChat(ctx context.Context, message string) ([]byte, error) {
	req := c.http.R().
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]string{"message": message})
	body, err := c.do(ctx, req, OpChat, http.MethodPost, "/chat")
	if err != nil {
		return nil, err
	}
	if !json.Valid(body) {
		return nil, &MalformedResponseError{Op: OpChat, URL: c.baseURL + "/chat", Reason: "body is not valid JSON", Index: -1}
	}
	return body, nil
}

func (c *Client) do(ctx context.Context, req *resty.Request, op, method, path string) ([]byte, error) {
	ctx, span := otel.Tracer("remote/Client").Start(ctx, op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("http.route", path),
		),
	)
	defer span.End()

	req.SetContext(ctx)
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	start := time.Now()
	resp, err := req.Execute(method, path)
	upstreamLat.WithLabelValues(op).Observe(time.Since(start).Seconds())

	fullURL := c.baseURL + path
	if resp != nil && resp.Request != nil && resp.Request.URL != "" {
		fullURL = resp.Request.URL
	}

	if err != nil {
		upstreamReqs.WithLabelValues(op, "error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		c.log.Error().Err(err).Str("op", op).Str("url", fullURL).Msg("profile api request failed")
		return nil, &TransportError{Op: op, Method: method, URL: fullURL, Err: err}
	}

	status := resp.StatusCode()
	upstreamReqs.WithLabelValues(op, strconv.Itoa(status)).Inc()
	span.SetAttributes(attribute.Int("http.status_code", status))

	if !resp.IsSuccess() {
		if status != http.StatusNotFound {
			span.SetStatus(codes.Error, http.StatusText(status))
		}
		return nil, &TransportError{
			Op:     op,
			Method: method,
			URL:    fullURL,
			Status: status,
			Body:   truncateBody(resp.Body()),
		}
	}
	return resp.Body(), nil
}
