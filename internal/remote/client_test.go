package remote

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(Options{BaseURL: srv.URL + "/api/", Timeout: 2 * time.Second}, zerolog.Nop()), srv
}

func TestNew_Defaults(t *testing.T) {
	c := New(Options{}, zerolog.Nop())
	assert.Equal(t, DefaultBaseURL, c.BaseURL())

	c = New(Options{BaseURL: " https://api.example.com/v2/ "}, zerolog.Nop())
	assert.Equal(t, "https://api.example.com/v2", c.BaseURL())
}

func TestFetchModels_SendsQuery(t *testing.T) {
	var gotPath string
	var gotQuery url.Values
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		_, _ = io.WriteString(w, `{"data":[]}`)
	})

	q := url.Values{}
	q.Set("category", "modelo")
	q.Set("limit", "10")
	body, err := c.FetchModels(context.Background(), q)
	require.NoError(t, err)
	assert.JSONEq(t, `{"data":[]}`, string(body))
	assert.Equal(t, "/api/models", gotPath)
	assert.Equal(t, "modelo", gotQuery.Get("category"))
	assert.Equal(t, "10", gotQuery.Get("limit"))
}

func TestFetchModel_EscapesID_And404(t *testing.T) {
	var rawPath string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		rawPath = r.URL.EscapedPath()
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"error":"not found"}`)
	})

	_, err := c.FetchModel(context.Background(), "a/b")
	require.Error(t, err)
	assert.Equal(t, "/api/models/a%2Fb", rawPath)
	assert.True(t, IsNotFound(err))
	assert.False(t, IsRetryable(err))

	var te *TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, OpGetModel, te.Op)
	assert.Equal(t, http.MethodGet, te.Method)
	assert.Contains(t, te.URL, "/api/models/")
	assert.Equal(t, `{"error":"not found"}`, te.Body)
}

func TestDo_ServerErrorIsRetryableTransportError(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, "upstream down")
	})

	_, err := c.FetchModels(context.Background(), nil)
	var te *TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, http.StatusBadGateway, te.Status)
	assert.Equal(t, "upstream down", te.Body)
	assert.True(t, te.Retryable())
	assert.Contains(t, te.Error(), "HTTP 502")
}

func TestDo_NetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	base := srv.URL
	srv.Close()

	c := New(Options{BaseURL: base, Timeout: time.Second}, zerolog.Nop())
	_, err := c.FetchModels(context.Background(), nil)

	var te *TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, 0, te.Status)
	assert.NotNil(t, te.Err)
	assert.True(t, IsRetryable(err))
}

func TestPostChat(t *testing.T) {
	var got map[string]string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/chat", r.URL.Path)
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = io.WriteString(w, `{"answer":"Oi!"}`)
	})

	body, err := c.PostChat(context.Background(), "olá")
	require.NoError(t, err)
	assert.Equal(t, "olá", got["message"])
	assert.JSONEq(t, `{"answer":"Oi!"}`, string(body))
}

func TestPostChat_InvalidJSONIsMalformed(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "<html>oops</html>")
	})

	_, err := c.PostChat(context.Background(), "oi")
	var me *MalformedResponseError
	require.True(t, errors.As(err, &me))
	assert.Equal(t, OpChat, me.Op)
	assert.Equal(t, -1, me.Index)
}

func TestTransportError_Retryable(t *testing.T) {
	cases := map[int]bool{
		0:   true,
		400: false,
		401: false,
		404: false,
		408: true,
		429: true,
		500: true,
		503: true,
	}
	for status, want := range cases {
		te := &TransportError{Status: status}
		assert.Equal(t, want, te.Retryable(), "status %d", status)
	}
}

func TestMalformedResponseError_Message(t *testing.T) {
	e := &MalformedResponseError{Op: OpListModels, URL: "http://x/models", Index: 2, Reason: "invalid profile", Err: errors.New("id: is required")}
	assert.Equal(t, "models.list: malformed response from http://x/models: element 2: invalid profile: id: is required", e.Error())
	assert.EqualError(t, errors.Unwrap(e), "id: is required")
}
