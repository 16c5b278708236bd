package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/brasil-beauty-backend/internal/domain"
)

type fakeAuth struct {
	calls int
	token string
}

func (f *fakeAuth) Authenticate(_ context.Context, token string) (domain.SessionContext, error) {
	f.calls++
	if token != f.token {
		return domain.SessionContext{}, errors.New("bad token")
	}
	return domain.SessionContext{AccountID: "acc-1", Email: "ana@example.com", Name: "Ana", SessionID: "s-1"}, nil
}

func TestBearerToken(t *testing.T) {
	cases := map[string]string{
		"":                   "",
		"Bearer abc":         "abc",
		"bearer   abc  ":     "abc",
		"Basic dXNlcjpwYXNz": "",
		"Bearer":             "",
	}
	for in, want := range cases {
		if got := bearerToken(in); got != want {
			t.Errorf("bearerToken(%q) = %q; want %q", in, got, want)
		}
	}
}

func TestSession_HydratesAndFallsBackToAnonymous(t *testing.T) {
	gin.SetMode(gin.TestMode)
	auth := &fakeAuth{token: "good"}

	r := gin.New()
	r.Use(Session(auth))
	r.GET("/whoami", func(c *gin.Context) {
		sc := SessionFrom(c)
		c.JSON(http.StatusOK, gin.H{"id": sc.AccountID, "uid": c.GetString(userIDKey)})
	})

	cases := []struct {
		header, wantID string
		wantCalls      int
	}{
		{"", "", 0},
		{"Bearer good", "acc-1", 1},
		{"Bearer stale", "", 2},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		r.ServeHTTP(w, req)

		var body map[string]string
		_ = json.Unmarshal(w.Body.Bytes(), &body)
		if w.Code != http.StatusOK || body["id"] != tc.wantID || body["uid"] != tc.wantID {
			t.Fatalf("header %q: code=%d body=%v", tc.header, w.Code, body)
		}
		if auth.calls != tc.wantCalls {
			t.Fatalf("header %q: Authenticate calls=%d want %d", tc.header, auth.calls, tc.wantCalls)
		}
	}
}

func TestRequireSession(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), Session(&fakeAuth{token: "good"}))
	r.GET("/me", RequireSession(), func(c *gin.Context) { c.String(http.StatusOK, SessionFrom(c).Name) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous must get 401, got %d", w.Code)
	}
	if w.Header().Get("WWW-Authenticate") == "" {
		t.Fatalf("missing WWW-Authenticate")
	}
	var body map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if body["code"] != "unauthorized" || body["message"] != "Faça login para continuar." {
		t.Fatalf("unexpected body: %v", body)
	}

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer good")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK || w.Body.String() != "Ana" {
		t.Fatalf("authenticated request: code=%d body=%q", w.Code, w.Body.String())
	}
}
