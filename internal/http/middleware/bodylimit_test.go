package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestBodyLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(BodyLimit(16))
	r.POST("/echo", func(c *gin.Context) {
		b, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.String(http.StatusRequestEntityTooLarge, "read failed")
			return
		}
		c.String(http.StatusOK, string(b))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader("oi")))
	if w.Code != http.StatusOK || w.Body.String() != "oi" {
		t.Fatalf("small body: code=%d body=%q", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(strings.Repeat("x", 64))))
	if w.Code != http.StatusRequestEntityTooLarge || !strings.Contains(w.Body.String(), `"payload_too_large"`) {
		t.Fatalf("declared oversize: code=%d body=%q", w.Code, w.Body.String())
	}

	// Unknown length: the reader itself enforces the cap.
	req := httptest.NewRequest(http.MethodPost, "/echo", io.NopCloser(strings.NewReader(strings.Repeat("x", 64))))
	req.ContentLength = -1
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusRequestEntityTooLarge || w.Body.String() != "read failed" {
		t.Fatalf("streamed oversize: code=%d body=%q", w.Code, w.Body.String())
	}
}
