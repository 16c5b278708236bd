package handlers

import (
	"net/http"
	"strings"
	"testing"

	"github.com/tbourn/brasil-beauty-backend/internal/services"
	"github.com/tbourn/brasil-beauty-backend/internal/validation"
)

func TestSignup(t *testing.T) {
	h := newHarness(t)

	w := h.do(http.MethodPost, "/auth/signup", SignupRequest{Email: "Ana@Example.com", Name: "Ana", Password: "s3nha-forte"})
	if w.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if h.accounts.signupIn.Email != "Ana@Example.com" || h.accounts.signupIn.Password != "s3nha-forte" {
		t.Fatalf("input not forwarded: %+v", h.accounts.signupIn)
	}
	if strings.Contains(w.Body.String(), "s3nha") {
		t.Fatalf("password echoed: %s", w.Body.String())
	}

	h.accounts.err = services.ErrEmailTaken
	w = h.do(http.MethodPost, "/auth/signup", SignupRequest{Email: "ana@example.com", Name: "Ana", Password: "s3nha-forte"})
	if w.Code != http.StatusConflict {
		t.Fatalf("status=%d", w.Code)
	}
	if er := decodeError(t, w); er.Message != "Este email já está cadastrado." {
		t.Fatalf("unexpected envelope: %+v", er)
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	h := newHarness(t)
	h.accounts.err = services.ErrInvalidCredentials

	w := h.do(http.MethodPost, "/auth/login", LoginRequest{Email: "x@example.com", Password: "wrong"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status=%d", w.Code)
	}
	er := decodeError(t, w)
	if er.Code != ErrCodeUnauthorized || er.Message != "Email ou senha incorretos." {
		t.Fatalf("unexpected envelope: %+v", er)
	}

	w = h.do(http.MethodPost, "/auth/login", "not json")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestMe_RequiresSession(t *testing.T) {
	h := newHarness(t)

	w := h.do(http.MethodGet, "/auth/me", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status=%d", w.Code)
	}
	if er := decodeError(t, w); er.Message != "Faça login para continuar." {
		t.Fatalf("unexpected envelope: %+v", er)
	}

	w = h.do(http.MethodGet, "/auth/me", nil, withHeader("Authorization", "Bearer good"))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"Ana"`) {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
}

func TestUpdateMe(t *testing.T) {
	h := newHarness(t)
	auth := withHeader("Authorization", "Bearer good")

	w := h.do(http.MethodPut, "/auth/me", UpdateMeRequest{Name: "Ana S."}, auth)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"Ana S."`) {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}

	h.accounts.err = validation.NewFieldError("account", "name", validation.ReasonRequired, "is required")
	w = h.do(http.MethodPut, "/auth/me", UpdateMeRequest{Name: " "}, auth)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d", w.Code)
	}
	er := decodeError(t, w)
	if er.Code != ErrCodeValidation || len(er.Details) != 1 || er.Details[0].Field != "name" {
		t.Fatalf("unexpected envelope: %+v", er)
	}
}

func TestLogout(t *testing.T) {
	h := newHarness(t)

	w := h.do(http.MethodPost, "/auth/logout", nil, withHeader("Authorization", "Bearer good"))
	if w.Code != http.StatusNoContent || !h.accounts.loggedOut {
		t.Fatalf("status=%d loggedOut=%v", w.Code, h.accounts.loggedOut)
	}
}
