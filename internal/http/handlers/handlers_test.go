package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/brasil-beauty-backend/internal/chat"
	"github.com/tbourn/brasil-beauty-backend/internal/domain"
	"github.com/tbourn/brasil-beauty-backend/internal/http/middleware"
	"github.com/tbourn/brasil-beauty-backend/internal/i18n"
	"github.com/tbourn/brasil-beauty-backend/internal/services"
	"github.com/tbourn/brasil-beauty-backend/internal/validation"
)

// ---------- fakes ----------

type fakeModels struct {
	items    []domain.Profile
	meta     *domain.ListMeta
	groups   []services.CategoryGroup
	err      error
	lastDTO  *validation.ModelFiltersDTO
	lastQ    string
	listHits int
}

func (f *fakeModels) ListModels(_ context.Context, dto *validation.ModelFiltersDTO) ([]domain.Profile, *domain.ListMeta, error) {
	f.listHits++
	f.lastDTO = dto
	return f.items, f.meta, f.err
}

func (f *fakeModels) GetModelByID(_ context.Context, id string) (*domain.Profile, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.items {
		if f.items[i].ID == id {
			return &f.items[i], nil
		}
	}
	return nil, &services.NotFoundError{Kind: services.KindNotFound, Entity: "Model", ID: id}
}

func (f *fakeModels) SearchModels(_ context.Context, q string) ([]domain.Profile, error) {
	f.lastQ = q
	return nil, f.err
}

func (f *fakeModels) ListByCategory(context.Context) ([]services.CategoryGroup, error) {
	return f.groups, f.err
}

type fakeChat struct {
	owner    string
	since    int64
	sendMsgs []domain.ChatMessage
	sendErr  error
	steps    []chat.Step
	planErr  error
}

func (f *fakeChat) Start(_ context.Context, owner string) string {
	f.owner = owner
	return "conv-1"
}

func (f *fakeChat) Send(_ context.Context, _, owner, _ string) ([]domain.ChatMessage, error) {
	f.owner = owner
	return f.sendMsgs, f.sendErr
}

func (f *fakeChat) Messages(_ context.Context, id, owner string, since int64) ([]domain.ChatMessage, error) {
	if id != "conv-1" {
		return nil, services.ErrConversationNotFound
	}
	f.owner, f.since = owner, since
	return nil, nil
}

func (f *fakeChat) RevealPlan(context.Context, string, string) ([]chat.Step, func() bool, error) {
	return f.steps, nil, f.planErr
}

type fakeAccounts struct {
	signupIn  validation.AccountInput
	err       error
	loggedOut bool
}

var testAccount = &domain.Account{ID: "acc-1", Email: "ana@example.com", Name: "Ana"}

func (f *fakeAccounts) Signup(_ context.Context, in validation.AccountInput) (*services.AuthResult, error) {
	f.signupIn = in
	if f.err != nil {
		return nil, f.err
	}
	return &services.AuthResult{Token: "tok", Account: testAccount}, nil
}

func (f *fakeAccounts) Login(_ context.Context, _, _ string) (*services.AuthResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &services.AuthResult{Token: "tok", Account: testAccount}, nil
}

func (f *fakeAccounts) Logout(context.Context, domain.SessionContext) error {
	f.loggedOut = true
	return f.err
}

func (f *fakeAccounts) Me(_ context.Context, sc domain.SessionContext) (*domain.Account, error) {
	return &domain.Account{ID: sc.AccountID, Name: sc.Name}, f.err
}

func (f *fakeAccounts) UpdateName(_ context.Context, sc domain.SessionContext, name string) (*domain.Account, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Account{ID: sc.AccountID, Name: name}, nil
}

// Authenticate accepts the literal token "good".
func (f *fakeAccounts) Authenticate(_ context.Context, token string) (domain.SessionContext, error) {
	if token != "good" {
		return domain.SessionContext{}, services.ErrUnauthorized
	}
	return domain.SessionContext{AccountID: "acc-1", Name: "Ana", SessionID: "s-1"}, nil
}

// ---------- harness ----------

type harness struct {
	r        *gin.Engine
	models   *fakeModels
	chat     *fakeChat
	accounts *fakeAccounts
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	h := &harness{models: &fakeModels{}, chat: &fakeChat{}, accounts: &fakeAccounts{}}
	hs := New(h.models, h.chat, h.accounts)
	hs.MaxPromptRunes = 50

	r := gin.New()
	r.Use(middleware.RequestID(), i18n.Middleware(), middleware.Session(h.accounts))
	r.GET("/models", hs.ListModels)
	r.GET("/models/search", hs.SearchModels)
	r.GET("/models/categories", hs.ListCategories)
	r.GET("/models/:id", hs.GetModel)
	r.POST("/chat/conversations", hs.StartConversation)
	r.GET("/chat/conversations/:id/messages", hs.ListMessages)
	r.POST("/chat/conversations/:id/messages", hs.SendMessage)
	r.GET("/chat/journey", hs.StreamJourney)
	r.POST("/auth/signup", hs.Signup)
	r.POST("/auth/login", hs.Login)
	me := r.Group("/auth", middleware.RequireSession())
	me.POST("/logout", hs.Logout)
	me.GET("/me", hs.Me)
	me.PUT("/me", hs.UpdateMe)

	h.r = r
	return h
}

type reqOpt func(*http.Request)

func withHeader(k, v string) reqOpt { return func(r *http.Request) { r.Header.Set(k, v) } }

func (h *harness) do(method, path string, body any, opts ...reqOpt) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		_ = json.NewEncoder(&buf).Encode(b)
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, o := range opts {
		o(req)
	}
	w := httptest.NewRecorder()
	h.r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var er ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &er); err != nil {
		t.Fatalf("decode envelope: %v (body=%s)", err, w.Body.String())
	}
	if er.RequestID == "" || er.RequestID != w.Header().Get("X-Request-ID") {
		t.Fatalf("envelope request_id %q does not match header %q", er.RequestID, w.Header().Get("X-Request-ID"))
	}
	return er
}
