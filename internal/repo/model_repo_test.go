package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tbourn/brasil-beauty-backend/internal/domain"
	"github.com/tbourn/brasil-beauty-backend/internal/remote"
	"github.com/tbourn/brasil-beauty-backend/internal/validation"
)

// fakeAPI is an in-memory ProfileAPI.
type fakeAPI struct {
	listBody  string
	listErr   error
	itemBody  string
	itemErr   error
	listCalls int
	lastQuery url.Values
	lastID    string
}

func (f *fakeAPI) FetchModels(_ context.Context, q url.Values) ([]byte, error) {
	f.listCalls++
	f.lastQuery = q
	if f.listErr != nil {
		return nil, f.listErr
	}
	return []byte(f.listBody), nil
}

func (f *fakeAPI) FetchModel(_ context.Context, id string) ([]byte, error) {
	f.lastID = id
	if f.itemErr != nil {
		return nil, f.itemErr
	}
	return []byte(f.itemBody), nil
}

func record(id, category string) string {
	return fmt.Sprintf(`{"id":%q,"name":"Ana","phone":"11 9999-0000","location":"Rio","hasLocation":true,
"category":%q,"description":"","age":25,"height":"1,68","size":"36","shoes":"36","hip":"90",
"eyeColor":"verdes","accompanies":[],"fee":"R$ 400","acceptsCard":true,
"photos":["https://cdn.example.com/%s.jpg"],"videos":null,"instagram":null,"twitter":null}`, id, category, id)
}

func newRepo(api ProfileAPI) *ModelRepo {
	return &ModelRepo{API: api, Log: zerolog.Nop(), BaseURL: "http://api.test"}
}

func TestBuildQuery_OnlyPresentFilters(t *testing.T) {
	if q := BuildQuery(nil); len(q) != 0 {
		t.Fatalf("nil filters should produce empty query, got %v", q)
	}

	cat := domain.CategoryTradutora
	loc, search := "Rio", "ana"
	has := false
	page, limit := 2, 50
	q := BuildQuery(&domain.ProfileFilters{
		Category: &cat, Location: &loc, HasLocation: &has, Search: &search, Page: &page, Limit: &limit,
	})
	want := "category=tradutora&hasLocation=false&limit=50&location=Rio&page=2&search=ana"
	if got := q.Encode(); got != want {
		t.Fatalf("query = %q; want %q", got, want)
	}

	q = BuildQuery(&domain.ProfileFilters{Limit: &limit})
	if got := q.Encode(); got != "limit=50" {
		t.Fatalf("query = %q; want only limit", got)
	}
}

func TestFindAll_ValidList(t *testing.T) {
	api := &fakeAPI{listBody: `{"data":[` + record("m1", "modelo") + `,` + record("m2", "massagista") +
		`],"meta":{"total":2,"page":1,"limit":20,"totalPages":1}}`}
	r := newRepo(api)

	items, meta, err := r.FindAll(context.Background(), nil)
	if err != nil {
		t.Fatalf("FindAll: %v", err)
	}
	if len(items) != 2 || items[0].ID != "m1" || items[1].ID != "m2" {
		t.Fatalf("unexpected items: %+v", items)
	}
	if items[0].Videos == nil {
		t.Fatalf("videos must be normalized to empty slice")
	}
	if meta == nil || meta.Total != 2 || meta.TotalPages != 1 {
		t.Fatalf("unexpected meta: %+v", meta)
	}
}

func TestFindAll_EmptyOrMissingData(t *testing.T) {
	for _, body := range []string{`{"data":[]}`, `{}`, `{"data":null}`} {
		items, meta, err := newRepo(&fakeAPI{listBody: body}).FindAll(context.Background(), nil)
		if err != nil {
			t.Fatalf("%s: unexpected error %v", body, err)
		}
		if items == nil || len(items) != 0 {
			t.Fatalf("%s: expected empty non-nil slice, got %#v", body, items)
		}
		if meta != nil {
			t.Fatalf("%s: expected nil meta", body)
		}
	}
}

func TestFindAll_OneBadElementFailsWholeList(t *testing.T) {
	api := &fakeAPI{listBody: `{"data":[` + record("m1", "modelo") + `,` + record("m2", "fotografa") + `]}`}

	_, _, err := newRepo(api).FindAll(context.Background(), nil)
	var me *remote.MalformedResponseError
	if !errors.As(err, &me) {
		t.Fatalf("expected MalformedResponseError, got %T %v", err, err)
	}
	if me.Index != 1 {
		t.Fatalf("index = %d; want 1", me.Index)
	}
	var ve *validation.ValidationError
	if !errors.As(err, &ve) || ve.Reason("category") != validation.ReasonEnum {
		t.Fatalf("expected wrapped category enum failure, got %v", err)
	}
}

func TestFindAll_MalformedEnvelope(t *testing.T) {
	for _, body := range []string{`[1,2]`, `{"data":{"id":"x"}}`, `not json`, `null`, ` null `} {
		_, _, err := newRepo(&fakeAPI{listBody: body}).FindAll(context.Background(), nil)
		var me *remote.MalformedResponseError
		if !errors.As(err, &me) {
			t.Fatalf("%s: expected MalformedResponseError, got %v", body, err)
		}
	}
}

func TestFindAll_NullEnvelopeRejected(t *testing.T) {
	_, _, err := newRepo(&fakeAPI{listBody: `null`}).FindAll(context.Background(), nil)
	var me *remote.MalformedResponseError
	if !errors.As(err, &me) {
		t.Fatalf("expected MalformedResponseError, got %v", err)
	}
	if me.Reason != "envelope is not a JSON object" || me.Index != -1 {
		t.Fatalf("unexpected error fields: %+v", me)
	}
	if !errors.Is(err, errNotObject) {
		t.Fatalf("expected errNotObject in chain, got %v", err)
	}
}

func TestFindAll_TransportErrorPropagates(t *testing.T) {
	te := &remote.TransportError{Op: remote.OpListModels, Status: 500}
	_, _, err := newRepo(&fakeAPI{listErr: te}).FindAll(context.Background(), nil)
	if !errors.Is(err, te) {
		t.Fatalf("expected transport error to propagate, got %v", err)
	}
}

func TestFindByID_EnvelopeAndBare(t *testing.T) {
	for _, body := range []string{`{"data":` + record("m7", "modelo") + `}`, record("m7", "modelo")} {
		api := &fakeAPI{itemBody: body}
		p, err := newRepo(api).FindByID(context.Background(), "m7")
		if err != nil || p == nil || p.ID != "m7" {
			t.Fatalf("body %s: got %+v, %v", body, p, err)
		}
		if api.lastID != "m7" {
			t.Fatalf("id not forwarded")
		}
	}
}

func TestFindByID_NotFound(t *testing.T) {
	api := &fakeAPI{itemErr: &remote.TransportError{Op: remote.OpGetModel, Status: http.StatusNotFound}}
	p, err := newRepo(api).FindByID(context.Background(), "nope")
	if err != nil || p != nil {
		t.Fatalf("404 must map to (nil, nil); got %+v, %v", p, err)
	}
}

func TestFindByID_MissingIDDegradesToNotFound(t *testing.T) {
	for _, body := range []string{`{"data":{"name":"Ana"}}`, `{"name":"Ana"}`, `[]`, `"x"`, `{"data":{"id":""}}`} {
		p, err := newRepo(&fakeAPI{itemBody: body}).FindByID(context.Background(), "m1")
		if err != nil || p != nil {
			t.Fatalf("body %s: expected (nil, nil), got %+v, %v", body, p, err)
		}
	}
}

func TestFindByID_InvalidRecordWithIDIsMalformed(t *testing.T) {
	body := strings.Replace(record("m1", "modelo"), `"age":25`, `"age":-1`, 1)
	_, err := newRepo(&fakeAPI{itemBody: body}).FindByID(context.Background(), "m1")
	var me *remote.MalformedResponseError
	if !errors.As(err, &me) {
		t.Fatalf("expected MalformedResponseError, got %v", err)
	}
}

func TestFindByID_ServerErrorPropagates(t *testing.T) {
	te := &remote.TransportError{Op: remote.OpGetModel, Status: 503}
	_, err := newRepo(&fakeAPI{itemErr: te}).FindByID(context.Background(), "m1")
	if !errors.Is(err, te) {
		t.Fatalf("expected transport error, got %v", err)
	}
}

func TestSearch(t *testing.T) {
	api := &fakeAPI{listBody: `{"data":[` + record("m1", "modelo") + `]}`}
	r := newRepo(api)

	items, err := r.Search(context.Background(), "   ")
	if err != nil || len(items) != 0 || api.listCalls != 0 {
		t.Fatalf("blank search must not call the API: items=%v err=%v calls=%d", items, err, api.listCalls)
	}

	items, err = r.Search(context.Background(), "ana")
	if err != nil || len(items) != 1 {
		t.Fatalf("search: %v %v", items, err)
	}
	if api.lastQuery.Encode() != "search=ana" {
		t.Fatalf("query = %q", api.lastQuery.Encode())
	}
}

func TestModelRepo_AgainstHTTPServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/api/models":
			_, _ = io.WriteString(w, `{"data":[`+record("m1", "modelo")+`]}`)
		case r.URL.Path == "/api/models/m1":
			_ = json.NewEncoder(w).Encode(map[string]json.RawMessage{"data": json.RawMessage(record("m1", "modelo"))})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	r := NewModelRepo(remote.New(remote.Options{BaseURL: srv.URL + "/api"}, zerolog.Nop()), zerolog.Nop())

	items, _, err := r.FindAll(context.Background(), nil)
	if err != nil || len(items) != 1 {
		t.Fatalf("FindAll: %v %v", items, err)
	}
	p, err := r.FindByID(context.Background(), "m1")
	if err != nil || p == nil || p.Category != domain.CategoryModelo {
		t.Fatalf("FindByID: %+v %v", p, err)
	}
	p, err = r.FindByID(context.Background(), "missing")
	if err != nil || p != nil {
		t.Fatalf("missing: %+v %v", p, err)
	}
}
