// Package repo implements the data access layer. This file provides the
// profile repository: the only boundary between the service and the remote
// profile store.
//
// Records are fetched on demand, validated one by one, and returned in
// canonical form. The repository never retries and holds no state between
// calls; caching and retry policy belong to its callers.
//
// Error semantics:
//   - FindByID returns (nil, nil) when the profile does not exist (HTTP 404)
//     or when the payload carries no id at all (logged as a warning).
//   - Non-2xx answers and network failures surface as *remote.TransportError.
//   - A 2xx body that violates the envelope contract, or a record that fails
//     validation, surfaces as *remote.MalformedResponseError.
package repo

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/tbourn/brasil-beauty-backend/internal/domain"
	"github.com/tbourn/brasil-beauty-backend/internal/remote"
	"github.com/tbourn/brasil-beauty-backend/internal/validation"
)

// ProfileAPI is the transport contract required by ModelRepo. It is
// satisfied by *remote.Client.
type ProfileAPI interface {
	FetchModels(ctx context.Context, query url.Values) ([]byte, error)
	FetchModel(ctx context.Context, id string) ([]byte, error)
}

// ModelRepo reads profile records from the remote API.
type ModelRepo struct {
	API ProfileAPI
	Log zerolog.Logger
	// BaseURL is only used to label malformed-response errors.
	BaseURL string
}

// NewModelRepo constructs a ModelRepo on top of the given client.
func NewModelRepo(c *remote.Client, lg zerolog.Logger) *ModelRepo {
	return &ModelRepo{API: c, Log: lg, BaseURL: c.BaseURL()}
}

// listEnvelope is the wire shape of GET /models.
type listEnvelope struct {
	Data json.RawMessage  `json:"data"`
	Meta *domain.ListMeta `json:"meta"`
}

// FindAll lists profiles matching filters (nil means no filtering). Every
// element must validate; a single malformed element fails the whole call so
// category counts are never silently wrong.
func (r *ModelRepo) FindAll(ctx context.Context, filters *domain.ProfileFilters) ([]domain.Profile, *domain.ListMeta, error) {
	query := BuildQuery(filters)
	r.Log.Debug().Str("query", query.Encode()).Msg("fetching profiles")

	body, err := r.API.FetchModels(ctx, query)
	if err != nil {
		r.Log.Error().Err(err).Msg("fetch profiles failed")
		return nil, nil, err
	}

	listURL := r.BaseURL + "/models"
	var env listEnvelope
	if err := decodeObject(body, &env); err != nil {
		return nil, nil, r.malformed(&remote.MalformedResponseError{
			Op: remote.OpListModels, URL: listURL, Reason: "envelope is not a JSON object", Index: -1, Err: err,
		})
	}

	var items []json.RawMessage
	if len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, &items); err != nil {
			return nil, nil, r.malformed(&remote.MalformedResponseError{
				Op: remote.OpListModels, URL: listURL, Reason: "data is not an array", Index: -1, Err: err,
			})
		}
	}

	out := make([]domain.Profile, 0, len(items))
	for i, raw := range items {
		p, err := validation.ValidateProfile(raw)
		if err != nil {
			return nil, nil, r.malformed(&remote.MalformedResponseError{
				Op: remote.OpListModels, URL: listURL, Reason: "invalid profile", Index: i, Err: err,
			})
		}
		out = append(out, p)
	}

	r.Log.Info().Int("count", len(out)).Msg("profiles fetched")
	return out, env.Meta, nil
}

// FindByID fetches a single profile. See the package doc for when it
// returns (nil, nil).
func (r *ModelRepo) FindByID(ctx context.Context, id string) (*domain.Profile, error) {
	r.Log.Debug().Str("id", id).Msg("fetching profile")

	body, err := r.API.FetchModel(ctx, id)
	if err != nil {
		if remote.IsNotFound(err) {
			return nil, nil
		}
		r.Log.Error().Err(err).Str("id", id).Msg("fetch profile failed")
		return nil, err
	}

	record, ok := unwrapRecord(body)
	if !ok {
		r.Log.Warn().Str("id", id).Str("body", truncate(string(body), 512)).Msg("profile response has no id")
		return nil, nil
	}

	p, err := validation.ValidateProfile(record)
	if err != nil {
		return nil, r.malformed(&remote.MalformedResponseError{
			Op: remote.OpGetModel, URL: r.BaseURL + "/models/" + url.PathEscape(id), Reason: "invalid profile", Index: -1, Err: err,
		})
	}

	r.Log.Info().Str("id", id).Msg("profile fetched")
	return &p, nil
}

// Search is FindAll restricted to a free-text query. A blank query yields an
// empty result without calling the API.
func (r *ModelRepo) Search(ctx context.Context, query string) ([]domain.Profile, error) {
	if strings.TrimSpace(query) == "" {
		return []domain.Profile{}, nil
	}
	r.Log.Debug().Str("search", query).Msg("searching profiles")
	items, _, err := r.FindAll(ctx, &domain.ProfileFilters{Search: &query})
	return items, err
}

// BuildQuery encodes only the filters that are set.
func BuildQuery(f *domain.ProfileFilters) url.Values {
	q := url.Values{}
	if f == nil {
		return q
	}
	if f.Category != nil && *f.Category != "" {
		q.Set("category", string(*f.Category))
	}
	if f.Location != nil && *f.Location != "" {
		q.Set("location", *f.Location)
	}
	if f.HasLocation != nil {
		q.Set("hasLocation", strconv.FormatBool(*f.HasLocation))
	}
	if f.Search != nil && *f.Search != "" {
		q.Set("search", *f.Search)
	}
	if f.Page != nil {
		q.Set("page", strconv.Itoa(*f.Page))
	}
	if f.Limit != nil {
		q.Set("limit", strconv.Itoa(*f.Limit))
	}
	return q
}

// unwrapRecord accepts {"data": {...}} or a bare record and reports whether
// the result is an object with a non-empty id.
func unwrapRecord(body []byte) (json.RawMessage, bool) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil || obj == nil {
		return nil, false
	}
	record := json.RawMessage(body)
	if data, ok := obj["data"]; ok && isTruthyJSON(data) {
		record = data
		obj = nil
		if err := json.Unmarshal(data, &obj); err != nil || obj == nil {
			return nil, false
		}
	}
	idRaw, ok := obj["id"]
	if !ok || !isTruthyJSON(idRaw) {
		return nil, false
	}
	return record, true
}

var errNotObject = errors.New("expected a JSON object")

// decodeObject unmarshals body into v, rejecting anything that is not a JSON
// object. json.Unmarshal alone would accept a bare null.
func decodeObject(body []byte, v any) error {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil {
		return err
	}
	if obj == nil {
		return errNotObject
	}
	return json.Unmarshal(body, v)
}

// isTruthyJSON treats null, false, 0 and "" as absent.
func isTruthyJSON(raw json.RawMessage) bool {
	switch strings.TrimSpace(string(raw)) {
	case "", "null", "false", "0", `""`:
		return false
	}
	return true
}

func (r *ModelRepo) malformed(err *remote.MalformedResponseError) error {
	r.Log.Error().Err(err).Str("op", err.Op).Int("index", err.Index).Msg("malformed profile response")
	return err
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "…"
}
