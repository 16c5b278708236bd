// Profile HTTP handlers.
//
// This file exposes the read-only directory endpoints:
//   - GET /models             (list with filters, ETag support)
//   - GET /models/search      (free-text search)
//   - GET /models/categories  (the three search-page carousels)
//   - GET /models/{id}        (profile page)
package handlers

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/brasil-beauty-backend/internal/domain"
	"github.com/tbourn/brasil-beauty-backend/internal/i18n"
	"github.com/tbourn/brasil-beauty-backend/internal/utils"
	"github.com/tbourn/brasil-beauty-backend/internal/validation"
)

// ModelListResponse is the listing envelope. Meta is present only when the
// profile API paginated the result.
type ModelListResponse struct {
	Data []domain.Profile `json:"data"`
	Meta *domain.ListMeta `json:"meta,omitempty"`
}

// ModelSearchResponse wraps search hits.
type ModelSearchResponse struct {
	Data []domain.Profile `json:"data"`
}

// CategoryGroupView is one carousel with its localized title.
type CategoryGroupView struct {
	Category domain.Category  `json:"category" example:"modelo"`
	Label    string           `json:"label" example:"Modelos"`
	Models   []domain.Profile `json:"models"`
}

// CategoriesResponse lists every category, empty ones included, in display
// order.
type CategoriesResponse struct {
	Groups []CategoryGroupView `json:"groups"`
}

// ModelDetailResponse is the profile page payload.
type ModelDetailResponse struct {
	Data         *domain.Profile `json:"data"`
	WhatsAppLink string          `json:"whatsappLink" example:"https://wa.me/5511912345678?text=Ol%C3%A1"`
	CoverPhoto   string          `json:"coverPhoto"`
}

// filtersFromQuery builds the filter DTO from the query string. It returns
// nil when no filter parameter is present, and a ValidationError listing
// every parameter that could not be parsed.
func filtersFromQuery(c *gin.Context) (*validation.ModelFiltersDTO, error) {
	q := c.Request.URL.Query()
	present := false
	for _, k := range []string{"category", "location", "hasLocation", "search", "page", "limit"} {
		if q.Has(k) {
			present = true
			break
		}
	}
	if !present {
		return nil, nil
	}

	var (
		dto    validation.ModelFiltersDTO
		fields []validation.FieldError
		err    error
	)
	dto.Category = utils.OptionalString(q.Get("category"), q.Has("category"))
	dto.Location = utils.OptionalString(q.Get("location"), q.Has("location"))
	dto.Search = utils.OptionalString(q.Get("search"), q.Has("search"))
	if dto.HasLocation, err = utils.OptionalBool(q.Get("hasLocation")); err != nil {
		fields = append(fields, validation.FieldError{Field: "hasLocation", Reason: validation.ReasonWrongType, Message: "must be true or false"})
	}
	if dto.Page, err = utils.OptionalInt(q.Get("page")); err != nil {
		fields = append(fields, validation.FieldError{Field: "page", Reason: validation.ReasonWrongType, Message: "must be an integer"})
	}
	if dto.Limit, err = utils.OptionalInt(q.Get("limit")); err != nil {
		fields = append(fields, validation.FieldError{Field: "limit", Reason: validation.ReasonWrongType, Message: "must be an integer"})
	}
	if len(fields) > 0 {
		return nil, &validation.ValidationError{Subject: "filters", Fields: fields}
	}
	return &dto, nil
}

// writeWithETag serializes body, tags it with a weak content hash and answers
// 304 when the client already holds that representation.
func writeWithETag(c *gin.Context, prefix string, body any) {
	raw, err := json.Marshal(body)
	if err != nil {
		_ = c.Error(err)
		FailKey(c, http.StatusInternalServerError, ErrCodeInternal, i18n.KeyInternal)
		return
	}
	sum := sha256.Sum256(raw)
	etag := `W/"` + prefix + ":" + hex.EncodeToString(sum[:8]) + `"`

	c.Header("ETag", etag)
	c.Header("Cache-Control", "no-cache")
	c.Header("Vary", "Accept-Language")
	if etagMatches(c.GetHeader("If-None-Match"), etag) {
		c.Status(http.StatusNotModified)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", raw)
}

// etagMatches applies the weak comparison of If-None-Match.
func etagMatches(header, etag string) bool {
	if header == "" {
		return false
	}
	want := strings.TrimPrefix(etag, "W/")
	for _, cand := range strings.Split(header, ",") {
		cand = strings.TrimSpace(cand)
		if cand == "*" || strings.TrimPrefix(cand, "W/") == want {
			return true
		}
	}
	return false
}

func nonNil(items []domain.Profile) []domain.Profile {
	if items == nil {
		return []domain.Profile{}
	}
	return items
}

// ListModels godoc
// @ID          listModels
// @Summary     List profiles
// @Description Lists profiles, optionally filtered. Results are served from a short-lived cache; a weak ETag allows 304 revalidation.
// @Tags        Models
// @Produce     json
//
// @Param       category       query   string  false "Category"                 Enums(modelo, tradutora, massagista)
// @Param       location       query   string  false "City"                     example(São Paulo)
// @Param       hasLocation    query   bool    false "Has own venue"
// @Param       search         query   string  false "Free text"
// @Param       page           query   int     false "Page number"              minimum(1)
// @Param       limit          query   int     false "Page size"                minimum(1) maximum(100)
// @Param       Accept-Language header string  false "pt-BR or en"
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"
//
// @Success     200  {object}  handlers.ModelListResponse
// @Header      200  {string}  ETag  "Weak ETag of the representation"
// @Success     304  {string}  string "Not Modified"
// @Failure     400  {object}  handlers.ErrorResponse "Invalid filters"
// @Failure     502  {object}  handlers.ErrorResponse "Profile API failure"
// @Router      /models [get]
func (h *Handlers) ListModels(c *gin.Context) {
	filters, err := filtersFromQuery(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	items, meta, err := h.models.ListModels(c.Request.Context(), filters)
	if err != nil {
		h.respondError(c, err)
		return
	}
	writeWithETag(c, "models", ModelListResponse{Data: nonNil(items), Meta: meta})
}

// SearchModels godoc
// @ID          searchModels
// @Summary     Search profiles
// @Description Free-text search. A blank query returns an empty list.
// @Tags        Models
// @Produce     json
// @Param       q    query  string  false  "Search text"  example(ana)
// @Success     200  {object}  handlers.ModelSearchResponse
// @Failure     502  {object}  handlers.ErrorResponse "Profile API failure"
// @Router      /models/search [get]
func (h *Handlers) SearchModels(c *gin.Context) {
	items, err := h.models.SearchModels(c.Request.Context(), c.Query("q"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	ok(c, http.StatusOK, ModelSearchResponse{Data: nonNil(items)})
}

// ListCategories godoc
// @ID          listCategories
// @Summary     Profiles grouped by category
// @Description Returns the three category carousels with localized labels.
// @Tags        Models
// @Produce     json
// @Param       lang  query  string  false  "Language override"  Enums(pt-BR, en)
// @Success     200  {object}  handlers.CategoriesResponse
// @Header      200  {string}  ETag  "Weak ETag of the representation"
// @Failure     502  {object}  handlers.ErrorResponse "Profile API failure"
// @Router      /models/categories [get]
func (h *Handlers) ListCategories(c *gin.Context) {
	groups, err := h.models.ListByCategory(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	p := i18n.Printer(i18n.Tag(c))
	out := CategoriesResponse{Groups: make([]CategoryGroupView, 0, len(groups))}
	for _, g := range groups {
		out.Groups = append(out.Groups, CategoryGroupView{
			Category: g.Category,
			Label:    i18n.CategoryLabel(p, g.Category),
			Models:   nonNil(g.Models),
		})
	}
	writeWithETag(c, "categories", out)
}

// GetModel godoc
// @ID          getModel
// @Summary     Get a profile
// @Description Returns one profile plus its WhatsApp contact link and cover photo.
// @Tags        Models
// @Produce     json
// @Param       id   path  string  true  "Profile ID"
// @Success     200  {object}  handlers.ModelDetailResponse
// @Failure     400  {object}  handlers.ErrorResponse "Blank id"
// @Failure     404  {object}  handlers.ErrorResponse "Profile not found"
// @Failure     502  {object}  handlers.ErrorResponse "Profile API failure"
// @Router      /models/{id} [get]
func (h *Handlers) GetModel(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		FailKey(c, http.StatusBadRequest, ErrCodeBadRequest, i18n.KeyBadRequest)
		return
	}
	p, err := h.models.GetModelByID(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	ok(c, http.StatusOK, ModelDetailResponse{
		Data:         p,
		WhatsAppLink: p.WhatsAppLink(),
		CoverPhoto:   p.CoverPhoto(),
	})
}
