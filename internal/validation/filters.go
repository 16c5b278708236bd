package validation

import "github.com/tbourn/brasil-beauty-backend/internal/domain"

const subjectFilters = "filters"

// ModelFiltersDTO is an untrusted listing filter as supplied by a caller
// (query string, form, chat intent). Nil means "not set".
type ModelFiltersDTO struct {
	Category    *string `json:"category"    validate:"omitnil,oneof=modelo tradutora massagista"`
	Location    *string `json:"location"    validate:"omitnil,min=1"`
	HasLocation *bool   `json:"hasLocation"`
	Search      *string `json:"search"      validate:"omitnil,min=1"`
	Page        *int    `json:"page"        validate:"omitnil,gt=0"`
	Limit       *int    `json:"limit"       validate:"omitnil,gt=0,max=100"`
}

// MaxLimit is the largest page size a listing may request.
const MaxLimit = 100

// ValidateFilters applies the same enum and range rules as profile records
// to a filter DTO and converts it to domain filters.
func ValidateFilters(dto ModelFiltersDTO) (domain.ProfileFilters, error) {
	fields, err := checkStruct(&dto)
	if err != nil {
		return domain.ProfileFilters{}, err
	}
	if len(fields) > 0 {
		return domain.ProfileFilters{}, &ValidationError{Subject: subjectFilters, Fields: fields}
	}

	out := domain.ProfileFilters{
		Location:    dto.Location,
		HasLocation: dto.HasLocation,
		Search:      dto.Search,
		Page:        dto.Page,
		Limit:       dto.Limit,
	}
	if dto.Category != nil {
		c := domain.Category(*dto.Category)
		out.Category = &c
	}
	return out, nil
}
