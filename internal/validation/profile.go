package validation

import (
	"bytes"
	"encoding/json"
	"math"

	"github.com/tbourn/brasil-beauty-backend/internal/domain"
)

const subjectProfile = "profile"

// profileValues carries the value rules of a profile record. Presence and
// JSON type are checked field by field before these tags run, so a field
// that is missing never reports a second, derived failure here.
type profileValues struct {
	// An empty id cannot identify a record, so "" is rejected too.
	ID          string   `json:"id"          validate:"required"`
	Name        string   `json:"name"        validate:"required"`
	Phone       string   `json:"phone"       validate:"required"`
	Location    string   `json:"location"    validate:"required"`
	HasLocation bool     `json:"hasLocation"`
	Category    string   `json:"category"    validate:"oneof=modelo tradutora massagista"`
	Description string   `json:"description"`
	Age         int      `json:"age"         validate:"gt=0"`
	Height      string   `json:"height"`
	Size        string   `json:"size"`
	Shoes       string   `json:"shoes"`
	Hip         string   `json:"hip"`
	EyeColor    string   `json:"eyeColor"`
	Accompanies []string `json:"accompanies"`
	Fee         string   `json:"fee"`
	AcceptsCard bool     `json:"acceptsCard"`
	Photos      []string `json:"photos"      validate:"dive,url"`
	Videos      []string `json:"videos"      validate:"dive,url"`
}

// wireField is one entry of the record's wire schema.
type wireField struct {
	name     string
	optional bool   // missing or null is acceptable
	want     string // JSON type label for wrong_type messages
	decode   func(raw json.RawMessage) bool
}

func into[T any](dst *T) func(json.RawMessage) bool {
	return func(raw json.RawMessage) bool { return json.Unmarshal(raw, dst) == nil }
}

// maxSafeInt is the largest integer a JSON number carries exactly.
const maxSafeInt = 1<<53 - 1

// intoInt accepts any JSON number with an integral value, so 25 and 25.0
// both decode while 25.5 and "25" do not.
func intoInt(dst *int) func(json.RawMessage) bool {
	return func(raw json.RawMessage) bool {
		var f float64
		if err := json.Unmarshal(raw, &f); err != nil {
			return false
		}
		if f != math.Trunc(f) || math.Abs(f) > maxSafeInt {
			return false
		}
		*dst = int(f)
		return true
	}
}

func intoPtr(dst **string) func(json.RawMessage) bool {
	return func(raw json.RawMessage) bool {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return false
		}
		*dst = &s
		return true
	}
}

// ValidateProfile checks one untrusted JSON value against the profile shape
// and returns the canonical record. On failure it returns *ValidationError
// listing every offending field.
//
// Normalization: videos missing or null becomes an empty slice; instagram and
// twitter missing or null stay nil.
func ValidateProfile(raw []byte) (domain.Profile, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
		return domain.Profile{}, NewFieldError(subjectProfile, "$", ReasonWrongType, "expected a JSON object")
	}

	var (
		v                  profileValues
		instagram, twitter *string
		createdAt          string
		updatedAt          string
	)
	schema := []wireField{
		{name: "id", want: "string", decode: into(&v.ID)},
		{name: "name", want: "string", decode: into(&v.Name)},
		{name: "phone", want: "string", decode: into(&v.Phone)},
		{name: "location", want: "string", decode: into(&v.Location)},
		{name: "hasLocation", want: "boolean", decode: into(&v.HasLocation)},
		{name: "category", want: "string", decode: into(&v.Category)},
		{name: "description", want: "string", decode: into(&v.Description)},
		{name: "age", want: "integer", decode: intoInt(&v.Age)},
		{name: "height", want: "string", decode: into(&v.Height)},
		{name: "size", want: "string", decode: into(&v.Size)},
		{name: "shoes", want: "string", decode: into(&v.Shoes)},
		{name: "hip", want: "string", decode: into(&v.Hip)},
		{name: "eyeColor", want: "string", decode: into(&v.EyeColor)},
		{name: "accompanies", want: "array of strings", decode: into(&v.Accompanies)},
		{name: "fee", want: "string", decode: into(&v.Fee)},
		{name: "acceptsCard", want: "boolean", decode: into(&v.AcceptsCard)},
		{name: "photos", want: "array of strings", decode: into(&v.Photos)},
		{name: "videos", optional: true, want: "array of strings", decode: into(&v.Videos)},
		{name: "instagram", optional: true, want: "string", decode: intoPtr(&instagram)},
		{name: "twitter", optional: true, want: "string", decode: intoPtr(&twitter)},
		{name: "createdAt", optional: true, want: "string", decode: into(&createdAt)},
		{name: "updatedAt", optional: true, want: "string", decode: into(&updatedAt)},
	}

	shapeErrs := make(map[string]FieldError)
	for _, f := range schema {
		raw, ok := obj[f.name]
		if !ok || isNull(raw) {
			if !f.optional {
				shapeErrs[f.name] = FieldError{Field: f.name, Reason: ReasonRequired, Message: "is required"}
			}
			continue
		}
		if !f.decode(raw) {
			shapeErrs[f.name] = FieldError{Field: f.name, Reason: ReasonWrongType, Message: "expected " + f.want}
		}
	}

	ruleErrs, err := checkStruct(&v)
	if err != nil {
		return domain.Profile{}, err
	}

	if fields := mergeInOrder(schema, shapeErrs, ruleErrs); len(fields) > 0 {
		return domain.Profile{}, &ValidationError{Subject: subjectProfile, Fields: fields}
	}

	if v.Videos == nil {
		v.Videos = []string{}
	}
	return domain.Profile{
		ID:          v.ID,
		Name:        v.Name,
		Phone:       v.Phone,
		Location:    v.Location,
		HasLocation: v.HasLocation,
		Category:    domain.Category(v.Category),
		Description: v.Description,
		Age:         v.Age,
		Height:      v.Height,
		Size:        v.Size,
		Shoes:       v.Shoes,
		Hip:         v.Hip,
		EyeColor:    v.EyeColor,
		Accompanies: v.Accompanies,
		Fee:         v.Fee,
		AcceptsCard: v.AcceptsCard,
		Photos:      v.Photos,
		Videos:      v.Videos,
		Instagram:   instagram,
		Twitter:     twitter,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}, nil
}

// ValidateProfileValue re-encodes an arbitrary Go value as JSON and validates
// the result with ValidateProfile.
func ValidateProfileValue(v any) (domain.Profile, error) {
	switch b := v.(type) {
	case json.RawMessage:
		return ValidateProfile(b)
	case []byte:
		return ValidateProfile(b)
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return domain.Profile{}, NewFieldError(subjectProfile, "$", ReasonWrongType, "value is not JSON-encodable")
	}
	return ValidateProfile(raw)
}

// mergeInOrder combines shape and rule failures in schema order. Rule
// failures of a field that already failed its shape check are dropped.
func mergeInOrder(schema []wireField, shape map[string]FieldError, rules []FieldError) []FieldError {
	byField := make(map[string][]FieldError, len(rules))
	for _, fe := range rules {
		base := baseField(fe.Field)
		byField[base] = append(byField[base], fe)
	}
	var out []FieldError
	for _, f := range schema {
		if fe, bad := shape[f.name]; bad {
			out = append(out, fe)
			continue
		}
		out = append(out, byField[f.name]...)
	}
	return out
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
