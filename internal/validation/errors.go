// Package validation verifies untrusted profile records and listing filters
// and turns them into canonical domain values.
//
// Every check reports all failing fields at once through *ValidationError, so
// callers can surface a complete list to clients instead of fixing one field
// per round trip.
package validation

import (
	"fmt"
	"strings"
)

// Reason classifies why a single field failed.
type Reason string

const (
	// ReasonRequired: field missing or null.
	ReasonRequired Reason = "required"
	// ReasonWrongType: field present with an unexpected JSON type.
	ReasonWrongType Reason = "wrong_type"
	// ReasonEnum: value outside a closed set (e.g. category).
	ReasonEnum Reason = "enum"
	// ReasonConstraint: value fails a range or length rule.
	ReasonConstraint Reason = "constraint"
	// ReasonURL: sequence element is not an absolute URL.
	ReasonURL Reason = "url"
)

// FieldError describes one failing field. Sequence elements are addressed
// with an index suffix, e.g. "photos[1]".
type FieldError struct {
	Field   string `json:"field"`
	Reason  Reason `json:"reason"`
	Message string `json:"message"`
}

// ValidationError lists every failing field of one validated value, in field
// declaration order.
type ValidationError struct {
	// Subject names what was validated ("profile", "filters").
	Subject string       `json:"subject"`
	Fields  []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return fmt.Sprintf("invalid %s: %s", e.Subject, strings.Join(parts, "; "))
}

// Has reports whether field (exact name, including any index suffix) failed.
func (e *ValidationError) Has(field string) bool {
	return e.Reason(field) != ""
}

// Reason returns the failure reason recorded for field, or "" if it passed.
func (e *ValidationError) Reason(field string) Reason {
	for _, f := range e.Fields {
		if f.Field == field {
			return f.Reason
		}
	}
	return ""
}

// NewFieldError builds a single-field ValidationError. The HTTP layer uses it
// for query parameters that cannot even be parsed into the filter DTO.
func NewFieldError(subject, field string, reason Reason, msg string) *ValidationError {
	return &ValidationError{
		Subject: subject,
		Fields:  []FieldError{{Field: field, Reason: reason, Message: msg}},
	}
}
