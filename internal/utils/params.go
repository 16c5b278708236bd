// Package utils provides small, generic helper functions used across
// different layers of the application. These utilities are independent
// of domain or business logic.
package utils

import (
	"strconv"
	"strings"
)

// OptionalString returns nil when the query parameter was absent and a
// pointer to the raw value otherwise. An explicitly empty value ("?q=") is
// kept so that validation can reject it.
func OptionalString(v string, present bool) *string {
	if !present {
		return nil
	}
	return &v
}

// OptionalInt parses an optional integer parameter. Absent or blank values
// yield nil; anything else must be a base-10 integer.
func OptionalInt(v string) (*int, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// OptionalBool parses an optional boolean parameter with strconv.ParseBool
// spellings ("true", "1", "false", "0", ...).
func OptionalBool(v string) (*bool, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// Int64Default converts s to an int64, returning def when s is empty or not
// a valid integer.
//
// Example:
//
//	n := utils.Int64Default("42", 0) // returns 42
//	n = utils.Int64Default("", 10)   // returns 10
//	n = utils.Int64Default("x", 5)   // returns 5
func Int64Default(s string, def int64) int64 {
	if s == "" {
		return def
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	return def
}
