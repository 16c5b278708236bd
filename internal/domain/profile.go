// Package domain defines the core types shared by the repository, service and
// transport layers: the canonical profile record, the chat message union, and
// the persisted account/session models.
package domain

import (
	"net/url"
	"regexp"
	"slices"
)

// Category is the closed classification of a provider's service type.
type Category string

const (
	CategoryModelo     Category = "modelo"
	CategoryTradutora  Category = "tradutora"
	CategoryMassagista Category = "massagista"
)

// Categories lists every valid category in display order.
var Categories = []Category{CategoryModelo, CategoryTradutora, CategoryMassagista}

// Valid reports whether c is one of the three known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryModelo, CategoryTradutora, CategoryMassagista:
		return true
	}
	return false
}

// Profile is the canonical, validated projection of a provider listing.
//
// Records are read-only: they are fetched on demand from the remote API and
// never created or mutated here. Videos is never nil once a record has passed
// validation; Instagram and Twitter are nil when the source omitted them.
type Profile struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Phone       string   `json:"phone"`
	Location    string   `json:"location"`
	HasLocation bool     `json:"hasLocation"`
	Category    Category `json:"category"`
	Description string   `json:"description"`
	Age         int      `json:"age"`
	Height      string   `json:"height"`
	Size        string   `json:"size"`
	Shoes       string   `json:"shoes"`
	Hip         string   `json:"hip"`
	EyeColor    string   `json:"eyeColor"`
	Accompanies []string `json:"accompanies"`
	Fee         string   `json:"fee"`
	AcceptsCard bool     `json:"acceptsCard"`
	Photos      []string `json:"photos"`
	Videos      []string `json:"videos"`
	Instagram   *string  `json:"instagram"`
	Twitter     *string  `json:"twitter"`
	CreatedAt   string   `json:"createdAt,omitempty"`
	UpdatedAt   string   `json:"updatedAt,omitempty"`
}

// CoverPhoto returns the primary photo (index 0) or "" when there is none.
func (p Profile) CoverPhoto() string {
	if len(p.Photos) == 0 {
		return ""
	}
	return p.Photos[0]
}

// Clone returns a deep copy of p; nothing in the copy aliases p.
func (p Profile) Clone() Profile {
	p.Accompanies = slices.Clone(p.Accompanies)
	p.Photos = slices.Clone(p.Photos)
	p.Videos = slices.Clone(p.Videos)
	if p.Instagram != nil {
		v := *p.Instagram
		p.Instagram = &v
	}
	if p.Twitter != nil {
		v := *p.Twitter
		p.Twitter = &v
	}
	return p
}

// CloneProfiles deep-copies a listing. A nil input stays nil.
func CloneProfiles(in []Profile) []Profile {
	if in == nil {
		return nil
	}
	out := make([]Profile, len(in))
	for i, p := range in {
		out[i] = p.Clone()
	}
	return out
}

var nonDigitRE = regexp.MustCompile(`\D`)

// PhoneDigits strips every non-digit from the phone number.
func (p Profile) PhoneDigits() string {
	return nonDigitRE.ReplaceAllString(p.Phone, "")
}

// WhatsAppLink builds the wa.me contact link with a prefilled greeting.
func (p Profile) WhatsAppLink() string {
	msg := "Olá " + p.Name + ", vi seu perfil no Brasil Beauty e gostaria de mais informações."
	return "https://wa.me/" + p.PhoneDigits() + "?text=" + url.QueryEscape(msg)
}

// ProfileFilters narrows a listing query. Nil pointers mean "not set".
type ProfileFilters struct {
	Category    *Category
	Location    *string
	HasLocation *bool
	Search      *string
	Page        *int
	Limit       *int
}

// ListMeta is the optional pagination block of a list envelope.
type ListMeta struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}
