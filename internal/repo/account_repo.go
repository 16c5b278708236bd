// Package repo implements the data access layer. This file provides GORM
// repository functions for the Account model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// usable inside transactions. They follow the "thin repository" approach:
// no business rules, only persistence and query composition.
//
// Error semantics:
//   - A missing account yields gorm.ErrRecordNotFound (ErrNotFound).
//   - A duplicate email yields ErrDuplicateEmail.
//   - Other DB errors are propagated unchanged.
package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/brasil-beauty-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience.
var ErrNotFound = gorm.ErrRecordNotFound

// ErrDuplicateEmail is returned when an account with the same email exists.
var ErrDuplicateEmail = errors.New("email already registered")

// CreateAccount inserts a new account. The email must already be normalized.
func CreateAccount(ctx context.Context, db *gorm.DB, email, name, passwordHash string) (*domain.Account, error) {
	a := &domain.Account{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         name,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(a).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}
	return a, nil
}

// GetAccountByEmail fetches a live account by its normalized email.
func GetAccountByEmail(ctx context.Context, db *gorm.DB, email string) (*domain.Account, error) {
	var a domain.Account
	if err := db.WithContext(ctx).Where("email = ?", email).First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

// GetAccount fetches a live account by ID.
func GetAccount(ctx context.Context, db *gorm.DB, id string) (*domain.Account, error) {
	var a domain.Account
	if err := db.WithContext(ctx).Where("id = ?", id).First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

// UpdateAccountName sets the display name. It returns ErrNotFound when no
// live account has the given ID.
func UpdateAccountName(ctx context.Context, db *gorm.DB, id, name string) error {
	res := db.WithContext(ctx).
		Model(&domain.Account{}).
		Where("id = ?", id).
		Update("name", name)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// isUniqueViolation detects SQLite/GORM unique-constraint failures.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint")
}
