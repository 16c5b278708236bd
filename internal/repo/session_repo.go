// Package repo implements the data access layer. This file provides GORM
// repository functions for login sessions.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/brasil-beauty-backend/internal/domain"
)

// CreateSession records a new session for accountID valid until expiresAt.
func CreateSession(ctx context.Context, db *gorm.DB, accountID string, expiresAt time.Time) (*domain.Session, error) {
	s := &domain.Session{
		ID:        uuid.NewString(),
		AccountID: accountID,
		ExpiresAt: expiresAt.UTC(),
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(s).Error; err != nil {
		return nil, err
	}
	return s, nil
}

// GetSession fetches a session by ID regardless of its state; callers check
// Session.Live.
func GetSession(ctx context.Context, db *gorm.DB, id string) (*domain.Session, error) {
	var s domain.Session
	if err := db.WithContext(ctx).Where("id = ?", id).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// RevokeSession marks a session revoked at now. Revoking an already revoked
// session is a no-op; an unknown ID yields ErrNotFound.
func RevokeSession(ctx context.Context, db *gorm.DB, id string, now time.Time) error {
	res := db.WithContext(ctx).
		Model(&domain.Session{}).
		Where("id = ? AND revoked_at IS NULL", id).
		Update("revoked_at", now.UTC())
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var n int64
		if err := db.WithContext(ctx).Model(&domain.Session{}).Where("id = ?", id).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return gorm.ErrRecordNotFound
		}
	}
	return nil
}

// PurgeExpiredSessions hard-deletes sessions that expired before now and
// returns how many rows were removed.
func PurgeExpiredSessions(ctx context.Context, db *gorm.DB, now time.Time) (int64, error) {
	res := db.WithContext(ctx).
		Where("expires_at < ?", now.UTC()).
		Delete(&domain.Session{})
	return res.RowsAffected, res.Error
}
