package domain

import (
	"time"

	"gorm.io/gorm"
)

// Account is a registered visitor of the directory. Accounts only gate the
// personal area of the UI; profiles themselves are public.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - Email: lower-cased login identifier, unique among live rows.
//   - Name: display name shown in the navbar and account page.
//   - PasswordHash: bcrypt hash; never serialized.
//   - CreatedAt / UpdatedAt: timestamps managed by GORM.
//   - DeletedAt: soft deletion marker.
type Account struct {
	ID           string         `json:"id"         gorm:"type:char(36);primaryKey"`
	Email        string         `json:"email"      gorm:"type:varchar(320);not null;uniqueIndex:ux_accounts_email"`
	Name         string         `json:"name"       gorm:"type:varchar(255);not null"`
	PasswordHash string         `json:"-"          gorm:"type:varchar(100);not null"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-"          gorm:"index"`
}

// TableName returns the database table name for Account.
func (Account) TableName() string { return "accounts" }

// Session is one issued login. The signed token carries the session ID as
// its jti; a session is live while it is neither expired nor revoked.
type Session struct {
	ID        string     `json:"id"         gorm:"type:char(36);primaryKey"`
	AccountID string     `json:"account_id" gorm:"type:char(36);not null;index:idx_account_sessions"`
	ExpiresAt time.Time  `json:"expires_at" gorm:"not null;index"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`

	Account Account `json:"-" gorm:"foreignKey:AccountID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Session.
func (Session) TableName() string { return "sessions" }

// Live reports whether the session can still authenticate requests at now.
func (s Session) Live(now time.Time) bool {
	return s.RevokedAt == nil && now.Before(s.ExpiresAt)
}

// SessionContext is the explicit, per-request authentication state. It is
// hydrated once from the bearer token and handed to whoever needs it; a zero
// value means "anonymous".
type SessionContext struct {
	AccountID string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	SessionID string `json:"-"`
}

// Authenticated reports whether the context belongs to a signed-in account.
func (s SessionContext) Authenticated() bool { return s.AccountID != "" }
