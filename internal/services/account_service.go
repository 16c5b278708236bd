// Package services – AccountService
//
// This file implements visitor accounts and their login sessions. A session
// is a row in the sessions table plus an HS256-signed token whose jti is the
// row ID; logging out revokes the row, so a leaked token stops working even
// before it expires.
//
// Authenticate turns a bearer token into an explicit domain.SessionContext.
// The HTTP middleware calls it once per request and hands the result to the
// handlers that need it.
package services

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/brasil-beauty-backend/internal/domain"
	"github.com/tbourn/brasil-beauty-backend/internal/repo"
	"github.com/tbourn/brasil-beauty-backend/internal/validation"
)

// TokenIssuer is the "iss" claim of every session token.
const TokenIssuer = "brasil-beauty"

// sessionClaims is the signed token payload.
type sessionClaims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

// AuthResult is returned by Signup and Login.
type AuthResult struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
	Account   *domain.Account `json:"account"`
}

// AccountService manages accounts and sessions.
type AccountService struct {
	DB *gorm.DB

	// Secret signs session tokens.
	Secret []byte
	// TTL is the lifetime of a session.
	TTL time.Duration
	// BcryptCost is the hashing cost for new passwords.
	BcryptCost int

	Now func() time.Time
}

// NewAccountService constructs an AccountService with a 7-day session TTL.
func NewAccountService(db *gorm.DB, secret []byte) *AccountService {
	return &AccountService{
		DB:         db,
		Secret:     secret,
		TTL:        7 * 24 * time.Hour,
		BcryptCost: bcrypt.DefaultCost,
		Now:        func() time.Time { return time.Now().UTC() },
	}
}

// Signup creates an account and opens its first session.
func (s *AccountService) Signup(ctx context.Context, in validation.AccountInput) (*AuthResult, error) {
	ctx, span := otel.Tracer("services/AccountService").Start(ctx, "Signup")
	defer span.End()

	in, err := validation.ValidateAccount(in)
	if err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.BcryptCost)
	if err != nil {
		return nil, err
	}

	acc, err := repo.CreateAccount(ctx, s.DB, in.Email, in.Name, string(hash))
	if errors.Is(err, repo.ErrDuplicateEmail) {
		return nil, ErrEmailTaken
	}
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("account.id", acc.ID))
	return s.openSession(ctx, acc)
}

// Login verifies credentials and opens a session. Unknown emails and wrong
// passwords both yield ErrInvalidCredentials.
func (s *AccountService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	ctx, span := otel.Tracer("services/AccountService").Start(ctx, "Login")
	defer span.End()

	acc, err := repo.GetAccountByEmail(ctx, s.DB, validation.NormalizeEmail(email))
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	span.SetAttributes(attribute.String("account.id", acc.ID))
	return s.openSession(ctx, acc)
}

func (s *AccountService) openSession(ctx context.Context, acc *domain.Account) (*AuthResult, error) {
	now := s.Now()
	exp := now.Add(s.TTL)
	sess, err := repo.CreateSession(ctx, s.DB, acc.ID, exp)
	if err != nil {
		return nil, err
	}

	claims := sessionClaims{
		Email: acc.Email,
		Name:  acc.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sess.ID,
			Subject:   acc.ID,
			Issuer:    TokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.Secret)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, ExpiresAt: exp, Account: acc}, nil
}

// Authenticate verifies a session token and returns the session context it
// grants. Any failure (bad signature, expiry, revoked or unknown session,
// deleted account) is ErrUnauthorized.
func (s *AccountService) Authenticate(ctx context.Context, token string) (domain.SessionContext, error) {
	ctx, span := otel.Tracer("services/AccountService").Start(ctx, "Authenticate")
	defer span.End()

	var claims sessionClaims
	_, err := jwt.ParseWithClaims(token, &claims,
		func(*jwt.Token) (any, error) { return s.Secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(TokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.Now),
	)
	if err != nil || claims.ID == "" || claims.Subject == "" {
		return domain.SessionContext{}, ErrUnauthorized
	}

	sess, err := repo.GetSession(ctx, s.DB, claims.ID)
	if errors.Is(err, repo.ErrNotFound) {
		return domain.SessionContext{}, ErrUnauthorized
	}
	if err != nil {
		return domain.SessionContext{}, err
	}
	if !sess.Live(s.Now()) || sess.AccountID != claims.Subject {
		return domain.SessionContext{}, ErrUnauthorized
	}

	acc, err := repo.GetAccount(ctx, s.DB, sess.AccountID)
	if errors.Is(err, repo.ErrNotFound) {
		return domain.SessionContext{}, ErrUnauthorized
	}
	if err != nil {
		return domain.SessionContext{}, err
	}

	span.SetAttributes(attribute.String("account.id", acc.ID))
	return domain.SessionContext{
		AccountID: acc.ID,
		Email:     acc.Email,
		Name:      acc.Name,
		SessionID: sess.ID,
	}, nil
}

// Logout revokes the session behind sc. Logging out twice is harmless.
func (s *AccountService) Logout(ctx context.Context, sc domain.SessionContext) error {
	if !sc.Authenticated() || sc.SessionID == "" {
		return ErrUnauthorized
	}
	ctx, span := otel.Tracer("services/AccountService").Start(ctx, "Logout",
		trace.WithAttributes(attribute.String("account.id", sc.AccountID)),
	)
	defer span.End()

	err := repo.RevokeSession(ctx, s.DB, sc.SessionID, s.Now())
	if errors.Is(err, repo.ErrNotFound) {
		return nil
	}
	return err
}

// Me returns the account behind sc.
func (s *AccountService) Me(ctx context.Context, sc domain.SessionContext) (*domain.Account, error) {
	if !sc.Authenticated() {
		return nil, ErrUnauthorized
	}
	acc, err := repo.GetAccount(ctx, s.DB, sc.AccountID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrUnauthorized
	}
	return acc, err
}

// UpdateName trims and validates name, stores it and returns the updated
// account.
func (s *AccountService) UpdateName(ctx context.Context, sc domain.SessionContext, name string) (*domain.Account, error) {
	if !sc.Authenticated() {
		return nil, ErrUnauthorized
	}
	name, err := validation.ValidateName(name)
	if err != nil {
		return nil, err
	}
	if err := repo.UpdateAccountName(ctx, s.DB, sc.AccountID, name); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	return repo.GetAccount(ctx, s.DB, sc.AccountID)
}

// PurgeExpiredSessions deletes sessions that can no longer authenticate.
func (s *AccountService) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	return repo.PurgeExpiredSessions(ctx, s.DB, s.Now())
}
