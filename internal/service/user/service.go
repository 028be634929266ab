// Package user implements login identities: registration, credential checks,
// password reset and JWT issuance.
package user

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/bebsa/ledger/internal/errs"
	"github.com/bebsa/ledger/internal/ledger"
)

// Repo is the persistence contract for users.
type Repo interface {
	CreateUser(ctx context.Context, u ledger.User) (ledger.User, error)
	UserByName(ctx context.Context, name string) (ledger.User, error)
	UpdateUserPassword(ctx context.Context, id uuid.UUID, hash string) error
}

// TokenTTL is the issued-token lifetime. Sessions are long-lived on purpose:
// the UI runs on a trusted shop device.
const TokenTTL = 365 * 24 * time.Hour

// Service carries the auth use cases.
type Service struct {
	repo   Repo
	secret []byte
}

// New wires the service. secret signs issued tokens.
func New(repo Repo, secret string) *Service {
	return &Service{repo: repo, secret: []byte(secret)}
}

// Register creates a user with a bcrypt-hashed password. Names are unique.
func (s *Service) Register(ctx context.Context, name, password string) (ledger.User, error) {
	missing := make([]string, 0, 2)
	if name == "" {
		missing = append(missing, "name")
	}
	if password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return ledger.User{}, errs.MissingFields(missing...)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return ledger.User{}, err
	}
	return s.repo.CreateUser(ctx, ledger.User{
		ID:           uuid.New(),
		Name:         name,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	})
}

// Login checks the credentials and issues an HS256 token carrying the user
// id and name.
func (s *Service) Login(ctx context.Context, name, password string) (string, error) {
	u, err := s.repo.UserByName(ctx, name)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return "", errs.ErrUnauthorized
		}
		return "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return "", errs.ErrUnauthorized
	}
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userId": u.ID.String(),
		"name":   u.Name,
		"iat":    now.Unix(),
		"exp":    now.Add(TokenTTL).Unix(),
	})
	return token.SignedString(s.secret)
}

// Verify reports whether a user with the given name exists, gating the
// password-reset flow.
func (s *Service) Verify(ctx context.Context, name string) error {
	_, err := s.repo.UserByName(ctx, name)
	return err
}

// ResetPassword replaces the stored hash for the named user.
func (s *Service) ResetPassword(ctx context.Context, name, newPassword string) error {
	missing := make([]string, 0, 2)
	if name == "" {
		missing = append(missing, "name")
	}
	if newPassword == "" {
		missing = append(missing, "newPassword")
	}
	if len(missing) > 0 {
		return errs.MissingFields(missing...)
	}
	u, err := s.repo.UserByName(ctx, name)
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.repo.UpdateUserPassword(ctx, u.ID, string(hash))
}

// Decode returns a token's claims without verifying the signature. The
// client uses this to read its own session; nothing trusts the result.
func (s *Service) Decode(token string) (map[string]any, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, &errs.Validation{Msg: "Invalid token", Fields: []string{"token"}}
	}
	return claims, nil
}

// Parse verifies a token's signature and expiry, returning its claims. Used
// by the auth middleware when authentication is enforced.
func (s *Service) Parse(token string) (map[string]any, error) {
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errs.ErrUnauthorized
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, errs.ErrUnauthorized
	}
	return claims, nil
}
