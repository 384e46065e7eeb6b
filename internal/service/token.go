package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/postpad/postpad-go/internal/crypto"
)

// ErrTokenRevoked means the token verified fine but its jti is on the
// revocation list.
var ErrTokenRevoked = errors.New("token has been revoked")

// RevocationStore persists revoked token ids.
type RevocationStore interface {
	Revoke(ctx context.Context, jti string, at time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// TokenService issues and validates access tokens and maintains the
// revocation list.
type TokenService struct {
	revoked RevocationStore
	secret  string
	ttl     time.Duration
}

// NewTokenService creates a new TokenService.
func NewTokenService(revoked RevocationStore, secret string, ttl time.Duration) *TokenService {
	return &TokenService{revoked: revoked, secret: secret, ttl: ttl}
}

// Issue creates a signed access token for the user with a fresh jti.
func (s *TokenService) Issue(userID int64) (string, error) {
	return crypto.SignToken(userID, uuid.NewString(), s.secret, s.ttl)
}

// Validate checks a presented token and returns its claims. Signature
// and expiry are verified before the revocation list is consulted, so
// garbage tokens never reach the store.
func (s *TokenService) Validate(ctx context.Context, token string) (*crypto.Claims, error) {
	claims, err := crypto.ParseToken(token, s.secret)
	if err != nil {
		return nil, err
	}

	revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrTokenRevoked
	}

	return claims, nil
}

// Revoke puts a token id on the revocation list. Idempotent.
func (s *TokenService) Revoke(ctx context.Context, jti string) error {
	return s.revoked.Revoke(ctx, jti, time.Now().UTC())
}

// PruneRevoked drops revocation entries older than the token TTL. A
// token revoked that long ago has expired on its own, so the entry no
// longer gates anything.
func (s *TokenService) PruneRevoked(ctx context.Context) (int64, error) {
	return s.revoked.DeleteBefore(ctx, time.Now().UTC().Add(-s.ttl))
}
