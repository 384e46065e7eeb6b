package repository

import (
	"context"
	"database/sql"
	"time"
)

// TokenRepository persists the revocation list consulted on every
// authenticated request.
type TokenRepository struct {
	db *sql.DB
}

// NewTokenRepository creates a new TokenRepository.
func NewTokenRepository(db *sql.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

// Revoke records a token id as revoked. Revoking the same jti twice is
// a no-op; the unique key absorbs the duplicate insert.
func (r *TokenRepository) Revoke(ctx context.Context, jti string, at time.Time) error {
	query := `INSERT IGNORE INTO revoked_tokens (jti, revoked_at) VALUES (?, ?)`
	_, err := r.db.ExecContext(ctx, query, jti, at)
	return err
}

// IsRevoked reports whether a token id is on the revocation list.
func (r *TokenRepository) IsRevoked(ctx context.Context, jti string) (bool, error) {
	var revoked bool
	query := `SELECT EXISTS(SELECT 1 FROM revoked_tokens WHERE jti = ?)`
	if err := r.db.QueryRowContext(ctx, query, jti).Scan(&revoked); err != nil {
		return false, err
	}
	return revoked, nil
}

// DeleteBefore removes revocation entries recorded before the cutoff
// and returns how many were deleted. Entries that old belong to tokens
// that have expired on their own, so dropping them cannot readmit a
// live token.
func (r *TokenRepository) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM revoked_tokens WHERE revoked_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
