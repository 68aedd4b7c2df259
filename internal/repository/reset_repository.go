package repository

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrResetUnavailable reports that the reset-token store is not configured.
var ErrResetUnavailable = errors.New("reset token store unavailable")

// ResetRepo stores password reset tokens in Redis.  Only the SHA-256 hash of
// the raw token is used as the key; the value is the owning user id.  Expiry
// is delegated to Redis TTLs and consumption is a single GETDEL so a token
// can never be redeemed twice, even by concurrent requests.
type ResetRepo struct{ RDB *redis.Client }

func NewResetRepo(rdb *redis.Client) *ResetRepo { return &ResetRepo{RDB: rdb} }

const resetPrefix = "pwreset:"

// Store saves a reset token hash for a user with the given TTL.
func (r *ResetRepo) Store(ctx context.Context, tokenHash string, userID uint64, ttl time.Duration) error {
	if r.RDB == nil {
		return ErrResetUnavailable
	}
	return r.RDB.Set(ctx, resetPrefix+tokenHash, userID, ttl).Err()
}

// Consume atomically fetches and deletes a reset token, returning the owning
// user id.  Missing or expired tokens yield ErrNotFound.
func (r *ResetRepo) Consume(ctx context.Context, tokenHash string) (uint64, error) {
	if r.RDB == nil {
		return 0, ErrResetUnavailable
	}
	val, err := r.RDB.GetDel(ctx, resetPrefix+tokenHash).Result()
	if err == redis.Nil {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseUint(val, 10, 64)
	if err != nil {
		return 0, ErrNotFound
	}
	return id, nil
}
