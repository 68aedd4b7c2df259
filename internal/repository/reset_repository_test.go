package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newResetRepo(t *testing.T) (*ResetRepo, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewResetRepo(rdb), mr
}

func TestResetTokenSingleUse(t *testing.T) {
	repo, _ := newResetRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Store(ctx, "tokenhash", 7, time.Minute))

	uid, err := repo.Consume(ctx, "tokenhash")
	require.NoError(t, err)
	assert.Equal(t, uint64(7), uid)

	// Consuming deletes the token; a replay must fail.
	_, err = repo.Consume(ctx, "tokenhash")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResetTokenExpiry(t *testing.T) {
	repo, mr := newResetRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Store(ctx, "tokenhash", 7, time.Minute))
	mr.FastForward(2 * time.Minute)

	_, err := repo.Consume(ctx, "tokenhash")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResetTokenUnknown(t *testing.T) {
	repo, _ := newResetRepo(t)
	_, err := repo.Consume(context.Background(), "never-stored")
	assert.ErrorIs(t, err, ErrNotFound)
}
