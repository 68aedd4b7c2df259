package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTokenRepoMock(t *testing.T) (*TokenRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewTokenRepo(db), mock
}

func TestValidateRefreshOK(t *testing.T) {
	repo, mock := newTokenRepoMock(t)

	mock.ExpectQuery("SELECT user_id, expires_at, revoked_at FROM refresh_tokens").
		WithArgs("somehash").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "expires_at", "revoked_at"}).
			AddRow(7, time.Now().UTC().Add(time.Hour), nil))

	uid, err := repo.ValidateRefresh(context.Background(), "somehash")
	require.NoError(t, err)
	assert.Equal(t, uint64(7), uid)
}

func TestValidateRefreshExpired(t *testing.T) {
	repo, mock := newTokenRepoMock(t)

	mock.ExpectQuery("SELECT user_id, expires_at, revoked_at FROM refresh_tokens").
		WithArgs("somehash").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "expires_at", "revoked_at"}).
			AddRow(7, time.Now().UTC().Add(-time.Minute), nil))

	_, err := repo.ValidateRefresh(context.Background(), "somehash")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestValidateRefreshRevoked(t *testing.T) {
	repo, mock := newTokenRepoMock(t)

	mock.ExpectQuery("SELECT user_id, expires_at, revoked_at FROM refresh_tokens").
		WithArgs("somehash").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "expires_at", "revoked_at"}).
			AddRow(7, time.Now().UTC().Add(time.Hour), time.Now().UTC()))

	_, err := repo.ValidateRefresh(context.Background(), "somehash")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}
