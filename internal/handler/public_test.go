package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gracechapel/livestream/internal/repository"
)

func newPublicFixture(t *testing.T, rdb *redis.Client) (*PublicHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPublicHandler(
		repository.NewStreamRepo(db),
		repository.NewEventRepo(db),
		repository.NewVideoRepo(db),
		rdb,
	), mock
}

func getLive(t *testing.T, h *PublicHandler) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/live", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, h.LiveStatus(e.NewContext(req, rec)))
	return rec
}

func liveStreamRows(key string) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows([]string{"id", "title", "stream_key", "is_live", "started_by", "started_at", "ended_at", "created_at", "updated_at"}).
		AddRow(1, "Sunday Service", key, true, 2, now, nil, now, now)
}

func TestLiveStatusOffline(t *testing.T) {
	h, mock := newPublicFixture(t, nil)
	mock.ExpectQuery("SELECT (.+) FROM streams WHERE is_live=1").
		WillReturnError(sqlmockNoRows())

	rec := getLive(t, h)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"is_live":false`)
	assert.Contains(t, rec.Body.String(), `"viewer_count":0`)
}

// With no counter backend the viewer count reads as zero; it is never
// invented.
func TestLiveStatusNoCounterBackend(t *testing.T) {
	h, mock := newPublicFixture(t, nil)
	mock.ExpectQuery("SELECT (.+) FROM streams WHERE is_live=1").
		WillReturnRows(liveStreamRows("secret-ingest-key"))

	rec := getLive(t, h)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"is_live":true`)
	assert.Contains(t, rec.Body.String(), `"viewer_count":0`)
}

func TestLiveStatusViewerCount(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	require.NoError(t, mr.Set("live:viewers", "42"))

	h, mock := newPublicFixture(t, rdb)
	mock.ExpectQuery("SELECT (.+) FROM streams WHERE is_live=1").
		WillReturnRows(liveStreamRows("secret-ingest-key"))

	rec := getLive(t, h)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"viewer_count":42`)
}

// The guest payload must never carry the ingest key.
func TestLiveStatusHidesStreamKey(t *testing.T) {
	h, mock := newPublicFixture(t, nil)
	mock.ExpectQuery("SELECT (.+) FROM streams WHERE is_live=1").
		WillReturnRows(liveStreamRows("secret-ingest-key"))

	rec := getLive(t, h)
	assert.NotContains(t, rec.Body.String(), "secret-ingest-key")
	assert.NotContains(t, rec.Body.String(), "stream_key")
}

func TestGetVideoUnpublishedHidden(t *testing.T) {
	h, mock := newPublicFixture(t, nil)
	mock.ExpectQuery("SELECT (.+) FROM videos WHERE id=(.+) AND is_published=1").
		WithArgs(uint64(9)).
		WillReturnError(sqlmockNoRows())

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/videos/9", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("9")
	require.NoError(t, h.GetVideo(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
