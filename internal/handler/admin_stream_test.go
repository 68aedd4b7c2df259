package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gracechapel/livestream/internal/repository"
)

func newStreamFixture(t *testing.T) (*StreamHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	cfg := testConfig()
	cfg.RTMPIngestURL = "rtmp://media.gracechapel.example/live/"
	return NewStreamHandler(cfg, repository.NewStreamRepo(db)), mock
}

func streamStartRequest(t *testing.T, h *StreamHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/admin/stream/start", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", uint64(2))
	require.NoError(t, h.Start(c))
	return rec
}

func TestStartStreamSuccess(t *testing.T) {
	h, mock := newStreamFixture(t)
	now := time.Now().UTC()
	mock.ExpectExec("INSERT INTO streams").
		WithArgs("Sunday Service", sqlmock.AnyArg(), uint64(2), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectQuery("SELECT (.+) FROM streams WHERE id=").
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "stream_key", "is_live", "started_by", "started_at", "ended_at", "created_at", "updated_at"}).
			AddRow(7, "Sunday Service", "abc-key", true, 2, now, nil, now, now))

	rec := streamStartRequest(t, h, `{"title":"Sunday Service"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Stream struct {
			IsLive    bool   `json:"is_live"`
			StreamKey string `json:"stream_key"`
			IngestURL string `json:"ingest_url"`
		} `json:"stream"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Stream.IsLive)
	assert.Equal(t, "abc-key", resp.Stream.StreamKey)
	assert.Equal(t, "rtmp://media.gracechapel.example/live/abc-key", resp.Stream.IngestURL)
}

// A second start while a broadcast is live loses to the uniqueness constraint
// and answers 409.
func TestStartStreamAlreadyLive(t *testing.T) {
	h, mock := newStreamFixture(t)
	mock.ExpectExec("INSERT INTO streams").
		WillReturnError(mysqlDuplicate("streams.uq_live"))

	rec := streamStartRequest(t, h, `{"title":"Sunday Service"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "stream already live")
}

func TestStartStreamMissingTitle(t *testing.T) {
	h, _ := newStreamFixture(t)
	rec := streamStartRequest(t, h, `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStopStreamWhenOffline(t *testing.T) {
	h, mock := newStreamFixture(t)
	mock.ExpectQuery("SELECT (.+) FROM streams WHERE is_live=1").
		WillReturnError(sqlmockNoRows())

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/admin/stream/stop", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, h.Stop(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "no live stream")
}
