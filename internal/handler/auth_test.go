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
	"golang.org/x/crypto/bcrypt"

	"github.com/gracechapel/livestream/internal/config"
	"github.com/gracechapel/livestream/internal/repository"
	"github.com/gracechapel/livestream/internal/utils"
)

func testConfig() config.Config {
	return config.Config{
		JWTSecret:      "handler-test-secret",
		AccessTTLMin:   15,
		RefreshTTLDays: 30,
		ResetTTLMin:    30,
		BcryptCost:     bcrypt.MinCost,
	}
}

func newAuthFixture(t *testing.T) (*AuthHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewAuthHandler(testConfig(),
		repository.NewUserRepo(db),
		repository.NewTokenRepo(db),
		nil,
	), mock
}

func postJSON(t *testing.T, h echo.HandlerFunc, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	require.NoError(t, h(e.NewContext(req, rec)))
	return rec
}

func userRow(t *testing.T, id uint64, email, password, role string, approved bool) *sqlmock.Rows {
	t.Helper()
	hash, err := utils.HashPassword(password, bcrypt.MinCost)
	require.NoError(t, err)
	now := time.Now().UTC()
	return sqlmock.NewRows([]string{"id", "name", "email", "password_hash", "role", "is_approved", "created_at", "updated_at"}).
		AddRow(id, "Pat Member", email, hash, role, approved, now, now)
}

func TestLoginUnknownEmail(t *testing.T) {
	h, mock := newAuthFixture(t)
	mock.ExpectQuery("SELECT (.+) FROM users WHERE email=").
		WithArgs("ghost@example.com").
		WillReturnError(sqlmockNoRows())

	rec := postJSON(t, h.Login, "/v1/auth/login",
		`{"email":"Ghost@Example.com","password":"whatever1"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "not registered")
}

func TestLoginWrongPassword(t *testing.T) {
	h, mock := newAuthFixture(t)
	mock.ExpectQuery("SELECT (.+) FROM users WHERE email=").
		WithArgs("pat@example.com").
		WillReturnRows(userRow(t, 3, "pat@example.com", "correct-horse", "user", true))

	rec := postJSON(t, h.Login, "/v1/auth/login",
		`{"email":"pat@example.com","password":"wrong-horse"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "incorrect password")
}

// An unapproved account with the right password is rejected with 403, never
// 401: the credential is valid, the privilege is missing.
func TestLoginUnapprovedAccount(t *testing.T) {
	h, mock := newAuthFixture(t)
	mock.ExpectQuery("SELECT (.+) FROM users WHERE email=").
		WithArgs("pat@example.com").
		WillReturnRows(userRow(t, 3, "pat@example.com", "correct-horse", "user", false))

	rec := postJSON(t, h.Login, "/v1/auth/login",
		`{"email":"pat@example.com","password":"correct-horse"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "account not approved")
}

func TestLoginSuccess(t *testing.T) {
	h, mock := newAuthFixture(t)
	mock.ExpectQuery("SELECT (.+) FROM users WHERE email=").
		WithArgs("pat@example.com").
		WillReturnRows(userRow(t, 3, "pat@example.com", "correct-horse", "user", true))
	mock.ExpectExec("INSERT INTO refresh_tokens").
		WithArgs(uint64(3), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	rec := postJSON(t, h.Login, "/v1/auth/login",
		`{"email":"pat@example.com","password":"correct-horse"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Token string `json:"token"`
		User  map[string]any
		Refresh struct {
			Token string `json:"token"`
		} `json:"refresh"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
	assert.NotEmpty(t, resp.Refresh.Token)

	// The access token must verify against the same secret and carry the
	// account's identity.
	uid, role, err := utils.ParseAccessToken(testConfig().JWTSecret, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), uid)
	assert.Equal(t, "user", role)

	// No password material of any shape in the response body.
	lower := strings.ToLower(rec.Body.String())
	assert.NotContains(t, lower, "password")
	assert.NotContains(t, lower, "hash")
}

func TestRegisterDuplicateEmail(t *testing.T) {
	h, mock := newAuthFixture(t)
	mock.ExpectExec("INSERT INTO users").
		WillReturnError(mysqlDuplicate("users.email"))

	rec := postJSON(t, h.Register, "/v1/auth/register",
		`{"name":"Pat Member","email":"pat@example.com","password":"longenough"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "email already exists")
}

func TestRegisterShortPassword(t *testing.T) {
	h, _ := newAuthFixture(t)
	rec := postJSON(t, h.Register, "/v1/auth/register",
		`{"name":"Pat","email":"pat@example.com","password":"short"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRefreshRevokedToken(t *testing.T) {
	h, mock := newAuthFixture(t)
	revoked := time.Now().UTC().Add(-time.Hour)
	mock.ExpectQuery("SELECT user_id, expires_at, revoked_at FROM refresh_tokens").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "expires_at", "revoked_at"}).
			AddRow(3, time.Now().UTC().Add(24*time.Hour), revoked))

	rec := postJSON(t, h.Refresh, "/v1/auth/refresh",
		`{"refresh_token":"deadbeef"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid refresh")
}

// Rotation must not hand out a new pair while the old refresh token is still
// alive; a failed revoke aborts the exchange.
func TestRefreshAbortsWhenRevokeFails(t *testing.T) {
	h, mock := newAuthFixture(t)
	mock.ExpectQuery("SELECT user_id, expires_at, revoked_at FROM refresh_tokens").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "expires_at", "revoked_at"}).
			AddRow(3, time.Now().UTC().Add(24*time.Hour), nil))
	mock.ExpectExec("UPDATE refresh_tokens SET revoked_at=").
		WillReturnError(mysqlDown())

	rec := postJSON(t, h.Refresh, "/v1/auth/refresh",
		`{"refresh_token":"deadbeef"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), `"refresh"`)
}

func TestLogoutWithoutCredential(t *testing.T) {
	h, _ := newAuthFixture(t)
	rec := postJSON(t, h.Logout, "/v1/auth/logout", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMeUnknownAccount(t *testing.T) {
	h, mock := newAuthFixture(t)
	mock.ExpectQuery("SELECT (.+) FROM users WHERE id=").
		WithArgs(uint64(99)).
		WillReturnError(sqlmockNoRows())

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", uint64(99))
	require.NoError(t, h.Me(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "user not found")
}
