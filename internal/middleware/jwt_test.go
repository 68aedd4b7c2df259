package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gracechapel/livestream/internal/repository"
	"github.com/gracechapel/livestream/internal/utils"
)

const testSecret = "unit-test-secret"

func okHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"user_id": c.Get("user_id"), "role": c.Get("role")})
}

func runMiddleware(t *testing.T, mw echo.MiddlewareFunc, authHeader string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	require.NoError(t, mw(okHandler)(c))
	return rec
}

func TestJWTAuthMissingToken(t *testing.T) {
	rec := runMiddleware(t, JWTAuth(testSecret), "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "missing bearer token")
}

func TestJWTAuthGarbledToken(t *testing.T) {
	rec := runMiddleware(t, JWTAuth(testSecret), "Bearer not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid token")
}

func TestJWTAuthExpiredToken(t *testing.T) {
	tok, err := utils.NewAccessToken(testSecret, 7, "user", -1)
	require.NoError(t, err)
	rec := runMiddleware(t, JWTAuth(testSecret), "Bearer "+tok.Token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthValidToken(t *testing.T) {
	tok, err := utils.NewAccessToken(testSecret, 7, "admin", 15)
	require.NoError(t, err)
	rec := runMiddleware(t, JWTAuth(testSecret), "Bearer "+tok.Token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"user_id":7`)
	assert.Contains(t, rec.Body.String(), `"role":"admin"`)
}

func adminGateContext(t *testing.T, uid uint64) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/admin/users", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if uid != 0 {
		c.Set("user_id", uid)
	}
	return c, rec
}

func adminGateRepo(t *testing.T) (*repository.UserRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return repository.NewUserRepo(db), mock
}

func expectRoleLookup(mock sqlmock.Sqlmock, uid uint64, role string) {
	now := time.Now().UTC()
	mock.ExpectQuery("SELECT (.+) FROM users WHERE id=").
		WithArgs(uid).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "password_hash", "role", "is_approved", "created_at", "updated_at"}).
			AddRow(uid, "Someone", "someone@example.com", "hash", role, true, now, now))
}

func TestRequireAdminAllowsAdmin(t *testing.T) {
	users, mock := adminGateRepo(t)
	expectRoleLookup(mock, 7, "admin")

	c, rec := adminGateContext(t, 7)
	require.NoError(t, RequireAdmin(users)(okHandler)(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAdminRejectsUserRole(t *testing.T) {
	users, mock := adminGateRepo(t)
	expectRoleLookup(mock, 7, "user")

	c, rec := adminGateContext(t, 7)
	require.NoError(t, RequireAdmin(users)(okHandler)(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "forbidden")
}

// A demoted admin carries a token whose role claim still says admin; the
// gate must trust the database, not the claim.
func TestRequireAdminIgnoresStaleClaim(t *testing.T) {
	users, mock := adminGateRepo(t)
	expectRoleLookup(mock, 7, "user")

	c, rec := adminGateContext(t, 7)
	c.Set("role", "admin") // stale claim from an old token
	require.NoError(t, RequireAdmin(users)(okHandler)(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireAdminWithoutAuthContext(t *testing.T) {
	users, _ := adminGateRepo(t)

	c, rec := adminGateContext(t, 0)
	require.NoError(t, RequireAdmin(users)(okHandler)(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
