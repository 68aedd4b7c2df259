package middleware // middleware provides shared request processing for handlers

import (
    "net/http" // http package defines standard HTTP status codes

    "github.com/labstack/echo/v4" // echo provides middleware chaining and context

    "github.com/gracechapel/livestream/internal/model"
    "github.com/gracechapel/livestream/internal/repository"
)

// RequireAdmin returns a middleware that authorizes admin-only endpoints.
// The role is re-fetched from the user store on every request instead of
// trusting the role claim embedded in the access token: a token outlives a
// demotion, and stream control or user management must reflect the CURRENT
// privilege.  It assumes JWTAuth has already stored "user_id" in the context,
// so a request reaching this middleware always carries a valid credential and
// any rejection here is 403, not 401.
func RequireAdmin(users *repository.UserRepo) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            uid, ok := c.Get("user_id").(uint64)
            if !ok || uid == 0 {
                // JWTAuth was not applied; treat as unauthenticated.
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
            }
            u, err := users.GetByID(c.Request().Context(), uid)
            if err != nil {
                // The account behind a valid token no longer exists.
                return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
            }
            if u.Role != model.RoleAdmin {
                return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
            }
            // Refresh the context role with the stored value so handlers see
            // the same source of truth this gate used.
            c.Set("role", u.Role)
            return next(c)
        }
    }
}
