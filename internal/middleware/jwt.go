package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
    "net/http"               // HTTP status codes for responses
    "strings"                // string utilities for prefix checking and trimming

    "github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers

    "github.com/gracechapel/livestream/internal/utils" // token parsing helpers
)

// JWTAuth returns an Echo middleware that validates a Bearer access token and
// injects the token's subject and role claims into the request context.  The
// provided secret must match the one used when issuing tokens.  This
// middleware should wrap protected routes so that handlers can access
// authenticated user information via `c.Get("user_id")` and `c.Get("role")`.
//
// Status convention: a missing or garbled credential is always 401.  403 is
// reserved for requests that did authenticate but lack privilege; that
// decision belongs to the role middleware, which must run after this one.
func JWTAuth(secret string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            // Read the Authorization header.  A valid header starts with
            // "Bearer " followed by the JWT.  If it doesn't, respond with 401
            // Unauthorized indicating that authentication is required.
            auth := c.Request().Header.Get("Authorization")
            if !strings.HasPrefix(auth, "Bearer ") {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
            }
            raw := strings.TrimPrefix(auth, "Bearer ")

            // Verification of signature, algorithm and expiry lives in one
            // place so the /me endpoint and this middleware can never drift.
            uid, role, err := utils.ParseAccessToken(secret, raw)
            if err != nil {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
            }

            // Store the subject (user ID) and role claims in the context.
            // Handlers and downstream middleware access these via c.Get().
            c.Set("user_id", uid)
            c.Set("role", role)
            return next(c)
        }
    }
}
