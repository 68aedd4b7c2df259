package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/gracechapel/livestream/internal/handler"    // import the handlers that implement business logic
	"github.com/gracechapel/livestream/internal/middleware" // import middleware for JWT authentication and role enforcement
	"github.com/gracechapel/livestream/internal/repository"
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check, which
// is also exempt from rate limiting.
func RegisterRoutes(e *echo.Echo) {
	// Map the GET request at path "/healthz" to the Health handler.  This
	// endpoint can be used by load balancers or monitoring systems to verify
	// that the service is up and running.
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication‑related routes and applies the
// necessary middleware.  Unauthenticated operations live under /v1/auth and
// carry the strict auth rate-limit bucket on top of the global general
// bucket; the protected /v1/me endpoint requires a valid access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string, authLimit echo.MiddlewareFunc) {
	// Credential-bearing endpoints share the auth bucket so password
	// guessing is throttled per client address regardless of which entry
	// point is abused.
	g := e.Group("/v1/auth", authLimit)
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	// Refresh rotates the refresh token; refresh-access reuses it.
	g.POST("/refresh", a.Refresh)
	g.POST("/refresh-access", a.RefreshAccess)
	// Logout does not require JWT middleware: it accepts either a bearer
	// token (revoke all sessions) or a refresh_token body (revoke one).
	g.POST("/logout", a.Logout)
	// Password reset: request is always 202, confirm consumes the token.
	g.POST("/password/forgot", a.ForgotPassword)
	g.POST("/password/reset", a.ResetPassword)

	// Token verification endpoint.  JWTAuth runs first, so a missing or
	// garbled credential answers 401 before the handler is reached.
	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.GET("/me", a.Me)
}

// RegisterPublic registers unauthenticated browse endpoints: live stream
// status, the service schedule, the published sermon archive and the chat.
// Read endpoints use the static rate bucket and the Redis response cache.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, ch *handler.ChatHandler, staticLimit, cache echo.MiddlewareFunc) {
	e.GET("/v1/live", p.LiveStatus, staticLimit)
	e.GET("/v1/events", p.ListEvents, staticLimit, cache)
	e.GET("/v1/videos", p.ListVideos, staticLimit, cache)
	e.GET("/v1/videos/:id", p.GetVideo, staticLimit, cache)

	// Chat: the WebSocket upgrade must not pass through the response cache.
	e.GET("/v1/chat/ws", ch.ServeWS)
	e.GET("/v1/chat/history", ch.History, staticLimit)
}

// RegisterAdmin registers the admin dashboard surface.  Every route requires
// a valid access token AND a database-confirmed admin role: JWTAuth answers
// 401 for missing/garbled credentials, RequireAdmin answers 403 when the
// stored role is not admin.  Demoting an admin therefore locks them out on
// their very next request, even with an unexpired token.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, s *handler.StreamHandler, users *repository.UserRepo, jwtSecret string) {
	g := e.Group("/v1/admin")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireAdmin(users))

	// User management: review registrations, approve accounts, change roles.
	g.GET("/users", a.ListUsers)
	g.PATCH("/users/:id/approval", a.SetApproval)
	g.PATCH("/users/:id/role", a.SetRole)

	// Broadcast control.
	g.POST("/stream/start", s.Start)
	g.POST("/stream/stop", s.Stop)

	// Schedule CRUD.
	g.POST("/events", a.CreateEvent)
	g.PUT("/events/:id", a.UpdateEvent)
	g.DELETE("/events/:id", a.DeleteEvent)

	// Sermon archive management.
	g.GET("/videos", a.ListAllVideos)
	g.POST("/videos", a.CreateVideo)
	g.PATCH("/videos/:id/publish", a.SetVideoPublished)
	g.DELETE("/videos/:id", a.DeleteVideo)
}
