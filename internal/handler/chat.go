package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/gracechapel/livestream/internal/chat"
	"github.com/gracechapel/livestream/internal/config"
	"github.com/gracechapel/livestream/internal/repository"
	"github.com/gracechapel/livestream/internal/utils"
)

// ChatHandler exposes the live chat over WebSocket plus a plain history
// endpoint for clients that render the backlog before connecting.
type ChatHandler struct {
	Cfg   config.Config
	Hub   *chat.Hub
	Users *repository.UserRepo
}

func NewChatHandler(cfg config.Config, hub *chat.Hub, users *repository.UserRepo) *ChatHandler {
	return &ChatHandler{Cfg: cfg, Hub: hub, Users: users}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The chat is embedded in the public site; origin policy is enforced by
	// the reverse proxy in front of this service.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWS handles GET /v1/chat/ws.  Authentication is optional: a valid
// bearer token (Authorization header or ?token= for browser WebSocket
// clients, which cannot set headers) attributes messages to the account's
// display name, anyone else joins read-and-write as a numbered guest.
func (h *ChatHandler) ServeWS(c echo.Context) error {
	author := h.resolveAuthor(c)

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade already wrote the error response.
		return nil
	}
	h.Hub.Serve(conn, author)
	return nil
}

// History handles GET /v1/chat/history.
func (h *ChatHandler) History(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	msgs := h.Hub.History(c.Request().Context(), limit)
	return c.JSON(http.StatusOK, echo.Map{"messages": msgs})
}

func (h *ChatHandler) resolveAuthor(c echo.Context) string {
	raw := ""
	if auth := c.Request().Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		raw = strings.TrimPrefix(auth, "Bearer ")
	} else if t := c.QueryParam("token"); t != "" {
		raw = t
	}
	if raw != "" {
		if uid, _, err := utils.ParseAccessToken(h.Cfg.JWTSecret, raw); err == nil {
			ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
			defer cancel()
			if u, err := h.Users.GetByID(ctx, uid); err == nil {
				return u.Name
			}
		}
	}
	return "guest-" + strconv.FormatInt(time.Now().UnixNano()%100000, 10)
}
