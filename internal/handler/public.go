package handler

// public.go serves the unauthenticated surface: live status, the service
// schedule and the published sermon archive. These endpoints return
// sanitized data only — never stream keys, never account records.

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/gracechapel/livestream/internal/repository"
)

// PublicHandler bundles dependencies for guest endpoints.
type PublicHandler struct {
	Streams *repository.StreamRepo
	Events  *repository.EventRepo
	Videos  *repository.VideoRepo
	RDB     *redis.Client // may be nil; viewer counts then read as zero
}

func NewPublicHandler(s *repository.StreamRepo, e *repository.EventRepo, v *repository.VideoRepo, rdb *redis.Client) *PublicHandler {
	return &PublicHandler{Streams: s, Events: e, Videos: v, RDB: rdb}
}

const viewerCountKey = "live:viewers"

// LiveStatus handles GET /v1/live.  The viewer counter is maintained in
// Redis by the media server's playback callbacks; when the key is missing or
// Redis is down the count reads as zero, never a made-up number.
func (h *PublicHandler) LiveStatus(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	s, err := h.Streams.GetLive(ctx)
	if err != nil {
		if err == repository.ErrStreamNotLive {
			return c.JSON(http.StatusOK, echo.Map{"is_live": false, "viewer_count": 0})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load stream failed"})
	}

	viewers := 0
	if h.RDB != nil {
		if v, err := h.RDB.Get(ctx, viewerCountKey).Result(); err == nil {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				viewers = n
			}
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"is_live":      true,
		"stream":       toStreamPart(s),
		"viewer_count": viewers,
	})
}

// ListEvents handles GET /v1/events and returns the upcoming schedule
// ordered by start time.  Supports an optional ?limit= query parameter.
func (h *PublicHandler) ListEvents(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	events, err := h.Events.ListUpcoming(ctx, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list events failed"})
	}
	out := make([]eventPart, 0, len(events))
	for i := range events {
		out = append(out, toEventPart(&events[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"events": out})
}

// ListVideos handles GET /v1/videos: the published archive, newest first.
func (h *PublicHandler) ListVideos(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	videos, err := h.Videos.ListPublished(ctx, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list videos failed"})
	}
	out := make([]videoPart, 0, len(videos))
	for i := range videos {
		out = append(out, toVideoPart(&videos[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"videos": out})
}

// GetVideo handles GET /v1/videos/:id.  Unpublished videos are invisible
// here, indistinguishable from rows that do not exist.
func (h *PublicHandler) GetVideo(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid video id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	v, err := h.Videos.GetPublished(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "video not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load video failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"video": toVideoPart(v)})
}
