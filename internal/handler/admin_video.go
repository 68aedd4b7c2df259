package handler // handler package contains admin video-archive handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/gracechapel/livestream/internal/model"
	"github.com/gracechapel/livestream/internal/repository"
)

type videoPart struct {
	ID           uint64     `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	PlaybackURL  string     `json:"playback_url"`
	ThumbnailURL string     `json:"thumbnail_url,omitempty"`
	DurationSecs uint32     `json:"duration_secs"`
	IsPublished  bool       `json:"is_published"`
	PublishedAt  *time.Time `json:"published_at,omitempty"`
}

func toVideoPart(v *model.Video) videoPart {
	return videoPart{ID: v.ID, Title: v.Title, Description: v.Description,
		PlaybackURL: v.PlaybackURL, ThumbnailURL: v.ThumbnailURL,
		DurationSecs: v.DurationSecs, IsPublished: v.IsPublished, PublishedAt: v.PublishedAt}
}

// ListAllVideos handles GET /v1/admin/videos, including unpublished rows.
func (h *AdminHandler) ListAllVideos(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	videos, err := h.Videos.ListAll(ctx, 0)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list videos failed"})
	}
	out := make([]videoPart, 0, len(videos))
	for i := range videos {
		out = append(out, toVideoPart(&videos[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"videos": out})
}

// CreateVideo handles POST /v1/admin/videos.  The transcoding pipeline runs
// elsewhere; this endpoint registers the resulting playback metadata, always
// unpublished.
func (h *AdminHandler) CreateVideo(c echo.Context) error {
	var body struct {
		Title        string `json:"title"`
		Description  string `json:"description"`
		PlaybackURL  string `json:"playback_url"`
		ThumbnailURL string `json:"thumbnail_url"`
		DurationSecs uint32 `json:"duration_secs"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	title := strings.TrimSpace(body.Title)
	playback := strings.TrimSpace(body.PlaybackURL)
	if title == "" || playback == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title and playback_url are required"})
	}
	uid, _ := c.Get("user_id").(uint64)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	v, err := h.Videos.Create(ctx, &model.Video{
		Title:        title,
		Description:  strings.TrimSpace(body.Description),
		PlaybackURL:  playback,
		ThumbnailURL: strings.TrimSpace(body.ThumbnailURL),
		DurationSecs: body.DurationSecs,
		CreatedBy:    uid,
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create video failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"video": toVideoPart(v)})
}

// SetVideoPublished handles PATCH /v1/admin/videos/:id/publish.  Publishing
// twice leaves published_at at its first value, so the call is idempotent.
func (h *AdminHandler) SetVideoPublished(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid video id"})
	}
	var body struct {
		IsPublished *bool `json:"is_published"`
	}
	if err := c.Bind(&body); err != nil || body.IsPublished == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "is_published required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	v, err := h.Videos.SetPublished(ctx, id, *body.IsPublished)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "video not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update video failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"video": toVideoPart(v)})
}

// DeleteVideo handles DELETE /v1/admin/videos/:id.  Only the metadata row is
// removed; cleaning up the recording on the media host belongs to the
// external pipeline.
func (h *AdminHandler) DeleteVideo(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid video id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Videos.Delete(ctx, id); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "video not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete video failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
