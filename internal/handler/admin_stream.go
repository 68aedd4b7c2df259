package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/gracechapel/livestream/internal/config"
	"github.com/gracechapel/livestream/internal/model"
	"github.com/gracechapel/livestream/internal/queue"
	"github.com/gracechapel/livestream/internal/repository"
	queue_publisher "github.com/gracechapel/livestream/internal/service"
)

// StreamHandler owns broadcast control.  There is exactly one start and one
// stop endpoint; the database's single-live-stream constraint resolves races
// between two admins.
type StreamHandler struct {
	Cfg     config.Config
	Streams *repository.StreamRepo
}

func NewStreamHandler(cfg config.Config, s *repository.StreamRepo) *StreamHandler {
	return &StreamHandler{Cfg: cfg, Streams: s}
}

type streamPart struct {
	ID        uint64     `json:"id"`
	Title     string     `json:"title"`
	IsLive    bool       `json:"is_live"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
}

// adminStreamPart additionally exposes the RTMP ingest details.  Only admin
// responses carry the stream key.
type adminStreamPart struct {
	streamPart
	StreamKey string `json:"stream_key"`
	IngestURL string `json:"ingest_url"`
}

func toStreamPart(s *model.Stream) streamPart {
	return streamPart{ID: s.ID, Title: s.Title, IsLive: s.IsLive,
		StartedAt: s.StartedAt, EndedAt: s.EndedAt}
}

// Start handles POST /v1/admin/stream/start.  It creates the live stream row
// with a fresh stream key and returns the ingest URL the broadcaster pushes
// RTMP to.  A second start while live answers 409.
func (h *StreamHandler) Start(c echo.Context) error {
	uid, _ := c.Get("user_id").(uint64)
	var body struct {
		Title string `json:"title"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	title := strings.TrimSpace(body.Title)
	if title == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	s, err := h.Streams.Start(ctx, title, uuid.NewString(), uid)
	if err != nil {
		if err == repository.ErrStreamLive {
			return c.JSON(http.StatusConflict, echo.Map{"error": "stream already live"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "start stream failed"})
	}

	// Best effort: downstream consumers (recording trigger, notifications)
	// must not block or fail the admin action.
	_ = queue_publisher.PublishStreamEvent(ctx, queue.StreamEvent{
		Type:      "started",
		StreamID:  s.ID,
		Title:     s.Title,
		StartedBy: s.StartedBy,
		At:        s.StartedAt.Format(time.RFC3339),
	})

	return c.JSON(http.StatusCreated, echo.Map{"stream": adminStreamPart{
		streamPart: toStreamPart(s),
		StreamKey:  s.StreamKey,
		IngestURL:  strings.TrimRight(h.Cfg.RTMPIngestURL, "/") + "/" + s.StreamKey,
	}})
}

// Stop handles POST /v1/admin/stream/stop.  Stopping when nothing is live
// answers 409.
func (h *StreamHandler) Stop(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	s, err := h.Streams.Stop(ctx)
	if err != nil {
		if err == repository.ErrStreamNotLive {
			return c.JSON(http.StatusConflict, echo.Map{"error": "no live stream"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "stop stream failed"})
	}

	at := time.Now().UTC()
	if s.EndedAt != nil {
		at = *s.EndedAt
	}
	_ = queue_publisher.PublishStreamEvent(ctx, queue.StreamEvent{
		Type:      "ended",
		StreamID:  s.ID,
		Title:     s.Title,
		StartedBy: s.StartedBy,
		At:        at.Format(time.RFC3339),
	})

	return c.JSON(http.StatusOK, echo.Map{"stream": toStreamPart(s)})
}
