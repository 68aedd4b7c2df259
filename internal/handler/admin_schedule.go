package handler // handler package contains admin schedule handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/gracechapel/livestream/internal/model"
	"github.com/gracechapel/livestream/internal/repository"
)

type eventBody struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	StartsAt    string `json:"starts_at"` // RFC3339
	EndsAt      string `json:"ends_at"`   // RFC3339, optional
}

type eventPart struct {
	ID          uint64     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	StartsAt    time.Time  `json:"starts_at"`
	EndsAt      *time.Time `json:"ends_at,omitempty"`
}

func toEventPart(e *model.Event) eventPart {
	return eventPart{ID: e.ID, Title: e.Title, Description: e.Description,
		StartsAt: e.StartsAt, EndsAt: e.EndsAt}
}

// parseEventBody validates and converts the JSON body shared by create and
// update.  ends_at, when present, must come after starts_at.
func parseEventBody(c echo.Context) (*model.Event, error) {
	var body eventBody
	if err := c.Bind(&body); err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	title := strings.TrimSpace(body.Title)
	if title == "" {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "title is required")
	}
	if strings.TrimSpace(body.StartsAt) == "" {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "starts_at is required")
	}
	startsAt, err := time.Parse(time.RFC3339, strings.TrimSpace(body.StartsAt))
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid starts_at format")
	}
	e := &model.Event{
		Title:       title,
		Description: strings.TrimSpace(body.Description),
		StartsAt:    startsAt.UTC(),
	}
	if s := strings.TrimSpace(body.EndsAt); s != "" {
		endsAt, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid ends_at format")
		}
		if !endsAt.After(startsAt) {
			return nil, echo.NewHTTPError(http.StatusBadRequest, "ends_at must be after starts_at")
		}
		u := endsAt.UTC()
		e.EndsAt = &u
	}
	return e, nil
}

// CreateEvent handles POST /v1/admin/events.
func (h *AdminHandler) CreateEvent(c echo.Context) error {
	e, err := parseEventBody(c)
	if err != nil {
		he := err.(*echo.HTTPError)
		return c.JSON(he.Code, echo.Map{"error": he.Message})
	}
	e.CreatedBy, _ = c.Get("user_id").(uint64)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	created, err := h.Events.Create(ctx, e)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create event failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"event": toEventPart(created)})
}

// UpdateEvent handles PUT /v1/admin/events/:id.
func (h *AdminHandler) UpdateEvent(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	e, perr := parseEventBody(c)
	if perr != nil {
		he := perr.(*echo.HTTPError)
		return c.JSON(he.Code, echo.Map{"error": he.Message})
	}
	e.ID = id

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	updated, err := h.Events.Update(ctx, e)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update event failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"event": toEventPart(updated)})
}

// DeleteEvent handles DELETE /v1/admin/events/:id.
func (h *AdminHandler) DeleteEvent(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Events.Delete(ctx, id); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete event failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
