package repository

import (
	"context"
	"database/sql"

	"github.com/gracechapel/livestream/internal/model"
)

// EventRepo manages the service schedule.
type EventRepo struct{ DB *sql.DB }

func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{DB: db} }

const eventColumns = "id,title,description,starts_at,ends_at,created_by,created_at,updated_at"

// Create inserts a scheduled event and returns the stored row.
func (r *EventRepo) Create(ctx context.Context, e *model.Event) (*model.Event, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO events (title, description, starts_at, ends_at, created_by) VALUES (?,?,?,?,?)",
		e.Title, e.Description, e.StartsAt, e.EndsAt, e.CreatedBy)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, uint64(id))
}

// Update replaces the mutable fields of an event.
func (r *EventRepo) Update(ctx context.Context, e *model.Event) (*model.Event, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE events SET title=?, description=?, starts_at=?, ends_at=?, updated_at=NOW() WHERE id=?",
		e.Title, e.Description, e.StartsAt, e.EndsAt, e.ID)
	if err != nil {
		return nil, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// Either no such event or a no-op update; probe to tell them apart.
		if _, err := r.GetByID(ctx, e.ID); err != nil {
			return nil, err
		}
	}
	return r.GetByID(ctx, e.ID)
}

// Delete removes an event by id.
func (r *EventRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM events WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByID fetches an event by id.
func (r *EventRepo) GetByID(ctx context.Context, id uint64) (*model.Event, error) {
	e, err := scanEvent(r.DB.QueryRowContext(ctx,
		"SELECT "+eventColumns+" FROM events WHERE id=? LIMIT 1", id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return e, err
}

// ListUpcoming returns events ending at or after now, ordered by start time.
// This is the public schedule; there is no further scheduling logic beyond
// the ORDER BY.
func (r *EventRepo) ListUpcoming(ctx context.Context, limit int) ([]model.Event, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+eventColumns+" FROM events WHERE starts_at >= NOW() OR (ends_at IS NOT NULL AND ends_at >= NOW()) ORDER BY starts_at ASC LIMIT ?",
		limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		e, err := scanEventRows(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

func scanEvent(row *sql.Row) (*model.Event, error) {
	var (
		e      model.Event
		endsAt sql.NullTime
	)
	if err := row.Scan(&e.ID, &e.Title, &e.Description, &e.StartsAt, &endsAt,
		&e.CreatedBy, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	if endsAt.Valid {
		e.EndsAt = &endsAt.Time
	}
	return &e, nil
}

func scanEventRows(rows *sql.Rows) (*model.Event, error) {
	var (
		e      model.Event
		endsAt sql.NullTime
	)
	if err := rows.Scan(&e.ID, &e.Title, &e.Description, &e.StartsAt, &endsAt,
		&e.CreatedBy, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	if endsAt.Valid {
		e.EndsAt = &endsAt.Time
	}
	return &e, nil
}
