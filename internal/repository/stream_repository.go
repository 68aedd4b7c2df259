package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/gracechapel/livestream/internal/model"
)

// StreamRepo manages broadcast sessions.  At most one stream row may have
// is_live=1 at a time; the partial unique index on (is_live) enforces this in
// the database so two admins racing to start a broadcast cannot both win.
type StreamRepo struct{ DB *sql.DB }

func NewStreamRepo(db *sql.DB) *StreamRepo { return &StreamRepo{DB: db} }

const streamColumns = "id,title,stream_key,is_live,started_by,started_at,ended_at,created_at,updated_at"

// Start inserts a new live stream row.  A duplicate-key error on the
// live-uniqueness index maps to ErrStreamLive.
func (r *StreamRepo) Start(ctx context.Context, title, streamKey string, startedBy uint64) (*model.Stream, error) {
	now := time.Now().UTC()
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO streams (title, stream_key, is_live, started_by, started_at) VALUES (?,?,1,?,?)",
		title, streamKey, startedBy, now)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return nil, ErrStreamLive
		}
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, uint64(id))
}

// Stop ends the currently live stream.  Returns ErrStreamNotLive when no
// broadcast is active.
func (r *StreamRepo) Stop(ctx context.Context) (*model.Stream, error) {
	live, err := r.GetLive(ctx)
	if err != nil {
		return nil, err
	}
	_, err = r.DB.ExecContext(ctx,
		"UPDATE streams SET is_live=0, ended_at=NOW(), updated_at=NOW() WHERE id=? AND is_live=1",
		live.ID)
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, live.ID)
}

// GetLive returns the active stream or ErrStreamNotLive.
func (r *StreamRepo) GetLive(ctx context.Context) (*model.Stream, error) {
	s, err := r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+streamColumns+" FROM streams WHERE is_live=1 LIMIT 1"))
	if err == sql.ErrNoRows {
		return nil, ErrStreamNotLive
	}
	return s, err
}

// GetByID fetches a stream by id.
func (r *StreamRepo) GetByID(ctx context.Context, id uint64) (*model.Stream, error) {
	s, err := r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+streamColumns+" FROM streams WHERE id=? LIMIT 1", id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return s, err
}

func (r *StreamRepo) scanOne(row *sql.Row) (*model.Stream, error) {
	var (
		s       model.Stream
		endedAt sql.NullTime
	)
	err := row.Scan(&s.ID, &s.Title, &s.StreamKey, &s.IsLive, &s.StartedBy,
		&s.StartedAt, &endedAt, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if endedAt.Valid {
		s.EndedAt = &endedAt.Time
	}
	return &s, nil
}
