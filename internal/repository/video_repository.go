package repository

import (
	"context"
	"database/sql"

	"github.com/gracechapel/livestream/internal/model"
)

// VideoRepo manages the sermon archive.  Transcoding and upload happen in an
// external pipeline; this repository only stores the resulting metadata.
type VideoRepo struct{ DB *sql.DB }

func NewVideoRepo(db *sql.DB) *VideoRepo { return &VideoRepo{DB: db} }

const videoColumns = "id,title,description,playback_url,thumbnail_url,duration_secs,is_published,published_at,created_by,created_at,updated_at"

// Create registers a new (unpublished) video.
func (r *VideoRepo) Create(ctx context.Context, v *model.Video) (*model.Video, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO videos (title, description, playback_url, thumbnail_url, duration_secs, is_published, created_by) VALUES (?,?,?,?,?,0,?)",
		v.Title, v.Description, v.PlaybackURL, v.ThumbnailURL, v.DurationSecs, v.CreatedBy)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, uint64(id))
}

// SetPublished flips the publish flag.  Publishing an already published video
// is a no-op, so the operation is idempotent.
func (r *VideoRepo) SetPublished(ctx context.Context, id uint64, published bool) (*model.Video, error) {
	var err error
	if published {
		_, err = r.DB.ExecContext(ctx,
			"UPDATE videos SET is_published=1, published_at=COALESCE(published_at, NOW()), updated_at=NOW() WHERE id=?", id)
	} else {
		_, err = r.DB.ExecContext(ctx,
			"UPDATE videos SET is_published=0, published_at=NULL, updated_at=NOW() WHERE id=?", id)
	}
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// Delete removes a video record.
func (r *VideoRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM videos WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByID fetches a video by id regardless of publish state.
func (r *VideoRepo) GetByID(ctx context.Context, id uint64) (*model.Video, error) {
	v, err := scanVideo(r.DB.QueryRowContext(ctx,
		"SELECT "+videoColumns+" FROM videos WHERE id=? LIMIT 1", id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return v, err
}

// GetPublished fetches a video that is visible in the public archive.
func (r *VideoRepo) GetPublished(ctx context.Context, id uint64) (*model.Video, error) {
	v, err := scanVideo(r.DB.QueryRowContext(ctx,
		"SELECT "+videoColumns+" FROM videos WHERE id=? AND is_published=1 LIMIT 1", id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return v, err
}

// ListPublished returns the public archive, most recent first.
func (r *VideoRepo) ListPublished(ctx context.Context, limit int) ([]model.Video, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+videoColumns+" FROM videos WHERE is_published=1 ORDER BY published_at DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectVideos(rows)
}

// ListAll returns every video for the admin dashboard, newest first.
func (r *VideoRepo) ListAll(ctx context.Context, limit int) ([]model.Video, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+videoColumns+" FROM videos ORDER BY created_at DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectVideos(rows)
}

func collectVideos(rows *sql.Rows) ([]model.Video, error) {
	var videos []model.Video
	for rows.Next() {
		var (
			v           model.Video
			publishedAt sql.NullTime
		)
		if err := rows.Scan(&v.ID, &v.Title, &v.Description, &v.PlaybackURL,
			&v.ThumbnailURL, &v.DurationSecs, &v.IsPublished, &publishedAt,
			&v.CreatedBy, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, err
		}
		if publishedAt.Valid {
			v.PublishedAt = &publishedAt.Time
		}
		videos = append(videos, v)
	}
	return videos, rows.Err()
}

func scanVideo(row *sql.Row) (*model.Video, error) {
	var (
		v           model.Video
		publishedAt sql.NullTime
	)
	if err := row.Scan(&v.ID, &v.Title, &v.Description, &v.PlaybackURL,
		&v.ThumbnailURL, &v.DurationSecs, &v.IsPublished, &publishedAt,
		&v.CreatedBy, &v.CreatedAt, &v.UpdatedAt); err != nil {
		return nil, err
	}
	if publishedAt.Valid {
		v.PublishedAt = &publishedAt.Time
	}
	return &v, nil
}
