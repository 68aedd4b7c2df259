package model

import "time"

// Event is a scheduled service or gathering in the `events` table.  The
// public schedule lists upcoming events ordered by StartsAt.
type Event struct {
    ID          uint64     // events.id
    Title       string     // events.title
    Description string     // events.description
    StartsAt    time.Time  // events.starts_at
    EndsAt      *time.Time // events.ends_at (nullable, open-ended events)
    CreatedBy   uint64     // events.created_by
    CreatedAt   time.Time  // events.created_at
    UpdatedAt   time.Time  // events.updated_at
}
