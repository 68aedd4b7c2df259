package model

import "time"

// Stream represents one broadcast session in the `streams` table.  A stream
// row is created when an admin starts a broadcast and closed when it is
// stopped.  The stream key is a random UUID the broadcaster appends to the
// RTMP ingest URL; it is only ever returned to admins.
//
// Fields:
//  ID        – primary key identifier.
//  Title     – service title shown to viewers (e.g. "Sunday Worship").
//  StreamKey – random key authorizing the RTMP publisher.
//  IsLive    – whether the broadcast is currently active.
//  StartedBy – id of the admin who started the stream.
//  StartedAt – when the broadcast went live.
//  EndedAt   – when the broadcast was stopped (null while live).
//  CreatedAt – timestamp of creation.
//  UpdatedAt – timestamp of last update.
type Stream struct {
    ID        uint64     // streams.id
    Title     string     // streams.title
    StreamKey string     // streams.stream_key
    IsLive    bool       // streams.is_live
    StartedBy uint64     // streams.started_by
    StartedAt time.Time  // streams.started_at
    EndedAt   *time.Time // streams.ended_at (nullable)
    CreatedAt time.Time  // streams.created_at
    UpdatedAt time.Time  // streams.updated_at
}
