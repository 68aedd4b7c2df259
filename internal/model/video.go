package model

import "time"

// Video is an archived sermon recording in the `videos` table.  Rows are
// created unpublished once the external transcoding pipeline has produced a
// playback URL; only published videos appear in the public archive.
//
// Fields:
//  ID           – primary key identifier.
//  Title        – sermon title.
//  Description  – free-form description shown in the archive.
//  PlaybackURL  – URL of the transcoded recording on the media host.
//  ThumbnailURL – URL of the generated thumbnail (may be empty).
//  DurationSecs – recording length in seconds as reported by the transcoder.
//  IsPublished  – whether the video is visible in the public archive.
//  PublishedAt  – when the video was published (null while unpublished).
//  CreatedBy    – id of the admin who registered the video.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type Video struct {
    ID           uint64     // videos.id
    Title        string     // videos.title
    Description  string     // videos.description
    PlaybackURL  string     // videos.playback_url
    ThumbnailURL string     // videos.thumbnail_url
    DurationSecs uint32     // videos.duration_secs
    IsPublished  bool       // videos.is_published
    PublishedAt  *time.Time // videos.published_at (nullable)
    CreatedBy    uint64     // videos.created_by
    CreatedAt    time.Time  // videos.created_at
    UpdatedAt    time.Time  // videos.updated_at
}
