// Package queue defines message payloads exchanged over the message broker.
package queue

// Queue names.  Both are declared durable by publisher and consumer.
const (
	StreamEventsQueue  = "stream.events"
	PasswordResetQueue = "mail.password_reset"
)

// StreamEvent is published when a broadcast starts or stops.  It contains
// enough information for downstream consumers to log, notify, or trigger the
// recording pipeline without querying the primary database.
type StreamEvent struct {
	Type      string `json:"type"` // "started" | "ended"
	StreamID  uint64 `json:"stream_id"`
	Title     string `json:"title"`
	StartedBy uint64 `json:"started_by"`
	At        string `json:"at"`
}

// PasswordResetRequestedEvent is handed to the mailer service.  It carries
// the raw reset token; the API itself only ever stores the hash.
type PasswordResetRequestedEvent struct {
	UserID      uint64 `json:"user_id"`
	Email       string `json:"email"`
	Name        string `json:"name"`
	Token       string `json:"token"`
	ExpiresAt   string `json:"expires_at"`
	RequestedAt string `json:"requested_at"`
}
