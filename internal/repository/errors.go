// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrNotFound indicates that a requested record does not
// exist, while ErrStreamLive signals that a broadcast cannot be
// started because one is already active.
package repository

import "errors"

// ErrEmailExists is returned when a registration collides with an
// existing account's email address. Handlers should translate this
// into an HTTP 409 response.
var ErrEmailExists = errors.New("email already exists")

// ErrNameExists is returned when a registration collides with an
// existing account's display name. Handlers should translate this
// into an HTTP 409 response.
var ErrNameExists = errors.New("name already exists")

// ErrNotFound is returned when a record does not exist. Handlers
// should translate this into an HTTP 404 response (or 401 for
// credentials lookups).
var ErrNotFound = errors.New("not found")

// ErrStreamLive is returned when starting a broadcast while another
// one is still active. Handlers should translate this into an HTTP
// 409 response.
var ErrStreamLive = errors.New("stream already live")

// ErrStreamNotLive is returned when stopping a broadcast while none
// is active. Handlers should translate this into an HTTP 409
// response.
var ErrStreamNotLive = errors.New("no live stream")
