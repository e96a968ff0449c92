package domain

import "errors"

// ErrNotFound is returned by persistence and service functions when the
// requested resource does not exist.
// Handlers should map this to HTTP 404. Note that the absence of a status
// row for a (user, site) pair is NOT an error — adapters treat it as "no
// prior status"; ErrNotFound is reserved for missing sites.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned when input fails business rule validation
// (e.g. missing required field, coordinate out of range).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrUnauthorized is returned when an operation requires a resolved user
// session and none is available. Status mutations roll back their
// optimistic update when they hit this. Handlers should map it to HTTP 401
// with a "log in to save your changes" message.
var ErrUnauthorized = errors.New("authentication required")

// ErrRemoteUnavailable is returned when the remote backend cannot be
// reached or errors out. Catalog loads recover by falling back to seed
// data; status mutations roll back. Handlers should map it to HTTP 503.
var ErrRemoteUnavailable = errors.New("remote backend unavailable")
