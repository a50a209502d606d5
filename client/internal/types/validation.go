package types

import "errors"

// ------------------------------
// Shared Errors
// ------------------------------

// ErrNotFound is returned when the backend reports 404 for a memory or
// collection id.
var ErrNotFound = errors.New("not found")

// ErrInvalidRequest is returned for requests rejected before any network
// call (empty target set, malformed input).
var ErrInvalidRequest = errors.New("invalid request")

// ErrOperationInProgress is returned when a bulk operation is started while
// another one is still in flight.
var ErrOperationInProgress = errors.New("bulk operation already in progress")

// ErrClientClosed is returned from calls made after Close.
var ErrClientClosed = errors.New("client is closed")
