package client

import (
	"errors"

	"github.com/knowledge-rag/knowledge-rag-go/client/internal/types"
)

// Re-export shared SDK errors so callers compare against a single symbol.
var (
	// ErrNotFound is returned when the backend reports 404 for an id.
	ErrNotFound = types.ErrNotFound

	// ErrInvalidRequest is returned for requests rejected before any
	// network call (empty target set, malformed tag input).
	ErrInvalidRequest = types.ErrInvalidRequest

	// ErrOperationInProgress is returned when a bulk operation is started
	// while another one is still in flight.
	ErrOperationInProgress = types.ErrOperationInProgress

	// ErrClientClosed is returned from calls made after Close.
	ErrClientClosed = types.ErrClientClosed
)

// IsInvalidRequest reports whether err is a pre-dispatch validation error.
func IsInvalidRequest(err error) bool { return errors.Is(err, types.ErrInvalidRequest) }

// IsOperationInProgress reports whether err means the executor was busy.
func IsOperationInProgress(err error) bool { return errors.Is(err, types.ErrOperationInProgress) }

// IsClientClosed reports whether err means the client was already closed.
func IsClientClosed(err error) bool { return errors.Is(err, types.ErrClientClosed) }
