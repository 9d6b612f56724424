package service

import (
	"errors"

	"netsketch/internal/domain"
)

// Sentinel errors returned by EditorService. Handlers map them to status
// codes with errors.Is.
var (
	ErrDeviceNotFound    = errors.New("device not found")
	ErrLinkNotFound      = errors.New("link not found")
	ErrPortUnavailable   = errors.New("port unavailable")
	ErrInvalidDevice     = errors.New("invalid device")
	ErrInvalidUpdate     = errors.New("invalid device update")
	ErrInvalidSelection  = errors.New("invalid selection")
	ErrNothingToUndo     = errors.New("nothing to undo")
	ErrNothingToRedo     = errors.New("nothing to redo")
	ErrNoSelection       = errors.New("nothing selected")
	ErrSnapshotNotFound  = errors.New("snapshot not found")
	ErrInvalidName       = errors.New("invalid name")
	ErrNoRepository      = errors.New("snapshot library not configured")
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrInvalidDocument is domain.ErrInvalidDocument, re-exported so callers
	// of this package need not import domain for error checks
	ErrInvalidDocument = domain.ErrInvalidDocument
)
