package repository

import (
	"context"
	"encoding/hex"
	"errors"

	"golang.org/x/crypto/blake2b"

	"netsketch/internal/domain"
)

// ErrNotFound is returned when a requested snapshot does not exist
var ErrNotFound = errors.New("not found")

// SnapshotRepository stores named topology snapshots
type SnapshotRepository interface {
	// SaveSnapshot creates or replaces the snapshot with the same name.
	// Checksum, Size and timestamps are filled in by the repository.
	SaveSnapshot(ctx context.Context, snap *domain.Snapshot) error
	GetSnapshot(ctx context.Context, name string) (*domain.Snapshot, error)
	// ListSnapshots returns metadata only, most recently updated first
	ListSnapshots(ctx context.Context) ([]domain.SnapshotInfo, error)
	DeleteSnapshot(ctx context.Context, name string) error

	// Close releases resources
	Close() error
}

// Checksum returns the hex blake2b-256 digest of a saved document
func Checksum(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}
