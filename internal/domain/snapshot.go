package domain

import "time"

// SnapshotInfo describes a named topology snapshot without its content
type SnapshotInfo struct {
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Version     int       `json:"version"`
	Checksum    string    `json:"checksum"`
	DeviceCount int       `json:"device_count"`
	LinkCount   int       `json:"link_count"`
	Size        int       `json:"size"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Snapshot is a saved topology document kept in the snapshot library.
// Data holds the saved JSON text exactly as produced by the store.
type Snapshot struct {
	SnapshotInfo
	Data []byte `json:"-"`
}
