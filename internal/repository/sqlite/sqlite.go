package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"netsketch/internal/domain"
	"netsketch/internal/repository"
)

// Repository implements repository.SnapshotRepository using SQLite
type Repository struct {
	db  *sql.DB
	now func() time.Time
}

var _ repository.SnapshotRepository = (*Repository)(nil)

// New opens (creating if needed) the snapshot database at dbPath
func New(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection keeps :memory: databases shared and writes serialized
	db.SetMaxOpenConns(1)

	repo := &Repository{db: db, now: time.Now}
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return repo, nil
}

func (r *Repository) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS snapshots (
		name TEXT PRIMARY KEY,
		description TEXT,
		version INTEGER NOT NULL,
		checksum TEXT NOT NULL,
		device_count INTEGER NOT NULL DEFAULT 0,
		link_count INTEGER NOT NULL DEFAULT 0,
		size INTEGER NOT NULL,
		data BLOB NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_snapshots_updated ON snapshots(updated_at);
	`

	_, err := r.db.Exec(schema)
	return err
}

// Close closes the database connection
func (r *Repository) Close() error {
	return r.db.Close()
}

// SaveSnapshot upserts a snapshot. created_at survives replacement.
func (r *Repository) SaveSnapshot(ctx context.Context, snap *domain.Snapshot) error {
	if snap == nil || snap.Name == "" {
		return fmt.Errorf("snapshot name is required")
	}

	now := r.now()
	snap.Checksum = repository.Checksum(snap.Data)
	snap.Size = len(snap.Data)
	snap.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO snapshots (name, description, version, checksum, device_count, link_count, size, data, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			description = excluded.description,
			version = excluded.version,
			checksum = excluded.checksum,
			device_count = excluded.device_count,
			link_count = excluded.link_count,
			size = excluded.size,
			data = excluded.data,
			updated_at = excluded.updated_at
	`, snap.Name, stringToNull(snap.Description), snap.Version, snap.Checksum,
		snap.DeviceCount, snap.LinkCount, snap.Size, snap.Data,
		timeToMillis(now), timeToMillis(now))
	if err != nil {
		return fmt.Errorf("failed to save snapshot %s: %w", snap.Name, err)
	}

	// Report the stored creation time, which differs on replacement
	var created int64
	if err := r.db.QueryRowContext(ctx,
		`SELECT created_at FROM snapshots WHERE name = ?`, snap.Name).Scan(&created); err != nil {
		return fmt.Errorf("failed to read snapshot %s: %w", snap.Name, err)
	}
	snap.CreatedAt = millisToTime(created)

	return nil
}

// GetSnapshot loads a snapshot with its data
func (r *Repository) GetSnapshot(ctx context.Context, name string) (*domain.Snapshot, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT name, description, version, checksum, device_count, link_count, size, created_at, updated_at, data
		FROM snapshots WHERE name = ?
	`, name)

	snap := &domain.Snapshot{}
	info, err := scanInfo(row, &snap.Data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("snapshot %s: %w", name, repository.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot %s: %w", name, err)
	}
	snap.SnapshotInfo = info

	return snap, nil
}

// ListSnapshots returns snapshot metadata, most recently updated first
func (r *Repository) ListSnapshots(ctx context.Context) ([]domain.SnapshotInfo, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT name, description, version, checksum, device_count, link_count, size, created_at, updated_at
		FROM snapshots ORDER BY updated_at DESC, name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	infos := make([]domain.SnapshotInfo, 0)
	for rows.Next() {
		info, err := scanInfo(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		infos = append(infos, info)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating snapshots: %w", err)
	}

	return infos, nil
}

// DeleteSnapshot removes a snapshot by name
func (r *Repository) DeleteSnapshot(ctx context.Context, name string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM snapshots WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("failed to delete snapshot %s: %w", name, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete snapshot %s: %w", name, err)
	}
	if n == 0 {
		return fmt.Errorf("snapshot %s: %w", name, repository.ErrNotFound)
	}

	return nil
}
