package sqlite

import (
	"database/sql"
	"time"

	"netsketch/internal/domain"
)

// rowScanner is satisfied by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

// scanInfo reads the metadata columns in table order, followed by any extra
// destinations
func scanInfo(row rowScanner, extra ...any) (domain.SnapshotInfo, error) {
	var (
		info        domain.SnapshotInfo
		description sql.NullString
		created     int64
		updated     int64
	)

	dest := []any{
		&info.Name, &description, &info.Version, &info.Checksum,
		&info.DeviceCount, &info.LinkCount, &info.Size, &created, &updated,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return domain.SnapshotInfo{}, err
	}

	info.Description = nullToString(description)
	info.CreatedAt = millisToTime(created)
	info.UpdatedAt = millisToTime(updated)
	return info, nil
}

// nullToString safely converts sql.NullString to string
func nullToString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// stringToNull safely converts string to sql.NullString
func stringToNull(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func timeToMillis(t time.Time) int64 {
	return t.UnixMilli()
}

func millisToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
