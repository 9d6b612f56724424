// Package repository defines the data access interfaces for netsketch.
//
// The editor keeps its working topology in memory. What lands on disk is a
// library of named snapshots: each one is the exact JSON text Save produced,
// plus a little metadata for listing (checksum, counts, timestamps). The
// repository never interprets the document beyond that.
//
// # SQLite Implementation
//
// The sqlite subpackage implements SnapshotRepository on modernc.org/sqlite
// (pure Go, no cgo) with WAL journaling. The schema is created on open.
//
// # Testing
//
// The sqlite repository is tested against in-memory databases.
package repository
