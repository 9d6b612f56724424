// Package domain defines the core domain types for the netsketch topology editor.
//
// This package contains the entities and value objects the editor works on:
// devices with their ports, links between ports, the current selection, and
// the versioned document used to save and load a topology.
//
// # Core Types
//
// Device represents a piece of network equipment (computer, switch, router,
// server, ...) placed on the canvas. Each device owns an ordered list of
// ports and a list of installed applications. Arbitrary extra fields are
// kept alongside the typed fields and serialized inline.
//
// Port is a fixed slot on a device. A port is connected iff exactly one
// link references it.
//
// Link connects one device port to another.
//
// Document is the persisted form of a topology (format version 2).
//
// # Design Principles
//
// - Value types with explicit Clone methods; nothing here aliases store state
// - No database or external dependencies
// - Defaults per device type live next to the types they describe
package domain
