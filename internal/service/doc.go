// Package service hosts the editing session that the HTTP handlers, the CLI
// and the file watcher drive.
//
// # Session
//
// EditorService wraps one topology.Store behind a mutex and translates the
// store's boolean results into sentinel errors (see errors.go). Every
// successful change publishes an Event and updates the metrics collector.
//
// # Transfer
//
// Save, Load and LoadFile move the topology as version 2 JSON text. Import
// accepts JSON and YAML documents, which replace the topology, and Ansible
// inventories and nmap reports, which are appended as undoable devices.
//
// # Snapshots
//
// When a repository is configured, the session can store the Save() text
// under a name and load it back later.
//
// # Simulation
//
// The simulation clock and message queue are advanced by Tick, usually from
// the RunSimulation ticker, or one interval at a time by StepSimulation.
//
// # Event System
//
// EventBus fans events out to subscribers without blocking; the hub package
// forwards them to browsers over Server-Sent Events.
package service
