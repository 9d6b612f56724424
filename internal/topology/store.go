// Package topology implements the editor's topology store: devices, links,
// selection, and an undo/redo command log over graph mutations.
//
// A Store is not safe for concurrent use. Callers that share one across
// goroutines must serialize access (see service.EditorService).
package topology

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"netsketch/internal/domain"
)

// Store owns the device and link collections of one editing session
type Store struct {
	devices   *ordered[domain.Device]
	links     *ordered[domain.Link]
	selection domain.Selection
	history   *history

	newID func() string
	now   func() time.Time
}

// Option configures a Store
type Option func(*Store)

// WithIDGenerator replaces the uuid generator used for devices and links
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) {
		s.newID = fn
	}
}

// WithClock replaces the wall clock used for log and save timestamps
func WithClock(fn func() time.Time) Option {
	return func(s *Store) {
		s.now = fn
	}
}

// WithHistoryCapacity overrides DefaultHistoryCapacity
func WithHistoryCapacity(n int) Option {
	return func(s *Store) {
		s.history = newHistory(n)
	}
}

// New creates an empty store
func New(opts ...Option) *Store {
	s := &Store{
		devices: newOrdered[domain.Device](),
		links:   newOrdered[domain.Link](),
		history: newHistory(DefaultHistoryCapacity),
		newID:   uuid.NewString,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DeviceOption overrides a default of a device being added
type DeviceOption func(*domain.Device)

// WithName sets the device name
func WithName(name string) DeviceOption {
	return func(d *domain.Device) {
		d.Name = name
	}
}

// WithGroup places the device in a group
func WithGroup(group string) DeviceOption {
	return func(d *domain.Device) {
		d.Group = group
	}
}

// WithPorts replaces the default port layout
func WithPorts(ports []domain.Port) DeviceOption {
	return func(d *domain.Device) {
		d.Ports = make([]domain.Port, len(ports))
		copy(d.Ports, ports)
	}
}

// WithApps replaces the default installed applications
func WithApps(apps ...string) DeviceOption {
	return func(d *domain.Device) {
		d.Apps = append([]string{}, apps...)
	}
}

// WithField sets an extra device field
func WithField(key string, value any) DeviceOption {
	return func(d *domain.Device) {
		d.SetField(key, value)
	}
}

// WithOverrides shallow-merges a JSON-shaped config onto the device. Values
// of the wrong shape leave the device unchanged; validate beforehand with
// domain.Device.Merge when the input is untrusted.
func WithOverrides(config map[string]any) DeviceOption {
	return func(d *domain.Device) {
		merged, err := d.Merge(config)
		if err != nil {
			return
		}
		*d = *merged
	}
}

// AddDevice places a new device and returns its id
func (s *Store) AddDevice(t domain.DeviceType, x, y float64, opts ...DeviceOption) string {
	device := &domain.Device{
		ID:    s.newID(),
		Type:  t,
		X:     x,
		Y:     y,
		Name:  fmt.Sprintf("%s-%d", t, s.devices.len()+1),
		Ports: domain.DefaultPorts(t),
		Apps:  domain.DefaultApps(t),
	}
	for _, opt := range opts {
		opt(device)
	}

	s.devices.set(device.ID, device)
	s.record(&AddDeviceCommand{device: device.Clone()})

	return device.ID
}

// RemoveDevice deletes a device and every link attached to it. Each link
// removal is recorded on its own before the device removal.
func (s *Store) RemoveDevice(id string) bool {
	device, ok := s.devices.get(id)
	if !ok {
		return false
	}

	var (
		attached  []*domain.Link
		positions []int
	)
	for i, l := range s.links.values() {
		if l.Touches(id) {
			attached = append(attached, l.Clone())
			positions = append(positions, i)
		}
	}
	for _, l := range attached {
		s.RemoveLink(l.ID)
	}

	snapshot := device.Clone()
	pos := s.devices.indexOf(id)
	s.devices.delete(id)

	if s.selection.ID == id {
		s.ClearSelection()
	}

	s.record(&RemoveDeviceCommand{device: snapshot, pos: pos, links: attached, linkPos: positions})

	return true
}

// UpdateDevice shallow-merges updates onto a device. It returns false when
// the device is unknown or an update value has the wrong shape.
func (s *Store) UpdateDevice(id string, updates map[string]any) bool {
	device, ok := s.devices.get(id)
	if !ok {
		return false
	}

	merged, err := device.Merge(updates)
	if err != nil {
		return false
	}

	before := device.Clone()
	s.devices.set(id, merged)
	s.record(&UpdateDeviceCommand{before: before, after: merged.Clone()})

	return true
}

// MoveDevice changes a device's position without recording a command
func (s *Store) MoveDevice(id string, x, y float64) bool {
	device, ok := s.devices.get(id)
	if !ok {
		return false
	}
	device.X = x
	device.Y = y
	return true
}

// AddLink connects two free ports and returns the new link id
func (s *Store) AddLink(device1ID string, port1 int, device2ID string, port2 int) (string, bool) {
	device1, ok := s.devices.get(device1ID)
	if !ok {
		return "", false
	}
	device2, ok := s.devices.get(device2ID)
	if !ok {
		return "", false
	}
	if device1ID == device2ID && port1 == port2 {
		return "", false
	}
	if !device1.PortAvailable(port1) || !device2.PortAvailable(port2) {
		return "", false
	}

	link := domain.NewLink(s.newID(), device1ID, port1, device2ID, port2)
	s.links.set(link.ID, link)

	p1, _ := device1.Port(port1)
	p1.Occupy(link.ID)
	p2, _ := device2.Port(port2)
	p2.Occupy(link.ID)

	s.record(&AddLinkCommand{link: link.Clone()})

	return link.ID, true
}

// RemoveLink deletes a link and frees the ports it occupied
func (s *Store) RemoveLink(id string) bool {
	link, ok := s.links.get(id)
	if !ok {
		return false
	}

	s.freePort(link.Device1, link.Port1)
	s.freePort(link.Device2, link.Port2)

	pos := s.links.indexOf(id)
	s.links.delete(id)

	if s.selection.ID == id {
		s.ClearSelection()
	}

	s.record(&RemoveLinkCommand{link: link.Clone(), pos: pos})

	return true
}

func (s *Store) freePort(deviceID string, index int) {
	device, ok := s.devices.get(deviceID)
	if !ok {
		return
	}
	if p, ok := device.Port(index); ok {
		p.Free()
	}
}

// Select marks an element as the current selection
func (s *Store) Select(id string, kind domain.ElementKind) {
	s.selection = domain.Selection{ID: id, Kind: kind}
}

// ClearSelection drops the current selection
func (s *Store) ClearSelection() {
	s.selection = domain.Selection{}
}

// Selection returns the current selection
func (s *Store) Selection() domain.Selection {
	return s.selection
}

// HasSelection reports whether an element is selected
func (s *Store) HasSelection() bool {
	return !s.selection.IsEmpty()
}

// DeleteSelected removes the selected device or link
func (s *Store) DeleteSelected() bool {
	if s.selection.IsEmpty() {
		return false
	}

	switch s.selection.Kind {
	case domain.ElementDevice:
		return s.RemoveDevice(s.selection.ID)
	case domain.ElementLink:
		return s.RemoveLink(s.selection.ID)
	}
	return false
}

// Undo reverts the command at the cursor
func (s *Store) Undo() bool {
	if !s.history.canUndo() {
		return false
	}

	s.history.entries[s.history.index].cmd.undo(s)
	s.history.index--
	s.afterReplay()

	return true
}

// Redo replays the command after the cursor
func (s *Store) Redo() bool {
	if !s.history.canRedo() {
		return false
	}

	s.history.index++
	s.history.entries[s.history.index].cmd.redo(s)
	s.afterReplay()

	return true
}

// CanUndo reports whether Undo would do anything
func (s *Store) CanUndo() bool {
	return s.history.canUndo()
}

// CanRedo reports whether Redo would do anything
func (s *Store) CanRedo() bool {
	return s.history.canRedo()
}

// History returns a read-only view of the command log
func (s *Store) History() HistoryState {
	return s.history.state()
}

func (s *Store) record(cmd Command) {
	s.history.record(cmd, s.now())
}

// afterReplay rebuilds derived state after undo or redo. Stored device
// snapshots carry whatever port state they had when captured; the live link
// set is authoritative.
func (s *Store) afterReplay() {
	s.reconcilePorts()

	switch s.selection.Kind {
	case domain.ElementDevice:
		if _, ok := s.devices.get(s.selection.ID); !ok {
			s.ClearSelection()
		}
	case domain.ElementLink:
		if _, ok := s.links.get(s.selection.ID); !ok {
			s.ClearSelection()
		}
	}
}

// reconcilePorts recomputes every port's connected flag and link reference
// from the link collection
func (s *Store) reconcilePorts() {
	for _, d := range s.devices.values() {
		for i := range d.Ports {
			d.Ports[i].Free()
		}
	}
	for _, l := range s.links.values() {
		s.occupyPort(l.Device1, l.Port1, l.ID)
		s.occupyPort(l.Device2, l.Port2, l.ID)
	}
}

func (s *Store) occupyPort(deviceID string, index int, linkID string) {
	device, ok := s.devices.get(deviceID)
	if !ok {
		return
	}
	if p, ok := device.Port(index); ok {
		p.Occupy(linkID)
	}
}

// Device returns a copy of a device
func (s *Store) Device(id string) (domain.Device, bool) {
	d, ok := s.devices.get(id)
	if !ok {
		return domain.Device{}, false
	}
	return *d.Clone(), true
}

// Link returns a copy of a link
func (s *Store) Link(id string) (domain.Link, bool) {
	l, ok := s.links.get(id)
	if !ok {
		return domain.Link{}, false
	}
	return *l, true
}

// Devices returns copies of all devices in insertion order
func (s *Store) Devices() []domain.Device {
	out := make([]domain.Device, 0, s.devices.len())
	for _, d := range s.devices.values() {
		out = append(out, *d.Clone())
	}
	return out
}

// Links returns copies of all links in insertion order
func (s *Store) Links() []domain.Link {
	out := make([]domain.Link, 0, s.links.len())
	for _, l := range s.links.values() {
		out = append(out, *l)
	}
	return out
}

// DeviceCount returns the number of devices
func (s *Store) DeviceCount() int {
	return s.devices.len()
}

// LinkCount returns the number of links
func (s *Store) LinkCount() int {
	return s.links.len()
}
