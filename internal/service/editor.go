package service

import (
	"fmt"
	"sort"
	"sync"

	"netsketch/internal/domain"
	"netsketch/internal/logging"
	"netsketch/internal/metrics"
	"netsketch/internal/repository"
	"netsketch/internal/simulation"
	"netsketch/internal/topology"
)

// EditorService hosts one editing session: the topology store, the
// simulation and the snapshot library. Every method takes the session lock,
// so HTTP handlers, the file watcher and the simulation ticker behave as a
// single writer.
type EditorService struct {
	mu       sync.Mutex
	store    *topology.Store
	clock    *simulation.Clock
	messages *simulation.Queue

	bus     *EventBus
	repo    repository.SnapshotRepository
	metrics *metrics.EditorCollector
}

// Option configures an EditorService
type Option func(*EditorService)

// WithStore uses an existing store instead of an empty one
func WithStore(store *topology.Store) Option {
	return func(s *EditorService) {
		s.store = store
	}
}

// WithRepository enables the snapshot library
func WithRepository(repo repository.SnapshotRepository) Option {
	return func(s *EditorService) {
		s.repo = repo
	}
}

// WithMetrics reports operations and topology size to a collector
func WithMetrics(m *metrics.EditorCollector) Option {
	return func(s *EditorService) {
		s.metrics = m
	}
}

// NewEditorService creates an editing session publishing to bus
func NewEditorService(bus *EventBus, opts ...Option) *EditorService {
	if bus == nil {
		bus = NewEventBus()
	}
	s := &EditorService{
		store:    topology.New(),
		clock:    simulation.NewClock(),
		messages: simulation.NewQueue(),
		bus:      bus,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.refreshGauges()
	return s
}

// TopologyView is everything a client needs to render the canvas
type TopologyView struct {
	Devices     []domain.Device  `json:"devices"`
	Links       []domain.Link    `json:"links"`
	Selection   domain.Selection `json:"selection"`
	DeviceCount int              `json:"device_count"`
	LinkCount   int              `json:"link_count"`
	CanUndo     bool             `json:"can_undo"`
	CanRedo     bool             `json:"can_redo"`
}

// Topology returns the current devices, links and editor state
func (s *EditorService) Topology() TopologyView {
	s.mu.Lock()
	defer s.mu.Unlock()

	return TopologyView{
		Devices:     s.store.Devices(),
		Links:       s.store.Links(),
		Selection:   s.store.Selection(),
		DeviceCount: s.store.DeviceCount(),
		LinkCount:   s.store.LinkCount(),
		CanUndo:     s.store.CanUndo(),
		CanRedo:     s.store.CanRedo(),
	}
}

// Device returns a single device
func (s *EditorService) Device(id string) (domain.Device, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	device, ok := s.store.Device(id)
	if !ok {
		return domain.Device{}, fmt.Errorf("%w: %s", ErrDeviceNotFound, id)
	}
	return device, nil
}

// Link returns a single link
func (s *EditorService) Link(id string) (domain.Link, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	link, ok := s.store.Link(id)
	if !ok {
		return domain.Link{}, fmt.Errorf("%w: %s", ErrLinkNotFound, id)
	}
	return link, nil
}

// AddDeviceRequest describes a device to place on the canvas
type AddDeviceRequest struct {
	Type   domain.DeviceType `json:"type"`
	X      float64           `json:"x"`
	Y      float64           `json:"y"`
	Config map[string]any    `json:"config,omitempty"`
}

// AddDevice places a device with type defaults and the given overrides
func (s *EditorService) AddDevice(req AddDeviceRequest) (domain.Device, error) {
	if req.Type == "" {
		return domain.Device{}, fmt.Errorf("%w: type is required", ErrInvalidDevice)
	}

	var opts []topology.DeviceOption
	if len(req.Config) > 0 {
		probe := &domain.Device{Type: req.Type}
		if _, err := probe.Merge(req.Config); err != nil {
			return domain.Device{}, fmt.Errorf("%w: %v", ErrInvalidDevice, err)
		}
		opts = append(opts, topology.WithOverrides(req.Config))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.store.AddDevice(req.Type, req.X, req.Y, opts...)
	device, _ := s.store.Device(id)

	s.observe(topology.ActionAddDevice, true)
	s.bus.Publish(Event{Type: EventDeviceAdded, Payload: device})
	logging.WithOperation("add_device").WithField("device", id).
		Debugf("added %s %q", device.Type, device.Name)

	return device, nil
}

// RemoveDevice deletes a device and every link attached to it
func (s *EditorService) RemoveDevice(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removeDevice(id)
}

func (s *EditorService) removeDevice(id string) error {
	sel := s.store.Selection()
	before := s.linkIDs()
	if !s.store.RemoveDevice(id) {
		s.observe(topology.ActionRemoveDevice, false)
		return fmt.Errorf("%w: %s", ErrDeviceNotFound, id)
	}

	removed := diffIDs(before, s.linkIDs())
	s.observe(topology.ActionRemoveDevice, true)
	s.bus.Publish(Event{Type: EventDeviceRemoved, Payload: map[string]any{
		"device_id": id,
		"link_ids":  removed,
	}})
	s.publishSelection(sel)
	logging.WithOperation("remove_device").WithField("device", id).
		Debugf("removed with %d links", len(removed))

	return nil
}

// UpdateDevice shallow-merges updates onto a device and returns the result
func (s *EditorService) UpdateDevice(id string, updates map[string]any) (domain.Device, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.store.Device(id); !ok {
		s.observe(topology.ActionUpdateDevice, false)
		return domain.Device{}, fmt.Errorf("%w: %s", ErrDeviceNotFound, id)
	}
	if !s.store.UpdateDevice(id, updates) {
		s.observe(topology.ActionUpdateDevice, false)
		return domain.Device{}, fmt.Errorf("%w: %s", ErrInvalidUpdate, id)
	}

	device, _ := s.store.Device(id)
	s.observe(topology.ActionUpdateDevice, true)
	s.bus.Publish(Event{Type: EventDeviceUpdated, Payload: device})

	return device, nil
}

// MoveDevice repositions a device. Moves are not undoable.
func (s *EditorService) MoveDevice(id string, x, y float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.store.MoveDevice(id, x, y) {
		return fmt.Errorf("%w: %s", ErrDeviceNotFound, id)
	}

	s.bus.Publish(Event{Type: EventDeviceMoved, Payload: map[string]any{
		"device_id": id,
		"x":         x,
		"y":         y,
	}})
	return nil
}

// AddLinkRequest names the two ports to connect
type AddLinkRequest struct {
	Device1 string `json:"device1"`
	Port1   int    `json:"port1"`
	Device2 string `json:"device2"`
	Port2   int    `json:"port2"`
}

// AddLink connects two free ports
func (s *EditorService) AddLink(req AddLinkRequest) (domain.Link, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range []string{req.Device1, req.Device2} {
		if _, ok := s.store.Device(id); !ok {
			s.observe(topology.ActionAddLink, false)
			return domain.Link{}, fmt.Errorf("%w: %s", ErrDeviceNotFound, id)
		}
	}

	id, ok := s.store.AddLink(req.Device1, req.Port1, req.Device2, req.Port2)
	if !ok {
		s.observe(topology.ActionAddLink, false)
		return domain.Link{}, fmt.Errorf("%w: %s:%d to %s:%d",
			ErrPortUnavailable, req.Device1, req.Port1, req.Device2, req.Port2)
	}

	link, _ := s.store.Link(id)
	s.observe(topology.ActionAddLink, true)
	s.bus.Publish(Event{Type: EventLinkAdded, Payload: link})
	logging.WithOperation("add_link").WithField("link", id).
		Debugf("connected %s:%d to %s:%d", req.Device1, req.Port1, req.Device2, req.Port2)

	return link, nil
}

// RemoveLink deletes a link and frees its ports
func (s *EditorService) RemoveLink(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removeLink(id)
}

func (s *EditorService) removeLink(id string) error {
	sel := s.store.Selection()
	if !s.store.RemoveLink(id) {
		s.observe(topology.ActionRemoveLink, false)
		return fmt.Errorf("%w: %s", ErrLinkNotFound, id)
	}

	s.observe(topology.ActionRemoveLink, true)
	s.bus.Publish(Event{Type: EventLinkRemoved, Payload: map[string]any{"link_id": id}})
	s.publishSelection(sel)

	return nil
}

// Select marks an existing device or link as selected
func (s *EditorService) Select(id string, kind domain.ElementKind) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch kind {
	case domain.ElementDevice:
		if _, ok := s.store.Device(id); !ok {
			return fmt.Errorf("%w: %s", ErrDeviceNotFound, id)
		}
	case domain.ElementLink:
		if _, ok := s.store.Link(id); !ok {
			return fmt.Errorf("%w: %s", ErrLinkNotFound, id)
		}
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidSelection, kind)
	}

	sel := s.store.Selection()
	s.store.Select(id, kind)
	s.publishSelection(sel)
	return nil
}

// ClearSelection drops the current selection
func (s *EditorService) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()

	sel := s.store.Selection()
	s.store.ClearSelection()
	s.publishSelection(sel)
}

// Selection returns the current selection
func (s *EditorService) Selection() domain.Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Selection()
}

// DeleteSelected removes the selected device or link
func (s *EditorService) DeleteSelected() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sel := s.store.Selection()
	switch sel.Kind {
	case domain.ElementDevice:
		return s.removeDevice(sel.ID)
	case domain.ElementLink:
		return s.removeLink(sel.ID)
	}
	return ErrNoSelection
}

// HistoryChange reports which command an undo or redo replayed
type HistoryChange struct {
	Direction string          `json:"direction"`
	Action    topology.Action `json:"action"`
	Subject   string          `json:"subject"`
	CanUndo   bool            `json:"can_undo"`
	CanRedo   bool            `json:"can_redo"`
}

// Undo reverts the most recent applied command
func (s *EditorService) Undo() (HistoryChange, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	hist := s.store.History()
	sel := s.store.Selection()
	if !s.store.Undo() {
		return HistoryChange{}, ErrNothingToUndo
	}

	undone := hist.Entries[hist.Index]
	return s.historyChanged("undo", undone, sel), nil
}

// Redo replays the next undone command
func (s *EditorService) Redo() (HistoryChange, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	hist := s.store.History()
	sel := s.store.Selection()
	if !s.store.Redo() {
		return HistoryChange{}, ErrNothingToRedo
	}

	redone := hist.Entries[hist.Index+1]
	return s.historyChanged("redo", redone, sel), nil
}

// History returns the command log
func (s *EditorService) History() topology.HistoryState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.History()
}

func (s *EditorService) historyChanged(direction string, e topology.HistoryEntry, sel domain.Selection) HistoryChange {
	change := HistoryChange{
		Direction: direction,
		Action:    e.Action,
		Subject:   e.Subject,
		CanUndo:   s.store.CanUndo(),
		CanRedo:   s.store.CanRedo(),
	}

	s.observeAction(direction, true)
	s.bus.Publish(Event{Type: EventHistoryChanged, Payload: change})
	s.publishSelection(sel)
	logging.WithOperation(direction).WithField("action", e.Action).Debugf("replayed %s", e.Subject)

	return change
}

// publishSelection emits selection_changed when the selection differs from prev.
// Callers hold s.mu.
func (s *EditorService) publishSelection(prev domain.Selection) {
	if cur := s.store.Selection(); cur != prev {
		s.bus.Publish(Event{Type: EventSelectionChanged, Payload: cur})
	}
}

func (s *EditorService) observe(action topology.Action, ok bool) {
	s.observeAction(string(action), ok)
}

func (s *EditorService) observeAction(action string, ok bool) {
	s.metrics.ObserveOperation(action, ok)
	s.refreshGauges()
}

// refreshGauges pushes topology size to the collector. Callers hold s.mu
// (or own s exclusively).
func (s *EditorService) refreshGauges() {
	if s.metrics == nil {
		return
	}
	hist := s.store.History()
	s.metrics.SetTopologyCounts(s.store.DeviceCount(), s.store.LinkCount(), len(hist.Entries), hist.Index)
	s.metrics.SetMessagesInFlight(s.messages.Len())
}

func (s *EditorService) linkIDs() map[string]bool {
	ids := make(map[string]bool, s.store.LinkCount())
	for _, l := range s.store.Links() {
		ids[l.ID] = true
	}
	return ids
}

func diffIDs(before, after map[string]bool) []string {
	removed := make([]string, 0)
	for id := range before {
		if !after[id] {
			removed = append(removed, id)
		}
	}
	sort.Strings(removed)
	return removed
}
