package topology

import "netsketch/internal/domain"

// Action identifies the kind of a recorded command
type Action string

const (
	ActionAddDevice    Action = "add_device"
	ActionRemoveDevice Action = "remove_device"
	ActionUpdateDevice Action = "update_device"
	ActionAddLink      Action = "add_link"
	ActionRemoveLink   Action = "remove_link"
)

// Command is a recorded graph mutation that can be reverted and replayed.
// The unexported methods close the set of command kinds to this package.
type Command interface {
	Action() Action
	// Subject returns the id of the device or link the command acted on
	Subject() string

	undo(s *Store)
	redo(s *Store)
}

// AddDeviceCommand records a device insertion
type AddDeviceCommand struct {
	device *domain.Device
}

func (c *AddDeviceCommand) Action() Action  { return ActionAddDevice }
func (c *AddDeviceCommand) Subject() string { return c.device.ID }

func (c *AddDeviceCommand) undo(s *Store) {
	s.devices.delete(c.device.ID)
}

func (c *AddDeviceCommand) redo(s *Store) {
	s.devices.set(c.device.ID, c.device.Clone())
}

// RemoveDeviceCommand records a device removal together with the links the
// removal cascaded to. Positions are indexes in the ordered collections
// before the removal; linkPos is ascending.
type RemoveDeviceCommand struct {
	device  *domain.Device
	pos     int
	links   []*domain.Link
	linkPos []int
}

func (c *RemoveDeviceCommand) Action() Action  { return ActionRemoveDevice }
func (c *RemoveDeviceCommand) Subject() string { return c.device.ID }

// Links returns copies of the links removed with the device
func (c *RemoveDeviceCommand) Links() []domain.Link {
	out := make([]domain.Link, 0, len(c.links))
	for _, l := range c.links {
		out = append(out, *l)
	}
	return out
}

func (c *RemoveDeviceCommand) undo(s *Store) {
	s.devices.insertAt(c.pos, c.device.ID, c.device.Clone())
	for i, l := range c.links {
		s.links.insertAt(c.linkPos[i], l.ID, l.Clone())
	}
}

func (c *RemoveDeviceCommand) redo(s *Store) {
	s.devices.delete(c.device.ID)
	for _, l := range c.links {
		s.links.delete(l.ID)
	}
}

// UpdateDeviceCommand records a device update with before and after states
type UpdateDeviceCommand struct {
	before *domain.Device
	after  *domain.Device
}

func (c *UpdateDeviceCommand) Action() Action  { return ActionUpdateDevice }
func (c *UpdateDeviceCommand) Subject() string { return c.after.ID }

func (c *UpdateDeviceCommand) undo(s *Store) {
	s.devices.set(c.before.ID, c.before.Clone())
}

func (c *UpdateDeviceCommand) redo(s *Store) {
	s.devices.set(c.after.ID, c.after.Clone())
}

// AddLinkCommand records a link insertion
type AddLinkCommand struct {
	link *domain.Link
}

func (c *AddLinkCommand) Action() Action  { return ActionAddLink }
func (c *AddLinkCommand) Subject() string { return c.link.ID }

func (c *AddLinkCommand) undo(s *Store) {
	s.links.delete(c.link.ID)
}

func (c *AddLinkCommand) redo(s *Store) {
	s.links.set(c.link.ID, c.link.Clone())
}

// RemoveLinkCommand records a link removal and the link's former position
type RemoveLinkCommand struct {
	link *domain.Link
	pos  int
}

func (c *RemoveLinkCommand) Action() Action  { return ActionRemoveLink }
func (c *RemoveLinkCommand) Subject() string { return c.link.ID }

func (c *RemoveLinkCommand) undo(s *Store) {
	s.links.insertAt(c.pos, c.link.ID, c.link.Clone())
}

func (c *RemoveLinkCommand) redo(s *Store) {
	s.links.delete(c.link.ID)
}
