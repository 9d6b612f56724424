package domain

// LinkType represents the medium of a link
type LinkType string

const (
	LinkTypeEthernet LinkType = "ethernet"
)

// LinkStatus represents the operational state of a link
type LinkStatus string

const (
	LinkStatusActive LinkStatus = "active"
	LinkStatusDown   LinkStatus = "down"
)

// Link connects a port on one device to a port on another
type Link struct {
	ID      string     `json:"id" yaml:"id"`
	Device1 string     `json:"device1" yaml:"device1"`
	Port1   int        `json:"port1" yaml:"port1"`
	Device2 string     `json:"device2" yaml:"device2"`
	Port2   int        `json:"port2" yaml:"port2"`
	Type    LinkType   `json:"type" yaml:"type"`
	Status  LinkStatus `json:"status" yaml:"status"`
}

// NewLink creates an active ethernet link between two ports
func NewLink(id, device1 string, port1 int, device2 string, port2 int) *Link {
	return &Link{
		ID:      id,
		Device1: device1,
		Port1:   port1,
		Device2: device2,
		Port2:   port2,
		Type:    LinkTypeEthernet,
		Status:  LinkStatusActive,
	}
}

// Touches reports whether the link has deviceID as an endpoint
func (l *Link) Touches(deviceID string) bool {
	return l.Device1 == deviceID || l.Device2 == deviceID
}

// Clone returns a copy of the link
func (l *Link) Clone() *Link {
	if l == nil {
		return nil
	}
	c := *l
	return &c
}
