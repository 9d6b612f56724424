package domain

import (
	"encoding/json"
	"fmt"
)

// DeviceType represents the kind of device placed on the canvas
type DeviceType string

const (
	DeviceTypeComputer   DeviceType = "computer"
	DeviceTypeSwitch     DeviceType = "switch"
	DeviceTypeRouter     DeviceType = "router"
	DeviceTypeServer     DeviceType = "server"
	DeviceTypeDHCPServer DeviceType = "dhcp-server"
	DeviceTypeDNSServer  DeviceType = "dns-server"
	DeviceTypeHTTPServer DeviceType = "http-server"
)

// PortType represents the kind of physical port on a device
type PortType string

const (
	PortTypeEthernet PortType = "ethernet"
	PortTypeWAN      PortType = "wan"
	PortTypeLAN      PortType = "lan"
)

// Port is a fixed slot on a device that at most one link can occupy
type Port struct {
	ID        int      `json:"id" yaml:"id"`
	Type      PortType `json:"type" yaml:"type"`
	Connected bool     `json:"connected" yaml:"connected"`
	LinkID    string   `json:"linkId,omitempty" yaml:"linkId,omitempty"`
}

// Free clears the port's link reference
func (p *Port) Free() {
	p.Connected = false
	p.LinkID = ""
}

// Occupy marks the port as used by the given link
func (p *Port) Occupy(linkID string) {
	p.Connected = true
	p.LinkID = linkID
}

// Device represents a network device in the topology.
//
// Extra holds arbitrary caller-supplied fields. They are serialized inline
// next to the typed fields, so a device saved as
// {"id":"a","type":"server","ip":"10.0.0.1"} keeps "ip" in Extra.
type Device struct {
	ID    string         `json:"id"`
	Type  DeviceType     `json:"type"`
	X     float64        `json:"x"`
	Y     float64        `json:"y"`
	Name  string         `json:"name"`
	Group string         `json:"group,omitempty"`
	Ports []Port         `json:"ports"`
	Apps  []string       `json:"apps"`
	Extra map[string]any `json:"-"`
}

// reservedKeys are the JSON keys owned by typed Device fields
var reservedKeys = map[string]bool{
	"id": true, "type": true, "x": true, "y": true,
	"name": true, "group": true, "ports": true, "apps": true,
}

// IsReservedKey reports whether key names a typed device field
func IsReservedKey(key string) bool {
	return reservedKeys[key]
}

// deviceFields mirrors Device without its methods to avoid recursion in the
// custom marshalers
type deviceFields struct {
	ID    string     `json:"id"`
	Type  DeviceType `json:"type"`
	X     float64    `json:"x"`
	Y     float64    `json:"y"`
	Name  string     `json:"name"`
	Group *string    `json:"group"`
	Ports []Port     `json:"ports"`
	Apps  []string   `json:"apps"`
}

// MarshalJSON flattens Extra into the device object
func (d Device) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(reservedKeys)+len(d.Extra))
	for k, v := range d.Extra {
		if reservedKeys[k] {
			continue
		}
		out[k] = v
	}

	out["id"] = d.ID
	out["type"] = d.Type
	out["x"] = d.X
	out["y"] = d.Y
	out["name"] = d.Name
	if d.Group != "" {
		out["group"] = d.Group
	} else {
		out["group"] = nil
	}
	ports := d.Ports
	if ports == nil {
		ports = []Port{}
	}
	out["ports"] = ports
	apps := d.Apps
	if apps == nil {
		apps = []string{}
	}
	out["apps"] = apps

	return json.Marshal(out)
}

// UnmarshalJSON reads typed fields and collects everything else into Extra
func (d *Device) UnmarshalJSON(data []byte) error {
	var fields deviceFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*d = Device{
		ID:    fields.ID,
		Type:  fields.Type,
		X:     fields.X,
		Y:     fields.Y,
		Name:  fields.Name,
		Ports: fields.Ports,
		Apps:  fields.Apps,
	}
	if fields.Group != nil {
		d.Group = *fields.Group
	}

	for k, v := range raw {
		if reservedKeys[k] {
			continue
		}
		var value any
		if err := json.Unmarshal(v, &value); err != nil {
			return fmt.Errorf("field %s: %w", k, err)
		}
		if d.Extra == nil {
			d.Extra = make(map[string]any)
		}
		d.Extra[k] = value
	}

	return nil
}

// Clone returns a deep copy of the device
func (d *Device) Clone() *Device {
	if d == nil {
		return nil
	}
	c := *d
	if d.Ports != nil {
		c.Ports = make([]Port, len(d.Ports))
		copy(c.Ports, d.Ports)
	}
	if d.Apps != nil {
		c.Apps = make([]string, len(d.Apps))
		copy(c.Apps, d.Apps)
	}
	if d.Extra != nil {
		c.Extra = cloneMap(d.Extra)
	}
	return &c
}

// Port returns the port at index i
func (d *Device) Port(i int) (*Port, bool) {
	if i < 0 || i >= len(d.Ports) {
		return nil, false
	}
	return &d.Ports[i], true
}

// PortAvailable reports whether port i exists and is free
func (d *Device) PortAvailable(i int) bool {
	p, ok := d.Port(i)
	return ok && !p.Connected
}

// SetField sets an extra field. The value is stored in its JSON-decoded
// shape: numbers as float64, slices as []any, objects as map[string]any.
func (d *Device) SetField(key string, value any) {
	if d.Extra == nil {
		d.Extra = make(map[string]any)
	}
	d.Extra[key] = NormalizeValue(value)
}

// NormalizeValue converts v to its JSON-decoded shape. Values that cannot be
// encoded are returned unchanged.
func NormalizeValue(v any) any {
	switch v.(type) {
	case nil, string, bool, float64:
		return v
	}
	data, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return v
	}
	return out
}

// GetField gets an extra field
func (d *Device) GetField(key string) (any, bool) {
	if d.Extra == nil {
		return nil, false
	}
	val, ok := d.Extra[key]
	return val, ok
}

// Merge returns a copy of the device with updates shallow-merged onto its
// JSON representation. Keys matching typed fields replace them, other keys
// become extra fields. The id never changes. The receiver is not modified.
func (d *Device) Merge(updates map[string]any) (*Device, error) {
	base, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("marshal device: %w", err)
	}

	var shape map[string]any
	if err := json.Unmarshal(base, &shape); err != nil {
		return nil, fmt.Errorf("unmarshal device: %w", err)
	}
	for k, v := range updates {
		if k == "id" {
			continue
		}
		shape[k] = v
	}

	merged, err := json.Marshal(shape)
	if err != nil {
		return nil, fmt.Errorf("marshal updates: %w", err)
	}

	var out Device
	if err := json.Unmarshal(merged, &out); err != nil {
		return nil, fmt.Errorf("apply updates: %w", err)
	}
	out.ID = d.ID
	return &out, nil
}

// DefaultPorts returns the port layout for a newly placed device.
// Unknown types get a single ethernet port.
func DefaultPorts(t DeviceType) []Port {
	switch t {
	case DeviceTypeSwitch:
		return ethernetPorts(8)
	case DeviceTypeRouter:
		return []Port{
			{ID: 0, Type: PortTypeWAN},
			{ID: 1, Type: PortTypeLAN},
		}
	default:
		return ethernetPorts(1)
	}
}

func ethernetPorts(n int) []Port {
	ports := make([]Port, n)
	for i := range ports {
		ports[i] = Port{ID: i, Type: PortTypeEthernet}
	}
	return ports
}

// DefaultApps returns the applications installed on a newly placed device
func DefaultApps(t DeviceType) []string {
	switch t {
	case DeviceTypeComputer:
		return []string{"dhcp-client", "dns-client", "http-client"}
	case DeviceTypeDHCPServer:
		return []string{"dhcp-server"}
	case DeviceTypeDNSServer:
		return []string{"dns-server"}
	case DeviceTypeHTTPServer:
		return []string{"http-server"}
	case DeviceTypeRouter:
		return []string{"router"}
	case DeviceTypeSwitch:
		return []string{"switch"}
	}
	return []string{}
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	case nil, string, bool, float64:
		return v
	}
	return NormalizeValue(v)
}
