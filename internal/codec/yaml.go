package codec

import (
	"fmt"
	"io"

	"netsketch/internal/domain"

	"gopkg.in/yaml.v3"
)

// YAMLCodec handles YAML import/export of topology documents
type YAMLCodec struct{}

// NewYAMLCodec creates a new YAML codec
func NewYAMLCodec() *YAMLCodec {
	return &YAMLCodec{}
}

// Format returns the codec format identifier
func (c *YAMLCodec) Format() string {
	return "yaml"
}

// yamlDocument represents the YAML structure for topology data
type yamlDocument struct {
	Version   int          `yaml:"version"`
	Timestamp int64        `yaml:"timestamp,omitempty"`
	Devices   []yamlDevice `yaml:"devices"`
	Links     []yamlLink   `yaml:"links"`
}

type yamlDevice struct {
	ID    string         `yaml:"id"`
	Type  string         `yaml:"type"`
	X     float64        `yaml:"x"`
	Y     float64        `yaml:"y"`
	Name  string         `yaml:"name"`
	Group string         `yaml:"group,omitempty"`
	Ports []domain.Port  `yaml:"ports"`
	Apps  []string       `yaml:"apps"`
	Extra map[string]any `yaml:",inline"`
}

type yamlLink struct {
	ID      string `yaml:"id"`
	Device1 string `yaml:"device1"`
	Port1   int    `yaml:"port1"`
	Device2 string `yaml:"device2"`
	Port2   int    `yaml:"port2"`
	Type    string `yaml:"type,omitempty"`
	Status  string `yaml:"status,omitempty"`
}

// Parse imports a topology document from YAML
func (c *YAMLCodec) Parse(r io.Reader) (*domain.Document, error) {
	var yd yamlDocument
	decoder := yaml.NewDecoder(r)
	if err := decoder.Decode(&yd); err != nil {
		return nil, fmt.Errorf("%w: failed to parse YAML: %v", domain.ErrInvalidDocument, err)
	}

	doc := domain.NewDocument()
	if yd.Version != 0 {
		doc.Version = yd.Version
	}
	doc.Timestamp = yd.Timestamp

	// Convert devices
	for _, ydev := range yd.Devices {
		device := domain.Device{
			ID:    ydev.ID,
			Type:  domain.DeviceType(ydev.Type),
			X:     ydev.X,
			Y:     ydev.Y,
			Name:  ydev.Name,
			Group: ydev.Group,
			Ports: ydev.Ports,
			Apps:  ydev.Apps,
		}
		if device.Ports == nil {
			device.Ports = domain.DefaultPorts(device.Type)
		}
		if device.Apps == nil {
			device.Apps = []string{}
		}
		for k, v := range ydev.Extra {
			if domain.IsReservedKey(k) {
				continue
			}
			device.SetField(k, v)
		}
		doc.AddDevice(device)
	}

	// Convert links
	for _, yl := range yd.Links {
		link := domain.Link{
			ID:      yl.ID,
			Device1: yl.Device1,
			Port1:   yl.Port1,
			Device2: yl.Device2,
			Port2:   yl.Port2,
			Type:    domain.LinkType(yl.Type),
			Status:  domain.LinkStatus(yl.Status),
		}
		if link.Type == "" {
			link.Type = domain.LinkTypeEthernet
		}
		if link.Status == "" {
			link.Status = domain.LinkStatusActive
		}
		doc.AddLink(link)
	}

	return doc, nil
}

// Export exports a topology document to YAML
func (c *YAMLCodec) Export(doc *domain.Document, w io.Writer) error {
	yd := yamlDocument{
		Version:   doc.Version,
		Timestamp: doc.Timestamp,
		Devices:   make([]yamlDevice, 0, len(doc.Devices)),
		Links:     make([]yamlLink, 0, len(doc.Links)),
	}

	// Convert devices
	for _, device := range doc.Devices {
		yd.Devices = append(yd.Devices, yamlDevice{
			ID:    device.ID,
			Type:  string(device.Type),
			X:     device.X,
			Y:     device.Y,
			Name:  device.Name,
			Group: device.Group,
			Ports: device.Ports,
			Apps:  device.Apps,
			Extra: device.Extra,
		})
	}

	// Convert links
	for _, link := range doc.Links {
		yd.Links = append(yd.Links, yamlLink{
			ID:      link.ID,
			Device1: link.Device1,
			Port1:   link.Port1,
			Device2: link.Device2,
			Port2:   link.Port2,
			Type:    string(link.Type),
			Status:  string(link.Status),
		})
	}

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()

	if err := encoder.Encode(&yd); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}

	return nil
}
