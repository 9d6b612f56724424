package codec

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"netsketch/internal/domain"

	"gopkg.in/yaml.v3"
)

// AnsibleCodec handles Ansible inventory import/export. Inventories carry no
// cabling, so imports produce devices only.
type AnsibleCodec struct{}

// NewAnsibleCodec creates a new Ansible codec
func NewAnsibleCodec() *AnsibleCodec {
	return &AnsibleCodec{}
}

// Format returns the codec format identifier
func (c *AnsibleCodec) Format() string {
	return "ansible-inventory"
}

// ansibleInventory represents the Ansible inventory structure
type ansibleInventory struct {
	All ansibleGroup `yaml:"all"`
}

type ansibleGroup struct {
	Children map[string]ansibleGroupDef `yaml:"children,omitempty"`
	Hosts    map[string]ansibleHost     `yaml:"hosts,omitempty"`
	Vars     map[string]interface{}     `yaml:"vars,omitempty"`
}

type ansibleGroupDef struct {
	Hosts map[string]ansibleHost `yaml:"hosts,omitempty"`
	Vars  map[string]interface{} `yaml:"vars,omitempty"`
}

type ansibleHost struct {
	AnsibleHost string                 `yaml:"ansible_host,omitempty"`
	Vars        map[string]interface{} `yaml:",inline"`
}

// Parse imports devices from an Ansible inventory
func (c *AnsibleCodec) Parse(r io.Reader) (*domain.Document, error) {
	var inv ansibleInventory
	decoder := yaml.NewDecoder(r)
	if err := decoder.Decode(&inv); err != nil {
		return nil, fmt.Errorf("%w: failed to parse Ansible inventory: %v", domain.ErrInvalidDocument, err)
	}

	doc := domain.NewDocument()
	seen := make(map[string]bool)

	// Map iteration order is random; sort so grid placement is stable
	groupNames := make([]string, 0, len(inv.All.Children))
	for name := range inv.All.Children {
		groupNames = append(groupNames, name)
	}
	sort.Strings(groupNames)

	for _, groupName := range groupNames {
		group := inv.All.Children[groupName]
		for _, name := range sortedHosts(group.Hosts) {
			if seen[name] {
				continue
			}
			seen[name] = true
			doc.AddDevice(c.hostToDevice(len(doc.Devices), name, groupName, group.Hosts[name]))
		}
	}

	// Hosts declared directly under 'all'
	for _, name := range sortedHosts(inv.All.Hosts) {
		if seen[name] {
			continue
		}
		seen[name] = true
		doc.AddDevice(c.hostToDevice(len(doc.Devices), name, "", inv.All.Hosts[name]))
	}

	return doc, nil
}

func sortedHosts(hosts map[string]ansibleHost) []string {
	names := make([]string, 0, len(hosts))
	for name := range hosts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// hostToDevice converts an Ansible host to a device
func (c *AnsibleCodec) hostToDevice(i int, name, groupName string, host ansibleHost) domain.Device {
	deviceType := c.inferDeviceType(groupName, host.Vars)
	x, y := gridPosition(i)

	device := domain.Device{
		ID:    name,
		Type:  deviceType,
		X:     x,
		Y:     y,
		Name:  name,
		Group: groupName,
		Ports: domain.DefaultPorts(deviceType),
		Apps:  domain.DefaultApps(deviceType),
	}

	if host.AnsibleHost != "" {
		device.SetField("ip", host.AnsibleHost)
	}

	if apps, ok := host.Vars["apps"].([]interface{}); ok {
		device.Apps = make([]string, 0, len(apps))
		for _, app := range apps {
			if s, ok := app.(string); ok {
				device.Apps = append(device.Apps, s)
			}
		}
	}

	for key, value := range host.Vars {
		if key == "ansible_host" || key == "device_type" || key == "netsketch_id" || domain.IsReservedKey(key) {
			continue
		}
		device.SetField(key, value)
	}

	return device
}

// inferDeviceType infers the device type from host vars and group name
func (c *AnsibleCodec) inferDeviceType(groupName string, vars map[string]interface{}) domain.DeviceType {
	// First check device_type (explicit)
	if deviceType, ok := vars["device_type"].(string); ok {
		switch strings.ToLower(deviceType) {
		case "router", "gateway", "firewall":
			return domain.DeviceTypeRouter
		case "switch", "access_point", "ap":
			return domain.DeviceTypeSwitch
		case "server", "controller":
			return domain.DeviceTypeServer
		case "computer", "workstation", "desktop", "laptop":
			return domain.DeviceTypeComputer
		}
	}

	// Check role
	if role, ok := vars["role"].(string); ok {
		roleLower := strings.ToLower(role)
		switch {
		case strings.Contains(roleLower, "router") || strings.Contains(roleLower, "gateway"):
			return domain.DeviceTypeRouter
		case strings.Contains(roleLower, "switch"):
			return domain.DeviceTypeSwitch
		case strings.Contains(roleLower, "dhcp"):
			return domain.DeviceTypeDHCPServer
		case strings.Contains(roleLower, "dns"):
			return domain.DeviceTypeDNSServer
		case strings.Contains(roleLower, "web") || strings.Contains(roleLower, "http"):
			return domain.DeviceTypeHTTPServer
		}
	}

	// Check group name
	groupLower := strings.ToLower(groupName)
	switch {
	case strings.Contains(groupLower, "router") || strings.Contains(groupLower, "network"):
		return domain.DeviceTypeRouter
	case strings.Contains(groupLower, "switch"):
		return domain.DeviceTypeSwitch
	case strings.Contains(groupLower, "workstation") || strings.Contains(groupLower, "desktop"):
		return domain.DeviceTypeComputer
	}

	return domain.DeviceTypeServer
}

// Export exports devices to Ansible inventory format. Devices without a group
// are grouped by type ("routers", "switches", ...).
func (c *AnsibleCodec) Export(doc *domain.Document, w io.Writer) error {
	inv := ansibleInventory{
		All: ansibleGroup{
			Children: make(map[string]ansibleGroupDef),
		},
	}

	groups := make(map[string]map[string]ansibleHost)

	for _, device := range doc.Devices {
		groupName := device.Group
		if groupName == "" {
			groupName = pluralType(device.Type)
		}

		if groups[groupName] == nil {
			groups[groupName] = make(map[string]ansibleHost)
		}

		host := ansibleHost{
			Vars: map[string]interface{}{
				"device_type":  string(device.Type),
				"netsketch_id": device.ID,
			},
		}

		if ip, ok := device.GetField("ip"); ok {
			if s, ok := ip.(string); ok {
				host.AnsibleHost = s
			}
		}

		if len(device.Apps) > 0 {
			host.Vars["apps"] = device.Apps
		}

		for key, value := range device.Extra {
			if key != "ip" {
				host.Vars[key] = value
			}
		}

		name := hostName(device)
		if _, taken := groups[groupName][name]; taken {
			name = name + "-" + device.ID
		}
		groups[groupName][name] = host
	}

	for groupName, hosts := range groups {
		inv.All.Children[groupName] = ansibleGroupDef{
			Hosts: hosts,
		}
	}

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()

	if err := encoder.Encode(&inv); err != nil {
		return fmt.Errorf("failed to encode Ansible inventory: %w", err)
	}

	return nil
}

// hostName derives an inventory hostname from the device name
func hostName(device domain.Device) string {
	name := strings.ToLower(strings.TrimSpace(device.Name))
	name = strings.ReplaceAll(name, " ", "-")
	if name == "" {
		return device.ID
	}
	return name
}

func pluralType(t domain.DeviceType) string {
	switch t {
	case "":
		return "ungrouped"
	case domain.DeviceTypeSwitch:
		return "switches"
	}
	return string(t) + "s"
}
