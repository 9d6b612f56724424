package codec

import (
	"encoding/xml"
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	nmap "github.com/Ullaakut/nmap/v3"
	"netsketch/internal/domain"
)

// NmapCodec imports devices from an nmap XML report (nmap -oX). Scans carry
// no cabling, so the document contains devices only.
type NmapCodec struct{}

// NewNmapCodec creates a new nmap codec
func NewNmapCodec() *NmapCodec {
	return &NmapCodec{}
}

// Format returns the codec format identifier
func (c *NmapCodec) Format() string {
	return "nmap-xml"
}

// Parse converts every host that is up into a device
func (c *NmapCodec) Parse(r io.Reader) (*domain.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read nmap report: %w", err)
	}

	var run nmap.Run
	if err := xml.Unmarshal(data, &run); err != nil {
		return nil, fmt.Errorf("%w: failed to parse nmap XML: %v", domain.ErrInvalidDocument, err)
	}

	return c.FromRun(&run), nil
}

// FromRun converts scan results into a document. Hosts that are down or
// carry no address are skipped.
func (c *NmapCodec) FromRun(run *nmap.Run) *domain.Document {
	doc := domain.NewDocument()
	if run == nil {
		return doc
	}
	if started := time.Time(run.Start); !started.IsZero() {
		doc.Timestamp = started.UnixMilli()
	}

	for _, host := range run.Hosts {
		if host.Status.State != "up" || len(host.Addresses) == 0 {
			continue
		}
		doc.AddDevice(c.hostToDevice(len(doc.Devices), host))
	}

	return doc
}

// hostToDevice creates a device from nmap host results
func (c *NmapCodec) hostToDevice(i int, host nmap.Host) domain.Device {
	ip := primaryIP(host)
	deviceType := inferDeviceType(host.Ports)
	x, y := gridPosition(i)

	device := domain.Device{
		ID:    sanitizeIP(ip),
		Type:  deviceType,
		X:     x,
		Y:     y,
		Name:  ip,
		Ports: domain.DefaultPorts(deviceType),
		Apps:  domain.DefaultApps(deviceType),
	}
	device.SetField("ip", ip)

	// Prefer the short hostname as the display name
	if len(host.Hostnames) > 0 {
		hostname := host.Hostnames[0].Name
		device.SetField("hostname", hostname)
		device.Name = hostname
		if idx := strings.Index(hostname, "."); idx > 0 {
			if short := hostname[:idx]; len(short) > 2 {
				device.Name = short
			}
		}
	}

	for _, addr := range host.Addresses {
		if addr.AddrType == "mac" {
			device.SetField("mac", strings.ToUpper(addr.Addr))
			if addr.Vendor != "" {
				device.SetField("vendor", addr.Vendor)
			}
		}
	}

	if open := openPorts(host.Ports); len(open) > 0 {
		device.SetField("open_ports", open)
	}
	if services := serviceNames(host.Ports); len(services) > 0 {
		device.SetField("services", services)
	}

	return device
}

// primaryIP returns the first IPv4 address, falling back to the first address
func primaryIP(host nmap.Host) string {
	for _, addr := range host.Addresses {
		if addr.AddrType == "ipv4" {
			return addr.Addr
		}
	}
	return host.Addresses[0].Addr
}

func openPorts(ports []nmap.Port) []any {
	var open []any
	for _, p := range ports {
		if p.State.State == "open" {
			open = append(open, float64(p.ID))
		}
	}
	return open
}

func serviceNames(ports []nmap.Port) map[string]any {
	services := make(map[string]any)
	for _, p := range ports {
		if p.State.State != "open" || p.Service.Name == "" {
			continue
		}
		name := p.Service.Name
		if p.Service.Product != "" {
			name += " (" + strings.TrimSpace(p.Service.Product+" "+p.Service.Version) + ")"
		}
		services[fmt.Sprintf("%d", p.ID)] = name
	}
	return services
}

// inferDeviceType guesses the device type from open ports
func inferDeviceType(ports []nmap.Port) domain.DeviceType {
	portSet := make(map[uint16]bool)
	for _, p := range ports {
		if p.State.State == "open" {
			portSet[p.ID] = true
		}
	}

	// Router indicators
	if portSet[53] && (portSet[80] || portSet[443]) {
		return domain.DeviceTypeRouter
	}

	for _, p := range []uint16{22, 80, 443, 445, 3389, 6443, 8080} {
		if portSet[p] {
			return domain.DeviceTypeServer
		}
	}

	return domain.DeviceTypeComputer
}

// sanitizeIP converts an IP address to a device id
func sanitizeIP(ip string) string {
	parsed := net.ParseIP(ip)
	if parsed != nil {
		ip = parsed.String()
	}
	return strings.NewReplacer(".", "-", ":", "-").Replace(ip)
}
