package codec

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"netsketch/internal/domain"
)

func TestAnsibleCodec_Parse(t *testing.T) {
	input := `
all:
  hosts:
    laptop:
      ansible_host: 10.0.0.50
      device_type: laptop
  children:
    switches:
      hosts:
        sw1:
          ansible_host: 10.0.0.2
    servers:
      hosts:
        web:
          ansible_host: 10.0.0.10
          role: webserver
        dns:
          role: dns
          apps: [dns-server, ntp]
        laptop:
          ansible_host: 10.0.0.51
`
	doc, err := NewAnsibleCodec().Parse(strings.NewReader(input))
	require.NoError(t, err)

	byID := make(map[string]domain.Device)
	var order []string
	for _, d := range doc.Devices {
		byID[d.ID] = d
		order = append(order, d.ID)
	}

	// Groups sorted, hosts sorted, ungrouped hosts last and deduplicated
	assert.Equal(t, []string{"dns", "laptop", "web", "sw1"}, order)

	assert.Equal(t, domain.DeviceTypeDNSServer, byID["dns"].Type)
	assert.Equal(t, []string{"dns-server", "ntp"}, byID["dns"].Apps)
	dns := byID["dns"]
	role, _ := dns.GetField("role")
	assert.Equal(t, "dns", role)

	assert.Equal(t, domain.DeviceTypeHTTPServer, byID["web"].Type)
	web := byID["web"]
	ip, _ := web.GetField("ip")
	assert.Equal(t, "10.0.0.10", ip)
	assert.Equal(t, "servers", byID["web"].Group)

	assert.Equal(t, domain.DeviceTypeServer, byID["laptop"].Type, "first group wins for duplicate hosts")
	assert.Equal(t, domain.DeviceTypeSwitch, byID["sw1"].Type)
	assert.Len(t, byID["sw1"].Ports, 8)

	require.NoError(t, doc.Validate())
}

func TestAnsibleCodec_Export(t *testing.T) {
	doc := domain.NewDocument()
	r := domain.Device{ID: "r1", Type: domain.DeviceTypeRouter, Name: "Edge Router", Apps: []string{"router"}}
	r.SetField("ip", "10.0.0.1")
	doc.AddDevice(r)
	doc.AddDevice(domain.Device{ID: "s1", Type: domain.DeviceTypeSwitch, Name: "core", Group: "lab"})
	doc.AddDevice(domain.Device{ID: "s2", Type: domain.DeviceTypeSwitch, Name: "core", Group: "lab"})

	var buf bytes.Buffer
	require.NoError(t, NewAnsibleCodec().Export(doc, &buf))

	var inv ansibleInventory
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &inv))

	routers := inv.All.Children["routers"]
	require.Contains(t, routers.Hosts, "edge-router")
	host := routers.Hosts["edge-router"]
	assert.Equal(t, "10.0.0.1", host.AnsibleHost)
	assert.Equal(t, "router", host.Vars["device_type"])
	assert.Equal(t, "r1", host.Vars["netsketch_id"])
	_, hasIP := host.Vars["ip"]
	assert.False(t, hasIP)

	lab := inv.All.Children["lab"]
	assert.Len(t, lab.Hosts, 2)
	assert.Contains(t, lab.Hosts, "core")
	assert.Contains(t, lab.Hosts, "core-s2")
}

func TestAnsibleCodec_ExportThenParse(t *testing.T) {
	doc := domain.NewDocument()
	d := domain.Device{ID: "web", Type: domain.DeviceTypeServer, Name: "web", Group: "servers", Apps: []string{"http-server"}}
	d.SetField("ip", "10.1.1.1")
	doc.AddDevice(d)

	c := NewAnsibleCodec()
	var buf bytes.Buffer
	require.NoError(t, c.Export(doc, &buf))

	got, err := c.Parse(&buf)
	require.NoError(t, err)
	require.Len(t, got.Devices, 1)

	dev := got.Devices[0]
	assert.Equal(t, "web", dev.ID)
	assert.Equal(t, domain.DeviceTypeServer, dev.Type)
	assert.Equal(t, "servers", dev.Group)
	assert.Equal(t, []string{"http-server"}, dev.Apps)
	ip, _ := dev.GetField("ip")
	assert.Equal(t, "10.1.1.1", ip)
	_, leaked := dev.GetField("apps")
	assert.False(t, leaked)
}

func TestPluralType(t *testing.T) {
	assert.Equal(t, "switches", pluralType(domain.DeviceTypeSwitch))
	assert.Equal(t, "routers", pluralType(domain.DeviceTypeRouter))
	assert.Equal(t, "ungrouped", pluralType(""))
}
