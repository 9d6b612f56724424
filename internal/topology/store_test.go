package topology

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"netsketch/internal/domain"
)

// newTestStore returns a store with sequential ids ("id-1", "id-2", ...) and
// a fixed clock
func newTestStore(opts ...Option) *Store {
	n := 0
	base := []Option{
		WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("id-%d", n)
		}),
		WithClock(func() time.Time { return time.UnixMilli(1700000000000) }),
	}
	return New(append(base, opts...)...)
}

func TestAddDeviceDefaults(t *testing.T) {
	tests := []struct {
		deviceType domain.DeviceType
		ports      int
		apps       []string
	}{
		{domain.DeviceTypeComputer, 1, []string{"dhcp-client", "dns-client", "http-client"}},
		{domain.DeviceTypeSwitch, 8, []string{"switch"}},
		{domain.DeviceTypeRouter, 2, []string{"router"}},
		{domain.DeviceTypeServer, 1, []string{}},
		{domain.DeviceTypeDHCPServer, 1, []string{"dhcp-server"}},
		{"mainframe", 1, []string{}},
	}

	for _, tt := range tests {
		t.Run(string(tt.deviceType), func(t *testing.T) {
			s := newTestStore()
			id := s.AddDevice(tt.deviceType, 10, 20)

			d, ok := s.Device(id)
			require.True(t, ok)
			assert.Equal(t, tt.deviceType, d.Type)
			assert.Equal(t, fmt.Sprintf("%s-1", tt.deviceType), d.Name)
			assert.Len(t, d.Ports, tt.ports)
			assert.Equal(t, tt.apps, d.Apps)
			assert.Equal(t, 10.0, d.X)
			assert.Equal(t, 20.0, d.Y)
		})
	}
}

func TestAddDeviceRouterPorts(t *testing.T) {
	s := newTestStore()
	id := s.AddDevice(domain.DeviceTypeRouter, 0, 0)

	d, _ := s.Device(id)
	require.Len(t, d.Ports, 2)
	assert.Equal(t, domain.PortTypeWAN, d.Ports[0].Type)
	assert.Equal(t, domain.PortTypeLAN, d.Ports[1].Type)
	assert.False(t, d.Ports[0].Connected)
}

func TestAddDeviceOptions(t *testing.T) {
	s := newTestStore()
	s.AddDevice(domain.DeviceTypeComputer, 0, 0)
	id := s.AddDevice(domain.DeviceTypeServer, 0, 0,
		WithName("web01"),
		WithGroup("dmz"),
		WithApps("http-server"),
		WithField("ip", "10.0.0.5"),
	)

	d, _ := s.Device(id)
	assert.Equal(t, "web01", d.Name)
	assert.Equal(t, "dmz", d.Group)
	assert.Equal(t, []string{"http-server"}, d.Apps)
	assert.Equal(t, "10.0.0.5", d.Extra["ip"])
	assert.Equal(t, 2, s.DeviceCount())
}

func TestDefaultNameCountsDevices(t *testing.T) {
	s := newTestStore()
	s.AddDevice(domain.DeviceTypeComputer, 0, 0)
	id := s.AddDevice(domain.DeviceTypeSwitch, 0, 0)

	d, _ := s.Device(id)
	assert.Equal(t, "switch-2", d.Name)
}

func TestAddLink(t *testing.T) {
	s := newTestStore()
	a := s.AddDevice(domain.DeviceTypeComputer, 0, 0)
	sw := s.AddDevice(domain.DeviceTypeSwitch, 0, 0)

	t.Run("connects free ports", func(t *testing.T) {
		id, ok := s.AddLink(a, 0, sw, 3)
		require.True(t, ok)

		l, _ := s.Link(id)
		assert.Equal(t, domain.LinkTypeEthernet, l.Type)
		assert.Equal(t, domain.LinkStatusActive, l.Status)

		da, _ := s.Device(a)
		assert.True(t, da.Ports[0].Connected)
		assert.Equal(t, id, da.Ports[0].LinkID)
		dsw, _ := s.Device(sw)
		assert.True(t, dsw.Ports[3].Connected)
		assert.False(t, dsw.Ports[2].Connected)
	})

	t.Run("rejects occupied port", func(t *testing.T) {
		b := s.AddDevice(domain.DeviceTypeComputer, 0, 0)
		_, ok := s.AddLink(b, 0, sw, 3)
		assert.False(t, ok)
	})

	t.Run("rejects out of range port", func(t *testing.T) {
		_, ok := s.AddLink(a, 1, sw, 0)
		assert.False(t, ok)
		_, ok = s.AddLink(sw, 8, sw, 0)
		assert.False(t, ok)
	})

	t.Run("rejects unknown device", func(t *testing.T) {
		_, ok := s.AddLink("missing", 0, sw, 0)
		assert.False(t, ok)
	})

	t.Run("rejects same port on same device", func(t *testing.T) {
		_, ok := s.AddLink(sw, 5, sw, 5)
		assert.False(t, ok)
	})

	t.Run("allows two ports on the same device", func(t *testing.T) {
		_, ok := s.AddLink(sw, 5, sw, 6)
		assert.True(t, ok)
	})
}

func TestRemoveLinkFreesPorts(t *testing.T) {
	s := newTestStore()
	a := s.AddDevice(domain.DeviceTypeComputer, 0, 0)
	b := s.AddDevice(domain.DeviceTypeComputer, 0, 0)
	l, _ := s.AddLink(a, 0, b, 0)
	s.Select(l, domain.ElementLink)

	require.True(t, s.RemoveLink(l))
	assert.False(t, s.RemoveLink(l))

	da, _ := s.Device(a)
	db, _ := s.Device(b)
	assert.False(t, da.Ports[0].Connected)
	assert.Empty(t, da.Ports[0].LinkID)
	assert.False(t, db.Ports[0].Connected)
	assert.False(t, s.HasSelection())
	assert.Equal(t, 0, s.LinkCount())
}

func TestRemoveDeviceCascades(t *testing.T) {
	s := newTestStore()
	sw := s.AddDevice(domain.DeviceTypeSwitch, 0, 0)
	a := s.AddDevice(domain.DeviceTypeComputer, 0, 0)
	b := s.AddDevice(domain.DeviceTypeComputer, 0, 0)
	s.AddLink(a, 0, sw, 0)
	s.AddLink(b, 0, sw, 1)
	s.Select(sw, domain.ElementDevice)

	require.True(t, s.RemoveDevice(sw))

	assert.Equal(t, 2, s.DeviceCount())
	assert.Equal(t, 0, s.LinkCount())
	assert.False(t, s.HasSelection())
	for _, id := range []string{a, b} {
		d, _ := s.Device(id)
		assert.False(t, d.Ports[0].Connected)
	}

	// Each cascaded link removal is logged before the device removal
	hist := s.History()
	n := len(hist.Entries)
	assert.Equal(t, ActionRemoveLink, hist.Entries[n-3].Action)
	assert.Equal(t, ActionRemoveLink, hist.Entries[n-2].Action)
	assert.Equal(t, ActionRemoveDevice, hist.Entries[n-1].Action)

	assert.False(t, s.RemoveDevice(sw))
}

func TestUpdateDevice(t *testing.T) {
	s := newTestStore()
	id := s.AddDevice(domain.DeviceTypeServer, 0, 0)

	t.Run("merges known and extra keys", func(t *testing.T) {
		ok := s.UpdateDevice(id, map[string]any{
			"name": "db01",
			"x":    42.0,
			"id":   "hijack",
			"ip":   "10.0.0.9",
		})
		require.True(t, ok)

		d, found := s.Device(id)
		require.True(t, found)
		assert.Equal(t, "db01", d.Name)
		assert.Equal(t, 42.0, d.X)
		assert.Equal(t, "10.0.0.9", d.Extra["ip"])

		_, found = s.Device("hijack")
		assert.False(t, found)
	})

	t.Run("wrong shape leaves device untouched", func(t *testing.T) {
		before := s.History()
		ok := s.UpdateDevice(id, map[string]any{"x": "abc"})
		assert.False(t, ok)

		d, _ := s.Device(id)
		assert.Equal(t, 42.0, d.X)
		assert.Equal(t, before, s.History())
	})

	t.Run("unknown device", func(t *testing.T) {
		assert.False(t, s.UpdateDevice("missing", map[string]any{"name": "x"}))
	})
}

func TestMoveDeviceIsNotLogged(t *testing.T) {
	s := newTestStore()
	id := s.AddDevice(domain.DeviceTypeComputer, 0, 0)

	require.True(t, s.MoveDevice(id, 300, 400))
	assert.False(t, s.MoveDevice("missing", 1, 1))

	d, _ := s.Device(id)
	assert.Equal(t, 300.0, d.X)
	assert.Equal(t, 400.0, d.Y)
	assert.Len(t, s.History().Entries, 1)
}

func TestDeleteSelected(t *testing.T) {
	s := newTestStore()
	a := s.AddDevice(domain.DeviceTypeComputer, 0, 0)
	b := s.AddDevice(domain.DeviceTypeComputer, 0, 0)
	l, _ := s.AddLink(a, 0, b, 0)

	assert.False(t, s.DeleteSelected())

	s.Select(l, domain.ElementLink)
	require.True(t, s.DeleteSelected())
	assert.Equal(t, 0, s.LinkCount())

	s.Select(a, domain.ElementDevice)
	require.True(t, s.DeleteSelected())
	assert.Equal(t, 1, s.DeviceCount())
	assert.False(t, s.HasSelection())
}

func TestProjectionsAreCopies(t *testing.T) {
	s := newTestStore()
	id := s.AddDevice(domain.DeviceTypeComputer, 0, 0, WithField("tags", []any{"a"}))

	devices := s.Devices()
	devices[0].Name = "changed"
	devices[0].Ports[0].Connected = true
	devices[0].Extra["tags"].([]any)[0] = "b"

	d, _ := s.Device(id)
	assert.Equal(t, "computer-1", d.Name)
	assert.False(t, d.Ports[0].Connected)
	assert.Equal(t, []any{"a"}, d.Extra["tags"])
}

func TestProjectionsKeepInsertionOrder(t *testing.T) {
	s := newTestStore()
	var ids []string
	for i := 0; i < 5; i++ {
		ids = append(ids, s.AddDevice(domain.DeviceTypeSwitch, 0, 0))
	}

	var got []string
	for _, d := range s.Devices() {
		got = append(got, d.ID)
	}
	assert.Equal(t, ids, got)
}
