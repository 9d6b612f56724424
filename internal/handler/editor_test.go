package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"netsketch/internal/domain"
	"netsketch/internal/metrics"
	"netsketch/internal/repository/sqlite"
	"netsketch/internal/service"
)

type testServer struct {
	t       *testing.T
	handler http.Handler
	metrics *metrics.EditorCollector
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	repo, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	m, err := metrics.NewEditorCollector(prometheus.NewRegistry())
	require.NoError(t, err)

	svc := service.NewEditorService(nil, service.WithRepository(repo), service.WithMetrics(m))
	return &testServer{
		t:       t,
		handler: NewServerHandler(NewEditorHandler(svc), nil, m),
		metrics: m,
	}
}

func (s *testServer) do(method, path string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(s.t, err)
		r = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, r)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func (s *testServer) addDevice(deviceType domain.DeviceType) domain.Device {
	rec := s.do(http.MethodPost, "/api/devices", service.AddDeviceRequest{Type: deviceType})
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[domain.Device](s.t, rec)
}

func TestDeviceLifecycle(t *testing.T) {
	s := newTestServer(t)
	d := s.addDevice(domain.DeviceTypeRouter)
	assert.Len(t, d.Ports, 2)

	rec := s.do(http.MethodGet, "/api/devices/"+d.ID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodPut, "/api/devices/"+d.ID, map[string]any{"name": "gw", "ip": "10.0.0.1"})
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decode[domain.Device](t, rec)
	assert.Equal(t, "gw", updated.Name)
	assert.Equal(t, "10.0.0.1", updated.Extra["ip"])

	rec = s.do(http.MethodPut, "/api/devices/"+d.ID, map[string]any{"x": "left"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPut, "/api/devices/"+d.ID+"/position", PositionRequest{X: 5, Y: 6})
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(http.MethodDelete, "/api/devices/"+d.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(http.MethodGet, "/api/devices/"+d.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	errResp := decode[ErrorResponse](t, rec)
	assert.Equal(t, "Failed to get device", errResp.Error)
}

func TestCreateDeviceValidation(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPost, "/api/devices", "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPost, "/api/devices", map[string]any{"x": 1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLinksAndHistory(t *testing.T) {
	s := newTestServer(t)
	a := s.addDevice(domain.DeviceTypeComputer)
	b := s.addDevice(domain.DeviceTypeSwitch)

	req := service.AddLinkRequest{Device1: a.ID, Port1: 0, Device2: b.ID, Port2: 2}
	rec := s.do(http.MethodPost, "/api/links", req)
	require.Equal(t, http.StatusCreated, rec.Code)
	link := decode[domain.Link](t, rec)

	rec = s.do(http.MethodPost, "/api/links", req)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(http.MethodGet, "/api/links/"+link.ID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodPost, "/api/history/undo", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	change := decode[service.HistoryChange](t, rec)
	assert.Equal(t, "add_link", string(change.Action))

	view := decode[service.TopologyView](t, s.do(http.MethodGet, "/api/topology", nil))
	assert.Equal(t, 0, view.LinkCount)
	assert.True(t, view.CanRedo)

	rec = s.do(http.MethodPost, "/api/history/redo", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(http.MethodPost, "/api/history/redo", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(http.MethodGet, "/api/history", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"capacity":50`)

	rec = s.do(http.MethodDelete, "/api/links/"+link.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = s.do(http.MethodDelete, "/api/links/"+link.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSelectionEndpoints(t *testing.T) {
	s := newTestServer(t)
	a := s.addDevice(domain.DeviceTypeComputer)

	rec := s.do(http.MethodPost, "/api/selection/delete", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(http.MethodPut, "/api/selection", domain.Selection{ID: a.ID, Kind: domain.ElementDevice})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodPut, "/api/selection", domain.Selection{ID: a.ID, Kind: "group"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPost, "/api/selection/delete", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	view := decode[service.TopologyView](t, s.do(http.MethodGet, "/api/topology", nil))
	assert.Equal(t, 0, view.DeviceCount)

	rec = s.do(http.MethodDelete, "/api/selection", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestDownloadName(t *testing.T) {
	tests := []struct {
		value string
		want  string
	}{
		{"", "topology.yaml"},
		{"1", "topology.yaml"},
		{"true", "topology.yaml"},
		{"lab", "lab.yaml"},
		{"lab.yml", "lab.yml"},
		{"../../etc/passwd", "passwd.yaml"},
		{`C:\tmp\lab.yaml`, "lab.yaml"},
		{"..", "topology.yaml"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, downloadName(tt.value, "topology.yaml"), tt.value)
	}
}

func TestImportExport(t *testing.T) {
	s := newTestServer(t)
	s.addDevice(domain.DeviceTypeServer)

	rec := s.do(http.MethodGet, "/api/export/yaml?download=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/x-yaml", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "topology.yaml")
	exported := rec.Body.String()

	rec = s.do(http.MethodGet, "/api/export/json?download=lab-a", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename=lab-a.json`, rec.Header().Get("Content-Disposition"))

	rec = s.do(http.MethodGet, "/api/export/json", nil)
	assert.Empty(t, rec.Header().Get("Content-Disposition"))

	rec = s.do(http.MethodGet, "/api/export/visio", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPost, "/api/import/yaml", exported)
	require.Equal(t, http.StatusOK, rec.Code)
	result := decode[service.ImportResult](t, rec)
	assert.Equal(t, service.StrategyReplace, result.Strategy)
	assert.Equal(t, 1, result.Devices)

	inventory := "all:\n  children:\n    web:\n      hosts:\n        web01:\n          ansible_host: 10.0.0.8\n"
	rec = s.do(http.MethodPost, "/api/import/ansible", inventory)
	require.Equal(t, http.StatusOK, rec.Code)
	result = decode[service.ImportResult](t, rec)
	assert.Equal(t, service.StrategyAppend, result.Strategy)

	view := decode[service.TopologyView](t, s.do(http.MethodGet, "/api/topology", nil))
	assert.Equal(t, 2, view.DeviceCount)

	rec = s.do(http.MethodPost, "/api/import/json", `{"version":2,"devices":[`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	view = decode[service.TopologyView](t, s.do(http.MethodGet, "/api/topology", nil))
	assert.Equal(t, 2, view.DeviceCount)
}

func TestSnapshotEndpoints(t *testing.T) {
	s := newTestServer(t)
	s.addDevice(domain.DeviceTypeSwitch)

	rec := s.do(http.MethodPut, "/api/snapshots/lab", SnapshotRequest{Description: "switch only"})
	require.Equal(t, http.StatusOK, rec.Code)
	info := decode[domain.SnapshotInfo](t, rec)
	assert.Equal(t, 1, info.DeviceCount)

	rec = s.do(http.MethodGet, "/api/snapshots/lab", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	etag := rec.Header().Get("ETag")
	assert.Equal(t, `"`+info.Checksum+`"`, etag)

	req := httptest.NewRequest(http.MethodGet, "/api/snapshots/lab", nil)
	req.Header.Set("If-None-Match", etag)
	cached := httptest.NewRecorder()
	s.handler.ServeHTTP(cached, req)
	assert.Equal(t, http.StatusNotModified, cached.Code)

	s.do(http.MethodDelete, "/api/devices/"+decode[service.TopologyView](t, s.do(http.MethodGet, "/api/topology", nil)).Devices[0].ID, nil)

	rec = s.do(http.MethodPost, "/api/snapshots/lab/load", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decode[service.TopologyView](t, rec).DeviceCount)

	list := decode[[]domain.SnapshotInfo](t, s.do(http.MethodGet, "/api/snapshots", nil))
	assert.Len(t, list, 1)

	rec = s.do(http.MethodDelete, "/api/snapshots/lab", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = s.do(http.MethodPost, "/api/snapshots/lab/load", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSimulationEndpoints(t *testing.T) {
	s := newTestServer(t)
	a := s.addDevice(domain.DeviceTypeComputer)
	b := s.addDevice(domain.DeviceTypeHTTPServer)

	rec := s.do(http.MethodPost, "/api/messages", service.SendMessageRequest{From: a.ID, To: b.ID, Type: "http"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = s.do(http.MethodPost, "/api/simulation/start", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[service.SimulationView](t, rec).Clock.Playing)

	rec = s.do(http.MethodPut, "/api/simulation/speed", SpeedRequest{Speed: 0})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0.1, decode[service.SimulationView](t, rec).Clock.Speed)

	rec = s.do(http.MethodPost, "/api/simulation/step", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	view := decode[service.SimulationView](t, rec)
	require.Len(t, view.Messages, 1)
	assert.InDelta(t, 0.01, view.Messages[0].Progress, 1e-9)

	rec = s.do(http.MethodPost, "/api/simulation/rewind", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(http.MethodPost, "/api/messages", service.SendMessageRequest{From: a.ID, To: "nobody"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMiddleware(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodOptions, "/api/topology", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	s.do(http.MethodGet, "/api/topology", nil)
	s.do(http.MethodGet, "/api/devices/missing", nil)
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.HTTPRequests.WithLabelValues("GET", "GET /api/topology", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.HTTPRequests.WithLabelValues("GET", "GET /api/devices/{id}", "404")))

	rec = s.do(http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "netsketch_devices")
}

func TestRecover(t *testing.T) {
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}), Recover)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestChainOrder(t *testing.T) {
	var order []string
	mark := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}), mark("a"), mark("b"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, []string{"a", "b"}, order)
}
