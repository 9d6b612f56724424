package handler

import (
	"net/http"

	"netsketch/internal/metrics"
)

// Routes registers the editor API on mux. events serves the SSE stream and
// m, when non-nil, serves /metrics.
func Routes(mux *http.ServeMux, h *EditorHandler, events http.Handler, m *metrics.EditorCollector) {
	mux.HandleFunc("GET /api/topology", h.GetTopology)

	// Devices
	mux.HandleFunc("POST /api/devices", h.CreateDevice)
	mux.HandleFunc("GET /api/devices/{id}", h.GetDevice)
	mux.HandleFunc("PUT /api/devices/{id}", h.UpdateDevice)
	mux.HandleFunc("PUT /api/devices/{id}/position", h.MoveDevice)
	mux.HandleFunc("DELETE /api/devices/{id}", h.DeleteDevice)

	// Links
	mux.HandleFunc("POST /api/links", h.CreateLink)
	mux.HandleFunc("GET /api/links/{id}", h.GetLink)
	mux.HandleFunc("DELETE /api/links/{id}", h.DeleteLink)

	// Selection
	mux.HandleFunc("PUT /api/selection", h.SetSelection)
	mux.HandleFunc("DELETE /api/selection", h.ClearSelection)
	mux.HandleFunc("POST /api/selection/delete", h.DeleteSelected)

	// History
	mux.HandleFunc("GET /api/history", h.GetHistory)
	mux.HandleFunc("POST /api/history/undo", h.Undo)
	mux.HandleFunc("POST /api/history/redo", h.Redo)

	// Import/export
	mux.HandleFunc("GET /api/export/{format}", h.Export)
	mux.HandleFunc("POST /api/import/{format}", h.Import)

	// Snapshots
	mux.HandleFunc("GET /api/snapshots", h.ListSnapshots)
	mux.HandleFunc("GET /api/snapshots/{name}", h.GetSnapshot)
	mux.HandleFunc("PUT /api/snapshots/{name}", h.SaveSnapshot)
	mux.HandleFunc("POST /api/snapshots/{name}/load", h.LoadSnapshot)
	mux.HandleFunc("DELETE /api/snapshots/{name}", h.DeleteSnapshot)

	// Simulation
	mux.HandleFunc("GET /api/simulation", h.GetSimulation)
	mux.HandleFunc("POST /api/simulation/{action}", h.ControlSimulation)
	mux.HandleFunc("PUT /api/simulation/speed", h.SetSpeed)
	mux.HandleFunc("POST /api/messages", h.SendMessage)

	if events != nil {
		mux.Handle("GET /events", events)
	}
	if m != nil {
		mux.Handle("GET /metrics", m.Handler())
	}
}

// NewServerHandler builds the full middleware-wrapped API handler
func NewServerHandler(h *EditorHandler, events http.Handler, m *metrics.EditorCollector) http.Handler {
	mux := http.NewServeMux()
	Routes(mux, h, events, m)

	return Chain(mux,
		Recover,
		CORS,
		Logger,
		Metrics(m),
	)
}
