package handler

import (
	"net/http"

	"netsketch/internal/service"
)

// SpeedRequest sets the playback multiplier
type SpeedRequest struct {
	Speed float64 `json:"speed"`
}

// GetSimulation returns the clock and the messages in flight
func (h *EditorHandler) GetSimulation(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.svc.Simulation(), http.StatusOK)
}

// ControlSimulation handles start, pause, stop and step
func (h *EditorHandler) ControlSimulation(w http.ResponseWriter, r *http.Request) {
	var view service.SimulationView
	switch action := r.PathValue("action"); action {
	case "start":
		view = h.svc.StartSimulation()
	case "pause":
		view = h.svc.PauseSimulation()
	case "stop":
		view = h.svc.StopSimulation()
	case "step":
		view = h.svc.StepSimulation()
	default:
		writeError(w, "Unknown simulation action", action, http.StatusNotFound)
		return
	}
	writeJSON(w, view, http.StatusOK)
}

// SetSpeed changes the playback multiplier
func (h *EditorHandler) SetSpeed(w http.ResponseWriter, r *http.Request) {
	var req SpeedRequest
	if !decodeBody(w, r, &req) {
		return
	}
	writeJSON(w, h.svc.SetSpeed(req.Speed), http.StatusOK)
}

// SendMessage queues a message animation
func (h *EditorHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req service.SendMessageRequest
	if !decodeBody(w, r, &req) {
		return
	}

	msg, err := h.svc.SendMessage(req)
	if err != nil {
		writeServiceError(w, "Failed to send message", err)
		return
	}
	writeJSON(w, msg, http.StatusCreated)
}
