package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"netsketch/internal/domain"
	"netsketch/internal/logging"
	"netsketch/internal/service"
)

// maxBodyBytes bounds request bodies, including imported documents
const maxBodyBytes = 10 << 20

// EditorHandler serves the editor API
type EditorHandler struct {
	svc *service.EditorService
}

// NewEditorHandler creates a new editor handler
func NewEditorHandler(svc *service.EditorService) *EditorHandler {
	return &EditorHandler{svc: svc}
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// GetTopology returns devices, links and editor state
func (h *EditorHandler) GetTopology(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.svc.Topology(), http.StatusOK)
}

// GetDevice returns a single device
func (h *EditorHandler) GetDevice(w http.ResponseWriter, r *http.Request) {
	device, err := h.svc.Device(r.PathValue("id"))
	if err != nil {
		writeServiceError(w, "Failed to get device", err)
		return
	}
	writeJSON(w, device, http.StatusOK)
}

// CreateDevice places a new device
func (h *EditorHandler) CreateDevice(w http.ResponseWriter, r *http.Request) {
	var req service.AddDeviceRequest
	if !decodeBody(w, r, &req) {
		return
	}

	device, err := h.svc.AddDevice(req)
	if err != nil {
		writeServiceError(w, "Failed to create device", err)
		return
	}
	writeJSON(w, device, http.StatusCreated)
}

// UpdateDevice merges a partial device object onto an existing device
func (h *EditorHandler) UpdateDevice(w http.ResponseWriter, r *http.Request) {
	var updates map[string]any
	if !decodeBody(w, r, &updates) {
		return
	}

	device, err := h.svc.UpdateDevice(r.PathValue("id"), updates)
	if err != nil {
		writeServiceError(w, "Failed to update device", err)
		return
	}
	writeJSON(w, device, http.StatusOK)
}

// PositionRequest moves a device on the canvas
type PositionRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// MoveDevice changes a device position
func (h *EditorHandler) MoveDevice(w http.ResponseWriter, r *http.Request) {
	var req PositionRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.svc.MoveDevice(r.PathValue("id"), req.X, req.Y); err != nil {
		writeServiceError(w, "Failed to move device", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteDevice removes a device and its links
func (h *EditorHandler) DeleteDevice(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.RemoveDevice(r.PathValue("id")); err != nil {
		writeServiceError(w, "Failed to delete device", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetLink returns a single link
func (h *EditorHandler) GetLink(w http.ResponseWriter, r *http.Request) {
	link, err := h.svc.Link(r.PathValue("id"))
	if err != nil {
		writeServiceError(w, "Failed to get link", err)
		return
	}
	writeJSON(w, link, http.StatusOK)
}

// CreateLink connects two ports
func (h *EditorHandler) CreateLink(w http.ResponseWriter, r *http.Request) {
	var req service.AddLinkRequest
	if !decodeBody(w, r, &req) {
		return
	}

	link, err := h.svc.AddLink(req)
	if err != nil {
		writeServiceError(w, "Failed to create link", err)
		return
	}
	writeJSON(w, link, http.StatusCreated)
}

// DeleteLink removes a link
func (h *EditorHandler) DeleteLink(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.RemoveLink(r.PathValue("id")); err != nil {
		writeServiceError(w, "Failed to delete link", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetSelection selects a device or link
func (h *EditorHandler) SetSelection(w http.ResponseWriter, r *http.Request) {
	var sel domain.Selection
	if !decodeBody(w, r, &sel) {
		return
	}

	if err := h.svc.Select(sel.ID, sel.Kind); err != nil {
		writeServiceError(w, "Failed to select", err)
		return
	}
	writeJSON(w, h.svc.Selection(), http.StatusOK)
}

// ClearSelection drops the selection
func (h *EditorHandler) ClearSelection(w http.ResponseWriter, r *http.Request) {
	h.svc.ClearSelection()
	w.WriteHeader(http.StatusNoContent)
}

// DeleteSelected removes the selected element
func (h *EditorHandler) DeleteSelected(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteSelected(); err != nil {
		writeServiceError(w, "Failed to delete selection", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Undo reverts the last command
func (h *EditorHandler) Undo(w http.ResponseWriter, r *http.Request) {
	change, err := h.svc.Undo()
	if err != nil {
		writeServiceError(w, "Failed to undo", err)
		return
	}
	writeJSON(w, change, http.StatusOK)
}

// Redo replays the next undone command
func (h *EditorHandler) Redo(w http.ResponseWriter, r *http.Request) {
	change, err := h.svc.Redo()
	if err != nil {
		writeServiceError(w, "Failed to redo", err)
		return
	}
	writeJSON(w, change, http.StatusOK)
}

// GetHistory returns the command log
func (h *EditorHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.svc.History(), http.StatusOK)
}

// Helper functions

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logging.Errorf("Failed to encode JSON: %v", err)
	}
}

func writeError(w http.ResponseWriter, msg, details string, statusCode int) {
	writeJSON(w, ErrorResponse{Error: msg, Details: details}, statusCode)
}

// writeServiceError maps a service error to its HTTP status
func writeServiceError(w http.ResponseWriter, msg string, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		logging.WithField("error", err).Error(msg)
	}
	writeError(w, msg, err.Error(), code)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrDeviceNotFound),
		errors.Is(err, service.ErrLinkNotFound),
		errors.Is(err, service.ErrSnapshotNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrPortUnavailable),
		errors.Is(err, service.ErrNothingToUndo),
		errors.Is(err, service.ErrNothingToRedo),
		errors.Is(err, service.ErrNoSelection):
		return http.StatusConflict
	case errors.Is(err, service.ErrInvalidDevice),
		errors.Is(err, service.ErrInvalidUpdate),
		errors.Is(err, service.ErrInvalidSelection),
		errors.Is(err, service.ErrInvalidDocument),
		errors.Is(err, service.ErrInvalidName),
		errors.Is(err, service.ErrUnsupportedFormat):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrNoRepository):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
