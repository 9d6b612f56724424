package handler

import "net/http"

// SnapshotRequest carries the optional description of a saved snapshot
type SnapshotRequest struct {
	Description string `json:"description"`
}

// ListSnapshots returns stored snapshot metadata
func (h *EditorHandler) ListSnapshots(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.ListSnapshots(r.Context())
	if err != nil {
		writeServiceError(w, "Failed to list snapshots", err)
		return
	}
	writeJSON(w, list, http.StatusOK)
}

// GetSnapshot returns the saved document text of a snapshot. The checksum is
// the ETag, so unchanged snapshots answer 304.
func (h *EditorHandler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := h.svc.GetSnapshot(r.Context(), r.PathValue("name"))
	if err != nil {
		writeServiceError(w, "Failed to get snapshot", err)
		return
	}

	etag := `"` + snap.Checksum + `"`
	w.Header().Set("ETag", etag)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(snap.Data)
}

// SaveSnapshot stores the current topology under a name
func (h *EditorHandler) SaveSnapshot(w http.ResponseWriter, r *http.Request) {
	var req SnapshotRequest
	if r.ContentLength != 0 && !decodeBody(w, r, &req) {
		return
	}

	info, err := h.svc.SaveSnapshot(r.Context(), r.PathValue("name"), req.Description)
	if err != nil {
		writeServiceError(w, "Failed to save snapshot", err)
		return
	}
	writeJSON(w, info, http.StatusOK)
}

// LoadSnapshot replaces the topology with a snapshot
func (h *EditorHandler) LoadSnapshot(w http.ResponseWriter, r *http.Request) {
	if _, err := h.svc.LoadSnapshot(r.Context(), r.PathValue("name")); err != nil {
		writeServiceError(w, "Failed to load snapshot", err)
		return
	}
	writeJSON(w, h.svc.Topology(), http.StatusOK)
}

// DeleteSnapshot removes a snapshot
func (h *EditorHandler) DeleteSnapshot(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteSnapshot(r.Context(), r.PathValue("name")); err != nil {
		writeServiceError(w, "Failed to delete snapshot", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
