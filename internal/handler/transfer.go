package handler

import (
	"bytes"
	"mime"
	"net/http"
	"path"
	"strings"

	"netsketch/internal/service"
)

// exportTypes maps export formats to content type and download name
var exportTypes = map[string][2]string{
	service.FormatJSON:    {"application/json", "topology.json"},
	service.FormatYAML:    {"application/x-yaml", "topology.yaml"},
	service.FormatAnsible: {"application/x-yaml", "inventory.yml"},
}

// Export writes the topology as json, yaml or an Ansible inventory
func (h *EditorHandler) Export(w http.ResponseWriter, r *http.Request) {
	format := r.PathValue("format")
	kind, ok := exportTypes[format]
	if !ok {
		writeError(w, "Unsupported export format", format, http.StatusBadRequest)
		return
	}

	var buf bytes.Buffer
	if err := h.svc.Export(format, &buf); err != nil {
		writeServiceError(w, "Failed to export topology", err)
		return
	}

	w.Header().Set("Content-Type", kind[0])
	if r.URL.Query().Has("download") {
		name := downloadName(r.URL.Query().Get("download"), kind[1])
		w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	}
	w.Write(buf.Bytes())
}

// downloadName turns the download query value into a file name. Empty and
// boolean values select the format's default name; other values are reduced
// to their base name and get the default extension when they have none.
func downloadName(value, fallback string) string {
	switch strings.ToLower(value) {
	case "", "1", "true", "yes":
		return fallback
	}

	name := path.Base(strings.ReplaceAll(value, "\\", "/"))
	if name == "." || name == "/" || name == ".." {
		return fallback
	}
	if path.Ext(name) == "" {
		name += path.Ext(fallback)
	}
	return name
}

// Import reads a json, yaml, ansible or nmap document from the request body
func (h *EditorHandler) Import(w http.ResponseWriter, r *http.Request) {
	format := strings.TrimSuffix(r.PathValue("format"), "-xml")

	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	result, err := h.svc.Import(format, body)
	if err != nil {
		writeServiceError(w, "Failed to import", err)
		return
	}
	writeJSON(w, result, http.StatusOK)
}
