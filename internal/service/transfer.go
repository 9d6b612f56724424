package service

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"netsketch/internal/codec"
	"netsketch/internal/domain"
	"netsketch/internal/logging"
	"netsketch/internal/topology"
)

// Import/export formats
const (
	FormatJSON    = "json"
	FormatYAML    = "yaml"
	FormatAnsible = "ansible"
	FormatNmap    = "nmap"
)

// Import strategies
const (
	StrategyReplace = "replace"
	StrategyAppend  = "append"
)

// ImportResult summarizes an import
type ImportResult struct {
	Format   string `json:"format"`
	Strategy string `json:"strategy"`
	Devices  int    `json:"devices"`
	Links    int    `json:"links"`
	Skipped  int    `json:"skipped,omitempty"`
}

// FormatFromPath guesses a document format from a file extension
func FormatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".xml":
		return FormatNmap
	}
	return FormatJSON
}

// ImporterFor returns the parser for a format
func ImporterFor(format string) (codec.Importer, error) {
	switch format {
	case FormatJSON:
		return codec.NewJSONCodec(), nil
	case FormatYAML:
		return codec.NewYAMLCodec(), nil
	case FormatAnsible:
		return codec.NewAnsibleCodec(), nil
	case FormatNmap:
		return codec.NewNmapCodec(), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
}

// ExporterFor returns the writer for a format
func ExporterFor(format string) (codec.Exporter, error) {
	switch format {
	case FormatJSON:
		return codec.NewJSONCodec(), nil
	case FormatYAML:
		return codec.NewYAMLCodec(), nil
	case FormatAnsible:
		return codec.NewAnsibleCodec(), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
}

// Save returns the topology as version 2 JSON text
func (s *EditorService) Save() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Save()
}

// Load replaces the topology with saved JSON text. A payload that fails to
// parse or validate leaves the session unchanged.
func (s *EditorService) Load(data []byte, source string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked(source, func() error { return s.store.Load(data) })
}

// LoadDocument replaces the topology with a parsed document
func (s *EditorService) LoadDocument(doc *domain.Document, source string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked(source, func() error { return s.store.LoadDocument(doc) })
}

func (s *EditorService) loadLocked(source string, load func() error) error {
	log := logging.WithOperation("load").WithField("source", source)
	sel := s.store.Selection()

	if err := load(); err != nil {
		s.observeAction("load", false)
		log.WithError(err).Warn("topology load failed, keeping current state")
		return fmt.Errorf("load topology from %s: %w", source, err)
	}

	s.observeAction("load", true)
	s.bus.Publish(Event{Type: EventTopologyLoaded, Payload: map[string]any{
		"source":       source,
		"device_count": s.store.DeviceCount(),
		"link_count":   s.store.LinkCount(),
	}})
	s.publishSelection(sel)
	log.WithFields(logrus.Fields{
		"devices": s.store.DeviceCount(),
		"links":   s.store.LinkCount(),
	}).Info("topology loaded")

	return nil
}

// LoadFile replaces the topology with a JSON or YAML file
func (s *EditorService) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	format := FormatFromPath(path)
	if format == FormatJSON {
		return s.Load(data, path)
	}
	_, err = s.Import(format, bytes.NewReader(data))
	return err
}

// Import reads a document in the given format. JSON and YAML documents
// replace the topology; Ansible inventories and nmap reports are appended
// device by device, so each added device can be undone.
func (s *EditorService) Import(format string, r io.Reader) (*ImportResult, error) {
	importer, err := ImporterFor(format)
	if err != nil {
		return nil, err
	}

	doc, err := importer.Parse(r)
	if err != nil {
		logging.WithOperation("import").WithField("format", format).WithError(err).Warn("import failed")
		return nil, fmt.Errorf("import %s: %w", format, err)
	}

	switch format {
	case FormatJSON, FormatYAML:
		if err := s.LoadDocument(doc, "import:"+format); err != nil {
			return nil, err
		}
		return &ImportResult{
			Format:   format,
			Strategy: StrategyReplace,
			Devices:  len(doc.Devices),
			Links:    len(doc.Links),
		}, nil
	}

	result := s.AppendDocument(doc)
	result.Format = format
	return result, nil
}

// AppendDocument adds every device and link of doc as new, undoable
// elements. Devices get fresh ids; links are remapped onto them and skipped
// when their ports are unavailable.
func (s *EditorService) AppendDocument(doc *domain.Document) *ImportResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := &ImportResult{Strategy: StrategyAppend}
	ids := make(map[string]string, len(doc.Devices))

	for _, d := range doc.Devices {
		opts := []topology.DeviceOption{
			topology.WithName(d.Name),
			topology.WithGroup(d.Group),
		}
		if d.Ports != nil {
			ports := make([]domain.Port, len(d.Ports))
			for i, p := range d.Ports {
				p.Free()
				ports[i] = p
			}
			opts = append(opts, topology.WithPorts(ports))
		}
		if d.Apps != nil {
			opts = append(opts, topology.WithApps(d.Apps...))
		}
		for k, v := range d.Extra {
			opts = append(opts, topology.WithField(k, v))
		}

		id := s.store.AddDevice(d.Type, d.X, d.Y, opts...)
		ids[d.ID] = id
		result.Devices++

		device, _ := s.store.Device(id)
		s.bus.Publish(Event{Type: EventDeviceAdded, Payload: device})
	}

	for _, l := range doc.Links {
		d1, ok1 := ids[l.Device1]
		d2, ok2 := ids[l.Device2]
		if !ok1 || !ok2 {
			result.Skipped++
			continue
		}
		id, ok := s.store.AddLink(d1, l.Port1, d2, l.Port2)
		if !ok {
			result.Skipped++
			continue
		}
		result.Links++

		link, _ := s.store.Link(id)
		s.bus.Publish(Event{Type: EventLinkAdded, Payload: link})
	}

	s.observeAction("import", true)
	logging.WithOperation("import").WithFields(logrus.Fields{
		"devices": result.Devices,
		"links":   result.Links,
		"skipped": result.Skipped,
	}).Info("appended document")

	return result
}

// Export writes the current topology in the given format
func (s *EditorService) Export(format string, w io.Writer) error {
	exporter, err := ExporterFor(format)
	if err != nil {
		return err
	}

	s.mu.Lock()
	doc := s.store.Document()
	s.mu.Unlock()

	return exporter.Export(doc, w)
}
