package topology

import (
	"bytes"
	"fmt"

	"netsketch/internal/codec"
	"netsketch/internal/domain"
)

// Document returns the current topology as a versioned document
func (s *Store) Document() *domain.Document {
	doc := domain.NewDocument()
	doc.Timestamp = s.now().UnixMilli()
	for _, d := range s.devices.values() {
		doc.AddDevice(*d.Clone())
	}
	for _, l := range s.links.values() {
		doc.AddLink(*l)
	}
	return doc
}

// Save serializes the topology as JSON. It does not touch the command log.
func (s *Store) Save() ([]byte, error) {
	var buf bytes.Buffer
	if err := codec.NewJSONCodec().Export(s.Document(), &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Load replaces the topology with a JSON document. The payload is fully
// parsed and validated before any state changes, so a failed load leaves
// the store as it was.
func (s *Store) Load(data []byte) error {
	doc, err := codec.NewJSONCodec().Parse(bytes.NewReader(data))
	if err != nil {
		return err
	}
	return s.LoadDocument(doc)
}

// LoadDocument replaces the topology with an already parsed document.
// Devices and links are inserted as given; port state is not re-derived.
// Selection and the command log are reset.
func (s *Store) LoadDocument(doc *domain.Document) error {
	if doc == nil {
		return fmt.Errorf("%w: empty document", domain.ErrInvalidDocument)
	}
	if err := doc.Validate(); err != nil {
		return err
	}

	devices := make([]*domain.Device, 0, len(doc.Devices))
	for i := range doc.Devices {
		devices = append(devices, doc.Devices[i].Clone())
	}
	links := make([]*domain.Link, 0, len(doc.Links))
	for i := range doc.Links {
		links = append(links, doc.Links[i].Clone())
	}

	s.devices.clear()
	s.links.clear()
	s.ClearSelection()
	s.history.reset()

	for _, d := range devices {
		s.devices.set(d.ID, d)
	}
	for _, l := range links {
		s.links.set(l.ID, l)
	}

	return nil
}
