package codec

import (
	"encoding/json"
	"fmt"
	"io"

	"netsketch/internal/domain"
)

// JSONCodec handles the native version 2 document format
type JSONCodec struct{}

// NewJSONCodec creates a new JSON codec
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{}
}

// Format returns the codec format identifier
func (c *JSONCodec) Format() string {
	return "json"
}

// Parse imports a topology document from JSON. The input must hold exactly
// one JSON object.
func (c *JSONCodec) Parse(r io.Reader) (*domain.Document, error) {
	var doc *domain.Document
	decoder := json.NewDecoder(r)
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: failed to parse JSON: %v", domain.ErrInvalidDocument, err)
	}
	if doc == nil {
		return nil, fmt.Errorf("%w: document is null", domain.ErrInvalidDocument)
	}
	if _, err := decoder.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: unexpected data after document", domain.ErrInvalidDocument)
	}

	return doc, nil
}

// Export exports a topology document to JSON
func (c *JSONCodec) Export(doc *domain.Document, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	return nil
}
