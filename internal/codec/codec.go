package codec

import (
	"io"

	"netsketch/internal/domain"
)

// Importer interface for importing topology data from various formats
type Importer interface {
	Parse(r io.Reader) (*domain.Document, error)
	Format() string
}

// Exporter interface for exporting topology data to various formats
type Exporter interface {
	Export(doc *domain.Document, w io.Writer) error
	Format() string
}

// Grid spacing used to place devices that arrive without coordinates
const (
	gridColumns = 6
	gridSpacing = 150.0
	gridOrigin  = 100.0
)

// gridPosition returns canvas coordinates for the i-th imported device
func gridPosition(i int) (float64, float64) {
	col := i % gridColumns
	row := i / gridColumns
	return gridOrigin + float64(col)*gridSpacing, gridOrigin + float64(row)*gridSpacing
}
