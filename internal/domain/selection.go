package domain

// ElementKind tags what a selection points at
type ElementKind string

const (
	ElementNone   ElementKind = ""
	ElementDevice ElementKind = "device"
	ElementLink   ElementKind = "link"
)

// Selection is the single element currently selected in the editor
type Selection struct {
	ID   string      `json:"id,omitempty"`
	Kind ElementKind `json:"kind,omitempty"`
}

// IsEmpty reports whether nothing is selected
func (s Selection) IsEmpty() bool {
	return s.ID == ""
}
