package domain

import (
	"errors"
	"fmt"
	"strings"
)

// CurrentVersion is the document format version written by Save
const CurrentVersion = 2

// ErrInvalidDocument is returned when a topology document fails validation
var ErrInvalidDocument = errors.New("invalid topology document")

// Document is the persisted form of a topology
type Document struct {
	Version   int      `json:"version"`
	Timestamp int64    `json:"timestamp"` // epoch millis
	Devices   []Device `json:"devices"`
	Links     []Link   `json:"links"`
}

// NewDocument creates an empty document at the current version
func NewDocument() *Document {
	return &Document{
		Version: CurrentVersion,
		Devices: make([]Device, 0),
		Links:   make([]Link, 0),
	}
}

// AddDevice appends a device to the document
func (d *Document) AddDevice(device Device) {
	d.Devices = append(d.Devices, device)
}

// AddLink appends a link to the document
func (d *Document) AddLink(link Link) {
	d.Links = append(d.Links, link)
}

// Validate checks the structural requirements for loading a document.
// Port and link cross references are not checked.
func (d *Document) Validate() error {
	var msgs []string

	seen := make(map[string]bool, len(d.Devices))
	for i, dev := range d.Devices {
		if dev.ID == "" {
			msgs = append(msgs, fmt.Sprintf("device %d has no id", i))
			continue
		}
		if seen[dev.ID] {
			msgs = append(msgs, fmt.Sprintf("duplicate device id %s", dev.ID))
		}
		seen[dev.ID] = true
	}

	seenLinks := make(map[string]bool, len(d.Links))
	for i, link := range d.Links {
		if link.ID == "" {
			msgs = append(msgs, fmt.Sprintf("link %d has no id", i))
			continue
		}
		if seenLinks[link.ID] {
			msgs = append(msgs, fmt.Sprintf("duplicate link id %s", link.ID))
		}
		seenLinks[link.ID] = true
	}

	if len(msgs) > 0 {
		return &ValidationError{Errors: msgs}
	}
	return nil
}

// ValidationError lists every problem found in a document
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return "invalid topology document: " + e.Errors[0]
	}
	return fmt.Sprintf("invalid topology document:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidDocument
}
