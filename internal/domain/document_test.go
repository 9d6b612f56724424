package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		doc := NewDocument()
		doc.AddDevice(Device{ID: "a"})
		doc.AddDevice(Device{ID: "b"})
		doc.AddLink(*NewLink("l1", "a", 0, "b", 0))
		assert.NoError(t, doc.Validate())
	})

	t.Run("collects every problem", func(t *testing.T) {
		doc := NewDocument()
		doc.AddDevice(Device{ID: "a"})
		doc.AddDevice(Device{ID: "a"})
		doc.AddDevice(Device{})
		doc.AddLink(Link{})

		err := doc.Validate()
		require.Error(t, err)

		var verr *ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Len(t, verr.Errors, 3)
		assert.True(t, errors.Is(err, ErrInvalidDocument))
	})
}

func TestNewDocument(t *testing.T) {
	doc := NewDocument()
	assert.Equal(t, CurrentVersion, doc.Version)
	assert.NotNil(t, doc.Devices)
	assert.NotNil(t, doc.Links)
}

func TestLink(t *testing.T) {
	l := NewLink("l1", "a", 0, "b", 3)
	assert.Equal(t, LinkTypeEthernet, l.Type)
	assert.Equal(t, LinkStatusActive, l.Status)
	assert.True(t, l.Touches("a"))
	assert.True(t, l.Touches("b"))
	assert.False(t, l.Touches("c"))

	c := l.Clone()
	c.Port2 = 9
	assert.Equal(t, 3, l.Port2)
}

func TestSelection(t *testing.T) {
	assert.True(t, Selection{}.IsEmpty())
	assert.False(t, Selection{ID: "a", Kind: ElementDevice}.IsEmpty())
}
