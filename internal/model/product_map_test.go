package model

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/merchant-agent/backend-go/internal/domain"
)

func TestNewProductMapSortsAndDedupes(t *testing.T) {
	pm := NewProductMap([]string{"P3", "P1", "P2", "P1"})

	assert.Equal(t, 3, pm.Len())
	assert.Equal(t, []string{"P1", "P2", "P3"}, pm.IDs())

	code, err := pm.Code("P2")
	require.NoError(t, err)
	assert.Equal(t, 1, code)

	id, ok := pm.ID(2)
	assert.True(t, ok)
	assert.Equal(t, "P3", id)

	_, ok = pm.ID(3)
	assert.False(t, ok)
}

func TestProductMapUnknown(t *testing.T) {
	pm := NewProductMap([]string{"P1"})

	_, err := pm.Code("P9")
	assert.ErrorIs(t, err, domain.ErrUnknownProduct)
}

func TestProductMapJSON(t *testing.T) {
	pm := NewProductMap([]string{"P1", "P2"})

	var buf bytes.Buffer
	_, err := pm.WriteTo(&buf)
	require.NoError(t, err)
	assert.JSONEq(t, `{"0":"P1","1":"P2"}`, buf.String())

	loaded, err := ReadProductMap(&buf)
	require.NoError(t, err)
	assert.Equal(t, pm.IDs(), loaded.IDs())
}

func TestReadProductMapValidates(t *testing.T) {
	cases := map[string]string{
		"non integer": `{"a":"P1"}`,
		"gap":         `{"0":"P1","2":"P2"}`,
		"duplicate":   `{"0":"P1","1":"P1"}`,
		"empty id":    `{"0":""}`,
		"same code":   `{"0":"P1","00":"P2"}`,
	}
	for name, body := range cases {
		_, err := ReadProductMap(bytes.NewBufferString(body))
		assert.Error(t, err, name)
	}
}
