package openapi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalization(t *testing.T) {
	doc := Document{
		"info": map[string]any{"description": "Line one.\r\nLine two.\r\n"},
		"tags": []any{map[string]any{"name": "A", "description": "x\r\ny"}},
		"x-count": 3,
	}

	p := newTestPatcher(t, doc, nil, NewConfig())
	require.NoError(t, p.normalization())

	assert.Equal(t, "Line one.\nLine two.\n", at(t, doc, "info")["description"])
	assert.Equal(t, "x\ny", mapsOf(doc["tags"])[0]["description"])
	assert.Equal(t, 3, doc["x-count"])
}

func TestNormalizationDisabled(t *testing.T) {
	doc := Document{"info": map[string]any{"description": "a\r\nb"}}

	p := newTestPatcher(t, doc, nil, &Config{})
	require.NoError(t, p.normalization())

	assert.Equal(t, "a\r\nb", at(t, doc, "info")["description"])
}
