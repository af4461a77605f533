package rest

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

type claims struct {
	Subject string
}

func TestForwardExtension(t *testing.T) {
	r := WithExtension(httptest.NewRequest("GET", "/", nil), &claims{Subject: "user-1"})

	ctx := ForwardExtension[*claims](r.Context())
	c, ok := ExtensionFrom[*claims](ctx)
	assert.True(t, ok)
	assert.Equal(t, "user-1", c.Subject)

	ctx = ForwardExtension[string](r.Context())
	_, ok = ExtensionFrom[string](ctx)
	assert.False(t, ok)
}
