package rest

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/metadata"
)

func TestIncomingContext(t *testing.T) {
	r := httptest.NewRequest("GET", "/v1/users", nil)
	r.Header.Set("Authorization", "Bearer token")
	r.Header.Set("User-Agent", "test")
	r.Header.Set("Cf-Connecting-Ip", "10.0.0.1")
	r.Header.Set("X-Other", "ignored")

	headers := append(append([]string{}, ForwardedHeaders...), CloudflareHeaders...)
	ctx := IncomingContext(r, headers...)

	md, ok := metadata.FromIncomingContext(ctx)
	require.True(t, ok)
	assert.Equal(t, []string{"Bearer token"}, md.Get("authorization"))
	assert.Equal(t, []string{"test"}, md.Get("user-agent"))
	assert.Equal(t, []string{"10.0.0.1"}, md.Get("cf-connecting-ip"))
	assert.Empty(t, md.Get("x-other"))
	assert.Empty(t, md.Get("x-real-ip"))
}

func TestIncomingContextKeepsExistingMetadata(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r = r.WithContext(metadata.NewIncomingContext(context.Background(), metadata.Pairs("tenant", "a")))
	r.Header.Set("X-Real-Ip", "1.2.3.4")

	md, ok := metadata.FromIncomingContext(IncomingContext(r, ForwardedHeaders...))
	require.True(t, ok)
	assert.Equal(t, []string{"a"}, md.Get("tenant"))
	assert.Equal(t, []string{"1.2.3.4"}, md.Get("x-real-ip"))
}
