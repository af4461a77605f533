package rest

import (
	"context"
	"net/http"
	"strings"

	"google.golang.org/grpc/metadata"
)

var (
	// ForwardedHeaders are copied from every HTTP request into the incoming
	// RPC metadata.
	ForwardedHeaders = []string{
		"authorization",
		"user-agent",
		"x-forwarded-for",
		"x-real-ip",
	}

	// CloudflareHeaders can be appended to the forwarded headers of
	// services running behind Cloudflare.
	CloudflareHeaders = []string{
		"cf-connecting-ip",
	}
)

// IncomingContext derives the RPC context of an HTTP request. Every listed
// header present in the request is added to the incoming metadata under its
// lower case name.
func IncomingContext(r *http.Request, headers ...string) context.Context {
	md := metadata.MD{}
	if existing, ok := metadata.FromIncomingContext(r.Context()); ok {
		md = existing.Copy()
	}

	for _, h := range headers {
		if values := r.Header.Values(h); len(values) > 0 {
			md.Set(strings.ToLower(h), values...)
		}
	}

	return metadata.NewIncomingContext(r.Context(), md)
}
