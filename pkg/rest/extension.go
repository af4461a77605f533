package rest

import (
	"context"
	"net/http"
)

type extensionKey struct{}

type typedExtensionKey[T any] struct{}

// WithExtension attaches a request-scoped value, usually set by an
// authentication middleware, that generated handlers forward to the RPC.
func WithExtension(r *http.Request, v any) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), extensionKey{}, v))
}

// ForwardExtension makes the request extension available to the RPC as a
// T. Values of another type are not forwarded.
func ForwardExtension[T any](ctx context.Context) context.Context {
	v, ok := ctx.Value(extensionKey{}).(T)
	if !ok {
		return ctx
	}

	return context.WithValue(ctx, typedExtensionKey[T]{}, v)
}

// ExtensionFrom returns the extension forwarded to the RPC.
func ExtensionFrom[T any](ctx context.Context) (T, bool) {
	v, ok := ctx.Value(typedExtensionKey[T]{}).(T)
	return v, ok
}
