package codegen

import (
	"slices"
	"strings"

	"github.com/mikros-dev/protoc-gen-mikros-rest/pkg/rest"
)

const (
	// DefaultRuntimePath is the import path of the runtime package used by
	// generated handlers.
	DefaultRuntimePath = "github.com/mikros-dev/protoc-gen-mikros-rest/pkg/rest"

	// DefaultKeepAliveSecs is the interval between event stream pings.
	DefaultKeepAliveSecs = 15
)

// Config carries the code synthesizer options.
type Config struct {
	// RuntimePath is the import path of the runtime package.
	RuntimePath string

	// WrapperType is the full proto name of the identifier wrapper
	// message.
	WrapperType string

	// ExtensionType is an optional "import/path.Type" (with an optional
	// leading "*") forwarded from the HTTP request into the RPC context.
	ExtensionType string

	// PublicMethods lists "Method" or "Service.Method" names whose routes
	// go into the public manifest.
	PublicMethods []string

	// KeepAliveSecs is the event stream keep-alive interval.
	KeepAliveSecs int

	// ExtraForwardedHeaders are forwarded as RPC metadata along with
	// the default ones.
	ExtraForwardedHeaders []string
}

func (c Config) runtimePath() string {
	if c.RuntimePath == "" {
		return DefaultRuntimePath
	}

	return c.RuntimePath
}

func (c Config) keepAliveSecs() int {
	if c.KeepAliveSecs == 0 {
		return DefaultKeepAliveSecs
	}

	return max(c.KeepAliveSecs, 1)
}

func (c Config) forwardedHeaders() []string {
	headers := append([]string{}, rest.ForwardedHeaders...)
	for _, h := range c.ExtraForwardedHeaders {
		h = strings.ToLower(strings.TrimSpace(h))
		if h != "" && !slices.Contains(headers, h) {
			headers = append(headers, h)
		}
	}

	return headers
}
