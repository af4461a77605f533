package openapi

import (
	"strings"

	"github.com/mikros-dev/protoc-gen-mikros-rest/pkg/openapi/spec"
)

// DefaultErrorSchemaRef is the component holding the REST error envelope
// when no other reference is configured.
const DefaultErrorSchemaRef = schemaRefPrefix + "ErrorResponse"

// Config carries the patch pipeline options.
type Config struct {
	// ErrorSchemaRef is the local reference of the error envelope schema.
	ErrorSchemaRef string

	// Method lists accept "Method" or "Service.Method" names.
	UnimplementedMethods []string
	PublicMethods        []string
	DeprecatedMethods    []string

	PlainTextEndpoints []PlainTextEndpoint
	MetricsPath        string
	ReadinessPath      string
	BearerDescription  string
	Servers            []*spec.Server
	Info               *spec.Info

	// WriteOnlyFields and ReadOnlyFields are extra field name fragments
	// marked writeOnly or readOnly.
	WriteOnlyFields []string
	ReadOnlyFields  []string

	Transforms Transforms
}

// PlainTextEndpoint is a path answering text/plain instead of JSON.
type PlainTextEndpoint struct {
	Path    string
	Example string
}

// Transforms switches optional parts of the pipeline.
type Transforms struct {
	UpgradeTo31            bool
	AnnotateSSE            bool
	InjectValidation       bool
	AddSecurity            bool
	InlineRequestBodies    bool
	FlattenUUIDRefs        bool
	NormalizeLineEndings   bool
	InjectServers          bool
	RewriteCreateResponses bool
	AnnotateFieldAccess    bool
}

// DefaultTransforms enables every transform.
func DefaultTransforms() Transforms {
	return Transforms{
		UpgradeTo31:            true,
		AnnotateSSE:            true,
		InjectValidation:       true,
		AddSecurity:            true,
		InlineRequestBodies:    true,
		FlattenUUIDRefs:        true,
		NormalizeLineEndings:   true,
		InjectServers:          true,
		RewriteCreateResponses: true,
		AnnotateFieldAccess:    true,
	}
}

// NewConfig returns a configuration with the default error schema and all
// transforms enabled.
func NewConfig() *Config {
	return &Config{
		ErrorSchemaRef: DefaultErrorSchemaRef,
		Transforms:     DefaultTransforms(),
	}
}

func (c *Config) errorSchemaRef() string {
	if c.ErrorSchemaRef == "" {
		return DefaultErrorSchemaRef
	}

	return c.ErrorSchemaRef
}

func (c *Config) errorSchemaName() (string, error) {
	name, ok := strings.CutPrefix(c.errorSchemaRef(), schemaRefPrefix)
	if !ok || name == "" || strings.Contains(name, "/") {
		return "", ErrInvalidErrorSchemaRef
	}

	return name, nil
}

func (c *Config) bearerDescription() string {
	if c.BearerDescription == "" {
		return "Bearer authentication token"
	}

	return c.BearerDescription
}
