// Package spec holds the OpenAPI fragments injected into a document by the
// patch pipeline, and the settings types that configure them.
package spec

import (
	"fmt"

	"github.com/goccy/go-yaml"
)

// Info carries the values merged into the document info object.
type Info struct {
	Contact        *Contact      `yaml:"contact,omitempty" toml:"contact"`
	License        *License      `yaml:"license,omitempty" toml:"license"`
	TermsOfService string        `yaml:"termsOfService,omitempty" toml:"terms_of_service"`
	ExternalDocs   *ExternalDocs `yaml:"-" toml:"external_docs"`
}

// Contact is the API contact information.
type Contact struct {
	Name  string `yaml:"name,omitempty" toml:"name"`
	Email string `yaml:"email,omitempty" toml:"email" validate:"omitempty,email"`
	URL   string `yaml:"url,omitempty" toml:"url" validate:"omitempty,url"`
}

// License is the API license.
type License struct {
	Name string `yaml:"name" toml:"name" validate:"required"`
	URL  string `yaml:"url,omitempty" toml:"url" validate:"omitempty,url"`
}

// ExternalDocs points to additional documentation. It is placed at the
// document root.
type ExternalDocs struct {
	URL         string `yaml:"url" toml:"url" validate:"required,url"`
	Description string `yaml:"description,omitempty" toml:"description"`
}

// Server describes a server.
type Server struct {
	URL         string `yaml:"url" toml:"url" validate:"required"`
	Description string `yaml:"description,omitempty" toml:"description"`
}

// SecurityScheme describes a security scheme supported by the API.
type SecurityScheme struct {
	Type         string `yaml:"type"`
	Scheme       string `yaml:"scheme"`
	BearerFormat string `yaml:"bearerFormat,omitempty"`
	Description  string `yaml:"description,omitempty"`
}

// Parameter describes a single operation parameter.
type Parameter struct {
	Name        string  `yaml:"name"`
	Location    string  `yaml:"in"`
	Required    bool    `yaml:"required"`
	Description string  `yaml:"description,omitempty"`
	Schema      *Schema `yaml:"schema,omitempty"`
}

// Response describes a single response from an API Operation.
type Response struct {
	Description string             `yaml:"description"`
	Headers     map[string]*Header `yaml:"headers,omitempty"`
	Content     map[string]*Media  `yaml:"content,omitempty"`
}

// Header describes a response header.
type Header struct {
	Description string  `yaml:"description,omitempty"`
	Required    bool    `yaml:"required,omitempty"`
	Schema      *Schema `yaml:"schema,omitempty"`
}

// Media describes a media type.
type Media struct {
	Schema  *Schema `yaml:"schema,omitempty"`
	Example any     `yaml:"example,omitempty"`
}

// Schema represents the schema of a field, parameter or object.
type Schema struct {
	Ref                string             `yaml:"$ref,omitempty"`
	Type               string             `yaml:"type,omitempty"`
	Format             string             `yaml:"format,omitempty"`
	Pattern            string             `yaml:"pattern,omitempty"`
	Description        string             `yaml:"description,omitempty"`
	Default            any                `yaml:"default,omitempty"`
	Example            any                `yaml:"example,omitempty"`
	RequiredProperties []string           `yaml:"required,omitempty"`
	Properties         map[string]*Schema `yaml:"properties,omitempty"`
}

// Node converts a fragment into the generic tree used by documents, so it
// can be placed anywhere inside a decoded document.
func Node(fragment any) (map[string]any, error) {
	b, err := yaml.Marshal(fragment)
	if err != nil {
		return nil, fmt.Errorf("could not encode fragment: %w", err)
	}

	var node map[string]any
	if err := yaml.Unmarshal(b, &node); err != nil {
		return nil, fmt.Errorf("could not decode fragment: %w", err)
	}
	if node == nil {
		node = map[string]any{}
	}

	return node, nil
}
