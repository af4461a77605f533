package settings

import (
	"fmt"
	"os"

	"dario.cat/mergo"
	"github.com/BurntSushi/toml"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"

	"github.com/mikros-dev/protoc-gen-mikros-rest/pkg/openapi/spec"
)

// Settings contains all settings for the plugin read from the plugin TOML
// file.
type Settings struct {
	Debug   bool     `toml:"debug" default:"false"`
	Output  *Output  `toml:"output" default:"{}"`
	Codegen *Codegen `toml:"codegen" default:"{}"`
	Openapi *Openapi `toml:"openapi" default:"{}"`
}

// Output contains all settings related to where generated files are
// written.
type Output struct {
	// Path is prepended to every generated file name. Empty keeps the
	// protoc output directory.
	Path string `toml:"path"`

	// Manifest is the name of the public route manifest file. Use "-" to
	// disable it.
	Manifest string `toml:"manifest" default:"public_routes.yaml"`
}

// Codegen contains all settings related to the generated router and
// handlers.
type Codegen struct {
	Packages              map[string]string `toml:"packages"`
	ProtoRoot             string            `toml:"proto_root"`
	RuntimePath           string            `toml:"runtime_path" default:"github.com/mikros-dev/protoc-gen-mikros-rest/pkg/rest"`
	WrapperType           string            `toml:"wrapper_type"`
	ExtensionType         string            `toml:"extension_type"`
	PublicMethods         []string          `toml:"public_methods"`
	SSEKeepAliveSecs      int               `toml:"sse_keep_alive_secs" default:"15" validate:"gte=1"`
	ExtraForwardedHeaders []string          `toml:"extra_forwarded_headers"`
}

// Openapi contains all settings used when patching an OpenAPI document.
type Openapi struct {
	ErrorSchemaRef       string               `toml:"error_schema_ref" default:"#/components/schemas/ErrorResponse" validate:"startswith=#/components/schemas/"`
	UnimplementedMethods []string             `toml:"unimplemented_methods"`
	PublicMethods        []string             `toml:"public_methods"`
	DeprecatedMethods    []string             `toml:"deprecated_methods"`
	PlainTextEndpoints   []*PlainTextEndpoint `toml:"plain_text_endpoints" validate:"dive"`
	MetricsPath          string               `toml:"metrics_path"`
	ReadinessPath        string               `toml:"readiness_path"`
	BearerDescription    string               `toml:"bearer_description" default:"Bearer authentication token"`
	Servers              []*spec.Server       `toml:"servers" validate:"dive"`
	Info                 *spec.Info           `toml:"info"`
	WriteOnlyFields      []string             `toml:"write_only_fields"`
	ReadOnlyFields       []string             `toml:"read_only_fields"`
	Transforms           *Transforms          `toml:"transforms" default:"{}"`
}

// PlainTextEndpoint is an endpoint answering with text/plain instead of
// JSON.
type PlainTextEndpoint struct {
	Path    string `toml:"path" validate:"required,startswith=/"`
	Example string `toml:"example"`
}

// Transforms enables or disables the optional patch phases. Every toggle
// is enabled unless explicitly set to false.
type Transforms struct {
	UpgradeTo31            *bool `toml:"upgrade_to_3_1"`
	AnnotateSSE            *bool `toml:"annotate_sse"`
	InjectValidation       *bool `toml:"inject_validation"`
	AddSecurity            *bool `toml:"add_security"`
	InlineRequestBodies    *bool `toml:"inline_request_bodies"`
	FlattenUUIDRefs        *bool `toml:"flatten_uuid_refs"`
	NormalizeLineEndings   *bool `toml:"normalize_line_endings"`
	InjectServers          *bool `toml:"inject_servers"`
	RewriteCreateResponses *bool `toml:"rewrite_create_responses"`
	AnnotateFieldAccess    *bool `toml:"annotate_field_access"`
}

// Enabled returns the value of a toggle, treating unset as enabled.
func Enabled(toggle *bool) bool {
	return toggle == nil || *toggle
}

// LoadSettings loads the settings from the given TOML file.
func LoadSettings(filename string) (*Settings, error) {
	var settings Settings

	if filename != "" {
		file, err := os.ReadFile(filename)
		if err != nil {
			return nil, err
		}

		if err := toml.Unmarshal(file, &settings); err != nil {
			return nil, err
		}
	}

	defaultSettings, err := loadDefaultSettings()
	if err != nil {
		return nil, err
	}

	if err := mergo.Merge(&settings, defaultSettings); err != nil {
		return nil, err
	}

	settings.adjustValues()
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}

	return &settings, nil
}

func loadDefaultSettings() (*Settings, error) {
	s := &Settings{}
	if err := defaults.Set(s); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Settings) adjustValues() {
	// The same public methods feed the manifest and the security phase
	// unless the document has its own list.
	if len(s.Openapi.PublicMethods) == 0 {
		s.Openapi.PublicMethods = s.Codegen.PublicMethods
	}

	// Unset toggles are enabled. Default tags can't express this: mergo
	// would turn an explicit false back into true.
	for _, toggle := range []**bool{
		&s.Openapi.Transforms.UpgradeTo31,
		&s.Openapi.Transforms.AnnotateSSE,
		&s.Openapi.Transforms.InjectValidation,
		&s.Openapi.Transforms.AddSecurity,
		&s.Openapi.Transforms.InlineRequestBodies,
		&s.Openapi.Transforms.FlattenUUIDRefs,
		&s.Openapi.Transforms.NormalizeLineEndings,
		&s.Openapi.Transforms.InjectServers,
		&s.Openapi.Transforms.RewriteCreateResponses,
		&s.Openapi.Transforms.AnnotateFieldAccess,
	} {
		if *toggle == nil {
			enabled := true
			*toggle = &enabled
		}
	}
}

// Validate checks if the loaded settings are consistent.
func (s *Settings) Validate() error {
	return validator.New(validator.WithRequiredStructEnabled()).Struct(s)
}
