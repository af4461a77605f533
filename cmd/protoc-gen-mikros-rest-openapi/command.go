package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/mikros-dev/protoc-gen-mikros-rest/internal/ctxutil"
	"github.com/mikros-dev/protoc-gen-mikros-rest/internal/log"
	"github.com/mikros-dev/protoc-gen-mikros-rest/pkg/settings"
)

const envPrefix = "MIKROS_REST"

// toggles are the --no-* flags disabling optional phases.
var toggles = []struct {
	flag  string
	usage string
	set   func(t *settings.Transforms, enabled *bool)
}{
	{"no-upgrade", "keep the document OpenAPI version", func(t *settings.Transforms, v *bool) { t.UpgradeTo31 = v }},
	{"no-sse", "do not annotate event stream operations", func(t *settings.Transforms, v *bool) { t.AnnotateSSE = v }},
	{"no-validation", "do not inject validation constraints", func(t *settings.Transforms, v *bool) { t.InjectValidation = v }},
	{"no-security", "do not add the bearer security scheme", func(t *settings.Transforms, v *bool) { t.AddSecurity = v }},
	{"no-inline", "keep request body references", func(t *settings.Transforms, v *bool) { t.InlineRequestBodies = v }},
	{"no-uuid-flatten", "keep identifier wrapper references", func(t *settings.Transforms, v *bool) { t.FlattenUUIDRefs = v }},
	{"no-normalize", "keep CRLF line endings", func(t *settings.Transforms, v *bool) { t.NormalizeLineEndings = v }},
	{"no-servers", "do not inject configured servers and info", func(t *settings.Transforms, v *bool) { t.InjectServers = v }},
	{"no-create-status", "keep 200 responses of POST operations", func(t *settings.Transforms, v *bool) { t.RewriteCreateResponses = v }},
	{"no-field-access", "do not mark readOnly and writeOnly fields", func(t *settings.Transforms, v *bool) { t.AnnotateFieldAccess = v }},
}

var errMissingFlag = errors.New("missing required flag")

type command struct {
	v      *viper.Viper
	ctx    context.Context
	logger logrus.FieldLogger
	stdout io.Writer
}

func newCommand(name string, arguments []string, stdout, stderr io.Writer) (*command, error) {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringP("descriptor-set", "d", "", "serialized FileDescriptorSet with source imports")
	fs.String("settings", "", "plugin TOML settings file")
	fs.StringSlice("file", nil, "proto files whose services are used (default all)")
	fs.BoolP("verbose", "v", false, "verbose output")

	if name != "discover" {
		fs.StringP("spec", "s", "", "OpenAPI document produced by the generic generator")
		fs.String("error-schema-ref", "", "local reference of the error envelope schema")
		fs.StringSlice("public-methods", nil, "methods without authentication")
		fs.StringSlice("unimplemented-methods", nil, "methods answering UNIMPLEMENTED")
		fs.StringSlice("deprecated-methods", nil, "methods marked as deprecated")
		for _, t := range toggles {
			fs.Bool(t.flag, false, t.usage)
		}
	}
	if name == "patch" {
		fs.StringP("output", "o", "", "destination of the patched document (default overwrites --spec)")
	}

	if err := fs.Parse(arguments); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		return nil, err
	}

	logger := log.New(log.LoggerOptions{
		Verbose: v.GetBool("verbose"),
		Prefix:  binName,
		Output:  stderr,
	})

	return &command{
		v:      v,
		ctx:    ctxutil.WithLogger(context.Background(), logger),
		logger: logger,
		stdout: stdout,
	}, nil
}

// list reads a list flag. Environment values may separate items with
// commas.
func (c *command) list(key string) []string {
	var values []string
	for _, item := range c.v.GetStringSlice(key) {
		for _, s := range strings.Split(item, ",") {
			if s = strings.TrimSpace(s); s != "" {
				values = append(values, s)
			}
		}
	}

	return values
}

func (c *command) required(key string) (string, error) {
	value := c.v.GetString(key)
	if value == "" {
		return "", fmt.Errorf("%w --%s", errMissingFlag, key)
	}

	return value, nil
}

// settings loads the settings file and applies the command line overrides
// on top of it.
func (c *command) settings() (*settings.Settings, error) {
	cfg, err := settings.LoadSettings(c.v.GetString("settings"))
	if err != nil {
		return nil, fmt.Errorf("could not load settings file: %w", err)
	}

	if c.v.IsSet("error-schema-ref") {
		cfg.Openapi.ErrorSchemaRef = c.v.GetString("error-schema-ref")
	}
	if c.v.IsSet("public-methods") {
		cfg.Openapi.PublicMethods = c.list("public-methods")
	}
	if c.v.IsSet("unimplemented-methods") {
		cfg.Openapi.UnimplementedMethods = c.list("unimplemented-methods")
	}
	if c.v.IsSet("deprecated-methods") {
		cfg.Openapi.DeprecatedMethods = c.list("deprecated-methods")
	}

	for _, t := range toggles {
		if c.v.GetBool(t.flag) {
			disabled := false
			t.set(cfg.Openapi.Transforms, &disabled)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}

	return cfg, nil
}
