package context

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/goccy/go-yaml"
	"google.golang.org/protobuf/compiler/protogen"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/mikros-dev/protoc-gen-mikros-rest/internal/codegen"
	"github.com/mikros-dev/protoc-gen-mikros-rest/internal/ctxutil"
	"github.com/mikros-dev/protoc-gen-mikros-rest/internal/descriptor"
	"github.com/mikros-dev/protoc-gen-mikros-rest/internal/discovery"
	"github.com/mikros-dev/protoc-gen-mikros-rest/internal/openapi"
	"github.com/mikros-dev/protoc-gen-mikros-rest/pkg/settings"
)

// Context holds everything a generation run produced for the plugin
// response.
type Context struct {
	Metadata *discovery.Metadata
	Result   *codegen.Result
	Settings *settings.Settings
}

// BuildContext builds the main context for the REST generation.
func BuildContext(ctx context.Context, plugin *protogen.Plugin, cfg *settings.Settings) (*Context, error) {
	logger := ctxutil.LoggerFromContext(ctx)

	// Extensions are read by the descriptor decoder, not from the files
	// protogen already parsed.
	set, err := DecodeDescriptorSet(&descriptorpb.FileDescriptorSet{
		File: plugin.Request.GetProtoFile(),
	})
	if err != nil {
		return nil, err
	}

	md, err := Discover(ctx, set, cfg, plugin.Request.GetFileToGenerate())
	if err != nil {
		return nil, err
	}
	if len(md.Services) == 0 {
		// If we're not an HTTP service, we don't need to continue.
		logger.Println("no HTTP bound services found")
		return nil, nil
	}

	result, err := codegen.Generate(md, CodegenConfig(cfg))
	if err != nil {
		return nil, err
	}

	return &Context{
		Metadata: md,
		Result:   result,
		Settings: cfg,
	}, nil
}

// DecodeDescriptorSet round-trips a descriptor set through the descriptor
// decoder.
func DecodeDescriptorSet(set *descriptorpb.FileDescriptorSet) (*descriptorpb.FileDescriptorSet, error) {
	b, err := descriptor.Encode(set)
	if err != nil {
		return nil, fmt.Errorf("could not encode descriptor set: %w", err)
	}

	return descriptor.Decode(b)
}

// Discover builds the metadata for the given files, logging every condition
// that was downgraded into a warning.
func Discover(
	ctx context.Context,
	set *descriptorpb.FileDescriptorSet,
	cfg *settings.Settings,
	filesToGenerate []string,
) (*discovery.Metadata, error) {
	logger := ctxutil.LoggerFromContext(ctx)

	md, err := discovery.Discover(set, discovery.Options{
		Packages:        cfg.Codegen.Packages,
		ProtoRoot:       cfg.Codegen.ProtoRoot,
		FilesToGenerate: filesToGenerate,
	})
	if err != nil {
		return nil, err
	}

	for _, warning := range md.Warnings {
		logger.Warnln(warning)
	}
	for _, s := range md.Services {
		logger.Println("processing service:", s.FullName)
	}

	return md, nil
}

// CodegenConfig converts the settings into the code synthesizer options.
func CodegenConfig(cfg *settings.Settings) codegen.Config {
	return codegen.Config{
		RuntimePath:           cfg.Codegen.RuntimePath,
		WrapperType:           cfg.Codegen.WrapperType,
		ExtensionType:         cfg.Codegen.ExtensionType,
		PublicMethods:         cfg.Codegen.PublicMethods,
		KeepAliveSecs:         cfg.Codegen.SSEKeepAliveSecs,
		ExtraForwardedHeaders: cfg.Codegen.ExtraForwardedHeaders,
	}
}

// OpenapiConfig converts the settings into the patch pipeline options.
func OpenapiConfig(cfg *settings.Settings) *openapi.Config {
	var (
		s         = cfg.Openapi
		t         = s.Transforms
		endpoints = make([]openapi.PlainTextEndpoint, 0, len(s.PlainTextEndpoints))
	)

	if t == nil {
		t = &settings.Transforms{}
	}

	for _, e := range s.PlainTextEndpoints {
		endpoints = append(endpoints, openapi.PlainTextEndpoint{
			Path:    e.Path,
			Example: e.Example,
		})
	}

	return &openapi.Config{
		ErrorSchemaRef:       s.ErrorSchemaRef,
		UnimplementedMethods: s.UnimplementedMethods,
		PublicMethods:        s.PublicMethods,
		DeprecatedMethods:    s.DeprecatedMethods,
		PlainTextEndpoints:   endpoints,
		MetricsPath:          s.MetricsPath,
		ReadinessPath:        s.ReadinessPath,
		BearerDescription:    s.BearerDescription,
		Servers:              s.Servers,
		Info:                 s.Info,
		WriteOnlyFields:      s.WriteOnlyFields,
		ReadOnlyFields:       s.ReadOnlyFields,
		Transforms: openapi.Transforms{
			UpgradeTo31:            settings.Enabled(t.UpgradeTo31),
			AnnotateSSE:            settings.Enabled(t.AnnotateSSE),
			InjectValidation:       settings.Enabled(t.InjectValidation),
			AddSecurity:            settings.Enabled(t.AddSecurity),
			InlineRequestBodies:    settings.Enabled(t.InlineRequestBodies),
			FlattenUUIDRefs:        settings.Enabled(t.FlattenUUIDRefs),
			NormalizeLineEndings:   settings.Enabled(t.NormalizeLineEndings),
			InjectServers:          settings.Enabled(t.InjectServers),
			RewriteCreateResponses: settings.Enabled(t.RewriteCreateResponses),
			AnnotateFieldAccess:    settings.Enabled(t.AnnotateFieldAccess),
		},
	}
}

// OutputFilename places a generated file under the configured output path.
func (c *Context) OutputFilename(name string) string {
	return filepath.Join(c.Settings.Output.Path, name)
}

// ManifestFilename returns the destination of the public route manifest
// or an empty string when it is disabled.
func (c *Context) ManifestFilename() string {
	if c.Settings.Output.Manifest == "" || c.Settings.Output.Manifest == "-" {
		return ""
	}

	return c.OutputFilename(c.Settings.Output.Manifest)
}

// OutputManifest returns the public route manifest as a YAML string.
func (c *Context) OutputManifest() (string, error) {
	routes := c.Result.Manifest
	if routes == nil {
		routes = []codegen.PublicRoute{}
	}

	b, err := yaml.Marshal(routes)
	if err != nil {
		return "", err
	}

	return string(b), nil
}
