package context

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genproto/googleapis/api/annotations"
	"google.golang.org/protobuf/compiler/protogen"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/pluginpb"

	"github.com/mikros-dev/protoc-gen-mikros-rest/internal/ctxutil"
	dt "github.com/mikros-dev/protoc-gen-mikros-rest/internal/descriptor/descriptortest"
	"github.com/mikros-dev/protoc-gen-mikros-rest/pkg/openapi/spec"
	"github.com/mikros-dev/protoc-gen-mikros-rest/pkg/settings"
)

func pingFile(methods ...*descriptorpb.MethodDescriptorProto) *descriptorpb.FileDescriptorProto {
	return dt.File("ping/v1/ping.proto", "ping.v1", "example.com/gen/ping/v1;pingv1").
		Message(dt.Msg("PingRequest", dt.Scalar("message", dt.String))).
		Message(dt.Msg("PingResponse", dt.Scalar("message", dt.String))).
		Service("PingService", methods...).
		Build()
}

func newPlugin(t *testing.T, file *descriptorpb.FileDescriptorProto) *protogen.Plugin {
	t.Helper()

	plugin, err := protogen.Options{}.New(&pluginpb.CodeGeneratorRequest{
		FileToGenerate: []string{file.GetName()},
		ProtoFile:      []*descriptorpb.FileDescriptorProto{file},
	})
	require.NoError(t, err)

	return plugin
}

func loadSettings(t *testing.T) *settings.Settings {
	t.Helper()

	cfg, err := settings.LoadSettings("")
	require.NoError(t, err)
	return cfg
}

func TestBuildContext(t *testing.T) {
	cfg := loadSettings(t)
	cfg.Output.Path = "gen"
	cfg.Codegen.PublicMethods = []string{"Ping"}

	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	ctx := ctxutil.WithLogger(context.Background(), logger)

	plugin := newPlugin(t, pingFile(
		dt.Method("Ping", ".ping.v1.PingRequest", ".ping.v1.PingResponse", dt.Get("/v1/ping")),
		dt.Method("Echo", ".ping.v1.PingRequest", ".ping.v1.PingResponse", &annotations.HttpRule{
			Pattern: &annotations.HttpRule_Custom{Custom: &annotations.CustomHttpPattern{Kind: "HEAD", Path: "/v1/echo"}},
		}),
	))

	tplContext, err := BuildContext(ctx, plugin, cfg)
	require.NoError(t, err)
	require.NotNil(t, tplContext)

	require.Len(t, tplContext.Result.Files, 1)
	file := tplContext.Result.Files[0]
	assert.Equal(t, "ping/v1/ping.rest.go", file.Name)
	assert.Equal(t, "gen/ping/v1/ping.rest.go", tplContext.OutputFilename(file.Name))
	assert.Contains(t, file.Content, "package pingv1")

	assert.Equal(t, "gen/public_routes.yaml", tplContext.ManifestFilename())
	manifest, err := tplContext.OutputManifest()
	require.NoError(t, err)
	assert.Contains(t, manifest, "service: PingService")
	assert.Contains(t, manifest, "path: /v1/ping")

	var warnings []string
	for _, entry := range hook.AllEntries() {
		if entry.Level == logrus.WarnLevel {
			warnings = append(warnings, entry.Message)
		}
	}
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "PingService.Echo")
}

func TestBuildContextWithoutBoundServices(t *testing.T) {
	plugin := newPlugin(t, pingFile(
		dt.Method("Ping", ".ping.v1.PingRequest", ".ping.v1.PingResponse", nil),
	))

	tplContext, err := BuildContext(context.Background(), plugin, loadSettings(t))
	require.NoError(t, err)
	assert.Nil(t, tplContext)
}

func TestDecodeDescriptorSet(t *testing.T) {
	set := dt.Set(pingFile(
		dt.Method("Ping", ".ping.v1.PingRequest", ".ping.v1.PingResponse", dt.Get("/v1/ping")),
	))

	decoded, err := DecodeDescriptorSet(set)
	require.NoError(t, err)
	assert.True(t, proto.Equal(set, decoded))
}

func TestManifestFilenameDisabled(t *testing.T) {
	cfg := loadSettings(t)
	cfg.Output.Manifest = "-"

	c := &Context{Settings: cfg}
	assert.Empty(t, c.ManifestFilename())
}

func TestCodegenConfig(t *testing.T) {
	cfg := loadSettings(t)
	cfg.Codegen.WrapperType = "common.v1.UUID"
	cfg.Codegen.ExtraForwardedHeaders = []string{"x-tenant"}

	c := CodegenConfig(cfg)
	assert.Equal(t, "common.v1.UUID", c.WrapperType)
	assert.Equal(t, 15, c.KeepAliveSecs)
	assert.Equal(t, []string{"x-tenant"}, c.ExtraForwardedHeaders)
	assert.Equal(t, cfg.Codegen.RuntimePath, c.RuntimePath)
}

func TestOpenapiConfig(t *testing.T) {
	disabled := false

	cfg := loadSettings(t)
	cfg.Openapi.PublicMethods = []string{"Ping"}
	cfg.Openapi.PlainTextEndpoints = []*settings.PlainTextEndpoint{{Path: "/version", Example: "v1"}}
	cfg.Openapi.Servers = []*spec.Server{{URL: "https://api.example.com"}}
	cfg.Openapi.Transforms.AddSecurity = &disabled

	c := OpenapiConfig(cfg)
	assert.Equal(t, "#/components/schemas/ErrorResponse", c.ErrorSchemaRef)
	assert.Equal(t, []string{"Ping"}, c.PublicMethods)
	require.Len(t, c.PlainTextEndpoints, 1)
	assert.Equal(t, "/version", c.PlainTextEndpoints[0].Path)
	assert.Equal(t, "https://api.example.com", c.Servers[0].URL)

	assert.False(t, c.Transforms.AddSecurity)
	assert.True(t, c.Transforms.UpgradeTo31)
	assert.True(t, c.Transforms.InlineRequestBodies)
}
