package plugin

import (
	"context"
	"fmt"

	"github.com/bufbuild/protoplugin"
	"google.golang.org/protobuf/compiler/protogen"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/pluginpb"

	"github.com/mikros-dev/protoc-gen-mikros-rest/internal/args"
	pcontext "github.com/mikros-dev/protoc-gen-mikros-rest/internal/context"
	"github.com/mikros-dev/protoc-gen-mikros-rest/internal/ctxutil"
	"github.com/mikros-dev/protoc-gen-mikros-rest/internal/discovery"
	"github.com/mikros-dev/protoc-gen-mikros-rest/internal/log"
	"github.com/mikros-dev/protoc-gen-mikros-rest/pkg/settings"
)

// Handle is the entry point for the plugin to be processed by protoc/buf.
func Handle(
	ctx context.Context,
	env protoplugin.PluginEnv,
	w protoplugin.ResponseWriter,
	r protoplugin.Request,
) error {
	pluginArgs, err := args.NewArgsFromString(r.Parameter())
	if err != nil {
		return err
	}

	cfg, err := settings.LoadSettings(pluginArgs.SettingsFilename)
	if err != nil {
		return fmt.Errorf("could not load settings file: %w", err)
	}

	plugin, err := protogen.Options{}.New(withGoPackages(r.CodeGeneratorRequest(), cfg))
	if err != nil {
		return err
	}

	logger := log.New(log.LoggerOptions{
		Verbose: cfg.Debug || pluginArgs.Debug,
		Prefix:  "mikros-rest",
		Output:  env.Stderr,
	})
	ctx = ctxutil.WithLogger(ctx, logger)

	files, err := handleProtogenPlugin(ctx, plugin, cfg)
	if err != nil {
		return err
	}

	response := plugin.Response()
	w.AddCodeGeneratorResponseFiles(response.GetFile()...)
	w.SetFeatureSupportsEditions(descriptorpb.Edition_EDITION_PROTO2, descriptorpb.Edition_EDITION_2024)
	w.SetSupportedFeatures(uint64(pluginpb.CodeGeneratorResponse_FEATURE_PROTO3_OPTIONAL) |
		uint64(pluginpb.CodeGeneratorResponse_FEATURE_SUPPORTS_EDITIONS))

	for _, f := range files {
		w.AddFile(f.name, f.content)
		logger.Println("generated file:", f.name)
	}

	return nil
}

// withGoPackages returns a copy of the request where every file carries
// the Go package discovery resolves for it, so protogen accepts files
// without go_package when settings map or infer their package.
func withGoPackages(req *pluginpb.CodeGeneratorRequest, cfg *settings.Settings) *pluginpb.CodeGeneratorRequest {
	req, _ = proto.Clone(req).(*pluginpb.CodeGeneratorRequest)
	opts := discovery.Options{
		Packages:  cfg.Codegen.Packages,
		ProtoRoot: cfg.Codegen.ProtoRoot,
	}

	for _, f := range req.GetProtoFile() {
		_, mapped := opts.Packages[f.GetPackage()]
		if f.GetOptions().GetGoPackage() != "" && !mapped {
			continue
		}

		importPath, name := discovery.GoPackage(f, opts)
		if f.Options == nil {
			f.Options = &descriptorpb.FileOptions{}
		}
		f.Options.GoPackage = proto.String(importPath + ";" + name)
	}

	return req
}

type outputFile struct {
	name    string
	content string
}

func handleProtogenPlugin(ctx context.Context, plugin *protogen.Plugin, cfg *settings.Settings) ([]outputFile, error) {
	// Build the context for the source generation
	tplContext, err := pcontext.BuildContext(ctx, plugin, cfg)
	if err != nil {
		return nil, err
	}
	if tplContext == nil {
		return nil, nil
	}

	var files []outputFile
	for _, f := range tplContext.Result.Files {
		files = append(files, outputFile{
			name:    tplContext.OutputFilename(f.Name),
			content: f.Content,
		})
	}

	if name := tplContext.ManifestFilename(); name != "" {
		content, err := tplContext.OutputManifest()
		if err != nil {
			return nil, fmt.Errorf("could not encode public route manifest: %w", err)
		}

		files = append(files, outputFile{name: name, content: content})
	}

	return files, nil
}
