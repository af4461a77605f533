package main

import (
	"github.com/bufbuild/protoplugin"

	"github.com/mikros-dev/protoc-gen-mikros-rest/internal/plugin"
)

// version is replaced at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	protoplugin.Main(
		protoplugin.HandlerFunc(plugin.Handle),
		protoplugin.WithVersion(version),
	)
}
