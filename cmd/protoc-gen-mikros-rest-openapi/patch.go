package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/pmezard/go-difflib/difflib"

	pcontext "github.com/mikros-dev/protoc-gen-mikros-rest/internal/context"
	"github.com/mikros-dev/protoc-gen-mikros-rest/internal/descriptor"
	"github.com/mikros-dev/protoc-gen-mikros-rest/internal/discovery"
	"github.com/mikros-dev/protoc-gen-mikros-rest/internal/openapi"
	"github.com/mikros-dev/protoc-gen-mikros-rest/pkg/settings"
)

var errOutdated = errors.New("document is not patched")

func (c *command) metadata(cfg *settings.Settings) (*discovery.Metadata, error) {
	filename, err := c.required("descriptor-set")
	if err != nil {
		return nil, err
	}

	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	set, err := descriptor.Decode(b)
	if err != nil {
		return nil, fmt.Errorf("could not decode '%s': %w", filename, err)
	}

	return pcontext.Discover(c.ctx, set, cfg, c.list("file"))
}

// patchDocument returns the name of the input document, its content and
// its patched version.
func (c *command) patchDocument() (string, []byte, []byte, error) {
	filename, err := c.required("spec")
	if err != nil {
		return "", nil, nil, err
	}

	cfg, err := c.settings()
	if err != nil {
		return "", nil, nil, err
	}

	md, err := c.metadata(cfg)
	if err != nil {
		return "", nil, nil, err
	}

	original, err := os.ReadFile(filename)
	if err != nil {
		return "", nil, nil, err
	}

	patched, err := openapi.PatchBytes(original, md, pcontext.OpenapiConfig(cfg))
	if err != nil {
		return "", nil, nil, fmt.Errorf("could not patch '%s': %w", filename, err)
	}

	return filename, original, patched, nil
}

func (c *command) patch() error {
	filename, _, patched, err := c.patchDocument()
	if err != nil {
		return err
	}

	output := c.v.GetString("output")
	if output == "" {
		output = filename
	}

	if err := os.WriteFile(output, patched, 0o644); err != nil {
		return err
	}

	c.logger.Println("patched document written to", output)
	return nil
}

func (c *command) check() error {
	filename, original, patched, err := c.patchDocument()
	if err != nil {
		return err
	}

	if bytes.Equal(original, patched) {
		c.logger.Println("document is up to date:", filename)
		return nil
	}

	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(original)),
		B:        difflib.SplitLines(string(patched)),
		FromFile: filename,
		ToFile:   filename + " (patched)",
		Context:  3,
	})
	if err != nil {
		return err
	}

	fmt.Fprint(c.stdout, diff)
	return fmt.Errorf("%w: %s", errOutdated, filename)
}
