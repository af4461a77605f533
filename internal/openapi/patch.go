// Package openapi patches an OpenAPI document produced by a generic
// generator so that it describes the generated REST routes: streaming
// responses, status codes, validation constraints, security and examples.
package openapi

import (
	"fmt"
	"strings"

	"github.com/mikros-dev/protoc-gen-mikros-rest/internal/discovery"
	"github.com/mikros-dev/protoc-gen-mikros-rest/pkg/openapi/spec"
)

type phase struct {
	name string
	run  func(p *patcher) error
}

// phases run in this order. Every phase leaves the document unchanged when
// applied a second time.
var phases = []phase{
	{name: "structural", run: (*patcher).structural},
	{name: "streaming", run: (*patcher).streaming},
	{name: "responses", run: (*patcher).responses},
	{name: "enums", run: (*patcher).enums},
	{name: "markers", run: (*patcher).markers},
	{name: "security", run: (*patcher).security},
	{name: "cleanup", run: (*patcher).cleanup},
	{name: "identifiers", run: (*patcher).identifiers},
	{name: "validation", run: (*patcher).validation},
	{name: "path_fields", run: (*patcher).pathFields},
	{name: "inlining", run: (*patcher).inlining},
	{name: "normalization", run: (*patcher).normalization},
}

type patcher struct {
	doc           Document
	md            *discovery.Metadata
	cfg           *Config
	unimplemented map[string]bool
	public        map[string]bool
	deprecated    map[string]bool
}

// Patch applies every phase to doc. When it fails, doc may be partially
// modified and must be discarded.
func Patch(doc Document, md *discovery.Metadata, cfg *Config) error {
	p, err := newPatcher(doc, md, cfg)
	if err != nil {
		return &PhaseError{Phase: "resolve", Err: err}
	}

	for _, ph := range phases {
		if err := ph.run(p); err != nil {
			return &PhaseError{Phase: ph.name, Err: err}
		}
	}

	return nil
}

// PatchBytes decodes, patches and encodes a document.
func PatchBytes(b []byte, md *discovery.Metadata, cfg *Config) ([]byte, error) {
	doc, err := Parse(b)
	if err != nil {
		return nil, err
	}

	if err := Patch(doc, md, cfg); err != nil {
		return nil, err
	}

	return doc.Marshal()
}

func newPatcher(doc Document, md *discovery.Metadata, cfg *Config) (*patcher, error) {
	if md == nil {
		md = &discovery.Metadata{}
	}
	if cfg == nil {
		cfg = NewConfig()
	}

	p := &patcher{
		doc: doc,
		md:  md,
		cfg: cfg,
	}

	var err error
	if p.unimplemented, err = p.operationSet(cfg.UnimplementedMethods); err != nil {
		return nil, fmt.Errorf("could not resolve unimplemented methods: %w", err)
	}
	if p.public, err = p.operationSet(cfg.PublicMethods); err != nil {
		return nil, fmt.Errorf("could not resolve public methods: %w", err)
	}
	if p.deprecated, err = p.operationSet(cfg.DeprecatedMethods); err != nil {
		return nil, fmt.Errorf("could not resolve deprecated methods: %w", err)
	}

	for _, m := range md.Methods() {
		if m.Deprecated {
			p.deprecated[m.Service.Name+"_"+m.Name] = true
		}
	}

	return p, nil
}

func (p *patcher) operationSet(names []string) (map[string]bool, error) {
	ids, err := p.md.ResolveOperationIDs(names)
	if err != nil {
		return nil, err
	}

	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}

	return set, nil
}

// schemaName finds the component schema of a proto message. Generators
// name schemas either by full name, by package-relative name or by the
// bare message name.
func (p *patcher) schemaName(fullName string) (string, bool) {
	schemas := p.doc.schemas()
	for _, name := range p.schemaCandidates(fullName) {
		if _, ok := schemas[name]; ok {
			return name, true
		}
	}

	return "", false
}

func (p *patcher) schemaCandidates(fullName string) []string {
	candidates := []string{fullName}
	if msg, ok := p.md.Messages[fullName]; ok && msg.File != nil && msg.File.Package != "" {
		relative := strings.TrimPrefix(fullName, msg.File.Package+".")
		candidates = append(candidates, relative, strings.ReplaceAll(relative, ".", "_"))
	}
	if idx := strings.LastIndex(fullName, "."); idx != -1 {
		candidates = append(candidates, fullName[idx+1:])
	}

	return candidates
}

func (p *patcher) errorResponse(description string) (map[string]any, error) {
	return spec.Node(&spec.Response{
		Description: description,
		Content: map[string]*spec.Media{
			"application/json": {Schema: &spec.Schema{Ref: p.cfg.errorSchemaRef()}},
		},
	})
}
