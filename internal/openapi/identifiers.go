package openapi

import (
	"strings"

	"github.com/mikros-dev/protoc-gen-mikros-rest/pkg/openapi/spec"
)

// Canonical textual UUID used in schemas and examples.
const (
	UUIDPattern = "^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$"
	UUIDExample = "550e8400-e29b-41d4-a716-446655440000"
)

func uuidSchema(description string) (map[string]any, error) {
	return spec.Node(&spec.Schema{
		Type:        "string",
		Format:      "uuid",
		Pattern:     UUIDPattern,
		Example:     UUIDExample,
		Description: description,
	})
}

func (p *patcher) identifiers() error {
	p.flattenPathTemplates()

	if !p.cfg.Transforms.FlattenUUIDRefs {
		return nil
	}

	if err := p.flattenUUIDRefs(); err != nil {
		return err
	}

	return p.flattenUUIDQueryParams()
}

// flattenPathTemplates rewrites "{id.value}" path variables into "{id}".
func (p *patcher) flattenPathTemplates() {
	paths := child(p.doc, "paths")
	for _, path := range sortedKeys(paths) {
		if !strings.Contains(path, ".value}") {
			continue
		}

		flat := strings.ReplaceAll(path, ".value}", "}")
		item := paths[path]
		delete(paths, path)

		existing := child(paths, flat)
		if existing == nil {
			paths[flat] = item
			continue
		}

		if m, ok := item.(map[string]any); ok {
			for verb, op := range m {
				if _, taken := existing[verb]; !taken {
					existing[verb] = op
				}
			}
		}
	}

	for _, op := range p.doc.operations() {
		for _, param := range op.parameters() {
			if str(param, "in") == "path" {
				param["name"] = strings.TrimSuffix(str(param, "name"), ".value")
			}
		}
	}
}

// flattenUUIDRefs replaces every reference to the identifier wrapper
// schema with an inline uuid string and drops the wrapper schema.
func (p *patcher) flattenUUIDRefs() error {
	if p.md.UUIDSchema == "" {
		return nil
	}

	name, ok := p.schemaName(p.md.UUIDSchema)
	if !ok {
		return nil
	}

	var (
		ref     = schemaRefPrefix + name
		schemas = p.doc.schemas()
		failure error
	)

	delete(schemas, name)
	walk(map[string]any(p.doc), func(m map[string]any) {
		for _, key := range sortedKeys(m) {
			switch v := m[key].(type) {
			case map[string]any:
				if refOf(v) != ref {
					continue
				}

				flat, err := uuidSchema(str(v, "description"))
				if err != nil {
					failure = err
					return
				}
				m[key] = flat

			case []any:
				for i, item := range v {
					if s, ok := item.(map[string]any); ok && str(s, "$ref") == ref && key != "allOf" {
						flat, err := uuidSchema(str(s, "description"))
						if err != nil {
							failure = err
							return
						}
						v[i] = flat
					}
				}
			}
		}
	})

	return failure
}

// flattenUUIDQueryParams renames "ownerId.value" query parameters into
// "ownerId" and describes them as UUIDs.
func (p *patcher) flattenUUIDQueryParams() error {
	for _, op := range p.doc.operations() {
		for _, param := range op.parameters() {
			name := str(param, "name")
			if str(param, "in") != "query" || !strings.HasSuffix(name, ".value") {
				continue
			}

			name = strings.TrimSuffix(name, ".value")
			schema, err := uuidSchema("")
			if err != nil {
				return err
			}

			param["name"] = name
			param["description"] = "UUID of the " + uuidSubject(name)
			param["schema"] = schema
		}
	}

	return nil
}

func uuidSubject(name string) string {
	for _, suffix := range []string{"Id", "_id", "ID"} {
		if trimmed := strings.TrimSuffix(name, suffix); trimmed != name && trimmed != "" {
			return trimmed
		}
	}

	return name
}
