package openapi

import (
	"fmt"
)

func (p *patcher) inlining() error {
	if p.cfg.Transforms.InlineRequestBodies {
		if err := p.inlineRequestBodies(); err != nil {
			return err
		}
	} else {
		p.enrichSchemaExamples()
	}

	for _, op := range p.doc.operations() {
		body := child(op.op, "requestBody")
		for _, mediaType := range sortedKeys(child(body, "content")) {
			schema := child(child(child(body, "content"), mediaType), "schema")
			if schema == nil || str(schema, "$ref") != "" {
				continue
			}

			injectExamples(schema)
		}

		if schema := child(jsonContent(body), "schema"); isEmptyObjectSchema(schema) {
			delete(op.op, "requestBody")
		}
	}

	return p.removeOrphanedSchemas()
}

// inlineRequestBodies replaces request body references with copies of the
// referenced schema carrying generated examples.
func (p *patcher) inlineRequestBodies() error {
	for _, op := range p.doc.operations() {
		body := child(op.op, "requestBody")
		content := child(body, "content")

		for _, mediaType := range sortedKeys(content) {
			media := child(content, mediaType)
			ref := str(child(media, "schema"), "$ref")
			if ref == "" {
				continue
			}

			name, target := p.doc.schemaFromRef(ref)
			if target == nil {
				return fmt.Errorf("%w: %s", ErrMissingSchema, ref)
			}

			schema := copyMap(target)
			if description := str(schema, "description"); description != "" {
				delete(schema, "description")
				if str(body, "description") == "" {
					body["description"] = description
				}
			}

			p.resolveWrappedProperties(schema, name)
			injectExamples(schema)
			media["schema"] = schema
		}
	}

	return nil
}

// resolveWrappedProperties inlines properties declared as a single allOf
// reference, keeping their own description.
func (p *patcher) resolveWrappedProperties(schema map[string]any, self string) {
	props := child(schema, "properties")
	for _, field := range sortedKeys(props) {
		prop := child(props, field)
		if str(prop, "$ref") != "" || len(mapsOf(prop["allOf"])) != 1 {
			continue
		}

		name, target := p.doc.schemaFromRef(refOf(prop))
		if target == nil || name == self {
			continue
		}

		resolved := copyMap(target)
		if description := str(prop, "description"); description != "" {
			resolved["description"] = description
		}
		props[field] = resolved
	}
}

func (p *patcher) enrichSchemaExamples() {
	schemas := p.doc.schemas()
	for _, name := range sortedKeys(schemas) {
		props := child(child(schemas, name), "properties")
		for _, field := range sortedKeys(props) {
			prop := child(props, field)
			if prop == nil || prop["example"] != nil {
				continue
			}

			skip := false
			for _, key := range []string{"allOf", "oneOf", "$ref", "properties"} {
				if _, ok := prop[key]; ok {
					skip = true
				}
			}
			if skip {
				continue
			}

			if example, ok := meaningfulExample(field, prop); ok {
				prop["example"] = example
			}
		}
	}
}

// removeOrphanedSchemas deletes component schemas that nothing outside
// components.schemas reaches, directly or through other schemas.
func (p *patcher) removeOrphanedSchemas() error {
	schemas := p.doc.schemas()
	if len(schemas) == 0 {
		return nil
	}

	errorSchema, err := p.cfg.errorSchemaName()
	if err != nil {
		return err
	}

	roots := make(map[string]bool)
	for key, value := range p.doc {
		if key != "components" {
			collectRefs(value, roots)
		}
	}
	for key, value := range child(p.doc, "components") {
		if key != "schemas" {
			collectRefs(value, roots)
		}
	}

	var (
		reached = make(map[string]bool)
		queue   = []string{schemaRefPrefix + errorSchema}
	)
	for ref := range roots {
		queue = append(queue, ref)
	}

	for len(queue) > 0 {
		ref := queue[0]
		queue = queue[1:]

		name, target := p.doc.schemaFromRef(ref)
		if target == nil || reached[name] {
			continue
		}
		reached[name] = true

		refs := make(map[string]bool)
		collectRefs(target, refs)
		for r := range refs {
			queue = append(queue, r)
		}
	}

	for _, name := range sortedKeys(schemas) {
		if !reached[name] {
			delete(schemas, name)
		}
	}

	return nil
}
