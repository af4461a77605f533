package openapi

import (
	"strings"
)

func (p *patcher) enums() error {
	for _, rewrite := range p.md.EnumRewrites {
		name, ok := p.schemaName(rewrite.Schema)
		if !ok {
			continue
		}

		prop := child(child(p.doc.schema(name), "properties"), rewrite.Field)
		switch {
		case prop == nil:
		case prop["enum"] != nil:
			prop["enum"] = anyList(rewrite.Values)
		case child(prop, "items")["enum"] != nil:
			child(prop, "items")["enum"] = anyList(rewrite.Values)
		}
	}

	if len(p.md.EnumValueMap) > 0 {
		walk(map[string]any(p.doc), func(m map[string]any) {
			values, ok := m["enum"].([]any)
			if !ok {
				return
			}

			for i, v := range values {
				if s, ok := v.(string); ok {
					if rewritten, ok := p.md.EnumValueMap[s]; ok {
						values[i] = rewritten
					}
				}
			}
		})
	}

	for _, op := range p.doc.operations() {
		for _, param := range op.parameters() {
			if in := str(param, "in"); in == "query" || in == "path" {
				schema := child(param, "schema")
				stripUnspecified(schema)
				stripUnspecified(child(schema, "items"))
			}
		}
	}

	for _, name := range sortedKeys(p.doc.schemas()) {
		props := child(p.doc.schema(name), "properties")
		for _, field := range sortedKeys(props) {
			prop := child(props, field)
			stripUnspecified(prop)
			stripUnspecified(child(prop, "items"))
		}
	}

	return nil
}

// stripUnspecified removes the zero value of an enum from its allowed
// values, since clients never send it on purpose.
func stripUnspecified(schema map[string]any) {
	values, ok := schema["enum"].([]any)
	if !ok {
		return
	}

	kept := make([]any, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok && isUnspecified(s) {
			continue
		}
		kept = append(kept, v)
	}

	if len(kept) == 0 {
		delete(schema, "enum")
		return
	}

	schema["enum"] = kept
}

func isUnspecified(value string) bool {
	return strings.EqualFold(value, "unspecified") || strings.HasSuffix(strings.ToUpper(value), "_UNSPECIFIED")
}
