package openapi

import (
	"strings"
)

func (p *patcher) cleanup() error {
	for _, tag := range mapsOf(p.doc["tags"]) {
		if description, ok := tag["description"].(string); ok {
			tag["description"] = firstMeaningfulLine(description)
		}
	}

	for _, op := range p.doc.operations() {
		if str(op.op, "summary") == "" {
			if summary := summaryFromDescription(str(op.op, "description")); summary != "" {
				op.op["summary"] = summary
			}
		}

		p.removeEmptyRequestBody(op)
	}

	refs := make(map[string]bool)
	collectRefs(map[string]any(p.doc), refs)

	schemas := p.doc.schemas()
	for _, name := range sortedKeys(schemas) {
		if !refs[schemaRefPrefix+name] && isEmptyObjectSchema(child(schemas, name)) {
			delete(schemas, name)
		}
	}

	walk(map[string]any(p.doc), func(m map[string]any) {
		if m["format"] == "enum" {
			delete(m, "format")
		}
	})

	return nil
}

// firstMeaningfulLine skips blank lines and "=====" underlines.
func firstMeaningfulLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.Trim(line, "=") == "" {
			continue
		}

		return line
	}

	return ""
}

func summaryFromDescription(description string) string {
	description = strings.TrimPrefix(description, notImplementedPrefix)
	description = strings.TrimPrefix(description, streamingPrefix)

	line := firstMeaningfulLine(description)
	return strings.TrimSuffix(line, ".")
}

func (p *patcher) removeEmptyRequestBody(op *operation) {
	body := child(op.op, "requestBody")
	schema := child(jsonContent(body), "schema")

	ref := str(schema, "$ref")
	if ref == "" {
		return
	}

	if _, target := p.doc.schemaFromRef(ref); isEmptyObjectSchema(target) {
		delete(op.op, "requestBody")
	}
}
