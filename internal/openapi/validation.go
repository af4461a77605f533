package openapi

import (
	"slices"
	"sort"
	"strings"

	"github.com/mikros-dev/protoc-gen-mikros-rest/internal/discovery"
)

const durationExample = "300s"

var (
	secretKeywords = []string{"password", "secret", "credential"}

	// Prefixes turning a secret keyword into a flag, like "hasPassword".
	flagPrefixes = map[string]bool{
		"has":      true,
		"is":       true,
		"needs":    true,
		"requires": true,
		"supports": true,
	}
)

func (p *patcher) validation() error {
	if p.cfg.Transforms.InjectValidation {
		p.injectConstraints()
	}

	if p.cfg.Transforms.AnnotateFieldAccess {
		p.annotateFieldAccess()
	}

	p.flattenDurations()
	return nil
}

func (p *patcher) injectConstraints() {
	names := make([]string, 0, len(p.md.FieldConstraints))
	for name := range p.md.FieldConstraints {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, fullName := range names {
		name, ok := p.schemaName(fullName)
		if !ok {
			continue
		}

		var (
			schema   = p.doc.schema(name)
			props    = child(schema, "properties")
			required []string
		)

		for _, c := range p.md.FieldConstraints[fullName] {
			if c.Required {
				required = append(required, c.Field)
			}

			if prop := child(props, c.Field); prop != nil {
				applyConstraint(prop, c)
			}
		}

		if len(required) > 0 {
			schema["required"] = anyList(mergeUnique(stringList(schema["required"]), required))
		}
	}
}

func applyConstraint(prop map[string]any, c *discovery.FieldConstraint) {
	if c.Numeric {
		prop["type"] = "integer"
		delete(prop, "format")

		switch {
		case c.SignedMin != nil:
			prop["minimum"] = *c.SignedMin
		case c.UnsignedMin != nil:
			prop["minimum"] = *c.UnsignedMin
		}
		switch {
		case c.SignedMax != nil:
			prop["maximum"] = *c.SignedMax
		case c.UnsignedMax != nil:
			prop["maximum"] = *c.UnsignedMax
		}
	} else {
		if c.MinLength != nil {
			prop["minLength"] = *c.MinLength
		}
		if c.MaxLength != nil {
			prop["maxLength"] = *c.MaxLength
		}
	}

	if c.Pattern != "" {
		prop["pattern"] = c.Pattern
	}
	if len(c.Enum) > 0 {
		prop["enum"] = anyList(c.Enum)
	}

	if c.IsUUID && refOf(prop) == "" {
		prop["type"] = "string"
		prop["format"] = "uuid"
		prop["pattern"] = UUIDPattern
		if _, ok := prop["example"]; !ok {
			prop["example"] = UUIDExample
		}
	}
}

func mergeUnique(base, extra []string) []string {
	out := append([]string{}, base...)
	for _, s := range extra {
		if !slices.Contains(out, s) {
			out = append(out, s)
		}
	}

	return out
}

func (p *patcher) annotateFieldAccess() {
	schemas := p.doc.schemas()
	for _, name := range sortedKeys(schemas) {
		output := isOutputSchema(name)
		props := child(child(schemas, name), "properties")

		for _, field := range sortedKeys(props) {
			prop := child(props, field)
			if prop == nil {
				continue
			}

			switch {
			case !output && p.isWriteOnly(field):
				prop["writeOnly"] = true
			case p.isReadOnly(field):
				prop["readOnly"] = true
			}
		}
	}
}

func isOutputSchema(name string) bool {
	for _, s := range []string{"Response", "Reply", "Result"} {
		if strings.Contains(name, s) {
			return true
		}
	}

	return false
}

func (p *patcher) isWriteOnly(field string) bool {
	lower := strings.ToLower(field)
	for _, keyword := range secretKeywords {
		prefix, ok := strings.CutSuffix(lower, keyword)
		if !ok {
			continue
		}

		if !flagPrefixes[strings.TrimSuffix(prefix, "_")] {
			return true
		}
	}

	return matchesAny(lower, p.cfg.WriteOnlyFields)
}

func (p *patcher) isReadOnly(field string) bool {
	if strings.HasSuffix(field, "At") || strings.HasSuffix(field, "_at") {
		return true
	}

	return matchesAny(strings.ToLower(field), p.cfg.ReadOnlyFields)
}

func matchesAny(lower string, patterns []string) bool {
	for _, pattern := range patterns {
		if pattern != "" && strings.Contains(lower, strings.ToLower(pattern)) {
			return true
		}
	}

	return false
}

// flattenDurations documents durations with their JSON string form.
func (p *patcher) flattenDurations() {
	schemas := p.doc.schemas()
	for _, name := range sortedKeys(schemas) {
		schema := child(schemas, name)
		if isDurationName(name) {
			delete(schema, "properties")
			delete(schema, "required")
			schema["type"] = "string"
			schema["example"] = durationExample
			if str(schema, "description") == "" {
				schema["description"] = `Duration in seconds with 's' suffix (e.g., "300s").`
			}
			continue
		}

		props := child(schema, "properties")
		for _, field := range sortedKeys(props) {
			prop := child(props, field)
			if !isDurationProperty(prop) {
				continue
			}

			delete(prop, "allOf")
			delete(prop, "$ref")
			prop["type"] = "string"
			prop["example"] = durationExample
		}
	}
}

func isDurationName(name string) bool {
	return name == "Duration" || strings.HasSuffix(name, ".Duration") || name == "GoogleProtobufDuration"
}

func isDurationProperty(prop map[string]any) bool {
	if prop == nil {
		return false
	}

	if ref := refOf(prop); ref != "" {
		name, _ := strings.CutPrefix(ref, schemaRefPrefix)
		return isDurationName(name)
	}

	pattern := strings.TrimSuffix(str(prop, "pattern"), "$")
	return strings.Contains(pattern, "0-9") && strings.HasSuffix(pattern, "s")
}
