package openapi

import (
	"fmt"
	"sort"
	"strings"

	"github.com/goccy/go-yaml"
)

// Document is a decoded OpenAPI document. Phases mutate it in place.
type Document map[string]any

const schemaRefPrefix = "#/components/schemas/"

// httpVerbs lists the operation keys of a path item, in output order.
var httpVerbs = []string{"get", "put", "post", "delete", "options", "head", "patch", "trace"}

// Parse decodes a YAML or JSON document.
func Parse(b []byte) (Document, error) {
	var v any
	if err := yaml.Unmarshal(b, &v); err != nil {
		return nil, fmt.Errorf("could not parse openapi document: %w", err)
	}

	m, ok := v.(map[string]any)
	if !ok {
		return nil, ErrNotMapping
	}

	// A truncated flow collection decodes without errors, so the sections
	// every phase walks are checked here.
	for _, key := range []string{"info", "paths", "components"} {
		if section, ok := m[key]; ok {
			if _, ok := section.(map[string]any); !ok {
				return nil, fmt.Errorf("%w: '%s' must be a mapping", ErrMalformedDocument, key)
			}
		}
	}
	for path, item := range child(m, "paths") {
		ops, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: path item '%s' must be a mapping", ErrMalformedDocument, path)
		}
		for _, verb := range httpVerbs {
			if op, ok := ops[verb]; ok {
				if _, ok := op.(map[string]any); !ok {
					return nil, fmt.Errorf("%w: operation '%s %s' must be a mapping", ErrMalformedDocument, verb, path)
				}
			}
		}
	}

	return Document(m), nil
}

// Marshal encodes the document as YAML. Mapping keys are sorted, so equal
// documents always produce equal bytes. Multi-line strings become block
// scalars, which cannot carry carriage returns, so their line endings are
// written as "\n".
func (d Document) Marshal() ([]byte, error) {
	out := normalizeLineEndings(deepCopy(map[string]any(d)))

	b, err := yaml.MarshalWithOptions(out, yaml.Indent(2), yaml.IndentSequence(true))
	if err != nil {
		return nil, fmt.Errorf("could not encode openapi document: %w", err)
	}

	return b, nil
}

type operation struct {
	path string
	verb string
	op   map[string]any
}

func (o *operation) parameters() []map[string]any {
	return mapsOf(o.op["parameters"])
}

func (o *operation) responses() map[string]any {
	return child(o.op, "responses")
}

func (o *operation) response(code string) map[string]any {
	return child(o.responses(), code)
}

func (o *operation) id() string {
	return str(o.op, "operationId")
}

// operations returns every operation sorted by path and verb.
func (d Document) operations() []*operation {
	paths := child(d, "paths")

	var ops []*operation
	for _, path := range sortedKeys(paths) {
		item := child(paths, path)
		for _, verb := range httpVerbs {
			if op := child(item, verb); op != nil {
				ops = append(ops, &operation{path: path, verb: verb, op: op})
			}
		}
	}

	return ops
}

func (d Document) schemas() map[string]any {
	return child(child(d, "components"), "schemas")
}

func (d Document) schema(name string) map[string]any {
	return child(d.schemas(), name)
}

// schemaFromRef returns the component schema a local reference points to.
func (d Document) schemaFromRef(ref string) (string, map[string]any) {
	name, ok := strings.CutPrefix(ref, schemaRefPrefix)
	if !ok {
		return "", nil
	}

	return name, d.schema(name)
}

func child(m map[string]any, key string) map[string]any {
	if m == nil {
		return nil
	}

	c, _ := m[key].(map[string]any)
	return c
}

func ensure(m map[string]any, key string) map[string]any {
	if c := child(m, key); c != nil {
		return c
	}

	c := map[string]any{}
	m[key] = c
	return c
}

func str(m map[string]any, key string) string {
	if m == nil {
		return ""
	}

	s, _ := m[key].(string)
	return s
}

func mapsOf(v any) []map[string]any {
	list, _ := v.([]any)

	var out []map[string]any
	for _, item := range list {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}

	return out
}

func stringList(v any) []string {
	list, _ := v.([]any)

	var out []string
	for _, item := range list {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}

	return out
}

func anyList(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}

	return out
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return keys
}

// refOf returns the schema reference, either direct or wrapped in a
// single allOf entry.
func refOf(schema map[string]any) string {
	if ref := str(schema, "$ref"); ref != "" {
		return ref
	}

	if all := mapsOf(schema["allOf"]); len(all) > 0 {
		return str(all[0], "$ref")
	}

	return ""
}

// walk calls fn for every mapping of the tree, parents first.
func walk(v any, fn func(m map[string]any)) {
	switch t := v.(type) {
	case map[string]any:
		fn(t)
		for _, k := range sortedKeys(t) {
			walk(t[k], fn)
		}
	case []any:
		for _, item := range t {
			walk(item, fn)
		}
	}
}

func deepCopy(v any) any {
	switch t := v.(type) {
	case map[string]any:
		c := make(map[string]any, len(t))
		for k, item := range t {
			c[k] = deepCopy(item)
		}
		return c
	case []any:
		c := make([]any, len(t))
		for i, item := range t {
			c[i] = deepCopy(item)
		}
		return c
	}

	return v
}

func copyMap(m map[string]any) map[string]any {
	c, _ := deepCopy(m).(map[string]any)
	return c
}

func collectRefs(v any, refs map[string]bool) {
	walk(v, func(m map[string]any) {
		if ref := str(m, "$ref"); ref != "" {
			refs[ref] = true
		}
	})
}

func jsonContent(response map[string]any) map[string]any {
	return child(child(response, "content"), "application/json")
}

func isEmptyObjectSchema(schema map[string]any) bool {
	if schema == nil {
		return false
	}

	if t, ok := schema["type"]; ok && t != "object" {
		return false
	}

	for _, key := range []string{"$ref", "allOf", "oneOf", "anyOf", "additionalProperties", "items", "enum"} {
		if _, ok := schema[key]; ok {
			return false
		}
	}

	return len(child(schema, "properties")) == 0
}

// samePath compares two path templates ignoring identifier wrappers,
// underscores and letter case.
func samePath(a, b string) bool {
	return normalizePath(a) == normalizePath(b)
}

func normalizePath(p string) string {
	p = strings.ReplaceAll(p, ".value}", "}")
	p = strings.ReplaceAll(p, "_", "")
	return strings.ToLower(p)
}

func normalizeParam(name string) string {
	name = strings.TrimSuffix(name, ".value")
	name = strings.ReplaceAll(name, "_", "")
	return strings.ToLower(name)
}
