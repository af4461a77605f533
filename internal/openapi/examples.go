package openapi

import (
	"fmt"
	"strings"

	"github.com/mikros-dev/protoc-gen-mikros-rest/pkg/openapi/spec"
)

const (
	timestampExample = "2026-01-15T09:30:00Z"
	tokenExample     = "eyJhbGciOiJIUzI1NiIs..."
	cursorExample    = "eyJpZCI6MTAwfQ=="
)

// injectExamples adds an example to every property of an inline object
// schema that has none, descending into nested objects.
func injectExamples(schema map[string]any) {
	props := child(schema, "properties")
	for _, field := range sortedKeys(props) {
		prop := child(props, field)
		if prop == nil {
			continue
		}

		if child(prop, "properties") != nil {
			injectExamples(prop)
			continue
		}
		if _, ok := prop["example"]; ok {
			continue
		}
		if refOf(prop) != "" {
			continue
		}

		prop["example"] = fieldExample(field, prop)
	}
}

// fieldExample always returns a value, falling back to the schema type.
func fieldExample(name string, prop map[string]any) any {
	if example, ok := meaningfulExample(name, prop); ok {
		return example
	}

	return typeExample(prop)
}

// meaningfulExample returns an example only when the enum, the format or
// the field name tell what the value looks like.
func meaningfulExample(name string, prop map[string]any) (any, bool) {
	if example, ok := enumExample(prop); ok {
		return example, true
	}
	if example, ok := formatExample(prop); ok {
		return example, true
	}

	example, ok := nameExample(name)
	if !ok {
		return nil, false
	}

	switch spec.SchemaTypeFromNode(prop) {
	case spec.SchemaTypeBool, spec.SchemaTypeArray, spec.SchemaTypeObject:
		return nil, false
	case spec.SchemaTypeInteger, spec.SchemaTypeNumber:
		if _, numeric := example.(int); !numeric {
			return nil, false
		}
	}

	return coerce(example, prop), true
}

func enumExample(prop map[string]any) (any, bool) {
	for _, v := range anySlice(prop["enum"]) {
		if s, ok := v.(string); ok && isUnspecified(s) {
			continue
		}

		return v, true
	}

	return nil, false
}

func formatExample(prop map[string]any) (any, bool) {
	switch str(prop, "format") {
	case "uuid":
		return UUIDExample, true
	case "date-time":
		return timestampExample, true
	case "date":
		return timestampExample[:10], true
	case "field-mask", "google-fieldmask":
		return "name,email", true
	case "duration":
		return durationExample, true
	case "email":
		return "user@example.com", true
	case "uri", "url":
		return "https://example.com", true
	}

	return nil, false
}

// nameExample guesses a realistic value from the field name.
func nameExample(field string) (any, bool) {
	name := strings.ToLower(strings.ReplaceAll(field, "_", ""))

	switch {
	case strings.Contains(name, "password"):
		if strings.HasPrefix(name, "new") {
			return "N3wP@ssw0rd!456", true
		}
		return "P@ssw0rd123!", true
	case strings.Contains(name, "email") || name == "identifier":
		return "user@example.com", true
	case strings.Contains(name, "phone"):
		return "+1234567890", true
	case name == "name" || name == "displayname" || name == "fullname":
		return "John Doe", true
	case name == "firstname":
		return "John", true
	case name == "lastname":
		return "Doe", true
	case name == "pagetoken" || name == "nextpagetoken" || name == "cursor":
		return cursorExample, true
	case name == "pagesize" || name == "limit":
		return 20, true
	case strings.HasSuffix(name, "token"):
		return tokenExample, true
	case name == "otp" || (strings.HasSuffix(name, "code") && !strings.Contains(name, "country")):
		return "123456", true
	case name == "query" || name == "search" || name == "q":
		return "search term", true
	case strings.HasSuffix(name, "url") || strings.HasSuffix(name, "uri"):
		return "https://example.com", true
	case name == "version":
		return "1.0.0", true
	case name == "locale":
		return "en-US", true
	case name == "timezone" || name == "tz":
		return "America/New_York", true
	case name == "language" || name == "lang":
		return "en", true
	case name == "country" || name == "countrycode":
		return "US", true
	case strings.Contains(name, "idempotency") || name == "requestid":
		return UUIDExample, true
	case name == "description":
		return "A brief description", true
	case name == "title" || name == "subject":
		return "Example Title", true
	case name == "host" || name == "hostname":
		return "api.example.com", true
	case name == "ip" || name == "ipaddress":
		return "192.168.1.1", true
	case name == "useragent":
		return "Mozilla/5.0 (compatible)", true
	case name == "contenttype":
		return "application/json", true
	case name == "etag":
		return `"33a64df551425fcc55e4d42a148795d9f25f89d4"`, true
	case name == "deviceid":
		return UUIDExample, true
	case name == "devicename":
		return "iPhone 15", true
	case name == "platform" || name == "deviceplatform":
		return "ios", true
	}

	return nil, false
}

func typeExample(prop map[string]any) any {
	switch spec.SchemaTypeFromNode(prop) {
	case spec.SchemaTypeBool:
		return true
	case spec.SchemaTypeInteger, spec.SchemaTypeNumber:
		if minimum, ok := prop["minimum"]; ok {
			return minimum
		}
		return 0
	case spec.SchemaTypeArray:
		items := child(prop, "items")
		if items == nil {
			return []any{}
		}
		if example, ok := items["example"]; ok {
			return []any{example}
		}
		if example, ok := enumExample(items); ok {
			return []any{example}
		}
		if example, ok := formatExample(items); ok {
			return []any{example}
		}
		return []any{typeExample(items)}
	case spec.SchemaTypeObject:
		if child(prop, "additionalProperties") != nil {
			return map[string]any{"key": "value"}
		}
		return map[string]any{}
	}

	return "string"
}

// coerce keeps examples consistent with the declared type, since 64-bit
// integers are strings in JSON.
func coerce(example any, prop map[string]any) any {
	if spec.SchemaTypeFromNode(prop) == spec.SchemaTypeString {
		if _, ok := example.(string); !ok {
			return fmt.Sprint(example)
		}
	}

	return example
}
