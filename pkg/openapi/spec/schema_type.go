package spec

// SchemaType describes the type of the schema.
type SchemaType int

// Supported schema types.
const (
	SchemaTypeUnspecified SchemaType = iota
	SchemaTypeObject
	SchemaTypeString
	SchemaTypeArray
	SchemaTypeBool
	SchemaTypeInteger
	SchemaTypeNumber
)

// SchemaTypeFromNode reads the "type" of a decoded schema. OpenAPI 3.1
// type lists are accepted, ignoring their "null" entry.
func SchemaTypeFromNode(schema map[string]any) SchemaType {
	switch t := schema["type"].(type) {
	case string:
		return schemaTypeFromString(t)
	case []any:
		for _, v := range t {
			if s, ok := v.(string); ok && s != "null" {
				return schemaTypeFromString(s)
			}
		}
	}

	return SchemaTypeUnspecified
}

func schemaTypeFromString(s string) SchemaType {
	switch s {
	case "object":
		return SchemaTypeObject
	case "string":
		return SchemaTypeString
	case "array":
		return SchemaTypeArray
	case "boolean":
		return SchemaTypeBool
	case "integer":
		return SchemaTypeInteger
	case "number":
		return SchemaTypeNumber
	}

	return SchemaTypeUnspecified
}

func (s SchemaType) String() string {
	switch s {
	case SchemaTypeObject:
		return "object"
	case SchemaTypeString:
		return "string"
	case SchemaTypeArray:
		return "array"
	case SchemaTypeBool:
		return "boolean"
	case SchemaTypeInteger:
		return "integer"
	case SchemaTypeNumber:
		return "number"
	}

	return ""
}
