package discovery

import (
	"strings"

	"google.golang.org/protobuf/types/descriptorpb"
)

// GoCamelCase converts a proto identifier into the Go identifier that
// protoc-gen-go emits for it. Words are split at '_' and at upper case
// letters, digits are kept as they are and '.' separates nested names.
func GoCamelCase(s string) string {
	var b []byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '.' && i+1 < len(s) && isASCIILower(s[i+1]):
			// ".{{lowercase}}" joins both words.
		case c == '.':
			b = append(b, '_')
		case c == '_' && (i == 0 || s[i-1] == '.'):
			b = append(b, 'X')
		case c == '_' && i+1 < len(s) && isASCIILower(s[i+1]):
			// "_{{lowercase}}" starts a new word.
		case isASCIIDigit(c):
			b = append(b, c)
		default:
			if isASCIILower(c) {
				c -= 'a' - 'A'
			}
			b = append(b, c)

			for ; i+1 < len(s) && isASCIILower(s[i+1]); i++ {
				b = append(b, s[i+1])
			}
		}
	}

	return string(b)
}

func isASCIILower(c byte) bool {
	return 'a' <= c && c <= 'z'
}

func isASCIIDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

// goTypeName returns the Go name of a message or enum declared inside a
// proto package.
func goTypeName(pkg, fullName string) string {
	if pkg != "" {
		fullName = strings.TrimPrefix(fullName, pkg+".")
	}

	return GoCamelCase(fullName)
}

// uniqueFieldNames renames message fields the way protoc-gen-go does when
// a field collides with a generated method or with another field's getter.
// Oneof names, synthetic ones included, share the same namespace.
func uniqueFieldNames(m *descriptorpb.DescriptorProto, fields []*Field) {
	used := map[string]bool{
		"Reset":               true,
		"String":              true,
		"ProtoMessage":        true,
		"Marshal":             true,
		"Unmarshal":           true,
		"ExtensionRangeArray": true,
		"ExtensionMap":        true,
		"Descriptor":          true,
	}

	unique := func(name string, getter bool) string {
		for used[name] || (getter && used["Get"+name]) {
			name += "_"
		}
		used[name] = true
		used["Get"+name] = getter

		return name
	}

	oneofs := make(map[int32]string)
	for i, f := range fields {
		f.GoName = unique(f.GoName, true)

		desc := m.GetField()[i]
		if desc.OneofIndex == nil {
			continue
		}

		idx := desc.GetOneofIndex()
		name, ok := oneofs[idx]
		if !ok && int(idx) < len(m.GetOneofDecl()) {
			// Getters are not generated for the oneof itself.
			name = unique(GoCamelCase(m.GetOneofDecl()[idx].GetName()), false)
			oneofs[idx] = name
		}
		if f.Oneof != "" {
			f.OneofGo = name
		}
	}
}
