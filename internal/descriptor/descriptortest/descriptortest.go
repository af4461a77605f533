// Package descriptortest builds in-memory descriptor sets for tests.
package descriptortest

import (
	"github.com/envoyproxy/protoc-gen-validate/validate"
	"github.com/iancoleman/strcase"
	"google.golang.org/genproto/googleapis/api/annotations"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/descriptorpb"
)

// Field types re-exported for shorter fixtures.
const (
	String  = descriptorpb.FieldDescriptorProto_TYPE_STRING
	Int32   = descriptorpb.FieldDescriptorProto_TYPE_INT32
	Int64   = descriptorpb.FieldDescriptorProto_TYPE_INT64
	Uint32  = descriptorpb.FieldDescriptorProto_TYPE_UINT32
	Uint64  = descriptorpb.FieldDescriptorProto_TYPE_UINT64
	Bool    = descriptorpb.FieldDescriptorProto_TYPE_BOOL
	Double  = descriptorpb.FieldDescriptorProto_TYPE_DOUBLE
	Bytes   = descriptorpb.FieldDescriptorProto_TYPE_BYTES
	Enum    = descriptorpb.FieldDescriptorProto_TYPE_ENUM
	Message = descriptorpb.FieldDescriptorProto_TYPE_MESSAGE
)

// FileBuilder assembles a FileDescriptorProto.
type FileBuilder struct {
	file *descriptorpb.FileDescriptorProto
}

// File starts a proto3 file with the given name, package and go_package.
func File(name, pkg, goPackage string) *FileBuilder {
	f := &descriptorpb.FileDescriptorProto{
		Name:    proto.String(name),
		Package: proto.String(pkg),
		Syntax:  proto.String("proto3"),
	}
	if goPackage != "" {
		f.Options = &descriptorpb.FileOptions{GoPackage: proto.String(goPackage)}
	}

	return &FileBuilder{file: f}
}

// Dependency adds an import.
func (b *FileBuilder) Dependency(names ...string) *FileBuilder {
	b.file.Dependency = append(b.file.Dependency, names...)
	return b
}

// Message adds a top-level message.
func (b *FileBuilder) Message(msg *descriptorpb.DescriptorProto) *FileBuilder {
	b.file.MessageType = append(b.file.MessageType, msg)
	return b
}

// Enum adds a top-level enum.
func (b *FileBuilder) Enum(e *descriptorpb.EnumDescriptorProto) *FileBuilder {
	b.file.EnumType = append(b.file.EnumType, e)
	return b
}

// Service adds a service with its methods.
func (b *FileBuilder) Service(name string, methods ...*descriptorpb.MethodDescriptorProto) *FileBuilder {
	b.file.Service = append(b.file.Service, &descriptorpb.ServiceDescriptorProto{
		Name:   proto.String(name),
		Method: methods,
	})

	return b
}

// Build returns the assembled file.
func (b *FileBuilder) Build() *descriptorpb.FileDescriptorProto {
	return b.file
}

// Set wraps files into a descriptor set.
func Set(files ...*descriptorpb.FileDescriptorProto) *descriptorpb.FileDescriptorSet {
	return &descriptorpb.FileDescriptorSet{File: files}
}

// Msg builds a message with fields, numbering them in order when a field
// has no number yet.
func Msg(name string, fields ...*descriptorpb.FieldDescriptorProto) *descriptorpb.DescriptorProto {
	for i, f := range fields {
		if f.Number == nil {
			f.Number = proto.Int32(int32(i + 1))
		}
	}

	return &descriptorpb.DescriptorProto{
		Name:  proto.String(name),
		Field: fields,
	}
}

// Nested attaches nested messages to a parent message.
func Nested(parent *descriptorpb.DescriptorProto, children ...*descriptorpb.DescriptorProto) *descriptorpb.DescriptorProto {
	parent.NestedType = append(parent.NestedType, children...)
	return parent
}

// EnumOf builds an enum whose values are numbered in declaration order.
func EnumOf(name string, values ...string) *descriptorpb.EnumDescriptorProto {
	e := &descriptorpb.EnumDescriptorProto{Name: proto.String(name)}
	for i, v := range values {
		e.Value = append(e.Value, &descriptorpb.EnumValueDescriptorProto{
			Name:   proto.String(v),
			Number: proto.Int32(int32(i)),
		})
	}

	return e
}

// Scalar builds a singular scalar field.
func Scalar(name string, t descriptorpb.FieldDescriptorProto_Type) *descriptorpb.FieldDescriptorProto {
	return &descriptorpb.FieldDescriptorProto{
		Name:     proto.String(name),
		Type:     t.Enum(),
		Label:    descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
		JsonName: proto.String(strcase.ToLowerCamel(name)),
	}
}

// Ref builds a singular message or enum field referencing typeName, which
// must be fully qualified with a leading dot.
func Ref(name string, t descriptorpb.FieldDescriptorProto_Type, typeName string) *descriptorpb.FieldDescriptorProto {
	f := Scalar(name, t)
	f.TypeName = proto.String(typeName)
	return f
}

// Repeated marks a field as repeated.
func Repeated(f *descriptorpb.FieldDescriptorProto) *descriptorpb.FieldDescriptorProto {
	f.Label = descriptorpb.FieldDescriptorProto_LABEL_REPEATED.Enum()
	return f
}

// Optional marks a field as proto3 optional. The synthetic oneof must be
// added by the caller through Oneofs.
func Optional(f *descriptorpb.FieldDescriptorProto, oneofIndex int32) *descriptorpb.FieldDescriptorProto {
	f.Proto3Optional = proto.Bool(true)
	f.OneofIndex = proto.Int32(oneofIndex)
	return f
}

// InOneof places a field in the oneof with the given index.
func InOneof(f *descriptorpb.FieldDescriptorProto, oneofIndex int32) *descriptorpb.FieldDescriptorProto {
	f.OneofIndex = proto.Int32(oneofIndex)
	return f
}

// Oneofs declares the oneofs of a message.
func Oneofs(msg *descriptorpb.DescriptorProto, names ...string) *descriptorpb.DescriptorProto {
	for _, n := range names {
		msg.OneofDecl = append(msg.OneofDecl, &descriptorpb.OneofDescriptorProto{Name: proto.String(n)})
	}

	return msg
}

// WithRules attaches validate.rules to a field.
func WithRules(f *descriptorpb.FieldDescriptorProto, rules *validate.FieldRules) *descriptorpb.FieldDescriptorProto {
	if f.Options == nil {
		f.Options = &descriptorpb.FieldOptions{}
	}
	proto.SetExtension(f.Options, validate.E_Rules, rules)

	return f
}

// Method builds a unary method. Input and output must be fully qualified
// with a leading dot. A nil rule leaves the method unbound.
func Method(name, input, output string, rule *annotations.HttpRule) *descriptorpb.MethodDescriptorProto {
	m := &descriptorpb.MethodDescriptorProto{
		Name:       proto.String(name),
		InputType:  proto.String(input),
		OutputType: proto.String(output),
	}
	if rule != nil {
		m.Options = &descriptorpb.MethodOptions{}
		proto.SetExtension(m.Options, annotations.E_Http, rule)
	}

	return m
}

// ServerStreaming marks a method as server streaming.
func ServerStreaming(m *descriptorpb.MethodDescriptorProto) *descriptorpb.MethodDescriptorProto {
	m.ServerStreaming = proto.Bool(true)
	return m
}

// ClientStreaming marks a method as client streaming.
func ClientStreaming(m *descriptorpb.MethodDescriptorProto) *descriptorpb.MethodDescriptorProto {
	m.ClientStreaming = proto.Bool(true)
	return m
}

// Deprecated marks a method as deprecated.
func Deprecated(m *descriptorpb.MethodDescriptorProto) *descriptorpb.MethodDescriptorProto {
	if m.Options == nil {
		m.Options = &descriptorpb.MethodOptions{}
	}
	m.Options.Deprecated = proto.Bool(true)

	return m
}

// Get builds a GET binding.
func Get(path string) *annotations.HttpRule {
	return &annotations.HttpRule{Pattern: &annotations.HttpRule_Get{Get: path}}
}

// Post builds a POST binding with the given body selector.
func Post(path, body string) *annotations.HttpRule {
	return &annotations.HttpRule{Pattern: &annotations.HttpRule_Post{Post: path}, Body: body}
}

// Put builds a PUT binding with the given body selector.
func Put(path, body string) *annotations.HttpRule {
	return &annotations.HttpRule{Pattern: &annotations.HttpRule_Put{Put: path}, Body: body}
}

// Patch builds a PATCH binding with the given body selector.
func Patch(path, body string) *annotations.HttpRule {
	return &annotations.HttpRule{Pattern: &annotations.HttpRule_Patch{Patch: path}, Body: body}
}

// Delete builds a DELETE binding.
func Delete(path string) *annotations.HttpRule {
	return &annotations.HttpRule{Pattern: &annotations.HttpRule_Delete{Delete: path}}
}

// StringRules wraps string rules into field rules.
func StringRules(r *validate.StringRules) *validate.FieldRules {
	return &validate.FieldRules{Type: &validate.FieldRules_String_{String_: r}}
}

// RequiredMessage builds message rules marking the field as required.
func RequiredMessage() *validate.FieldRules {
	return &validate.FieldRules{Message: &validate.MessageRules{Required: proto.Bool(true)}}
}

// WellKnownFile returns a minimal google/protobuf file declaring the
// messages used by fixtures.
func WellKnownFile() *descriptorpb.FileDescriptorProto {
	return File("google/protobuf/wkt.proto", "google.protobuf", "google.golang.org/protobuf/types/known/wkt").
		Message(Msg("Empty")).
		Message(Msg("Timestamp", Scalar("seconds", Int64), Scalar("nanos", Int32))).
		Message(Msg("Duration", Scalar("seconds", Int64), Scalar("nanos", Int32))).
		Message(Msg("FieldMask", Repeated(Scalar("paths", String)))).
		Message(Msg("StringValue", Scalar("value", String))).
		Message(Msg("Int64Value", Scalar("value", Int64))).
		Build()
}
