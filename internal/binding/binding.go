package binding

import (
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/mikros-dev/protoc-gen-mikros-rest/internal/discovery"
	"github.com/mikros-dev/protoc-gen-mikros-rest/internal/pathtemplate"
)

// Config carries the resolver options.
type Config struct {
	// WrapperType is the full proto name of the identifier wrapper message
	// (for example "common.v1.UUID"). Path variables like {user_id.value}
	// are only accepted when the parent field has this type.
	WrapperType string
}

// Service is a service with all of its methods resolved.
type Service struct {
	Service *discovery.Service
	Methods []*Method
}

// Method is a method resolved into a concrete HTTP binding.
type Method struct {
	Method   *discovery.Method
	Verb     string
	Template *pathtemplate.Template
	Path     []*Param
	Query    []*Param
	Body     []*discovery.Field
	BodyFull bool
	Shape    Shape
}

// Name returns "Service.Method".
func (m *Method) Name() string {
	return m.Method.Service.Name + "." + m.Method.Name
}

// ParamKind is how a path or query value is converted into a field.
type ParamKind int

const (
	ParamString ParamKind = iota
	ParamScalar
	ParamEnum
	ParamBytes
	ParamWrapper
	ParamScalarWrapper
	ParamTimestamp
	ParamDuration
	ParamFieldMask
)

// Param is a request field bound to a path variable or a query key.
type Param struct {
	Name       string
	RouterName string
	QueryNames []string
	Field      *discovery.Field
	Kind       ParamKind

	// Scalar is the proto type parsed for ParamScalar and
	// ParamScalarWrapper.
	Scalar descriptorpb.FieldDescriptorProto_Type

	// Enum is set for ParamEnum.
	Enum *discovery.Enum

	// Wrapper and WrapperField are set for ParamWrapper.
	Wrapper      *discovery.Message
	WrapperField *discovery.Field
}

// Shape selects the generated handler body.
type Shape int

const (
	// ShapeUnary answers 200 with a JSON object.
	ShapeUnary Shape = iota

	// ShapeCreated answers 201 with a JSON object.
	ShapeCreated

	// ShapeNoContent answers 204 without a body.
	ShapeNoContent

	// ShapeStream answers with a server-sent event stream.
	ShapeStream
)

func (s Shape) String() string {
	switch s {
	case ShapeCreated:
		return "created"
	case ShapeNoContent:
		return "no-content"
	case ShapeStream:
		return "stream"
	default:
		return "unary"
	}
}

// ShapeFor is the handler shape table. It is a pure lookup over the verb,
// the streaming mode and whether the RPC returns google.protobuf.Empty.
func ShapeFor(verb string, streaming discovery.StreamingMode, emptyOutput bool) Shape {
	switch {
	case streaming == discovery.ServerStreaming:
		return ShapeStream
	case verb == "DELETE" || emptyOutput:
		return ShapeNoContent
	case verb == "POST":
		return ShapeCreated
	default:
		return ShapeUnary
	}
}

var scalarTypes = map[descriptorpb.FieldDescriptorProto_Type]bool{
	descriptorpb.FieldDescriptorProto_TYPE_INT32:    true,
	descriptorpb.FieldDescriptorProto_TYPE_SINT32:   true,
	descriptorpb.FieldDescriptorProto_TYPE_SFIXED32: true,
	descriptorpb.FieldDescriptorProto_TYPE_INT64:    true,
	descriptorpb.FieldDescriptorProto_TYPE_SINT64:   true,
	descriptorpb.FieldDescriptorProto_TYPE_SFIXED64: true,
	descriptorpb.FieldDescriptorProto_TYPE_UINT32:   true,
	descriptorpb.FieldDescriptorProto_TYPE_FIXED32:  true,
	descriptorpb.FieldDescriptorProto_TYPE_UINT64:   true,
	descriptorpb.FieldDescriptorProto_TYPE_FIXED64:  true,
	descriptorpb.FieldDescriptorProto_TYPE_BOOL:     true,
	descriptorpb.FieldDescriptorProto_TYPE_FLOAT:    true,
	descriptorpb.FieldDescriptorProto_TYPE_DOUBLE:   true,
}
