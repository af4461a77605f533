package discovery

import (
	"google.golang.org/protobuf/types/descriptorpb"
)

// Metadata is the read-only model shared by the binding resolver, the code
// synthesizer and the OpenAPI pipeline. Slices keep declaration order.
type Metadata struct {
	Files    []*File
	Services []*Service
	Messages map[string]*Message
	Enums    map[string]*Enum

	// Warnings lists conditions that were downgraded instead of failing,
	// like dropped additional bindings.
	Warnings []string

	StreamingOps         []StreamingOp
	OperationIDs         []OperationID
	FieldConstraints     map[string][]*FieldConstraint
	EnumRewrites         []EnumRewrite
	EnumValueMap         map[string]string
	RedirectPaths        []string
	UUIDSchema           string
	PathParamConstraints []PathParamConstraint
}

// File is a proto file together with its Go package.
type File struct {
	Name          string
	Package       string
	GoImportPath  string
	GoPackageName string
	Generate      bool
	Services      []*Service
}

// Service is a proto service that has at least one bound method.
type Service struct {
	Name     string
	GoName   string
	FullName string
	File     *File
	Methods  []*Method
}

// Method is a service RPC.
type Method struct {
	Name       string
	GoName     string
	Service    *Service
	Input      *Message
	Output     *Message
	Streaming  StreamingMode
	Binding    *HTTPBinding
	Deprecated bool
}

// StreamingMode tells how a method streams messages.
type StreamingMode int

const (
	Unary StreamingMode = iota
	ServerStreaming
	ClientStreaming
	BidiStreaming
)

func (m StreamingMode) String() string {
	switch m {
	case ServerStreaming:
		return "server"
	case ClientStreaming:
		return "client"
	case BidiStreaming:
		return "bidi"
	default:
		return "unary"
	}
}

// BodyKind is the request body selector of a binding.
type BodyKind int

const (
	BodyNone BodyKind = iota
	BodyFull
	BodyField
)

// HTTPBinding is the primary google.api.http binding of a method.
type HTTPBinding struct {
	Verb            string
	Path            string
	Body            BodyKind
	BodyField       string
	DroppedBindings int
}

// Message is a proto message indexed by its full name (without the
// leading dot).
type Message struct {
	Name     string
	FullName string
	GoName   string
	File     *File
	Fields   []*Field
	TopLevel bool
	MapEntry bool
}

// Field is a message field.
type Field struct {
	Name       string
	JSONName   string
	GoName     string
	Number     int32
	Type       descriptorpb.FieldDescriptorProto_Type
	TypeName   string
	Repeated   bool
	Map        bool
	Optional   bool
	Oneof      string
	OneofGo    string
	WellKnown  WellKnownType
	Rules      *ValidationRules
	Deprecated bool
}

// IsMessage tells if the field holds a message.
func (f *Field) IsMessage() bool {
	return f.Type == descriptorpb.FieldDescriptorProto_TYPE_MESSAGE ||
		f.Type == descriptorpb.FieldDescriptorProto_TYPE_GROUP
}

// IsEnum tells if the field holds an enum.
func (f *Field) IsEnum() bool {
	return f.Type == descriptorpb.FieldDescriptorProto_TYPE_ENUM
}

// Field returns the message field with the given proto name.
func (m *Message) Field(name string) *Field {
	for _, f := range m.Fields {
		if f.Name == name {
			return f
		}
	}

	return nil
}

// Enum is a proto enum.
type Enum struct {
	Name     string
	FullName string
	GoName   string
	File     *File
	Values   []EnumValue
	TopLevel bool
}

// EnumValue is a single enum entry.
type EnumValue struct {
	Name   string
	Number int32
}

// WellKnownType classifies google.protobuf messages with a dedicated
// JSON representation.
type WellKnownType int

const (
	NotWellKnown WellKnownType = iota
	WellKnownTimestamp
	WellKnownDuration
	WellKnownFieldMask
	WellKnownEmpty
	WellKnownWrapper
	WellKnownStruct
	WellKnownAny
)

// ValidationRules is the subset of validate.rules the generator
// understands. Integer bounds are folded into inclusive limits.
type ValidationRules struct {
	String   *StringRules
	Signed   *SignedRules
	Unsigned *UnsignedRules
	Enum     *EnumRules
	Required bool
}

// StringRules are string length and content rules.
type StringRules struct {
	MinLen  *uint64
	MaxLen  *uint64
	Pattern string
	In      []string
	UUID    bool
}

// SignedRules are inclusive bounds of int32 or int64 fields.
type SignedRules struct {
	Bits int
	Min  *int64
	Max  *int64
}

// UnsignedRules are inclusive bounds of uint32 or uint64 fields.
type UnsignedRules struct {
	Bits int
	Min  *uint64
	Max  *uint64
}

// EnumRules are enum rules.
type EnumRules struct {
	NotIn       []int32
	DefinedOnly bool
}

// StreamingOp identifies a server-streaming operation.
type StreamingOp struct {
	Verb string
	Path string
}

// OperationID maps a method to the operationId of the baseline document.
type OperationID struct {
	Service     string
	Method      string
	OperationID string
}

// FieldConstraint is the OpenAPI view of a field's validation rules. Field
// is the lowerCamel JSON name.
type FieldConstraint struct {
	Field       string
	Required    bool
	MinLength   *uint64
	MaxLength   *uint64
	Pattern     string
	Enum        []string
	IsUUID      bool
	Numeric     bool
	SignedMin   *int64
	SignedMax   *int64
	UnsignedMin *uint64
	UnsignedMax *uint64
}

// EnumRewrite lists the rewritten values of an enum field of a schema.
type EnumRewrite struct {
	Schema string
	Field  string
	Values []string
}

// PathParamConstraint carries the constraints of the parameters of one
// path. Path uses lowerCamel variable names.
type PathParamConstraint struct {
	Path   string
	Params []PathParam
}

// PathParam describes a single path parameter.
type PathParam struct {
	Name      string
	IsUUID    bool
	MinLength *uint64
	MaxLength *uint64
}
