package codegen

import (
	"fmt"
	"strconv"
	"strings"

	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/mikros-dev/protoc-gen-mikros-rest/internal/binding"
	"github.com/mikros-dev/protoc-gen-mikros-rest/internal/discovery"
)

const wrapperspbPath = "google.golang.org/protobuf/types/known/wrapperspb"

var parseFuncs = map[descriptorpb.FieldDescriptorProto_Type]string{
	descriptorpb.FieldDescriptorProto_TYPE_INT32:    "ParseInt32",
	descriptorpb.FieldDescriptorProto_TYPE_SINT32:   "ParseInt32",
	descriptorpb.FieldDescriptorProto_TYPE_SFIXED32: "ParseInt32",
	descriptorpb.FieldDescriptorProto_TYPE_INT64:    "ParseInt64",
	descriptorpb.FieldDescriptorProto_TYPE_SINT64:   "ParseInt64",
	descriptorpb.FieldDescriptorProto_TYPE_SFIXED64: "ParseInt64",
	descriptorpb.FieldDescriptorProto_TYPE_UINT32:   "ParseUint32",
	descriptorpb.FieldDescriptorProto_TYPE_FIXED32:  "ParseUint32",
	descriptorpb.FieldDescriptorProto_TYPE_UINT64:   "ParseUint64",
	descriptorpb.FieldDescriptorProto_TYPE_FIXED64:  "ParseUint64",
	descriptorpb.FieldDescriptorProto_TYPE_BOOL:     "ParseBool",
	descriptorpb.FieldDescriptorProto_TYPE_FLOAT:    "ParseFloat32",
	descriptorpb.FieldDescriptorProto_TYPE_DOUBLE:   "ParseFloat64",
	descriptorpb.FieldDescriptorProto_TYPE_BYTES:    "ParseBytes",
}

var wrapperFuncs = map[descriptorpb.FieldDescriptorProto_Type]string{
	descriptorpb.FieldDescriptorProto_TYPE_DOUBLE: "Double",
	descriptorpb.FieldDescriptorProto_TYPE_FLOAT:  "Float",
	descriptorpb.FieldDescriptorProto_TYPE_INT64:  "Int64",
	descriptorpb.FieldDescriptorProto_TYPE_UINT64: "UInt64",
	descriptorpb.FieldDescriptorProto_TYPE_INT32:  "Int32",
	descriptorpb.FieldDescriptorProto_TYPE_UINT32: "UInt32",
	descriptorpb.FieldDescriptorProto_TYPE_BOOL:   "Bool",
	descriptorpb.FieldDescriptorProto_TYPE_STRING: "String",
	descriptorpb.FieldDescriptorProto_TYPE_BYTES:  "Bytes",
}

// conversion describes how a raw string becomes a field value.
type conversion struct {
	expr     string
	fallible bool
	wrap     func(value string) string
}

func (c conversion) value(v string) string {
	if c.wrap != nil {
		return c.wrap(v)
	}

	return v
}

// pathParamCode renders the statements assigning a path variable into the
// request message.
func (g *fileGenerator) pathParamCode(p *binding.Param, msg *discovery.Message) string {
	open := fmt.Sprintf("if raw, ok := vars[%s]; ok {", strconv.Quote(p.RouterName))
	return g.singularCode(open, p, msg, p.Name)
}

// queryParamCode renders the statements assigning a query value into the
// request message.
func (g *fileGenerator) queryParamCode(p *binding.Param, msg *discovery.Message) string {
	names := make([]string, len(p.QueryNames))
	for i, n := range p.QueryNames {
		names[i] = strconv.Quote(n)
	}

	if p.Field.Repeated {
		open := fmt.Sprintf("if vs := %s.QueryValues(q, %s); len(vs) > 0 {", g.rest, strings.Join(names, ", "))
		return g.repeatedCode(open, p)
	}

	open := fmt.Sprintf("if raw, ok := %s.QueryValue(q, %s); ok {", g.rest, strings.Join(names, ", "))
	return g.singularCode(open, p, msg, p.Field.JSONName)
}

func (g *fileGenerator) singularCode(open string, p *binding.Param, msg *discovery.Message, label string) string {
	var (
		b    strings.Builder
		conv = g.convert(p, label)
	)

	b.WriteString(open + "\n")
	if conv.fallible {
		fmt.Fprintf(&b, "v, err := %s\n", conv.expr)
		b.WriteString(g.errorReturn())
		b.WriteString(g.assign(p.Field, msg, conv.value("v")) + "\n")
	} else {
		b.WriteString(g.assign(p.Field, msg, conv.value(conv.expr)) + "\n")
	}
	b.WriteString("}")

	return b.String()
}

func (g *fileGenerator) repeatedCode(open string, p *binding.Param) string {
	var (
		b     strings.Builder
		label = strconv.Quote(p.Field.JSONName)
		field = "req." + p.Field.GoName
	)

	b.WriteString(open + "\n")
	switch p.Kind {
	case binding.ParamString:
		fmt.Fprintf(&b, "%s = vs\n", field)
	case binding.ParamEnum:
		fmt.Fprintf(&b, "v, err := %s.ParseList(%s, vs, %s.EnumParser[%s](%s))\n",
			g.rest, label, g.rest, g.enumType(p.Enum), g.enumValues(p.Enum))
		b.WriteString(g.errorReturn())
		fmt.Fprintf(&b, "%s = v\n", field)
	default:
		fmt.Fprintf(&b, "v, err := %s.ParseList(%s, vs, %s.%s)\n", g.rest, label, g.rest, parseFuncs[p.Field.Type])
		b.WriteString(g.errorReturn())
		fmt.Fprintf(&b, "%s = v\n", field)
	}
	b.WriteString("}")

	return b.String()
}

func (g *fileGenerator) convert(p *binding.Param, label string) conversion {
	label = strconv.Quote(label)

	switch p.Kind {
	case binding.ParamScalar, binding.ParamBytes:
		return conversion{
			expr:     fmt.Sprintf("%s.%s(%s, raw)", g.rest, parseFuncs[p.Field.Type], label),
			fallible: true,
		}

	case binding.ParamEnum:
		return conversion{
			expr:     fmt.Sprintf("%s.ParseEnum[%s](%s, raw, %s)", g.rest, g.enumType(p.Enum), label, g.enumValues(p.Enum)),
			fallible: true,
		}

	case binding.ParamTimestamp:
		return conversion{expr: fmt.Sprintf("%s.ParseTimestamp(%s, raw)", g.rest, label), fallible: true}

	case binding.ParamDuration:
		return conversion{expr: fmt.Sprintf("%s.ParseDuration(%s, raw)", g.rest, label), fallible: true}

	case binding.ParamFieldMask:
		return conversion{expr: fmt.Sprintf("%s.ParseFieldMask(%s, raw)", g.rest, label), fallible: true}

	case binding.ParamScalarWrapper:
		var (
			wrapper = g.imports.use(wrapperspbPath, "wrapperspb")
			ctor    = wrapper + "." + wrapperFuncs[p.Scalar]
			wrap    = func(v string) string { return ctor + "(" + v + ")" }
		)

		if p.Scalar == descriptorpb.FieldDescriptorProto_TYPE_STRING {
			return conversion{expr: "raw", wrap: wrap}
		}

		return conversion{
			expr:     fmt.Sprintf("%s.%s(%s, raw)", g.rest, parseFuncs[p.Scalar], label),
			fallible: true,
			wrap:     wrap,
		}

	case binding.ParamWrapper:
		return conversion{
			expr: fmt.Sprintf("&%s{%s: raw}", g.messageType(p.Wrapper), p.WrapperField.GoName),
		}
	}

	return conversion{expr: "raw"}
}

func (g *fileGenerator) assign(f *discovery.Field, msg *discovery.Message, value string) string {
	switch {
	case f.Oneof != "":
		return fmt.Sprintf("req.%s = &%s_%s{%s: %s}", f.OneofGo, g.messageType(msg), f.GoName, f.GoName, value)
	case f.Optional && !f.IsMessage():
		return fmt.Sprintf("req.%s = &%s", f.GoName, value)
	default:
		return fmt.Sprintf("req.%s = %s", f.GoName, value)
	}
}

func (g *fileGenerator) errorReturn() string {
	return fmt.Sprintf("if err != nil {\n%s.WriteError(w, err)\nreturn\n}\n", g.rest)
}

func (g *fileGenerator) messageType(msg *discovery.Message) string {
	return g.imports.qualify(msg.File.GoImportPath, msg.File.GoPackageName, msg.GoName)
}

func (g *fileGenerator) enumType(e *discovery.Enum) string {
	return g.imports.qualify(e.File.GoImportPath, e.File.GoPackageName, e.GoName)
}

func (g *fileGenerator) enumValues(e *discovery.Enum) string {
	return g.imports.qualify(e.File.GoImportPath, e.File.GoPackageName, e.GoName+"_value")
}
