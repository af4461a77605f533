package binding

import (
	"fmt"
	"slices"
	"strings"

	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/mikros-dev/protoc-gen-mikros-rest/internal/discovery"
	"github.com/mikros-dev/protoc-gen-mikros-rest/internal/pathtemplate"
)

// Resolve turns every bound method of the metadata into a concrete HTTP
// binding. It fails on the first method that cannot be resolved and when
// two bindings would match the same requests.
func Resolve(md *discovery.Metadata, cfg Config) ([]*Service, error) {
	var (
		services = make([]*Service, 0, len(md.Services))
		routes   = make(map[string]*Method)
	)

	for _, s := range md.Services {
		service := &Service{Service: s}
		for _, m := range s.Methods {
			method, err := resolveMethod(md, m, cfg)
			if err != nil {
				return nil, err
			}

			key := method.Verb + " " + method.Template.WildcardKey()
			if other, ok := routes[key]; ok {
				return nil, &ResolutionError{
					Service: s.Name,
					Method:  m.Name,
					Err:     ErrRouteConflict,
					Detail:  fmt.Sprintf("%s %s is already bound by %s", method.Verb, m.Binding.Path, other.Name()),
				}
			}

			routes[key] = method
			service.Methods = append(service.Methods, method)
		}

		services = append(services, service)
	}

	return services, nil
}

type resolver struct {
	md     *discovery.Metadata
	method *discovery.Method
	cfg    Config
}

func (r *resolver) fail(field string, err error, detail string) error {
	return &ResolutionError{
		Service: r.method.Service.Name,
		Method:  r.method.Name,
		Field:   field,
		Err:     err,
		Detail:  detail,
	}
}

func resolveMethod(md *discovery.Metadata, m *discovery.Method, cfg Config) (*Method, error) {
	r := &resolver{md: md, method: m, cfg: cfg}

	if m.Streaming == discovery.ClientStreaming || m.Streaming == discovery.BidiStreaming {
		return nil, r.fail("", ErrUnsupportedStreaming, m.Streaming.String()+" streaming")
	}
	if m.Binding.Body == discovery.BodyField {
		return nil, r.fail(m.Binding.BodyField, ErrUnsupportedBody, "only \"\" and \"*\" are supported")
	}

	tpl, err := pathtemplate.Parse(m.Binding.Path)
	if err != nil {
		return nil, r.fail("", ErrInvalidTemplate, err.Error())
	}

	method := &Method{
		Method:   m,
		Verb:     m.Binding.Verb,
		Template: tpl,
		BodyFull: m.Binding.Body == discovery.BodyFull,
		Shape:    ShapeFor(m.Binding.Verb, m.Streaming, m.Output.FullName == "google.protobuf.Empty"),
	}

	pathRoots := make(map[string]bool)
	for _, v := range tpl.Variables() {
		param, err := r.pathParam(v)
		if err != nil {
			return nil, err
		}
		if pathRoots[v.Root()] {
			return nil, r.fail(v.Root(), ErrInvalidTemplate, "field bound twice in the path")
		}

		pathRoots[v.Root()] = true
		method.Path = append(method.Path, param)
	}

	for _, f := range m.Input.Fields {
		if pathRoots[f.Name] {
			continue
		}

		if method.BodyFull {
			method.Body = append(method.Body, f)
			continue
		}

		param, err := r.queryParam(f)
		if err != nil {
			return nil, err
		}
		method.Query = append(method.Query, param)
	}

	return method, nil
}

func (r *resolver) pathParam(v *pathtemplate.Variable) (*Param, error) {
	field := r.method.Input.Field(v.Root())
	if field == nil {
		return nil, r.fail(v.Name(), ErrUnknownField, "not declared in "+r.method.Input.FullName)
	}

	param := &Param{
		Name:       v.Name(),
		RouterName: v.RouterName(),
		Field:      field,
	}

	if field.Repeated {
		return nil, r.fail(v.Name(), ErrUnsupportedPathType, "repeated field")
	}

	if v.Nested() {
		if r.cfg.WrapperType == "" {
			return nil, r.fail(v.Name(), ErrMissingWrapperType, "")
		}
		if len(v.FieldPath) != 2 || !r.isWrapper(field) {
			return nil, r.fail(v.Name(), ErrMissingWrapperType, "parent type is "+field.TypeName)
		}

		return r.wrapperParam(param, v.FieldPath[1])
	}

	switch {
	case field.IsMessage() && r.isWrapper(field):
		return r.wrapperParam(param, "value")
	case field.IsMessage():
		return nil, r.fail(v.Name(), ErrUnsupportedPathType, "message "+field.TypeName)
	case field.IsEnum():
		return r.enumParam(param)
	default:
		r.classifyScalar(param, field.Type)
	}

	return param, nil
}

func (r *resolver) queryParam(f *discovery.Field) (*Param, error) {
	param := &Param{
		Name:       f.Name,
		Field:      f,
		QueryNames: queryNames(f.JSONName, f.Name),
	}

	if f.Map {
		return nil, r.fail(f.Name, ErrUnsupportedQueryType, "map field")
	}

	switch {
	case f.IsMessage():
		if f.Repeated {
			return nil, r.fail(f.Name, ErrUnsupportedQueryType, "repeated message "+f.TypeName)
		}

		switch f.WellKnown {
		case discovery.WellKnownTimestamp:
			param.Kind = ParamTimestamp
		case discovery.WellKnownDuration:
			param.Kind = ParamDuration
		case discovery.WellKnownFieldMask:
			param.Kind = ParamFieldMask
		case discovery.WellKnownWrapper:
			param.Kind = ParamScalarWrapper
			param.Scalar = discovery.WrapperTypes[f.TypeName]
		default:
			if !r.isWrapper(f) {
				return nil, r.fail(f.Name, ErrUnsupportedQueryType, "message "+f.TypeName)
			}

			param.QueryNames = queryNames(append(param.QueryNames, f.JSONName+".value", f.Name+".value")...)
			return r.wrapperParam(param, "value")
		}

	case f.IsEnum():
		return r.enumParam(param)

	case f.Type == descriptorpb.FieldDescriptorProto_TYPE_GROUP:
		return nil, r.fail(f.Name, ErrUnsupportedQueryType, "group")

	default:
		r.classifyScalar(param, f.Type)
	}

	return param, nil
}

func (r *resolver) classifyScalar(param *Param, t descriptorpb.FieldDescriptorProto_Type) {
	switch {
	case t == descriptorpb.FieldDescriptorProto_TYPE_BYTES:
		param.Kind = ParamBytes
	case scalarTypes[t]:
		param.Kind = ParamScalar
		param.Scalar = t
	default:
		param.Kind = ParamString
	}
}

func (r *resolver) enumParam(param *Param) (*Param, error) {
	enum := r.md.Enum(param.Field.TypeName)
	if enum == nil {
		return nil, r.fail(param.Name, ErrUnknownField, "unknown enum "+param.Field.TypeName)
	}

	param.Kind = ParamEnum
	param.Enum = enum

	return param, nil
}

func (r *resolver) wrapperParam(param *Param, leaf string) (*Param, error) {
	wrapper := r.md.Message(param.Field.TypeName)
	if wrapper == nil {
		return nil, r.fail(param.Name, ErrUnknownField, "unknown message "+param.Field.TypeName)
	}

	inner := wrapper.Field(leaf)
	if inner == nil || inner.Type != descriptorpb.FieldDescriptorProto_TYPE_STRING {
		return nil, r.fail(param.Name, ErrUnsupportedPathType, fmt.Sprintf("%s has no string field '%s'", wrapper.FullName, leaf))
	}

	param.Kind = ParamWrapper
	param.Wrapper = wrapper
	param.WrapperField = inner

	return param, nil
}

func (r *resolver) isWrapper(f *discovery.Field) bool {
	if r.cfg.WrapperType == "" || !f.IsMessage() {
		return false
	}

	want := strings.TrimPrefix(r.cfg.WrapperType, ".")
	return f.TypeName == want || strings.HasSuffix(f.TypeName, "."+want)
}

func queryNames(names ...string) []string {
	var out []string
	for _, n := range names {
		if n != "" && !slices.Contains(out, n) {
			out = append(out, n)
		}
	}

	return out
}
