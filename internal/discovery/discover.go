package discovery

import (
	"fmt"
	"path"
	"slices"
	"strings"

	"github.com/iancoleman/strcase"
	"google.golang.org/genproto/googleapis/api/annotations"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/mikros-dev/protoc-gen-mikros-rest/internal/descriptor"
)

// Options tunes how discovery maps proto packages into Go packages.
type Options struct {
	// Packages maps a proto package into a Go package in the form
	// "import/path;name". Entries here win over go_package.
	Packages map[string]string

	// ProtoRoot is the Go import path prefix used when a file has neither
	// a Packages entry nor a go_package option.
	ProtoRoot string

	// FilesToGenerate restricts the services that are collected. Messages
	// and enums are always indexed from every file of the set.
	FilesToGenerate []string
}

// Discover walks a descriptor set and builds the metadata model.
func Discover(set *descriptorpb.FileDescriptorSet, opts Options) (*Metadata, error) {
	md := &Metadata{
		Messages:         make(map[string]*Message),
		Enums:            make(map[string]*Enum),
		FieldConstraints: make(map[string][]*FieldConstraint),
		EnumValueMap:     make(map[string]string),
	}

	for _, f := range set.GetFile() {
		file := newFile(f, opts)
		md.Files = append(md.Files, file)
		md.indexFile(f, file)
	}

	for i, f := range set.GetFile() {
		file := md.Files[i]
		if !file.Generate {
			continue
		}

		for _, s := range f.GetService() {
			service, err := md.loadService(s, file)
			if err != nil {
				return nil, err
			}
			if service == nil {
				continue
			}

			file.Services = append(file.Services, service)
			md.Services = append(md.Services, service)
		}
	}

	md.buildStreamingOps()
	md.buildOperationIDs()
	md.buildFieldConstraints()
	md.buildEnumRewrites()
	md.buildRedirectPaths()
	md.buildUUIDSchema(set)
	md.buildPathParamConstraints()

	return md, nil
}

func newFile(f *descriptorpb.FileDescriptorProto, opts Options) *File {
	importPath, name := GoPackage(f, opts)
	file := &File{
		Name:          f.GetName(),
		Package:       f.GetPackage(),
		GoImportPath:  importPath,
		GoPackageName: name,
		Generate:      len(opts.FilesToGenerate) == 0 || slices.Contains(opts.FilesToGenerate, f.GetName()),
	}

	return file
}

// GoPackage returns the Go import path and package name of a proto file.
// Explicit package mappings win over go_package, which wins over the path
// inferred from the proto package.
func GoPackage(f *descriptorpb.FileDescriptorProto, opts Options) (string, string) {
	gp := f.GetOptions().GetGoPackage()
	if mapped, ok := opts.Packages[f.GetPackage()]; ok && mapped != "" {
		importPath, name := splitGoPackage(mapped)
		if strings.Contains(mapped, ";") || gp == "" {
			return importPath, name
		}

		// A mapping naming the go_package import path keeps the package
		// name protoc-gen-go uses for it.
		if goImportPath, goName := splitGoPackage(gp); goImportPath == importPath {
			return importPath, goName
		}

		return importPath, name
	}
	if gp != "" {
		return splitGoPackage(gp)
	}

	importPath := strings.ReplaceAll(f.GetPackage(), ".", "/")
	if opts.ProtoRoot != "" {
		importPath = path.Join(opts.ProtoRoot, importPath)
	}

	return splitGoPackage(importPath)
}

func splitGoPackage(s string) (string, string) {
	if importPath, name, ok := strings.Cut(s, ";"); ok {
		return importPath, name
	}

	name := strings.NewReplacer("-", "_", ".", "_").Replace(path.Base(s))
	return s, name
}

func (md *Metadata) indexFile(f *descriptorpb.FileDescriptorProto, file *File) {
	prefix := f.GetPackage()
	for _, e := range f.GetEnumType() {
		md.indexEnum(e, file, prefix, true)
	}
	for _, m := range f.GetMessageType() {
		md.indexMessage(m, file, prefix, true)
	}
}

func (md *Metadata) indexMessage(m *descriptorpb.DescriptorProto, file *File, scope string, topLevel bool) {
	var (
		fullName = qualify(scope, m.GetName())
		goName   = goTypeName(file.Package, fullName)
	)

	msg := &Message{
		Name:     m.GetName(),
		FullName: fullName,
		GoName:   goName,
		File:     file,
		TopLevel: topLevel,
		MapEntry: m.GetOptions().GetMapEntry(),
	}

	for _, f := range m.GetField() {
		msg.Fields = append(msg.Fields, newField(f, m))
	}
	uniqueFieldNames(m, msg.Fields)

	md.Messages[fullName] = msg

	for _, e := range m.GetEnumType() {
		md.indexEnum(e, file, fullName, false)
	}
	for _, nested := range m.GetNestedType() {
		md.indexMessage(nested, file, fullName, false)
	}

	// Map fields are recognized through their synthetic entry message.
	for _, field := range msg.Fields {
		if !field.IsMessage() || !field.Repeated {
			continue
		}
		for _, nested := range m.GetNestedType() {
			if nested.GetOptions().GetMapEntry() && qualify(fullName, nested.GetName()) == field.TypeName {
				field.Map = true
			}
		}
	}
}

func (md *Metadata) indexEnum(e *descriptorpb.EnumDescriptorProto, file *File, scope string, topLevel bool) {
	fullName := qualify(scope, e.GetName())
	enum := &Enum{
		Name:     e.GetName(),
		FullName: fullName,
		GoName:   goTypeName(file.Package, fullName),
		File:     file,
		TopLevel: topLevel,
	}
	for _, v := range e.GetValue() {
		enum.Values = append(enum.Values, EnumValue{Name: v.GetName(), Number: v.GetNumber()})
	}

	md.Enums[enum.FullName] = enum
}

func newField(f *descriptorpb.FieldDescriptorProto, parent *descriptorpb.DescriptorProto) *Field {
	field := &Field{
		Name:       f.GetName(),
		JSONName:   f.GetJsonName(),
		GoName:     GoCamelCase(f.GetName()),
		Number:     f.GetNumber(),
		Type:       f.GetType(),
		TypeName:   strings.TrimPrefix(f.GetTypeName(), "."),
		Repeated:   f.GetLabel() == descriptorpb.FieldDescriptorProto_LABEL_REPEATED,
		Optional:   f.GetProto3Optional(),
		Deprecated: f.GetOptions().GetDeprecated(),
		Rules:      convertRules(descriptor.FieldRules(f)),
	}

	if field.JSONName == "" {
		field.JSONName = strcase.ToLowerCamel(f.GetName())
	}
	if f.OneofIndex != nil && !field.Optional {
		idx := int(f.GetOneofIndex())
		if idx < len(parent.GetOneofDecl()) {
			field.Oneof = parent.GetOneofDecl()[idx].GetName()
		}
	}
	if field.IsMessage() {
		field.WellKnown = wellKnownType(field.TypeName)
	}

	return field
}

func wellKnownType(typeName string) WellKnownType {
	switch typeName {
	case "google.protobuf.Timestamp":
		return WellKnownTimestamp
	case "google.protobuf.Duration":
		return WellKnownDuration
	case "google.protobuf.FieldMask":
		return WellKnownFieldMask
	case "google.protobuf.Empty":
		return WellKnownEmpty
	case "google.protobuf.Struct", "google.protobuf.Value", "google.protobuf.ListValue":
		return WellKnownStruct
	case "google.protobuf.Any":
		return WellKnownAny
	}

	if _, ok := WrapperTypes[typeName]; ok {
		return WellKnownWrapper
	}

	return NotWellKnown
}

// WrapperTypes maps the google.protobuf scalar wrappers into the scalar
// type they carry.
var WrapperTypes = map[string]descriptorpb.FieldDescriptorProto_Type{
	"google.protobuf.DoubleValue": descriptorpb.FieldDescriptorProto_TYPE_DOUBLE,
	"google.protobuf.FloatValue":  descriptorpb.FieldDescriptorProto_TYPE_FLOAT,
	"google.protobuf.Int64Value":  descriptorpb.FieldDescriptorProto_TYPE_INT64,
	"google.protobuf.UInt64Value": descriptorpb.FieldDescriptorProto_TYPE_UINT64,
	"google.protobuf.Int32Value":  descriptorpb.FieldDescriptorProto_TYPE_INT32,
	"google.protobuf.UInt32Value": descriptorpb.FieldDescriptorProto_TYPE_UINT32,
	"google.protobuf.BoolValue":   descriptorpb.FieldDescriptorProto_TYPE_BOOL,
	"google.protobuf.StringValue": descriptorpb.FieldDescriptorProto_TYPE_STRING,
	"google.protobuf.BytesValue":  descriptorpb.FieldDescriptorProto_TYPE_BYTES,
}

func (md *Metadata) loadService(s *descriptorpb.ServiceDescriptorProto, file *File) (*Service, error) {
	service := &Service{
		Name:     s.GetName(),
		GoName:   GoCamelCase(s.GetName()),
		FullName: qualify(file.Package, s.GetName()),
		File:     file,
	}

	for _, m := range s.GetMethod() {
		method, err := md.loadMethod(m, service)
		if err != nil {
			return nil, err
		}
		if method.Binding != nil {
			service.Methods = append(service.Methods, method)
		}
	}

	if len(service.Methods) == 0 {
		return nil, nil
	}

	return service, nil
}

func (md *Metadata) loadMethod(m *descriptorpb.MethodDescriptorProto, service *Service) (*Method, error) {
	input, ok := md.Messages[strings.TrimPrefix(m.GetInputType(), ".")]
	if !ok {
		return nil, fmt.Errorf("method '%s.%s' uses unknown input type '%s'", service.Name, m.GetName(), m.GetInputType())
	}

	output, ok := md.Messages[strings.TrimPrefix(m.GetOutputType(), ".")]
	if !ok {
		return nil, fmt.Errorf("method '%s.%s' uses unknown output type '%s'", service.Name, m.GetName(), m.GetOutputType())
	}

	method := &Method{
		Name:       m.GetName(),
		GoName:     GoCamelCase(m.GetName()),
		Service:    service,
		Input:      input,
		Output:     output,
		Streaming:  streamingMode(m),
		Deprecated: m.GetOptions().GetDeprecated(),
	}

	if rule := descriptor.HTTPRule(m); rule != nil {
		binding, warning := newBinding(rule)
		if warning != "" {
			md.Warnings = append(md.Warnings, fmt.Sprintf("%s.%s: %s", service.Name, m.GetName(), warning))
		}
		method.Binding = binding
	}

	return method, nil
}

func streamingMode(m *descriptorpb.MethodDescriptorProto) StreamingMode {
	switch {
	case m.GetClientStreaming() && m.GetServerStreaming():
		return BidiStreaming
	case m.GetClientStreaming():
		return ClientStreaming
	case m.GetServerStreaming():
		return ServerStreaming
	default:
		return Unary
	}
}

func newBinding(rule *annotations.HttpRule) (*HTTPBinding, string) {
	var verb, route string
	switch {
	case rule.GetGet() != "":
		verb, route = "GET", rule.GetGet()
	case rule.GetPut() != "":
		verb, route = "PUT", rule.GetPut()
	case rule.GetPost() != "":
		verb, route = "POST", rule.GetPost()
	case rule.GetDelete() != "":
		verb, route = "DELETE", rule.GetDelete()
	case rule.GetPatch() != "":
		verb, route = "PATCH", rule.GetPatch()
	case rule.GetCustom() != nil:
		return nil, fmt.Sprintf("custom verb '%s' is not supported, method left unbound", rule.GetCustom().GetKind())
	default:
		return nil, "binding without a pattern, method left unbound"
	}

	binding := &HTTPBinding{
		Verb:            verb,
		Path:            route,
		DroppedBindings: len(rule.GetAdditionalBindings()),
	}

	switch rule.GetBody() {
	case "":
		binding.Body = BodyNone
	case "*":
		binding.Body = BodyFull
	default:
		binding.Body = BodyField
		binding.BodyField = rule.GetBody()
	}

	var warning string
	if binding.DroppedBindings > 0 {
		warning = fmt.Sprintf("%d additional binding(s) dropped", binding.DroppedBindings)
	}

	return binding, warning
}

// Methods returns every bound method in declaration order.
func (md *Metadata) Methods() []*Method {
	var methods []*Method
	for _, s := range md.Services {
		methods = append(methods, s.Methods...)
	}

	return methods
}

// Message returns a message by its type name, with or without the leading
// dot.
func (md *Metadata) Message(typeName string) *Message {
	return md.Messages[strings.TrimPrefix(typeName, ".")]
}

// Enum returns an enum by its type name, with or without the leading dot.
func (md *Metadata) Enum(typeName string) *Enum {
	return md.Enums[strings.TrimPrefix(typeName, ".")]
}

func qualify(scope, name string) string {
	if scope == "" {
		return name
	}

	return scope + "." + name
}
