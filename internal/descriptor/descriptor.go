package descriptor

import (
	"fmt"

	"github.com/envoyproxy/protoc-gen-validate/validate"
	"google.golang.org/genproto/googleapis/api/annotations"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
)

const (
	// HTTPRuleFieldNumber is the MethodOptions field number of google.api.http.
	HTTPRuleFieldNumber protoreflect.FieldNumber = 72295728

	// FieldRulesFieldNumber is the FieldOptions field number of validate.rules.
	FieldRulesFieldNumber protoreflect.FieldNumber = 1071
)

// Extensions is the table of option extensions the decoder keeps typed.
// Anything not listed here stays as unknown fields in the options.
var Extensions = map[protoreflect.FieldNumber]protoreflect.ExtensionType{
	HTTPRuleFieldNumber:   annotations.E_Http,
	FieldRulesFieldNumber: validate.E_Rules,
}

// DecodeError is returned when the input bytes are not a valid descriptor
// set.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("could not decode descriptor set: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Decode parses a serialized FileDescriptorSet keeping the HTTP binding and
// validation rule extensions typed.
func Decode(b []byte) (*descriptorpb.FileDescriptorSet, error) {
	types, err := extensionTypes()
	if err != nil {
		return nil, &DecodeError{Err: err}
	}

	var (
		set  descriptorpb.FileDescriptorSet
		opts = proto.UnmarshalOptions{Resolver: types}
	)

	if err := opts.Unmarshal(b, &set); err != nil {
		return nil, &DecodeError{Err: err}
	}

	return &set, nil
}

// Encode serializes a descriptor set deterministically.
func Encode(set *descriptorpb.FileDescriptorSet) ([]byte, error) {
	return proto.MarshalOptions{Deterministic: true}.Marshal(set)
}

func extensionTypes() (*protoregistry.Types, error) {
	types := new(protoregistry.Types)
	for number, xt := range Extensions {
		if got := xt.TypeDescriptor().Number(); got != number {
			return nil, fmt.Errorf("extension '%v' registered as %d but declares %d", xt.TypeDescriptor().FullName(), number, got)
		}

		if err := types.RegisterExtension(xt); err != nil {
			return nil, err
		}
	}

	return types, nil
}

// HTTPRule returns the google.api.http binding of a method, or nil when the
// method has none.
func HTTPRule(method *descriptorpb.MethodDescriptorProto) *annotations.HttpRule {
	if method == nil || method.GetOptions() == nil {
		return nil
	}
	if !proto.HasExtension(method.GetOptions(), annotations.E_Http) {
		return nil
	}

	if rule, ok := proto.GetExtension(method.GetOptions(), annotations.E_Http).(*annotations.HttpRule); ok {
		return rule
	}

	return nil
}

// FieldRules returns the validate.rules of a field, or nil.
func FieldRules(field *descriptorpb.FieldDescriptorProto) *validate.FieldRules {
	if field == nil || field.GetOptions() == nil {
		return nil
	}
	if !proto.HasExtension(field.GetOptions(), validate.E_Rules) {
		return nil
	}

	if rules, ok := proto.GetExtension(field.GetOptions(), validate.E_Rules).(*validate.FieldRules); ok {
		return rules
	}

	return nil
}
