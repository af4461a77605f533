package discovery

import (
	"sort"
	"strings"

	"github.com/iancoleman/strcase"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/mikros-dev/protoc-gen-mikros-rest/internal/descriptor"
	"github.com/mikros-dev/protoc-gen-mikros-rest/internal/pathtemplate"
)

// MaxSafeInteger is the largest integer a JSON number holds without losing
// precision.
const MaxSafeInteger = 1<<53 - 1

func (md *Metadata) buildStreamingOps() {
	for _, m := range md.Methods() {
		if m.Streaming == ServerStreaming {
			md.StreamingOps = append(md.StreamingOps, StreamingOp{
				Verb: strings.ToLower(m.Binding.Verb),
				Path: m.Binding.Path,
			})
		}
	}
}

func (md *Metadata) buildOperationIDs() {
	for _, m := range md.Methods() {
		md.OperationIDs = append(md.OperationIDs, OperationID{
			Service:     m.Service.Name,
			Method:      m.Name,
			OperationID: m.Service.Name + "_" + m.Name,
		})
	}
}

func (md *Metadata) sortedMessages() []*Message {
	messages := make([]*Message, 0, len(md.Messages))
	for _, m := range md.Messages {
		messages = append(messages, m)
	}
	sort.Slice(messages, func(i, j int) bool {
		return messages[i].FullName < messages[j].FullName
	})

	return messages
}

func (md *Metadata) buildFieldConstraints() {
	for _, msg := range md.sortedMessages() {
		for _, f := range msg.Fields {
			if c := fieldConstraint(f); c != nil {
				md.FieldConstraints[msg.FullName] = append(md.FieldConstraints[msg.FullName], c)
			}
		}
	}
}

func fieldConstraint(f *Field) *FieldConstraint {
	if f.Rules == nil {
		return nil
	}

	var (
		rules = f.Rules
		c     = &FieldConstraint{
			Field:    strcase.ToLowerCamel(f.Name),
			Required: rules.Required,
		}
	)

	switch {
	case rules.String != nil:
		s := rules.String
		c.MinLength = s.MinLen
		c.MaxLength = s.MaxLen
		c.Pattern = s.Pattern
		c.Enum = s.In
		c.IsUUID = s.UUID
		if (s.MinLen != nil && *s.MinLen >= 1) || len(s.In) > 0 {
			c.Required = true
		}

	case rules.Signed != nil:
		s := rules.Signed
		if s.Bits == 64 && !rules.Required && !jsonSafeSigned(s) {
			return nil
		}
		c.Numeric = true
		c.SignedMin = s.Min
		c.SignedMax = s.Max

	case rules.Unsigned != nil:
		u := rules.Unsigned
		if u.Bits == 64 && !rules.Required && (u.Max == nil || *u.Max > MaxSafeInteger) {
			return nil
		}
		c.Numeric = true
		c.UnsignedMax = u.Max
		if u.Min != nil && (u.Bits == 32 || *u.Min > 0) {
			c.UnsignedMin = u.Min
		}

	case rules.Enum != nil:
		for _, v := range rules.Enum.NotIn {
			if v == 0 {
				c.Required = true
			}
		}
	}

	if rules.Required && f.IsMessage() && strings.HasSuffix(f.TypeName, ".UUID") {
		c.IsUUID = true
	}

	if !c.Required && !c.Numeric && !c.IsUUID && c.MinLength == nil && c.MaxLength == nil &&
		c.Pattern == "" && len(c.Enum) == 0 {
		return nil
	}

	return c
}

func jsonSafeSigned(s *SignedRules) bool {
	if s.Min == nil || s.Max == nil {
		return false
	}

	return *s.Min >= -MaxSafeInteger && *s.Max <= MaxSafeInteger
}

func (md *Metadata) buildEnumRewrites() {
	rewrites := make(map[string][]string)
	for _, e := range md.sortedEnums() {
		if !e.TopLevel {
			continue
		}

		names := make([]string, len(e.Values))
		for i, v := range e.Values {
			names[i] = v.Name
		}

		prefix := DetectEnumPrefix(names)
		if prefix == "" {
			continue
		}

		values := make([]string, len(names))
		for i, n := range names {
			values[i] = strings.ToLower(strings.TrimPrefix(n, prefix))
			md.EnumValueMap[n] = values[i]
		}

		rewrites[e.FullName] = values
	}

	for _, msg := range md.sortedMessages() {
		for _, f := range msg.Fields {
			if !f.IsEnum() {
				continue
			}

			if values, ok := rewrites[f.TypeName]; ok {
				md.EnumRewrites = append(md.EnumRewrites, EnumRewrite{
					Schema: msg.FullName,
					Field:  strcase.ToLowerCamel(f.Name),
					Values: values,
				})
			}
		}
	}
}

func (md *Metadata) sortedEnums() []*Enum {
	enums := make([]*Enum, 0, len(md.Enums))
	for _, e := range md.Enums {
		enums = append(enums, e)
	}
	sort.Slice(enums, func(i, j int) bool {
		return enums[i].FullName < enums[j].FullName
	})

	return enums
}

// DetectEnumPrefix returns the "PREFIX_" shared by every value name, or an
// empty string when there is none worth stripping.
func DetectEnumPrefix(names []string) string {
	if len(names) == 0 {
		return ""
	}

	prefix := names[0]
	for _, n := range names[1:] {
		for !strings.HasPrefix(n, prefix) {
			prefix = prefix[:len(prefix)-1]
		}
	}

	idx := strings.LastIndex(prefix, "_")
	if idx == -1 {
		return ""
	}

	prefix = prefix[:idx+1]
	if len(prefix) < 3 {
		return ""
	}

	for _, n := range names {
		if len(n) == len(prefix) {
			return ""
		}
	}

	return prefix
}

func (md *Metadata) buildRedirectPaths() {
	for _, m := range md.Methods() {
		if m.Output.Field("redirect_url") != nil {
			md.RedirectPaths = append(md.RedirectPaths, m.Binding.Path)
		}
	}
}

func (md *Metadata) buildUUIDSchema(set *descriptorpb.FileDescriptorSet) {
	for _, f := range set.GetFile() {
		for _, m := range f.GetMessageType() {
			if len(m.GetField()) != 1 {
				continue
			}

			field := m.GetField()[0]
			if field.GetName() != "value" || field.GetType() != descriptorpb.FieldDescriptorProto_TYPE_STRING {
				continue
			}

			rules := descriptor.FieldRules(field)
			if strings.Contains(rules.GetString_().GetPattern(), "0-9a-fA-F") {
				md.UUIDSchema = qualify(f.GetPackage(), m.GetName())
				return
			}
		}
	}
}

func (md *Metadata) buildPathParamConstraints() {
	for _, m := range md.Methods() {
		tpl, err := pathtemplate.Parse(m.Binding.Path)
		if err != nil {
			// Reported by the binding resolver.
			continue
		}

		var params []PathParam
		for _, v := range tpl.Variables() {
			field := m.Input.Field(v.Root())
			if field == nil {
				continue
			}

			param := PathParam{
				Name:   camelVariable(v),
				IsUUID: field.IsMessage() && strings.HasSuffix(field.TypeName, ".UUID"),
			}
			if field.Rules != nil && field.Rules.String != nil {
				param.MinLength = field.Rules.String.MinLen
				param.MaxLength = field.Rules.String.MaxLen
			}

			if param.IsUUID || param.MinLength != nil || param.MaxLength != nil {
				params = append(params, param)
			}
		}

		if len(params) > 0 {
			md.PathParamConstraints = append(md.PathParamConstraints, PathParamConstraint{
				Path:   tpl.Render(func(v *pathtemplate.Variable) string { return "{" + camelVariable(v) + "}" }),
				Params: params,
			})
		}
	}
}

func camelVariable(v *pathtemplate.Variable) string {
	parts := append([]string{strcase.ToLowerCamel(v.Root())}, v.FieldPath[1:]...)
	return strings.Join(parts, ".")
}
