package discovery

import (
	"github.com/envoyproxy/protoc-gen-validate/validate"
)

func convertRules(r *validate.FieldRules) *ValidationRules {
	if r == nil {
		return nil
	}

	rules := &ValidationRules{
		Required: r.GetMessage().GetRequired(),
	}

	switch {
	case r.GetString_() != nil:
		rules.String = stringRules(r.GetString_())
	case r.GetInt32() != nil:
		i := r.GetInt32()
		rules.Signed = signedRules(32, widenSigned(i.Gt), widenSigned(i.Gte), widenSigned(i.Lt), widenSigned(i.Lte))
	case r.GetInt64() != nil:
		i := r.GetInt64()
		rules.Signed = signedRules(64, i.Gt, i.Gte, i.Lt, i.Lte)
	case r.GetUint32() != nil:
		u := r.GetUint32()
		rules.Unsigned = unsignedRules(32, widenUnsigned(u.Gt), widenUnsigned(u.Gte), widenUnsigned(u.Lt), widenUnsigned(u.Lte))
	case r.GetUint64() != nil:
		u := r.GetUint64()
		rules.Unsigned = unsignedRules(64, u.Gt, u.Gte, u.Lt, u.Lte)
	case r.GetEnum() != nil:
		rules.Enum = &EnumRules{
			NotIn:       r.GetEnum().GetNotIn(),
			DefinedOnly: r.GetEnum().GetDefinedOnly(),
		}
	}

	return rules
}

func stringRules(s *validate.StringRules) *StringRules {
	rules := &StringRules{
		MinLen:  s.MinLen,
		MaxLen:  s.MaxLen,
		Pattern: s.GetPattern(),
		In:      s.GetIn(),
		UUID:    s.GetUuid(),
	}

	if s.Len != nil {
		rules.MinLen = s.Len
		rules.MaxLen = s.Len
	}

	return rules
}

func signedRules(bits int, gt, gte, lt, lte *int64) *SignedRules {
	rules := &SignedRules{Bits: bits}

	switch {
	case gte != nil:
		rules.Min = gte
	case gt != nil:
		v := *gt + 1
		rules.Min = &v
	}

	switch {
	case lte != nil:
		rules.Max = lte
	case lt != nil:
		v := *lt - 1
		rules.Max = &v
	}

	return rules
}

func unsignedRules(bits int, gt, gte, lt, lte *uint64) *UnsignedRules {
	rules := &UnsignedRules{Bits: bits}

	switch {
	case gte != nil:
		rules.Min = gte
	case gt != nil:
		v := *gt + 1
		rules.Min = &v
	}

	switch {
	case lte != nil:
		rules.Max = lte
	case lt != nil && *lt > 0:
		v := *lt - 1
		rules.Max = &v
	}

	return rules
}

func widenSigned(v *int32) *int64 {
	if v == nil {
		return nil
	}

	w := int64(*v)
	return &w
}

func widenUnsigned(v *uint32) *uint64 {
	if v == nil {
		return nil
	}

	w := uint64(*v)
	return &w
}
