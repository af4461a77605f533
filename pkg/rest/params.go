package rest

import (
	"encoding/base64"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/iancoleman/strcase"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/fieldmaskpb"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// QueryValue returns the first value of the first name present in q.
func QueryValue(q url.Values, names ...string) (string, bool) {
	for _, n := range names {
		if values, ok := q[n]; ok && len(values) > 0 {
			return values[0], true
		}
	}

	return "", false
}

// QueryValues returns every value of the first name present in q.
func QueryValues(q url.Values, names ...string) []string {
	for _, n := range names {
		if values, ok := q[n]; ok && len(values) > 0 {
			return values
		}
	}

	return nil
}

func ParseInt32(field, raw string) (int32, error) {
	v, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return 0, &FieldError{Field: field, Value: raw, Expected: "int32", Err: err}
	}

	return int32(v), nil
}

func ParseInt64(field, raw string) (int64, error) {
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, &FieldError{Field: field, Value: raw, Expected: "int64", Err: err}
	}

	return v, nil
}

func ParseUint32(field, raw string) (uint32, error) {
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, &FieldError{Field: field, Value: raw, Expected: "uint32", Err: err}
	}

	return uint32(v), nil
}

func ParseUint64(field, raw string) (uint64, error) {
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, &FieldError{Field: field, Value: raw, Expected: "uint64", Err: err}
	}

	return v, nil
}

func ParseBool(field, raw string) (bool, error) {
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, &FieldError{Field: field, Value: raw, Expected: "bool", Err: err}
	}

	return v, nil
}

func ParseFloat32(field, raw string) (float32, error) {
	v, err := strconv.ParseFloat(raw, 32)
	if err != nil {
		return 0, &FieldError{Field: field, Value: raw, Expected: "float", Err: err}
	}

	return float32(v), nil
}

func ParseFloat64(field, raw string) (float64, error) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, &FieldError{Field: field, Value: raw, Expected: "double", Err: err}
	}

	return v, nil
}

// ParseBytes accepts standard and URL-safe base64, padded or not.
func ParseBytes(field, raw string) ([]byte, error) {
	for _, enc := range []*base64.Encoding{
		base64.StdEncoding,
		base64.URLEncoding,
		base64.RawStdEncoding,
		base64.RawURLEncoding,
	} {
		if b, err := enc.DecodeString(raw); err == nil {
			return b, nil
		}
	}

	return nil, &FieldError{Field: field, Value: raw, Expected: "base64 bytes"}
}

// ParseEnum converts an enum value name into T. Besides the exact proto
// name it accepts any letter case, the name without its common prefix
// (as published in the OpenAPI document) and the numeric value.
func ParseEnum[T ~int32](field, raw string, values map[string]int32) (T, error) {
	if v, ok := values[raw]; ok {
		return T(v), nil
	}

	upper := strings.ToUpper(raw)
	if v, ok := values[upper]; ok {
		return T(v), nil
	}

	var (
		match   int32
		matches int
	)

	for name, v := range values {
		if strings.HasSuffix(name, "_"+upper) {
			match = v
			matches++
		}
	}
	if matches == 1 {
		return T(match), nil
	}

	if n, err := strconv.ParseInt(raw, 10, 32); err == nil {
		for _, v := range values {
			if v == int32(n) {
				return T(v), nil
			}
		}
	}

	return 0, &FieldError{Field: field, Value: raw, Expected: "enum value"}
}

// EnumParser adapts ParseEnum for ParseList.
func EnumParser[T ~int32](values map[string]int32) func(string, string) (T, error) {
	return func(field, raw string) (T, error) {
		return ParseEnum[T](field, raw, values)
	}
}

// ParseList converts every raw value with parse.
func ParseList[T any](field string, raw []string, parse func(string, string) (T, error)) ([]T, error) {
	out := make([]T, 0, len(raw))
	for _, r := range raw {
		v, err := parse(field, r)
		if err != nil {
			return nil, err
		}

		out = append(out, v)
	}

	return out, nil
}

// ParseTimestamp parses an RFC 3339 timestamp.
func ParseTimestamp(field, raw string) (*timestamppb.Timestamp, error) {
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return nil, &FieldError{Field: field, Value: raw, Expected: "RFC 3339 timestamp", Err: err}
	}

	return timestamppb.New(t), nil
}

// ParseDuration parses a duration such as "300s" or "1.5s".
func ParseDuration(field, raw string) (*durationpb.Duration, error) {
	d, err := time.ParseDuration(raw)
	if err != nil {
		return nil, &FieldError{Field: field, Value: raw, Expected: "duration", Err: err}
	}

	return durationpb.New(d), nil
}

// ParseFieldMask parses a comma separated list of lowerCamel or snake case
// paths.
func ParseFieldMask(field, raw string) (*fieldmaskpb.FieldMask, error) {
	mask := &fieldmaskpb.FieldMask{}
	for _, p := range strings.Split(raw, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}

		segments := strings.Split(p, ".")
		for i, s := range segments {
			segments[i] = strcase.ToSnake(s)
		}
		mask.Paths = append(mask.Paths, strings.Join(segments, "."))
	}

	if len(mask.GetPaths()) == 0 {
		return nil, &FieldError{Field: field, Value: raw, Expected: "field mask"}
	}

	return mask, nil
}
