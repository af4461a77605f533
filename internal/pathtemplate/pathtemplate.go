// Package pathtemplate parses google.api.http path templates.
//
// The supported grammar is:
//
//	Template = "/" Segment { "/" Segment } [ ":" Verb ]
//	Segment  = Literal | "{" FieldPath [ "=" ( "*" | "**" ) ] "}"
//
// A "**" variable may only appear as the last segment.
package pathtemplate

import (
	"fmt"
	"strings"
)

// Pattern is the match rule of a variable.
type Pattern int

const (
	// PatternSegment matches a single path segment ({name} or {name=*}).
	PatternSegment Pattern = iota

	// PatternMulti matches the remaining segments ({name=**}).
	PatternMulti
)

// Template is a parsed path template.
type Template struct {
	Raw      string
	Segments []*Segment
	Verb     string
}

// Segment is either a literal or a variable.
type Segment struct {
	Literal  string
	Variable *Variable
}

// Variable binds one or more path segments to a request field.
type Variable struct {
	FieldPath []string
	Pattern   Pattern
}

// Error describes a template that does not follow the grammar.
type Error struct {
	Template string
	Reason   string
}

func (e *Error) Error() string {
	return fmt.Sprintf("invalid path template '%s': %s", e.Template, e.Reason)
}

// Parse parses a path template.
func Parse(s string) (*Template, error) {
	if !strings.HasPrefix(s, "/") {
		return nil, &Error{Template: s, Reason: "must start with '/'"}
	}

	path, verb := splitVerb(s)
	t := &Template{Raw: s, Verb: verb}

	parts := strings.Split(strings.TrimPrefix(path, "/"), "/")
	for i, part := range parts {
		if part == "" {
			return nil, &Error{Template: s, Reason: "empty segment"}
		}

		if !strings.HasPrefix(part, "{") {
			if strings.ContainsAny(part, "{}") {
				return nil, &Error{Template: s, Reason: fmt.Sprintf("segment '%s' mixes literal and variable", part)}
			}

			t.Segments = append(t.Segments, &Segment{Literal: part})
			continue
		}

		v, err := parseVariable(part)
		if err != nil {
			return nil, &Error{Template: s, Reason: err.Error()}
		}
		if v.Pattern == PatternMulti && i != len(parts)-1 {
			return nil, &Error{Template: s, Reason: "'**' is only allowed in the last segment"}
		}

		t.Segments = append(t.Segments, &Segment{Variable: v})
	}

	return t, nil
}

func splitVerb(s string) (string, string) {
	// The verb separator is the last ':' outside of a variable.
	idx := strings.LastIndex(s, ":")
	if idx == -1 || idx < strings.LastIndex(s, "}") || strings.Contains(s[idx:], "/") {
		return s, ""
	}

	return s[:idx], s[idx+1:]
}

func parseVariable(part string) (*Variable, error) {
	if !strings.HasSuffix(part, "}") {
		return nil, fmt.Errorf("unterminated variable '%s'", part)
	}

	var (
		body    = strings.TrimSuffix(strings.TrimPrefix(part, "{"), "}")
		name    = body
		pattern = PatternSegment
	)

	if idx := strings.Index(body, "="); idx != -1 {
		name = body[:idx]
		switch body[idx+1:] {
		case "*":
		case "**":
			pattern = PatternMulti
		default:
			return nil, fmt.Errorf("unsupported variable pattern '%s'", body[idx+1:])
		}
	}

	if name == "" {
		return nil, fmt.Errorf("empty variable name in '%s'", part)
	}

	fieldPath := strings.Split(name, ".")
	for _, f := range fieldPath {
		if f == "" {
			return nil, fmt.Errorf("invalid field path '%s'", name)
		}
	}

	return &Variable{FieldPath: fieldPath, Pattern: pattern}, nil
}

// Variables returns the template variables in path order.
func (t *Template) Variables() []*Variable {
	var vars []*Variable
	for _, s := range t.Segments {
		if s.Variable != nil {
			vars = append(vars, s.Variable)
		}
	}

	return vars
}

// Render rebuilds the template, rendering each variable with fn.
func (t *Template) Render(fn func(v *Variable) string) string {
	var b strings.Builder
	for _, s := range t.Segments {
		b.WriteString("/")
		if s.Variable != nil {
			b.WriteString(fn(s.Variable))
			continue
		}
		b.WriteString(s.Literal)
	}
	if t.Verb != "" {
		b.WriteString(":")
		b.WriteString(t.Verb)
	}

	return b.String()
}

// WildcardKey returns the template with every variable replaced by "*",
// used to detect routes that would shadow each other.
func (t *Template) WildcardKey() string {
	return t.Render(func(*Variable) string { return "*" })
}

// RouterPath returns the template using gorilla/mux variable syntax.
func (t *Template) RouterPath() string {
	return t.Render(func(v *Variable) string {
		if v.Pattern == PatternMulti {
			return "{" + v.RouterName() + ":.+}"
		}

		return "{" + v.RouterName() + "}"
	})
}

// Name returns the dotted field path.
func (v *Variable) Name() string {
	return strings.Join(v.FieldPath, ".")
}

// RouterName returns the variable name usable as a router variable.
func (v *Variable) RouterName() string {
	return strings.ReplaceAll(v.Name(), ".", "_")
}

// Root returns the top-level request field the variable binds.
func (v *Variable) Root() string {
	return v.FieldPath[0]
}

// Nested tells if the variable addresses a field of a sub-message.
func (v *Variable) Nested() bool {
	return len(v.FieldPath) > 1
}
