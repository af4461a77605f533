package openapi

import (
	"slices"
	"strings"

	"github.com/iancoleman/strcase"

	"github.com/mikros-dev/protoc-gen-mikros-rest/internal/discovery"
)

func (p *patcher) pathFields() error {
	for _, op := range p.doc.operations() {
		p.stripPathFields(op)

		if err := p.enrichPathParams(op); err != nil {
			return err
		}
	}

	return nil
}

// stripPathFields removes the fields bound by the path from the request
// body schema. The schema is copied inline so that other operations
// referencing it keep every field.
func (p *patcher) stripPathFields(op *operation) {
	var fields []string
	for _, param := range op.parameters() {
		if str(param, "in") == "path" {
			root, _, _ := strings.Cut(str(param, "name"), ".")
			fields = append(fields, strcase.ToLowerCamel(root))
		}
	}
	if len(fields) == 0 {
		return
	}

	media := jsonContent(child(op.op, "requestBody"))
	_, target := p.doc.schemaFromRef(str(child(media, "schema"), "$ref"))
	if target == nil {
		return
	}

	props := child(target, "properties")
	if !slices.ContainsFunc(fields, func(f string) bool { _, ok := props[f]; return ok }) {
		return
	}

	schema := copyMap(target)
	props = child(schema, "properties")
	for _, f := range fields {
		delete(props, f)
	}

	if required := stringList(schema["required"]); len(required) > 0 {
		required = slices.DeleteFunc(required, func(r string) bool { return slices.Contains(fields, r) })
		if len(required) == 0 {
			delete(schema, "required")
		} else {
			schema["required"] = anyList(required)
		}
	}

	media["schema"] = schema
}

func (p *patcher) enrichPathParams(op *operation) error {
	var constraint *discovery.PathParamConstraint
	for i := range p.md.PathParamConstraints {
		if samePath(p.md.PathParamConstraints[i].Path, op.path) {
			constraint = &p.md.PathParamConstraints[i]
			break
		}
	}

	for _, param := range op.parameters() {
		if str(param, "in") != "path" {
			continue
		}

		if constraint != nil {
			if err := applyPathConstraint(param, constraint); err != nil {
				return err
			}
		}

		stripUnspecified(child(param, "schema"))
	}

	return nil
}

func applyPathConstraint(param map[string]any, constraint *discovery.PathParamConstraint) error {
	name := normalizeParam(str(param, "name"))
	for _, c := range constraint.Params {
		if normalizeParam(c.Name) != name {
			continue
		}

		if c.IsUUID {
			schema, err := uuidSchema("")
			if err != nil {
				return err
			}

			param["schema"] = schema
			if str(param, "description") == "" {
				param["description"] = "Resource UUID"
			}
			return nil
		}

		schema := ensure(param, "schema")
		schema["type"] = "string"
		if c.MinLength != nil {
			schema["minLength"] = *c.MinLength
		}
		if c.MaxLength != nil {
			schema["maxLength"] = *c.MaxLength
		}
		return nil
	}

	return nil
}
