package openapi

import (
	"github.com/mikros-dev/protoc-gen-mikros-rest/pkg/openapi/spec"
)

const bearerSchemeName = "bearerAuth"

func (p *patcher) security() error {
	if !p.cfg.Transforms.AddSecurity {
		return nil
	}

	schemes := ensure(ensure(p.doc, "components"), "securitySchemes")
	if _, exists := schemes[bearerSchemeName]; !exists {
		scheme, err := spec.Node(&spec.SecurityScheme{
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "JWT",
			Description:  p.cfg.bearerDescription(),
		})
		if err != nil {
			return err
		}
		schemes[bearerSchemeName] = scheme
	}

	requirements := anySlice(p.doc["security"])
	if !hasRequirement(requirements, bearerSchemeName) {
		p.doc["security"] = append(requirements, map[string]any{bearerSchemeName: []any{}})
	}

	for _, op := range p.doc.operations() {
		if p.public[op.id()] {
			op.op["security"] = []any{}
		}
	}

	return nil
}

func hasRequirement(requirements []any, name string) bool {
	for _, r := range mapsOf(requirements) {
		if _, ok := r[name]; ok {
			return true
		}
	}

	return false
}
