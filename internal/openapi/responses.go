package openapi

import (
	"strings"

	"github.com/iancoleman/strcase"

	"github.com/mikros-dev/protoc-gen-mikros-rest/pkg/openapi/spec"
)

var redirectVerbs = map[string]bool{
	"get":    true,
	"post":   true,
	"put":    true,
	"patch":  true,
	"delete": true,
}

func (p *patcher) responses() error {
	if err := p.ensureErrorSchema(); err != nil {
		return err
	}

	for _, op := range p.doc.operations() {
		replaceEmptySuccess(op)
		removeDuplicatedPathParams(op)

		if err := p.plainText(op); err != nil {
			return err
		}
		if err := p.metricsHeaders(op); err != nil {
			return err
		}
		if err := p.readiness(op); err != nil {
			return err
		}
		if err := p.redirect(op); err != nil {
			return err
		}
		if err := p.defaultResponse(op); err != nil {
			return err
		}

		if p.cfg.Transforms.RewriteCreateResponses {
			rewriteCreated(op)
		}
	}

	return nil
}

func (p *patcher) ensureErrorSchema() error {
	name, err := p.cfg.errorSchemaName()
	if err != nil {
		return err
	}

	schemas := ensure(ensure(p.doc, "components"), "schemas")
	if _, ok := schemas[name]; ok {
		return nil
	}

	schema, err := spec.Node(errorEnvelopeSchema())
	if err != nil {
		return err
	}

	schemas[name] = schema
	return nil
}

func errorEnvelopeSchema() *spec.Schema {
	return &spec.Schema{
		Type:               "object",
		Description:        "REST error response envelope.",
		RequiredProperties: []string{"error"},
		Properties: map[string]*spec.Schema{
			"error": {
				Type:               "object",
				RequiredProperties: []string{"code", "message", "status"},
				Properties: map[string]*spec.Schema{
					"code": {
						Type:        "integer",
						Format:      "int32",
						Description: "HTTP status code.",
					},
					"message": {
						Type:        "string",
						Description: "Human-readable error message.",
					},
					"status": {
						Type:        "string",
						Description: "gRPC status code name (e.g., INVALID_ARGUMENT).",
					},
				},
			},
		},
	}
}

// replaceEmptySuccess documents operations without a response body as
// 204 No Content.
func replaceEmptySuccess(op *operation) {
	responses := op.responses()
	ok := child(responses, "200")
	if ok == nil {
		return
	}

	content, hasContent := ok["content"]
	if !hasContent {
		return
	}
	if m, isMap := content.(map[string]any); content != nil && (!isMap || len(m) > 0) {
		return
	}

	delete(responses, "200")
	if _, exists := responses["204"]; !exists {
		responses["204"] = map[string]any{"description": "No Content"}
	}
}

// removeDuplicatedPathParams drops query parameters that repeat a field
// already bound by the path.
func removeDuplicatedPathParams(op *operation) {
	pathNames := make(map[string]bool)
	for _, param := range op.parameters() {
		if str(param, "in") == "path" {
			name := str(param, "name")
			pathNames[name] = true
			pathNames[camelDotted(name)] = true
		}
	}
	if len(pathNames) == 0 {
		return
	}

	var (
		params  = anySlice(op.op["parameters"])
		kept    = make([]any, 0, len(params))
		removed bool
	)
	for _, item := range params {
		param, _ := item.(map[string]any)
		if str(param, "in") == "query" && pathNames[str(param, "name")] {
			removed = true
			continue
		}
		kept = append(kept, item)
	}

	if removed {
		op.op["parameters"] = kept
	}
}

func camelDotted(name string) string {
	parts := strings.Split(name, ".")
	for i, part := range parts {
		parts[i] = strcase.ToLowerCamel(part)
	}

	return strings.Join(parts, ".")
}

func (p *patcher) plainText(op *operation) error {
	for _, endpoint := range p.cfg.PlainTextEndpoints {
		if !samePath(endpoint.Path, op.path) {
			continue
		}

		ok := op.response("200")
		if jsonContent(ok) == nil {
			return nil
		}

		media := &spec.Media{Schema: &spec.Schema{Type: "string"}}
		if endpoint.Example != "" {
			media.Example = endpoint.Example
		}

		node, err := spec.Node(map[string]*spec.Media{"text/plain": media})
		if err != nil {
			return err
		}

		ok["content"] = node
		return nil
	}

	return nil
}

func (p *patcher) metricsHeaders(op *operation) error {
	if p.cfg.MetricsPath == "" || op.verb != "get" || !samePath(p.cfg.MetricsPath, op.path) {
		return nil
	}

	ok := op.response("200")
	if ok == nil {
		return nil
	}

	headers := ensure(ok, "headers")
	for name, header := range map[string]*spec.Header{
		"Content-Type": {
			Description: "Prometheus text exposition media type.",
			Schema: &spec.Schema{
				Type:    "string",
				Default: "text/plain; version=0.0.4; charset=utf-8",
			},
		},
		"Cache-Control": {
			Description: "Caching policy for metrics responses.",
			Schema: &spec.Schema{
				Type:    "string",
				Default: "no-store, no-cache, max-age=0",
			},
		},
	} {
		if _, exists := headers[name]; exists {
			continue
		}

		node, err := spec.Node(header)
		if err != nil {
			return err
		}
		headers[name] = node
	}

	return nil
}

func (p *patcher) readiness(op *operation) error {
	if p.cfg.ReadinessPath == "" || op.verb != "get" || !samePath(p.cfg.ReadinessPath, op.path) {
		return nil
	}

	responses := op.responses()
	if _, exists := responses["503"]; exists {
		return nil
	}

	ref := str(child(jsonContent(op.response("200")), "schema"), "$ref")
	if ref == "" {
		return nil
	}

	node, err := spec.Node(&spec.Response{
		Description: "Service Unavailable",
		Content: map[string]*spec.Media{
			"application/json": {Schema: &spec.Schema{Ref: ref}},
		},
	})
	if err != nil {
		return err
	}

	responses["503"] = node
	return nil
}

func (p *patcher) redirect(op *operation) error {
	if !redirectVerbs[op.verb] || !p.isRedirect(op.path) {
		return nil
	}

	responses := op.responses()
	if responses == nil {
		return nil
	}
	delete(responses, "200")

	if _, exists := responses["302"]; exists {
		return nil
	}

	node, err := spec.Node(&spec.Response{
		Description: "Redirect to frontend success or error page.",
		Headers: map[string]*spec.Header{
			"Location": {
				Description: "Frontend success or error page URL.",
				Required:    true,
				Schema:      &spec.Schema{Type: "string", Format: "uri"},
			},
		},
	})
	if err != nil {
		return err
	}

	responses["302"] = node
	return nil
}

func (p *patcher) isRedirect(path string) bool {
	for _, r := range p.md.RedirectPaths {
		if samePath(r, path) {
			return true
		}
	}

	return false
}

func (p *patcher) defaultResponse(op *operation) error {
	response := op.response("default")
	if response == nil {
		return nil
	}

	if str(response, "description") == "" {
		response["description"] = "Default error response"
	}

	content, err := spec.Node(map[string]*spec.Media{
		"application/json": {Schema: &spec.Schema{Ref: p.cfg.errorSchemaRef()}},
	})
	if err != nil {
		return err
	}

	response["content"] = content
	return nil
}

// rewriteCreated documents POST operations with the 201 status the
// generated handlers answer with.
func rewriteCreated(op *operation) {
	if op.verb != "post" || op.op["x-streaming"] != nil {
		return
	}

	responses := op.responses()
	ok := child(responses, "200")
	if ok == nil {
		return
	}
	if _, exists := responses["201"]; exists {
		return
	}

	delete(responses, "200")
	ok["description"] = "Created"
	responses["201"] = ok
}
