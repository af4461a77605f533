package openapi

import (
	"strings"

	"github.com/mikros-dev/protoc-gen-mikros-rest/pkg/openapi/spec"
)

const (
	eventStreamContentType = "text/event-stream"
	streamingPrefix        = "**Streaming (SSE):** "
	lastEventIDHeader      = "Last-Event-ID"
)

func (p *patcher) streaming() error {
	if !p.cfg.Transforms.AnnotateSSE {
		return nil
	}

	lastEventID, err := spec.Node(&spec.Parameter{
		Name:     lastEventIDHeader,
		Location: "header",
		Description: "Reconnection cursor from the last received SSE event. " +
			"When set, the server resumes the stream from this point.",
		Schema: &spec.Schema{Type: "string"},
	})
	if err != nil {
		return err
	}

	for _, op := range p.doc.operations() {
		if !p.isStreaming(op) {
			continue
		}

		op.op["x-streaming"] = "sse"
		op.op["x-content-type"] = eventStreamContentType

		if content := child(op.response("200"), "content"); content != nil {
			if media, ok := content["application/json"]; ok {
				delete(content, "application/json")
				content[eventStreamContentType] = media
			}
		}

		description := str(op.op, "description")
		if !strings.HasPrefix(description, streamingPrefix) {
			if description == "" {
				description = "Server-sent events stream."
			}
			op.op["description"] = streamingPrefix + description
		}

		if !hasParameter(op, lastEventIDHeader, "header") {
			op.op["parameters"] = append(anySlice(op.op["parameters"]), copyMap(lastEventID))
		}
	}

	return nil
}

func (p *patcher) isStreaming(op *operation) bool {
	if op.op["x-streaming"] != nil {
		return true
	}

	for _, s := range p.md.StreamingOps {
		if s.Verb == op.verb && samePath(s.Path, op.path) {
			return true
		}
	}

	// Generators without streaming support still name the message after
	// the stream.
	ref := str(child(jsonContent(op.response("200")), "schema"), "$ref")
	return strings.Contains(strings.ToLower(ref), "stream")
}

func hasParameter(op *operation, name, in string) bool {
	for _, param := range op.parameters() {
		if str(param, "name") == name && str(param, "in") == in {
			return true
		}
	}

	return false
}

func anySlice(v any) []any {
	list, _ := v.([]any)
	return list
}
