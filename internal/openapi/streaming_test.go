package openapi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikros-dev/protoc-gen-mikros-rest/internal/discovery"
)

const eventsDocument = `openapi: 3.0.3
paths:
  /v1/events:
    get:
      operationId: Events_Subscribe
      description: Live events.
      parameters:
        - name: Last-Event-ID
          in: header
          schema:
            type: string
      responses:
        '200':
          description: OK
          content:
            application/json:
              schema:
                $ref: '#/components/schemas/EventStreamResponse'
  /v1/events/{id}:
    get:
      operationId: Events_Get
      responses:
        '200':
          description: OK
          content:
            application/json:
              schema:
                $ref: '#/components/schemas/Event'
`

func TestStreamingDetectsStreamResponses(t *testing.T) {
	doc := parseDoc(t, eventsDocument)
	p := newTestPatcher(t, doc, nil, NewConfig())
	require.NoError(t, p.streaming())

	op := at(t, doc, "paths", "/v1/events", "get")
	assert.Equal(t, "sse", op["x-streaming"])
	assert.Equal(t, streamingPrefix+"Live events.", op["description"])
	assert.Len(t, op["parameters"], 1)

	content := at(t, op, "responses", "200", "content")
	assert.NotContains(t, content, "application/json")
	assert.Equal(t, "#/components/schemas/EventStreamResponse", at(t, content, "text/event-stream", "schema")["$ref"])

	other := at(t, doc, "paths", "/v1/events/{id}", "get")
	assert.NotContains(t, other, "x-streaming")

	before := marshal(t, doc)
	require.NoError(t, p.streaming())
	assert.Equal(t, before, marshal(t, doc))
}

func TestStreamingUsesDiscoveredOperations(t *testing.T) {
	doc := parseDoc(t, eventsDocument)
	md := &discovery.Metadata{
		StreamingOps: []discovery.StreamingOp{{Verb: "get", Path: "/v1/events/{id}"}},
	}

	p := newTestPatcher(t, doc, md, NewConfig())
	require.NoError(t, p.streaming())

	op := at(t, doc, "paths", "/v1/events/{id}", "get")
	assert.Equal(t, "text/event-stream", op["x-content-type"])
	assert.Equal(t, streamingPrefix+"Server-sent events stream.", op["description"])
	assert.Equal(t, "header", paramNamed(t, op, "Last-Event-ID")["in"])
}

func TestStreamingDisabled(t *testing.T) {
	doc := parseDoc(t, eventsDocument)
	p := newTestPatcher(t, doc, nil, &Config{})
	require.NoError(t, p.streaming())

	assert.NotContains(t, at(t, doc, "paths", "/v1/events", "get"), "x-streaming")
}
