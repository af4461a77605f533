package openapi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikros-dev/protoc-gen-mikros-rest/internal/discovery"
)

const identifiersDocument = `openapi: 3.1.0
paths:
  /v1/users/{user_id.value}:
    get:
      operationId: Users_Get
      parameters:
        - name: user_id.value
          in: path
          required: true
          schema:
            type: string
        - name: groupId.value
          in: query
          schema:
            type: string
      responses:
        '200':
          description: OK
          content:
            application/json:
              schema:
                $ref: '#/components/schemas/User'
components:
  schemas:
    User:
      type: object
      properties:
        id:
          $ref: '#/components/schemas/UUID'
        managerId:
          description: Manager of the user.
          allOf:
            - $ref: '#/components/schemas/UUID'
        peers:
          type: array
          items:
            $ref: '#/components/schemas/UUID'
    UUID:
      type: object
      properties:
        value:
          type: string
`

func TestIdentifiers(t *testing.T) {
	doc := parseDoc(t, identifiersDocument)
	md := &discovery.Metadata{UUIDSchema: "common.v1.UUID"}

	p := newTestPatcher(t, doc, md, NewConfig())
	require.NoError(t, p.identifiers())

	paths := at(t, doc, "paths")
	assert.NotContains(t, paths, "/v1/users/{user_id.value}")

	op := at(t, paths, "/v1/users/{user_id}", "get")
	paramNamed(t, op, "user_id")

	group := paramNamed(t, op, "groupId")
	assert.Equal(t, "UUID of the group", group["description"])
	assert.Equal(t, "uuid", at(t, group, "schema")["format"])

	schemas := at(t, doc, "components", "schemas")
	assert.NotContains(t, schemas, "UUID")

	props := at(t, schemas, "User", "properties")
	assert.Equal(t, map[string]any{
		"type":    "string",
		"format":  "uuid",
		"pattern": UUIDPattern,
		"example": UUIDExample,
	}, props["id"])
	assert.Equal(t, "Manager of the user.", at(t, props, "managerId")["description"])
	assert.NotContains(t, at(t, props, "managerId"), "allOf")
	assert.Equal(t, "uuid", at(t, props, "peers", "items")["format"])

	before := marshal(t, doc)
	require.NoError(t, p.identifiers())
	assert.Equal(t, before, marshal(t, doc))
}

func TestIdentifiersKeepsWrapperWhenDisabled(t *testing.T) {
	doc := parseDoc(t, identifiersDocument)
	cfg := NewConfig()
	cfg.Transforms.FlattenUUIDRefs = false

	p := newTestPatcher(t, doc, &discovery.Metadata{UUIDSchema: "common.v1.UUID"}, cfg)
	require.NoError(t, p.identifiers())

	op := at(t, doc, "paths", "/v1/users/{user_id}", "get")
	paramNamed(t, op, "groupId.value")
	assert.Contains(t, at(t, doc, "components", "schemas"), "UUID")
}

func TestUUIDSubject(t *testing.T) {
	assert.Equal(t, "owner", uuidSubject("ownerId"))
	assert.Equal(t, "owner", uuidSubject("owner_id"))
	assert.Equal(t, "Id", uuidSubject("Id"))
	assert.Equal(t, "parent", uuidSubject("parent"))
}
