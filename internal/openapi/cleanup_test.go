package openapi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanup(t *testing.T) {
	doc := parseDoc(t, `openapi: 3.1.0
tags:
  - name: Accounts
    description: "\n========\nAccount management.\n========"
paths:
  /v1/accounts:
    get:
      operationId: Accounts_List
      summary: Keep me
      description: Lists accounts.
      responses:
        '200':
          description: OK
    post:
      operationId: Accounts_Ping
      description: |-
        Pings the account service.
        Used by health checks.
      requestBody:
        content:
          application/json:
            schema:
              $ref: '#/components/schemas/PingRequest'
      responses:
        '200':
          description: OK
          content:
            application/json:
              schema:
                $ref: '#/components/schemas/Account'
components:
  schemas:
    PingRequest:
      type: object
      properties: {}
    Account:
      type: object
      properties:
        kind:
          type: string
          format: enum
          enum: [personal, business]
    Orphan:
      type: object
`)
	p := newTestPatcher(t, doc, nil, NewConfig())
	require.NoError(t, p.cleanup())

	assert.Equal(t, "Account management.", mapsOf(doc["tags"])[0]["description"])
	assert.Equal(t, "Keep me", at(t, doc, "paths", "/v1/accounts", "get")["summary"])

	ping := at(t, doc, "paths", "/v1/accounts", "post")
	assert.Equal(t, "Pings the account service", ping["summary"])
	assert.NotContains(t, ping, "requestBody")

	schemas := at(t, doc, "components", "schemas")
	assert.ElementsMatch(t, []string{"Account"}, sortedKeys(schemas))
	assert.NotContains(t, at(t, schemas, "Account", "properties", "kind"), "format")

	before := marshal(t, doc)
	require.NoError(t, p.cleanup())
	assert.Equal(t, before, marshal(t, doc))
}

func TestSummaryFromDescription(t *testing.T) {
	assert.Equal(t, "Watches tasks", summaryFromDescription(streamingPrefix+"Watches tasks."))
	assert.Equal(t, "Deletes a task", summaryFromDescription(notImplementedPrefix+"Deletes a task.\nMore."))
	assert.Equal(t, "", summaryFromDescription(notImplementedPrefix))
}
