package openapi

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mikros-dev/protoc-gen-mikros-rest/internal/discovery"
)

const tasksDocument = `openapi: 3.0.3
info:
  title: Tasks API
  version: 0.0.1
tags:
  - name: TaskService
    description: |-
      Task management
      ===============
paths:
  /v1/tasks/{task_id.value}:
    get:
      tags: [TaskService]
      operationId: TaskService_GetTask
      description: Returns a single task.
      parameters:
        - name: task_id.value
          in: path
          required: true
          schema:
            type: string
        - name: taskId.value
          in: query
          schema:
            type: string
      responses:
        '200':
          description: OK
          content:
            application/json:
              schema:
                $ref: '#/components/schemas/Task'
        default:
          description: ''
          content:
            application/json:
              schema:
                $ref: '#/components/schemas/Status'
    delete:
      operationId: TaskService_DeleteTask
      parameters:
        - name: task_id.value
          in: path
          required: true
          schema:
            type: string
      responses:
        '200':
          description: OK
          content: {}
  /v1/tasks:
    get:
      operationId: TaskService_ListTasks
      parameters:
        - name: state
          in: query
          schema:
            type: string
            format: enum
            enum: [STATE_UNSPECIFIED, STATE_OPEN, STATE_DONE]
        - name: ownerId.value
          in: query
          schema:
            type: string
      responses:
        '200':
          description: OK
          content:
            application/json:
              schema:
                $ref: '#/components/schemas/ListTasksResponse'
    post:
      operationId: TaskService_CreateTask
      description: "Creates a task.\r\nThe task starts open."
      requestBody:
        required: true
        content:
          application/json:
            schema:
              $ref: '#/components/schemas/CreateTaskRequest'
      responses:
        '200':
          description: OK
          content:
            application/json:
              schema:
                $ref: '#/components/schemas/Task'
  '/v1/tasks:watch':
    get:
      operationId: TaskService_WatchTasks
      responses:
        '200':
          description: OK
          content:
            application/json:
              schema:
                $ref: '#/components/schemas/Task'
components:
  schemas:
    Task:
      type: object
      properties:
        id:
          $ref: '#/components/schemas/UUID'
        title:
          type: string
        state:
          type: string
          format: enum
          enum: [STATE_UNSPECIFIED, STATE_OPEN, STATE_DONE]
        deadline:
          type: string
          format: date-time
          nullable: true
        createdAt:
          type: string
          format: date-time
        timeout:
          $ref: '#/components/schemas/Duration'
    CreateTaskRequest:
      type: object
      description: Task creation payload.
      properties:
        title:
          type: string
        password:
          type: string
        hasPassword:
          type: boolean
        owner:
          description: Task owner.
          allOf:
            - $ref: '#/components/schemas/UUID'
        pageSize:
          type: integer
          format: int32
    ListTasksResponse:
      type: object
      properties:
        tasks:
          type: array
          items:
            $ref: '#/components/schemas/Task'
    UUID:
      type: object
      properties:
        value:
          type: string
    Duration:
      type: object
      properties:
        seconds:
          type: string
    Status:
      type: object
      properties:
        code: {type: integer}
    Unused:
      type: object
      properties:
        name: {type: string}
    Empty:
      type: object
      properties: {}
`

func ptr[T any](v T) *T {
	return &v
}

func tasksMetadata() *discovery.Metadata {
	var operationIDs []discovery.OperationID
	for _, m := range []string{"GetTask", "DeleteTask", "ListTasks", "CreateTask", "WatchTasks"} {
		operationIDs = append(operationIDs, discovery.OperationID{
			Service:     "TaskService",
			Method:      m,
			OperationID: "TaskService_" + m,
		})
	}

	return &discovery.Metadata{
		OperationIDs: operationIDs,
		StreamingOps: []discovery.StreamingOp{
			{Verb: "get", Path: "/v1/tasks:watch"},
		},
		FieldConstraints: map[string][]*discovery.FieldConstraint{
			"tasks.v1.CreateTaskRequest": {
				{Field: "title", Required: true, MinLength: ptr(uint64(1)), MaxLength: ptr(uint64(200))},
				{Field: "pageSize", Numeric: true, SignedMin: ptr(int64(1)), SignedMax: ptr(int64(100))},
			},
		},
		EnumRewrites: []discovery.EnumRewrite{
			{Schema: "tasks.v1.Task", Field: "state", Values: []string{"unspecified", "open", "done"}},
		},
		EnumValueMap: map[string]string{
			"STATE_UNSPECIFIED": "unspecified",
			"STATE_OPEN":        "open",
			"STATE_DONE":        "done",
		},
		UUIDSchema: "common.v1.UUID",
		PathParamConstraints: []discovery.PathParamConstraint{
			{Path: "/v1/tasks/{taskId.value}", Params: []discovery.PathParam{{Name: "taskId.value", IsUUID: true}}},
		},
	}
}

func tasksConfig() *Config {
	cfg := NewConfig()
	cfg.PublicMethods = []string{"ListTasks"}
	cfg.UnimplementedMethods = []string{"TaskService.DeleteTask"}
	cfg.DeprecatedMethods = []string{"GetTask"}

	return cfg
}

func parseDoc(t *testing.T, src string) Document {
	t.Helper()

	doc, err := Parse([]byte(src))
	require.NoError(t, err)
	return doc
}

func newTestPatcher(t *testing.T, doc Document, md *discovery.Metadata, cfg *Config) *patcher {
	t.Helper()

	p, err := newPatcher(doc, md, cfg)
	require.NoError(t, err)
	return p
}

// at walks nested mappings and fails the test when a key is missing.
func at(t *testing.T, m map[string]any, keys ...string) map[string]any {
	t.Helper()

	for _, k := range keys {
		next, ok := m[k].(map[string]any)
		require.Truef(t, ok, "missing mapping at key '%s'", k)
		m = next
	}

	return m
}

func paramNamed(t *testing.T, op map[string]any, name string) map[string]any {
	t.Helper()

	for _, param := range mapsOf(op["parameters"]) {
		if param["name"] == name {
			return param
		}
	}

	require.Failf(t, "parameter not found", "'%s'", name)
	return nil
}

func marshal(t *testing.T, doc Document) string {
	t.Helper()

	b, err := doc.Marshal()
	require.NoError(t, err)
	return string(b)
}
