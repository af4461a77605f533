package openapi

import (
	"errors"
	"reflect"
	"testing"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikros-dev/protoc-gen-mikros-rest/internal/discovery"
)

func TestPatch(t *testing.T) {
	doc := parseDoc(t, tasksDocument)
	require.NoError(t, Patch(doc, tasksMetadata(), tasksConfig()))

	assert.Equal(t, "3.1.0", doc["openapi"])
	assert.Equal(t, "Task management", mapsOf(doc["tags"])[0]["description"])
	assert.Equal(t, []any{map[string]any{"bearerAuth": []any{}}}, doc["security"])

	paths := at(t, doc, "paths")
	assert.NotContains(t, paths, "/v1/tasks/{task_id.value}")

	t.Run("get", func(t *testing.T) {
		op := at(t, paths, "/v1/tasks/{task_id}", "get")
		assert.Equal(t, true, op["deprecated"])
		assert.Equal(t, "Returns a single task", op["summary"])
		require.Len(t, op["parameters"], 1)

		param := paramNamed(t, op, "task_id")
		assert.Equal(t, "Resource UUID", param["description"])
		assert.Equal(t, "uuid", at(t, param, "schema")["format"])

		def := at(t, op, "responses", "default")
		assert.Equal(t, "Default error response", def["description"])
		assert.Equal(t, DefaultErrorSchemaRef, at(t, def, "content", "application/json", "schema")["$ref"])
	})

	t.Run("delete", func(t *testing.T) {
		op := at(t, paths, "/v1/tasks/{task_id}", "delete")
		responses := at(t, op, "responses")

		assert.NotContains(t, responses, "200")
		assert.Equal(t, "No Content", at(t, responses, "204")["description"])
		assert.Equal(t, "Not Implemented", at(t, responses, "501")["description"])
		assert.Equal(t, true, op["x-not-implemented"])
		assert.Equal(t, notImplementedPrefix, op["description"])
	})

	t.Run("list", func(t *testing.T) {
		op := at(t, paths, "/v1/tasks", "get")
		assert.Equal(t, []any{}, op["security"])

		state := at(t, paramNamed(t, op, "state"), "schema")
		assert.Equal(t, []any{"open", "done"}, state["enum"])
		assert.NotContains(t, state, "format")

		owner := paramNamed(t, op, "ownerId")
		assert.Equal(t, "UUID of the owner", owner["description"])
		assert.Equal(t, UUIDPattern, at(t, owner, "schema")["pattern"])
	})

	t.Run("create", func(t *testing.T) {
		op := at(t, paths, "/v1/tasks", "post")
		assert.Equal(t, "Creates a task.\nThe task starts open.", op["description"])
		assert.Equal(t, "Creates a task", op["summary"])

		responses := at(t, op, "responses")
		assert.NotContains(t, responses, "200")
		assert.Equal(t, "Created", at(t, responses, "201")["description"])

		body := at(t, op, "requestBody")
		assert.Equal(t, "Task creation payload.", body["description"])

		schema := at(t, body, "content", "application/json", "schema")
		assert.NotContains(t, schema, "$ref")
		assert.NotContains(t, schema, "description")
		assert.Equal(t, []any{"title"}, schema["required"])

		props := at(t, schema, "properties")
		title := at(t, props, "title")
		assert.EqualValues(t, 1, title["minLength"])
		assert.EqualValues(t, 200, title["maxLength"])
		assert.Equal(t, "Example Title", title["example"])

		password := at(t, props, "password")
		assert.Equal(t, true, password["writeOnly"])
		assert.Equal(t, "P@ssw0rd123!", password["example"])

		hasPassword := at(t, props, "hasPassword")
		assert.NotContains(t, hasPassword, "writeOnly")
		assert.Equal(t, true, hasPassword["example"])

		owner := at(t, props, "owner")
		assert.Equal(t, "uuid", owner["format"])
		assert.Equal(t, "Task owner.", owner["description"])
		assert.Equal(t, UUIDExample, owner["example"])

		pageSize := at(t, props, "pageSize")
		assert.Equal(t, "integer", pageSize["type"])
		assert.NotContains(t, pageSize, "format")
		assert.EqualValues(t, 1, pageSize["minimum"])
		assert.EqualValues(t, 100, pageSize["maximum"])
		assert.EqualValues(t, 20, pageSize["example"])
	})

	t.Run("watch", func(t *testing.T) {
		op := at(t, paths, "/v1/tasks:watch", "get")
		assert.Equal(t, "sse", op["x-streaming"])
		assert.Equal(t, "text/event-stream", op["x-content-type"])
		assert.Equal(t, streamingPrefix+"Server-sent events stream.", op["description"])
		assert.Equal(t, "Server-sent events stream", op["summary"])
		at(t, op, "responses", "200", "content", "text/event-stream")

		param := paramNamed(t, op, "Last-Event-ID")
		assert.Equal(t, "header", param["in"])
		assert.Equal(t, false, param["required"])
	})

	t.Run("components", func(t *testing.T) {
		schemas := at(t, doc, "components", "schemas")
		assert.ElementsMatch(t, []string{"ErrorResponse", "ListTasksResponse", "Task"}, sortedKeys(schemas))

		props := at(t, schemas, "Task", "properties")
		assert.Equal(t, "uuid", at(t, props, "id")["format"])
		assert.Equal(t, []any{"open", "done"}, at(t, props, "state")["enum"])
		assert.Equal(t, []any{"string", "null"}, at(t, props, "deadline")["type"])
		assert.NotContains(t, at(t, props, "deadline"), "nullable")
		assert.Equal(t, true, at(t, props, "createdAt")["readOnly"])

		timeout := at(t, props, "timeout")
		assert.Equal(t, "string", timeout["type"])
		assert.Equal(t, "300s", timeout["example"])
		assert.NotContains(t, timeout, "$ref")

		bearer := at(t, doc, "components", "securitySchemes", "bearerAuth")
		assert.Equal(t, "http", bearer["type"])
		assert.Equal(t, "bearer", bearer["scheme"])
		assert.Equal(t, "JWT", bearer["bearerFormat"])
	})
}

func TestPatchIsIdempotent(t *testing.T) {
	assertIdempotent(t, tasksConfig())
}

func TestPatchIsIdempotentWithToggles(t *testing.T) {
	t.Run("all disabled", func(t *testing.T) {
		cfg := tasksConfig()
		cfg.Transforms = Transforms{}
		assertIdempotent(t, cfg)
	})

	toggles := reflect.TypeOf(Transforms{})
	for i := 0; i < toggles.NumField(); i++ {
		name := toggles.Field(i).Name
		t.Run(name+" disabled", func(t *testing.T) {
			cfg := tasksConfig()
			reflect.ValueOf(&cfg.Transforms).Elem().Field(i).SetBool(false)
			assertIdempotent(t, cfg)
		})
	}
}

func assertIdempotent(t *testing.T, cfg *Config) {
	t.Helper()
	md := tasksMetadata()

	once, err := PatchBytes([]byte(tasksDocument), md, cfg)
	require.NoError(t, err)

	twice, err := PatchBytes(once, md, cfg)
	require.NoError(t, err)

	if string(once) != string(twice) {
		diff, _ := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
			A:        difflib.SplitLines(string(once)),
			B:        difflib.SplitLines(string(twice)),
			FromFile: "once",
			ToFile:   "twice",
			Context:  3,
		})
		t.Fatalf("patching twice changed the document:\n%s", diff)
	}
}

func TestPatchWithoutTransforms(t *testing.T) {
	doc := parseDoc(t, tasksDocument)
	cfg := &Config{}
	require.NoError(t, Patch(doc, tasksMetadata(), cfg))

	assert.Equal(t, "3.0.3", doc["openapi"])
	assert.NotContains(t, doc, "security")
	assert.NotContains(t, at(t, doc, "components"), "securitySchemes")

	watch := at(t, doc, "paths", "/v1/tasks:watch", "get")
	assert.NotContains(t, watch, "x-streaming")

	create := at(t, doc, "paths", "/v1/tasks", "post")
	assert.Contains(t, at(t, create, "responses"), "200")
	assert.Equal(t, DefaultErrorSchemaRef,
		at(t, doc, "paths", "/v1/tasks/{task_id}", "get", "responses", "default", "content", "application/json", "schema")["$ref"])

	// Component schemas keep their references and get examples instead.
	body := at(t, create, "requestBody", "content", "application/json", "schema")
	assert.Equal(t, "#/components/schemas/CreateTaskRequest", body["$ref"])
	assert.Equal(t, "Example Title", at(t, doc, "components", "schemas", "CreateTaskRequest", "properties", "title")["example"])
	assert.Contains(t, at(t, doc, "components", "schemas"), "UUID")
}

func TestPatchErrors(t *testing.T) {
	tests := []struct {
		name  string
		doc   string
		md    *discovery.Metadata
		cfg   func(cfg *Config)
		phase string
		err   error
	}{
		{
			name:  "unknown method",
			doc:   tasksDocument,
			md:    tasksMetadata(),
			cfg:   func(cfg *Config) { cfg.PublicMethods = []string{"Nope"} },
			phase: "resolve",
			err:   discovery.ErrMethodNotFound,
		},
		{
			name:  "unsupported version",
			doc:   "openapi: '2.0'\n",
			cfg:   func(*Config) {},
			phase: "structural",
			err:   ErrUnsupportedVersion,
		},
		{
			name:  "error schema outside components",
			doc:   tasksDocument,
			md:    tasksMetadata(),
			cfg:   func(cfg *Config) { cfg.ErrorSchemaRef = "errors.yaml#/Error" },
			phase: "responses",
			err:   ErrInvalidErrorSchemaRef,
		},
		{
			name: "missing request body schema",
			doc: `openapi: 3.0.3
paths:
  /v1/things:
    post:
      operationId: Things_Create
      requestBody:
        content:
          application/json:
            schema:
              $ref: '#/components/schemas/Missing'
      responses:
        '200':
          description: OK
`,
			cfg:   func(*Config) {},
			phase: "inlining",
			err:   ErrMissingSchema,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := NewConfig()
			tc.cfg(cfg)

			err := Patch(parseDoc(t, tc.doc), tc.md, cfg)
			require.Error(t, err)

			var phaseErr *PhaseError
			require.True(t, errors.As(err, &phaseErr))
			assert.Equal(t, tc.phase, phaseErr.Phase)
			assert.ErrorIs(t, err, tc.err)
		})
	}
}

func TestPatchAmbiguousMethod(t *testing.T) {
	md := &discovery.Metadata{
		OperationIDs: []discovery.OperationID{
			{Service: "Users", Method: "Get", OperationID: "Users_Get"},
			{Service: "Groups", Method: "Get", OperationID: "Groups_Get"},
		},
	}
	cfg := NewConfig()
	cfg.DeprecatedMethods = []string{"Get"}

	err := Patch(parseDoc(t, "openapi: 3.0.3\n"), md, cfg)

	var ambiguous *discovery.AmbiguousMethodError
	require.True(t, errors.As(err, &ambiguous))
	assert.Equal(t, []string{"Users.Get", "Groups.Get"}, ambiguous.Candidates)
}

func TestPatchBytesRejectsInvalidDocuments(t *testing.T) {
	_, err := PatchBytes([]byte("- a\n- b\n"), nil, nil)
	assert.ErrorIs(t, err, ErrNotMapping)
}
