package pathtemplate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		template string
		vars     []string
		verb     string
		router   string
		wildcard string
	}{
		{
			name:     "literal only",
			template: "/v1/health",
			router:   "/v1/health",
			wildcard: "/v1/health",
		},
		{
			name:     "single variable",
			template: "/v1/users/{name}",
			vars:     []string{"name"},
			router:   "/v1/users/{name}",
			wildcard: "/v1/users/*",
		},
		{
			name:     "nested variable",
			template: "/v1/users/{user_id.value}/posts/{post_id=*}",
			vars:     []string{"user_id.value", "post_id"},
			router:   "/v1/users/{user_id_value}/posts/{post_id}",
			wildcard: "/v1/users/*/posts/*",
		},
		{
			name:     "multi segment variable",
			template: "/v1/files/{path=**}",
			vars:     []string{"path"},
			router:   "/v1/files/{path:.+}",
			wildcard: "/v1/files/*",
		},
		{
			name:     "custom verb",
			template: "/v1/jobs/{id}:cancel",
			vars:     []string{"id"},
			verb:     "cancel",
			router:   "/v1/jobs/{id}:cancel",
			wildcard: "/v1/jobs/*:cancel",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tpl, err := Parse(tt.template)
			require.NoError(t, err)

			var names []string
			for _, v := range tpl.Variables() {
				names = append(names, v.Name())
			}

			assert.Equal(t, tt.vars, names)
			assert.Equal(t, tt.verb, tpl.Verb)
			assert.Equal(t, tt.router, tpl.RouterPath())
			assert.Equal(t, tt.wildcard, tpl.WildcardKey())
		})
	}
}

func TestParseErrors(t *testing.T) {
	for _, s := range []string{
		"v1/users",
		"/v1//users",
		"/v1/users/{name",
		"/v1/users/{}",
		"/v1/users/{name=shelves/*}",
		"/v1/{path=**}/tail",
		"/v1/users/x{name}",
		"/v1/users/{a..b}",
	} {
		t.Run(s, func(t *testing.T) {
			_, err := Parse(s)
			require.Error(t, err)

			var tplErr *Error
			assert.True(t, errors.As(err, &tplErr))
		})
	}
}

func TestVariable(t *testing.T) {
	tpl, err := Parse("/v1/users/{user_id.value}")
	require.NoError(t, err)

	v := tpl.Variables()[0]
	assert.True(t, v.Nested())
	assert.Equal(t, "user_id", v.Root())
	assert.Equal(t, "user_id_value", v.RouterName())
}
