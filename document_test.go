package dispatch_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/bjaus/dispatch"
)

func TestDocumentWriteYAML(t *testing.T) {
	t.Parallel()

	reg, _ := newDocumentedRegistry(t)
	doc := dispatch.BuildDocument(reg, testInfo)

	var buf bytes.Buffer
	require.NoError(t, doc.WriteYAML(&buf))

	var decoded dispatch.Document
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))

	assert.Equal(t, "2.0", decoded.Swagger)
	assert.Equal(t, doc.Info, decoded.Info)
	assert.Equal(t, doc.Parameters, decoded.Parameters)
	require.Contains(t, decoded.Paths, "/users/{id}")
	assert.Equal(t, "/users/{id}", decoded.Paths["/users/{id}"]["get"].OperationID)
	assert.Contains(t, buf.String(), "#/parameters/action_users1_role")
}

func TestDocumentOpenAPI3(t *testing.T) {
	t.Parallel()

	reg, _ := newDocumentedRegistry(t)
	doc := dispatch.BuildDocument(reg, testInfo)

	v3, err := doc.OpenAPI3()
	require.NoError(t, err)

	assert.Equal(t, "Users", v3.Info.Title)
	assert.Equal(t, "1", v3.Info.Version)

	item := v3.Paths.Find("/users/{id}")
	require.NotNil(t, item)
	assert.NotNil(t, item.Get)

	users := v3.Paths.Find("/users")
	require.NotNil(t, users)
	require.NotNil(t, users.Post)
	assert.NotNil(t, users.Post.RequestBody, "the body parameter becomes a request body")
	assert.Contains(t, v3.Components.Parameters, "action_users1_role")
}
