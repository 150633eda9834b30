package oas

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMethodDefaults(t *testing.T) {
	m, err := newMethod("/person/{id}", "get")
	require.NoError(t, err)
	spec := m.Spec()
	assert.Equal(t, []string{"person"}, spec.Tags)
	assert.Equal(t, "Get Person", spec.Summary)
	assert.Empty(t, spec.Description)
	require.Len(t, spec.Responses, 2)
	assert.Equal(t, "Success", spec.Responses[200].Description)
	assert.Equal(t, "Error", spec.Responses[400].Description)
	assert.False(t, m.HasParams())
	assert.False(t, m.Commented())
}

func TestNewMethodRootPath(t *testing.T) {
	m, err := newMethod("/", "post")
	require.NoError(t, err)
	assert.Nil(t, m.Spec().Tags)
	assert.Equal(t, "Post", m.Spec().Summary)
}

func TestNewMethodMalformed(t *testing.T) {
	_, err := newMethod("person", "get")
	assert.True(t, errors.Is(err, ErrMalformedPath))
}

func TestMethodResponses(t *testing.T) {
	m, err := newMethod("/person", "post")
	require.NoError(t, err)

	m.OnSuccess(map[string]any{"description": "Created", "schema": "Person"}, 201)
	assert.Equal(t, 201, m.SuccessStatus())
	assert.Equal(t, 400, m.ErrorStatus())
	require.Len(t, m.Spec().Responses, 2)
	assert.Equal(t, "#/definitions/Person", m.Spec().Responses[201].Schema.Ref)
	assert.NotContains(t, m.Spec().Responses, 200)

	m.OnError(Responses{
		422: {Description: "Invalid"},
		409: {Description: "Conflict"},
	})
	assert.Equal(t, 409, m.ErrorStatus())
	assert.Len(t, m.Spec().Responses, 3)
	assert.NotContains(t, m.Spec().Responses, 400)
}

func TestMethodResponsesCollision(t *testing.T) {
	m, err := newMethod("/person", "get")
	require.NoError(t, err)
	m.OnSuccess("ok", 200).OnError("bad", 200)
	require.Len(t, m.Spec().Responses, 1)
	assert.Equal(t, "bad", m.Spec().Responses[200].Description)
	assert.Equal(t, 200, m.SuccessStatus())
	assert.Equal(t, 200, m.ErrorStatus())
}

func TestMethodEmptySuccess(t *testing.T) {
	m, err := newMethod("/person", "delete")
	require.NoError(t, err)
	m.OnSuccess(map[string]any{})
	assert.Equal(t, 200, m.SuccessStatus())
	assert.Len(t, m.Spec().Responses, 1)
}

func TestMethodBuilder(t *testing.T) {
	m, err := newMethod("/person/{id}", "put")
	require.NoError(t, err)
	m.Tags("people", "admin").
		Params(Param{In: InPath, Name: "id", Required: true}).
		OperationID("updatePerson").
		Consumes("application/json").
		Produces("application/json").
		Deprecated().
		Comment("更新人员\n\n按 id 更新 ")

	spec := m.Spec()
	assert.Equal(t, []string{"people", "admin"}, spec.Tags)
	assert.True(t, m.HasParams())
	require.Len(t, spec.Parameters, 1)
	assert.Equal(t, "path", spec.Parameters[0].In)
	assert.Equal(t, "updatePerson", spec.OperationID)
	assert.Equal(t, []string{"application/json"}, spec.Consumes)
	assert.True(t, spec.Deprecated)
	assert.Equal(t, "更新人员", spec.Summary)
	assert.Equal(t, "按 id 更新", spec.Description)
	assert.True(t, m.Commented())

	m.Params()
	assert.True(t, m.HasParams())
	assert.Empty(t, spec.Parameters)
}
