package oas

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeResponsesStatusKeyed(t *testing.T) {
	rs := normalizeResponses(map[string]any{
		"201": map[string]any{"description": "Created", "schema": "Person"},
		"202": "Accepted",
	}, 200)
	require.Len(t, rs, 2)
	assert.Equal(t, "Created", rs[201].Description)
	assert.Equal(t, "#/definitions/Person", rs[201].Schema.Ref)
	assert.Equal(t, "Accepted", rs[202].Description)
}

func TestNormalizeResponsesBare(t *testing.T) {
	rs := normalizeResponses(map[string]any{
		"description": "Found",
		"schema":      map[string]any{"type": "array", "items": map[string]any{"$ref": "#/definitions/Person"}},
	}, 200)
	require.Len(t, rs, 1)
	assert.Equal(t, "Found", rs[200].Description)
	assert.Equal(t, "array", rs[200].Schema.Type)
	assert.Equal(t, "#/definitions/Person", rs[200].Schema.Items.Ref)
}

func TestNormalizeResponsesMixedKeys(t *testing.T) {
	rs := normalizeResponses(map[string]any{
		"200":         map[string]any{"description": "ok"},
		"description": "mixed",
	}, 418)
	require.Len(t, rs, 1)
	require.Contains(t, rs, 418)
	assert.Equal(t, "mixed", rs[418].Description)
	assert.Contains(t, rs[418].Extensions, "200")
}

func TestNormalizeResponsesTyped(t *testing.T) {
	rs := normalizeResponses(Responses{
		201: {Description: "Created", Schema: "Person"},
		409: {Description: "Conflict"},
	}, 200)
	require.Len(t, rs, 2)
	assert.Equal(t, RefSchema("Person"), rs[201].Schema)

	rs = normalizeResponses(Response{Description: "Gone"}, 410)
	assert.Equal(t, "Gone", rs[410].Description)

	rs = normalizeResponses("plain", 200)
	assert.Equal(t, "plain", rs[200].Description)

	rs = normalizeResponses(map[string]any{}, 200)
	assert.Empty(t, rs)
}

func TestResponseSpecJSON(t *testing.T) {
	rs := normalizeResponses(map[string]any{
		"description": "ok",
		"headers":     map[string]any{"X-Rate-Limit": map[string]any{"type": "integer"}},
	}, 200)
	data, err := json.Marshal(rs[200])
	require.NoError(t, err)
	assert.JSONEq(t, `{"description":"ok","headers":{"X-Rate-Limit":{"type":"integer"}}}`, string(data))

	var back ResponseSpec
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, "ok", back.Description)
	assert.Contains(t, back.Extensions, "headers")
}

func TestNormalizeResponsesSameStatus(t *testing.T) {
	for i := 0; i < 20; i++ {
		rs := normalizeResponses(map[string]any{
			"0200": "padded",
			"200":  "canonical",
			"0201": "one zero",
			"00201": "two zeros",
		}, 200)
		require.Len(t, rs, 2)
		assert.Equal(t, "canonical", rs[200].Description)
		assert.Equal(t, "one zero", rs[201].Description)
	}
}
