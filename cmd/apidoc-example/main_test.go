package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/getkin/kin-openapi/openapi2"
	"github.com/parkingwang/apidoc/pkg/http/web"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	srv := web.New(web.WithOpenAPI(info.Project(), nil))
	initRoutes(srv.Router(), newMemoryStore())
	return srv.Handler()
}

func do(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestPersonCRUD(t *testing.T) {
	h := newTestServer(t)

	w := do(h, http.MethodPost, "/person", `{"name":"tom","age":3,"email":"tom@example.com"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var p Person
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
	assert.Equal(t, int64(1), p.ID)

	assert.Equal(t, http.StatusConflict,
		do(h, http.MethodPost, "/person", `{"name":"tom2","email":"tom@example.com"}`).Code)
	assert.Equal(t, http.StatusBadRequest,
		do(h, http.MethodPost, "/person", `{"age":3}`).Code)

	w = do(h, http.MethodGet, "/person/1", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"tom"`)

	w = do(h, http.MethodPut, "/person/1", `{"name":"jerry","age":4}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"jerry"`)

	w = do(h, http.MethodGet, "/person?page=0&pageSize=10", "")
	assert.Equal(t, http.StatusOK, w.Code)
	var list PersonList
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, int64(1), list.Total)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "jerry", list.Items[0].Name)

	assert.Equal(t, http.StatusBadRequest, do(h, http.MethodGet, "/person?pageSize=1000", "").Code)

	assert.Equal(t, http.StatusNoContent, do(h, http.MethodDelete, "/person/1", "").Code)
	assert.Equal(t, http.StatusNotFound, do(h, http.MethodGet, "/person/1", "").Code)
	assert.Equal(t, http.StatusNotFound, do(h, http.MethodDelete, "/person/1", "").Code)
	assert.Equal(t, http.StatusOK, do(h, http.MethodGet, "/health", "").Code)
}

func TestDocument(t *testing.T) {
	h := newTestServer(t)
	w := do(h, http.MethodGet, "/debug/doc/swagger.json", "")
	require.Equal(t, http.StatusOK, w.Code)

	var doc openapi2.T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	assert.Equal(t, "Person Service", doc.Info.Title)
	require.Contains(t, doc.Paths, "/person/{id}")

	get := doc.Paths["/person/{id}"].Get
	require.NotNil(t, get)
	assert.Equal(t, []string{"person"}, get.Tags)
	assert.Contains(t, get.Responses, "200")
	assert.Contains(t, get.Responses, "404")
	assert.Contains(t, get.Responses, "400")

	assert.Contains(t, doc.Paths["/person"].Post.Responses, "201")
	assert.Contains(t, doc.Paths["/person/{id}"].Delete.Responses, "204")
	assert.Contains(t, doc.Definitions, "Person")
	assert.Contains(t, doc.Definitions, "PersonBody")
	assert.Contains(t, doc.Definitions, "Error")
	assert.Equal(t, []string{"健康检查"}, []string{doc.Paths["/health"].Get.Summary})
}

func TestSpecCommand(t *testing.T) {
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"spec", "--format", "yaml"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "/person/{id}")
	assert.Contains(t, out.String(), "swagger:")

	cmd = newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"spec", "--format", "xml"})
	assert.Error(t, cmd.Execute())
}
