package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/getkin/kin-openapi/openapi2"
	"github.com/gin-gonic/gin"
	"github.com/parkingwang/apidoc/pkg/http/code"
	"github.com/parkingwang/apidoc/pkg/http/web/oas"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type getPersonRequest struct {
	ID     int64  `uri:"id" binding:"required"`
	Fields string `form:"fields" comment:"返回字段"`
}

type createPersonRequest struct {
	Name string `json:"name" binding:"required"`
	Age  int    `json:"age"`
}

type Person struct {
	ID   int64  `json:"id"`
	Name string `json:"name" comment:"姓名"`
	Age  int    `json:"age"`
}

var errBoom = errors.New("boom")

func getPerson(ctx context.Context, in *getPersonRequest) (*Person, error) {
	switch in.ID {
	case 404:
		return nil, gorm.ErrRecordNotFound
	case 500:
		return nil, errBoom
	case 403:
		return nil, code.NewForbiddenError("no")
	}
	return &Person{ID: in.ID, Name: "tom"}, nil
}

func createPerson(ctx context.Context, in *createPersonRequest) (*Person, error) {
	return &Person{ID: 1, Name: in.Name, Age: in.Age}, nil
}

func deletePerson(ctx context.Context, in *getPersonRequest) error {
	return nil
}

func newTestServer() *Server {
	return New(WithOpenAPI(oas.ProjectInfo{Name: "person", Version: "1.0.0"}, nil))
}

func serve(s *Server, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestStatusDefaulting(t *testing.T) {
	s := newTestServer()
	r := s.Router()
	r.Get("/plain", func(c *gin.Context) {})
	r.Post("/created", func(c *gin.Context) {}).OnSuccess("Created", 201)
	r.Get("/failed", func(c *gin.Context) {
		_ = c.Error(errBoom)
	})
	r.Get("/unprocessable", func(c *gin.Context) {
		_ = c.Error(errBoom)
	}).OnError("Invalid", 422)
	r.Get("/explicit", func(c *gin.Context) {
		c.Status(http.StatusAccepted)
	}).OnSuccess("Created", 201)
	r.Get("/written", func(c *gin.Context) {
		c.String(http.StatusOK, "hi")
	}).OnSuccess("Created", 201)

	assert.Equal(t, 200, serve(s, "GET", "/plain", "").Code)
	assert.Equal(t, 201, serve(s, "POST", "/created", "").Code)
	assert.Equal(t, 400, serve(s, "GET", "/failed", "").Code)
	assert.Equal(t, 422, serve(s, "GET", "/unprocessable", "").Code)
	assert.Equal(t, 202, serve(s, "GET", "/explicit", "").Code)
	assert.Equal(t, 200, serve(s, "GET", "/written", "").Code)
}

func TestMiddlewareBeforeHandler(t *testing.T) {
	s := newTestServer()
	var called bool
	s.Router().Get("/mw", func(c *gin.Context) {
		called = true
		c.Next()
	}, func(c *gin.Context) {}).OnSuccess("No Content", 204)

	assert.Equal(t, 204, serve(s, "GET", "/mw", "").Code)
	assert.True(t, called)
}

func TestRPCHandler(t *testing.T) {
	s := newTestServer()
	r := s.Router()
	r.Get("/person/:id", getPerson)
	r.Post("/person", createPerson).OnSuccess(oas.Response{Description: "Created", Schema: "Person"}, 201)
	r.Delete("/person/:id", deletePerson).OnSuccess("Deleted", 204)

	w := serve(s, "GET", "/person/7", "")
	assert.Equal(t, 200, w.Code)
	assert.JSONEq(t, `{"id":7,"name":"tom","age":0}`, w.Body.String())

	w = serve(s, "POST", "/person", `{"name":"jerry","age":3}`)
	assert.Equal(t, 201, w.Code)
	assert.JSONEq(t, `{"id":1,"name":"jerry","age":3}`, w.Body.String())

	assert.Equal(t, 204, serve(s, "DELETE", "/person/7", "").Code)
}

func TestRPCHandlerErrors(t *testing.T) {
	s := newTestServer()
	r := s.Router()
	r.Get("/person/:id", getPerson)
	r.Post("/person", createPerson)

	assert.Equal(t, 404, serve(s, "GET", "/person/404", "").Code)
	assert.Equal(t, 403, serve(s, "GET", "/person/403", "").Code)

	w := serve(s, "GET", "/person/500", "")
	assert.Equal(t, 400, w.Code)
	var resp DefaultErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "boom", resp.Message)

	// 参数校验失败
	assert.Equal(t, 400, serve(s, "POST", "/person", `{"age":3}`).Code)
	assert.Equal(t, 400, serve(s, "GET", "/person/abc", "").Code)
}

func TestCustomRender(t *testing.T) {
	var got int
	s := New(WithResponseRender(func(ctx *gin.Context, status int, data any, err error) {
		got = status
		ctx.JSON(http.StatusOK, gin.H{"code": status})
	}))
	s.Router().Post("/person", createPerson).OnSuccess("Created", 201)

	w := serve(s, "POST", "/person", `{"name":"a"}`)
	assert.Equal(t, 200, w.Code)
	assert.Equal(t, 201, got)
}

func TestNoRoute(t *testing.T) {
	s := newTestServer()
	assert.Equal(t, 404, serve(s, "GET", "/missing", "").Code)
}

func TestRegistrationPanics(t *testing.T) {
	s := newTestServer()
	r := s.Router()
	r.Get("/person/:id", getPerson)

	assert.Panics(t, func() { r.Get("/person/:id", getPerson) })
	assert.Panics(t, func() { r.Get("/bad", func(ctx context.Context) {}) })
	assert.Panics(t, func() { r.Get("/none") })
	assert.Panics(t, func() { r.Get("/two", getPerson, getPerson) })
	assert.Panics(t, func() { r.Define("Person", map[string]any{"type": "object"}) })
	address := map[string]any{"properties": map[string]any{"city": map[string]any{"type": "string"}}}
	r.Define("Address", address)
	assert.Panics(t, func() { r.Define("Address", address) })
	assert.Panics(t, func() {
		New(WithOpenAPI(oas.ProjectInfo{}, nil))
	})
}

func TestDocumentDerivation(t *testing.T) {
	s := newTestServer()
	r := s.Router()
	r.Get("/person/:id", getPerson)
	r.Post("/person", createPerson)

	doc := s.Spec().Get()
	get := doc.Paths["/person/{id}"]["get"]
	require.NotNil(t, get)
	assert.Equal(t, []string{"person"}, get.Tags)
	assert.Equal(t, "Get Person", get.Summary)
	require.Len(t, get.Parameters, 2)
	assert.Equal(t, "path", get.Parameters[0].In)
	assert.Equal(t, "id", get.Parameters[0].Name)
	assert.True(t, get.Parameters[0].Required)
	assert.Equal(t, "integer", get.Parameters[0].Type)
	assert.Equal(t, "query", get.Parameters[1].In)
	assert.Equal(t, "返回字段", get.Parameters[1].Description)
	assert.Equal(t, "#/definitions/Person", get.Responses[200].Schema.Ref)

	post := doc.Paths["/person"]["post"]
	require.Len(t, post.Parameters, 1)
	assert.Equal(t, "body", post.Parameters[0].In)
	assert.Equal(t, "#/definitions/createPersonRequest", post.Parameters[0].Schema.Ref)
	require.Contains(t, doc.Definitions, "createPersonRequest")
	assert.Equal(t, []string{"name"}, doc.Definitions["createPersonRequest"].Required)
	assert.Equal(t, "姓名", doc.Definitions["Person"].Properties["name"].Description)
}

func TestExplicitParamsWin(t *testing.T) {
	s := newTestServer()
	m := s.Router().Get("/person/:id", getPerson).
		Params(oas.Param{In: oas.InPath, Name: "id", Required: true, Type: "string"})
	require.Len(t, m.Spec().Parameters, 1)
	assert.Equal(t, "string", m.Spec().Parameters[0].Type)
}

func TestGroup(t *testing.T) {
	s := newTestServer()
	api := s.Router().Group("/v1")
	api.Get("/person/:id", getPerson)
	api.Group("/admin").Get("/stats", func(c *gin.Context) {})

	doc := s.Spec().Get()
	require.Contains(t, doc.Paths, "/v1/person/{id}")
	assert.Equal(t, []string{"v1"}, doc.Paths["/v1/person/{id}"]["get"].Tags)
	assert.Contains(t, doc.Paths, "/v1/admin/stats")
	assert.Equal(t, 200, serve(s, "GET", "/v1/person/1", "").Code)
	assert.Equal(t, 200, serve(s, "GET", "/v1/admin/stats", "").Code)
}

func TestDocumentEndpoints(t *testing.T) {
	s := newTestServer()
	r := s.Router()
	r.Define("Address", map[string]any{
		"properties": map[string]any{
			"city": map[string]any{"type": "string", "required": true, "maxLength": 20},
		},
	})
	r.Get("/person/:id", getPerson)
	r.Post("/person", createPerson).OnSuccess(oas.Response{Description: "Created", Schema: "Person"}, 201)

	w := serve(s, "GET", "/debug/doc", "")
	assert.Equal(t, 200, w.Code)
	assert.Contains(t, w.Body.String(), "/debug/doc/swagger.json")

	w = serve(s, "GET", "/debug/doc/swagger.json", "")
	require.Equal(t, 200, w.Code)
	var doc openapi2.T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	assert.Equal(t, "2.0", doc.Swagger)
	assert.Equal(t, "Person", doc.Info.Title)
	get := doc.Paths["/person/{id}"].Get
	require.NotNil(t, get)
	assert.Equal(t, "Get Person", get.Summary)
	assert.Contains(t, get.Responses, "200")
	assert.Contains(t, get.Responses, "400")
	assert.Contains(t, doc.Paths["/person"].Post.Responses, "201")
	assert.Contains(t, doc.Definitions, "Address")
	assert.NotContains(t, doc.Paths, "/debug/doc/swagger.json")

	w = serve(s, "GET", "/debug/doc/swagger.yaml", "")
	assert.Equal(t, 200, w.Code)
	assert.Contains(t, w.Body.String(), "/person/{id}")
}

func TestDocPathOption(t *testing.T) {
	s := New(
		WithOpenAPI(oas.ProjectInfo{Name: "person"}, &oas.Document{Host: "api.local"}),
		WithDocPath("/docs/"),
	)
	w := serve(s, "GET", "/docs/swagger.json", "")
	require.Equal(t, 200, w.Code)
	assert.Contains(t, w.Body.String(), `"host": "api.local"`)

	// 未开启文档时不注册文档路由
	assert.Equal(t, 404, serve(New(), "GET", "/debug/doc", "").Code)
}

func TestPanicUsesErrorStatus(t *testing.T) {
	s := newTestServer()
	r := s.Router()
	r.Get("/panic", func(c *gin.Context) {
		panic("x")
	}).OnError("Bad", 422)
	r.Get("/panic/default", func(c *gin.Context) {
		panic("x")
	})
	r.Get("/panic/written", func(c *gin.Context) {
		c.Status(http.StatusConflict)
		panic("x")
	})
	r.Get("/panic/middleware", func(c *gin.Context) {
		panic("x")
	}, func(c *gin.Context) {})

	w := serve(s, "GET", "/panic", "")
	assert.Equal(t, 422, w.Code)
	var resp DefaultErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, http.StatusText(422), resp.Message)

	assert.Equal(t, 400, serve(s, "GET", "/panic/default", "").Code)
	assert.Equal(t, 409, serve(s, "GET", "/panic/written", "").Code)
	// 中间件中的 panic 由全局 recovery 处理
	assert.Equal(t, 500, serve(s, "GET", "/panic/middleware", "").Code)
}

func TestMiddlewareStatusKept(t *testing.T) {
	s := newTestServer()
	r := s.Router()
	r.Get("/accepted", func(c *gin.Context) {
		c.Status(http.StatusAccepted)
		c.Next()
	}, func(c *gin.Context) {}).OnSuccess("Created", 201)

	group := r.Group("/async", func(c *gin.Context) {
		c.Status(http.StatusAccepted)
	})
	group.Post("/person", createPerson).OnSuccess("Created", 201)

	assert.Equal(t, 202, serve(s, "GET", "/accepted", "").Code)
	assert.Equal(t, 201, serve(s, "POST", "/async/person", `{"name":"a"}`).Code)
}

func TestDefinitionNameCollision(t *testing.T) {
	s := newTestServer()
	r := s.Router()

	type Result struct {
		Name string `json:"name"`
	}
	r.Get("/a", func(ctx context.Context, in *Empty) (*Result, error) {
		return &Result{Name: "a"}, nil
	})
	r.Get("/a/again", func(ctx context.Context, in *Empty) (*Result, error) {
		return &Result{Name: "b"}, nil
	})
	{
		type Result struct {
			Count int `json:"count"`
		}
		r.Get("/b", func(ctx context.Context, in *Empty) (*Result, error) {
			return &Result{Count: 1}, nil
		})
	}

	doc := s.Spec().Get()
	assert.Equal(t, "#/definitions/Result", doc.Paths["/a"]["get"].Responses[200].Schema.Ref)
	assert.Equal(t, "#/definitions/Result", doc.Paths["/a/again"]["get"].Responses[200].Schema.Ref)
	assert.Equal(t, "#/definitions/Result2", doc.Paths["/b"]["get"].Responses[200].Schema.Ref)
	assert.Contains(t, doc.Definitions["Result"].Properties, "name")
	assert.Contains(t, doc.Definitions["Result2"].Properties, "count")
}

func TestDefineReplacesDerived(t *testing.T) {
	s := newTestServer()
	r := s.Router()
	r.Get("/person/:id", getPerson)
	assert.NotPanics(t, func() {
		r.Define("Person", map[string]any{
			"properties": map[string]any{
				"nickname": map[string]any{"type": "string"},
			},
		})
	})
	doc := s.Spec().Get()
	assert.Contains(t, doc.Definitions["Person"].Properties, "nickname")
	assert.NotContains(t, doc.Definitions["Person"].Properties, "age")

	// 手动定义的名称不会被结构体覆盖
	r.Post("/person", createPerson)
	assert.Contains(t, doc.Definitions["Person"].Properties, "nickname")
	assert.Panics(t, func() { r.Define("Person", map[string]any{"properties": map[string]any{}}) })
}
