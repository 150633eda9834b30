package main

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/parkingwang/apidoc/pkg/http/web"
	"github.com/parkingwang/apidoc/pkg/http/web/oas"
	"golang.org/x/exp/slog"
)

func initRoutes(r web.Router, store PersonStore) {
	h := &personHandler{store: store}

	r.Define("Error", oas.DefinitionOf(web.DefaultErrorResponse{}))
	errResponse := oas.Response{Description: "Error", Schema: "Error"}

	r.Get("/health", func(c *gin.Context) {}).
		Summary("健康检查").
		OnSuccess("OK")

	person := r.Group("/person", logPerson)
	person.Get("", h.list).OnError(errResponse)
	person.Get("/:id", h.get).
		OnError(oas.Responses{
			http.StatusNotFound:   {Description: "Not Found", Schema: "Error"},
			http.StatusBadRequest: errResponse,
		})
	person.Post("", h.create).
		OnSuccess(oas.Response{Description: "Created", Schema: "Person"}, http.StatusCreated).
		OnError(errResponse)
	person.Put("/:id", h.update).OnError(errResponse)
	person.Delete("/:id", h.delete).
		OnSuccess("Deleted", http.StatusNoContent).
		OnError(errResponse)
}

// 一个gin风格的中间件
func logPerson(c *gin.Context) {
	slog.DebugContext(c, "person request", slog.String("path", c.FullPath()))
	c.Next()
}

type personHandler struct {
	store PersonStore
}

type listRequest struct {
	Page     int `form:"page" binding:"gte=0" comment:"第几页 从0开始"`
	PageSize int `form:"pageSize" binding:"gte=0,lte=100" comment:"每页条数"`
}

// PersonList 人员列表
type PersonList struct {
	Items []Person `json:"items"`
	Total int64    `json:"total"`
}

func (h *personHandler) list(ctx context.Context, in *listRequest) (*PersonList, error) {
	size := in.PageSize
	if size == 0 {
		size = 20
	}
	items, total, err := h.store.List(ctx, in.Page*size, size)
	if err != nil {
		return nil, err
	}
	return &PersonList{Items: items, Total: total}, nil
}

// PersonID 路径中的人员id
type PersonID struct {
	ID int64 `uri:"id" binding:"required,gt=0" comment:"人员id"`
}

func (h *personHandler) get(ctx context.Context, in *PersonID) (*Person, error) {
	return h.store.Get(ctx, in.ID)
}

// PersonBody 创建或修改人员
type PersonBody struct {
	Name  string `json:"name" binding:"required,max=30" comment:"姓名"`
	Age   int    `json:"age" binding:"gte=0,lte=150"`
	Email string `json:"email" binding:"omitempty,email"`
}

func (h *personHandler) create(ctx context.Context, in *PersonBody) (*Person, error) {
	p := &Person{Name: in.Name, Age: in.Age, Email: in.Email}
	if err := h.store.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

type updateRequest struct {
	PersonID
	PersonBody
}

func (h *personHandler) update(ctx context.Context, in *updateRequest) (*Person, error) {
	p := &Person{ID: in.ID, Name: in.Name, Age: in.Age, Email: in.Email}
	if err := h.store.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (h *personHandler) delete(ctx context.Context, in *PersonID) error {
	if err := h.store.Delete(ctx, in.ID); err != nil {
		return err
	}
	return nil
}
