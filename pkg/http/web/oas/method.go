package oas

import (
	"fmt"
	"net/http"
	"regexp"
	"slices"
	"strings"

	"golang.org/x/exp/maps"
)

// MethodSpec represents a Swagger 2.0 Operation Object
type MethodSpec struct {
	Tags        []string              `json:"tags,omitempty"`
	Summary     string                `json:"summary"`
	Description string                `json:"description"`
	OperationID string                `json:"operationId,omitempty"`
	Consumes    []string              `json:"consumes,omitempty"`
	Produces    []string              `json:"produces,omitempty"`
	Parameters  []*ParameterSpec      `json:"parameters,omitempty"`
	Responses   map[int]*ResponseSpec `json:"responses"`
	Deprecated  bool                  `json:"deprecated,omitempty"`
}

var pathPrefix = regexp.MustCompile(`^/(\w*)/?`)

func defaultSuccess() map[int]*ResponseSpec {
	return map[int]*ResponseSpec{http.StatusOK: {Description: "Success"}}
}

func defaultFailure() map[int]*ResponseSpec {
	return map[int]*ResponseSpec{http.StatusBadRequest: {Description: "Error"}}
}

// Method 单个路由方法的文档构造器
// 所有修改直接写入文档中对应的节点
type Method struct {
	spec    *MethodSpec
	success map[int]*ResponseSpec
	failure map[int]*ResponseSpec
	// 是否手动设置过 summary/description
	commented bool
}

func newMethod(path, method string) (*Method, error) {
	match := pathPrefix.FindStringSubmatch(path)
	if match == nil {
		return nil, fmt.Errorf("oas: path %s should be in format /path or /path/anything: %w", path, ErrMalformedPath)
	}
	prefix := match[1]
	m := &Method{
		spec:    &MethodSpec{},
		success: defaultSuccess(),
		failure: defaultFailure(),
	}
	if prefix != "" {
		m.spec.Tags = []string{prefix}
	}
	m.spec.Summary = Title(strings.ToLower(method) + " " + prefix)
	m.refresh()
	return m, nil
}

// Spec 返回文档中的节点
func (m *Method) Spec() *MethodSpec {
	return m.spec
}

// Tags 替换标签
func (m *Method) Tags(tags ...string) *Method {
	m.spec.Tags = slices.Clone(tags)
	return m
}

// Params 替换全部参数
// 支持 Param *Param map[string]any 以及它们的切片
func (m *Method) Params(params ...any) *Method {
	m.spec.Parameters = toSpecParams(params)
	return m
}

// OnSuccess 设置成功响应 默认状态码 200
// response 可以是 Responses(状态码为key) Response map[string]any 或 描述字符串
func (m *Method) OnSuccess(response any, status ...int) *Method {
	m.success = normalizeResponses(response, statusOr(status, http.StatusOK))
	m.refresh()
	return m
}

// OnError 设置错误响应 默认状态码 400
func (m *Method) OnError(response any, status ...int) *Method {
	m.failure = normalizeResponses(response, statusOr(status, http.StatusBadRequest))
	m.refresh()
	return m
}

func (m *Method) Summary(s string) *Method {
	m.spec.Summary = s
	m.commented = true
	return m
}

func (m *Method) Description(s string) *Method {
	m.spec.Description = s
	m.commented = true
	return m
}

// Comment 首行作为 summary 其余作为 description
func (m *Method) Comment(s string) *Method {
	summary, desc, _ := strings.Cut(strings.TrimSpace(s), "\n")
	m.spec.Summary = strings.TrimSpace(summary)
	m.spec.Description = strings.TrimSpace(desc)
	m.commented = true
	return m
}

// Commented 是否手动设置过 summary 或 description
func (m *Method) Commented() bool {
	return m.commented
}

func (m *Method) OperationID(id string) *Method {
	m.spec.OperationID = id
	return m
}

func (m *Method) Consumes(mime ...string) *Method {
	m.spec.Consumes = slices.Clone(mime)
	return m
}

func (m *Method) Produces(mime ...string) *Method {
	m.spec.Produces = slices.Clone(mime)
	return m
}

func (m *Method) Deprecated() *Method {
	m.spec.Deprecated = true
	return m
}

// SuccessStatus 处理成功且未显式设置状态码时使用的状态码
func (m *Method) SuccessStatus() int {
	return firstStatus(m.success, http.StatusOK)
}

// ErrorStatus 处理失败且未显式设置状态码时使用的状态码
func (m *Method) ErrorStatus() int {
	return firstStatus(m.failure, http.StatusBadRequest)
}

// HasParams 是否设置过参数
func (m *Method) HasParams() bool {
	return m.spec.Parameters != nil
}

// refresh 成功与错误两部分合并为 responses 状态码相同时错误响应优先
func (m *Method) refresh() {
	merged := make(map[int]*ResponseSpec, len(m.success)+len(m.failure))
	maps.Copy(merged, m.success)
	maps.Copy(merged, m.failure)
	m.spec.Responses = merged
}

func firstStatus(rs map[int]*ResponseSpec, def int) int {
	if len(rs) == 0 {
		return def
	}
	return slices.Min(maps.Keys(rs))
}

func statusOr(status []int, def int) int {
	if len(status) > 0 && status[0] > 0 {
		return status[0]
	}
	return def
}
