package web

import (
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/gin-gonic/gin"
	"github.com/parkingwang/apidoc/pkg/http/web/oas"
)

type Router interface {
	// handler 支持 gin.HandlerFunc 中间件以及最多一个 rpc 方法
	// 返回的 Method 用于补充文档
	Get(path string, handler ...any) *oas.Method
	Post(path string, handler ...any) *oas.Method
	Put(path string, handler ...any) *oas.Method
	Patch(path string, handler ...any) *oas.Method
	Delete(path string, handler ...any) *oas.Method
	Head(path string, handler ...any) *oas.Method
	Options(path string, handler ...any) *oas.Method
	Handle(method, path string, handler ...any) *oas.Method
	// 同gin
	Use(handler ...gin.HandlerFunc) Router
	Group(path string, handler ...gin.HandlerFunc) Router
	// Define 添加实体定义 同 oas.Spec.AddDefinition
	Define(name string, definition any) Router
}

type route struct {
	s *Server
	r *gin.RouterGroup
}

func (s *route) Get(path string, handler ...any) *oas.Method {
	return s.Handle(http.MethodGet, path, handler...)
}

func (s *route) Post(path string, handler ...any) *oas.Method {
	return s.Handle(http.MethodPost, path, handler...)
}

func (s *route) Put(path string, handler ...any) *oas.Method {
	return s.Handle(http.MethodPut, path, handler...)
}

func (s *route) Patch(path string, handler ...any) *oas.Method {
	return s.Handle(http.MethodPatch, path, handler...)
}

func (s *route) Delete(path string, handler ...any) *oas.Method {
	return s.Handle(http.MethodDelete, path, handler...)
}

func (s *route) Head(path string, handler ...any) *oas.Method {
	return s.Handle(http.MethodHead, path, handler...)
}

func (s *route) Options(path string, handler ...any) *oas.Method {
	return s.Handle(http.MethodOptions, path, handler...)
}

func (s *route) Use(handler ...gin.HandlerFunc) Router {
	s.r.Use(handler...)
	return s
}

func (s *route) Group(path string, handler ...gin.HandlerFunc) Router {
	return &route{s: s.s, r: s.r.Group(path, handler...)}
}

func (s *route) Define(name string, definition any) Router {
	if err := s.s.defs.define(name, definition); err != nil {
		panic(err)
	}
	return s
}

// Handle 注册路由并添加文档
// 最后一个 handler 可以是 rpc 方法或 gin.HandlerFunc 之前的必须是 gin.HandlerFunc
// 路由冲突 文档冲突以及 handler 类型错误都会 panic
func (s *route) Handle(method, relativePath string, handler ...any) *oas.Method {
	if len(handler) == 0 {
		panic(fmt.Sprintf("web: %s %s has no handler", method, relativePath))
	}
	method = strings.ToUpper(method)
	fullPath := joinPaths(s.r.BasePath(), relativePath)

	m, err := s.s.spec.AddMethod(fullPath, method)
	if err != nil {
		panic(err)
	}

	hs := make([]gin.HandlerFunc, len(handler))
	last := len(handler) - 1
	for i, h := range handler[:last] {
		f, ok := ginHandler(h)
		if !ok {
			panic(fmt.Sprintf("web: %s %s handler %d must be gin.HandlerFunc, only the last one may be rpc handler", method, fullPath, i))
		}
		hs[i] = f
	}

	final := handler[last]
	if f, ok := ginHandler(final); ok {
		hs[last] = settle(s.s.opt, m, f)
	} else {
		rpc, err := parseRPCHandler(final)
		if err != nil {
			panic(fmt.Sprintf("web: %s %s: %v", method, fullPath, err))
		}
		if err := describeRPC(s.s.defs, m, method, rpc); err != nil {
			panic(err)
		}
		hs[last] = settle(s.s.opt, m, rpc.ginFunc(s.s.opt, m))
		s.s.routes.addRPC(funcName(final), m)
	}
	s.s.routes.add(method, fullPath, funcName(final))
	s.r.Handle(method, relativePath, hs...)
	return m
}

func joinPaths(base, relative string) string {
	if relative == "" {
		return base
	}
	p := path.Join(base, relative)
	if strings.HasSuffix(relative, "/") && !strings.HasSuffix(p, "/") {
		return p + "/"
	}
	return p
}

type routeInfo struct {
	method string
	path   string
	name   string
}

// routeTable 路由表 启动时输出 同时记录 rpc 方法用于读取注释
type routeTable struct {
	routes []routeInfo
	rpc    map[string][]*oas.Method
}

func newRouteTable() *routeTable {
	return &routeTable{rpc: make(map[string][]*oas.Method)}
}

func (t *routeTable) add(method, path, name string) {
	t.routes = append(t.routes, routeInfo{method: method, path: path, name: name})
}

func (t *routeTable) addRPC(name string, m *oas.Method) {
	t.rpc[name] = append(t.rpc[name], m)
}

func (t *routeTable) rpcNames() []string {
	names := make([]string, 0, len(t.rpc))
	for name := range t.rpc {
		names = append(names, name)
	}
	return names
}

var methodColors = map[string]*color.Color{
	http.MethodGet:    color.New(color.FgBlue),
	http.MethodPost:   color.New(color.FgCyan),
	http.MethodPut:    color.New(color.FgYellow),
	http.MethodPatch:  color.New(color.FgGreen),
	http.MethodDelete: color.New(color.FgRed),
}

func (t *routeTable) echo(w io.Writer) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.DiscardEmptyColumns)
	for _, r := range t.routes {
		method := r.method
		if c, ok := methodColors[method]; ok {
			method = c.Sprint(method)
		}
		fmt.Fprintf(tw, "[router]├── %s\t%s\t%s\n", method, r.path, r.name)
	}
	tw.Flush()
}
