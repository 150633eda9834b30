package web

import (
	"github.com/parkingwang/apidoc/pkg/http/web/oas"
)

type option struct {
	render          Renderer
	dumpRequestBody bool
	addr            string
	service         string
	docPath         string
	pprof           bool
	comments        bool
	project         *oas.ProjectInfo
	override        *oas.Document
}

func defaultOption() *option {
	return &option{
		addr:    ":8080",
		service: "apiservice",
		docPath: "/debug/doc",
		render:  DefaultRender,
	}
}

type Option func(*option)

// WithResponseRender 自定义响应输出
func WithResponseRender(r Renderer) Option {
	return func(opt *option) {
		opt.render = r
	}
}

// WithDumpRequestBody 是否输出请求体
func WithDumpRequestBody(o bool) Option {
	return func(opt *option) {
		opt.dumpRequestBody = o
	}
}

func WithAddr(addr string) Option {
	return func(o *option) {
		o.addr = addr
	}
}

// WithOpenAPI 开启文档 override 中的非零字段覆盖默认值
func WithOpenAPI(project oas.ProjectInfo, override *oas.Document) Option {
	return func(o *option) {
		o.project = &project
		o.override = override
		if project.Name != "" {
			o.service = project.Name
		}
	}
}

// WithDocPath 文档页面路径 默认 /debug/doc
func WithDocPath(path string) Option {
	return func(o *option) {
		if path != "" {
			o.docPath = path
		}
	}
}

// WithPprof 注册 /debug/pprof
func WithPprof(enable bool) Option {
	return func(o *option) {
		o.pprof = enable
	}
}

// WithHandlerComments 启动时读取 rpc 方法源码注释作为 summary/description
// 需要运行环境中存在源码
func WithHandlerComments(enable bool) Option {
	return func(o *option) {
		o.comments = enable
	}
}
