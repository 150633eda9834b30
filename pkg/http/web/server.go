package web

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/parkingwang/apidoc/pkg/http/code"
	"github.com/parkingwang/apidoc/pkg/http/web/oas"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.12.0"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/exp/slog"
)

//go:embed swagger-ui.html
var swaggerUITemplate string

type Server struct {
	opt     *option
	e       *gin.Engine
	spec    *oas.Spec
	defs    *definitions
	routes  *routeTable
	httpsrv *http.Server
}

// New 创建服务 WithOpenAPI 中的项目信息不合法时 panic
func New(opts ...Option) *Server {
	opt := defaultOption()
	for _, o := range opts {
		o(opt)
	}
	project := oas.ProjectInfo{Name: opt.service}
	if opt.project != nil {
		if err := validator.New().Struct(opt.project); err != nil {
			panic(fmt.Errorf("web: invalid openapi project: %w", err))
		}
		project = *opt.project
	}

	// 关闭gin默认的校验 绑定完成后统一校验
	binding.Validator = nil
	gin.SetMode(gin.ReleaseMode)
	e := gin.New()
	e.ContextWithFallback = true
	e.NoRoute(func(ctx *gin.Context) {
		err := code.NewNotfoundError("route not found")
		opt.render(ctx, http.StatusNotFound, nil, err)
	})
	e.Use(
		trackStatus,
		middleware(opt.service),
		gin.CustomRecovery(func(c *gin.Context, err any) {
			slog.LogAttrs(c, slog.LevelError, "gin.panic", slog.Any("err", err))
			c.Abort()
			opt.render(c, http.StatusInternalServerError, nil,
				code.NewCodeError(
					http.StatusInternalServerError,
					http.StatusText(http.StatusInternalServerError),
				),
			)
		}),
	)
	if opt.pprof {
		pprof.Register(e)
	}

	spec := oas.NewSpec(project, opt.override)
	s := &Server{
		opt:    opt,
		e:      e,
		spec:   spec,
		defs:   newDefinitions(spec),
		routes: newRouteTable(),
		httpsrv: &http.Server{
			Handler: e,
		},
	}
	if opt.project != nil {
		s.registerDoc()
	}
	return s
}

// registerDoc 文档路由直接注册在 gin 上 不出现在文档中
func (s *Server) registerDoc() {
	docPath := strings.TrimSuffix(s.opt.docPath, "/")
	page := strings.ReplaceAll(swaggerUITemplate, "{{.SpecURL}}", docPath+"/swagger.json")
	s.e.GET(docPath, func(ctx *gin.Context) {
		ctx.Data(http.StatusOK, "text/html; charset=utf-8", []byte(page))
	})
	s.e.GET(docPath+"/swagger.json", func(ctx *gin.Context) {
		data, err := s.spec.JSON()
		if err != nil {
			s.opt.render(ctx, http.StatusInternalServerError, nil, err)
			return
		}
		ctx.Data(http.StatusOK, "application/json; charset=utf-8", data)
	})
	s.e.GET(docPath+"/swagger.yaml", func(ctx *gin.Context) {
		data, err := s.spec.YAML()
		if err != nil {
			s.opt.render(ctx, http.StatusInternalServerError, nil, err)
			return
		}
		ctx.Data(http.StatusOK, "application/yaml; charset=utf-8", data)
	})
}

func (s *Server) Start(ctx context.Context) error {
	s.routes.echo(os.Stdout)
	if s.opt.comments {
		if err := s.applyComments(); err != nil {
			slog.LogAttrs(ctx, slog.LevelWarn, "load handler comments failed", slog.Any("err", err))
		}
	}

	l, err := net.Listen("tcp", s.opt.addr)
	if err != nil {
		return err
	}
	slog.LogAttrs(ctx, slog.LevelInfo, "Starting HTTP server", slog.String("addr", s.opt.addr))
	go func() {
		if err := s.httpsrv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server stopped", "err", err)
		}
	}()
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	slog.LogAttrs(ctx, slog.LevelInfo, "Shutdown HTTP server", slog.String("addr", s.opt.addr))
	return s.httpsrv.Shutdown(ctx)
}

// applyComments 未手动设置说明的 rpc 方法使用源码注释
func (s *Server) applyComments() error {
	comments, err := loadComments(s.routes.rpcNames())
	if err != nil {
		return err
	}
	for name, methods := range s.routes.rpc {
		doc, ok := comments[name]
		if !ok || strings.TrimSpace(doc) == "" {
			continue
		}
		for _, m := range methods {
			if !m.Commented() {
				m.Comment(doc)
			}
		}
	}
	return nil
}

// Router 支持 rpc 方法并自动生成文档的路由
func (s *Server) Router() Router {
	return &route{s: s, r: &s.e.RouterGroup}
}

// Spec 当前的文档
func (s *Server) Spec() *oas.Spec {
	return s.spec
}

// Handler 组合后的 http.Handler
func (s *Server) Handler() http.Handler {
	return s.e
}

// GinEngine 返回原始的ginEngine
func (s *Server) GinEngine() *gin.Engine {
	return s.e
}

func middleware(service string) gin.HandlerFunc {
	tracer := otel.GetTracerProvider().Tracer("github.com/parkingwang/apidoc/pkg/http/web")
	txtpropagator := otel.GetTextMapPropagator()
	return func(c *gin.Context) {
		savedCtx := c.Request.Context()
		defer func() {
			c.Request = c.Request.WithContext(savedCtx)
		}()

		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path = path + "?" + raw
		}

		ctx := txtpropagator.Extract(savedCtx, propagation.HeaderCarrier(c.Request.Header))
		spanName := c.FullPath()
		if spanName == "" {
			spanName = fmt.Sprintf("HTTP %s route not found", c.Request.Method)
		}
		ctx, span := tracer.Start(ctx, spanName,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				semconv.HTTPServerNameKey.String(service),
				semconv.HTTPMethodKey.String(c.Request.Method),
				semconv.HTTPTargetKey.String(c.Request.URL.RequestURI()),
				semconv.HTTPRouteKey.String(c.FullPath()),
				semconv.HTTPClientIPKey.String(c.ClientIP()),
			),
		)
		defer span.End()
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		status := c.Writer.Status()
		span.SetAttributes(semconv.HTTPStatusCodeKey.Int(status))
		if status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(status))
		}

		loglvl := slog.LevelInfo
		logattrs := []slog.Attr{
			slog.String("method", c.Request.Method),
			slog.String("path", path),
			slog.String("ip", c.ClientIP()),
			slog.Int("status", status),
			slog.Int("size", c.Writer.Size()),
			slog.Duration("latency", time.Since(start)),
		}
		if len(c.Errors) > 0 {
			span.SetAttributes(attribute.String("gin.errors", c.Errors.String()))
			span.SetStatus(codes.Error, c.Errors.String())
			loglvl = slog.LevelError
			logattrs = append(logattrs, slog.String("err", c.Errors.String()))
		}
		if rerr := c.GetString(responseErrKey); rerr != "" {
			logattrs = append(logattrs, slog.String("response.error", rerr))
		}
		slog.LogAttrs(ctx, loglvl, "gin.access", logattrs...)
	}
}
