package web

import (
	"fmt"
	"net/http"
	"reflect"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/parkingwang/apidoc/pkg/http/code"
	"github.com/parkingwang/apidoc/pkg/http/web/oas"
	"golang.org/x/exp/slog"
)

var valider = func() *validator.Validate {
	v := validator.New()
	v.SetTagName("binding") // 兼容gin
	return v
}()

// rpcHandler 已解析的 rpc 方法
type rpcHandler struct {
	fn     reflect.Value
	in     reflect.Type
	out    reflect.Type
	numOut int
	tags   map[string]bool
}

func parseRPCHandler(h any) (*rpcHandler, error) {
	tp := reflect.TypeOf(h)
	if tp == nil {
		return nil, errHandleType
	}
	numOut, ok := checkHandleValid(tp)
	if !ok {
		return nil, fmt.Errorf("%w: got %s", errHandleType, tp)
	}
	r := &rpcHandler{
		fn:     reflect.ValueOf(h),
		in:     tp.In(1).Elem(),
		numOut: numOut,
		tags:   make(map[string]bool),
	}
	if numOut == 2 {
		r.out = tp.Out(0).Elem()
	}
	deepfindTags(r.in, r.tags)
	return r, nil
}

// ginFunc 将 rpc 方法转为 gin handler
func (r *rpcHandler) ginFunc(opt *option, m *oas.Method) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		q := reflect.New(r.in)
		if q.Type() != rtypeEmpty {
			err := checkReqParam(ctx, q.Interface(), r.tags)
			if opt.dumpRequestBody {
				slog.LogAttrs(ctx, slog.LevelInfo, "gin.dumpRequest",
					slog.String("data", fmt.Sprintf("%+v", q.Elem())),
				)
			}
			if err == nil {
				err = valider.Struct(q.Interface())
			}
			if err != nil {
				warpRender(opt, m, ctx, nil, code.NewBadRequestError(err))
				return
			}
		}

		ret := r.fn.Call([]reflect.Value{reflect.ValueOf(ctx), q})
		if e := ret[r.numOut-1].Interface(); e != nil {
			warpRender(opt, m, ctx, nil, e.(error))
			return
		}
		var data any
		if r.numOut == 2 && !ret[0].IsNil() {
			data = ret[0].Interface()
		}
		warpRender(opt, m, ctx, data, nil)
	}
}

// statusWriter 记录请求链路中是否显式设置过状态码
type statusWriter struct {
	gin.ResponseWriter
	explicit bool
}

func (w *statusWriter) WriteHeader(code int) {
	w.explicit = true
	w.ResponseWriter.WriteHeader(code)
}

// trackStatus 在链路最前面包裹 writer 之前的中间件设置的状态码同样生效
func trackStatus(c *gin.Context) {
	c.Writer = &statusWriter{ResponseWriter: c.Writer}
	c.Next()
}

// settle 包裹最终的 handler
// 请求链路没有写入响应也没有设置状态码时 使用文档中的状态码
// 处理过程中产生新的 c.Errors 或 panic 视为失败
func settle(opt *option, m *oas.Method, h gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		w, ok := c.Writer.(*statusWriter)
		if !ok {
			w = &statusWriter{ResponseWriter: c.Writer}
			c.Writer = w
		}
		errs := len(c.Errors)
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			if r == http.ErrAbortHandler {
				panic(r)
			}
			slog.LogAttrs(c, slog.LevelError, "gin.panic", slog.Any("err", r))
			c.Abort()
			if w.explicit || w.Written() {
				return
			}
			status := m.ErrorStatus()
			opt.render(c, status, nil, code.NewCodeError(status, http.StatusText(status)))
		}()

		h(c)

		if w.explicit || w.Written() {
			return
		}
		status := m.SuccessStatus()
		if len(c.Errors) > errs {
			status = m.ErrorStatus()
		}
		w.ResponseWriter.WriteHeader(status)
	}
}
