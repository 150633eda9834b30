package web

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/parkingwang/apidoc/pkg/http/code"
	"github.com/parkingwang/apidoc/pkg/http/web/oas"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

// Renderer 渲染响应 status 为根据文档推导出的状态码
type Renderer func(ctx *gin.Context, status int, data any, err error)

// DefaultRender 默认渲染函数
func DefaultRender(ctx *gin.Context, status int, data any, err error) {
	if err != nil {
		span := trace.SpanFromContext(ctx)
		span.SetStatus(codes.Error, err.Error())
		message := err.Error()
		var e *code.CodeError
		if errors.As(err, &e) {
			message = e.Message
		}
		ctx.JSON(status, DefaultErrorResponse{
			Message: message,
			TraceID: span.SpanContext().TraceID().String(),
		})
		return
	}
	if data != nil {
		ctx.JSON(status, data)
		return
	}
	ctx.Status(status)
}

type DefaultErrorResponse struct {
	Message string `json:"message"`
	TraceID string `json:"traceid"`
}

// responseStatus 错误携带状态码时优先使用 否则取文档中的默认状态码
func responseStatus(m *oas.Method, err error) int {
	if err == nil {
		return m.SuccessStatus()
	}
	if status, ok := code.StatusOf(err); ok {
		return status
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return http.StatusNotFound
	}
	return m.ErrorStatus()
}

func warpRender(opt *option, m *oas.Method, ctx *gin.Context, data any, err error) {
	if err != nil {
		var rawErr *code.CodeError
		if errors.As(err, &rawErr) {
			ctx.Set(responseErrKey, rawErr.Message)
		} else {
			ctx.Set(responseErrKey, err.Error())
		}
	}
	// 不输出 response 无法确定结果集大小 可能造成大量的垃圾日志
	opt.render(ctx, responseStatus(m, err), data, err)
}

const responseErrKey = "gin.response.err"
