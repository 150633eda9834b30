package web

import (
	"context"
	"errors"
	"reflect"

	"github.com/gin-gonic/gin"
)

// Empty 无请求参数的 rpc 方法使用
type Empty struct{}

var (
	rtypeEmpty   = reflect.TypeOf(&Empty{})
	rtypeContext = reflect.TypeOf((*context.Context)(nil)).Elem()
	rtypeError   = reflect.TypeOf((*error)(nil)).Elem()
	rtypeGin     = reflect.TypeOf(gin.HandlerFunc(nil))
)

var errHandleType = errors.New("rpc handle must be func(ctx context.Context, in *struct) (out *struct, err error) or func(ctx context.Context, in *struct) error")

// checkHandleValid 返回 rpc 方法的返回值个数
func checkHandleValid(tp reflect.Type) (int, bool) {
	if tp.Kind() != reflect.Func {
		return 0, false
	}
	if !(tp.NumIn() == 2 &&
		tp.In(0) == rtypeContext &&
		tp.In(1).Kind() == reflect.Pointer &&
		tp.In(1).Elem().Kind() == reflect.Struct) {
		return 0, false
	}
	// 一个返回值必须是 error
	// 两个返回值 最后一个是 error 第一个是结构体指针
	switch n := tp.NumOut(); n {
	case 1:
		return 1, tp.Out(0) == rtypeError
	case 2:
		return 2, tp.Out(1) == rtypeError &&
			tp.Out(0).Kind() == reflect.Pointer &&
			tp.Out(0).Elem().Kind() == reflect.Struct
	default:
		return n, false
	}
}

// ginHandler 识别原生 gin handler
func ginHandler(h any) (gin.HandlerFunc, bool) {
	switch f := h.(type) {
	case gin.HandlerFunc:
		return f, f != nil
	case func(*gin.Context):
		return f, f != nil
	}
	if h != nil && reflect.TypeOf(h).ConvertibleTo(rtypeGin) {
		return reflect.ValueOf(h).Convert(rtypeGin).Interface().(gin.HandlerFunc), true
	}
	return nil, false
}

// GinContext 返回原始的 gin.Context
func GinContext(ctx context.Context) (*gin.Context, bool) {
	c, ok := ctx.(*gin.Context)
	return c, ok
}
