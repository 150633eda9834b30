package code

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// CodeError 携带 http 状态码的错误 状态码优先于文档中的默认错误状态码
type CodeError struct {
	Code    int
	Message string
}

func (e *CodeError) Error() string {
	return fmt.Sprintf("%d %s", e.Code, e.Message)
}

func NewCodeError(code int, msg string, args ...any) error {
	if code == 0 {
		code = http.StatusInternalServerError
	}
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	return &CodeError{code, msg}
}

// StatusOf 错误中的状态码 不是 CodeError 时返回 false
func StatusOf(err error) (int, bool) {
	var e *CodeError
	if errors.As(err, &e) {
		return e.Code, true
	}
	return 0, false
}

// NewBadRequestError 请求参数错误
func NewBadRequestError(v any) error {
	var fe validator.ValidationErrors
	if err, ok := v.(error); ok && errors.As(err, &fe) && len(fe) > 0 {
		e := fe[0]
		v = fmt.Sprintf("Requirement %s %s %s", e.Field(), e.Tag(), e.Param())
	}
	return &CodeError{
		http.StatusBadRequest,
		fmt.Sprintf("%v", v),
	}
}

// NewUnauthorizedError 请求需要通过身份验证
func NewUnauthorizedError(v any) error {
	return &CodeError{
		http.StatusUnauthorized,
		fmt.Sprintf("%v", v),
	}
}

// NewForbiddenError 拒绝访问 即使通过了身份验证 （权限，未授权IP等）
func NewForbiddenError(v any) error {
	return &CodeError{
		http.StatusForbidden,
		fmt.Sprintf("%v", v),
	}
}

// NewNotfoundError 服务器上没有请求的资源。路径错误等。
func NewNotfoundError(v any) error {
	return &CodeError{
		http.StatusNotFound,
		fmt.Sprintf("%v", v),
	}
}

// NewConflictError 资源冲突 如重复创建
func NewConflictError(v any) error {
	return &CodeError{
		http.StatusConflict,
		fmt.Sprintf("%v", v),
	}
}
