package oas

import "errors"

// 注册阶段的错误 使用 errors.Is 判断
var (
	// ErrDuplicateDefinition definitions 中已存在同名定义
	ErrDuplicateDefinition = errors.New("definition already exists")
	// ErrDuplicateMethod 同一路径已注册过该方法
	ErrDuplicateMethod = errors.New("method already defined")
	// ErrMalformedPath 路径不是 /path 或 /path/anything 格式
	ErrMalformedPath = errors.New("malformed path")
	// ErrMissingProperties 定义缺少 properties
	ErrMissingProperties = errors.New("definition has no properties")
)
