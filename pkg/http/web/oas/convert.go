package oas

import (
	"reflect"
	"strings"
	"time"
)

const (
	formatInt32    = "int32"
	formatInt64    = "int64"
	formatFloat    = "float"
	formatDouble   = "double"
	formatByte     = "byte"
	formatDateTime = "date-time"
)

var timeType = reflect.TypeOf(time.Time{})

// DefinitionOf 根据结构体生成实体定义 结果可以直接用于 AddDefinition
//
// 字段名取 json tag, comment tag 作为描述, binding:"required" 表示必填
func DefinitionOf(v any) map[string]any {
	return TypeDefinition(reflect.TypeOf(v), "json")
}

// TypeDefinition 根据类型生成定义 tag 指定字段名使用的 struct tag
func TypeDefinition(t reflect.Type, tag string) map[string]any {
	return parseDeep(t, tag, make(map[reflect.Type]bool))
}

func parseDeep(t reflect.Type, tag string, seen map[reflect.Type]bool) map[string]any {
	if t == nil {
		return map[string]any{"type": schemaTypeObject}
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.String:
		return map[string]any{"type": schemaTypeString}
	case reflect.Bool:
		return map[string]any{"type": schemaTypeBool}
	case reflect.Int, reflect.Int8, reflect.Int16,
		reflect.Uint, reflect.Uint8, reflect.Uint16:
		return map[string]any{"type": schemaTypeInt}
	case reflect.Int32, reflect.Uint32:
		return map[string]any{"type": schemaTypeInt, "format": formatInt32}
	case reflect.Int64, reflect.Uint64:
		return map[string]any{"type": schemaTypeInt, "format": formatInt64}
	case reflect.Float32:
		return map[string]any{"type": schemaTypeNumber, "format": formatFloat}
	case reflect.Float64:
		return map[string]any{"type": schemaTypeNumber, "format": formatDouble}
	case reflect.Struct:
		// RFC3339
		if t == timeType {
			return map[string]any{"type": schemaTypeString, "format": formatDateTime}
		}
		if seen[t] {
			return map[string]any{"type": schemaTypeObject}
		}
		seen[t] = true
		defer delete(seen, t)
		props := make(map[string]any)
		structFields(t, tag, seen, props)
		return map[string]any{"type": schemaTypeObject, "properties": props}
	case reflect.Slice, reflect.Array:
		if t.Elem().Kind() == reflect.Uint8 {
			return map[string]any{"type": schemaTypeString, "format": formatByte}
		}
		return map[string]any{
			"type":  schemaTypeArray,
			"items": parseDeep(t.Elem(), tag, seen),
		}
	}
	// map interface 等
	return map[string]any{"type": schemaTypeObject}
}

func structFields(t reflect.Type, tag string, seen map[reflect.Type]bool, props map[string]any) {
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.Anonymous {
			ft := field.Type
			if ft.Kind() == reflect.Pointer {
				ft = ft.Elem()
			}
			if ft.Kind() == reflect.Struct {
				structFields(ft, tag, seen, props)
				continue
			}
		}
		if !field.IsExported() {
			continue
		}
		name, ok := FieldName(field, tag)
		if !ok {
			continue
		}
		p := parseDeep(field.Type, tag, seen)
		// 是否有注释？
		if comment := field.Tag.Get("comment"); comment != "" {
			p["description"] = comment
		}
		// 是否必填？
		if IsRequired(field) {
			p["required"] = true
		}
		props[name] = p
	}
}

// FieldName 字段在 tag 中的名称 未设置或为 - 时返回 false
func FieldName(field reflect.StructField, tag string) (string, bool) {
	v, ok := field.Tag.Lookup(tag)
	if !ok {
		return "", false
	}
	name := strings.TrimSpace(strings.Split(v, ",")[0])
	if name == "" || name == "-" {
		return "", false
	}
	return name, true
}

// IsRequired binding tag 的第一项为 required
func IsRequired(field reflect.StructField) bool {
	return strings.Split(field.Tag.Get("binding"), ",")[0] == "required"
}
