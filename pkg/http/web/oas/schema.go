package oas

import (
	"encoding/json"
	"maps"
	"math"
	"reflect"
)

const (
	schemaTypeString  = "string"
	schemaTypeBool    = "boolean"
	schemaTypeInt     = "integer"
	schemaTypeNumber  = "number"
	schemaTypeObject  = "object"
	schemaTypeArray   = "array"
	extensionPrefix   = "x-"
	definitionRefRoot = "#/definitions/"
)

// Schema represents a Swagger 2.0 Schema Object
//
// https://github.com/OAI/OpenAPI-Specification/blob/main/versions/2.0.md#schema-object
type Schema struct {
	Ref         string             `json:"$ref,omitempty"`
	Type        string             `json:"type,omitempty"`
	Title       string             `json:"title,omitempty"`
	Description string             `json:"description,omitempty"`
	Format      string             `json:"format,omitempty"`
	MaxLength   *int               `json:"maxLength,omitempty"`
	Enum        []any              `json:"enum,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Required    []string           `json:"required,omitempty"`
	Schema      *Schema            `json:"schema,omitempty"`
	// Extensions 厂商扩展字段(x-*) 以及类型不匹配而原样保留的值
	Extensions map[string]any `json:"-"`
}

// RefSchema 指向 definitions 下的命名定义
func RefSchema(name string) *Schema {
	return &Schema{Ref: definitionRefRoot + name}
}

func (s *Schema) MarshalJSON() ([]byte, error) {
	type alias Schema
	ext := s.Extensions
	// 空的 properties 同样输出为 {}
	if s.Properties != nil && len(s.Properties) == 0 {
		ext = make(map[string]any, len(s.Extensions)+1)
		maps.Copy(ext, s.Extensions)
		ext["properties"] = map[string]any{}
	}
	if len(ext) == 0 {
		return json.Marshal((*alias)(s))
	}
	return marshalWithExtensions((*alias)(s), ext)
}

func (s *Schema) UnmarshalJSON(data []byte) error {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	*s = *schemaFromMap(m)
	return nil
}

func marshalWithExtensions(v any, ext map[string]any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	m := make(map[string]json.RawMessage)
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	for k, v := range ext {
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		m[k] = raw
	}
	return json.Marshal(m)
}

// set 按 key 写入对应字段 值类型不匹配时原样保留在 Extensions 中
func (s *Schema) set(key string, v any) {
	switch key {
	case "$ref":
		if str, ok := v.(string); ok {
			s.Ref = str
			return
		}
	case "type":
		if str, ok := v.(string); ok {
			s.Type = str
			return
		}
	case "title":
		if str, ok := v.(string); ok {
			s.Title = str
			return
		}
	case "description":
		if str, ok := v.(string); ok {
			s.Description = str
			return
		}
	case "format":
		if str, ok := v.(string); ok {
			s.Format = str
			return
		}
	case "maxLength":
		if n, ok := toInt(v); ok {
			s.MaxLength = &n
			return
		}
	case "enum":
		if list, ok := toSlice(v); ok {
			s.Enum = list
			return
		}
	case "items":
		if sc := schemaOf(v); sc != nil {
			s.Items = sc
			return
		}
	case "schema":
		if sc := schemaOf(v); sc != nil {
			s.Schema = sc
			return
		}
	case "properties":
		if m, ok := v.(map[string]any); ok {
			s.Properties = make(map[string]*Schema, len(m))
			for name, p := range m {
				sc := schemaOf(p)
				if sc == nil {
					sc = &Schema{}
				}
				s.Properties[name] = sc
			}
			return
		}
	case "required":
		if list, ok := toStrings(v); ok {
			s.Required = list
			return
		}
	}
	s.extend(key, v)
}

func (s *Schema) extend(key string, v any) {
	if s.Extensions == nil {
		s.Extensions = make(map[string]any)
	}
	s.Extensions[key] = v
}

// schemaOf 将已编译的 schema 原样转换 不做扩展前缀处理
func schemaOf(v any) *Schema {
	switch x := v.(type) {
	case *Schema:
		return x
	case Schema:
		return &x
	case map[string]any:
		return schemaFromMap(x)
	}
	return nil
}

func schemaFromMap(m map[string]any) *Schema {
	s := &Schema{}
	for k, v := range m {
		s.set(k, v)
	}
	return s
}

// specSchema 字符串视为 definitions 名称 其他按已编译的 schema 处理
func specSchema(v any) *Schema {
	if name, ok := v.(string); ok {
		if name == "" {
			return nil
		}
		return RefSchema(name)
	}
	return schemaOf(v)
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int8:
		return int(n), true
	case int16:
		return int(n), true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case uint:
		return int(n), true
	case uint8:
		return int(n), true
	case uint16:
		return int(n), true
	case uint32:
		return int(n), true
	case uint64:
		return int(n), true
	case float32:
		if float32(math.Trunc(float64(n))) == n {
			return int(n), true
		}
	case float64:
		if math.Trunc(n) == n {
			return int(n), true
		}
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i), true
		}
	}
	return 0, false
}

func toSlice(v any) ([]any, bool) {
	if list, ok := v.([]any); ok {
		return list, true
	}
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return nil, false
	}
	list := make([]any, rv.Len())
	for i := range list {
		list[i] = rv.Index(i).Interface()
	}
	return list, true
}

func toStrings(v any) ([]string, bool) {
	if list, ok := v.([]string); ok {
		return list, true
	}
	items, ok := toSlice(v)
	if !ok {
		return nil, false
	}
	list := make([]string, 0, len(items))
	for _, item := range items {
		str, ok := item.(string)
		if !ok {
			return nil, false
		}
		list = append(list, str)
	}
	return list, true
}
