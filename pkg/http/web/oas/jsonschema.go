package oas

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

type keySet map[string]struct{}

func newKeySet(keys ...string) keySet {
	s := make(keySet, len(keys))
	for _, k := range keys {
		s[k] = struct{}{}
	}
	return s
}

var (
	// 顶层定义允许的 key
	definitionKeys = newKeySet("properties", "title", "description", "type")
	// 嵌套对象额外允许 schema 和 items
	nestedKeys   = newKeySet("properties", "title", "description", "type", "schema", "items")
	propertyKeys = newKeySet(
		"title", "description", "type", "schema", "properties",
		"$ref", "maxLength", "format", "enum", "items",
	)
	itemKeys = newKeySet("type")
)

// extensionKey 不在白名单中的 key 加上 x- 前缀
// 已经是扩展字段的 key 不重复添加
func extensionKey(key string, allowed keySet) string {
	if _, ok := allowed[key]; ok {
		return key
	}
	if strings.HasPrefix(key, extensionPrefix) {
		return key
	}
	return extensionPrefix + key
}

// CompileDefinition 将实体定义编译为 definitions 中使用的 schema
//
// 定义必须包含 properties 否则返回 ErrMissingProperties
func CompileDefinition(def map[string]any) (*Schema, error) {
	if _, ok := def["properties"].(map[string]any); !ok {
		return nil, ErrMissingProperties
	}
	return compileSchema(def, 0), nil
}

func compileSchema(src map[string]any, depth int) *Schema {
	allowed := nestedKeys
	if depth == 0 {
		allowed = definitionKeys
	}
	s := &Schema{}
	var props map[string]any
	for k, v := range src {
		key := extensionKey(k, allowed)
		if key == "properties" {
			if m, ok := v.(map[string]any); ok {
				props = m
				continue
			}
		}
		s.set(key, v)
	}
	if props == nil {
		return s
	}

	s.Properties = make(map[string]*Schema, len(props))
	var required []string
	// 按名称排序 保证输出稳定
	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		source, _ := props[name].(map[string]any)
		if source["required"] == true {
			required = append(required, name)
		}
		s.Properties[name] = compileProperty(source, depth)
	}
	if len(required) > 0 {
		s.Required = required
	}
	return s
}

func compileProperty(source map[string]any, depth int) *Schema {
	prop := make(map[string]any, len(source))
	for k, v := range source {
		// required 只记录在上层的 required 数组中
		if k == "required" {
			continue
		}
		prop[extensionKey(k, propertyKeys)] = v
	}
	// enum 已经限定了取值范围
	if _, ok := prop["enum"]; ok {
		delete(prop, "maxLength")
	}

	switch prop["type"] {
	case schemaTypeObject:
		return compileSchema(prop, depth+1)
	case schemaTypeArray:
		if items, ok := prop["items"].(map[string]any); ok {
			delete(prop, "items")
			s := schemaFromMap(prop)
			if items["type"] == schemaTypeObject {
				s.Items = compileSchema(items, depth+1)
			} else {
				s.Items = compileItems(items)
			}
			return s
		}
	}
	return schemaFromMap(prop)
}

func compileItems(items map[string]any) *Schema {
	s := &Schema{}
	for k, v := range items {
		s.set(extensionKey(k, itemKeys), v)
	}
	return s
}

// definitionMap 将任意可以序列化为 JSON 对象的值转为定义
func definitionMap(def any) (map[string]any, error) {
	switch d := def.(type) {
	case map[string]any:
		return d, nil
	case nil:
		return nil, ErrMissingProperties
	}
	data, err := json.Marshal(def)
	if err != nil {
		return nil, fmt.Errorf("oas: encode definition: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("oas: definition must be an object: %w", err)
	}
	return m, nil
}
