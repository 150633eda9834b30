package oas

import (
	"encoding/json"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// Document represents a Swagger 2.0 document
//
// https://github.com/OAI/OpenAPI-Specification/blob/main/versions/2.0.md
type Document struct {
	Swagger     string             `json:"swagger"`
	Info        *Info              `json:"info,omitempty"`
	Produces    []string           `json:"produces,omitempty"`
	Consumes    []string           `json:"consumes,omitempty"`
	Schemes     []string           `json:"schemes,omitempty"`
	BasePath    string             `json:"basePath,omitempty"`
	Host        string             `json:"host,omitempty"`
	Paths       Paths              `json:"paths"`
	Definitions map[string]*Schema `json:"definitions"`
}

// Paths 路径 -> 小写的http方法 -> 方法文档
type Paths map[string]map[string]*MethodSpec

type Info struct {
	Title          string   `json:"title"`
	Description    string   `json:"description,omitempty"`
	Version        string   `json:"version"`
	TermsOfService string   `json:"termsOfService,omitempty"`
	Contact        *Contact `json:"contact,omitempty"`
	License        *License `json:"license,omitempty"`
}

type Contact struct {
	Name  string `json:"name,omitempty"`
	URL   string `json:"url,omitempty"`
	Email string `json:"email,omitempty"`
}

type License struct {
	Name string `json:"name,omitempty"`
	URL  string `json:"url,omitempty"`
}

// ProjectInfo 项目信息 用于生成文档的默认 info
type ProjectInfo struct {
	Name        string `validate:"required"`
	Description string
	Version     string
	Author      string
	License     string
	// 私有项目的 license 固定为 Proprietary
	Private bool
}

func defaultDocument(p ProjectInfo) *Document {
	license := p.License
	if p.Private {
		license = "Proprietary"
	}
	info := &Info{
		Title:       Title(p.Name),
		Description: p.Description,
		Version:     p.Version,
	}
	if p.Author != "" {
		info.Contact = &Contact{Name: p.Author}
	}
	if license != "" {
		info.License = &License{Name: license}
	}
	return &Document{
		Swagger: "2.0",
		Info:    info,
		Produces: []string{
			"application/json",
			"text/plain; charset=utf-8",
		},
		Schemes:  []string{"http"},
		BasePath: "/",
		Host:     "localhost",
	}
}

// Spec 持有一个路由实例的文档
//
// 文档只在路由注册阶段修改 之后只读 因此没有加锁
type Spec struct {
	doc *Document
}

// NewSpec 使用项目信息生成默认文档 override 中非零值的字段覆盖默认值
func NewSpec(project ProjectInfo, override *Document) *Spec {
	doc := defaultDocument(project)
	if o := override; o != nil {
		if o.Swagger != "" {
			doc.Swagger = o.Swagger
		}
		if o.Info != nil {
			doc.Info = o.Info
		}
		if o.Produces != nil {
			doc.Produces = o.Produces
		}
		if o.Consumes != nil {
			doc.Consumes = o.Consumes
		}
		if o.Schemes != nil {
			doc.Schemes = o.Schemes
		}
		if o.BasePath != "" {
			doc.BasePath = o.BasePath
		}
		if o.Host != "" {
			doc.Host = o.Host
		}
		doc.Paths = o.Paths
		doc.Definitions = o.Definitions
	}
	if doc.Paths == nil {
		doc.Paths = make(Paths)
	}
	if doc.Definitions == nil {
		doc.Definitions = make(map[string]*Schema)
	}
	return &Spec{doc: doc}
}

// AddDefinition 编译并保存定义 名称已存在时返回 ErrDuplicateDefinition
func (s *Spec) AddDefinition(name string, definition any) error {
	if _, ok := s.doc.Definitions[name]; ok {
		return fmt.Errorf("oas: definition %q: %w", name, ErrDuplicateDefinition)
	}
	return s.SetDefinition(name, definition)
}

// SetDefinition 编译并保存定义 覆盖同名定义 编译失败时不修改文档
func (s *Spec) SetDefinition(name string, definition any) error {
	def, err := definitionMap(definition)
	if err != nil {
		return fmt.Errorf("oas: definition %q: %w", name, err)
	}
	schema, err := CompileDefinition(def)
	if err != nil {
		return fmt.Errorf("oas: definition %q: %w", name, err)
	}
	s.doc.Definitions[name] = schema
	return nil
}

// HasDefinition 是否已存在同名定义
func (s *Spec) HasDefinition(name string) bool {
	_, ok := s.doc.Definitions[name]
	return ok
}

// LoadDefinitions 从 YAML 或 JSON 中加载多个定义 按名称顺序注册
func (s *Spec) LoadDefinitions(data []byte) error {
	var defs map[string]any
	if err := yaml.Unmarshal(data, &defs); err != nil {
		return fmt.Errorf("oas: parse definitions: %w", err)
	}
	names := make([]string, 0, len(defs))
	for name := range defs {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		if err := s.AddDefinition(name, normalizeYAML(defs[name])); err != nil {
			return err
		}
	}
	return nil
}

var (
	colonParam    = regexp.MustCompile(`:(\w*)`)
	wildcardParam = regexp.MustCompile(`\*(\w+)`)
)

// NormalizePath 将 :id *path 形式的路径参数转为 {id} {path}
func NormalizePath(path string) string {
	path = colonParam.ReplaceAllString(path, "{$1}")
	return wildcardParam.ReplaceAllString(path, "{$1}")
}

// AddMethod 添加路径方法 同一路径重复添加同一方法时返回 ErrDuplicateMethod
func (s *Spec) AddMethod(path, method string) (*Method, error) {
	path = NormalizePath(path)
	method = strings.ToLower(method)
	if _, ok := s.doc.Paths[path][method]; ok {
		return nil, fmt.Errorf("oas: %s %s: %w", method, path, ErrDuplicateMethod)
	}
	m, err := newMethod(path, method)
	if err != nil {
		return nil, err
	}
	item := s.doc.Paths[path]
	if item == nil {
		item = make(map[string]*MethodSpec)
		s.doc.Paths[path] = item
	}
	item[method] = m.spec
	return m, nil
}

// Get 返回当前文档
func (s *Spec) Get() *Document {
	return s.doc
}

// JSON 序列化为 JSON
func (s *Spec) JSON() ([]byte, error) {
	return json.MarshalIndent(s.doc, "", "  ")
}

// YAML 序列化为 YAML 字段顺序与 JSON 一致
func (s *Spec) YAML() ([]byte, error) {
	data, err := json.Marshal(s.doc)
	if err != nil {
		return nil, err
	}
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, err
	}
	blockStyle(&node)
	return yaml.Marshal(&node)
}

// blockStyle JSON 解析出的节点都是 flow 风格 清除后输出为常规 YAML
func blockStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		blockStyle(c)
	}
}

// LoadDocument 解析 YAML 或 JSON 格式的文档 用于 NewSpec 的 override
func LoadDocument(data []byte) (*Document, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("oas: parse document: %w", err)
	}
	buf, err := json.Marshal(normalizeYAML(raw))
	if err != nil {
		return nil, fmt.Errorf("oas: parse document: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(buf, &doc); err != nil {
		return nil, fmt.Errorf("oas: parse document: %w", err)
	}
	return &doc, nil
}

// normalizeYAML 将 yaml 解析出的非字符串 key(如状态码)转为字符串
func normalizeYAML(v any) any {
	switch x := v.(type) {
	case map[string]any:
		for k, item := range x {
			x[k] = normalizeYAML(item)
		}
		return x
	case map[any]any:
		m := make(map[string]any, len(x))
		for k, item := range x {
			m[fmt.Sprint(k)] = normalizeYAML(item)
		}
		return m
	case []any:
		for i, item := range x {
			x[i] = normalizeYAML(item)
		}
		return x
	}
	return v
}
