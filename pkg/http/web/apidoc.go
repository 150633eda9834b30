package web

import (
	"fmt"
	"go/ast"
	"go/token"
	"net/http"
	"reflect"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/parkingwang/apidoc/pkg/http/web/oas"
	"golang.org/x/tools/go/packages"
)

// bodyMethods form 字段会被解析为表单的方法
var bodyMethods = map[string]bool{
	http.MethodPost:  true,
	http.MethodPut:   true,
	http.MethodPatch: true,
}

// describeRPC 根据 rpc 方法的请求和响应结构体生成参数与成功响应
// 已手动设置的参数不覆盖
func describeRPC(defs *definitions, m *oas.Method, method string, h *rpcHandler) error {
	if h.in != rtypeEmpty.Elem() {
		params, body, err := rpcParams(defs, method, h.in)
		if err != nil {
			return err
		}
		if body != nil {
			params = append(params, *body)
		}
		if len(params) > 0 {
			m.Params(params)
		}
	}
	if h.out != nil {
		schema, err := defs.typeSchema(h.out)
		if err != nil {
			return err
		}
		m.OnSuccess(oas.Response{Description: "Success", Schema: schema})
	}
	return nil
}

func rpcParams(defs *definitions, method string, in reflect.Type) ([]oas.Param, *oas.Param, error) {
	var (
		params []oas.Param
		body   *oas.Param
	)
	var walk func(t reflect.Type)
	walk = func(t reflect.Type) {
		for i := 0; i < t.NumField(); i++ {
			field := t.Field(i)
			if field.Anonymous {
				ft := field.Type
				if ft.Kind() == reflect.Pointer {
					ft = ft.Elem()
				}
				if ft.Kind() == reflect.Struct {
					walk(ft)
					continue
				}
			}
			if !field.IsExported() {
				continue
			}
			if name, ok := oas.FieldName(field, "uri"); ok {
				params = append(params, fieldParam(field, oas.InPath, name, "uri", true))
			}
			if name, ok := oas.FieldName(field, "header"); ok {
				params = append(params, fieldParam(field, oas.InHeader, name, "header", oas.IsRequired(field)))
			}
			if name, ok := oas.FieldName(field, "form"); ok {
				in := oas.InQuery
				if bodyMethods[method] {
					in = oas.InFormData
				}
				params = append(params, fieldParam(field, in, name, "form", oas.IsRequired(field)))
			}
			if _, ok := oas.FieldName(field, "json"); ok && body == nil {
				body = &oas.Param{In: oas.InBody, Name: "body", Required: true}
			}
		}
	}
	walk(in)
	if body != nil {
		schema, err := defs.typeSchema(in)
		if err != nil {
			return nil, nil, err
		}
		body.Schema = schema
	}
	return params, body, nil
}

func fieldParam(field reflect.StructField, in, name, tag string, required bool) oas.Param {
	def := oas.TypeDefinition(field.Type, tag)
	p := oas.Param{
		In:          in,
		Name:        name,
		Description: field.Tag.Get("comment"),
		Required:    required,
	}
	p.Type, _ = def["type"].(string)
	p.Format, _ = def["format"].(string)
	if items, ok := def["items"]; ok {
		p.Items = items
	}
	return p
}

// definitions 由结构体生成的定义 同名的不同类型追加数字后缀
type definitions struct {
	spec    *oas.Spec
	names   map[reflect.Type]string
	derived map[string]bool
}

func newDefinitions(spec *oas.Spec) *definitions {
	return &definitions{
		spec:    spec,
		names:   make(map[reflect.Type]string),
		derived: make(map[string]bool),
	}
}

// typeSchema 具名结构体注册为 definition 并返回名称 匿名结构体返回内联 schema
func (d *definitions) typeSchema(t reflect.Type) (any, error) {
	if name, ok := d.names[t]; ok {
		return name, nil
	}
	def := oas.TypeDefinition(t, "json")
	base := t.Name()
	if base == "" {
		return oas.CompileDefinition(def)
	}
	name := base
	for i := 2; d.spec.HasDefinition(name); i++ {
		name = fmt.Sprintf("%s%d", base, i)
	}
	if err := d.spec.AddDefinition(name, def); err != nil {
		return nil, err
	}
	d.names[t] = name
	d.derived[name] = true
	return name, nil
}

// define 手动添加定义 可以覆盖由结构体生成的同名定义
func (d *definitions) define(name string, definition any) error {
	if !d.derived[name] {
		return d.spec.AddDefinition(name, definition)
	}
	if err := d.spec.SetDefinition(name, definition); err != nil {
		return err
	}
	delete(d.derived, name)
	return nil
}

// funcName rpc 方法的完整名称 main 包替换为模块路径
func funcName(h any) string {
	name := runtime.FuncForPC(reflect.ValueOf(h).Pointer()).Name()
	if strings.HasPrefix(name, "main.") {
		if info, ok := debug.ReadBuildInfo(); ok && info.Path != "" {
			name = info.Path + name[len("main"):]
		}
	}
	return name
}

// splitFuncName 拆分为包路径和函数名 方法和闭包返回 false
func splitFuncName(name string) (string, string, bool) {
	i := strings.LastIndex(name, ".")
	if i <= 0 || strings.ContainsAny(name[i:], "()") {
		return "", "", false
	}
	pkg, fn := name[:i], name[i+1:]
	if strings.Contains(pkg[strings.LastIndex(pkg, "/")+1:], ".") {
		return "", "", false
	}
	return pkg, fn, true
}

// loadComments 读取函数的源码注释 key 为 包路径.函数名
func loadComments(names []string) (map[string]string, error) {
	pkgs := make(map[string]struct{})
	for _, name := range names {
		if pkg, _, ok := splitFuncName(name); ok {
			pkgs[pkg] = struct{}{}
		}
	}
	if len(pkgs) == 0 {
		return nil, nil
	}
	patterns := make([]string, 0, len(pkgs))
	for k := range pkgs {
		patterns = append(patterns, k)
	}

	cfg := &packages.Config{
		Fset: token.NewFileSet(),
		Mode: packages.NeedName | packages.NeedFiles | packages.NeedSyntax,
	}
	loaded, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, err
	}
	comments := make(map[string]string)
	for _, pkg := range loaded {
		for _, file := range pkg.Syntax {
			for _, decl := range file.Decls {
				fn, ok := decl.(*ast.FuncDecl)
				if !ok || fn.Recv != nil || fn.Doc == nil {
					continue
				}
				comments[pkg.PkgPath+"."+fn.Name.Name] = fn.Doc.Text()
			}
		}
	}
	return comments, nil
}
