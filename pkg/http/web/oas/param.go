package oas

// 参数位置
const (
	InPath     = "path"
	InQuery    = "query"
	InBody     = "body"
	InHeader   = "header"
	InFormData = "formData"
)

// Param 参数描述
// Schema 为字符串时表示 definitions 中的名称 也可以是 *Schema 或 map[string]any
type Param struct {
	In          string
	Name        string
	Description string
	Required    bool
	Type        string
	Format      string
	Items       any
	Schema      any
}

// ParameterSpec represents a Swagger 2.0 Parameter Object
type ParameterSpec struct {
	In          string  `json:"in"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Required    bool    `json:"required"`
	Type        string  `json:"type,omitempty"`
	Format      string  `json:"format,omitempty"`
	Items       *Schema `json:"items,omitempty"`
	Schema      *Schema `json:"schema,omitempty"`
}

func toSpecParam(p Param) *ParameterSpec {
	sp := &ParameterSpec{
		In:          p.In,
		Name:        p.Name,
		Description: p.Description,
		Required:    p.Required,
		Format:      p.Format,
	}
	if sp.In == "" {
		sp.In = InQuery
	}
	if schema := specSchema(p.Schema); schema != nil {
		sp.Schema = schema
		return sp
	}
	sp.Type = p.Type
	if sp.Type == "" {
		sp.Type = schemaTypeString
	}
	sp.Items = schemaOf(p.Items)
	return sp
}

func paramFromMap(m map[string]any) Param {
	str := func(key string) string {
		s, _ := m[key].(string)
		return s
	}
	return Param{
		In:          str("in"),
		Name:        str("name"),
		Description: str("description"),
		// 只有明确为 true 时才是必填
		Required: m["required"] == true,
		Type:     str("type"),
		Format:   str("format"),
		Items:    m["items"],
		Schema:   m["schema"],
	}
}

// collectParams 单个参数视为只有一个元素的列表 无法识别的值忽略
func collectParams(in []any) []Param {
	var out []Param
	for _, v := range in {
		switch p := v.(type) {
		case Param:
			out = append(out, p)
		case *Param:
			if p != nil {
				out = append(out, *p)
			}
		case map[string]any:
			out = append(out, paramFromMap(p))
		case []Param:
			out = append(out, p...)
		case []map[string]any:
			for _, m := range p {
				out = append(out, paramFromMap(m))
			}
		case []any:
			out = append(out, collectParams(p)...)
		}
	}
	return out
}

func toSpecParams(in []any) []*ParameterSpec {
	params := collectParams(in)
	out := make([]*ParameterSpec, 0, len(params))
	for _, p := range params {
		out = append(out, toSpecParam(p))
	}
	return out
}
