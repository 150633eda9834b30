package oas

import (
	"encoding/json"
	"slices"
	"strconv"
	"strings"
)

// Response 响应描述
// Schema 为字符串时表示 definitions 中的名称
type Response struct {
	Description string
	Schema      any
	Headers     map[string]any
}

// Responses 以状态码为 key 的响应集合
type Responses map[int]Response

// ResponseSpec represents a Swagger 2.0 Response Object
type ResponseSpec struct {
	Description string  `json:"description"`
	Schema      *Schema `json:"schema,omitempty"`
	// Extensions headers examples 以及厂商扩展字段 原样输出
	Extensions map[string]any `json:"-"`
}

func (r *ResponseSpec) MarshalJSON() ([]byte, error) {
	type alias ResponseSpec
	if len(r.Extensions) == 0 {
		return json.Marshal((*alias)(r))
	}
	return marshalWithExtensions((*alias)(r), r.Extensions)
}

func (r *ResponseSpec) UnmarshalJSON(data []byte) error {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	*r = *responseFromMap(m)
	return nil
}

func toResponseSpec(r Response) *ResponseSpec {
	rs := &ResponseSpec{
		Description: r.Description,
		Schema:      specSchema(r.Schema),
	}
	if len(r.Headers) > 0 {
		rs.Extensions = map[string]any{"headers": r.Headers}
	}
	return rs
}

func responseFromMap(m map[string]any) *ResponseSpec {
	rs := &ResponseSpec{}
	for k, v := range m {
		switch k {
		case "description":
			if s, ok := v.(string); ok {
				rs.Description = s
				continue
			}
		case "schema":
			if sc := specSchema(v); sc != nil {
				rs.Schema = sc
				continue
			}
		}
		if rs.Extensions == nil {
			rs.Extensions = make(map[string]any)
		}
		rs.Extensions[k] = v
	}
	return rs
}

func responseFrom(v any) *ResponseSpec {
	switch r := v.(type) {
	case Response:
		return toResponseSpec(r)
	case *Response:
		if r != nil {
			return toResponseSpec(*r)
		}
	case *ResponseSpec:
		if r != nil {
			return r
		}
	case map[string]any:
		return responseFromMap(r)
	case string:
		return &ResponseSpec{Description: r}
	}
	return &ResponseSpec{}
}

// statusKeyed 所有 key 都是数字时才视为以状态码为 key 的集合
func statusKeyed(m map[string]any) (map[string]int, bool) {
	codes := make(map[string]int, len(m))
	for k := range m {
		code, err := strconv.Atoi(k)
		if err != nil {
			return nil, false
		}
		codes[k] = code
	}
	return codes, true
}

// normalizeResponses 转为以状态码为 key 的响应集合
// 单个响应使用 status 作为状态码
func normalizeResponses(in any, status int) map[int]*ResponseSpec {
	out := make(map[int]*ResponseSpec)
	switch r := in.(type) {
	case Responses:
		for code, resp := range r {
			out[code] = toResponseSpec(resp)
		}
	case map[int]Response:
		for code, resp := range r {
			out[code] = toResponseSpec(resp)
		}
	case map[string]any:
		codes, ok := statusKeyed(r)
		if !ok {
			out[status] = responseFromMap(r)
			break
		}
		// "0200" 与 "200" 指向同一状态码时 规范写法优先 其余按 key 排序后写入
		keys := make([]string, 0, len(r))
		for k := range r {
			keys = append(keys, k)
		}
		slices.SortFunc(keys, func(a, b string) int {
			ca, cb := strconv.Itoa(codes[a]) == a, strconv.Itoa(codes[b]) == b
			if ca != cb {
				if ca {
					return 1
				}
				return -1
			}
			return strings.Compare(a, b)
		})
		for _, k := range keys {
			out[codes[k]] = responseFrom(r[k])
		}
	default:
		out[status] = responseFrom(in)
	}
	return out
}
