package web

import (
	"net/http"
	"reflect"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

var autoBindTags = []string{"header", "json", "form", "uri"}

func deepfindTags(t reflect.Type, m map[string]bool) {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return
	}
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.Anonymous {
			deepfindTags(field.Type, m)
			continue
		}
		for _, v := range autoBindTags {
			if _, ok := field.Tag.Lookup(v); ok {
				m[v] = true
			}
		}
	}
}

func checkReqParam(ctx *gin.Context, obj any, tags map[string]bool) error {
	if tags["header"] {
		if err := ctx.ShouldBindHeader(obj); err != nil {
			return err
		}
	}
	bodyless := ctx.Request.Method != http.MethodGet && ctx.Request.ContentLength == 0
	// query 使用 form 的字段 json 请求或空请求体时 form 绑定会失效 需要单独绑定 query
	if tags["form"] && ctx.Request.Method != http.MethodGet &&
		(bodyless || ctx.ContentType() == binding.MIMEJSON) {
		if err := ctx.ShouldBindQuery(obj); err != nil {
			return err
		}
	}
	if (tags["json"] || tags["form"]) && !bodyless {
		if err := ctx.ShouldBind(obj); err != nil {
			return err
		}
	}
	// uri 优先级最高 放到最后防止被覆盖
	if tags["uri"] && len(ctx.Params) > 0 {
		if err := ctx.ShouldBindUri(obj); err != nil {
			return err
		}
	}
	return nil
}
