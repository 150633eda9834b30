package oas

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTitle(t *testing.T) {
	for in, want := range map[string]string{
		"get person":         "Get Person",
		"post ":              "Post",
		"koa-swagger-router": "Koa Swagger Router",
		"getPersonList":      "Get Person List",
		"person_service":     "Person Service",
		"":                   "",
	} {
		assert.Equal(t, want, Title(in), in)
	}
}
