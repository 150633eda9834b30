package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
)

// Client 拉取远程文档 如文档覆盖文件和实体定义文件
type Client struct {
	opt     Option
	breaker *gobreaker.CircuitBreaker[[]byte]
}

type Option struct {
	// 默认使用带 trace 的 client 超时 10s
	Client *http.Client
	// 修改请求 比如统一添加auth 或 签名认证等信息
	ModifyRequest func(*http.Request)
	// 基础url
	BaseURL string
	// 熔断器配置 为空时不熔断
	BreakerSetting *gobreaker.Settings
	// 响应体大小上限 默认 8MB
	MaxBodySize int64
}

// StatusError 响应状态码不是 2xx
type StatusError struct {
	URL    string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: %d %s", e.URL, e.Status, e.Body)
}

const defaultMaxBodySize = 8 << 20

func NewClient(opt Option) *Client {
	if opt.Client == nil {
		opt.Client = NewHttpClient(10 * time.Second)
	}
	if opt.MaxBodySize <= 0 {
		opt.MaxBodySize = defaultMaxBodySize
	}
	c := &Client{opt: opt}
	if opt.BreakerSetting != nil {
		c.breaker = gobreaker.NewCircuitBreaker[[]byte](*opt.BreakerSetting)
	}
	return c
}

// IsRemote 是否为 http(s) 地址
func IsRemote(path string) bool {
	return strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://")
}

// Get 请求并返回响应体 非 2xx 返回 *StatusError
func (c *Client) Get(ctx context.Context, path string) ([]byte, error) {
	if c.breaker != nil {
		return c.breaker.Execute(func() ([]byte, error) {
			return c.get(ctx, path)
		})
	}
	return c.get(ctx, path)
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	url := path
	if !IsRemote(path) {
		url = c.opt.BaseURL + path
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	if c.opt.ModifyRequest != nil {
		c.opt.ModifyRequest(req)
	}
	res, err := c.opt.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	data, err := io.ReadAll(io.LimitReader(res.Body, c.opt.MaxBodySize))
	if err != nil {
		return nil, err
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, &StatusError{URL: url, Status: res.StatusCode, Body: strings.TrimSpace(string(data))}
	}
	return data, nil
}
