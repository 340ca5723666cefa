// Package search 实现以图搜图：上传当前图片到图床，再用图片 URL 打开搜索引擎。
package search

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// Provider 把“图床差异”限制在 provider 包内部；Searcher 只依赖统一接口。
//
// 约束：
// - Upload 不做重试（由 http client 统一控制超时）
// - Parse 必须是纯函数：相同输入 => 相同输出
type Provider interface {
	Name() string
	Upload(ctx context.Context, c *http.Client, path string) (body []byte, err error)
	Parse(body []byte) (imageURL string, err error)
}

// Registry 是 provider 的只读注册表（按 name 索引）。
type Registry struct {
	byName map[string]Provider
}

func NewRegistry(providers ...Provider) (Registry, error) {
	byName := make(map[string]Provider, len(providers))
	for _, p := range providers {
		if p == nil {
			return Registry{}, fmt.Errorf("provider 不能为空")
		}
		name := strings.ToLower(strings.TrimSpace(p.Name()))
		if name == "" {
			return Registry{}, fmt.Errorf("provider.Name 不能为空")
		}
		if _, ok := byName[name]; ok {
			return Registry{}, fmt.Errorf("重复的 provider：%q", name)
		}
		byName[name] = p
	}
	return Registry{byName: byName}, nil
}

func (r Registry) Get(name string) (Provider, bool) {
	if r.byName == nil {
		return nil, false
	}
	p, ok := r.byName[strings.ToLower(strings.TrimSpace(name))]
	return p, ok
}

// HTTPStatusError 表示图床返回了非 2xx 的 HTTP 状态码。
type HTTPStatusError struct {
	URL        string
	StatusCode int
}

func (e *HTTPStatusError) Error() string {
	if e == nil {
		return "HTTP status error"
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}
