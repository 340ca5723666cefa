// Package httpx 构造上传图片用的 HTTP client。
package httpx

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/John-Robertt/mediacopy/internal/logging"
)

const (
	defaultTimeout   = 60 * time.Second
	defaultUserAgent = "Mozilla/5.0 (compatible; mediacopy/1.0)"
)

// Options 描述上传 client 的网络策略。
type Options struct {
	// ProxyURL 非空时所有请求走该代理。
	ProxyURL string
	// Timeout 覆盖上传与读取响应；<=0 时为 60s。
	Timeout   time.Duration
	UserAgent string
	Logger    *slog.Logger
}

// Transport 补齐 User-Agent，并把每次往返写入 debug 日志。
//
// 不做重试：上传是非幂等的 POST，失败直接交给调用方展示。
type Transport struct {
	Base      http.RoundTripper
	UserAgent string
	Logger    *slog.Logger
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req == nil {
		return nil, errors.New("nil request")
	}
	if t.Base == nil {
		return nil, errors.New("nil base transport")
	}

	r := req
	if req.Header.Get("User-Agent") == "" && t.UserAgent != "" {
		r = req.Clone(req.Context())
		r.Header.Set("User-Agent", t.UserAgent)
	}

	start := time.Now()
	resp, err := t.Base.RoundTrip(r)
	if t.Logger != nil {
		attrs := []any{"method", r.Method, "host", r.URL.Host, "duration", time.Since(start)}
		if err != nil {
			t.Logger.Debug("http 请求失败", append(attrs, "error", err)...)
		} else {
			t.Logger.Debug("http 请求完成", append(attrs, "status", resp.StatusCode)...)
		}
	}
	return resp, err
}

// NewUploadClient 按 Options 构造 client。
//
// 规则：
// - 配置了代理：走代理且禁用 keep-alive（代理常见的空闲连接复用问题）
// - 未配置代理：不读取环境变量里的代理，行为可预测
func NewUploadClient(opts Options) (*http.Client, error) {
	base := &http.Transport{
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
	}

	if p := strings.TrimSpace(opts.ProxyURL); p != "" {
		u, err := url.Parse(p)
		if err != nil {
			return nil, err
		}
		if u.Scheme == "" || u.Host == "" {
			return nil, errors.New("proxy_url 缺少 scheme 或 host")
		}
		base.Proxy = http.ProxyURL(u)
		base.DisableKeepAlives = true
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ua := strings.TrimSpace(opts.UserAgent)
	if ua == "" {
		ua = defaultUserAgent
	}

	var log *slog.Logger
	if opts.Logger != nil {
		log = logging.Component(opts.Logger, "httpx")
	}
	return &http.Client{
		Transport: &Transport{Base: base, UserAgent: ua, Logger: log},
		Timeout:   timeout,
	}, nil
}
