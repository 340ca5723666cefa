package imagebin

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/John-Robertt/mediacopy/internal/search"
)

// maxResponseBytes 限制响应体读取上限（正常响应只有几十字节）。
const maxResponseBytes = 1 << 20

// Provider 实现 imagebin.ca 的上传与响应解析。
//
// 请求：multipart POST，字段 key / dl_limit=1 / file。
// 响应：纯文本或 HTML，正文中第一个 http 开头的 token 即图片 URL。
type Provider struct {
	Endpoint string
	Key      string
}

func (Provider) Name() string { return "imagebin" }

func (p Provider) Upload(ctx context.Context, c *http.Client, path string) ([]byte, error) {
	if c == nil {
		return nil, errors.New("http client 不能为空")
	}
	if strings.TrimSpace(p.Endpoint) == "" {
		return nil, errors.New("endpoint 不能为空")
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("key", p.Key); err != nil {
		return nil, err
	}
	if err := mw.WriteField("dl_limit", "1"); err != nil {
		return nil, err
	}
	fw, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(fw, f); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.Endpoint, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &search.HTTPStatusError{URL: p.Endpoint, StatusCode: resp.StatusCode}
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
}

// Parse 取正文文本中第一个以 http:// 或 https:// 开头的 token。
func (Provider) Parse(body []byte) (string, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return "", errors.New("响应为空")
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	text := doc.Text()
	for {
		i := strings.Index(text, "http")
		if i < 0 {
			return "", errors.New("响应中没有图片 URL")
		}
		tok := text[i:]
		if j := strings.IndexFunc(tok, isSpace); j >= 0 {
			tok = tok[:j]
		}
		if strings.HasPrefix(tok, "http://") || strings.HasPrefix(tok, "https://") {
			return tok, nil
		}
		// "httpd" 这类词不是 URL，继续找下一个。
		text = text[i+len("http"):]
	}
}

func isSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}
