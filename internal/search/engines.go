package search

import (
	"fmt"
	"net/url"
	"strings"
)

// engineTemplates 中的 %s 会被替换为 QueryEscape 后的图片 URL。
var engineTemplates = map[string]string{
	"google": "https://www.google.com/searchbyimage?site=search&sa=X&image_url=%s",
	"bing":   "https://www.bing.com/images/search?view=detailv2&iss=sbi&q=imgurl:%s",
	"yandex": "https://yandex.com/images/search?rpt=imageview&url=%s",
}

// SearchURL 用搜索引擎模板拼出以图搜图地址。
func SearchURL(engine, imageURL string) (string, error) {
	tpl, ok := engineTemplates[strings.ToLower(strings.TrimSpace(engine))]
	if !ok {
		return "", fmt.Errorf("未知搜索引擎：%q", engine)
	}
	imageURL = strings.TrimSpace(imageURL)
	if imageURL == "" {
		return "", fmt.Errorf("图片 URL 不能为空")
	}
	return fmt.Sprintf(tpl, url.QueryEscape(imageURL)), nil
}
