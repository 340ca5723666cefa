// Package opener 用系统默认程序打开 URL / 文件 / 目录。
package opener

import (
	"errors"
	"io"
	"os"
	"strings"

	"github.com/pkg/browser"
)

func init() {
	// 终端由 TUI 独占：xdg-open/open 的输出不能写到 stdout/stderr。
	browser.Stdout = io.Discard
	browser.Stderr = io.Discard
}

// System 通过 pkg/browser 调用系统处理程序。
type System struct{}

// OpenURL 用默认浏览器打开 u。
func (System) OpenURL(u string) error {
	u = strings.TrimSpace(u)
	if u == "" {
		return errors.New("opener: url 不能为空")
	}
	return browser.OpenURL(u)
}

// OpenPath 用默认程序打开文件或目录；路径不存在时直接返回错误（不启动外部进程）。
func (System) OpenPath(p string) error {
	if _, err := os.Stat(p); err != nil {
		return err
	}
	return browser.OpenFile(p)
}
