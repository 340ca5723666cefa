//go:build windows

package fsx

import (
	"errors"

	"golang.org/x/sys/windows"
)

// 回收目录在另一个盘符时，MoveFileEx 返回 ERROR_NOT_SAME_DEVICE。
func isCrossDevice(err error) bool {
	return errors.Is(err, windows.ERROR_NOT_SAME_DEVICE)
}
