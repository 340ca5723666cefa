//go:build unix

package fsx

import (
	"errors"

	"golang.org/x/sys/unix"
)

// isCrossDevice 报告 rename 是否因源和目标不在同一文件系统而失败。
// *os.LinkError 实现了 Unwrap，errors.Is 可以直接穿透。
func isCrossDevice(err error) bool {
	return errors.Is(err, unix.EXDEV)
}
