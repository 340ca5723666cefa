package trash

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/John-Robertt/mediacopy/internal/infra/fsx"
)

// maxNameAttempts 限制同名冲突时的重试次数（a.jpg, a.2.jpg, ... a.N.jpg）。
const maxNameAttempts = 1000

// Bin 是一个可恢复的回收站目录。
//
// 布局遵循 freedesktop.org Trash 规范：
//
//	<Root>/files/<name>       被回收的文件
//	<Root>/info/<name>.trashinfo  原路径与删除时间
//
// Flat=true 时（macOS ~/.Trash）只移动文件，不写 info。
type Bin struct {
	Root string
	Flat bool

	now func() time.Time
}

// Default 返回当前用户的回收站。
//
// - linux/bsd：$XDG_DATA_HOME/Trash（默认 ~/.local/share/Trash）
// - darwin：~/.Trash（flat）
// - 其它平台：fallbackDir（通常是 <state_dir>/Trash）
func Default(fallbackDir string) (*Bin, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		if fallbackDir == "" {
			return nil, err
		}
		return &Bin{Root: fallbackDir}, nil
	}

	switch runtime.GOOS {
	case "darwin":
		return &Bin{Root: filepath.Join(home, ".Trash"), Flat: true}, nil
	case "windows":
		if fallbackDir == "" {
			return nil, errors.New("trash: 未配置回收目录")
		}
		return &Bin{Root: fallbackDir}, nil
	default:
		data := strings.TrimSpace(os.Getenv("XDG_DATA_HOME"))
		if data == "" {
			data = filepath.Join(home, ".local", "share")
		}
		return &Bin{Root: filepath.Join(data, "Trash")}, nil
	}
}

// Trash 把 path 移入回收站，返回回收站内的新路径。
//
// 步骤：先用 O_EXCL 抢占 info 名字，再移动文件；移动失败会撤销 info。
func (b *Bin) Trash(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	fi, err := os.Lstat(abs)
	if err != nil {
		return "", err
	}
	if fi.IsDir() {
		return "", &fsx.PathTypeConflictError{Path: abs, Want: "file", Got: "dir"}
	}

	filesDir := filepath.Join(b.Root, "files")
	infoDir := filepath.Join(b.Root, "info")
	if b.Flat {
		filesDir = b.Root
	}
	if err := os.MkdirAll(filesDir, 0o700); err != nil {
		return "", err
	}
	if !b.Flat {
		if err := os.MkdirAll(infoDir, 0o700); err != nil {
			return "", err
		}
	}

	base := filepath.Base(abs)
	for attempt := 1; attempt <= maxNameAttempts; attempt++ {
		name := candidateName(base, attempt)
		dst := filepath.Join(filesDir, name)
		if _, err := os.Lstat(dst); err == nil {
			continue
		}

		if b.Flat {
			if err := fsx.MoveFile(abs, dst); err != nil {
				return "", err
			}
			return dst, nil
		}

		infoName := name + ".trashinfo"
		err := fsx.WriteFileAtomicNoOverwrite(infoDir, infoName, b.infoContent(abs))
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			return "", err
		}
		if err := fsx.MoveFile(abs, dst); err != nil {
			_ = os.Remove(filepath.Join(infoDir, infoName))
			return "", err
		}
		return dst, nil
	}
	return "", fmt.Errorf("trash: 同名文件过多：%q", base)
}

func (b *Bin) infoContent(abs string) []byte {
	now := time.Now
	if b.now != nil {
		now = b.now
	}
	escaped := (&url.URL{Path: filepath.ToSlash(abs)}).EscapedPath()
	return []byte(fmt.Sprintf("[Trash Info]\nPath=%s\nDeletionDate=%s\n",
		escaped, now().Format("2006-01-02T15:04:05")))
}

// candidateName 生成第 attempt 次尝试的文件名：a.jpg, a.2.jpg, a.3.jpg ...
func candidateName(base string, attempt int) string {
	if attempt <= 1 {
		return base
	}
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	return stem + "." + strconv.Itoa(attempt) + ext
}
