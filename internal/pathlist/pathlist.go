// Package pathlist 维护以换行分隔的路径清单（IgnoredPaths.txt / FavoritePaths.txt）。
package pathlist

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gofrs/flock"

	"github.com/John-Robertt/mediacopy/internal/domain"
	"github.com/John-Robertt/mediacopy/internal/infra/fsx"
)

// List 是内存中的路径集合，与磁盘文件保持一致。
//
// 约束：
// - 精确字符串匹配（不做 Clean/大小写归一）
// - 写操作持有 <file>.lock 文件锁；内存状态只在写盘成功后更新
type List struct {
	mu    sync.Mutex
	path  string
	items []string
	set   map[string]struct{}
}

// Load 读取清单文件；文件不存在时创建空文件。
func Load(path string) (*List, error) {
	path = filepath.Clean(strings.TrimSpace(path))
	if path == "." || path == "" {
		return nil, fmt.Errorf("pathlist: 路径不能为空")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, &domain.FileAccessError{Op: "mkdir", Path: filepath.Dir(path), Err: err}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDONLY, 0o644)
	if err != nil {
		return nil, &domain.FileAccessError{Op: "open", Path: path, Err: err}
	}
	_ = f.Close()

	items, err := readLines(path)
	if err != nil {
		return nil, err
	}
	l := &List{path: path}
	l.reset(items)
	return l, nil
}

// Path 返回清单文件路径。
func (l *List) Path() string { return l.path }

// Contains 判断 p 是否在清单中。
func (l *List) Contains(p string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.set[p]
	return ok
}

// Items 返回清单副本（文件中的顺序，去重）。
func (l *List) Items() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.items))
	copy(out, l.items)
	return out
}

// Len 返回清单条目数。
func (l *List) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.items)
}

// Add 追加 p（已存在则不写盘）。
func (l *List) Add(p string) error {
	if err := validEntry(p); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.set[p]; ok {
		return nil
	}

	unlock, err := l.lock()
	if err != nil {
		return err
	}
	defer unlock()

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		return &domain.FileAccessError{Op: "open", Path: l.path, Err: err}
	}
	line := p + "\n"
	if needsLeadingNewline(f) {
		line = "\n" + line
	}
	if _, err := f.WriteString(line); err != nil {
		_ = f.Close()
		return &domain.FileAccessError{Op: "write", Path: l.path, Err: err}
	}
	if err := f.Close(); err != nil {
		return &domain.FileAccessError{Op: "write", Path: l.path, Err: err}
	}

	l.items = append(l.items, p)
	l.set[p] = struct{}{}
	return nil
}

// Remove 删除 p 的所有出现，整文件原子重写。
//
// 重写基于磁盘上的最新内容（其它进程追加的行会保留）。
func (l *List) Remove(p string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	unlock, err := l.lock()
	if err != nil {
		return err
	}
	defer unlock()

	disk, err := readLines(l.path)
	if err != nil {
		return err
	}
	kept := make([]string, 0, len(disk))
	for _, it := range disk {
		if it != p {
			kept = append(kept, it)
		}
	}

	var buf bytes.Buffer
	for _, it := range kept {
		buf.WriteString(it)
		buf.WriteByte('\n')
	}
	if err := fsx.WriteFileAtomicReplace(filepath.Dir(l.path), filepath.Base(l.path), buf.Bytes()); err != nil {
		return &domain.FileAccessError{Op: "write", Path: l.path, Err: err}
	}
	l.reset(kept)
	return nil
}

func (l *List) reset(items []string) {
	l.items = l.items[:0]
	l.set = make(map[string]struct{}, len(items))
	for _, it := range items {
		if _, ok := l.set[it]; ok {
			continue
		}
		l.set[it] = struct{}{}
		l.items = append(l.items, it)
	}
}

func (l *List) lock() (func(), error) {
	fl := flock.New(l.path + ".lock")
	if err := fl.Lock(); err != nil {
		return nil, &domain.FileAccessError{Op: "lock", Path: l.path, Err: err}
	}
	return func() { _ = fl.Unlock() }, nil
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &domain.FileAccessError{Op: "read", Path: path, Err: err}
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	if err := sc.Err(); err != nil {
		return nil, &domain.FileAccessError{Op: "read", Path: path, Err: err}
	}
	return out, nil
}

// needsLeadingNewline 判断文件末尾是否缺少换行（手工编辑过的清单常见）。
func needsLeadingNewline(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil || fi.Size() == 0 {
		return false
	}
	b := make([]byte, 1)
	if _, err := f.ReadAt(b, fi.Size()-1); err != nil {
		return false
	}
	return b[0] != '\n'
}

func validEntry(p string) error {
	if strings.TrimSpace(p) == "" {
		return fmt.Errorf("pathlist: 路径不能为空")
	}
	if strings.ContainsAny(p, "\r\n") {
		return fmt.Errorf("pathlist: 路径包含换行：%q", p)
	}
	return nil
}
