// Package session 维护一次浏览会话：按扫描顺序排列的条目与当前位置。
package session

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/cases"

	"github.com/John-Robertt/mediacopy/internal/domain"
	"github.com/John-Robertt/mediacopy/internal/scan"
)

var (
	// ErrCannotAdvance 表示当前已是最后一项（或没有当前项）。
	ErrCannotAdvance = errors.New("session: 无法前进")
	// ErrCannotRetreat 表示当前已是第一项。
	ErrCannotRetreat = errors.New("session: 无法后退")
	// ErrNotFound 表示 Jump 的目标不在会话中。
	ErrNotFound = errors.New("session: 条目不存在")
)

// Session 是单个源目录的浏览状态。
//
// 不变量：0 <= index <= len(entries)；index == len(entries) 时没有当前项。
// 非并发安全：只应由 UI 循环访问。
type Session struct {
	id        string
	root      string
	recursive bool

	entries []domain.MediaEntry
	index   int
	initial int
}

// New 用已扫描的条目构造会话（index=0）。
func New(root string, entries []domain.MediaEntry) *Session {
	cp := make([]domain.MediaEntry, len(entries))
	copy(cp, entries)
	return &Session{
		id:      uuid.NewString(),
		root:    root,
		entries: cp,
		initial: len(cp),
	}
}

// Load 扫描 root 并构造会话，只保留扩展名在 enabled 中的文件。
func Load(root string, recursive bool, enabled []string) (*Session, error) {
	entries, err := scan.ScanMedia(root, recursive, enabled)
	if err != nil {
		return nil, err
	}
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	s := New(root, entries)
	s.recursive = recursive
	return s, nil
}

func (s *Session) ID() string      { return s.id }
func (s *Session) Root() string    { return s.root }
func (s *Session) Recursive() bool { return s.recursive }
func (s *Session) Len() int        { return len(s.entries) }
func (s *Session) Index() int      { return s.index }
func (s *Session) Initial() int    { return s.initial }

// Remaining 返回尚未处理（仍在列表中）的条目数。
func (s *Session) Remaining() int { return len(s.entries) }

// Entries 返回条目副本。
func (s *Session) Entries() []domain.MediaEntry {
	out := make([]domain.MediaEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Current 返回当前条目；index 越界时 ok=false。
func (s *Session) Current() (domain.MediaEntry, bool) {
	if s.index < 0 || s.index >= len(s.entries) {
		return domain.MediaEntry{}, false
	}
	return s.entries[s.index], true
}

func (s *Session) CanAdvance() bool { return s.index+1 < len(s.entries) }
func (s *Session) CanRetreat() bool { return s.index != 0 }

// Advance 前进一项；不满足 CanAdvance 时返回错误且不改变状态。
func (s *Session) Advance() error {
	if !s.CanAdvance() {
		return fmt.Errorf("%w：index=%d len=%d", ErrCannotAdvance, s.index, len(s.entries))
	}
	s.index++
	return nil
}

// Retreat 后退一项；不满足 CanRetreat 时返回错误且不改变状态。
func (s *Session) Retreat() error {
	if !s.CanRetreat() {
		return fmt.Errorf("%w：index=%d", ErrCannotRetreat, s.index)
	}
	s.index--
	return nil
}

// Skip 跳过当前项（不删除），最多到 index == len。
func (s *Session) Skip() {
	if s.index < len(s.entries) {
		s.index++
	}
}

// RemoveCurrent 删除当前项，index 不动（指向原来的下一项）。
func (s *Session) RemoveCurrent() (domain.MediaEntry, bool) {
	e, ok := s.Current()
	if !ok {
		return domain.MediaEntry{}, false
	}
	s.entries = append(s.entries[:s.index], s.entries[s.index+1:]...)
	return e, true
}

// Refresh 在越过末尾时回绕到第一项；列表为空时 index=0。
func (s *Session) Refresh() {
	if len(s.entries) == 0 || s.index >= len(s.entries) {
		s.index = 0
	}
}

// Progress 返回已处理比例 (initial-remaining)/initial；initial=0 时为 1。
func (s *Session) Progress() float64 {
	if s.initial == 0 {
		return 1.0
	}
	return float64(s.initial-len(s.entries)) / float64(s.initial)
}

// Filter 返回文件名包含 query 的条目（大小写折叠匹配，保持原顺序）。空 query 返回全部。
func (s *Session) Filter(query string) []domain.MediaEntry {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.Entries()
	}
	fold := cases.Fold()
	q := fold.String(query)
	var out []domain.MediaEntry
	for _, e := range s.entries {
		if strings.Contains(fold.String(e.Name), q) {
			out = append(out, e)
		}
	}
	return out
}

// Jump 把 index 移到 path 对应的条目。
func (s *Session) Jump(path string) error {
	for i, e := range s.entries {
		if e.Path == path {
			s.index = i
			return nil
		}
	}
	return fmt.Errorf("%w：%q", ErrNotFound, path)
}
