// Package selector 维护可勾选的目标目录列表，以及持久化的收藏/忽略清单。
package selector

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"

	"github.com/John-Robertt/mediacopy/internal/domain"
	"github.com/John-Robertt/mediacopy/internal/pathlist"
	"github.com/John-Robertt/mediacopy/internal/scan"
)

// ErrNotFound 表示目录不在活动列表中。
var ErrNotFound = errors.New("selector: 目录不在列表中")

// Selector 是目标目录的活动列表。
//
// 不变量：
// - folders 按 Path 唯一
// - 忽略清单中的目录不会出现在列表里
// - Favorite 标记与收藏清单一致
//
// 非并发安全：只应由 UI 循环访问。
type Selector struct {
	root      string
	recursive bool
	folders   []domain.DestinationFolder

	ignored   *pathlist.List
	favorites *pathlist.List
}

// New 构造一个空列表。
func New(ignored, favorites *pathlist.List) *Selector {
	return &Selector{ignored: ignored, favorites: favorites}
}

// LoadFolders 用 root 的子目录整体替换活动列表：排除忽略项，标记收藏项。
func (s *Selector) LoadFolders(root string, recursive bool) error {
	dirs, err := scan.ScanFolders(root, recursive)
	if err != nil {
		return err
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		abs = root
	}

	folders := make([]domain.DestinationFolder, 0, len(dirs))
	for _, d := range dirs {
		if s.ignored.Contains(d) {
			continue
		}
		folders = append(folders, s.newFolder(d))
	}
	s.root = abs
	s.recursive = recursive
	s.folders = folders
	return nil
}

func (s *Selector) newFolder(path string) domain.DestinationFolder {
	return domain.DestinationFolder{
		Path:     path,
		Name:     filepath.Base(path),
		Favorite: s.favorites.Contains(path),
	}
}

func (s *Selector) Root() string    { return s.root }
func (s *Selector) Recursive() bool { return s.recursive }
func (s *Selector) Len() int        { return len(s.folders) }

// Folders 返回活动列表副本。
func (s *Selector) Folders() []domain.DestinationFolder {
	out := make([]domain.DestinationFolder, len(s.folders))
	copy(out, s.folders)
	return out
}

// Get 按路径查找目录。
func (s *Selector) Get(path string) (domain.DestinationFolder, bool) {
	i := s.indexOf(path)
	if i < 0 {
		return domain.DestinationFolder{}, false
	}
	return s.folders[i], true
}

// AddFolder 追加一个未勾选的目录。
//
// 已存在返回 DuplicatePathError；在忽略清单中返回 IgnoredPathError；两种情况列表都不变。
func (s *Selector) AddFolder(path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return fmt.Errorf("selector: 路径不能为空")
	}
	abs, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return &domain.FileAccessError{Op: "stat", Path: path, Err: err}
	}
	if s.indexOf(abs) >= 0 {
		return &domain.DuplicatePathError{Path: abs}
	}
	if s.ignored.Contains(abs) {
		return &domain.IgnoredPathError{Path: abs}
	}
	fi, err := os.Stat(abs)
	if err != nil {
		return &domain.FileAccessError{Op: "stat", Path: abs, Err: err}
	}
	if !fi.IsDir() {
		return &domain.FileAccessError{Op: "stat", Path: abs, Err: fmt.Errorf("不是目录")}
	}
	s.folders = append(s.folders, s.newFolder(abs))
	return nil
}

// Remove 从活动列表移除目录（不写忽略清单）。
func (s *Selector) Remove(path string) bool {
	i := s.indexOf(path)
	if i < 0 {
		return false
	}
	s.folders = append(s.folders[:i], s.folders[i+1:]...)
	return true
}

// ToggleFavorite 切换收藏状态并写盘，返回新的收藏标记。
// 写盘失败时内存标记不变。
func (s *Selector) ToggleFavorite(path string) (bool, error) {
	i := s.indexOf(path)
	if i < 0 {
		return false, fmt.Errorf("%w：%q", ErrNotFound, path)
	}
	f := &s.folders[i]
	if f.Favorite {
		if err := s.favorites.Remove(path); err != nil {
			return true, err
		}
	} else {
		if err := s.favorites.Add(path); err != nil {
			return false, err
		}
	}
	f.Favorite = !f.Favorite
	return f.Favorite, nil
}

// Ignore 把目录写入忽略清单，并从活动列表移除。
func (s *Selector) Ignore(path string) error {
	if err := s.ignored.Add(path); err != nil {
		return err
	}
	s.Remove(path)
	return nil
}

// SetChecked 设置勾选状态。
func (s *Selector) SetChecked(path string, checked bool) error {
	i := s.indexOf(path)
	if i < 0 {
		return fmt.Errorf("%w：%q", ErrNotFound, path)
	}
	s.folders[i].Checked = checked
	return nil
}

// Toggle 翻转勾选状态。
func (s *Selector) Toggle(path string) error {
	i := s.indexOf(path)
	if i < 0 {
		return fmt.Errorf("%w：%q", ErrNotFound, path)
	}
	s.folders[i].Checked = !s.folders[i].Checked
	return nil
}

// Selected 返回已勾选的目录（列表顺序）。
func (s *Selector) Selected() []domain.DestinationFolder {
	var out []domain.DestinationFolder
	for _, f := range s.folders {
		if f.Checked {
			out = append(out, f)
		}
	}
	return out
}

// AnyChecked 报告是否至少勾选了一个目录。
func (s *Selector) AnyChecked() bool {
	for _, f := range s.folders {
		if f.Checked {
			return true
		}
	}
	return false
}

// ClearSelection 取消全部勾选。
func (s *Selector) ClearSelection() {
	for i := range s.folders {
		s.folders[i].Checked = false
	}
}

// Filter 返回展示名包含 query 的目录（大小写折叠匹配）。空 query 返回全部。
func (s *Selector) Filter(query string) []domain.DestinationFolder {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.Folders()
	}
	fold := cases.Fold()
	q := fold.String(query)
	var out []domain.DestinationFolder
	for _, f := range s.folders {
		if strings.Contains(fold.String(f.Name), q) {
			out = append(out, f)
		}
	}
	return out
}

func (s *Selector) indexOf(path string) int {
	for i, f := range s.folders {
		if f.Path == path {
			return i
		}
	}
	return -1
}
