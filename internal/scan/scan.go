package scan

import (
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/John-Robertt/mediacopy/internal/domain"
)

// ScanMedia 扫描 root 下扩展名已启用的媒体文件。
//
// 规则（硬约束）：
// - recursive=false：只看 root 顶层文件
// - 扩展名匹配：小写文件名以某个启用扩展名结尾（允许 ".tar.gz" 这类多段扩展名）
// - 保持文件系统枚举顺序（WalkDir 的字典序），不做二次排序
//
// 注意：扫描阶段只做 stat（DirEntry.Info），不读文件内容。
func ScanMedia(root string, recursive bool, enabled []string) ([]domain.MediaEntry, error) {
	root, walkRoot, err := resolveRoot(root)
	if err != nil {
		return nil, err
	}
	exts := normalizeExts(enabled)

	files := make([]domain.MediaEntry, 0, 128)
	err = filepath.WalkDir(walkRoot, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return &domain.FileAccessError{Op: "scan", Path: path, Err: walkErr}
		}
		path = rebase(path, walkRoot, root)

		if d.IsDir() {
			if path != root && !recursive {
				return filepath.SkipDir
			}
			return nil
		}

		name := d.Name()
		ext, ok := matchExt(strings.ToLower(name), exts)
		if !ok {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return &domain.FileAccessError{Op: "stat", Path: path, Err: err}
		}
		if !info.Mode().IsRegular() {
			return nil
		}

		files = append(files, domain.MediaEntry{
			Path:    path,
			Name:    name,
			Ext:     ext,
			Size:    info.Size(),
			ModTime: info.ModTime(),
			Kind:    domain.KindOf(ext),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// ScanFolders 枚举 root 下的子目录（不含 root 本身）。
// recursive=true 时包含所有层级的子目录，顺序为 WalkDir 的先序遍历。
func ScanFolders(root string, recursive bool) ([]string, error) {
	root, walkRoot, err := resolveRoot(root)
	if err != nil {
		return nil, err
	}

	dirs := make([]string, 0, 32)
	err = filepath.WalkDir(walkRoot, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return &domain.FileAccessError{Op: "scan", Path: path, Err: walkErr}
		}
		path = rebase(path, walkRoot, root)
		if !d.IsDir() || path == root {
			return nil
		}
		dirs = append(dirs, path)
		if !recursive {
			return filepath.SkipDir
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dirs, nil
}

// resolveRoot 返回 root 的绝对路径与实际遍历的路径。
//
// WalkDir 不会跟随作为根的符号链接（macOS 的 /tmp 就是一个），
// 所以遍历解析后的真实目录；返回给调用方的路径仍以用户给出的 root 为前缀。
func resolveRoot(root string) (abs, walk string, err error) {
	abs, err = filepath.Abs(filepath.Clean(root))
	if err != nil {
		return "", "", err
	}
	walk, err = filepath.EvalSymlinks(abs)
	if err != nil {
		return "", "", &domain.FileAccessError{Op: "scan", Path: abs, Err: err}
	}
	return abs, walk, nil
}

// rebase 把 walk 下的 path 换回 abs 前缀。
func rebase(path, walk, abs string) string {
	if walk == abs {
		return path
	}
	rel, err := filepath.Rel(walk, path)
	if err != nil {
		return path
	}
	return filepath.Join(abs, rel)
}

func normalizeExts(enabled []string) []string {
	out := make([]string, 0, len(enabled))
	for _, x := range enabled {
		x = strings.ToLower(strings.TrimSpace(x))
		if x == "" {
			continue
		}
		if !strings.HasPrefix(x, ".") {
			x = "." + x
		}
		out = append(out, x)
	}
	return out
}

// matchExt 返回匹配到的扩展名；多个命中时取最长的那个（".tar.gz" 优先于 ".gz"）。
func matchExt(lowerName string, exts []string) (string, bool) {
	best := ""
	for _, x := range exts {
		if strings.HasSuffix(lowerName, x) && len(x) > len(best) {
			best = x
		}
	}
	return best, best != ""
}
