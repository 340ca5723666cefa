package trash

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestBin_Trash_MovesFileAndWritesInfo(t *testing.T) {
	root := filepath.Join(t.TempDir(), "Trash")
	src := filepath.Join(t.TempDir(), "my photo.jpg")
	if err := os.WriteFile(src, []byte("x"), 0o644); err != nil {
		t.Fatalf("写入源文件失败：%v", err)
	}

	b := &Bin{Root: root, now: func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }}
	dst, err := b.Trash(src)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if dst != filepath.Join(root, "files", "my photo.jpg") {
		t.Fatalf("回收路径不符合预期：%q", dst)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Fatalf("源文件应已移走：%v", err)
	}

	info, err := os.ReadFile(filepath.Join(root, "info", "my photo.jpg.trashinfo"))
	if err != nil {
		t.Fatalf("读取 trashinfo 失败：%v", err)
	}
	s := string(info)
	if !strings.HasPrefix(s, "[Trash Info]\n") {
		t.Fatalf("trashinfo 缺少头部：%q", s)
	}
	if !strings.Contains(s, "my%20photo.jpg") {
		t.Fatalf("Path 应做 URL 转义：%q", s)
	}
	if !strings.Contains(s, "DeletionDate=2026-03-01T12:00:00") {
		t.Fatalf("DeletionDate 不符合预期：%q", s)
	}
}

func TestBin_Trash_NameCollision(t *testing.T) {
	root := filepath.Join(t.TempDir(), "Trash")
	b := &Bin{Root: root}

	for i := 0; i < 2; i++ {
		src := filepath.Join(t.TempDir(), "a.jpg")
		if err := os.WriteFile(src, []byte("x"), 0o644); err != nil {
			t.Fatalf("写入源文件失败：%v", err)
		}
		if _, err := b.Trash(src); err != nil {
			t.Fatalf("第 %d 次回收失败：%v", i+1, err)
		}
	}

	if _, err := os.Stat(filepath.Join(root, "files", "a.2.jpg")); err != nil {
		t.Fatalf("同名文件应改名为 a.2.jpg：%v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "info", "a.2.jpg.trashinfo")); err != nil {
		t.Fatalf("同名文件应有对应的 trashinfo：%v", err)
	}
}

func TestBin_Trash_MissingSource(t *testing.T) {
	b := &Bin{Root: t.TempDir()}
	if _, err := b.Trash(filepath.Join(t.TempDir(), "nope.jpg")); err == nil {
		t.Fatalf("期望错误，但得到 nil")
	}
}

func TestBin_Trash_Flat(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(t.TempDir(), "a.jpg")
	if err := os.WriteFile(src, []byte("x"), 0o644); err != nil {
		t.Fatalf("写入源文件失败：%v", err)
	}
	b := &Bin{Root: root, Flat: true}
	dst, err := b.Trash(src)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if dst != filepath.Join(root, "a.jpg") {
		t.Fatalf("flat 模式应直接放在 Root 下：%q", dst)
	}
	if _, err := os.Stat(filepath.Join(root, "info")); !os.IsNotExist(err) {
		t.Fatalf("flat 模式不应创建 info 目录")
	}
}
