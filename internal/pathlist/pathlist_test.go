package pathlist

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_CreatesMissingFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "state", "IgnoredPaths.txt")
	l, err := Load(p)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if l.Len() != 0 {
		t.Fatalf("期望空清单，实际 %d", l.Len())
	}
	if _, err := os.Stat(p); err != nil {
		t.Fatalf("期望创建空文件：%v", err)
	}
}

func TestLoad_ReadsExistingAndDedups(t *testing.T) {
	p := filepath.Join(t.TempDir(), "FavoritePaths.txt")
	if err := os.WriteFile(p, []byte("/a\r\n\n/b\n/a\n"), 0o644); err != nil {
		t.Fatalf("写入失败：%v", err)
	}
	l, err := Load(p)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	got := l.Items()
	if len(got) != 2 || got[0] != "/a" || got[1] != "/b" {
		t.Fatalf("Items 不符合预期：%v", got)
	}
	if !l.Contains("/a") || l.Contains("/A") {
		t.Fatalf("应为精确匹配")
	}
}

func TestAdd_AppendsAndPersists(t *testing.T) {
	p := filepath.Join(t.TempDir(), "IgnoredPaths.txt")
	if err := os.WriteFile(p, []byte("/x"), 0o644); err != nil {
		t.Fatalf("写入失败：%v", err)
	}
	l, err := Load(p)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if err := l.Add("/y"); err != nil {
		t.Fatalf("Add 失败：%v", err)
	}
	if err := l.Add("/y"); err != nil {
		t.Fatalf("重复 Add 不应报错：%v", err)
	}
	b, err := os.ReadFile(p)
	if err != nil {
		t.Fatalf("读取失败：%v", err)
	}
	if string(b) != "/x\n/y\n" {
		t.Fatalf("文件内容不符合预期：%q", string(b))
	}

	again, err := Load(p)
	if err != nil {
		t.Fatalf("重新加载失败：%v", err)
	}
	if !again.Contains("/y") {
		t.Fatalf("重新加载后应包含 /y")
	}
}

func TestAdd_RejectsNewline(t *testing.T) {
	l, err := Load(filepath.Join(t.TempDir(), "l.txt"))
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if err := l.Add("/a\n/b"); err == nil {
		t.Fatalf("期望错误，但得到 nil")
	}
	if err := l.Add("  "); err == nil {
		t.Fatalf("期望错误，但得到 nil")
	}
}

func TestRemove_RewritesAtomically(t *testing.T) {
	p := filepath.Join(t.TempDir(), "FavoritePaths.txt")
	if err := os.WriteFile(p, []byte("/a\n/b\n/a\n/c\n"), 0o644); err != nil {
		t.Fatalf("写入失败：%v", err)
	}
	l, err := Load(p)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if err := l.Remove("/a"); err != nil {
		t.Fatalf("Remove 失败：%v", err)
	}
	b, err := os.ReadFile(p)
	if err != nil {
		t.Fatalf("读取失败：%v", err)
	}
	if string(b) != "/b\n/c\n" {
		t.Fatalf("文件内容不符合预期：%q", string(b))
	}
	if l.Contains("/a") {
		t.Fatalf("内存状态应已移除 /a")
	}
}

func TestToggleTwice_RestoresSet(t *testing.T) {
	p := filepath.Join(t.TempDir(), "FavoritePaths.txt")
	if err := os.WriteFile(p, []byte("/a\n/b\n"), 0o644); err != nil {
		t.Fatalf("写入失败：%v", err)
	}
	l, err := Load(p)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if err := l.Add("/z"); err != nil {
		t.Fatalf("Add 失败：%v", err)
	}
	if err := l.Remove("/z"); err != nil {
		t.Fatalf("Remove 失败：%v", err)
	}
	got := l.Items()
	if len(got) != 2 || got[0] != "/a" || got[1] != "/b" {
		t.Fatalf("两次切换后集合应复原：%v", got)
	}
}
