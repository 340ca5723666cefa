package main

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/John-Robertt/mediacopy/internal/app"
	"github.com/John-Robertt/mediacopy/internal/app/engine"
	"github.com/John-Robertt/mediacopy/internal/config"
	"github.com/John-Robertt/mediacopy/internal/pathlist"
	"github.com/John-Robertt/mediacopy/internal/selector"
)

type recordingTrash struct{ paths []string }

func (r *recordingTrash) Trash(path string) (string, error) {
	r.paths = append(r.paths, path)
	return "", os.Remove(path)
}

func writePNG(t *testing.T, path string) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 6))
	for y := 0; y < 6; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 30), G: uint8(y * 40), B: 200, A: 255})
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("创建图片失败：%v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("编码图片失败：%v", err)
	}
}

type tuiFixture struct {
	m     *model
	src   string
	dest  string
	trash *recordingTrash
}

func newTUIFixture(t *testing.T) *tuiFixture {
	t.Helper()
	root := t.TempDir()
	f := &tuiFixture{
		src:   filepath.Join(root, "src"),
		dest:  filepath.Join(root, "dest"),
		trash: &recordingTrash{},
	}
	for _, d := range []string{f.src, filepath.Join(f.dest, "Cats"), filepath.Join(f.dest, "Dogs")} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			t.Fatalf("创建目录失败：%v", err)
		}
	}
	writePNG(t, filepath.Join(f.src, "a.png"))
	writePNG(t, filepath.Join(f.src, "b.png"))
	writePNG(t, filepath.Join(f.src, "c.png"))

	ignored, err := pathlist.Load(filepath.Join(root, "state", "IgnoredPaths.txt"))
	if err != nil {
		t.Fatalf("加载清单失败：%v", err)
	}
	favorites, err := pathlist.Load(filepath.Join(root, "state", "FavoritePaths.txt"))
	if err != nil {
		t.Fatalf("加载清单失败：%v", err)
	}
	activity := newActivityLog(5)
	a, err := app.New(app.Options{
		Prefs:    config.DefaultPreferences(),
		Selector: selector.New(ignored, favorites),
		Engine:   &engine.Engine{Trash: f.trash, Observer: activity, ResetSelections: true},

		DeleteAfterCopy: true,
	})
	if err != nil {
		t.Fatalf("构造 App 失败：%v", err)
	}

	openInitial(a, activity, f.src, f.dest)
	f.m = newModel(context.Background(), a, activity)
	f.m.Update(tea.WindowSizeMsg{Width: 80, Height: 30})
	return f
}

func (f *tuiFixture) press(msgs ...tea.KeyMsg) tea.Cmd {
	var cmd tea.Cmd
	for _, msg := range msgs {
		_, cmd = f.m.Update(msg)
	}
	return cmd
}

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

var (
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keySpace = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")}
	keyRight = tea.KeyMsg{Type: tea.KeyRight}
	keyLeft  = tea.KeyMsg{Type: tea.KeyLeft}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEsc}
)

func currentName(m *model) string {
	e, _, ok := m.app.Current()
	if !ok {
		return ""
	}
	return e.Name
}

func TestTUI_CheckAndExecuteCopy(t *testing.T) {
	f := newTUIFixture(t)
	f.m.app.SetDeleteAfterCopy(false)

	// 光标在 Cats：勾选后执行。
	f.press(keySpace, keyEnter)

	if _, err := os.Stat(filepath.Join(f.dest, "Cats", "a.png")); err != nil {
		t.Fatalf("应复制到 Cats：%v", err)
	}
	if _, err := os.Stat(filepath.Join(f.dest, "Dogs", "a.png")); !os.IsNotExist(err) {
		t.Fatalf("未勾选的目录不应复制：%v", err)
	}
	if currentName(f.m) != "b.png" {
		t.Fatalf("执行后应前进到 b.png，实际 %q", currentName(f.m))
	}
	if f.m.app.Selector().AnyChecked() {
		t.Fatalf("执行后应清空勾选")
	}
	if len(f.m.activity.Lines()) == 0 {
		t.Fatalf("执行结果应写入活动记录")
	}
}

func TestTUI_DeleteOnlyAndNavigation(t *testing.T) {
	f := newTUIFixture(t)

	if got := f.m.app.ExecuteMode(); got != app.ModeDeleteOnly {
		t.Fatalf("默认删除源文件且无勾选时期望 delete-only，实际 %v", got)
	}
	f.press(keyEnter)
	if len(f.trash.paths) != 1 || filepath.Base(f.trash.paths[0]) != "a.png" {
		t.Fatalf("应回收 a.png：%v", f.trash.paths)
	}
	if currentName(f.m) != "b.png" {
		t.Fatalf("回收后当前项应为 b.png，实际 %q", currentName(f.m))
	}

	f.press(keyRight)
	if currentName(f.m) != "c.png" {
		t.Fatalf("right 应前进到 c.png")
	}
	f.press(keyRight)
	if currentName(f.m) != "c.png" {
		t.Fatalf("最后一项不能再前进")
	}
	f.press(keyLeft)
	if currentName(f.m) != "b.png" {
		t.Fatalf("left 应回到 b.png")
	}

	f.press(runes("d"))
	if f.m.app.DeleteAfterCopy() || f.m.app.ExecuteMode() != app.ModeDisabled {
		t.Fatalf("关闭删除后无勾选应不可执行")
	}
}

func TestTUI_FilterAndFavorite(t *testing.T) {
	f := newTUIFixture(t)

	f.press(runes("/"), runes("dog"), keyEnter)
	if got, ok := f.m.focusedFolder(); !ok || got.Name != "Dogs" {
		t.Fatalf("筛选后光标应在 Dogs：%+v", got)
	}
	f.press(runes("f"))
	if got, _ := f.m.focusedFolder(); !got.Favorite {
		t.Fatalf("Dogs 应被收藏")
	}

	f.press(runes("/"), keyEsc)
	if f.m.folderQuery != "" || len(f.m.visibleFolders()) != 2 {
		t.Fatalf("esc 应清除筛选")
	}
}

func TestTUI_FindFileJumps(t *testing.T) {
	f := newTUIFixture(t)

	f.press(tea.KeyMsg{Type: tea.KeyCtrlF}, runes("c."))
	if len(f.m.matches) != 1 {
		t.Fatalf("期望匹配 1 个文件，实际 %d", len(f.m.matches))
	}
	f.press(keyEnter)
	if currentName(f.m) != "c.png" || f.m.mode != modeBrowse {
		t.Fatalf("应跳转到 c.png 并回到浏览模式")
	}
}

func TestTUI_AddFolderAndQuit(t *testing.T) {
	f := newTUIFixture(t)
	extra := t.TempDir()

	f.press(runes("a"), runes(extra), keyEnter)
	if _, ok := f.m.app.Selector().Get(extra); !ok {
		t.Fatalf("应添加目录 %q，状态：%s", extra, f.m.status)
	}
	f.press(runes("a"), runes(extra), keyEnter)
	if !f.m.statusErr {
		t.Fatalf("重复添加应显示错误")
	}

	cmd := f.press(runes("q"))
	if cmd == nil {
		t.Fatalf("q 应返回退出命令")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("期望 tea.QuitMsg")
	}
}

func TestTUI_ViewRenders(t *testing.T) {
	f := newTUIFixture(t)
	v := f.m.View()
	for _, want := range []string{"mediacopy", "Cats", "Dogs", "a.png", "1/3"} {
		if !strings.Contains(v, want) {
			t.Fatalf("界面缺少 %q", want)
		}
	}
	if strings.Count(f.m.preview, halfBlock) == 0 {
		t.Fatalf("图片预览应渲染半块字符")
	}
}

func TestTUI_ReloadDropsBrokenEntry(t *testing.T) {
	f := newTUIFixture(t)
	if currentName(f.m) != "a.png" {
		t.Fatalf("初始当前项应为 a.png，实际 %q", currentName(f.m))
	}
	if err := os.WriteFile(filepath.Join(f.src, "a.png"), []byte("not an image"), 0o644); err != nil {
		t.Fatalf("改写文件失败：%v", err)
	}

	f.press(runes("R"))
	if currentName(f.m) != "b.png" {
		t.Fatalf("重新加载后损坏的 a.png 应被跳过，实际 %q", currentName(f.m))
	}
	if _, err := os.Stat(filepath.Join(f.src, "a.png")); err != nil {
		t.Fatalf("跳过的文件不应被删除：%v", err)
	}
	lines := strings.Join(f.m.activity.Lines(), "\n")
	if !strings.Contains(lines, "a.png") {
		t.Fatalf("活动记录应提到被跳过的 a.png：%q", lines)
	}
	if strings.Count(f.m.preview, halfBlock) == 0 {
		t.Fatalf("重新加载后应渲染 b.png 的预览")
	}
}

func TestTUI_SearchHiddenWithoutSearcher(t *testing.T) {
	f := newTUIFixture(t)
	if f.m.keys.Search.Enabled() {
		t.Fatalf("未配置图床时以图搜图按键应禁用")
	}
	if strings.Contains(f.m.View(), "以图搜图") {
		t.Fatalf("禁用的按键不应出现在帮助行")
	}
}
