package app

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/John-Robertt/mediacopy/internal/app/engine"
	"github.com/John-Robertt/mediacopy/internal/config"
	"github.com/John-Robertt/mediacopy/internal/domain"
	"github.com/John-Robertt/mediacopy/internal/infra/imgx"
	"github.com/John-Robertt/mediacopy/internal/pathlist"
	"github.com/John-Robertt/mediacopy/internal/selector"
)

type fakeTrash struct{ paths []string }

func (f *fakeTrash) Trash(path string) (string, error) {
	f.paths = append(f.paths, path)
	return "", nil
}

type fakeOpener struct {
	err    error
	opened []string
}

func (o *fakeOpener) OpenPath(p string) error {
	o.opened = append(o.opened, p)
	return o.err
}

type fixture struct {
	src   string
	dest  string
	app   *App
	trash *fakeTrash
	open  *fakeOpener
	bad   map[string]bool
}

func newFixture(t *testing.T, prefs config.Preferences, deleteAfterCopy bool) *fixture {
	t.Helper()
	root := t.TempDir()
	f := &fixture{
		src:   filepath.Join(root, "src"),
		dest:  filepath.Join(root, "dest"),
		trash: &fakeTrash{},
		open:  &fakeOpener{},
		bad:   map[string]bool{},
	}
	for _, d := range []string{f.src, filepath.Join(f.dest, "D1"), filepath.Join(f.dest, "D2")} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			t.Fatalf("创建目录失败：%v", err)
		}
	}
	for _, n := range []string{"a.jpg", "b.png", "c.webm"} {
		if err := os.WriteFile(filepath.Join(f.src, n), []byte(n), 0o644); err != nil {
			t.Fatalf("写入失败：%v", err)
		}
	}

	state := filepath.Join(root, "state")
	ignored, err := pathlist.Load(filepath.Join(state, "IgnoredPaths.txt"))
	if err != nil {
		t.Fatalf("加载清单失败：%v", err)
	}
	favorites, err := pathlist.Load(filepath.Join(state, "FavoritePaths.txt"))
	if err != nil {
		t.Fatalf("加载清单失败：%v", err)
	}

	a, err := New(Options{
		Prefs:           prefs,
		Selector:        selector.New(ignored, favorites),
		Engine:          &engine.Engine{Trash: f.trash, ResetSelections: true},
		Opener:          f.open,
		DeleteAfterCopy: deleteAfterCopy,
		Probe: func(e domain.MediaEntry) (imgx.Info, error) {
			if f.bad[e.Name] {
				return imgx.Info{}, &domain.FileAccessError{Op: "decode", Path: e.Path, Err: errors.New("坏图")}
			}
			return imgx.Info{Format: e.Ext}, nil
		},
	})
	if err != nil {
		t.Fatalf("构造 App 失败：%v", err)
	}
	f.app = a
	return f
}

func (f *fixture) openAll(t *testing.T) {
	t.Helper()
	if _, err := f.app.OpenSource(f.src); err != nil {
		t.Fatalf("OpenSource 失败：%v", err)
	}
	if err := f.app.OpenDestRoot(f.dest); err != nil {
		t.Fatalf("OpenDestRoot 失败：%v", err)
	}
}

func currentName(t *testing.T, a *App) string {
	t.Helper()
	e, _, ok := a.Current()
	if !ok {
		return ""
	}
	return e.Name
}

func TestOpenSource_RemembersLastPaths(t *testing.T) {
	f := newFixture(t, config.DefaultPreferences(), false)
	f.openAll(t)

	p := f.app.Prefs()
	if p.LastSource != f.src || p.LastDestRoot != f.dest {
		t.Fatalf("应记住最近路径：%+v", p)
	}
	if currentName(t, f.app) != "a.jpg" {
		t.Fatalf("当前项应为 a.jpg")
	}
	if f.app.Selector().Len() != 2 {
		t.Fatalf("应加载两个目标目录")
	}
}

func TestDispatch_ExecuteCopiesAndAdvances(t *testing.T) {
	f := newFixture(t, config.DefaultPreferences(), false)
	f.openAll(t)

	if f.app.CanExecute() || f.app.ExecuteMode() != ModeDisabled {
		t.Fatalf("未勾选且不删除时不应允许执行")
	}
	if res, fired := f.app.Dispatch(Key("enter")); fired {
		t.Fatalf("不满足前置条件时不应触发：%+v", res)
	}

	_ = f.app.ToggleChecked(filepath.Join(f.dest, "D1"))
	_ = f.app.ToggleChecked(filepath.Join(f.dest, "D2"))
	if f.app.ExecuteMode() != ModeCopy {
		t.Fatalf("期望 ModeCopy，实际 %v", f.app.ExecuteMode())
	}

	rev := f.app.Revision()
	res, fired := f.app.Dispatch(Key("enter"))
	if !fired || res.Action != config.ActionExecute || res.Err != nil || res.Outcome == nil {
		t.Fatalf("期望执行：fired=%v res=%+v", fired, res)
	}
	if res.Outcome.Summary.Copied != 2 {
		t.Fatalf("应复制到两个目录：%+v", res.Outcome.Summary)
	}
	if currentName(t, f.app) != "b.png" || f.app.Session().Len() != 3 {
		t.Fatalf("执行后应指向 b.png 且会话长度不变")
	}
	if f.app.Selector().AnyChecked() {
		t.Fatalf("ResetSelections=true 时执行后应清空勾选")
	}
	if f.app.Revision() <= rev {
		t.Fatalf("执行后 Revision 应递增")
	}
}

func TestDispatch_DeleteOnlyMode(t *testing.T) {
	f := newFixture(t, config.DefaultPreferences(), true)
	f.openAll(t)

	if f.app.ExecuteMode() != ModeDeleteOnly {
		t.Fatalf("期望 ModeDeleteOnly，实际 %v", f.app.ExecuteMode())
	}
	res, fired := f.app.Dispatch(Key("enter"))
	if !fired || res.Err != nil {
		t.Fatalf("期望执行：fired=%v res=%+v", fired, res)
	}
	if len(f.trash.paths) != 1 || f.app.Session().Len() != 2 {
		t.Fatalf("应回收 a.jpg 并移出会话：trash=%v len=%d", f.trash.paths, f.app.Session().Len())
	}
}

func TestDispatch_OrderAndPreconditions(t *testing.T) {
	prefs := config.DefaultPreferences()
	prefs.Hotkeys.Previous = "x"
	prefs.Hotkeys.Next = "x"
	f := newFixture(t, prefs, false)
	f.openAll(t)

	// index=0：Previous 不满足，落到 Next。
	res, fired := f.app.Dispatch(Key("x"))
	if !fired || res.Action != config.ActionNext {
		t.Fatalf("期望触发 next：fired=%v action=%q", fired, res.Action)
	}
	// index=1：Previous 优先。
	res, fired = f.app.Dispatch(Key("x"))
	if !fired || res.Action != config.ActionPrevious {
		t.Fatalf("期望触发 previous：fired=%v action=%q", fired, res.Action)
	}

	if _, fired := f.app.Dispatch(Key("left")); fired {
		t.Fatalf("未绑定的按键不应触发")
	}
	res, fired = f.app.Dispatch(Key("backspace"))
	if !fired || res.Action != config.ActionClearSelection {
		t.Fatalf("清空勾选总是可以触发：fired=%v action=%q", fired, res.Action)
	}
}

func TestLoadError_DropsEntryKeepsFile(t *testing.T) {
	f := newFixture(t, config.DefaultPreferences(), false)
	f.bad["b.png"] = true
	f.openAll(t)

	dropped, err := f.app.Next()
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if len(dropped) != 1 || dropped[0].Entry.Name != "b.png" || !domain.IsFileAccess(dropped[0].Err) {
		t.Fatalf("应跳过 b.png：%+v", dropped)
	}
	if currentName(t, f.app) != "c.webm" || f.app.Session().Len() != 2 {
		t.Fatalf("跳过后应指向 c.webm")
	}
	if _, err := os.Stat(filepath.Join(f.src, "b.png")); err != nil {
		t.Fatalf("磁盘文件不应被删除：%v", err)
	}
}

func TestLoadError_AllBadEmptiesSession(t *testing.T) {
	f := newFixture(t, config.DefaultPreferences(), false)
	f.bad["a.jpg"], f.bad["b.png"], f.bad["c.webm"] = true, true, true

	dropped, err := f.app.OpenSource(f.src)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if len(dropped) != 3 || f.app.Session().Len() != 0 || f.app.ImageLoaded() {
		t.Fatalf("全部失败时会话应为空：dropped=%d len=%d", len(dropped), f.app.Session().Len())
	}
	if f.app.Session().Progress() != 1.0 {
		t.Fatalf("全部移出后进度应为 1.0")
	}
}

func TestRevealFolder_FailureRemovesFolder(t *testing.T) {
	f := newFixture(t, config.DefaultPreferences(), false)
	f.openAll(t)
	d1 := filepath.Join(f.dest, "D1")

	if err := f.app.RevealFolder(d1); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	f.open.err = errors.New("no handler")
	if err := f.app.RevealFolder(d1); !domain.IsFileAccess(err) {
		t.Fatalf("期望 FileAccessError，实际 %v", err)
	}
	if _, ok := f.app.Selector().Get(d1); ok {
		t.Fatalf("打不开的目录应被移出列表")
	}
}

func TestSearch_WithoutSearcher(t *testing.T) {
	f := newFixture(t, config.DefaultPreferences(), false)
	f.openAll(t)
	if f.app.CanSearch() {
		t.Fatalf("未配置 searcher 时不应允许搜索")
	}
	if _, err := f.app.Search(t.Context()); !errors.Is(err, ErrNoSearcher) {
		t.Fatalf("期望 ErrNoSearcher，实际 %v", err)
	}
}

func TestNoSession(t *testing.T) {
	f := newFixture(t, config.DefaultPreferences(), false)
	if _, err := f.app.Next(); !errors.Is(err, ErrNoSession) {
		t.Fatalf("期望 ErrNoSession，实际 %v", err)
	}
	if f.app.CanAdvance() || f.app.CanRetreat() || f.app.CanExecute() {
		t.Fatalf("没有会话时不应允许任何导航")
	}
	if f.app.Status() == "" {
		t.Fatalf("Status 不应为空")
	}
}
