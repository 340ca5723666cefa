// Package app 是浏览会话的控制器：持有会话、目标目录、处置引擎与以图搜图，
// 实现热键派发表、Can* 判定与加载失败策略。
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/key"

	"github.com/John-Robertt/mediacopy/internal/app/engine"
	"github.com/John-Robertt/mediacopy/internal/config"
	"github.com/John-Robertt/mediacopy/internal/domain"
	"github.com/John-Robertt/mediacopy/internal/infra/imgx"
	"github.com/John-Robertt/mediacopy/internal/logging"
	"github.com/John-Robertt/mediacopy/internal/search"
	"github.com/John-Robertt/mediacopy/internal/selector"
	"github.com/John-Robertt/mediacopy/internal/session"
)

var (
	// ErrNoSession 表示尚未选择源目录。
	ErrNoSession = errors.New("尚未选择源目录")
	// ErrNoSearcher 表示未配置以图搜图。
	ErrNoSearcher = errors.New("未配置以图搜图")
)

// ExecuteMode 描述执行按钮的状态。
type ExecuteMode int

const (
	// ModeDisabled：不能执行（没有已加载的条目，或既未勾选也不删除）。
	ModeDisabled ExecuteMode = iota
	// ModeCopy：复制到勾选目录（可能随后删除源文件）。
	ModeCopy
	// ModeDeleteOnly：没有勾选目录，只删除源文件。
	ModeDeleteOnly
)

func (m ExecuteMode) String() string {
	switch m {
	case ModeCopy:
		return "copy"
	case ModeDeleteOnly:
		return "delete-only"
	default:
		return "disabled"
	}
}

// PathOpener 用系统默认程序打开文件或目录。
type PathOpener interface {
	OpenPath(p string) error
}

// Prober 读取条目的展示元数据；返回错误表示条目无法加载。
type Prober func(domain.MediaEntry) (imgx.Info, error)

// Dropped 是因加载失败被移出会话的条目。
type Dropped struct {
	Entry domain.MediaEntry
	Err   error
}

// Options 描述 App 的依赖。
type Options struct {
	Prefs    config.Preferences
	Selector *selector.Selector
	Engine   *engine.Engine
	Searcher *search.Searcher
	Opener   PathOpener
	Probe    Prober
	Logger   *slog.Logger

	DeleteAfterCopy      bool
	IncludeSourceSubdirs bool
	IncludeDestSubdirs   bool
}

// App 是单个浏览窗口的状态。非并发安全：只应由 UI 循环访问。
type App struct {
	prefs    config.Preferences
	keys     KeyMap
	sel      *selector.Selector
	engine   *engine.Engine
	searcher *search.Searcher
	opener   PathOpener
	probe    Prober
	log      *slog.Logger

	deleteAfterCopy      bool
	includeSourceSubdirs bool
	includeDestSubdirs   bool

	session  *session.Session
	info     imgx.Info
	loaded   bool
	revision uint64
}

func New(opts Options) (*App, error) {
	if opts.Selector == nil {
		return nil, errors.New("app: selector 不能为空")
	}
	if opts.Engine == nil {
		return nil, errors.New("app: engine 不能为空")
	}
	probe := opts.Probe
	if probe == nil {
		probe = imgx.Probe
	}
	return &App{
		prefs:                opts.Prefs,
		keys:                 NewKeyMap(opts.Prefs.Hotkeys),
		sel:                  opts.Selector,
		engine:               opts.Engine,
		searcher:             opts.Searcher,
		opener:               opts.Opener,
		probe:                probe,
		log:                  logging.Component(opts.Logger, "app"),
		deleteAfterCopy:      opts.DeleteAfterCopy,
		includeSourceSubdirs: opts.IncludeSourceSubdirs,
		includeDestSubdirs:   opts.IncludeDestSubdirs,
	}, nil
}

func (a *App) Session() *session.Session   { return a.session }
func (a *App) Selector() *selector.Selector { return a.sel }
func (a *App) Prefs() config.Preferences    { return a.prefs }
func (a *App) Keys() KeyMap                 { return a.keys }
func (a *App) Searcher() *search.Searcher   { return a.searcher }

// Revision 在每次状态变化后递增；UI 可据此判断是否需要重绘。
func (a *App) Revision() uint64 { return a.revision }

func (a *App) bump() { a.revision++ }

func (a *App) DeleteAfterCopy() bool { return a.deleteAfterCopy }

func (a *App) SetDeleteAfterCopy(v bool) {
	a.deleteAfterCopy = v
	a.bump()
}

func (a *App) IncludeSourceSubdirs() bool { return a.includeSourceSubdirs }
func (a *App) IncludeDestSubdirs() bool   { return a.includeDestSubdirs }

// OpenSource 扫描源目录并整体替换会话，然后加载第一项。
func (a *App) OpenSource(path string) ([]Dropped, error) {
	s, err := session.Load(path, a.includeSourceSubdirs, a.prefs.Enabled)
	if err != nil {
		return nil, err
	}
	a.session = s
	a.prefs.LastSource = s.Root()
	a.log.Info("打开源目录", logging.FieldSession, s.ID(), logging.FieldPath, s.Root(), "count", s.Len())
	dropped := a.loadCurrent()
	a.bump()
	return dropped, nil
}

// OpenDestRoot 用 root 的子目录整体替换目标列表。
func (a *App) OpenDestRoot(root string) error {
	if err := a.sel.LoadFolders(root, a.includeDestSubdirs); err != nil {
		return err
	}
	a.prefs.LastDestRoot = a.sel.Root()
	a.log.Info("打开目标根目录", logging.FieldPath, a.sel.Root(), "folders", a.sel.Len())
	a.bump()
	return nil
}

// Current 返回当前条目及其展示元数据。
func (a *App) Current() (domain.MediaEntry, imgx.Info, bool) {
	if a.session == nil || !a.loaded {
		return domain.MediaEntry{}, imgx.Info{}, false
	}
	e, ok := a.session.Current()
	if !ok {
		return domain.MediaEntry{}, imgx.Info{}, false
	}
	return e, a.info, true
}

// ImageLoaded 报告当前条目是否已成功加载。
func (a *App) ImageLoaded() bool {
	_, _, ok := a.Current()
	return ok
}

func (a *App) CanRetreat() bool { return a.session != nil && a.session.CanRetreat() }
func (a *App) CanAdvance() bool { return a.session != nil && a.session.CanAdvance() }

// CanExecute = 已加载 && (删除源文件 || 至少勾选一个目录)。
func (a *App) CanExecute() bool {
	return a.ImageLoaded() && (a.deleteAfterCopy || a.sel.AnyChecked())
}

// ExecuteMode 返回执行按钮状态。
func (a *App) ExecuteMode() ExecuteMode {
	if !a.CanExecute() {
		return ModeDisabled
	}
	if a.deleteAfterCopy && !a.sel.AnyChecked() {
		return ModeDeleteOnly
	}
	return ModeCopy
}

// Previous 后退一项并加载。
func (a *App) Previous() ([]Dropped, error) {
	if a.session == nil {
		return nil, ErrNoSession
	}
	if err := a.session.Retreat(); err != nil {
		return nil, err
	}
	dropped := a.loadCurrent()
	a.bump()
	return dropped, nil
}

// Next 前进一项并加载。
func (a *App) Next() ([]Dropped, error) {
	if a.session == nil {
		return nil, ErrNoSession
	}
	if err := a.session.Advance(); err != nil {
		return nil, err
	}
	dropped := a.loadCurrent()
	a.bump()
	return dropped, nil
}

// Jump 移到 path 对应的条目并加载。
func (a *App) Jump(path string) ([]Dropped, error) {
	if a.session == nil {
		return nil, ErrNoSession
	}
	if err := a.session.Jump(path); err != nil {
		return nil, err
	}
	dropped := a.loadCurrent()
	a.bump()
	return dropped, nil
}

// Execute 对当前条目执行处置，然后加载新的当前条目。
func (a *App) Execute() (domain.Outcome, []Dropped, error) {
	if a.session == nil {
		return domain.Outcome{}, nil, ErrNoSession
	}
	if !a.ImageLoaded() {
		return domain.Outcome{}, nil, engine.ErrNoCurrent
	}
	out, err := a.engine.Execute(a.session, a.sel, a.deleteAfterCopy)
	if err != nil {
		return domain.Outcome{}, nil, err
	}
	dropped := a.loadCurrent()
	a.bump()
	return out, dropped, nil
}

// ClearSelection 取消全部勾选。
func (a *App) ClearSelection() {
	a.sel.ClearSelection()
	a.bump()
}

// DispatchResult 是一次热键派发的结果。
type DispatchResult struct {
	Action  config.Action
	Outcome *domain.Outcome
	Dropped []Dropped
	Err     error
}

// Dispatch 按 Previous、Execute、Next、ClearSelection 的顺序匹配按键，
// 第一个按键匹配且前置条件成立的动作被执行。没有动作触发时 fired=false。
func (a *App) Dispatch(k fmt.Stringer) (res DispatchResult, fired bool) {
	switch {
	case key.Matches(k, a.keys.Previous) && a.CanRetreat():
		res.Action = config.ActionPrevious
		res.Dropped, res.Err = a.Previous()
	case key.Matches(k, a.keys.Execute) && a.CanExecute():
		res.Action = config.ActionExecute
		out, dropped, err := a.Execute()
		res.Dropped, res.Err = dropped, err
		if err == nil {
			res.Outcome = &out
		}
	case key.Matches(k, a.keys.Next) && a.CanAdvance():
		res.Action = config.ActionNext
		res.Dropped, res.Err = a.Next()
	case key.Matches(k, a.keys.ClearSelection):
		res.Action = config.ActionClearSelection
		a.ClearSelection()
	default:
		return DispatchResult{}, false
	}
	return res, true
}

// Reload 重新加载当前条目（例如文件在外部被修改后）。
func (a *App) Reload() []Dropped {
	if a.session == nil {
		return nil
	}
	dropped := a.loadCurrent()
	a.bump()
	return dropped
}

// loadCurrent 加载当前条目；失败的条目移出会话（磁盘文件不动），直到成功或会话为空。
func (a *App) loadCurrent() []Dropped {
	var dropped []Dropped
	for {
		a.session.Refresh()
		e, ok := a.session.Current()
		if !ok {
			a.info, a.loaded = imgx.Info{}, false
			return dropped
		}
		info, err := a.probe(e)
		if err == nil {
			a.info, a.loaded = info, true
			return dropped
		}
		a.log.Warn("加载失败，已跳过", logging.FieldSession, a.session.ID(), logging.FieldPath, e.Path,
			logging.FieldCode, domain.Code(err), "error", err)
		a.session.RemoveCurrent()
		dropped = append(dropped, Dropped{Entry: e, Err: err})
	}
}

// ToggleChecked 翻转目录的勾选状态。
func (a *App) ToggleChecked(path string) error {
	if err := a.sel.Toggle(path); err != nil {
		return err
	}
	a.bump()
	return nil
}

// ToggleFavorite 切换目录的收藏状态（写盘）。
func (a *App) ToggleFavorite(path string) (bool, error) {
	on, err := a.sel.ToggleFavorite(path)
	if err != nil {
		return on, err
	}
	a.bump()
	return on, nil
}

// IgnoreFolder 把目录写入忽略清单并移出列表。
func (a *App) IgnoreFolder(path string) error {
	if err := a.sel.Ignore(path); err != nil {
		return err
	}
	a.bump()
	return nil
}

// AddFolder 手动追加目标目录。
func (a *App) AddFolder(path string) error {
	if err := a.sel.AddFolder(path); err != nil {
		return err
	}
	a.bump()
	return nil
}

// OpenCurrent 用系统默认程序打开当前条目。
func (a *App) OpenCurrent() error {
	e, _, ok := a.Current()
	if !ok {
		return engine.ErrNoCurrent
	}
	if a.opener == nil {
		return errors.New("未配置打开方式")
	}
	if err := a.opener.OpenPath(e.Path); err != nil {
		return &domain.FileAccessError{Op: "open", Path: e.Path, Err: err}
	}
	return nil
}

// RevealFolder 用系统文件管理器打开目标目录；打不开的目录会被移出列表。
func (a *App) RevealFolder(path string) error {
	if a.opener == nil {
		return errors.New("未配置打开方式")
	}
	if err := a.opener.OpenPath(path); err != nil {
		a.sel.Remove(path)
		a.bump()
		a.log.Warn("目录无法打开，已移出列表", logging.FieldPath, path, "error", err)
		return &domain.FileAccessError{Op: "open", Path: path, Err: err}
	}
	return nil
}

// CanSearch 报告当前条目是否允许以图搜图。
func (a *App) CanSearch() bool {
	e, _, ok := a.Current()
	if !ok || a.searcher == nil || a.searcher.Busy() {
		return false
	}
	return a.searcher.Check(e) == nil
}

// Search 对当前条目发起以图搜图；结果从返回的 channel 读取。
func (a *App) Search(ctx context.Context) (<-chan search.Result, error) {
	if a.searcher == nil {
		return nil, ErrNoSearcher
	}
	e, _, ok := a.Current()
	if !ok {
		return nil, engine.ErrNoCurrent
	}
	return a.searcher.Start(ctx, e)
}

// Status 返回一行状态摘要（位置/总数/进度）。
func (a *App) Status() string {
	if a.session == nil {
		return "未选择源目录"
	}
	var b strings.Builder
	if a.session.Len() == 0 {
		b.WriteString("0/0")
	} else {
		fmt.Fprintf(&b, "%d/%d", a.session.Index()+1, a.session.Len())
	}
	fmt.Fprintf(&b, "  进度 %.0f%%", a.session.Progress()*100)
	return b.String()
}
