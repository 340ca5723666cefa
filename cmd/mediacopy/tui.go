package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/John-Robertt/mediacopy/internal/app"
	"github.com/John-Robertt/mediacopy/internal/config"
	"github.com/John-Robertt/mediacopy/internal/domain"
	"github.com/John-Robertt/mediacopy/internal/search"
)

type inputMode int

const (
	modeBrowse inputMode = iota
	modeAddFolder
	modeFilterFolders
	modeFindFile
)

// searchDoneMsg 把后台搜索的结果送回 UI 循环。
type searchDoneMsg struct {
	res search.Result
}

// uiKeys 是固定的界面按键；可重绑定的四个热键在 app.KeyMap 中。
type uiKeys struct {
	Up         key.Binding
	Down       key.Binding
	Toggle     key.Binding
	Favorite   key.Binding
	Ignore     key.Binding
	Add        key.Binding
	Reveal     key.Binding
	Open       key.Binding
	Search     key.Binding
	Reload     key.Binding
	Filter     key.Binding
	Find       key.Binding
	DeleteMode key.Binding
	Quit       key.Binding
}

var defaultUIKeys = uiKeys{
	Up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "上移")),
	Down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "下移")),
	Toggle:     key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "勾选")),
	Favorite:   key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "收藏")),
	Ignore:     key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "忽略")),
	Add:        key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "添加目录")),
	Reveal:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "打开目录")),
	Open:       key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "打开文件")),
	Search:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "以图搜图")),
	Reload:     key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "重新加载")),
	Filter:     key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "筛选目录")),
	Find:       key.NewBinding(key.WithKeys("ctrl+f"), key.WithHelp("ctrl+f", "查找文件")),
	DeleteMode: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "切换删除源文件")),
	Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "退出")),
}

type model struct {
	ctx      context.Context
	app      *app.App
	activity *activityLog
	keys     uiKeys

	mode   inputMode
	width  int
	height int

	cursor      int
	folderQuery string
	findCursor  int
	matches     []domain.MediaEntry

	input   textinput.Model
	spinner spinner.Model
	help    help.Model

	searching bool
	status    string
	statusErr bool

	preview    string
	previewKey string
	previewAt  string // revision|cols|rows，未变化时跳过预览检查
}

func newModel(ctx context.Context, a *app.App, activity *activityLog) *model {
	if ctx == nil {
		ctx = context.Background()
	}
	ti := textinput.New()
	ti.CharLimit = 4096
	return &model{
		ctx:      ctx,
		app:      a,
		activity: activity,
		keys:     defaultUIKeys,
		input:    ti,
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot)),
		help:     help.New(),
		width:    100,
		height:   32,
	}
}

func (m *model) Init() tea.Cmd { return nil }

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmd := m.update(msg)
	m.clampCursor()
	m.keys.Search.SetEnabled(!m.searching && m.app.CanSearch())
	m.syncPreview()
	return m, cmd
}

func (m *model) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		return nil
	case spinner.TickMsg:
		if !m.searching {
			return nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return cmd
	case searchDoneMsg:
		m.searching = false
		m.onSearchDone(msg.res)
		return nil
	case tea.KeyMsg:
		switch m.mode {
		case modeAddFolder:
			return m.updateAddFolder(msg)
		case modeFilterFolders:
			return m.updateFilterFolders(msg)
		case modeFindFile:
			return m.updateFindFile(msg)
		default:
			return m.updateBrowse(msg)
		}
	}
	return nil
}

func (m *model) updateBrowse(msg tea.KeyMsg) tea.Cmd {
	if msg.String() == "ctrl+c" {
		return tea.Quit
	}
	// 可重绑定的热键优先。
	if res, fired := m.app.Dispatch(msg); fired {
		m.onDispatch(res)
		return nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit), msg.Type == tea.KeyEsc:
		return tea.Quit
	case key.Matches(msg, m.keys.Up):
		m.cursor--
	case key.Matches(msg, m.keys.Down):
		m.cursor++
	case key.Matches(msg, m.keys.Toggle):
		if f, ok := m.focusedFolder(); ok {
			m.report(m.app.ToggleChecked(f.Path), "")
		}
	case key.Matches(msg, m.keys.Favorite):
		if f, ok := m.focusedFolder(); ok {
			on, err := m.app.ToggleFavorite(f.Path)
			if on {
				m.report(err, "已收藏："+f.Name)
			} else {
				m.report(err, "已取消收藏："+f.Name)
			}
		}
	case key.Matches(msg, m.keys.Ignore):
		if f, ok := m.focusedFolder(); ok {
			m.report(m.app.IgnoreFolder(f.Path), "已忽略："+f.Path)
		}
	case key.Matches(msg, m.keys.Reveal):
		if f, ok := m.focusedFolder(); ok {
			err := m.app.RevealFolder(f.Path)
			if err != nil {
				m.activity.Note("目录无法打开，已移出列表：" + f.Path)
			}
			m.report(err, "")
		}
	case key.Matches(msg, m.keys.Open):
		m.report(m.app.OpenCurrent(), "")
	case key.Matches(msg, m.keys.Search):
		return m.startSearch()
	case key.Matches(msg, m.keys.Reload):
		if m.app.Session() == nil {
			m.report(app.ErrNoSession, "")
			return nil
		}
		m.activity.Dropped(m.app.Reload())
		m.previewKey = ""
		m.report(nil, "已重新加载")
	case key.Matches(msg, m.keys.DeleteMode):
		m.app.SetDeleteAfterCopy(!m.app.DeleteAfterCopy())
		m.report(nil, "删除源文件："+onOff(m.app.DeleteAfterCopy()))
	case key.Matches(msg, m.keys.Add):
		return m.beginInput(modeAddFolder, "要添加的目录路径", "")
	case key.Matches(msg, m.keys.Filter):
		return m.beginInput(modeFilterFolders, "按名称筛选目录", m.folderQuery)
	case key.Matches(msg, m.keys.Find):
		if m.app.Session() == nil {
			m.report(app.ErrNoSession, "")
			return nil
		}
		m.findCursor = 0
		m.matches = m.app.Session().Filter("")
		return m.beginInput(modeFindFile, "按文件名查找", "")
	}
	return nil
}

func (m *model) beginInput(mode inputMode, placeholder, value string) tea.Cmd {
	m.mode = mode
	m.input.Placeholder = placeholder
	m.input.SetValue(value)
	m.input.CursorEnd()
	return m.input.Focus()
}

func (m *model) endInput() {
	m.mode = modeBrowse
	m.input.Blur()
}

func (m *model) updateAddFolder(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		m.endInput()
		return nil
	case tea.KeyEnter:
		raw := m.input.Value()
		m.endInput()
		p, err := config.ExpandPath(raw)
		if err == nil {
			err = m.app.AddFolder(p)
		}
		m.report(err, "已添加："+p)
		return nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

func (m *model) updateFilterFolders(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		m.folderQuery = ""
		m.endInput()
		return nil
	case tea.KeyEnter:
		m.endInput()
		return nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.folderQuery = m.input.Value()
	m.cursor = 0
	return cmd
}

func (m *model) updateFindFile(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		m.endInput()
		return nil
	case tea.KeyUp:
		if m.findCursor > 0 {
			m.findCursor--
		}
		return nil
	case tea.KeyDown:
		if m.findCursor+1 < len(m.matches) {
			m.findCursor++
		}
		return nil
	case tea.KeyEnter:
		m.endInput()
		if m.findCursor < len(m.matches) {
			target := m.matches[m.findCursor]
			dropped, err := m.app.Jump(target.Path)
			m.activity.Dropped(dropped)
			m.report(err, "")
		}
		return nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if s := m.app.Session(); s != nil {
		m.matches = s.Filter(m.input.Value())
	}
	m.findCursor = 0
	return cmd
}

func (m *model) onDispatch(res app.DispatchResult) {
	m.activity.Dropped(res.Dropped)
	switch {
	case res.Err != nil:
		m.report(res.Err, "")
	case res.Outcome != nil:
		// 详细结果已由 activityLog 记录。
		m.status, m.statusErr = "", false
		if !res.Outcome.OK() {
			m.status, m.statusErr = "部分操作失败，见下方记录", true
		}
	case res.Action == config.ActionClearSelection:
		m.report(nil, "已清空勾选")
	default:
		m.status, m.statusErr = "", false
	}
}

func (m *model) startSearch() tea.Cmd {
	ch, err := m.app.Search(m.ctx)
	if err != nil {
		m.report(err, "")
		return nil
	}
	m.searching = true
	m.status, m.statusErr = "", false
	return tea.Batch(m.spinner.Tick, waitSearch(ch))
}

func waitSearch(ch <-chan search.Result) tea.Cmd {
	return func() tea.Msg {
		res, ok := <-ch
		if !ok {
			return searchDoneMsg{res: search.Result{Err: errors.New("搜索被中断")}}
		}
		return searchDoneMsg{res: res}
	}
}

func (m *model) onSearchDone(res search.Result) {
	switch {
	case res.Err != nil:
		m.report(fmt.Errorf("以图搜图失败：%w", res.Err), "")
	case res.OpenErr != nil:
		m.report(fmt.Errorf("无法打开浏览器，请手动访问 %s：%w", res.SearchURL, res.OpenErr), "")
	default:
		m.activity.Note("已上传 " + res.Entry.Name + "：" + res.ImageURL)
		m.report(nil, "已打开搜索页")
	}
}

// report 在状态行显示 err（带错误码）或 ok。
func (m *model) report(err error, ok string) {
	if err != nil {
		code := domain.Code(err)
		if code == "" {
			code = config.Code(err)
		}
		if code != "" {
			m.status = fmt.Sprintf("%s：%v", code, err)
		} else {
			m.status = err.Error()
		}
		m.statusErr = true
		return
	}
	m.status, m.statusErr = ok, false
}

func (m *model) visibleFolders() []domain.DestinationFolder {
	if strings.TrimSpace(m.folderQuery) != "" {
		return m.app.Selector().Filter(m.folderQuery)
	}
	return m.app.Selector().Folders()
}

func (m *model) focusedFolder() (domain.DestinationFolder, bool) {
	fs := m.visibleFolders()
	if m.cursor < 0 || m.cursor >= len(fs) {
		return domain.DestinationFolder{}, false
	}
	return fs[m.cursor], true
}

func (m *model) clampCursor() {
	n := len(m.visibleFolders())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// 布局：左侧预览，右侧目录列表。
func (m *model) previewSize() (cols, rows int) {
	cols = m.width*3/5 - 2
	rows = m.height - 10
	return max(cols, 10), max(rows, 4)
}

func (m *model) listSize() (cols, rows int) {
	pc, rows := m.previewSize()
	return max(m.width-pc-6, 16), rows
}

func (m *model) syncPreview() {
	cols, rows := m.previewSize()
	at := fmt.Sprintf("%d|%d|%d", m.app.Revision(), cols, rows)
	if m.previewKey != "" && at == m.previewAt {
		return
	}
	m.previewAt = at
	e, _, ok := m.app.Current()
	if !ok {
		k := fmt.Sprintf("empty|%d|%d", cols, rows)
		if k != m.previewKey {
			m.preview, m.previewKey = placeholder("没有可显示的条目", cols, rows), k
		}
		return
	}
	k := fmt.Sprintf("%s|%d|%d|%d", e.Path, e.ModTime.UnixNano(), cols, rows)
	if k == m.previewKey {
		return
	}
	m.previewKey = k
	out, err := renderPreview(e, cols, rows)
	if err != nil {
		m.preview = placeholder("预览失败："+domain.Code(err), cols, rows)
		return
	}
	m.preview = out
}

func (m *model) View() string {
	var b strings.Builder

	b.WriteString(m.viewHeader())
	b.WriteByte('\n')

	pc, pr := m.previewSize()
	left := boxStyle.Width(pc).Height(pr).Render(m.preview)
	var right string
	if m.mode == modeFindFile {
		right = m.viewMatches()
	} else {
		right = m.viewFolders()
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, right))
	b.WriteByte('\n')

	if e, info, ok := m.app.Current(); ok {
		b.WriteString(infoStyle.Render(formatEntryInfo(e, info.Width, info.Height, info.Taken, info.Camera)))
	}
	b.WriteByte('\n')

	for _, l := range m.activity.Lines() {
		b.WriteString(mutedStyle.Render(truncate(l, max(m.width-1, 20))))
		b.WriteByte('\n')
	}

	if m.mode != modeBrowse {
		b.WriteString(m.input.View())
		b.WriteByte('\n')
	}

	switch {
	case m.searching:
		b.WriteString(m.spinner.View() + " 正在上传…")
	case m.statusErr:
		b.WriteString(errorStyle.Render(m.status))
	default:
		b.WriteString(infoStyle.Render(m.status))
	}
	b.WriteByte('\n')

	b.WriteString(m.help.ShortHelpView(append(m.app.Keys().ShortHelp(),
		m.keys.Toggle, m.keys.Favorite, m.keys.Ignore, m.keys.Add, m.keys.Filter, m.keys.Find,
		m.keys.Open, m.keys.Reveal, m.keys.Search, m.keys.Reload, m.keys.DeleteMode, m.keys.Quit,
	)))
	return b.String()
}

func (m *model) viewHeader() string {
	parts := []string{titleStyle.Render("mediacopy")}
	if s := m.app.Session(); s != nil {
		parts = append(parts, headerStyle.Render(s.Root()))
	}
	parts = append(parts, m.app.Status(), executeBadge(m.app.ExecuteMode()))
	parts = append(parts, mutedStyle.Render("删除源文件："+onOff(m.app.DeleteAfterCopy())))
	return strings.Join(parts, "  ")
}

func executeBadge(mode app.ExecuteMode) string {
	switch mode {
	case app.ModeCopy:
		return badgeCopy.Render("执行：复制")
	case app.ModeDeleteOnly:
		return badgeDeleteOnly.Render("执行：仅删除")
	default:
		return badgeDisabled.Render("执行：不可用")
	}
}

func (m *model) viewFolders() string {
	cols, rows := m.listSize()
	fs := m.visibleFolders()

	title := "目标目录"
	if root := m.app.Selector().Root(); root != "" {
		title += "  " + truncate(root, max(cols-10, 8))
	}
	if m.folderQuery != "" {
		title += "  /" + m.folderQuery
	}
	lines := []string{headerStyle.Render(title)}

	start, end := window(m.cursor, len(fs), rows-1)
	for i := start; i < end; i++ {
		f := fs[i]
		check := "[ ]"
		if f.Checked {
			check = "[x]"
		}
		star := " "
		if f.Favorite {
			star = favoriteStyle.Render("★")
		}
		line := fmt.Sprintf("%s %s %s", check, star, truncate(f.Name, max(cols-8, 4)))
		if i == m.cursor {
			line = cursorStyle.Render(line)
		}
		lines = append(lines, line)
	}
	if len(fs) == 0 {
		lines = append(lines, mutedStyle.Render("（没有目录，按 a 添加）"))
	}

	st := boxStyle
	if m.mode == modeBrowse || m.mode == modeFilterFolders {
		st = focusBoxStyle
	}
	return st.Width(cols).Height(rows).Render(strings.Join(lines, "\n"))
}

func (m *model) viewMatches() string {
	cols, rows := m.listSize()
	lines := []string{headerStyle.Render(fmt.Sprintf("查找文件（%d）", len(m.matches)))}
	start, end := window(m.findCursor, len(m.matches), rows-1)
	for i := start; i < end; i++ {
		line := truncate(m.matches[i].Name, max(cols-2, 4))
		if i == m.findCursor {
			line = cursorStyle.Render(line)
		}
		lines = append(lines, line)
	}
	return focusBoxStyle.Width(cols).Height(rows).Render(strings.Join(lines, "\n"))
}

// window 返回让 cursor 可见的 [start, end) 区间。
func window(cursor, n, size int) (int, int) {
	if size <= 0 || n <= 0 {
		return 0, 0
	}
	if n <= size {
		return 0, n
	}
	start := cursor - size/2
	start = max(start, 0)
	start = min(start, n-size)
	return start, start + size
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}
