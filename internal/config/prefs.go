package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/John-Robertt/mediacopy/internal/infra/fsx"
)

// AllFormats 是可识别扩展名的全集（Enabled ∪ Supported）。
var AllFormats = []string{
	".bmp", ".gif", ".jpeg", ".jpg", ".mkv", ".mov",
	".mp4", ".png", ".tif", ".tiff", ".webm", ".webp",
}

// DefaultEnabledFormats 是首次运行时启用的扩展名。
var DefaultEnabledFormats = []string{".bmp", ".gif", ".jpeg", ".jpg", ".png", ".webm"}

// ErrFormatNotFound 表示要移动的扩展名不在来源集合中。
var ErrFormatNotFound = errors.New("扩展名不在集合中")

// Action 是可绑定热键的动作。
type Action string

const (
	ActionPrevious       Action = "previous"
	ActionExecute        Action = "execute"
	ActionNext           Action = "next"
	ActionClearSelection Action = "clear"
)

// Actions 按派发优先级排列。
var Actions = []Action{ActionPrevious, ActionExecute, ActionNext, ActionClearSelection}

// Hotkeys 保存四个动作的按键名（bubbletea 的 KeyMsg.String() 形式，如 "left"、"ctrl+d"）。
type Hotkeys struct {
	Previous       string `toml:"previous"`
	Execute        string `toml:"execute"`
	Next           string `toml:"next"`
	ClearSelection string `toml:"clear"`
}

// Key 返回动作绑定的按键名。
func (h Hotkeys) Key(a Action) string {
	switch a {
	case ActionPrevious:
		return h.Previous
	case ActionExecute:
		return h.Execute
	case ActionNext:
		return h.Next
	case ActionClearSelection:
		return h.ClearSelection
	default:
		return ""
	}
}

// Preferences 是用户偏好：热键 + 启用/支持扩展名集合 + 最近使用的路径。
//
// 不变量：Enabled 与 Supported 不相交，且并集等于 AllFormats。
type Preferences struct {
	Hotkeys   Hotkeys
	Enabled   []string
	Supported []string

	LastSource   string
	LastDestRoot string
}

type prefsFile struct {
	Hotkeys          Hotkeys `toml:"hotkeys"`
	EnabledFormats   *string `toml:"enabled_formats"`
	SupportedFormats string  `toml:"supported_formats"`
	LastSource       string  `toml:"last_source,omitempty"`
	LastDestRoot     string  `toml:"last_dest_root,omitempty"`
}

// DefaultHotkeys 是默认热键。
func DefaultHotkeys() Hotkeys {
	return Hotkeys{
		Previous:       "left",
		Execute:        "enter",
		Next:           "right",
		ClearSelection: "backspace",
	}
}

// DefaultPreferences 返回首次运行时的偏好。
func DefaultPreferences() Preferences {
	p := Preferences{Hotkeys: DefaultHotkeys()}
	p.setEnabled(DefaultEnabledFormats)
	return p
}

// LoadPreferences 读取 preferences.toml；文件不存在时返回默认偏好。
//
// 规则：
// - 扩展名统一小写并补齐前导点；不在 AllFormats 内的丢弃
// - Enabled 排序去重；Supported = AllFormats − Enabled（排序）
// - 未设置的热键回落到默认值
func LoadPreferences(path string) (Preferences, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return DefaultPreferences(), nil
		}
		return Preferences{}, &Error{Code: ErrCodePrefsInvalid, Path: path, Err: err}
	}

	var pf prefsFile
	dec := toml.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&pf); err != nil {
		return Preferences{}, &Error{Code: ErrCodePrefsInvalid, Path: path, Err: err}
	}

	p := DefaultPreferences()
	def := p.Hotkeys
	p.Hotkeys = pf.Hotkeys
	fillHotkeys(&p.Hotkeys, def)
	if pf.EnabledFormats != nil {
		p.setEnabled(SplitFormats(*pf.EnabledFormats))
	}
	p.LastSource = strings.TrimSpace(pf.LastSource)
	p.LastDestRoot = strings.TrimSpace(pf.LastDestRoot)
	return p, nil
}

// SavePreferences 原子写入 preferences.toml。
func SavePreferences(path string, p Preferences) error {
	enabled := JoinFormats(p.Enabled)
	pf := prefsFile{
		Hotkeys:          p.Hotkeys,
		EnabledFormats:   &enabled,
		SupportedFormats: JoinFormats(p.Supported),
		LastSource:       p.LastSource,
		LastDestRoot:     p.LastDestRoot,
	}
	b, err := toml.Marshal(pf)
	if err != nil {
		return &Error{Code: ErrCodePrefsInvalid, Path: path, Err: err}
	}
	if err := fsx.WriteFileAtomicReplace(filepath.Dir(path), filepath.Base(path), b); err != nil {
		return &Error{Code: ErrCodePrefsInvalid, Path: path, Err: err}
	}
	return nil
}

// Enable 把 ext 从 Supported 移到 Enabled 末尾。
func (p *Preferences) Enable(ext string) error {
	ext = NormalizeFormat(ext)
	var ok bool
	p.Supported, ok = without(p.Supported, ext)
	if !ok {
		return fmt.Errorf("%w：%q 不在 supported 中", ErrFormatNotFound, ext)
	}
	p.Enabled = append(p.Enabled, ext)
	return nil
}

// Disable 把 ext 从 Enabled 移到 Supported 末尾。
func (p *Preferences) Disable(ext string) error {
	ext = NormalizeFormat(ext)
	var ok bool
	p.Enabled, ok = without(p.Enabled, ext)
	if !ok {
		return fmt.Errorf("%w：%q 不在 enabled 中", ErrFormatNotFound, ext)
	}
	p.Supported = append(p.Supported, ext)
	return nil
}

// SetHotkey 重新绑定 a 的按键。
func (p *Preferences) SetHotkey(a Action, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("热键不能为空")
	}
	switch a {
	case ActionPrevious:
		p.Hotkeys.Previous = key
	case ActionExecute:
		p.Hotkeys.Execute = key
	case ActionNext:
		p.Hotkeys.Next = key
	case ActionClearSelection:
		p.Hotkeys.ClearSelection = key
	default:
		return fmt.Errorf("未知动作：%q", a)
	}
	return nil
}

func (p *Preferences) setEnabled(list []string) {
	seen := map[string]struct{}{}
	enabled := make([]string, 0, len(list))
	for _, ext := range list {
		ext = NormalizeFormat(ext)
		if !contains(AllFormats, ext) {
			continue
		}
		if _, ok := seen[ext]; ok {
			continue
		}
		seen[ext] = struct{}{}
		enabled = append(enabled, ext)
	}
	sort.Strings(enabled)

	supported := make([]string, 0, len(AllFormats))
	for _, ext := range AllFormats {
		if _, ok := seen[ext]; !ok {
			supported = append(supported, ext)
		}
	}
	sort.Strings(supported)

	p.Enabled = enabled
	p.Supported = supported
}

// NormalizeFormat 把 "JPG" / "jpg" / ".JPG" 统一为 ".jpg"。
func NormalizeFormat(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" {
		return ""
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

// SplitFormats 解析 ";" 分隔的扩展名串，忽略空段。
func SplitFormats(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ";") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// JoinFormats 是 SplitFormats 的逆操作。
func JoinFormats(list []string) string {
	return strings.Join(list, ";")
}

func fillHotkeys(h *Hotkeys, def Hotkeys) {
	if strings.TrimSpace(h.Previous) == "" {
		h.Previous = def.Previous
	}
	if strings.TrimSpace(h.Execute) == "" {
		h.Execute = def.Execute
	}
	if strings.TrimSpace(h.Next) == "" {
		h.Next = def.Next
	}
	if strings.TrimSpace(h.ClearSelection) == "" {
		h.ClearSelection = def.ClearSelection
	}
}

func without(list []string, v string) ([]string, bool) {
	for i, it := range list {
		if it == v {
			out := make([]string, 0, len(list)-1)
			out = append(out, list[:i]...)
			return append(out, list[i+1:]...), true
		}
	}
	return list, false
}
