package app

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"

	"github.com/John-Robertt/mediacopy/internal/config"
)

// KeyMap 是四个可重绑定的热键。
type KeyMap struct {
	Previous       key.Binding
	Execute        key.Binding
	Next           key.Binding
	ClearSelection key.Binding
}

// NewKeyMap 由偏好中的按键名构造绑定。
func NewKeyMap(h config.Hotkeys) KeyMap {
	return KeyMap{
		Previous:       key.NewBinding(key.WithKeys(h.Previous), key.WithHelp(h.Previous, "上一项")),
		Execute:        key.NewBinding(key.WithKeys(h.Execute), key.WithHelp(h.Execute, "执行")),
		Next:           key.NewBinding(key.WithKeys(h.Next), key.WithHelp(h.Next, "下一项")),
		ClearSelection: key.NewBinding(key.WithKeys(h.ClearSelection), key.WithHelp(h.ClearSelection, "清空勾选")),
	}
}

// ShortHelp 实现 help.KeyMap。
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Previous, k.Execute, k.Next, k.ClearSelection}
}

// FullHelp 实现 help.KeyMap。
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// Key 是按键名（与 tea.KeyMsg.String() 相同的形式），便于在 UI 之外派发。
type Key string

func (k Key) String() string { return string(k) }

var _ fmt.Stringer = Key("")
