package main

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7C3AED")).
			Bold(true)
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#06B6D4")).
			Bold(true)
	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#475569"))
	focusBoxStyle = boxStyle.
			BorderForeground(lipgloss.Color("#7C3AED"))
	cursorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#7C3AED")).
			Bold(true)
	favoriteStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F59E0B"))
	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#94A3B8"))
	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EF4444")).
			Bold(true)
	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#06B6D4"))

	// 执行状态徽标：不可用灰色、仅删除红色、复制绿色。
	badgeBase = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Padding(0, 1).
			Bold(true)
	badgeDisabled   = badgeBase.Background(lipgloss.Color("#4B5563"))
	badgeDeleteOnly = badgeBase.Background(lipgloss.Color("#DC2626"))
	badgeCopy       = badgeBase.Background(lipgloss.Color("#059669"))
)
