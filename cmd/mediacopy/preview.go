package main

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/John-Robertt/mediacopy/internal/domain"
	"github.com/John-Robertt/mediacopy/internal/infra/imgx"
)

// halfBlock 的上半部分用前景色，下半部分用背景色：一个字符格显示两个像素。
const halfBlock = "▀"

// renderPreview 把条目缩放到 cols x rows 个字符格以内并渲染成半块字符。
// 视频不解码，只显示占位说明。
func renderPreview(e domain.MediaEntry, cols, rows int) (string, error) {
	if cols <= 0 || rows <= 0 {
		return "", nil
	}
	if e.IsVideo() {
		return placeholder(fmt.Sprintf("[视频] %s\n按 o 用系统播放器打开", e.Name), cols, rows), nil
	}
	img, err := imgx.Thumbnail(e, cols, rows*2)
	if err != nil {
		return "", err
	}
	return renderHalfBlocks(img), nil
}

func renderHalfBlocks(img image.Image) string {
	b := img.Bounds()
	lines := make([]string, 0, (b.Dy()+1)/2)
	for y := b.Min.Y; y < b.Max.Y; y += 2 {
		var sb strings.Builder
		for x := b.Min.X; x < b.Max.X; x++ {
			st := lipgloss.NewStyle().Foreground(lipgloss.Color(hexColor(img.At(x, y))))
			if y+1 < b.Max.Y {
				st = st.Background(lipgloss.Color(hexColor(img.At(x, y+1))))
			}
			sb.WriteString(st.Render(halfBlock))
		}
		lines = append(lines, sb.String())
	}
	return strings.Join(lines, "\n")
}

func hexColor(c color.Color) string {
	r, g, b, _ := c.RGBA()
	return fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, b>>8)
}

func placeholder(msg string, cols, rows int) string {
	return lipgloss.Place(cols, rows, lipgloss.Center, lipgloss.Center, mutedStyle.Render(msg))
}
