package main

import (
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/John-Robertt/mediacopy/internal/domain"
)

func TestRenderHalfBlocks_TwoPixelsPerCell(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 5))
	for y := 0; y < 5; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 60), G: uint8(y * 50), B: 10, A: 255})
		}
	}

	lines := strings.Split(renderHalfBlocks(img), "\n")
	if len(lines) != 3 {
		t.Fatalf("5 行像素应渲染成 3 行，实际 %d", len(lines))
	}
	for i, l := range lines {
		if n := strings.Count(l, halfBlock); n != 4 {
			t.Fatalf("第 %d 行期望 4 个字符格，实际 %d", i, n)
		}
	}
}

func TestHexColor(t *testing.T) {
	if got := hexColor(color.RGBA{R: 255, G: 16, B: 1, A: 255}); got != "#ff1001" {
		t.Fatalf("实际 %q", got)
	}
}

func TestRenderPreview_VideoPlaceholder(t *testing.T) {
	out, err := renderPreview(domain.MediaEntry{Name: "clip.webm", Kind: domain.KindVideo}, 30, 5)
	if err != nil {
		t.Fatalf("视频不应解码：%v", err)
	}
	if !strings.Contains(out, "clip.webm") {
		t.Fatalf("占位内容缺少文件名：%q", out)
	}
}
