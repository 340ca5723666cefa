package imgx

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/John-Robertt/mediacopy/internal/domain"
)

func writePNG(t *testing.T, dir, name string, w, h int) domain.MediaEntry {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{255, 0, 0, 255})
		}
	}
	p := filepath.Join(dir, name)
	f, err := os.Create(p)
	if err != nil {
		t.Fatalf("创建文件失败：%v", err)
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		t.Fatalf("encode png 失败：%v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("关闭文件失败：%v", err)
	}
	return domain.MediaEntry{Path: p, Name: name, Ext: ".png", Kind: domain.KindImage}
}

func TestProbe_PNG(t *testing.T) {
	e := writePNG(t, t.TempDir(), "a.png", 40, 20)
	info, err := Probe(e)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if info.Width != 40 || info.Height != 20 || info.Format != "png" {
		t.Fatalf("Info 不符合预期：%+v", info)
	}
	if !info.Taken.IsZero() || info.Camera != "" {
		t.Fatalf("PNG 无 EXIF，期望零值：%+v", info)
	}
}

func TestProbe_CorruptIsFileAccessError(t *testing.T) {
	p := filepath.Join(t.TempDir(), "bad.jpg")
	if err := os.WriteFile(p, []byte("not an image"), 0o644); err != nil {
		t.Fatalf("写入失败：%v", err)
	}
	_, err := Probe(domain.MediaEntry{Path: p, Name: "bad.jpg", Ext: ".jpg", Kind: domain.KindImage})
	if !domain.IsFileAccess(err) {
		t.Fatalf("期望 FileAccessError，实际：%v", err)
	}
}

func TestProbe_VideoNotDecoded(t *testing.T) {
	p := filepath.Join(t.TempDir(), "c.webm")
	if err := os.WriteFile(p, []byte("garbage"), 0o644); err != nil {
		t.Fatalf("写入失败：%v", err)
	}
	info, err := Probe(domain.MediaEntry{Path: p, Name: "c.webm", Ext: ".webm", Kind: domain.KindVideo})
	if err != nil {
		t.Fatalf("视频不应解码，不期望错误：%v", err)
	}
	if info.Format != "webm" || info.Width != 0 {
		t.Fatalf("Info 不符合预期：%+v", info)
	}
}

func TestProbe_Missing(t *testing.T) {
	_, err := Probe(domain.MediaEntry{Path: filepath.Join(t.TempDir(), "x.png"), Ext: ".png"})
	if !domain.IsFileAccess(err) {
		t.Fatalf("期望 FileAccessError，实际：%v", err)
	}
}

func TestThumbnail_FitsBox(t *testing.T) {
	e := writePNG(t, t.TempDir(), "a.png", 200, 100)
	img, err := Thumbnail(e, 40, 40)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	b := img.Bounds()
	if b.Dx() != 40 || b.Dy() != 20 {
		t.Fatalf("尺寸不符合预期：%dx%d", b.Dx(), b.Dy())
	}
	r, _, _, _ := img.At(20, 10).RGBA()
	if r>>8 < 200 {
		t.Fatalf("缩放后颜色不符合预期：r=%d", r>>8)
	}
}

func TestThumbnail_RefusesOversizedImage(t *testing.T) {
	old := maxThumbnailPixels
	maxThumbnailPixels = 100
	t.Cleanup(func() { maxThumbnailPixels = old })

	e := writePNG(t, t.TempDir(), "big.png", 20, 10)
	if _, err := Thumbnail(e, 40, 40); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("超过像素上限应返回 ErrTooLarge，实际 %v", err)
	}
	if _, err := Probe(e); err != nil {
		t.Fatalf("像素上限不影响 Probe：%v", err)
	}
}

func TestFitSize(t *testing.T) {
	cases := []struct {
		w, h, mw, mh int
		ww, wh       int
	}{
		{10, 10, 40, 40, 10, 10},
		{200, 100, 40, 40, 40, 20},
		{100, 200, 40, 40, 20, 40},
		{1000, 1, 10, 10, 10, 1},
	}
	for _, c := range cases {
		gw, gh := FitSize(c.w, c.h, c.mw, c.mh)
		if gw != c.ww || gh != c.wh {
			t.Fatalf("FitSize(%d,%d,%d,%d)=%d,%d want %d,%d", c.w, c.h, c.mw, c.mh, gw, gh, c.ww, c.wh)
		}
	}
}
