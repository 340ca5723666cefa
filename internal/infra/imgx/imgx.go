package imgx

import (
	"errors"
	"image"
	_ "image/gif"  // 注册 GIF 解码器
	_ "image/jpeg" // 注册 JPEG 解码器
	_ "image/png"  // 注册 PNG 解码器
	"io"
	"os"
	"strings"
	"time"

	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/bmp"  // 注册 BMP 解码器
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/tiff" // 注册 TIFF 解码器
	_ "golang.org/x/image/webp" // 注册 WebP 解码器

	"github.com/John-Robertt/mediacopy/internal/domain"
)

// ErrTooLarge 表示图片像素数超过预览上限，不做全图解码。
var ErrTooLarge = errors.New("图片过大，不生成预览")

// maxThumbnailPixels 是 Thumbnail 允许完整解码的最大像素数（约 RGBA 200MB）。
var maxThumbnailPixels int64 = 50_000_000

// Info 是当前条目的展示元数据。
type Info struct {
	Width  int
	Height int
	Format string

	// Taken/Camera 来自 EXIF，读取失败时为零值（EXIF 缺失很常见，不视为错误）。
	Taken  time.Time
	Camera string
}

// Probe 读取图片头部得到尺寸与格式，并尽力解析 EXIF。
//
// 视频条目不解码，只确认文件可读。
// 任何打开/解码失败都返回 *domain.FileAccessError，调用方据此把条目移出会话。
func Probe(e domain.MediaEntry) (Info, error) {
	f, err := os.Open(e.Path)
	if err != nil {
		return Info{}, &domain.FileAccessError{Op: "open", Path: e.Path, Err: err}
	}
	defer f.Close()

	if e.IsVideo() {
		return Info{Format: strings.TrimPrefix(e.Ext, ".")}, nil
	}

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return Info{}, &domain.FileAccessError{Op: "decode", Path: e.Path, Err: err}
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return Info{}, &domain.FileAccessError{Op: "decode", Path: e.Path, Err: errors.New("图片尺寸无效")}
	}
	info := Info{Width: cfg.Width, Height: cfg.Height, Format: format}

	if _, err := f.Seek(0, io.SeekStart); err == nil {
		readExif(f, &info)
	}
	return info, nil
}

func readExif(r io.Reader, info *Info) {
	x, err := exif.Decode(r)
	if err != nil {
		return
	}
	if t, err := x.DateTime(); err == nil {
		info.Taken = t
	}
	if tag, err := x.Get(exif.Model); err == nil {
		if s, err := tag.StringVal(); err == nil {
			info.Camera = strings.TrimSpace(strings.Trim(s, "\x00"))
		}
	}
}

// Thumbnail 解码图片并等比缩放到 maxW x maxH 以内（用于终端预览）。
//
// 约束：
// - 只放大到原尺寸为止，不做上采样
// - 视频条目返回错误（不解码）
// - 像素数超过上限时只读头部，返回 ErrTooLarge
func Thumbnail(e domain.MediaEntry, maxW, maxH int) (image.Image, error) {
	if e.IsVideo() {
		return nil, errors.New("视频不生成预览")
	}
	if maxW <= 0 || maxH <= 0 {
		return nil, errors.New("预览尺寸无效")
	}
	f, err := os.Open(e.Path)
	if err != nil {
		return nil, &domain.FileAccessError{Op: "open", Path: e.Path, Err: err}
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return nil, &domain.FileAccessError{Op: "decode", Path: e.Path, Err: err}
	}
	if int64(cfg.Width)*int64(cfg.Height) > maxThumbnailPixels {
		return nil, &domain.FileAccessError{Op: "decode", Path: e.Path, Err: ErrTooLarge}
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, &domain.FileAccessError{Op: "open", Path: e.Path, Err: err}
	}

	src, _, err := image.Decode(f)
	if err != nil {
		return nil, &domain.FileAccessError{Op: "decode", Path: e.Path, Err: err}
	}
	b := src.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, &domain.FileAccessError{Op: "decode", Path: e.Path, Err: errors.New("图片尺寸无效")}
	}

	w, h := FitSize(b.Dx(), b.Dy(), maxW, maxH)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, b, xdraw.Src, nil)
	return dst, nil
}

// FitSize 计算 (w,h) 等比缩放进 (maxW,maxH) 后的尺寸，结果至少为 1x1。
func FitSize(w, h, maxW, maxH int) (int, int) {
	if w <= maxW && h <= maxH {
		return w, h
	}
	// 比较 maxW/w 与 maxH/h，避免浮点
	if maxW*h <= maxH*w {
		nh := h * maxW / w
		if nh < 1 {
			nh = 1
		}
		return maxW, nh
	}
	nw := w * maxH / h
	if nw < 1 {
		nw = 1
	}
	return nw, maxH
}
