// Package logging 构造写入日志文件的 slog logger（终端由 TUI 独占）。
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// 结构化日志的统一字段名。
const (
	FieldComponent = "component"
	FieldSession   = "session_id"
	FieldPath      = "path"
	FieldDest      = "dest"
	FieldCode      = "error_code"
)

// Options 描述 logger 构造参数。
type Options struct {
	Level  string
	Format string
	// Path 为空时写到 Writer（Writer 也为空则丢弃）。
	Path   string
	Writer io.Writer
}

// New 按 Options 构造 logger，返回的 io.Closer 负责关闭日志文件。
func New(opts Options) (*slog.Logger, io.Closer, error) {
	var (
		w      io.Writer = io.Discard
		closer io.Closer = nopCloser{}
	)
	switch {
	case strings.TrimSpace(opts.Path) != "":
		if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
			return nil, nil, fmt.Errorf("创建日志目录失败：%w", err)
		}
		f, err := os.OpenFile(opts.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("打开日志文件失败：%w", err)
		}
		w, closer = f, f
	case opts.Writer != nil:
		w = opts.Writer
	}

	level := new(slog.LevelVar)
	level.Set(parseLevel(opts.Level))
	hopts := &slog.HandlerOptions{Level: level}

	var h slog.Handler
	switch strings.ToLower(strings.TrimSpace(opts.Format)) {
	case "", "text":
		h = slog.NewTextHandler(w, hopts)
	case "json":
		h = slog.NewJSONHandler(w, hopts)
	default:
		_ = closer.Close()
		return nil, nil, fmt.Errorf("日志格式不支持：%q", opts.Format)
	}
	return slog.New(h), closer, nil
}

// NewNop 返回丢弃一切输出的 logger。
func NewNop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

// Component 给 logger 附加组件名。
func Component(l *slog.Logger, name string) *slog.Logger {
	if l == nil {
		l = NewNop()
	}
	return l.With(FieldComponent, name)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
