package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/John-Robertt/mediacopy/internal/app"
	"github.com/John-Robertt/mediacopy/internal/app/engine"
	"github.com/John-Robertt/mediacopy/internal/domain"
)

var _ engine.Observer = (*activityLog)(nil)

// activityLog 把 engine 事件整理成最近几行活动记录，供 TUI 底部展示。
//
// engine 在调用 Execute 的 goroutine 上同步回调，而 Execute 只在 UI 循环里调用，所以这里不加锁。
type activityLog struct {
	max   int
	lines []string
	now   func() time.Time
}

func newActivityLog(max int) *activityLog {
	if max <= 0 {
		max = 6
	}
	return &activityLog{max: max, now: time.Now}
}

func (l *activityLog) OnCopyDone(idx, total int, res domain.DestResult, dur time.Duration) {
	switch res.Status {
	case domain.DestStatusFailed:
		l.push(fmt.Sprintf("[%d/%d] FAIL %s %s: %s (%s)",
			idx+1, total, filepath.Base(res.Dest), res.ErrorCode, truncate(res.ErrorMsg, 120), formatShortDuration(dur)))
	default:
		l.push(fmt.Sprintf("[%d/%d] OK %s (%s)", idx+1, total, filepath.Base(res.Dest), formatShortDuration(dur)))
	}
}

func (l *activityLog) OnSourceDone(entry domain.MediaEntry, status string) {
	switch status {
	case domain.SourceStatusTrashed:
		l.push(fmt.Sprintf("已移入回收站：%s", entry.Name))
	case domain.SourceStatusTrashFailed:
		l.push(fmt.Sprintf("回收失败（已移出会话）：%s", entry.Name))
	}
}

func (l *activityLog) OnDone(out domain.Outcome) {
	l.push(formatOutcome(out))
}

// Dropped 记录因加载失败被跳过的条目。
func (l *activityLog) Dropped(ds []app.Dropped) {
	for _, d := range ds {
		l.push(fmt.Sprintf("无法加载，已跳过：%s %s", d.Entry.Name, domain.Code(d.Err)))
	}
}

// Note 追加一行任意提示。
func (l *activityLog) Note(s string) { l.push(s) }

func (l *activityLog) Lines() []string {
	out := make([]string, len(l.lines))
	copy(out, l.lines)
	return out
}

func (l *activityLog) push(s string) {
	line := fmt.Sprintf("%s %s", l.now().Format("15:04:05"), s)
	l.lines = append(l.lines, line)
	if over := len(l.lines) - l.max; over > 0 {
		l.lines = append(l.lines[:0], l.lines[over:]...)
	}
}

// formatOutcome 返回一次执行的单行摘要。
func formatOutcome(out domain.Outcome) string {
	name := filepath.Base(out.Source)
	dur := out.FinishedAt.Sub(out.StartedAt)
	var b strings.Builder
	fmt.Fprintf(&b, "完成 %s：copied=%d failed=%d", name, out.Summary.Copied, out.Summary.Failed)
	switch out.SourceStatus {
	case domain.SourceStatusTrashed:
		b.WriteString(" 源文件已回收")
	case domain.SourceStatusTrashFailed:
		b.WriteString(" 源文件回收失败")
	}
	fmt.Fprintf(&b, " (%s)", formatShortDuration(dur))
	return b.String()
}

// formatEntryInfo 返回当前条目的一行说明（大小、尺寸、拍摄信息）。
func formatEntryInfo(e domain.MediaEntry, w, h int, taken time.Time, camera string) string {
	parts := []string{e.Name, humanize.IBytes(uint64(e.Size))}
	if w > 0 && h > 0 {
		parts = append(parts, fmt.Sprintf("%dx%d", w, h))
	}
	if e.IsVideo() {
		parts = append(parts, "视频")
	}
	if !taken.IsZero() {
		parts = append(parts, "拍摄于 "+taken.Format("2006-01-02 15:04"))
	}
	if camera = strings.TrimSpace(camera); camera != "" {
		parts = append(parts, camera)
	}
	parts = append(parts, "修改于 "+humanize.Time(e.ModTime))
	return strings.Join(parts, "  ")
}

func truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if max <= 0 || len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}

func formatShortDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}
