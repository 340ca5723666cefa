package domain

import "time"

// MediaKind 区分条目的展示方式：图片直接探测尺寸，视频交给外部播放器。
type MediaKind string

const (
	KindImage MediaKind = "image"
	KindVideo MediaKind = "video"
)

// MediaEntry 描述一次扫描得到的媒体文件（只做 stat，不读内容）。
//
// 不变量：
// - Path 必须是 clean + absolute
// - 扫描完成后不可变；会话只会删除条目，不会修改条目
type MediaEntry struct {
	Path    string
	Name    string // 含扩展名
	Ext     string // 小写，带 '.'，例如 ".jpg"
	Size    int64
	ModTime time.Time
	Kind    MediaKind
}

// IsVideo 报告该条目是否按视频处理。
func (e MediaEntry) IsVideo() bool { return e.Kind == KindVideo }

// SizeMB 返回以 MB 为单位的大小（保留两位小数），用于上传大小限制判断。
func (e MediaEntry) SizeMB() float64 {
	mb := float64(e.Size) / 1024.0 / 1024.0
	return float64(int64(mb*100+0.5)) / 100
}

var videoExts = map[string]struct{}{
	".webm": {},
	".mp4":  {},
	".mkv":  {},
	".mov":  {},
	".avi":  {},
	".m4v":  {},
}

// KindOf 按扩展名推断媒体类型；未知扩展名一律按图片处理。
func KindOf(ext string) MediaKind {
	if _, ok := videoExts[ext]; ok {
		return KindVideo
	}
	return KindImage
}
