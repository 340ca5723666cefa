package engine

import (
	"time"

	"github.com/John-Robertt/mediacopy/internal/domain"
)

// Observer 用于把“每个目标的复制结果/源文件处置/完成”从执行流程中解耦出来。
//
// 约束：engine 只发事件，不做任何输出；回调在调用 Execute 的 goroutine 上同步触发。
type Observer interface {
	// OnCopyDone 在每个目标目录复制结束（成功或失败）时调用，idx 从 0 开始。
	OnCopyDone(idx, total int, res domain.DestResult, dur time.Duration)
	// OnSourceDone 在源文件处置（保留/回收/回收失败）确定后调用。
	OnSourceDone(entry domain.MediaEntry, status string)
	// OnDone 在会话推进完成后调用。
	OnDone(out domain.Outcome)
}

// Recorder 持久化 Outcome（通常是 journal）。记录失败只写日志，不影响执行结果。
type Recorder interface {
	Record(out domain.Outcome) error
}

// Trasher 把源文件移入回收站，返回回收站内路径。
type Trasher interface {
	Trash(path string) (string, error)
}

// Selection 是 Execute 需要的目标目录视图。
type Selection interface {
	Selected() []domain.DestinationFolder
	ClearSelection()
}
