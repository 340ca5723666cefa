package domain

// CopyPlan 规划一次复制（只描述 src/dst；目标存在时覆盖）。
type CopyPlan struct {
	Dest      string // 目标目录
	SrcAbs    string
	DstAbs    string
	Overwrite bool // 规划时目标已存在
}

// DispositionPlan 是对当前条目的最小执行计划。
type DispositionPlan struct {
	Entry  MediaEntry
	Copies []CopyPlan
	Trash  bool
}
