package domain

import (
	"encoding/json"
	"time"
)

const (
	DestStatusPlanned = "planned"
	DestStatusCopied  = "copied"
	DestStatusFailed  = "failed"
)

const (
	SourceStatusKept        = "kept"
	SourceStatusTrashed     = "trashed"
	SourceStatusTrashFailed = "trash_failed"
)

// Outcome 是一次 Execute 的对外稳定结果（供 UI 提示与 journal 落盘）。
type Outcome struct {
	SessionID string `json:"session_id"`
	Source    string `json:"source"`

	DeleteAfterCopy bool   `json:"delete_after_copy"`
	SourceStatus    string `json:"source_status"`
	SourceErrorMsg  string `json:"source_error_msg,omitempty"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	Summary OutcomeSummary `json:"summary"`
	Dests   []DestResult   `json:"dests"`
}

type OutcomeSummary struct {
	Copied int `json:"copied"`
	Failed int `json:"failed"`
}

type DestResult struct {
	Dest      string `json:"dest"`
	Target    string `json:"target"`
	Status    string `json:"status"`
	ErrorCode string `json:"error_code,omitempty"`
	ErrorMsg  string `json:"error_msg,omitempty"`
}

// Finalize 做两件事：
// 1) 时间统一为 UTC
// 2) summary 由 dests 计算得出（dests 保持计划顺序，不排序）
func (o *Outcome) Finalize() {
	o.StartedAt = o.StartedAt.UTC()
	o.FinishedAt = o.FinishedAt.UTC()

	var s OutcomeSummary
	for _, d := range o.Dests {
		switch d.Status {
		case DestStatusCopied:
			s.Copied++
		case DestStatusFailed:
			s.Failed++
		}
	}
	o.Summary = s
}

// OK 报告本次执行是否没有任何失败（复制与回收都成功）。
func (o Outcome) OK() bool {
	return o.Summary.Failed == 0 && o.SourceStatus != SourceStatusTrashFailed
}

// MarshalJSON 仅用于集中约束输出的稳定性：nil dests 输出为 []。
func (o Outcome) MarshalJSON() ([]byte, error) {
	type Alias Outcome
	if o.Dests == nil {
		o.Dests = []DestResult{}
	}
	return json.Marshal(Alias(o))
}
