// Package engine 执行对当前条目的处置：复制到所有勾选目录，按需回收源文件，然后推进会话。
package engine

import (
	"errors"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/John-Robertt/mediacopy/internal/app/planner"
	"github.com/John-Robertt/mediacopy/internal/domain"
	"github.com/John-Robertt/mediacopy/internal/infra/fsx"
	"github.com/John-Robertt/mediacopy/internal/logging"
	"github.com/John-Robertt/mediacopy/internal/session"
)

// ErrNoCurrent 表示会话没有当前条目。
var ErrNoCurrent = errors.New("没有当前条目")

// ErrNothingToDo 见 planner.ErrNothingToDo。
var ErrNothingToDo = planner.ErrNothingToDo

// Engine 是处置引擎。零值不可用：Trash 必须设置（deleteAfterCopy=true 时）。
type Engine struct {
	Trash    Trasher
	Observer Observer
	Recorder Recorder
	Logger   *slog.Logger

	// ResetSelections=true 时每次执行后取消全部勾选。
	ResetSelections bool

	// copyFile 为测试注入点（默认 fsx.CopyFile）。
	copyFile func(src, dir, name string) error
	now      func() time.Time
}

// Execute 对会话当前条目执行一次处置。
//
// 流程：
// 1) 逐个复制到勾选目录（覆盖）；单个失败只记录，其余照常执行
// 2) deleteAfterCopy=true：回收源文件并从会话删除（回收失败同样删除）
// 3) 否则跳过当前条目
// 4) ResetSelections=true：取消全部勾选
// 5) 刷新会话（越过末尾时回绕）
//
// 守卫：没有当前条目返回 ErrNoCurrent；没有勾选且不删除返回 ErrNothingToDo。两者都不改变任何状态。
func (e *Engine) Execute(s *session.Session, sel Selection, deleteAfterCopy bool) (domain.Outcome, error) {
	entry, ok := s.Current()
	if !ok {
		return domain.Outcome{}, ErrNoCurrent
	}
	plan, err := planner.Plan(entry, sel.Selected(), deleteAfterCopy)
	if err != nil {
		return domain.Outcome{}, err
	}

	log := logging.Component(e.Logger, "engine").With(logging.FieldSession, s.ID(), logging.FieldPath, entry.Path)
	now := e.now
	if now == nil {
		now = time.Now
	}
	copyFile := e.copyFile
	if copyFile == nil {
		copyFile = fsx.CopyFile
	}

	out := domain.Outcome{
		SessionID:       s.ID(),
		Source:          entry.Path,
		DeleteAfterCopy: deleteAfterCopy,
		SourceStatus:    domain.SourceStatusKept,
		StartedAt:       now(),
		Dests:           make([]domain.DestResult, 0, len(plan.Copies)),
	}

	for i, cp := range plan.Copies {
		started := time.Now()
		res := domain.DestResult{Dest: cp.Dest, Target: cp.DstAbs, Status: domain.DestStatusPlanned}
		if err := copyFile(cp.SrcAbs, filepath.Dir(cp.DstAbs), filepath.Base(cp.DstAbs)); err != nil {
			ferr := &domain.FileAccessError{Op: "copy", Path: cp.DstAbs, Err: err}
			res.Status = domain.DestStatusFailed
			res.ErrorCode = domain.Code(ferr)
			res.ErrorMsg = ferr.Error()
			log.Warn("复制失败", logging.FieldDest, cp.Dest, logging.FieldCode, res.ErrorCode, "error", err)
		} else {
			res.Status = domain.DestStatusCopied
			log.Debug("已复制", logging.FieldDest, cp.Dest, "overwrite", cp.Overwrite)
		}
		out.Dests = append(out.Dests, res)
		if e.Observer != nil {
			e.Observer.OnCopyDone(i, len(plan.Copies), res, time.Since(started))
		}
	}

	// 所有目标都复制失败时保留源文件，否则回收后磁盘上一份都不剩。
	allFailed := len(plan.Copies) > 0 && !anyCopied(out.Dests)
	switch {
	case plan.Trash && allFailed:
		log.Warn("所有目标复制失败，保留源文件")
		s.Skip()
	case plan.Trash:
		out.SourceStatus = e.trashSource(entry, &out, log)
		s.RemoveCurrent()
	default:
		s.Skip()
	}
	if e.Observer != nil {
		e.Observer.OnSourceDone(entry, out.SourceStatus)
	}

	if e.ResetSelections {
		sel.ClearSelection()
	}
	s.Refresh()

	out.FinishedAt = now()
	out.Finalize()

	log.Info("处置完成", "copied", out.Summary.Copied, "failed", out.Summary.Failed, "source", out.SourceStatus)
	if e.Recorder != nil {
		if err := e.Recorder.Record(out); err != nil {
			log.Warn("写入 journal 失败", "error", err)
		}
	}
	if e.Observer != nil {
		e.Observer.OnDone(out)
	}
	return out, nil
}

func anyCopied(rs []domain.DestResult) bool {
	for _, r := range rs {
		if r.Status == domain.DestStatusCopied {
			return true
		}
	}
	return false
}

func (e *Engine) trashSource(entry domain.MediaEntry, out *domain.Outcome, log *slog.Logger) string {
	if e.Trash == nil {
		err := &domain.FileAccessError{Op: "trash", Path: entry.Path, Err: errors.New("未配置回收站")}
		out.SourceErrorMsg = err.Error()
		log.Error("回收失败", logging.FieldCode, domain.ErrCodeFileAccess, "error", err)
		return domain.SourceStatusTrashFailed
	}
	dst, err := e.Trash.Trash(entry.Path)
	if err != nil {
		ferr := &domain.FileAccessError{Op: "trash", Path: entry.Path, Err: err}
		out.SourceErrorMsg = ferr.Error()
		log.Warn("回收失败", logging.FieldCode, domain.ErrCodeFileAccess, "error", err)
		return domain.SourceStatusTrashFailed
	}
	log.Debug("已回收", "trash_path", dst)
	return domain.SourceStatusTrashed
}
