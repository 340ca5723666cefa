package planner

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/John-Robertt/mediacopy/internal/domain"
)

// ErrNothingToDo 表示既没有勾选目标目录，也不删除源文件。
var ErrNothingToDo = errors.New("没有勾选目标目录，且未启用复制后删除")

// Plan 基于当前条目与已勾选目录生成确定性的执行计划（只做 Lstat，不做任何写入）。
//
// 规则：
// - 目标路径固定为 <dest>/<name>，已存在则覆盖
// - 目录按 selected 顺序，重复目录只保留第一次
// - 目标与源是同一路径时跳过复制，并且不删除源（否则会丢失唯一副本）
func Plan(entry domain.MediaEntry, selected []domain.DestinationFolder, deleteAfterCopy bool) (domain.DispositionPlan, error) {
	if len(selected) == 0 && !deleteAfterCopy {
		return domain.DispositionPlan{}, ErrNothingToDo
	}

	src := filepath.Clean(entry.Path)
	seen := make(map[string]struct{}, len(selected))
	copies := make([]domain.CopyPlan, 0, len(selected))
	selfTarget := false

	for _, d := range selected {
		dir := filepath.Clean(d.Path)
		if _, ok := seen[dir]; ok {
			continue
		}
		seen[dir] = struct{}{}

		dst := filepath.Join(dir, entry.Name)
		if dst == src {
			selfTarget = true
			continue
		}
		_, err := os.Lstat(dst)
		copies = append(copies, domain.CopyPlan{
			Dest:      dir,
			SrcAbs:    src,
			DstAbs:    dst,
			Overwrite: err == nil,
		})
	}

	return domain.DispositionPlan{
		Entry:  entry,
		Copies: copies,
		Trash:  deleteAfterCopy && !selfTarget,
	}, nil
}
