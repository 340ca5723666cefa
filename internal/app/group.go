package app

import (
	"sort"

	"github.com/John-Robertt/mediacopy/internal/domain"
)

// ExtSummary 是按扩展名聚合的统计。
type ExtSummary struct {
	Ext   string
	Kind  domain.MediaKind
	Count int
	Bytes int64
}

// GroupByExt 把条目按扩展名分组统计。
//
// - 结果稳定排序：按 Ext 字典序
// - Ext 为空的条目归入 ""（通常不会出现：扫描只保留已启用扩展名）
func GroupByExt(entries []domain.MediaEntry) []ExtSummary {
	index := make(map[string]int, 16)
	out := make([]ExtSummary, 0, 16)

	for i := range entries {
		e := entries[i]
		if idx, ok := index[e.Ext]; ok {
			out[idx].Count++
			out[idx].Bytes += e.Size
			continue
		}
		index[e.Ext] = len(out)
		out = append(out, ExtSummary{Ext: e.Ext, Kind: domain.KindOf(e.Ext), Count: 1, Bytes: e.Size})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Ext < out[j].Ext })
	return out
}
