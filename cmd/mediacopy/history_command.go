package main

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/John-Robertt/mediacopy/internal/domain"
	"github.com/John-Robertt/mediacopy/internal/journal"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "显示最近的处置记录",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit <= 0 {
				return fmt.Errorf("--limit 必须大于 0，实际是 %d", limit)
			}
			eff, err := ctx.load(cmd, nil)
			if err != nil {
				return err
			}
			store, err := journal.Open(eff.JournalPath())
			if err != nil {
				return err
			}
			defer store.Close()

			entries, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "暂无记录")
				return nil
			}

			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				o := e.Outcome
				rows = append(rows, []string{
					strconv.FormatInt(e.ID, 10),
					o.FinishedAt.Local().Format("2006-01-02 15:04:05"),
					truncate(filepath.Base(o.Source), 48),
					strconv.Itoa(o.Summary.Copied),
					strconv.Itoa(o.Summary.Failed),
					sourceLabel(o),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"#", "时间", "文件", "复制", "失败", "源文件"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignRight, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "最多显示多少条")
	return cmd
}

func sourceLabel(o domain.Outcome) string {
	switch o.SourceStatus {
	case domain.SourceStatusTrashed:
		return "已回收"
	case domain.SourceStatusTrashFailed:
		return "回收失败"
	default:
		return "保留"
	}
}
