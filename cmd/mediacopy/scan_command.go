package main

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/John-Robertt/mediacopy/internal/app"
	"github.com/John-Robertt/mediacopy/internal/config"
	"github.com/John-Robertt/mediacopy/internal/scan"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	var recursive bool

	cmd := &cobra.Command{
		Use:   "scan <source>",
		Short: "预览源目录中会进入会话的文件（按扩展名统计）",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eff, err := ctx.load(cmd, func(cli *config.CLIArgs) {
				cli.IncludeSourceSubdirs = recursive
				cli.IncludeSourceSubdirsSet = cmd.Flags().Changed("recursive")
			})
			if err != nil {
				return err
			}
			prefs, err := loadPrefs(eff)
			if err != nil {
				return err
			}

			entries, err := scan.ScanMedia(args[0], eff.IncludeSourceSubdirs, prefs.Enabled)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintf(out, "没有匹配的文件（启用的扩展名：%s）\n", config.JoinFormats(prefs.Enabled))
				return nil
			}

			var total int64
			rows := make([][]string, 0, 8)
			for _, s := range app.GroupByExt(entries) {
				total += s.Bytes
				rows = append(rows, []string{s.Ext, string(s.Kind), strconv.Itoa(s.Count), humanize.IBytes(uint64(s.Bytes))})
			}
			rows = append(rows, []string{"合计", "", strconv.Itoa(len(entries)), humanize.IBytes(uint64(total))})

			fmt.Fprintln(out, renderTable(
				[]string{"扩展名", "类型", "数量", "大小"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "包含子目录")
	return cmd
}
