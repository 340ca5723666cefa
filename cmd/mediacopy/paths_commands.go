package main

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/John-Robertt/mediacopy/internal/config"
	"github.com/John-Robertt/mediacopy/internal/pathlist"
)

// 路径清单名（paths list 的参数）。
const (
	listIgnored   = "ignored"
	listFavorites = "favorites"
)

func newPathsCommand(ctx *commandContext) *cobra.Command {
	pathsCmd := &cobra.Command{
		Use:   "paths",
		Short: "管理忽略与收藏的目标目录",
	}

	pathsCmd.AddCommand(newPathsListCommand(ctx))
	pathsCmd.AddCommand(newPathsEditCommand(ctx, "ignore", "把目录加入忽略清单", listIgnored, true))
	pathsCmd.AddCommand(newPathsEditCommand(ctx, "unignore", "把目录移出忽略清单", listIgnored, false))
	pathsCmd.AddCommand(newPathsEditCommand(ctx, "favorite", "收藏目录", listFavorites, true))
	pathsCmd.AddCommand(newPathsEditCommand(ctx, "unfavorite", "取消收藏目录", listFavorites, false))
	return pathsCmd
}

func listFile(eff config.EffectiveConfig, name string) (string, error) {
	switch name {
	case listIgnored:
		return eff.IgnoredPathsFile(), nil
	case listFavorites:
		return eff.FavoritePathsFile(), nil
	default:
		return "", fmt.Errorf("清单只能是 %s 或 %s，实际是 %q", listIgnored, listFavorites, name)
	}
}

func newPathsListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list [ignored|favorites]",
		Short: "列出清单内容（默认两个都列）",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eff, err := ctx.load(cmd, nil)
			if err != nil {
				return err
			}
			names := []string{listFavorites, listIgnored}
			if len(args) == 1 {
				names = args[:1]
			}

			rows := make([][]string, 0, 16)
			for _, name := range names {
				file, err := listFile(eff, name)
				if err != nil {
					return err
				}
				l, err := pathlist.Load(file)
				if err != nil {
					return err
				}
				for i, p := range l.Items() {
					rows = append(rows, []string{name, strconv.Itoa(i + 1), p})
				}
			}

			out := cmd.OutOrStdout()
			if len(rows) == 0 {
				fmt.Fprintln(out, "清单为空")
				return nil
			}
			fmt.Fprintln(out, renderTable([]string{"清单", "#", "路径"}, rows, []columnAlignment{alignLeft, alignRight, alignLeft}))
			return nil
		},
	}
}

func newPathsEditCommand(ctx *commandContext, use, short, list string, add bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <path>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eff, err := ctx.load(cmd, nil)
			if err != nil {
				return err
			}
			file, err := listFile(eff, list)
			if err != nil {
				return err
			}
			l, err := pathlist.Load(file)
			if err != nil {
				return err
			}
			// 清单按字符串精确匹配；与目录扫描一致，统一为绝对路径。
			p, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			if add {
				err = l.Add(p)
			} else {
				err = l.Remove(p)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s：%s（%s）\n", use, p, l.Path())
			return nil
		},
	}
}
