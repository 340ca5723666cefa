package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/John-Robertt/mediacopy/internal/config"
)

func newPrefsCommand(ctx *commandContext) *cobra.Command {
	prefsCmd := &cobra.Command{
		Use:   "prefs",
		Short: "查看或修改热键与启用的扩展名",
	}

	prefsCmd.AddCommand(newPrefsShowCommand(ctx))
	prefsCmd.AddCommand(newPrefsSetKeyCommand(ctx))
	prefsCmd.AddCommand(newPrefsFormatCommand(ctx, "enable", "启用扩展名", (*config.Preferences).Enable))
	prefsCmd.AddCommand(newPrefsFormatCommand(ctx, "disable", "停用扩展名", (*config.Preferences).Disable))
	return prefsCmd
}

func newPrefsShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "显示当前偏好",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			eff, err := ctx.load(cmd, nil)
			if err != nil {
				return err
			}
			p, err := loadPrefs(eff)
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(config.Actions))
			for _, a := range config.Actions {
				rows = append(rows, []string{string(a), p.Hotkeys.Key(a)})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable([]string{"动作", "按键"}, rows, nil))
			fmt.Fprintf(out, "启用：%s\n", orDash(config.JoinFormats(p.Enabled)))
			fmt.Fprintf(out, "停用：%s\n", orDash(config.JoinFormats(p.Supported)))
			if p.LastSource != "" {
				fmt.Fprintf(out, "最近源目录：%s\n", p.LastSource)
			}
			if p.LastDestRoot != "" {
				fmt.Fprintf(out, "最近目标根目录：%s\n", p.LastDestRoot)
			}
			fmt.Fprintf(out, "文件：%s\n", eff.PreferencesPath())
			return nil
		},
	}
}

func newPrefsSetKeyCommand(ctx *commandContext) *cobra.Command {
	names := make([]string, 0, len(config.Actions))
	for _, a := range config.Actions {
		names = append(names, string(a))
	}

	return &cobra.Command{
		Use:   "set-key <action> <key>",
		Short: "重新绑定热键（action：" + strings.Join(names, "|") + "）",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			eff, err := ctx.load(cmd, nil)
			if err != nil {
				return err
			}
			p, err := loadPrefs(eff)
			if err != nil {
				return err
			}
			if err := p.SetHotkey(config.Action(strings.ToLower(strings.TrimSpace(args[0]))), args[1]); err != nil {
				return err
			}
			if err := config.SavePreferences(eff.PreferencesPath(), p); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", args[0], strings.TrimSpace(args[1]))
			return nil
		},
	}
}

func newPrefsFormatCommand(ctx *commandContext, use, short string, apply func(*config.Preferences, string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <ext>...",
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eff, err := ctx.load(cmd, nil)
			if err != nil {
				return err
			}
			p, err := loadPrefs(eff)
			if err != nil {
				return err
			}
			for _, ext := range args {
				if err := apply(&p, ext); err != nil {
					return fmt.Errorf("%s %q：%w", use, ext, err)
				}
			}
			if err := config.SavePreferences(eff.PreferencesPath(), p); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "启用：%s\n", orDash(config.JoinFormats(p.Enabled)))
			return nil
		},
	}
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
