package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/John-Robertt/mediacopy/internal/config"
	"github.com/John-Robertt/mediacopy/internal/logging"
)

// commandContext 保存根命令的持久参数，子命令按需加载配置。
type commandContext struct {
	configFlag   string
	stateDirFlag string
	logLevelFlag string
}

// interactive 报告 stdin/stdout 是否都是终端（测试中可替换）。
var interactive = stdioIsTerminal

func newRootCommand() *cobra.Command {
	ctx := &commandContext{}

	rootCmd := &cobra.Command{
		Use:           "mediacopy",
		Short:         "逐张浏览图片/视频，一键复制或移动到勾选的目录",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&ctx.configFlag, "config", "c", "", "配置文件路径（默认 ~/.config/mediacopy/config.toml）")
	rootCmd.PersistentFlags().StringVar(&ctx.stateDirFlag, "state-dir", "", "状态目录（路径清单、日志、journal）")
	rootCmd.PersistentFlags().StringVar(&ctx.logLevelFlag, "log-level", "", "日志级别：debug|info|warn|error")

	rootCmd.AddCommand(newBrowseCommand(ctx))
	rootCmd.AddCommand(newScanCommand(ctx))
	rootCmd.AddCommand(newPrefsCommand(ctx))
	rootCmd.AddCommand(newPathsCommand(ctx))
	rootCmd.AddCommand(newHistoryCommand(ctx))

	return rootCmd
}

// load 合并配置文件与命令行参数；extra 用于子命令追加自己的覆盖项。
func (c *commandContext) load(cmd *cobra.Command, extra func(*config.CLIArgs)) (config.EffectiveConfig, error) {
	cli := config.CLIArgs{
		ConfigPath:  c.configFlag,
		StateDir:    c.stateDirFlag,
		StateDirSet: cmd.Flags().Changed("state-dir"),
		LogLevel:    c.logLevelFlag,
		LogLevelSet: cmd.Flags().Changed("log-level"),
	}
	if extra != nil {
		extra(&cli)
	}
	eff, err := config.LoadEffective(cli)
	if err != nil {
		return config.EffectiveConfig{}, fmt.Errorf("加载配置失败（%s）：%w", config.Code(err), err)
	}
	return eff, nil
}

// loadPrefs 读取 preferences.toml；文件不存在时返回默认偏好。
func loadPrefs(eff config.EffectiveConfig) (config.Preferences, error) {
	p, err := config.LoadPreferences(eff.PreferencesPath())
	if err != nil {
		return config.Preferences{}, fmt.Errorf("读取偏好失败（%s）：%w", config.Code(err), err)
	}
	return p, nil
}

// openLogger 打开 <state_dir>/mediacopy.log。
func openLogger(eff config.EffectiveConfig) (*slog.Logger, io.Closer, error) {
	return logging.New(logging.Options{
		Level:  eff.LogLevel,
		Format: eff.LogFormat,
		Path:   eff.LogPath(),
	})
}

func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func stdioIsTerminal() bool {
	return isTerminal(os.Stdin) && isTerminal(os.Stdout)
}
