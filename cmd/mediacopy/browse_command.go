package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"github.com/John-Robertt/mediacopy/internal/app"
	"github.com/John-Robertt/mediacopy/internal/app/engine"
	"github.com/John-Robertt/mediacopy/internal/config"
	"github.com/John-Robertt/mediacopy/internal/infra/httpx"
	"github.com/John-Robertt/mediacopy/internal/infra/opener"
	"github.com/John-Robertt/mediacopy/internal/infra/trash"
	"github.com/John-Robertt/mediacopy/internal/journal"
	"github.com/John-Robertt/mediacopy/internal/logging"
	"github.com/John-Robertt/mediacopy/internal/pathlist"
	"github.com/John-Robertt/mediacopy/internal/search"
	"github.com/John-Robertt/mediacopy/internal/search/imagebin"
	"github.com/John-Robertt/mediacopy/internal/selector"
)

// errNotInteractive 表示 browse 没有运行在交互终端里。
var errNotInteractive = errors.New("browse 需要交互终端（stdin/stdout 必须是 TTY）")

func newBrowseCommand(ctx *commandContext) *cobra.Command {
	var (
		destRoot      string
		deleteAfter   bool
		recursive     bool
		destRecursive bool
	)

	cmd := &cobra.Command{
		Use:   "browse [source]",
		Short: "逐张浏览源目录，把当前文件复制/移动到勾选的目标目录",
		Long: `逐张浏览源目录，把当前文件复制/移动到勾选的目标目录。

source 与 --dest 省略时使用上一次的路径。默认热键：
  left 上一项  enter 执行  right 下一项  backspace 清空勾选
可通过 "mediacopy prefs set-key" 重新绑定。`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !interactive() {
				return errNotInteractive
			}

			eff, err := ctx.load(cmd, func(cli *config.CLIArgs) {
				cli.DeleteAfterCopy = deleteAfter
				cli.DeleteAfterCopySet = cmd.Flags().Changed("delete")
				cli.IncludeSourceSubdirs = recursive
				cli.IncludeSourceSubdirsSet = cmd.Flags().Changed("recursive")
				cli.IncludeDestSubdirs = destRecursive
				cli.IncludeDestSubdirsSet = cmd.Flags().Changed("dest-recursive")
			})
			if err != nil {
				return err
			}
			prefs, err := loadPrefs(eff)
			if err != nil {
				return err
			}

			// 同一状态目录只允许一个 browse：路径清单与偏好都是整文件回写。
			if err := os.MkdirAll(eff.StateDir, 0o755); err != nil {
				return fmt.Errorf("创建状态目录失败：%w", err)
			}
			lock := flock.New(eff.LockPath())
			ok, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("获取锁失败：%w", err)
			}
			if !ok {
				return fmt.Errorf("另一个 mediacopy browse 正在使用 %s", eff.StateDir)
			}
			defer lock.Unlock()

			log, logCloser, err := openLogger(eff)
			if err != nil {
				return err
			}
			defer logCloser.Close()

			activity := newActivityLog(5)
			a, cleanup, err := newBrowseApp(eff, prefs, log, activity)
			if err != nil {
				return err
			}
			defer cleanup()

			source := strings.TrimSpace(prefs.LastSource)
			if len(args) == 1 {
				source = args[0]
			}
			dest := strings.TrimSpace(prefs.LastDestRoot)
			if cmd.Flags().Changed("dest") {
				dest = destRoot
			}
			openInitial(a, activity, source, dest)

			m := newModel(cmd.Context(), a, activity)
			if _, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
				return err
			}

			if err := config.SavePreferences(eff.PreferencesPath(), a.Prefs()); err != nil {
				log.Error("保存偏好失败", logging.FieldPath, eff.PreferencesPath(), "error", err)
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&destRoot, "dest", "d", "", "目标根目录（其子目录作为可勾选的目标）")
	cmd.Flags().BoolVar(&deleteAfter, "delete", true, "执行后把源文件移入回收站（--delete=false 只复制）")
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "源目录包含子目录")
	cmd.Flags().BoolVar(&destRecursive, "dest-recursive", true, "目标根目录包含多级子目录")
	return cmd
}

// newBrowseApp 按配置组装 App 及其依赖；返回的 cleanup 负责关闭 journal。
func newBrowseApp(eff config.EffectiveConfig, prefs config.Preferences, log *slog.Logger, obs engine.Observer) (*app.App, func(), error) {
	ignored, err := pathlist.Load(eff.IgnoredPathsFile())
	if err != nil {
		return nil, nil, err
	}
	favorites, err := pathlist.Load(eff.FavoritePathsFile())
	if err != nil {
		return nil, nil, err
	}

	bin, err := trash.Default(eff.TrashFallbackDir())
	if err != nil {
		return nil, nil, fmt.Errorf("定位回收站失败：%w", err)
	}

	var (
		recorder engine.Recorder
		closers  []io.Closer
	)
	if eff.Journal {
		store, err := journal.Open(eff.JournalPath())
		if err != nil {
			// journal 只是历史记录：打不开时继续工作。
			log.Warn("打开 journal 失败，本次不记录历史", logging.FieldPath, eff.JournalPath(), "error", err)
		} else {
			recorder = store
			closers = append(closers, store)
		}
	}
	cleanup := func() {
		for _, c := range closers {
			_ = c.Close()
		}
	}

	searcher, err := newSearcher(eff, log)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	a, err := app.New(app.Options{
		Prefs:    prefs,
		Selector: selector.New(ignored, favorites),
		Engine: &engine.Engine{
			Trash:           bin,
			Observer:        obs,
			Recorder:        recorder,
			Logger:          log,
			ResetSelections: eff.ResetSelections,
		},
		Searcher:             searcher,
		Opener:               opener.System{},
		Logger:               log,
		DeleteAfterCopy:      eff.DeleteAfterCopy,
		IncludeSourceSubdirs: eff.IncludeSourceSubdirs,
		IncludeDestSubdirs:   eff.IncludeDestSubdirs,
	})
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return a, cleanup, nil
}

func newSearcher(eff config.EffectiveConfig, log *slog.Logger) (*search.Searcher, error) {
	reg, err := search.NewRegistry(imagebin.Provider{Endpoint: eff.Upload.Endpoint, Key: eff.Upload.Key})
	if err != nil {
		return nil, fmt.Errorf("初始化上传 provider 失败：%w", err)
	}
	p, ok := reg.Get(eff.Upload.Provider)
	if !ok {
		return nil, fmt.Errorf("未知的上传 provider：%q", eff.Upload.Provider)
	}
	client, err := httpx.NewUploadClient(httpx.Options{ProxyURL: eff.Upload.ProxyURL, Logger: log})
	if err != nil {
		return nil, err
	}
	return search.New(search.Options{
		Provider: p,
		Client:   client,
		Engine:   eff.SearchEngine,
		MaxMB:    eff.Upload.MaxMB,
		Opener:   opener.System{},
		Logger:   log,
	})
}

// openInitial 打开启动时的源目录与目标根目录；失败只写入活动记录，不阻止进入界面。
func openInitial(a *app.App, activity *activityLog, source, dest string) {
	if source != "" {
		if p, err := config.ExpandPath(source); err == nil {
			source = p
		}
		dropped, err := a.OpenSource(source)
		if err != nil {
			activity.Note("打开源目录失败：" + err.Error())
		}
		activity.Dropped(dropped)
	}
	if dest != "" {
		if p, err := config.ExpandPath(dest); err == nil {
			dest = p
		}
		if err := a.OpenDestRoot(dest); err != nil {
			activity.Note("打开目标根目录失败：" + err.Error())
		}
	}
}
