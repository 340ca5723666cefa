package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

const (
	// ErrCodeNotFound 表示显式指定的配置文件不存在。
	ErrCodeNotFound = "config_not_found"
	// ErrCodeInvalid 表示配置文件无法读取/解析，或字段不合法。
	ErrCodeInvalid = "config_invalid"
	// ErrCodePrefsInvalid 表示 preferences.toml 无法读取/解析，或字段不合法。
	ErrCodePrefsInvalid = "prefs_invalid"
)

const (
	// DefaultUploadProvider 是上传 provider 的默认值。
	DefaultUploadProvider = "imagebin"
	// DefaultUploadEndpoint 是 imagebin 的上传地址。
	DefaultUploadEndpoint = "https://imagebin.ca/upload.php"
	// DefaultUploadMaxMB 是允许以图搜图的最大文件尺寸（MB）。
	DefaultUploadMaxMB = 15
	// DefaultSearchEngine 是以图搜图默认使用的搜索引擎。
	DefaultSearchEngine = "google"

	defaultLogLevel  = "info"
	defaultLogFormat = "text"
)

// SearchEngines 是支持的以图搜图搜索引擎名。
var SearchEngines = []string{"google", "bing", "yandex"}

// CLIArgs 是 CLI 可覆盖的配置项，并保留“是否显式指定”的信息。
// 这能保证覆盖优先级可实现：例如 --delete=false 必须能覆盖 delete_after_copy=true。
type CLIArgs struct {
	ConfigPath string

	StateDir    string
	StateDirSet bool

	DeleteAfterCopy    bool
	DeleteAfterCopySet bool

	IncludeSourceSubdirs    bool
	IncludeSourceSubdirsSet bool

	IncludeDestSubdirs    bool
	IncludeDestSubdirsSet bool

	LogLevel    string
	LogLevelSet bool
}

// FileConfig 对应 config.toml 的解析结构。布尔项用指针区分“未设置”。
type FileConfig struct {
	StateDir             string        `toml:"state_dir"`
	IncludeSourceSubdirs *bool         `toml:"include_source_subdirs"`
	IncludeDestSubdirs   *bool         `toml:"include_dest_subdirs"`
	DeleteAfterCopy      *bool         `toml:"delete_after_copy"`
	ResetSelections      *bool         `toml:"reset_selections"`
	Journal              *bool         `toml:"journal"`
	Upload               UploadConfig  `toml:"upload"`
	Search               SearchConfig  `toml:"search"`
	Logging              LoggingConfig `toml:"logging"`
}

type UploadConfig struct {
	Provider string `toml:"provider"`
	Endpoint string `toml:"endpoint"`
	Key      string `toml:"key"`
	MaxMB    int    `toml:"max_mb"`
	ProxyURL string `toml:"proxy_url"`
}

type SearchConfig struct {
	Engine string `toml:"engine"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// EffectiveConfig 是合并并做最小规范化后的最终配置（实现层直接消费，不再做二次默认/优先级判断）。
type EffectiveConfig struct {
	// ConfigPath 是配置文件路径（可能不存在）；preferences.toml 与它同目录。
	ConfigPath string
	StateDir   string

	IncludeSourceSubdirs bool
	IncludeDestSubdirs   bool
	DeleteAfterCopy      bool
	ResetSelections      bool
	Journal              bool

	Upload       UploadConfig
	SearchEngine string

	LogLevel  string
	LogFormat string
}

func (c EffectiveConfig) PreferencesPath() string {
	return filepath.Join(filepath.Dir(c.ConfigPath), "preferences.toml")
}

func (c EffectiveConfig) IgnoredPathsFile() string {
	return filepath.Join(c.StateDir, "IgnoredPaths.txt")
}

func (c EffectiveConfig) FavoritePathsFile() string {
	return filepath.Join(c.StateDir, "FavoritePaths.txt")
}

func (c EffectiveConfig) LogPath() string {
	return filepath.Join(c.StateDir, "mediacopy.log")
}

func (c EffectiveConfig) JournalPath() string {
	return filepath.Join(c.StateDir, "journal.db")
}

func (c EffectiveConfig) LockPath() string {
	return filepath.Join(c.StateDir, "browse.lock")
}

func (c EffectiveConfig) TrashFallbackDir() string {
	return filepath.Join(c.StateDir, "Trash")
}

// Error 是配置阶段的结构化错误（带 error_code）。
type Error struct {
	Code string
	Path string
	Err  error
}

func (e *Error) Error() string {
	switch e.Code {
	case ErrCodeNotFound:
		return fmt.Sprintf("%s：未找到配置文件 %q", e.Code, e.Path)
	case ErrCodeInvalid, ErrCodePrefsInvalid:
		if e.Err != nil {
			return fmt.Sprintf("%s：文件 %q 无效：%v", e.Code, e.Path, e.Err)
		}
		return fmt.Sprintf("%s：文件 %q 无效", e.Code, e.Path)
	default:
		if e.Err != nil {
			return fmt.Sprintf("%s：%v", e.Code, e.Err)
		}
		return e.Code
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Code 从 error 中提取 error_code；若不是 *Error 则返回空串。
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// DefaultConfigPath 返回默认配置文件位置：~/.config/mediacopy/config.toml。
func DefaultConfigPath() (string, error) {
	return ExpandPath("~/.config/mediacopy/config.toml")
}

// LoadEffective 读取配置文件并与 CLI 参数合并为最终配置。
//
// 发现规则：
// - cli.ConfigPath 非空：必须存在
// - 否则读取默认位置（可选，不存在时全部取默认值）
//
// 覆盖优先级：CLI（显式指定） > 配置文件 > 内置默认。
func LoadEffective(cli CLIArgs) (EffectiveConfig, error) {
	explicit := strings.TrimSpace(cli.ConfigPath) != ""

	var (
		cfgPath string
		err     error
	)
	if explicit {
		cfgPath, err = ExpandPath(cli.ConfigPath)
	} else {
		cfgPath, err = DefaultConfigPath()
	}
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cli.ConfigPath, Err: err}
	}

	fc, exists, err := readFileConfig(cfgPath)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
	}
	if explicit && !exists {
		return EffectiveConfig{}, &Error{Code: ErrCodeNotFound, Path: cfgPath, Err: os.ErrNotExist}
	}
	return merge(cfgPath, cli, fc)
}

func merge(cfgPath string, cli CLIArgs, fc FileConfig) (EffectiveConfig, error) {
	invalid := func(err error) (EffectiveConfig, error) {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
	}

	// state_dir：CLI > config > 配置文件所在目录
	stateDir := filepath.Dir(cfgPath)
	if cli.StateDirSet {
		stateDir = cli.StateDir
	} else if strings.TrimSpace(fc.StateDir) != "" {
		stateDir = fc.StateDir
	}
	stateDir, err := ExpandPath(stateDir)
	if err != nil {
		return invalid(fmt.Errorf("state_dir 无效：%w", err))
	}

	eff := EffectiveConfig{
		ConfigPath:           cfgPath,
		StateDir:             stateDir,
		IncludeSourceSubdirs: pickBool(cli.IncludeSourceSubdirsSet, cli.IncludeSourceSubdirs, fc.IncludeSourceSubdirs, false),
		IncludeDestSubdirs:   pickBool(cli.IncludeDestSubdirsSet, cli.IncludeDestSubdirs, fc.IncludeDestSubdirs, true),
		DeleteAfterCopy:      pickBool(cli.DeleteAfterCopySet, cli.DeleteAfterCopy, fc.DeleteAfterCopy, true),
		ResetSelections:      pickBool(false, false, fc.ResetSelections, true),
		Journal:              pickBool(false, false, fc.Journal, true),
	}

	up := fc.Upload
	up.Provider = strings.ToLower(strings.TrimSpace(up.Provider))
	if up.Provider == "" {
		up.Provider = DefaultUploadProvider
	}
	if up.Provider != DefaultUploadProvider {
		return invalid(fmt.Errorf("upload.provider 只能是 %s，实际是 %q", DefaultUploadProvider, up.Provider))
	}
	up.Endpoint = strings.TrimSpace(up.Endpoint)
	if up.Endpoint == "" {
		up.Endpoint = DefaultUploadEndpoint
	}
	if u, err := url.Parse(up.Endpoint); err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return invalid(fmt.Errorf("upload.endpoint 必须是 http/https 地址：%q", up.Endpoint))
	}
	up.Key = strings.TrimSpace(up.Key)
	if up.MaxMB == 0 {
		up.MaxMB = DefaultUploadMaxMB
	}
	if up.MaxMB < 0 {
		return invalid(fmt.Errorf("upload.max_mb 不能为负数：%d", up.MaxMB))
	}
	up.ProxyURL = strings.TrimSpace(up.ProxyURL)
	if up.ProxyURL != "" {
		if u, err := url.Parse(up.ProxyURL); err != nil || u.Scheme == "" || u.Host == "" {
			return invalid(fmt.Errorf("upload.proxy_url 无效：%q", up.ProxyURL))
		}
	}
	eff.Upload = up

	engine := strings.ToLower(strings.TrimSpace(fc.Search.Engine))
	if engine == "" {
		engine = DefaultSearchEngine
	}
	if !contains(SearchEngines, engine) {
		return invalid(fmt.Errorf("search.engine 只能是 %s，实际是 %q", strings.Join(SearchEngines, "/"), engine))
	}
	eff.SearchEngine = engine

	level := strings.ToLower(strings.TrimSpace(fc.Logging.Level))
	if cli.LogLevelSet {
		level = strings.ToLower(strings.TrimSpace(cli.LogLevel))
	}
	if level == "" {
		level = defaultLogLevel
	}
	switch level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return invalid(fmt.Errorf("logging.level 无效：%q", level))
	}
	eff.LogLevel = level

	format := strings.ToLower(strings.TrimSpace(fc.Logging.Format))
	if format == "" {
		format = defaultLogFormat
	}
	if format != "text" && format != "json" {
		return invalid(fmt.Errorf("logging.format 只能是 text 或 json，实际是 %q", format))
	}
	eff.LogFormat = format

	return eff, nil
}

func pickBool(cliSet, cliVal bool, file *bool, def bool) bool {
	if cliSet {
		return cliVal
	}
	if file != nil {
		return *file
	}
	return def
}

func contains(list []string, v string) bool {
	for _, it := range list {
		if it == v {
			return true
		}
	}
	return false
}

// ExpandPath 展开 ~ 并返回 clean + absolute 路径；空串原样返回。
func ExpandPath(p string) (string, error) {
	p = strings.TrimSpace(p)
	if p == "" {
		return p, nil
	}
	if strings.HasPrefix(p, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("解析 home 目录失败：%w", err)
		}
		if p == "~" {
			p = home
		} else if len(p) > 1 && (p[1] == '/' || p[1] == '\\') {
			p = filepath.Join(home, p[2:])
		}
	}
	abs, err := filepath.Abs(filepath.Clean(p))
	if err != nil {
		return "", err
	}
	return abs, nil
}

// readFileConfig 读取并解析 TOML 配置文件（未知字段报错）。
// 返回值 exists 表示该文件是否存在（不存在不算错误）。
func readFileConfig(path string) (fc FileConfig, exists bool, err error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return FileConfig{}, false, nil
		}
		return FileConfig{}, false, err
	}
	defer f.Close()

	dec := toml.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&fc); err != nil {
		return FileConfig{}, true, err
	}
	return fc, true, nil
}
