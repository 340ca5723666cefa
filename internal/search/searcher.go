package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/John-Robertt/mediacopy/internal/domain"
	"github.com/John-Robertt/mediacopy/internal/logging"
)

var (
	// ErrBusy 表示已有一次搜索在进行中。
	ErrBusy = errors.New("以图搜图正在进行中")
	// ErrNotImage 表示当前条目是视频。
	ErrNotImage = errors.New("只有图片可以以图搜图")
	// ErrTooLarge 表示文件超过上传大小限制。
	ErrTooLarge = errors.New("文件超过上传大小限制")
)

// URLOpener 打开搜索结果页（通常是 opener.System）。
type URLOpener interface {
	OpenURL(u string) error
}

// Result 是一次搜索的结果。Err 只反映上传/解析；OpenErr 反映打开浏览器。
type Result struct {
	Entry     domain.MediaEntry
	ImageURL  string
	SearchURL string
	Err       error
	OpenErr   error
}

// Searcher 保证同一时刻最多一次上传（single-flight）。
type Searcher struct {
	provider Provider
	client   *http.Client
	engine   string
	maxMB    float64
	opener   URLOpener
	log      *slog.Logger

	busy atomic.Bool
}

// Options 描述 Searcher 的依赖。
type Options struct {
	Provider Provider
	Client   *http.Client
	Engine   string
	MaxMB    int
	Opener   URLOpener
	Logger   *slog.Logger
}

func New(opts Options) (*Searcher, error) {
	if opts.Provider == nil {
		return nil, errors.New("search: provider 不能为空")
	}
	if opts.Client == nil {
		return nil, errors.New("search: http client 不能为空")
	}
	if _, err := SearchURL(opts.Engine, "http://probe"); err != nil {
		return nil, err
	}
	return &Searcher{
		provider: opts.Provider,
		client:   opts.Client,
		engine:   opts.Engine,
		maxMB:    float64(opts.MaxMB),
		opener:   opts.Opener,
		log:      logging.Component(opts.Logger, "search"),
	}, nil
}

// Busy 报告是否有搜索在进行中。
func (s *Searcher) Busy() bool { return s.busy.Load() }

// Check 判断条目是否允许以图搜图（图片且不超过大小限制）。
func (s *Searcher) Check(e domain.MediaEntry) error {
	if e.IsVideo() {
		return ErrNotImage
	}
	if s.maxMB > 0 && e.SizeMB() > s.maxMB {
		return fmt.Errorf("%w：%.2f MB > %.0f MB", ErrTooLarge, e.SizeMB(), s.maxMB)
	}
	return nil
}

// Start 在后台上传 e 并打开搜索页；结果通过返回的 channel 投递一次后关闭。
//
// 已有搜索进行中时返回 ErrBusy；busy 标记在后台 goroutine 结束时释放。
func (s *Searcher) Start(ctx context.Context, e domain.MediaEntry) (<-chan Result, error) {
	if err := s.Check(e); err != nil {
		return nil, err
	}
	if !s.busy.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}

	ch := make(chan Result, 1)
	go func() {
		defer close(ch)
		defer s.busy.Store(false)
		ch <- s.run(ctx, e)
	}()
	return ch, nil
}

func (s *Searcher) run(ctx context.Context, e domain.MediaEntry) Result {
	res := Result{Entry: e}
	name := s.provider.Name()
	log := s.log.With(logging.FieldPath, e.Path, "provider", name)

	body, err := s.provider.Upload(ctx, s.client, e.Path)
	if err != nil {
		res.Err = &domain.UploadError{Provider: name, Err: err}
		log.Warn("上传失败", logging.FieldCode, domain.ErrCodeUploadFailed, "error", err)
		return res
	}
	imageURL, err := s.provider.Parse(body)
	if err != nil {
		res.Err = &domain.ParseError{Provider: name, Err: err}
		log.Warn("解析上传响应失败", logging.FieldCode, domain.ErrCodeParseFailed, "error", err)
		return res
	}
	res.ImageURL = imageURL

	searchURL, err := SearchURL(s.engine, imageURL)
	if err != nil {
		res.Err = &domain.ParseError{Provider: name, Err: err}
		return res
	}
	res.SearchURL = searchURL
	log.Info("以图搜图", "image_url", imageURL)

	if s.opener != nil {
		res.OpenErr = s.opener.OpenURL(searchURL)
		if res.OpenErr != nil {
			log.Warn("打开浏览器失败", "error", res.OpenErr)
		}
	}
	return res
}
