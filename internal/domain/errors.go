package domain

import (
	"errors"
	"fmt"
)

const (
	ErrCodeFileAccess    = "file_access"
	ErrCodeDuplicatePath = "duplicate_path"
	ErrCodeIgnoredPath   = "ignored_path"
	ErrCodeUploadFailed  = "upload_failed"
	ErrCodeParseFailed   = "parse_failed"
)

// FileAccessError 表示复制/删除/打开某个文件失败。
// Op 取值："copy" / "trash" / "open" / "stat"。
type FileAccessError struct {
	Op   string
	Path string
	Err  error
}

func (e *FileAccessError) Error() string {
	return fmt.Sprintf("%s：%s %q 失败：%v", ErrCodeFileAccess, e.Op, e.Path, e.Err)
}

func (e *FileAccessError) Unwrap() error { return e.Err }

// DuplicatePathError 表示目标目录已经在活动列表中。
type DuplicatePathError struct {
	Path string
}

func (e *DuplicatePathError) Error() string {
	return fmt.Sprintf("%s：目录已添加过：%q", ErrCodeDuplicatePath, e.Path)
}

// IgnoredPathError 表示目标目录在忽略列表中，不会进入活动列表。
type IgnoredPathError struct {
	Path string
}

func (e *IgnoredPathError) Error() string {
	return fmt.Sprintf("%s：目录在忽略列表中：%q", ErrCodeIgnoredPath, e.Path)
}

// UploadError 表示以图搜图的上传请求失败（网络、超时、非 2xx）。
type UploadError struct {
	Provider string
	Err      error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("%s：provider=%s：%v", ErrCodeUploadFailed, e.Provider, e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }

// ParseError 表示上传成功但响应体里找不到图片 URL。
type ParseError struct {
	Provider string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s：provider=%s：%v", ErrCodeParseFailed, e.Provider, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Code 从 error 链中提取稳定的 error_code；无法识别时返回空串。
func Code(err error) string {
	var (
		fa *FileAccessError
		dp *DuplicatePathError
		ip *IgnoredPathError
		ue *UploadError
		pe *ParseError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &dp):
		return ErrCodeDuplicatePath
	case errors.As(err, &ip):
		return ErrCodeIgnoredPath
	case errors.As(err, &pe):
		return ErrCodeParseFailed
	case errors.As(err, &ue):
		return ErrCodeUploadFailed
	case errors.As(err, &fa):
		return ErrCodeFileAccess
	default:
		return ""
	}
}

// IsDuplicatePath 判断 err 是否为 DuplicatePathError。
func IsDuplicatePath(err error) bool {
	var e *DuplicatePathError
	return errors.As(err, &e)
}

// IsFileAccess 判断 err 是否为 FileAccessError。
func IsFileAccess(err error) bool {
	var e *FileAccessError
	return errors.As(err, &e)
}
