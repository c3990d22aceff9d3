package file

import (
	"errors"
	"fmt"
)

// 数据源加载失败的原因
var (
	ErrSourceMissing  = errors.New("source missing")
	ErrSourceEmpty    = errors.New("source empty")
	ErrColumnMissing  = errors.New("required column missing")
	ErrMalformedDate  = errors.New("malformed date")
	ErrMalformedValue = errors.New("malformed value")
	ErrUnsupported    = errors.New("unsupported source format")
)

// LoadError 数据集加载错误，加载失败时会话无法启动
type LoadError struct {
	Source string // 数据源路径
	Err    error  // 具体原因，可以用errors.Is匹配上面的哨兵错误
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("加载数据源 %s 失败: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

func loadErr(source string, err error) error {
	return &LoadError{Source: source, Err: err}
}
