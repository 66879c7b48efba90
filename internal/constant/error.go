package constant

import (
	"errors"
	"fmt"
)

// Error 错误接口
type Error interface {
	error
	Code() int
	Message() string
	WithData(data interface{}) Error
}

// CustomError 自定义错误实现
type CustomError struct {
	code    int
	message string
	data    interface{}
	cause   error
}

func (e *CustomError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("code: %d, message: %s: %v", e.code, e.message, e.cause)
	}
	return fmt.Sprintf("code: %d, message: %s", e.code, e.message)
}

func (e *CustomError) Code() int {
	return e.code
}

func (e *CustomError) Message() string {
	return e.message
}

func (e *CustomError) Data() interface{} {
	return e.data
}

func (e *CustomError) Unwrap() error {
	return e.cause
}

func (e *CustomError) WithData(data interface{}) Error {
	e.data = data
	return e
}

// NewError 创建错误
func NewError(code int) Error {
	if info, exists := ErrorMessages[code]; exists {
		return &CustomError{code: code, message: info.CN}
	}
	return &CustomError{code: code, message: "未知错误"}
}

// NewErrorf 带上下文说明的错误
func NewErrorf(code int, format string, args ...interface{}) Error {
	return &CustomError{code: code, message: fmt.Sprintf(format, args...)}
}

// WrapError 保留底层错误，errors.Is 可以穿透
func WrapError(code int, cause error) Error {
	e := NewError(code).(*CustomError)
	e.cause = cause
	return e
}

// CodeOf 取错误链上第一个 CustomError 的错误码，没有返回 CodeSystemError
func CodeOf(err error) int {
	var ce *CustomError
	if errors.As(err, &ce) {
		return ce.code
	}
	return CodeSystemError
}

// IsCode 判断错误链中是否带有指定错误码
func IsCode(err error, code int) bool {
	var ce *CustomError
	if errors.As(err, &ce) {
		return ce.code == code
	}
	return false
}

// GetErrorInfo 获取错误信息
func GetErrorInfo(code int) (ErrorInfo, bool) {
	info, exists := ErrorMessages[code]
	return info, exists
}
