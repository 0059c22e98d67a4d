package errs

import (
	"errors"
	"fmt"
)

// Kind 业务错误分类（传输层据此映射状态码与 code）。
type Kind int

const (
	KindInternal Kind = iota // 未识别错误默认归为内部错误
	KindNotFound
	KindDuplicate
	KindInvalidState
	KindInvalid
)

// Error 统一的业务错误：核心逻辑只在检测点抛出，不做降级与重试，
// 由边界层（HTTP handler）统一渲染。
type Error struct {
	Kind    Kind
	Entity  string // KindNotFound 时的资源名（vehicle / brand / model ...）
	Message string
	Err     error // 可选的底层错误
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NotFound 资源不存在。
func NotFound(entity string, id any) *Error {
	return &Error{
		Kind:    KindNotFound,
		Entity:  entity,
		Message: fmt.Sprintf("%s not found: %v", entity, id),
	}
}

// Duplicate 唯一性约束冲突（车牌、品牌名、型号名+品牌）。
func Duplicate(format string, args ...any) *Error {
	return &Error{Kind: KindDuplicate, Message: fmt.Sprintf(format, args...)}
}

// InvalidState 当前状态不允许该操作（状态机拒绝、重复开单、改已完结工单等）。
func InvalidState(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidState, Message: fmt.Sprintf(format, args...)}
}

// Invalid 入参结构性校验失败（空字段、越界值），在任何查询/写入之前检测。
func Invalid(format string, args ...any) *Error {
	return &Error{Kind: KindInvalid, Message: fmt.Sprintf(format, args...)}
}

// Internal 包装未预期的底层错误；对外不暴露细节。
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: "internal error", Err: err}
}

// KindOf 取错误分类；非 *Error 一律按内部错误处理。
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsKind 判断错误是否属于指定分类。
func IsKind(err error, k Kind) bool {
	return err != nil && KindOf(err) == k
}
