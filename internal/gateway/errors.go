package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
)

// Kind 错误归类，对应不同的界面处置方式
type Kind int

const (
	// KindTransport 网络/传输失败，可重试，展示横幅
	KindTransport Kind = iota
	// KindValidation 4xx 字段校验失败，按字段或合并展示
	KindValidation
	// KindEmptyResult 404 的“无数据”约定，归一为空结果，不算错误
	KindEmptyResult
	// KindServer 其余非 2xx
	KindServer
)

// FieldError 服务端返回的单字段校验错误
type FieldError struct {
	Loc []any  `json:"loc"`
	Msg string `json:"msg"`
}

// Field 字段路径的可读形式
func (f FieldError) Field() string {
	parts := make([]string, 0, len(f.Loc))
	for _, l := range f.Loc {
		parts = append(parts, fmt.Sprint(l))
	}
	return strings.Join(parts, ".")
}

// Error 数据服务错误，携带归类、状态码和 detail 内容
type Error struct {
	Kind       Kind
	StatusCode int
	Message    string
	Fields     []FieldError
}

func (e *Error) Error() string {
	if len(e.Fields) > 0 {
		msgs := make([]string, 0, len(e.Fields))
		for _, f := range e.Fields {
			msgs = append(msgs, f.Field()+": "+f.Msg)
		}
		return strings.Join(msgs, "; ")
	}
	return e.Message
}

// Retryable 传输失败和服务端 5xx 可由用户手动重试（不自动重试）
func (e *Error) Retryable() bool {
	return e.Kind == KindTransport || e.Kind == KindServer
}

// IsEmptyResult err 是否为“无数据”约定
func IsEmptyResult(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == KindEmptyResult
}

// 服务端的空结果仍以 404 + 文本约定表达（如
// "No historical data found matching criteria"），按模式识别
var noDataPattern = regexp.MustCompile(`(?i)^no .*(data|record).* found`)

// errorEnvelope 非 2xx 响应的 {"detail": ...} 包裹
// detail 可能是字符串，也可能是字段错误数组
type errorEnvelope struct {
	Detail json.RawMessage `json:"detail"`
}

func decodeError(resp *http.Response) *Error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	e := &Error{StatusCode: resp.StatusCode, Kind: KindServer}
	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		e.Kind = KindValidation
	}

	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err != nil || len(env.Detail) == 0 {
		e.Message = fmt.Sprintf("data service returned status %d", resp.StatusCode)
		return e
	}

	var detail string
	if err := json.Unmarshal(env.Detail, &detail); err == nil {
		e.Message = detail
		if resp.StatusCode == http.StatusNotFound && noDataPattern.MatchString(detail) {
			e.Kind = KindEmptyResult
		}
		return e
	}

	var fields []FieldError
	if err := json.Unmarshal(env.Detail, &fields); err == nil {
		e.Fields = fields
		e.Message = e.Error()
		return e
	}

	e.Message = string(env.Detail)
	return e
}
