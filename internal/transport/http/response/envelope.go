package response

import (
	"fmt"
	"time"

	"go-gin-resource-api/internal/core/errs"
	"go-gin-resource-api/internal/resource"
)

// TimestampLayout is ISO-8601 with millisecond precision.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

type Links struct {
	Self string `json:"self"`
	Next string `json:"next,omitempty"`
	Prev string `json:"prev,omitempty"`
}

type Metadata struct {
	Timestamp    string         `json:"timestamp"`
	ResponseTime string         `json:"responseTime,omitempty"`
	StatusText   string         `json:"statusText"`
	Pagination   *resource.Meta `json:"pagination,omitempty"`
	Links        *Links         `json:"links,omitempty"`
}

// Envelope is the wire shape of every response, success or failure.
type Envelope struct {
	Success  bool              `json:"success"`
	Code     int               `json:"code"`
	Message  string            `json:"message"`
	Data     any               `json:"data,omitempty"`
	Metadata Metadata          `json:"metadata"`
	Errors   []errs.FieldError `json:"errors,omitempty"`
}

type Option func(*Envelope)

func WithResponseTime(d time.Duration) Option {
	return func(e *Envelope) { e.Metadata.ResponseTime = FormatDuration(d) }
}

func WithPagination(m *resource.Meta) Option {
	return func(e *Envelope) { e.Metadata.Pagination = m }
}

func WithLinks(l *Links) Option {
	return func(e *Envelope) { e.Metadata.Links = l }
}

// FormatDuration renders d as "<n>ms".
func FormatDuration(d time.Duration) string {
	return fmt.Sprintf("%dms", d.Milliseconds())
}

var now = time.Now

func timestamp() string { return now().UTC().Format(TimestampLayout) }

// Success 成功响应；message 为空时按 code 取默认提示
func Success(code int, message string, data any, opts ...Option) Envelope {
	if code < 200 || code > 299 {
		code = CodeOK
	}
	if message == "" {
		message = successMsg[code]
		if message == "" {
			message = successMsg[CodeOK]
		}
	}
	env := Envelope{
		Success: true,
		Code:    code,
		Message: message,
		Data:    data,
		Metadata: Metadata{
			Timestamp:  timestamp(),
			StatusText: StatusText(code),
		},
	}
	for _, o := range opts {
		o(&env)
	}
	return env
}

// FromError 失败响应；非 taxonomy 错误统一降级为 500，不泄露内部信息
func FromError(err error) Envelope {
	e := errs.From(err)
	if e == nil {
		e = errs.InternalServerError("")
	}
	return Envelope{
		Success: false,
		Code:    e.Status(),
		Message: e.Message,
		Metadata: Metadata{
			Timestamp:  timestamp(),
			StatusText: StatusText(e.Status()),
		},
		Errors: e.Errors,
	}
}

// Fail builds an error envelope directly from a kind and message; used by
// middleware that rejects a request before any handler runs.
func Fail(k errs.Kind, message string) Envelope {
	return FromError(errs.New(errs.Options{Kind: k, Message: message}))
}
