// Package ez turns plain (value, error) handlers into gin handlers that always
// answer with the response envelope, and provides the generic resource
// controller built on top of it.
package ez

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"go-gin-resource-api/internal/core/errs"
	"go-gin-resource-api/internal/resource"
	"go-gin-resource-api/internal/transport/http/middleware"
	"go-gin-resource-api/internal/transport/http/response"
)

// HandlerFunc returns the payload to send, or an error. A handler that has
// already written the response itself should return (nil, nil).
type HandlerFunc func(c *gin.Context) (any, error)

// Reply lets a handler pick the status and message. Any other return value is
// sent as data with 200.
type Reply struct {
	Status     int
	Message    string
	Data       any
	Pagination *resource.Meta
}

// FailureSink receives one text block per failed request.
type FailureSink interface {
	Append(ctx context.Context, block string) error
}

// DefaultBodyLogLimit 失败日志中请求体的最大字节数
const DefaultBodyLogLimit = 4 << 10

// Lifecycle runs handlers: Created → Running → Completed | Failed.
type Lifecycle struct {
	Log  *zap.Logger
	Sink FailureSink
	// BodyLimit caps the request body bytes copied into the failure log.
	BodyLimit int

	now func() time.Time
}

func NewLifecycle(log *zap.Logger, sink FailureSink) *Lifecycle {
	if log == nil {
		log = zap.NewNop()
	}
	return &Lifecycle{Log: log, Sink: sink, BodyLimit: DefaultBodyLogLimit, now: time.Now}
}

// Wrap adapts h to gin. Panics are recovered into InternalServerError.
func (lc *Lifecycle) Wrap(h HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := lc.now()
		tap := lc.tapBody(c)
		out, err := invoke(c, h)
		elapsed := lc.now().Sub(start)

		if err != nil {
			lc.fail(c, err, tap, start, elapsed)
			return
		}
		if c.Writer.Written() || c.IsAborted() {
			return
		}
		lc.complete(c, out, elapsed)
	}
}

func invoke(c *gin.Context, h HandlerFunc) (out any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			out = nil
			err = errs.Wrap(errs.KindInternalServerError, fmt.Errorf("panic: %v", rec), "")
		}
	}()
	return h(c)
}

func (lc *Lifecycle) complete(c *gin.Context, out any, elapsed time.Duration) {
	r := Reply{Status: http.StatusOK, Data: out}
	switch v := out.(type) {
	case Reply:
		r = v
	case *Reply:
		if v != nil {
			r = *v
		}
	}

	links := &response.Links{Self: absoluteURL(c)}
	if p := r.Pagination; p != nil {
		if p.HasNext {
			links.Next = pageURL(c, p.Page+1, p.NextCursor)
		}
		if p.HasPrev {
			links.Prev = pageURL(c, p.Page-1, "")
		}
	}
	env := response.Success(r.Status, r.Message, r.Data,
		response.WithResponseTime(elapsed),
		response.WithPagination(r.Pagination),
		response.WithLinks(links),
	)
	c.JSON(env.Code, env)
}

func (lc *Lifecycle) fail(c *gin.Context, err error, tap *bodyTap, start time.Time, elapsed time.Duration) {
	e := errs.From(err)
	rid := c.GetString(middleware.KeyRequestID)

	fields := []zap.Field{
		zap.String("rid", rid),
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Int("status", e.Status()),
		zap.Duration("latency", elapsed),
		zap.String("message", e.Message),
	}
	if e.Cause != nil {
		fields = append(fields, zap.NamedError("cause", e.Cause))
	}
	lc.Log.Error("request failed", fields...)

	if lc.Sink != nil {
		block := failureBlock(c, e, rid, tap.captured(), start, elapsed)
		// 请求被取消也要落盘
		if serr := lc.Sink.Append(context.WithoutCancel(c.Request.Context()), block); serr != nil {
			lc.Log.Warn("failure log append", zap.Error(serr))
		}
	}

	if c.Writer.Written() {
		return
	}
	env := response.FromError(e)
	env.Metadata.ResponseTime = response.FormatDuration(elapsed)
	c.AbortWithStatusJSON(env.Code, env)
}

func failureBlock(c *gin.Context, e *errs.Error, rid, body string, start time.Time, elapsed time.Duration) string {
	var b strings.Builder
	fmt.Fprintf(&b, "time:     %s\n", start.UTC().Format(response.TimestampLayout))
	fmt.Fprintf(&b, "request:  %s\n", rid)
	fmt.Fprintf(&b, "method:   %s\n", c.Request.Method)
	fmt.Fprintf(&b, "path:     %s\n", c.Request.URL.RequestURI())
	fmt.Fprintf(&b, "duration: %s\n", response.FormatDuration(elapsed))
	fmt.Fprintf(&b, "status:   %d %s\n", e.Status(), response.StatusText(e.Status()))
	fmt.Fprintf(&b, "message:  %s\n", e.Message)
	if e.Cause != nil {
		fmt.Fprintf(&b, "cause:    %v\n", e.Cause)
	}
	if body != "" {
		fmt.Fprintf(&b, "body:     %s\n", body)
	}
	b.WriteString("stack:\n")
	b.WriteString(e.Stack())
	return b.String()
}

// bodyTap copies the first limit bytes the handler reads from the request body.
type bodyTap struct {
	io.ReadCloser
	buf   bytes.Buffer
	limit int
	more  bool
	eof   bool
}

func (lc *Lifecycle) tapBody(c *gin.Context) *bodyTap {
	if lc.Sink == nil || lc.BodyLimit <= 0 || c.Request.Body == nil || c.Request.Body == http.NoBody {
		return nil
	}
	t := &bodyTap{ReadCloser: c.Request.Body, limit: lc.BodyLimit}
	c.Request.Body = t
	return t
}

func (t *bodyTap) Read(p []byte) (int, error) {
	n, err := t.ReadCloser.Read(p)
	if n > 0 {
		room := t.limit - t.buf.Len()
		if room > 0 {
			t.buf.Write(p[:min(n, room)])
		}
		if n > room {
			t.more = true
		}
	}
	if err != nil {
		t.eof = true
	}
	return n, err
}

// captured returns the masked body. Bytes the handler never read are pulled
// in up to the limit.
func (t *bodyTap) captured() string {
	if t == nil {
		return ""
	}
	if !t.eof && !t.more {
		_, _ = io.CopyN(io.Discard, t, int64(t.limit-t.buf.Len()+1))
	}
	if t.buf.Len() == 0 {
		return ""
	}
	s := middleware.MaskBody(t.buf.Bytes())
	if t.more {
		s += " ...(truncated)"
	}
	return s
}

func absoluteURL(c *gin.Context) string {
	return scheme(c) + "://" + c.Request.Host + c.Request.URL.RequestURI()
}

func scheme(c *gin.Context) string {
	if p := c.GetHeader("X-Forwarded-Proto"); p != "" {
		return strings.TrimSpace(strings.Split(p, ",")[0])
	}
	if c.Request.TLS != nil {
		return "https"
	}
	return "http"
}

// pageURL 以当前请求为基础替换 page / cursor
func pageURL(c *gin.Context, page int, cursor string) string {
	u := *c.Request.URL
	q := u.Query()
	q.Set(ParamPage, strconv.Itoa(page))
	if cursor != "" && q.Get(ParamCursor) != "" {
		q.Set(ParamCursor, cursor)
	} else {
		q.Del(ParamCursor)
	}
	u.RawQuery = q.Encode()
	return scheme(c) + "://" + c.Request.Host + u.RequestURI()
}
