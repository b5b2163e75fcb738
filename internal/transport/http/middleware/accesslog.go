package middleware

import (
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// 敏感 query key，统一小写比较
var sensitiveKeys = map[string]struct{}{
	"password": {}, "pwd": {}, "token": {}, "authorization": {},
	"secret": {}, "client_secret": {}, "access_token": {},
}

func maskQuery(q url.Values) map[string][]string {
	out := make(map[string][]string, len(q))
	for k, v := range q {
		if _, ok := sensitiveKeys[strings.ToLower(k)]; ok {
			out[k] = []string{"****"}
			continue
		}
		out[k] = v
	}
	return out
}

var (
	secretJSON = regexp.MustCompile(`(?i)("(?:` + secretAlt() + `)"\s*:\s*)"(?:[^"\\]|\\.)*"?`)
	secretForm = regexp.MustCompile(`(?i)(^|&)((?:` + secretAlt() + `)=)[^&]*`)
)

func secretAlt() string {
	keys := make([]string, 0, len(sensitiveKeys))
	for k := range sensitiveKeys {
		keys = append(keys, regexp.QuoteMeta(k))
	}
	return strings.Join(keys, "|")
}

// MaskBody hides the values of sensitive keys in a JSON or form encoded
// body. The input may be truncated.
func MaskBody(b []byte) string {
	s := secretJSON.ReplaceAllString(string(b), `$1"****"`)
	return secretForm.ReplaceAllString(s, `$1$2****`)
}

// AccessLog writes one line per request; 5xx at error level, 4xx at warn.
func AccessLog(l *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		lvl := zapcore.InfoLevel
		switch {
		case status >= 500:
			lvl = zapcore.ErrorLevel
		case status >= 400:
			lvl = zapcore.WarnLevel
		}
		ce := l.Check(lvl, "HTTP")
		if ce == nil {
			return
		}
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		ce.Write(
			zap.String("rid", c.GetString(KeyRequestID)),
			zap.String("uid", c.GetString(KeyUserID)),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
			zap.String("ua", c.Request.UserAgent()),
			zap.Any("query", maskQuery(c.Request.URL.Query())),
			zap.Int("size", c.Writer.Size()),
		)
	}
}
