package docstore

import (
	"cmp"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/match"
)

func matchAll(raw []byte, filters []Filter) bool {
	for _, f := range filters {
		if !matchOne(gjson.GetBytes(raw, f.Key), f) {
			return false
		}
	}
	return true
}

// matchOne evaluates a single predicate. A missing field never matches,
// including for neq.
func matchOne(res gjson.Result, f Filter) bool {
	if !res.Exists() {
		return false
	}
	if f.Op == OpLike {
		return match.Match(res.String(), likeToGlob(scalarString(f.Value)))
	}
	c, ok := compareScalar(res, f.Value)
	if !ok {
		return f.Op == OpNeq
	}
	switch f.Op {
	case OpEq:
		return c == 0
	case OpNeq:
		return c != 0
	case OpGt:
		return c > 0
	case OpGte:
		return c >= 0
	case OpLt:
		return c < 0
	case OpLte:
		return c <= 0
	}
	return false
}

// likeToGlob turns SQL LIKE wildcards into the glob syntax of tidwall/match.
// As in SQL, a backslash makes the next character literal.
func likeToGlob(p string) string {
	var b strings.Builder
	escaped := false
	for _, r := range p {
		if escaped {
			escaped = false
			writeLiteral(&b, r)
			continue
		}
		switch r {
		case '\\':
			escaped = true
		case '%':
			b.WriteByte('*')
		case '_':
			b.WriteByte('?')
		default:
			writeLiteral(&b, r)
		}
	}
	if escaped {
		// 末尾孤立的反斜杠按字面处理
		writeLiteral(&b, '\\')
	}
	return b.String()
}

func writeLiteral(b *strings.Builder, r rune) {
	if r == '*' || r == '?' || r == '\\' {
		b.WriteByte('\\')
	}
	b.WriteRune(r)
}

// compareScalar compares a stored field with a filter value using the
// field's JSON type. ok is false when the two cannot be compared.
func compareScalar(res gjson.Result, v any) (int, bool) {
	switch res.Type {
	case gjson.Number:
		f, ok := toFloat(v)
		if !ok {
			return 0, false
		}
		return cmp.Compare(res.Num, f), true
	case gjson.String:
		s := scalarString(v)
		if a, err := time.Parse(time.RFC3339Nano, res.Str); err == nil {
			if b, err := time.Parse(time.RFC3339Nano, s); err == nil {
				return a.Compare(b), true
			}
		}
		return strings.Compare(res.Str, s), true
	case gjson.True, gjson.False:
		b, ok := toBool(v)
		if !ok {
			return 0, false
		}
		return cmp.Compare(boolRank(res.Bool()), boolRank(b)), true
	case gjson.Null:
		if v == nil {
			return 0, true
		}
		return 0, false
	}
	return strings.Compare(res.Raw, scalarString(v)), true
}

// compareResults orders two stored values; missing values sort first.
func compareResults(a, b gjson.Result) int {
	if ra, rb := typeRank(a), typeRank(b); ra != rb {
		return cmp.Compare(ra, rb)
	}
	switch a.Type {
	case gjson.Number:
		return cmp.Compare(a.Num, b.Num)
	case gjson.String:
		if ta, err := time.Parse(time.RFC3339Nano, a.Str); err == nil {
			if tb, err := time.Parse(time.RFC3339Nano, b.Str); err == nil {
				return ta.Compare(tb)
			}
		}
		return strings.Compare(a.Str, b.Str)
	case gjson.True, gjson.False:
		return cmp.Compare(boolRank(a.Bool()), boolRank(b.Bool()))
	case gjson.Null:
		return 0
	}
	return strings.Compare(a.Raw, b.Raw)
}

func typeRank(r gjson.Result) int {
	switch {
	case !r.Exists() || r.Type == gjson.Null:
		return 0
	case r.Type == gjson.True || r.Type == gjson.False:
		return 1
	case r.Type == gjson.Number:
		return 2
	case r.Type == gjson.String:
		return 3
	}
	return 4
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}

func toBool(v any) (bool, bool) {
	switch b := v.(type) {
	case bool:
		return b, true
	case string:
		p, err := strconv.ParseBool(strings.TrimSpace(b))
		return p, err == nil
	}
	return false, false
}

func scalarString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case time.Time:
		return s.UTC().Format(time.RFC3339Nano)
	case fmt.Stringer:
		return s.String()
	}
	return fmt.Sprint(v)
}
