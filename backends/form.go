package backends

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/valyala/bytebufferpool"
)

// form builds an x-www-form-urlencoded body with keys in insertion order.
type form struct {
	buf *bytebufferpool.ByteBuffer
}

func newForm() *form {
	return &form{buf: bytebufferpool.Get()}
}

func (f *form) add(key, value string) *form {
	if f.buf.Len() > 0 {
		f.buf.WriteByte('&')
	}
	f.buf.WriteString(url.QueryEscape(key))
	f.buf.WriteByte('=')
	f.buf.WriteString(url.QueryEscape(value))
	return f
}

// bytes returns the encoded body and releases the buffer. The form must not
// be used afterwards.
func (f *form) bytes() []byte {
	out := make([]byte, f.buf.Len())
	copy(out, f.buf.B)
	bytebufferpool.Put(f.buf)
	f.buf = nil
	return out
}

// formatValue renders a prop value as a form or query value.
func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case bool:
		if val {
			return "1"
		}
		return "0"
	default:
		return fmt.Sprint(val)
	}
}
