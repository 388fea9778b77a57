// Package query implements the query-string convention used for page
// navigation: ?key1=value1&key2=value2, with values percent-encoded on the
// way out and percent-decoded on the way in.
//
// Escaping follows the component rules of the page runtime, not the
// form-encoding rules of net/url: spaces become %20 (never '+'), and the
// characters - _ . ! ~ * ' ( ) are left as-is.
//
// Example:
//
//	q := query.Values{}
//	q.Set("id", 42)
//	q.Set("name", "Ada Lovelace")
//
//	query.Build(q)              // "?id=42&name=Ada%20Lovelace"
//	query.Build(query.Raw("a")) // "?a"
//	query.Build(query.Values{}) // ""
package query

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"
)

// ErrMalformed is returned when a value is not a valid percent-encoded
// UTF-8 string.
var ErrMalformed = errors.New("query: malformed percent-encoding")

const upperhex = "0123456789ABCDEF"

// shouldEscape reports whether b must be percent-encoded in a component.
func shouldEscape(b byte) bool {
	switch {
	case 'a' <= b && b <= 'z', 'A' <= b && b <= 'Z', '0' <= b && b <= '9':
		return false
	}
	switch b {
	case '-', '_', '.', '!', '~', '*', '\'', '(', ')':
		return false
	}
	return true
}

// Escape percent-encodes s as a single URI component.
func Escape(s string) string {
	n := 0
	for i := 0; i < len(s); i++ {
		if shouldEscape(s[i]) {
			n++
		}
	}
	if n == 0 {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + 2*n)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if shouldEscape(c) {
			b.WriteByte('%')
			b.WriteByte(upperhex[c>>4])
			b.WriteByte(upperhex[c&15])
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

// Unescape decodes a percent-encoded URI component. '+' is kept literally.
// The error wraps ErrMalformed when s holds a broken escape sequence or
// decodes to invalid UTF-8.
func Unescape(s string) (string, error) {
	if strings.IndexByte(s, '%') < 0 {
		return s, nil
	}
	out, err := url.PathUnescape(s)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrMalformed, s)
	}
	if !utf8.ValidString(out) {
		return "", fmt.Errorf("%w: %q is not valid UTF-8", ErrMalformed, s)
	}
	return out, nil
}
