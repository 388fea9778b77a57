package query

import "strings"

// Encode renders src as key=value pairs joined with '&', without a leading
// '?'. Keys are written as given and values are stringified then escaped.
// ok is false when src has no entries. A Raw source is returned verbatim
// with ok set.
func Encode(src Source) (qs string, ok bool) {
	if raw, isRaw := src.(Raw); isRaw {
		return string(raw), true
	}
	if src == nil {
		return "", false
	}
	entries := src.Entries()
	if len(entries) == 0 {
		return "", false
	}

	var b strings.Builder
	for i, e := range entries {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(e.Key)
		b.WriteByte('=')
		b.WriteString(Escape(Stringify(e.Value)))
	}
	return b.String(), true
}

// Build returns the query suffix for a navigation URL: "" for a nil or
// empty source, otherwise '?' followed by the encoded pairs. Raw sources
// always produce '?' + raw, even when raw is empty.
func Build(src Source) string {
	qs, ok := Encode(src)
	if !ok {
		return ""
	}
	return "?" + qs
}

// DecodeMap returns a new map holding every value of m unescaped. Keys are
// copied unchanged. A nil map yields nil. The first malformed value aborts
// decoding and its error is returned.
func DecodeMap(m map[string]string) (map[string]string, error) {
	if m == nil {
		return nil, nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		dec, err := Unescape(v)
		if err != nil {
			return nil, err
		}
		out[k] = dec
	}
	return out, nil
}

// Parse splits a query string into ordered, decoded Values. A leading '?'
// is dropped, empty segments are skipped and a segment without '=' gets an
// empty value. Repeated keys are kept.
func Parse(raw string) (Values, error) {
	raw = strings.TrimPrefix(raw, "?")
	var out Values
	for raw != "" {
		var part string
		part, raw, _ = strings.Cut(raw, "&")
		if part == "" {
			continue
		}
		key, value, _ := strings.Cut(part, "=")
		k, err := Unescape(key)
		if err != nil {
			return nil, err
		}
		v, err := Unescape(value)
		if err != nil {
			return nil, err
		}
		out.Add(k, v)
	}
	return out, nil
}

// SplitPath separates a full page path into its path and raw query
// (without the '?').
func SplitPath(fullPath string) (path, rawQuery string) {
	path, rawQuery, _ = strings.Cut(fullPath, "?")
	return path, rawQuery
}

// RawMap splits a query string into a map of still-encoded values, the
// shape a page runtime hands to its load hooks. Later repeats of a key win.
func RawMap(raw string) map[string]string {
	raw = strings.TrimPrefix(raw, "?")
	out := make(map[string]string)
	for raw != "" {
		var part string
		part, raw, _ = strings.Cut(raw, "&")
		if part == "" {
			continue
		}
		key, value, _ := strings.Cut(part, "=")
		out[key] = value
	}
	return out
}
