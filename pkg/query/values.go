package query

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// Entry is a single key/value pair of a query.
type Entry struct {
	Key   string
	Value any
}

// Source produces the ordered entries of a query.
// Values, Map and Raw implement it.
type Source interface {
	Entries() []Entry
}

// Values is an ordered query. Iteration and encoding follow insertion order.
// The zero value is an empty query ready to use.
type Values []Entry

// Entries returns the pairs in insertion order.
func (v Values) Entries() []Entry {
	return v
}

// Set assigns value to key. An existing key keeps its position and has its
// first occurrence replaced; a new key is appended.
func (v *Values) Set(key string, value any) {
	for i := range *v {
		if (*v)[i].Key == key {
			(*v)[i].Value = value
			return
		}
	}
	*v = append(*v, Entry{Key: key, Value: value})
}

// Add appends a pair without checking for an existing key.
func (v *Values) Add(key string, value any) {
	*v = append(*v, Entry{Key: key, Value: value})
}

// Get returns the first value stored under key.
func (v Values) Get(key string) (any, bool) {
	for _, e := range v {
		if e.Key == key {
			return e.Value, true
		}
	}
	return nil, false
}

// Has reports whether key is present.
func (v Values) Has(key string) bool {
	_, ok := v.Get(key)
	return ok
}

// Del removes every pair stored under key.
func (v *Values) Del(key string) {
	out := (*v)[:0]
	for _, e := range *v {
		if e.Key != key {
			out = append(out, e)
		}
	}
	*v = out
}

// Len returns the number of pairs.
func (v Values) Len() int {
	return len(v)
}

// Keys returns the keys in order, including repeats.
func (v Values) Keys() []string {
	keys := make([]string, len(v))
	for i, e := range v {
		keys[i] = e.Key
	}
	return keys
}

// Clone returns a copy that shares no backing array with v.
func (v Values) Clone() Values {
	if v == nil {
		return nil
	}
	out := make(Values, len(v))
	copy(out, v)
	return out
}

// Strings returns the query as a plain map with every value stringified.
// Later repeats of a key win.
func (v Values) Strings() map[string]string {
	out := make(map[string]string, len(v))
	for _, e := range v {
		out[e.Key] = Stringify(e.Value)
	}
	return out
}

// Map is an unordered query. Go maps carry no insertion order, so entries
// are produced in sorted key order to keep the output stable.
type Map map[string]any

// Entries returns the pairs sorted by key.
func (m Map) Entries() []Entry {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	entries := make([]Entry, len(keys))
	for i, k := range keys {
		entries[i] = Entry{Key: k, Value: m[k]}
	}
	return entries
}

// Raw is a query string built by the caller. It is appended verbatim:
// no escaping and no emptiness check.
type Raw string

// Entries returns a single entry holding the raw string under an empty key.
// Encoders special-case Raw, so this only matters to generic consumers.
func (r Raw) Entries() []Entry {
	return []Entry{{Value: string(r)}}
}

// Stringify converts v to text the way the page runtime coerces values
// with String(v).
func Stringify(v any) string {
	// a nil pointer is null even when its type has a String method
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Ptr && rv.IsNil() {
		return "null"
	}

	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		return val
	case fmt.Stringer:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.FormatInt(int64(val), 10)
	case int8:
		return strconv.FormatInt(int64(val), 10)
	case int16:
		return strconv.FormatInt(int64(val), 10)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case int64:
		return strconv.FormatInt(val, 10)
	case uint:
		return strconv.FormatUint(uint64(val), 10)
	case uint8:
		return strconv.FormatUint(uint64(val), 10)
	case uint16:
		return strconv.FormatUint(uint64(val), 10)
	case uint32:
		return strconv.FormatUint(uint64(val), 10)
	case uint64:
		return strconv.FormatUint(val, 10)
	case float32:
		return formatFloat(float64(val), 32)
	case float64:
		return formatFloat(val, 64)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return "null"
		}
		return Stringify(rv.Elem().Interface())
	case reflect.Slice, reflect.Array:
		parts := make([]string, rv.Len())
		for i := range parts {
			elem := rv.Index(i).Interface()
			if elem == nil {
				continue
			}
			parts[i] = Stringify(elem)
		}
		return strings.Join(parts, ",")
	}
	return fmt.Sprint(v)
}

func formatFloat(f float64, bits int) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}

	if abs := math.Abs(f); abs >= 1e21 || abs < 1e-6 {
		// 1e+21, 1.5e-7: exponent without zero padding
		mantissa, exp, _ := strings.Cut(strconv.FormatFloat(f, 'e', -1, bits), "e")
		return mantissa + "e" + exp[:1] + strings.TrimLeft(exp[1:], "0")
	}
	return strconv.FormatFloat(f, 'f', -1, bits)
}
