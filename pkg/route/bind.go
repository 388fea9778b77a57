package route

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Bind decodes the query into the struct pointed to by dst.
// Fields map to keys through a `url` tag, falling back to the lower-cased
// field name; a tag of "-" skips the field. Missing keys leave the field
// untouched.
//
// Example:
//
//	var p struct {
//	    ID   int    `url:"id"`
//	    Tab  string `url:"tab"`
//	    Edit bool
//	}
//	err := r.Bind(&p)
func (r *Route) Bind(dst any) error {
	return bindQuery(r.Query(), dst)
}

func bindQuery(params map[string]string, dst any) error {
	v := reflect.ValueOf(dst)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return fmt.Errorf("route: Bind requires a non-nil struct pointer, got %T", dst)
	}
	v = v.Elem()
	if v.Kind() != reflect.Struct {
		return fmt.Errorf("route: Bind requires a struct pointer, got %T", dst)
	}

	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fieldValue := v.Field(i)

		if !fieldValue.CanSet() {
			continue
		}

		key := field.Tag.Get("url")
		if key == "" {
			key = strings.ToLower(field.Name)
		}
		if key == "-" {
			continue
		}

		val, ok := params[key]
		if !ok {
			continue
		}
		if err := setFieldValue(fieldValue, val); err != nil {
			return fmt.Errorf("route: query %q: %w", key, err)
		}
	}
	return nil
}

func setFieldValue(v reflect.Value, s string) error {
	switch v.Kind() {
	case reflect.String:
		v.SetString(s)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, err := strconv.ParseInt(s, 10, v.Type().Bits())
		if err != nil {
			return err
		}
		v.SetInt(i)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		i, err := strconv.ParseUint(s, 10, v.Type().Bits())
		if err != nil {
			return err
		}
		v.SetUint(i)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(s, v.Type().Bits())
		if err != nil {
			return err
		}
		v.SetFloat(f)
	case reflect.Bool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return err
		}
		v.SetBool(b)
	default:
		return fmt.Errorf("unsupported type: %v", v.Kind())
	}
	return nil
}
