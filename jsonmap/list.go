package jsonmap

import (
	"reflect"
	"strings"

	"github.com/tidwall/gjson"
)

// List maps data into a []T.
func List[T any](m *Mapper, data string) ([]T, error) {
	var out []T
	if err := m.ToList(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ToList maps the JSON array in data into v, which must be a non-nil pointer
// to a slice. The Graph API's {} for an empty list and its {"data": [...]}
// envelope are both accepted.
func (m *Mapper) ToList(data string, v interface{}) error {
	dst, err := destination(v)
	if err != nil {
		return err
	}
	t := indirect(dst.Type())
	if t.Kind() != reflect.Slice {
		return &TypeError{Type: t, Reason: "ToList requires a slice"}
	}
	out, err := m.list(data, t)
	if err != nil {
		return err
	}
	assign(dst, out)
	return nil
}

// list maps data into a new slice of type t.
func (m *Mapper) list(data string, t reflect.Type) (reflect.Value, error) {
	trimmed := strings.TrimSpace(data)
	if trimmed == "" {
		return m.fault(data, t, ErrBlank)
	}
	if trimmed == "null" {
		return reflect.Value{}, nil
	}

	if trimmed[0] == '{' {
		if isEmptyObject(trimmed) {
			return reflect.MakeSlice(t, 0, 0), nil
		}
		unwrapped, ok := dataEnvelope(trimmed)
		if !ok {
			return m.fault(data, t, ErrObjectAsList)
		}
		trimmed = unwrapped
	}

	if !gjson.Valid(trimmed) {
		return m.fault(data, t, ErrMalformed)
	}
	root := gjson.Parse(trimmed)
	if !root.IsArray() {
		return m.fault(data, t, ErrNotArray)
	}
	elems := root.Array()
	out := reflect.MakeSlice(t, len(elems), len(elems))
	for i, e := range elems {
		v, err := m.value(e.Raw, t.Elem())
		if err != nil {
			return reflect.Value{}, err
		}
		assign(out.Index(i), v)
	}
	return out, nil
}

// dataEnvelope returns the array text of an object whose only member is a
// "data" array.
func dataEnvelope(trimmed string) (string, bool) {
	if !gjson.Valid(trimmed) {
		return "", false
	}
	var (
		count int
		data  gjson.Result
	)
	gjson.Parse(trimmed).ForEach(func(k, v gjson.Result) bool {
		count++
		if k.Str == "data" {
			data = v
		}
		return true
	})
	if count != 1 || !data.IsArray() {
		return "", false
	}
	return data.Raw, true
}
