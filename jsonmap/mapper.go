// Package jsonmap maps Graph API JSON onto structs tagged with `facebook`
// keys and back again.
//
// The mapper is deliberately forgiving of the inconsistencies the Graph API
// is known for: numbers sent as strings, "false" or "null" in place of an
// object, {} in place of an empty list, a list wrapped in {"data": [...]},
// and the same key carrying differently shaped values depending on context.
// Whatever cannot be tolerated is offered to the configured ErrorPolicy.
package jsonmap

import (
	"errors"
	"log/slog"
	"reflect"
	"strings"

	"github.com/tidwall/gjson"
)

// Mapper converts between JSON text and tagged structs. The zero value, and
// a nil *Mapper, are ready to use with the Strict policy.
type Mapper struct {
	// Decides whether a structural or coercion fault is tolerated. When nil
	// Strict is used.
	ErrorPolicy ErrorPolicy

	// Receives diagnostics. When nil slog.Default() is used.
	Logger *slog.Logger
}

func (m *Mapper) policy() ErrorPolicy {
	if m == nil || m.ErrorPolicy == nil {
		return Strict
	}
	return m.ErrorPolicy
}

// strict returns a Mapper that shares m's logger but tolerates nothing.
// Failures on ambiguous keys are swallowed by the caller and never reach the
// installed policy.
func (m *Mapper) strict() *Mapper {
	if m == nil {
		return nil
	}
	return &Mapper{ErrorPolicy: Strict, Logger: m.Logger}
}

func (m *Mapper) logger() *slog.Logger {
	if m == nil || m.Logger == nil {
		return slog.Default()
	}
	return m.Logger
}

// Object maps data into a new T. A nil result with a nil error means the JSON
// stood for "no value" ("null", "false", or a tolerated fault).
func Object[T any](m *Mapper, data string) (*T, error) {
	var out *T
	if err := m.ToObject(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ToObject maps the JSON object in data into v, which must be a non-nil
// pointer. v is left untouched when an error is returned. A fault the
// ErrorPolicy tolerates, including a failed hook, leaves the value absent.
func (m *Mapper) ToObject(data string, v interface{}) error {
	dst, err := destination(v)
	if err != nil {
		return err
	}
	out, err := m.object(data, indirect(dst.Type()))
	if err != nil {
		return err
	}
	assign(dst, out)
	return nil
}

// Unmarshal maps data into v using ToList for slice targets and ToObject for
// everything else.
func (m *Mapper) Unmarshal(data string, v interface{}) error {
	dst, err := destination(v)
	if err != nil {
		return err
	}
	out, err := m.value(data, dst.Type())
	if err != nil {
		return err
	}
	assign(dst, out)
	return nil
}

func destination(v interface{}) (reflect.Value, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return reflect.Value{}, &InvalidTargetError{Type: reflect.TypeOf(v)}
	}
	return rv.Elem(), nil
}

// value dispatches on the kind of t.
func (m *Mapper) value(data string, t reflect.Type) (reflect.Value, error) {
	base := indirect(t)
	switch TargetOf(base) {
	case TargetList:
		return m.list(data, base)
	case TargetAny:
		return coerce(rawValue(data), base)
	}
	return m.object(data, base)
}

// object maps data into a new value of t, which must not be a pointer. An
// invalid Value with a nil error stands for "no value".
func (m *Mapper) object(data string, t reflect.Type) (reflect.Value, error) {
	trimmed := strings.TrimSpace(data)
	if trimmed == "" {
		return m.fault(data, t, ErrBlank)
	}
	if trimmed[0] == '[' {
		return m.fault(data, t, ErrArrayAsObject)
	}

	switch target := TargetOf(t); target {
	case TargetInvalid:
		return reflect.Value{}, &TypeError{Type: t, Reason: "no mapping for kind " + t.Kind().String()}
	case TargetList:
		return reflect.Value{}, &TypeError{Type: t, Reason: "lists are mapped with ToList"}
	case TargetMap:
		return m.members(data, trimmed, t)
	case TargetShape:
	default:
		return m.primitive(data, t)
	}

	s := shapeOf(t)
	if len(s.bindings) == 0 {
		if isEmptyObject(trimmed) {
			return reflect.New(t).Elem(), nil
		}
		return m.primitive(data, t)
	}

	if trimmed == "null" || trimmed == "false" {
		return reflect.Value{}, nil
	}
	root, err := parseObject(trimmed)
	if err != nil {
		return m.fault(data, t, err)
	}
	members := make(map[string]gjson.Result)
	root.ForEach(func(k, v gjson.Result) bool {
		members[k.Str] = v
		return true
	})

	out := reflect.New(t)
	for _, b := range s.bindings {
		raw, ok := members[b.Key]
		if !ok {
			continue
		}
		fm := m
		if s.ambiguous[b.Key] {
			fm = m.strict()
		}
		v, err := fm.field(raw, b)
		if err != nil {
			var te *TypeError
			if errors.As(err, &te) {
				return reflect.Value{}, err
			}
			if s.ambiguous[b.Key] {
				m.logger().Debug("jsonmap: ignoring failure on ambiguous key",
					"type", t.String(), "field", b.Name, "key", b.Key, "error", err)
				continue
			}
			if isFatal(err) {
				return reflect.Value{}, err
			}
			if !m.policy().OnMappingError(raw.Raw, b.Type, err) {
				return reflect.Value{}, &MappingError{Data: raw.Raw, Type: t, Field: b.Name, Err: err}
			}
			continue
		}
		assign(out.Elem().FieldByIndex(b.Index), v)
	}

	if err := m.runHooks(out.Interface()); err != nil {
		if isFatal(err) {
			return reflect.Value{}, err
		}
		if !m.policy().OnMappingError(data, t, err) {
			return reflect.Value{}, &MappingError{Data: data, Type: t, Err: err}
		}
		return reflect.Value{}, nil
	}
	return out.Elem(), nil
}

func (m *Mapper) field(raw gjson.Result, b Binding) (reflect.Value, error) {
	base := indirect(b.Type)
	switch b.Target {
	case TargetShape:
		// A reference to an {id, name} entity is sometimes abbreviated to the
		// bare name.
		if raw.Type == gjson.String && shapeOf(base).named {
			return m.object(namedEntity(raw.Str), base)
		}
		return m.object(raw.Raw, base)
	case TargetList:
		return m.list(raw.Raw, base)
	case TargetMap:
		return m.object(raw.Raw, base)
	case TargetInvalid:
		return reflect.Value{}, &TypeError{Type: b.Type, Reason: "no mapping for field " + b.Name}
	}
	return coerce(raw, base)
}

func (m *Mapper) primitive(data string, t reflect.Type) (reflect.Value, error) {
	v, err := coerce(rawValue(data), t)
	if err != nil {
		return m.fault(data, t, err)
	}
	return v, nil
}

// members maps a JSON object into a map type.
func (m *Mapper) members(data, trimmed string, t reflect.Type) (reflect.Value, error) {
	if trimmed == "null" {
		return reflect.Value{}, nil
	}
	root, err := parseObject(trimmed)
	if err != nil {
		return m.fault(data, t, err)
	}
	out := reflect.MakeMap(t)
	root.ForEach(func(k, v gjson.Result) bool {
		var ev reflect.Value
		ev, err = m.value(v.Raw, t.Elem())
		if err != nil {
			return false
		}
		key := reflect.New(t.Key()).Elem()
		key.SetString(k.Str)
		slot := reflect.New(t.Elem()).Elem()
		assign(slot, ev)
		out.SetMapIndex(key, slot)
		return true
	})
	if err != nil {
		return reflect.Value{}, err
	}
	return out, nil
}

func (m *Mapper) fault(data string, t reflect.Type, err error) (reflect.Value, error) {
	if m.policy().OnMappingError(data, t, err) {
		m.logger().Debug("jsonmap: tolerated mapping fault", "type", t.String(), "error", err)
		return reflect.Value{}, nil
	}
	return reflect.Value{}, &MappingError{Data: data, Type: t, Err: err}
}

func parseObject(trimmed string) (gjson.Result, error) {
	if !gjson.Valid(trimmed) {
		return gjson.Result{}, ErrMalformed
	}
	root := gjson.Parse(trimmed)
	if !root.IsObject() {
		return gjson.Result{}, ErrNotObject
	}
	return root, nil
}

func isEmptyObject(trimmed string) bool {
	return len(trimmed) >= 2 && trimmed[0] == '{' && trimmed[len(trimmed)-1] == '}' &&
		strings.TrimSpace(trimmed[1:len(trimmed)-1]) == ""
}

// assign stores v into dst, allocating when dst is a pointer. An invalid v
// stores the zero value.
func assign(dst, v reflect.Value) {
	if !v.IsValid() {
		dst.Set(reflect.Zero(dst.Type()))
		return
	}
	if dst.Kind() == reflect.Ptr && v.Kind() != reflect.Ptr {
		p := reflect.New(v.Type())
		p.Elem().Set(v)
		dst.Set(p)
		return
	}
	dst.Set(v)
}
