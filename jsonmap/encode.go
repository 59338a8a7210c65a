package jsonmap

import (
	"math/big"
	"reflect"
	"sort"

	jsoniter "github.com/json-iterator/go"
)

var jsonConfig = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	bigIntPtrType   = reflect.TypeOf((*big.Int)(nil))
	bigFloatPtrType = reflect.TypeOf((*big.Float)(nil))
)

// ToJSON converts v into JSON text. Shapes are written key by key from their
// bindings, when omitNulls is set nil fields are left out. big.Int and
// big.Float are narrowed to int64 and float64.
//
// When two fields of a shape are bound to the same key, the last one
// declared is the one written.
func (m *Mapper) ToJSON(v interface{}, omitNulls bool) (string, error) {
	stream := jsonConfig.BorrowStream(nil)
	defer jsonConfig.ReturnStream(stream)
	if err := encode(stream, reflect.ValueOf(v), omitNulls); err != nil {
		return "", err
	}
	if stream.Error != nil {
		return "", stream.Error
	}
	return string(stream.Buffer()), nil
}

func encode(s *jsoniter.Stream, v reflect.Value, omitNulls bool) error {
	if !v.IsValid() {
		s.WriteNil()
		return nil
	}

	switch v.Type() {
	case bigIntPtrType:
		if v.IsNil() {
			s.WriteNil()
		} else {
			s.WriteInt64(v.Interface().(*big.Int).Int64())
		}
		return nil
	case bigFloatPtrType:
		if v.IsNil() {
			s.WriteNil()
		} else {
			f, _ := v.Interface().(*big.Float).Float64()
			s.WriteFloat64(f)
		}
		return nil
	case bigIntType:
		n := v.Interface().(big.Int)
		s.WriteInt64(n.Int64())
		return nil
	case bigFloatType:
		n := v.Interface().(big.Float)
		f, _ := n.Float64()
		s.WriteFloat64(f)
		return nil
	}

	switch v.Kind() {
	case reflect.Ptr, reflect.Interface:
		if v.IsNil() {
			s.WriteNil()
			return nil
		}
		return encode(s, v.Elem(), omitNulls)
	case reflect.String:
		s.WriteString(v.String())
	case reflect.Bool:
		s.WriteBool(v.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		s.WriteInt64(v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		s.WriteUint64(v.Uint())
	case reflect.Float32:
		s.WriteFloat32(float32(v.Float()))
	case reflect.Float64:
		s.WriteFloat64(v.Float())
	case reflect.Slice:
		if v.IsNil() {
			s.WriteNil()
			return nil
		}
		return encodeArray(s, v, omitNulls)
	case reflect.Array:
		return encodeArray(s, v, omitNulls)
	case reflect.Map:
		return encodeMap(s, v, omitNulls)
	case reflect.Struct:
		return encodeShape(s, v, omitNulls)
	default:
		return &TypeError{Type: v.Type(), Reason: "cannot be converted to JSON"}
	}
	return nil
}

func encodeArray(s *jsoniter.Stream, v reflect.Value, omitNulls bool) error {
	s.WriteArrayStart()
	for i := 0; i < v.Len(); i++ {
		if i > 0 {
			s.WriteMore()
		}
		if err := encode(s, v.Index(i), omitNulls); err != nil {
			return err
		}
	}
	s.WriteArrayEnd()
	return nil
}

func encodeMap(s *jsoniter.Stream, v reflect.Value, omitNulls bool) error {
	if v.Type().Key().Kind() != reflect.String {
		return &UnsupportedKeyError{Type: v.Type().Key()}
	}
	if v.IsNil() {
		s.WriteNil()
		return nil
	}
	keys := v.MapKeys()
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
	s.WriteObjectStart()
	for i, k := range keys {
		if i > 0 {
			s.WriteMore()
		}
		s.WriteObjectField(k.String())
		if err := encode(s, v.MapIndex(k), omitNulls); err != nil {
			return err
		}
	}
	s.WriteObjectEnd()
	return nil
}

func encodeShape(s *jsoniter.Stream, v reflect.Value, omitNulls bool) error {
	type entry struct {
		key   string
		value reflect.Value
	}
	var (
		entries []entry
		at      = make(map[string]int)
	)
	for _, b := range shapeOf(v.Type()).bindings {
		fv := v.FieldByIndex(b.Index)
		if omitNulls && isNil(fv) {
			continue
		}
		if b.OmitEmpty && fv.IsZero() {
			continue
		}
		if i, ok := at[b.Key]; ok {
			entries[i].value = fv
			continue
		}
		at[b.Key] = len(entries)
		entries = append(entries, entry{key: b.Key, value: fv})
	}

	s.WriteObjectStart()
	for i, e := range entries {
		if i > 0 {
			s.WriteMore()
		}
		s.WriteObjectField(e.key)
		if err := encode(s, e.value, omitNulls); err != nil {
			return err
		}
	}
	s.WriteObjectEnd()
	return nil
}

func isNil(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice:
		return v.IsNil()
	}
	return !v.IsValid()
}

// namedEntity builds the object text {"name": name}.
func namedEntity(name string) string {
	stream := jsonConfig.BorrowStream(nil)
	defer jsonConfig.ReturnStream(stream)
	stream.WriteObjectStart()
	stream.WriteObjectField("name")
	stream.WriteString(name)
	stream.WriteObjectEnd()
	return string(stream.Buffer())
}
