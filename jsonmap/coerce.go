package jsonmap

import (
	"errors"
	"math/big"
	"reflect"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// rawValue parses data. Text which is not valid JSON is kept as a bare
// string scalar, the Graph API sometimes answers with one.
func rawValue(data string) gjson.Result {
	trimmed := strings.TrimSpace(data)
	if gjson.Valid(trimmed) {
		return gjson.Parse(trimmed)
	}
	return gjson.Result{Type: gjson.String, Str: data, Raw: data}
}

// scalarText is the string form numbers and strings are parsed from.
func scalarText(raw gjson.Result) string {
	if raw.Type == gjson.String {
		return raw.Str
	}
	return raw.Raw
}

// coerce converts raw into a value of type t, which must not be a pointer.
// An invalid Value is returned for JSON null.
func coerce(raw gjson.Result, t reflect.Type) (reflect.Value, error) {
	if raw.Type == gjson.Null {
		return reflect.Value{}, nil
	}
	v := reflect.New(t).Elem()
	text := scalarText(raw)
	switch target := TargetOf(t); target {
	case TargetString:
		if raw.IsArray() && len(raw.Array()) == 0 {
			return v, nil
		}
		if len(text) > 1 && strings.HasPrefix(text, `"`) && strings.HasSuffix(text, `"`) {
			text = text[1 : len(text)-1]
		}
		v.SetString(text)
	case TargetInt32, TargetInt64:
		n, err := strconv.ParseInt(text, 10, t.Bits())
		if err != nil {
			return reflect.Value{}, coercionError(text, t, err)
		}
		v.SetInt(n)
	case TargetUint64:
		n, err := strconv.ParseUint(text, 10, t.Bits())
		if err != nil {
			return reflect.Value{}, coercionError(text, t, err)
		}
		v.SetUint(n)
	case TargetBool:
		switch raw.Type {
		case gjson.True, gjson.False:
			v.SetBool(raw.Bool())
		default:
			b, err := strconv.ParseBool(text)
			if err != nil {
				return reflect.Value{}, coercionError(text, t, err)
			}
			v.SetBool(b)
		}
	case TargetFloat64, TargetFloat32:
		f, err := strconv.ParseFloat(text, t.Bits())
		if err != nil {
			return reflect.Value{}, coercionError(text, t, err)
		}
		v.SetFloat(f)
	case TargetBigInt:
		n, ok := new(big.Int).SetString(text, 10)
		if !ok {
			return reflect.Value{}, coercionError(text, t, errors.New("invalid integer"))
		}
		v.Set(reflect.ValueOf(n).Elem())
	case TargetBigFloat:
		f, ok := new(big.Float).SetString(text)
		if !ok {
			return reflect.Value{}, coercionError(text, t, errors.New("invalid decimal"))
		}
		v.Set(reflect.ValueOf(f).Elem())
	case TargetAny:
		if x := raw.Value(); x != nil {
			v.Set(reflect.ValueOf(x))
		}
	default:
		return reflect.Value{}, coercionError(text, t, errors.New(target.String()+" is not a primitive"))
	}
	return v, nil
}

func coercionError(text string, t reflect.Type, err error) error {
	var ne *strconv.NumError
	if errors.As(err, &ne) {
		err = ne.Err
	}
	return &CoercionError{Value: strconv.Quote(text), Type: t, Err: err}
}
