package jsonmap

import (
	"math/big"
	"reflect"
)

// Target is the closed set of things a JSON value can be mapped into.
type Target int

const (
	TargetInvalid Target = iota
	TargetString
	TargetInt32
	TargetInt64
	TargetUint64
	TargetBool
	TargetFloat64
	TargetFloat32
	TargetBigInt
	TargetBigFloat
	TargetShape
	TargetList
	TargetMap
	TargetAny
)

var targetNames = [...]string{
	TargetInvalid:  "invalid",
	TargetString:   "string",
	TargetInt32:    "int32",
	TargetInt64:    "int64",
	TargetUint64:   "uint64",
	TargetBool:     "bool",
	TargetFloat64:  "float64",
	TargetFloat32:  "float32",
	TargetBigInt:   "bigint",
	TargetBigFloat: "bigfloat",
	TargetShape:    "shape",
	TargetList:     "list",
	TargetMap:      "map",
	TargetAny:      "any",
}

func (t Target) String() string {
	if t < 0 || int(t) >= len(targetNames) {
		return "Target(?)"
	}
	return targetNames[t]
}

// Primitive reports whether the target is handled by coercion alone.
func (t Target) Primitive() bool {
	switch t {
	case TargetString, TargetInt32, TargetInt64, TargetUint64, TargetBool,
		TargetFloat64, TargetFloat32, TargetBigInt, TargetBigFloat:
		return true
	}
	return false
}

var (
	bigIntType   = reflect.TypeOf(big.Int{})
	bigFloatType = reflect.TypeOf(big.Float{})
)

// TargetOf classifies t, looking through one level of pointer.
func TargetOf(t reflect.Type) Target {
	t = indirect(t)
	switch t {
	case bigIntType:
		return TargetBigInt
	case bigFloatType:
		return TargetBigFloat
	}
	switch t.Kind() {
	case reflect.String:
		return TargetString
	case reflect.Int8, reflect.Int16, reflect.Int32:
		return TargetInt32
	case reflect.Int, reflect.Int64:
		return TargetInt64
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return TargetUint64
	case reflect.Bool:
		return TargetBool
	case reflect.Float64:
		return TargetFloat64
	case reflect.Float32:
		return TargetFloat32
	case reflect.Struct:
		return TargetShape
	case reflect.Slice:
		return TargetList
	case reflect.Map:
		if t.Key().Kind() == reflect.String {
			return TargetMap
		}
	case reflect.Interface:
		if t.NumMethod() == 0 {
			return TargetAny
		}
	}
	return TargetInvalid
}

func indirect(t reflect.Type) reflect.Type {
	if t.Kind() == reflect.Ptr {
		return t.Elem()
	}
	return t
}
