package jsonmap

import (
	"errors"
	"fmt"
	"reflect"
)

// Structural faults. These are wrapped in a *MappingError when the
// ErrorPolicy declines to continue.
var (
	ErrBlank         = errors.New("jsonmap: JSON is blank")
	ErrArrayAsObject = errors.New("jsonmap: JSON is an array but is being mapped as an object")
	ErrObjectAsList  = errors.New("jsonmap: JSON is an object but is being mapped as a list")
	ErrMalformed     = errors.New("jsonmap: malformed JSON")
	ErrNotObject     = errors.New("jsonmap: JSON is not an object")
	ErrNotArray      = errors.New("jsonmap: JSON is not an array")
)

// MappingError is returned when a fault could not be tolerated. Data holds
// the offending JSON text.
type MappingError struct {
	Data  string
	Type  reflect.Type
	Field string
	Err   error
}

func (e *MappingError) Error() string {
	target := "<nil>"
	if e.Type != nil {
		target = e.Type.String()
	}
	if e.Field != "" {
		target += "." + e.Field
	}
	return fmt.Sprintf("jsonmap: unable to map JSON %q into %s: %s", e.Data, target, e.Err)
}

func (e *MappingError) Unwrap() error {
	return e.Err
}

// CoercionError describes a scalar which could not be converted into the
// requested type.
type CoercionError struct {
	Value string
	Type  reflect.Type
	Err   error
}

func (e *CoercionError) Error() string {
	msg := "jsonmap: cannot coerce " + e.Value + " into Go value of type " + e.Type.String()
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *CoercionError) Unwrap() error {
	return e.Err
}

// TypeError is a construction fault: the target type cannot be built by the
// mapper at all. It never goes through the ErrorPolicy.
type TypeError struct {
	Type   reflect.Type
	Reason string
}

func (e *TypeError) Error() string {
	return "jsonmap: unsupported type " + e.Type.String() + ": " + e.Reason
}

// InvalidTargetError is returned when the destination passed to the mapper is
// not a non-nil pointer.
type InvalidTargetError struct {
	Type reflect.Type
}

func (e *InvalidTargetError) Error() string {
	if e.Type == nil {
		return "jsonmap: map into nil"
	}
	if e.Type.Kind() != reflect.Ptr {
		return "jsonmap: map into non-pointer " + e.Type.String()
	}
	return "jsonmap: map into nil " + e.Type.String()
}

// UnsupportedKeyError is returned by ToJSON for maps without string keys.
type UnsupportedKeyError struct {
	Type reflect.Type
}

func (e *UnsupportedKeyError) Error() string {
	return "jsonmap: map keys must be strings, got " + e.Type.String()
}

func isFatal(err error) bool {
	var me *MappingError
	var te *TypeError
	return errors.As(err, &me) || errors.As(err, &te)
}
