package jsonmap

import "reflect"

// ErrorPolicy decides whether a mapping fault is tolerated. Returning true
// turns the offending value into its zero value and mapping continues,
// returning false aborts with a *MappingError.
type ErrorPolicy interface {
	OnMappingError(data string, target reflect.Type, err error) bool
}

// ErrorPolicyFunc adapts a function to an ErrorPolicy.
type ErrorPolicyFunc func(data string, target reflect.Type, err error) bool

func (f ErrorPolicyFunc) OnMappingError(data string, target reflect.Type, err error) bool {
	return f(data, target, err)
}

var (
	// Strict never tolerates a fault. It is the default.
	Strict ErrorPolicy = ErrorPolicyFunc(func(string, reflect.Type, error) bool { return false })

	// Lenient tolerates every structural and coercion fault.
	Lenient ErrorPolicy = ErrorPolicyFunc(func(string, reflect.Type, error) bool { return true })
)
