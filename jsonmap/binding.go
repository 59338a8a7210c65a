package jsonmap

import (
	"reflect"
	"strings"
	"sync"
)

// TagName is the struct tag that marks a field for mapping. The tag value is
// the JSON key, optionally followed by ",omitempty".
const TagName = "facebook"

// Binding associates one struct field with the JSON key it reads from and
// writes to.
type Binding struct {
	Key       string       // JSON key
	Name      string       // Go field name
	Index     []int        // index path for reflect.Value.FieldByIndex
	Type      reflect.Type // declared field type
	Target    Target
	Elem      reflect.Type // element type for lists and maps, nil otherwise
	OmitEmpty bool
}

type shape struct {
	bindings  []Binding
	ambiguous map[string]bool
	named     bool
}

var shapes sync.Map // map[reflect.Type]*shape

// Bindings returns the bindings discovered for the struct type t (or pointer
// to struct). Fields declared directly on t come first in declaration order,
// followed by the fields of each embedded struct. The result is a copy and
// may be modified by the caller.
func Bindings(t reflect.Type) []Binding {
	t = indirect(t)
	if t.Kind() != reflect.Struct {
		return nil
	}
	s := shapeOf(t)
	out := make([]Binding, len(s.bindings))
	copy(out, s.bindings)
	return out
}

func shapeOf(t reflect.Type) *shape {
	if s, ok := shapes.Load(t); ok {
		return s.(*shape)
	}
	s := &shape{
		bindings:  collect(t, nil, nil),
		ambiguous: make(map[string]bool),
	}
	seen := make(map[string]bool, len(s.bindings))
	for _, b := range s.bindings {
		if seen[b.Key] {
			s.ambiguous[b.Key] = true
		}
		seen[b.Key] = true
	}
	s.named = seen["id"] && seen["name"]
	actual, _ := shapes.LoadOrStore(t, s)
	return actual.(*shape)
}

func collect(t reflect.Type, parent []int, out []Binding) []Binding {
	var embedded []reflect.StructField
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag, tagged := f.Tag.Lookup(TagName)
		if f.Anonymous && !tagged {
			if f.Type.Kind() == reflect.Struct && f.IsExported() {
				embedded = append(embedded, f)
			}
			continue
		}
		if !tagged || tag == "-" || !f.IsExported() {
			continue
		}
		name, opts, _ := strings.Cut(tag, ",")
		if name == "" {
			name = f.Name
		}
		b := Binding{
			Key:       name,
			Name:      f.Name,
			Index:     appendIndex(parent, f.Index...),
			Type:      f.Type,
			Target:    TargetOf(f.Type),
			OmitEmpty: opts == "omitempty",
		}
		switch b.Target {
		case TargetList, TargetMap:
			b.Elem = indirect(f.Type).Elem()
		}
		out = append(out, b)
	}
	for _, f := range embedded {
		out = collect(f.Type, appendIndex(parent, f.Index...), out)
	}
	return out
}

func appendIndex(parent []int, index ...int) []int {
	out := make([]int, 0, len(parent)+len(index))
	out = append(out, parent...)
	return append(out, index...)
}
