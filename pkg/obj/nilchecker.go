package obj

import (
	"fmt"
	"reflect"
)

// IsNil reports whether what is nil, including the case of a nil pointer, map, slice,
// channel or func stored in a non-nil interface.
func IsNil(what interface{}) bool {
	if what == nil {
		return true
	}

	v := reflect.ValueOf(what)
	switch v.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.Interface:
		return v.IsNil()
	default:
		return false
	}
}

// MustNotBeNil panics naming the dependency when what is nil.
func MustNotBeNil(name string, what interface{}) {
	if IsNil(what) {
		panic(fmt.Sprintf("%s must not be nil", name))
	}
}
