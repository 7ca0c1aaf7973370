package bound

import (
	"encoding"
	"fmt"
	"reflect"
	"slices"
	"strconv"
	"unsafe"

	"github.com/ygrebnov/errorc"

	"github.com/ygrebnov/bound/errors"
	"github.com/ygrebnov/bound/internal/schema"
)

var (
	objectType        = reflect.TypeOf((*Object)(nil))
	boundType         = reflect.TypeOf((*Bound)(nil))
	textMarshalerType = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()
)

// Clone deep-copies a plain value into a fresh *Object with no live
// properties. Supported sources are *Object, maps, slices, arrays and structs
// (directly or behind pointers and interfaces); anything else fails with
// ErrInvalidSubject.
//
// Nested maps, slices and structs become nested objects. Values implementing
// encoding.TextMarshaler and []byte are copied as leaves. Functions, channels,
// complex numbers and unsafe pointers are dropped. Struct fields follow the
// `bound` tag: "-" skips a field and a name renames it.
//
// A value that contains itself fails with ErrCircularReference. Shared,
// non-cyclic references are copied once per occurrence.
func Clone(v any) (*Object, error) {
	if o, ok := v.(*Object); ok && o != nil {
		return newCloner().object(o, "")
	}
	rv := unwrap(reflect.ValueOf(v))
	if !isObjectValue(rv) {
		return nil, invalidSubject(v)
	}
	c := newCloner()
	out, _, err := c.value(reflect.ValueOf(v), "")
	if err != nil {
		return nil, err
	}
	return out.(*Object), nil
}

func invalidSubject(v any) error {
	return errorc.With(errors.ErrInvalidSubject, errorc.String(errors.ErrorFieldValueType, fmt.Sprintf("%T", v)))
}

// isObjectValue reports whether rv (already unwrapped) snapshots to an object.
func isObjectValue(rv reflect.Value) bool {
	if !rv.IsValid() {
		return false
	}
	if rv.Type() == objectType || rv.Type() == boundType {
		return !rv.IsNil()
	}
	if isLeafType(rv.Type()) {
		return false
	}
	switch rv.Kind() {
	case reflect.Map, reflect.Slice:
		return !rv.IsNil() && rv.Type() != reflect.TypeOf([]byte(nil))
	case reflect.Array, reflect.Struct:
		return true
	}
	return false
}

// unwrap strips interfaces and pointers, stopping at *Object and *Bound.
func unwrap(rv reflect.Value) reflect.Value {
	for rv.IsValid() {
		switch {
		case rv.Type() == objectType || rv.Type() == boundType:
			return rv
		case rv.Kind() == reflect.Interface, rv.Kind() == reflect.Ptr && !isLeafType(rv.Type()):
			if rv.IsNil() {
				return reflect.Value{}
			}
			rv = rv.Elem()
		default:
			return rv
		}
	}
	return rv
}

func isLeafType(t reflect.Type) bool {
	return t.Implements(textMarshalerType)
}

type visitKey struct {
	typ reflect.Type
	ptr unsafe.Pointer
}

// cloner tracks the identities on the current descent path so that a
// revisit fails fast instead of recursing forever.
type cloner struct {
	visiting map[visitKey]struct{}
}

func newCloner() *cloner {
	return &cloner{visiting: make(map[visitKey]struct{})}
}

func (c *cloner) enter(rv reflect.Value, path string) (func(), error) {
	k := visitKey{typ: rv.Type(), ptr: rv.UnsafePointer()}
	if k.ptr == nil {
		return func() {}, nil
	}
	if _, ok := c.visiting[k]; ok {
		return nil, errorc.With(errors.ErrCircularReference, errorc.String(errors.ErrorFieldPath, path))
	}
	c.visiting[k] = struct{}{}
	return func() { delete(c.visiting, k) }, nil
}

// value copies rv. The boolean result is false when the value is dropped.
func (c *cloner) value(rv reflect.Value, path string) (any, bool, error) {
	if !rv.IsValid() {
		return nil, true, nil
	}

	t := rv.Type()
	switch {
	case t == objectType:
		if rv.IsNil() {
			return nil, true, nil
		}
		o, err := c.object(rv.Interface().(*Object), path)
		return o, true, err
	case t == boundType:
		if rv.IsNil() {
			return nil, true, nil
		}
		o, err := c.object(rv.Interface().(*Bound).Object(), path)
		return o, true, err
	case isLeafType(t):
		if rv.Kind() == reflect.Ptr && rv.IsNil() {
			return nil, true, nil
		}
		return rv.Interface(), true, nil
	}

	switch rv.Kind() {
	case reflect.Interface:
		if rv.IsNil() {
			return nil, true, nil
		}
		return c.value(rv.Elem(), path)
	case reflect.Ptr:
		if rv.IsNil() {
			return nil, true, nil
		}
		leave, err := c.enter(rv, path)
		if err != nil {
			return nil, false, err
		}
		defer leave()
		return c.value(rv.Elem(), path)
	case reflect.Map:
		if rv.IsNil() {
			return nil, true, nil
		}
		leave, err := c.enter(rv, path)
		if err != nil {
			return nil, false, err
		}
		defer leave()
		o, err := c.mapObject(rv, path)
		return o, true, err
	case reflect.Slice:
		if rv.IsNil() {
			return nil, true, nil
		}
		if t.Elem().Kind() == reflect.Uint8 {
			return slices.Clone(rv.Bytes()), true, nil
		}
		leave, err := c.enter(rv, path)
		if err != nil {
			return nil, false, err
		}
		defer leave()
		o, err := c.listObject(rv, path)
		return o, true, err
	case reflect.Array:
		o, err := c.listObject(rv, path)
		return o, true, err
	case reflect.Struct:
		o, err := c.structObject(rv, path)
		return o, true, err
	case reflect.Func, reflect.Chan, reflect.UnsafePointer, reflect.Complex64, reflect.Complex128:
		return nil, false, nil
	default:
		return rv.Interface(), true, nil
	}
}

func (c *cloner) object(src *Object, path string) (*Object, error) {
	leave, err := c.enter(reflect.ValueOf(src), path)
	if err != nil {
		return nil, err
	}
	defer leave()

	out := NewObject()
	out.list = src.IsList()
	for _, key := range src.Keys() {
		v, keep, err := c.value(reflect.ValueOf(src.Get(key)), joinPath(path, key))
		if err != nil {
			return nil, err
		}
		if keep {
			out.Store(key, v)
		}
	}
	return out, nil
}

func (c *cloner) mapObject(rv reflect.Value, path string) (*Object, error) {
	type entry struct {
		key string
		val reflect.Value
	}
	entries := make([]entry, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		entries = append(entries, entry{key: mapKey(iter.Key()), val: iter.Value()})
	}
	slices.SortFunc(entries, func(a, b entry) int {
		switch {
		case a.key < b.key:
			return -1
		case a.key > b.key:
			return 1
		}
		return 0
	})

	out := NewObject()
	for _, e := range entries {
		v, keep, err := c.value(e.val, joinPath(path, e.key))
		if err != nil {
			return nil, err
		}
		if keep {
			out.Store(e.key, v)
		}
	}
	return out, nil
}

func mapKey(k reflect.Value) string {
	if k.Kind() == reflect.Interface && !k.IsNil() {
		k = k.Elem()
	}
	if k.Kind() == reflect.String {
		return k.String()
	}
	if tm, ok := k.Interface().(encoding.TextMarshaler); ok {
		if b, err := tm.MarshalText(); err == nil {
			return string(b)
		}
	}
	return fmt.Sprint(k.Interface())
}

func (c *cloner) listObject(rv reflect.Value, path string) (*Object, error) {
	out := NewList()
	for i := 0; i < rv.Len(); i++ {
		key := strconv.Itoa(i)
		v, keep, err := c.value(rv.Index(i), joinPath(path, key))
		if err != nil {
			return nil, err
		}
		if !keep {
			v = nil
		}
		out.Store(key, v)
	}
	return out, nil
}

func (c *cloner) structObject(rv reflect.Value, path string) (*Object, error) {
	out := NewObject()
	for _, f := range schema.Fields(rv.Type()) {
		fv, err := rv.FieldByIndexErr(f.Index)
		if err != nil {
			// promoted through a nil embedded pointer
			continue
		}
		v, keep, err := c.value(fv, joinPath(path, f.Name))
		if err != nil {
			return nil, err
		}
		if keep {
			out.Store(f.Name, v)
		}
	}
	return out, nil
}
