// Package schema describes which fields of a struct type take part in a
// bound snapshot.
package schema

import (
	"reflect"
	"strings"
	"sync"

	"github.com/ygrebnov/bound/constants"
)

// Field is a bindable struct field.
type Field struct {
	Name  string // key used in the snapshot
	Index []int  // index sequence for reflect.Value.FieldByIndexErr
}

var fieldsCache sync.Map // map[reflect.Type][]Field

// Fields returns the bindable fields of the struct type t in declaration
// order. Unexported fields and fields tagged `bound:"-"` are skipped;
// `bound:"name"` renames a field. Fields promoted from embedded structs are
// included unless shadowed. Results are cached per type since struct tags are
// static for a compiled type.
func Fields(t reflect.Type) []Field {
	if v, ok := fieldsCache.Load(t); ok {
		return v.([]Field)
	}
	parsed := parseFields(t)
	fieldsCache.Store(t, parsed)
	return parsed
}

func parseFields(t reflect.Type) []Field {
	var fields []Field
	for _, sf := range reflect.VisibleFields(t) {
		if !sf.IsExported() {
			continue
		}
		name, skip := ParseTag(sf.Tag.Get(constants.TagName))
		if skip {
			continue
		}
		if sf.Anonymous && name == "" && indirect(sf.Type).Kind() == reflect.Struct {
			// promoted fields are visited on their own
			continue
		}
		if name == "" {
			name = sf.Name
		}
		fields = append(fields, Field{Name: name, Index: sf.Index})
	}
	return fields
}

// ParseTag reads a `bound` tag value. "-" skips the field; otherwise the
// part before the first comma is the key name (empty keeps the field name).
func ParseTag(tag string) (name string, skip bool) {
	tag = strings.TrimSpace(tag)
	if tag == "-" {
		return "", true
	}
	name, _, _ = strings.Cut(tag, ",")
	return strings.TrimSpace(name), false
}

func indirect(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t
}
