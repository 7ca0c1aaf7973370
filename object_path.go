package bound

import (
	"strings"

	"github.com/ygrebnov/errorc"

	"github.com/ygrebnov/bound/constants"
	"github.com/ygrebnov/bound/errors"
)

func splitPath(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, constants.PathSeparator)
}

func joinPath(parent, key string) string {
	if parent == "" {
		return key
	}
	return parent + constants.PathSeparator + key
}

// At resolves a dotted path (e.g. "very.nested.key") against o. An empty path
// resolves to o itself. A path crossing a missing key or a non-object value
// reports false.
func (o *Object) At(path string) (any, bool) {
	var cur any = o
	for _, key := range splitPath(path) {
		obj, ok := cur.(*Object)
		if !ok || obj == nil {
			return nil, false
		}
		if cur, ok = obj.Lookup(key); !ok {
			return nil, false
		}
	}
	return cur, true
}

// Put assigns value at a dotted path, creating missing intermediate objects.
// A plain non-object value standing in the way is replaced with a new object.
// The final write goes through Set, so live properties stay live.
func (o *Object) Put(path string, value any) error {
	keys := splitPath(path)
	if len(keys) == 0 {
		return errorc.With(errors.ErrPathNotFound, errorc.String(errors.ErrorFieldPath, path))
	}

	cur := o
	for _, key := range keys[:len(keys)-1] {
		next, ok := cur.Get(key).(*Object)
		if !ok || next == nil {
			next = NewObject()
			if err := cur.Set(key, next); err != nil {
				return err
			}
		}
		cur = next
	}
	return cur.Set(keys[len(keys)-1], value)
}
