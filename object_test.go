package bound

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	bounderrors "github.com/ygrebnov/bound/errors"
)

func TestObject_Basics(t *testing.T) {
	o := NewObject()
	if o.Len() != 0 || o.Has("a") {
		t.Fatalf("new object must be empty")
	}

	_ = o.Set("b", 1)
	o.Store("a", 2)
	_ = o.Set("b", 3)

	if got := o.Keys(); !reflect.DeepEqual(got, []string{"b", "a"}) {
		t.Fatalf("Keys() = %v, want insertion order", got)
	}
	if v, ok := o.Lookup("b"); !ok || v != 3 {
		t.Fatalf("Lookup(b) = %v, %v", v, ok)
	}
	if _, ok := o.Lookup("missing"); ok {
		t.Fatalf("Lookup(missing) reported a value")
	}

	o.Delete("b")
	o.Delete("missing")
	if got := o.Keys(); !reflect.DeepEqual(got, []string{"a"}) {
		t.Fatalf("Keys() after Delete = %v", got)
	}
}

type constCell struct {
	v   any
	err error
	set []any
}

func (c *constCell) Get() any { return c.v }
func (c *constCell) Set(v any) error {
	c.set = append(c.set, v)
	return c.err
}

func TestObject_Cells(t *testing.T) {
	o := NewObject()
	o.Store("k", "plain")

	c := &constCell{v: "live"}
	o.Attach("k", c)
	if !o.IsLive("k") || o.Get("k") != "live" {
		t.Fatalf("attached cell not read")
	}

	if err := o.Set("k", "w"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if len(c.set) != 1 || c.set[0] != "w" {
		t.Fatalf("cell did not receive the write: %v", c.set)
	}

	o.Store("k", "raw")
	if o.Get("k") != "live" {
		t.Fatalf("Store must not bypass an attached cell on reads")
	}

	c.err = errors.New("boom")
	if err := o.Set("k", "x"); err == nil {
		t.Fatalf("cell error not returned")
	}

	o.Detach("k", "final")
	if o.IsLive("k") || o.Get("k") != "final" {
		t.Fatalf("Detach did not restore a plain value")
	}
}

func TestObject_Paths(t *testing.T) {
	o := NewObject()
	o.Store("2", 3)
	if err := o.Put("very.nested.object.here", "!"); err != nil {
		t.Fatalf("Put: %v", err)
	}

	tests := []struct {
		path   string
		want   any
		wantOk bool
	}{
		{"very.nested.object.here", "!", true},
		{"2", 3, true},
		{"very.nested.missing.here", nil, false},
		{"2.deeper", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, ok := o.At(tt.path)
			if ok != tt.wantOk || (ok && got != tt.want) {
				t.Fatalf("At(%q) = %v, %v; want %v, %v", tt.path, got, ok, tt.want, tt.wantOk)
			}
		})
	}

	if root, ok := o.At(""); !ok || root != o {
		t.Fatalf("At(\"\") must return the object itself")
	}

	nested, _ := o.At("very.nested.object")
	if snap := nested.(*Object).Snapshot(); !reflect.DeepEqual(snap, map[string]any{"here": "!"}) {
		t.Fatalf("nested snapshot = %v", snap)
	}

	_ = o.Put("very.nested", "...")
	if got, _ := o.At("very"); !reflect.DeepEqual(got.(*Object).Snapshot(), map[string]any{"nested": "..."}) {
		t.Fatalf("overwrite failed: %v", got)
	}

	_ = o.Put("2.x", 1)
	if got, ok := o.At("2.x"); !ok || got != 1 {
		t.Fatalf("Put through a scalar must replace it with an object, got %v %v", got, ok)
	}

	if err := o.Put("", 1); !errors.Is(err, bounderrors.ErrPathNotFound) {
		t.Fatalf("Put(\"\") expected ErrPathNotFound, got %v", err)
	}
}

func TestObject_SnapshotAndJSON(t *testing.T) {
	inner := NewObject()
	inner.Store("another", "bar")
	o := NewObject()
	o.Store("test", "foo")
	o.Store("inside", inner)
	o.Store("list", NewList(1, "two"))

	want := map[string]any{
		"test":   "foo",
		"inside": map[string]any{"another": "bar"},
		"list":   []any{1, "two"},
	}
	if got := o.Snapshot(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Snapshot() = %#v, want %#v", got, want)
	}

	data, err := json.Marshal(o)
	if err != nil {
		t.Fatalf("json.Marshal: %v", err)
	}
	if got := string(data); got != `{"test":"foo","inside":{"another":"bar"},"list":[1,"two"]}` {
		t.Fatalf("json = %s", got)
	}
}

func TestObject_YAML(t *testing.T) {
	src := "b: 1\na:\n  c: x\n  d: [1, 2]\n"

	o := NewObject()
	if err := yaml.Unmarshal([]byte(src), o); err != nil {
		t.Fatalf("yaml.Unmarshal: %v", err)
	}
	if got := o.Keys(); !reflect.DeepEqual(got, []string{"b", "a"}) {
		t.Fatalf("Keys() = %v, want document order", got)
	}
	if v, _ := o.At("a.d.1"); v != 2 {
		t.Fatalf("a.d.1 = %v", v)
	}

	out, err := yaml.Marshal(o)
	if err != nil {
		t.Fatalf("yaml.Marshal: %v", err)
	}
	if !strings.HasPrefix(string(out), "b: 1\na:\n") {
		t.Fatalf("yaml order lost:\n%s", out)
	}

	if err := yaml.Unmarshal([]byte("just a string"), NewObject()); !errors.Is(err, bounderrors.ErrInvalidSubject) {
		t.Fatalf("scalar document expected ErrInvalidSubject, got %v", err)
	}
}
