package bound

import (
	"encoding/json"
	"slices"
	"strconv"
	"sync"
)

// Cell is a live property: reads and writes are delegated to whatever
// backs the cell (usually a Binding).
type Cell interface {
	Get() any
	Set(v any) error
}

// Owner hosts subscriber properties. Object is the library's implementation;
// other types may implement Owner to take part in bindings. Owners are
// compared by identity, so implementations should be pointer types.
type Owner interface {
	// Lookup returns the current value at key, reading through a cell if one is attached.
	Lookup(key string) (any, bool)
	// Store writes a plain value at key. An attached cell is left in place and not invoked.
	Store(key string, value any)
	// Attach replaces the property at key with a live cell.
	Attach(key string, c Cell)
	// Detach replaces the cell at key with a plain value.
	Detach(key string, value any)
}

type slot struct {
	value any
	cell  Cell
}

// Object is a dynamic record whose properties are either plain values or live
// cells. Values may be scalars or nested *Object values. An Object flagged as
// a list uses decimal indexes as keys and snapshots to []any.
type Object struct {
	mu     sync.RWMutex
	keys   []string
	fields map[string]*slot
	list   bool
	// owner is the Bound that last wired this object and boundAt the storage
	// path it was wired at; neither is enumerated.
	owner   *Bound
	boundAt string
}

// NewObject returns an empty record.
func NewObject() *Object {
	return &Object{fields: make(map[string]*slot)}
}

// NewList returns a list object holding values at keys "0", "1", ...
func NewList(values ...any) *Object {
	o := &Object{fields: make(map[string]*slot, len(values)), list: true}
	for i, v := range values {
		o.Store(strconv.Itoa(i), v)
	}
	return o
}

// IsList reports whether o was created as a list.
func (o *Object) IsList() bool { return o.list }

// Keys returns the keys in insertion order.
func (o *Object) Keys() []string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return slices.Clone(o.keys)
}

// Len returns the number of properties.
func (o *Object) Len() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.keys)
}

// Has reports whether key is present.
func (o *Object) Has(key string) bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	_, ok := o.fields[key]
	return ok
}

// Get returns the value at key or nil when absent.
func (o *Object) Get(key string) any {
	v, _ := o.Lookup(key)
	return v
}

// Lookup returns the value at key. Live properties are read through their cell.
func (o *Object) Lookup(key string) (any, bool) {
	o.mu.RLock()
	s, ok := o.fields[key]
	if !ok {
		o.mu.RUnlock()
		return nil, false
	}
	c, v := s.cell, s.value
	o.mu.RUnlock()

	if c != nil {
		return c.Get(), true
	}
	return v, true
}

// Set writes value at key. Live properties route the write through their
// cell; plain properties are overwritten or created.
func (o *Object) Set(key string, value any) error {
	o.mu.RLock()
	var c Cell
	if s, ok := o.fields[key]; ok {
		c = s.cell
	}
	o.mu.RUnlock()

	if c != nil {
		return c.Set(value)
	}
	o.Store(key, value)
	return nil
}

// Store writes a plain value at key without invoking an attached cell. While
// a cell is attached, reads keep going through it and the stored value only
// shows once the cell is detached.
func (o *Object) Store(key string, value any) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.slotLocked(key).value = value
}

// Attach makes the property at key live.
func (o *Object) Attach(key string, c Cell) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.slotLocked(key).cell = c
}

// Detach drops the cell at key, leaving value as a plain property.
func (o *Object) Detach(key string, value any) {
	o.mu.Lock()
	defer o.mu.Unlock()
	s := o.slotLocked(key)
	s.cell = nil
	s.value = value
}

// IsLive reports whether the property at key is backed by a cell.
func (o *Object) IsLive(key string) bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	s, ok := o.fields[key]
	return ok && s.cell != nil
}

// Delete removes key. Deleting a live property does not unsubscribe it from
// its binding; use Bound.Unbind or Binding.RemoveSubscriber for that.
func (o *Object) Delete(key string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, ok := o.fields[key]; !ok {
		return
	}
	delete(o.fields, key)
	o.keys = slices.DeleteFunc(o.keys, func(k string) bool { return k == key })
}

// BoundBy returns the Bound that wired o, or nil.
func (o *Object) BoundBy() *Bound {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.owner
}

func (o *Object) tag(b *Bound, path string) {
	o.mu.Lock()
	o.owner = b
	o.boundAt = path
	o.mu.Unlock()
}

func (o *Object) tagged() (*Bound, string) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.owner, o.boundAt
}

func (o *Object) slotLocked(key string) *slot {
	if o.fields == nil {
		o.fields = make(map[string]*slot)
	}
	s, ok := o.fields[key]
	if !ok {
		s = &slot{}
		o.fields[key] = s
		o.keys = append(o.keys, key)
	}
	return s
}

// Snapshot materializes o into plain values: map[string]any for records and
// []any for lists, recursing into nested objects. Live properties are read
// through their cells.
func (o *Object) Snapshot() any {
	return o.snapshot(make(map[*Object]struct{}))
}

func (o *Object) snapshot(visiting map[*Object]struct{}) any {
	if _, seen := visiting[o]; seen {
		return nil
	}
	visiting[o] = struct{}{}
	defer delete(visiting, o)

	keys := o.Keys()
	values := make([]any, len(keys))
	for i, k := range keys {
		v := o.Get(k)
		if nested, ok := v.(*Object); ok && nested != nil {
			v = nested.snapshot(visiting)
		}
		values[i] = v
	}

	if o.list {
		return values
	}
	m := make(map[string]any, len(keys))
	for i, k := range keys {
		m[k] = values[i]
	}
	return m
}

// MarshalJSON encodes the snapshot of o. Record keys keep insertion order.
func (o *Object) MarshalJSON() ([]byte, error) {
	if o == nil {
		return []byte("null"), nil
	}
	if o.list {
		return json.Marshal(o.Snapshot())
	}

	keys := o.Keys()
	buf := []byte{'{'}
	for i, k := range keys {
		if i > 0 {
			buf = append(buf, ',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(o.Get(k))
		if err != nil {
			return nil, err
		}
		buf = append(buf, kb...)
		buf = append(buf, ':')
		buf = append(buf, vb...)
	}
	return append(buf, '}'), nil
}
