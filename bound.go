package bound

import (
	"fmt"
	"reflect"

	"github.com/ygrebnov/errorc"

	"github.com/ygrebnov/bound/errors"
)

// Bound mirrors the shape of a plain value as a tree of Bindings, one per
// scalar property, and wires any number of *Object instances onto that tree.
// A write to a master property of any wired object is visible on every other
// wired object once the write returns.
type Bound struct {
	cfg     Config
	storage *Node
	object  *Object
}

// New snapshots proto and builds its binding tree.
//
// In strict mode (Config.Debug) a proto that is not an object fails with
// ErrInvalidSubject, and a *Bound or an already wired *Object fails with
// ErrAlreadyBound. Outside strict mode a non-object proto produces an empty
// tree and a *Bound is read through its object. A proto containing itself
// always fails with ErrCircularReference.
func New(proto any, opts ...Option) (*Bound, error) {
	o := options{cfg: DefaultConfig()}
	for _, opt := range opts {
		opt(&o)
	}

	if o.strategy != StrategyCell {
		return nil, errorc.With(errors.ErrNotImplemented, errorc.String(errors.ErrorFieldStrategy, o.strategy.String()))
	}
	if err := validateSubject(proto, o.cfg); err != nil {
		return nil, err
	}

	var (
		src *Object
		err error
	)
	if isObjectValue(unwrap(reflect.ValueOf(proto))) {
		if src, err = Clone(proto); err != nil {
			return nil, err
		}
	} else {
		o.cfg.Logger.Debug().Str("type", fmt.Sprintf("%T", proto)).Msg("non-object subject, binding nothing")
		src = NewObject()
	}

	b, err := build(src, "", &o)
	if err != nil {
		return nil, err
	}
	o.cfg.Logger.Debug().Strs("keys", src.Keys()).Msg("bound created")
	return b, nil
}

// Of builds a Bound from target and returns its bound object.
func Of(target any, opts ...Option) (*Object, error) {
	b, err := New(target, opts...)
	if err != nil {
		return nil, err
	}
	return b.Object(), nil
}

func validateSubject(proto any, cfg Config) error {
	if !cfg.strict() {
		return nil
	}
	if _, ok := proto.(*Bound); ok || IsBound(proto) {
		return errors.ErrAlreadyBound
	}
	if !isObjectValue(unwrap(reflect.ValueOf(proto))) {
		return invalidSubject(proto)
	}
	return nil
}

// build creates the Bound for src, recursing into nested objects. Each
// nested object gets its own Bound whose storage and object hang under the
// parent's key.
func build(src *Object, path string, o *options) (*Bound, error) {
	b := &Bound{
		cfg:     o.cfg,
		storage: newBranch(src.IsList()),
		object:  NewObject(),
	}
	b.object.list = src.IsList()
	b.object.tag(b, "")

	for _, key := range src.Keys() {
		p := joinPath(path, key)
		v := src.Get(key)

		if nested, ok := v.(*Object); ok && nested != nil {
			child, err := build(nested, p, o)
			if err != nil {
				return nil, err
			}
			b.storage.add(key, child.storage)
			b.object.Store(key, child.object)
			continue
		}

		binding := NewBinding[any](false, v,
			WithPath[any](p),
			WithBindingConfig[any](o.cfg),
			WithBindingPlugins(o.pluginsFor(p)...),
		)
		if err := binding.AddMasterSubscriber(b.object, key); err != nil {
			return nil, err
		}
		b.storage.add(key, newLeaf(binding))
	}
	return b, nil
}

// Object returns the canonical object created from the snapshot. Every leaf
// property is a master of its binding.
func (b *Bound) Object() *Object { return b.object }

// Storage returns the root of the binding tree.
func (b *Bound) Storage() *Node { return b.storage }

// Config returns the configuration the Bound was built with.
func (b *Bound) Config() Config { return b.cfg }

// Lookup returns the binding of the leaf at a dotted path.
func (b *Bound) Lookup(path string) (*Binding[any], error) {
	n, err := b.storage.Lookup(path)
	if err != nil {
		return nil, err
	}
	if !n.IsLeaf() {
		return nil, errorc.With(errors.ErrPathNotFound, errorc.String(errors.ErrorFieldPath, path))
	}
	return n.Binding(), nil
}

// Bind attaches obj to the binding tree. Properties become masters unless
// OneWay is given. Nested objects missing from obj are created; a plain value
// where the tree expects a nested object is reported as ErrShapeMismatch.
// Failures of individual properties do not stop the walk and are returned
// together as a *BindError. obj is tagged with b afterwards.
func (b *Bound) Bind(obj *Object, opts ...BindOption) error {
	if obj == nil {
		return errors.ErrNilObject
	}
	bo := bindOptions{twoWay: true}
	for _, opt := range opts {
		opt(&bo)
	}

	start, err := b.storage.Lookup(bo.path)
	if err != nil {
		return err
	}
	if start.IsLeaf() {
		return errorc.With(errors.ErrShapeMismatch, errorc.String(errors.ErrorFieldPath, bo.path))
	}

	role := RoleSlave
	if bo.twoWay {
		role = RoleMaster
	}

	be := &BindError{}
	b.bindNode(obj, start, bo.path, role, be)
	obj.tag(b, bo.path)

	b.cfg.Logger.Debug().
		Str("path", bo.path).
		Str("role", string(role)).
		Int("failed", be.Len()).
		Msg("object bound")

	if be.Empty() {
		return nil
	}
	return be
}

func (b *Bound) bindNode(obj *Object, n *Node, path string, role Role, be *BindError) {
	for _, key := range n.keys {
		child := n.children[key]
		p := joinPath(path, key)

		if child.IsLeaf() {
			if err := child.binding.AddSubscriber(obj, key, role); err != nil {
				be.Add(PathError{Path: p, Err: err})
			}
			continue
		}

		nested, err := nestedObject(obj, key, child, p)
		if err != nil {
			be.Add(PathError{Path: p, Err: err})
			continue
		}
		b.bindNode(nested, child, p, role, be)
	}
}

func nestedObject(obj *Object, key string, n *Node, path string) (*Object, error) {
	v, ok := obj.Lookup(key)
	if !ok || v == nil {
		nested := NewObject()
		nested.list = n.IsList()
		if err := obj.Set(key, nested); err != nil {
			return nil, err
		}
		return nested, nil
	}
	nested, ok := v.(*Object)
	if !ok || nested == nil {
		return nil, errorc.With(
			errors.ErrShapeMismatch,
			errorc.String(errors.ErrorFieldPath, path),
			errorc.String(errors.ErrorFieldValueType, fmt.Sprintf("%T", v)),
		)
	}
	return nested, nil
}

// Unbind detaches every property of obj from the tree, clears its tag and
// returns a plain deep copy of obj. An object bound with AtPath is detached
// from the same sub-tree. Other wired objects are unaffected. Properties that
// were never bound are left alone.
func (b *Bound) Unbind(obj *Object) (*Object, error) {
	if obj == nil {
		return nil, errors.ErrNilObject
	}

	start := b.storage
	if owner, path := obj.tagged(); owner == b && path != "" {
		n, err := b.storage.Lookup(path)
		if err != nil {
			return nil, err
		}
		start = n
	}
	b.unbindNode(obj, start)
	obj.tag(nil, "")

	b.cfg.Logger.Debug().Strs("keys", obj.Keys()).Msg("object unbound")
	return Clone(obj)
}

func (b *Bound) unbindNode(obj *Object, n *Node) {
	for _, key := range n.keys {
		child := n.children[key]
		if child.IsLeaf() {
			child.binding.RemoveSubscriber(obj, key)
			continue
		}
		if nested, ok := obj.Get(key).(*Object); ok && nested != nil {
			b.unbindNode(nested, child)
		}
	}
}

// IsBound reports whether v is an *Object wired by a Bound.
func IsBound(v any) bool {
	o, ok := v.(*Object)
	return ok && o != nil && o.BoundBy() != nil
}
