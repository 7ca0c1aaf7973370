package bound

import (
	"slices"

	"github.com/ygrebnov/errorc"

	"github.com/ygrebnov/bound/errors"
)

// Node is one entry of a Bound's storage tree: either a leaf holding the
// Binding of a scalar property or an internal node with ordered children.
// The tree is built once by New and never changes shape afterwards.
type Node struct {
	binding  *Binding[any]
	keys     []string
	children map[string]*Node
	list     bool
}

func newLeaf(b *Binding[any]) *Node {
	return &Node{binding: b}
}

func newBranch(list bool) *Node {
	return &Node{children: make(map[string]*Node), list: list}
}

func (n *Node) add(key string, child *Node) {
	if _, ok := n.children[key]; !ok {
		n.keys = append(n.keys, key)
	}
	n.children[key] = child
}

// IsLeaf reports whether n holds a Binding.
func (n *Node) IsLeaf() bool { return n.binding != nil }

// IsList reports whether n mirrors a list.
func (n *Node) IsList() bool { return n.list }

// Binding returns the leaf's binding, or nil for internal nodes.
func (n *Node) Binding() *Binding[any] { return n.binding }

// Keys returns the children keys in snapshot order.
func (n *Node) Keys() []string { return slices.Clone(n.keys) }

// Child returns the child at key.
func (n *Node) Child(key string) (*Node, bool) {
	c, ok := n.children[key]
	return c, ok
}

// Lookup descends a dotted path. An empty path resolves to n.
func (n *Node) Lookup(path string) (*Node, error) {
	cur := n
	for _, key := range splitPath(path) {
		next, ok := cur.Child(key)
		if !ok {
			return nil, errorc.With(errors.ErrPathNotFound, errorc.String(errors.ErrorFieldPath, path))
		}
		cur = next
	}
	return cur, nil
}

// Walk visits every leaf in depth-first snapshot order with its dotted path.
func (n *Node) Walk(fn func(path string, b *Binding[any])) {
	n.walk("", fn)
}

func (n *Node) walk(prefix string, fn func(string, *Binding[any])) {
	if n.IsLeaf() {
		fn(prefix, n.binding)
		return
	}
	for _, k := range n.keys {
		n.children[k].walk(joinPath(prefix, k), fn)
	}
}
