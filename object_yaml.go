package bound

import (
	"strconv"

	"gopkg.in/yaml.v3"
)

// MarshalYAML encodes o as a mapping (or sequence for lists), keeping key order.
func (o *Object) MarshalYAML() (any, error) {
	if o == nil {
		return nil, nil
	}
	n := &yaml.Node{Kind: yaml.MappingNode}
	if o.list {
		n.Kind = yaml.SequenceNode
	}
	for _, k := range o.Keys() {
		var v yaml.Node
		if err := v.Encode(o.Get(k)); err != nil {
			return nil, err
		}
		if !o.list {
			n.Content = append(n.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k})
		}
		n.Content = append(n.Content, &v)
	}
	return n, nil
}

// UnmarshalYAML replaces the contents of o with a plain copy of the decoded
// document. Mappings become records in document order, sequences become lists.
func (o *Object) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.DocumentNode && len(value.Content) == 1 {
		value = value.Content[0]
	}
	if value.Kind == yaml.AliasNode {
		value = value.Alias
	}

	o.mu.Lock()
	o.keys = nil
	o.fields = make(map[string]*slot)
	o.list = value.Kind == yaml.SequenceNode
	o.mu.Unlock()

	switch value.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(value.Content); i += 2 {
			v, err := decodeYAMLValue(value.Content[i+1])
			if err != nil {
				return err
			}
			o.Store(value.Content[i].Value, v)
		}
	case yaml.SequenceNode:
		for i, item := range value.Content {
			v, err := decodeYAMLValue(item)
			if err != nil {
				return err
			}
			o.Store(strconv.Itoa(i), v)
		}
	default:
		var v any
		if err := value.Decode(&v); err != nil {
			return err
		}
		return invalidSubject(v)
	}
	return nil
}

func decodeYAMLValue(n *yaml.Node) (any, error) {
	if n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	switch n.Kind {
	case yaml.MappingNode, yaml.SequenceNode:
		nested := NewObject()
		if err := nested.UnmarshalYAML(n); err != nil {
			return nil, err
		}
		return nested, nil
	default:
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, err
		}
		return v, nil
	}
}
