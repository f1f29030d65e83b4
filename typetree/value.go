package typetree

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Value is one node of the decoded object tree: a tagged union over the
// interpreter's dispatch table (§4.7). It mirrors the closed-sum-type shape
// of go/ast.Node or json.Token — an interface with an unexported marker
// method implemented by one concrete type per variant — since Go has no
// native tagged union and the original's untagged enum has no direct
// analogue here.
type Value interface {
	value()
}

type (
	SInt8        int8
	UInt8        uint8
	Char         byte
	SInt16       int16
	UInt16       uint16
	SInt32       int32
	UInt32       uint32
	TypeRef      uint32 // Type* fields: kept distinct from UInt32 for downstream users
	SInt64       int64
	UInt64       uint64
	FileSize     uint64
	Float        float32
	Double       float64
	Bool         bool
	String       string
	TypelessData []byte
	Array        []Value
)

func (SInt8) value()        {}
func (UInt8) value()        {}
func (Char) value()         {}
func (SInt16) value()       {}
func (UInt16) value()       {}
func (SInt32) value()       {}
func (UInt32) value()       {}
func (TypeRef) value()      {}
func (SInt64) value()       {}
func (UInt64) value()       {}
func (FileSize) value()     {}
func (Float) value()        {}
func (Double) value()       {}
func (Bool) value()         {}
func (String) value()       {}
func (TypelessData) value() {}
func (Array) value()        {}

// MapEntry is one (first, second) reading of a `map` node.
type MapEntry struct {
	Key   Value
	Value Value
}

// Map is the decoded form of a `map` node: an ordered list of key/value
// readings, preserving read order rather than collapsing into a Go map (keys
// need not be comparable, and duplicate keys are meaningful here).
type Map []MapEntry

func (Map) value() {}

// Class is the decoded form of a composite ("class") node: every other
// shape falls through to this default per §4.7. §9's "Ordered maps" note is
// explicit that field order is observable and must round-trip, so this is a
// slice of fields plus a name index for O(1) lookup, never a plain Go map.
type Class struct {
	names  []string
	values []Value
	index  map[string]int
}

func (*Class) value() {}

// NewClass returns an empty ordered class value.
func NewClass() *Class {
	return &Class{index: make(map[string]int)}
}

// Set appends or overwrites the field named name, preserving first-seen
// position when overwriting.
func (c *Class) Set(name string, v Value) {
	if i, ok := c.index[name]; ok {
		c.values[i] = v
		return
	}
	c.index[name] = len(c.names)
	c.names = append(c.names, name)
	c.values = append(c.values, v)
}

// Get returns the value stored under name, if any.
func (c *Class) Get(name string) (Value, bool) {
	i, ok := c.index[name]
	if !ok {
		return nil, false
	}
	return c.values[i], true
}

// Len returns the number of fields.
func (c *Class) Len() int { return len(c.names) }

// Range calls fn for each field in stored order, stopping early if fn
// returns false.
func (c *Class) Range(fn func(name string, v Value) bool) {
	for i, name := range c.names {
		if !fn(name, c.values[i]) {
			return
		}
	}
}

// MarshalJSON emits the fields in stored order. encoding/json has no hook
// for ordered map output, so the object body is built by hand rather than
// routed through a Go map (which would marshal in randomized key order).
func (c *Class) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range c.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(c.values[i])
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalYAML builds a mapping node by hand, for the same ordering reason as
// MarshalJSON: yaml.v3 marshals a Go map's keys sorted, which would discard
// the field order §9 requires callers to be able to rely on.
func (c *Class) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for i, name := range c.names {
		keyNode := &yaml.Node{Kind: yaml.ScalarNode, Value: name}

		var valNode yaml.Node
		if err := valNode.Encode(c.values[i]); err != nil {
			return nil, fmt.Errorf("encode field %q: %w", name, err)
		}

		node.Content = append(node.Content, keyNode, &valNode)
	}
	return node, nil
}
