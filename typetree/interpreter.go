package typetree

import (
	"fmt"

	"github.com/go-unity/ubundle/errs"
	"github.com/go-unity/ubundle/internal/byteio"
)

// Read interprets br as one instance of n's schema (§4.7), dispatching on
// n.Type by name. br must already be positioned at the start of this
// field's bytes and set to the owning file's endianness.
func (n *Node) Read(br *byteio.Reader) (Value, error) {
	align := n.RequiresAlign()

	value, err := n.readValue(br, &align)
	if err != nil {
		return nil, err
	}

	if align {
		if err := br.Align(4); err != nil {
			return nil, err
		}
	}

	return value, nil
}

func (n *Node) readValue(br *byteio.Reader, align *bool) (Value, error) {
	switch n.Type {
	case "SInt8":
		v, err := br.I8()
		return SInt8(v), err
	case "UInt8":
		v, err := br.U8()
		return UInt8(v), err
	case "char":
		v, err := br.U8()
		return Char(v), err
	case "SInt16", "short":
		v, err := br.I16()
		return SInt16(v), err
	case "UInt16", "unsigned short":
		v, err := br.U16()
		return UInt16(v), err
	case "SInt32", "int":
		v, err := br.I32()
		return SInt32(v), err
	case "UInt32", "unsigned int":
		v, err := br.U32()
		return UInt32(v), err
	case "Type*":
		v, err := br.U32()
		return TypeRef(v), err
	case "SInt64", "long long":
		v, err := br.I64()
		return SInt64(v), err
	case "UInt64", "unsigned long long":
		v, err := br.U64()
		return UInt64(v), err
	case "FileSize":
		v, err := br.U64()
		return FileSize(v), err
	case "float":
		v, err := br.F32()
		return Float(v), err
	case "double":
		v, err := br.F64()
		return Double(v), err
	case "bool":
		v, err := br.Bool()
		return Bool(v), err
	case "string":
		if len(n.Children) > 0 {
			*align = *align || n.Children[0].RequiresAlign()
		}
		v, err := br.String()
		return String(v), err
	case "TypelessData":
		v, err := br.ByteArray()
		return TypelessData(v), err
	case "map":
		return n.readMap(br, align)
	default:
		return n.readDefault(br, align)
	}
}

func (n *Node) readMap(br *byteio.Reader, align *bool) (Value, error) {
	if len(n.Children) != 1 {
		return nil, fmt.Errorf("%w: malformed map node %q", errs.ErrInvalidValue, n.Name)
	}
	array := n.Children[0]
	if len(array.Children) != 2 {
		return nil, fmt.Errorf("%w: malformed map node %q", errs.ErrInvalidValue, n.Name)
	}

	size, err := br.ArrayLen()
	if err != nil {
		return nil, err
	}

	pair := array.Children[1]
	*align = *align || pair.RequiresAlign()

	if len(pair.Children) != 2 {
		return nil, fmt.Errorf("%w: malformed map pair node %q", errs.ErrInvalidValue, n.Name)
	}
	first, second := pair.Children[0], pair.Children[1]

	entries := make(Map, size)
	for i := range entries {
		k, err := first.Read(br)
		if err != nil {
			return nil, err
		}
		v, err := second.Read(br)
		if err != nil {
			return nil, err
		}
		entries[i] = MapEntry{Key: k, Value: v}
	}

	return entries, nil
}

// readDefault handles every node.Type that isn't one of the named scalars,
// `string`, `TypelessData`, or `map`: either an array-valued composite (one
// child literally typed "Array") or, failing that, a class whose fields are
// read in source order.
func (n *Node) readDefault(br *byteio.Reader, align *bool) (Value, error) {
	if len(n.Children) == 1 && n.Children[0].Type == "Array" {
		array := n.Children[0]
		if len(array.Children) != 2 {
			return nil, fmt.Errorf("%w: malformed array node %q", errs.ErrInvalidValue, n.Name)
		}

		*align = *align || array.RequiresAlign()

		size, err := br.ArrayLen()
		if err != nil {
			return nil, err
		}
		data := array.Children[1]

		values := make(Array, size)
		for i := range values {
			if values[i], err = data.Read(br); err != nil {
				return nil, err
			}
		}

		return values, nil
	}

	class := NewClass()
	for _, child := range n.Children {
		v, err := child.Read(br)
		if err != nil {
			return nil, err
		}
		class.Set(child.Name, v)
	}

	return class, nil
}
