package typetree

import (
	"bytes"
	"fmt"

	"github.com/go-unity/ubundle/endian"
	"github.com/go-unity/ubundle/errs"
	"github.com/go-unity/ubundle/internal/byteio"
	"github.com/go-unity/ubundle/internal/cache"
)

// blobCache memoizes ReadBlob by the hash of its raw node-table and
// string-buffer bytes: ReadBlob runs once per SerializedType entry, and a
// byte-identical blob met again (in another type entry or another serialized
// file) returns the tree already parsed instead of rebuilding it.
var blobCache = cache.NewMemo[*Node]()

// alignBytesFlag is the one TransferMetaFlags bit this decoder cares about:
// the rest (hide-in-editor, not-editable, strong-pptr, ...) describe
// editor/serializer behavior with no effect on binary layout.
const alignBytesFlag = 1 << 14

// Node is one entry of a type tree: the schema for one field's binary
// layout, plus its children in source (declaration) order.
type Node struct {
	Version   int32
	Level     uint8
	TypeFlags int32
	ByteSize  int32

	Index    int32
	HasIndex bool

	MetaFlag    int32
	HasMetaFlag bool

	Type string
	Name string

	RefTypeHash    uint64
	HasRefTypeHash bool

	VariableCount    int32
	HasVariableCount bool

	Children []*Node
}

// RequiresAlign reports whether this node's meta flags request a post-read
// 4-byte align.
func (n *Node) RequiresAlign() bool {
	return n.HasMetaFlag && n.MetaFlag&alignBytesFlag != 0
}

// ReadRecursive parses the old, pre-blob tree form: each node is read
// depth-first, with a handful of fields version-gated per §4.6.
func ReadRecursive(br *byteio.Reader, version uint32) (*Node, error) {
	return readNodeRecursive(br, version, 0)
}

func readNodeRecursive(br *byteio.Reader, version uint32, level uint8) (*Node, error) {
	n := &Node{Level: level}

	var err error
	if n.Type, err = br.CString(); err != nil {
		return nil, err
	}
	if n.Name, err = br.CString(); err != nil {
		return nil, err
	}
	if n.ByteSize, err = br.I32(); err != nil {
		return nil, err
	}

	if version == 2 {
		if n.VariableCount, err = br.I32(); err != nil {
			return nil, err
		}
		n.HasVariableCount = true
	}

	if version != 3 {
		if n.Index, err = br.I32(); err != nil {
			return nil, err
		}
		n.HasIndex = true
	}

	// at version 4, m_TypeFlags doubles as m_IsArray.
	if n.TypeFlags, err = br.I32(); err != nil {
		return nil, err
	}
	if n.Version, err = br.I32(); err != nil {
		return nil, err
	}

	if version != 3 {
		if n.MetaFlag, err = br.I32(); err != nil {
			return nil, err
		}
		n.HasMetaFlag = true
	}

	childCount, err := br.I32()
	if err != nil {
		return nil, err
	}
	n.Children = make([]*Node, childCount)
	for i := range n.Children {
		if n.Children[i], err = readNodeRecursive(br, version, level+1); err != nil {
			return nil, err
		}
	}

	return n, nil
}

// ReadBlob parses the newer, flat node-table form: a fixed-size record per
// node plus a shared string buffer, reconstructed into a tree via each
// record's stored level.
func ReadBlob(br *byteio.Reader, version uint32) (*Node, error) {
	nodeSize := 24
	if version >= 19 {
		nodeSize = 32
	}

	nodeCount, err := br.I32()
	if err != nil {
		return nil, err
	}
	stringBufferSize, err := br.I32()
	if err != nil {
		return nil, err
	}

	nodeBytes, err := br.Bytes(int(nodeSize) * int(nodeCount))
	if err != nil {
		return nil, err
	}
	stringBuffer, err := br.Bytes(int(stringBufferSize))
	if err != nil {
		return nil, err
	}

	order := br.Order()
	key := cache.TypeTreeBlobKey(nodeBytes, stringBuffer)
	return blobCache.GetOrCompute(key, func() (*Node, error) {
		return parseBlobNodes(nodeBytes, stringBuffer, int(nodeCount), version, order)
	})
}

// parseBlobNodes reconstructs the node tree from an already-read blob's raw
// node-table and string-buffer bytes.
func parseBlobNodes(nodeBytes, stringBuffer []byte, nodeCount int, version uint32, order endian.EndianEngine) (*Node, error) {
	nodeReader := byteio.New(bytes.NewReader(nodeBytes), order)
	stringReader := byteio.New(bytes.NewReader(stringBuffer), order)

	nodes := make([]*Node, nodeCount)
	for i := range nodes {
		n := &Node{HasIndex: true, HasMetaFlag: true}

		nodeVersion, err := nodeReader.U16()
		if err != nil {
			return nil, err
		}
		n.Version = int32(nodeVersion)

		if n.Level, err = nodeReader.U8(); err != nil {
			return nil, err
		}
		typeFlags, err := nodeReader.U8()
		if err != nil {
			return nil, err
		}
		n.TypeFlags = int32(typeFlags)

		typeOffset, err := nodeReader.U32()
		if err != nil {
			return nil, err
		}
		if n.Type, err = readBlobString(stringReader, typeOffset); err != nil {
			return nil, err
		}

		nameOffset, err := nodeReader.U32()
		if err != nil {
			return nil, err
		}
		if n.Name, err = readBlobString(stringReader, nameOffset); err != nil {
			return nil, err
		}

		if n.ByteSize, err = nodeReader.I32(); err != nil {
			return nil, err
		}
		if n.Index, err = nodeReader.I32(); err != nil {
			return nil, err
		}
		if n.MetaFlag, err = nodeReader.I32(); err != nil {
			return nil, err
		}

		if version >= 19 {
			if n.RefTypeHash, err = nodeReader.U64(); err != nil {
				return nil, err
			}
			n.HasRefTypeHash = true
		}

		nodes[i] = n
	}

	if len(nodes) == 0 {
		return nil, fmt.Errorf("%w: blob type tree has no nodes", errs.ErrInvalidValue)
	}

	root := nodes[0]
	addChildren(root, nodes, 0)

	return root, nil
}

// readBlobString resolves a node record's string-offset field: a clear high
// bit means a byte offset into the string buffer, a set high bit means a key
// into the built-in common-strings dictionary.
func readBlobString(stringReader *byteio.Reader, value uint32) (string, error) {
	if value&0x80000000 == 0 {
		if _, err := stringReader.Seek(int64(value), 0); err != nil {
			return "", fmt.Errorf("%w: %v", errs.ErrIO, err)
		}
		return stringReader.CString()
	}

	return lookupCommonString(value & 0x7FFFFFFF), nil
}

// addChildren attaches to parent every node in the contiguous run following
// nodes[offset] whose level is exactly parent.Level+1, recursing into each
// to attach its own descendants, and stopping at the first node whose level
// drops back to parent.Level or shallower. This is the O(n^2)-worst-case
// form the design notes call out as acceptable; nodes[offset] is assumed to
// be parent itself.
func addChildren(parent *Node, nodes []*Node, offset int) {
	for i := offset + 1; i < len(nodes); i++ {
		n := nodes[i]
		if n.Level == parent.Level+1 {
			addChildren(n, nodes, i)
			parent.Children = append(parent.Children, n)
		} else if n.Level <= parent.Level {
			break
		}
	}
}
