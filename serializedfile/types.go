package serializedfile

import (
	"github.com/go-unity/ubundle/internal/byteio"
	"github.com/go-unity/ubundle/typetree"
)

// SerializedType describes one entry in the type table: the class a group
// of objects belongs to, and (when type trees are enabled) the node tree
// describing their binary layout.
type SerializedType struct {
	ClassID          int32
	IsStrippedType   bool
	ScriptTypeIndex  int16
	ScriptID         [16]byte
	OldTypeHash      [16]byte
	Type             *typetree.Node
	ClassName        string
	Namespace        string
	AssemblyName     string
	TypeDependencies []int32
}

// readSerializedType parses one SerializedType, following the version gates
// documented in §4.5. isRefType selects between the ref-type name triple and
// the type-dependency array read at StoresTypeDependencies, and affects
// whether a script id is read alongside the type hash.
func readSerializedType(br *byteio.Reader, header Header, typeTreeEnabled, isRefType bool) (SerializedType, error) {
	var t SerializedType
	t.ScriptTypeIndex = -1

	classID, err := br.I32()
	if err != nil {
		return t, err
	}
	t.ClassID = classID

	if header.Version >= RefactoredClassID {
		stripped, err := br.Bool()
		if err != nil {
			return t, err
		}
		t.IsStrippedType = stripped
	}

	if header.Version >= RefactorTypeData {
		idx, err := br.I16()
		if err != nil {
			return t, err
		}
		t.ScriptTypeIndex = idx
	}

	if header.Version >= HasTypeTreeHashes {
		needsScriptID := (isRefType && t.ScriptTypeIndex >= 0) ||
			(header.Version < RefactoredClassID && t.ClassID < 0) ||
			(header.Version >= RefactoredClassID && t.ClassID == 114)

		if needsScriptID {
			scriptID, err := br.Bytes(16)
			if err != nil {
				return t, err
			}
			copy(t.ScriptID[:], scriptID)
		}

		oldHash, err := br.Bytes(16)
		if err != nil {
			return t, err
		}
		copy(t.OldTypeHash[:], oldHash)
	}

	if typeTreeEnabled {
		useBlobForm := header.Version >= Unknown12 || header.Version == Unknown10

		var node *typetree.Node
		var err error
		if useBlobForm {
			node, err = typetree.ReadBlob(br, uint32(header.Version))
		} else {
			node, err = typetree.ReadRecursive(br, uint32(header.Version))
		}
		if err != nil {
			return t, err
		}
		t.Type = node

		if header.Version >= StoresTypeDependencies {
			if isRefType {
				if t.ClassName, err = br.CString(); err != nil {
					return t, err
				}
				if t.Namespace, err = br.CString(); err != nil {
					return t, err
				}
				if t.AssemblyName, err = br.CString(); err != nil {
					return t, err
				}
			} else {
				if t.TypeDependencies, err = br.I32Array(); err != nil {
					return t, err
				}
			}
		}
	}

	return t, nil
}
