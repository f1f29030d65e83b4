package serializedfile

import "github.com/go-unity/ubundle/internal/byteio"

// ObjectInfo locates and classifies one object's payload. Offset is relative
// to the start of the serialized file (data_offset already added); it does
// not include the FileEntry's own offset within the bundle's virtual buffer.
type ObjectInfo struct {
	PathID          int64
	Offset          int64
	Size            uint32
	TypeID          int32
	ClassID         int32
	IsDestroyed     *uint16
	ScriptTypeIndex *int16
	Stripped        *uint8
}

// readObjectInfo parses one ObjectInfo. bigIDEnabled mirrors the header's
// m_bigIDEnabled field: nil when the current version never carries one,
// otherwise the parsed flag value (non-zero meaning "always read an i64
// path id", regardless of version).
func readObjectInfo(br *byteio.Reader, header Header, bigIDEnabled *int32, types []SerializedType) (ObjectInfo, error) {
	var o ObjectInfo

	switch {
	case bigIDEnabled != nil && *bigIDEnabled > 0:
		pathID, err := br.I64()
		if err != nil {
			return o, err
		}
		o.PathID = pathID
	case header.Version < Unknown14:
		pathID, err := br.I32()
		if err != nil {
			return o, err
		}
		o.PathID = int64(pathID)
	default:
		if err := br.Align(4); err != nil {
			return o, err
		}
		pathID, err := br.I64()
		if err != nil {
			return o, err
		}
		o.PathID = pathID
	}

	if header.Version >= LargeFilesSupport {
		offset, err := br.I64()
		if err != nil {
			return o, err
		}
		o.Offset = offset
	} else {
		offset, err := br.U32()
		if err != nil {
			return o, err
		}
		o.Offset = int64(offset)
	}
	o.Offset += header.DataOffset

	size, err := br.U32()
	if err != nil {
		return o, err
	}
	o.Size = size

	typeID, err := br.I32()
	if err != nil {
		return o, err
	}
	o.TypeID = typeID

	if header.Version < RefactoredClassID {
		classID, err := br.U16()
		if err != nil {
			return o, err
		}
		o.ClassID = int32(classID)
	} else {
		o.ClassID = types[o.TypeID].ClassID
	}

	if header.Version < HasScriptTypeIndex {
		v, err := br.U16()
		if err != nil {
			return o, err
		}
		o.IsDestroyed = &v
	}

	if header.Version >= HasScriptTypeIndex && header.Version < RefactorTypeData {
		v, err := br.I16()
		if err != nil {
			return o, err
		}
		o.ScriptTypeIndex = &v
	}

	if header.Version == SupportsStrippedObject || header.Version == RefactoredClassID {
		v, err := br.U8()
		if err != nil {
			return o, err
		}
		o.Stripped = &v
	}

	return o, nil
}
