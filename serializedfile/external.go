package serializedfile

import "github.com/go-unity/ubundle/internal/byteio"

// FileIdentifier names one externally referenced serialized file, resolved
// by PPtrs whose file_id is non-zero.
type FileIdentifier struct {
	TempEmpty string
	GUID      [16]byte
	HasGUID   bool
	TypeID    int32
	PathName  string
}

func readFileIdentifier(br *byteio.Reader, header Header) (FileIdentifier, error) {
	var f FileIdentifier

	if header.Version >= Unknown6 {
		s, err := br.CString()
		if err != nil {
			return f, err
		}
		f.TempEmpty = s
	}

	if header.Version >= Unknown5 {
		guid, err := br.Bytes(16)
		if err != nil {
			return f, err
		}
		copy(f.GUID[:], guid)
		f.HasGUID = true

		typeID, err := br.I32()
		if err != nil {
			return f, err
		}
		f.TypeID = typeID
	}

	path, err := br.CString()
	if err != nil {
		return f, err
	}
	f.PathName = path

	return f, nil
}

// ScriptTypeRef is a LocalSerializedObjectIdentifier: a reference into this
// same file's script-type table.
type ScriptTypeRef struct {
	LocalSerializedFileIndex int32
	LocalIdentifierInFile    int64
}

func readScriptTypeRef(br *byteio.Reader, header Header) (ScriptTypeRef, error) {
	var s ScriptTypeRef

	idx, err := br.I32()
	if err != nil {
		return s, err
	}
	s.LocalSerializedFileIndex = idx

	if header.Version < Unknown14 {
		v, err := br.I32()
		if err != nil {
			return s, err
		}
		s.LocalIdentifierInFile = int64(v)
	} else {
		v, err := br.I64()
		if err != nil {
			return s, err
		}
		s.LocalIdentifierInFile = v
	}

	return s, nil
}
