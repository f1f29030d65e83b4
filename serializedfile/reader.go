package serializedfile

import (
	"fmt"
	"io"

	"github.com/go-unity/ubundle/endian"
	"github.com/go-unity/ubundle/errs"
	"github.com/go-unity/ubundle/internal/byteio"
	"github.com/go-unity/ubundle/typetree"
)

// File is the parsed metadata of one serialized file: everything except the
// object payloads themselves, which are read lazily through ReadObject.
type File struct {
	Header Header

	UnityVersion    string
	TargetPlatform  int32
	TypeTreeEnabled bool

	Types        []SerializedType
	BigIDEnabled *int32
	Objects      []ObjectInfo
	ScriptTypes  []ScriptTypeRef
	Externals    []FileIdentifier
	RefTypes     []SerializedType

	UserInformation string

	order endian.EndianEngine
}

// Open parses a serialized file's metadata from r, which must be readable
// and seekable and positioned at the start of the embedded file (a bundle's
// FileEntry offset, typically via Reader.SectionReader).
func Open(r io.ReadSeeker) (*File, error) {
	headerReader := byteio.New(r, endian.GetBigEndianEngine())
	header, err := readHeader(headerReader)
	if err != nil {
		return nil, err
	}

	order, err := header.endianEngine()
	if err != nil {
		return nil, err
	}

	br := byteio.New(r, order)
	f := &File{Header: header, order: order}

	if header.Version >= Unknown7 {
		if f.UnityVersion, err = br.CString(); err != nil {
			return nil, err
		}
	}

	if header.Version >= Unknown8 {
		if f.TargetPlatform, err = br.I32(); err != nil {
			return nil, err
		}
	}

	if header.Version >= HasTypeTreeHashes {
		if f.TypeTreeEnabled, err = br.Bool(); err != nil {
			return nil, err
		}
	}

	typeCount, err := br.I32()
	if err != nil {
		return nil, err
	}
	f.Types = make([]SerializedType, typeCount)
	for i := range f.Types {
		if f.Types[i], err = readSerializedType(br, header, f.TypeTreeEnabled, false); err != nil {
			return nil, err
		}
	}

	// The original decoder reads this flag into a block-scoped variable that
	// the surrounding SerializedFile never receives, so big_id_enabled is
	// silently dropped and every later path-id falls back to the
	// version-only branch. §4.5 describes big_id_enabled as a value that is
	// read AND used by ObjectInfo parsing, so it's propagated here.
	if header.Version >= Unknown7 && header.Version < Unknown14 {
		v, err := br.I32()
		if err != nil {
			return nil, err
		}
		f.BigIDEnabled = &v
	}

	objectCount, err := br.I32()
	if err != nil {
		return nil, err
	}
	f.Objects = make([]ObjectInfo, objectCount)
	for i := range f.Objects {
		if f.Objects[i], err = readObjectInfo(br, header, f.BigIDEnabled, f.Types); err != nil {
			return nil, err
		}
	}

	if header.Version >= HasScriptTypeIndex {
		scriptCount, err := br.I32()
		if err != nil {
			return nil, err
		}
		f.ScriptTypes = make([]ScriptTypeRef, scriptCount)
		for i := range f.ScriptTypes {
			if f.ScriptTypes[i], err = readScriptTypeRef(br, header); err != nil {
				return nil, err
			}
		}
	}

	externalsCount, err := br.I32()
	if err != nil {
		return nil, err
	}
	f.Externals = make([]FileIdentifier, externalsCount)
	for i := range f.Externals {
		if f.Externals[i], err = readFileIdentifier(br, header); err != nil {
			return nil, err
		}
	}

	if header.Version >= SupportsRefObject {
		refCount, err := br.I32()
		if err != nil {
			return nil, err
		}
		f.RefTypes = make([]SerializedType, refCount)
		for i := range f.RefTypes {
			if f.RefTypes[i], err = readSerializedType(br, header, f.TypeTreeEnabled, true); err != nil {
				return nil, err
			}
		}
	}

	if header.Version >= Unknown5 {
		if f.UserInformation, err = br.CString(); err != nil {
			return nil, err
		}
	}

	return f, nil
}

// TypeForObject returns the SerializedType describing obj's layout.
func (f *File) TypeForObject(obj ObjectInfo) *SerializedType {
	if obj.TypeID < 0 || int(obj.TypeID) >= len(f.Types) {
		return nil
	}
	return &f.Types[obj.TypeID]
}

// ReadObject seeks r to obj's payload and interprets it via the type tree
// recorded for obj's type, using the file's endianness.
func (f *File) ReadObject(r io.ReadSeeker, obj ObjectInfo) (typetree.Value, error) {
	typ := f.TypeForObject(obj)
	if typ == nil || typ.Type == nil {
		return nil, errs.ErrTypeTreeNotFound
	}

	if _, err := r.Seek(obj.Offset, io.SeekStart); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrIO, err)
	}

	br := byteio.New(r, f.order)
	return typ.Type.Read(br)
}
