// Package ubundle decodes Unity asset bundles end to end: the outer
// container (UnityFS/UnityWeb/UnityRaw), the SerializedFile metadata each
// embedded file carries, and the type tree that gives each object's raw
// bytes a shape.
//
// # Core Features
//
//   - UnityFS and legacy (UnityWeb/UnityRaw) container parsing
//   - LZ4/LZ4HC and LZMA block decompression
//   - UnityCN block decryption given a 16-byte archive key
//   - SerializedFile metadata parsing across the full format-version ladder
//   - Recursive and blob-form type-tree parsing
//   - A type-tree interpreter producing an ordered Value tree per object
//
// # Basic Usage
//
// Opening a bundle and walking one embedded file's objects:
//
//	import "github.com/go-unity/ubundle"
//
//	b, err := ubundle.Open(r, ubundle.Config{
//	    FallbackEngineRevision: "2021.3.16f1",
//	    EnableLZ4:              true,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, entry := range b.Directory() {
//	    sf, err := b.SerializedFile(entry)
//	    if err != nil {
//	        continue // not every FileEntry is a serialized file
//	    }
//	    for _, obj := range sf.Objects {
//	        val, err := sf.ReadObject(b.SectionReader(entry), obj)
//	        if err != nil {
//	            log.Printf("object %d: %v", obj.PathID, err)
//	            continue
//	        }
//	        _ = val
//	    }
//	}
//
// # Package Structure
//
// This package is a thin convenience wrapper over bundle, serializedfile,
// and typetree. Callers needing finer control — a custom Config assembled
// field by field, or direct access to the block directory — should use
// those packages directly.
package ubundle

import (
	"fmt"
	"io"

	"github.com/go-unity/ubundle/bundle"
	"github.com/go-unity/ubundle/serializedfile"
	"github.com/go-unity/ubundle/typetree"
)

// Config carries the knobs Open needs: a fallback engine revision for
// headers that don't carry a usable one, an optional UnityCN archive key,
// and per-codec feature toggles. A toggle left off turns use of that
// facility into a FeatureDisabled error at the point of need, not a silent
// skip.
type Config = bundle.Config

// Revision is an engine version tuple, e.g. "2021.3.16f1" -> {2021, 3, 16}.
type Revision = bundle.Revision

// FileEntry names one embedded file within a bundle's virtual buffer.
type FileEntry = bundle.FileEntry

// ObjectInfo locates and classifies one object within a SerializedFile.
type ObjectInfo = serializedfile.ObjectInfo

// SerializedType is one entry of a SerializedFile's type table: the class
// this object belongs to, plus its type tree when one was embedded.
type SerializedType = serializedfile.SerializedType

// Value is a decoded object field, scalar or composite. See the typetree
// package for the full set of concrete types (typetree.SInt32,
// typetree.String, typetree.Array, typetree.Map, *typetree.Class, ...).
type Value = typetree.Value

// Bundle is an opened asset bundle: its file directory and the
// decompressed virtual buffer every FileEntry indexes into, plus the
// ability to parse any entry as a SerializedFile on demand.
type Bundle struct {
	reader *bundle.Reader
}

// Open parses a bundle from r, which must be readable and seekable.
func Open(r io.ReadSeeker, cfg Config) (*Bundle, error) {
	br, err := bundle.Open(r, cfg)
	if err != nil {
		return nil, err
	}

	return &Bundle{reader: br}, nil
}

// Directory lists the bundle's embedded files.
func (b *Bundle) Directory() []FileEntry {
	return b.reader.Directory
}

// Buffer returns the decompressed virtual buffer backing the directory.
func (b *Bundle) Buffer() []byte {
	return b.reader.Buffer()
}

// SectionReader returns a seekable view over entry's bytes within the
// virtual buffer, suitable for passing to SerializedFile or ReadObject.
func (b *Bundle) SectionReader(entry FileEntry) *io.SectionReader {
	return b.reader.SectionReader(entry)
}

// SerializedFile parses entry's bytes as a SerializedFile. Not every
// FileEntry is one — resource files and non-serialized assets live in the
// same directory — so callers iterating the whole bundle should expect and
// handle a parse failure per entry rather than treating it as fatal to the
// bundle as a whole.
func (b *Bundle) SerializedFile(entry FileEntry) (*SerializedFile, error) {
	f, err := serializedfile.Open(b.SectionReader(entry))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", entry.Path, err)
	}

	return &SerializedFile{File: f}, nil
}

// SerializedFile wraps the parsed metadata of one embedded file: its
// object table and type table, plus the ability to decode any one object's
// bytes into a Value.
type SerializedFile struct {
	*serializedfile.File
}

// ReadObject decodes obj's payload from r — typically a SectionReader over
// the same FileEntry this SerializedFile was parsed from — using the type
// tree attached to obj's SerializedType. It fails with TypeTreeNotFound if
// obj's type carries none.
func (sf *SerializedFile) ReadObject(r io.ReadSeeker, obj ObjectInfo) (Value, error) {
	return sf.File.ReadObject(r, obj)
}
