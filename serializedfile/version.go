// Package serializedfile parses the metadata of one embedded serialized
// file: the header, the type table, the object table, and the external
// file/script/ref-type tables that sit between them. Per §9's "encode as
// data, not nested conditionals" guidance, every version-gated field in
// this package is checked against the named constants below rather than a
// bare integer literal.
package serializedfile

// FormatVersion names the points in the serialized-file format's history
// where a field was added, widened, or repurposed. Unity's own versioning
// is a flat integer; the names here document what each step actually
// changed; see the comments for the approximate engine release range.
type FormatVersion uint32

const (
	Unsupported FormatVersion = 1
	Unknown2    FormatVersion = 2
	Unknown3    FormatVersion = 3

	// Unknown5 : 1.2.0 to 2.0.0
	Unknown5 FormatVersion = 5
	// Unknown6 : 2.1.0 to 2.6.1
	Unknown6 FormatVersion = 6
	// Unknown7 : 3.0.0b
	Unknown7 FormatVersion = 7
	// Unknown8 : 3.0.0 to 3.4.2
	Unknown8 FormatVersion = 8
	// Unknown9 : 3.5.0 to 4.7.2
	Unknown9 FormatVersion = 9
	// Unknown10 : 5.0.0aunk1
	Unknown10 FormatVersion = 10
	// HasScriptTypeIndex : 5.0.0aunk2
	HasScriptTypeIndex FormatVersion = 11
	// Unknown12 : 5.0.0aunk3
	Unknown12 FormatVersion = 12
	// HasTypeTreeHashes : 5.0.0aunk4
	HasTypeTreeHashes FormatVersion = 13
	// Unknown14 : 5.0.0unk
	Unknown14 FormatVersion = 14
	// SupportsStrippedObject : 5.0.1 to 5.4.0
	SupportsStrippedObject FormatVersion = 15
	// RefactoredClassID : 5.5.0a
	RefactoredClassID FormatVersion = 16
	// RefactorTypeData : 5.5.0unk to 2018.4
	RefactorTypeData FormatVersion = 17
	// RefactorShareableTypeTreeData : 2019.1a
	RefactorShareableTypeTreeData FormatVersion = 18
	// TypeTreeNodeWithTypeFlags : 2019.1unk
	TypeTreeNodeWithTypeFlags FormatVersion = 19
	// SupportsRefObject : 2019.2
	SupportsRefObject FormatVersion = 20
	// StoresTypeDependencies : 2019.3 to 2019.4
	StoresTypeDependencies FormatVersion = 21
	// LargeFilesSupport : 2020.1 to present
	LargeFilesSupport FormatVersion = 22
)
