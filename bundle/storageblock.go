package bundle

import "github.com/go-unity/ubundle/compress"

// archive-level flag bits, read from the block-info header's own Flags
// field (distinct from a StorageBlock's per-block Flags below).
const (
	flagBlocksAndDirectoryInfoCombined = 0x40
	flagBlocksInfoAtTheEnd             = 0x80
	flagOldWebPluginCompatibility      = 0x100

	// new layout (UsesNewArchiveFlags == true)
	flagNewBlockInfoPaddingAtStart    = 0x200
	flagNewUsesAssetBundleEncryption  = 0x400

	// old layout (UsesNewArchiveFlags == false)
	flagOldUsesAssetBundleEncryption = 0x200
)

// perBlockEncrypted is the bit a StorageBlock itself carries to mark its
// compressed payload as UnityCN-encrypted, independent of the archive-level
// flags above.
const perBlockEncrypted = 0x100

// StorageBlock describes one compressed (and optionally encrypted) run
// within the bundle's virtual buffer.
type StorageBlock struct {
	UncompressedSize uint32
	CompressedSize   uint32
	Flags            uint32
}

// CompressionID returns the codec this block declares, the low 6 bits of Flags.
func (b StorageBlock) CompressionID() compress.ID {
	return compress.ID(b.Flags & 0x3F)
}

// Encrypted reports whether this block's own payload is UnityCN-encrypted.
func (b StorageBlock) Encrypted() bool {
	return b.Flags&perBlockEncrypted != 0
}
