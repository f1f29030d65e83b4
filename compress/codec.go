// Package compress decodes the block payloads carried inside a bundle.
//
// Each bundle StorageBlock declares a compression id in the low 6 bits of
// its flags field: none, LZMA, LZ4, LZ4-HC, or LZHAM. This package provides
// one Decompressor per supported id; the caller is responsible for sizing
// the destination buffer to the block's declared uncompressed size before
// calling DecompressInto, matching how the bundle format embeds the
// uncompressed size in the block-info directory rather than in the
// compressed stream itself.
package compress

import (
	"fmt"

	"github.com/go-unity/ubundle/errs"
)

// ID identifies one of the compression algorithms a StorageBlock can declare.
// The numeric values match the low 6 bits of StorageBlock.Flags exactly.
type ID uint8

const (
	None  ID = 0
	LZMA  ID = 1
	LZ4   ID = 2
	LZ4HC ID = 3
	LZHAM ID = 4
)

func (c ID) String() string {
	switch c {
	case None:
		return "None"
	case LZMA:
		return "LZMA"
	case LZ4:
		return "LZ4"
	case LZ4HC:
		return "LZ4HC"
	case LZHAM:
		return "LZHAM"
	default:
		return "Unknown"
	}
}

// Decompressor decodes one block of compressed bytes into a caller-sized
// destination buffer.
//
// dst must already be sized to the block's declared uncompressed length.
// Implementations must fill dst exactly: writing fewer or more bytes than
// len(dst) is an error, never silently truncated or zero-padded.
type Decompressor interface {
	DecompressInto(dst, src []byte) error
}

// Get returns the Decompressor registered for id.
//
// LZHAM is a recognized id with no implementation (the engine shipped it but
// this format was never widely adopted); it reports Unimplemented rather
// than Unknown so callers can distinguish "never supported" from "bad data".
func Get(id ID) (Decompressor, error) {
	switch id {
	case None:
		return noopDecompressor{}, nil
	case LZMA:
		return lzmaDecompressor{}, nil
	case LZ4, LZ4HC:
		return lz4Decompressor{}, nil
	case LZHAM:
		return nil, fmt.Errorf("%w: LZHAM compression", errs.ErrUnimplemented)
	default:
		return nil, fmt.Errorf("%w: compression flag %d", errs.ErrInvalidCompressionFlag, id)
	}
}
