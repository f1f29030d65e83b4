package compress

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/ulikunitz/xz/lzma"

	"github.com/go-unity/ubundle/errs"
)

// lzmaDecompressor handles StorageBlocks with compression id LZMA. Bundle
// blocks carry a classic LZMA1 stream: a 5-byte properties header followed
// by compressed data, with the uncompressed size supplied out-of-band by the
// StorageBlock rather than the 8-byte size field LZMA streams usually embed.
type lzmaDecompressor struct{}

func (lzmaDecompressor) DecompressInto(dst, src []byte) error {
	if len(src) < 5 {
		return fmt.Errorf("%w: lzma: stream shorter than its 5-byte properties header", errs.ErrDecompressionError)
	}

	// Rebuild the classic 13-byte header the decoder expects: the block's 5
	// property bytes followed by the out-of-band uncompressed size.
	header := make([]byte, 13)
	copy(header, src[:5])
	binary.LittleEndian.PutUint64(header[5:], uint64(len(dst)))

	r, err := lzma.NewReader(io.MultiReader(bytes.NewReader(header), bytes.NewReader(src[5:])))
	if err != nil {
		return fmt.Errorf("%w: lzma: %v", errs.ErrDecompressionError, err)
	}

	n, err := io.ReadFull(r, dst)
	if err != nil && err != io.ErrUnexpectedEOF { //nolint:errorlint
		return fmt.Errorf("%w: lzma: %v", errs.ErrDecompressionError, err)
	}

	if n != len(dst) {
		return fmt.Errorf("%w: lzma: expected %d bytes, got %d", errs.ErrDecompressionError, len(dst), n)
	}

	return nil
}
