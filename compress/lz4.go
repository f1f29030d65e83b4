package compress

import (
	"fmt"

	"github.com/pierrec/lz4/v4"

	"github.com/go-unity/ubundle/errs"
)

// lz4Decompressor handles both LZ4 and LZ4-HC blocks: the two compression
// ids differ only in how the engine compressed them, the LZ4 block format
// they decode from is identical.
type lz4Decompressor struct{}

func (lz4Decompressor) DecompressInto(dst, src []byte) error {
	n, err := lz4.UncompressBlock(src, dst)
	if err != nil {
		return fmt.Errorf("%w: lz4: %v", errs.ErrDecompressionError, err)
	}

	if n != len(dst) {
		return fmt.Errorf("%w: lz4: expected %d bytes, got %d", errs.ErrDecompressionError, len(dst), n)
	}

	return nil
}
