package compress

import (
	"fmt"

	"github.com/go-unity/ubundle/errs"
)

// noopDecompressor handles StorageBlocks with compression id None: the
// stored bytes already are the uncompressed payload, so this is a plain copy.
type noopDecompressor struct{}

func (noopDecompressor) DecompressInto(dst, src []byte) error {
	if len(src) != len(dst) {
		return fmt.Errorf("%w: none: expected %d bytes, got %d", errs.ErrDecompressionError, len(dst), len(src))
	}

	copy(dst, src)

	return nil
}
