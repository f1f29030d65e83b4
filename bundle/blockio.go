package bundle

import (
	"fmt"

	"github.com/go-unity/ubundle/compress"
	"github.com/go-unity/ubundle/crypt"
	"github.com/go-unity/ubundle/errs"
	"github.com/go-unity/ubundle/internal/byteio"
)

// readBlockInfoDescriptor reads the StorageBlock describing the block-info
// chunk itself: compressed size, then uncompressed size, then flags, all u32.
func readBlockInfoDescriptor(r *byteio.Reader) (StorageBlock, error) {
	var b StorageBlock
	var err error

	if b.CompressedSize, err = r.U32(); err != nil {
		return StorageBlock{}, err
	}
	if b.UncompressedSize, err = r.U32(); err != nil {
		return StorageBlock{}, err
	}
	if b.Flags, err = r.U32(); err != nil {
		return StorageBlock{}, err
	}

	return b, nil
}

// readStorageBlockEntry reads one StorageBlock as it appears inside the
// decompressed block-info directory: uncompressed size, then compressed
// size, then a 16-bit flags field (widened to u32 to match StorageBlock).
func readStorageBlockEntry(r *byteio.Reader) (StorageBlock, error) {
	var b StorageBlock
	var err error

	if b.UncompressedSize, err = r.U32(); err != nil {
		return StorageBlock{}, err
	}
	if b.CompressedSize, err = r.U32(); err != nil {
		return StorageBlock{}, err
	}
	flags, err := r.U16()
	if err != nil {
		return StorageBlock{}, err
	}
	b.Flags = uint32(flags)

	return b, nil
}

// checkCompressionEnabled turns a codec id into a FeatureDisabled error when
// the caller's Config has that codec's toggle off. None never needs a toggle.
func checkCompressionEnabled(id compress.ID, cfg Config) error {
	switch id {
	case compress.LZMA:
		if !cfg.EnableLZMA {
			return fmt.Errorf("%w: lzma", errs.ErrFeatureDisabled)
		}
	case compress.LZ4, compress.LZ4HC:
		if !cfg.EnableLZ4 {
			return fmt.Errorf("%w: lz4", errs.ErrFeatureDisabled)
		}
	}

	return nil
}

// decompressBlockInto reads block's compressed bytes from r, decrypts them
// in place if the block is marked encrypted and a decryptor is active, and
// decompresses into dst, which must already be sized to
// block.UncompressedSize.
func decompressBlockInto(r *byteio.Reader, block StorageBlock, decryptor *crypt.Decryptor, index int, cfg Config, dst []byte) error {
	compressed, err := r.Bytes(int(block.CompressedSize))
	if err != nil {
		return err
	}

	if block.Encrypted() && decryptor != nil {
		if err := decryptor.DecryptBlock(compressed, index); err != nil {
			return err
		}
	}

	id := block.CompressionID()
	if err := checkCompressionEnabled(id, cfg); err != nil {
		return err
	}

	dec, err := compress.Get(id)
	if err != nil {
		return err
	}

	return dec.DecompressInto(dst, compressed)
}

// decompressBlock is decompressBlockInto with a freshly allocated destination.
func decompressBlock(r *byteio.Reader, block StorageBlock, decryptor *crypt.Decryptor, index int, cfg Config) ([]byte, error) {
	dst := make([]byte, block.UncompressedSize)
	if err := decompressBlockInto(r, block, decryptor, index, cfg, dst); err != nil {
		return nil, err
	}

	return dst, nil
}
