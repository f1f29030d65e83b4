// Package bundle implements the outer Unity asset-bundle container: the
// UnityFS/UnityWeb/UnityRaw header, the compressed+optionally-encrypted
// block directory, and the virtual buffer they decompress into.
package bundle

import (
	"bytes"
	"fmt"
	"io"

	"github.com/go-unity/ubundle/crypt"
	"github.com/go-unity/ubundle/endian"
	"github.com/go-unity/ubundle/errs"
	"github.com/go-unity/ubundle/internal/byteio"
)

// Reader is an opened bundle: its header, block directory, file directory,
// and the fully decompressed virtual buffer every FileEntry offset indexes
// into. Once Open returns, the buffer is immutable for the Reader's lifetime.
type Reader struct {
	Header    Header
	Blocks    []StorageBlock
	Directory []FileEntry

	buffer []byte
}

// Buffer returns the decompressed virtual buffer backing the directory.
func (b *Reader) Buffer() []byte {
	return b.buffer
}

// SectionReader returns a seekable view over entry's bytes within the
// virtual buffer.
func (b *Reader) SectionReader(entry FileEntry) *io.SectionReader {
	return io.NewSectionReader(bytes.NewReader(b.buffer), entry.Offset, entry.Size)
}

// Open parses a bundle from r, which must be readable and seekable.
func Open(r io.ReadSeeker, cfg Config) (*Reader, error) {
	br := byteio.New(r, endian.GetBigEndianEngine())

	header, err := readHeader(br)
	if err != nil {
		return nil, err
	}

	switch header.Signature {
	case "UnityArchive":
		return nil, fmt.Errorf("%w: UnityArchive bundles", errs.ErrUnimplemented)
	case "UnityFS":
		return openNewStyle(br, header, cfg)
	case "UnityWeb", "UnityRaw":
		if header.Version >= 6 {
			return openNewStyle(br, header, cfg)
		}
		return openLegacy(br, header, cfg)
	default:
		return nil, fmt.Errorf("%w: %q", errs.ErrUnknownSignature, header.Signature)
	}
}

func openNewStyle(br *byteio.Reader, header Header, cfg Config) (*Reader, error) {
	size, err := br.I64()
	if err != nil {
		return nil, err
	}
	header.Size = size

	blockInfoDesc, err := readBlockInfoDescriptor(br)
	if err != nil {
		return nil, err
	}

	if header.Signature != "UnityFS" {
		if _, err := br.Bool(); err != nil {
			return nil, err
		}
	}

	revision, err := ParseRevision(header.EngineRevision, cfg.FallbackEngineRevision)
	if err != nil {
		return nil, err
	}
	useNewArchiveFlags := UsesNewArchiveFlags(revision)

	if header.Version >= 7 {
		if err := br.Align(16); err != nil {
			return nil, err
		}
	} else if revision.AtLeast(2019, 4) {
		if err := probeAlign16(br); err != nil {
			return nil, err
		}
	}

	var decryptor *crypt.Decryptor
	var blocksInfoBytes []byte

	if blockInfoDesc.Flags&flagBlocksInfoAtTheEnd != 0 {
		pos, err := br.Pos()
		if err != nil {
			return nil, err
		}
		if _, err := br.Seek(-int64(blockInfoDesc.CompressedSize), io.SeekEnd); err != nil {
			return nil, fmt.Errorf("%w: %v", errs.ErrIO, err)
		}
		if blocksInfoBytes, err = decompressBlock(br, blockInfoDesc, nil, 0, cfg); err != nil {
			return nil, err
		}
		if _, err := br.Seek(pos, io.SeekStart); err != nil {
			return nil, fmt.Errorf("%w: %v", errs.ErrIO, err)
		}
	} else {
		encryptionBit := uint32(flagOldUsesAssetBundleEncryption)
		if useNewArchiveFlags {
			encryptionBit = flagNewUsesAssetBundleEncryption
		}

		if blockInfoDesc.Flags&encryptionBit != 0 {
			if !cfg.EnableEncryption {
				return nil, fmt.Errorf("%w: encryption", errs.ErrFeatureDisabled)
			}
			if cfg.UnityCNKey == nil {
				return nil, errs.ErrNoUnityCNKey
			}
			if decryptor, err = crypt.New(br, *cfg.UnityCNKey); err != nil {
				return nil, err
			}
		}

		if blocksInfoBytes, err = decompressBlock(br, blockInfoDesc, nil, 0, cfg); err != nil {
			return nil, err
		}
	}

	blocks, directory, err := parseBlockInfo(blocksInfoBytes)
	if err != nil {
		return nil, err
	}

	if useNewArchiveFlags && blockInfoDesc.Flags&flagNewBlockInfoPaddingAtStart != 0 {
		if err := br.Align(16); err != nil {
			return nil, err
		}
	}

	var total int64
	for _, blk := range blocks {
		total += int64(blk.UncompressedSize)
	}

	buf := make([]byte, total)
	var offset int64
	for i, blk := range blocks {
		end := offset + int64(blk.UncompressedSize)
		if err := decompressBlockInto(br, blk, decryptor, i, cfg, buf[offset:end]); err != nil {
			return nil, err
		}
		offset = end
	}

	return &Reader{Header: header, Blocks: blocks, Directory: directory, buffer: buf}, nil
}

// probeAlign16 accommodates the retroactive alignment change back-ported to
// the 2019 series: consume up to 15 padding bytes only if they are all zero,
// otherwise rewind, since pre-version-7 bundles from that window are
// inconsistently aligned.
func probeAlign16(br *byteio.Reader) error {
	pos, err := br.Pos()
	if err != nil {
		return err
	}

	n := (16 - int(pos%16)) % 16
	if n == 0 {
		return nil
	}

	padding, err := br.Bytes(n)
	if err != nil {
		return err
	}

	for _, b := range padding {
		if b != 0 {
			_, err := br.Seek(pos, io.SeekStart)
			if err != nil {
				return fmt.Errorf("%w: %v", errs.ErrIO, err)
			}
			return nil
		}
	}

	return nil
}

// parseBlockInfo reads the decompressed block-info chunk: a 16-byte
// uncompressed-data hash, the StorageBlock table, then the FileEntry table.
func parseBlockInfo(blocksInfoBytes []byte) ([]StorageBlock, []FileEntry, error) {
	bir := byteio.New(bytes.NewReader(blocksInfoBytes), endian.GetBigEndianEngine())

	if _, err := bir.U128(); err != nil {
		return nil, nil, err
	}

	blockCount, err := bir.I32()
	if err != nil {
		return nil, nil, err
	}
	blocks := make([]StorageBlock, blockCount)
	for i := range blocks {
		if blocks[i], err = readStorageBlockEntry(bir); err != nil {
			return nil, nil, err
		}
	}

	fileCount, err := bir.I32()
	if err != nil {
		return nil, nil, err
	}
	directory := make([]FileEntry, fileCount)
	for i := range directory {
		if directory[i].Offset, err = bir.I64(); err != nil {
			return nil, nil, err
		}
		if directory[i].Size, err = bir.I64(); err != nil {
			return nil, nil, err
		}
		if directory[i].Flags, err = bir.U32(); err != nil {
			return nil, nil, err
		}
		if directory[i].Path, err = bir.CString(); err != nil {
			return nil, nil, err
		}
	}

	return blocks, directory, nil
}

func openLegacy(br *byteio.Reader, header Header, cfg Config) (*Reader, error) {
	if header.Version >= 4 {
		if _, err := br.U128(); err != nil { // hash, unused
			return nil, err
		}
		if _, err := br.U32(); err != nil { // crc, unused
			return nil, err
		}
	}

	if _, err := br.U32(); err != nil { // minimum_streamed_bytes, unused
		return nil, err
	}

	size, err := br.U32()
	if err != nil {
		return nil, err
	}
	header.Size = int64(size)

	if _, err := br.U32(); err != nil { // levels_to_download_before_streaming, unused
		return nil, err
	}

	levelCount, err := br.U32()
	if err != nil {
		return nil, err
	}
	if levelCount > 0 {
		if _, err := br.Seek(int64(levelCount-1)*8, io.SeekCurrent); err != nil {
			return nil, fmt.Errorf("%w: %v", errs.ErrIO, err)
		}
	}

	var block StorageBlock
	if block.CompressedSize, err = br.U32(); err != nil {
		return nil, err
	}
	if block.UncompressedSize, err = br.U32(); err != nil {
		return nil, err
	}

	if header.Version >= 2 {
		if _, err := br.U32(); err != nil { // complete_file_size, unused
			return nil, err
		}
	}
	if header.Version >= 3 {
		if _, err := br.U128(); err != nil { // file_info_header_size, unused
			return nil, err
		}
	}

	if _, err := br.Seek(header.Size, io.SeekStart); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrIO, err)
	}

	if header.Signature == "UnityWeb" {
		block.Flags = 1 // LZMA
	}

	buf, err := decompressBlock(br, block, nil, 0, cfg)
	if err != nil {
		return nil, err
	}

	bir := byteio.New(bytes.NewReader(buf), endian.GetBigEndianEngine())
	fileCount, err := bir.I32()
	if err != nil {
		return nil, err
	}

	directory := make([]FileEntry, fileCount)
	for i := range directory {
		if directory[i].Path, err = bir.CString(); err != nil {
			return nil, err
		}
		offset, err := bir.U32()
		if err != nil {
			return nil, err
		}
		directory[i].Offset = int64(offset)
		entrySize, err := bir.U32()
		if err != nil {
			return nil, err
		}
		directory[i].Size = int64(entrySize)
	}

	return &Reader{Header: header, Blocks: []StorageBlock{block}, Directory: directory, buffer: buf}, nil
}
