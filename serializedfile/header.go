package serializedfile

import (
	"fmt"
	"io"

	"github.com/go-unity/ubundle/endian"
	"github.com/go-unity/ubundle/errs"
	"github.com/go-unity/ubundle/internal/byteio"
)

// Header is the fixed-layout prefix of a serialized file: sizes, version,
// and the byte that selects the endianness of everything that follows it.
type Header struct {
	MetadataSize uint32
	FileSize     int64
	Version      FormatVersion
	DataOffset   int64
	Endianness   byte
	Unknown      int64
}

// readHeader reads the header from br, which must already be positioned at
// the start of the serialized file and set to big-endian order (the header
// fields always are, regardless of what the payload picks).
func readHeader(br *byteio.Reader) (Header, error) {
	var h Header

	metadataSize, err := br.U32()
	if err != nil {
		return h, err
	}
	fileSize, err := br.U32()
	if err != nil {
		return h, err
	}
	version, err := br.U32()
	if err != nil {
		return h, err
	}
	dataOffset, err := br.U32()
	if err != nil {
		return h, err
	}

	h.MetadataSize = metadataSize
	h.FileSize = int64(fileSize)
	h.Version = FormatVersion(version)
	h.DataOffset = int64(dataOffset)

	if h.Version >= Unknown9 {
		endByte, err := br.U8()
		if err != nil {
			return h, err
		}
		h.Endianness = endByte

		if _, err := br.Bytes(3); err != nil { // reserved
			return h, err
		}

		if h.Version >= LargeFilesSupport {
			if err := h.readLargeFileHeader(br); err != nil {
				return h, err
			}
		}

		return h, nil
	}

	target := h.FileSize - int64(h.MetadataSize)
	if target < 0 {
		return h, fmt.Errorf("%w: serialized file header sizes underflow (file_size=%d, metadata_size=%d)",
			errs.ErrInvalidValue, h.FileSize, h.MetadataSize)
	}
	if _, err := br.Seek(target, io.SeekStart); err != nil {
		return h, fmt.Errorf("%w: %v", errs.ErrIO, err)
	}

	endByte, err := br.U8()
	if err != nil {
		return h, err
	}
	h.Endianness = endByte

	return h, nil
}

func (h *Header) readLargeFileHeader(br *byteio.Reader) error {
	metadataSize, err := br.U32()
	if err != nil {
		return err
	}
	fileSize, err := br.I64()
	if err != nil {
		return err
	}
	dataOffset, err := br.I64()
	if err != nil {
		return err
	}
	unknown, err := br.I64()
	if err != nil {
		return err
	}

	h.MetadataSize = metadataSize
	h.FileSize = fileSize
	h.DataOffset = dataOffset
	h.Unknown = unknown

	return nil
}

// endianEngine resolves the header's endianness byte to an EndianEngine for
// the remainder of the file, per §7's InvalidEndianness rule.
func (h Header) endianEngine() (endian.EndianEngine, error) {
	return endian.Select(h.Endianness)
}
