package bundle

import (
	"bytes"
	"testing"

	"github.com/pierrec/lz4/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ulikunitz/xz/lzma"

	"github.com/go-unity/ubundle/compress"
	"github.com/go-unity/ubundle/errs"
)

func appendCString(buf *bytes.Buffer, s string) {
	buf.WriteString(s)
	buf.WriteByte(0)
}

func appendU32BE(buf *bytes.Buffer, v uint32) {
	buf.WriteByte(byte(v >> 24))
	buf.WriteByte(byte(v >> 16))
	buf.WriteByte(byte(v >> 8))
	buf.WriteByte(byte(v))
}

func appendU16BE(buf *bytes.Buffer, v uint16) {
	buf.WriteByte(byte(v >> 8))
	buf.WriteByte(byte(v))
}

func appendI64BE(buf *bytes.Buffer, v int64) {
	appendU32BE(buf, uint32(v>>32))
	appendU32BE(buf, uint32(v))
}

func buildBlockInfoPayload(t *testing.T, blocks []StorageBlock, directory []FileEntry) []byte {
	t.Helper()

	var buf bytes.Buffer
	buf.Write(make([]byte, 16)) // uncompressed-data hash, unchecked by the reader

	appendU32BE(&buf, uint32(len(blocks)))
	for _, blk := range blocks {
		appendU32BE(&buf, blk.UncompressedSize)
		appendU32BE(&buf, blk.CompressedSize)
		appendU16BE(&buf, uint16(blk.Flags))
	}

	appendU32BE(&buf, uint32(len(directory)))
	for _, entry := range directory {
		appendI64BE(&buf, entry.Offset)
		appendI64BE(&buf, entry.Size)
		appendU32BE(&buf, entry.Flags)
		appendCString(&buf, entry.Path)
	}

	return buf.Bytes()
}

// buildUnityFSBundle assembles a minimal UnityFS bundle (version 6) with one
// content block, compressing the block-info chunk and the content block
// independently per the given codec ids.
func buildUnityFSBundle(t *testing.T, engineRevision string, blockInfoCodec, contentCodec compress.ID, rawContent []byte) []byte {
	t.Helper()

	path := "CAB-0123456789abcdef0123456789abcdef"

	contentCompressed := compressFixture(t, contentCodec, rawContent)
	contentBlock := StorageBlock{
		UncompressedSize: uint32(len(rawContent)),
		CompressedSize:   uint32(len(contentCompressed)),
		Flags:            uint32(contentCodec),
	}

	directory := []FileEntry{{Offset: 0, Size: int64(len(rawContent)), Flags: 0, Path: path}}
	blockInfoPayload := buildBlockInfoPayload(t, []StorageBlock{contentBlock}, directory)
	blockInfoCompressed := compressFixture(t, blockInfoCodec, blockInfoPayload)

	var buf bytes.Buffer
	appendCString(&buf, "UnityFS")
	appendU32BE(&buf, 6)
	appendCString(&buf, "5.6.7f1")
	appendCString(&buf, engineRevision)
	appendI64BE(&buf, 0) // size, unchecked by the reader

	appendU32BE(&buf, uint32(len(blockInfoCompressed)))
	appendU32BE(&buf, uint32(len(blockInfoPayload)))
	appendU32BE(&buf, uint32(blockInfoCodec)|flagBlocksAndDirectoryInfoCombined)

	buf.Write(blockInfoCompressed)
	buf.Write(contentCompressed)

	return buf.Bytes()
}

func compressFixture(t *testing.T, id compress.ID, raw []byte) []byte {
	t.Helper()

	switch id {
	case compress.None:
		return raw
	case compress.LZ4:
		dst := make([]byte, lz4.CompressBlockBound(len(raw)))
		var c lz4.Compressor
		n, err := c.CompressBlock(raw, dst)
		require.NoError(t, err)
		require.NotZero(t, n, "incompressible fixture payload") // lz4 can return 0 for tiny/incompressible input
		return dst[:n]
	case compress.LZMA:
		var buf bytes.Buffer
		w, err := lzma.NewWriter(&buf)
		require.NoError(t, err)
		_, err = w.Write(raw)
		require.NoError(t, err)
		require.NoError(t, w.Close())
		// Bundle blocks keep the 5 property bytes but not the 8-byte size field.
		out := buf.Bytes()
		return append(out[:5:5], out[13:]...)
	default:
		t.Fatalf("unsupported fixture codec %v", id)
		return nil
	}
}

func allEnabled() Config {
	return Config{EnableLZMA: true, EnableLZ4: true, EnableEncryption: true}
}

func TestOpen_UnityFS_Uncompressed(t *testing.T) {
	content := []byte("hello serialized file payload")
	data := buildUnityFSBundle(t, "5.6.7f1", compress.None, compress.None, content)

	r, err := Open(bytes.NewReader(data), allEnabled())
	require.NoError(t, err)

	require.Len(t, r.Directory, 1)
	assert.Equal(t, "CAB-0123456789abcdef0123456789abcdef", r.Directory[0].Path)
	assert.Equal(t, int64(0), r.Directory[0].Offset)
	assert.Equal(t, int64(len(content)), r.Directory[0].Size)
	assert.Equal(t, content, r.Buffer())
}

func TestOpen_UnityFS_LZ4Compressed(t *testing.T) {
	content := bytes.Repeat([]byte("the quick brown fox jumps over the lazy dog. "), 8)
	data := buildUnityFSBundle(t, "5.6.7f1", compress.None, compress.LZ4, content)

	r, err := Open(bytes.NewReader(data), allEnabled())
	require.NoError(t, err)
	assert.Equal(t, content, r.Buffer())
}

func TestOpen_UnknownSignature(t *testing.T) {
	var buf bytes.Buffer
	appendCString(&buf, "NotABundle")
	appendU32BE(&buf, 1)
	appendCString(&buf, "")
	appendCString(&buf, "")

	_, err := Open(bytes.NewReader(buf.Bytes()), allEnabled())
	require.ErrorIs(t, err, errs.ErrUnknownSignature)
}

func TestOpen_EncryptedBundle_SignatureMismatchTouchesNoBlocks(t *testing.T) {
	// A bundle with the archive-level encryption bit set but garbage
	// decryptor construction bytes: the embedded signature check must fail
	// before any block is decompressed.
	data := buildEncryptedBundleWithGarbageSignature(t)
	key := [16]byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}

	_, err := Open(bytes.NewReader(data), Config{EnableEncryption: true, EnableLZ4: true, EnableLZMA: true, UnityCNKey: &key})
	require.ErrorIs(t, err, errs.ErrUnknownSignature)
}

func buildEncryptedBundleWithGarbageSignature(t *testing.T) []byte {
	t.Helper()

	content := []byte("should never be read")
	contentBlock := StorageBlock{UncompressedSize: uint32(len(content)), CompressedSize: uint32(len(content)), Flags: 0}
	directory := []FileEntry{{Offset: 0, Size: int64(len(content)), Path: "CAB-deadbeefdeadbeefdeadbeefdeadbeef"}}
	blockInfoPayload := buildBlockInfoPayload(t, []StorageBlock{contentBlock}, directory)

	var buf bytes.Buffer
	appendCString(&buf, "UnityFS")
	appendU32BE(&buf, 6)
	appendCString(&buf, "5.6.7f1")
	appendCString(&buf, "5.6.7f1")
	appendI64BE(&buf, 0)

	appendU32BE(&buf, uint32(len(blockInfoPayload)))
	appendU32BE(&buf, uint32(len(blockInfoPayload)))
	appendU32BE(&buf, flagOldUsesAssetBundleEncryption|flagBlocksAndDirectoryInfoCombined)

	// garbage decryptor construction bytes: 4-byte prefix + 2x(16+16) + 2 gaps
	buf.Write(make([]byte, 4+16+16+1+16+16+1))
	buf.Write(blockInfoPayload)
	buf.Write(content)

	return buf.Bytes()
}

// buildLegacyUnityWebBundle assembles a version-3 UnityWeb bundle whose
// LZMA-compressed directory chunk doubles as the virtual buffer: the file
// table is followed immediately by the two files' raw bytes, all inside one
// decompressed block.
func buildLegacyUnityWebBundle(t *testing.T, files map[string][]byte, order []string) []byte {
	t.Helper()

	headerLen := 4
	for _, name := range order {
		headerLen += len(name) + 1 + 4 + 4
	}

	var payload bytes.Buffer
	appendU32BE(&payload, uint32(len(order)))
	offset := headerLen
	for _, name := range order {
		appendCString(&payload, name)
		appendU32BE(&payload, uint32(offset))
		appendU32BE(&payload, uint32(len(files[name])))
		offset += len(files[name])
	}
	for _, name := range order {
		payload.Write(files[name])
	}

	compressed := compressFixture(t, compress.LZMA, payload.Bytes())

	var buf bytes.Buffer
	appendCString(&buf, "UnityWeb")
	appendU32BE(&buf, 3)
	appendCString(&buf, "3.5.0f5")
	appendCString(&buf, "3.5.0f5")
	appendU32BE(&buf, 0) // minimum_streamed_bytes

	posBeforeSize := buf.Len()
	sizeValue := posBeforeSize + 4 /*size*/ + 4 /*levels_to_download*/ + 4 /*level_count*/ +
		8 /*block descriptor*/ + 4 /*complete_file_size, version>=2*/ + 16 /*file_info_header_size, version>=3*/
	appendU32BE(&buf, uint32(sizeValue))

	appendU32BE(&buf, 0) // levels_to_download_before_streaming
	appendU32BE(&buf, 1) // level_count: one level, nothing to skip

	appendU32BE(&buf, uint32(len(compressed))) // compressed_size
	appendU32BE(&buf, uint32(payload.Len()))   // uncompressed_size
	appendU32BE(&buf, 0)                       // complete_file_size
	buf.Write(make([]byte, 16))                // file_info_header_size

	require.Equal(t, sizeValue, buf.Len())
	buf.Write(compressed)

	return buf.Bytes()
}

func TestOpen_LegacyUnityWeb_LZMADirectory(t *testing.T) {
	files := map[string][]byte{
		"CAB-file1": bytes.Repeat([]byte("alpha-content-"), 4),
		"CAB-file2": bytes.Repeat([]byte("beta-content--"), 4),
	}
	order := []string{"CAB-file1", "CAB-file2"}
	data := buildLegacyUnityWebBundle(t, files, order)

	r, err := Open(bytes.NewReader(data), allEnabled())
	require.NoError(t, err)
	require.Len(t, r.Directory, 2)

	for i, name := range order {
		entry := r.Directory[i]
		assert.Equal(t, name, entry.Path)
		got := r.Buffer()[entry.Offset : entry.Offset+entry.Size]
		assert.Equal(t, files[name], got)
	}
}
