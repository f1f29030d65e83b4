package ubundle

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
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

func appendU32LE(buf *bytes.Buffer, v uint32) {
	buf.WriteByte(byte(v))
	buf.WriteByte(byte(v >> 8))
	buf.WriteByte(byte(v >> 16))
	buf.WriteByte(byte(v >> 24))
}

// buildEmptySerializedFile writes a version-17, little-endian SerializedFile
// with zero types, zero objects, and no externals or ref types.
func buildEmptySerializedFile() []byte {
	var buf bytes.Buffer
	appendU32BE(&buf, 0) // metadata_size, unused by the reader
	appendU32BE(&buf, 0) // file_size, unused
	appendU32BE(&buf, 17)
	appendU32BE(&buf, 0) // data_offset
	buf.WriteByte(0)     // endianness: little
	buf.Write([]byte{0, 0, 0})

	appendCString(&buf, "5.6.7f1") // UnityVersion, >= Unknown7
	appendU32LE(&buf, 0)           // TargetPlatform, >= Unknown8
	buf.WriteByte(0)               // TypeTreeEnabled, >= HasTypeTreeHashes
	appendU32LE(&buf, 0)           // type count
	appendU32LE(&buf, 0)           // object count
	appendU32LE(&buf, 0)           // script type count, >= HasScriptTypeIndex
	appendU32LE(&buf, 0)           // externals count
	appendCString(&buf, "")        // user information, >= Unknown5

	return buf.Bytes()
}

// buildUnityFSBundle assembles a minimal, uncompressed UnityFS bundle
// (version 6) hosting one content block.
func buildUnityFSBundle(engineRevision string, content []byte) []byte {
	path := "CAB-0123456789abcdef0123456789abcdef"

	var blockInfo bytes.Buffer
	blockInfo.Write(make([]byte, 16)) // uncompressed-data hash, unchecked

	appendU32BE(&blockInfo, 1) // block count
	appendU32BE(&blockInfo, uint32(len(content)))
	appendU32BE(&blockInfo, uint32(len(content)))
	appendU16BE(&blockInfo, 0) // flags: no compression

	appendU32BE(&blockInfo, 1) // directory count
	appendI64BE(&blockInfo, 0)
	appendI64BE(&blockInfo, int64(len(content)))
	appendU32BE(&blockInfo, 0)
	appendCString(&blockInfo, path)

	var buf bytes.Buffer
	appendCString(&buf, "UnityFS")
	appendU32BE(&buf, 6)
	appendCString(&buf, "5.6.7f1")
	appendCString(&buf, engineRevision)
	appendI64BE(&buf, 0) // size, unchecked

	appendU32BE(&buf, uint32(blockInfo.Len())) // compressed size
	appendU32BE(&buf, uint32(blockInfo.Len())) // uncompressed size
	appendU32BE(&buf, 0x40)                    // flags: combined block-info+directory, no compression

	buf.Write(blockInfo.Bytes())
	buf.Write(content)

	return buf.Bytes()
}

// TestOpen_S1_MinimalBundleWithEmptySerializedFile exercises spec scenario
// S1: a minimal UnityFS bundle hosting one empty SerializedFile yields one
// directory entry and zero objects.
func TestOpen_S1_MinimalBundleWithEmptySerializedFile(t *testing.T) {
	content := buildEmptySerializedFile()
	data := buildUnityFSBundle("5.6.7f1", content)

	b, err := Open(bytes.NewReader(data), Config{EnableLZ4: true, EnableLZMA: true, EnableEncryption: true})
	require.NoError(t, err)

	require.Len(t, b.Directory(), 1)
	entry := b.Directory()[0]
	assert.Equal(t, "CAB-0123456789abcdef0123456789abcdef", entry.Path)
	assert.Equal(t, int64(0), entry.Offset)
	assert.Equal(t, int64(len(content)), entry.Size)

	sf, err := b.SerializedFile(entry)
	require.NoError(t, err)
	assert.Empty(t, sf.Objects)
	assert.Equal(t, "5.6.7f1", sf.UnityVersion)
}
