// Package crypt implements the UnityCN block decryptor: a per-bundle key
// schedule derived from a caller-supplied archive key, and an in-place
// length-prefixed skip-list scrambler applied to each encrypted block.
package crypt

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"

	"github.com/go-unity/ubundle/errs"
	"github.com/go-unity/ubundle/internal/byteio"
)

// unity3DSignature is the literal ASCII constant the encryption signature
// bytes must decrypt to; its presence is how a caller-supplied archive key
// is validated before any block is touched.
var unity3DSignature = [16]byte{
	'#', '$', 'u', 'n', 'i', 't', 'y', '3', 'd', 'c', 'h', 'i', 'n', 'a', '!', '@',
}

// Decryptor holds the 16-byte index table and 16-byte sub table derived at
// bundle open time. It decrypts StorageBlocks in place, one byte at a time,
// using a counter that starts at the block's index within the bundle.
type Decryptor struct {
	index [16]byte
	sub   [16]byte
}

// New reads the decryptor's construction bytes from r (a 4-byte opaque
// prefix, a 16-byte (info, key) pair, one skipped byte, a 16-byte
// (signature, key) pair, and another skipped byte) and validates archiveKey against the
// embedded signature. A mismatch reports ErrUnknownSignature without
// deriving the index/sub tables.
func New(r *byteio.Reader, archiveKey [16]byte) (*Decryptor, error) {
	if _, err := r.U32(); err != nil { // opaque prefix, meaning undocumented upstream
		return nil, err
	}

	infoBytes, err := r.U128()
	if err != nil {
		return nil, err
	}
	infoKey, err := r.U128()
	if err != nil {
		return nil, err
	}
	if _, err := r.Bytes(1); err != nil {
		return nil, err
	}

	sigBytes, err := r.U128()
	if err != nil {
		return nil, err
	}
	sigKey, err := r.U128()
	if err != nil {
		return nil, err
	}
	if _, err := r.Bytes(1); err != nil {
		return nil, err
	}

	signature, err := decryptKey(sigKey, sigBytes, archiveKey)
	if err != nil {
		return nil, err
	}
	if signature != unity3DSignature {
		return nil, fmt.Errorf("%w: unitycn signature mismatch", errs.ErrUnknownSignature)
	}

	info, err := decryptKey(infoKey, infoBytes, archiveKey)
	if err != nil {
		return nil, err
	}

	nibbles := toNibbles(info)

	var d Decryptor
	copy(d.index[:], nibbles[:16])
	for j := 0; j < 4; j++ {
		for i := 0; i < 4; i++ {
			d.sub[i+j*4] = nibbles[16+i*4+j]
		}
	}

	return &d, nil
}

// decryptKey AES-128-CBC-encrypts key (IV all-zero, no padding,
// single 16-byte block) under archiveKey, then XORs the result with data.
func decryptKey(key, data, archiveKey [16]byte) ([16]byte, error) {
	block, err := aes.NewCipher(archiveKey[:])
	if err != nil {
		return [16]byte{}, fmt.Errorf("%w: %v", errs.ErrUnknownSignature, err)
	}

	var iv [16]byte
	mode := cipher.NewCBCEncrypter(block, iv[:])

	var out [16]byte
	mode.CryptBlocks(out[:], key[:])

	for i := range out {
		out[i] ^= data[i]
	}

	return out, nil
}

// toNibbles splits each byte of source into its high and low nibble, in
// that order, producing 32 nibble values from 16 bytes.
func toNibbles(source [16]byte) [32]byte {
	var out [32]byte
	for i, b := range source {
		out[i*2] = b >> 4
		out[i*2+1] = b & 0xF
	}

	return out
}

// DecryptBlock decrypts bytes in place using a per-byte counter that starts
// at index, the block's position within the bundle.
func (d *Decryptor) DecryptBlock(bytes []byte, index int) error {
	offset := 0
	size := len(bytes)

	for offset < size {
		next, err := d.decrypt(bytes, offset, index, size)
		if err != nil {
			return err
		}
		offset = next
		index++
	}

	return nil
}

// decryptByte decrypts bytes[offset] in place and returns the decrypted
// value along with the advanced offset and index.
func (d *Decryptor) decryptByte(bytes []byte, offset, index int) (byte, int, int) {
	m := d.sub[((index>>2)&3)+4] + d.sub[index&3] + d.sub[((index>>4)&3)+8] + d.sub[(index%256>>6)+12]

	b := bytes[offset]
	lo := d.index[b&0xF] - m
	hi := d.index[b>>4] - m
	bytes[offset] = (lo & 0xF) | (hi << 4)

	return bytes[offset], offset + 1, index + 1
}

// decrypt implements the length-prefixed skip-list scrambler for one
// "record": a header byte whose nibbles encode how many ciphertext bytes to
// skip unchanged (high nibble, extended via 0xFF continuation bytes) and
// whether the following plaintext run is itself skip-prefixed (low nibble).
func (d *Decryptor) decrypt(bytes []byte, offset, index, end int) (int, error) {
	curByte, offset, index := d.decryptByte(bytes, offset, index)

	hi := int(curByte >> 4)
	lo := curByte & 0xF

	if hi == 0xF {
		b := byte(0xFF)
		for b == 0xFF {
			b, offset, index = d.decryptByte(bytes, offset, index)
			hi += int(b)
		}
	}

	offset += hi

	if offset < end {
		_, offset, index = d.decryptByte(bytes, offset, index)
		_, offset, index = d.decryptByte(bytes, offset, index)

		if lo == 0xF {
			b := byte(0xFF)
			for b == 0xFF {
				b, offset, index = d.decryptByte(bytes, offset, index)
			}
		}
	}

	return offset, nil
}
