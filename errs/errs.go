// Package errs defines the sentinel errors shared across ubundle's decode
// pipeline. Callers match on these with errors.Is; packages that need to
// attach context (a bad field value, a flag, a field name) wrap the
// sentinel with fmt.Errorf("%w: ...") rather than defining a new type.
package errs

import "errors"

var (
	// ErrUnknownSignature covers both an unrecognized bundle signature and a
	// UnityCN encryption signature check that failed to decrypt to the
	// expected constant.
	ErrUnknownSignature = errors.New("unknown signature")

	// ErrInvalidRevision means the engine revision text could not be parsed
	// into a (major, minor, patch) tuple.
	ErrInvalidRevision = errors.New("invalid engine revision")

	// ErrInvalidCompressionFlag means the low 6 bits of a block's flags were
	// not a recognized compression id.
	ErrInvalidCompressionFlag = errors.New("invalid compression flag")

	// ErrInvalidEndianness means a serialized-file endianness byte was not 0 or 1.
	ErrInvalidEndianness = errors.New("invalid endianness")

	// ErrTypeTreeNotFound means an object read was requested but its
	// SerializedType carries no embedded type tree.
	ErrTypeTreeNotFound = errors.New("type tree not found")

	// ErrInvalidValue covers any structural mismatch in type-tree shape or
	// header/size bookkeeping that isn't one of the more specific errors above.
	ErrInvalidValue = errors.New("invalid value")

	// ErrDecompressionError means a codec reported a decoding failure.
	ErrDecompressionError = errors.New("decompression error")

	// ErrUnimplemented marks a recognized but unsupported format feature
	// (LZHAM, the UnityArchive signature).
	ErrUnimplemented = errors.New("unimplemented")

	// ErrFeatureDisabled means the parse needed a feature the caller's Config
	// left switched off.
	ErrFeatureDisabled = errors.New("feature disabled")

	// ErrNoUnityCNKey means a bundle requires UnityCN block decryption but no
	// archive key was supplied in Config.
	ErrNoUnityCNKey = errors.New("unitycn key not provided")

	// ErrIO covers unexpected end-of-stream and other underlying read failures
	// not already surfaced as an *io.* sentinel by the standard library.
	ErrIO = errors.New("io error")
)
