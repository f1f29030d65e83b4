package bundle

// Config carries the knobs Open needs beyond the bytes themselves: a
// fallback engine revision for headers that don't carry a usable one, an
// optional UnityCN archive key, and per-codec feature toggles. A toggle left
// off turns use of that facility into a FeatureDisabled error at the point
// of need, rather than a silent skip.
type Config struct {
	// FallbackEngineRevision substitutes for a header revision that is empty
	// or the placeholder "0.0.0".
	FallbackEngineRevision string

	// UnityCNKey is the 16-byte archive key for UnityCN block decryption. Nil
	// means no key was supplied; a bundle that needs one fails with
	// NoUnityCNKey.
	UnityCNKey *[16]byte

	EnableLZMA       bool
	EnableLZ4        bool
	EnableEncryption bool
}
