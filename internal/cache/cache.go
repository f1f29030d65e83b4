// Package cache memoizes two small parses that repeat across the bundles and
// serialized files one process opens: an engine revision string (bundles
// built by one engine share it) and a type-tree blob (byte-identical blobs
// recur across type entries and files). It repurposes the teacher's
// xxHash64 id-hashing package for a concern this domain actually needs —
// see SPEC_FULL.md §3.1.
package cache

import (
	"sync"

	"github.com/cespare/xxhash/v2"
)

// RevisionKey hashes the raw engine-revision text read from a bundle header
// (bundle.ParseRevision also folds its fallback revision into the text).
func RevisionKey(revisionText string) uint64 {
	return xxhash.Sum64String(revisionText)
}

// TypeTreeBlobKey hashes the raw bytes of one type tree's blob-form node
// table plus string buffer, before it's parsed into a tree.
func TypeTreeBlobKey(nodeBytes, stringBuffer []byte) uint64 {
	d := xxhash.New()
	d.Write(nodeBytes)
	d.Write(stringBuffer)
	return d.Sum64()
}

// Memo is a concurrency-safe memoization table keyed by a pre-hashed
// uint64. Bundles carry at most a handful of distinct revisions or type-tree
// shapes, so this trades a little memory for skipping a re-parse of a
// revision or type tree already seen.
type Memo[V any] struct {
	mu sync.RWMutex
	m  map[uint64]V
}

// NewMemo returns an empty memoization table.
func NewMemo[V any]() *Memo[V] {
	return &Memo[V]{m: make(map[uint64]V)}
}

// GetOrCompute returns the cached value for key, computing and storing it
// via compute on a miss. A compute error is never cached.
func (c *Memo[V]) GetOrCompute(key uint64, compute func() (V, error)) (V, error) {
	c.mu.RLock()
	if v, ok := c.m[key]; ok {
		c.mu.RUnlock()
		return v, nil
	}
	c.mu.RUnlock()

	v, err := compute()
	if err != nil {
		var zero V
		return zero, err
	}

	c.mu.Lock()
	c.m[key] = v
	c.mu.Unlock()

	return v, nil
}
