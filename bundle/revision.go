package bundle

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-unity/ubundle/errs"
	"github.com/go-unity/ubundle/internal/cache"
)

// Revision is an engine version tuple parsed from a bundle header's
// revision string (e.g. "2021.3.16f1" -> {2021, 3, 16}).
type Revision struct {
	Major int
	Minor int
	Patch int
}

// Less reports whether r sorts before o in (Major, Minor, Patch) order.
func (r Revision) Less(o Revision) bool {
	if r.Major != o.Major {
		return r.Major < o.Major
	}
	if r.Minor != o.Minor {
		return r.Minor < o.Minor
	}
	return r.Patch < o.Patch
}

// revisionCache memoizes ParseRevision: Open parses the revision once per
// bundle, and bundles built by one engine share the same revision string, so
// a run over many bundle files would otherwise re-run the same string scan
// per bundle.
var revisionCache = cache.NewMemo[Revision]()

// ParseRevision parses a header revision string, substituting fallback when
// revision is empty or the placeholder "0.0.0". The patch component stops at
// the first non-digit rune (the build-type suffix, e.g. "f1" or "p3"); a
// patch string with no such suffix parses as zero, matching the scan this
// format has always used upstream.
func ParseRevision(revision, fallback string) (Revision, error) {
	key := cache.RevisionKey(revision + "\x00" + fallback)
	return revisionCache.GetOrCompute(key, func() (Revision, error) {
		return parseRevisionUncached(revision, fallback)
	})
}

func parseRevisionUncached(revision, fallback string) (Revision, error) {
	s := revision
	if s == "" || s == "0.0.0" {
		s = fallback
	}
	if s == "" || s == "0.0.0" {
		return Revision{}, fmt.Errorf("%w: %q", errs.ErrInvalidRevision, revision)
	}

	parts := strings.SplitN(s, ".", 3)
	if len(parts) < 3 {
		return Revision{}, fmt.Errorf("%w: %q", errs.ErrInvalidRevision, revision)
	}

	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return Revision{}, fmt.Errorf("%w: %q", errs.ErrInvalidRevision, revision)
	}
	minor, err := strconv.Atoi(parts[1])
	if err != nil {
		return Revision{}, fmt.Errorf("%w: %q", errs.ErrInvalidRevision, revision)
	}

	patchStr := parts[2]
	patch := 0
	for i := 0; i < len(patchStr); i++ {
		c := patchStr[i]
		if c < '0' || c > '9' {
			p, err := strconv.Atoi(patchStr[:i])
			if err != nil {
				return Revision{}, fmt.Errorf("%w: %q", errs.ErrInvalidRevision, revision)
			}
			patch = p
			break
		}
	}

	return Revision{Major: major, Minor: minor, Patch: patch}, nil
}

// AtLeast reports whether r is at or beyond the given major.minor, ignoring
// patch. Used for the 2019.4 retroactive alignment-change probe, where the
// exact patch doesn't matter.
func (r Revision) AtLeast(major, minor int) bool {
	if r.Major != major {
		return r.Major > major
	}
	return r.Minor >= minor
}

// newArchiveFlagException marks a (major, before) pair that keeps the old
// archive-flag layout despite its major version otherwise qualifying for the
// new one.
type newArchiveFlagException struct {
	major  int
	before Revision
}

var newArchiveFlagExceptions = []newArchiveFlagException{
	{major: 2020, before: Revision{Major: 2020, Minor: 3, Patch: 34}},
	{major: 2021, before: Revision{Major: 2021, Minor: 3, Patch: 2}},
	{major: 2022, before: Revision{Major: 2022, Minor: 1, Patch: 1}},
}

// UsesNewArchiveFlags reports whether rev's engine places "uses encryption"
// at bit 0x400 (with a 0x200 block-info padding bit) rather than the old
// layout's 0x200 "uses encryption" with no padding bit. True for major ≥
// 2020, except a handful of point releases that backported the old layout.
func UsesNewArchiveFlags(rev Revision) bool {
	if rev.Major < 2020 {
		return false
	}
	for _, exc := range newArchiveFlagExceptions {
		if rev.Major == exc.major && rev.Less(exc.before) {
			return false
		}
	}
	return true
}
