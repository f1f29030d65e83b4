package bundle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-unity/ubundle/errs"
)

func TestParseRevision(t *testing.T) {
	tests := []struct {
		name     string
		revision string
		fallback string
		want     Revision
	}{
		{"standard", "2021.3.16f1", "", Revision{2021, 3, 16}},
		{"single-digit patch with build suffix", "5.6.7f1", "", Revision{5, 6, 7}},
		{"no build suffix", "2020.1.2", "", Revision{2020, 1, 0}},
		{"empty uses fallback", "", "2019.4.30f1", Revision{2019, 4, 30}},
		{"placeholder uses fallback", "0.0.0", "2022.1.1f1", Revision{2022, 1, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRevision(tt.revision, tt.fallback)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseRevision_InvalidRevision(t *testing.T) {
	_, err := ParseRevision("not-a-version", "")
	require.ErrorIs(t, err, errs.ErrInvalidRevision)
}

func TestParseRevision_PlaceholderFallbackIsStillInvalid(t *testing.T) {
	_, err := ParseRevision("0.0.0", "0.0.0")
	require.ErrorIs(t, err, errs.ErrInvalidRevision)
}

func TestRevision_Less(t *testing.T) {
	assert.True(t, Revision{2020, 3, 1}.Less(Revision{2020, 3, 34}))
	assert.False(t, Revision{2020, 3, 34}.Less(Revision{2020, 3, 34}))
	assert.True(t, Revision{2019, 9, 9}.Less(Revision{2020, 0, 0}))
}

func TestUsesNewArchiveFlags(t *testing.T) {
	tests := []struct {
		name string
		rev  Revision
		want bool
	}{
		{"pre-2020", Revision{2019, 4, 30}, false},
		{"2020 before exception cutoff", Revision{2020, 3, 10}, false},
		{"2020 at exception cutoff", Revision{2020, 3, 34}, true},
		{"2021 before exception cutoff", Revision{2021, 2, 0}, false},
		{"2021 at exception cutoff", Revision{2021, 3, 2}, true},
		{"2022 before exception cutoff", Revision{2022, 0, 5}, false},
		{"2022 at exception cutoff", Revision{2022, 1, 1}, true},
		{"2023 always new", Revision{2023, 0, 0}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UsesNewArchiveFlags(tt.rev))
		})
	}
}
