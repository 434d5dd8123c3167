package links

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlotMatches(t *testing.T) {
	tests := []struct {
		name string
		slot Slot
		id   LinkID
		want bool
	}{
		{name: "wildcard matches anything", slot: Any, id: 42, want: true},
		{name: "wildcard matches zero", slot: Any, id: None, want: true},
		{name: "exact matches same id", slot: Exactly(7), id: 7, want: true},
		{name: "exact rejects other id", slot: Exactly(7), id: 8, want: false},
		{name: "exact zero matches only zero", slot: Exactly(None), id: None, want: true},
		{name: "exact zero rejects nonzero", slot: Exactly(None), id: 1, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.slot.Matches(tt.id))
		})
	}
}

func TestRestrictionMatches(t *testing.T) {
	l := Link{ID: 3, Source: 100, Target: 200}

	tests := []struct {
		name string
		r    Restriction
		want bool
	}{
		{name: "all wildcards match", r: All(), want: true},
		{name: "zero restriction matches", r: Restriction{}, want: true},
		{name: "pinned id matches", r: ByID(3), want: true},
		{name: "pinned id rejects", r: ByID(4), want: false},
		{name: "pinned source matches", r: BySource(100), want: true},
		{name: "pinned target rejects", r: ByTarget(100), want: false},
		{
			name: "all slots pinned and matching",
			r:    Restriction{ID: Exactly(3), Source: Exactly(100), Target: Exactly(200)},
			want: true,
		},
		{
			name: "one mismatched slot rejects",
			r:    Restriction{ID: Exactly(3), Source: Exactly(100), Target: Exactly(201)},
			want: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.r.Matches(l))
		})
	}
}

func TestSubstitutionValidate(t *testing.T) {
	require.ErrorIs(t, Sub().Validate(), ErrInvalidArgument)
	require.ErrorIs(t, Sub(1).Validate(), ErrInvalidArgument)
	require.NoError(t, Sub(1, 2).Validate())
	require.NoError(t, Sub(1, 2, 3).Validate())

	s := Sub(100, 200)
	assert.Equal(t, LinkID(100), s.Source())
	assert.Equal(t, LinkID(200), s.Target())
}
