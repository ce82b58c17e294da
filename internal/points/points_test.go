package points

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchInnerJoin(t *testing.T) {
	local := Set{
		{ID: "P1", Easting: 100, Northing: 200, Height: 10},
		{ID: "P2", Easting: 110, Northing: 210, Height: 11},
		{ID: "P4", Easting: 140, Northing: 240, Height: 14},
	}
	global := Set{
		{ID: "P2", Easting: 1110, Northing: 1210, Height: 31},
		{ID: "P1", Easting: 1100, Northing: 1200, Height: 30},
		{ID: "P3", Easting: 1130, Northing: 1230, Height: 33},
	}

	matched := Match(local, global)
	require.Len(t, matched, 2)

	// Order follows the local set.
	assert.Equal(t, "P1", matched[0].ID)
	assert.Equal(t, "P2", matched[1].ID)

	assert.InDelta(t, 100.0, matched[0].LocalE, 0)
	assert.InDelta(t, 1100.0, matched[0].GlobalE, 0)
	assert.InDelta(t, 30.0, matched[0].GlobalH, 0)
	assert.InDelta(t, 11.0, matched[1].LocalH, 0)
}

func TestMatchCaseSensitiveIDs(t *testing.T) {
	local := Set{{ID: "p1"}, {ID: "P2"}}
	global := Set{{ID: "P1"}, {ID: "P2"}}

	matched := Match(local, global)
	require.Len(t, matched, 1)
	assert.Equal(t, "P2", matched[0].ID)
}

func TestMatchDisjointSets(t *testing.T) {
	local := Set{{ID: "A"}, {ID: "B"}}
	global := Set{{ID: "C"}}

	assert.Empty(t, Match(local, global))
}

func TestMatchEmptyInputs(t *testing.T) {
	assert.Empty(t, Match(nil, nil))
	assert.Empty(t, Match(Set{{ID: "A"}}, nil))
	assert.Empty(t, Match(nil, Set{{ID: "A"}}))
}

func TestSetIDs(t *testing.T) {
	s := Set{{ID: "P1"}, {ID: "P2"}, {ID: "P3"}}
	assert.Equal(t, []string{"P1", "P2", "P3"}, s.IDs())
}
