package merger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCorrelateHits(t *testing.T) {
	ref := []HitRecord{
		{EventNumber: 0, Column: 1, Row: 1},
		{EventNumber: 1, Column: 2, Row: 3},
		{EventNumber: 2, Column: 4, Row: 2},
		{EventNumber: 4, Column: 3, Row: 1},
	}
	dut := []HitRecord{
		{EventNumber: 1, Column: 5, Row: 2},
		{EventNumber: 2, Column: 1, Row: 4},
		{EventNumber: 3, Column: 2, Row: 2},
	}

	colCorr, rowCorr, err := CorrelateHits(ref, dut, 1)
	require.NoError(t, err)

	// Events 1 and 2 are shared, events 0, 3 and 4 pair with nothing.
	assert.Equal(t, 5, colCorr.NX)
	assert.Equal(t, 4, colCorr.NY)
	var total uint32
	for _, count := range colCorr.Counts {
		total += count
	}
	assert.Equal(t, uint32(2), total)

	// Channel indices are 1-based, bins are 0-based.
	assert.Equal(t, uint32(1), colCorr.At(4, 1))
	assert.Equal(t, uint32(1), colCorr.At(0, 3))
	assert.Equal(t, uint32(1), rowCorr.At(1, 2))
	assert.Equal(t, uint32(1), rowCorr.At(3, 1))
}

// Multiple hits in the same event pair up in order of appearance instead of
// all against all.
func TestCorrelateHitsPairsInOrder(t *testing.T) {
	ref := []HitRecord{
		{EventNumber: 0, Column: 1, Row: 1},
		{EventNumber: 0, Column: 2, Row: 2},
	}
	dut := []HitRecord{
		{EventNumber: 0, Column: 3, Row: 3},
		{EventNumber: 0, Column: 4, Row: 4},
	}

	colCorr, _, err := CorrelateHits(ref, dut, 1)
	require.NoError(t, err)

	var total uint32
	for _, count := range colCorr.Counts {
		total += count
	}
	assert.Equal(t, uint32(2), total)
	assert.Equal(t, uint32(1), colCorr.At(2, 0))
	assert.Equal(t, uint32(1), colCorr.At(3, 1))
}

func TestCorrelateHitsFraction(t *testing.T) {
	var ref, dut []HitRecord
	for i := 0; i < 100; i++ {
		ref = append(ref, HitRecord{EventNumber: int64(i), Column: 1, Row: 1})
		dut = append(dut, HitRecord{EventNumber: int64(i), Column: 1, Row: 1})
	}

	colCorr, _, err := CorrelateHits(ref, dut, 10)
	require.NoError(t, err)

	var total uint32
	for _, count := range colCorr.Counts {
		total += count
	}
	assert.Equal(t, uint32(10), total)
}

func TestSelectHitRange(t *testing.T) {
	hits := []HitRecord{
		{EventNumber: 1}, {EventNumber: 2}, {EventNumber: 2},
		{EventNumber: 4}, {EventNumber: 6},
	}
	two := int64(2)
	five := int64(5)

	selected := SelectHitRange(hits, &two, &five)
	require.Len(t, selected, 3)
	assert.Equal(t, int64(2), selected[0].EventNumber)
	assert.Equal(t, int64(4), selected[2].EventNumber)

	assert.Len(t, SelectHitRange(hits, nil, &five), 4)
	assert.Len(t, SelectHitRange(hits, &five, nil), 1)
	assert.Nil(t, SelectHitRange(hits, &five, &two))
}

func TestCorrelateHitsErrors(t *testing.T) {
	hits := []HitRecord{{EventNumber: 0, Column: 1, Row: 1}}

	_, _, err := CorrelateHits(nil, hits, 1)
	assert.Error(t, err)

	unsorted := []HitRecord{
		{EventNumber: 2, Column: 1, Row: 1},
		{EventNumber: 1, Column: 1, Row: 1},
	}
	_, _, err = CorrelateHits(unsorted, hits, 1)
	assert.Error(t, err)
}
