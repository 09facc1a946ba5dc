package merger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHist1D(t *testing.T) {
	counts, err := Hist1D([]int32{0, 2, 2, 4, 2}, []int{5})
	require.NoError(t, err)
	assert.Equal(t, []uint32{1, 0, 3, 0, 1}, counts)
}

func TestHist1DOutOfRange(t *testing.T) {
	_, err := Hist1D([]int32{0, 5}, []int{5})
	require.Error(t, err)
	var rangeErr *ErrCoordinateRange
	require.ErrorAs(t, err, &rangeErr)
	assert.Equal(t, 0, rangeErr.Dim)
	assert.Equal(t, 1, rangeErr.Index)

	_, err = Hist1D([]int32{-1}, []int{5})
	assert.Error(t, err)
}

func TestHist1DBadShape(t *testing.T) {
	_, err := Hist1D(nil, []int{})
	assert.Error(t, err)
	_, err = Hist1D(nil, []int{2, 2})
	assert.Error(t, err)
	_, err = Hist1D(nil, []int{0})
	assert.Error(t, err)
}

func TestHist2D(t *testing.T) {
	x := []int32{0, 0, 1, 2, 2, 2}
	y := []int32{0, 1, 1, 0, 0, 1}

	hist, err := Hist2D(x, y, []int{3, 2})
	require.NoError(t, err)

	assert.Equal(t, uint32(1), hist.At(0, 0))
	assert.Equal(t, uint32(1), hist.At(0, 1))
	assert.Equal(t, uint32(0), hist.At(1, 0))
	assert.Equal(t, uint32(1), hist.At(1, 1))
	assert.Equal(t, uint32(2), hist.At(2, 0))
	assert.Equal(t, uint32(1), hist.At(2, 1))

	var total uint32
	for _, count := range hist.Counts {
		total += count
	}
	assert.Equal(t, uint32(len(x)), total)
}

func TestHist2DLengthMismatch(t *testing.T) {
	_, err := Hist2D([]int32{1, 2}, []int32{1}, []int{3, 3})
	require.Error(t, err)
	var lengthErr *ErrLengthMismatch
	assert.ErrorAs(t, err, &lengthErr)
}

func TestHist2DOutOfRange(t *testing.T) {
	_, err := Hist2D([]int32{3}, []int32{0}, []int{3, 2})
	assert.Error(t, err)
	_, err = Hist2D([]int32{0}, []int32{2}, []int{3, 2})
	assert.Error(t, err)
}

func TestHist3D(t *testing.T) {
	x := []int32{0, 1, 1}
	y := []int32{0, 1, 1}
	z := []int32{0, 2, 2}

	hist, err := Hist3D(x, y, z, []int{2, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, uint16(1), hist.At(0, 0, 0))
	assert.Equal(t, uint16(2), hist.At(1, 1, 2))
	assert.Equal(t, uint16(0), hist.At(0, 1, 1))
}

func TestHist3DOverflow(t *testing.T) {
	// Saturate one 16 bit bin, the next increment must fail loudly.
	x := make([]int32, 1<<16)
	y := make([]int32, 1<<16)
	z := make([]int32, 1<<16)

	_, err := Hist3D(x, y, z, []int{1, 1, 1})
	require.Error(t, err)
	var overflowErr *ErrCounterOverflow
	require.ErrorAs(t, err, &overflowErr)
	assert.Equal(t, 0, overflowErr.Bin)
}
