package merger

import "math"

// Fixed-shape counting of integer index coordinates. Coordinates must fit
// into the declared shape, out-of-range tuples are rejected instead of
// corrupting neighbouring bins. Counts are 32 bit for the 1d/2d case and
// 16 bit for the 3d case; exceeding that width is an error, not a silent
// wraparound.

// Histogram2D holds counts in row-major order: Counts[x*NY + y].
type Histogram2D struct {
	NX, NY int
	Counts []uint32
}

func (h *Histogram2D) At(x, y int) uint32 {
	return h.Counts[x*h.NY+y]
}

// Histogram3D holds counts in row-major order: Counts[(x*NY+y)*NZ + z].
type Histogram3D struct {
	NX, NY, NZ int
	Counts     []uint16
}

func (h *Histogram3D) At(x, y, z int) uint16 {
	return h.Counts[(x*h.NY+y)*h.NZ+z]
}

// Hist1D counts the coordinates of x into shape[0] bins.
func Hist1D(x []int32, shape []int) ([]uint32, error) {
	if len(shape) != 1 || shape[0] <= 0 {
		return nil, &ErrHistogramShape{Shape: shape, Dims: 1}
	}
	result := make([]uint32, shape[0])
	for i, value := range x {
		if value < 0 || int(value) >= shape[0] {
			return nil, &ErrCoordinateRange{Dim: 0, Index: i, Value: value, Size: shape[0]}
		}
		if result[value] == math.MaxUint32 {
			return nil, &ErrCounterOverflow{Bin: int(value)}
		}
		result[value]++
	}
	return result, nil
}

// Hist2D counts the coordinate pairs (x[i], y[i]) into a shape[0] x shape[1]
// histogram.
func Hist2D(x, y []int32, shape []int) (*Histogram2D, error) {
	if len(shape) != 2 || shape[0] <= 0 || shape[1] <= 0 {
		return nil, &ErrHistogramShape{Shape: shape, Dims: 2}
	}
	if len(y) != len(x) {
		return nil, &ErrLengthMismatch{Name: "y", Want: len(x), Got: len(y)}
	}
	result := &Histogram2D{
		NX:     shape[0],
		NY:     shape[1],
		Counts: make([]uint32, shape[0]*shape[1]),
	}
	for i := range x {
		if x[i] < 0 || int(x[i]) >= shape[0] {
			return nil, &ErrCoordinateRange{Dim: 0, Index: i, Value: x[i], Size: shape[0]}
		}
		if y[i] < 0 || int(y[i]) >= shape[1] {
			return nil, &ErrCoordinateRange{Dim: 1, Index: i, Value: y[i], Size: shape[1]}
		}
		bin := int(x[i])*shape[1] + int(y[i])
		if result.Counts[bin] == math.MaxUint32 {
			return nil, &ErrCounterOverflow{Bin: bin}
		}
		result.Counts[bin]++
	}
	return result, nil
}

// Hist3D counts the coordinate triples (x[i], y[i], z[i]) into a
// shape[0] x shape[1] x shape[2] histogram.
func Hist3D(x, y, z []int32, shape []int) (*Histogram3D, error) {
	if len(shape) != 3 || shape[0] <= 0 || shape[1] <= 0 || shape[2] <= 0 {
		return nil, &ErrHistogramShape{Shape: shape, Dims: 3}
	}
	if len(y) != len(x) {
		return nil, &ErrLengthMismatch{Name: "y", Want: len(x), Got: len(y)}
	}
	if len(z) != len(x) {
		return nil, &ErrLengthMismatch{Name: "z", Want: len(x), Got: len(z)}
	}
	result := &Histogram3D{
		NX:     shape[0],
		NY:     shape[1],
		NZ:     shape[2],
		Counts: make([]uint16, shape[0]*shape[1]*shape[2]),
	}
	for i := range x {
		if x[i] < 0 || int(x[i]) >= shape[0] {
			return nil, &ErrCoordinateRange{Dim: 0, Index: i, Value: x[i], Size: shape[0]}
		}
		if y[i] < 0 || int(y[i]) >= shape[1] {
			return nil, &ErrCoordinateRange{Dim: 1, Index: i, Value: y[i], Size: shape[1]}
		}
		if z[i] < 0 || int(z[i]) >= shape[2] {
			return nil, &ErrCoordinateRange{Dim: 2, Index: i, Value: z[i], Size: shape[2]}
		}
		bin := (int(x[i])*shape[1]+int(y[i]))*shape[2] + int(z[i])
		if result.Counts[bin] == math.MaxUint16 {
			return nil, &ErrCounterOverflow{Bin: bin}
		}
		result.Counts[bin]++
	}
	return result, nil
}
