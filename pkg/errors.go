package merger

import "fmt"

// ErrNotSorted represents an event-number array that is not sorted ascending.
type ErrNotSorted struct {
	Name string
}

func (e *ErrNotSorted) Error() string {
	return fmt.Sprintf("event numbers in %q are not sorted ascending", e.Name)
}

// ErrLengthMismatch represents arrays that must have the same length but do not.
type ErrLengthMismatch struct {
	Name string
	Want int
	Got  int
}

func (e *ErrLengthMismatch) Error() string {
	return fmt.Sprintf("array %q has length %d, expected %d", e.Name, e.Got, e.Want)
}

// ErrHistogramShape represents a shape with the wrong dimensionality or
// a non-positive bin count.
type ErrHistogramShape struct {
	Shape []int
	Dims  int
}

func (e *ErrHistogramShape) Error() string {
	return fmt.Sprintf("shape %v does not describe a %d-d histogram", e.Shape, e.Dims)
}

// ErrCoordinateRange represents a coordinate outside the histogram shape.
type ErrCoordinateRange struct {
	Dim   int
	Index int
	Value int32
	Size  int
}

func (e *ErrCoordinateRange) Error() string {
	return fmt.Sprintf("coordinate %d at entry %d is outside [0, %d) in dimension %d", e.Value, e.Index, e.Size, e.Dim)
}

// ErrCounterOverflow represents a histogram bin that reached the limit of its
// counter width.
type ErrCounterOverflow struct {
	Bin int
}

func (e *ErrCounterOverflow) Error() string {
	return fmt.Sprintf("counter overflow in histogram bin %d", e.Bin)
}

// ErrOpenFile represents an error when opening a file.
type ErrOpenFile struct {
	Filename string
	Err      error
}

func (e *ErrOpenFile) Error() string {
	return fmt.Sprintf("error opening file %q: %v", e.Filename, e.Err)
}

// ErrCreateNode represents an error when creating an output node.
type ErrCreateNode struct {
	NodeName string
	Err      error
}

func (e *ErrCreateNode) Error() string {
	return fmt.Sprintf("error creating node %q: %v", e.NodeName, e.Err)
}

// ErrUnknownDut represents a DUT index with no alignment constants.
type ErrUnknownDut struct {
	Dut int
}

func (e *ErrUnknownDut) Error() string {
	return fmt.Sprintf("no alignment constants for DUT %d", e.Dut)
}
