package merger

import "sort"

// HitRecord is one pixel hit of one DUT. Coordinates are 1-based channel
// indices, 0 is reserved for "no hit".
type HitRecord struct {
	EventNumber int64
	Column      uint16
	Row         uint16
	Charge      uint16
}

// ClusterRecord is one cluster of one DUT, reduced to its mean position and
// total charge. Mean coordinates are 1-based, 0 is reserved for "no hit".
type ClusterRecord struct {
	EventNumber int64
	MeanColumn  float64
	MeanRow     float64
	Charge      uint16
}

// TrackletTable holds merged per-event rows column-wise: one entry per event
// in EventNumbers and one position/charge group per DUT. A zero position
// means the DUT had no cluster in that event.
type TrackletTable struct {
	EventNumbers []int64
	Columns      [][]float64
	Rows         [][]float64
	Charges      [][]float64
	TrackQuality []TrackQuality
	NTracks      []uint8
}

func NewTrackletTable(nDuts int, nRows int) *TrackletTable {
	table := &TrackletTable{
		EventNumbers: make([]int64, nRows),
		Columns:      make([][]float64, nDuts),
		Rows:         make([][]float64, nDuts),
		Charges:      make([][]float64, nDuts),
		TrackQuality: make([]TrackQuality, nRows),
		NTracks:      make([]uint8, nRows),
	}
	for dut := 0; dut < nDuts; dut++ {
		table.Columns[dut] = make([]float64, nRows)
		table.Rows[dut] = make([]float64, nRows)
		table.Charges[dut] = make([]float64, nRows)
	}
	return table
}

func (t *TrackletTable) NDuts() int {
	return len(t.Columns)
}

func (t *TrackletTable) Len() int {
	return len(t.EventNumbers)
}

// Append adds all rows of other to t. Both tables must have the same number
// of DUT groups.
func (t *TrackletTable) Append(other *TrackletTable) {
	t.EventNumbers = append(t.EventNumbers, other.EventNumbers...)
	for dut := 0; dut < t.NDuts(); dut++ {
		t.Columns[dut] = append(t.Columns[dut], other.Columns[dut]...)
		t.Rows[dut] = append(t.Rows[dut], other.Rows[dut]...)
		t.Charges[dut] = append(t.Charges[dut], other.Charges[dut]...)
	}
	t.TrackQuality = append(t.TrackQuality, other.TrackQuality...)
	t.NTracks = append(t.NTracks, other.NTracks...)
}

type Axis int

const (
	AxisColumn Axis = iota
	AxisRow
)

func (a Axis) String() string {
	switch a {
	case AxisColumn:
		return "column"
	case AxisRow:
		return "row"
	default:
		return "unknown"
	}
}

// AlignmentConstants is the linear transform mapping one DUT axis onto the
// reference plane: aligned = C1*x + C0. Sigma is the residual width of the
// correlation fit.
type AlignmentConstants struct {
	DutX  int     `db:"DutX"`
	DutY  int     `db:"DutY"`
	Axis  Axis    `db:"Axis"`
	C0    float64 `db:"C0"`
	C1    float64 `db:"C1"`
	Sigma float64 `db:"Sigma"`
}

// IdentityAlignment returns constants that leave all DUT positions unchanged.
func IdentityAlignment(nDuts int) []AlignmentConstants {
	constants := make([]AlignmentConstants, 0, 2*(nDuts-1))
	for dut := 1; dut < nDuts; dut++ {
		constants = append(constants,
			AlignmentConstants{DutX: dut, Axis: AxisColumn, C1: 1},
			AlignmentConstants{DutX: dut, Axis: AxisRow, C1: 1})
	}
	return constants
}

func alignmentFor(constants []AlignmentConstants, dut int, axis Axis) (AlignmentConstants, error) {
	for _, c := range constants {
		if c.DutX == dut && c.Axis == axis {
			return c, nil
		}
	}
	return AlignmentConstants{}, &ErrUnknownDut{Dut: dut}
}

// ClusterTable is a handle to an event-ordered cluster table. ReadRows
// returns the records in [start, stop), clamped to the table size.
type ClusterTable interface {
	NRows() int64
	ReadRows(start, stop int64) ([]ClusterRecord, error)
}

// EventSearcher is an optional event-number index over a ClusterTable. It
// returns the index of the first row in [start, stop) whose event number
// equals eventNumber, or false if that event is not present.
type EventSearcher interface {
	SearchEvent(eventNumber, start, stop int64) (int64, bool, error)
}

// MemoryTable is an in-memory ClusterTable with a binary-search event index.
type MemoryTable struct {
	Records []ClusterRecord
}

func (t *MemoryTable) NRows() int64 {
	return int64(len(t.Records))
}

func (t *MemoryTable) ReadRows(start, stop int64) ([]ClusterRecord, error) {
	if start < 0 {
		start = 0
	}
	if stop > int64(len(t.Records)) {
		stop = int64(len(t.Records))
	}
	if start >= stop {
		return nil, nil
	}
	return t.Records[start:stop], nil
}

func (t *MemoryTable) SearchEvent(eventNumber, start, stop int64) (int64, bool, error) {
	if start < 0 {
		start = 0
	}
	if stop > int64(len(t.Records)) {
		stop = int64(len(t.Records))
	}
	if start >= stop {
		return 0, false, nil
	}
	records := t.Records[start:stop]
	offset := sort.Search(len(records), func(i int) bool {
		return records[i].EventNumber >= eventNumber
	})
	if offset == len(records) || records[offset].EventNumber != eventNumber {
		return 0, false, nil
	}
	return start + int64(offset), true, nil
}
