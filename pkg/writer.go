package merger

import (
	"errors"
	"fmt"

	hdf5 "github.com/jmbenlloch/go-hdf5"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Writer stores merged tracklet rows, their track quality and the
// correlation histograms in one HDF5 file. Tracklet positions are kept one
// table per DUT so that the number of DUTs stays a runtime parameter.
type Writer struct {
	File              *hdf5.File
	Filename          string
	RunGroup          *hdf5.Group
	TrackletsGroup    *hdf5.Group
	CorrelationsGroup *hdf5.Group
	RunInfoTable      *hdf5.Dataset
	AlignmentTable    *hdf5.Dataset
	QualityTable      *hdf5.Dataset
	DutTables         []*hdf5.Dataset
	Correlations      map[string]*hdf5.Dataset
	RowCounter        int
}

func NewWriter(filename string, nDuts int, runNumber int) *Writer {
	writer := &Writer{}
	writer.File = openFile(filename)
	writer.Filename = filename
	writer.RunGroup = createGroup(writer.File, "Run")
	writer.TrackletsGroup = createGroup(writer.File, "Tracklets")
	writer.CorrelationsGroup = createGroup(writer.File, "Correlations")
	writer.RunInfoTable = createTable(writer.RunGroup, "runInfo", RunInfoHDF5{})
	writer.AlignmentTable = createTable(writer.RunGroup, "alignment", AlignmentHDF5{})
	writer.QualityTable = createTable(writer.TrackletsGroup, "quality", TrackQualityHDF5{})
	writer.DutTables = make([]*hdf5.Dataset, nDuts)
	for dut := 0; dut < nDuts; dut++ {
		name := fmt.Sprintf("dut_%d", dut)
		writer.DutTables[dut] = createTable(writer.TrackletsGroup, name, TrackletHDF5{})
	}
	writer.Correlations = make(map[string]*hdf5.Dataset)
	writer.RowCounter = 0

	writeEntryToTable(writer.RunInfoTable, RunInfoHDF5{run_number: int32(runNumber)}, 0)
	return writer
}

// WriteTracklets appends one merged chunk. Implements TrackletWriter.
func (w *Writer) WriteTracklets(table *TrackletTable) error {
	if len(w.DutTables) != table.NDuts() {
		return &ErrLengthMismatch{Name: "duts", Want: len(w.DutTables), Got: table.NDuts()}
	}
	nRows := table.Len()
	for dut := 0; dut < table.NDuts(); dut++ {
		rows := make([]TrackletHDF5, nRows)
		for i := 0; i < nRows; i++ {
			rows[i] = TrackletHDF5{
				event_number: table.EventNumbers[i],
				column:       table.Columns[dut][i],
				row:          table.Rows[dut][i],
				charge:       table.Charges[dut][i],
			}
		}
		writeArrayToTable(w.DutTables[dut], &rows, w.RowCounter)
	}

	quality := make([]TrackQualityHDF5, nRows)
	for i := 0; i < nRows; i++ {
		quality[i] = TrackQualityHDF5{
			event_number:  table.EventNumbers[i],
			track_quality: int32(table.TrackQuality[i]),
			n_tracks:      int32(table.NTracks[i]),
		}
	}
	writeArrayToTable(w.QualityTable, &quality, w.RowCounter)

	w.RowCounter += nRows
	return nil
}

// WriteCorrelation stores one 2d correlation histogram under the given node
// name, one first-axis slice per row.
func (w *Writer) WriteCorrelation(name string, hist *Histogram2D) error {
	if _, ok := w.Correlations[name]; ok {
		return &ErrCreateNode{NodeName: name, Err: errors.New("node exists already")}
	}
	dset := create2dArray(w.CorrelationsGroup, name, hist.NY)
	w.Correlations[name] = dset
	for x := 0; x < hist.NX; x++ {
		row := make([]int32, hist.NY)
		for y := 0; y < hist.NY; y++ {
			row[y] = int32(hist.At(x, y))
		}
		write2dArray(dset, &row, x, hist.NY)
	}
	return nil
}

// WriteAlignment stores the alignment constants the merge was done with.
func (w *Writer) WriteAlignment(constants []AlignmentConstants) error {
	rows := make([]AlignmentHDF5, len(constants))
	for i, c := range constants {
		rows[i] = AlignmentHDF5{
			dut_x: int32(c.DutX),
			dut_y: int32(c.DutY),
			axis:  int32(c.Axis),
			c0:    c.C0,
			c1:    c.C1,
			sigma: c.Sigma,
		}
	}
	writeArrayToTable(w.AlignmentTable, &rows, 0)
	return nil
}

func (w *Writer) Close() error {
	var errs []error

	if err := w.RunInfoTable.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing run info table: %w", err))
	}
	if err := w.AlignmentTable.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing alignment table: %w", err))
	}
	if err := w.QualityTable.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing quality table: %w", err))
	}
	for dut, table := range w.DutTables {
		if err := table.Close(); err != nil {
			errs = append(errs, fmt.Errorf("error closing tracklet table for DUT %d: %w", dut, err))
		}
	}
	names := maps.Keys(w.Correlations)
	slices.Sort(names)
	for _, name := range names {
		if err := w.Correlations[name].Close(); err != nil {
			errs = append(errs, fmt.Errorf("error closing correlation %q: %w", name, err))
		}
	}
	if err := w.RunGroup.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing run group: %w", err))
	}
	if err := w.TrackletsGroup.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing tracklets group: %w", err))
	}
	if err := w.CorrelationsGroup.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing correlations group: %w", err))
	}
	if err := w.File.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing file: %w", err))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
