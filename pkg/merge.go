package merger

import (
	"errors"
	"fmt"
	"io"
)

// TrackletWriter consumes merged tracklet chunks.
type TrackletWriter interface {
	WriteTracklets(table *TrackletTable) error
}

// TrackletCollector is a TrackletWriter that accumulates all chunks in
// memory.
type TrackletCollector struct {
	Table *TrackletTable
}

func (c *TrackletCollector) WriteTracklets(table *TrackletTable) error {
	if c.Table == nil {
		c.Table = NewTrackletTable(table.NDuts(), 0)
	}
	c.Table.Append(table)
	return nil
}

// MergeClusterData merges the cluster streams of all DUTs into per-event
// tracklet rows on the event number and hands them to out chunk by chunk.
// DUT 0 drives the chunking; the event universe of each chunk is the union
// of the event numbers all DUTs saw in that range. Missing clusters are
// signalled with a zero position, never with a missing row. Positions are
// scaled from channel indices to um with pixelSize and, for secondary DUTs,
// mapped onto the reference plane with the alignment constants.
func MergeClusterData(tables []ClusterTable, alignment []AlignmentConstants,
	pixelSize [][2]float64, chunkSize int, out TrackletWriter) error {
	nDuts := len(tables)
	if nDuts == 0 {
		return fmt.Errorf("no cluster tables to merge")
	}
	if pixelSize == nil {
		pixelSize = make([][2]float64, nDuts)
		for dut := range pixelSize {
			pixelSize[dut] = [2]float64{1, 1}
		}
	}
	if len(pixelSize) != nDuts {
		return &ErrLengthMismatch{Name: "pixelSize", Want: nDuts, Got: len(pixelSize)}
	}

	// Read positions to resume the per-DUT scans across chunks, one set for
	// the event universe pass and one for the fill pass.
	startIndices := make([]int64, nDuts)
	startIndices2 := make([]int64, nDuts)

	// First event number of the next chunk. It cannot be deduced from
	// DUT 0 alone since that plane may have missing event numbers.
	var actualStartEventNumber int64

	reader, err := NewChunkReader(tables[0], ChunkOptions{ChunkSize: chunkSize})
	if err != nil {
		return err
	}
	for {
		chunk, _, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		actualEventNumbers := eventNumbers(chunk)
		startEvent := actualStartEventNumber
		stopEvent := actualEventNumbers[len(actualEventNumbers)-1] + 1

		// First pass: the union of event numbers seen by any DUT in this
		// range defines the rows of the merged chunk.
		common := uniqueEvents(actualEventNumbers)
		for dut := 1; dut < nDuts; dut++ {
			dutReader, err := NewChunkReader(tables[dut], ChunkOptions{
				Start:            startIndices[dut],
				StartEventNumber: &startEvent,
				StopEventNumber:  &stopEvent,
				ChunkSize:        chunkSize,
				TrySpeedup:       true,
			})
			if err != nil {
				return err
			}
			for {
				dutChunk, next, err := dutReader.Next()
				if errors.Is(err, io.EOF) {
					break
				}
				if err != nil {
					return err
				}
				common, err = MaxEventsInBoth(common, eventNumbers(dutChunk))
				if err != nil {
					return err
				}
				startIndices[dut] = next
			}
		}

		table := NewTrackletTable(nDuts, len(common))
		copy(table.EventNumbers, common)

		mapped, err := MapCluster(common, chunk)
		if err != nil {
			return err
		}
		fillDut(table, 0, mapped, pixelSize[0], AlignmentConstants{C1: 1}, AlignmentConstants{C1: 1})

		// Second pass: map every other DUT onto the common event numbers.
		for dut := 1; dut < nDuts; dut++ {
			colConst, err := alignmentFor(alignment, dut, AxisColumn)
			if err != nil {
				return err
			}
			rowConst, err := alignmentFor(alignment, dut, AxisRow)
			if err != nil {
				return err
			}
			dutReader, err := NewChunkReader(tables[dut], ChunkOptions{
				Start:            startIndices2[dut],
				StartEventNumber: &startEvent,
				StopEventNumber:  &stopEvent,
				ChunkSize:        chunkSize,
				TrySpeedup:       true,
			})
			if err != nil {
				return err
			}
			for {
				dutChunk, next, err := dutReader.Next()
				if errors.Is(err, io.EOF) {
					break
				}
				if err != nil {
					return err
				}
				mapped, err := MapCluster(common, dutChunk)
				if err != nil {
					return err
				}
				fillDut(table, dut, mapped, pixelSize[dut], colConst, rowConst)
				startIndices2[dut] = next
			}
		}

		// n_tracks counts the planes with a real cluster in the event.
		for i := range table.NTracks {
			for dut := 0; dut < nDuts; dut++ {
				if table.Columns[dut][i] != 0 {
					table.NTracks[i]++
				}
			}
		}

		if err := out.WriteTracklets(table); err != nil {
			return err
		}
		if logger != nil && configuration.Verbosity > 0 {
			message := fmt.Sprintf("Merged %d events up to event %d", len(common), stopEvent-1)
			logger.Info(message, "merge")
		}
		actualStartEventNumber = common[len(common)-1] + 1
	}
	return nil
}

// fillDut writes the mapped cluster positions of one DUT into the merged
// chunk. Only real hits are added, a zero mean column is a virtual hit.
func fillDut(table *TrackletTable, dut int, mapped []ClusterRecord,
	pixelSize [2]float64, colConst, rowConst AlignmentConstants) {
	for i, cluster := range mapped {
		if cluster.MeanColumn == 0 {
			continue
		}
		column := pixelSize[0] * cluster.MeanColumn
		row := pixelSize[1] * cluster.MeanRow
		table.Columns[dut][i] = colConst.C1*column + colConst.C0
		table.Rows[dut][i] = rowConst.C1*row + rowConst.C0
		table.Charges[dut][i] = float64(cluster.Charge)
	}
}
