package merger

import (
	"fmt"
	"sort"
)

// CorrelateHits histograms the hit columns (rows) of a DUT against the
// reference plane on an event basis. Hits sharing an event number are paired
// in order of appearance, not all against all, which is sufficient as long
// as there are not too many hits per event. The returned histograms are
// (dut column x reference column) and (dut row x reference row); the
// 1-based channel indices are shifted to 0-based bins.
//
// fraction > 1 takes only every fraction-th hit of both tables to save time.
func CorrelateHits(ref, dut []HitRecord, fraction int) (*Histogram2D, *Histogram2D, error) {
	ref = strideHits(ref, fraction)
	dut = strideHits(dut, fraction)
	if err := checkSorted("ref", hitEventNumbers(ref)); err != nil {
		return nil, nil, err
	}
	if err := checkSorted("dut", hitEventNumbers(dut)); err != nil {
		return nil, nil, err
	}

	nColRef, nRowRef := maxColumnRow(ref)
	nColDut, nRowDut := maxColumnRow(dut)
	if nColRef == 0 || nColDut == 0 {
		return nil, nil, fmt.Errorf("cannot correlate empty hit tables")
	}

	colDut, colRef, rowDut, rowRef := pairedCoordinates(ref, dut)
	colCorr, err := Hist2D(colDut, colRef, []int{nColDut, nColRef})
	if err != nil {
		return nil, nil, err
	}
	rowCorr, err := Hist2D(rowDut, rowRef, []int{nRowDut, nRowRef})
	if err != nil {
		return nil, nil, err
	}
	return colCorr, rowCorr, nil
}

// pairedCoordinates walks both sorted hit arrays and emits 0-based
// coordinate pairs for hits sharing an event number.
func pairedCoordinates(ref, dut []HitRecord) (colDut, colRef, rowDut, rowRef []int32) {
	i, j := 0, 0
	for i < len(ref) && j < len(dut) {
		switch {
		case ref[i].EventNumber < dut[j].EventNumber:
			i++
		case dut[j].EventNumber < ref[i].EventNumber:
			j++
		default:
			colDut = append(colDut, int32(dut[j].Column)-1)
			colRef = append(colRef, int32(ref[i].Column)-1)
			rowDut = append(rowDut, int32(dut[j].Row)-1)
			rowRef = append(rowRef, int32(ref[i].Row)-1)
			i++
			j++
		}
	}
	return colDut, colRef, rowDut, rowRef
}

// SelectHitRange returns the hits of a sorted hit array whose event number
// lies in [startEvent, stopEvent). Nil bounds are open.
func SelectHitRange(hits []HitRecord, startEvent, stopEvent *int64) []HitRecord {
	lo := 0
	if startEvent != nil {
		lo = sort.Search(len(hits), func(i int) bool {
			return hits[i].EventNumber >= *startEvent
		})
	}
	hi := len(hits)
	if stopEvent != nil {
		hi = sort.Search(len(hits), func(i int) bool {
			return hits[i].EventNumber >= *stopEvent
		})
	}
	if lo >= hi {
		return nil
	}
	return hits[lo:hi]
}

func strideHits(hits []HitRecord, fraction int) []HitRecord {
	if fraction <= 1 {
		return hits
	}
	strided := make([]HitRecord, 0, len(hits)/fraction+1)
	for i := 0; i < len(hits); i += fraction {
		strided = append(strided, hits[i])
	}
	return strided
}

func hitEventNumbers(hits []HitRecord) []int64 {
	events := make([]int64, len(hits))
	for i, hit := range hits {
		events[i] = hit.EventNumber
	}
	return events
}

func maxColumnRow(hits []HitRecord) (int, int) {
	maxColumn, maxRow := 0, 0
	for _, hit := range hits {
		if int(hit.Column) > maxColumn {
			maxColumn = int(hit.Column)
		}
		if int(hit.Row) > maxRow {
			maxRow = int(hit.Row)
		}
	}
	return maxColumn, maxRow
}
